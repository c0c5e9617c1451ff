package main

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/swaywm/go-wlroots/wlroots"
	"github.com/swaywm/go-wlroots/xkb"
	"gitlab.com/mstarongitlab/goutils/sliceutils"

	"github.com/mstarongithub/waytag/config"
	"github.com/mstarongithub/waytag/tiler"
	"github.com/mstarongithub/waytag/wm"
)

type CursorMode int

const (
	CursorModePassThrough CursorMode = iota
	CursorModeMove
	CursorModeResize
)

type Server struct {
	display     wlroots.Display
	backend     wlroots.Backend
	renderer    wlroots.Renderer
	allocator   wlroots.Allocator
	scene       wlroots.Scene
	sceneLayout wlroots.SceneOutputLayout

	xdgShell wlroots.XDGShell
	windows  []*xdgWindow

	cursor    wlroots.Cursor
	cursorMgr wlroots.XCursorManager

	seat          wlroots.Seat
	keyboards     []*Keyboard
	cursorMode    CursorMode
	grabbedWindow *xdgWindow
	grabX, grabY  float64
	grabGeobox    wm.Box
	resizeEdges   wlroots.Edges

	outputLayout wlroots.OutputLayout
	outputs      []*wlroots.Output
	// AddOutputAuto lays outputs out left to right, mirror that when
	// handing layout boxes to the management core.
	nextOutputX int

	conf  *config.Config
	wm    *wm.Server
	graph *sceneGraph
	tasks *taskRegistry
	// wm outputs by device name, the only key both sides share.
	wmOutputs map[string]*wm.Output

	focusedWindow *xdgWindow
}

type Keyboard struct {
	dev wlroots.InputDevice
}

func decorationMode(policy config.DecorationPolicy) wm.DecorationMode {
	switch policy {
	case config.DecorationNone:
		return wm.DecorationModeNone
	case config.DecorationClient:
		return wm.DecorationModeClient
	case config.DecorationServer:
		return wm.DecorationModeServer
	case config.DecorationClientPreferred:
		return wm.DecorationModeClientPreferred
	case config.DecorationClientOnFloating:
		return wm.DecorationModeClientOnFloating
	default:
		return wm.DecorationModeClientOnFloating
	}
}

func (server *Server) windowFor(topLevel *wlroots.XDGTopLevel) *xdgWindow {
	for _, w := range server.windows {
		if w.topLevel == *topLevel {
			return w
		}
	}
	return nil
}

func (server *Server) removeWindow(win *xdgWindow) {
	server.windows = sliceutils.Filter(server.windows, func(w *xdgWindow) bool {
		return w != win
	})
}

func (server *Server) handleNewPointer(dev wlroots.InputDevice) {
	/* We don't do anything special with pointers. All of our pointer handling
	 * is proxied through wlr_cursor. On another compositor, you might take this
	 * opportunity to do libinput configuration on the device to set
	 * acceleration, etc. */
	server.cursor.AttachInputDevice(dev)
}

func (server *Server) handleKey(keyboard wlroots.Keyboard, time uint32, keyCode uint32, updateState bool, state wlroots.KeyState) {
	/* This event is raised when a key is pressed or released. */

	// translate libinput keycode to xkbcommon and obtain keysyms
	syms := keyboard.XKBState().Syms(xkb.KeyCode(keyCode + 8))

	handled := false
	modifiers := keyboard.Modifiers()
	if (modifiers&wlroots.KeyboardModifierAlt != 0) && state == wlroots.KeyStatePressed {
		/* If alt is held down and this button was _pressed_, we attempt to
		 * process it as a compositor keybinding. */
		for _, sym := range syms {
			handled = server.handleKeyBinding(sym)
		}
	}

	if !handled {
		/* Otherwise, we pass it along to the client. */
		server.seat.SetKeyboard(keyboard.Base())
		server.seat.NotifyKeyboardKey(time, keyCode, state)
	}
}

func (server *Server) handleNewKeyboard(dev wlroots.InputDevice) {
	keyboard := dev.Keyboard()

	/* We need to prepare an XKB keymap and assign it to the keyboard. This
	 * assumes the defaults (e.g. layout = "us"). */
	context := xkb.NewContext(xkb.KeySymFlagNoFlags)
	keymap := context.KeyMap()
	keyboard.SetKeymap(keymap)
	keymap.Destroy()
	context.Destroy()
	keyboard.SetRepeatInfo(25, 600)

	keyboard.OnModifiers(func(keyboard wlroots.Keyboard) {
		server.seat.SetKeyboard(dev)
		server.seat.NotifyKeyboardModifiers(keyboard)
	})
	keyboard.OnKey(server.handleKey)

	server.seat.SetKeyboard(dev)
	server.keyboards = append(server.keyboards, &Keyboard{dev: dev})
}

func (server *Server) handleNewInput(dev wlroots.InputDevice) {
	/* This event is raised by the backend when a new input device becomes
	 * available. */
	switch dev.Type() {
	case wlroots.InputDeviceTypePointer:
		server.handleNewPointer(dev)
	case wlroots.InputDeviceTypeKeyboard:
		server.handleNewKeyboard(dev)
	}

	/* We always advertise a cursor, even if there are no pointer devices. */
	caps := wlroots.SeatCapabilityPointer
	if len(server.keyboards) > 0 {
		caps |= wlroots.SeatCapabilityKeyboard
	}
	server.seat.SetCapabilities(caps)
}

func (server *Server) windowAt(lx float64, ly float64) (*xdgWindow, *wlroots.Surface, float64, float64) {
	/* This returns the topmost node in the scene at the given layout coords.
	 * We only care about surface nodes as those are the ones carrying client
	 * windows. */

	node, sx, sy := server.scene.Tree().Node().At(lx, ly)

	if node.Nil() || node.Type() != wlroots.SceneNodeBuffer {
		return nil, nil, 0, 0
	}
	sceneSurface := node.SceneBuffer().SceneSurface()
	if sceneSurface.Nil() {
		return nil, nil, 0, 0
	}
	surface := sceneSurface.Surface()

	topLevel := surface.XDGSurface().TopLevel()
	if win := server.windowFor(&topLevel); win != nil {
		return win, &surface, sx, sy
	}
	return nil, &surface, sx, sy
}

func (server *Server) handleNewFrame(output wlroots.Output) {
	/* Called every time an output is ready to display a frame, generally at
	 * the output's refresh rate. */

	sOut, err := server.scene.SceneOutput(output)
	if err != nil {
		return
	}

	/* The idle queue carries deferred layout work (coalesced arranges,
	 * cross-output fixups). Flush it before deciding whether to paint. */
	server.wm.DispatchIdle()

	if wmOut := server.wmOutputs[output.Name()]; wmOut != nil {
		if !server.wm.AllowRender(wmOut, time.Now()) {
			/* Clients still expect frame callbacks while we hold the
			 * frame back for in-flight resizes. */
			sOut.SendFrameDone(time.Now())
			return
		}
	}

	sOut.Commit()
	sOut.SendFrameDone(time.Now())
}

func (server *Server) handleOutputRequestState(output wlroots.Output, state wlroots.OutputState) {
	/* Wayland and X11 backends request a new mode when the output window is
	 * resized. */
	logrus.WithField("output", output.Name()).Debugln("new state request for output")
	output.CommitState(state)
}

func (server *Server) handleOutputDestroy(output wlroots.Output) {
	logrus.WithField("name", output.Name()).Debugln("output getting destroyed")

	if wmOut, ok := server.wmOutputs[output.Name()]; ok {
		/* The management core parks the output's workspace state and
		 * rescues its containers to a neighbour. */
		wmOut.HandleDestroy()
		delete(server.wmOutputs, output.Name())
	}
	server.outputs = sliceutils.Filter(server.outputs, func(o *wlroots.Output) bool {
		return *o != output
	})
}

func (server *Server) handleNewOutput(output wlroots.Output) {
	/* This event is raised by the backend when a new output (aka a display or
	 * monitor) becomes available. */

	logrus.WithField("name", output.Name()).Debugln("new output added")
	server.outputs = append(server.outputs, &output)

	/* Configures the output created by the backend to use our allocator
	 * and our renderer. Must be done once, before commiting the output */
	output.InitRender(server.allocator, server.renderer)

	/* The output may be disabled, switch it on. */
	oState := wlroots.NewOutputState()
	oState.StateInit()
	oState.StateSetEnabled(true)

	/* Pick the monitor's preferred mode. The tool mode lists the others for
	 * anyone who wants to pin one in the config later. */
	width, height := 1920, 1080
	mode, err := output.PrefferedMode()
	if err == nil {
		oState.SetMode(mode)
		width, height = mode.Width(), mode.Height()
	}

	/* Atomically applies the new output state. */
	output.CommitState(oState)
	oState.Finish()

	output.OnFrame(server.handleNewFrame)
	output.OnRequestState(server.handleOutputRequestState)
	output.OnDestroy(server.handleOutputDestroy)

	/* Adds this to the output layout. The add_auto function arranges outputs
	 * from left-to-right in the order they appear. */
	lOutput := server.outputLayout.AddOutputAuto(output)
	sceneOutput := server.scene.NewOutput(output)
	server.sceneLayout.AddOutput(lOutput, sceneOutput)

	/* Register with the management core. A reconnecting device gets its
	 * old workspace state and windows back. */
	box := wm.Box{X: server.nextOutputX, Y: 0, Width: width, Height: height}
	server.nextOutputX += width
	server.wmOutputs[output.Name()] = wm.NewOutput(server.wm, output.Name(), box)

	if err := output.SetTitle(fmt.Sprintf("waytag - %s", output.Name())); err != nil {
		return
	}
}

func (server *Server) handleCursorMotion(dev wlroots.InputDevice, time uint32, dx float64, dy float64) {
	/* This event is forwarded by the cursor when a pointer emits a _relative_
	 * pointer motion event (i.e. a delta) */
	server.cursor.Move(dev, dx, dy)
	server.processCursorMotion(time)
}

func (server *Server) handleCursorMotionAbsolute(dev wlroots.InputDevice, time uint32, x float64, y float64) {
	/* This event is forwarded by the cursor when a pointer emits an _absolute_
	 * motion event, from 0..1 on each axis. */
	server.cursor.WarpAbsolute(dev, x, y)
	server.processCursorMotion(time)
}

func (server *Server) processCursorMotion(time uint32) {
	/* If the mode is non-passthrough, delegate to those functions. */
	if server.cursorMode == CursorModeMove {
		server.processCursorMove(time)
		return
	} else if server.cursorMode == CursorModeResize {
		server.processCursorResize(time)
		return
	}

	/* Otherwise, find the window under the pointer and send the event along. */
	win, surface, sx, sy := server.windowAt(server.cursor.X(), server.cursor.Y())
	if win == nil {
		server.cursor.SetXCursor(server.cursorMgr, "default")
	}
	if surface != nil {
		server.seat.NotifyPointerEnter(*surface, sx, sy)
		server.seat.NotifyPointerMotion(time, sx, sy)
	} else {
		server.seat.ClearPointerFocus()
	}
}

func (server *Server) processCursorMove(_ uint32) {
	/* Move the grabbed container. Crossing an output boundary reassigns
	 * ownership by the container's center point. */
	c := server.grabbedWindow.toplevel.Container()
	if c == nil {
		return
	}
	c.SetPositionGlobal(int(server.cursor.X()-server.grabX), int(server.cursor.Y()-server.grabY))
}

func (server *Server) processCursorResize(_ uint32) {
	/* Resizing can happen from any corner or edge, which moves the container
	 * as well when the top or left edges are involved. */
	c := server.grabbedWindow.toplevel.Container()
	if c == nil {
		return
	}

	borderX := server.cursor.X()
	borderY := server.cursor.Y()
	nLeft := server.grabGeobox.X
	nRight := server.grabGeobox.X + server.grabGeobox.Width
	nTop := server.grabGeobox.Y
	nBottom := server.grabGeobox.Y + server.grabGeobox.Height

	if server.resizeEdges&wlroots.EdgeTop != 0 {
		nTop = int(borderY)
		if nTop >= nBottom {
			nTop = nBottom - 1
		}
	} else if server.resizeEdges&wlroots.EdgeBottom != 0 {
		nBottom = int(borderY)
		if nBottom <= nTop {
			nBottom = nTop + 1
		}
	}

	if server.resizeEdges&wlroots.EdgeLeft != 0 {
		nLeft = int(borderX)
		if nLeft >= nRight {
			nLeft = nRight - 1
		}
	} else if server.resizeEdges&wlroots.EdgeRight != 0 {
		nRight = int(borderX)
		if nRight <= nLeft {
			nRight = nLeft + 1
		}
	}

	c.SetPositionGlobal(nLeft, nTop)
	c.SetSize(nRight-nLeft, nBottom-nTop)
}

func (server *Server) handleSetCursorRequest(client wlroots.SeatClient, surface wlroots.Surface, _ uint32, hotspotX int32, hotspotY int32) {
	/* This event is raised by the seat when a client provides a cursor image */

	focusedClient := server.seat.PointerState().FocusedClient()

	/* This can be sent by any client, so check that this one actually has
	 * pointer focus first. */
	if focusedClient == client {
		server.cursor.SetSurface(surface, hotspotX, hotspotY)
	}
}

func (server *Server) resetCursorMode() {
	/* Reset the cursor mode to passthrough. */
	server.cursorMode = CursorModePassThrough
	server.grabbedWindow = nil
	server.wm.StartGrab(nil)
}

func (server *Server) handleCursorButton(_ wlroots.InputDevice, time uint32, button uint32, state wlroots.ButtonState) {
	/* This event is forwarded by the cursor when a pointer emits a button
	 * event. */

	/* Notify the client with pointer focus that a button press has occurred */
	server.seat.NotifyPointerButton(time, button, state)

	if state == wlroots.ButtonStateReleased {
		/* If you released any buttons, we exit interactive move/resize mode. */
		server.resetCursorMode()
	} else {
		win, _, _, _ := server.windowAt(server.cursor.X(), server.cursor.Y())
		if win != nil {
			/* Focus that client if the button was _pressed_ */
			win.toplevel.Focus()
		}
	}
}

func (server *Server) handleCursorAxis(_ wlroots.InputDevice, time uint32, source wlroots.AxisSource, orientation wlroots.AxisOrientation, delta float64, deltaDiscrete int32) {
	/* Forwarded by the cursor when a pointer emits an axis event, for example
	 * when you move the scroll wheel. */
	server.seat.NotifyPointerAxis(time, orientation, delta, deltaDiscrete, source)
}

func (server *Server) handleCursorFrame() {
	/* Frame events are sent after regular pointer events to group multiple
	 * events together. */
	server.seat.NotifyPointerFrame()
}

func nextLayoutMode(mode wm.LayoutMode) wm.LayoutMode {
	switch mode {
	case wm.LayoutFloating:
		return wm.LayoutMaster
	case wm.LayoutMaster:
		return wm.LayoutBSP
	default:
		return wm.LayoutFloating
	}
}

func (server *Server) handleKeyBinding(sym xkb.KeySym) bool {
	/*
	 * Here we handle compositor keybindings. This is when the compositor is
	 * processing keys, rather than passing them on to the client for its own
	 * processing. The repl exposes the same operations with arguments.
	 *
	 * This function assumes Alt is held down.
	 */
	out := server.wm.FocusedOutput()
	var c *wm.Container
	if server.focusedWindow != nil {
		c = server.focusedWindow.toplevel.Container()
	}

	switch sym {
	case xkb.KeySymEscape:
		server.display.Terminate()
	case xkb.KeySymF1:
		/* Cycle within the focused container's window stack. */
		if c != nil {
			c.FocusIndex(1)
		}
	case xkb.KeySymF2:
		if c != nil {
			c.SetFloating(!c.Floating())
		}
	case xkb.KeySymF3:
		if c != nil {
			c.SetMaximized(!c.Maximized())
		}
	case xkb.KeySymF4:
		if c != nil {
			c.SetFullscreen(!c.Fullscreen())
		}
	case xkb.KeySymF5:
		if c != nil {
			c.SetMinimized(true)
		}
	case xkb.KeySymF6:
		/* Keyboard cycling wraps within the general workspaces, the
		 * higher ones stay reachable through the repl. */
		ws := out.State().ActiveWorkspace - 1
		if ws < 1 {
			ws = wm.MaxGeneralWorkspace
		}
		out.ViewWorkspace(ws)
	case xkb.KeySymF7:
		ws := out.State().ActiveWorkspace + 1
		if ws > wm.MaxGeneralWorkspace {
			ws = 1
		}
		out.ViewWorkspace(ws)
	case xkb.KeySymF8:
		ws := out.State().ActiveWorkspace
		out.SetLayoutMode(ws, nextLayoutMode(out.State().TagAt(ws).LayoutMode))
	default:
		return false
	}
	return true
}

func (server *Server) handleNewXDGSurface(xdgSurface wlroots.XDGSurface) {
	/* This event is raised when wlr_xdg_shell receives a new xdg xdgSurface from a
	 * client, either a toplevel (application window) or popup. */

	logrus.WithField("surface", xdgSurface).Debugln("new surface inbound")

	if xdgSurface.Role() == wlroots.XDGSurfaceRolePopup {
		parent := xdgSurface.Popup().Parent()
		if parent.Nil() {
			logrus.WithField("surface", xdgSurface).Fatalln("xdgSurface popup parent is nil")
		}
		xdgSurface.SetData(parent.XDGSurface().SceneTree().NewXDGSurface(xdgSurface))
		return
	}
	if xdgSurface.Role() != wlroots.XDGSurfaceRoleTopLevel {
		logrus.WithFields(logrus.Fields{
			"surface": xdgSurface,
			"role":    xdgSurface.Role(),
		}).Fatalln("xdgSurface role is not XDGSurfaceRoleTopLevel")
	}

	tree := server.scene.Tree().NewXDGSurface(xdgSurface.TopLevel().Base())
	xdgSurface.SetData(tree)

	win := &xdgWindow{
		server:   server,
		surface:  xdgSurface,
		topLevel: xdgSurface.TopLevel(),
		tree:     tree,
	}
	win.toplevel = wm.NewToplevel(server.wm, win)
	server.windows = append(server.windows, win)

	xdgSurface.OnMap(func(wlroots.XDGSurface) {
		win.toplevel.HandleMap()
		/* The map settled which container owns the surface, bind the
		 * scene nodes now. */
		server.graph.adopt(win.toplevel.Container())
	})
	xdgSurface.OnUnmap(func(wlroots.XDGSurface) {
		win.toplevel.HandleUnmap()
		if server.grabbedWindow == win {
			server.resetCursorMode()
		}
	})
	xdgSurface.OnDestroy(func(wlroots.XDGSurface) {
		win.toplevel.HandleDestroy()
		server.removeWindow(win)
	})

	toplevel := xdgSurface.TopLevel()
	toplevel.OnRequestMove(func(client wlroots.SeatClient, serial uint32) {
		server.beginInteractive(win, CursorModeMove, 0)
	})
	toplevel.OnRequestResize(func(client wlroots.SeatClient, serial uint32, edges wlroots.Edges) {
		server.beginInteractive(win, CursorModeResize, edges)
	})
}

// interactiveGrab ties the cursor grab into the management core so an
// unmap mid-drag cancels it.
type interactiveGrab struct {
	server *Server
	win    *xdgWindow
}

func (g *interactiveGrab) Toplevel() *wm.Toplevel {
	return g.win.toplevel
}

func (g *interactiveGrab) Stop() {
	if g.server.grabbedWindow == g.win {
		g.server.cursorMode = CursorModePassThrough
		g.server.grabbedWindow = nil
	}
}

func (server *Server) beginInteractive(win *xdgWindow, mode CursorMode, edges wlroots.Edges) {
	/* Sets up an interactive move or resize operation. The compositor
	 * consumes pointer events itself for the duration. */
	if win.surface.Surface() != server.seat.PointerState().FocusedSurface() {
		/* Deny move/resize requests from unfocused clients. */
		return
	}
	c := win.toplevel.Container()
	if c == nil || c.ConfigureLocked() {
		/* Fullscreen and maximized containers keep their geometry. */
		return
	}
	server.grabbedWindow = win
	server.cursorMode = mode
	server.wm.StartGrab(&interactiveGrab{server: server, win: win})

	box := c.Box()
	if mode == CursorModeMove {
		server.grabX = server.cursor.X() - float64(box.X)
		server.grabY = server.cursor.Y() - float64(box.Y)
	} else {
		server.grabGeobox = box
		server.grabX = server.cursor.X()
		server.grabY = server.cursor.Y()
		server.resizeEdges = edges
	}
}

func (server *Server) GetOutputs() []*wlroots.Output {
	return server.outputs
}

func NewServer(conf *config.Config) (server *Server, err error) {
	server = &Server{conf: conf}

	/* Window management lives in the wm package behind interfaces; the
	 * adapters in scene.go are the only wlroots-aware pieces it touches. */
	server.graph = newSceneGraph()
	server.tasks = newTaskRegistry()
	server.wm = wm.NewServer(server.graph, server.tasks, wm.Settings{
		BorderWidth:       conf.BorderWidth,
		BorderRotation:    conf.BorderRotation,
		DefaultGaps:       conf.UselessGaps,
		DefaultDecoration: decorationMode(conf.Decoration),
		TasklistShowAll:   conf.TasklistShowAll,
	})
	server.wm.RegisterEngine(wm.LayoutMaster, tiler.NewMaster())
	server.wm.RegisterEngine(wm.LayoutBSP, tiler.NewBSP())
	server.wmOutputs = map[string]*wm.Output{}

	server.wm.Bus.Connect(wm.EventContainerDestroy, func(args ...any) {
		if c, ok := args[0].(*wm.Container); ok {
			server.graph.forget(c)
		}
	})

	/* The Wayland display is managed by libwayland. It handles accepting
	 * clients from the Unix socket, manging Wayland globals, and so on. */
	server.display = wlroots.NewDisplay()

	/* The backend abstracts the underlying input and output hardware. The
	 * autocreate option will choose the most suitable backend based on the
	 * current environment. */
	server.backend, err = server.display.BackendAutocreate()
	if err != nil {
		return nil, err
	}

	/* Autocreates a renderer, either Pixman, GLES2 or Vulkan for us. The user
	 * can also specify a renderer using the WLR_RENDERER env var. */
	server.renderer, err = server.backend.RendererAutoCreate()
	if err != nil {
		return nil, err
	}
	server.renderer.InitDisplay(server.display)

	/* The allocator is the bridge between the renderer and the backend. It
	 * handles the buffer creation, allowing wlroots to render onto the
	 * screen */
	server.allocator, err = server.backend.AllocatorAutocreate(server.renderer)
	if err != nil {
		return nil, err
	}

	/* The compositor is necessary for clients to allocate surfaces, the
	 * subcompositor allows to assign the role of subsurfaces to surfaces
	 * and the data device manager handles the clipboard. */
	server.display.CompositorCreate(5, server.renderer)
	server.display.SubCompositorCreate()
	server.display.DataDeviceManagerCreate()

	/* Creates an output layout, a wlroots utility for working with an
	 * arrangement of screens in a physical layout. */
	server.outputLayout = wlroots.NewOutputLayout()
	server.backend.OnNewOutput(server.handleNewOutput)

	/* Create a scene graph. This is a wlroots abstraction that handles all
	 * rendering and damage tracking. */
	server.scene = wlroots.NewScene()
	server.sceneLayout = server.scene.AttachOutputLayout(server.outputLayout)

	/* Set up xdg-shell version 3. The xdg-shell is a Wayland protocol which is
	 * used for application windows. */
	server.xdgShell = server.display.XDGShellCreate(3)
	server.xdgShell.OnNewSurface(server.handleNewXDGSurface)

	/* Creates a cursor, a wlroots utility for tracking the cursor image shown
	 * on screen, and an xcursor manager that loads up Xcursor themes at all
	 * scale factors. */
	server.cursor = wlroots.NewCursor()
	server.cursor.AttachOutputLayout(server.outputLayout)
	server.cursorMgr = wlroots.NewXCursorManager("", 24)

	server.cursorMode = CursorModePassThrough
	server.cursor.OnMotion(server.handleCursorMotion)
	server.cursor.OnMotionAbsolute(server.handleCursorMotionAbsolute)
	server.cursor.OnButton(server.handleCursorButton)
	server.cursor.OnAxis(server.handleCursorAxis)
	server.cursor.OnFrame(server.handleCursorFrame)
	server.cursorMgr.Load(1)

	/* Configures a seat, which is a single "seat" at which a user sits and
	 * operates the computer. We also rig up a listener to let us know when
	 * new input devices are available on the backend. */
	server.backend.OnNewInput(server.handleNewInput)
	server.seat = server.display.SeatCreate("seat0")
	server.seat.OnSetCursorRequest(server.handleSetCursorRequest)

	return
}

func (server *Server) Start() error {

	/* Add a Unix socket to the Wayland display. */
	socket, err := server.display.AddSocketAuto()
	if err != nil {
		server.backend.Destroy()
		return err
	}
	logrus.WithField("socket", socket).Debugln("got wl socket")
	/* Start the backend. This will enumerate outputs and inputs, become the DRM
	 * master, etc */
	if err = server.backend.Start(); err != nil {
		server.backend.Destroy()
		server.display.Destroy()
		return err
	}

	if res := os.Getenv("WAYLAND_DISPLAY"); res != "" {
		logrus.WithField("WAYLAND_DISPLAY", res).Debugln("Wayland display already set, overwriting")
	}
	if err = os.Setenv("WAYLAND_DISPLAY", socket); err != nil {
		return err
	}

	logrus.WithField("WAYLAND_DISPLAY", socket).Infoln("Running Wayland compositor")
	return err
}

func (server *Server) Run() error {

	/* Run the Wayland event loop. This does not return until you exit the
	 * compositor. */
	server.display.Run()

	/* Once s.display.Run() returns, we destroy all clients then shut down the
	 * server. */
	server.display.DestroyClients()
	server.scene.Tree().Node().Destroy()
	server.cursorMgr.Destroy()
	server.outputLayout.Destroy()
	server.display.Destroy()
	return nil
}

func (server *Server) Stop() {
	server.display.Terminate()
}
