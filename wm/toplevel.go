package wm

import (
	"github.com/sirupsen/logrus"
)

// Toplevel wraps one client surface. It is created unmapped, joins a
// container on map, and is destroyed on the surface-destroy event,
// which may arrive with or without a prior unmap.
type Toplevel struct {
	id        uint64
	server    *Server
	surface   Surface
	container *Container

	mapped      bool
	hidden      bool
	urgent      bool
	tearingHint bool

	decoration DecorationMode

	// resizeSerial is the configure serial an outstanding resize
	// request waits on. Valid only while resizePending.
	resizeSerial  uint32
	resizePending bool

	xdgTag  string
	xdgDesc string

	foreignLegacy ForeignHandle
	foreignExt    ForeignHandle
	captureNode   SceneNode

	node SceneNode
}

// NewToplevel registers a freshly created, still unmapped surface.
func NewToplevel(s *Server, surface Surface) *Toplevel {
	t := &Toplevel{
		id:         s.newID(),
		server:     s,
		surface:    surface,
		decoration: s.Settings.DefaultDecoration,
	}
	s.toplevels = append(s.toplevels, t)
	logrus.WithFields(logrus.Fields{
		"toplevel": t.id,
		"app_id":   surface.AppID(),
	}).Debugln("new toplevel")
	s.Bus.Emit(EventClientNew, t)
	return t
}

func (t *Toplevel) ID() uint64    { return t.id }
func (t *Toplevel) Title() string { return t.surface.Title() }
func (t *Toplevel) AppID() string { return t.surface.AppID() }
func (t *Toplevel) Mapped() bool  { return t.mapped }
func (t *Toplevel) Urgent() bool  { return t.urgent }
func (t *Toplevel) Container() *Container {
	return t.container
}
func (t *Toplevel) Surface() Surface { return t.surface }

// Output resolves through the owning container, nil while unmapped.
func (t *Toplevel) Output() *Output {
	if t.container == nil {
		return nil
	}
	return t.container.output
}

// shouldFloat is the fixed-size-window heuristic: child windows and
// windows declaring equal min/max extent float.
func (t *Toplevel) shouldFloat() bool {
	if t.surface.Parent() != nil {
		return true
	}
	minW, minH := t.surface.MinSize()
	maxW, maxH := t.surface.MaxSize()
	if minW > 0 && minW == maxW {
		return true
	}
	if minH > 0 && minH == maxH {
		return true
	}
	return false
}

// HandleMap wires the toplevel into a container. An insert-marked
// container swallows it; otherwise a fresh one is created on the
// focused output.
func (t *Toplevel) HandleMap() {
	if t.mapped {
		return
	}
	t.mapped = true
	t.node = t.server.scene.NewSurfaceNode(t.surface)
	t.captureNode = t.server.scene.NewSurfaceNode(t.surface)

	if marked := t.server.takeInsertMarked(); marked != nil {
		marked.insertToplevel(t)
	} else {
		newContainer(t.server, t)
	}
	c := t.container

	if t.server.foreign != nil {
		t.foreignLegacy, t.foreignExt = t.server.foreign.Register(t)
		t.publishForeignTitle()
		t.publishForeignState()
		t.publishForeignOutput(c.Visible())
	}

	t.decideInitialState()
	t.applyDecoration()

	// Second pass: geometry is known only after the container and
	// scene finished wiring, so re-apply the tiled insertion now.
	if !c.Floating() && !c.ConfigureLocked() && !c.Minimized() && c.tilingNode == nil {
		if engine := t.server.engineFor(c.output.state.TagAt(c.workspace).LayoutMode); engine != nil {
			c.tilingNode = engine.Insert(c, c.workspace)
		}
	}

	if t.urgent {
		// Urgency latched while unmapped surfaces now.
		t.server.Bus.Emit(clientPropEvent("urgent"), t)
	}

	t.server.Bus.Emit(EventClientMap, t)
	t.Focus()
	t.server.scheduleTransaction(c.output, c.workspace)
}

// decideInitialState evaluates the map-time policy once, in priority
// order, first match wins.
func (t *Toplevel) decideInitialState() {
	c := t.container
	switch {
	case t.surface.RequestedFullscreen():
		c.SetFullscreen(true)
	case t.surface.RequestedMaximized():
		c.SetMaximized(true)
	case t.surface.RequestedMinimized():
		c.SetMinimized(true)
	case t.shouldFloat():
		c.flags |= flagFloating
		c.ToCenter()
		t.surface.SetTiled(false)
	default:
		t.surface.SetTiled(true)
		if engine := t.server.engineFor(c.output.state.TagAt(c.workspace).LayoutMode); engine != nil {
			c.tilingNode = engine.Insert(c, c.workspace)
		}
	}
}

// HandleUnmap tears down mapped-lifetime state. Foreign handles and
// the capture scene go first since they read container geometry; the
// container removal runs last.
func (t *Toplevel) HandleUnmap() {
	if !t.mapped {
		return
	}
	t.mapped = false
	t.server.stopGrabFor(t)

	t.destroyForeignHandles()
	if t.captureNode != nil {
		t.captureNode.Destroy()
		t.captureNode = nil
	}
	if t.node != nil {
		t.node.Destroy()
		t.node = nil
	}
	if t.resizePending {
		t.resizePending = false
		t.server.resizeAcked()
	}
	if t.server.activeToplevel == t {
		t.server.activeToplevel = nil
	}

	if c := t.container; c != nil {
		o := c.output
		ws := c.workspace
		c.removeToplevel(t, false)
		o.focusNewest()
		t.server.scheduleTransaction(o, ws)
	}
	t.server.Bus.Emit(EventClientUnmap, t)
}

// HandleDestroy is safe in any state. A client crashing while mapped
// never sent an unmap, so the unmap cleanup runs here too.
func (t *Toplevel) HandleDestroy() {
	if t.mapped {
		t.HandleUnmap()
	}
	t.xdgTag = ""
	t.xdgDesc = ""
	t.server.removeToplevel(t)
	logrus.WithField("toplevel", t.id).Debugln("toplevel destroyed")
	t.server.Bus.Emit(EventClientDestroy, t)
}

// requestSize sends an asynchronous resize to the surface and records
// the serial to wait for. Re-requesting while one is outstanding only
// moves the target serial.
func (t *Toplevel) requestSize(w, h int) {
	serial := t.surface.SetSize(w, h)
	if serial == 0 {
		return
	}
	t.resizeSerial = serial
	if !t.resizePending {
		t.resizePending = true
		t.server.trackResize()
	}
}

// HandleCommit closes the resize handshake once the acknowledged
// configure serial reaches the recorded one.
func (t *Toplevel) HandleCommit(ackedSerial uint32) {
	if t.resizePending && ackedSerial >= t.resizeSerial {
		t.resizePending = false
		t.server.resizeAcked()
	}
}

// Focus gives this toplevel keyboard focus and promotes its container
// in the output focus stack.
func (t *Toplevel) Focus() {
	if !t.mapped || t.container == nil {
		return
	}
	prev := t.server.activeToplevel
	if prev == t {
		return
	}
	if prev != nil {
		prev.surface.SetActivated(false)
		prev.publishForeignState()
	}
	t.server.activeToplevel = t
	t.surface.SetActivated(true)
	t.urgent = false
	t.container.output.promoteFocus(t.container)
	t.container.output.Focus()
	t.publishForeignState()
}

// JumpTo focuses the toplevel from anywhere. When it is not visible,
// merge adds its tag to the output's view, otherwise the view switches
// to its workspace.
func (t *Toplevel) JumpTo(merge bool) {
	if t.container == nil {
		return
	}
	c := t.container
	if c.Minimized() {
		c.SetMinimized(false)
	}
	if !c.Visible() {
		if merge {
			c.output.SetActiveTag(c.output.state.ActiveTag | c.tag)
		} else {
			c.output.ViewWorkspace(c.workspace)
		}
	}
	c.Raise()
	t.Focus()
}

// Swap exchanges this toplevel with other across their containers.
// Both containers are held open while momentarily empty and each
// swapped-in toplevel lands at the front of its new stack. One
// client::swap event fires, source first.
func (t *Toplevel) Swap(other *Toplevel) {
	if other == nil || other == t {
		return
	}
	src := t.container
	dst := other.container
	if src == nil || dst == nil || src == dst {
		return
	}
	src.removeToplevel(t, true)
	dst.removeToplevel(other, true)
	src.insertToplevel(other)
	dst.insertToplevel(t)
	src.resizeMembers()
	dst.resizeMembers()
	t.publishForeignOutput(dst.Visible())
	other.publishForeignOutput(src.Visible())
	t.server.Bus.Emit(EventClientSwap, t, other)
	t.server.scheduleTransaction(src.output, src.workspace)
	t.server.scheduleTransaction(dst.output, dst.workspace)
}

// HandleRequestActivate is the xdg-activation path: focused clients
// stay put, everything else turns urgent (latched while unmapped).
func (t *Toplevel) HandleRequestActivate() {
	if t.server.activeToplevel == t {
		return
	}
	t.urgent = true
	if t.mapped {
		t.server.Bus.Emit(clientPropEvent("urgent"), t)
	}
}

func (t *Toplevel) HandleRequestMaximize(maximized bool) {
	if t.container == nil {
		return
	}
	t.container.SetMaximized(maximized)
}

func (t *Toplevel) HandleRequestFullscreen(fullscreen bool) {
	if t.container == nil {
		return
	}
	t.container.SetFullscreen(fullscreen)
}

func (t *Toplevel) HandleRequestMinimize(minimized bool) {
	if t.container == nil {
		return
	}
	t.container.SetMinimized(minimized)
}

// HandleTitleChange republishes identity to the foreign handles.
func (t *Toplevel) HandleTitleChange() {
	t.publishForeignTitle()
	t.server.Bus.Emit(clientPropEvent("title"), t)
}

func (t *Toplevel) HandleAppIDChange() {
	t.publishForeignTitle()
	t.server.Bus.Emit(clientPropEvent("app_id"), t)
}

// Foreign-handle requests coming back from task bars and switchers.

func (t *Toplevel) HandleForeignMaximize(maximized bool) {
	t.HandleRequestMaximize(maximized)
}

func (t *Toplevel) HandleForeignMinimize(minimized bool) {
	t.HandleRequestMinimize(minimized)
}

func (t *Toplevel) HandleForeignFullscreen(fullscreen bool) {
	t.HandleRequestFullscreen(fullscreen)
}

func (t *Toplevel) HandleForeignActivate() {
	t.JumpTo(false)
}

func (t *Toplevel) HandleForeignClose() {
	t.surface.SendClose()
}

func (t *Toplevel) HandleForeignDestroy() {
	t.destroyForeignHandles()
}

func (t *Toplevel) destroyForeignHandles() {
	if t.foreignLegacy != nil {
		t.foreignLegacy.Destroy()
		t.foreignLegacy = nil
	}
	if t.foreignExt != nil {
		t.foreignExt.Destroy()
		t.foreignExt = nil
	}
}

func (t *Toplevel) publishForeignTitle() {
	for _, h := range []ForeignHandle{t.foreignLegacy, t.foreignExt} {
		if h == nil {
			continue
		}
		h.SetTitle(t.surface.Title())
		h.SetAppID(t.surface.AppID())
	}
}

func (t *Toplevel) publishForeignState() {
	c := t.container
	if c == nil {
		return
	}
	for _, h := range []ForeignHandle{t.foreignLegacy, t.foreignExt} {
		if h == nil {
			continue
		}
		h.SetMaximized(c.Maximized())
		h.SetMinimized(c.Minimized())
		h.SetFullscreen(c.Fullscreen())
		h.SetActivated(t.server.activeToplevel == t)
	}
}

// publishForeignOutput reports tag visibility to task bars. With
// tasklist_show_all set the handles always claim membership.
func (t *Toplevel) publishForeignOutput(visible bool) {
	if t.container == nil {
		return
	}
	if t.server.Settings.TasklistShowAll {
		visible = true
	}
	name := t.container.output.Name()
	for _, h := range []ForeignHandle{t.foreignLegacy, t.foreignExt} {
		if h == nil {
			continue
		}
		if visible {
			h.OutputEnter(name)
		} else {
			h.OutputLeave(name)
		}
	}
}

// setHidden suspends back-of-stack members. They keep receiving
// geometry so switching fronts is seamless.
func (t *Toplevel) setHidden(hidden bool) {
	if t.hidden == hidden {
		return
	}
	t.hidden = hidden
	t.surface.SetSuspended(hidden)
	if t.node != nil {
		t.node.SetEnabled(!hidden)
	}
}

// SetDecorationMode changes the decoration policy and re-resolves it.
func (t *Toplevel) SetDecorationMode(mode DecorationMode) {
	if t.decoration == mode {
		return
	}
	t.decoration = mode
	t.applyDecoration()
	t.server.Bus.Emit(clientPropEvent("decoration"), t)
}

// applyDecoration resolves policy modes against the current state and
// pushes the concrete mode to the surface.
func (t *Toplevel) applyDecoration() {
	mode := t.decoration
	switch mode {
	case DecorationModeClientPreferred:
		mode = t.surface.PreferredDecoration()
		if mode != DecorationModeClient && mode != DecorationModeServer {
			mode = DecorationModeServer
		}
	case DecorationModeClientOnFloating:
		if t.container != nil && t.container.Floating() {
			mode = DecorationModeClient
		} else {
			mode = DecorationModeServer
		}
	}
	t.surface.SetDecoration(mode)
}

func (t *Toplevel) TearingHint() bool {
	return t.tearingHint
}

func (t *Toplevel) SetTearingHint(hint bool) {
	t.tearingHint = hint
}

// XDGTag is client-supplied metadata from the xdg toplevel tag
// protocol, not a workspace tag.
func (t *Toplevel) XDGTag() string { return t.xdgTag }

func (t *Toplevel) SetXDGTag(tag string) {
	if t.xdgTag == tag {
		return
	}
	t.xdgTag = tag
	t.server.Bus.Emit(clientPropEvent("xdg_tag"), t)
}

func (t *Toplevel) XDGDescription() string { return t.xdgDesc }

func (t *Toplevel) SetXDGDescription(desc string) {
	if t.xdgDesc == desc {
		return
	}
	t.xdgDesc = desc
	t.server.Bus.Emit(clientPropEvent("xdg_desc"), t)
}
