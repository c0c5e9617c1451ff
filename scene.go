package main

import (
	"github.com/mstarongithub/waytag/wm"
	"github.com/swaywm/go-wlroots/wlroots"
)

/* This file is the seam between the window management core and the
 * wlroots scene graph. The core only ever talks to the wm.Surface,
 * wm.Scene and wm.SceneNode interfaces; everything wlroots-specific
 * stays on this side. */

// xdgWindow adapts one xdg toplevel to wm.Surface.
type xdgWindow struct {
	server   *Server
	surface  wlroots.XDGSurface
	topLevel wlroots.XDGTopLevel
	tree     wlroots.SceneTree

	toplevel *wm.Toplevel

	// The scene tree node is handed out once. Extra surface nodes
	// (the capture mirror) become detached handles, the binding has
	// no way to duplicate a surface into a second tree.
	nodeIssued bool
}

func (w *xdgWindow) Title() string {
	return w.topLevel.Title()
}

func (w *xdgWindow) AppID() string {
	return w.topLevel.AppID()
}

// Parent is nil for every toplevel here. The binding only exposes
// parents on popups, and popups never reach the management core.
func (w *xdgWindow) Parent() wm.Surface {
	return nil
}

func (w *xdgWindow) Geometry() wm.Box {
	box := w.surface.Geometry()
	return wm.Box{X: box.X, Y: box.Y, Width: box.Width, Height: box.Height}
}

// Size hints are not surfaced by the binding, so fixed-size detection
// only ever triggers on parented windows.
func (w *xdgWindow) MinSize() (int, int) { return 0, 0 }
func (w *xdgWindow) MaxSize() (int, int) { return 0, 0 }

func (w *xdgWindow) RequestedFullscreen() bool { return false }
func (w *xdgWindow) RequestedMaximized() bool  { return false }
func (w *xdgWindow) RequestedMinimized() bool  { return false }

func (w *xdgWindow) PreferredDecoration() wm.DecorationMode {
	return wm.DecorationModeNone
}

// SetSize returns 0 because the binding does not report the configure
// serial. The core skips the ack handshake for serial 0.
func (w *xdgWindow) SetSize(width, height int) uint32 {
	w.surface.TopLevelSetSize(uint32(width), uint32(height))
	return 0
}

func (w *xdgWindow) SetActivated(activated bool) {
	w.topLevel.SetActivated(activated)
	if activated {
		/* Keyboard focus follows activation. wlroots keeps track of
		 * the focused surface and routes key events on its own from
		 * here on. */
		w.server.seat.NotifyKeyboardEnter(w.surface.Surface(), w.server.seat.Keyboard())
		w.server.focusedWindow = w
	} else if w.server.focusedWindow == w {
		w.server.focusedWindow = nil
	}
}

/* The binding carries no setters for the states below. The visible
 * effect (geometry, stacking, enablement) is fully covered by the
 * scene nodes the core drives, so these stay empty. */

func (w *xdgWindow) SetFullscreen(bool)              {}
func (w *xdgWindow) SetMaximized(bool)               {}
func (w *xdgWindow) SetSuspended(bool)               {}
func (w *xdgWindow) SetTiled(bool)                   {}
func (w *xdgWindow) SetDecoration(wm.DecorationMode) {}

func (w *xdgWindow) SendClose() {
	w.surface.SendClose()
}

// nodeHandle wraps the wlroots node of one surface tree. Handles past
// the first one for the same window are detached and only track state.
type nodeHandle struct {
	window   *xdgWindow
	group    *groupNode
	detached bool
	x, y     int
}

func (n *nodeHandle) SetPosition(x, y int) {
	n.x, n.y = x, y
	if !n.detached {
		n.window.tree.Node().SetPosition(float64(x), float64(y))
	}
}

func (n *nodeHandle) SetEnabled(enabled bool) {
	if !n.detached {
		n.window.tree.Node().SetEnabled(enabled)
	}
}

func (n *nodeHandle) RaiseToTop() {
	if !n.detached {
		n.window.tree.Node().RaiseToTop()
	}
}

func (n *nodeHandle) LowerToBottom() {
	if !n.detached {
		n.window.tree.Node().LowerToBottom()
	}
}

func (n *nodeHandle) Destroy() {
	if n.group != nil {
		n.group.detach(n)
		n.group = nil
	}
	// The underlying tree dies with the xdg surface itself, wlroots
	// owns that lifecycle. A remap may hand the slot out again.
	if !n.detached {
		n.window.nodeIssued = false
	}
	n.detached = true
}

// groupNode stands in for a container in the scene. The binding has no
// subtree creation, so grouping is emulated by fanning every call out
// to the member surface nodes.
type groupNode struct {
	members []*nodeHandle
	x, y    int
	enabled bool
}

func (g *groupNode) attach(n *nodeHandle) {
	n.group = g
	g.members = append(g.members, n)
	n.SetPosition(g.x, g.y)
}

func (g *groupNode) detach(n *nodeHandle) {
	for i, m := range g.members {
		if m == n {
			g.members = append(g.members[:i], g.members[i+1:]...)
			return
		}
	}
}

func (g *groupNode) SetPosition(x, y int) {
	g.x, g.y = x, y
	for _, m := range g.members {
		m.SetPosition(x, y)
	}
}

func (g *groupNode) SetEnabled(enabled bool) {
	g.enabled = enabled
	for _, m := range g.members {
		m.SetEnabled(enabled)
	}
}

func (g *groupNode) RaiseToTop() {
	for _, m := range g.members {
		m.RaiseToTop()
	}
}

func (g *groupNode) LowerToBottom() {
	for _, m := range g.members {
		m.LowerToBottom()
	}
}

func (g *groupNode) Destroy() {
	for _, m := range g.members {
		m.group = nil
	}
	g.members = nil
}

// sceneGraph implements wm.Scene. Node creation happens mid-map, before
// the core has settled which container owns the surface, so fresh
// surface handles park in pending until adopt runs after the map.
type sceneGraph struct {
	pending   []*nodeHandle
	newGroups []*groupNode
	groups    map[uint64]*groupNode
}

func newSceneGraph() *sceneGraph {
	return &sceneGraph{groups: map[uint64]*groupNode{}}
}

func (g *sceneGraph) NewContainerNode() wm.SceneNode {
	grp := &groupNode{enabled: true}
	g.newGroups = append(g.newGroups, grp)
	return grp
}

func (g *sceneGraph) NewSurfaceNode(s wm.Surface) wm.SceneNode {
	win, ok := s.(*xdgWindow)
	if !ok {
		return &groupNode{}
	}
	n := &nodeHandle{window: win, detached: win.nodeIssued}
	win.nodeIssued = true
	g.pending = append(g.pending, n)
	return n
}

// adopt binds the surface nodes of the last map to their container's
// group. The first group created during that map is the container
// node, any further ones (the border) stay standalone.
func (g *sceneGraph) adopt(c *wm.Container) {
	if c == nil {
		g.pending = nil
		g.newGroups = nil
		return
	}
	grp, ok := g.groups[c.ID()]
	if !ok && len(g.newGroups) > 0 {
		grp = g.newGroups[0]
		g.groups[c.ID()] = grp
	}
	g.newGroups = nil
	if grp == nil {
		g.pending = nil
		return
	}
	for _, n := range g.pending {
		if !n.detached {
			grp.attach(n)
		}
	}
	g.pending = nil
}

func (g *sceneGraph) forget(c *wm.Container) {
	delete(g.groups, c.ID())
}
