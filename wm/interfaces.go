package wm

// DecorationMode selects who draws window decorations for a toplevel.
type DecorationMode int

const (
	DecorationModeNone   DecorationMode = 0
	DecorationModeClient DecorationMode = 1
	DecorationModeServer DecorationMode = 2

	// Policy values. Resolved to client/server per toplevel state.
	DecorationModeClientPreferred  DecorationMode = 100
	DecorationModeClientOnFloating DecorationMode = 101
)

// Surface is the protocol-side view of one client window. Implemented
// by the display-server glue over a real xdg toplevel, and by fakes in
// tests. All setters are request-style: the effect lands on a later
// commit.
type Surface interface {
	Title() string
	AppID() string
	Parent() Surface

	// Geometry reports the current committed surface geometry.
	Geometry() Box
	MinSize() (w, h int)
	MaxSize() (w, h int)

	RequestedFullscreen() bool
	RequestedMaximized() bool
	RequestedMinimized() bool
	PreferredDecoration() DecorationMode

	// SetSize returns the configure serial the client must ack.
	SetSize(w, h int) uint32
	SetActivated(bool)
	SetFullscreen(bool)
	SetMaximized(bool)
	SetSuspended(bool)
	SetTiled(bool)
	SetDecoration(DecorationMode)
	SendClose()
}

// SceneNode is a thin handle into the render scene graph. Entities own
// their node reference, never the other way round.
type SceneNode interface {
	SetPosition(x, y int)
	SetEnabled(bool)
	RaiseToTop()
	LowerToBottom()
	Destroy()
}

// Scene creates render nodes for entities. The fallback output and
// tests use a no-op implementation.
type Scene interface {
	NewContainerNode() SceneNode
	NewSurfaceNode(s Surface) SceneNode
}

// ForeignHandle publishes a toplevel's identity and state to external
// tools (task bars, switchers). Requests coming back from those tools
// arrive through the Toplevel's HandleForeign* methods.
type ForeignHandle interface {
	SetTitle(string)
	SetAppID(string)
	SetMaximized(bool)
	SetMinimized(bool)
	SetFullscreen(bool)
	SetActivated(bool)
	OutputEnter(name string)
	OutputLeave(name string)
	Destroy()
}

// ForeignRegistrar hands out foreign handles on map. Both the legacy
// and the ext variant share the handle interface; either may be nil
// when the protocol is not advertised.
type ForeignRegistrar interface {
	Register(t *Toplevel) (legacy, ext ForeignHandle)
}

// TilingNode is the engine's handle for one tiled container.
// Fullscreen and maximize disable the node instead of removing it so
// the spot in the layout survives.
type TilingNode interface {
	SetEnabled(bool)
	Enabled() bool
}

// TilingEngine is the layout collaborator (BSP or master-stack). The
// engine calls back into Container geometry setters only.
type TilingEngine interface {
	Insert(c *Container, workspace int) TilingNode
	Remove(c *Container, detachOnly bool)
	UpdateRoot(o *Output, workspace int)
	ArrangeUpdate(o *Output)
}

// Grab is an in-flight interactive move or resize. The server stops it
// when its target unmaps mid-drag.
type Grab interface {
	Toplevel() *Toplevel
	Stop()
}
