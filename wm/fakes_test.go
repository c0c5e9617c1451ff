package wm

// Test doubles for the collaborator interfaces. The display-server
// glue implements the real ones over wlroots.

type fakeSurface struct {
	title, appID string
	parent       Surface
	geometry     Box
	minW, minH   int
	maxW, maxH   int

	reqFullscreen bool
	reqMaximized  bool
	reqMinimized  bool
	preferredDeco DecorationMode

	nextSerial uint32
	lastW      int
	lastH      int

	activated  bool
	fullscreen bool
	maximized  bool
	suspended  bool
	tiled      bool
	decoration DecorationMode
	closed     bool
}

func (f *fakeSurface) Title() string   { return f.title }
func (f *fakeSurface) AppID() string   { return f.appID }
func (f *fakeSurface) Parent() Surface { return f.parent }
func (f *fakeSurface) Geometry() Box   { return f.geometry }
func (f *fakeSurface) MinSize() (int, int) {
	return f.minW, f.minH
}
func (f *fakeSurface) MaxSize() (int, int) {
	return f.maxW, f.maxH
}
func (f *fakeSurface) RequestedFullscreen() bool { return f.reqFullscreen }
func (f *fakeSurface) RequestedMaximized() bool  { return f.reqMaximized }
func (f *fakeSurface) RequestedMinimized() bool  { return f.reqMinimized }
func (f *fakeSurface) PreferredDecoration() DecorationMode {
	return f.preferredDeco
}
func (f *fakeSurface) SetSize(w, h int) uint32 {
	f.lastW, f.lastH = w, h
	f.nextSerial++
	return f.nextSerial
}
func (f *fakeSurface) SetActivated(v bool)  { f.activated = v }
func (f *fakeSurface) SetFullscreen(v bool) { f.fullscreen = v }
func (f *fakeSurface) SetMaximized(v bool)  { f.maximized = v }
func (f *fakeSurface) SetSuspended(v bool)  { f.suspended = v }
func (f *fakeSurface) SetTiled(v bool)      { f.tiled = v }
func (f *fakeSurface) SetDecoration(m DecorationMode) {
	f.decoration = m
}
func (f *fakeSurface) SendClose() { f.closed = true }

type fakeNode struct {
	x, y      int
	enabled   bool
	raised    int
	lowered   int
	destroyed bool
}

func (f *fakeNode) SetPosition(x, y int) { f.x, f.y = x, y }
func (f *fakeNode) SetEnabled(v bool)    { f.enabled = v }
func (f *fakeNode) RaiseToTop()          { f.raised++ }
func (f *fakeNode) LowerToBottom()       { f.lowered++ }
func (f *fakeNode) Destroy()             { f.destroyed = true }

type fakeScene struct{}

func (fakeScene) NewContainerNode() SceneNode {
	return &fakeNode{enabled: true}
}

func (fakeScene) NewSurfaceNode(Surface) SceneNode {
	return &fakeNode{enabled: true}
}

type fakeForeignHandle struct {
	title, appID string
	maximized    bool
	minimized    bool
	fullscreen   bool
	activated    bool
	outputs      map[string]bool
	destroyed    bool
}

func newFakeForeignHandle() *fakeForeignHandle {
	return &fakeForeignHandle{outputs: map[string]bool{}}
}

func (f *fakeForeignHandle) SetTitle(s string)       { f.title = s }
func (f *fakeForeignHandle) SetAppID(s string)       { f.appID = s }
func (f *fakeForeignHandle) SetMaximized(v bool)     { f.maximized = v }
func (f *fakeForeignHandle) SetMinimized(v bool)     { f.minimized = v }
func (f *fakeForeignHandle) SetFullscreen(v bool)    { f.fullscreen = v }
func (f *fakeForeignHandle) SetActivated(v bool)     { f.activated = v }
func (f *fakeForeignHandle) OutputEnter(name string) { f.outputs[name] = true }
func (f *fakeForeignHandle) OutputLeave(name string) { f.outputs[name] = false }
func (f *fakeForeignHandle) Destroy()                { f.destroyed = true }

type fakeRegistrar struct {
	handles []*fakeForeignHandle
}

func (r *fakeRegistrar) Register(t *Toplevel) (ForeignHandle, ForeignHandle) {
	legacy := newFakeForeignHandle()
	ext := newFakeForeignHandle()
	r.handles = append(r.handles, legacy, ext)
	return legacy, ext
}

type fakeTilingNode struct {
	container *Container
	enabled   bool
}

func (n *fakeTilingNode) SetEnabled(v bool) { n.enabled = v }
func (n *fakeTilingNode) Enabled() bool     { return n.enabled }

type fakeEngine struct {
	inserted []*Container
	removed  []*Container
	arranged int
	nodes    map[*Container]*fakeTilingNode
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{nodes: map[*Container]*fakeTilingNode{}}
}

func (e *fakeEngine) Insert(c *Container, workspace int) TilingNode {
	n := &fakeTilingNode{container: c, enabled: true}
	e.nodes[c] = n
	e.inserted = append(e.inserted, c)
	return n
}

func (e *fakeEngine) Remove(c *Container, detachOnly bool) {
	delete(e.nodes, c)
	e.removed = append(e.removed, c)
}

func (e *fakeEngine) UpdateRoot(o *Output, workspace int) {
	e.arranged++
}

func (e *fakeEngine) ArrangeUpdate(o *Output) {
	e.arranged++
}

type fakeGrab struct {
	target  *Toplevel
	stopped bool
}

func (g *fakeGrab) Toplevel() *Toplevel { return g.target }
func (g *fakeGrab) Stop()               { g.stopped = true }

func newTestServer() *Server {
	return NewServer(fakeScene{}, &fakeRegistrar{}, Settings{
		BorderWidth:       2,
		DefaultGaps:       4,
		DefaultDecoration: DecorationModeServer,
	})
}

// newTestOutput adds a real output so mapping does not land on the
// fallback.
func newTestOutput(s *Server, name string, box Box) *Output {
	o := NewOutput(s, name, box)
	o.Focus()
	return o
}

func mapToplevel(s *Server, surf *fakeSurface) *Toplevel {
	t := NewToplevel(s, surf)
	t.HandleMap()
	return t
}
