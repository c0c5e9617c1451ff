package tiler

import (
	"testing"

	"github.com/mstarongithub/waytag/wm"
)

type nopNode struct {
	enabled bool
}

func (n *nopNode) SetPosition(x, y int) {}
func (n *nopNode) SetEnabled(v bool)    { n.enabled = v }
func (n *nopNode) RaiseToTop()          {}
func (n *nopNode) LowerToBottom()       {}
func (n *nopNode) Destroy()             {}

type nopScene struct{}

func (nopScene) NewContainerNode() wm.SceneNode {
	return &nopNode{enabled: true}
}

func (nopScene) NewSurfaceNode(wm.Surface) wm.SceneNode {
	return &nopNode{enabled: true}
}

type stubSurface struct {
	serial uint32
	w, h   int
}

func (s *stubSurface) Title() string                          { return "" }
func (s *stubSurface) AppID() string                          { return "" }
func (s *stubSurface) Parent() wm.Surface                     { return nil }
func (s *stubSurface) Geometry() wm.Box                       { return wm.Box{Width: s.w, Height: s.h} }
func (s *stubSurface) MinSize() (int, int)                    { return 0, 0 }
func (s *stubSurface) MaxSize() (int, int)                    { return 0, 0 }
func (s *stubSurface) RequestedFullscreen() bool              { return false }
func (s *stubSurface) RequestedMaximized() bool               { return false }
func (s *stubSurface) RequestedMinimized() bool               { return false }
func (s *stubSurface) PreferredDecoration() wm.DecorationMode { return wm.DecorationModeServer }
func (s *stubSurface) SetSize(w, h int) uint32 {
	s.w, s.h = w, h
	s.serial++
	return s.serial
}
func (s *stubSurface) SetActivated(bool)               {}
func (s *stubSurface) SetFullscreen(bool)              {}
func (s *stubSurface) SetMaximized(bool)               {}
func (s *stubSurface) SetSuspended(bool)               {}
func (s *stubSurface) SetTiled(bool)                   {}
func (s *stubSurface) SetDecoration(wm.DecorationMode) {}
func (s *stubSurface) SendClose()                      {}

// tilingHarness wires a server with the engine under test on
// workspace 1 of one 1000x800 output.
func tilingHarness(t *testing.T, mode wm.LayoutMode, engine wm.TilingEngine) (*wm.Server, *wm.Output) {
	t.Helper()
	s := wm.NewServer(nopScene{}, nil, wm.Settings{BorderWidth: 0, DefaultGaps: 0})
	s.RegisterEngine(mode, engine)
	o := wm.NewOutput(s, "TEST-1", wm.Box{Width: 1000, Height: 800})
	o.Focus()
	o.SetLayoutMode(1, mode)
	return s, o
}

func addContainer(s *wm.Server) *wm.Container {
	top := wm.NewToplevel(s, &stubSurface{})
	top.HandleMap()
	return top.Container()
}

func TestBSPSingleContainerFillsWorkspace(t *testing.T) {
	engine := NewBSP()
	s, o := tilingHarness(t, wm.LayoutBSP, engine)

	c := addContainer(s)
	engine.UpdateRoot(o, 1)

	if c.Box() != o.UsableArea() {
		t.Errorf("single container = %+v, want full area %+v", c.Box(), o.UsableArea())
	}
}

func TestBSPSplitsSideBySideThenStacked(t *testing.T) {
	engine := NewBSP()
	s, o := tilingHarness(t, wm.LayoutBSP, engine)

	a := addContainer(s)
	engine.UpdateRoot(o, 1)
	b := addContainer(s)
	engine.UpdateRoot(o, 1)

	// The first leaf was wider than tall, so the split is horizontal.
	if a.Box().Width != 500 || b.Box().Width != 500 {
		t.Errorf("side-by-side split wrong: a=%+v b=%+v", a.Box(), b.Box())
	}
	if a.Box().Height != 800 || b.Box().Height != 800 {
		t.Errorf("split should keep full height: a=%+v b=%+v", a.Box(), b.Box())
	}
	if b.Box().X != 500 {
		t.Errorf("new container should take the right half, got x=%d", b.Box().X)
	}

	// The last focused leaf (b, 500x800) is taller than wide: the
	// next split stacks vertically.
	c := addContainer(s)
	engine.UpdateRoot(o, 1)
	if b.Box().Height != 400 || c.Box().Height != 400 {
		t.Errorf("stacked split wrong: b=%+v c=%+v", b.Box(), c.Box())
	}
	if a.Box().Width != 500 || a.Box().Height != 800 {
		t.Errorf("sibling subtree disturbed: a=%+v", a.Box())
	}
}

func TestBSPRemoveCollapsesIntoSibling(t *testing.T) {
	engine := NewBSP()
	s, o := tilingHarness(t, wm.LayoutBSP, engine)

	a := addContainer(s)
	b := addContainer(s)
	engine.UpdateRoot(o, 1)

	engine.Remove(b, false)
	engine.UpdateRoot(o, 1)

	if a.Box() != o.UsableArea() {
		t.Errorf("survivor did not reclaim the full area: %+v", a.Box())
	}
	// Removing an untracked container is a no-op.
	engine.Remove(b, false)
}

func TestBSPDisabledLeafKeepsItsSlot(t *testing.T) {
	engine := NewBSP()
	s, o := tilingHarness(t, wm.LayoutBSP, engine)

	a := addContainer(s)
	b := addContainer(s)
	engine.UpdateRoot(o, 1)
	aBox, bBox := a.Box(), b.Box()

	// Disabling (fullscreen behavior) must not hand the slot to the
	// sibling: geometry stays put for when the leaf returns.
	node := engine.nodes[b]
	node.SetEnabled(false)
	engine.UpdateRoot(o, 1)

	if a.Box() != aBox {
		t.Errorf("sibling geometry changed while leaf disabled: %+v", a.Box())
	}
	if b.Box() != bBox {
		t.Errorf("disabled leaf received geometry: %+v", b.Box())
	}
}

func TestBSPGapsShrinkTheArea(t *testing.T) {
	engine := NewBSP()
	s, o := tilingHarness(t, wm.LayoutBSP, engine)
	o.SetUselessGaps(1, 10)

	c := addContainer(s)
	engine.UpdateRoot(o, 1)

	want := o.UsableArea().Shrink(10)
	if c.Box() != want {
		t.Errorf("gapped area = %+v, want %+v", c.Box(), want)
	}
}

func TestBSPTreesAreIsolatedPerWorkspace(t *testing.T) {
	engine := NewBSP()
	s, o := tilingHarness(t, wm.LayoutBSP, engine)
	o.SetLayoutMode(2, wm.LayoutBSP)

	a := addContainer(s)
	o.ViewWorkspace(2)
	b := addContainer(s)
	engine.UpdateRoot(o, 1)
	engine.UpdateRoot(o, 2)

	if a.Box() != o.UsableArea() || b.Box() != o.UsableArea() {
		t.Errorf("workspaces share a tree: a=%+v b=%+v", a.Box(), b.Box())
	}
}
