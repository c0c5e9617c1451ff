package wm

import "testing"

func TestMapCreatesTiledContainerOnWorkspaceOne(t *testing.T) {
	s := newTestServer()
	newTestOutput(s, "DP-1", Box{Width: 1920, Height: 1080})

	top := mapToplevel(s, &fakeSurface{appID: "term"})

	c := top.Container()
	if c == nil {
		t.Fatalf("mapped toplevel has no container")
	}
	if c.Floating() {
		t.Errorf("expected tiled, got floating")
	}
	if c.Workspace() != 1 {
		t.Errorf("workspace = %d, want 1", c.Workspace())
	}
	if c.Tag() != 1 {
		t.Errorf("tag = %b, want 1", c.Tag())
	}
}

func TestMapPolicyPriorityOrder(t *testing.T) {
	s := newTestServer()
	newTestOutput(s, "DP-1", Box{Width: 1920, Height: 1080})

	// Fullscreen request wins over everything else.
	top := mapToplevel(s, &fakeSurface{
		reqFullscreen: true,
		reqMaximized:  true,
		minW:          100, maxW: 100,
	})
	if !top.Container().Fullscreen() {
		t.Errorf("fullscreen request ignored at map time")
	}
	if top.Container().Maximized() {
		t.Errorf("fullscreen and maximized set simultaneously")
	}

	maxed := mapToplevel(s, &fakeSurface{reqMaximized: true})
	if !maxed.Container().Maximized() {
		t.Errorf("maximize request ignored at map time")
	}
}

func TestMapFixedSizeWindowFloatsCentered(t *testing.T) {
	s := newTestServer()
	o := newTestOutput(s, "DP-1", Box{Width: 1000, Height: 800})

	top := mapToplevel(s, &fakeSurface{minW: 300, maxW: 300})
	c := top.Container()
	if !c.Floating() {
		t.Fatalf("fixed-size window did not float")
	}
	cx, cy := c.Box().Center()
	ox, oy := o.LayoutBox().Center()
	if cx != ox || cy != oy {
		t.Errorf("floating window not centered: got (%d,%d), want (%d,%d)", cx, cy, ox, oy)
	}
}

func TestMapChildWindowFloats(t *testing.T) {
	s := newTestServer()
	newTestOutput(s, "DP-1", Box{Width: 1000, Height: 800})

	parent := mapToplevel(s, &fakeSurface{appID: "app"})
	child := mapToplevel(s, &fakeSurface{parent: parent.Surface()})
	if !child.Container().Floating() {
		t.Errorf("child window did not float")
	}
}

func TestInsertMarkedContainerSwallowsNextMap(t *testing.T) {
	s := newTestServer()
	newTestOutput(s, "DP-1", Box{Width: 1000, Height: 800})

	first := mapToplevel(s, &fakeSurface{appID: "a"})
	s.MarkInsert(first.Container())
	second := mapToplevel(s, &fakeSurface{appID: "b"})

	if second.Container() != first.Container() {
		t.Fatalf("marked insert did not group the toplevels")
	}
	if first.Container().Front() != second {
		t.Errorf("newest member should be the front")
	}
	if len(s.Containers()) != 1 {
		t.Errorf("expected 1 container, got %d", len(s.Containers()))
	}
}

func TestUnmapDestroysEmptyContainer(t *testing.T) {
	s := newTestServer()
	newTestOutput(s, "DP-1", Box{Width: 1000, Height: 800})

	top := mapToplevel(s, &fakeSurface{})
	top.HandleUnmap()

	if top.Container() != nil {
		t.Errorf("container reference not cleared on unmap")
	}
	if len(s.Containers()) != 0 {
		t.Errorf("empty container survived unmap")
	}
}

func TestDestroyWhileMappedRunsUnmapCleanup(t *testing.T) {
	s := newTestServer()
	newTestOutput(s, "DP-1", Box{Width: 1000, Height: 800})

	unmapped := 0
	s.Bus.Connect(EventClientUnmap, func(args ...any) { unmapped++ })

	top := mapToplevel(s, &fakeSurface{})
	// Client crash: destroy arrives without a prior unmap.
	top.HandleDestroy()

	if unmapped != 1 {
		t.Errorf("destroy while mapped did not run unmap cleanup")
	}
	if len(s.Toplevels()) != 0 || len(s.Containers()) != 0 {
		t.Errorf("destroy left registry entries behind")
	}

	// And again after a clean unmap it stays idempotent.
	top2 := mapToplevel(s, &fakeSurface{})
	top2.HandleUnmap()
	top2.HandleDestroy()
	if unmapped != 2 {
		t.Errorf("unmap cleanup ran %d times, want 2", unmapped)
	}
}

func TestResizeHandshake(t *testing.T) {
	s := newTestServer()
	newTestOutput(s, "DP-1", Box{Width: 1000, Height: 800})
	surf := &fakeSurface{}
	top := mapToplevel(s, surf)

	start := s.ResizeInFlight()
	top.Container().SetSize(500, 400)
	if s.ResizeInFlight() != start+1 {
		t.Fatalf("resize request not accounted")
	}

	// Ack with an older serial leaves the handshake open.
	top.HandleCommit(surf.nextSerial - 1)
	if s.ResizeInFlight() != start+1 {
		t.Errorf("stale serial closed the handshake")
	}

	top.HandleCommit(surf.nextSerial)
	if s.ResizeInFlight() != start {
		t.Errorf("ack did not close the handshake")
	}
}

func TestUnmapCancelsGrabAndOpenResize(t *testing.T) {
	s := newTestServer()
	newTestOutput(s, "DP-1", Box{Width: 1000, Height: 800})
	top := mapToplevel(s, &fakeSurface{})

	grab := &fakeGrab{target: top}
	s.StartGrab(grab)
	top.Container().SetSize(500, 400)
	inflight := s.ResizeInFlight()

	top.HandleUnmap()

	if !grab.stopped {
		t.Errorf("grab survived its target unmapping")
	}
	if s.ResizeInFlight() >= inflight {
		t.Errorf("open resize not released on unmap")
	}
}

func TestActivationRequestLatchesUrgency(t *testing.T) {
	s := newTestServer()
	newTestOutput(s, "DP-1", Box{Width: 1000, Height: 800})

	focused := mapToplevel(s, &fakeSurface{appID: "front"})
	other := mapToplevel(s, &fakeSurface{appID: "back"})
	focused.Focus()

	other.HandleRequestActivate()
	if !other.Urgent() {
		t.Errorf("unfocused toplevel should turn urgent")
	}

	focused.HandleRequestActivate()
	if focused.Urgent() {
		t.Errorf("focused toplevel must not turn urgent")
	}
}

func TestJumpToSwitchesOrMergesView(t *testing.T) {
	s := newTestServer()
	o := newTestOutput(s, "DP-1", Box{Width: 1000, Height: 800})

	top := mapToplevel(s, &fakeSurface{})
	top.Container().SetWorkspace(3)
	if top.Container().Visible() {
		t.Fatalf("container should be hidden after moving to workspace 3")
	}

	top.JumpTo(false)
	if o.State().ActiveTag != WorkspaceTag(3) {
		t.Errorf("plain jump should switch the view to workspace 3")
	}

	top.Container().SetWorkspace(5)
	top.JumpTo(true)
	want := WorkspaceTag(3) | WorkspaceTag(5)
	if o.State().ActiveTag != want {
		t.Errorf("merge jump: active tag = %b, want %b", o.State().ActiveTag, want)
	}
}

func TestSwapExchangesToplevelsAcrossContainers(t *testing.T) {
	s := newTestServer()
	a := newTestOutput(s, "DP-1", Box{Width: 1000, Height: 800})
	b := NewOutput(s, "DP-2", Box{X: 1000, Width: 1000, Height: 800})

	t1 := mapToplevel(s, &fakeSurface{appID: "left"})
	b.Focus()
	t2 := mapToplevel(s, &fakeSurface{appID: "right"})
	c1, c2 := t1.Container(), t2.Container()

	var swaps [][]any
	s.Bus.Connect(EventClientSwap, func(args ...any) {
		swaps = append(swaps, args)
	})

	t1.Swap(t2)

	if t1.Container() != c2 || t2.Container() != c1 {
		t.Fatalf("toplevels did not trade containers")
	}
	if c1.Front() != t2 || c2.Front() != t1 {
		t.Errorf("container stacks not refreshed after the exchange")
	}
	if len(swaps) != 1 || swaps[0][0] != t1 || swaps[0][1] != t2 {
		t.Errorf("expected one client::swap carrying source then target")
	}
	if len(a.Toplevels()) != 1 || a.Toplevels()[0] != t2 {
		t.Errorf("DP-1 toplevel list should hold the swapped-in member")
	}
	if len(b.Toplevels()) != 1 || b.Toplevels()[0] != t1 {
		t.Errorf("DP-2 toplevel list should hold the swapped-in member")
	}

	// Self and same-container swaps are no-ops.
	t1.Swap(t1)
	if t1.Container() != c2 {
		t.Errorf("self swap must not move the toplevel")
	}
}

func TestDecorationPolicyResolution(t *testing.T) {
	s := newTestServer()
	newTestOutput(s, "DP-1", Box{Width: 1000, Height: 800})

	surf := &fakeSurface{}
	top := mapToplevel(s, surf)
	top.SetDecorationMode(DecorationModeClientOnFloating)

	if surf.decoration != DecorationModeServer {
		t.Errorf("tiled container should resolve to server decorations")
	}

	top.Container().SetFloating(true)
	if surf.decoration != DecorationModeClient {
		t.Errorf("floating container should resolve to client decorations")
	}
}

func TestForeignRequestsDriveContainer(t *testing.T) {
	s := newTestServer()
	newTestOutput(s, "DP-1", Box{Width: 1000, Height: 800})

	surf := &fakeSurface{}
	top := mapToplevel(s, surf)

	top.HandleForeignMaximize(true)
	if !top.Container().Maximized() {
		t.Errorf("foreign maximize request ignored")
	}
	top.HandleForeignClose()
	if !surf.closed {
		t.Errorf("foreign close request not forwarded")
	}
}

func TestXDGMetadataEmitsPropEvents(t *testing.T) {
	s := newTestServer()
	newTestOutput(s, "DP-1", Box{Width: 1000, Height: 800})

	var gotTag, gotDesc int
	s.Bus.Connect(EventClientPropPrefix+"xdg_tag", func(args ...any) { gotTag++ })
	s.Bus.Connect(EventClientPropPrefix+"xdg_desc", func(args ...any) { gotDesc++ })

	top := mapToplevel(s, &fakeSurface{})
	top.SetXDGTag("scratchpad")
	top.SetXDGTag("scratchpad") // same value, no event
	top.SetXDGDescription("notes")

	if gotTag != 1 || gotDesc != 1 {
		t.Errorf("xdg metadata events: tag=%d desc=%d, want 1/1", gotTag, gotDesc)
	}
}
