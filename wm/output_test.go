package wm

import "testing"

func TestOutputStateRoundTripAcrossReconnect(t *testing.T) {
	s := newTestServer()
	newTestOutput(s, "DP-2", Box{X: 2000, Width: 1920, Height: 1080})
	o := newTestOutput(s, "DP-1", Box{Width: 1920, Height: 1080})

	o.SetUselessGaps(3, 12)
	o.SetLayoutMode(3, LayoutMaster)
	o.SetMWFact(3, 0.65)
	o.SetMasterCount(3, 2)
	o.SetColumnCount(3, 3)
	o.SetActiveTag(WorkspaceTag(3) | WorkspaceTag(5))

	o.HandleDestroy()
	restored := NewOutput(s, "DP-1", Box{Width: 1920, Height: 1080})

	ti := restored.State().TagAt(3)
	if ti.UselessGaps != 12 {
		t.Errorf("gaps = %d, want 12", ti.UselessGaps)
	}
	if ti.LayoutMode != LayoutMaster {
		t.Errorf("layout mode = %v, want master", ti.LayoutMode)
	}
	if ti.Master.MWFact != 0.65 || ti.Master.MasterCount != 2 || ti.Master.ColumnCount != 3 {
		t.Errorf("master parameters not restored: %+v", ti.Master)
	}
	if restored.State().ActiveTag != WorkspaceTag(3)|WorkspaceTag(5) {
		t.Errorf("active tag not restored: %b", restored.State().ActiveTag)
	}
}

func TestOutputDestroyRelocatesAndRestoresContainers(t *testing.T) {
	s := newTestServer()
	survivor := newTestOutput(s, "DP-2", Box{X: 2000, Width: 1920, Height: 1080})
	o := newTestOutput(s, "DP-1", Box{Width: 1920, Height: 1080})

	c1 := mapToplevel(s, &fakeSurface{appID: "a"}).Container()
	c2 := mapToplevel(s, &fakeSurface{appID: "b"}).Container()
	c2.SetWorkspace(4)

	o.HandleDestroy()

	if c1.Output() != survivor || c2.Output() != survivor {
		t.Fatalf("containers not relocated to the surviving output")
	}
	if c1.old == nil || c2.old == nil {
		t.Fatalf("shadow records not written for relocated containers")
	}
	if c2.old.workspace != 4 || c2.old.tag != WorkspaceTag(4) {
		t.Errorf("shadow record wrong: %+v", c2.old)
	}

	restored := NewOutput(s, "DP-1", Box{Width: 1920, Height: 1080})

	if c1.Output() != restored || c2.Output() != restored {
		t.Errorf("containers did not return to the reconnected output")
	}
	if c2.Workspace() != 4 || c2.Tag() != WorkspaceTag(4) {
		t.Errorf("restored placement wrong: ws=%d tag=%b", c2.Workspace(), c2.Tag())
	}
	if c1.old != nil || c2.old != nil {
		t.Errorf("shadow records not cleared after restore")
	}
}

func TestFallbackSpawnsAreNotPinnedByShadowRecords(t *testing.T) {
	s := newTestServer()
	// No real output yet: everything lands on the fallback.
	c := mapToplevel(s, &fakeSurface{}).Container()
	if !c.Output().IsFallback() {
		t.Fatalf("headless map should land on the fallback output")
	}

	o := NewOutput(s, "DP-1", Box{Width: 1920, Height: 1080})
	if c.Output() != o {
		t.Fatalf("fallback container not adopted by the new output")
	}
	if c.old != nil {
		t.Errorf("migration off the fallback must not record a shadow")
	}
}

func TestRescueFallsBackToSyntheticOutput(t *testing.T) {
	s := newTestServer()
	o := newTestOutput(s, "DP-1", Box{Width: 1920, Height: 1080})
	c := mapToplevel(s, &fakeSurface{}).Container()

	o.HandleDestroy()

	if !c.Output().IsFallback() {
		t.Errorf("last output removed: container should land on the fallback")
	}
	if !s.FocusedOutput().IsFallback() {
		t.Errorf("focus should fall back to the synthetic output")
	}
	if c.old == nil {
		t.Errorf("rescue from a real output should record a shadow")
	}
}

func TestRescueTranslatesFloatingMemberOnce(t *testing.T) {
	s := newTestServer()
	o := newTestOutput(s, "DP-1", Box{Width: 1000, Height: 800})
	neighbor := NewOutput(s, "DP-2", Box{X: 1000, Width: 1000, Height: 800})

	c := mapToplevel(s, &fakeSurface{}).Container()
	c.SetFloating(true)
	c.SetSize(100, 100)
	c.SetPositionGlobal(400, 300)

	o.HandleDestroy()
	s.DispatchIdle()

	if c.Output() != neighbor {
		t.Fatalf("container not rescued to the neighbor output")
	}
	if box := c.Box(); box.X != 1400 || box.Y != 300 {
		t.Errorf("rescued position = (%d,%d), want (1400,300)", box.X, box.Y)
	}
}

func TestMWFactAndGapClamps(t *testing.T) {
	s := newTestServer()
	o := newTestOutput(s, "DP-1", Box{Width: 1920, Height: 1080})

	o.SetMWFact(1, 0.01)
	if got := o.State().TagAt(1).Master.MWFact; got != 0.1 {
		t.Errorf("mwfact = %f, want clamp to 0.1", got)
	}
	o.SetMWFact(1, 5)
	if got := o.State().TagAt(1).Master.MWFact; got != 0.9 {
		t.Errorf("mwfact = %f, want clamp to 0.9", got)
	}
	o.SetUselessGaps(1, -10)
	if got := o.State().TagAt(1).UselessGaps; got != 0 {
		t.Errorf("gaps = %d, want clamp to 0", got)
	}
}

func TestNearestOutputByDirection(t *testing.T) {
	s := newTestServer()
	left := newTestOutput(s, "DP-1", Box{X: 0, Y: 0, Width: 1000, Height: 800})
	right := NewOutput(s, "DP-2", Box{X: 1000, Y: 0, Width: 1000, Height: 800})
	far := NewOutput(s, "DP-3", Box{X: 2000, Y: 0, Width: 1000, Height: 800})

	if got := s.NearestOutput(left, DirectionRight); got != right {
		t.Errorf("nearest right of DP-1 = %v, want DP-2", got)
	}
	if got := s.NearestOutput(far, DirectionLeft); got != right {
		t.Errorf("nearest left of DP-3 = %v, want DP-2", got)
	}
	if got := s.NearestOutput(left, DirectionLeft); got != nil {
		t.Errorf("nothing lies left of DP-1, got %v", got)
	}
}

func TestNearestToplevelByDirection(t *testing.T) {
	s := newTestServer()
	o := newTestOutput(s, "DP-1", Box{Width: 1000, Height: 800})

	a := mapToplevel(s, &fakeSurface{appID: "a"})
	b := mapToplevel(s, &fakeSurface{appID: "b"})
	a.Container().SetFloating(true)
	b.Container().SetFloating(true)
	a.Container().SetSize(100, 100)
	b.Container().SetSize(100, 100)
	a.Container().SetPositionGlobal(0, 0)
	b.Container().SetPositionGlobal(500, 0)

	if got := o.NearestToplevel(a, DirectionRight); got != b {
		t.Errorf("nearest right of a should be b")
	}
	if got := o.NearestToplevel(b, DirectionLeft); got != a {
		t.Errorf("nearest left of b should be a")
	}
	if got := o.NearestToplevel(a, DirectionLeft); got != nil {
		t.Errorf("nothing lies left of a, got %v", got)
	}
}

func TestViewWorkspaceUpdatesVisibilityAndPlacement(t *testing.T) {
	s := newTestServer()
	o := newTestOutput(s, "DP-1", Box{Width: 1000, Height: 800})

	c1 := mapToplevel(s, &fakeSurface{}).Container()
	o.ViewWorkspace(2)
	c2 := mapToplevel(s, &fakeSurface{}).Container()

	if c1.Visible() {
		t.Errorf("workspace 1 container visible while viewing 2")
	}
	if !c2.Visible() || c2.Workspace() != 2 {
		t.Errorf("new window not placed on the viewed workspace")
	}

	// Viewing both tags shows both containers.
	o.SetActiveTag(WorkspaceTag(1) | WorkspaceTag(2))
	if !c1.Visible() || !c2.Visible() {
		t.Errorf("multi-tag view should show both containers")
	}
}

func TestLayoutModeSwitchMigratesTiledContainers(t *testing.T) {
	s := newTestServer()
	bsp := newFakeEngine()
	master := newFakeEngine()
	s.RegisterEngine(LayoutBSP, bsp)
	s.RegisterEngine(LayoutMaster, master)
	o := newTestOutput(s, "DP-1", Box{Width: 1000, Height: 800})
	o.SetLayoutMode(1, LayoutBSP)

	c := mapToplevel(s, &fakeSurface{}).Container()
	if _, ok := bsp.nodes[c]; !ok {
		t.Fatalf("container not in the bsp engine")
	}

	o.SetLayoutMode(1, LayoutMaster)
	if _, ok := bsp.nodes[c]; ok {
		t.Errorf("container still tracked by the old engine")
	}
	if _, ok := master.nodes[c]; !ok {
		t.Errorf("container not handed to the new engine")
	}
}

func TestFocusEventsOnOutputSwitch(t *testing.T) {
	s := newTestServer()
	first := newTestOutput(s, "DP-1", Box{Width: 1000, Height: 800})
	second := NewOutput(s, "DP-2", Box{X: 1000, Width: 1000, Height: 800})

	var focused, unfocused []*Output
	s.Bus.Connect(EventScreenFocus, func(args ...any) {
		focused = append(focused, args[0].(*Output))
	})
	s.Bus.Connect(EventScreenUnfocus, func(args ...any) {
		unfocused = append(unfocused, args[0].(*Output))
	})

	second.Focus()

	if len(focused) != 1 || focused[0] != second {
		t.Errorf("screen::focus not emitted for DP-2")
	}
	if len(unfocused) != 1 || unfocused[0] != first {
		t.Errorf("screen::unfocus not emitted for DP-1")
	}
}
