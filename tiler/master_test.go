package tiler

import (
	"testing"

	"github.com/mstarongithub/waytag/wm"
)

func TestMasterTileSplitsMasterAndStack(t *testing.T) {
	engine := NewMaster()
	s, o := tilingHarness(t, wm.LayoutMaster, engine)
	o.SetMWFact(1, 0.6)

	master := addContainer(s)
	stack1 := addContainer(s)
	stack2 := addContainer(s)
	engine.UpdateRoot(o, 1)

	if master.Box().Width != 600 {
		t.Errorf("master width = %d, want 600 with mwfact 0.6", master.Box().Width)
	}
	if master.Box().Height != 800 {
		t.Errorf("single master should take the full height, got %d", master.Box().Height)
	}
	if stack1.Box().X != 600 || stack2.Box().X != 600 {
		t.Errorf("stack should start after the master column")
	}
	if stack1.Box().Height != 400 || stack2.Box().Height != 400 {
		t.Errorf("stack members should share the height evenly")
	}
	if stack2.Box().Y != 400 {
		t.Errorf("second stack member should sit below the first, y=%d", stack2.Box().Y)
	}
}

func TestMasterSingleContainerTakesFullArea(t *testing.T) {
	engine := NewMaster()
	s, o := tilingHarness(t, wm.LayoutMaster, engine)

	c := addContainer(s)
	engine.UpdateRoot(o, 1)

	if c.Box() != o.UsableArea() {
		t.Errorf("lone container = %+v, want %+v", c.Box(), o.UsableArea())
	}
}

func TestMasterCountGrowsTheMasterColumn(t *testing.T) {
	engine := NewMaster()
	s, o := tilingHarness(t, wm.LayoutMaster, engine)
	o.SetMasterCount(1, 2)

	m1 := addContainer(s)
	m2 := addContainer(s)
	stack := addContainer(s)
	engine.UpdateRoot(o, 1)

	if m1.Box().Height != 400 || m2.Box().Height != 400 {
		t.Errorf("two masters should split the column height")
	}
	if m2.Box().Y != 400 {
		t.Errorf("second master should sit below the first")
	}
	if stack.Box().X == 0 {
		t.Errorf("stack member placed in the master column")
	}
}

func TestMonocleStrategyStacksEverything(t *testing.T) {
	engine := NewMaster()
	s, o := tilingHarness(t, wm.LayoutMaster, engine)

	a := addContainer(s)
	b := addContainer(s)

	// Advance the cyclic strategy cursor from "tile" to "monocle".
	o.AdvanceStrategy(1, 1)
	engine.UpdateRoot(o, 1)

	if a.Box() != o.UsableArea() || b.Box() != o.UsableArea() {
		t.Errorf("monocle should give everyone the full area: a=%+v b=%+v", a.Box(), b.Box())
	}

	// Another step wraps back around to "tile".
	o.AdvanceStrategy(1, 1)
	engine.UpdateRoot(o, 1)
	if a.Box() == o.UsableArea() && b.Box() == o.UsableArea() {
		t.Errorf("strategy cursor did not wrap back to tile")
	}
}

func TestMasterRemoveReflowsTheStack(t *testing.T) {
	engine := NewMaster()
	s, o := tilingHarness(t, wm.LayoutMaster, engine)

	master := addContainer(s)
	stack := addContainer(s)
	engine.UpdateRoot(o, 1)

	engine.Remove(master, false)
	engine.UpdateRoot(o, 1)

	if stack.Box() != o.UsableArea() {
		t.Errorf("survivor should become the sole master: %+v", stack.Box())
	}
}

func TestMasterStrategyNames(t *testing.T) {
	engine := NewMaster()
	names := engine.Strategies()
	if len(names) != 2 || names[0] != "tile" || names[1] != "monocle" {
		t.Errorf("strategy list = %v", names)
	}
}
