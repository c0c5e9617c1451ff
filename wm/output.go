package wm

import (
	"sort"

	"github.com/sirupsen/logrus"
	"gitlab.com/mstarongitlab/goutils/sliceutils"
)

// fallbackOutputName identifies the synthetic always-present output.
const fallbackOutputName = "FALLBACK"

// Output is one display sink. The synthetic fallback output has no
// device behind it, never participates in the monitor layout and is
// never destroyed.
type Output struct {
	id     uint64
	server *Server
	name   string

	enabled        bool
	layoutBox      Box
	usableArea     Box
	tearingAllowed bool

	state *OutputState
}

func newFallbackOutput(s *Server) *Output {
	o := &Output{
		id:      s.newID(),
		server:  s,
		name:    fallbackOutputName,
		enabled: true,
		state:   newOutputState(s.Settings.DefaultGaps),
	}
	s.outputs = append(s.outputs, o)
	return o
}

// NewOutput registers a hot-plugged display. A cached state for the
// same device name turns this into a restore: the prior workspace
// configuration comes back verbatim and containers parked elsewhere
// when the device vanished return to their old placement.
func NewOutput(s *Server, name string, layoutBox Box) *Output {
	o := &Output{
		id:        s.newID(),
		server:    s,
		name:      name,
		enabled:   true,
		layoutBox: layoutBox,
	}
	restored := false
	if cached, ok := s.outputStateCache[name]; ok {
		o.state = cached
		delete(s.outputStateCache, name)
		restored = true
	} else {
		o.state = newOutputState(s.Settings.DefaultGaps)
	}
	s.outputs = append(s.outputs, o)
	s.ScheduleIdle(s.sortOutputs)

	if restored {
		o.restoreContainers()
	}
	if s.focusedOutput == s.fallbackOutput {
		// Leaving the headless fallback: adopt its windows, none of
		// which carry a shadow record, and take focus.
		o.adoptFrom(s.fallbackOutput, false)
		o.Focus()
	}
	logrus.WithFields(logrus.Fields{
		"output":   name,
		"restored": restored,
	}).Infoln("output connected")
	s.Bus.Emit(EventScreenNew, o)
	return o
}

func (o *Output) ID() uint64   { return o.id }
func (o *Output) Name() string { return o.name }
func (o *Output) Enabled() bool {
	return o.enabled
}
func (o *Output) LayoutBox() Box { return o.layoutBox }
func (o *Output) State() *OutputState {
	return o.state
}
func (o *Output) IsFallback() bool {
	return o == o.server.fallbackOutput
}

func (o *Output) SetEnabled(enabled bool) {
	if o.enabled == enabled {
		return
	}
	o.enabled = enabled
	o.server.Bus.Emit(screenPropEvent("enabled"), o)
}

// UsableArea is the layout box minus reserved shell regions. Falls
// back to the full box until a shell layer reserves anything.
func (o *Output) UsableArea() Box {
	if o.usableArea.Empty() {
		return o.layoutBox
	}
	return o.usableArea
}

func (o *Output) SetUsableArea(b Box) {
	o.usableArea = b
}

func (o *Output) TearingAllowed() bool {
	return o.tearingAllowed
}

func (o *Output) SetTearingAllowed(allowed bool) {
	o.tearingAllowed = allowed
}

// SetLayoutBox repositions the output in global space. Floating
// containers follow proportionally once the new geometry settled; the
// output ordering re-sorts from the idle queue as well.
func (o *Output) SetLayoutBox(b Box) {
	if o.layoutBox == b {
		return
	}
	old := o.layoutBox
	o.layoutBox = b
	o.server.ScheduleIdle(func() {
		for _, c := range o.state.containers {
			if c.Floating() && !c.ConfigureLocked() {
				c.translateProportional(old, b)
			}
			if c.Fullscreen() || c.Maximized() {
				c.applyLockedGeometry()
			}
		}
		o.server.sortOutputs()
	})
	for i := 1; i <= MaxWorkspace; i++ {
		if o.state.ActiveTag&WorkspaceTag(i) != 0 {
			o.server.scheduleTransaction(o, i)
		}
	}
	o.server.Bus.Emit(screenPropEvent("layout_box"), o)
}

// sortOutputs keeps the registry ordered top-left to bottom-right,
// fallback last.
func (s *Server) sortOutputs() {
	sort.SliceStable(s.outputs, func(i, j int) bool {
		a, b := s.outputs[i], s.outputs[j]
		if a == s.fallbackOutput {
			return false
		}
		if b == s.fallbackOutput {
			return true
		}
		if a.layoutBox.Y != b.layoutBox.Y {
			return a.layoutBox.Y < b.layoutBox.Y
		}
		return a.layoutBox.X < b.layoutBox.X
	})
}

// Focus makes this the process-wide focused output.
func (o *Output) Focus() {
	prev := o.server.focusedOutput
	if prev == o {
		return
	}
	o.server.focusedOutput = o
	if prev != nil {
		o.server.Bus.Emit(EventScreenUnfocus, prev)
	}
	o.server.Bus.Emit(EventScreenFocus, o)
}

func (o *Output) attachContainer(c *Container) {
	o.state.containers = append(o.state.containers, c)
	o.state.focusStack = append(o.state.focusStack, c)
	if c.Minimized() {
		// Keep the per-output minimized ordering across moves.
		o.pushMinimized(c)
	}
	for _, t := range c.toplevels {
		o.state.toplevels = append(o.state.toplevels, t)
	}
}

func (o *Output) detachContainer(c *Container) {
	o.state.containers = sliceutils.Filter(o.state.containers, func(e *Container) bool {
		return e != c
	})
	o.state.focusStack = sliceutils.Filter(o.state.focusStack, func(e *Container) bool {
		return e != c
	})
	o.state.minimized = sliceutils.Filter(o.state.minimized, func(e *Container) bool {
		return e != c
	})
	o.state.toplevels = sliceutils.Filter(o.state.toplevels, func(t *Toplevel) bool {
		return t.container != c
	})
}

func (o *Output) Containers() []*Container {
	return o.state.containers
}

func (o *Output) Toplevels() []*Toplevel {
	return o.state.toplevels
}

// VisibleContainers snapshots the currently shown containers.
func (o *Output) VisibleContainers() []*Container {
	return sliceutils.Filter(o.state.containers, func(c *Container) bool {
		return c.Visible()
	})
}

func (o *Output) pushMinimized(c *Container) {
	o.state.minimized = append([]*Container{c}, o.state.minimized...)
}

func (o *Output) dropMinimized(c *Container) {
	o.state.minimized = sliceutils.Filter(o.state.minimized, func(e *Container) bool {
		return e != c
	})
}

// promoteFocus moves c to the front of the focus stack.
func (o *Output) promoteFocus(c *Container) {
	o.state.focusStack = sliceutils.Filter(o.state.focusStack, func(e *Container) bool {
		return e != c
	})
	o.state.focusStack = append([]*Container{c}, o.state.focusStack...)
}

// newestToplevel is the front toplevel of the most recently focused
// visible container.
func (o *Output) newestToplevel() *Toplevel {
	for _, c := range o.state.focusStack {
		if c.Visible() {
			return c.Front()
		}
	}
	return nil
}

// focusNewest refocuses whatever is now on top, if anything.
func (o *Output) focusNewest() {
	if t := o.newestToplevel(); t != nil {
		t.Focus()
	}
}

// updateVisible recomputes every member's visibility against the
// active tag.
func (o *Output) updateVisible() {
	for _, c := range o.state.containers {
		c.setVisible(c.Visible())
	}
}

// SetActiveTag shows the workspaces in the bitmask, possibly several
// at once. Zero is refused.
func (o *Output) SetActiveTag(tag TagBits) {
	if tag == 0 || tag == o.state.ActiveTag {
		return
	}
	o.state.ActiveTag = tag
	o.updateVisible()
	for i := 1; i <= MaxWorkspace; i++ {
		if tag&WorkspaceTag(i) != 0 {
			o.server.scheduleTransaction(o, i)
		}
	}
	o.server.Bus.Emit(screenPropEvent("active_tag"), o)
	o.focusNewest()
}

// ViewWorkspace switches the view to exactly one workspace and makes
// it the placement target for new windows.
func (o *Output) ViewWorkspace(workspace int) {
	workspace = ClampWorkspace(workspace)
	if o.state.ActiveWorkspace == workspace && o.state.ActiveTag == WorkspaceTag(workspace) {
		return
	}
	o.state.ActiveWorkspace = workspace
	o.state.ActiveTag = WorkspaceTag(workspace)
	o.updateVisible()
	o.server.scheduleTransaction(o, workspace)
	o.server.Bus.Emit(screenPropEvent("active_workspace"), o)
	o.focusNewest()
}

// SetLayoutMode switches one workspace's tiling engine, migrating its
// tiled containers.
func (o *Output) SetLayoutMode(workspace int, mode LayoutMode) {
	ti := o.state.TagAt(workspace)
	if ti.LayoutMode == mode || mode < 0 || mode >= layoutModeCount {
		return
	}
	oldEngine := o.server.engineFor(ti.LayoutMode)
	newEngine := o.server.engineFor(mode)
	ti.LayoutMode = mode
	for _, c := range o.state.containers {
		if c.workspace != ti.Index || c.tilingNode == nil {
			continue
		}
		if oldEngine != nil {
			oldEngine.Remove(c, true)
		}
		c.tilingNode = nil
		if newEngine != nil {
			c.tilingNode = newEngine.Insert(c, ti.Index)
		}
	}
	o.server.scheduleTransaction(o, ti.Index)
	o.server.Bus.Emit(screenPropEvent("layout_mode"), o)
}

// AdvanceStrategy steps the master layout's strategy cursor. The
// engine applies the modulo over its own strategy list.
func (o *Output) AdvanceStrategy(workspace, by int) {
	ti := o.state.TagAt(workspace)
	ti.Master.CurrentStrategy += by
	if ti.Master.CurrentStrategy < 0 {
		ti.Master.CurrentStrategy = 0
	}
	o.server.scheduleTransaction(o, ti.Index)
}

func (o *Output) SetMWFact(workspace int, factor float64) {
	ti := o.state.TagAt(workspace)
	ti.SetMWFact(factor)
	o.server.scheduleTransaction(o, ti.Index)
}

func (o *Output) SetUselessGaps(workspace, gaps int) {
	ti := o.state.TagAt(workspace)
	ti.SetUselessGaps(gaps)
	o.server.scheduleTransaction(o, ti.Index)
}

func (o *Output) SetMasterCount(workspace, count int) {
	if count < 1 {
		count = 1
	}
	ti := o.state.TagAt(workspace)
	ti.Master.MasterCount = count
	o.server.scheduleTransaction(o, ti.Index)
}

func (o *Output) SetColumnCount(workspace, count int) {
	if count < 1 {
		count = 1
	}
	ti := o.state.TagAt(workspace)
	ti.Master.ColumnCount = count
	o.server.scheduleTransaction(o, ti.Index)
}

// arrangeWorkspace runs the tiling pass for one workspace. Floating
// workspaces have nothing to arrange.
func (o *Output) arrangeWorkspace(workspace int) {
	ti := o.state.TagAt(workspace)
	if ti.LayoutMode == LayoutFloating {
		return
	}
	if engine := o.server.engineFor(ti.LayoutMode); engine != nil {
		engine.UpdateRoot(o, ti.Index)
	}
}

// NearestToplevel finds the focus target in a compass direction among
// the visible containers.
func (o *Output) NearestToplevel(ref *Toplevel, dir Direction) *Toplevel {
	if ref == nil || ref.container == nil {
		return nil
	}
	refX, refY := ref.container.box.Center()
	candidates := []*Container{}
	boxes := []Box{}
	for _, c := range o.state.containers {
		if c == ref.container || !c.Visible() {
			continue
		}
		candidates = append(candidates, c)
		boxes = append(boxes, c.box)
	}
	i := nearestByDirection(refX, refY, dir, boxes)
	if i < 0 {
		return nil
	}
	return candidates[i].Front()
}

// HandleDestroy persists this output's workspace configuration into
// the name-keyed cache and relocates every member to the nearest
// surviving output, recording where each came from so a later
// reconnect can put it back.
func (o *Output) HandleDestroy() {
	if o.IsFallback() {
		return
	}
	target := o.server.rescueTarget(o)
	target.adoptFrom(o, true)

	// TagInfos move to the cache as-is; a pending transaction on a
	// dead output must not re-arm on restore.
	for i := 1; i <= MaxWorkspace; i++ {
		o.state.Tags[i].pendingTransaction = false
	}
	o.server.outputStateCache[o.name] = o.state

	o.server.removeOutput(o)
	if o.server.focusedOutput == o {
		if outs := o.server.RealOutputs(); len(outs) > 0 {
			outs[0].Focus()
		} else {
			o.server.fallbackOutput.Focus()
		}
	}
	logrus.WithField("output", o.name).Infoln("output disconnected, state cached")
	o.server.Bus.Emit(EventScreenDestroy, o)
}

// adoptFrom migrates every container off source onto o. recordShadow
// notes the old placement for restore; it stays off when the source is
// the fallback so windows spawned headless do not get pinned to
// workspace 1 forever.
func (o *Output) adoptFrom(source *Output, recordShadow bool) {
	if source.IsFallback() {
		recordShadow = false
	}
	containers := append([]*Container{}, source.state.containers...)
	for _, c := range containers {
		if recordShadow {
			c.old = &oldProp{
				outputName: source.name,
				tag:        c.tag,
				workspace:  c.workspace,
				tiled:      c.tilingNode != nil,
			}
		}
		// MoveToOutput already defers the proportional translate for
		// floating members, translating here too would apply it twice.
		c.MoveToOutput(o)
	}
	o.updateVisible()
}

// restoreContainers pulls back every container whose shadow record
// points at this device name, replaying its saved placement.
func (o *Output) restoreContainers() {
	for _, c := range o.server.containers {
		if c.old == nil || c.old.outputName != o.name {
			continue
		}
		old := c.old
		c.old = nil

		from := c.output
		if c.tilingNode != nil {
			if engine := o.server.engineFor(from.state.TagAt(c.workspace).LayoutMode); engine != nil {
				engine.Remove(c, true)
			}
			c.tilingNode = nil
		}
		from.detachContainer(c)
		c.output = o
		c.workspace = ClampWorkspace(old.workspace)
		c.tag = old.tag
		o.attachContainer(c)
		if old.tiled && !c.Floating() && !c.ConfigureLocked() && !c.Minimized() {
			if engine := o.server.engineFor(o.state.TagAt(c.workspace).LayoutMode); engine != nil {
				c.tilingNode = engine.Insert(c, c.workspace)
			}
		}
		o.server.scheduleTransaction(from, from.state.ActiveWorkspace)
		o.server.scheduleTransaction(o, c.workspace)
	}
	o.updateVisible()
}
