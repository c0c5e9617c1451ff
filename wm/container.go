package wm

import (
	"github.com/sirupsen/logrus"
	"gitlab.com/mstarongitlab/goutils/sliceutils"
)

// MinContainerSize is the floor for surface target sizes after border
// and gap subtraction.
const MinContainerSize = 20

type containerFlags uint32

const (
	flagFloating = containerFlags(1 << iota)
	flagMaximized
	flagFullscreen
	flagMinimized
	flagSticky
	flagUnmanaged
)

// oldProp remembers where a container lived before its output was
// unplugged. Populated only while detached for that reason; consumed
// and cleared when an output with the same name returns.
type oldProp struct {
	outputName string
	tag        TagBits
	workspace  int
	tiled      bool
}

// Container groups one or more stacked toplevels and is the unit the
// tiling engines arrange. Geometry is kept in global coordinates and
// includes border and gaps.
type Container struct {
	id     uint64
	server *Server
	output *Output

	// toplevels is front-to-back; index 0 is the visible member.
	toplevels []*Toplevel

	border *Border
	node   SceneNode

	box         Box
	floatingBox Box

	tag       TagBits
	workspace int

	opacity float64
	weight  float64

	flags      containerFlags
	tilingNode TilingNode

	// wasMaximized restores maximize when fullscreen toggles off.
	wasMaximized bool

	old *oldProp
}

// newContainer wraps a freshly mapping toplevel on the focused output.
func newContainer(s *Server, t *Toplevel) *Container {
	o := s.focusedOutput
	ws := o.state.ActiveWorkspace
	if ws < 1 {
		ws = 1
	}
	c := &Container{
		id:        s.newID(),
		server:    s,
		output:    o,
		toplevels: []*Toplevel{t},
		node:      s.scene.NewContainerNode(),
		tag:       WorkspaceTag(ws),
		workspace: ws,
		opacity:   1.0,
		weight:    1.0,
	}
	c.border = NewBorder(s.scene.NewContainerNode(), s.Settings.BorderWidth)
	c.border.SetRotation(s.Settings.BorderRotation)
	t.container = c
	s.containers = append(s.containers, c)
	o.attachContainer(c)
	logrus.WithFields(logrus.Fields{
		"container": c.id,
		"output":    o.Name(),
		"workspace": ws,
	}).Debugln("new container")
	s.Bus.Emit(EventContainerNew, c)
	return c
}

func (c *Container) ID() uint64      { return c.id }
func (c *Container) Output() *Output { return c.output }
func (c *Container) Box() Box        { return c.box }
func (c *Container) FloatingBox() Box {
	return c.floatingBox
}
func (c *Container) Tag() TagBits { return c.tag }
func (c *Container) Workspace() int {
	return c.workspace
}
func (c *Container) Border() *Border { return c.border }

func (c *Container) Floating() bool   { return c.flags&flagFloating != 0 }
func (c *Container) Maximized() bool  { return c.flags&flagMaximized != 0 }
func (c *Container) Fullscreen() bool { return c.flags&flagFullscreen != 0 }
func (c *Container) Minimized() bool  { return c.flags&flagMinimized != 0 }
func (c *Container) Sticky() bool     { return c.flags&flagSticky != 0 }

// ConfigureLocked reports whether floating toggles are refused.
func (c *Container) ConfigureLocked() bool {
	return c.Maximized() || c.Fullscreen()
}

// Front returns the visible member of the stack, nil when emptying.
func (c *Container) Front() *Toplevel {
	if len(c.toplevels) == 0 {
		return nil
	}
	return c.toplevels[0]
}

func (c *Container) Toplevels() []*Toplevel {
	return c.toplevels
}

// Visible reports whether the container shows on its output right now.
func (c *Container) Visible() bool {
	if c.Minimized() {
		return false
	}
	return c.Sticky() || c.tag&c.output.state.ActiveTag != 0
}

// Tiled reports live tiling-tree membership.
func (c *Container) Tiled() bool {
	return c.tilingNode != nil
}

func (c *Container) emitProp(name string) {
	c.server.Bus.Emit(clientPropEvent(name), c.Front())
}

// insertToplevel pushes t to the front of the stack. The previous
// front is hidden but keeps receiving geometry.
func (c *Container) insertToplevel(t *Toplevel) {
	if prev := c.Front(); prev != nil {
		prev.setHidden(true)
	}
	c.toplevels = append([]*Toplevel{t}, c.toplevels...)
	t.container = c
	t.setHidden(false)
	c.output.state.toplevels = append(c.output.state.toplevels, t)
	c.server.Bus.Emit(EventContainerInsert, c, t)
}

// removeToplevel drops t from the stack. The container is destroyed
// when its last member leaves unless keepEmpty holds it open for an
// atomic swap.
func (c *Container) removeToplevel(t *Toplevel, keepEmpty bool) {
	wasFront := c.Front() == t
	c.toplevels = sliceutils.Filter(c.toplevels, func(e *Toplevel) bool {
		return e != t
	})
	c.output.state.toplevels = sliceutils.Filter(c.output.state.toplevels, func(e *Toplevel) bool {
		return e != t
	})
	t.container = nil
	c.server.Bus.Emit(EventContainerRemove, c, t)
	if len(c.toplevels) == 0 {
		if !keepEmpty {
			c.destroy()
		}
		return
	}
	if wasFront {
		c.Front().setHidden(false)
	}
}

func (c *Container) destroy() {
	if c.tilingNode != nil {
		if engine := c.server.engineFor(c.output.state.TagAt(c.workspace).LayoutMode); engine != nil {
			engine.Remove(c, false)
		}
		c.tilingNode = nil
	}
	c.output.detachContainer(c)
	c.server.removeContainer(c)
	c.border.destroy()
	if c.node != nil {
		c.node.Destroy()
		c.node = nil
	}
	logrus.WithField("container", c.id).Debugln("container destroyed")
	c.server.Bus.Emit(EventContainerDestroy, c)
	c.server.scheduleTransaction(c.output, c.workspace)
}

// SetSize resizes the container to an outer (w, h) including border
// and gaps. Member surfaces get the inner size, front to back, and
// only requests go out; the actual resize lands on a later commit.
func (c *Container) SetSize(w, h int) {
	if c.box.Width == w && c.box.Height == h {
		return
	}
	c.box.Width = w
	c.box.Height = h

	inset := c.border.Thickness() + c.output.state.TagAt(c.workspace).UselessGaps
	innerW := w - inset*2
	innerH := h - inset*2
	if innerW < MinContainerSize {
		innerW = MinContainerSize
	}
	if innerH < MinContainerSize {
		innerH = MinContainerSize
	}
	for _, t := range c.toplevels {
		t.requestSize(innerW, innerH)
	}
	c.border.Resize(w, h)

	if c.Floating() && !c.Fullscreen() && !c.Maximized() {
		c.floatingBox.Width = w
		c.floatingBox.Height = h
	}
}

// SetPositionGlobal moves the container in global layout coordinates
// and silently reassigns ownership to whichever output now holds its
// center. Reassignment never translates the position; translation is
// a separate step used only for hot-unplug migration.
func (c *Container) SetPositionGlobal(x, y int) {
	c.box.X = x
	c.box.Y = y
	if c.node != nil {
		c.node.SetPosition(x, y)
	}
	if c.Floating() && !c.Fullscreen() && !c.Maximized() {
		c.floatingBox.X = x
		c.floatingBox.Y = y
	}
	cx, cy := c.box.Center()
	if o := c.server.outputAtPoint(cx, cy); o != nil && o != c.output {
		c.reassignOutput(o)
	}
}

// SetPosition moves the container relative to its owning output.
func (c *Container) SetPosition(x, y int) {
	c.SetPositionGlobal(c.output.layoutBox.X+x, c.output.layoutBox.Y+y)
}

// reassignOutput transfers list membership without touching geometry
// or tiling. Used for drag-across-monitor tracking.
func (c *Container) reassignOutput(o *Output) {
	old := c.output
	old.detachContainer(c)
	c.output = o
	o.attachContainer(c)
	logrus.WithFields(logrus.Fields{
		"container": c.id,
		"from":      old.Name(),
		"to":        o.Name(),
	}).Debugln("container changed output")
}

// MoveToOutput relocates the container onto o, rejoining that output's
// tiling state. Geometry fixups that depend on o's final dimensions
// run from the idle queue.
func (c *Container) MoveToOutput(o *Output) {
	if o == nil || o == c.output {
		return
	}
	from := c.output
	wasTiled := c.tilingNode != nil
	if wasTiled {
		if engine := c.server.engineFor(from.state.TagAt(c.workspace).LayoutMode); engine != nil {
			engine.Remove(c, true)
		}
		c.tilingNode = nil
	}
	from.detachContainer(c)
	c.output = o
	c.workspace = ClampWorkspace(o.state.ActiveWorkspace)
	c.tag = WorkspaceTag(c.workspace)
	o.attachContainer(c)
	c.server.scheduleTransaction(from, from.state.ActiveWorkspace)
	c.server.scheduleTransaction(o, c.workspace)

	if c.Fullscreen() || c.Maximized() {
		// New output dimensions are only authoritative once the move
		// and any output reconfiguration settled.
		c.server.ScheduleIdle(func() {
			c.applyLockedGeometry()
		})
		return
	}
	if c.Floating() {
		fromBox := from.layoutBox
		c.server.ScheduleIdle(func() {
			c.translateProportional(fromBox, o.layoutBox)
		})
		return
	}
	if wasTiled {
		if engine := c.server.engineFor(o.state.TagAt(c.workspace).LayoutMode); engine != nil {
			c.tilingNode = engine.Insert(c, c.workspace)
		}
	}
}

// translateProportional maps a floating position from one output's
// space into another's, keeping the relative placement.
func (c *Container) translateProportional(from, to Box) {
	if from.Empty() || to.Empty() {
		c.SetPositionGlobal(to.X, to.Y)
		return
	}
	relX := float64(c.box.X-from.X) / float64(from.Width)
	relY := float64(c.box.Y-from.Y) / float64(from.Height)
	c.SetPositionGlobal(to.X+int(relX*float64(to.Width)), to.Y+int(relY*float64(to.Height)))
}

// applyLockedGeometry re-applies fullscreen or maximized geometry
// against the current output.
func (c *Container) applyLockedGeometry() {
	if c.Fullscreen() {
		b := c.output.layoutBox
		c.SetPositionGlobal(b.X, b.Y)
		c.SetSize(b.Width, b.Height)
		return
	}
	if c.Maximized() {
		b := c.output.UsableArea()
		c.SetPositionGlobal(b.X, b.Y)
		c.SetSize(b.Width, b.Height)
	}
}

// SetWorkspace moves the container to a single workspace, resetting
// any multi-tag override. Index is clamped into [1, MaxWorkspace].
func (c *Container) SetWorkspace(workspace int) {
	workspace = ClampWorkspace(workspace)
	if workspace == c.workspace && c.tag == WorkspaceTag(workspace) {
		return
	}
	oldWorkspace := c.workspace
	if c.tilingNode != nil {
		if engine := c.server.engineFor(c.output.state.TagAt(oldWorkspace).LayoutMode); engine != nil {
			engine.Remove(c, true)
		}
		c.tilingNode = nil
	}
	c.workspace = workspace
	c.tag = WorkspaceTag(workspace)
	if !c.Floating() && !c.ConfigureLocked() && !c.Minimized() {
		if engine := c.server.engineFor(c.output.state.TagAt(workspace).LayoutMode); engine != nil {
			c.tilingNode = engine.Insert(c, workspace)
		}
	}
	c.output.updateVisible()
	c.server.scheduleTransaction(c.output, oldWorkspace)
	c.server.scheduleTransaction(c.output, workspace)
	c.emitProp("workspace")
}

// SetTag overrides tag membership directly, allowing multiple bits.
// The workspace index stays as the anchor.
func (c *Container) SetTag(tag TagBits) {
	if tag == 0 || tag == c.tag {
		return
	}
	c.tag = tag
	c.output.updateVisible()
	c.server.scheduleTransaction(c.output, c.workspace)
	c.emitProp("tag")
}

// SetFloating toggles freeform placement. Refused while maximized or
// fullscreen: the state is configure-locked.
func (c *Container) SetFloating(floating bool) {
	if c.ConfigureLocked() || c.Floating() == floating {
		return
	}
	if floating {
		if c.tilingNode != nil {
			if engine := c.server.engineFor(c.output.state.TagAt(c.workspace).LayoutMode); engine != nil {
				engine.Remove(c, false)
			}
			c.tilingNode = nil
		}
		c.flags |= flagFloating
		if c.floatingBox.Empty() {
			c.ToCenter()
		} else {
			c.SetPositionGlobal(c.floatingBox.X, c.floatingBox.Y)
			c.SetSize(c.floatingBox.Width, c.floatingBox.Height)
		}
	} else {
		c.flags &^= flagFloating
		if engine := c.server.engineFor(c.output.state.TagAt(c.workspace).LayoutMode); engine != nil {
			c.tilingNode = engine.Insert(c, c.workspace)
		}
	}
	for _, t := range c.toplevels {
		t.applyDecoration()
		t.surface.SetTiled(!floating)
	}
	c.server.scheduleTransaction(c.output, c.workspace)
	c.emitProp("floating")
}

// SetMaximized expands the container over the output's usable area.
// Requesting it while fullscreen exits fullscreen first.
func (c *Container) SetMaximized(maximized bool) {
	if maximized {
		if c.Fullscreen() {
			c.exitFullscreen()
		}
		if !c.Maximized() {
			c.flags |= flagMaximized
			c.border.SetEnabled(false)
			if c.tilingNode != nil {
				c.tilingNode.SetEnabled(false)
			}
			for _, t := range c.toplevels {
				t.surface.SetMaximized(true)
				t.publishForeignState()
			}
		}
		c.applyLockedGeometry()
	} else {
		if !c.Maximized() {
			return
		}
		c.flags &^= flagMaximized
		c.border.SetEnabled(true)
		for _, t := range c.toplevels {
			t.surface.SetMaximized(false)
			t.publishForeignState()
		}
		c.restoreUnlockedGeometry()
	}
	c.server.scheduleTransaction(c.output, c.workspace)
	c.emitProp("maximized")
}

// SetFullscreen covers the whole output. Mutually exclusive with
// maximized; leaving fullscreen returns to the maximized state it
// replaced, if any.
func (c *Container) SetFullscreen(fullscreen bool) {
	if fullscreen {
		if c.Fullscreen() {
			c.applyLockedGeometry()
			return
		}
		if c.Maximized() {
			c.flags &^= flagMaximized
			c.wasMaximized = true
			for _, t := range c.toplevels {
				t.surface.SetMaximized(false)
			}
		} else {
			// A latch from an earlier fullscreen round is stale once
			// the user un-maximized in between.
			c.wasMaximized = false
		}
		c.flags |= flagFullscreen
		c.border.SetEnabled(false)
		if c.tilingNode != nil {
			c.tilingNode.SetEnabled(false)
		}
		for _, t := range c.toplevels {
			t.surface.SetFullscreen(true)
			t.publishForeignState()
		}
		c.applyLockedGeometry()
		if c.node != nil {
			c.node.RaiseToTop()
		}
	} else {
		if !c.Fullscreen() {
			return
		}
		c.exitFullscreen()
		if c.wasMaximized {
			c.wasMaximized = false
			c.SetMaximized(true)
			return
		}
		c.border.SetEnabled(true)
		c.restoreUnlockedGeometry()
	}
	c.server.scheduleTransaction(c.output, c.workspace)
	c.emitProp("fullscreen")
}

func (c *Container) exitFullscreen() {
	c.flags &^= flagFullscreen
	for _, t := range c.toplevels {
		t.surface.SetFullscreen(false)
		t.publishForeignState()
	}
}

// restoreUnlockedGeometry returns from a locked state: floating
// containers get their saved box back, tiled ones rejoin the layout.
func (c *Container) restoreUnlockedGeometry() {
	if c.Floating() {
		if !c.floatingBox.Empty() {
			c.SetPositionGlobal(c.floatingBox.X, c.floatingBox.Y)
			c.SetSize(c.floatingBox.Width, c.floatingBox.Height)
		}
		return
	}
	if c.tilingNode != nil {
		c.tilingNode.SetEnabled(true)
	}
}

// SetMinimized hides the container regardless of tag matching and
// parks it in the output's minimized list.
func (c *Container) SetMinimized(minimized bool) {
	if c.Minimized() == minimized {
		return
	}
	if minimized {
		c.flags |= flagMinimized
		if c.tilingNode != nil {
			if engine := c.server.engineFor(c.output.state.TagAt(c.workspace).LayoutMode); engine != nil {
				engine.Remove(c, true)
			}
			c.tilingNode = nil
		}
		c.output.pushMinimized(c)
		for _, t := range c.toplevels {
			t.surface.SetSuspended(true)
			t.publishForeignState()
		}
	} else {
		c.flags &^= flagMinimized
		c.output.dropMinimized(c)
		if !c.Floating() && !c.ConfigureLocked() {
			if engine := c.server.engineFor(c.output.state.TagAt(c.workspace).LayoutMode); engine != nil {
				c.tilingNode = engine.Insert(c, c.workspace)
			}
		}
		for _, t := range c.toplevels {
			t.surface.SetSuspended(false)
			t.publishForeignState()
		}
		c.output.focusNewest()
	}
	c.output.updateVisible()
	c.server.scheduleTransaction(c.output, c.workspace)
	c.emitProp("minimized")
}

// SetSticky makes the container visible on every active tag. An
// override, not a tag mutation.
func (c *Container) SetSticky(sticky bool) {
	if c.Sticky() == sticky {
		return
	}
	if sticky {
		c.flags |= flagSticky
	} else {
		c.flags &^= flagSticky
	}
	c.output.updateVisible()
	c.emitProp("sticky")
}

// ToCenter centers the container in its output's usable area.
func (c *Container) ToCenter() {
	usable := c.output.UsableArea()
	c.SetPositionGlobal(
		usable.X+(usable.Width-c.box.Width)/2,
		usable.Y+(usable.Height-c.box.Height)/2,
	)
}

func (c *Container) Raise() {
	if c.node != nil {
		c.node.RaiseToTop()
	}
	c.server.Bus.Emit(EventClientRaised, c.Front())
}

func (c *Container) Lower() {
	if c.node != nil {
		c.node.LowerToBottom()
	}
	c.server.Bus.Emit(EventClientLowered, c.Front())
}

// SetOpacity clamps into [0, 1].
func (c *Container) SetOpacity(opacity float64) {
	if opacity < 0 {
		opacity = 0
	} else if opacity > 1 {
		opacity = 1
	}
	if c.opacity == opacity {
		return
	}
	c.opacity = opacity
	c.emitProp("opacity")
}

func (c *Container) Opacity() float64 {
	return c.opacity
}

// FocusIndex rotates the stack so the member at idx becomes the
// visible front. Out-of-range indices wrap.
func (c *Container) FocusIndex(idx int) {
	n := len(c.toplevels)
	if n < 2 {
		return
	}
	idx = ((idx % n) + n) % n
	if idx == 0 {
		return
	}
	front := c.Front()
	front.setHidden(true)
	c.toplevels = append(c.toplevels[idx:], c.toplevels[:idx]...)
	c.Front().setHidden(false)
	c.server.Bus.Emit(EventClientSwap, front, c.Front())
}

// Swap exchanges the full toplevel membership of two containers. Each
// stack keeps its internal order, so front selection is preserved per
// stack. Exactly one container::swap event fires, source first.
func (c *Container) Swap(other *Container) {
	if other == nil || other == c {
		return
	}
	c.toplevels, other.toplevels = other.toplevels, c.toplevels
	for _, t := range c.toplevels {
		t.container = c
	}
	for _, t := range other.toplevels {
		t.container = other
	}
	if c.output != other.output {
		for _, t := range c.toplevels {
			moveToplevelMembership(t, other.output, c.output)
		}
		for _, t := range other.toplevels {
			moveToplevelMembership(t, c.output, other.output)
		}
	}
	// Push each stack into its new geometry.
	c.resizeMembers()
	other.resizeMembers()
	c.server.Bus.Emit(EventContainerSwap, c, other)
	c.server.scheduleTransaction(c.output, c.workspace)
	c.server.scheduleTransaction(other.output, other.workspace)
}

func (c *Container) resizeMembers() {
	inset := c.border.Thickness() + c.output.state.TagAt(c.workspace).UselessGaps
	innerW := c.box.Width - inset*2
	innerH := c.box.Height - inset*2
	if innerW < MinContainerSize {
		innerW = MinContainerSize
	}
	if innerH < MinContainerSize {
		innerH = MinContainerSize
	}
	for _, t := range c.toplevels {
		t.requestSize(innerW, innerH)
	}
}

func moveToplevelMembership(t *Toplevel, from, to *Output) {
	from.state.toplevels = sliceutils.Filter(from.state.toplevels, func(e *Toplevel) bool {
		return e != t
	})
	to.state.toplevels = append(to.state.toplevels, t)
}

// setVisible flips the scene node with the computed visibility.
func (c *Container) setVisible(visible bool) {
	if c.node != nil {
		c.node.SetEnabled(visible)
	}
	for _, t := range c.toplevels {
		t.publishForeignOutput(visible)
	}
}
