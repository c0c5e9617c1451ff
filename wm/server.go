package wm

import (
	"time"

	"github.com/sirupsen/logrus"
	"gitlab.com/mstarongitlab/goutils/sliceutils"

	"github.com/mstarongithub/waytag/signal"
)

// resizeWatchdogTimeout guards against clients that never ack a
// configure. After this long without an ack the in-flight counter is
// reset so repaint resumes.
const resizeWatchdogTimeout = 500 * time.Millisecond

// resizeCountStuck is the sentinel the watchdog leaves behind.
const resizeCountStuck = -1

// Settings are the configuration values the core reads. The config
// package fills this from disk; tests fill it directly.
type Settings struct {
	BorderWidth       int
	BorderRotation    int
	DefaultGaps       int
	DefaultDecoration DecorationMode
	TasklistShowAll   bool
}

// Server is the root of the window-management object graph. One per
// process, passed explicitly to every constructor. All mutation
// happens on the single event-loop goroutine, so there is no locking
// here.
type Server struct {
	Bus      *signal.Bus
	Settings Settings

	scene   Scene
	foreign ForeignRegistrar
	engines map[LayoutMode]TilingEngine

	nextID uint64

	outputs    []*Output
	containers []*Container
	toplevels  []*Toplevel

	focusedOutput  *Output
	fallbackOutput *Output

	// insertMarked redirects the next map into an existing container.
	insertMarked *Container

	// resizeCount tracks outstanding asynchronous resize requests
	// process-wide. Repaint is suppressed while > 0.
	resizeCount  int
	lastResizeAt time.Time

	idleQueue []func()

	// outputStateCache keeps the per-workspace configuration of
	// unplugged outputs, keyed by device name, for the whole run.
	outputStateCache map[string]*OutputState

	grab Grab

	// activeToplevel holds keyboard focus.
	activeToplevel *Toplevel
}

func NewServer(scene Scene, foreign ForeignRegistrar, settings Settings) *Server {
	s := &Server{
		Bus:              signal.NewBus(),
		Settings:         settings,
		scene:            scene,
		foreign:          foreign,
		engines:          map[LayoutMode]TilingEngine{},
		outputStateCache: map[string]*OutputState{},
	}
	s.fallbackOutput = newFallbackOutput(s)
	s.focusedOutput = s.fallbackOutput
	return s
}

// RegisterEngine wires the tiling engine for one layout mode. Must be
// called before any container tiles into that mode.
func (s *Server) RegisterEngine(mode LayoutMode, engine TilingEngine) {
	s.engines[mode] = engine
}

func (s *Server) engineFor(mode LayoutMode) TilingEngine {
	return s.engines[mode]
}

func (s *Server) newID() uint64 {
	s.nextID++
	return s.nextID
}

func (s *Server) FocusedOutput() *Output {
	return s.focusedOutput
}

func (s *Server) FallbackOutput() *Output {
	return s.fallbackOutput
}

func (s *Server) Outputs() []*Output {
	return s.outputs
}

func (s *Server) Containers() []*Container {
	return s.containers
}

func (s *Server) Toplevels() []*Toplevel {
	return s.toplevels
}

// RealOutputs filters out the synthetic fallback.
func (s *Server) RealOutputs() []*Output {
	return sliceutils.Filter(s.outputs, func(o *Output) bool {
		return o != s.fallbackOutput
	})
}

// MarkInsert flags a container as the target for the next mapping
// toplevel. Nil clears the mark.
func (s *Server) MarkInsert(c *Container) {
	s.insertMarked = c
}

func (s *Server) takeInsertMarked() *Container {
	c := s.insertMarked
	s.insertMarked = nil
	return c
}

// StartGrab records an interactive move/resize. Any previous grab is
// stopped first.
func (s *Server) StartGrab(g Grab) {
	if s.grab != nil {
		s.grab.Stop()
	}
	s.grab = g
}

func (s *Server) stopGrabFor(t *Toplevel) {
	if s.grab != nil && s.grab.Toplevel() == t {
		s.grab.Stop()
		s.grab = nil
	}
}

// ScheduleIdle queues fn to run when the event loop goes idle. The
// glue pumps this via DispatchIdle after every batch of events.
func (s *Server) ScheduleIdle(fn func()) {
	s.idleQueue = append(s.idleQueue, fn)
}

// DispatchIdle drains the idle queue, including work scheduled by the
// drained callbacks themselves.
func (s *Server) DispatchIdle() {
	for len(s.idleQueue) > 0 {
		queue := s.idleQueue
		s.idleQueue = nil
		for _, fn := range queue {
			fn()
		}
	}
}

// scheduleTransaction batches a layout re-arrangement for one
// output/workspace. Multiple calls before the idle pass coalesce.
func (s *Server) scheduleTransaction(o *Output, workspace int) {
	ti := o.state.TagAt(workspace)
	if ti.pendingTransaction {
		return
	}
	ti.pendingTransaction = true
	s.ScheduleIdle(func() {
		if !ti.pendingTransaction {
			return
		}
		ti.pendingTransaction = false
		o.arrangeWorkspace(ti.Index)
	})
}

// trackResize accounts one outstanding resize request.
func (s *Server) trackResize() {
	if s.resizeCount == resizeCountStuck {
		s.resizeCount = 0
	}
	s.resizeCount++
	s.lastResizeAt = time.Now()
}

// resizeAcked accounts one acknowledged resize.
func (s *Server) resizeAcked() {
	if s.resizeCount > 0 {
		s.resizeCount--
	}
}

// ResizeInFlight reports the current outstanding-resize count. The
// watchdog sentinel reads as zero.
func (s *Server) ResizeInFlight() int {
	if s.resizeCount < 0 {
		return 0
	}
	return s.resizeCount
}

// AllowRender decides whether an output may repaint now. Repaint is
// throttled while resizes are outstanding, unless the focused toplevel
// on this output opted into tearing. A stuck client trips the
// watchdog after resizeWatchdogTimeout and rendering resumes.
func (s *Server) AllowRender(o *Output, now time.Time) bool {
	if s.resizeCount <= 0 {
		return true
	}
	if o.tearingAllowed {
		if t := o.newestToplevel(); t != nil && t.tearingHint {
			return true
		}
	}
	if now.Sub(s.lastResizeAt) > resizeWatchdogTimeout {
		logrus.WithField("outstanding", s.resizeCount).
			Debugln("resize watchdog fired, resuming repaint")
		s.resizeCount = resizeCountStuck
		return true
	}
	return false
}

// outputAtPoint returns the enabled real output whose layout box
// contains the global point, or nil.
func (s *Server) outputAtPoint(x, y int) *Output {
	for _, o := range s.outputs {
		if o == s.fallbackOutput || !o.enabled {
			continue
		}
		if o.layoutBox.ContainsPoint(x, y) {
			return o
		}
	}
	return nil
}

// NearestOutput returns the nearest enabled output in the given
// direction from ref, or nil when none qualifies.
func (s *Server) NearestOutput(ref *Output, dir Direction) *Output {
	refX, refY := ref.layoutBox.Center()
	candidates := []*Output{}
	boxes := []Box{}
	for _, o := range s.outputs {
		if o == ref || o == s.fallbackOutput || !o.enabled {
			continue
		}
		candidates = append(candidates, o)
		boxes = append(boxes, o.layoutBox)
	}
	i := nearestByDirection(refX, refY, dir, boxes)
	if i < 0 {
		return nil
	}
	return candidates[i]
}

// rescueTarget picks where orphans of a dying output go: the nearest
// remaining real output, else the fallback.
func (s *Server) rescueTarget(dying *Output) *Output {
	for _, dir := range []Direction{DirectionLeft, DirectionRight, DirectionUp, DirectionDown} {
		if o := s.NearestOutput(dying, dir); o != nil {
			return o
		}
	}
	return s.fallbackOutput
}

func (s *Server) removeContainer(c *Container) {
	s.containers = sliceutils.Filter(s.containers, func(e *Container) bool {
		return e != c
	})
	if s.insertMarked == c {
		s.insertMarked = nil
	}
}

func (s *Server) removeToplevel(t *Toplevel) {
	s.toplevels = sliceutils.Filter(s.toplevels, func(e *Toplevel) bool {
		return e != t
	})
}

func (s *Server) removeOutput(o *Output) {
	s.outputs = sliceutils.Filter(s.outputs, func(e *Output) bool {
		return e != o
	})
}

// ApplyGapChange pushes a new default gap value into every workspace
// of every output and re-arranges the ones that changed.
func (s *Server) ApplyGapChange(gaps int) {
	if gaps < 0 {
		gaps = 0
	}
	s.Settings.DefaultGaps = gaps
	for _, o := range s.outputs {
		for i := 1; i <= MaxWorkspace; i++ {
			ti := o.state.Tags[i]
			if ti.UselessGaps == gaps {
				continue
			}
			ti.SetUselessGaps(gaps)
			s.scheduleTransaction(o, i)
		}
	}
}

// ApplyBorderChange restyles every container border. Workspaces whose
// member geometry depends on the thickness are re-flowed.
func (s *Server) ApplyBorderChange(width, rotation int) {
	if width < 0 {
		width = 0
	}
	s.Settings.BorderWidth = width
	s.Settings.BorderRotation = rotation
	for _, c := range s.containers {
		c.border.SetRotation(rotation)
		if c.border.thickness == width {
			continue
		}
		c.border.SetThickness(width)
		c.resizeMembers()
		s.scheduleTransaction(c.output, c.workspace)
	}
}
