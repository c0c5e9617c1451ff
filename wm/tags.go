package wm

// MaxWorkspace is the number of addressable workspaces per output.
const MaxWorkspace = 30

// MaxGeneralWorkspace is the highest workspace exposed through the
// default keybindings and the tool surface.
const MaxGeneralWorkspace = 9

// TagBits is a workspace membership bitmask. Bit n-1 set means the
// entity is on workspace n.
type TagBits uint32

// WorkspaceTag returns the single-bit mask for a 1-based workspace
// index, clamped into [1, MaxWorkspace].
func WorkspaceTag(workspace int) TagBits {
	return 1 << (ClampWorkspace(workspace) - 1)
}

func ClampWorkspace(workspace int) int {
	if workspace < 1 {
		return 1
	}
	if workspace > MaxWorkspace {
		return MaxWorkspace
	}
	return workspace
}

type LayoutMode int

const (
	LayoutFloating = LayoutMode(iota)
	LayoutMaster
	LayoutBSP
	layoutModeCount
)

func (m LayoutMode) String() string {
	switch m {
	case LayoutFloating:
		return "floating"
	case LayoutMaster:
		return "master"
	case LayoutBSP:
		return "bsp"
	}
	return "unknown"
}

// MasterState holds the master-stack layout parameters of one
// workspace. CurrentStrategy indexes a cyclic list of named
// arrangement strategies owned by the engine.
type MasterState struct {
	MasterCount     int
	ColumnCount     int
	MWFact          float64
	CurrentStrategy int
}

// TagInfo is the per-workspace state of one output.
type TagInfo struct {
	Index       int
	UselessGaps int
	LayoutMode  LayoutMode
	Master      MasterState

	// pendingTransaction marks a queued re-arrangement so rapid
	// changes coalesce into one tiling pass.
	pendingTransaction bool
}

// SetMWFact clamps into [0.1, 0.9].
func (ti *TagInfo) SetMWFact(factor float64) {
	if factor < 0.1 {
		factor = 0.1
	} else if factor > 0.9 {
		factor = 0.9
	}
	ti.Master.MWFact = factor
}

// SetUselessGaps clamps to >= 0.
func (ti *TagInfo) SetUselessGaps(gaps int) {
	if gaps < 0 {
		gaps = 0
	}
	ti.UselessGaps = gaps
}

func newTagInfo(index, defaultGaps int) *TagInfo {
	return &TagInfo{
		Index:       index,
		UselessGaps: defaultGaps,
		LayoutMode:  LayoutFloating,
		Master: MasterState{
			MasterCount:     1,
			ColumnCount:     1,
			MWFact:          0.5,
			CurrentStrategy: 0,
		},
	}
}

// OutputState is the per-output workspace configuration. It outlives
// the Output that owns it: on hot-unplug the server detaches it into a
// name-keyed cache, and a later output with the same name reattaches
// it unchanged.
type OutputState struct {
	Tags            [MaxWorkspace + 1]*TagInfo // 1-based, index 0 unused
	ActiveTag       TagBits
	ActiveWorkspace int

	// focusStack is most-recently-focused first.
	focusStack []*Container
	toplevels  []*Toplevel
	containers []*Container
	minimized  []*Container
}

func newOutputState(defaultGaps int) *OutputState {
	s := &OutputState{
		ActiveTag:       1,
		ActiveWorkspace: 1,
	}
	for i := 1; i <= MaxWorkspace; i++ {
		s.Tags[i] = newTagInfo(i, defaultGaps)
	}
	return s
}

// TagAt returns the tag info for a workspace index, clamping the
// index into range.
func (s *OutputState) TagAt(workspace int) *TagInfo {
	return s.Tags[ClampWorkspace(workspace)]
}
