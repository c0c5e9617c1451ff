package tiler

import (
	"sync"

	"github.com/mstarongithub/waytag/wm"
)

// Strategy is one named master-stack arrangement. Arrange receives the
// enabled containers in insertion order and the area already shrunk by
// the workspace gaps.
type Strategy struct {
	Name    string
	Arrange func(area wm.Box, state wm.MasterState, containers []*wm.Container)
}

type masterNode struct {
	container *wm.Container
	enabled   bool
}

func (n *masterNode) SetEnabled(enabled bool) {
	n.enabled = enabled
}

func (n *masterNode) Enabled() bool {
	return n.enabled
}

// Master is the master-stack tiling engine. Implements
// wm.TilingEngine. The strategy list is cyclic; the workspace's
// CurrentStrategy cursor indexes into it modulo its length.
type Master struct {
	strategies []Strategy
	lists      map[treeKey][]*masterNode
	nodes      map[*wm.Container]*masterNode
	lock       sync.Mutex
}

func NewMaster() *Master {
	return &Master{
		strategies: []Strategy{
			{Name: "tile", Arrange: arrangeTile},
			{Name: "monocle", Arrange: arrangeMonocle},
		},
		lists: map[treeKey][]*masterNode{},
		nodes: map[*wm.Container]*masterNode{},
	}
}

// Strategies exposes the strategy names for the tool surface.
func (m *Master) Strategies() []string {
	names := make([]string, len(m.strategies))
	for i, s := range m.strategies {
		names[i] = s.Name
	}
	return names
}

func (m *Master) Insert(c *wm.Container, workspace int) wm.TilingNode {
	m.lock.Lock()
	defer m.lock.Unlock()

	if old, ok := m.nodes[c]; ok {
		return old
	}
	key := treeKey{output: c.Output().ID(), workspace: workspace}
	node := &masterNode{container: c, enabled: true}
	m.nodes[c] = node
	m.lists[key] = append(m.lists[key], node)
	return node
}

func (m *Master) Remove(c *wm.Container, detachOnly bool) {
	m.lock.Lock()
	defer m.lock.Unlock()

	node, ok := m.nodes[c]
	if !ok {
		return
	}
	delete(m.nodes, c)
	key := treeKey{output: c.Output().ID(), workspace: c.Workspace()}
	list := m.lists[key]
	for i, n := range list {
		if n == node {
			m.lists[key] = append(list[:i], list[i+1:]...)
			break
		}
	}
}

func (m *Master) UpdateRoot(o *wm.Output, workspace int) {
	m.lock.Lock()
	defer m.lock.Unlock()

	list := m.lists[treeKey{output: o.ID(), workspace: workspace}]
	containers := []*wm.Container{}
	for _, n := range list {
		if n.enabled {
			containers = append(containers, n.container)
		}
	}
	if len(containers) == 0 {
		return
	}
	ti := o.State().TagAt(workspace)
	area := o.UsableArea().Shrink(ti.UselessGaps)
	strategy := m.strategies[((ti.Master.CurrentStrategy%len(m.strategies))+len(m.strategies))%len(m.strategies)]
	strategy.Arrange(area, ti.Master, containers)
}

func (m *Master) ArrangeUpdate(o *wm.Output) {
	active := o.State().ActiveTag
	for i := 1; i <= wm.MaxWorkspace; i++ {
		if active&wm.WorkspaceTag(i) != 0 {
			m.UpdateRoot(o, i)
		}
	}
}

// arrangeTile puts the first MasterCount containers in a master column
// sized by MWFact and stacks the rest evenly on the right.
func arrangeTile(area wm.Box, state wm.MasterState, containers []*wm.Container) {
	masters := state.MasterCount
	if masters < 1 {
		masters = 1
	}
	if masters > len(containers) {
		masters = len(containers)
	}
	stack := containers[masters:]

	masterW := area.Width
	if len(stack) > 0 {
		masterW = int(float64(area.Width) * state.MWFact)
	}
	masterH := area.Height / masters
	for i, c := range containers[:masters] {
		c.SetPositionGlobal(area.X, area.Y+i*masterH)
		c.SetSize(masterW, masterH)
	}
	if len(stack) == 0 {
		return
	}
	stackH := area.Height / len(stack)
	for i, c := range stack {
		c.SetPositionGlobal(area.X+masterW, area.Y+i*stackH)
		c.SetSize(area.Width-masterW, stackH)
	}
}

// arrangeMonocle stacks every container over the full area.
func arrangeMonocle(area wm.Box, state wm.MasterState, containers []*wm.Container) {
	for _, c := range containers {
		c.SetPositionGlobal(area.X, area.Y)
		c.SetSize(area.Width, area.Height)
	}
}
