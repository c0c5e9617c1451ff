package tiler

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/mstarongithub/waytag/wm"
)

type splitDirection int

const (
	splitVertical = splitDirection(iota)
	splitHorizontal
)

type treeKey struct {
	output    uint64
	workspace int
}

type (
	// bspTree is one binary split tree. One tree per output/workspace
	// pair, created lazily on first insert.
	bspTree struct {
		root        *bspNode
		lastFocused *bspNode // last inserted/focused leaf, split target
	}

	// bspNode is either a branch (both children set) or a leaf
	// (container set). Disabled leaves keep their slot in the layout
	// but receive no geometry.
	bspNode struct {
		parent      *bspNode
		split       splitDirection
		ratio       float64
		left, right *bspNode

		container *wm.Container
		enabled   bool
	}
)

func (n *bspNode) isLeaf() bool {
	return n.container != nil
}

func (n *bspNode) SetEnabled(enabled bool) {
	n.enabled = enabled
}

func (n *bspNode) Enabled() bool {
	return n.enabled
}

// BSP is the binary-space-partition tiling engine. Implements
// wm.TilingEngine.
type BSP struct {
	trees map[treeKey]*bspTree
	nodes map[*wm.Container]*bspNode
	lock  sync.Mutex
}

func NewBSP() *BSP {
	return &BSP{
		trees: map[treeKey]*bspTree{},
		nodes: map[*wm.Container]*bspNode{},
	}
}

func (b *BSP) treeFor(c *wm.Container, workspace int) *bspTree {
	key := treeKey{output: c.Output().ID(), workspace: workspace}
	t, ok := b.trees[key]
	if !ok {
		t = &bspTree{}
		b.trees[key] = t
	}
	return t
}

// Insert splits the last focused leaf and places c in the new half.
// Split orientation follows the shape of the leaf being split: wide
// leaves split side by side, tall ones top over bottom.
func (b *BSP) Insert(c *wm.Container, workspace int) wm.TilingNode {
	b.lock.Lock()
	defer b.lock.Unlock()

	if old, ok := b.nodes[c]; ok {
		// Already tracked; hand the same node back.
		return old
	}
	t := b.treeFor(c, workspace)
	leaf := &bspNode{container: c, enabled: true}
	b.nodes[c] = leaf

	if t.root == nil {
		t.root = leaf
		t.lastFocused = leaf
		return leaf
	}

	target := t.lastFocused
	if target == nil || !target.isLeaf() {
		target = leftmostLeaf(t.root)
	}

	split := splitVertical
	box := target.container.Box()
	if box.Width > box.Height {
		split = splitHorizontal
	}
	branch := &bspNode{
		parent: target.parent,
		split:  split,
		ratio:  0.5,
		left:   target,
		right:  leaf,
	}
	if target.parent == nil {
		t.root = branch
	} else if target.parent.left == target {
		target.parent.left = branch
	} else {
		target.parent.right = branch
	}
	target.parent = branch
	leaf.parent = branch
	t.lastFocused = leaf
	return leaf
}

// Remove takes c out of its tree, collapsing the parent branch into
// the sibling. detachOnly signals the container is only parked (tag
// move, minimize, output rescue) and will come back.
func (b *BSP) Remove(c *wm.Container, detachOnly bool) {
	b.lock.Lock()
	defer b.lock.Unlock()

	node, ok := b.nodes[c]
	if !ok {
		return
	}
	delete(b.nodes, c)

	t := b.treeFor(c, c.Workspace())
	if t.lastFocused == node {
		t.lastFocused = nil
	}

	parent := node.parent
	if parent == nil {
		t.root = nil
		return
	}
	sibling := parent.left
	if sibling == node {
		sibling = parent.right
	}
	sibling.parent = parent.parent
	if parent.parent == nil {
		t.root = sibling
	} else if parent.parent.left == parent {
		parent.parent.left = sibling
	} else {
		parent.parent.right = sibling
	}
	if t.lastFocused == nil {
		t.lastFocused = leftmostLeaf(t.root)
	}
	if !detachOnly {
		logrus.WithField("container", c.ID()).Debugln("bsp: container removed")
	}
}

// UpdateRoot recomputes the whole tree of one workspace and writes the
// geometry back through the container setters.
func (b *BSP) UpdateRoot(o *wm.Output, workspace int) {
	b.lock.Lock()
	defer b.lock.Unlock()

	t, ok := b.trees[treeKey{output: o.ID(), workspace: workspace}]
	if !ok || t.root == nil {
		return
	}
	gaps := o.State().TagAt(workspace).UselessGaps
	area := o.UsableArea().Shrink(gaps)
	applyBox(t.root, area)
}

// ArrangeUpdate re-runs every workspace currently shown on o.
func (b *BSP) ArrangeUpdate(o *wm.Output) {
	active := o.State().ActiveTag
	for i := 1; i <= wm.MaxWorkspace; i++ {
		if active&wm.WorkspaceTag(i) != 0 {
			b.UpdateRoot(o, i)
		}
	}
}

func applyBox(n *bspNode, area wm.Box) {
	if n.isLeaf() {
		if !n.enabled {
			return
		}
		n.container.SetPositionGlobal(area.X, area.Y)
		n.container.SetSize(area.Width, area.Height)
		return
	}
	left, right := splitBox(area, n.split, n.ratio)
	applyBox(n.left, left)
	applyBox(n.right, right)
}

func splitBox(area wm.Box, split splitDirection, ratio float64) (wm.Box, wm.Box) {
	if split == splitHorizontal {
		lw := int(float64(area.Width) * ratio)
		left := wm.Box{X: area.X, Y: area.Y, Width: lw, Height: area.Height}
		right := wm.Box{X: area.X + lw, Y: area.Y, Width: area.Width - lw, Height: area.Height}
		return left, right
	}
	lh := int(float64(area.Height) * ratio)
	top := wm.Box{X: area.X, Y: area.Y, Width: area.Width, Height: lh}
	bottom := wm.Box{X: area.X, Y: area.Y + lh, Width: area.Width, Height: area.Height - lh}
	return top, bottom
}

func leftmostLeaf(n *bspNode) *bspNode {
	for n != nil && !n.isLeaf() {
		n = n.left
	}
	return n
}
