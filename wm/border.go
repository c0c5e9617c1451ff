package wm

// Border is the decorative frame around a container. It only models
// geometry and enablement; rasterization happens in the render layer.
type Border struct {
	box       Box
	thickness int
	rotation  int
	enabled   bool

	node SceneNode
}

func NewBorder(node SceneNode, thickness int) *Border {
	return &Border{
		thickness: thickness,
		enabled:   true,
		node:      node,
	}
}

// Thickness is zero while the border is disabled so layout math can
// use it unconditionally.
func (b *Border) Thickness() int {
	if !b.enabled {
		return 0
	}
	return b.thickness
}

func (b *Border) Enabled() bool {
	return b.enabled
}

func (b *Border) SetEnabled(enabled bool) {
	if b.enabled == enabled {
		return
	}
	b.enabled = enabled
	if b.node != nil {
		b.node.SetEnabled(enabled)
	}
}

// Resize redraws the border at a new outer size. Same-size calls are
// no-ops.
func (b *Border) Resize(w, h int) {
	if b.box.Width == w && b.box.Height == h {
		return
	}
	b.box.Width = w
	b.box.Height = h
}

func (b *Border) SetThickness(thickness int) {
	if thickness < 0 {
		thickness = 0
	}
	if b.thickness == thickness {
		return
	}
	b.thickness = thickness
}

func (b *Border) Rotation() int {
	return b.rotation
}

func (b *Border) SetRotation(degree int) {
	degree %= 360
	if b.rotation == degree {
		return
	}
	b.rotation = degree
}

func (b *Border) destroy() {
	if b.node != nil {
		b.node.Destroy()
		b.node = nil
	}
}
