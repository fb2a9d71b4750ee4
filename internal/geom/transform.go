package geom

// Corner names one corner of a Transform's oriented rectangle, in local-frame terms
// (top = -Y half, left = -X half).
type Corner int

const (
	TopLeft Corner = iota
	TopRight
	BottomRight
	BottomLeft
)

var cornerNames = [...]string{"topLeft", "topRight", "bottomRight", "bottomLeft"}

func (c Corner) String() string {
	if c < 0 || int(c) >= len(cornerNames) {
		return "unknown"
	}
	return cornerNames[c]
}

// ParseCorner accepts the names returned by Corner.String.
func ParseCorner(s string) (Corner, bool) {
	for i, name := range cornerNames {
		if name == s {
			return Corner(i), true
		}
	}
	return 0, false
}

// Opposite returns the diagonally opposite corner.
func (c Corner) Opposite() Corner {
	return (c + 2) % 4
}

// sign returns the local-frame sign of the corner on each axis.
func (c Corner) sign() Vec2 {
	switch c {
	case TopLeft:
		return Vec2{X: -1, Y: -1}
	case TopRight:
		return Vec2{X: 1, Y: -1}
	case BottomRight:
		return Vec2{X: 1, Y: 1}
	default:
		return Vec2{X: -1, Y: 1}
	}
}

// Transform is an object's frame: position of the centre, rotation around it,
// the size the local geometry was built at, and a non-uniform scale on top of it.
//
// Transform is a plain value; assigning it copies it, which is what history
// snapshots rely on.
type Transform struct {
	Position Vec2    `json:"position"`
	Rotation float64 `json:"rotation"`
	BaseSize Vec2    `json:"baseSize"`
	Scale    Vec2    `json:"scale"`
}

// NewTransform returns a transform with unit scale.
func NewTransform(position Vec2, rotation float64, baseSize Vec2) Transform {
	return Transform{
		Position: position,
		Rotation: rotation,
		BaseSize: baseSize,
		Scale:    Vec2{X: 1, Y: 1},
	}
}

// Size returns the effective size, BaseSize scaled component-wise.
func (t Transform) Size() Vec2 {
	return Vec2{X: t.BaseSize.X * t.Scale.X, Y: t.BaseSize.Y * t.Scale.Y}
}

// Matrix returns Translate(Position) * Rotation(Rotation) * Scale(Scale).
func (t Transform) Matrix() Matrix2D {
	return Translate(t.Position.X, t.Position.Y).
		Multiply(Rotation(t.Rotation)).
		Multiply(Scale(t.Scale.X, t.Scale.Y))
}

// Apply maps a local point to world space: scale, then rotate, then translate.
func (t Transform) Apply(p Vec2) Vec2 {
	scaled := Vec2{X: p.X * t.Scale.X, Y: p.Y * t.Scale.Y}
	return t.ApplyRigid(scaled)
}

// ApplyRigid maps a point that is already in scaled units: rotate, then translate.
func (t Transform) ApplyRigid(p Vec2) Vec2 {
	r := Rotate(p, t.Rotation)
	return Vec2{X: r.X + t.Position.X, Y: r.Y + t.Position.Y}
}

// Corner returns the world position of one corner of the oriented rectangle.
func (t Transform) Corner(c Corner) Vec2 {
	s := c.sign()
	return t.Apply(Vec2{X: s.X * t.BaseSize.X / 2, Y: s.Y * t.BaseSize.Y / 2})
}

// Corners returns the four world-space corners, indexed by Corner.
func (t Transform) Corners() [4]Vec2 {
	return [4]Vec2{
		t.Corner(TopLeft),
		t.Corner(TopRight),
		t.Corner(BottomRight),
		t.Corner(BottomLeft),
	}
}

// BoundingRect is the axis-aligned envelope of Corners.
func (t Transform) BoundingRect() Rect {
	c := t.Corners()
	return BoundsOf(c[:]...)
}

// Translate moves the transform by delta.
func (t *Transform) Translate(delta Vec2) {
	t.Position = Vec2{X: t.Position.X + delta.X, Y: t.Position.Y + delta.Y}
}

// Rotate adds delta radians to the rotation.
func (t *Transform) Rotate(delta float64) {
	t.Rotation += delta
}

// ResizeAgainstCorner rescales so the effective size becomes newSize while the corner
// opposite to the dragged one keeps its world position. Axes with a zero base size
// keep their scale.
func (t *Transform) ResizeAgainstCorner(dragged Corner, newSize Vec2) {
	anchor := dragged.Opposite()
	fixed := t.Corner(anchor)

	if t.BaseSize.X != 0 {
		t.Scale.X = newSize.X / t.BaseSize.X
	}
	if t.BaseSize.Y != 0 {
		t.Scale.Y = newSize.Y / t.BaseSize.Y
	}

	size := t.Size()
	s := anchor.sign()
	offset := Rotate(Vec2{X: s.X * size.X / 2, Y: s.Y * size.Y / 2}, t.Rotation)
	t.Position = Vec2{X: fixed.X - offset.X, Y: fixed.Y - offset.Y}
}
