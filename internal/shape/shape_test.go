package shape

import (
	"errors"
	"math"
	"testing"

	"github.com/prismanis/prismanis/internal/geom"
	"github.com/prismanis/prismanis/internal/material"
)

func nearly(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func vecNearly(a, b geom.Vec2, tol float64) bool {
	return nearly(a.X, b.X, tol) && nearly(a.Y, b.Y, tol)
}

func square(t *testing.T) *Object {
	t.Helper()
	obj, err := NewPolygonObject("sq", []geom.Vec2{
		geom.V(0, 0), geom.V(100, 0), geom.V(100, 100), geom.V(0, 100),
	}, material.Glass)
	if err != nil {
		t.Fatalf("NewPolygonObject: %v", err)
	}
	return obj
}

func TestNewPolygonObject(t *testing.T) {
	obj := square(t)
	if obj.Transform.Position != geom.V(50, 50) {
		t.Errorf("position = %v, want (50,50)", obj.Transform.Position)
	}
	if obj.Transform.BaseSize != geom.V(100, 100) {
		t.Errorf("base size = %v, want (100,100)", obj.Transform.BaseSize)
	}
	if signedArea(obj.Polygon.Points) > 0 {
		t.Errorf("points not wound clockwise: %v", obj.Polygon.Points)
	}

	_, err := NewPolygonObject("x", []geom.Vec2{geom.V(0, 0), geom.V(1, 1)}, material.Glass)
	if !errors.Is(err, ErrTooFewPoints) {
		t.Fatalf("err = %v, want ErrTooFewPoints", err)
	}
}

func TestPolygonIntersect(t *testing.T) {
	tests := []struct {
		name       string
		origin     geom.Vec2
		dir        geom.Vec2
		wantHit    bool
		wantT      float64
		wantNormal geom.Vec2
	}{
		{"enter left", geom.V(-50, 50), geom.V(1, 0), true, 50, geom.V(-1, 0)},
		{"enter top", geom.V(50, -20), geom.V(0, 1), true, 20, geom.V(0, -1)},
		{"exit right", geom.V(50, 50), geom.V(1, 0), true, 50, geom.V(1, 0)},
		{"exit bottom", geom.V(50, 50), geom.V(0, 1), true, 50, geom.V(0, 1)},
		{"miss", geom.V(-50, 150), geom.V(1, 0), false, 0, geom.Vec2{}},
		{"parallel to edge", geom.V(-50, -10), geom.V(1, 0), false, 0, geom.Vec2{}},
		{"pointing away", geom.V(-50, 50), geom.V(-1, 0), false, 0, geom.Vec2{}},
	}
	obj := square(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, ok := obj.Intersect(tt.origin, tt.dir)
			if ok != tt.wantHit {
				t.Fatalf("hit = %v, want %v", ok, tt.wantHit)
			}
			if !ok {
				return
			}
			if !nearly(hit.T, tt.wantT, 1e-9) {
				t.Errorf("t = %v, want %v", hit.T, tt.wantT)
			}
			if !vecNearly(hit.Normal, tt.wantNormal, 1e-9) {
				t.Errorf("normal = %v, want %v", hit.Normal, tt.wantNormal)
			}
		})
	}
}

func TestPolygonNormalsFollowRotation(t *testing.T) {
	obj := square(t)
	obj.Transform.Rotate(math.Pi / 4)
	hit, ok := obj.Intersect(geom.V(-100, 60), geom.V(1, 0))
	if !ok {
		t.Fatal("expected hit on rotated square")
	}
	want := geom.V(50-(50*math.Sqrt2-10), 60)
	if !vecNearly(hit.Point, want, 1e-9) {
		t.Errorf("hit point = %v, want %v", hit.Point, want)
	}
	if !vecNearly(hit.Normal, geom.V(-math.Sqrt2/2, math.Sqrt2/2), 1e-9) {
		t.Errorf("normal = %v", hit.Normal)
	}
	if !nearly(math.Hypot(hit.Normal.X, hit.Normal.Y), 1, 1e-12) {
		t.Errorf("normal %v not unit length", hit.Normal)
	}
}

func TestPolygonContainsPoint(t *testing.T) {
	obj := square(t)
	if !obj.ContainsPoint(geom.V(50, 50)) {
		t.Error("centre should be inside")
	}
	if obj.ContainsPoint(geom.V(150, 50)) {
		t.Error("point to the right should be outside")
	}
	obj.Transform.Translate(geom.V(100, 0))
	if !obj.ContainsPoint(geom.V(150, 50)) {
		t.Error("point should be inside after translate")
	}
}

func TestClone(t *testing.T) {
	obj := square(t)
	c := obj.Clone()
	c.Polygon.Points[0] = geom.V(999, 999)
	c.Transform.Translate(geom.V(1, 1))
	if obj.Polygon.Points[0] == geom.V(999, 999) {
		t.Error("clone shares polygon points")
	}
	if obj.Transform.Position != geom.V(50, 50) {
		t.Error("clone shares transform")
	}
}

func TestArcWidth(t *testing.T) {
	if w := ArcWidth(math.Inf(1), 60); w != 0 {
		t.Errorf("flat width = %v", w)
	}
	want := 100 - math.Sqrt(100*100-30*30)
	if w := ArcWidth(100, 60); !nearly(w, want, 1e-12) {
		t.Errorf("ArcWidth(100, 60) = %v, want %v", w, want)
	}
	if w := ArcWidth(-100, 60); !nearly(w, want, 1e-12) {
		t.Errorf("ArcWidth(-100, 60) = %v, want %v", w, want)
	}
	if a := ArcHalfAngle(-100, 60); !nearly(a, -math.Asin(0.3), 1e-12) {
		t.Errorf("ArcHalfAngle(-100, 60) = %v", a)
	}
}

func TestLensValidate(t *testing.T) {
	tests := []struct {
		name string
		lens Lens
		h    float64
		ok   bool
	}{
		{"biconvex", Lens{R1: 100, R2: 100, Thickness: 20}, 60, true},
		{"flat", Lens{R1: math.Inf(1), R2: math.Inf(-1), Thickness: 20}, 60, true},
		{"half circle", Lens{R1: 30, R2: 30}, 60, true},
		{"radius too small", Lens{R1: 20, R2: 100, Thickness: 20}, 60, false},
		{"nan radius", Lens{R1: math.NaN(), R2: 100}, 60, false},
		{"zero height", Lens{R1: 100, R2: 100}, 0, false},
		{"negative thickness", Lens{R1: 100, R2: 100, Thickness: -1}, 60, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.lens.Validate(tt.h)
			if tt.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidLens) {
				t.Fatalf("err = %v, want ErrInvalidLens", err)
			}
		})
	}
}

func TestLensIntersect(t *testing.T) {
	w := 100 - math.Sqrt(100*100-30*30)
	tests := []struct {
		name       string
		lens       Lens
		rotation   float64
		origin     geom.Vec2
		dir        geom.Vec2
		wantT      float64
		wantNormal geom.Vec2
	}{
		{"convex entry", Lens{R1: 100, R2: 100, Thickness: 20}, 0, geom.V(-500, 0), geom.V(1, 0), 500 - 10 - w, geom.V(-1, 0)},
		{"convex exit", Lens{R1: 100, R2: 100, Thickness: 20}, 0, geom.V(0, 0), geom.V(1, 0), 10 + w, geom.V(1, 0)},
		{"concave entry", Lens{R1: -100, R2: -100, Thickness: 20}, 0, geom.V(-500, 0), geom.V(1, 0), 490, geom.V(-1, 0)},
		{"concave exit", Lens{R1: -100, R2: -100, Thickness: 20}, 0, geom.V(0, 0), geom.V(1, 0), 10, geom.V(1, 0)},
		{"flat entry", Lens{R1: math.Inf(1), R2: math.Inf(1), Thickness: 20}, 0, geom.V(-500, 0), geom.V(1, 0), 490, geom.V(-1, 0)},
		{"top edge", Lens{R1: 100, R2: 100, Thickness: 20}, 0, geom.V(0, -500), geom.V(0, 1), 470, geom.V(0, -1)},
		{"rotated", Lens{R1: 100, R2: 100, Thickness: 20}, math.Pi / 2, geom.V(0, -500), geom.V(0, 1), 500 - 10 - w, geom.V(0, -1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj, err := NewLensObject("lens", tt.lens, geom.V(0, 0), 60, tt.rotation, material.Glass)
			if err != nil {
				t.Fatalf("NewLensObject: %v", err)
			}
			hit, ok := obj.Intersect(tt.origin, tt.dir)
			if !ok {
				t.Fatal("expected a hit")
			}
			if !nearly(hit.T, tt.wantT, 1e-9) {
				t.Errorf("t = %v, want %v", hit.T, tt.wantT)
			}
			if !vecNearly(hit.Normal, tt.wantNormal, 1e-9) {
				t.Errorf("normal = %v, want %v", hit.Normal, tt.wantNormal)
			}
		})
	}
}

func TestLensMissAndContains(t *testing.T) {
	obj, err := NewLensObject("lens", Lens{R1: 100, R2: 100, Thickness: 20}, geom.V(0, 0), 60, 0, material.Glass)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := obj.Intersect(geom.V(-500, 40), geom.V(1, 0)); ok {
		t.Error("ray above the lens should miss")
	}
	if obj.ContainsPoint(geom.V(0, 0)) {
		t.Error("lenses never report containment")
	}
}

func TestLensOutline(t *testing.T) {
	obj, err := NewLensObject("lens", Lens{R1: 100, R2: -200, Thickness: 20}, geom.V(300, 200), 60, 0.3, material.Glass)
	if err != nil {
		t.Fatal(err)
	}
	assertOutlineInBounds(t, obj)

	for _, h := range []float64{120, 20, 190} {
		if err := obj.Resize(geom.BottomRight, geom.V(1, h)); err != nil {
			t.Fatalf("Resize to h=%v: %v", h, err)
		}
		assertOutlineInBounds(t, obj)
	}
}

func assertOutlineInBounds(t *testing.T, obj *Object) {
	t.Helper()
	pts := obj.Outline(16)
	if len(pts) < 2*17 {
		t.Fatalf("outline has %d points", len(pts))
	}
	bounds := obj.BoundingRect()
	bounds.X -= 1e-6
	bounds.Y -= 1e-6
	bounds.Width += 2e-6
	bounds.Height += 2e-6
	for _, p := range pts {
		if !bounds.Contains(p) {
			t.Fatalf("outline point %v outside bounds %+v", p, bounds)
		}
	}
}

func TestLensResize(t *testing.T) {
	lens := Lens{R1: 100, R2: 100, Thickness: 20}
	obj, err := NewLensObject("lens", lens, geom.V(0, 0), 60, 0, material.Glass)
	if err != nil {
		t.Fatal(err)
	}
	topLeft := obj.Transform.Corner(geom.TopLeft)

	if err := obj.Resize(geom.BottomRight, geom.V(999, 190)); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	total, _, _ := lens.Widths(190)
	size := obj.Transform.Size()
	if !nearly(size.X, total, 1e-9) || !nearly(size.Y, 190, 1e-9) {
		t.Errorf("size = %v, want (%v, 190)", size, total)
	}
	if obj.Transform.Scale != geom.V(1, 1) {
		t.Errorf("scale = %v, want unit", obj.Transform.Scale)
	}
	if got := obj.Transform.Corner(geom.TopLeft); !vecNearly(got, topLeft, 1e-9) {
		t.Errorf("anchored corner moved from %v to %v", topLeft, got)
	}
	c := obj.Transform.Position
	if _, ok := obj.Intersect(geom.V(c.X-500, c.Y), geom.V(1, 0)); !ok {
		t.Error("resized lens no longer intersects an axial ray")
	}

	before := obj.Transform
	tests := []struct {
		name   string
		height float64
	}{
		{"taller than the arcs span", 250},
		{"zero", 0},
		{"negative", -40},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := obj.Resize(geom.BottomRight, geom.V(50, tt.height)); !errors.Is(err, ErrInvalidLens) {
				t.Fatalf("err = %v, want ErrInvalidLens", err)
			}
			if obj.Transform != before {
				t.Errorf("rejected resize changed transform to %+v", obj.Transform)
			}
		})
	}
}

func TestPolygonResizeUsesBothAxes(t *testing.T) {
	sq := square(t)
	if err := sq.Resize(geom.BottomRight, geom.V(40, 10)); err != nil {
		t.Fatal(err)
	}
	if size := sq.Transform.Size(); !vecNearly(size, geom.V(40, 10), 1e-9) {
		t.Errorf("size = %v, want (40, 10)", size)
	}
}
