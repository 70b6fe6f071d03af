package math3d

import (
	"math"
	"testing"
)

func approxMat(a, b Mat4, eps float64) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) > eps {
			return false
		}
	}
	return true
}

func TestInverse(t *testing.T) {
	tests := []struct {
		name string
		m    Mat4
	}{
		{"identity", Identity()},
		{"translate", Translate(V3(1, -2, 3))},
		{"trs", FromTRS(V3(4, 5, 6), [4]float64{0, math.Sqrt2 / 2, 0, math.Sqrt2 / 2}, V3(1, 2, 3))},
		{"view projection", Perspective(math.Pi/3, 1.5, 0.1, 100).Mul(LookAt(V3(3, 4, 5), Zero3(), Up()))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv, ok := tt.m.Inverse()
			if !ok {
				t.Fatal("reported singular")
			}
			if got := tt.m.Mul(inv); !approxMat(got, Identity(), 1e-9) {
				t.Errorf("m * inverse = %v", got)
			}
		})
	}
}

func TestInverseSingular(t *testing.T) {
	inv, ok := Scale(V3(1, 0, 1)).Inverse()
	if ok {
		t.Error("flattening scale should be singular")
	}
	if inv != Identity() {
		t.Errorf("singular inverse = %v, want identity", inv)
	}
}

func TestMulOrder(t *testing.T) {
	// Scale first, then translate.
	m := Translate(V3(10, 0, 0)).Mul(Scale(Splat(2)))
	if got := m.MulVec3(V3(1, 1, 1)); !got.ApproxEqual(V3(12, 2, 2), 1e-12) {
		t.Errorf("got %+v, want (12, 2, 2)", got)
	}
}

func TestMulVec3Dir(t *testing.T) {
	m := Translate(V3(5, 5, 5)).Mul(RotateY(math.Pi / 2))
	if got := m.MulVec3Dir(V3(1, 0, 0)); !got.ApproxEqual(V3(0, 0, -1), 1e-12) {
		t.Errorf("direction picked up translation or wrong rotation: %+v", got)
	}
}

func TestNormalMatrix(t *testing.T) {
	// A 45 degree slope squashed along X: the surface normal must stay
	// perpendicular to the transformed surface.
	m := Scale(V3(4, 1, 1))
	tangent := V3(1, 1, 0)
	normal := V3(-1, 1, 0).Normalize()

	tt := m.MulVec3Dir(tangent)
	n := m.NormalMatrix().MulVec3Dir(normal)
	if d := tt.Dot(n); math.Abs(d) > 1e-12 {
		t.Errorf("normal not perpendicular after scale, dot = %g", d)
	}
	if d := tt.Dot(m.MulVec3Dir(normal)); math.Abs(d) < 1e-3 {
		t.Error("plain direction transform should skew the normal")
	}
}

func TestPerspectiveDivide(t *testing.T) {
	if got := V4(2, 4, 6, 2).PerspectiveDivide(); got != V3(1, 2, 3) {
		t.Errorf("got %+v", got)
	}
	if got := V4(2, 4, 6, 0).PerspectiveDivide(); got != V3(2, 4, 6) {
		t.Errorf("w=0 got %+v", got)
	}
}

func BenchmarkMat4Inverse(b *testing.B) {
	m := Translate(V3(1, 2, 3)).Mul(RotateY(0.5)).Mul(Scale(Splat(2)))

	for b.Loop() {
		_, _ = m.Inverse()
	}
}

func BenchmarkMat4MulVec4(b *testing.B) {
	m := Translate(V3(1, 2, 3)).Mul(RotateY(0.5))
	v := V4(1, 2, 3, 1)

	for b.Loop() {
		_ = m.MulVec4(v)
	}
}

func BenchmarkUnproject(b *testing.B) {
	vp := Perspective(math.Pi/3, 1.333, 0.1, 100).Mul(LookAt(V3(0, 0, 10), Zero3(), Up()))

	for b.Loop() {
		_, _ = Unproject(0.25, -0.5, vp)
	}
}

func BenchmarkRayTriangle(b *testing.B) {
	r := NewRay(V3(0.2, 0.2, 5), V3(0, 0, -1))
	v0, v1, v2 := V3(0, 0, 0), V3(1, 0, 0), V3(0, 1, 0)

	for b.Loop() {
		_, _ = r.IntersectTriangle(v0, v1, v2)
	}
}

func BenchmarkRayAABB(b *testing.B) {
	r := NewRay(V3(0.2, 0.2, 5), V3(0, 0, -1))
	lo, hi := V3(-1, -1, -1), V3(1, 1, 1)

	for b.Loop() {
		_, _ = r.IntersectAABB(lo, hi)
	}
}
