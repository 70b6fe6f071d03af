package math3d

import "math"

// Ray is a half-line with a normalized direction.
type Ray struct {
	Origin    Vec3
	Direction Vec3
}

// NewRay creates a ray, normalizing dir.
func NewRay(origin, dir Vec3) Ray {
	return Ray{Origin: origin, Direction: dir.Normalize()}
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float64) Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

// Unproject builds the world-space ray through the NDC point (ndcX, ndcY),
// starting on the near plane. ok is false when viewProj cannot be inverted.
func Unproject(ndcX, ndcY float64, viewProj Mat4) (Ray, bool) {
	inv, ok := viewProj.Inverse()
	if !ok {
		return Ray{}, false
	}
	near := inv.MulVec4(V4(ndcX, ndcY, -1, 1)).PerspectiveDivide()
	far := inv.MulVec4(V4(ndcX, ndcY, 1, 1)).PerspectiveDivide()
	return NewRay(near, far.Sub(near)), true
}

// IntersectAABB tests the ray against the box [min, max] using the slab method.
// If the origin is inside the box the exit distance is returned.
func (r Ray) IntersectAABB(min, max Vec3) (t float64, hit bool) {
	tmin := math.Inf(-1)
	tmax := math.Inf(1)

	for axis := range 3 {
		o := r.Origin.Component(axis)
		d := r.Direction.Component(axis)
		lo, hi := min.Component(axis), max.Component(axis)

		if d == 0 {
			if o < lo || o > hi {
				return 0, false
			}
			continue
		}

		t1 := (lo - o) / d
		t2 := (hi - o) / d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
	}

	if tmax < tmin || tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		return tmax, true
	}
	return tmin, true
}

// IntersectTriangle runs the Möller-Trumbore test. Both windings hit.
func (r Ray) IntersectTriangle(v0, v1, v2 Vec3) (t float64, hit bool) {
	const eps = 1e-9

	e1 := v1.Sub(v0)
	e2 := v2.Sub(v0)
	p := r.Direction.Cross(e2)
	det := e1.Dot(p)
	if math.Abs(det) < eps {
		return 0, false
	}
	inv := 1 / det

	s := r.Origin.Sub(v0)
	u := s.Dot(p) * inv
	if u < 0 || u > 1 {
		return 0, false
	}

	q := s.Cross(e1)
	v := r.Direction.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return 0, false
	}

	t = e2.Dot(q) * inv
	if t <= eps {
		return 0, false
	}
	return t, true
}
