package scene

import (
	"math"

	"github.com/taigrr/meshpick/pkg/math3d"
	"github.com/taigrr/meshpick/pkg/render"
)

// PickResult describes the nearest mesh under a ray.
type PickResult struct {
	Hit      bool
	Mesh     *Mesh
	Distance float64
	Point    math3d.Vec3
}

// Pick casts ray against visible, pickable meshes. A mesh in a higher
// rendering group wins over a nearer mesh in a lower one, matching what is
// drawn on top.
func (s *Scene) Pick(ray math3d.Ray) PickResult {
	best := PickResult{Distance: math.MaxFloat64}
	for _, m := range s.meshes {
		if !m.visible || !m.pickable || m.disposed {
			continue
		}
		if best.Hit && m.renderingGroup < best.Mesh.renderingGroup {
			continue
		}

		box, ok := m.BoundingBox()
		if !ok {
			continue
		}
		if _, hit := ray.IntersectAABB(box.Min, box.Max); !hit {
			continue
		}

		d, hit := intersectMesh(ray, m)
		if !hit {
			continue
		}
		higher := best.Hit && m.renderingGroup > best.Mesh.renderingGroup
		if !best.Hit || higher || d < best.Distance {
			best = PickResult{Hit: true, Mesh: m, Distance: d, Point: ray.At(d)}
		}
	}
	return best
}

// PickScreen picks through screen point (x, y) of a width x height viewport.
func (s *Scene) PickScreen(cam *render.OrbitCamera, x, y float64, width, height int) PickResult {
	ray, ok := cam.ScreenRay(x, y, width, height)
	if !ok {
		return PickResult{}
	}
	return s.Pick(ray)
}

// intersectMesh returns the nearest triangle hit in world space.
func intersectMesh(ray math3d.Ray, m *Mesh) (float64, bool) {
	world := m.WorldMatrix()
	g := m.geometry
	nearest, found := math.MaxFloat64, false
	for i := 0; i < g.TriangleCount(); i++ {
		f := g.GetFace(i)
		v0 := world.MulVec3(g.Vertices[f[0]].Position)
		v1 := world.MulVec3(g.Vertices[f[1]].Position)
		v2 := world.MulVec3(g.Vertices[f[2]].Position)
		if t, hit := ray.IntersectTriangle(v0, v1, v2); hit && t < nearest {
			nearest, found = t, true
		}
	}
	return nearest, found
}
