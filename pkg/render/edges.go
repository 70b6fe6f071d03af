package render

import (
	"github.com/taigrr/meshpick/pkg/math3d"
)

// DefaultEdgeEpsilon is the normal dot product below which the edge shared
// by two faces counts as a crease.
const DefaultEdgeEpsilon = 0.95

// Edge is a line segment in mesh-local space.
type Edge struct {
	A, B math3d.Vec3
}

type edgeKey struct {
	a, b math3d.Vec3
}

func makeEdgeKey(a, b math3d.Vec3) edgeKey {
	if b.X < a.X || (b.X == a.X && (b.Y < a.Y || (b.Y == a.Y && b.Z < a.Z))) {
		a, b = b, a
	}
	return edgeKey{a, b}
}

// FeatureEdges returns the outline of a mesh: boundary edges plus edges whose
// adjacent face normals differ by more than epsilon. Edges are matched by
// position so split vertices at UV seams do not produce spurious lines.
func FeatureEdges(mesh MeshRenderer, epsilon float64) []Edge {
	type adjacency struct {
		normals []math3d.Vec3
	}
	seen := make(map[edgeKey]*adjacency)
	var order []edgeKey

	for i := 0; i < mesh.TriangleCount(); i++ {
		face := mesh.GetFace(i)
		var p [3]math3d.Vec3
		for k, idx := range face {
			p[k], _, _ = mesh.GetVertex(idx)
		}
		n := p[1].Sub(p[0]).Cross(p[2].Sub(p[0])).Normalize()

		for k := range 3 {
			key := makeEdgeKey(p[k], p[(k+1)%3])
			adj, ok := seen[key]
			if !ok {
				adj = &adjacency{}
				seen[key] = adj
				order = append(order, key)
			}
			adj.normals = append(adj.normals, n)
		}
	}

	var edges []Edge
	for _, key := range order {
		adj := seen[key]
		if len(adj.normals) != 2 || adj.normals[0].Dot(adj.normals[1]) < epsilon {
			edges = append(edges, Edge{A: key.a, B: key.b})
		}
	}
	return edges
}

// bresenham walks the line and reports each pixel with its step index and
// the total number of steps.
func bresenham(x0, y0, x1, y1 int, plot func(x, y, step, steps int)) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	steps := max(dx, -dy)

	for step := 0; ; step++ {
		plot(x0, y0, step, steps)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
