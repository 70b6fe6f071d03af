package render

import (
	"math"

	"github.com/taigrr/meshpick/pkg/math3d"
)

const (
	ambient = 0.3
	diffuse = 0.7

	// nearW rejects triangles touching the camera plane; there is no clipper.
	nearW = 1e-6

	// lineDepthBias lets edges drawn over their own surface win the depth test.
	lineDepthBias = 2e-3
)

// Vertex represents a vertex with all attributes needed for rasterization.
type Vertex struct {
	Position math3d.Vec3 // World position
	Normal   math3d.Vec3 // Normal vector (for lighting)
	UV       math3d.Vec2 // Texture coordinates
}

// Triangle represents a triangle to be rasterized.
type Triangle struct {
	V [3]Vertex
}

// Shading describes how triangles are filled.
type Shading struct {
	Color    Color    // Base color, alpha channel ignored
	Alpha    float64  // 1 is opaque; below 1 blends and skips the depth write
	Texture  *Texture // Optional, modulated by Color
	Unlit    bool     // Skip lighting
	CullBack bool     // Drop back-facing triangles
	LightDir math3d.Vec3
}

// Opaque reports whether the shading writes depth.
func (s Shading) Opaque() bool {
	return s.Alpha >= 1
}

// Rasterizer handles software triangle rasterization.
type Rasterizer struct {
	camera       *OrbitCamera
	fb           *Framebuffer
	zbuffer      []float64 // Depth buffer (1D array, row-major)
	viewProj     math3d.Mat4
	frustum      Frustum
	CullingStats CullingStats // Statistics for the HUD and benchmarks
}

// CullingStats tracks frustum culling per frame.
type CullingStats struct {
	MeshesTested int
	MeshesCulled int
	MeshesDrawn  int
}

// NewRasterizer creates a new rasterizer.
func NewRasterizer(camera *OrbitCamera, fb *Framebuffer) *Rasterizer {
	r := &Rasterizer{camera: camera, fb: fb}
	r.Resize()
	r.BeginFrame()
	return r
}

// Resize matches the depth buffer to the framebuffer.
func (r *Rasterizer) Resize() {
	if r.fb == nil {
		r.zbuffer = nil
		return
	}
	if len(r.zbuffer) != r.fb.Width*r.fb.Height {
		r.zbuffer = make([]float64, r.fb.Width*r.fb.Height)
	}
}

// Width returns the framebuffer width.
func (r *Rasterizer) Width() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Width
}

// Height returns the framebuffer height.
func (r *Rasterizer) Height() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Height
}

// Camera returns the camera the rasterizer projects with.
func (r *Rasterizer) Camera() *OrbitCamera {
	return r.camera
}

// BeginFrame snapshots the camera matrices, resets stats and clears depth.
func (r *Rasterizer) BeginFrame() {
	r.Resize()
	r.viewProj = r.camera.ViewProjectionMatrix()
	r.frustum = NewFrustumFromMatrix(r.viewProj)
	r.CullingStats = CullingStats{}
	r.ClearDepth()
}

// ClearDepth clears the Z-buffer. Called per frame and between rendering
// groups so later groups draw over earlier ones.
func (r *Rasterizer) ClearDepth() {
	// Use copy-doubling for faster clearing
	n := len(r.zbuffer)
	if n == 0 {
		return
	}
	r.zbuffer[0] = math.MaxFloat64
	for i := 1; i < n; i *= 2 {
		copy(r.zbuffer[i:], r.zbuffer[:i])
	}
}

// IsVisible tests if a world-space AABB is visible in the frustum.
func (r *Rasterizer) IsVisible(worldBounds AABB) bool {
	return r.frustum.IntersectAABB(worldBounds)
}

// Depth returns the depth at (x, y), MaxFloat64 when out of range.
func (r *Rasterizer) Depth(x, y int) float64 {
	if x < 0 || x >= r.Width() || y < 0 || y >= r.Height() {
		return math.MaxFloat64
	}
	return r.zbuffer[y*r.Width()+x]
}

// screenVertex holds a vertex transformed to screen space.
type screenVertex struct {
	X, Y      float64 // Screen coordinates
	Z         float64 // Depth (for Z-buffer)
	W         float64 // Clip W (for perspective-correct interpolation)
	Intensity float64
	UV        math3d.Vec2
}

func (r *Rasterizer) toScreen(p math3d.Vec3) (sv screenVertex, ok bool) {
	clip := r.viewProj.MulVec4(math3d.Point(p))
	if clip.W <= nearW {
		return sv, false
	}
	invW := 1.0 / clip.W
	sv.X = (clip.X*invW + 1) * 0.5 * float64(r.Width())
	sv.Y = (1 - clip.Y*invW) * 0.5 * float64(r.Height()) // Y flipped
	sv.Z = clip.Z * invW
	sv.W = clip.W
	return sv, true
}

// edgeCoeffs returns A, B, C for edge(x,y) = A*x + B*y + C.
// Positive = left of edge, negative = right of edge, zero = on edge.
func edgeCoeffs(x0, y0, x1, y1 float64) (A, B, C float64) {
	A = y0 - y1
	B = x1 - x0
	C = x0*y1 - x1*y0
	return
}

// DrawTriangle rasterizes a world-space triangle with Gouraud lighting,
// perspective-correct texturing and optional alpha blending.
func (r *Rasterizer) DrawTriangle(tri Triangle, sh Shading) {
	if r.fb == nil {
		return
	}

	var sv [3]screenVertex
	for i := range 3 {
		var ok bool
		if sv[i], ok = r.toScreen(tri.V[i].Position); !ok {
			return
		}
		sv[i].UV = tri.V[i].UV
	}

	cross := (sv[1].X-sv[0].X)*(sv[2].Y-sv[0].Y) - (sv[1].Y-sv[0].Y)*(sv[2].X-sv[0].X)
	if cross == 0 {
		return
	}
	backFacing := cross < 0
	if backFacing {
		if sh.CullBack {
			return
		}
		// Rewind so the edge functions stay positive inside
		sv[1], sv[2] = sv[2], sv[1]
		tri.V[1], tri.V[2] = tri.V[2], tri.V[1]
		cross = -cross
	}

	light := sh.LightDir.Normalize()
	for i := range 3 {
		if sh.Unlit {
			sv[i].Intensity = 1
			continue
		}
		d := tri.V[i].Normal.Dot(light)
		if backFacing {
			d = -d
		}
		sv[i].Intensity = ambient + diffuse*math.Max(0, d)
	}

	// Bounding box (clamped to screen)
	minX := int(math.Max(0, math.Floor(min(sv[0].X, sv[1].X, sv[2].X))))
	maxX := int(math.Min(float64(r.Width()-1), math.Ceil(max(sv[0].X, sv[1].X, sv[2].X))))
	minY := int(math.Max(0, math.Floor(min(sv[0].Y, sv[1].Y, sv[2].Y))))
	maxY := int(math.Min(float64(r.Height()-1), math.Ceil(max(sv[0].Y, sv[1].Y, sv[2].Y))))
	if minX > maxX || minY > maxY {
		return
	}

	// Edge 0: v1 -> v2, Edge 1: v2 -> v0, Edge 2: v0 -> v1
	A0, B0, C0 := edgeCoeffs(sv[1].X, sv[1].Y, sv[2].X, sv[2].Y)
	A1, B1, C1 := edgeCoeffs(sv[2].X, sv[2].Y, sv[0].X, sv[0].Y)
	A2, B2, C2 := edgeCoeffs(sv[0].X, sv[0].Y, sv[1].X, sv[1].Y)
	invArea := 1.0 / cross

	var invW [3]float64
	for i := range 3 {
		invW[i] = 1.0 / sv[i].W
	}

	opaque := sh.Opaque()
	width := r.Width()

	px := float64(minX) + 0.5
	py := float64(minY) + 0.5
	w0Row := A0*px + B0*py + C0
	w1Row := A1*px + B1*py + C1
	w2Row := A2*px + B2*py + C2

	for y := minY; y <= maxY; y++ {
		w0, w1, w2 := w0Row, w1Row, w2Row
		rowOffset := y * width

		for x := minX; x <= maxX; x++ {
			if w0 >= 0 && w1 >= 0 && w2 >= 0 {
				bc0, bc1, bc2 := w0*invArea, w1*invArea, w2*invArea
				z := bc0*sv[0].Z + bc1*sv[1].Z + bc2*sv[2].Z

				idx := rowOffset + x
				if z < r.zbuffer[idx] {
					c := MultiplyColor(r.shade(sv, bc0, bc1, bc2, invW, sh), bc0*sv[0].Intensity+bc1*sv[1].Intensity+bc2*sv[2].Intensity)
					if opaque {
						r.zbuffer[idx] = z
						c.A = 255
						r.fb.Pixels[idx] = c
					} else {
						r.fb.BlendPixel(x, y, c, sh.Alpha*float64(c.A)/255)
					}
				}
			}
			w0 += A0
			w1 += A1
			w2 += A2
		}
		w0Row += B0
		w1Row += B1
		w2Row += B2
	}
}

// shade returns the unlit surface color at the given barycentric weights.
func (r *Rasterizer) shade(sv [3]screenVertex, bc0, bc1, bc2 float64, invW [3]float64, sh Shading) Color {
	base := sh.Color
	base.A = 255
	if sh.Texture == nil {
		return base
	}

	// Interpolate UV/W and 1/W, then divide to get correct UV
	w0, w1, w2 := bc0*invW[0], bc1*invW[1], bc2*invW[2]
	oneOverW := w0 + w1 + w2
	if oneOverW == 0 {
		return base
	}
	u := (w0*sv[0].UV.X + w1*sv[1].UV.X + w2*sv[2].UV.X) / oneOverW
	v := (w0*sv[0].UV.Y + w1*sv[1].UV.Y + w2*sv[2].UV.Y) / oneOverW
	return ModulateColor(sh.Texture.Sample(u, v), base)
}

// MeshRenderer is the geometry the rasterizer draws.
// This interface allows drawing meshes without importing the models package.
type MeshRenderer interface {
	VertexCount() int
	TriangleCount() int
	GetVertex(i int) (pos, normal math3d.Vec3, uv math3d.Vec2)
	GetFace(i int) [3]int
}

// BoundedMeshRenderer extends MeshRenderer with bounding box support for frustum culling.
type BoundedMeshRenderer interface {
	MeshRenderer
	GetBounds() (min, max math3d.Vec3)
}

// tryFrustumCull reports whether a bounded mesh lies outside the frustum.
func (r *Rasterizer) tryFrustumCull(mesh MeshRenderer, transform math3d.Mat4) bool {
	bounded, ok := mesh.(BoundedMeshRenderer)
	if !ok {
		return false
	}

	r.CullingStats.MeshesTested++
	minB, maxB := bounded.GetBounds()
	if !r.IsVisible(AABB{Min: minB, Max: maxB}.Transform(transform)) {
		r.CullingStats.MeshesCulled++
		return true
	}
	r.CullingStats.MeshesDrawn++
	return false
}

// DrawMesh renders a mesh under transform. Returns false when culled.
func (r *Rasterizer) DrawMesh(mesh MeshRenderer, transform math3d.Mat4, sh Shading) bool {
	if r.tryFrustumCull(mesh, transform) {
		return false
	}

	normals := transform.NormalMatrix()
	for i := 0; i < mesh.TriangleCount(); i++ {
		face := mesh.GetFace(i)
		var tri Triangle
		for k, idx := range face {
			p, n, uv := mesh.GetVertex(idx)
			tri.V[k] = Vertex{
				Position: transform.MulVec3(p),
				Normal:   normals.MulVec3Dir(n).Normalize(),
				UV:       uv,
			}
		}
		r.DrawTriangle(tri, sh)
	}
	return true
}

// DrawLine3D draws a depth-tested line of the given pixel width.
func (r *Rasterizer) DrawLine3D(a, b math3d.Vec3, c Color, width int) {
	sa, okA := r.toScreen(a)
	sb, okB := r.toScreen(b)
	if !okA || !okB {
		return
	}

	width = max(width, 1)
	lo := -(width - 1) / 2
	hi := lo + width - 1
	c.A = 255

	bresenham(int(sa.X), int(sa.Y), int(sb.X), int(sb.Y), func(x, y, step, steps int) {
		t := 0.0
		if steps > 0 {
			t = float64(step) / float64(steps)
		}
		z := sa.Z + (sb.Z-sa.Z)*t
		for oy := lo; oy <= hi; oy++ {
			for ox := lo; ox <= hi; ox++ {
				px, py := x+ox, y+oy
				if px < 0 || px >= r.Width() || py < 0 || py >= r.Height() {
					continue
				}
				idx := py*r.Width() + px
				if z > r.zbuffer[idx]+lineDepthBias {
					continue
				}
				r.zbuffer[idx] = math.Min(r.zbuffer[idx], z)
				r.fb.Pixels[idx] = c
			}
		}
	})
}

// DrawEdges draws local-space edges under transform.
func (r *Rasterizer) DrawEdges(edges []Edge, transform math3d.Mat4, c Color, width int) {
	for _, e := range edges {
		r.DrawLine3D(transform.MulVec3(e.A), transform.MulVec3(e.B), c, width)
	}
}
