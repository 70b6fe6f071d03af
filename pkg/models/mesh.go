// Package models loads GLB assets into per-primitive meshes for meshpick.
package models

import (
	"image"

	"github.com/taigrr/meshpick/pkg/math3d"
)

// Mesh is one drawable part of a model: a single glTF primitive with its node
// transform baked into the vertex positions.
type Mesh struct {
	Name     string
	Vertices []MeshVertex
	Faces    []Face
	Material *Material // nil when the primitive has no material

	// Bounding box (calculated on load)
	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3
}

// MeshVertex holds all vertex attributes.
type MeshVertex struct {
	Position math3d.Vec3
	Normal   math3d.Vec3
	UV       math3d.Vec2
}

// Face is a triangle as indices into Mesh.Vertices.
type Face struct {
	V [3]int
}

// MaterialKind tells which shading model a glTF material was authored for.
type MaterialKind int

const (
	MaterialMetallicRoughness   MaterialKind = iota // core glTF PBR, base color
	MaterialSpecularGlossiness                      // KHR_materials_pbrSpecularGlossiness, diffuse as albedo
	MaterialUnlit                                   // KHR_materials_unlit, plain diffuse
)

// String returns the glTF name of the kind.
func (k MaterialKind) String() string {
	switch k {
	case MaterialSpecularGlossiness:
		return "specular-glossiness"
	case MaterialUnlit:
		return "unlit"
	default:
		return "metallic-roughness"
	}
}

// Material is the subset of a glTF material the engine understands.
type Material struct {
	Name        string
	Kind        MaterialKind
	BaseColor   [4]float64 // RGBA in 0-1 range
	Metallic    float64
	Roughness   float64
	Blend       bool // alphaMode BLEND
	DoubleSided bool
	BaseMap     image.Image // optional base color texture
	BaseSampler Sampler     // how BaseMap is tiled and filtered
}

// Wrap is a glTF texture wrapping mode.
type Wrap int

const (
	WrapRepeat Wrap = iota
	WrapClampToEdge
	WrapMirroredRepeat
)

// Sampler holds the glTF sampler settings of a texture. The zero value is
// the glTF default: repeat on both axes with linear filtering.
type Sampler struct {
	WrapS   Wrap
	WrapT   Wrap
	Nearest bool // magFilter NEAREST
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{
		Name:     name,
		Vertices: make([]MeshVertex, 0),
		Faces:    make([]Face, 0),
	}
}

// CalculateBounds computes the axis-aligned bounding box.
func (m *Mesh) CalculateBounds() {
	if len(m.Vertices) == 0 {
		return
	}

	m.BoundsMin = m.Vertices[0].Position
	m.BoundsMax = m.Vertices[0].Position

	for _, v := range m.Vertices[1:] {
		m.BoundsMin = m.BoundsMin.Min(v.Position)
		m.BoundsMax = m.BoundsMax.Max(v.Position)
	}
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	return m.BoundsMin.Add(m.BoundsMax).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	return m.BoundsMax.Sub(m.BoundsMin)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Faces)
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// CalculateSmoothNormals computes area-weighted vertex normals.
func (m *Mesh) CalculateSmoothNormals() {
	for i := range m.Vertices {
		m.Vertices[i].Normal = math3d.Zero3()
	}

	for _, f := range m.Faces {
		v0 := m.Vertices[f.V[0]].Position
		v1 := m.Vertices[f.V[1]].Position
		v2 := m.Vertices[f.V[2]].Position

		// Faces are stored clockwise; unnormalized so larger faces weigh more
		n := v2.Sub(v0).Cross(v1.Sub(v0))
		for _, idx := range f.V {
			m.Vertices[idx].Normal = m.Vertices[idx].Normal.Add(n)
		}
	}

	for i := range m.Vertices {
		m.Vertices[i].Normal = m.Vertices[i].Normal.Normalize()
	}
}

// Transform applies a transformation matrix to all vertices.
func (m *Mesh) Transform(mat math3d.Mat4) {
	normals := mat.NormalMatrix()
	for i := range m.Vertices {
		m.Vertices[i].Position = mat.MulVec3(m.Vertices[i].Position)
		m.Vertices[i].Normal = normals.MulVec3Dir(m.Vertices[i].Normal).Normalize()
	}
	m.CalculateBounds()
}

// GetVertex returns the position, normal, and UV for vertex i.
// Implements render.MeshRenderer.
func (m *Mesh) GetVertex(i int) (pos, normal math3d.Vec3, uv math3d.Vec2) {
	v := m.Vertices[i]
	return v.Position, v.Normal, v.UV
}

// GetFace returns the vertex indices for face i.
// Implements render.MeshRenderer.
func (m *Mesh) GetFace(i int) [3]int {
	return m.Faces[i].V
}

// GetBounds returns the axis-aligned bounding box.
// Implements render.BoundedMeshRenderer.
func (m *Mesh) GetBounds() (min, max math3d.Vec3) {
	return m.BoundsMin, m.BoundsMax
}

// Model is everything loaded from one asset.
type Model struct {
	Name   string
	Meshes []*Mesh
}

// TriangleCount sums the triangles of every mesh.
func (m *Model) TriangleCount() int {
	n := 0
	for _, mesh := range m.Meshes {
		n += mesh.TriangleCount()
	}
	return n
}

// Bounds returns the box enclosing every mesh. ok is false for an empty model.
func (m *Model) Bounds() (min, max math3d.Vec3, ok bool) {
	for _, mesh := range m.Meshes {
		if len(mesh.Vertices) == 0 {
			continue
		}
		if !ok {
			min, max, ok = mesh.BoundsMin, mesh.BoundsMax, true
			continue
		}
		min = min.Min(mesh.BoundsMin)
		max = max.Max(mesh.BoundsMax)
	}
	return min, max, ok
}
