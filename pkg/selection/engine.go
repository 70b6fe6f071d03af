package selection

import (
	"image/color"

	"github.com/taigrr/meshpick/pkg/math3d"
)

// Material is an engine material handle.
type Material interface {
	Name() string
	Alpha() float64
	SetAlpha(a float64)
	// Clone returns an independent copy. The caller owns and must dispose it.
	Clone(name string) (Material, error)
	Dispose()
}

// Mesh is an engine mesh handle. Handles are compared by identity, so an
// engine must hand out the same value for the same mesh every time.
type Mesh interface {
	Name() string
	// Material returns nil when the mesh has none.
	Material() Material
	SetMaterial(m Material)
	Scaling() math3d.Vec3
	SetScaling(s math3d.Vec3)
	SetVisible(v bool)
	RenderingGroup() int
	SetRenderingGroup(id int)
	AlphaIndex() int
	SetAlphaIndex(i int)
	Dispose() error
}

// EdgeOutliner is implemented by meshes that can draw an edge outline.
type EdgeOutliner interface {
	EnableEdges(width float64, c color.RGBA)
	DisableEdges()
}

// BackFaceCuller is implemented by materials with a back-face culling switch.
type BackFaceCuller interface {
	SetBackFaceCulling(on bool)
}

// DiffuseColorer is the legacy lit material color.
type DiffuseColorer interface {
	DiffuseColor() color.RGBA
	SetDiffuseColor(c color.RGBA)
}

// AlbedoColorer is the physically based material color.
type AlbedoColorer interface {
	AlbedoColor() color.RGBA
	SetAlbedoColor(c color.RGBA)
}

// BaseColorer is the metallic-roughness material color.
type BaseColorer interface {
	BaseColor() color.RGBA
	SetBaseColor(c color.RGBA)
}

// Registry is the set of meshes the controller acts on.
type Registry interface {
	Meshes() []Mesh
	Remove(m Mesh)
}

// MaterialFactory creates materials for meshes that have none.
type MaterialFactory interface {
	NewMaterial(name string) (Material, error)
}
