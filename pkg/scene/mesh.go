package scene

import (
	"image/color"
	"math"

	"github.com/taigrr/meshpick/pkg/math3d"
	"github.com/taigrr/meshpick/pkg/models"
	"github.com/taigrr/meshpick/pkg/render"
)

// MaxRenderingGroups bounds rendering group ids to [0, MaxRenderingGroups).
const MaxRenderingGroups = 4

// EdgeWidthPerPixel converts edge widths to framebuffer pixels; half-block
// pixels are much coarser than screen pixels.
const EdgeWidthPerPixel = 2

// Mesh is a drawable scene node over one loaded primitive.
type Mesh struct {
	scene    *Scene
	name     string
	geometry *models.Mesh
	pivot    math3d.Vec3

	material       Material
	scaling        math3d.Vec3
	visible        bool
	pickable       bool
	renderingGroup int
	alphaIndex     int

	edgesEnabled bool
	edgesWidth   float64
	edgesColor   color.RGBA
	edges        []render.Edge

	disposed bool
}

// Name returns the mesh name.
func (m *Mesh) Name() string { return m.name }

// Geometry returns the underlying vertex data.
func (m *Mesh) Geometry() *models.Mesh { return m.geometry }

// Material returns the assigned material, nil when none.
func (m *Mesh) Material() Material { return m.material }

// SetMaterial assigns a material; nil clears it.
func (m *Mesh) SetMaterial(mat Material) { m.material = mat }

// Scaling returns the scale applied about the mesh's bounding box center.
func (m *Mesh) Scaling() math3d.Vec3 { return m.scaling }

// SetScaling sets the scale vector.
func (m *Mesh) SetScaling(s math3d.Vec3) { m.scaling = s }

// IsVisible reports whether the mesh is drawn and pickable.
func (m *Mesh) IsVisible() bool { return m.visible }

// SetVisible shows or hides the mesh.
func (m *Mesh) SetVisible(v bool) { m.visible = v }

// IsPickable reports whether rays can hit the mesh.
func (m *Mesh) IsPickable() bool { return m.pickable }

// SetPickable toggles ray picking.
func (m *Mesh) SetPickable(p bool) { m.pickable = p }

// RenderingGroupID returns the rendering group. Higher groups draw later
// over a cleared depth buffer.
func (m *Mesh) RenderingGroupID() int { return m.renderingGroup }

// SetRenderingGroupID sets the rendering group, clamped to the valid range.
func (m *Mesh) SetRenderingGroupID(id int) {
	m.renderingGroup = max(0, min(MaxRenderingGroups-1, id))
}

// AlphaIndex returns the transparent sort key within a group.
func (m *Mesh) AlphaIndex() int { return m.alphaIndex }

// SetAlphaIndex sets the transparent sort key. Lower draws first.
func (m *Mesh) SetAlphaIndex(i int) { m.alphaIndex = i }

// EnableEdgesRendering outlines the mesh's feature edges.
func (m *Mesh) EnableEdgesRendering(width float64, c color.RGBA) {
	if m.edges == nil {
		m.edges = render.FeatureEdges(m.geometry, render.DefaultEdgeEpsilon)
	}
	m.edgesEnabled = true
	m.edgesWidth = width
	m.edgesColor = c
}

// DisableEdgesRendering removes the outline.
func (m *Mesh) DisableEdgesRendering() { m.edgesEnabled = false }

// EdgesEnabled reports whether the outline is on, with its width and color.
func (m *Mesh) EdgesEnabled() (on bool, width float64, c color.RGBA) {
	return m.edgesEnabled, m.edgesWidth, m.edgesColor
}

// IsDisposed reports whether Dispose was called.
func (m *Mesh) IsDisposed() bool { return m.disposed }

// Dispose removes the mesh from its scene. Its material is left alone.
func (m *Mesh) Dispose() error {
	if m.disposed {
		return ErrDisposed
	}
	m.disposed = true
	m.edges = nil
	if m.scene != nil {
		m.scene.removeMesh(m)
	}
	return nil
}

// WorldMatrix scales the geometry about its own center.
func (m *Mesh) WorldMatrix() math3d.Mat4 {
	return math3d.ScaleAbout(m.pivot, m.scaling)
}

// BoundingBox returns the world-space box. ok is false for empty geometry.
func (m *Mesh) BoundingBox() (box render.AABB, ok bool) {
	if m.geometry == nil || m.geometry.VertexCount() == 0 {
		return render.AABB{}, false
	}
	min, max := m.geometry.GetBounds()
	return render.AABB{Min: min, Max: max}.Transform(m.WorldMatrix()), true
}

func (m *Mesh) edgePixels() int {
	return max(1, int(math.Round(m.edgesWidth/EdgeWidthPerPixel)))
}
