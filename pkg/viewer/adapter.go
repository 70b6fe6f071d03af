package viewer

import (
	"image/color"

	"go.uber.org/zap"

	"github.com/taigrr/meshpick/pkg/math3d"
	"github.com/taigrr/meshpick/pkg/scene"
	"github.com/taigrr/meshpick/pkg/selection"
)

// Adapter exposes scene meshes and materials through the selection
// interfaces. It hands out one handle per engine object so handles can be
// used as map keys.
type Adapter struct {
	scene     *scene.Scene
	meshes    map[*scene.Mesh]*meshHandle
	materials map[scene.Material]selection.Material
	log       *zap.Logger
}

// NewAdapter creates an adapter over s.
func NewAdapter(s *scene.Scene, log *zap.Logger) *Adapter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Adapter{
		scene:     s,
		meshes:    make(map[*scene.Mesh]*meshHandle),
		materials: make(map[scene.Material]selection.Material),
		log:       log,
	}
}

// Mesh returns the handle for m, nil for nil.
func (a *Adapter) Mesh(m *scene.Mesh) selection.Mesh {
	if m == nil {
		return nil
	}
	return a.mesh(m)
}

func (a *Adapter) mesh(m *scene.Mesh) *meshHandle {
	h, ok := a.meshes[m]
	if !ok {
		h = &meshHandle{adapter: a, mesh: m}
		a.meshes[m] = h
	}
	return h
}

// Material returns the handle for m. The handle's dynamic type carries the
// color capability of the underlying material.
func (a *Adapter) Material(m scene.Material) selection.Material {
	if m == nil {
		return nil
	}
	if h, ok := a.materials[m]; ok {
		return h
	}

	base := &materialHandle{adapter: a, mat: m}
	var h selection.Material
	switch m := m.(type) {
	case *scene.StandardMaterial:
		h = &standardHandle{materialHandle: base, std: m}
	case *scene.PBRMaterial:
		h = &pbrHandle{materialHandle: base, pbr: m}
	case *scene.PBRMetallicRoughnessMaterial:
		h = &metallicRoughnessHandle{materialHandle: base, mr: m}
	default:
		h = base
	}
	a.materials[m] = h
	return h
}

// Meshes lists the handles of every mesh still in the scene.
func (a *Adapter) Meshes() []selection.Mesh {
	src := a.scene.Meshes()
	out := make([]selection.Mesh, 0, len(src))
	for _, m := range src {
		out = append(out, a.mesh(m))
	}
	return out
}

// Remove forgets m. The scene itself drops meshes when they are disposed.
func (a *Adapter) Remove(m selection.Mesh) {
	h, ok := m.(*meshHandle)
	if !ok {
		return
	}
	delete(a.meshes, h.mesh)
}

// NewMaterial creates a plain standard material.
func (a *Adapter) NewMaterial(name string) (selection.Material, error) {
	return a.Material(a.scene.NewStandardMaterial(name)), nil
}

// unwrap returns the engine material behind h.
func (a *Adapter) unwrap(h selection.Material) (scene.Material, bool) {
	switch h := h.(type) {
	case nil:
		return nil, true
	case interface{ engine() scene.Material }:
		return h.engine(), true
	}
	return nil, false
}

type meshHandle struct {
	adapter *Adapter
	mesh    *scene.Mesh
}

func (h *meshHandle) Name() string { return h.mesh.Name() }

func (h *meshHandle) Material() selection.Material {
	return h.adapter.Material(h.mesh.Material())
}

func (h *meshHandle) SetMaterial(m selection.Material) {
	mat, ok := h.adapter.unwrap(m)
	if !ok {
		h.adapter.log.Warn("foreign material ignored",
			zap.String("mesh", h.mesh.Name()), zap.String("material", m.Name()))
		return
	}
	h.mesh.SetMaterial(mat)
}

func (h *meshHandle) Scaling() math3d.Vec3     { return h.mesh.Scaling() }
func (h *meshHandle) SetScaling(s math3d.Vec3) { h.mesh.SetScaling(s) }
func (h *meshHandle) SetVisible(v bool)        { h.mesh.SetVisible(v) }
func (h *meshHandle) RenderingGroup() int      { return h.mesh.RenderingGroupID() }
func (h *meshHandle) SetRenderingGroup(id int) { h.mesh.SetRenderingGroupID(id) }
func (h *meshHandle) AlphaIndex() int          { return h.mesh.AlphaIndex() }
func (h *meshHandle) SetAlphaIndex(i int)      { h.mesh.SetAlphaIndex(i) }
func (h *meshHandle) Dispose() error           { return h.mesh.Dispose() }
func (h *meshHandle) DisableEdges()            { h.mesh.DisableEdgesRendering() }

func (h *meshHandle) EnableEdges(width float64, c color.RGBA) {
	h.mesh.EnableEdgesRendering(width, c)
}

type materialHandle struct {
	adapter *Adapter
	mat     scene.Material
}

func (h *materialHandle) engine() scene.Material { return h.mat }

func (h *materialHandle) Name() string               { return h.mat.Name() }
func (h *materialHandle) Alpha() float64             { return h.mat.Alpha() }
func (h *materialHandle) SetAlpha(a float64)         { h.mat.SetAlpha(a) }
func (h *materialHandle) SetBackFaceCulling(on bool) { h.mat.SetBackFaceCulling(on) }

func (h *materialHandle) Clone(name string) (selection.Material, error) {
	c, err := h.mat.Clone(name)
	if err != nil {
		return nil, err
	}
	return h.adapter.Material(c), nil
}

func (h *materialHandle) Dispose() {
	h.mat.Dispose()
	delete(h.adapter.materials, h.mat)
}

type standardHandle struct {
	*materialHandle
	std *scene.StandardMaterial
}

func (h *standardHandle) DiffuseColor() color.RGBA     { return h.std.DiffuseColor() }
func (h *standardHandle) SetDiffuseColor(c color.RGBA) { h.std.SetDiffuseColor(c) }

type pbrHandle struct {
	*materialHandle
	pbr *scene.PBRMaterial
}

func (h *pbrHandle) AlbedoColor() color.RGBA     { return h.pbr.AlbedoColor() }
func (h *pbrHandle) SetAlbedoColor(c color.RGBA) { h.pbr.SetAlbedoColor(c) }

type metallicRoughnessHandle struct {
	*materialHandle
	mr *scene.PBRMetallicRoughnessMaterial
}

func (h *metallicRoughnessHandle) BaseColor() color.RGBA     { return h.mr.BaseColor() }
func (h *metallicRoughnessHandle) SetBaseColor(c color.RGBA) { h.mr.SetBaseColor(c) }
