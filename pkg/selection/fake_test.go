package selection

import (
	"errors"
	"image/color"
	"slices"

	"github.com/taigrr/meshpick/pkg/math3d"
)

// fakeMaterial is a material with no color property.
type fakeMaterial struct {
	name      string
	alpha     float64
	culling   bool
	disposed  bool
	cloneErr  error
	clones    []*fakeMaterial
	cloneFrom *fakeMaterial
}

func newPlain(name string) *fakeMaterial { return &fakeMaterial{name: name, alpha: 1} }

func (m *fakeMaterial) Name() string              { return m.name }
func (m *fakeMaterial) Alpha() float64            { return m.alpha }
func (m *fakeMaterial) SetAlpha(a float64)        { m.alpha = a }
func (m *fakeMaterial) SetBackFaceCulling(b bool) { m.culling = b }
func (m *fakeMaterial) Dispose()                  { m.disposed = true }

func (m *fakeMaterial) Clone(name string) (Material, error) {
	if m.cloneErr != nil {
		return nil, m.cloneErr
	}
	c := &fakeMaterial{name: name, alpha: m.alpha, culling: m.culling, cloneFrom: m}
	m.clones = append(m.clones, c)
	return c, nil
}

// diffuseMaterial has the legacy color property.
type diffuseMaterial struct {
	fakeMaterial
	diffuse color.RGBA
}

func newDiffuse(name string, c color.RGBA) *diffuseMaterial {
	return &diffuseMaterial{fakeMaterial: fakeMaterial{name: name, alpha: 1}, diffuse: c}
}

func (m *diffuseMaterial) DiffuseColor() color.RGBA     { return m.diffuse }
func (m *diffuseMaterial) SetDiffuseColor(c color.RGBA) { m.diffuse = c }

func (m *diffuseMaterial) Clone(name string) (Material, error) {
	if m.cloneErr != nil {
		return nil, m.cloneErr
	}
	c := newDiffuse(name, m.diffuse)
	c.alpha = m.alpha
	c.culling = m.culling
	m.clones = append(m.clones, &c.fakeMaterial)
	return c, nil
}

// albedoMaterial has the PBR albedo property.
type albedoMaterial struct {
	fakeMaterial
	albedo color.RGBA
}

func (m *albedoMaterial) AlbedoColor() color.RGBA     { return m.albedo }
func (m *albedoMaterial) SetAlbedoColor(c color.RGBA) { m.albedo = c }

// baseMaterial has the metallic-roughness base color property.
type baseMaterial struct {
	fakeMaterial
	base color.RGBA
}

func (m *baseMaterial) BaseColor() color.RGBA     { return m.base }
func (m *baseMaterial) SetBaseColor(c color.RGBA) { m.base = c }

// fakeMesh supports edge outlines.
type fakeMesh struct {
	name         string
	material     Material
	scaling      math3d.Vec3
	visible      bool
	group        int
	alphaIndex   int
	edgesOn      bool
	edgeWidth    float64
	edgeColor    color.RGBA
	disposed     bool
	disposeCalls int
	disposeErr   error
}

func newMesh(name string, mat Material) *fakeMesh {
	return &fakeMesh{name: name, material: mat, scaling: math3d.V3(1, 1, 1), visible: true}
}

func (m *fakeMesh) Name() string             { return m.name }
func (m *fakeMesh) Material() Material       { return m.material }
func (m *fakeMesh) SetMaterial(mat Material) { m.material = mat }
func (m *fakeMesh) Scaling() math3d.Vec3     { return m.scaling }
func (m *fakeMesh) SetScaling(s math3d.Vec3) { m.scaling = s }
func (m *fakeMesh) SetVisible(v bool)        { m.visible = v }
func (m *fakeMesh) RenderingGroup() int      { return m.group }
func (m *fakeMesh) SetRenderingGroup(id int) { m.group = id }
func (m *fakeMesh) AlphaIndex() int          { return m.alphaIndex }
func (m *fakeMesh) SetAlphaIndex(i int)      { m.alphaIndex = i }

func (m *fakeMesh) EnableEdges(width float64, c color.RGBA) {
	m.edgesOn, m.edgeWidth, m.edgeColor = true, width, c
}

func (m *fakeMesh) DisableEdges() { m.edgesOn = false }

func (m *fakeMesh) Dispose() error {
	m.disposed = true
	m.disposeCalls++
	return m.disposeErr
}

// bareMesh has no outline capability.
type bareMesh struct {
	name     string
	material Material
	scaling  math3d.Vec3
	visible  bool
	group    int
	index    int
}

func (m *bareMesh) Name() string             { return m.name }
func (m *bareMesh) Material() Material       { return m.material }
func (m *bareMesh) SetMaterial(mat Material) { m.material = mat }
func (m *bareMesh) Scaling() math3d.Vec3     { return m.scaling }
func (m *bareMesh) SetScaling(s math3d.Vec3) { m.scaling = s }
func (m *bareMesh) SetVisible(v bool)        { m.visible = v }
func (m *bareMesh) RenderingGroup() int      { return m.group }
func (m *bareMesh) SetRenderingGroup(id int) { m.group = id }
func (m *bareMesh) AlphaIndex() int          { return m.index }
func (m *bareMesh) SetAlphaIndex(i int)      { m.index = i }
func (m *bareMesh) Dispose() error           { return nil }

type fakeRegistry struct {
	meshes []Mesh
}

func newRegistry(meshes ...Mesh) *fakeRegistry {
	return &fakeRegistry{meshes: meshes}
}

func (r *fakeRegistry) Meshes() []Mesh { return slices.Clone(r.meshes) }

func (r *fakeRegistry) Remove(m Mesh) {
	r.meshes = slices.DeleteFunc(r.meshes, func(o Mesh) bool { return o == m })
}

type fakeFactory struct {
	made []*diffuseMaterial
	err  error
}

func (f *fakeFactory) NewMaterial(name string) (Material, error) {
	if f.err != nil {
		return nil, f.err
	}
	m := newDiffuse(name, color.RGBA{255, 255, 255, 255})
	f.made = append(f.made, m)
	return m, nil
}

var errCloneUnsupported = errors.New("clone unsupported")
