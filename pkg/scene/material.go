package scene

import (
	"image/color"

	"github.com/taigrr/meshpick/pkg/render"
)

// Material is implemented by the three material variants. Each exposes its
// own color property: DiffuseColor, AlbedoColor or BaseColor.
type Material interface {
	Name() string
	Alpha() float64
	SetAlpha(a float64)
	BackFaceCulling() bool
	SetBackFaceCulling(on bool)
	// Clone copies the material under a new name and registers it with the
	// same scene.
	Clone(name string) (Material, error)
	Dispose()
	IsDisposed() bool

	base() *baseMaterial
	color() color.RGBA
}

type baseMaterial struct {
	scene           *Scene
	name            string
	alpha           float64
	backFaceCulling bool
	unlit           bool
	texture         *render.Texture
	disposed        bool
}

func newBase(s *Scene, name string) baseMaterial {
	return baseMaterial{scene: s, name: name, alpha: 1, backFaceCulling: true}
}

func (m *baseMaterial) base() *baseMaterial { return m }

// Name returns the material name.
func (m *baseMaterial) Name() string { return m.name }

// Alpha returns the material opacity.
func (m *baseMaterial) Alpha() float64 { return m.alpha }

// SetAlpha sets the opacity, clamped to [0, 1].
func (m *baseMaterial) SetAlpha(a float64) { m.alpha = max(0, min(1, a)) }

// BackFaceCulling reports whether back faces are skipped.
func (m *baseMaterial) BackFaceCulling() bool { return m.backFaceCulling }

// SetBackFaceCulling toggles back-face culling.
func (m *baseMaterial) SetBackFaceCulling(on bool) { m.backFaceCulling = on }

// SetDisableLighting renders the material with its flat color.
func (m *baseMaterial) SetDisableLighting(off bool) { m.unlit = off }

// SetTexture sets the color texture, modulated by the material color.
func (m *baseMaterial) SetTexture(t *render.Texture) { m.texture = t }

// IsDisposed reports whether Dispose was called.
func (m *baseMaterial) IsDisposed() bool { return m.disposed }

// Dispose releases the material. Meshes still using it fall back to the
// scene's default material.
func (m *baseMaterial) Dispose() {
	if m.disposed {
		return
	}
	m.disposed = true
	if m.scene != nil {
		m.scene.removeMaterial(m)
	}
}

func (m *baseMaterial) cloneBase(name string) (baseMaterial, error) {
	if m.disposed {
		return baseMaterial{}, ErrDisposed
	}
	c := *m
	c.name = name
	return c, nil
}

// StandardMaterial is the classic lit material with a diffuse color.
type StandardMaterial struct {
	baseMaterial
	diffuse color.RGBA
}

// DiffuseColor returns the diffuse color.
func (m *StandardMaterial) DiffuseColor() color.RGBA { return m.diffuse }

// SetDiffuseColor sets the diffuse color.
func (m *StandardMaterial) SetDiffuseColor(c color.RGBA) { m.diffuse = c }

func (m *StandardMaterial) color() color.RGBA { return m.diffuse }

// Clone copies the material.
func (m *StandardMaterial) Clone(name string) (Material, error) {
	b, err := m.cloneBase(name)
	if err != nil {
		return nil, err
	}
	c := &StandardMaterial{baseMaterial: b, diffuse: m.diffuse}
	m.scene.addMaterial(c)
	return c, nil
}

// PBRMaterial is the full physically based material, colored by albedo.
type PBRMaterial struct {
	baseMaterial
	albedo color.RGBA
}

// AlbedoColor returns the albedo color.
func (m *PBRMaterial) AlbedoColor() color.RGBA { return m.albedo }

// SetAlbedoColor sets the albedo color.
func (m *PBRMaterial) SetAlbedoColor(c color.RGBA) { m.albedo = c }

func (m *PBRMaterial) color() color.RGBA { return m.albedo }

// Clone copies the material.
func (m *PBRMaterial) Clone(name string) (Material, error) {
	b, err := m.cloneBase(name)
	if err != nil {
		return nil, err
	}
	c := &PBRMaterial{baseMaterial: b, albedo: m.albedo}
	m.scene.addMaterial(c)
	return c, nil
}

// PBRMetallicRoughnessMaterial mirrors the core glTF material.
type PBRMetallicRoughnessMaterial struct {
	baseMaterial
	baseColor color.RGBA
	Metallic  float64
	Roughness float64
}

// BaseColor returns the base color.
func (m *PBRMetallicRoughnessMaterial) BaseColor() color.RGBA { return m.baseColor }

// SetBaseColor sets the base color.
func (m *PBRMetallicRoughnessMaterial) SetBaseColor(c color.RGBA) { m.baseColor = c }

func (m *PBRMetallicRoughnessMaterial) color() color.RGBA { return m.baseColor }

// Clone copies the material.
func (m *PBRMetallicRoughnessMaterial) Clone(name string) (Material, error) {
	b, err := m.cloneBase(name)
	if err != nil {
		return nil, err
	}
	c := &PBRMetallicRoughnessMaterial{
		baseMaterial: b,
		baseColor:    m.baseColor,
		Metallic:     m.Metallic,
		Roughness:    m.Roughness,
	}
	m.scene.addMaterial(c)
	return c, nil
}

// shading converts a material to rasterizer state.
func shading(m Material, light render.Shading) render.Shading {
	b := m.base()
	light.Color = m.color()
	light.Alpha = b.alpha
	light.Texture = b.texture
	light.Unlit = b.unlit
	light.CullBack = b.backFaceCulling
	return light
}
