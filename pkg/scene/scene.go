// Package scene is the small retained-mode engine behind the viewer: meshes
// with mutable materials, scaling, visibility, rendering groups, alpha
// ordering and edge outlines, drawn by the software rasterizer.
package scene

import (
	"errors"
	"fmt"
	"image"
	"slices"
	"sort"

	"go.uber.org/zap"

	"github.com/taigrr/meshpick/pkg/math3d"
	"github.com/taigrr/meshpick/pkg/models"
	"github.com/taigrr/meshpick/pkg/render"
)

// ErrDisposed is returned when operating on a disposed mesh or material.
var ErrDisposed = errors.New("scene: object disposed")

// Scene owns meshes and materials.
type Scene struct {
	ClearColor render.Color
	LightDir   math3d.Vec3

	meshes    []*Mesh
	materials []Material
	fallback  *StandardMaterial
	textures  map[textureKey]*render.Texture
	log       *zap.Logger
}

// Option configures a Scene.
type Option func(*Scene)

// WithLogger sets the scene logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Scene) {
		if l != nil {
			s.log = l
		}
	}
}

// New creates an empty scene.
func New(opts ...Option) *Scene {
	s := &Scene{
		ClearColor: render.RGB(20, 20, 30),
		LightDir:   math3d.V3(0.4, 0.8, 0.6).Normalize(),
		textures:   make(map[textureKey]*render.Texture),
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.fallback = &StandardMaterial{baseMaterial: newBase(s, "default"), diffuse: render.RGB(200, 200, 200)}
	return s
}

// Meshes returns the live meshes in insertion order.
func (s *Scene) Meshes() []*Mesh {
	return slices.Clone(s.meshes)
}

// Materials returns the live materials.
func (s *Scene) Materials() []Material {
	return slices.Clone(s.materials)
}

// NewStandardMaterial creates a lit material with a diffuse color.
func (s *Scene) NewStandardMaterial(name string) *StandardMaterial {
	m := &StandardMaterial{baseMaterial: newBase(s, name), diffuse: render.ColorWhite}
	s.addMaterial(m)
	return m
}

// NewPBRMaterial creates a material colored by albedo.
func (s *Scene) NewPBRMaterial(name string) *PBRMaterial {
	m := &PBRMaterial{baseMaterial: newBase(s, name), albedo: render.ColorWhite}
	s.addMaterial(m)
	return m
}

// NewPBRMetallicRoughnessMaterial creates a glTF-style material.
func (s *Scene) NewPBRMetallicRoughnessMaterial(name string) *PBRMetallicRoughnessMaterial {
	m := &PBRMetallicRoughnessMaterial{
		baseMaterial: newBase(s, name),
		baseColor:    render.ColorWhite,
		Metallic:     1,
		Roughness:    1,
	}
	s.addMaterial(m)
	return m
}

// NewMesh adds a mesh over geometry with identity scaling.
func (s *Scene) NewMesh(name string, geometry *models.Mesh) *Mesh {
	m := &Mesh{
		scene:    s,
		name:     name,
		geometry: geometry,
		pivot:    geometry.Center(),
		scaling:  math3d.V3(1, 1, 1),
		visible:  true,
		pickable: true,
	}
	s.meshes = append(s.meshes, m)
	return m
}

// AddModel creates one mesh per model mesh, converting materials once each.
func (s *Scene) AddModel(model *models.Model) []*Mesh {
	converted := make(map[*models.Material]Material)
	out := make([]*Mesh, 0, len(model.Meshes))
	for _, g := range model.Meshes {
		mesh := s.NewMesh(g.Name, g)
		if g.Material != nil {
			mat, ok := converted[g.Material]
			if !ok {
				mat = s.convertMaterial(g.Material)
				converted[g.Material] = mat
			}
			mesh.SetMaterial(mat)
		}
		out = append(out, mesh)
	}
	s.log.Debug("model added",
		zap.String("model", model.Name),
		zap.Int("meshes", len(out)),
		zap.Int("materials", len(converted)))
	return out
}

// convertMaterial maps a loaded material onto the matching variant.
func (s *Scene) convertMaterial(src *models.Material) Material {
	c := render.FromFloats(src.BaseColor)
	c.A = 255

	var m Material
	switch src.Kind {
	case models.MaterialUnlit:
		std := s.NewStandardMaterial(src.Name)
		std.SetDiffuseColor(c)
		std.SetDisableLighting(true)
		m = std
	case models.MaterialSpecularGlossiness:
		pbr := s.NewPBRMaterial(src.Name)
		pbr.SetAlbedoColor(c)
		m = pbr
	default:
		mr := s.NewPBRMetallicRoughnessMaterial(src.Name)
		mr.SetBaseColor(c)
		mr.Metallic = src.Metallic
		mr.Roughness = src.Roughness
		m = mr
	}

	if src.Blend {
		m.SetAlpha(src.BaseColor[3])
	}
	m.SetBackFaceCulling(!src.DoubleSided)
	if src.BaseMap != nil {
		m.base().SetTexture(s.texture(src.BaseMap, src.BaseSampler))
	}
	return m
}

// textureKey identifies a decoded texture. The same image may be shared by
// materials with different samplers.
type textureKey struct {
	img     image.Image
	sampler models.Sampler
}

// texture decodes img once per sampler.
func (s *Scene) texture(img image.Image, sampler models.Sampler) *render.Texture {
	key := textureKey{img, sampler}
	if tex, ok := s.textures[key]; ok {
		return tex
	}
	tex := render.TextureFromImage(img)
	tex.WrapU = wrapMode(sampler.WrapS)
	tex.WrapV = wrapMode(sampler.WrapT)
	tex.Nearest = sampler.Nearest
	s.textures[key] = tex
	return tex
}

func wrapMode(w models.Wrap) render.WrapMode {
	switch w {
	case models.WrapClampToEdge:
		return render.WrapClamp
	case models.WrapMirroredRepeat:
		return render.WrapMirror
	default:
		return render.WrapRepeat
	}
}

func (s *Scene) addMaterial(m Material) {
	if s == nil {
		return
	}
	s.materials = append(s.materials, m)
}

func (s *Scene) removeMaterial(b *baseMaterial) {
	s.materials = slices.DeleteFunc(s.materials, func(m Material) bool {
		return m.base() == b
	})
	s.log.Debug("material disposed", zap.String("material", b.name))
}

func (s *Scene) removeMesh(m *Mesh) {
	s.meshes = slices.DeleteFunc(s.meshes, func(other *Mesh) bool {
		return other == m
	})
	s.log.Debug("mesh disposed", zap.String("mesh", m.name))
}

// effectiveMaterial resolves what a mesh is drawn with.
func (s *Scene) effectiveMaterial(m *Mesh) Material {
	if m.material == nil || m.material.IsDisposed() {
		return s.fallback
	}
	return m.material
}

// Render draws the scene into fb through r. Groups are drawn in ascending
// order with the depth buffer cleared in between. Within a group opaque
// meshes draw first, then transparent ones by alpha index and back to front.
func (s *Scene) Render(r *render.Rasterizer, fb *render.Framebuffer) {
	fb.Clear(s.ClearColor)
	r.BeginFrame()

	eye := r.Camera().Position()
	light := render.Shading{LightDir: s.LightDir}

	var groups [MaxRenderingGroups][]*Mesh
	for _, m := range s.meshes {
		if m.visible && !m.disposed {
			groups[m.renderingGroup] = append(groups[m.renderingGroup], m)
		}
	}

	drawn := false
	for _, group := range groups {
		if len(group) == 0 {
			continue
		}
		if drawn {
			r.ClearDepth()
		}
		drawn = true

		var opaque, transparent []*Mesh
		for _, m := range group {
			if s.effectiveMaterial(m).Alpha() < 1 {
				transparent = append(transparent, m)
			} else {
				opaque = append(opaque, m)
			}
		}
		sort.SliceStable(transparent, func(i, j int) bool {
			a, b := transparent[i], transparent[j]
			if a.alphaIndex != b.alphaIndex {
				return a.alphaIndex < b.alphaIndex
			}
			return s.distance(a, eye) > s.distance(b, eye)
		})

		for _, m := range append(opaque, transparent...) {
			world := m.WorldMatrix()
			r.DrawMesh(m.geometry, world, shading(s.effectiveMaterial(m), light))
			if m.edgesEnabled {
				r.DrawEdges(m.edges, world, m.edgesColor, m.edgePixels())
			}
		}
	}
}

func (s *Scene) distance(m *Mesh, eye math3d.Vec3) float64 {
	box, ok := m.BoundingBox()
	if !ok {
		return 0
	}
	return box.Center().Distance(eye)
}

// Summary describes the scene for logs and the HUD.
func (s *Scene) Summary() string {
	tris := 0
	for _, m := range s.meshes {
		tris += m.geometry.TriangleCount()
	}
	return fmt.Sprintf("%d meshes, %d triangles, %d materials", len(s.meshes), tris, len(s.materials))
}
