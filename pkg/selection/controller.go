// Package selection implements pick-to-highlight for a set of meshes.
//
// Picking a mesh highlights it (tinted, enlarged, outlined and drawn above
// everything else) and fades every other mesh. Picking it again restores the
// whole set to how it looked when first observed. The selected mesh can be
// deleted or rescaled.
package selection

import (
	"image/color"
	"slices"

	"go.uber.org/zap"

	"github.com/taigrr/meshpick/pkg/math3d"
)

// DefaultHighlightColor tints the selected mesh.
var DefaultHighlightColor = color.RGBA{255, 0, 0, 255}

// Defaults for highlight and fade.
const (
	DefaultEdgeWidth      = 4.0
	DefaultFadeAlpha      = 0.2
	DefaultHighlightScale = 1.2
)

// Draw layers: the highlighted mesh renders in a later rendering group and
// sorts after everything else by alpha index.
const (
	highlightGroup      = 1
	fadedGroup          = 0
	highlightAlphaIndex = 1
	fadedAlphaIndex     = 0
)

// Snapshot is a mesh's appearance when the controller first saw it.
type Snapshot struct {
	Material       Material // nil when the mesh had none
	BaseColor      color.RGBA
	HasBaseColor   bool
	Alpha          float64
	Scaling        math3d.Vec3
	RenderingGroup int
	AlphaIndex     int
}

// Controller owns the selection state. It is not safe for concurrent use;
// callers serialize events onto one goroutine.
type Controller struct {
	registry Registry
	factory  MaterialFactory
	log      *zap.Logger

	highlightColor color.RGBA
	edgeWidth      float64
	fadeAlpha      float64
	highlightScale float64

	snapshots  map[Mesh]*Snapshot
	faded      map[Mesh]Material
	highlights map[Mesh]Material
	colors     colorCache
	selected   Mesh
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

// WithMaterialFactory enables highlight materials for meshes without one.
func WithMaterialFactory(f MaterialFactory) Option {
	return func(c *Controller) { c.factory = f }
}

// WithHighlightColor sets the highlight tint and outline color.
func WithHighlightColor(col color.RGBA) Option {
	return func(c *Controller) { c.highlightColor = col }
}

// WithEdgeWidth sets the outline width.
func WithEdgeWidth(w float64) Option {
	return func(c *Controller) { c.edgeWidth = w }
}

// WithFadeAlpha sets the opacity of faded meshes.
func WithFadeAlpha(a float64) Option {
	return func(c *Controller) { c.fadeAlpha = a }
}

// WithHighlightScale sets the highlight scale relative to the snapshot.
func WithHighlightScale(s float64) Option {
	return func(c *Controller) { c.highlightScale = s }
}

// New creates a controller over registry.
func New(registry Registry, opts ...Option) *Controller {
	c := &Controller{
		registry:       registry,
		log:            zap.NewNop(),
		highlightColor: DefaultHighlightColor,
		edgeWidth:      DefaultEdgeWidth,
		fadeAlpha:      DefaultFadeAlpha,
		highlightScale: DefaultHighlightScale,
		snapshots:      make(map[Mesh]*Snapshot),
		faded:          make(map[Mesh]Material),
		highlights:     make(map[Mesh]Material),
		colors:         make(colorCache),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Track records snapshots for meshes not seen before. Call it right after
// loading so the snapshots reflect the untouched asset.
func (c *Controller) Track(meshes []Mesh) {
	for _, m := range meshes {
		c.capture(m)
	}
}

// Selected returns the current selection, nil when none.
func (c *Controller) Selected() Mesh {
	return c.selected
}

// Snapshot returns the recorded original appearance of m.
func (c *Controller) Snapshot(m Mesh) (Snapshot, bool) {
	s, ok := c.snapshots[m]
	if !ok {
		return Snapshot{}, false
	}
	return *s, true
}

// Pick handles a pick on mesh: picking the selection clears it, picking
// anything else moves the selection there. Meshes missing from the registry,
// such as deleted ones, are ignored.
func (c *Controller) Pick(mesh Mesh) {
	if mesh == nil {
		return
	}
	meshes := c.registry.Meshes()
	if !slices.Contains(meshes, mesh) {
		c.log.Debug("pick ignored, mesh not registered", zap.String("mesh", mesh.Name()))
		return
	}
	c.Track(meshes)

	if mesh == c.selected {
		for _, m := range meshes {
			c.restore(m)
		}
		c.log.Debug("selection cleared", zap.String("mesh", mesh.Name()))
		c.selected = nil
		return
	}

	for _, m := range meshes {
		if m != mesh {
			c.fade(m)
		}
	}
	c.highlight(mesh)
	c.selected = mesh
	c.log.Debug("mesh selected", zap.String("mesh", mesh.Name()))
}

// Deselect clears the selection as if the selected mesh had been picked
// again. No-op without a selection.
func (c *Controller) Deselect() {
	if c.selected != nil {
		c.Pick(c.selected)
	}
}

// DeleteSelected disposes the selected mesh and forgets it. Faded neighbours
// stay faded until the next toggle-off; nothing is restored here. A deleted
// mesh can no longer be picked. No-op without a selection.
func (c *Controller) DeleteSelected() {
	m := c.selected
	if m == nil {
		return
	}

	if err := m.Dispose(); err != nil {
		c.log.Warn("dispose mesh", zap.String("mesh", m.Name()), zap.Error(err))
	}
	c.registry.Remove(m)

	c.dropOwned(c.faded, m)
	c.dropOwned(c.highlights, m)
	delete(c.snapshots, m)
	c.selected = nil
	c.log.Debug("mesh deleted", zap.String("mesh", m.Name()))
}

// ScaleSelected multiplies the selected mesh's current scaling by factor.
// Repeated calls compound. No-op without a selection.
func (c *Controller) ScaleSelected(factor float64) {
	m := c.selected
	if m == nil {
		return
	}
	m.SetScaling(m.Scaling().Scale(factor))
}

// capture returns the snapshot of m, recording it on first sight.
func (c *Controller) capture(m Mesh) *Snapshot {
	if s, ok := c.snapshots[m]; ok {
		return s
	}

	s := &Snapshot{
		Alpha:          1,
		Scaling:        m.Scaling(),
		RenderingGroup: m.RenderingGroup(),
		AlphaIndex:     m.AlphaIndex(),
	}
	if mat := m.Material(); mat != nil {
		s.Material = mat
		s.Alpha = mat.Alpha()
		if acc, ok := c.colors.lookup(mat); ok {
			s.BaseColor = acc.get()
			s.HasBaseColor = true
		}
	}
	c.snapshots[m] = s
	return s
}

// restore puts m back to its snapshot and releases owned materials.
func (c *Controller) restore(m Mesh) {
	s := c.capture(m)

	m.SetMaterial(s.Material)
	if s.Material != nil {
		if s.HasBaseColor {
			if acc, ok := c.colors.lookup(s.Material); ok {
				acc.set(s.BaseColor)
			}
		}
		s.Material.SetAlpha(s.Alpha)
	}
	m.SetRenderingGroup(s.RenderingGroup)
	m.SetAlphaIndex(s.AlphaIndex)
	m.SetScaling(s.Scaling)
	m.SetVisible(true)

	c.dropOwned(c.faded, m)
	c.dropOwned(c.highlights, m)
	if o, ok := m.(EdgeOutliner); ok {
		o.DisableEdges()
	}
}

// fade de-emphasizes m behind a translucent clone of its material.
func (c *Controller) fade(m Mesh) {
	s := c.capture(m)

	// A previous highlight material never carries over into the faded look.
	if _, ok := c.highlights[m]; ok {
		m.SetMaterial(s.Material)
		c.dropOwned(c.highlights, m)
	}

	current := m.Material()
	if cached, ok := c.faded[m]; !ok || cached != current {
		c.dropOwned(c.faded, m)
		c.applyFade(m, s, current)
	}

	m.SetRenderingGroup(fadedGroup)
	m.SetAlphaIndex(fadedAlphaIndex)
	if o, ok := m.(EdgeOutliner); ok {
		o.DisableEdges()
	}
	m.SetScaling(s.Scaling)
}

func (c *Controller) applyFade(m Mesh, s *Snapshot, current Material) {
	if current == nil {
		c.log.Debug("nothing to fade", zap.String("mesh", m.Name()))
		return
	}

	clone, err := current.Clone(current.Name() + "_faded")
	if err != nil || clone == nil {
		c.log.Debug("clone failed, fading in place",
			zap.String("mesh", m.Name()), zap.Error(err))
		current.SetAlpha(c.fadeAlpha)
		return
	}

	clone.SetAlpha(c.fadeAlpha)
	if s.HasBaseColor {
		if acc, ok := c.colors.lookup(clone); ok {
			acc.set(s.BaseColor)
		}
	}
	if bf, ok := clone.(BackFaceCuller); ok {
		bf.SetBackFaceCulling(true)
	}
	m.SetMaterial(clone)
	c.faded[m] = clone
}

// highlight emphasizes m on top of the faded rest.
func (c *Controller) highlight(m Mesh) {
	s := c.capture(m)

	m.SetMaterial(s.Material)
	c.dropOwned(c.faded, m)

	mat := s.Material
	if mat == nil {
		mat = c.highlightMaterial(m)
	}
	if mat != nil {
		if acc, ok := c.colors.lookup(mat); ok {
			acc.set(c.highlightColor)
		}
		mat.SetAlpha(1)
	}

	m.SetScaling(s.Scaling.Scale(c.highlightScale))
	m.SetRenderingGroup(highlightGroup)
	m.SetAlphaIndex(highlightAlphaIndex)
	m.SetVisible(true)
	if o, ok := m.(EdgeOutliner); ok {
		o.EnableEdges(c.edgeWidth, c.highlightColor)
	}
}

// highlightMaterial returns the opaque material for a mesh that has none,
// creating it on first use.
func (c *Controller) highlightMaterial(m Mesh) Material {
	if mat, ok := c.highlights[m]; ok {
		m.SetMaterial(mat)
		return mat
	}
	if c.factory == nil {
		return nil
	}

	mat, err := c.factory.NewMaterial(m.Name() + "_highlight")
	if err != nil || mat == nil {
		c.log.Debug("no highlight material", zap.String("mesh", m.Name()), zap.Error(err))
		return nil
	}
	m.SetMaterial(mat)
	c.highlights[m] = mat
	return mat
}

// dropOwned disposes and forgets the material owned for m in set.
func (c *Controller) dropOwned(set map[Mesh]Material, m Mesh) {
	mat, ok := set[m]
	if !ok {
		return
	}
	delete(set, m)
	c.colors.forget(mat)
	mat.Dispose()
}
