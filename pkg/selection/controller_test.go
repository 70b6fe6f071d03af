package selection

import (
	"errors"
	"image/color"
	"math"
	"testing"

	"github.com/taigrr/meshpick/pkg/math3d"
)

var (
	colA = color.RGBA{10, 20, 30, 255}
	colB = color.RGBA{40, 50, 60, 255}
	colC = color.RGBA{70, 80, 90, 255}
)

type trio struct {
	a, b, c          *fakeMesh
	matA, matB, matC *diffuseMaterial
	reg              *fakeRegistry
	ctl              *Controller
}

func newTrio(opts ...Option) *trio {
	t := &trio{
		matA: newDiffuse("matA", colA),
		matB: newDiffuse("matB", colB),
		matC: newDiffuse("matC", colC),
	}
	t.a = newMesh("A", t.matA)
	t.b = newMesh("B", t.matB)
	t.c = newMesh("C", t.matC)
	t.reg = newRegistry(t.a, t.b, t.c)
	t.ctl = New(t.reg, opts...)
	t.ctl.Track(t.reg.Meshes())
	return t
}

func scaleEq(got, want math3d.Vec3) bool {
	return got.ApproxEqual(want, 1e-12)
}

func checkHighlighted(t *testing.T, m *fakeMesh, mat *diffuseMaterial, scale float64) {
	t.Helper()
	if m.Material() != Material(mat) {
		t.Errorf("%s: material = %v, want original", m.name, m.Material())
	}
	if mat.diffuse != DefaultHighlightColor {
		t.Errorf("%s: color = %v, want highlight", m.name, mat.diffuse)
	}
	if mat.alpha != 1 {
		t.Errorf("%s: alpha = %f, want 1", m.name, mat.alpha)
	}
	if m.group != 1 || m.alphaIndex != 1 {
		t.Errorf("%s: group/index = %d/%d, want 1/1", m.name, m.group, m.alphaIndex)
	}
	if want := math3d.V3(scale, scale, scale); !scaleEq(m.scaling, want) {
		t.Errorf("%s: scaling = %+v, want %+v", m.name, m.scaling, want)
	}
	if !m.edgesOn || m.edgeWidth != DefaultEdgeWidth || m.edgeColor != DefaultHighlightColor {
		t.Errorf("%s: outline = %v/%f/%v", m.name, m.edgesOn, m.edgeWidth, m.edgeColor)
	}
	if !m.visible {
		t.Errorf("%s: not visible", m.name)
	}
}

func checkFaded(t *testing.T, m *fakeMesh, orig *diffuseMaterial, origColor color.RGBA) {
	t.Helper()
	mat, ok := m.Material().(*diffuseMaterial)
	if !ok || mat == orig {
		t.Fatalf("%s: expected a faded clone, got %v", m.name, m.Material())
	}
	if mat.name != orig.name+"_faded" {
		t.Errorf("%s: clone name = %q", m.name, mat.name)
	}
	if mat.alpha != DefaultFadeAlpha {
		t.Errorf("%s: clone alpha = %f, want %f", m.name, mat.alpha, DefaultFadeAlpha)
	}
	if mat.diffuse != origColor {
		t.Errorf("%s: clone color = %v, want %v", m.name, mat.diffuse, origColor)
	}
	if !mat.culling {
		t.Errorf("%s: clone should cull back faces", m.name)
	}
	if m.group != 0 || m.alphaIndex != 0 {
		t.Errorf("%s: group/index = %d/%d, want 0/0", m.name, m.group, m.alphaIndex)
	}
	if m.edgesOn {
		t.Errorf("%s: faded mesh has an outline", m.name)
	}
}

func checkRestored(t *testing.T, m *fakeMesh, orig *diffuseMaterial, origColor color.RGBA) {
	t.Helper()
	if m.Material() != Material(orig) {
		t.Errorf("%s: material not restored", m.name)
	}
	if orig.diffuse != origColor || orig.alpha != 1 {
		t.Errorf("%s: color/alpha = %v/%f", m.name, orig.diffuse, orig.alpha)
	}
	if m.group != 0 || m.alphaIndex != 0 {
		t.Errorf("%s: group/index = %d/%d", m.name, m.group, m.alphaIndex)
	}
	if !scaleEq(m.scaling, math3d.V3(1, 1, 1)) {
		t.Errorf("%s: scaling = %+v", m.name, m.scaling)
	}
	if m.edgesOn || !m.visible {
		t.Errorf("%s: outline/visible = %v/%v", m.name, m.edgesOn, m.visible)
	}
}

func TestPickScenario(t *testing.T) {
	tr := newTrio()

	tr.ctl.Pick(tr.a)
	checkHighlighted(t, tr.a, tr.matA, 1.2)
	checkFaded(t, tr.b, tr.matB, colB)
	checkFaded(t, tr.c, tr.matC, colC)
	if tr.ctl.Selected() != Mesh(tr.a) {
		t.Fatal("A should be selected")
	}

	tr.ctl.Pick(tr.a)
	checkRestored(t, tr.a, tr.matA, colA)
	checkRestored(t, tr.b, tr.matB, colB)
	checkRestored(t, tr.c, tr.matC, colC)
	if tr.ctl.Selected() != nil {
		t.Fatal("selection should be cleared")
	}
	for _, mat := range []*diffuseMaterial{tr.matB, tr.matC} {
		for _, clone := range mat.clones {
			if !clone.disposed {
				t.Errorf("clone %q not disposed on restore", clone.name)
			}
		}
	}

	tr.ctl.Pick(tr.b)
	checkHighlighted(t, tr.b, tr.matB, 1.2)
	checkFaded(t, tr.a, tr.matA, colA)
	checkFaded(t, tr.c, tr.matC, colC)

	tr.ctl.ScaleSelected(1.2)
	if want := math3d.V3(1.44, 1.44, 1.44); !scaleEq(tr.b.scaling, want) {
		t.Errorf("B scaling = %+v, want %+v", tr.b.scaling, want)
	}

	tr.ctl.DeleteSelected()
	if !tr.b.disposed {
		t.Error("B should be disposed")
	}
	if got := tr.reg.Meshes(); len(got) != 2 || got[0] != Mesh(tr.a) || got[1] != Mesh(tr.c) {
		t.Errorf("registry = %v, want [A C]", got)
	}
	// Neighbours are not restored by delete.
	checkFaded(t, tr.a, tr.matA, colA)
	checkFaded(t, tr.c, tr.matC, colC)
	if tr.ctl.Selected() != nil {
		t.Error("selection should be cleared after delete")
	}
}

func TestPickIdempotence(t *testing.T) {
	mat := newDiffuse("odd", colA)
	mat.alpha = 0.7
	odd := newMesh("odd", mat)
	odd.scaling = math3d.V3(2, 1, 0.5)
	odd.group = 2
	odd.alphaIndex = 3
	other := newMesh("other", newDiffuse("other", colB))

	reg := newRegistry(odd, other)
	ctl := New(reg)

	for range 3 {
		ctl.Pick(odd)
		if !scaleEq(odd.scaling, math3d.V3(2.4, 1.2, 0.6)) {
			t.Errorf("highlight scaling = %+v", odd.scaling)
		}
		ctl.Pick(odd)

		if odd.Material() != Material(mat) {
			t.Error("material not restored")
		}
		if mat.alpha != 0.7 || mat.diffuse != colA {
			t.Errorf("alpha/color = %f/%v, want 0.7/%v", mat.alpha, mat.diffuse, colA)
		}
		if !scaleEq(odd.scaling, math3d.V3(2, 1, 0.5)) {
			t.Errorf("scaling = %+v", odd.scaling)
		}
		if odd.group != 2 || odd.alphaIndex != 3 {
			t.Errorf("group/index = %d/%d, want 2/3", odd.group, odd.alphaIndex)
		}
		if odd.edgesOn {
			t.Error("outline left on")
		}
	}
	if len(ctl.faded) != 0 || len(ctl.highlights) != 0 {
		t.Errorf("owned materials left: faded=%d highlights=%d", len(ctl.faded), len(ctl.highlights))
	}
}

func TestPickExclusivity(t *testing.T) {
	tr := newTrio()
	meshes := []*fakeMesh{tr.a, tr.b, tr.c}
	sequence := []*fakeMesh{tr.a, tr.b, tr.b, tr.c, tr.a, tr.c, tr.c, tr.b}

	for step, picked := range sequence {
		tr.ctl.Pick(picked)

		top := 0
		for _, m := range meshes {
			if m.group == 1 || m.alphaIndex == 1 {
				top++
			}
		}
		want := 0
		if tr.ctl.Selected() != nil {
			want = 1
		}
		if top != want {
			t.Errorf("step %d: %d meshes in the top group, want %d", step, top, want)
		}
	}
}

func TestHighlightScaleDoesNotCompound(t *testing.T) {
	tr := newTrio()

	tr.ctl.Pick(tr.a)
	tr.ctl.ScaleSelected(2)
	tr.ctl.ScaleSelected(2)
	if !scaleEq(tr.a.scaling, math3d.V3(4.8, 4.8, 4.8)) {
		t.Fatalf("scaling = %+v, want 4.8", tr.a.scaling)
	}

	// Moving the selection resets A before B is highlighted.
	tr.ctl.Pick(tr.b)
	if !scaleEq(tr.a.scaling, math3d.V3(1, 1, 1)) {
		t.Errorf("A scaling after fade = %+v, want snapshot", tr.a.scaling)
	}

	for range 3 {
		tr.ctl.Pick(tr.a)
		if !scaleEq(tr.a.scaling, math3d.V3(1.2, 1.2, 1.2)) {
			t.Errorf("A scaling = %+v, want 1.2x snapshot", tr.a.scaling)
		}
		tr.ctl.Pick(tr.a)
	}
}

func TestNoSelectionNoOps(t *testing.T) {
	tr := newTrio()

	tr.ctl.ScaleSelected(1.2)
	tr.ctl.DeleteSelected()
	tr.ctl.Deselect()
	tr.ctl.Pick(nil)

	for _, m := range []*fakeMesh{tr.a, tr.b, tr.c} {
		if !scaleEq(m.scaling, math3d.V3(1, 1, 1)) || m.disposed {
			t.Errorf("%s changed without a selection", m.name)
		}
	}
	if len(tr.reg.meshes) != 3 {
		t.Errorf("registry shrank to %d", len(tr.reg.meshes))
	}
}

func TestDeleteClearsState(t *testing.T) {
	tr := newTrio()
	tr.b.disposeErr = errors.New("engine refused")

	tr.ctl.Pick(tr.a)
	tr.ctl.Pick(tr.b)
	tr.ctl.DeleteSelected()

	if _, ok := tr.ctl.Snapshot(tr.b); ok {
		t.Error("snapshot kept after delete")
	}
	if _, ok := tr.ctl.faded[tr.b]; ok {
		t.Error("faded entry kept after delete")
	}
	if _, ok := tr.ctl.highlights[tr.b]; ok {
		t.Error("highlight entry kept after delete")
	}
	for _, clone := range tr.matB.clones {
		if !clone.disposed {
			t.Errorf("clone %q of deleted mesh not disposed", clone.name)
		}
	}
	if len(tr.reg.meshes) != 2 {
		t.Errorf("registry has %d meshes, want 2 even when dispose fails", len(tr.reg.meshes))
	}
	if _, ok := tr.ctl.Snapshot(tr.a); !ok {
		t.Error("A lost its snapshot")
	}
}

func TestPickDeletedMeshIgnored(t *testing.T) {
	tr := newTrio()
	tr.ctl.Pick(tr.b)
	tr.ctl.DeleteSelected()
	fadedA := tr.a.Material()
	scaling := tr.b.scaling

	tr.ctl.Pick(tr.b)
	if tr.ctl.Selected() != nil {
		t.Errorf("selected = %v after picking a deleted mesh, want nil", tr.ctl.Selected())
	}
	if _, ok := tr.ctl.Snapshot(tr.b); ok {
		t.Error("deleted mesh got a new snapshot")
	}
	if !scaleEq(tr.b.scaling, scaling) || tr.a.Material() != fadedA {
		t.Error("picking a deleted mesh changed the scene")
	}

	tr.ctl.DeleteSelected()
	if tr.b.disposeCalls != 1 {
		t.Errorf("deleted mesh disposed %d times, want 1", tr.b.disposeCalls)
	}
}

func TestCloneFailureFadesInPlace(t *testing.T) {
	tr := newTrio()
	tr.matB.cloneErr = errCloneUnsupported

	tr.ctl.Pick(tr.a)
	if tr.b.Material() != Material(tr.matB) {
		t.Fatal("B should keep its own material")
	}
	if tr.matB.alpha != DefaultFadeAlpha {
		t.Errorf("B alpha = %f, want %f", tr.matB.alpha, DefaultFadeAlpha)
	}
	if _, ok := tr.ctl.faded[tr.b]; ok {
		t.Error("in-place fade must not be cached")
	}

	tr.ctl.Pick(tr.a)
	if tr.matB.alpha != 1 {
		t.Errorf("B alpha after restore = %f, want 1", tr.matB.alpha)
	}
	if tr.matB.disposed {
		t.Error("original material disposed")
	}
}

func TestFadeReusesLiveClone(t *testing.T) {
	tr := newTrio()

	tr.ctl.Pick(tr.a)
	clone := tr.c.Material()

	tr.ctl.Pick(tr.b)
	if tr.c.Material() != clone {
		t.Error("C was re-cloned although its clone is still current")
	}
	if len(tr.matC.clones) != 1 {
		t.Errorf("matC cloned %d times, want 1", len(tr.matC.clones))
	}
}

func TestFadeReplacesStaleClone(t *testing.T) {
	tr := newTrio()

	tr.ctl.Pick(tr.a)
	stale := tr.matC.clones[0]

	swapped := newDiffuse("swapped", colA)
	tr.c.SetMaterial(swapped)

	tr.ctl.Pick(tr.b)
	if !stale.disposed {
		t.Error("stale clone not disposed")
	}
	if len(swapped.clones) != 1 {
		t.Fatalf("swapped material cloned %d times, want 1", len(swapped.clones))
	}
	if got := tr.c.Material().Name(); got != "swapped_faded" {
		t.Errorf("C material = %q, want swapped_faded", got)
	}
	if got := tr.c.Material().(*diffuseMaterial).diffuse; got != colC {
		t.Errorf("clone color = %v, want snapshot %v", got, colC)
	}
}

func TestHighlightWithoutMaterial(t *testing.T) {
	bare := newMesh("bare", nil)
	other := newMesh("other", newDiffuse("other", colB))
	factory := &fakeFactory{}
	ctl := New(newRegistry(bare, other), WithMaterialFactory(factory))

	ctl.Pick(bare)
	if len(factory.made) != 1 {
		t.Fatalf("factory called %d times, want 1", len(factory.made))
	}
	hl := factory.made[0]
	if bare.Material() != Material(hl) || hl.name != "bare_highlight" {
		t.Fatalf("highlight material not assigned: %v", bare.Material())
	}
	if hl.diffuse != DefaultHighlightColor || hl.alpha != 1 {
		t.Errorf("highlight material color/alpha = %v/%f", hl.diffuse, hl.alpha)
	}

	// Moving the selection away fades bare back to having no material.
	ctl.Pick(other)
	if bare.Material() != nil {
		t.Errorf("bare material = %v, want nil", bare.Material())
	}
	if !hl.disposed {
		t.Error("highlight material not disposed")
	}
	if bare.group != 0 {
		t.Errorf("bare group = %d, want 0", bare.group)
	}

	ctl.Pick(bare)
	ctl.Pick(bare)
	if bare.Material() != nil || !factory.made[1].disposed {
		t.Error("restore should drop the highlight material")
	}
}

func TestHighlightWithoutMaterialOrFactory(t *testing.T) {
	bare := newMesh("bare", nil)
	ctl := New(newRegistry(bare))

	ctl.Pick(bare)
	if bare.Material() != nil {
		t.Error("no material should be invented without a factory")
	}
	if bare.group != 1 || !bare.edgesOn {
		t.Error("geometry-level highlight should still apply")
	}
}

func TestUnsupportedCapabilitiesSkipped(t *testing.T) {
	plainMat := newPlain("plain")
	plain := &bareMesh{name: "plain", material: plainMat, scaling: math3d.V3(1, 1, 1)}
	other := &bareMesh{name: "other", material: newPlain("other"), scaling: math3d.V3(1, 1, 1)}
	ctl := New(newRegistry(plain, other))

	ctl.Pick(plain)
	if plain.group != 1 || plainMat.alpha != 1 {
		t.Errorf("group/alpha = %d/%f", plain.group, plainMat.alpha)
	}
	if s, _ := ctl.Snapshot(plain); s.HasBaseColor {
		t.Error("snapshot claims a color for a colorless material")
	}
	faded := other.material.(*fakeMaterial)
	if faded.name != "other_faded" || faded.alpha != DefaultFadeAlpha {
		t.Errorf("other material = %q alpha %f", faded.name, faded.alpha)
	}

	ctl.Pick(plain)
	if !other.visible || other.material.Name() != "other" {
		t.Error("other not restored")
	}
}

func TestColorCapabilities(t *testing.T) {
	albedo := &albedoMaterial{fakeMaterial: fakeMaterial{name: "albedo", alpha: 1}, albedo: colA}
	base := &baseMaterial{fakeMaterial: fakeMaterial{name: "base", alpha: 1}, base: colB}

	ma := newMesh("a", albedo)
	mb := newMesh("b", base)
	ctl := New(newRegistry(ma, mb))

	ctl.Pick(ma)
	if albedo.albedo != DefaultHighlightColor {
		t.Errorf("albedo = %v, want highlight", albedo.albedo)
	}
	ctl.Pick(mb)
	if base.base != DefaultHighlightColor {
		t.Errorf("base = %v, want highlight", base.base)
	}
	ctl.Pick(mb)
	if albedo.albedo != colA || base.base != colB {
		t.Errorf("colors not restored: %v %v", albedo.albedo, base.base)
	}
}

// dualMaterial exposes both the legacy and the metallic-roughness color.
type dualMaterial struct {
	diffuseMaterial
	base color.RGBA
}

func (m *dualMaterial) BaseColor() color.RGBA     { return m.base }
func (m *dualMaterial) SetBaseColor(c color.RGBA) { m.base = c }

func TestColorResolutionOrder(t *testing.T) {
	mat := &dualMaterial{diffuseMaterial: *newDiffuse("dual", colA), base: colB}

	cache := make(colorCache)
	acc, ok := cache.lookup(mat)
	if !ok {
		t.Fatal("no accessor for a colored material")
	}
	acc.set(colC)
	if mat.diffuse != colC || mat.base != colB {
		t.Errorf("diffuse should win: diffuse=%v base=%v", mat.diffuse, mat.base)
	}

	if _, ok := cache.lookup(newPlain("plain")); ok {
		t.Error("plain material has no color")
	}
	if _, ok := cache.lookup(nil); ok {
		t.Error("nil material has no color")
	}
	if len(cache) != 2 {
		t.Errorf("cache holds %d entries, want 2", len(cache))
	}
}

func TestOptions(t *testing.T) {
	blue := color.RGBA{0, 0, 255, 255}
	tr := newTrio(
		WithHighlightColor(blue),
		WithEdgeWidth(2),
		WithFadeAlpha(0.5),
		WithHighlightScale(2),
		WithLogger(nil),
	)

	tr.ctl.Pick(tr.a)
	if tr.matA.diffuse != blue || tr.a.edgeColor != blue || tr.a.edgeWidth != 2 {
		t.Errorf("highlight = %v, outline %v/%f", tr.matA.diffuse, tr.a.edgeColor, tr.a.edgeWidth)
	}
	if !scaleEq(tr.a.scaling, math3d.V3(2, 2, 2)) {
		t.Errorf("scaling = %+v", tr.a.scaling)
	}
	if got := tr.b.Material().Alpha(); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("fade alpha = %f", got)
	}
	if tr.ctl.log == nil {
		t.Error("nil logger option replaced the default")
	}
}

func TestLazySnapshot(t *testing.T) {
	reg := newRegistry()
	ctl := New(reg)

	late := newMesh("late", newDiffuse("late", colA))
	late.scaling = math3d.V3(3, 3, 3)
	reg.meshes = append(reg.meshes, late)

	ctl.Pick(late)
	s, ok := ctl.Snapshot(late)
	if !ok {
		t.Fatal("no snapshot for a mesh seen first at pick time")
	}
	if !scaleEq(s.Scaling, math3d.V3(3, 3, 3)) || s.BaseColor != colA || !s.HasBaseColor {
		t.Errorf("snapshot = %+v", s)
	}

	// Snapshots are never overwritten.
	late.scaling = math3d.V3(9, 9, 9)
	ctl.Track(reg.Meshes())
	if s, _ := ctl.Snapshot(late); !scaleEq(s.Scaling, math3d.V3(3, 3, 3)) {
		t.Errorf("snapshot overwritten: %+v", s.Scaling)
	}
}
