// Package viewer is the interactive glue around the selection controller:
// it loads a model into the scene, frames the camera, turns mouse and key
// events into picks and button actions, and draws the scene with its HUD.
package viewer

import (
	"fmt"
	"image/color"
	"math"

	uv "github.com/charmbracelet/ultraviolet"
	"go.uber.org/zap"

	"github.com/taigrr/meshpick/pkg/math3d"
	"github.com/taigrr/meshpick/pkg/render"
	"github.com/taigrr/meshpick/pkg/scene"
	"github.com/taigrr/meshpick/pkg/selection"
)

const (
	orbitSpeed = 0.03 // radians per dragged cell
	keyOrbit   = 0.08
	zoomStep   = 1.1
)

// Options configures a Viewer.
type Options struct {
	FPS        int
	Background color.RGBA

	// Initial orbit camera.
	Alpha, Beta, Radius float64
	MinRadius           float64 // zoom limit
	FrameRadius         float64 // minimum radius after framing
	FOV                 float64

	HighlightColor color.RGBA
	EdgeWidth      float64
	HighlightScale float64
	FadeAlpha      float64
	ScaleStep      float64 // factor applied by the Scale Geometry button

	ScreenshotPath string
	Logger         *zap.Logger
}

// DefaultOptions returns the stock viewer settings.
func DefaultOptions() Options {
	return Options{
		FPS:            30,
		Background:     render.RGB(20, 20, 30),
		Alpha:          math.Pi / 2,
		Beta:           math.Pi / 4,
		Radius:         10,
		MinRadius:      0.5,
		FrameRadius:    3,
		FOV:            0.8,
		HighlightColor: selection.DefaultHighlightColor,
		EdgeWidth:      selection.DefaultEdgeWidth,
		HighlightScale: selection.DefaultHighlightScale,
		FadeAlpha:      selection.DefaultFadeAlpha,
		ScaleStep:      1.2,
		ScreenshotPath: "meshpick.png",
	}
}

// pose is a camera placement to return to.
type pose struct {
	target              math3d.Vec3
	alpha, beta, radius float64
}

// press tracks a left button held down in the viewport.
type press struct {
	lastX, lastY int
	dragged      bool
}

// Viewer owns the scene, camera and selection for one model. All methods
// must be called from the same goroutine.
type Viewer struct {
	opts Options
	log  *zap.Logger

	scene     *scene.Scene
	camera    *render.OrbitCamera
	fb        *render.Framebuffer
	raster    *render.Rasterizer
	adapter   *Adapter
	selection *selection.Controller
	motion    *orbitMotion
	home      pose

	hud     *hud
	showHUD bool
	buttons []button
	status  string

	area  uv.Rectangle
	press *press
}

// New creates a viewer with an empty scene. title is shown in the HUD.
func New(title string, opts Options) *Viewer {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if opts.FPS <= 0 {
		opts.FPS = DefaultOptions().FPS
	}

	sc := scene.New(scene.WithLogger(log.Named("scene")))
	sc.ClearColor = opts.Background

	cam := render.NewOrbitCamera(opts.Alpha, opts.Beta, opts.Radius, math3d.Zero3())
	cam.LowerRadiusLimit = opts.MinRadius
	if opts.FOV > 0 {
		cam.SetFOV(opts.FOV)
	}

	fb := render.NewFramebuffer(1, 1)
	adapter := NewAdapter(sc, log.Named("adapter"))

	ctl := selection.New(adapter,
		selection.WithLogger(log.Named("selection")),
		selection.WithMaterialFactory(adapter),
		selection.WithHighlightColor(opts.HighlightColor),
		selection.WithEdgeWidth(opts.EdgeWidth),
		selection.WithHighlightScale(opts.HighlightScale),
		selection.WithFadeAlpha(opts.FadeAlpha),
	)

	v := &Viewer{
		opts:      opts,
		log:       log,
		scene:     sc,
		camera:    cam,
		fb:        fb,
		raster:    render.NewRasterizer(cam, fb),
		adapter:   adapter,
		selection: ctl,
		motion:    newOrbitMotion(opts.FPS, cam.Radius()),
		hud:       newHUD(title),
		showHUD:   true,
		buttons:   layoutButtons(),
		status:    "click a mesh to select it",
	}
	v.home = v.currentPose()
	return v
}

// Scene returns the underlying scene.
func (v *Viewer) Scene() *scene.Scene { return v.scene }

// Camera returns the orbit camera.
func (v *Viewer) Camera() *render.OrbitCamera { return v.camera }

// Selection returns the selection controller.
func (v *Viewer) Selection() *selection.Controller { return v.selection }

// Status returns the last status line.
func (v *Viewer) Status() string { return v.status }

// LoadModel imports the GLB at path. On success every mesh is tracked by
// the selection controller and the camera is framed on the first mesh.
// Failures are logged and returned; the scene then stays empty.
func (v *Viewer) LoadModel(path string) error {
	var loadErr error
	v.scene.ImportMesh(path,
		v.attach,
		func(done, total int) {
			v.status = fmt.Sprintf("loading %d/%d", done, total)
		},
		func(err error) {
			loadErr = err
			v.status = "load failed"
		},
	)
	return loadErr
}

// attach registers freshly loaded meshes.
func (v *Viewer) attach(meshes []*scene.Mesh) {
	v.selection.Track(v.adapter.Meshes())
	if err := FrameCamera(v.camera, meshes, v.opts.FrameRadius, v.log); err == nil {
		v.motion.jump(v.camera.Radius())
	}
	v.home = v.currentPose()
	v.status = fmt.Sprintf("loaded %d meshes", len(meshes))
}

func (v *Viewer) currentPose() pose {
	return pose{
		target: v.camera.Target(),
		alpha:  v.camera.Alpha(),
		beta:   v.camera.Beta(),
		radius: v.camera.Radius(),
	}
}

func (v *Viewer) resetCamera() {
	v.motion.stop()
	v.camera.SetTarget(v.home.target)
	v.camera.SetAlpha(v.home.alpha)
	v.camera.SetBeta(v.home.beta)
	v.camera.SetRadius(v.home.radius)
	v.motion.jump(v.home.radius)
}

// Resize lays the viewer out over a cols x rows cell area: the 3D viewport
// fills all rows but the last, which holds the button bar.
func (v *Viewer) Resize(cols, rows int) {
	v.resizeArea(uv.Rect(0, 0, cols, rows))
}

func (v *Viewer) resizeArea(area uv.Rectangle) {
	v.area = area
	w := max(1, area.Dx())
	h := max(1, area.Dy()-1) * 2
	v.fb.Resize(w, h)
	v.raster.Resize()
	v.camera.SetAspectRatio(float64(w) / float64(h))
}

func (v *Viewer) barRow() int {
	return v.area.Max.Y - 1
}

// Update advances camera motion by one frame.
func (v *Viewer) Update() {
	v.motion.apply(v.camera)
	v.hud.tick()
}

// Draw renders the scene, HUD and button bar into area.
func (v *Viewer) Draw(scr uv.Screen, area uv.Rectangle) {
	if area != v.area {
		v.resizeArea(area)
	}

	v.scene.Render(v.raster, v.fb)
	viewport := uv.Rect(area.Min.X, area.Min.Y, area.Dx(), max(0, area.Dy()-1))
	v.fb.Draw(scr, viewport)

	if v.showHUD && area.Dy() > 1 {
		selected := ""
		if m := v.selection.Selected(); m != nil {
			selected = m.Name()
		}
		line := v.hud.render(area.Dx(), len(v.scene.Meshes()), selected)
		uv.NewStyledString(line).Draw(scr, uv.Rect(area.Min.X, area.Min.Y, area.Dx(), 1))
	}

	bar := renderBar(v.buttons, area.Dx(), v.selection.Selected() != nil, v.status)
	uv.NewStyledString(bar).Draw(scr, uv.Rect(area.Min.X, v.barRow(), area.Dx(), 1))
}

// HandleEvent applies one input event. It returns false when the user asked
// to quit.
func (v *Viewer) HandleEvent(ev uv.Event) bool {
	switch ev := ev.(type) {
	case uv.WindowSizeEvent:
		v.Resize(ev.Width, ev.Height)

	case uv.KeyPressEvent:
		return v.handleKey(ev)

	case uv.MouseClickEvent:
		if ev.Button != uv.MouseLeft {
			return true
		}
		if ev.Y == v.barRow() {
			if b, ok := hitButton(v.buttons, ev.X-v.area.Min.X); ok {
				v.do(b.action)
			}
			return true
		}
		v.press = &press{lastX: ev.X, lastY: ev.Y}

	case uv.MouseMotionEvent:
		if v.press == nil {
			return true
		}
		dx, dy := ev.X-v.press.lastX, ev.Y-v.press.lastY
		if dx != 0 || dy != 0 {
			v.press.dragged = true
			v.motion.impulse(-float64(dx)*orbitSpeed, -float64(dy)*orbitSpeed)
			v.press.lastX, v.press.lastY = ev.X, ev.Y
		}

	case uv.MouseReleaseEvent:
		p := v.press
		v.press = nil
		if p != nil && !p.dragged {
			v.pickAt(ev.X, ev.Y)
		}

	case uv.MouseWheelEvent:
		switch ev.Button {
		case uv.MouseWheelUp:
			v.motion.zoom(1/zoomStep, v.opts.MinRadius)
		case uv.MouseWheelDown:
			v.motion.zoom(zoomStep, v.opts.MinRadius)
		}
	}
	return true
}

func (v *Viewer) handleKey(ev uv.KeyPressEvent) bool {
	switch {
	case ev.MatchString("ctrl+c", "q"):
		return false
	case ev.MatchString("esc", "escape"):
		if v.selection.Selected() == nil {
			return false
		}
		v.selection.Deselect()
		v.status = "selection cleared"
	case ev.MatchString("delete", "backspace"):
		v.do(actionDelete)
	case ev.MatchString("g"):
		v.do(actionScale)
	case ev.MatchString("r"):
		v.resetCamera()
	case ev.MatchString("p"):
		v.screenshot()
	case ev.MatchString("?", "shift+/"):
		v.showHUD = !v.showHUD
	case ev.MatchString("left", "a"):
		v.motion.impulse(keyOrbit, 0)
	case ev.MatchString("right", "d"):
		v.motion.impulse(-keyOrbit, 0)
	case ev.MatchString("up", "w"):
		v.motion.impulse(0, -keyOrbit)
	case ev.MatchString("down", "s"):
		v.motion.impulse(0, keyOrbit)
	case ev.MatchString("+", "="):
		v.motion.zoom(1/zoomStep, v.opts.MinRadius)
	case ev.MatchString("-", "_"):
		v.motion.zoom(zoomStep, v.opts.MinRadius)
	}
	return true
}

// pickAt picks through the center of cell (col, row). A miss changes
// nothing.
func (v *Viewer) pickAt(col, row int) {
	if row < v.area.Min.Y || row >= v.barRow() {
		return
	}
	x := float64(col-v.area.Min.X) + 0.5
	y := float64(row-v.area.Min.Y)*2 + 1

	res := v.scene.PickScreen(v.camera, x, y, v.fb.Width, v.fb.Height)
	if !res.Hit {
		return
	}
	v.selection.Pick(v.adapter.Mesh(res.Mesh))

	if sel := v.selection.Selected(); sel != nil {
		v.status = "selected " + sel.Name()
	} else {
		v.status = "selection cleared"
	}
	v.log.Debug("pick",
		zap.String("mesh", res.Mesh.Name()),
		zap.Float64("distance", res.Distance))
}

func (v *Viewer) do(a action) {
	sel := v.selection.Selected()
	if sel == nil {
		v.status = "nothing selected"
		return
	}
	name := sel.Name()

	switch a {
	case actionDelete:
		v.selection.DeleteSelected()
		v.status = "deleted " + name
	case actionScale:
		v.selection.ScaleSelected(v.opts.ScaleStep)
		v.status = fmt.Sprintf("scaled %s by %.2f", name, v.opts.ScaleStep)
	}
}

func (v *Viewer) screenshot() {
	path := v.opts.ScreenshotPath
	if err := v.fb.SavePNG(path); err != nil {
		v.log.Error("screenshot failed", zap.String("path", path), zap.Error(err))
		v.status = "screenshot failed"
		return
	}
	v.log.Info("screenshot saved", zap.String("path", path))
	v.status = "saved " + path
}
