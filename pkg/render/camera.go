package render

import (
	"math"

	"github.com/taigrr/meshpick/pkg/math3d"
)

// Orbit limits.
const (
	minBeta         = 0.01
	maxBeta         = math.Pi - 0.01
	minOrbitRadius  = 0.05
	defaultFarPlane = 1000
)

// OrbitCamera circles a target point. Alpha is the longitudinal angle and
// Beta the latitudinal angle measured from +Y, both in radians.
type OrbitCamera struct {
	target math3d.Vec3
	alpha  float64
	beta   float64
	radius float64

	// LowerRadiusLimit bounds zooming in; zero means minOrbitRadius.
	LowerRadiusLimit float64

	// Projection parameters
	FOV         float64 // Vertical field of view in radians
	AspectRatio float64 // Width / Height
	Near        float64 // Near clipping plane
	Far         float64 // Far clipping plane

	// Cached matrices (computed on demand)
	viewMatrix     math3d.Mat4
	projMatrix     math3d.Mat4
	viewProjMatrix math3d.Mat4
	viewDirty      bool
	projDirty      bool
	vpDirty        bool
}

// NewOrbitCamera creates a camera looking at target from the given angles
// and distance.
func NewOrbitCamera(alpha, beta, radius float64, target math3d.Vec3) *OrbitCamera {
	c := &OrbitCamera{
		target:      target,
		alpha:       alpha,
		FOV:         math.Pi / 3, // 60 degrees
		AspectRatio: 16.0 / 9.0,
		Near:        0.1,
		Far:         defaultFarPlane,
		viewDirty:   true,
		projDirty:   true,
	}
	c.SetBeta(beta)
	c.SetRadius(radius)
	return c
}

// Target returns the point the camera orbits.
func (c *OrbitCamera) Target() math3d.Vec3 { return c.target }

// SetTarget moves the orbit center.
func (c *OrbitCamera) SetTarget(t math3d.Vec3) {
	c.target = t
	c.viewDirty = true
}

// Radius returns the distance to the target.
func (c *OrbitCamera) Radius() float64 { return c.radius }

// SetRadius sets the distance to the target, honoring LowerRadiusLimit.
func (c *OrbitCamera) SetRadius(r float64) {
	limit := c.LowerRadiusLimit
	if limit <= 0 {
		limit = minOrbitRadius
	}
	c.radius = math.Max(r, limit)
	c.viewDirty = true
}

// Alpha returns the longitudinal angle.
func (c *OrbitCamera) Alpha() float64 { return c.alpha }

// SetAlpha sets the longitudinal angle.
func (c *OrbitCamera) SetAlpha(a float64) {
	c.alpha = a
	c.viewDirty = true
}

// Beta returns the latitudinal angle.
func (c *OrbitCamera) Beta() float64 { return c.beta }

// SetBeta sets the latitudinal angle, clamped away from the poles.
func (c *OrbitCamera) SetBeta(b float64) {
	c.beta = math.Max(minBeta, math.Min(maxBeta, b))
	c.viewDirty = true
}

// Orbit rotates the camera around the target by the given deltas.
func (c *OrbitCamera) Orbit(dAlpha, dBeta float64) {
	c.SetAlpha(c.alpha + dAlpha)
	c.SetBeta(c.beta + dBeta)
}

// SetAspectRatio sets the aspect ratio.
func (c *OrbitCamera) SetAspectRatio(aspect float64) {
	c.AspectRatio = aspect
	c.projDirty = true
}

// SetFOV sets the field of view (in radians).
func (c *OrbitCamera) SetFOV(fov float64) {
	c.FOV = fov
	c.projDirty = true
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() math3d.Vec3 {
	sinB := math.Sin(c.beta)
	offset := math3d.V3(
		c.radius*math.Cos(c.alpha)*sinB,
		c.radius*math.Cos(c.beta),
		c.radius*math.Sin(c.alpha)*sinB,
	)
	return c.target.Add(offset)
}

// ViewMatrix returns the view matrix.
func (c *OrbitCamera) ViewMatrix() math3d.Mat4 {
	if c.viewDirty {
		c.viewMatrix = math3d.LookAt(c.Position(), c.target, math3d.Up())
		c.viewDirty = false
		c.vpDirty = true
	}
	return c.viewMatrix
}

// ProjectionMatrix returns the projection matrix.
func (c *OrbitCamera) ProjectionMatrix() math3d.Mat4 {
	if c.projDirty {
		c.projMatrix = math3d.Perspective(c.FOV, c.AspectRatio, c.Near, c.Far)
		c.projDirty = false
		c.vpDirty = true
	}
	return c.projMatrix
}

// ViewProjectionMatrix returns the combined view-projection matrix.
func (c *OrbitCamera) ViewProjectionMatrix() math3d.Mat4 {
	view := c.ViewMatrix()
	proj := c.ProjectionMatrix()
	if c.vpDirty {
		c.viewProjMatrix = proj.Mul(view)
		c.vpDirty = false
	}
	return c.viewProjMatrix
}

// WorldToScreen transforms a world point to screen coordinates.
// Returns (screenX, screenY, depth, visible).
func (c *OrbitCamera) WorldToScreen(worldPos math3d.Vec3, screenWidth, screenHeight int) (x, y, depth float64, visible bool) {
	clipPos := c.ViewProjectionMatrix().MulVec4(math3d.Point(worldPos))

	// Check if behind camera
	if clipPos.W <= 0 {
		return 0, 0, 0, false
	}

	ndc := clipPos.PerspectiveDivide()
	if ndc.X < -1 || ndc.X > 1 || ndc.Y < -1 || ndc.Y > 1 || ndc.Z < -1 || ndc.Z > 1 {
		return 0, 0, 0, false
	}

	x = (ndc.X + 1) * 0.5 * float64(screenWidth)
	y = (1 - ndc.Y) * 0.5 * float64(screenHeight) // Y is flipped
	return x, y, ndc.Z, true
}

// ScreenRay returns the world-space ray through screen point (x, y). ok is
// false when the camera matrices are degenerate.
func (c *OrbitCamera) ScreenRay(x, y float64, screenWidth, screenHeight int) (ray math3d.Ray, ok bool) {
	ndcX := 2*x/float64(screenWidth) - 1
	ndcY := 1 - 2*y/float64(screenHeight)
	return math3d.Unproject(ndcX, ndcY, c.ViewProjectionMatrix())
}

// Frustum returns the current view frustum.
func (c *OrbitCamera) Frustum() Frustum {
	return NewFrustumFromMatrix(c.ViewProjectionMatrix())
}
