package viewer

import (
	"github.com/charmbracelet/harmonica"

	"github.com/taigrr/meshpick/pkg/render"
)

// axis is one orbit angle whose velocity decays to zero on a spring.
type axis struct {
	velocity  float64
	spring    harmonica.Spring
	springVel float64
}

func newAxis(fps int) axis {
	// Critically damped: the orbit glides to a stop without swinging back.
	return axis{spring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0)}
}

// step returns this frame's angle delta and decays the velocity.
func (a *axis) step() float64 {
	d := a.velocity
	a.velocity, a.springVel = a.spring.Update(a.velocity, a.springVel, 0)
	return d
}

// orbitMotion eases an orbit camera: drag impulses keep spinning for a
// moment after release, and zoom steps glide to the new radius.
type orbitMotion struct {
	alpha, beta axis
	fps         int

	radius       float64
	radiusVel    float64
	targetRadius float64
	zoomSpring   harmonica.Spring
}

func newOrbitMotion(fps int, radius float64) *orbitMotion {
	return &orbitMotion{
		alpha:        newAxis(fps),
		beta:         newAxis(fps),
		fps:          fps,
		radius:       radius,
		targetRadius: radius,
		zoomSpring:   harmonica.NewSpring(harmonica.FPS(fps), 6.0, 1.0),
	}
}

// impulse adds angular velocity in radians per frame.
func (o *orbitMotion) impulse(dAlpha, dBeta float64) {
	o.alpha.velocity += dAlpha
	o.beta.velocity += dBeta
}

// zoom multiplies the target radius, never going below floor.
func (o *orbitMotion) zoom(factor, floor float64) {
	o.targetRadius = max(floor, o.targetRadius*factor)
}

// jump sets the radius without easing.
func (o *orbitMotion) jump(radius float64) {
	o.radius, o.targetRadius, o.radiusVel = radius, radius, 0
}

// stop kills any remaining spin.
func (o *orbitMotion) stop() {
	o.alpha = newAxis(o.fps)
	o.beta = newAxis(o.fps)
}

// apply advances one frame and writes the result to cam.
func (o *orbitMotion) apply(cam *render.OrbitCamera) {
	cam.Orbit(o.alpha.step(), o.beta.step())
	o.radius, o.radiusVel = o.zoomSpring.Update(o.radius, o.radiusVel, o.targetRadius)
	cam.SetRadius(o.radius)
}
