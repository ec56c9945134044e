package camera

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/nicky-ayoub/cardstack/internal/motion"
)

// State of a Transition.
type State int

const (
	Idle State = iota
	Animating
)

func (s State) String() string {
	if s == Animating {
		return "animating"
	}
	return "idle"
}

// TransitionParams tunes the camera flight.
type TransitionParams struct {
	Factor               float64 // per-frame lerp fraction
	Epsilon              float64 // distance at which the camera snaps to the target
	FrameRateIndependent bool
}

// DefaultTransitionParams returns the stock flight.
func DefaultTransitionParams() TransitionParams {
	return TransitionParams{Factor: 0.07, Epsilon: 0.003}
}

// Transition interpolates the camera pose toward a target and fires a pending
// navigation once the target is reached.
type Transition struct {
	params   TransitionParams
	navigate func(destination string)

	state       State
	current     Pose
	target      Pose
	destination string
}

// NewTransition returns an idle transition resting at start. navigate is
// called with the destination when an animation that carries one completes.
func NewTransition(start Pose, p TransitionParams, navigate func(destination string)) *Transition {
	return &Transition{params: p, navigate: navigate, current: start, target: start}
}

// State returns the current state.
func (t *Transition) State() State { return t.state }

// Animating reports whether the camera is in flight.
func (t *Transition) Animating() bool { return t.state == Animating }

// Pose is the interpolated camera pose.
func (t *Transition) Pose() Pose { return t.current }

// Target is the pose the camera is flying to, or rests at.
func (t *Transition) Target() Pose { return t.target }

// Destination is the navigation pending on the current flight.
func (t *Transition) Destination() string { return t.destination }

// Start begins a flight from the current pose to target. An empty destination
// navigates nothing on arrival. Start reports false and does nothing while a
// flight is already running.
func (t *Transition) Start(target Pose, destination string) bool {
	if t.state == Animating {
		return false
	}
	t.state = Animating
	t.target = target
	t.destination = destination
	return true
}

// Redirect turns the flight, or the resting camera, toward target and drops
// any pending navigation.
func (t *Transition) Redirect(target Pose) {
	t.state = Animating
	t.target = target
	t.destination = ""
}

// Step advances the flight by one frame of dt seconds and reports whether it
// completed during this step.
func (t *Transition) Step(dt float64) bool {
	if t.state != Animating {
		return false
	}
	f := float32(motion.SmoothFactor(t.params.Factor, dt, t.params.FrameRateIndependent))
	t.current.Position = lerpVec(t.current.Position, t.target.Position, f)
	t.current.Target = lerpVec(t.current.Target, t.target.Target, f)

	if float64(t.current.Position.Sub(t.target.Position).Len()) >= t.params.Epsilon {
		return false
	}
	t.current = t.target
	t.state = Idle
	dest := t.destination
	t.destination = ""
	if dest != "" && t.navigate != nil {
		t.navigate(dest)
	}
	return true
}

func lerpVec(a, b mgl32.Vec3, f float32) mgl32.Vec3 {
	return a.Add(b.Sub(a).Mul(f))
}
