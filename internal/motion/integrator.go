// Package motion owns the scroll position of the card stack and the momentum
// that moves it between input events.
package motion

import "math"

// Device selects the input class the integrator is tuned for.
type Device int

const (
	Pointer Device = iota
	Touch
)

func (d Device) String() string {
	if d == Touch {
		return "touch"
	}
	return "pointer"
}

// DeltaKind tags how a Delta is applied.
type DeltaKind int

const (
	// Direct moves the position and cancels momentum (drag tracking).
	Direct DeltaKind = iota
	// Impulse adds to the velocity (wheel ticks).
	Impulse
)

// Delta is a single scroll input: either a direct position change or a velocity impulse.
type Delta struct {
	Kind   DeltaKind
	Amount float64
}

// DirectDelta returns a Delta that moves the position by amount.
func DirectDelta(amount float64) Delta { return Delta{Kind: Direct, Amount: amount} }

// ImpulseDelta returns a Delta that adds amount (scaled by ImpulseGain) to the velocity.
func ImpulseDelta(amount float64) Delta { return Delta{Kind: Impulse, Amount: amount} }

// Params holds the tuning constants of the integrator.
type Params struct {
	Spacing            float64 // world units between adjacent slots
	Smoothing          float64 // per-frame lerp factor of the display offset
	ImpulseGain        float64
	MaxImpulseVelocity float64
	MaxReleaseVelocity float64
	RestThreshold      float64
	PointerFriction    float64
	TouchFriction      float64
	// FrameRateIndependent converts per-frame factors to exponential smoothing
	// normalized to a 60fps baseline. Off by default: factors apply once per frame.
	FrameRateIndependent bool
}

// DefaultParams returns the stock tuning.
func DefaultParams() Params {
	return Params{
		Spacing:            2.5,
		Smoothing:          0.1,
		ImpulseGain:        0.3,
		MaxImpulseVelocity: 2,
		MaxReleaseVelocity: 3,
		RestThreshold:      0.001,
		PointerFriction:    0.7,
		TouchFriction:      0.2,
	}
}

// Integrator is the scroll state: a continuous position, a velocity, and a
// smoothed display offset that trails the position.
type Integrator struct {
	Position float64
	Velocity float64
	Dragging bool

	offset float64
	device Device
	params Params
}

// NewIntegrator returns an integrator at rest at position 0.
func NewIntegrator(p Params) *Integrator {
	return &Integrator{params: p}
}

// Params returns the tuning in use.
func (in *Integrator) Params() Params { return in.params }

// SetDevice switches friction and snapping to the given input class.
func (in *Integrator) SetDevice(d Device) { in.device = d }

// Device returns the current input class.
func (in *Integrator) Device() Device { return in.device }

// Offset is the smoothed display offset along the stack axis.
func (in *Integrator) Offset() float64 { return in.offset }

// Apply consumes one scroll input.
func (in *Integrator) Apply(d Delta) {
	switch d.Kind {
	case Impulse:
		in.Velocity += d.Amount * in.params.ImpulseGain
		in.Velocity = Clamp(in.Velocity, -in.params.MaxImpulseVelocity, in.params.MaxImpulseVelocity)
	case Direct:
		in.Position += d.Amount
		in.Velocity = 0
	}
}

// BeginDrag hands the position over to direct manipulation.
func (in *Integrator) BeginDrag() {
	in.Dragging = true
	in.Velocity = 0
}

// Release ends direct manipulation and seeds momentum with v.
func (in *Integrator) Release(v float64) {
	in.Dragging = false
	in.Velocity = Clamp(v, -in.params.MaxReleaseVelocity, in.params.MaxReleaseVelocity)
}

// JumpTo moves the position to a slot and stops. The display offset keeps
// animating toward the new position.
func (in *Integrator) JumpTo(slot int) {
	in.Position = float64(slot)
	in.Velocity = 0
}

// Advance runs one frame of dt seconds.
func (in *Integrator) Advance(dt float64) {
	target := -in.Position * in.params.Spacing
	in.offset = Lerp(in.offset, target, SmoothFactor(in.params.Smoothing, dt, in.params.FrameRateIndependent))

	if in.Dragging || math.Abs(in.Velocity) <= in.params.RestThreshold {
		return
	}

	next := in.Position + in.Velocity*dt*60
	friction := in.params.PointerFriction
	if in.device == Touch {
		next = Round(next)
		friction = in.params.TouchFriction
	}
	in.Position = next
	in.Velocity *= friction

	if math.Abs(in.Velocity) < in.params.RestThreshold {
		in.Velocity = 0
	}
}
