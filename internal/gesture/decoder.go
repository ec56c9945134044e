// Package gesture turns raw pointer, touch and wheel events into scroll input.
package gesture

import (
	"math"
	"time"

	"github.com/nicky-ayoub/cardstack/internal/motion"
)

// Kind identifies an input event.
type Kind int

const (
	PointerDown Kind = iota
	PointerMove
	PointerUp
	PointerLeave
	TouchStart
	TouchMove
	TouchEnd
	Wheel
)

var kindNames = [...]string{"pointerdown", "pointermove", "pointerup", "pointerleave", "touchstart", "touchmove", "touchend", "wheel"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsTouch reports whether the event came from a touch stream.
func (k Kind) IsTouch() bool {
	return k == TouchStart || k == TouchMove || k == TouchEnd
}

// Event is one input sample in client (pixel) coordinates.
type Event struct {
	Kind   Kind
	X, Y   float64
	DeltaY float64 // wheel only; positive scrolls down
	Time   time.Time
}

// State of the drag state machine.
type State int

const (
	Idle State = iota
	Dragging
)

// Target receives the decoded scroll input. *motion.Integrator implements it.
type Target interface {
	Apply(motion.Delta)
	BeginDrag()
	Release(velocity float64)
}

// Params holds the decoder constants.
type Params struct {
	NoiseFloor   float64 // per-sample pixels ignored while dragging
	DragScale    float64 // pixels to slots
	VelocityUnit float64 // pixels/ms to a 60fps-normalized unit
	ReleaseScale float64
	WheelStep    float64
	TapSlop      float64 // max displacement in pixels for a release to count as a tap
}

// DefaultParams returns the stock constants.
func DefaultParams() Params {
	return Params{
		NoiseFloor:   2,
		DragScale:    0.01,
		VelocityUnit: 16,
		ReleaseScale: 0.1,
		WheelStep:    0.5,
		TapSlop:      6,
	}
}

// Result reports what an event did beyond moving the scroll state.
type Result struct {
	// Tap is set when a press was released without dragging past the slop.
	Tap  bool
	X, Y float64
}

// Decoder is the idle/dragging state machine. It is not safe for concurrent use;
// events are delivered from the render loop.
type Decoder struct {
	target Target
	params Params

	state          State
	startX, startY float64
	lastY          float64
	lastTime       time.Time
	touchVelocity  float64
	maxTravel      float64
}

// NewDecoder returns an idle decoder feeding target.
func NewDecoder(target Target, p Params) *Decoder {
	return &Decoder{target: target, params: p}
}

// State returns the current state.
func (d *Decoder) State() State { return d.state }

// Dragging reports whether a press is in progress.
func (d *Decoder) Dragging() bool { return d.state == Dragging }

// TouchVelocity is the last sampled drag velocity.
func (d *Decoder) TouchVelocity() float64 { return d.touchVelocity }

// Handle consumes one event.
func (d *Decoder) Handle(ev Event) Result {
	switch ev.Kind {
	case Wheel:
		d.wheel(ev)
	case PointerDown, TouchStart:
		d.start(ev)
	case PointerMove, TouchMove:
		d.move(ev)
	case PointerUp, TouchEnd:
		return d.end(ev, true)
	case PointerLeave:
		return d.end(ev, false)
	}
	return Result{}
}

func (d *Decoder) wheel(ev Event) {
	delta := d.params.WheelStep
	if ev.DeltaY > 0 {
		delta = -d.params.WheelStep
	}
	delta = motion.Clamp(delta, -d.params.WheelStep, d.params.WheelStep)
	d.target.Apply(motion.ImpulseDelta(delta))
}

func (d *Decoder) start(ev Event) {
	if d.state == Dragging {
		return
	}
	d.state = Dragging
	d.startX, d.startY = ev.X, ev.Y
	d.lastY = ev.Y
	d.lastTime = ev.Time
	d.touchVelocity = 0
	d.maxTravel = 0
	d.target.BeginDrag()
}

func (d *Decoder) move(ev Event) {
	if d.state != Dragging {
		return
	}
	dt := float64(ev.Time.Sub(d.lastTime)) / float64(time.Millisecond)
	dy := ev.Y - d.lastY
	if dt > 0 {
		d.touchVelocity = (-dy / dt) * d.params.VelocityUnit
	}

	totalX := ev.X - d.startX
	totalY := ev.Y - d.startY
	d.maxTravel = math.Max(d.maxTravel, math.Hypot(totalX, totalY))

	if math.Abs(totalY) > math.Abs(totalX) && math.Abs(dy) > d.params.NoiseFloor {
		d.target.Apply(motion.DirectDelta(-dy * d.params.DragScale))
	}

	d.lastY = ev.Y
	d.lastTime = ev.Time
}

func (d *Decoder) end(ev Event, canTap bool) Result {
	if d.state != Dragging {
		return Result{}
	}
	d.state = Idle
	d.target.Release(d.touchVelocity * d.params.ReleaseScale)

	travel := math.Max(d.maxTravel, math.Hypot(ev.X-d.startX, ev.Y-d.startY))
	if !canTap || travel > d.params.TapSlop {
		return Result{}
	}
	return Result{Tap: true, X: ev.X, Y: ev.Y}
}
