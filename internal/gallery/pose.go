package gallery

import (
	"math"

	"github.com/charmbracelet/harmonica"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/nicky-ayoub/cardstack/internal/hittest"
	"github.com/nicky-ayoub/cardstack/internal/window"
)

const (
	maxCardDimension = 3
	activeScale      = 1.2
	activeLift       = 1.25
	settleTolerance  = 1e-3
)

// CardSize fits a card of the given aspect ratio into a square of
// maxCardDimension.
func CardSize(aspect float64) (width, height float64) {
	if aspect <= 0 {
		aspect = 1
	}
	boxW, boxH := 2.0, 2/aspect
	if aspect > 1 {
		boxW, boxH = 2*aspect, 2
	}
	s := math.Min(maxCardDimension/boxW, maxCardDimension/boxH)
	return boxW * s, boxH * s
}

// CardPose is the animated placement of one mounted card. Cards lie in the
// XY plane at x=0 facing +Z.
type CardPose struct {
	Card          window.Card
	Width, Height float64 // unscaled size
	Scale         float64
	Lift          float64
	Z             float64

	scaleVel, liftVel float64
}

func newCardPose(c window.Card, offset float64) *CardPose {
	w, h := CardSize(c.Image.AspectRatio())
	return &CardPose{
		Card:   c,
		Width:  w,
		Height: h,
		Scale:  activeScale,
		Z:      c.Z + offset,
	}
}

// Slot identifies the card in the stack.
func (p *CardPose) Slot() int { return p.Card.Slot }

// Quad is the card's current face.
func (p *CardPose) Quad() hittest.Quad {
	return hittest.Quad{
		Center: mgl32.Vec3{0, float32(p.Lift), float32(p.Z)},
		Right:  mgl32.Vec3{1, 0, 0},
		Up:     mgl32.Vec3{0, 1, 0},
		HalfW:  float32(p.Width * p.Scale / 2),
		HalfH:  float32(p.Height * p.Scale / 2),
	}
}

func (p *CardPose) targets() (scale, lift float64) {
	if p.Card.Active {
		return activeScale, activeLift
	}
	return 1, 0
}

// Settled reports whether scale and lift have reached their targets.
func (p *CardPose) Settled() bool {
	scale, lift := p.targets()
	return math.Abs(p.Scale-scale) < settleTolerance && math.Abs(p.Lift-lift) < settleTolerance &&
		math.Abs(p.scaleVel) < settleTolerance && math.Abs(p.liftVel) < settleTolerance
}

func (p *CardPose) step(spring harmonica.Spring, offset float64) {
	scale, lift := p.targets()
	p.Scale, p.scaleVel = spring.Update(p.Scale, p.scaleVel, scale)
	p.Lift, p.liftVel = spring.Update(p.Lift, p.liftVel, lift)
	p.Z = p.Card.Z + offset
}
