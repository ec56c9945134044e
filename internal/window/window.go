// Package window maps an unbounded scroll position onto the finite, wrapped set
// of cards that are alive around the center of the stack.
package window

import (
	"math"

	"github.com/nicky-ayoub/cardstack/internal/motion"
	"github.com/nicky-ayoub/cardstack/internal/service"
)

// Params sizes the window.
type Params struct {
	RenderDistance        int     // half-width in slots
	Spacing               float64 // world units between slots
	ImmediateLoadDistance int     // slots around the center that load full resolution
}

// DefaultParams returns a 21-card window.
func DefaultParams() Params {
	return Params{RenderDistance: 10, Spacing: 2.5, ImmediateLoadDistance: 3}
}

// Size is the number of cards in every window.
func (p Params) Size() int { return 2*p.RenderDistance + 1 }

// Hover is the optionally hovered slot.
type Hover struct {
	Slot int
	OK   bool
}

// NoHover is the unset hover.
var NoHover = Hover{}

// HoverAt returns a hover on slot.
func HoverAt(slot int) Hover { return Hover{Slot: slot, OK: true} }

// Card describes one renderable slot. Slot identifies the position in the
// infinite stack; ImageIndex is the wrapped index into the collection, so two
// slots may share an image.
type Card struct {
	Slot        int
	ImageIndex  int
	Z           float64
	Active      bool
	Hovered     bool
	LoadFullRes bool
	Image       service.ImageRecord
}

// Wrap maps any integer onto [0, n). n must be positive.
func Wrap(i, n int) int {
	return ((i % n) + n) % n
}

// MaxCenter bounds the center slot so that slot arithmetic around it cannot
// overflow an int on any platform.
const MaxCenter = 1 << 30

// Center is the slot nearest to position, clamped to [-MaxCenter, MaxCenter].
// NaN maps to slot 0.
func Center(position float64) int {
	switch {
	case math.IsNaN(position):
		return 0
	case position >= MaxCenter:
		return MaxCenter
	case position <= -MaxCenter:
		return -MaxCenter
	}
	return motion.RoundInt(position)
}

// Generate returns the window around position. It returns nil for an empty collection.
func Generate(position float64, hover Hover, images []service.ImageRecord, p Params) []Card {
	n := len(images)
	if n == 0 {
		return nil
	}
	center := Center(position)
	cards := make([]Card, 0, p.Size())
	for i := center - p.RenderDistance; i <= center+p.RenderDistance; i++ {
		idx := Wrap(i, n)
		active := i == center
		if hover.OK {
			active = i == hover.Slot
		}
		cards = append(cards, Card{
			Slot:        i,
			ImageIndex:  idx,
			Z:           float64(i) * p.Spacing,
			Active:      active,
			Hovered:     hover.OK && i == hover.Slot,
			LoadFullRes: abs(i-center) <= p.ImmediateLoadDistance,
			Image:       images[idx],
		})
	}
	return cards
}

// ActiveCard returns the active card of a window, if any.
func ActiveCard(cards []Card) (Card, bool) {
	for _, c := range cards {
		if c.Active {
			return c, true
		}
	}
	return Card{}, false
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Generator memoizes Generate on the rounded position and the hover.
type Generator struct {
	params Params
	images []service.ImageRecord

	cards  []Card
	center int
	hover  Hover
	valid  bool
}

// NewGenerator returns a generator over images.
func NewGenerator(images []service.ImageRecord, p Params) *Generator {
	return &Generator{images: images, params: p}
}

// Params returns the window sizing.
func (g *Generator) Params() Params { return g.params }

// Images returns the collection the window is cut from.
func (g *Generator) Images() []service.ImageRecord { return g.images }

// SetImages swaps the collection and forces the next Cards call to regenerate.
func (g *Generator) SetImages(images []service.ImageRecord) {
	g.images = images
	g.valid = false
}

// Cards returns the window for position and hover, and whether it differs from
// the previous call. The returned slice must not be modified.
func (g *Generator) Cards(position float64, hover Hover) ([]Card, bool) {
	center := Center(position)
	if g.valid && center == g.center && hover == g.hover {
		return g.cards, false
	}
	g.cards = Generate(position, hover, g.images, g.params)
	g.center = center
	g.hover = hover
	g.valid = true
	return g.cards, true
}

// Current returns the last generated window without recomputing.
func (g *Generator) Current() []Card { return g.cards }
