package ui

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/nicky-ayoub/cardstack/internal/gesture"
)

// InputState holds the polled state of inputs for a single frame.
// This separates input polling from input handling logic.
type InputState struct {
	Quit             bool
	ToggleFullscreen bool
	Back             bool // return the camera to the overview
	Refresh          bool // refetch the collection

	// Touched is set when any touch was seen this frame.
	Touched bool
	// Events are the gesture events of the frame in delivery order.
	Events []gesture.Event
}

// touchPoint is one polled touch.
type touchPoint struct {
	id   ebiten.TouchID
	x, y int
}

// rawInput is everything the poller reads from ebiten in one frame.
type rawInput struct {
	cursorX, cursorY int
	width, height    int
	leftPressed      bool
	leftReleased     bool
	wheelY           float64
	touches          []touchPoint
}

// Poller turns ebiten's polled mouse, wheel and touch state into gesture events.
// Only the first touch of a multi-touch gesture is tracked.
type Poller struct {
	lastX, lastY int
	inside       bool
	seenCursor   bool

	touching       bool
	touchID        ebiten.TouchID
	touchX, touchY int

	touchIDs []ebiten.TouchID
}

// Poll gathers the input of the current frame for a width x height screen.
func (p *Poller) Poll(now time.Time, width, height int) InputState {
	mx, my := ebiten.CursorPosition()
	_, wheelY := ebiten.Wheel()

	p.touchIDs = ebiten.AppendTouchIDs(p.touchIDs[:0])
	touches := make([]touchPoint, 0, len(p.touchIDs))
	for _, id := range p.touchIDs {
		x, y := ebiten.TouchPosition(id)
		touches = append(touches, touchPoint{id: id, x: x, y: y})
	}

	st := InputState{
		Quit:             inpututil.IsKeyJustPressed(ebiten.KeyQ),
		ToggleFullscreen: inpututil.IsKeyJustPressed(ebiten.KeyF11),
		Back:             inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight),
		Refresh:          inpututil.IsKeyJustPressed(ebiten.KeyR),
		Touched:          len(touches) > 0,
	}
	st.Events = p.translate(now, rawInput{
		cursorX:      mx,
		cursorY:      my,
		width:        width,
		height:       height,
		leftPressed:  inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft),
		leftReleased: inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft),
		wheelY:       wheelY,
		touches:      touches,
	})
	return st
}

// translate converts one frame of raw input into events. Moves come before
// presses and releases so that a press reports where the pointer is.
func (p *Poller) translate(now time.Time, in rawInput) []gesture.Event {
	var events []gesture.Event
	emit := func(kind gesture.Kind, x, y int) {
		events = append(events, gesture.Event{Kind: kind, X: float64(x), Y: float64(y), Time: now})
	}

	if in.wheelY != 0 {
		// ebiten reports positive Y for scrolling up; gesture events use DOM sign.
		events = append(events, gesture.Event{Kind: gesture.Wheel, DeltaY: -in.wheelY, X: float64(in.cursorX), Y: float64(in.cursorY), Time: now})
	}

	if p.touching || len(in.touches) > 0 {
		p.translateTouch(in.touches, emit)
		return events
	}

	inside := in.cursorX >= 0 && in.cursorY >= 0 && in.cursorX < in.width && in.cursorY < in.height
	moved := in.cursorX != p.lastX || in.cursorY != p.lastY
	if inside && moved && p.seenCursor {
		emit(gesture.PointerMove, in.cursorX, in.cursorY)
	}
	if in.leftPressed && inside {
		emit(gesture.PointerDown, in.cursorX, in.cursorY)
	}
	if in.leftReleased {
		emit(gesture.PointerUp, in.cursorX, in.cursorY)
	}
	if p.inside && !inside {
		emit(gesture.PointerLeave, in.cursorX, in.cursorY)
	}

	p.lastX, p.lastY = in.cursorX, in.cursorY
	p.inside = inside
	p.seenCursor = true
	return events
}

func (p *Poller) translateTouch(touches []touchPoint, emit func(gesture.Kind, int, int)) {
	if !p.touching {
		t := touches[0]
		p.touching = true
		p.touchID = t.id
		p.touchX, p.touchY = t.x, t.y
		emit(gesture.TouchStart, t.x, t.y)
		return
	}
	for _, t := range touches {
		if t.id != p.touchID {
			continue
		}
		if t.x != p.touchX || t.y != p.touchY {
			p.touchX, p.touchY = t.x, t.y
			emit(gesture.TouchMove, t.x, t.y)
		}
		return
	}
	p.touching = false
	emit(gesture.TouchEnd, p.touchX, p.touchY)
}
