// Package gallery composes the interactive core of the card stack: scroll
// state, gesture decoding, the card window, hit-testing and the camera.
// A Scene is driven from a single render loop and is not safe for concurrent use.
package gallery

import (
	"errors"
	"sort"
	"time"

	"github.com/charmbracelet/harmonica"

	"github.com/nicky-ayoub/cardstack/internal/camera"
	"github.com/nicky-ayoub/cardstack/internal/gesture"
	"github.com/nicky-ayoub/cardstack/internal/hittest"
	"github.com/nicky-ayoub/cardstack/internal/motion"
	"github.com/nicky-ayoub/cardstack/internal/schedule"
	"github.com/nicky-ayoub/cardstack/internal/service"
	"github.com/nicky-ayoub/cardstack/internal/window"
)

// ErrNoImages is returned when a scene would be mounted over an empty collection.
var ErrNoImages = errors.New("gallery: no images")

// Navigator opens the page of a card's owner. It is fire-and-forget.
type Navigator interface {
	Navigate(slug string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(slug string)

// Navigate calls f(slug).
func (f NavigatorFunc) Navigate(slug string) { f(slug) }

// Options configures a Scene.
type Options struct {
	Motion     motion.Params
	Gesture    gesture.Params
	Window     window.Params
	Transition camera.TransitionParams
	Device     motion.Device

	HoverSetDelay   time.Duration
	HoverClearDelay time.Duration
	MoveThrottle    time.Duration

	SpringFrequency float64
	SpringDamping   float64

	Width, Height int
	Clock         schedule.Clock
}

// DefaultOptions returns the stock scene for an 800x600 viewport.
func DefaultOptions() Options {
	return Options{
		Motion:          motion.DefaultParams(),
		Gesture:         gesture.DefaultParams(),
		Window:          window.DefaultParams(),
		Transition:      camera.DefaultTransitionParams(),
		HoverSetDelay:   7 * time.Millisecond,
		HoverClearDelay: 300 * time.Millisecond,
		MoveThrottle:    16 * time.Millisecond,
		SpringFrequency: 8,
		SpringDamping:   1,
		Width:           800,
		Height:          600,
		Clock:           schedule.SystemClock{},
	}
}

// Scene is the mounted gallery.
type Scene struct {
	opts      Options
	clock     schedule.Clock
	navigator Navigator

	integrator *motion.Integrator
	decoder    *gesture.Decoder
	generator  *window.Generator
	registry   *hittest.Registry
	tester     *hittest.Tester
	camera     *camera.Camera
	transition *camera.Transition
	hover      *hoverTracker
	throttle   *schedule.Throttle
	viewport   hittest.Viewport

	focused  camera.Pose
	poses    map[int]*CardPose
	spring   harmonica.Spring
	springDT float64

	closed bool
}

// New mounts a scene over images. It returns ErrNoImages for an empty collection.
func New(images []service.ImageRecord, nav Navigator, opts Options) (*Scene, error) {
	if len(images) == 0 {
		return nil, ErrNoImages
	}
	if opts.Clock == nil {
		opts.Clock = schedule.SystemClock{}
	}
	s := &Scene{
		opts:      opts,
		clock:     opts.Clock,
		navigator: nav,
		generator: window.NewGenerator(images, opts.Window),
		registry:  hittest.NewRegistry(),
		camera:    camera.NewCamera(camera.OverviewPose(), opts.Width, opts.Height),
		hover:     newHoverTracker(opts.HoverSetDelay, opts.HoverClearDelay),
		throttle:  schedule.NewThrottle(opts.MoveThrottle),
		viewport:  hittest.Viewport{Width: float64(opts.Width), Height: float64(opts.Height)},
		focused:   camera.FocusedPoseAt(focusDistance(opts.Window.Spacing)),
		poses:     make(map[int]*CardPose),
	}
	s.integrator = motion.NewIntegrator(opts.Motion)
	s.integrator.SetDevice(opts.Device)
	s.decoder = gesture.NewDecoder(s.integrator, opts.Gesture)
	s.tester = hittest.NewTester(s.camera, s.registry)
	s.transition = camera.NewTransition(camera.OverviewPose(), opts.Transition, s.navigate)
	s.syncWindow()
	return s, nil
}

// focusDistance places the focused camera between the active card and the
// next slot toward the viewer.
func focusDistance(spacing float64) float32 {
	if spacing <= 0 {
		return camera.DefaultFocusDistance
	}
	return float32(spacing * 3 / 5)
}

func (s *Scene) navigate(slug string) {
	if s.navigator != nil && slug != "" {
		s.navigator.Navigate(slug)
	}
}

// SetImages swaps the collection. The scroll position is kept.
func (s *Scene) SetImages(images []service.ImageRecord) error {
	if len(images) == 0 {
		return ErrNoImages
	}
	s.generator.SetImages(images)
	s.syncWindow()
	return nil
}

// SetDevice switches between pointer and touch scrolling.
func (s *Scene) SetDevice(d motion.Device) { s.integrator.SetDevice(d) }

// Resize updates the viewport in pixels.
func (s *Scene) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	s.camera.SetViewport(width, height)
	s.viewport.Width, s.viewport.Height = float64(width), float64(height)
}

// HandleEvent feeds one input event. Events after Close are ignored.
func (s *Scene) HandleEvent(ev gesture.Event) {
	if s.closed {
		return
	}
	if ev.Time.IsZero() {
		ev.Time = s.clock.Now()
	}
	if s.hover.poll(ev.Time) {
		s.syncWindow()
	}

	pos, vel := s.integrator.Position, s.integrator.Velocity
	res := s.decoder.Handle(ev)
	scrolled := pos != s.integrator.Position || vel != s.integrator.Velocity
	if scrolled && (ev.Kind == gesture.Wheel || ev.Kind == gesture.PointerMove || ev.Kind == gesture.TouchMove) {
		s.Back()
	}
	s.syncWindow()

	switch {
	case res.Tap:
		s.click(res.X, res.Y)
	case ev.Kind == gesture.PointerMove && !s.decoder.Dragging():
		if s.throttle.Allow(ev.Time) {
			slot, ok := s.tester.HitTest(ev.X, ev.Y, s.viewport)
			s.hover.observe(ev.Time, slot, ok)
		}
	}
}

func (s *Scene) click(x, y float64) {
	if s.decoder.Dragging() || s.transition.Animating() {
		return
	}
	slot, ok := s.tester.HitTest(x, y, s.viewport)
	if !ok {
		return
	}
	card, ok := s.card(slot)
	if !ok {
		return
	}
	if card.Active && slot == window.Center(s.integrator.Position) {
		s.navigate(card.Image.OwnerSlug)
		return
	}
	s.integrator.JumpTo(slot)
	s.syncWindow()
	s.transition.Start(s.focused, card.Image.OwnerSlug)
}

// Back flies the camera back to the overview from the focused pose or from a
// flight toward it. A navigation pending on that flight is dropped.
func (s *Scene) Back() {
	if s.transition.Target() == s.focused {
		s.transition.Redirect(camera.OverviewPose())
	}
}

// Update runs one frame of dt seconds.
func (s *Scene) Update(dt float64) {
	if s.closed {
		return
	}
	if s.hover.poll(s.clock.Now()) {
		s.syncWindow()
	}
	s.integrator.Advance(dt)
	s.syncWindow()
	s.stepPoses(dt)
	s.transition.Step(dt)
	s.camera.SetPose(s.transition.Pose())
}

// syncWindow regenerates the window and, when it changed, remounts the card
// poses and invalidates the hit-test cache.
func (s *Scene) syncWindow() {
	cards, changed := s.generator.Cards(s.integrator.Position, s.hover.hover)
	if !changed {
		return
	}
	live := make(map[int]bool, len(cards))
	for _, c := range cards {
		live[c.Slot] = true
		if p, ok := s.poses[c.Slot]; ok {
			if p.Card.Image != c.Image {
				p.Width, p.Height = CardSize(c.Image.AspectRatio())
			}
			p.Card = c
			continue
		}
		p := newCardPose(c, s.integrator.Offset())
		s.poses[c.Slot] = p
		s.registry.Register(p)
	}
	for slot := range s.poses {
		if !live[slot] {
			delete(s.poses, slot)
			s.registry.Unregister(slot)
		}
	}
	s.tester.Invalidate()
}

func (s *Scene) stepPoses(dt float64) {
	if dt <= 0 {
		return
	}
	if dt != s.springDT {
		s.spring = harmonica.NewSpring(dt, s.opts.SpringFrequency, s.opts.SpringDamping)
		s.springDT = dt
	}
	offset := s.integrator.Offset()
	for _, p := range s.poses {
		p.step(s.spring, offset)
	}
}

// Close tears the scene down: pending hover tasks are canceled, cards are
// unmounted, and later events and frames are ignored.
func (s *Scene) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.hover.cancel()
	for slot := range s.poses {
		s.registry.Unregister(slot)
	}
	s.poses = map[int]*CardPose{}
	s.tester.Invalidate()
}

// Closed reports whether Close was called.
func (s *Scene) Closed() bool { return s.closed }

func (s *Scene) card(slot int) (window.Card, bool) {
	for _, c := range s.generator.Current() {
		if c.Slot == slot {
			return c, true
		}
	}
	return window.Card{}, false
}

// HitTest resolves a viewport pixel to the slot of the nearest card.
func (s *Scene) HitTest(x, y float64) (int, bool) {
	return s.tester.HitTest(x, y, s.viewport)
}

// Cards returns the current window.
func (s *Scene) Cards() []window.Card { return s.generator.Current() }

// ActiveCard returns the active card of the current window.
func (s *Scene) ActiveCard() (window.Card, bool) { return window.ActiveCard(s.generator.Current()) }

// Poses returns the mounted card poses ordered by slot.
func (s *Scene) Poses() []*CardPose {
	out := make([]*CardPose, 0, len(s.poses))
	for _, p := range s.poses {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slot() < out[j].Slot() })
	return out
}

// Hover returns the committed hover.
func (s *Scene) Hover() window.Hover { return s.hover.hover }

// Position returns the scroll position.
func (s *Scene) Position() float64 { return s.integrator.Position }

// Velocity returns the scroll velocity.
func (s *Scene) Velocity() float64 { return s.integrator.Velocity }

// Dragging reports whether a press is in progress.
func (s *Scene) Dragging() bool { return s.decoder.Dragging() }

// Animating reports whether the camera is in flight.
func (s *Scene) Animating() bool { return s.transition.Animating() }

// Focused reports whether the camera rests at the focused pose.
func (s *Scene) Focused() bool {
	return !s.transition.Animating() && s.transition.Target() == s.focused
}

// Camera returns the scene camera.
func (s *Scene) Camera() *camera.Camera { return s.camera }

// Tester returns the hit-tester.
func (s *Scene) Tester() *hittest.Tester { return s.tester }
