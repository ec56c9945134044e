package ui

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nicky-ayoub/cardstack/internal/camera"
	"github.com/nicky-ayoub/cardstack/internal/gallery"
	"github.com/nicky-ayoub/cardstack/internal/gesture"
	"github.com/nicky-ayoub/cardstack/internal/service"
	"github.com/nicky-ayoub/cardstack/internal/window"
)

func TestSourceFor(t *testing.T) {
	rec := service.ImageRecord{ThumbnailURL: "medium.jpg", PlaceholderURL: "small.jpg"}
	if got := sourceFor(rec, Placeholder); got != "small.jpg" {
		t.Errorf("placeholder = %q", got)
	}
	if got := sourceFor(rec, Full); got != "medium.jpg" {
		t.Errorf("full = %q", got)
	}
	rec.PlaceholderURL = ""
	if got := sourceFor(rec, Placeholder); got != "medium.jpg" {
		t.Errorf("placeholder without a placeholder URL = %q", got)
	}
}

func TestWantedJobs(t *testing.T) {
	a := service.ImageRecord{ThumbnailURL: "a.jpg", PlaceholderURL: "a-small.jpg"}
	b := service.ImageRecord{ThumbnailURL: "b.jpg"}
	cards := []window.Card{
		{Slot: -1, Image: b},
		{Slot: 0, Image: a, LoadFullRes: true},
		{Slot: 1, Image: b, LoadFullRes: true},
		{Slot: 2, Image: a},
	}
	jobs := wantedJobs(cards)
	want := map[string]Tier{
		"placeholder:a-small.jpg": Placeholder,
		"full:a.jpg":              Full,
		"placeholder:b.jpg":       Placeholder,
		"full:b.jpg":              Full,
	}
	if len(jobs) != len(want) {
		t.Fatalf("jobs = %v", jobs)
	}
	for key, tier := range want {
		job, ok := jobs[key]
		if !ok || job.tier != tier || job.key != key {
			t.Errorf("job %s = %+v, %v", key, job, ok)
		}
	}
}

func TestFitSize(t *testing.T) {
	tests := []struct {
		w, h, limit int
		ww, wh      int
	}{
		{100, 50, 256, 100, 50},
		{2048, 1024, 1024, 1024, 512},
		{1000, 4000, 256, 64, 256},
		{5000, 1, 256, 256, 1},
		{300, 300, 0, 300, 300},
	}
	for _, tt := range tests {
		w, h := fitSize(tt.w, tt.h, tt.limit)
		if w != tt.ww || h != tt.wh {
			t.Errorf("fitSize(%d, %d, %d) = %d x %d, want %d x %d", tt.w, tt.h, tt.limit, w, h, tt.ww, tt.wh)
		}
	}
}

func kinds(events []gesture.Event) []gesture.Kind {
	out := make([]gesture.Kind, len(events))
	for i, e := range events {
		out[i] = e.Kind
	}
	return out
}

func sameKinds(a, b []gesture.Kind) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestPollerMouse(t *testing.T) {
	var p Poller
	now := time.Unix(0, 0)
	frame := func(in rawInput) []gesture.Kind {
		in.width, in.height = 800, 600
		return kinds(p.translate(now, in))
	}

	tests := []struct {
		name string
		in   rawInput
		want []gesture.Kind
	}{
		{"FirstFrame", rawInput{cursorX: 10, cursorY: 10}, nil},
		{"Still", rawInput{cursorX: 10, cursorY: 10}, nil},
		{"Move", rawInput{cursorX: 20, cursorY: 30}, []gesture.Kind{gesture.PointerMove}},
		{"MoveAndPress", rawInput{cursorX: 25, cursorY: 30, leftPressed: true}, []gesture.Kind{gesture.PointerMove, gesture.PointerDown}},
		{"Release", rawInput{cursorX: 25, cursorY: 30, leftReleased: true}, []gesture.Kind{gesture.PointerUp}},
		{"Leave", rawInput{cursorX: -5, cursorY: 30}, []gesture.Kind{gesture.PointerLeave}},
		{"OutsidePress", rawInput{cursorX: -5, cursorY: 30, leftPressed: true}, nil},
		{"Wheel", rawInput{cursorX: -5, cursorY: 30, wheelY: -1}, []gesture.Kind{gesture.Wheel}},
	}
	for _, tt := range tests {
		if got := frame(tt.in); !sameKinds(got, tt.want) {
			t.Errorf("%s: events = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestPollerWheelSign(t *testing.T) {
	var p Poller
	events := p.translate(time.Unix(0, 0), rawInput{width: 10, height: 10, wheelY: -2})
	if len(events) != 1 || events[0].DeltaY != 2 {
		t.Fatalf("events = %+v", events)
	}
}

func TestPollerTouch(t *testing.T) {
	var p Poller
	now := time.Unix(0, 0)
	step := func(touches ...touchPoint) []gesture.Event {
		return p.translate(now, rawInput{width: 800, height: 600, touches: touches})
	}

	if ev := step(touchPoint{id: 3, x: 100, y: 200}, touchPoint{id: 4, x: 1, y: 1}); len(ev) != 1 || ev[0].Kind != gesture.TouchStart || ev[0].Y != 200 {
		t.Fatalf("start = %+v", ev)
	}
	if ev := step(touchPoint{id: 3, x: 100, y: 200}); len(ev) != 0 {
		t.Errorf("stationary touch produced %+v", ev)
	}
	if ev := step(touchPoint{id: 4, x: 9, y: 9}, touchPoint{id: 3, x: 100, y: 150}); len(ev) != 1 || ev[0].Kind != gesture.TouchMove || ev[0].Y != 150 {
		t.Errorf("move = %+v", ev)
	}
	if ev := step(touchPoint{id: 4, x: 9, y: 9}); len(ev) != 1 || ev[0].Kind != gesture.TouchEnd || ev[0].Y != 150 {
		t.Errorf("end = %+v", ev)
	}
}

func TestQuadVertices(t *testing.T) {
	corners := [4][2]float32{{0, 100}, {50, 100}, {50, 0}, {0, 0}}
	vs := quadVertices(nil, corners, 64, 32, 0.5)
	if len(vs) != 4 {
		t.Fatalf("%d vertices", len(vs))
	}
	if vs[0].SrcX != 0 || vs[0].SrcY != 32 || vs[2].SrcX != 64 || vs[2].SrcY != 0 {
		t.Errorf("texture corners = %+v", vs)
	}
	if vs[1].DstX != 50 || vs[1].DstY != 100 || vs[1].ColorR != 0.5 || vs[1].ColorA != 1 {
		t.Errorf("vertex 1 = %+v", vs[1])
	}
}

func TestProjectOrdersFarToNear(t *testing.T) {
	images := []service.ImageRecord{{Title: "a", ThumbnailURL: "a", OwnerTitle: "o", OwnerSlug: "o"}}
	scene, err := gallery.New(images, nil, gallery.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	cards := project(scene.Poses(), scene.Camera())
	if len(cards) == 0 || cards[0].pose.Slot() != -10 {
		t.Fatalf("projected %d cards", len(cards))
	}
	for i := 1; i < len(cards); i++ {
		if cards[i].depth > cards[i-1].depth {
			t.Fatalf("card %d drawn after a nearer card", cards[i].pose.Slot())
		}
		if cards[i].pose.Slot() != cards[i-1].pose.Slot()+1 {
			t.Errorf("slot %d follows %d", cards[i].pose.Slot(), cards[i-1].pose.Slot())
		}
	}
	for _, pc := range cards {
		if !camera.Visible(pc.depth) {
			t.Errorf("slot %d kept with depth %v", pc.pose.Slot(), pc.depth)
		}
		if pc.pose.Slot() == 10 {
			t.Error("slot 10 lies behind the overview camera and was drawn")
		}
	}
}

func TestProjectClipsCardsBehindCamera(t *testing.T) {
	images := []service.ImageRecord{{Title: "a", ThumbnailURL: "a", OwnerTitle: "o", OwnerSlug: "o"}}
	scene, err := gallery.New(images, nil, gallery.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	scene.Camera().SetPose(camera.FocusedPose())

	cards := project(scene.Poses(), scene.Camera())
	if len(cards) != 11 {
		t.Fatalf("projected %d cards, want slots -10..0", len(cards))
	}
	if last := cards[len(cards)-1].pose.Slot(); last != 0 {
		t.Errorf("nearest drawn card = slot %d, want the centered slot 0", last)
	}
}

func TestNavigator(t *testing.T) {
	opened := make(chan string, 1)
	n := NewBrowserNavigator("https://example.test/")
	n.Open = func(u string) error {
		opened <- u
		return nil
	}
	n.Navigate("jane doe")

	want := "https://example.test/index/jane%20doe"
	if n.Last() != want {
		t.Errorf("Last() = %q", n.Last())
	}
	select {
	case got := <-opened:
		if got != want {
			t.Errorf("opened %q, want %q", got, want)
		}
	case <-time.After(time.Second):
		t.Fatal("browser never opened")
	}
}

func TestStatusText(t *testing.T) {
	s := NewStatus("strapi")
	s.SetLoading()
	if !strings.HasPrefix(s.Text(), "Loading images from strapi") {
		t.Errorf("loading text = %q", s.Text())
	}
	s.SetError(errors.New("boom"))
	if s.Loading() || !strings.Contains(s.Text(), "boom") {
		t.Errorf("error text = %q", s.Text())
	}
	s.SetLoaded(12)
	if s.Err() != nil || s.Count() != 12 || s.Text() != "12 images from strapi" {
		t.Errorf("loaded text = %q", s.Text())
	}
	for i := 0; i < 6; i++ {
		s.AddLogMessage(strings.Repeat("m", i+1))
	}
	lines := strings.Split(s.Text(), "\n")
	if len(lines) != 1+maxMessages || lines[1] != "mmm" {
		t.Errorf("messages = %q", lines)
	}
}
