package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nicky-ayoub/cardstack/internal/gallery"
	"github.com/nicky-ayoub/cardstack/internal/motion"
)

func TestDefaultMatchesScene(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	got := cfg.SceneOptions()
	want := gallery.DefaultOptions()
	want.Width, want.Height = 1280, 800
	if got.Motion != want.Motion || got.Gesture != want.Gesture || got.Window != want.Window || got.Transition != want.Transition {
		t.Errorf("scene options drifted from defaults:\n got %+v\nwant %+v", got, want)
	}
	if got.HoverSetDelay != 7*time.Millisecond || got.HoverClearDelay != 300*time.Millisecond || got.MoveThrottle != 16*time.Millisecond {
		t.Errorf("hover timing = %v/%v/%v", got.HoverSetDelay, got.HoverClearDelay, got.MoveThrottle)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Source != SourceStrapi || cfg.Display.Width != 1280 {
		t.Errorf("missing file did not yield defaults: %+v", cfg)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cardstack.yaml")
	data := `
source: dir
dir: /srv/photos
display:
  device: touch
hover:
  clear_delay: 200ms
scroll:
  frame_rate_independent: true
stack:
  render_distance: 6
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	if cfg.Source != SourceDir || cfg.Dir != "/srv/photos" {
		t.Errorf("source = %q dir = %q", cfg.Source, cfg.Dir)
	}
	if cfg.Hover.ClearDelay != 200*time.Millisecond || cfg.Hover.SetDelay != 7*time.Millisecond {
		t.Errorf("hover = %+v", cfg.Hover)
	}
	if cfg.Display.Width != 1280 || cfg.Scroll.Spacing != 2.5 {
		t.Error("unset keys lost their defaults")
	}

	opts := cfg.SceneOptions()
	if opts.Device != motion.Touch || !opts.Motion.FrameRateIndependent || !opts.Transition.FrameRateIndependent {
		t.Errorf("options = %+v", opts)
	}
	if opts.Window.RenderDistance != 6 || opts.Window.Size() != 13 {
		t.Errorf("window = %+v", opts.Window)
	}
}

func TestLoadRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("display: [1, 2"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "parsing config") {
		t.Errorf("err = %v", err)
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	cfg.Strapi.BaseURL = "http://file"
	env := map[string]string{"STRAPI_API_KEY": "secret"}
	cfg.ApplyEnv(func(k string) string { return env[k] })
	if cfg.Strapi.BaseURL != "http://file" || cfg.Strapi.APIKey != "secret" {
		t.Errorf("strapi = %+v", cfg.Strapi)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"Default", func(*Config) {}, true},
		{"DirWithoutPath", func(c *Config) { c.Source = SourceDir }, false},
		{"UnknownSource", func(c *Config) { c.Source = "ftp" }, false},
		{"UnknownDevice", func(c *Config) { c.Display.Device = "pen" }, false},
		{"ZeroWidth", func(c *Config) { c.Display.Width = 0 }, false},
		{"ZeroSpacing", func(c *Config) { c.Scroll.Spacing = 0 }, false},
		{"FactorTooLarge", func(c *Config) { c.Camera.TransitionFactor = 1.5 }, false},
		{"ZeroEpsilon", func(c *Config) { c.Camera.Epsilon = 0 }, false},
		{"NegativeEpsilon", func(c *Config) { c.Camera.Epsilon = -0.01 }, false},
		{"ZeroSmoothing", func(c *Config) { c.Scroll.Smoothing = 0 }, false},
		{"SmoothingAboveOne", func(c *Config) { c.Scroll.Smoothing = 1.2 }, false},
		{"FullSmoothing", func(c *Config) { c.Scroll.Smoothing = 1 }, true},
		{"PointerFrictionOne", func(c *Config) { c.Scroll.PointerFriction = 1 }, false},
		{"TouchFrictionNegative", func(c *Config) { c.Scroll.TouchFriction = -0.1 }, false},
		{"ZeroFriction", func(c *Config) { c.Scroll.PointerFriction = 0 }, true},
		{"NoWorkers", func(c *Config) { c.Textures.Workers = 0 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err == nil) != tt.ok {
				t.Errorf("Validate() = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}

func TestParseDevice(t *testing.T) {
	tests := []struct {
		in   string
		dev  motion.Device
		auto bool
	}{
		{"", motion.Pointer, true},
		{"Auto", motion.Pointer, true},
		{"mouse", motion.Pointer, false},
		{"touch", motion.Touch, false},
	}
	for _, tt := range tests {
		dev, auto, err := ParseDevice(tt.in)
		if err != nil || dev != tt.dev || auto != tt.auto {
			t.Errorf("ParseDevice(%q) = %v, %v, %v", tt.in, dev, auto, err)
		}
	}
}
