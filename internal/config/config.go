// Package config loads cardstack settings from a YAML file with environment
// and flag overrides layered on top.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nicky-ayoub/cardstack/internal/camera"
	"github.com/nicky-ayoub/cardstack/internal/gallery"
	"github.com/nicky-ayoub/cardstack/internal/motion"
)

// DefaultPath is the config file read when no --config flag is given.
const DefaultPath = "cardstack.yaml"

// Image sources.
const (
	SourceStrapi = "strapi"
	SourceDir    = "dir"
)

// Config is the full set of settings.
type Config struct {
	Source string       `yaml:"source"`
	Dir    string       `yaml:"dir"`
	Strapi StrapiConfig `yaml:"strapi"`

	// NavigateBase is the site that owner pages are opened on.
	NavigateBase string `yaml:"navigate_base"`

	Display  DisplayConfig `yaml:"display"`
	Scroll   ScrollConfig  `yaml:"scroll"`
	Stack    StackConfig   `yaml:"stack"`
	Hover    HoverConfig   `yaml:"hover"`
	Camera   CameraConfig  `yaml:"camera"`
	Textures TextureConfig `yaml:"textures"`
	Watch    WatchConfig   `yaml:"watch"`
}

type StrapiConfig struct {
	BaseURL        string        `yaml:"base_url"`
	APIKey         string        `yaml:"api_key"`
	Timeout        time.Duration `yaml:"timeout"`
	PageFetchLimit int           `yaml:"page_fetch_limit"`
}

type DisplayConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
	// Device is auto, pointer or touch.
	Device string `yaml:"device"`
}

type ScrollConfig struct {
	Spacing              float64 `yaml:"spacing"`
	Smoothing            float64 `yaml:"smoothing"`
	ImpulseGain          float64 `yaml:"impulse_gain"`
	MaxImpulseVelocity   float64 `yaml:"max_impulse_velocity"`
	MaxReleaseVelocity   float64 `yaml:"max_release_velocity"`
	PointerFriction      float64 `yaml:"pointer_friction"`
	TouchFriction        float64 `yaml:"touch_friction"`
	DragScale            float64 `yaml:"drag_scale"`
	WheelStep            float64 `yaml:"wheel_step"`
	TapSlop              float64 `yaml:"tap_slop"`
	FrameRateIndependent bool    `yaml:"frame_rate_independent"`
}

type StackConfig struct {
	RenderDistance        int `yaml:"render_distance"`
	ImmediateLoadDistance int `yaml:"immediate_load_distance"`
}

type HoverConfig struct {
	SetDelay     time.Duration `yaml:"set_delay"`
	ClearDelay   time.Duration `yaml:"clear_delay"`
	MoveThrottle time.Duration `yaml:"move_throttle"`
}

type CameraConfig struct {
	TransitionFactor float64 `yaml:"transition_factor"`
	Epsilon          float64 `yaml:"epsilon"`
}

type TextureConfig struct {
	Workers         int `yaml:"workers"`
	QueueSize       int `yaml:"queue_size"`
	PlaceholderSize int `yaml:"placeholder_size"`
	FullSize        int `yaml:"full_size"`
}

type WatchConfig struct {
	Enabled bool          `yaml:"enabled"`
	Quiet   time.Duration `yaml:"quiet"`
}

// Default returns the stock settings.
func Default() Config {
	mp := motion.DefaultParams()
	sc := gallery.DefaultOptions()
	return Config{
		Source:       SourceStrapi,
		NavigateBase: "http://localhost:3000",
		Strapi: StrapiConfig{
			Timeout:        15 * time.Second,
			PageFetchLimit: 4,
		},
		Display: DisplayConfig{Width: 1280, Height: 800, Title: "cardstack", Device: "auto"},
		Scroll: ScrollConfig{
			Spacing:              mp.Spacing,
			Smoothing:            mp.Smoothing,
			ImpulseGain:          mp.ImpulseGain,
			MaxImpulseVelocity:   mp.MaxImpulseVelocity,
			MaxReleaseVelocity:   mp.MaxReleaseVelocity,
			PointerFriction:      mp.PointerFriction,
			TouchFriction:        mp.TouchFriction,
			DragScale:            sc.Gesture.DragScale,
			WheelStep:            sc.Gesture.WheelStep,
			TapSlop:              sc.Gesture.TapSlop,
			FrameRateIndependent: mp.FrameRateIndependent,
		},
		Stack: StackConfig{
			RenderDistance:        sc.Window.RenderDistance,
			ImmediateLoadDistance: sc.Window.ImmediateLoadDistance,
		},
		Hover: HoverConfig{
			SetDelay:     sc.HoverSetDelay,
			ClearDelay:   sc.HoverClearDelay,
			MoveThrottle: sc.MoveThrottle,
		},
		Camera: CameraConfig{
			TransitionFactor: sc.Transition.Factor,
			Epsilon:          sc.Transition.Epsilon,
		},
		Textures: TextureConfig{Workers: 4, QueueSize: 64, PlaceholderSize: 256, FullSize: 1024},
		Watch:    WatchConfig{Enabled: true, Quiet: 500 * time.Millisecond},
	}
}

// Load reads path over the defaults. A missing file yields Default().
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides Strapi credentials from STRAPI_BASE_URL and STRAPI_API_KEY.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv("STRAPI_BASE_URL"); v != "" {
		c.Strapi.BaseURL = v
	}
	if v := getenv("STRAPI_API_KEY"); v != "" {
		c.Strapi.APIKey = v
	}
}

// Validate reports the first setting that cannot work.
func (c Config) Validate() error {
	switch c.Source {
	case SourceStrapi:
	case SourceDir:
		if c.Dir == "" {
			return errors.New("config: dir source needs a directory")
		}
	default:
		return fmt.Errorf("config: unknown source %q", c.Source)
	}
	if _, _, err := ParseDevice(c.Display.Device); err != nil {
		return err
	}
	if c.Display.Width <= 0 || c.Display.Height <= 0 {
		return fmt.Errorf("config: invalid window size %dx%d", c.Display.Width, c.Display.Height)
	}
	if c.Scroll.Spacing <= 0 {
		return errors.New("config: scroll.spacing must be positive")
	}
	if c.Stack.RenderDistance < 0 || c.Stack.ImmediateLoadDistance < 0 {
		return errors.New("config: stack distances must not be negative")
	}
	if c.Scroll.Smoothing <= 0 || c.Scroll.Smoothing > 1 {
		return errors.New("config: scroll.smoothing must be in (0, 1]")
	}
	if c.Scroll.PointerFriction < 0 || c.Scroll.PointerFriction >= 1 ||
		c.Scroll.TouchFriction < 0 || c.Scroll.TouchFriction >= 1 {
		return errors.New("config: scroll friction must be in [0, 1)")
	}
	if c.Camera.TransitionFactor <= 0 || c.Camera.TransitionFactor > 1 {
		return errors.New("config: camera.transition_factor must be in (0, 1]")
	}
	if c.Camera.Epsilon <= 0 {
		return errors.New("config: camera.epsilon must be positive")
	}
	if c.Textures.Workers <= 0 {
		return errors.New("config: textures.workers must be positive")
	}
	return nil
}

// ParseDevice maps a device name to a scroll device. auto starts as Pointer
// and reports true so the caller can switch on the first touch.
func ParseDevice(name string) (motion.Device, bool, error) {
	switch strings.ToLower(name) {
	case "", "auto":
		return motion.Pointer, true, nil
	case "pointer", "mouse":
		return motion.Pointer, false, nil
	case "touch":
		return motion.Touch, false, nil
	}
	return motion.Pointer, false, fmt.Errorf("config: unknown device %q", name)
}

// SceneOptions converts the settings into gallery options.
func (c Config) SceneOptions() gallery.Options {
	opts := gallery.DefaultOptions()

	opts.Motion.Spacing = c.Scroll.Spacing
	opts.Motion.Smoothing = c.Scroll.Smoothing
	opts.Motion.ImpulseGain = c.Scroll.ImpulseGain
	opts.Motion.MaxImpulseVelocity = c.Scroll.MaxImpulseVelocity
	opts.Motion.MaxReleaseVelocity = c.Scroll.MaxReleaseVelocity
	opts.Motion.PointerFriction = c.Scroll.PointerFriction
	opts.Motion.TouchFriction = c.Scroll.TouchFriction
	opts.Motion.FrameRateIndependent = c.Scroll.FrameRateIndependent

	opts.Gesture.DragScale = c.Scroll.DragScale
	opts.Gesture.WheelStep = c.Scroll.WheelStep
	opts.Gesture.TapSlop = c.Scroll.TapSlop

	opts.Window.Spacing = c.Scroll.Spacing
	opts.Window.RenderDistance = c.Stack.RenderDistance
	opts.Window.ImmediateLoadDistance = c.Stack.ImmediateLoadDistance

	opts.Transition = camera.TransitionParams{
		Factor:               c.Camera.TransitionFactor,
		Epsilon:              c.Camera.Epsilon,
		FrameRateIndependent: c.Scroll.FrameRateIndependent,
	}

	opts.HoverSetDelay = c.Hover.SetDelay
	opts.HoverClearDelay = c.Hover.ClearDelay
	opts.MoveThrottle = c.Hover.MoveThrottle

	opts.Device, _, _ = ParseDevice(c.Display.Device)
	opts.Width, opts.Height = c.Display.Width, c.Display.Height
	return opts
}
