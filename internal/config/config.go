package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/spirograph/internal/linkage"
	"github.com/san-kum/spirograph/internal/palette"
	"github.com/san-kum/spirograph/internal/raster"
	"github.com/san-kum/spirograph/internal/sim"
)

const (
	DefaultWidth       = 1920
	DefaultHeight      = 1080
	DefaultFPS         = 60
	DefaultMinutes     = 60.0
	DefaultHueStep     = 0.5
	DefaultSaturation  = 100.0
	DefaultLightness   = 50.0
	DefaultMinFrames   = 1000
	DefaultPreviewRate = 5
)

var ErrInvalid = errors.New("config: invalid value")

type Config struct {
	Preset    string          `yaml:"preset,omitempty"`
	Width     int             `yaml:"width"`
	Height    int             `yaml:"height"`
	FPS       int             `yaml:"fps"`
	Minutes   float64         `yaml:"minutes"`
	FrameCap  int             `yaml:"max_frames,omitempty"`
	Seed      int64           `yaml:"seed"`
	Rounding  string          `yaml:"rounding"`
	Arms      ArmsConfig      `yaml:"arms"`
	LineWidth RangeConfig     `yaml:"line_width"`
	Color     ColorConfig     `yaml:"color"`
	Composite CompositeConfig `yaml:"composite"`
	Trace     TraceConfig     `yaml:"trace"`
	Closure   ClosureConfig   `yaml:"closure"`
	Output    OutputConfig    `yaml:"output"`
	Preview   PreviewConfig   `yaml:"preview"`
}

// ArmsConfig describes how chains are sampled. Radii are drawn from
// [0, height/RadiusDivisor) and multiplied by RadiusScale.
type ArmsConfig struct {
	Min           int     `yaml:"min"`
	Max           int     `yaml:"max"`
	RadiusDivisor float64 `yaml:"radius_divisor"`
	RadiusScale   float64 `yaml:"radius_scale"`
	Speed         string  `yaml:"speed"`
	SpeedRange    float64 `yaml:"speed_range"`
	SpeedDivisor  float64 `yaml:"speed_divisor"`
	Denominators  []int   `yaml:"denominators,omitempty"`
}

type RangeConfig struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

type ColorConfig struct {
	Mode       string  `yaml:"mode"`
	Hex        string  `yaml:"hex,omitempty"`
	Hue        float64 `yaml:"hue"`
	RandomHue  bool    `yaml:"random_hue"`
	PerPattern bool    `yaml:"per_pattern"`
	Step       float64 `yaml:"step"`
	Saturation float64 `yaml:"saturation"`
	Lightness  float64 `yaml:"lightness"`
}

type CompositeConfig struct {
	Mode        string  `yaml:"mode"`
	ArmWidth    float64 `yaml:"arm_width"`
	ArmColor    string  `yaml:"arm_color"`
	JointRadius float64 `yaml:"joint_radius"`
	BlendEvery  int     `yaml:"blend_every"`
}

type TraceConfig struct {
	Style     string `yaml:"style"`
	AntiAlias bool   `yaml:"anti_alias"`
}

type ClosureConfig struct {
	Enabled    bool    `yaml:"enabled"`
	Metric     string  `yaml:"metric"`
	Threshold  float64 `yaml:"threshold"`
	ThresholdX float64 `yaml:"threshold_x"`
	ThresholdY float64 `yaml:"threshold_y"`
	MinFrames  int     `yaml:"min_frames"`
	Action     string  `yaml:"action"`
}

type OutputConfig struct {
	Dir    string `yaml:"dir"`
	Format string `yaml:"format"`
	Prefix string `yaml:"prefix"`
}

type PreviewConfig struct {
	Display string `yaml:"display"`
	Every   int    `yaml:"every"`
}

func DefaultConfig() *Config {
	return &Config{
		Width:    DefaultWidth,
		Height:   DefaultHeight,
		FPS:      DefaultFPS,
		Minutes:  DefaultMinutes,
		Rounding: linkage.RoundTruncate.String(),
		Arms: ArmsConfig{
			Min:           2,
			Max:           2,
			RadiusDivisor: 4,
			RadiusScale:   1.5,
			Speed:         "uniform",
			SpeedRange:    0.5,
			SpeedDivisor:  20,
		},
		LineWidth: RangeConfig{Min: 5, Max: 5},
		Color: ColorConfig{
			Mode:       "cycle",
			RandomHue:  true,
			Step:       DefaultHueStep,
			Saturation: DefaultSaturation,
			Lightness:  DefaultLightness,
		},
		Composite: CompositeConfig{
			Mode:        raster.Direct.String(),
			ArmWidth:    5,
			ArmColor:    "#000000",
			JointRadius: 10,
			BlendEvery:  1,
		},
		Trace: TraceConfig{Style: "segment", AntiAlias: true},
		Closure: ClosureConfig{
			Enabled:    true,
			Metric:     "euclidean",
			Threshold:  2,
			ThresholdX: 2,
			ThresholdY: 2,
			MinFrames:  DefaultMinFrames,
			Action:     "stop",
		},
		Output: OutputConfig{
			Dir:    "videos",
			Format: "mp4",
			Prefix: "output_video",
		},
		Preview: PreviewConfig{Display: "none", Every: DefaultPreviewRate},
	}
}

func Load(path string) (*Config, error) {
	return LoadOver(path, DefaultConfig())
}

// LoadOver applies the file at path on top of base, so keys missing from the
// file keep base's values. base is not modified.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// MaxFrames is the explicit frame cap when set, otherwise minutes*60*fps.
func (c *Config) MaxFrames() int {
	if c.FrameCap > 0 {
		return c.FrameCap
	}
	return int(c.Minutes * 60 * float64(c.FPS))
}

func (c *Config) Origin() linkage.Point {
	return linkage.Point{X: c.Width / 2, Y: c.Height / 2}
}

func (c *Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: resolution %dx%d", ErrInvalid, c.Width, c.Height)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("%w: fps %d", ErrInvalid, c.FPS)
	}
	if c.MaxFrames() <= 0 {
		return fmt.Errorf("%w: frame budget is empty (minutes %.2f, max_frames %d)", ErrInvalid, c.Minutes, c.FrameCap)
	}
	if c.LineWidth.Min <= 0 || c.LineWidth.Max < c.LineWidth.Min {
		return fmt.Errorf("%w: line width [%d, %d]", ErrInvalid, c.LineWidth.Min, c.LineWidth.Max)
	}
	if c.Arms.RadiusDivisor <= 0 {
		return fmt.Errorf("%w: radius divisor %.2f", ErrInvalid, c.Arms.RadiusDivisor)
	}
	if _, err := c.Sampler(); err != nil {
		return err
	}
	if _, err := c.ToSim(); err != nil {
		return err
	}
	if _, err := c.Palette(); err != nil {
		return err
	}
	if c.Output.Dir == "" || c.Output.Format == "" {
		return fmt.Errorf("%w: output dir and format are required", ErrInvalid)
	}
	return nil
}

func (c *Config) Sampler() (linkage.Sampler, error) {
	mode, err := linkage.ParseSpeedMode(c.Arms.Speed)
	if err != nil {
		return linkage.Sampler{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	s := linkage.Sampler{
		MinArms:      c.Arms.Min,
		MaxArms:      c.Arms.Max,
		MaxRadius:    float64(c.Height) / c.Arms.RadiusDivisor,
		RadiusScale:  c.Arms.RadiusScale,
		SpeedMode:    mode,
		SpeedRange:   c.Arms.SpeedRange,
		Divisor:      c.Arms.SpeedDivisor,
		Denominators: c.Arms.Denominators,
	}
	if mode == linkage.SpeedHarmonic && len(s.Denominators) == 0 {
		s.Denominators = linkage.DefaultDenominators
	}
	if err := s.Validate(); err != nil {
		return linkage.Sampler{}, err
	}
	return s, nil
}

// ToSim maps the file representation onto the animator's parameters.
func (c *Config) ToSim() (sim.Config, error) {
	out := sim.DefaultConfig()
	out.Width, out.Height = c.Width, c.Height
	out.Origin = c.Origin()
	out.MaxFrames = c.MaxFrames()
	out.LineWidthMin, out.LineWidthMax = c.LineWidth.Min, c.LineWidth.Max
	out.AntiAlias = c.Trace.AntiAlias
	out.ArmWidth = c.Composite.ArmWidth
	out.JointRadius = c.Composite.JointRadius
	out.BlendEvery = c.Composite.BlendEvery
	out.PreviewEvery = c.Preview.Every

	var err error
	if out.Rounding, err = linkage.ParseRounding(c.Rounding); err != nil {
		return out, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if out.Composite, err = raster.ParseMode(c.Composite.Mode); err != nil {
		return out, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if c.Composite.ArmColor != "" {
		if out.ArmColor, err = palette.ParseHex(c.Composite.ArmColor); err != nil {
			return out, fmt.Errorf("%w: arm color: %v", ErrInvalid, err)
		}
	}
	if out.TraceStyle, err = sim.ParseTraceStyle(c.Trace.Style); err != nil {
		return out, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	cl := sim.Closure{
		Enabled:    c.Closure.Enabled,
		Threshold:  c.Closure.Threshold,
		ThresholdX: c.Closure.ThresholdX,
		ThresholdY: c.Closure.ThresholdY,
		MinFrames:  c.Closure.MinFrames,
	}
	if cl.Metric, err = sim.ParseClosureMetric(c.Closure.Metric); err != nil {
		return out, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if cl.Action, err = sim.ParseClosureAction(c.Closure.Action); err != nil {
		return out, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	out.Closure = cl
	return out, nil
}

// Palette builds a fresh color policy. Each run needs its own instance.
func (c *Config) Palette() (palette.Policy, error) {
	cc := c.Color
	switch cc.Mode {
	case "static":
		hex := cc.Hex
		if hex == "" {
			hex = "#000000"
		}
		col, err := palette.ParseHex(hex)
		if err != nil {
			return nil, fmt.Errorf("%w: color: %v", ErrInvalid, err)
		}
		return palette.NewStatic(col), nil
	case "cycle", "":
		if cc.Step < 0 {
			return nil, fmt.Errorf("%w: hue step %.2f", ErrInvalid, cc.Step)
		}
		return palette.NewCycling(cc.Hue, cc.Step, cc.Saturation, cc.Lightness, cc.RandomHue, cc.PerPattern), nil
	case "coin":
		if cc.Step < 0 {
			return nil, fmt.Errorf("%w: hue step %.2f", ErrInvalid, cc.Step)
		}
		return palette.NewCoin(palette.NewCycling(cc.Hue, cc.Step, cc.Saturation, cc.Lightness, cc.RandomHue, cc.PerPattern), cc.PerPattern), nil
	}
	return nil, fmt.Errorf("%w: unknown color mode %q", ErrInvalid, cc.Mode)
}

// Clone returns a deep copy so presets can be modified safely.
func (c *Config) Clone() *Config {
	out := *c
	if c.Arms.Denominators != nil {
		out.Arms.Denominators = append([]int(nil), c.Arms.Denominators...)
	}
	return &out
}
