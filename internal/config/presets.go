package config

import "sort"

// Preset is a named variant of the animator. Build returns a fresh config.
type Preset struct {
	Description string
	Build       func() *Config
}

var Presets = map[string]Preset{
	"overlay": {
		Description: "two arms drawn over a dotted trace, weighted blend every 10th frame",
		Build: func() *Config {
			c := DefaultConfig()
			c.Width, c.Height, c.FPS = 1280, 720, 30
			c.FrameCap = 30000
			c.Arms.RadiusScale = 1
			c.Arms.SpeedDivisor = 70
			c.LineWidth = RangeConfig{Min: 4, Max: 4}
			c.Color = ColorConfig{Mode: "static", Hex: "#000000"}
			c.Composite = CompositeConfig{Mode: "weighted", ArmWidth: 3, ArmColor: "#000000", JointRadius: 5, BlendEvery: 10}
			c.Trace = TraceConfig{Style: "dot", AntiAlias: false}
			c.Closure.Metric = "axis"
			return c
		},
	},
	"twin": {
		Description: "two fast arms, thin black trace, per-axis closure",
		Build: func() *Config {
			c := DefaultConfig()
			c.FPS = 30
			c.Arms.SpeedDivisor = 2
			c.LineWidth = RangeConfig{Min: 2, Max: 2}
			c.Color = ColorConfig{Mode: "static", Hex: "#000000"}
			c.Trace.AntiAlias = false
			c.Closure.Metric = "axis"
			c.Closure.ThresholdX, c.Closure.ThresholdY = 2, 5
			return c
		},
	},
	"triple": {
		Description: "three arms, hairline anti-aliased black trace, runs the full budget",
		Build: func() *Config {
			c := DefaultConfig()
			c.FPS = 30
			c.Arms.Min, c.Arms.Max = 3, 3
			c.Arms.SpeedDivisor = 2
			c.LineWidth = RangeConfig{Min: 1, Max: 1}
			c.Color = ColorConfig{Mode: "static", Hex: "#000000"}
			c.Closure.Enabled = false
			return c
		},
	},
	"rainbow": {
		Description: "two arms, hue-cycling trace, stops when the curve closes",
		Build:       DefaultConfig,
	},
	"kaleidoscope": {
		Description: "harmonic arms multiplied over the trace, new pattern on every closure, one color choice per video",
		Build: func() *Config {
			c := DefaultConfig()
			c.Minutes = 1
			c.Arms.RadiusDivisor = 3
			c.Arms.RadiusScale = 1
			c.Arms.Speed = "harmonic"
			c.Arms.SpeedDivisor = 10
			c.Arms.Denominators = []int{-8, -7, -6, -5, -4, -3, -2, 2, 3, 4, 5, 6, 7, 8}
			c.LineWidth = RangeConfig{Min: 5, Max: 125}
			c.Color.Mode = "coin"
			c.Color.PerPattern = false
			c.Composite.Mode = "multiply"
			c.Closure.MinFrames = 10
			c.Closure.Action = "reset"
			return c
		},
	},
}

// GetPreset returns a fresh copy of the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := p.Build()
	cfg.Preset = name
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
