package config

import (
	"fmt"
	"os"

	"github.com/san-kum/springsim/internal/dynamo"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDt          = 0.01
	DefaultDuration    = 10.0
	DefaultRecordEvery = 1
	DefaultCoils       = 2
	DefaultHeight      = 2.0
	DefaultWallHeight  = 0.5
)

// Vec2 is written as a two-element YAML sequence, [x, y].
type Vec2 [2]float64

// Config is a scene file: the bodies, springs and scheduled kicks of one
// world plus the run parameters.
type Config struct {
	Name        string         `yaml:"name,omitempty"`
	Dt          float64        `yaml:"dt"`
	Duration    float64        `yaml:"duration"`
	Seed        int64          `yaml:"seed,omitempty"`
	RecordEvery int            `yaml:"record_every,omitempty"`
	Workers     int            `yaml:"workers,omitempty"`
	Masses      []MassConfig   `yaml:"masses"`
	Anchors     []AnchorConfig `yaml:"anchors,omitempty"`
	Walls       []WallConfig   `yaml:"walls,omitempty"`
	Springs     []SpringConfig `yaml:"springs"`
	Kicks       []KickConfig   `yaml:"kicks,omitempty"`
}

type MassConfig struct {
	Name     string  `yaml:"name"`
	Mass     float64 `yaml:"mass"`
	Position Vec2    `yaml:"position"`
}

type AnchorConfig struct {
	Name     string `yaml:"name"`
	Position Vec2   `yaml:"position"`
}

type WallConfig struct {
	Name     string  `yaml:"name"`
	Height   float64 `yaml:"height,omitempty"`
	Position Vec2    `yaml:"position"`
}

// SpringConfig joins two named bodies. Coils and Height only shape the
// drawn zig-zag.
type SpringConfig struct {
	K      float64 `yaml:"k"`
	Start  string  `yaml:"start"`
	End    string  `yaml:"end"`
	Coils  int     `yaml:"coils,omitempty"`
	Height float64 `yaml:"height,omitempty"`
}

type KickConfig struct {
	Body     string  `yaml:"body"`
	At       float64 `yaml:"at"`
	Velocity Vec2    `yaml:"velocity"`
}

func DefaultConfig() *Config {
	return &Config{
		Dt:          DefaultDt,
		Duration:    DefaultDuration,
		RecordEvery: DefaultRecordEvery,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes a scene over the defaults and validates it.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse scene: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
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

// Names lists every body name in the order bodies are added to a world:
// masses, then anchors, then walls.
func (c *Config) Names() []string {
	names := make([]string, 0, len(c.Masses)+len(c.Anchors)+len(c.Walls))
	for _, m := range c.Masses {
		names = append(names, m.Name)
	}
	for _, a := range c.Anchors {
		names = append(names, a.Name)
	}
	for _, w := range c.Walls {
		names = append(names, w.Name)
	}
	return names
}

// Validate checks run parameters and that every spring and kick refers to a
// declared body. Physical checks (mass, degenerate springs) happen when the
// world is built.
func (c *Config) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("scene %q: dt must be positive, got %g", c.Name, c.Dt)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("scene %q: duration must be positive, got %g", c.Name, c.Duration)
	}

	known := make(map[string]bool)
	for _, name := range c.Names() {
		if name == "" {
			return fmt.Errorf("scene %q: body without a name", c.Name)
		}
		if known[name] {
			return fmt.Errorf("scene %q: duplicate body %q", c.Name, name)
		}
		known[name] = true
	}

	for i, s := range c.Springs {
		if !known[s.Start] {
			return fmt.Errorf("scene %q: spring %d start %q: %w", c.Name, i, s.Start, dynamo.ErrUnknownBody)
		}
		if !known[s.End] {
			return fmt.Errorf("scene %q: spring %d end %q: %w", c.Name, i, s.End, dynamo.ErrUnknownBody)
		}
	}
	for i, k := range c.Kicks {
		if !known[k.Body] {
			return fmt.Errorf("scene %q: kick %d body %q: %w", c.Name, i, k.Body, dynamo.ErrUnknownBody)
		}
	}
	return nil
}

// Clone returns a deep copy so presets can be overridden safely.
func (c *Config) Clone() *Config {
	out := *c
	out.Masses = append([]MassConfig(nil), c.Masses...)
	out.Anchors = append([]AnchorConfig(nil), c.Anchors...)
	out.Walls = append([]WallConfig(nil), c.Walls...)
	out.Springs = append([]SpringConfig(nil), c.Springs...)
	out.Kicks = append([]KickConfig(nil), c.Kicks...)
	return &out
}

// CoilsOrDefault and HeightOrDefault fill in the zig-zag shape.
func (s SpringConfig) CoilsOrDefault() int {
	if s.Coils <= 0 {
		return DefaultCoils
	}
	return s.Coils
}

func (s SpringConfig) HeightOrDefault() float64 {
	if s.Height <= 0 {
		return DefaultHeight
	}
	return s.Height
}

func (w WallConfig) HeightOrDefault() float64 {
	if w.Height <= 0 {
		return DefaultWallHeight
	}
	return w.Height
}
