package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Pass type names accepted in the pipeline description
const (
	PassRender    = "render"
	PassMask      = "mask"
	PassClearMask = "clear_mask"
	PassCopy      = "copy"
	PassTexture   = "texture"
	PassBloom     = "bloom"
	PassFilm      = "film"
	PassDotScreen = "dotscreen"
	PassHalftone  = "halftone"
	PassGlitch    = "glitch"
	PassBokeh     = "bokeh"
	PassSSAO      = "ssao"
)

var knownPasses = map[string]bool{
	PassRender: true, PassMask: true, PassClearMask: true, PassCopy: true,
	PassTexture: true, PassBloom: true, PassFilm: true, PassDotScreen: true,
	PassHalftone: true, PassGlitch: true, PassBokeh: true, PassSSAO: true,
}

// Config represents the main configuration
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Logging  LoggingConfig  `yaml:"logging"`
	Scene    SceneConfig    `yaml:"scene"`
	Seed     int64          `yaml:"seed"` // 0 means random per run
	Pipeline []PassConfig   `yaml:"pipeline"`
}

// GraphicsConfig contains window and render-target configuration
type GraphicsConfig struct {
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	PixelRatio float64 `yaml:"pixel_ratio"` // render scale over framebuffer pixels; 2 supersamples 4x
	Fullscreen bool    `yaml:"fullscreen"`
	VSync      bool    `yaml:"vsync"`
	FrameRate  int     `yaml:"framerate"`
	HDR        bool    `yaml:"hdr"` // half-float ping-pong targets
}

// LoggingConfig selects log level and optional log file
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// SceneConfig controls the procedural demo scene
type SceneConfig struct {
	TerrainSize int     `yaml:"terrain_size"`
	PropDensity float64 `yaml:"prop_density"`
	Fov         float64 `yaml:"fov"`
	Near        float64 `yaml:"near"`
	Far         float64 `yaml:"far"`
}

// PassConfig describes one pipeline stage. Only the block matching Type is read.
type PassConfig struct {
	Type    string `yaml:"type"`
	Enabled bool   `yaml:"enabled"`

	Render    *RenderParams    `yaml:"render,omitempty"`
	Mask      *MaskParams      `yaml:"mask,omitempty"`
	Copy      *CopyParams      `yaml:"copy,omitempty"`
	Texture   *TextureParams   `yaml:"texture,omitempty"`
	Bloom     *BloomParams     `yaml:"bloom,omitempty"`
	Film      *FilmParams      `yaml:"film,omitempty"`
	DotScreen *DotScreenParams `yaml:"dotscreen,omitempty"`
	Halftone  *HalftoneParams  `yaml:"halftone,omitempty"`
	Glitch    *GlitchParams    `yaml:"glitch,omitempty"`
	Bokeh     *BokehParams     `yaml:"bokeh,omitempty"`
	SSAO      *SSAOParams      `yaml:"ssao,omitempty"`
}

// RenderParams configures the scene pass
type RenderParams struct {
	ClearColor []float64 `yaml:"clear_color,omitempty"` // rgb, empty keeps the backend's
	ClearAlpha float64   `yaml:"clear_alpha"`
	ClearDepth bool      `yaml:"clear_depth"`
	Clear      bool      `yaml:"clear"`
}

// MaskParams configures a stencil mask
type MaskParams struct {
	Inverse bool `yaml:"inverse"`
}

// CopyParams configures a copy shader pass
type CopyParams struct {
	Opacity float64 `yaml:"opacity"`
}

// TextureParams configures the overlay texture pass
type TextureParams struct {
	Opacity  float64 `yaml:"opacity"`
	Size     int     `yaml:"size"`
	Vignette float64 `yaml:"vignette"`
}

// BloomParams configures the bloom pass
type BloomParams struct {
	Strength   float64 `yaml:"strength"`
	KernelSize int     `yaml:"kernel_size"`
	Sigma      float64 `yaml:"sigma"`
	Resolution int     `yaml:"resolution"`
}

// FilmParams configures the film grain pass
type FilmParams struct {
	Noise         float64 `yaml:"noise"`
	Scanlines     float64 `yaml:"scanlines"`
	ScanlineCount float64 `yaml:"scanline_count"`
	Grayscale     bool    `yaml:"grayscale"`
}

// DotScreenParams configures the dot screen pass
type DotScreenParams struct {
	CenterX float64 `yaml:"center_x"`
	CenterY float64 `yaml:"center_y"`
	Angle   float64 `yaml:"angle"`
	Scale   float64 `yaml:"scale"`
}

// HalftoneParams configures the halftone pass
type HalftoneParams struct {
	Shape        int     `yaml:"shape"` // 1 dot, 2 ellipse, 3 line, 4 square
	Radius       float64 `yaml:"radius"`
	RotateR      float64 `yaml:"rotate_r"`
	RotateG      float64 `yaml:"rotate_g"`
	RotateB      float64 `yaml:"rotate_b"`
	Scatter      float64 `yaml:"scatter"`
	Blending     float64 `yaml:"blending"`
	BlendingMode int     `yaml:"blending_mode"` // 1 linear, 2 multiply, 3 add, 4 lighter, 5 darker
	Greyscale    bool    `yaml:"greyscale"`
}

// GlitchParams configures the glitch pass
type GlitchParams struct {
	DTSize int  `yaml:"dt_size"`
	GoWild bool `yaml:"go_wild"`
}

// BokehParams configures the depth-of-field pass
type BokehParams struct {
	Focus    float64 `yaml:"focus"`
	Aperture float64 `yaml:"aperture"`
	MaxBlur  float64 `yaml:"max_blur"`
}

// SSAOParams configures the ambient occlusion pass
type SSAOParams struct {
	KernelSize   int     `yaml:"kernel_size"`
	KernelRadius float64 `yaml:"kernel_radius"`
	MinDistance  float64 `yaml:"min_distance"`
	MaxDistance  float64 `yaml:"max_distance"`
	Output       string  `yaml:"output"`
}

// DefaultPass returns a pass description of the given type with its
// parameter block populated with defaults.
func DefaultPass(passType string) PassConfig {
	p := PassConfig{Type: passType, Enabled: true}
	switch passType {
	case PassRender:
		p.Render = &RenderParams{Clear: true}
	case PassMask:
		p.Mask = &MaskParams{}
	case PassCopy:
		p.Copy = &CopyParams{Opacity: 1}
	case PassTexture:
		p.Texture = &TextureParams{Opacity: 1, Size: 256, Vignette: 0.6}
	case PassBloom:
		p.Bloom = &BloomParams{Strength: 1, KernelSize: 25, Sigma: 4, Resolution: 256}
	case PassFilm:
		p.Film = &FilmParams{Noise: 0.35, Scanlines: 0.025, ScanlineCount: 648}
	case PassDotScreen:
		p.DotScreen = &DotScreenParams{CenterX: 0.5, CenterY: 0.5, Angle: 1.57, Scale: 1}
	case PassHalftone:
		p.Halftone = &HalftoneParams{
			Shape: 1, Radius: 4, RotateR: 0.2617993877991494, RotateG: 0.5235987755982988,
			RotateB: 0.7853981633974483, Scatter: 0, Blending: 1, BlendingMode: 1,
		}
	case PassGlitch:
		p.Glitch = &GlitchParams{DTSize: 64}
	case PassBokeh:
		p.Bokeh = &BokehParams{Focus: 1, Aperture: 0.025, MaxBlur: 1}
	case PassSSAO:
		p.SSAO = &SSAOParams{KernelSize: 32, KernelRadius: 8, MinDistance: 0.005, MaxDistance: 0.1, Output: "default"}
	}
	return p
}

// UnmarshalYAML overlays the document onto the defaults for the pass type,
// so a partially specified block keeps the remaining defaults.
func (p *PassConfig) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var head struct {
		Type string `yaml:"type"`
	}
	if err := unmarshal(&head); err != nil {
		return err
	}

	type plain PassConfig
	out := plain(DefaultPass(head.Type))
	if err := unmarshal(&out); err != nil {
		return err
	}
	*p = PassConfig(out)
	return nil
}

// DefaultConfig creates a default configuration
func DefaultConfig() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			PixelRatio: 1,
			Fullscreen: false,
			VSync:      true,
			FrameRate:  60,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Scene: SceneConfig{
			TerrainSize: 48,
			PropDensity: 0.04,
			Fov:         65,
			Near:        0.1,
			Far:         200,
		},
		Seed: 0,
		Pipeline: []PassConfig{
			DefaultPass(PassRender),
			DefaultPass(PassSSAO),
			DefaultPass(PassBloom),
			DefaultPass(PassFilm),
			DefaultPass(PassCopy),
		},
	}
}

// Validate checks dimensions, pass types and mask pairing
func (c *Config) Validate() error {
	if c.Graphics.Width <= 0 || c.Graphics.Height <= 0 {
		return fmt.Errorf("invalid window size %dx%d", c.Graphics.Width, c.Graphics.Height)
	}
	if c.Graphics.PixelRatio <= 0 {
		return fmt.Errorf("invalid pixel ratio %v", c.Graphics.PixelRatio)
	}

	open := 0
	for i, p := range c.Pipeline {
		if !knownPasses[p.Type] {
			return fmt.Errorf("pipeline[%d]: unknown pass type %q", i, p.Type)
		}
		if err := p.ValidateParams(); err != nil {
			return fmt.Errorf("pipeline[%d]: %w", i, err)
		}
		switch p.Type {
		case PassMask:
			open++
		case PassClearMask:
			if open == 0 {
				return fmt.Errorf("pipeline[%d]: clear_mask without a preceding mask", i)
			}
			open--
		}
	}
	if open != 0 {
		return fmt.Errorf("pipeline has %d mask pass(es) without a matching clear_mask", open)
	}
	return nil
}

// ValidateParams rejects sizes that cannot allocate a kernel, texture or
// target. Absent parameter blocks fall back to defaults and are not checked.
func (p PassConfig) ValidateParams() error {
	check := func(name string, v int) error {
		if v <= 0 {
			return fmt.Errorf("%s %s must be positive, got %d", p.Type, name, v)
		}
		return nil
	}
	switch {
	case p.Type == PassSSAO && p.SSAO != nil:
		return check("kernel_size", p.SSAO.KernelSize)
	case p.Type == PassGlitch && p.Glitch != nil:
		return check("dt_size", p.Glitch.DTSize)
	case p.Type == PassTexture && p.Texture != nil:
		return check("size", p.Texture.Size)
	case p.Type == PassBloom && p.Bloom != nil:
		if err := check("kernel_size", p.Bloom.KernelSize); err != nil {
			return err
		}
		return check("resolution", p.Bloom.Resolution)
	}
	return nil
}

// LoadConfig loads the configuration from a file. On failure the defaults
// are returned together with the error.
func LoadConfig(filePath string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(filePath)
	if err != nil {
		return config, fmt.Errorf("config file not found, using defaults: %w", err)
	}

	parsed := DefaultConfig()
	if err := yaml.Unmarshal(data, parsed); err != nil {
		return config, fmt.Errorf("error parsing config: %w", err)
	}
	if err := parsed.Validate(); err != nil {
		return config, fmt.Errorf("invalid config: %w", err)
	}

	return parsed, nil
}

// SaveConfig saves the configuration to a file
func SaveConfig(config *Config, filePath string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("error serializing config: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}
