package config

import (
	_ "embed"
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"
	"strings"
	"time"

	colorful "github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalidConfiguration is returned (wrapped) for any configuration that
// cannot drive the snowfall: non-positive emission rate, non-positive surface
// dimensions, or factors that would divide by zero.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// LeaveAnimation 雪花离场动画类型
type LeaveAnimation int

const (
	// LeaveAnimationNone 雪花直接落出屏幕
	LeaveAnimationNone LeaveAnimation = iota
	// LeaveAnimationFade 雪花在生命周期最后 FadeWindow 内淡出
	LeaveAnimationFade
)

func (a LeaveAnimation) String() string {
	switch a {
	case LeaveAnimationNone:
		return "None"
	case LeaveAnimationFade:
		return "Fade"
	default:
		return fmt.Sprintf("LeaveAnimation(%d)", int(a))
	}
}

// ParseLeaveAnimation parses "None" or "Fade" (case-insensitive).
func ParseLeaveAnimation(s string) (LeaveAnimation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return LeaveAnimationNone, nil
	case "fade":
		return LeaveAnimationFade, nil
	default:
		return LeaveAnimationNone, fmt.Errorf("unknown leave animation %q: %w", s, ErrInvalidConfiguration)
	}
}

// MarshalYAML 以字符串形式输出
func (a LeaveAnimation) MarshalYAML() (interface{}, error) {
	return a.String(), nil
}

// UnmarshalYAML 解析 "None" / "Fade"
func (a *LeaveAnimation) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseLeaveAnimation(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// HexColor is an opaque RGB color written as "#rrggbb" in yaml.
// It implements color.Color so it can be handed to renderers directly.
type HexColor color.RGBA

// White 默认雪花颜色
var White = HexColor{R: 255, G: 255, B: 255, A: 255}

// ParseHexColor accepts "#rgb" and "#rrggbb".
func ParseHexColor(s string) (HexColor, error) {
	c, err := colorful.Hex(strings.TrimSpace(s))
	if err != nil {
		return HexColor{}, fmt.Errorf("parse color %q: %w", s, ErrInvalidConfiguration)
	}
	r, g, b := c.RGB255()
	return HexColor{R: r, G: g, B: b, A: 255}, nil
}

// RGBA implements color.Color.
func (c HexColor) RGBA() (r, g, b, a uint32) {
	return color.RGBA(c).RGBA()
}

// Hex 返回 "#rrggbb" 形式
func (c HexColor) Hex() string {
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}.Hex()
}

// MarshalYAML 以十六进制字符串输出
func (c HexColor) MarshalYAML() (interface{}, error) {
	return c.Hex(), nil
}

// UnmarshalYAML 解析十六进制颜色字符串
func (c *HexColor) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseHexColor(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// SnowfallConfig holds the tunable snowfall parameters.
//
// EmissionRate is read once when the scheduler starts; every other field is
// read again for each spawned snowflake, so the host may change them live.
type SnowfallConfig struct {
	ScaleFactor    float64        `yaml:"scale_factor"`    // 雪花尺寸倍数
	EmissionRate   int            `yaml:"emission_rate"`   // 每秒生成数量
	OpacityFactor  float64        `yaml:"opacity_factor"`  // 透明度倍数
	ParticleSpeed  float64        `yaml:"particle_speed"`  // 下落速度倍数（时长的倒数）
	FillColor      HexColor       `yaml:"fill_color"`      // 雪花颜色
	LeaveAnimation LeaveAnimation `yaml:"leave_animation"` // 离场动画
}

// DefaultSnowfallConfig 返回默认雪花配置
func DefaultSnowfallConfig() SnowfallConfig {
	return SnowfallConfig{
		ScaleFactor:    0.5,
		EmissionRate:   5,
		OpacityFactor:  3.0,
		ParticleSpeed:  1.0,
		FillColor:      White,
		LeaveAnimation: LeaveAnimationNone,
	}
}

// ValidateEmission checks the fields the scheduler depends on.
func (c *SnowfallConfig) ValidateEmission() error {
	if c.EmissionRate <= 0 {
		return fmt.Errorf("emission rate %d must be positive: %w", c.EmissionRate, ErrInvalidConfiguration)
	}
	return nil
}

// ValidateSpawn checks the fields read for every spawned snowflake.
func (c *SnowfallConfig) ValidateSpawn() error {
	if !(c.ScaleFactor > 0) || math.IsInf(c.ScaleFactor, 1) {
		return fmt.Errorf("scale factor %v must be positive and finite: %w", c.ScaleFactor, ErrInvalidConfiguration)
	}
	if !(c.OpacityFactor >= 0) || math.IsInf(c.OpacityFactor, 1) {
		return fmt.Errorf("opacity factor %v must be finite and not negative: %w", c.OpacityFactor, ErrInvalidConfiguration)
	}
	if !(c.ParticleSpeed > 0) || math.IsInf(c.ParticleSpeed, 1) {
		return fmt.Errorf("particle speed %v must be positive and finite: %w", c.ParticleSpeed, ErrInvalidConfiguration)
	}
	// 最长生命周期必须能用 time.Duration 表示
	if longest := float64(LifetimeSecondsMax) * float64(time.Second) / c.ParticleSpeed; longest >= math.MaxInt64 {
		return fmt.Errorf("particle speed %v is too slow, lifetime would overflow: %w", c.ParticleSpeed, ErrInvalidConfiguration)
	}
	if c.LeaveAnimation != LeaveAnimationNone && c.LeaveAnimation != LeaveAnimationFade {
		return fmt.Errorf("leave animation %v: %w", c.LeaveAnimation, ErrInvalidConfiguration)
	}
	return nil
}

// Validate 校验全部字段
func (c *SnowfallConfig) Validate() error {
	if err := c.ValidateEmission(); err != nil {
		return err
	}
	return c.ValidateSpawn()
}

// ValidateSurface rejects non-positive surface dimensions.
func ValidateSurface(width, height float64) error {
	if !(width > 0) || !(height > 0) {
		return fmt.Errorf("surface %vx%v must have positive size: %w", width, height, ErrInvalidConfiguration)
	}
	return nil
}

// WindowConfig 窗口设置
type WindowConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
	TPS    int    `yaml:"tps"`
}

// TerminalConfig 终端前端设置
type TerminalConfig struct {
	CellWidth  float64 `yaml:"cell_width"`  // 每个字符单元的逻辑宽度
	CellHeight float64 `yaml:"cell_height"` // 每个字符单元的逻辑高度
	FPS        int     `yaml:"fps"`
}

// Config 是配置文件的顶层结构
type Config struct {
	Window   WindowConfig   `yaml:"window"`
	Snowfall SnowfallConfig `yaml:"snowfall"`
	Terminal TerminalConfig `yaml:"terminal"`
}

// DefaultConfig 解析内嵌的 defaults.yaml
func DefaultConfig() (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(defaultsYAML, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse embedded defaults: %w", err)
	}
	return &cfg, nil
}

// LoadConfig loads the embedded defaults and overlays the file at path on
// top of them. An empty path returns the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg, err := DefaultConfig()
	if err != nil {
		return nil, err
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %q: %w", path, err)
	}
	return cfg, nil
}

// Validate 校验顶层配置
func (c *Config) Validate() error {
	if err := c.Snowfall.Validate(); err != nil {
		return err
	}
	if err := ValidateSurface(float64(c.Window.Width), float64(c.Window.Height)); err != nil {
		return err
	}
	if c.Window.TPS <= 0 {
		return fmt.Errorf("tps %d must be positive: %w", c.Window.TPS, ErrInvalidConfiguration)
	}
	if !(c.Terminal.CellWidth > 0) || !(c.Terminal.CellHeight > 0) || c.Terminal.FPS <= 0 {
		return fmt.Errorf("terminal cell %vx%v at %d fps: %w",
			c.Terminal.CellWidth, c.Terminal.CellHeight, c.Terminal.FPS, ErrInvalidConfiguration)
	}
	return nil
}
