// Package config loads optional scanner settings from JSON. Fields omitted
// from the file keep their defaults, so partial configs are safe. All
// settings are fixed at construction time; nothing here changes while the
// scan loop is running.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config holds the recognised scanner options. Pointer fields distinguish
// "unset" from an explicit zero, so a JSON file can override any subset.
type Config struct {
	// Serial transport
	Port     *string `json:"port,omitempty"`
	BaudRate *int    `json:"baud_rate,omitempty"`

	// Scan buffer
	Buckets    *int  `json:"buckets,omitempty"`     // 360 or 720
	SanityGate *bool `json:"sanity_gate,omitempty"` // drop distances outside [0,5000]mm

	// Render cadence and pipeline
	Cadence   *string `json:"cadence,omitempty"` // duration string like "50ms"
	Smooth    *bool   `json:"smooth,omitempty"`
	ColorMode *string `json:"color_mode,omitempty"` // "bands" or "gradient"

	// View
	DefaultRangeMM *float64 `json:"default_range_mm,omitempty"`
	MinRangeMM     *float64 `json:"min_range_mm,omitempty"`
	MaxRangeMM     *float64 `json:"max_range_mm,omitempty"`
}

// Defaults matching the sensor firmware and the display this replaces.
const (
	DefaultPort     = "/dev/ttyUSB0"
	DefaultBaudRate = 9600
	DefaultBuckets  = 360
	DefaultCadence  = 50 * time.Millisecond

	DefaultRangeMM = 500
	MinRangeMM     = 100
	MaxRangeMM     = 5000
)

// Load reads a Config from a JSON file. Must have a .json extension and stay
// under the max file size.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks every set field.
func (c *Config) Validate() error {
	if c.BaudRate != nil && *c.BaudRate <= 0 {
		return fmt.Errorf("baud_rate must be positive, got %d", *c.BaudRate)
	}
	if c.Buckets != nil && *c.Buckets != 360 && *c.Buckets != 720 {
		return fmt.Errorf("buckets must be 360 or 720, got %d", *c.Buckets)
	}
	if c.Cadence != nil {
		d, err := time.ParseDuration(*c.Cadence)
		if err != nil {
			return fmt.Errorf("invalid cadence %q: %v", *c.Cadence, err)
		}
		if d < 10*time.Millisecond || d > time.Second {
			return fmt.Errorf("cadence %v out of range [10ms, 1s]", d)
		}
	}
	if c.ColorMode != nil && *c.ColorMode != "bands" && *c.ColorMode != "gradient" {
		return fmt.Errorf("color_mode must be %q or %q, got %q", "bands", "gradient", *c.ColorMode)
	}
	if c.MinRangeMM != nil && *c.MinRangeMM <= 0 {
		return fmt.Errorf("min_range_mm must be positive, got %v", *c.MinRangeMM)
	}
	minR, maxR, defR := c.GetMinRange(), c.GetMaxRange(), c.GetDefaultRange()
	if minR >= maxR {
		return fmt.Errorf("min_range_mm %v must be below max_range_mm %v", minR, maxR)
	}
	if defR < minR || defR > maxR {
		return fmt.Errorf("default_range_mm %v outside [%v, %v]", defR, minR, maxR)
	}
	return nil
}

func (c *Config) GetPort() string {
	if c.Port != nil {
		return *c.Port
	}
	return DefaultPort
}

func (c *Config) GetBaudRate() int {
	if c.BaudRate != nil {
		return *c.BaudRate
	}
	return DefaultBaudRate
}

func (c *Config) GetBuckets() int {
	if c.Buckets != nil {
		return *c.Buckets
	}
	return DefaultBuckets
}

func (c *Config) GetSanityGate() bool {
	if c.SanityGate != nil {
		return *c.SanityGate
	}
	return true
}

// GetCadence returns the render cadence. Validate has already checked the
// duration string, so a parse failure here falls back to the default.
func (c *Config) GetCadence() time.Duration {
	if c.Cadence != nil {
		if d, err := time.ParseDuration(*c.Cadence); err == nil {
			return d
		}
	}
	return DefaultCadence
}

func (c *Config) GetSmooth() bool {
	if c.Smooth != nil {
		return *c.Smooth
	}
	return false
}

func (c *Config) GetColorMode() string {
	if c.ColorMode != nil {
		return *c.ColorMode
	}
	return "bands"
}

func (c *Config) GetDefaultRange() float64 {
	if c.DefaultRangeMM != nil {
		return *c.DefaultRangeMM
	}
	return DefaultRangeMM
}

func (c *Config) GetMinRange() float64 {
	if c.MinRangeMM != nil {
		return *c.MinRangeMM
	}
	return MinRangeMM
}

func (c *Config) GetMaxRange() float64 {
	if c.MaxRangeMM != nil {
		return *c.MaxRangeMM
	}
	return MaxRangeMM
}
