// Package config loads the YAML configuration of the demo program.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Pins names the GPIO pins of the bit-banged bus.
type Pins struct {
	Data  string `yaml:"data"`  // e.g. GPIO10
	Clock string `yaml:"clock"` // e.g. GPIO11
	CS    string `yaml:"cs"`    // e.g. GPIO8
}

// SPI selects the port of the hardware-SPI bus.
type SPI struct {
	Port string `yaml:"port"` // empty selects the first port
}

// Scroll configures the scrolling text demo.
type Scroll struct {
	Text      string `yaml:"text"`
	DelayMs   int    `yaml:"delay_ms"`
	Direction string `yaml:"direction"` // "<" or ">"
}

// Config is the demo configuration.
type Config struct {
	Driver       string `yaml:"driver"` // "gpio" | "spi" | "sim"
	Devices      int    `yaml:"devices"`
	Intensity    int    `yaml:"intensity"`
	ScanLimit    int    `yaml:"scan_limit"`
	StrictRanges bool   `yaml:"strict_ranges"`
	LogLevel     string `yaml:"log_level"`
	PreviewAddr  string `yaml:"preview_addr,omitempty"`

	Pins   Pins   `yaml:"pins"`
	SPI    SPI    `yaml:"spi,omitempty"`
	Scroll Scroll `yaml:"scroll"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Driver:    "sim",
		Devices:   4,
		Intensity: 8,
		ScanLimit: 7,
		LogLevel:  "info",
		Pins:      Pins{Data: "GPIO10", Clock: "GPIO11", CS: "GPIO8"},
		Scroll:    Scroll{Text: "Hello", DelayMs: 50, Direction: "<"},
	}
}

// Load reads path on top of Default, so fields missing from the file keep
// their default value.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return c, nil
}

// Save writes c to path as YAML.
func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// Validate checks the fields the demo cannot recover from.
func (c *Config) Validate() error {
	switch c.Driver {
	case "gpio", "spi", "sim":
	default:
		return fmt.Errorf("unknown driver %q", c.Driver)
	}
	switch c.Scroll.Direction {
	case "<", ">":
	default:
		return fmt.Errorf("unknown scroll direction %q", c.Scroll.Direction)
	}
	if c.Driver == "gpio" && (c.Pins.Data == "" || c.Pins.Clock == "" || c.Pins.CS == "") {
		return fmt.Errorf("gpio driver needs data, clock and cs pins")
	}
	if c.Scroll.DelayMs < 0 {
		return fmt.Errorf("negative scroll delay %d", c.Scroll.DelayMs)
	}
	return nil
}

// ScrollDelay returns the per-step scroll delay.
func (c *Config) ScrollDelay() time.Duration {
	return time.Duration(c.Scroll.DelayMs) * time.Millisecond
}
