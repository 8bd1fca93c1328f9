package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	sonyir "github.com/krupski/sony-ir"
)

// Pins names the GPIO lines used by the host transmitter, as known to periph.io.
type Pins struct {
	LED    string `yaml:"led"`
	Button string `yaml:"button"`
	Select string `yaml:"select"`
}

// Config holds the settings of the host side tools.
type Config struct {
	CarrierHz     uint32 `yaml:"carrier_hz"`
	Repeat        uint16 `yaml:"repeat"`
	GapMS         uint16 `yaml:"gap_ms"`
	Debounce      int    `yaml:"debounce_samples"`
	PressWindowMS int    `yaml:"press_window_ms"`
	Pins          Pins   `yaml:"pins"`
	LogLevel      string `yaml:"log_level"`
}

// Default matches the shutter remote firmware.
func Default() Config {
	return Config{
		CarrierHz:     sonyir.Freq40Khz,
		Repeat:        sonyir.ShutterRepeat,
		GapMS:         0,
		Debounce:      sonyir.DefaultDebounce,
		PressWindowMS: 250,
		Pins: Pins{
			LED:    "GPIO18",
			Button: "GPIO17",
			Select: "GPIO27",
		},
		LogLevel: "info",
	}
}

// Load reads path over the defaults, then applies SONYIR_* environment
// overrides. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	carrier, err := envUint("SONYIR_CARRIER_HZ", uint64(cfg.CarrierHz), 32)
	if err != nil {
		return cfg, err
	}
	cfg.CarrierHz = uint32(carrier)
	repeat, err := envUint("SONYIR_REPEAT", uint64(cfg.Repeat), 16)
	if err != nil {
		return cfg, err
	}
	cfg.Repeat = uint16(repeat)
	gap, err := envUint("SONYIR_GAP_MS", uint64(cfg.GapMS), 16)
	if err != nil {
		return cfg, err
	}
	cfg.GapMS = uint16(gap)
	if cfg.Debounce, err = envInt("SONYIR_DEBOUNCE", cfg.Debounce); err != nil {
		return cfg, err
	}
	if cfg.PressWindowMS, err = envInt("SONYIR_PRESS_WINDOW_MS", cfg.PressWindowMS); err != nil {
		return cfg, err
	}
	cfg.Pins.LED = envStr("SONYIR_LED_PIN", cfg.Pins.LED)
	cfg.Pins.Button = envStr("SONYIR_BUTTON_PIN", cfg.Pins.Button)
	cfg.Pins.Select = envStr("SONYIR_SELECT_PIN", cfg.Pins.Select)
	cfg.LogLevel = envStr("SONYIR_LOG_LEVEL", cfg.LogLevel)

	return cfg, cfg.Validate()
}

const (
	minCarrierHz = 10000
	maxCarrierHz = 500000
)

var (
	ErrCarrier  = errors.New("carrier frequency out of range")
	ErrDebounce = errors.New("debounce samples must be positive")
	ErrPins     = errors.New("led and button pins are required")
)

// Validate rejects settings the transmitter cannot honour.
func (c Config) Validate() error {
	if c.CarrierHz < minCarrierHz || c.CarrierHz > maxCarrierHz {
		return fmt.Errorf("%w: %d Hz not in [%d, %d]", ErrCarrier, c.CarrierHz, minCarrierHz, maxCarrierHz)
	}
	if c.Debounce <= 0 {
		return ErrDebounce
	}
	if c.Pins.LED == "" || c.Pins.Button == "" {
		return ErrPins
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c Config) Level() (logrus.Level, error) {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return lvl, fmt.Errorf("log level: %w", err)
	}
	return lvl, nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

// envUint parses key as an unsigned integer that must fit in bits.
func envUint(key string, fallback uint64, bits int) (uint64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseUint(v, 10, bits)
	if err != nil {
		return fallback, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
