// Package config loads scratchcard settings from a TOML file, the
// environment and command-line overrides, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	EnvListenAddr = "SCRATCHCARD_LISTEN"
	EnvDevMode    = "SCRATCHCARD_DEV"
	EnvBackground = "SCRATCHCARD_BACKGROUND"
	EnvForeground = "SCRATCHCARD_FOREGROUND"
	EnvStdioLog   = "SCRATCHCARD_STDIO_LOG"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

type Images struct {
	// Background is revealed by scratching; Foreground covers it.
	// Either may be a file path or an http(s) URL.
	Background string `toml:"background"`
	Foreground string `toml:"foreground"`

	// StrictSize rejects layers of differing dimensions instead of
	// scaling the foreground to the background size.
	StrictSize bool `toml:"strict_size"`

	// LoadTimeout bounds the whole two-image load, e.g. "15s".
	LoadTimeout string `toml:"load_timeout"`
}

type Stroke struct {
	Width float64 `toml:"width"`
}

type Display struct {
	Device     string `toml:"device"`
	PageWidth  int    `toml:"page_width"`
	PageHeight int    `toml:"page_height"`
	NoQRCode   bool   `toml:"no_qrcode"`
}

type Input struct {
	// Devices is a glob of evdev nodes to read pointer input from.
	Devices string `toml:"devices"`
}

type Web struct {
	ListenAddr string `toml:"listen"`
	DevMode    bool   `toml:"dev"`
	StaticDir  string `toml:"static_dir"`
}

type Config struct {
	Images  Images  `toml:"images"`
	Stroke  Stroke  `toml:"stroke"`
	Display Display `toml:"display"`
	Input   Input   `toml:"input"`
	Web     Web     `toml:"web"`
}

// Default returns the built-in settings. The listen address differs per
// binary, so callers pass it in.
func Default(listenAddr string) Config {
	return Config{
		Images: Images{
			Background:  "images/back.png",
			Foreground:  "images/front.jpg",
			LoadTimeout: "15s",
		},
		Stroke:  Stroke{Width: 50},
		Display: Display{Device: "/dev/fb0", PageWidth: 1280, PageHeight: 720},
		Input:   Input{Devices: "/dev/input/event*"},
		Web:     Web{ListenAddr: listenAddr},
	}
}

// Load reads path (if non-empty) over the defaults, then applies
// environment overrides and validates the result.
func Load(path, defaultListenAddr string) (Config, error) {
	cfg := Default(defaultListenAddr)
	if path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, 0, len(undecoded))
			for _, key := range undecoded {
				keys = append(keys, key.String())
			}
			return Config{}, fmt.Errorf("%w: unknown keys in %s: %s", ErrInvalid, path, strings.Join(keys, ", "))
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (cfg *Config) applyEnv() error {
	if v := os.Getenv(EnvListenAddr); v != "" {
		cfg.Web.ListenAddr = v
	}
	if raw := os.Getenv(EnvDevMode); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("%w: %s must be a boolean (got %q): %v", ErrInvalid, EnvDevMode, raw, err)
		}
		cfg.Web.DevMode = parsed
	}
	if v := os.Getenv(EnvBackground); v != "" {
		cfg.Images.Background = v
	}
	if v := os.Getenv(EnvForeground); v != "" {
		cfg.Images.Foreground = v
	}
	return nil
}

func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.Images.Background) == "" || strings.TrimSpace(cfg.Images.Foreground) == "" {
		return fmt.Errorf("%w: both images must be set", ErrInvalid)
	}
	if cfg.Stroke.Width <= 0 {
		return fmt.Errorf("%w: stroke width must be positive (got %v)", ErrInvalid, cfg.Stroke.Width)
	}
	if cfg.Display.PageWidth <= 0 || cfg.Display.PageHeight <= 0 {
		return fmt.Errorf("%w: page size must be positive (got %dx%d)", ErrInvalid, cfg.Display.PageWidth, cfg.Display.PageHeight)
	}
	if _, err := cfg.LoadTimeout(); err != nil {
		return err
	}
	return nil
}

// LoadTimeout parses Images.LoadTimeout. Zero means no timeout.
func (cfg Config) LoadTimeout() (time.Duration, error) {
	raw := strings.TrimSpace(cfg.Images.LoadTimeout)
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: load_timeout %q: %v", ErrInvalid, raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: load_timeout must not be negative", ErrInvalid)
	}
	return d, nil
}
