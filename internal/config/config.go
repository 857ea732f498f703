package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/LeoCommon/nmea-emitter/internal/emitter"
	"github.com/LeoCommon/nmea-emitter/internal/pps"
	"github.com/LeoCommon/nmea-emitter/internal/serialport"
	"github.com/LeoCommon/nmea-emitter/pkg/log"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
)

const (
	ProductName = "nmea-emitter"
	ConfigFile  = "config.toml"

	DefaultConfigPath     = "/etc/" + ProductName + "/" + ConfigFile
	DefaultDebugModeValue = false
)

type SerialConfig struct {
	Device   string `toml:"device"`
	BaudRate int    `toml:"baud_rate"`
}

func (s *SerialConfig) Verify() error {
	if s.Device == "" {
		return errors.New("serial.device must not be empty")
	}
	if s.BaudRate <= 0 {
		return fmt.Errorf("serial.baud_rate must be positive, got %d", s.BaudRate)
	}
	return nil
}

type EmitterConfig struct {
	PollInterval Duration `toml:"poll_interval"`
}

// Verify makes sure a changed second is picked up within the same second
func (e *EmitterConfig) Verify() error {
	if p := e.PollInterval.Value(); p <= 0 || p >= time.Second {
		return fmt.Errorf("emitter.poll_interval must be between 0 and 1s, got %s", p)
	}
	return nil
}

type PPSConfig struct {
	Enabled       bool     `toml:"enabled"`
	Chip          string   `toml:"chip,omitempty"`
	PulseLine     int      `toml:"pulse_line"`
	LockLine      int      `toml:"lock_line"`
	PulseWidth    Duration `toml:"pulse_width"`
	LockThreshold Duration `toml:"lock_threshold"`
}

// Verify only checks the section when pps output is enabled
func (p *PPSConfig) Verify() error {
	if !p.Enabled {
		return nil
	}

	if p.Chip == "" {
		return errors.New("pps.chip must not be empty")
	}
	if p.PulseLine < 0 || p.LockLine < 0 {
		return fmt.Errorf("pps lines must not be negative, got pulse %d lock %d", p.PulseLine, p.LockLine)
	}
	if p.PulseLine == p.LockLine {
		return fmt.Errorf("pps.pulse_line and pps.lock_line must differ, both are %d", p.PulseLine)
	}
	if w := p.PulseWidth.Value(); w <= 0 || w >= time.Second {
		return fmt.Errorf("pps.pulse_width must be between 0 and 1s, got %s", w)
	}
	if l := p.LockThreshold.Value(); l <= 0 || l >= time.Second {
		return fmt.Errorf("pps.lock_threshold must be between 0 and 1s, got %s", l)
	}
	return nil
}

func (p *PPSConfig) Options() pps.Options {
	return pps.Options{
		Chip:          p.Chip,
		PulseLine:     p.PulseLine,
		LockLine:      p.LockLine,
		PulseWidth:    p.PulseWidth.Value(),
		LockThreshold: p.LockThreshold.Value(),
	}
}

type Config struct {
	Debug   bool          `toml:"debug"`
	Serial  SerialConfig  `toml:"serial"`
	Emitter EmitterConfig `toml:"emitter"`
	PPS     PPSConfig     `toml:"pps"`
}

// Default returns the settings used when neither file nor flags say otherwise
func Default() *Config {
	return &Config{
		Debug: DefaultDebugModeValue,
		Serial: SerialConfig{
			Device:   serialport.DefaultDevice,
			BaudRate: serialport.DefaultBaudRate,
		},
		Emitter: EmitterConfig{
			PollInterval: Duration(emitter.DefaultPollInterval),
		},
		PPS: PPSConfig{
			Enabled:       false,
			Chip:          pps.DefaultChip,
			PulseLine:     pps.DefaultPulseLine,
			LockLine:      pps.DefaultLockLine,
			PulseWidth:    Duration(pps.DefaultPulseWidth),
			LockThreshold: Duration(pps.DefaultLockThreshold),
		},
	}
}

// Load decodes the file at path over the defaults. A missing file is only an
// error when acceptMissing is false.
func Load(path string, acceptMissing bool) (*Config, error) {
	c := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if acceptMissing && errors.Is(err, fs.ErrNotExist) {
			log.Debug("no config file found, using defaults", zap.String("path", path))
			return c, nil
		}
		return nil, err
	}

	if err = toml.Unmarshal(data, c); err != nil {
		log.Error("failed to unmarshal config file", zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	return c, nil
}

// Verify checks the "hard" conditions the rest of the code relies on
func (c *Config) Verify() error {
	return errors.Join(
		c.Serial.Verify(),
		c.Emitter.Verify(),
		c.PPS.Verify(),
	)
}

// Save writes the configuration to path as TOML
func (c *Config) Save(path string) error {
	configData, err := toml.Marshal(c)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, configData, 0644); err != nil {
		log.Error("Failed to write config file", zap.Error(err))
		return err
	}

	return nil
}

type Duration time.Duration

func (d *Duration) UnmarshalText(b []byte) error {
	x, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(x)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d Duration) Value() time.Duration {
	return time.Duration(d)
}
