package config

import (
	"flag"
	"io"
	"time"
)

type CLIFlags struct {
	ConfigPath string
	Device     string
	BaudRate   int
	Poll       time.Duration
	Debug      bool
	DumpConfig bool

	// names of the flags given on the command line
	set map[string]bool
}

// ParseCLIFlags parses args (without the program name) into CLIFlags
func ParseCLIFlags(args []string, output io.Writer) (*CLIFlags, error) {
	flags := &CLIFlags{set: make(map[string]bool)}

	fs := flag.NewFlagSet(ProductName, flag.ContinueOnError)
	fs.SetOutput(output)

	fs.StringVar(&flags.ConfigPath, "config", DefaultConfigPath, "relative or absolute path to the config file")
	fs.StringVar(&flags.Device, "device", "", "serial device the sentences are written to")
	fs.IntVar(&flags.BaudRate, "baud", 0, "baud rate of the serial device")
	fs.DurationVar(&flags.Poll, "poll", 0, "interval between two clock checks")
	fs.BoolVar(&flags.Debug, "debug", DefaultDebugModeValue, "true if the debug logging should be enabled")
	fs.BoolVar(&flags.DumpConfig, "dump-config", false, "write the effective configuration to the -config path and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	fs.Visit(func(f *flag.Flag) {
		flags.set[f.Name] = true
	})

	return flags, nil
}

// IsSet reports whether the flag was given explicitly
func (f *CLIFlags) IsSet(name string) bool {
	return f.set[name]
}

// Apply overrides the configuration with the explicitly given flags
func (f *CLIFlags) Apply(c *Config) {
	if f.IsSet("device") {
		c.Serial.Device = f.Device
	}
	if f.IsSet("baud") {
		c.Serial.BaudRate = f.BaudRate
	}
	if f.IsSet("poll") {
		c.Emitter.PollInterval = Duration(f.Poll)
	}
	if f.IsSet("debug") {
		c.Debug = f.Debug
	}
}
