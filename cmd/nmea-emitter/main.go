package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/LeoCommon/nmea-emitter/internal/config"
	"github.com/LeoCommon/nmea-emitter/internal/emitter"
	"github.com/LeoCommon/nmea-emitter/internal/pps"
	"github.com/LeoCommon/nmea-emitter/internal/serialport"
	"github.com/LeoCommon/nmea-emitter/pkg/log"
	"github.com/LeoCommon/nmea-emitter/pkg/systemd"
	"go.uber.org/zap"
)

const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// Replaced in tests
var (
	openPort   = serialport.Open
	openPulser = pps.Open
)

func loadConfiguration(flags *config.CLIFlags) (*config.Config, error) {
	// The default path is optional, an explicitly given one is not
	conf, err := config.Load(flags.ConfigPath, !flags.IsSet("config"))
	if err != nil {
		log.Error("an error occurred while trying to load the config file", zap.String("path", flags.ConfigPath), zap.Error(err))
		return nil, err
	}

	flags.Apply(conf)

	if err := conf.Verify(); err != nil {
		log.Error("invalid configuration", zap.Error(err))
		return nil, err
	}

	log.Debug("active config", zap.Any("config", conf), zap.String("path", flags.ConfigPath))
	return conf, nil
}

func notify(send func() error) {
	if err := send(); err != nil && !errors.Is(err, systemd.ErrNoNotifySocket) {
		log.Warn("systemd notification failed", zap.Error(err))
	}
}

func run(args []string) int {
	flags, err := config.ParseCLIFlags(args, os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitOK
		}
		return ExitUsage
	}

	// Initialize logger
	log.Init(flags.Debug)
	defer log.Sync()

	conf, err := loadConfiguration(flags)
	if err != nil {
		return ExitError
	}

	// The config file may enable debug logging as well
	if conf.Debug && !flags.Debug {
		log.Init(true)
	}

	if flags.DumpConfig {
		if err := conf.Save(flags.ConfigPath); err != nil {
			return ExitError
		}
		log.Info("configuration written", zap.String("path", flags.ConfigPath))
		return ExitOK
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	port, err := openPort(conf.Serial.Device, conf.Serial.BaudRate)
	if err != nil {
		return ExitError
	}
	defer port.Close()

	pulser := pps.Nop()
	if conf.PPS.Enabled {
		pulser, err = openPulser(conf.PPS.Options())
		if err != nil {
			log.Error("could not set up pps output", zap.Error(err))
			return ExitError
		}
	}
	defer func() {
		if err := pulser.Close(); err != nil {
			log.Warn("releasing pps lines failed", zap.Error(err))
		}
	}()

	e := emitter.New(port,
		emitter.WithPollInterval(conf.Emitter.PollInterval.Value()),
		emitter.WithPulser(pulser),
		emitter.WithHeartbeat(func() { notify(systemd.EntertainWatchdog) }),
	)

	log.Info("emitting GPRMC sentences", zap.String("device", conf.Serial.Device))
	notify(systemd.Ready)

	err = e.Run(ctx)
	notify(systemd.Stopping)

	if err != nil {
		log.Error("emitter stopped", zap.Uint64("sent", e.Sent()), zap.Error(err))
		return ExitError
	}

	log.Info("exit signal received, emitter stopped", zap.Uint64("sent", e.Sent()))
	return ExitOK
}

func main() {
	os.Exit(run(os.Args[1:]))
}
