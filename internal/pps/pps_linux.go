//go:build linux

package pps

import (
	"fmt"

	"github.com/LeoCommon/nmea-emitter/pkg/log"
	"github.com/warthog618/go-gpiocdev"
	"go.uber.org/zap"
)

type gpiodOutput struct {
	*output
	chip *gpiocdev.Chip
}

func (g *gpiodOutput) Close() error {
	err := g.output.Close()
	if cerr := g.chip.Close(); err == nil {
		err = cerr
	}
	return err
}

// Open requests both lines as outputs, initially low, on the GPIO character device
func Open(opts Options) (Pulser, error) {
	chip, err := gpiocdev.NewChip(opts.Chip)
	if err != nil {
		return nil, fmt.Errorf("opening gpio chip %s: %w", opts.Chip, err)
	}

	pulse, err := chip.RequestLine(opts.PulseLine, gpiocdev.AsOutput(0), gpiocdev.WithConsumer(consumer))
	if err != nil {
		_ = chip.Close()
		return nil, fmt.Errorf("requesting pulse line %d: %w", opts.PulseLine, err)
	}

	lock, err := chip.RequestLine(opts.LockLine, gpiocdev.AsOutput(0), gpiocdev.WithConsumer(consumer))
	if err != nil {
		_ = pulse.Close()
		_ = chip.Close()
		return nil, fmt.Errorf("requesting lock line %d: %w", opts.LockLine, err)
	}

	log.Info("pps output ready",
		zap.String("chip", opts.Chip),
		zap.Int("pulse_line", opts.PulseLine),
		zap.Int("lock_line", opts.LockLine),
		zap.Duration("pulse_width", opts.PulseWidth))

	return &gpiodOutput{output: newOutput(pulse, lock, opts), chip: chip}, nil
}
