// Package pps drives a pulse-per-second line and a lock indicator line next to the
// serial sentence stream.
//
// The pulse line goes high on every emitted second and drops after the configured
// width. The lock line reports whether the second boundary was picked up within the
// lock threshold.
package pps

import (
	"errors"
	"fmt"
	"time"
)

const (
	DefaultChip          = "gpiochip0"
	DefaultPulseLine     = 5
	DefaultLockLine      = 6
	DefaultPulseWidth    = 100 * time.Millisecond
	DefaultLockThreshold = 100 * time.Microsecond

	consumer = "nmea-emitter-pps"
)

var ErrUnsupported = errors.New("pps output is not supported on this platform")

type Options struct {
	Chip          string
	PulseLine     int
	LockLine      int
	PulseWidth    time.Duration
	LockThreshold time.Duration
}

// Pulser is notified by the emitter loop. Second is called once per emitted
// second, Poll on every loop iteration.
type Pulser interface {
	Second(now time.Time) error
	Poll(now time.Time) error
	Close() error
}

type line interface {
	SetValue(v int) error
	Close() error
}

type output struct {
	pulse line
	lock  line

	width     time.Duration
	threshold time.Duration

	high      bool
	highUntil time.Time
	locked    bool
}

func newOutput(pulse, lock line, opts Options) *output {
	return &output{
		pulse:     pulse,
		lock:      lock,
		width:     opts.PulseWidth,
		threshold: opts.LockThreshold,
	}
}

func (o *output) Second(now time.Time) error {
	if err := o.pulse.SetValue(1); err != nil {
		return fmt.Errorf("setting pulse line: %w", err)
	}

	o.high = true
	o.highUntil = now.Add(o.width)

	locked := Locked(now, o.threshold)
	if locked == o.locked {
		return nil
	}

	if err := o.lock.SetValue(boolToValue(locked)); err != nil {
		return fmt.Errorf("setting lock line: %w", err)
	}
	o.locked = locked
	return nil
}

func (o *output) Poll(now time.Time) error {
	if !o.high || now.Before(o.highUntil) {
		return nil
	}

	// Keep high on failure so the next poll tries again
	if err := o.pulse.SetValue(0); err != nil {
		return fmt.Errorf("clearing pulse line: %w", err)
	}
	o.high = false
	return nil
}

func (o *output) Close() error {
	return errors.Join(
		o.pulse.SetValue(0),
		o.lock.SetValue(0),
		o.pulse.Close(),
		o.lock.Close(),
	)
}

// Locked reports whether now is closer than threshold to a whole second, on
// either side of it
func Locked(now time.Time, threshold time.Duration) bool {
	offset := now.Sub(now.Truncate(time.Second))
	return offset < threshold || time.Second-offset < threshold
}

func boolToValue(b bool) int {
	if b {
		return 1
	}
	return 0
}

type nop struct{}

func (nop) Second(time.Time) error { return nil }
func (nop) Poll(time.Time) error   { return nil }
func (nop) Close() error           { return nil }

// Nop returns a Pulser that does nothing, used when pps output is disabled
func Nop() Pulser {
	return nop{}
}

// IsNop reports whether p is the pulser returned by Nop
func IsNop(p Pulser) bool {
	_, ok := p.(nop)
	return ok
}
