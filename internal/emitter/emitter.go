package emitter

import (
	"context"
	"io"
	"time"

	"github.com/LeoCommon/nmea-emitter/internal/gprmc"
	"github.com/LeoCommon/nmea-emitter/internal/pps"
	"github.com/LeoCommon/nmea-emitter/pkg/log"
	"go.uber.org/zap"
)

const DefaultPollInterval = 20 * time.Millisecond

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

type Option func(e *Emitter)

// WithClock replaces the local wall clock
func WithClock(c Clock) Option {
	return func(e *Emitter) {
		e.clock = c
	}
}

func WithPollInterval(d time.Duration) Option {
	return func(e *Emitter) {
		e.poll = d
	}
}

// WithPulser attaches a pps output. Unless it is the no-op pulser, the loop
// also wakes up at each second boundary so the pulse edge lines up with it.
func WithPulser(p pps.Pulser) Option {
	return func(e *Emitter) {
		e.pulser = p
		e.aligned = !pps.IsNop(p)
	}
}

// WithHeartbeat registers a function that runs after every sentence that was written
func WithHeartbeat(fn func()) Option {
	return func(e *Emitter) {
		e.heartbeat = fn
	}
}

// Emitter writes one GPRMC sentence per wall-clock second to a single port.
// It is not safe for concurrent use, Run owns the port until it returns.
type Emitter struct {
	port      io.Writer
	clock     Clock
	poll      time.Duration
	pulser    pps.Pulser
	aligned   bool
	heartbeat func()

	sent uint64
}

func New(port io.Writer, opts ...Option) *Emitter {
	e := &Emitter{
		port:      port,
		clock:     systemClock{},
		poll:      DefaultPollInterval,
		pulser:    pps.Nop(),
		heartbeat: func() {},
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Sent returns the number of sentences written so far
func (e *Emitter) Sent() uint64 {
	return e.sent
}

// Run polls the clock and emits a sentence whenever the unix second changes.
// It returns nil once ctx is cancelled and a *WriteError on the first failed write.
// Seconds skipped between two polls are not back-filled.
func (e *Emitter) Run(ctx context.Context) error {
	timer := time.NewTimer(e.poll)
	defer timer.Stop()

	last := e.clock.Now().Unix()
	log.Debug("emitter loop started", zap.Int64("second", last), zap.Duration("poll", e.poll))

	for {
		started := time.Now()
		now := e.clock.Now()

		if second := now.Unix(); second != last {
			if err := e.pulser.Second(now); err != nil {
				log.Warn("pps pulse failed", zap.Error(err))
			}

			if err := e.emit(now); err != nil {
				return err
			}

			last = second
		}

		if err := e.pulser.Poll(now); err != nil {
			log.Warn("pps poll failed", zap.Error(err))
		}

		timer.Reset(e.wait(now, time.Since(started)))

		select {
		case <-ctx.Done():
			log.Debug("emitter loop stopped", zap.Uint64("sent", e.sent))
			return nil
		case <-timer.C:
		}
	}
}

// wait returns the poll interval, cut short to the next second boundary when
// the loop is aligned. spent is the time the current iteration already took.
func (e *Emitter) wait(now time.Time, spent time.Duration) time.Duration {
	if !e.aligned {
		return e.poll
	}

	next := now.Truncate(time.Second).Add(time.Second).Sub(now) - spent
	if next < 0 {
		return 0
	}
	return min(next, e.poll)
}

func (e *Emitter) emit(now time.Time) error {
	sentence := gprmc.Format(now)

	if err := writeAll(e.port, []byte(sentence)); err != nil {
		log.Error("serial write failed", zap.String("sentence", sentence), zap.Error(err))
		return &WriteError{Second: now.Unix(), Sentence: sentence, err: err}
	}

	e.sent++
	log.Debug("sentence sent", zap.String("sentence", sentence))

	e.heartbeat()
	return nil
}

// writeAll finishes partial writes, it never repeats a failed one
func writeAll(w io.Writer, b []byte) error {
	for len(b) > 0 {
		n, err := w.Write(b)
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
		b = b[n:]
	}

	return nil
}
