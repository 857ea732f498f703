package serialport

import (
	"fmt"
	"io"

	"github.com/LeoCommon/nmea-emitter/pkg/log"
	"go.bug.st/serial"
	"go.uber.org/zap"
)

const (
	DefaultDevice   = "/dev/ttyS0"
	DefaultBaudRate = 9600
)

// Port is the subset of serial.Port the emitter relies on
type Port interface {
	io.WriteCloser
}

type OpenError struct {
	Device string
	err    error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("could not open serial device %s: %v", e.Device, e.err)
}

func (e *OpenError) Unwrap() error {
	return e.err
}

func (e *OpenError) Is(tgt error) bool {
	_, ok := tgt.(*OpenError)
	return ok
}

// Mode returns the 8N1 line settings for the given baud rate
func Mode(baud int) *serial.Mode {
	return &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
}

// Open opens the device exclusively for writing sentences, there is no retry
func Open(device string, baud int) (Port, error) {
	if baud <= 0 {
		return nil, &OpenError{Device: device, err: fmt.Errorf("invalid baud rate %d", baud)}
	}

	p, err := serial.Open(device, Mode(baud))
	if err != nil {
		log.Error("error while opening serial device", zap.String("device", device), zap.Error(err))
		return nil, &OpenError{Device: device, err: err}
	}

	log.Info("serial device opened", zap.String("device", device), zap.Int("baudrate", baud))
	return p, nil
}
