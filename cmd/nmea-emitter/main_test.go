package main

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/LeoCommon/nmea-emitter/internal/config"
	"github.com/LeoCommon/nmea-emitter/internal/pps"
	"github.com/LeoCommon/nmea-emitter/internal/serialport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingPort struct {
	mu     sync.Mutex
	writes int
	closed bool
}

func (p *failingPort) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.writes++
	return 0, errors.New("device disconnected")
}

func (p *failingPort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func emptyConfig(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), config.ConfigFile)
	require.NoError(t, os.WriteFile(path, nil, 0644))
	return path
}

func TestOpenFailureExitsBeforeLoop(t *testing.T) {
	t.Setenv("NOTIFY_SOCKET", "")
	device := filepath.Join(t.TempDir(), "ttyGone")

	code := run([]string{"-config", emptyConfig(t), "-device", device})
	assert.Equal(t, ExitError, code)
}

func TestWriteFailureExits(t *testing.T) {
	t.Setenv("NOTIFY_SOCKET", "")

	port := &failingPort{}
	var opened string
	openPort = func(device string, baud int) (serialport.Port, error) {
		opened = device
		return port, nil
	}
	t.Cleanup(func() { openPort = serialport.Open })

	done := make(chan int, 1)
	go func() {
		done <- run([]string{"-config", emptyConfig(t), "-device", "/dev/ttyFake0", "-poll", "5ms"})
	}()

	select {
	case code := <-done:
		assert.Equal(t, ExitError, code)
	case <-time.After(3 * time.Second):
		t.Fatal("a failed write did not stop the emitter")
	}

	assert.Equal(t, "/dev/ttyFake0", opened)
	assert.Equal(t, 1, port.writes)
	assert.True(t, port.closed)
}

func TestPPSFailureExits(t *testing.T) {
	t.Setenv("NOTIFY_SOCKET", "")

	port := &failingPort{}
	openPort = func(string, int) (serialport.Port, error) { return port, nil }
	openPulser = func(pps.Options) (pps.Pulser, error) { return nil, pps.ErrUnsupported }
	t.Cleanup(func() {
		openPort = serialport.Open
		openPulser = pps.Open
	})

	cfg := filepath.Join(t.TempDir(), config.ConfigFile)
	require.NoError(t, os.WriteFile(cfg, []byte("[pps]\nenabled = true\n"), 0644))

	assert.Equal(t, ExitError, run([]string{"-config", cfg}))
	assert.Zero(t, port.writes)
	assert.True(t, port.closed)
}

func TestInvalidConfiguration(t *testing.T) {
	assert.Equal(t, ExitError, run([]string{"-config", emptyConfig(t), "-baud", "0"}))
	assert.Equal(t, ExitError, run([]string{"-config", filepath.Join(t.TempDir(), "missing.toml")}))
}

func TestUsage(t *testing.T) {
	assert.Equal(t, ExitUsage, run([]string{"-no-such-flag"}))
	assert.Equal(t, ExitOK, run([]string{"-h"}))
}

func TestDumpConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.ConfigFile)

	code := run([]string{"-config", path, "-dump-config", "-device", "/dev/ttyUSB1"})
	assert.Equal(t, ExitError, code, "an explicit config path has to exist")

	require.NoError(t, os.WriteFile(path, []byte("[serial]\nbaud_rate = 4800\n"), 0644))
	code = run([]string{"-config", path, "-dump-config", "-device", "/dev/ttyUSB1"})
	require.Equal(t, ExitOK, code)

	c, err := config.Load(path, false)
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB1", c.Serial.Device)
	assert.Equal(t, 4800, c.Serial.BaudRate)
}
