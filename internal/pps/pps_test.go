package pps

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLine struct {
	values []int
	closed bool
	err    error
}

func (f *fakeLine) SetValue(v int) error {
	if f.err != nil {
		return f.err
	}
	f.values = append(f.values, v)
	return nil
}

func (f *fakeLine) Close() error {
	f.closed = true
	return nil
}

func (f *fakeLine) last() int {
	if len(f.values) == 0 {
		return 0
	}
	return f.values[len(f.values)-1]
}

func testOptions() Options {
	return Options{
		Chip:          DefaultChip,
		PulseLine:     DefaultPulseLine,
		LockLine:      DefaultLockLine,
		PulseWidth:    DefaultPulseWidth,
		LockThreshold: DefaultLockThreshold,
	}
}

func TestPulseWidth(t *testing.T) {
	pulse, lock := &fakeLine{}, &fakeLine{}
	o := newOutput(pulse, lock, testOptions())

	start := time.Date(2024, time.March, 23, 14, 5, 9, int(3*time.Millisecond), time.UTC)
	require.NoError(t, o.Second(start))
	assert.Equal(t, 1, pulse.last())

	// The width is measured from the rising edge, not from the second boundary
	require.NoError(t, o.Poll(start.Add(DefaultPulseWidth-time.Millisecond)))
	assert.Equal(t, []int{1}, pulse.values)

	require.NoError(t, o.Poll(start.Add(DefaultPulseWidth)))
	assert.Equal(t, []int{1, 0}, pulse.values)

	// Nothing more to do until the next second
	require.NoError(t, o.Poll(start.Add(500*time.Millisecond)))
	assert.Equal(t, []int{1, 0}, pulse.values)
}

func TestLockIndicator(t *testing.T) {
	pulse, lock := &fakeLine{}, &fakeLine{}
	o := newOutput(pulse, lock, testOptions())

	base := time.Date(2024, time.March, 23, 14, 5, 9, 0, time.UTC)

	require.NoError(t, o.Second(base.Add(40*time.Microsecond)))
	assert.Equal(t, []int{1}, lock.values)

	// Unchanged state is not written again
	require.NoError(t, o.Second(base.Add(2*time.Second-30*time.Microsecond)))
	assert.Equal(t, []int{1}, lock.values)

	require.NoError(t, o.Second(base.Add(2*time.Second+time.Millisecond)))
	assert.Equal(t, []int{1, 0}, lock.values)
}

func TestLocked(t *testing.T) {
	base := time.Date(2024, time.March, 23, 14, 5, 9, 0, time.UTC)

	tests := []struct {
		offset time.Duration
		want   bool
	}{
		{0, true},
		{99 * time.Microsecond, true},
		{100 * time.Microsecond, false},
		{time.Millisecond, false},
		{500 * time.Millisecond, false},
		{time.Second - 100*time.Microsecond, false},
		{time.Second - 99*time.Microsecond, true},
		{-10 * time.Microsecond, true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Locked(base.Add(tt.offset), DefaultLockThreshold), "offset %s", tt.offset)
	}
}

func TestPulseLineFailure(t *testing.T) {
	pulse, lock := &fakeLine{err: errors.New("device gone")}, &fakeLine{}
	o := newOutput(pulse, lock, testOptions())

	err := o.Second(time.Now())
	assert.ErrorContains(t, err, "pulse line")
	assert.Empty(t, lock.values)
}

func TestClose(t *testing.T) {
	pulse, lock := &fakeLine{}, &fakeLine{}
	o := newOutput(pulse, lock, testOptions())

	require.NoError(t, o.Second(time.Date(2024, time.March, 23, 14, 5, 9, 0, time.UTC)))
	require.NoError(t, o.Close())

	assert.Equal(t, 0, pulse.last())
	assert.Equal(t, 0, lock.last())
	assert.True(t, pulse.closed)
	assert.True(t, lock.closed)
}

func TestNop(t *testing.T) {
	p := Nop()
	assert.NoError(t, p.Second(time.Now()))
	assert.NoError(t, p.Poll(time.Now()))
	assert.NoError(t, p.Close())

	assert.True(t, IsNop(p))
	assert.False(t, IsNop(newOutput(&fakeLine{}, &fakeLine{}, testOptions())))
}
