package drive

import (
	"bytes"
	"errors"
	"testing"
	"time"
)

// fakePort captures writes and can simulate faults.
type fakePort struct {
	buf        bytes.Buffer
	shortWrite bool
	writeErr   error
	closed     bool
}

func (p *fakePort) Write(b []byte) (int, error) {
	if p.writeErr != nil {
		return 0, p.writeErr
	}
	if p.shortWrite {
		n := len(b) - 1
		p.buf.Write(b[:n])
		return n, nil
	}
	return p.buf.Write(b)
}

func (p *fakePort) Close() error {
	p.closed = true
	return nil
}

func newTestController(port *fakePort) (*Controller, *[]time.Duration) {
	c := NewController(port, DefaultConfig())
	var sleeps []time.Duration
	c.sleep = func(d time.Duration) { sleeps = append(sleeps, d) }
	return c, &sleeps
}

func TestPulseCommands(t *testing.T) {
	tests := []struct {
		name string
		call func(*Controller) error
		want string
	}{
		{"forward", func(c *Controller) error { return c.Forward(time.Second) }, "A\nS\n"},
		{"backward", func(c *Controller) error { return c.Backward(time.Second) }, "B\nS\n"},
		{"turn left", func(c *Controller) error { return c.TurnLeft(time.Second) }, "L\nS\n"},
		{"turn right", func(c *Controller) error { return c.TurnRight(time.Second) }, "R\nS\n"},
		{"rotate cw", func(c *Controller) error { return c.RotateClockwise(time.Second) }, "rC\nS\n"},
		{"rotate ccw", func(c *Controller) error { return c.RotateCounterClockwise(time.Second) }, "rA\nS\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			port := &fakePort{}
			c, sleeps := newTestController(port)

			if err := tt.call(c); err != nil {
				t.Fatalf("%s: %v", tt.name, err)
			}
			if got := port.buf.String(); got != tt.want {
				t.Errorf("wire bytes = %q, want %q", got, tt.want)
			}
			// The motion pulse runs for the requested duration, then the stop
			// is held for the latch pause.
			if len(*sleeps) != 2 || (*sleeps)[0] != time.Second || (*sleeps)[1] != 100*time.Millisecond {
				t.Errorf("sleeps = %v, want [1s 100ms]", *sleeps)
			}
		})
	}
}

func TestPulseDefaultDurations(t *testing.T) {
	port := &fakePort{}
	c, sleeps := newTestController(port)

	if err := c.Forward(0); err != nil {
		t.Fatalf("Forward: %v", err)
	}
	if (*sleeps)[0] != DefaultConfig().MoveDuration {
		t.Errorf("pulse = %v, want default %v", (*sleeps)[0], DefaultConfig().MoveDuration)
	}

	*sleeps = nil
	if err := c.TurnLeft(-time.Second); err != nil {
		t.Fatalf("TurnLeft: %v", err)
	}
	if (*sleeps)[0] != DefaultConfig().TurnDuration {
		t.Errorf("pulse = %v, want default %v", (*sleeps)[0], DefaultConfig().TurnDuration)
	}
}

func TestStop(t *testing.T) {
	port := &fakePort{}
	c, _ := newTestController(port)

	if err := c.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if got := port.buf.String(); got != "S\n" {
		t.Errorf("wire bytes = %q, want %q", got, "S\n")
	}
}

func TestSetSpeed(t *testing.T) {
	port := &fakePort{}
	c, _ := newTestController(port)

	if err := c.SetSpeed(50); err != nil {
		t.Fatalf("SetSpeed: %v", err)
	}
	if got := port.buf.String(); got != "50\n" {
		t.Errorf("wire bytes = %q, want %q", got, "50\n")
	}
}

func TestGripperCommandsDoNotStop(t *testing.T) {
	port := &fakePort{}
	c, _ := newTestController(port)

	if err := c.Grab(); err != nil {
		t.Fatalf("Grab: %v", err)
	}
	if err := c.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	// The arm sequences run on the firmware; no stop is interleaved.
	if got := port.buf.String(); got != "go\nrel\n" {
		t.Errorf("wire bytes = %q, want %q", got, "go\nrel\n")
	}
}

func TestShortWrite(t *testing.T) {
	port := &fakePort{shortWrite: true}
	c, _ := newTestController(port)

	err := c.Forward(time.Second)
	if !errors.Is(err, ErrWriteFailed) {
		t.Errorf("error = %v, want ErrWriteFailed", err)
	}
}

func TestWriteErrorPropagates(t *testing.T) {
	boom := errors.New("device unplugged")
	port := &fakePort{writeErr: boom}
	c, _ := newTestController(port)

	if err := c.Stop(); !errors.Is(err, boom) {
		t.Errorf("error = %v, want %v", err, boom)
	}
}

func TestCloseStopsFirst(t *testing.T) {
	port := &fakePort{}
	c, _ := newTestController(port)

	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if got := port.buf.String(); got != "S\n" {
		t.Errorf("wire bytes = %q, want stop before close", got)
	}
	if !port.closed {
		t.Error("port not closed")
	}
}
