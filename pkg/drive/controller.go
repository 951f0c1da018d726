package drive

import (
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/blockbotics/go-blockbot/internal/log"
)

// ErrWriteFailed is returned when a command was only partially transmitted.
var ErrWriteFailed = errors.New("short write to serial port")

// Firmware command vocabulary. One command per line, newline terminated.
const (
	cmdForward   = "A"
	cmdBackward  = "B"
	cmdTurnLeft  = "L"
	cmdTurnRight = "R"
	cmdRotateCW  = "rC"
	cmdRotateCCW = "rA"
	cmdStop      = "S"
	cmdGrab      = "go"
	cmdRelease   = "rel"
)

// SpeedLevels are the motor speed steps the firmware understands.
var SpeedLevels = []int{30, 50, 80}

// Config holds movement timing parameters.
type Config struct {
	MoveDuration time.Duration // default forward/backward pulse
	TurnDuration time.Duration // default turn/rotation pulse
	StopPause    time.Duration // hold after stop so the firmware latches it
}

// DefaultConfig returns the timings used on the stock chassis.
func DefaultConfig() Config {
	return Config{
		MoveDuration: 500 * time.Millisecond,
		TurnDuration: 300 * time.Millisecond,
		StopPause:    100 * time.Millisecond,
	}
}

// Controller transmits chassis and gripper commands over a serial link.
// The link is a single shared resource: one command is written and completed
// before the next begins, enforced by the mutex. Movement commands are
// pulses - the motors run for the given duration, then a stop is sent,
// all before the call returns.
type Controller struct {
	mu   sync.Mutex
	port Porter
	cfg  Config

	sleep func(time.Duration) // injectable for tests
}

// NewController creates a controller over an open port.
func NewController(port Porter, cfg Config) *Controller {
	return &Controller{
		port:  port,
		cfg:   cfg,
		sleep: time.Sleep,
	}
}

// send writes one newline-terminated command to the port.
// Callers must hold c.mu.
func (c *Controller) send(cmd string) error {
	line := cmd + "\n"
	n, err := c.port.Write([]byte(line))
	if err != nil {
		return err
	}
	if n != len(line) {
		return ErrWriteFailed
	}
	log.Debug("serial command sent", "cmd", cmd)
	return nil
}

// pulse runs a movement command for d, then stops the motors.
func (c *Controller) pulse(cmd string, d time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.send(cmd); err != nil {
		return err
	}
	c.sleep(d)
	if err := c.send(cmdStop); err != nil {
		return err
	}
	c.sleep(c.cfg.StopPause)
	return nil
}

// orDefault substitutes def when d is not positive.
func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

// Forward drives forward for d (default MoveDuration), then stops.
func (c *Controller) Forward(d time.Duration) error {
	return c.pulse(cmdForward, orDefault(d, c.cfg.MoveDuration))
}

// Backward drives backward for d (default MoveDuration), then stops.
func (c *Controller) Backward(d time.Duration) error {
	return c.pulse(cmdBackward, orDefault(d, c.cfg.MoveDuration))
}

// TurnLeft turns left for d (default TurnDuration), then stops.
func (c *Controller) TurnLeft(d time.Duration) error {
	return c.pulse(cmdTurnLeft, orDefault(d, c.cfg.TurnDuration))
}

// TurnRight turns right for d (default TurnDuration), then stops.
func (c *Controller) TurnRight(d time.Duration) error {
	return c.pulse(cmdTurnRight, orDefault(d, c.cfg.TurnDuration))
}

// RotateClockwise rotates in place clockwise for d, then stops.
func (c *Controller) RotateClockwise(d time.Duration) error {
	return c.pulse(cmdRotateCW, orDefault(d, c.cfg.TurnDuration))
}

// RotateCounterClockwise rotates in place counter-clockwise for d, then stops.
func (c *Controller) RotateCounterClockwise(d time.Duration) error {
	return c.pulse(cmdRotateCCW, orDefault(d, c.cfg.TurnDuration))
}

// Stop halts all movement.
func (c *Controller) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.send(cmdStop); err != nil {
		return err
	}
	c.sleep(c.cfg.StopPause)
	return nil
}

// SetSpeed sets the motor speed level. Levels outside SpeedLevels are sent
// anyway but logged, matching firmware behavior of clamping internally.
func (c *Controller) SetSpeed(level int) error {
	known := false
	for _, l := range SpeedLevels {
		if l == level {
			known = true
			break
		}
	}
	if !known {
		log.Warn("speed level outside known steps", "level", level, "known", SpeedLevels)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.send(strconv.Itoa(level))
}

// Grab triggers the arm's grab sequence (approach, clip, rise). The
// transmission returns as soon as the command is on the wire; the physical
// sequence takes several seconds and is waited out by the caller's settle
// deadline.
func (c *Controller) Grab() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.send(cmdGrab)
}

// Release opens the gripper. Settle is the caller's responsibility, as with
// Grab.
func (c *Controller) Release() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.send(cmdRelease)
}

// Close stops the chassis and closes the serial port.
func (c *Controller) Close() error {
	if err := c.Stop(); err != nil {
		log.Warn("stop before close failed", "error", err)
	}
	return c.port.Close()
}
