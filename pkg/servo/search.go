package servo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/blockbotics/go-blockbot/internal/log"
	"github.com/blockbotics/go-blockbot/pkg/vision"
)

// ErrObservation marks a failed perception call. Callers treat it as
// transient and retry on the next cycle, unlike actuation errors.
var ErrObservation = errors.New("observation failed")

// Perception produces a fresh observation per call. Order of the returned
// objects is unspecified; selection is the evaluator's job.
type Perception interface {
	Observe(class vision.Class, colors []vision.Color) ([]vision.Object, error)
}

// Chassis is the subset of actuation the search procedure needs.
// Movement calls are synchronous pulses: the chassis is stopped again before
// the call returns.
type Chassis interface {
	TurnLeft(d time.Duration) error
	TurnRight(d time.Duration) error
	RotateClockwise(d time.Duration) error
	Stop() error
}

// Outcome is the status of a search after a step.
type Outcome int

const (
	Searching Outcome = iota // not terminal, call Step again next cycle
	Aligned
	AttemptsExhausted
	TimedOut
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case Searching:
		return "searching"
	case Aligned:
		return "aligned"
	case AttemptsExhausted:
		return "attempts_exhausted"
	case TimedOut:
		return "timed_out"
	}
	return "unknown"
}

// Result is the report of one search step. Target and Alignment are valid
// only when Outcome is Aligned.
type Result struct {
	Outcome   Outcome
	Target    vision.Object
	Alignment Alignment
}

// Terminal reports whether the search has finished, successfully or not.
func (r Result) Terminal() bool {
	return r.Outcome != Searching
}

// Search finds an object of a given class and color set and centers the
// chassis on it. It is incremental: each Step performs exactly one
// observe-decide-act cycle and issues at most one motion command, so the
// caller's control loop stays responsive to operator signals between steps.
//
// Blind misses (nothing visible) consume the attempt budget and trigger a
// fixed clockwise scan pulse. A visible but off-center target triggers a
// proportional correction turn and does not consume the budget - correcting
// must never exhaust the blind-search allowance.
type Search struct {
	cfg        Config
	perception Perception
	chassis    Chassis

	class  vision.Class
	colors []vision.Color

	started  bool
	deadline time.Time
	attempts int

	now func() time.Time // injectable for tests
}

// NewSearch creates a search for the given target class and colors.
func NewSearch(cfg Config, p Perception, ch Chassis, class vision.Class, colors []vision.Color) *Search {
	return &Search{
		cfg:        cfg,
		perception: p,
		chassis:    ch,
		class:      class,
		colors:     colors,
		now:        time.Now,
	}
}

// Attempts returns how many blind search attempts have been consumed.
func (s *Search) Attempts() int {
	return s.attempts
}

// Reset re-arms the search: attempt count zeroed, timeout deadline restarted
// on the next Step.
func (s *Search) Reset() {
	s.started = false
	s.attempts = 0
}

// Step runs one search cycle. A non-nil error means the observation or a
// command transmission failed; the search state is unchanged and the caller
// decides whether to retry or abort. Terminal results always leave the
// chassis stopped.
func (s *Search) Step() (Result, error) {
	now := s.now()
	if !s.started {
		s.started = true
		s.deadline = now.Add(s.cfg.Timeout)
	}

	if now.After(s.deadline) {
		if err := s.chassis.Stop(); err != nil {
			return Result{Outcome: TimedOut}, fmt.Errorf("stop after timeout: %w", err)
		}
		return Result{Outcome: TimedOut}, nil
	}

	objects, err := s.perception.Observe(s.class, s.colors)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %s: %w", ErrObservation, s.class, err)
	}

	target, found := SelectLargest(objects)
	if !found {
		if s.attempts >= s.cfg.MaxSearchAttempts {
			if err := s.chassis.Stop(); err != nil {
				return Result{Outcome: AttemptsExhausted}, fmt.Errorf("stop after exhausted search: %w", err)
			}
			return Result{Outcome: AttemptsExhausted}, nil
		}
		s.attempts++
		log.Debug("target not visible, scanning", "class", s.class.String(), "attempt", s.attempts)
		if err := s.chassis.RotateClockwise(s.cfg.SearchTurn); err != nil {
			return Result{}, fmt.Errorf("scan rotate: %w", err)
		}
		return Result{Outcome: Searching}, nil
	}

	// Target visible: blind-search budget starts over
	s.attempts = 0

	a := Evaluate(target, s.cfg.BandFor(s.class))

	if abs(a.Offset) <= s.cfg.Tolerance {
		if err := s.chassis.Stop(); err != nil {
			return Result{Outcome: Aligned, Target: target, Alignment: a}, fmt.Errorf("stop after align: %w", err)
		}
		log.Info("target aligned",
			"class", s.class.String(),
			"color", target.Color.String(),
			"offset", a.Offset,
			"distance", a.Distance.String())
		return Result{Outcome: Aligned, Target: target, Alignment: a}, nil
	}

	// Visible but off-center: one correction turn toward zero error
	d := s.cfg.TurnDuration(a.Offset)
	log.Debug("correcting alignment",
		"class", s.class.String(),
		"offset", a.Offset,
		"turn", d)

	if a.Offset > 0 {
		err = s.chassis.TurnRight(d)
	} else {
		err = s.chassis.TurnLeft(d)
	}
	if err != nil {
		return Result{}, fmt.Errorf("correction turn: %w", err)
	}
	return Result{Outcome: Searching}, nil
}

// Run steps the search until a terminal outcome or context cancellation.
// Intended for standalone use; the mission state machine calls Step directly
// so it can interleave operator signal polling.
func (s *Search) Run(ctx context.Context) (Result, error) {
	for {
		select {
		case <-ctx.Done():
			if err := s.chassis.Stop(); err != nil {
				return Result{}, fmt.Errorf("stop on cancel: %w", err)
			}
			return Result{}, ctx.Err()
		default:
		}

		res, err := s.Step()
		if err != nil {
			return res, err
		}
		if res.Terminal() {
			return res, nil
		}
	}
}

// abs returns the absolute value of x.
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
