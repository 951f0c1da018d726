package mission

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/blockbotics/go-blockbot/internal/log"
	"github.com/blockbotics/go-blockbot/pkg/servo"
	"github.com/blockbotics/go-blockbot/pkg/vision"
)

// Gripper is the arm subset of actuation the machine needs.
type Gripper interface {
	Grab() error
	Release() error
}

// Drive is the chassis subset of actuation the machine needs: everything the
// search procedure uses plus linear approach/retreat pulses.
type Drive interface {
	servo.Chassis
	Forward(d time.Duration) error
	Backward(d time.Duration) error
}

// Config holds the task-level timing and target parameters.
type Config struct {
	Servo servo.Config

	// StateTimeout is the ceiling on total time spent in FIND_BLOCK or
	// ALIGN_TO_TARGET_SHEET across all search attempts. Exceeding it surfaces
	// a stalled condition; the machine stays in state and keeps retrying.
	StateTimeout time.Duration

	// Settle durations after gripper commands. The firmware sequences take
	// this long physically; the machine waits them out with a deadline.
	GrabSettle    time.Duration
	ReleaseSettle time.Duration

	// Distance correction pulses while aligning to the target sheet.
	ApproachStep time.Duration
	RetreatStep  time.Duration

	// BlockColors are the colors pursued in FIND_BLOCK.
	BlockColors []vision.Color
}

// DefaultConfig returns the task parameters tuned on the stock chassis.
func DefaultConfig() Config {
	return Config{
		Servo:         servo.DefaultConfig(),
		StateTimeout:  30 * time.Second,
		GrabSettle:    4 * time.Second,
		ReleaseSettle: 1500 * time.Millisecond,
		ApproachStep:  400 * time.Millisecond,
		RetreatStep:   300 * time.Millisecond,
		BlockColors:   vision.BlockColors(),
	}
}

// Machine is the task state machine. It owns the single TaskContext: current
// state, held block color, completion counter and per-state deadlines. All
// mutation happens inside Step; one Step is one synchronous control cycle
// issuing at most one motion command.
type Machine struct {
	cfg        Config
	perception servo.Perception
	drive      Drive
	gripper    Gripper

	mu sync.Mutex

	state           State
	held            vision.Color
	hasHeld         bool
	blocksCompleted int
	enteredAt       time.Time
	settleAt        time.Time
	search          *servo.Search
	runID           string
	stalled         bool
	stallReason     string
	lastErr         string
	done            bool

	now       func() time.Time                                  // injectable for tests
	newSearch func(vision.Class, []vision.Color) *servo.Search // injectable for tests
}

// NewMachine creates a machine in FIND_BLOCK.
func NewMachine(cfg Config, p servo.Perception, d Drive, g Gripper) *Machine {
	m := &Machine{
		cfg:        cfg,
		perception: p,
		drive:      d,
		gripper:    g,
		now:        time.Now,
	}
	m.newSearch = func(class vision.Class, colors []vision.Color) *servo.Search {
		return servo.NewSearch(cfg.Servo, p, d, class, colors)
	}

	m.state = StateFindBlock
	m.enteredAt = m.now()
	m.runID = uuid.NewString()
	m.search = m.newSearch(vision.Block, cfg.BlockColors)
	return m
}

// Status returns a snapshot for logs and the dashboard.
func (m *Machine) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Status{
		State:           m.state.String(),
		RunID:           m.runID,
		BlocksCompleted: m.blocksCompleted,
		Stalled:         m.stalled,
		StallReason:     m.stallReason,
		LastError:       m.lastErr,
		Done:            m.done,
	}
	if m.hasHeld {
		s.HeldColor = m.held.String()
	}
	if m.search != nil {
		s.SearchAttempts = m.search.Attempts()
	}
	return s
}

// Done reports whether the machine has been shut down by a quit signal.
func (m *Machine) Done() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.done
}

// Step executes one control cycle: apply the polled operator signal, check
// the state deadline, and run the current state's action. Errors from
// actuation are absorbed into the failsafe path (stop motion, go Idle); the
// returned error is reserved for the quit shutdown stop failing.
func (m *Machine) Step(sig Signal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.done {
		return nil
	}

	switch sig {
	case SignalQuit:
		log.Info("quit signal received", "state", m.state.String())
		m.done = true
		if err := m.drive.Stop(); err != nil {
			return fmt.Errorf("stop on quit: %w", err)
		}
		return nil
	case SignalReset:
		log.Info("reset signal received", "state", m.state.String())
		m.reset()
		return nil
	case SignalContinue:
		if m.state == StateIdle {
			log.Info("continuing to next block", "completed", m.blocksCompleted)
			m.enter(StateFindBlock)
		} else {
			log.Warn("continue ignored outside IDLE", "state", m.state.String())
		}
		return nil
	}

	m.checkStateDeadline()

	switch m.state {
	case StateFindBlock:
		m.stepFind()
	case StateGrabBlock:
		m.stepGrab()
	case StateAlignSheet:
		m.stepAlign()
	case StateDropBlock:
		m.stepDrop()
	case StateIdle:
		// Motion stopped on entry; nothing to do until a signal arrives
	}
	return nil
}

// checkStateDeadline surfaces the stalled condition when a searching state
// has been active past its ceiling.
func (m *Machine) checkStateDeadline() {
	if m.state != StateFindBlock && m.state != StateAlignSheet {
		return
	}
	if m.stalled {
		return
	}
	elapsed := m.now().Sub(m.enteredAt)
	if elapsed > m.cfg.StateTimeout {
		m.stalled = true
		m.stallReason = "state_timeout"
		log.Warn("state stalled",
			"state", m.state.String(),
			"elapsed", elapsed,
			"reason", m.stallReason)
	}
}

// enter transitions to a new state and runs its entry bookkeeping.
func (m *Machine) enter(next State) {
	prev := m.state
	m.state = next
	m.enteredAt = m.now()
	m.settleAt = time.Time{}
	m.stalled = false
	m.stallReason = ""

	switch next {
	case StateFindBlock:
		m.runID = uuid.NewString()
		m.search = m.newSearch(vision.Block, m.cfg.BlockColors)
	case StateAlignSheet:
		m.search = m.newSearch(vision.Sheet, []vision.Color{m.held})
	case StateIdle:
		if err := m.drive.Stop(); err != nil {
			log.Error("stop on idle entry failed", "error", err)
			m.lastErr = fmt.Sprintf("stop: %v", err)
		}
	}

	log.Info("state transition",
		"from", prev.String(),
		"to", next.String(),
		"run_id", m.runID,
		"completed", m.blocksCompleted)
}

// reset clears the task context and restarts from FIND_BLOCK. The completed
// tally survives; the held color and all counters do not.
func (m *Machine) reset() {
	m.hasHeld = false
	m.lastErr = ""
	m.enter(StateFindBlock)
}

// failsafe handles a failed command transmission: best-effort stop, record
// the error, drop to IDLE for operator intervention. Fatal to the current
// cycle only - the process keeps running.
func (m *Machine) failsafe(op string, err error) {
	log.Error("actuation failed", "op", op, "state", m.state.String(), "error", err)
	m.lastErr = fmt.Sprintf("%s: %v", op, err)
	if stopErr := m.drive.Stop(); stopErr != nil {
		log.Error("failsafe stop failed", "error", stopErr)
	}
	m.hasHeld = false
	m.enter(StateIdle)
}

// stepSearch advances the state's search one cycle and routes errors:
// observation failures are transient and retried, transmission failures hit
// the failsafe. The boolean reports whether the result should be acted on.
func (m *Machine) stepSearch() (servo.Result, bool) {
	res, err := m.search.Step()
	if err != nil {
		if errors.Is(err, servo.ErrObservation) {
			log.Warn("observation failed, retrying next cycle", "error", err)
			return servo.Result{}, false
		}
		m.failsafe("search", err)
		return servo.Result{}, false
	}
	return res, true
}

func (m *Machine) stepFind() {
	res, ok := m.stepSearch()
	if !ok {
		return
	}

	switch res.Outcome {
	case servo.Aligned:
		m.held = res.Target.Color
		m.hasHeld = true
		m.stalled = false
		m.stallReason = ""
		log.Info("block found and aligned",
			"color", m.held.String(),
			"area", res.Target.Area,
			"offset", res.Alignment.Offset,
			"run_id", m.runID)
		m.enter(StateGrabBlock)

	case servo.AttemptsExhausted, servo.TimedOut:
		m.stalled = true
		m.stallReason = res.Outcome.String()
		log.Warn("block search stalled",
			"reason", m.stallReason,
			"run_id", m.runID)
		m.search.Reset()
	}
}

func (m *Machine) stepGrab() {
	now := m.now()
	if m.settleAt.IsZero() {
		if err := m.gripper.Grab(); err != nil {
			m.failsafe("grab", err)
			return
		}
		m.settleAt = now.Add(m.cfg.GrabSettle)
		log.Info("grab sequence started", "color", m.held.String(), "run_id", m.runID)
		return
	}
	if now.Before(m.settleAt) {
		return
	}
	m.enter(StateAlignSheet)
}

func (m *Machine) stepAlign() {
	res, ok := m.stepSearch()
	if !ok {
		return
	}

	switch res.Outcome {
	case servo.Aligned:
		m.stalled = false
		m.stallReason = ""
		switch res.Alignment.Distance {
		case servo.DistanceGood:
			log.Info("aligned to target sheet",
				"color", m.held.String(),
				"area", res.Target.Area,
				"run_id", m.runID)
			m.enter(StateDropBlock)

		case servo.DistanceTooFar:
			log.Debug("sheet too far, approaching", "area", res.Target.Area)
			if err := m.drive.Forward(m.cfg.ApproachStep); err != nil {
				m.failsafe("approach", err)
				return
			}
			m.search.Reset()

		case servo.DistanceTooClose:
			log.Debug("sheet too close, backing off", "area", res.Target.Area)
			if err := m.drive.Backward(m.cfg.RetreatStep); err != nil {
				m.failsafe("retreat", err)
				return
			}
			m.search.Reset()
		}

	case servo.AttemptsExhausted, servo.TimedOut:
		m.stalled = true
		m.stallReason = res.Outcome.String()
		log.Warn("sheet search stalled",
			"color", m.held.String(),
			"reason", m.stallReason,
			"run_id", m.runID)
		m.search.Reset()
	}
}

func (m *Machine) stepDrop() {
	now := m.now()
	if m.settleAt.IsZero() {
		if err := m.gripper.Release(); err != nil {
			m.failsafe("release", err)
			return
		}
		m.settleAt = now.Add(m.cfg.ReleaseSettle)
		log.Info("release started", "color", m.held.String(), "run_id", m.runID)
		return
	}
	if now.Before(m.settleAt) {
		return
	}

	m.blocksCompleted++
	m.hasHeld = false
	log.Info("block delivered", "completed", m.blocksCompleted, "run_id", m.runID)
	m.enter(StateIdle)
}
