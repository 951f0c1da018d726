// Package mission implements the task state machine for autonomous block
// picking: find a colored block, grab it, align to the matching colored
// target sheet, drop it, and wait for the operator to continue.
package mission

import "fmt"

// State is the robot's operational state. Exactly one task instance exists;
// transitions follow the fixed cycle FindBlock -> GrabBlock -> AlignSheet ->
// DropBlock -> Idle -> FindBlock, with no skips except an explicit reset.
type State int

const (
	StateFindBlock State = iota
	StateGrabBlock
	StateAlignSheet
	StateDropBlock
	StateIdle
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateFindBlock:
		return "FIND_BLOCK"
	case StateGrabBlock:
		return "GRAB_BLOCK"
	case StateAlignSheet:
		return "ALIGN_TO_TARGET_SHEET"
	case StateDropBlock:
		return "DROP_BLOCK"
	case StateIdle:
		return "IDLE"
	}
	return "UNKNOWN"
}

// Signal is a discrete operator command. Signals are polled once per cycle;
// their effect lands at the next step boundary.
type Signal int

const (
	SignalNone Signal = iota
	SignalContinue
	SignalReset
	SignalQuit
)

// String returns the signal name.
func (s Signal) String() string {
	switch s {
	case SignalNone:
		return "none"
	case SignalContinue:
		return "continue"
	case SignalReset:
		return "reset"
	case SignalQuit:
		return "quit"
	}
	return "unknown"
}

// ParseSignal converts an operator command name to a Signal.
func ParseSignal(s string) (Signal, error) {
	switch s {
	case "continue":
		return SignalContinue, nil
	case "reset":
		return SignalReset, nil
	case "quit":
		return SignalQuit, nil
	}
	return SignalNone, fmt.Errorf("unknown signal %q", s)
}

// Status is a read-only snapshot of the machine for logs and the dashboard.
type Status struct {
	State           string `json:"state"`
	RunID           string `json:"run_id"`
	HeldColor       string `json:"held_color,omitempty"`
	BlocksCompleted int    `json:"blocks_completed"`
	SearchAttempts  int    `json:"search_attempts"`
	Stalled         bool   `json:"stalled"`
	StallReason     string `json:"stall_reason,omitempty"`
	LastError       string `json:"last_error,omitempty"`
	Done            bool   `json:"done"`
}
