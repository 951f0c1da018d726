// Package servo implements the visual servoing core: it evaluates detections
// for horizontal alignment and coarse distance, and runs the bounded
// search-and-align procedure that turns noisy, intermittent detections into
// chassis rotation commands.
package servo

import (
	"time"

	"github.com/blockbotics/go-blockbot/pkg/vision"
)

// Config holds all tunable parameters for searching and aligning.
type Config struct {
	// Alignment
	Tolerance int // max acceptable |horizontal offset| in pixels

	// Search budget
	MaxSearchAttempts int           // blind rotations before giving up
	Timeout           time.Duration // wall-clock ceiling per invocation

	// Rotation
	SearchTurn   time.Duration // fixed pulse when the target is not visible
	TurnBase     time.Duration // minimum correction pulse
	TurnPerPixel time.Duration // correction pulse growth per pixel of error
	TurnMax      time.Duration // correction pulse ceiling

	// Distance bands: detected area inside the band means the object is at
	// grabbing/dropping range.
	BlockBand vision.Band
	SheetBand vision.Band
}

// DefaultConfig returns the parameters tuned on the stock arena.
func DefaultConfig() Config {
	return Config{
		Tolerance: 40,

		MaxSearchAttempts: 20,
		Timeout:           30 * time.Second,

		SearchTurn:   300 * time.Millisecond,
		TurnBase:     100 * time.Millisecond,
		TurnPerPixel: 2 * time.Millisecond,
		TurnMax:      500 * time.Millisecond,

		BlockBand: vision.Band{Min: 1000, Max: 3000},
		SheetBand: vision.Band{Min: 10000, Max: 30000},
	}
}

// BandFor returns the good-distance area band for a class.
func (c Config) BandFor(class vision.Class) vision.Band {
	if class == vision.Sheet {
		return c.SheetBand
	}
	return c.BlockBand
}

// TurnDuration computes the correction pulse for a horizontal offset:
// a base pulse plus a per-pixel component, capped at TurnMax. Larger error
// means a longer turn.
func (c Config) TurnDuration(offset int) time.Duration {
	if offset < 0 {
		offset = -offset
	}
	d := c.TurnBase + time.Duration(offset)*c.TurnPerPixel
	if d > c.TurnMax {
		d = c.TurnMax
	}
	return d
}
