package servo

import (
	"github.com/blockbotics/go-blockbot/pkg/vision"
)

// DistanceClass is a coarse proxy for physical distance, derived from the
// detected area relative to the class's good band.
type DistanceClass int

const (
	DistanceGood DistanceClass = iota
	DistanceTooFar
	DistanceTooClose
)

// String returns the distance class name.
func (d DistanceClass) String() string {
	switch d {
	case DistanceGood:
		return "good"
	case DistanceTooFar:
		return "too_far"
	case DistanceTooClose:
		return "too_close"
	}
	return "unknown"
}

// Alignment is the evaluation of one detection against the frame center and
// the class distance band. Recomputed fresh every cycle; never stored.
type Alignment struct {
	Offset   int // signed horizontal error; negative = left of center
	Distance DistanceClass
}

// Classify maps a detected area onto a distance class: below the band the
// object is too far, above it too close.
func Classify(area float64, band vision.Band) DistanceClass {
	switch {
	case area < band.Min:
		return DistanceTooFar
	case area > band.Max:
		return DistanceTooClose
	}
	return DistanceGood
}

// Evaluate computes the alignment of a single detection. Pure: same object
// and band always produce the same result.
func Evaluate(obj vision.Object, band vision.Band) Alignment {
	return Alignment{
		Offset:   obj.Offset,
		Distance: Classify(obj.Area, band),
	}
}

// SelectLargest picks the detection with the largest area - the closest,
// most confident candidate. Deterministic tie-break when several objects of
// the matching color are visible at once.
func SelectLargest(objects []vision.Object) (vision.Object, bool) {
	if len(objects) == 0 {
		return vision.Object{}, false
	}

	best := objects[0]
	for _, obj := range objects[1:] {
		if obj.Area > best.Area {
			best = obj
		}
	}
	return best, true
}
