package servo

import (
	"testing"
	"time"

	"github.com/blockbotics/go-blockbot/pkg/vision"
)

func TestClassify(t *testing.T) {
	band := vision.Band{Min: 1000, Max: 3000}

	tests := []struct {
		name string
		area float64
		want DistanceClass
	}{
		{"well below band", 500, DistanceTooFar},
		{"just below band", 999.9, DistanceTooFar},
		{"band lower edge", 1000, DistanceGood},
		{"inside band", 2000, DistanceGood},
		{"band upper edge", 3000, DistanceGood},
		{"just above band", 3000.1, DistanceTooClose},
		{"well above band", 9000, DistanceTooClose},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.area, band); got != tt.want {
				t.Errorf("Classify(%v) = %v, want %v", tt.area, got, tt.want)
			}
		})
	}
}

func TestEvaluateIsPure(t *testing.T) {
	obj := vision.Object{Area: 2000, Offset: -15}
	band := vision.Band{Min: 1000, Max: 3000}

	first := Evaluate(obj, band)
	second := Evaluate(obj, band)

	if first != second {
		t.Errorf("repeated evaluation diverged: %+v vs %+v", first, second)
	}
	if first.Offset != -15 {
		t.Errorf("Offset = %d, want -15", first.Offset)
	}
	if first.Distance != DistanceGood {
		t.Errorf("Distance = %v, want good", first.Distance)
	}
}

func TestSelectLargest(t *testing.T) {
	small := vision.Object{Color: vision.Red, Area: 4000, CenterX: 100}
	large := vision.Object{Color: vision.Red, Area: 7000, CenterX: 500}

	got, ok := SelectLargest([]vision.Object{small, large})
	if !ok {
		t.Fatal("SelectLargest found nothing")
	}
	if got.Area != 7000 {
		t.Errorf("selected area %v, want the larger 7000", got.Area)
	}

	// Order must not matter
	got, _ = SelectLargest([]vision.Object{large, small})
	if got.Area != 7000 {
		t.Errorf("selected area %v after reorder, want 7000", got.Area)
	}
}

func TestSelectLargestEmpty(t *testing.T) {
	if _, ok := SelectLargest(nil); ok {
		t.Error("SelectLargest(nil) reported a target")
	}
}

func TestTurnDuration(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		offset int
		want   time.Duration
	}{
		{0, 100 * time.Millisecond},
		{50, 200 * time.Millisecond},
		{-50, 200 * time.Millisecond},
		{200, 500 * time.Millisecond},  // capped
		{1000, 500 * time.Millisecond}, // capped
	}

	for _, tt := range tests {
		if got := cfg.TurnDuration(tt.offset); got != tt.want {
			t.Errorf("TurnDuration(%d) = %v, want %v", tt.offset, got, tt.want)
		}
	}
}

func TestBandFor(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.BandFor(vision.Block); got != cfg.BlockBand {
		t.Errorf("BandFor(Block) = %+v, want %+v", got, cfg.BlockBand)
	}
	if got := cfg.BandFor(vision.Sheet); got != cfg.SheetBand {
		t.Errorf("BandFor(Sheet) = %+v, want %+v", got, cfg.SheetBand)
	}
}
