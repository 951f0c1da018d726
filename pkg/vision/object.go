// Package vision provides color-based object detection for the block picking
// robot. It finds small colored blocks and vertical target sheets in camera
// frames using HSV segmentation and contour analysis.
package vision

import (
	"fmt"
	"image"
	"sort"
)

// Class identifies the kind of object a detection represents.
type Class int

const (
	Block Class = iota // small colored block on the ground
	Sheet              // vertical A4 target sheet
)

// String returns the class name.
func (c Class) String() string {
	switch c {
	case Block:
		return "block"
	case Sheet:
		return "sheet"
	}
	return "unknown"
}

// Color identifies a detectable object color.
type Color int

const (
	Red Color = iota
	Yellow
	Blue
	Black
)

// String returns the color name.
func (c Color) String() string {
	switch c {
	case Red:
		return "red"
	case Yellow:
		return "yellow"
	case Blue:
		return "blue"
	case Black:
		return "black"
	}
	return "unknown"
}

// ParseColor converts a color name to a Color.
func ParseColor(s string) (Color, error) {
	switch s {
	case "red":
		return Red, nil
	case "yellow":
		return Yellow, nil
	case "blue":
		return Blue, nil
	case "black":
		return Black, nil
	}
	return 0, fmt.Errorf("unsupported color %q", s)
}

// BlockColors returns the colors a block may have.
func BlockColors() []Color {
	return []Color{Red, Yellow, Blue}
}

// SheetColors returns the colors a sheet may have.
func SheetColors() []Color {
	return []Color{Black, Red, Yellow, Blue}
}

// Object is a single detection produced from one camera frame.
// Objects are transient: a fresh set is produced per observation and
// nothing holds on to them across cycles.
type Object struct {
	Class       Class
	Color       Color
	Bounds      image.Rectangle
	Area        float64
	AspectRatio float64 // width / height
	CenterX     int
	CenterY     int
	Offset      int // CenterX minus frame center X; negative = left of center
}

// Band is an inclusive [Min, Max] acceptance range.
type Band struct {
	Min, Max float64
}

// Contains reports whether v falls inside the band.
func (b Band) Contains(v float64) bool {
	return v >= b.Min && v <= b.Max
}

// sortByArea orders objects largest-first so the closest, most confident
// candidate is always objects[0].
func sortByArea(objects []Object) {
	sort.Slice(objects, func(i, j int) bool {
		return objects[i].Area > objects[j].Area
	})
}
