package vision

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// drawColorFor maps object colors to drawing colors.
func drawColorFor(c Color) color.RGBA {
	switch c {
	case Red:
		return color.RGBA{R: 255}
	case Yellow:
		return color.RGBA{R: 255, G: 255}
	case Blue:
		return color.RGBA{B: 255}
	case Black:
		return color.RGBA{R: 128, G: 128, B: 128}
	}
	return color.RGBA{R: 255, G: 255, B: 255}
}

// Annotate draws detections onto frame in place: bounding boxes, centers,
// labels and the frame center cross used for alignment.
func Annotate(frame *gocv.Mat, objects []Object, width, height int) {
	for _, obj := range objects {
		col := drawColorFor(obj.Color)

		thickness := 2
		if obj.Class == Sheet {
			thickness = 3
		}

		gocv.Rectangle(frame, obj.Bounds, col, thickness)
		gocv.Circle(frame, image.Pt(obj.CenterX, obj.CenterY), 5, col, -1)

		label := fmt.Sprintf("%s:%s A:%d", obj.Class, obj.Color, int(obj.Area))
		gocv.PutText(frame, label, image.Pt(obj.Bounds.Min.X, obj.Bounds.Min.Y-10),
			gocv.FontHersheySimplex, 0.4, col, 1)
	}

	// Frame center cross
	cx, cy := width/2, height/2
	green := color.RGBA{G: 255}
	gocv.Line(frame, image.Pt(cx-20, cy), image.Pt(cx+20, cy), green, 2)
	gocv.Line(frame, image.Pt(cx, cy-20), image.Pt(cx, cy+20), green, 2)
}

// AnnotateStatus overlays a status line (state, held color, completed count)
// in the top-left corner.
func AnnotateStatus(frame *gocv.Mat, lines []string) {
	green := color.RGBA{G: 255}
	y := 30
	for _, line := range lines {
		gocv.PutText(frame, line, image.Pt(10, y), gocv.FontHersheySimplex, 0.7, green, 2)
		y += 30
	}
}
