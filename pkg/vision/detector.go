package vision

import (
	"image"

	"gocv.io/x/gocv"
)

// Config holds all tunable parameters for detection.
type Config struct {
	// Frame geometry
	Width  int
	Height int

	// Area bands (contour pixels)
	BlockArea Band
	SheetArea Band

	// Aspect ratio bands (width / height)
	BlockAspect Band
	SheetAspect Band

	// Preprocessing
	BlurSize   int // Gaussian blur kernel, must be odd
	KernelSize int // Morphology kernel
}

// DefaultConfig returns the detection parameters tuned for the arena:
// roughly square blocks and vertical A4 sheets at 640x480.
func DefaultConfig() Config {
	return Config{
		Width:  640,
		Height: 480,

		BlockArea: Band{Min: 300, Max: 5000},
		SheetArea: Band{Min: 8000, Max: 100000},

		BlockAspect: Band{Min: 0.5, Max: 2.0},
		SheetAspect: Band{Min: 0.3, Max: 0.9},

		BlurSize:   5,
		KernelSize: 5,
	}
}

// hsvRange is one low/high HSV bound pair for inRange masking.
type hsvRange struct {
	lo, hi gocv.Scalar
}

// hsvRangesFor returns the HSV ranges for a color.
// Red wraps around the hue axis and needs two ranges.
func hsvRangesFor(c Color) []hsvRange {
	switch c {
	case Red:
		return []hsvRange{
			{gocv.NewScalar(0, 100, 100, 0), gocv.NewScalar(10, 255, 255, 0)},
			{gocv.NewScalar(160, 100, 100, 0), gocv.NewScalar(180, 255, 255, 0)},
		}
	case Yellow:
		return []hsvRange{
			{gocv.NewScalar(20, 100, 100, 0), gocv.NewScalar(35, 255, 255, 0)},
		}
	case Blue:
		return []hsvRange{
			{gocv.NewScalar(100, 100, 80, 0), gocv.NewScalar(130, 255, 255, 0)},
		}
	case Black:
		// Black is low value regardless of hue
		return []hsvRange{
			{gocv.NewScalar(0, 0, 0, 0), gocv.NewScalar(180, 255, 50, 0)},
		}
	}
	return nil
}

// admit reports whether a contour passes the area and aspect filters for
// its class. Pure so the acceptance logic is testable without OpenCV mats.
func admit(area, aspect float64, areaBand, aspectBand Band) bool {
	return areaBand.Contains(area) && aspectBand.Contains(aspect)
}

// Detector turns camera frames into Object lists.
type Detector struct {
	cfg    Config
	kernel gocv.Mat
}

// NewDetector creates a detector with the given configuration.
func NewDetector(cfg Config) *Detector {
	return &Detector{
		cfg:    cfg,
		kernel: gocv.GetStructuringElement(gocv.MorphRect, image.Pt(cfg.KernelSize, cfg.KernelSize)),
	}
}

// Config returns the detector configuration.
func (d *Detector) Config() Config {
	return d.cfg
}

// Close releases the morphology kernel.
func (d *Detector) Close() error {
	return d.kernel.Close()
}

// Detect finds all objects of the given class and colors in a BGR frame,
// sorted by area descending.
func (d *Detector) Detect(frame gocv.Mat, class Class, colors []Color) []Object {
	areaBand, aspectBand := d.bandsFor(class)

	hsv := d.preprocess(frame)
	defer hsv.Close()

	var objects []Object
	for _, color := range colors {
		mask := d.mask(hsv, color)
		objects = append(objects, d.extract(mask, class, color, areaBand, aspectBand)...)
		mask.Close()
	}

	sortByArea(objects)
	return objects
}

func (d *Detector) bandsFor(class Class) (Band, Band) {
	if class == Sheet {
		return d.cfg.SheetArea, d.cfg.SheetAspect
	}
	return d.cfg.BlockArea, d.cfg.BlockAspect
}

// preprocess blurs the frame and converts it to HSV.
func (d *Detector) preprocess(frame gocv.Mat) gocv.Mat {
	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(frame, &blurred, image.Pt(d.cfg.BlurSize, d.cfg.BlurSize), 0, 0, gocv.BorderDefault)

	hsv := gocv.NewMat()
	gocv.CvtColor(blurred, &hsv, gocv.ColorBGRToHSV)
	return hsv
}

// mask builds a cleaned binary mask for one color.
func (d *Detector) mask(hsv gocv.Mat, color Color) gocv.Mat {
	mask := gocv.NewMatWithSize(hsv.Rows(), hsv.Cols(), gocv.MatTypeCV8U)

	for _, r := range hsvRangesFor(color) {
		part := gocv.NewMat()
		gocv.InRangeWithScalar(hsv, r.lo, r.hi, &part)
		gocv.BitwiseOr(mask, part, &mask)
		part.Close()
	}

	// Open then close to drop speckle and fill holes
	gocv.MorphologyEx(mask, &mask, gocv.MorphOpen, d.kernel)
	gocv.MorphologyEx(mask, &mask, gocv.MorphClose, d.kernel)

	return mask
}

// extract pulls qualifying contours out of a binary mask.
func (d *Detector) extract(mask gocv.Mat, class Class, color Color, areaBand, aspectBand Band) []Object {
	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	centerX := d.cfg.Width / 2

	var objects []Object
	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)
		area := gocv.ContourArea(contour)
		rect := gocv.BoundingRect(contour)

		aspect := 0.0
		if rect.Dy() > 0 {
			aspect = float64(rect.Dx()) / float64(rect.Dy())
		}

		if !admit(area, aspect, areaBand, aspectBand) {
			continue
		}

		cx := rect.Min.X + rect.Dx()/2
		cy := rect.Min.Y + rect.Dy()/2

		objects = append(objects, Object{
			Class:       class,
			Color:       color,
			Bounds:      rect,
			Area:        area,
			AspectRatio: aspect,
			CenterX:     cx,
			CenterY:     cy,
			Offset:      cx - centerX,
		})
	}

	return objects
}
