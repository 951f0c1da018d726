package vision

import (
	"fmt"

	"gocv.io/x/gocv"
)

// warmupReads is how many frames to discard after opening so auto-exposure
// has settled before the first real observation.
const warmupReads = 5

// Camera wraps a USB camera device.
type Camera struct {
	index int
	cap   *gocv.VideoCapture
}

// OpenCamera opens the camera at the given device index and sets the
// capture resolution.
func OpenCamera(index, width, height int) (*Camera, error) {
	cap, err := gocv.OpenVideoCapture(index)
	if err != nil {
		return nil, fmt.Errorf("open camera %d: %w", index, err)
	}
	if !cap.IsOpened() {
		cap.Close()
		return nil, fmt.Errorf("camera %d not available", index)
	}

	cap.Set(gocv.VideoCaptureFrameWidth, float64(width))
	cap.Set(gocv.VideoCaptureFrameHeight, float64(height))

	warm := gocv.NewMat()
	defer warm.Close()
	for i := 0; i < warmupReads; i++ {
		cap.Read(&warm)
	}

	return &Camera{index: index, cap: cap}, nil
}

// Read grabs one frame into dst.
func (c *Camera) Read(dst *gocv.Mat) error {
	if ok := c.cap.Read(dst); !ok {
		return fmt.Errorf("camera %d: frame grab failed", c.index)
	}
	if dst.Empty() {
		return fmt.Errorf("camera %d: empty frame", c.index)
	}
	return nil
}

// Close releases the camera device.
func (c *Camera) Close() error {
	return c.cap.Close()
}
