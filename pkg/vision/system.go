package vision

import (
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// System combines a camera and a detector into a single perception source.
// Each Observe call grabs a fresh frame; nothing is cached between cycles.
// Safe for concurrent use: the dashboard snapshot and the control loop share
// one camera.
type System struct {
	mu    sync.Mutex
	cam   *Camera
	det   *Detector
	frame gocv.Mat
}

// NewSystem creates a perception system over an open camera.
func NewSystem(cam *Camera, det *Detector) *System {
	return &System{
		cam:   cam,
		det:   det,
		frame: gocv.NewMat(),
	}
}

// Observe captures a fresh frame and returns all objects of the given class
// and colors, largest first.
func (s *System) Observe(class Class, colors []Color) ([]Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.cam.Read(&s.frame); err != nil {
		return nil, err
	}
	return s.det.Detect(s.frame, class, colors), nil
}

// Snapshot captures a frame, annotates every visible block and sheet plus
// the given status lines, and returns it JPEG-encoded for the dashboard.
func (s *System) Snapshot(status []string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.cam.Read(&s.frame); err != nil {
		return nil, err
	}

	annotated := s.frame.Clone()
	defer annotated.Close()

	cfg := s.det.Config()
	blocks := s.det.Detect(annotated, Block, BlockColors())
	sheets := s.det.Detect(annotated, Sheet, SheetColors())
	Annotate(&annotated, append(blocks, sheets...), cfg.Width, cfg.Height)
	AnnotateStatus(&annotated, status)

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, annotated)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	defer buf.Close()

	out := make([]byte, len(buf.GetBytes()))
	copy(out, buf.GetBytes())
	return out, nil
}

// Close releases the camera, detector and working frame.
func (s *System) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.frame.Close()
	s.det.Close()
	return s.cam.Close()
}
