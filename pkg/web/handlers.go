package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/blockbotics/go-blockbot/pkg/hub"
	"github.com/blockbotics/go-blockbot/pkg/mission"
)

// handleStatus returns the current mission snapshot.
func (s *Server) handleStatus(c *fiber.Ctx) error {
	if s.Status == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "status source not attached")
	}
	return c.JSON(s.Status())
}

// handleGetLogs returns the buffered log feed.
func (s *Server) handleGetLogs(c *fiber.Ctx) error {
	s.logsMu.RLock()
	defer s.logsMu.RUnlock()
	return c.JSON(s.logs)
}

// handleFrame returns one annotated camera frame.
func (s *Server) handleFrame(c *fiber.Ctx) error {
	if s.CaptureFrame == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "camera not attached")
	}
	jpeg, err := s.CaptureFrame()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	c.Set(fiber.HeaderContentType, "image/jpeg")
	return c.Send(jpeg)
}

// handleSignal queues an operator signal (continue, reset, quit) for the
// control loop's next poll.
func (s *Server) handleSignal(c *fiber.Ctx) error {
	sig, err := mission.ParseSignal(c.Params("name"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	s.signals.Offer(sig)
	return c.JSON(fiber.Map{"queued": sig.String()})
}

func (s *Server) handleStatusWS(conn *websocket.Conn) {
	hub.NewClient(s.statusHub, conn).Run()
}

func (s *Server) handleLogsWS(conn *websocket.Conn) {
	hub.NewClient(s.logHub, conn).Run()
}

func (s *Server) handleCameraWS(conn *websocket.Conn) {
	hub.NewClient(s.cameraHub, conn).Run()
}
