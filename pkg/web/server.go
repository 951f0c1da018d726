// Package web provides a real-time dashboard for the block picking robot:
// mission status, structured log feed, annotated camera frames, and operator
// signal buttons (continue / reset / quit).
package web

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/blockbotics/go-blockbot/internal/log"
	"github.com/blockbotics/go-blockbot/pkg/hub"
	"github.com/blockbotics/go-blockbot/pkg/mission"
)

// LogEntry is one log line for the dashboard feed.
type LogEntry struct {
	Time    string `json:"time"`
	Type    string `json:"type"` // info, warn, error, state
	Message string `json:"message"`
}

// maxLogEntries bounds the in-memory log buffer.
const maxLogEntries = 500

// Server is the web dashboard server.
type Server struct {
	app  *fiber.App
	addr string

	// Status returns the current mission snapshot for /api/status.
	Status func() mission.Status

	// CaptureFrame returns an annotated JPEG for /api/frame.
	CaptureFrame func() ([]byte, error)

	signals *mission.SignalQueue

	logs   []LogEntry
	logsMu sync.RWMutex

	statusHub *hub.Hub
	logHub    *hub.Hub
	cameraHub *hub.Hub
}

// NewServer creates the dashboard server. Operator signals posted to
// /api/signal land in signals for the control loop to poll.
func NewServer(addr string, signals *mission.SignalQueue) *Server {
	s := &Server{
		addr:      addr,
		signals:   signals,
		logs:      make([]LogEntry, 0, maxLogEntries),
		statusHub: hub.New("status"),
		logHub:    hub.New("logs"),
		cameraHub: hub.New("camera"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "Blockbot Dashboard",
		DisableStartupMessage: true,
	})

	// CORS for local development
	app.Use(cors.New())

	app.Get("/", s.handleIndex)

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/logs", s.handleGetLogs)
	api.Get("/frame", s.handleFrame)
	api.Post("/signal/:name", s.handleSignal)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/status", websocket.New(s.handleStatusWS))
	app.Get("/ws/logs", websocket.New(s.handleLogsWS))
	app.Get("/ws/camera", websocket.New(s.handleCameraWS))

	s.app = app
	return s
}

// Start runs the hubs and serves. Blocks.
func (s *Server) Start() error {
	log.Info("dashboard listening", "addr", s.addr)

	go s.statusHub.Run()
	go s.logHub.Run()
	go s.cameraHub.Run()

	return s.app.Listen(s.addr)
}

// StartAsync serves in a goroutine.
func (s *Server) StartAsync() {
	go func() {
		if err := s.Start(); err != nil {
			log.Error("dashboard server error", "error", err)
		}
	}()
}

// PublishStatus broadcasts a mission snapshot to status subscribers.
func (s *Server) PublishStatus(st mission.Status) {
	s.statusHub.BroadcastJSON(st)
}

// AddLog records a log line and broadcasts it to log subscribers.
func (s *Server) AddLog(logType, message string) {
	entry := LogEntry{
		Time:    time.Now().Format("15:04:05"),
		Type:    logType,
		Message: message,
	}

	s.logsMu.Lock()
	s.logs = append(s.logs, entry)
	if len(s.logs) > maxLogEntries {
		s.logs = s.logs[1:]
	}
	s.logsMu.Unlock()

	s.logHub.BroadcastJSON(entry)
}

// SendFrame broadcasts an annotated camera frame to camera subscribers.
func (s *Server) SendFrame(jpeg []byte) {
	s.cameraHub.BroadcastBinary(jpeg)
}

// Shutdown quiesces the telemetry hubs and stops the web server gracefully.
func (s *Server) Shutdown() error {
	s.statusHub.Stop()
	s.logHub.Stop()
	s.cameraHub.Stop()
	return s.app.Shutdown()
}
