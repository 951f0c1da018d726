// Vision is a standalone detection debug tool: it runs the block and sheet
// detectors against the live camera and reports what it sees, optionally
// serving annotated frames on the dashboard. No serial link is needed.
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/blockbotics/go-blockbot/internal/config"
	"github.com/blockbotics/go-blockbot/internal/log"
	"github.com/blockbotics/go-blockbot/pkg/mission"
	"github.com/blockbotics/go-blockbot/pkg/vision"
	"github.com/blockbotics/go-blockbot/pkg/web"
)

func main() {
	godotenv.Load()

	cameraIndex := flag.Int("camera", config.CameraIndex(config.DefaultCameraIndex), "USB camera device index")
	webAddr := flag.String("web", config.WebAddr(config.DefaultWebAddr), "dashboard listen address (empty disables)")
	interval := flag.Duration("interval", 250*time.Millisecond, "detection interval")
	logLevel := flag.String("log-level", config.LogLevel("debug"), "log level")
	flag.Parse()

	log.Init(*logLevel)

	detCfg := vision.DefaultConfig()
	cam, err := vision.OpenCamera(*cameraIndex, detCfg.Width, detCfg.Height)
	if err != nil {
		log.Error("camera open failed", "error", err)
		os.Exit(1)
	}
	system := vision.NewSystem(cam, vision.NewDetector(detCfg))
	defer system.Close()

	var dash *web.Server
	if *webAddr != "" {
		dash = web.NewServer(*webAddr, &mission.SignalQueue{})
		dash.CaptureFrame = func() ([]byte, error) {
			return system.Snapshot([]string{"VISION DEBUG"})
		}
		dash.StartAsync()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	log.Info("vision debug started", "camera", *cameraIndex, "interval", *interval)

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	for {
		select {
		case <-sigChan:
			log.Info("vision debug stopped")
			return

		case <-ticker.C:
			blocks, err := system.Observe(vision.Block, vision.BlockColors())
			if err != nil {
				log.Warn("observe failed", "error", err)
				continue
			}
			sheets, err := system.Observe(vision.Sheet, vision.SheetColors())
			if err != nil {
				log.Warn("observe failed", "error", err)
				continue
			}

			for _, b := range blocks {
				log.Debug("block",
					"color", b.Color.String(),
					"center", b.CenterX,
					"area", b.Area,
					"offset", b.Offset)
			}
			for _, s := range sheets {
				log.Debug("sheet",
					"color", s.Color.String(),
					"center", s.CenterX,
					"area", s.Area,
					"offset", s.Offset)
			}
			log.Info("detections", "blocks", len(blocks), "sheets", len(sheets))

			if dash != nil {
				if jpeg, err := system.Snapshot([]string{"VISION DEBUG"}); err == nil {
					dash.SendFrame(jpeg)
				}
			}
		}
	}
}
