// Blockbot is the autonomous pick-and-place controller: it finds a colored
// block with the camera, grabs it, finds the matching colored target sheet,
// and drops the block there, then idles until the operator continues.
//
// Operator signals come from stdin ('c', 'r', 'q' lines), the web dashboard,
// or SIGINT (quit).
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/blockbotics/go-blockbot/internal/config"
	"github.com/blockbotics/go-blockbot/internal/log"
	"github.com/blockbotics/go-blockbot/pkg/drive"
	"github.com/blockbotics/go-blockbot/pkg/mission"
	"github.com/blockbotics/go-blockbot/pkg/vision"
	"github.com/blockbotics/go-blockbot/pkg/web"
)

// cycleInterval is the control loop period (~20 Hz).
const cycleInterval = 50 * time.Millisecond

// framesEvery is how many cycles pass between dashboard frame pushes.
const framesEvery = 10

func main() {
	godotenv.Load()

	cameraIndex := flag.Int("camera", config.CameraIndex(config.DefaultCameraIndex), "USB camera device index")
	serialPort := flag.String("port", config.SerialPort(config.DefaultSerialPort), "chassis serial device")
	baud := flag.Int("baud", config.DefaultBaudRate, "serial baud rate")
	webAddr := flag.String("web", config.WebAddr(config.DefaultWebAddr), "dashboard listen address (empty disables)")
	speed := flag.Int("speed", 50, "motor speed level (30, 50, 80)")
	logLevel := flag.String("log-level", config.LogLevel("info"), "log level (debug, info, warn, error)")
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

	port, err := drive.Open(*serialPort, *baud)
	if err != nil {
		log.Error("serial open failed", "error", err)
		os.Exit(1)
	}
	car := drive.NewController(port, drive.DefaultConfig())
	defer car.Close()

	if err := car.SetSpeed(*speed); err != nil {
		log.Error("set speed failed", "error", err)
		os.Exit(1)
	}

	machine := mission.NewMachine(mission.DefaultConfig(), system, car, car)
	signals := &mission.SignalQueue{}

	var dash *web.Server
	if *webAddr != "" {
		dash = web.NewServer(*webAddr, signals)
		dash.Status = machine.Status
		dash.CaptureFrame = func() ([]byte, error) {
			return system.Snapshot(statusLines(machine.Status()))
		}
		dash.StartAsync()
	}

	go readConsoleSignals(signals)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		signals.Offer(mission.SignalQuit)
	}()

	log.Info("blockbot started",
		"camera", *cameraIndex,
		"serial", *serialPort,
		"baud", *baud,
		"speed", *speed)

	ticker := time.NewTicker(cycleInterval)
	defer ticker.Stop()

	cycle := 0
	lastState, lastErr, lastStall := "", "", ""
	for range ticker.C {
		if err := machine.Step(signals.Poll()); err != nil {
			log.Error("control cycle failed", "error", err)
		}
		if machine.Done() {
			break
		}

		if dash != nil {
			st := machine.Status()
			dash.PublishStatus(st)

			if st.State != lastState {
				dash.AddLog("state", "state changed to "+st.State)
				lastState = st.State
			}
			if st.LastError != "" && st.LastError != lastErr {
				dash.AddLog("error", st.LastError)
				lastErr = st.LastError
			}
			stall := ""
			if st.Stalled {
				stall = st.StallReason
			}
			if stall != lastStall {
				if stall != "" {
					dash.AddLog("warn", "stalled: "+stall)
				}
				lastStall = stall
			}

			cycle++
			if cycle%framesEvery == 0 {
				if jpeg, err := system.Snapshot(statusLines(st)); err == nil {
					dash.SendFrame(jpeg)
				}
			}
		}
	}

	if dash != nil {
		dash.Shutdown()
	}
	log.Info("blockbot stopped", "completed", machine.Status().BlocksCompleted)
}

// statusLines builds the frame overlay text.
func statusLines(st mission.Status) []string {
	lines := []string{"STATE: " + st.State}
	if st.HeldColor != "" {
		lines = append(lines, "CURRENT: "+strings.ToUpper(st.HeldColor))
	}
	lines = append(lines, fmt.Sprintf("COMPLETED: %d", st.BlocksCompleted))
	if st.Stalled {
		lines = append(lines, "STALLED: "+st.StallReason)
	}
	return lines
}

// readConsoleSignals forwards operator keystroke lines to the signal queue.
func readConsoleSignals(q *mission.SignalQueue) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
		case "c", "continue":
			q.Offer(mission.SignalContinue)
		case "r", "reset":
			q.Offer(mission.SignalReset)
		case "q", "quit":
			q.Offer(mission.SignalQuit)
		}
	}
}
