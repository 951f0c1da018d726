// Drive is a manual exerciser for the chassis and arm over the serial link.
// It runs a scripted movement sequence so wiring and firmware can be checked
// without the camera.
package main

import (
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/blockbotics/go-blockbot/internal/config"
	"github.com/blockbotics/go-blockbot/internal/log"
	"github.com/blockbotics/go-blockbot/pkg/drive"
)

type step struct {
	name string
	run  func() error
}

func main() {
	godotenv.Load()

	serialPort := flag.String("port", config.SerialPort(config.DefaultSerialPort), "chassis serial device")
	baud := flag.Int("baud", config.DefaultBaudRate, "serial baud rate")
	speed := flag.Int("speed", 30, "motor speed level (30, 50, 80)")
	testArm := flag.Bool("arm", false, "also run the grab/release sequence")
	logLevel := flag.String("log-level", config.LogLevel("info"), "log level")
	flag.Parse()

	log.Init(*logLevel)

	port, err := drive.Open(*serialPort, *baud)
	if err != nil {
		log.Error("serial open failed", "error", err)
		os.Exit(1)
	}
	car := drive.NewController(port, drive.DefaultConfig())
	defer car.Close()

	log.Info("drive test starting", "port", *serialPort, "speed", *speed)

	steps := []step{
		{"set speed", func() error { return car.SetSpeed(*speed) }},
		{"forward", func() error { return car.Forward(time.Second) }},
		{"backward", func() error { return car.Backward(time.Second) }},
		{"turn left", func() error { return car.TurnLeft(500 * time.Millisecond) }},
		{"turn right", func() error { return car.TurnRight(500 * time.Millisecond) }},
		{"rotate clockwise", func() error { return car.RotateClockwise(500 * time.Millisecond) }},
		{"rotate counter-clockwise", func() error { return car.RotateCounterClockwise(500 * time.Millisecond) }},
	}

	if *testArm {
		steps = append(steps,
			step{"grab", func() error {
				if err := car.Grab(); err != nil {
					return err
				}
				time.Sleep(4 * time.Second)
				return nil
			}},
			step{"release", func() error {
				if err := car.Release(); err != nil {
					return err
				}
				time.Sleep(1500 * time.Millisecond)
				return nil
			}},
		)
	}

	for _, s := range steps {
		log.Info("running step", "step", s.name)
		if err := s.run(); err != nil {
			log.Error("step failed", "step", s.name, "error", err)
			os.Exit(1)
		}
		time.Sleep(time.Second)
	}

	log.Info("drive test complete")
}
