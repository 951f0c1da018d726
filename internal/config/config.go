// Package config provides configuration helpers for go-blockbot commands.
package config

import (
	"os"
	"strconv"
)

// Default hardware configuration.
const (
	DefaultSerialPort  = "/dev/ttyACM0"
	DefaultBaudRate    = 9600
	DefaultCameraIndex = 0
	DefaultWebAddr     = ":8090"
)

// SerialPort returns the serial device path from the SERIAL_PORT env var.
// Falls back to the provided default if not set.
func SerialPort(def string) string {
	if p := os.Getenv("SERIAL_PORT"); p != "" {
		return p
	}
	return def
}

// CameraIndex returns the camera device index from the CAMERA_INDEX env var.
// Falls back to the provided default if not set or unparseable.
func CameraIndex(def int) int {
	if v := os.Getenv("CAMERA_INDEX"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// WebAddr returns the dashboard listen address from the WEB_ADDR env var.
func WebAddr(def string) string {
	if a := os.Getenv("WEB_ADDR"); a != "" {
		return a
	}
	return def
}

// LogLevel returns the log level from the LOG_LEVEL env var.
func LogLevel(def string) string {
	if l := os.Getenv("LOG_LEVEL"); l != "" {
		return l
	}
	return def
}
