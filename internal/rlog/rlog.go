// Package rlog provides the single structured logger shared by rgpu and
// its backends. It wraps charmbracelet/log the same way the teacher
// engine's core package wraps it, so that tier-1 and tier-2 errors
// (see rgpu.Error) are always logged through one sink.
package rlog

import (
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var (
	once   sync.Once
	logger *log.Logger
)

func get() *log.Logger {
	once.Do(func() {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportCaller:    true,
			ReportTimestamp: true,
			TimeFormat:      time.RFC3339,
			Prefix:          "rgpu",
		})
		logger.SetLevel(log.InfoLevel)
	})
	return logger
}

// SetLevel adjusts the minimum level logged. Debug is typically enabled
// alongside Gpu's USE_DEBUG_LAYERS flag.
func SetLevel(debug bool) {
	if debug {
		get().SetLevel(log.DebugLevel)
	} else {
		get().SetLevel(log.InfoLevel)
	}
}

func Debugf(msg string, args ...interface{}) { get().Debugf(msg, args...) }
func Infof(msg string, args ...interface{})  { get().Infof(msg, args...) }
func Warnf(msg string, args ...interface{})  { get().Warnf(msg, args...) }
func Errorf(msg string, args ...interface{}) { get().Errorf(msg, args...) }

// Critical logs at error level with a "critical:" marker, matching the
// severity the spec assigns to tier-1 user errors (§7): logged, never
// panicked.
func Critical(op string, msg string, args ...interface{}) {
	get().Errorf("critical: "+op+": "+msg, args...)
}
