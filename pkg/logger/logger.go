// Package logger holds the process-wide zerolog logger of the shop API.
//
// main calls Init once with the configured level and output; components that
// are built later take a child logger from Component so their entries carry a
// "component" field (store, activity, auth, ...).
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Options is filled from LOG_LEVEL, LOG_PRETTY and ENV.
type Options struct {
	// Level is trace, debug, info, warn or error. Anything else means info.
	Level string
	// Pretty switches to the console writer for local runs.
	Pretty bool
	// Output defaults to os.Stdout.
	Output io.Writer
	// Service and Env are stamped on every entry when non-empty.
	Service string
	Env     string
}

var (
	mu    sync.Mutex
	root  zerolog.Logger
	ready bool
)

// Init builds the root logger. Later calls return the existing logger
// unchanged.
func Init(opts Options) zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if ready {
		return root
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	if opts.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	lvl := parseLevel(opts.Level)
	zerolog.SetGlobalLevel(lvl)

	fields := zerolog.New(out).Level(lvl).With().Timestamp().Caller()
	if opts.Service != "" {
		fields = fields.Str("service", opts.Service)
	}
	if opts.Env != "" {
		fields = fields.Str("env", opts.Env)
	}
	root = fields.Logger()
	ready = true
	return root
}

// Get returns the root logger. It panics before Init.
func Get() zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if !ready {
		panic("logger: Get() called before Init()")
	}
	return root
}

// Component returns a child of the root logger tagged with name.
func Component(name string) zerolog.Logger {
	return Get().With().Str("component", name).Logger()
}

// Reset drops the root logger so tests can call Init again.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	root = zerolog.Logger{}
	ready = false
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
