// Package logger owns the process-wide zerolog logger of the dispatch API.
//
// cmd/api calls Init once with the values from config; services receive
// their logger by constructor, usually through Component.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Options mirror the LOG_* configuration keys.
type Options struct {
	// Level is a zerolog level name. Empty or unknown values mean info.
	Level string
	// Pretty switches from JSON lines to zerolog's console writer.
	Pretty bool
	// Output defaults to os.Stdout.
	Output io.Writer
	// Service and Env are stamped on every entry when set.
	Service string
	Env     string
}

var (
	mu    sync.Mutex
	once  sync.Once
	root  zerolog.Logger
	ready bool
)

// Init builds the root logger. Only the first call has any effect; later
// calls return the logger built by the first.
func Init(opts Options) zerolog.Logger {
	once.Do(func() {
		l := build(opts)
		mu.Lock()
		root, ready = l, true
		mu.Unlock()
	})
	return Get()
}

func build(opts Options) zerolog.Logger {
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
	return fields.Logger()
}

// Get returns the root logger and panics before Init.
func Get() zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if !ready {
		panic("logger: Get() called before Init()")
	}
	return root
}

// Component scopes the root logger to one part of the service, for example
// "auth", "dispatch" or "audit".
func Component(name string) zerolog.Logger {
	return Get().With().Str("component", name).Logger()
}

// Reset forgets the root logger so tests can call Init again.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	once = sync.Once{}
	root = zerolog.Logger{}
	ready = false
}

func parseLevel(s string) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
