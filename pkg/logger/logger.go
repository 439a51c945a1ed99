// Package logger holds the process-wide zerolog logger for installtrack.
//
// cmd/installtrack calls Init once and hands the result to constructors; Get
// serves code that has no logger of its own. Caller information is only
// attached at debug level and below.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Options configures Init.
type Options struct {
	Level   string    // LOG_LEVEL value; see parseLevel
	Pretty  bool      // console writer instead of JSON lines
	Output  io.Writer // defaults to os.Stdout
	Service string    // added as "service" on every entry when set
}

// ForEnvironment returns Options for the named runtime environment: JSON in
// production, coloured console output everywhere else.
func ForEnvironment(env, level string) Options {
	return Options{
		Level:  level,
		Pretty: env != "production",
	}
}

var (
	instance    zerolog.Logger
	once        sync.Once
	initialized bool
)

// Init builds the logger on first call and returns it; later calls return
// the existing logger unchanged.
func Init(opts Options) zerolog.Logger {
	once.Do(func() {
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

		ctx := zerolog.New(out).Level(lvl).With().Timestamp()
		if lvl <= zerolog.DebugLevel {
			ctx = ctx.Caller()
		}
		if opts.Service != "" {
			ctx = ctx.Str("service", opts.Service)
		}
		instance = ctx.Logger()

		initialized = true
	})
	return instance
}

// Get returns the logger built by Init. It panics before Init.
func Get() zerolog.Logger {
	if !initialized {
		panic("logger: Get() called before Init()")
	}
	return instance
}

// Reset forgets the current logger so tests can call Init again.
func Reset() {
	once = sync.Once{}
	instance = zerolog.Logger{}
	initialized = false
}

// parseLevel maps LOG_LEVEL onto a zerolog.Level. "warning" is accepted as
// an alias; empty or unknown values fall back to info.
func parseLevel(s string) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		return zerolog.WarnLevel
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || s == "" {
		return zerolog.InfoLevel
	}
	return lvl
}
