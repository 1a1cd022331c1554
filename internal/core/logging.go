package core

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/gookit/color"
	"github.com/k0kubun/pp"
	"github.com/rs/zerolog"
)

// LogLevel mirrors zerolog.Level so callers depend on an interface
// (MessageHandler) rather than the concrete logging library.
type LogLevel int8

const (
	LevelTrace LogLevel = iota - 1
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

func (l LogLevel) zerolog() zerolog.Level { return zerolog.Level(l) }

// ProcessingError is the value every step's fallible operation returns. It
// carries enough context for the orchestrator to decide whether the whole
// run aborts (the default for anything but the two kinds listen expects,
// see spec §7).
type ProcessingError struct {
	Level LogLevel
	Msg   string
	Err   error
	Fatal bool
}

func (e *ProcessingError) Error() string { return e.Msg }
func (e *ProcessingError) Unwrap() error { return e.Err }

// MessageHandler is the logging/diagnostics seam every step and collaborator
// is given instead of a bare *zerolog.Logger, so tests can substitute a
// buffering handler and the CLI can substitute one that also renders
// "Error - aborting: …" on stdout.
type MessageHandler interface {
	ZeroLog() *zerolog.Logger
	GetLogBuffer() bytes.Buffer
	Debug() bool
	GetContext() context.Context
	// Dump renders a value for --debug tracing (worklist entries, parsed
	// grammar partials) the way the teacher's debug paths use k0kubun/pp.
	Dump(label string, v any)
}

// CLIHandler is the MessageHandler used by the command-line entry point.
type CLIHandler struct {
	ctx    context.Context
	logger zerolog.Logger
	buf    *bytes.Buffer
	mu     sync.Mutex
	debug  bool
}

// NewCLIHandler builds a CLIHandler writing to stderr plus an in-memory
// buffer (unbounded; it keeps every log line of the run) used to reprint
// the full trace when --debug is set and a run aborts (spec §7).
func NewCLIHandler(ctx context.Context, debug bool, w io.Writer) *CLIHandler {
	buf := &bytes.Buffer{}
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.TraceLevel
	}
	multi := zerolog.MultiLevelWriter(zerolog.ConsoleWriter{Out: w}, zerolog.ConsoleWriter{Out: buf, NoColor: true})
	logger := zerolog.New(multi).Level(level).With().Timestamp().Logger()
	return &CLIHandler{ctx: ctx, logger: logger, buf: buf, debug: debug}
}

func (h *CLIHandler) ZeroLog() *zerolog.Logger { return &h.logger }

func (h *CLIHandler) GetLogBuffer() bytes.Buffer {
	h.mu.Lock()
	defer h.mu.Unlock()
	return *h.buf
}

func (h *CLIHandler) Debug() bool { return h.debug }

func (h *CLIHandler) GetContext() context.Context { return h.ctx }

func (h *CLIHandler) Dump(label string, v any) {
	if !h.debug {
		return
	}
	color.Grayln("---", label, "---")
	pp.Println(v)
}
