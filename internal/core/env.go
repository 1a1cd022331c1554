package core

import "context"

// Env bundles the dependencies every step task needs beyond its Stepper:
// the shared worklist, the run's tunables, the progress directory root,
// and the message handler for logging. Steps are plain closures built by
// the orchestrator that capture an *Env (spec §5 "Shared resources": the
// worklist itself needs no further synchronization once tokens establish
// the happens-before relation).
type Env struct {
	Worklist *Worklist
	Config   Config
	Handler  MessageHandler
	RunDir   string
	NoAct    bool
	Progress *ProgressReporter
}

func (e *Env) Log() MessageHandler { return e.Handler }

// WithContext is a convenience for steps that want the handler's base
// context merged with a per-call ctx; currently a passthrough since the
// handler's context is only used for its own lifecycle.
func (e *Env) WithContext(ctx context.Context) context.Context { return ctx }
