package core

import (
	"fmt"

	"github.com/diffusor/talkytime/internal/domainerr"
)

// Domain error kinds (spec §7) live in internal/domainerr so that the leaf
// collaborators (mediaprobe, silence, timestamp, recognizer, verify, fec)
// can raise them without importing core; these are re-exported here so the
// rest of package core keeps using the bare names it already did before
// the split.
type TaketakeError = domainerr.TaketakeError

var (
	ErrInvalidProgressFile  = domainerr.ErrInvalidProgressFile
	ErrSubprocess           = domainerr.ErrSubprocess
	ErrInvalidMediaFile     = domainerr.ErrInvalidMediaFile
	ErrMissingPar2File      = domainerr.ErrMissingPar2File
	ErrTimestampGrok        = domainerr.ErrTimestampGrok
	ErrNoSuitableAudioSpan  = domainerr.ErrNoSuitableAudioSpan
	ErrXdeltaMismatch       = domainerr.ErrXdeltaMismatch
	IsKind                  = domainerr.IsKind
)

// Protocol errors (spec §4.1, §7) are always fatal and structurally
// distinct from the domain errors above: they indicate the step network's
// own wiring or delivery discipline was violated, never a problem with the
// audio being processed.

// PreSyncTokenError is raised when a sync_from queue delivers anything but
// the end-token during a stepper's pre-sync drain.
type PreSyncTokenError struct {
	Stepper string
	Queue   string
	Got     Token
}

func (e *PreSyncTokenError) Error() string {
	return fmt.Sprintf("PreSyncTokenError: stepper %q received non-end token %d on sync_from queue %q",
		e.Stepper, e.Got, e.Queue)
}

// DuplicateTokenError is raised when a queue delivers the same non-end
// token twice to the same consumer.
type DuplicateTokenError struct {
	Stepper string
	Queue   string
	Token   Token
}

func (e *DuplicateTokenError) Error() string {
	return fmt.Sprintf("DuplicateTokenError: stepper %q saw token %d twice on queue %q",
		e.Stepper, e.Token, e.Queue)
}

// DesynchronizationError is raised when the end-token arrives on every
// pull_from queue but the per-queue pending sets are not all equal,
// meaning some queue delivered extra tokens no sibling queue ever saw.
type DesynchronizationError struct {
	Stepper string
	Extra   map[string][]Token
}

func (e *DesynchronizationError) Error() string {
	return fmt.Sprintf("DesynchronizationError: stepper %q has leftover undelivered tokens per queue: %v",
		e.Stepper, e.Extra)
}

// CycleError is raised by network validation when the union of sync and
// token edges is not acyclic.
type CycleError struct {
	BackEdge [2]string
	Path     []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("CycleError: back-edge %s -> %s closes cycle %v", e.BackEdge[0], e.BackEdge[1], e.Path)
}

// WiringError is raised by network validation when a queue is not claimed
// on exactly one producer and one consumer, or a self-loop is declared.
type WiringError struct {
	Queue  string
	Detail string
}

func (e *WiringError) Error() string {
	return fmt.Sprintf("WiringError: queue %q: %s", e.Queue, e.Detail)
}
