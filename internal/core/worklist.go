package core

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/diffusor/talkytime/internal/silence"
)

// SpeechRange names the audio span the recognizer was pointed at, in
// seconds from the start of the source WAV (spec §3). Defined in
// internal/silence (the component that computes it) and aliased here so
// core can use the bare name without silence importing core back.
type SpeechRange = silence.SpeechRange

// AudioInfo is the cached result of listen's analysis of a single source
// file. Every field is independently optional: a file whose intro carries
// no usable speech still gets a partial record (spec §3, §7).
type AudioInfo struct {
	DurationS       *float64     `json:"duration_s,omitempty"`
	SpeechRange     *SpeechRange `json:"speech_range,omitempty"`
	RecognizedSpeech *string     `json:"recognized_speech,omitempty"`
	ParsedTimestamp *time.Time  `json:"parsed_timestamp,omitempty"`
	ExtraSpeech     []string    `json:"extra_speech,omitempty"`
}

// Entry is one worklist record: the mutable per-file state every step
// reads and writes its own fields of, addressed only by Token (spec §3).
type Entry struct {
	SourceWAV     string
	DestDir       string
	WavProgressDir string
	SourceLink    string

	AudioInfo *AudioInfo

	FnameGuess    string
	FnamePrompted string
	Timestamp     time.Time
	FlacPath      string
	ParPaths      []string
}

// Worklist is the shared, append-only-by-setup array of per-file records
// that tokens index into. Concurrent steppers each touch disjoint fields
// of an entry once the token-delivery protocol has made that field stable
// (spec §5 "Shared resources"), so the only lock needed here guards append
// itself, not field access.
type Worklist struct {
	mu      sync.Mutex
	entries []*Entry
}

func NewWorklist() *Worklist {
	return &Worklist{}
}

// Append adds a new entry and returns the Token naming it.
func (w *Worklist) Append(e *Entry) Token {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.entries = append(w.entries, e)
	return Token(len(w.entries) - 1)
}

// Get returns the entry named by t. Panics on an out-of-range token: a
// token that escaped setup without a backing entry is a programming error,
// not a recoverable condition (invariant 1, spec §3).
func (w *Worklist) Get(t Token) *Entry {
	w.mu.Lock()
	defer w.mu.Unlock()
	if int(t) < 0 || int(t) >= len(w.entries) {
		panic("core: token has no worklist entry")
	}
	return w.entries[t]
}

func (w *Worklist) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.entries)
}

// WavProgressDir composes dest_dir/<run-id>/<source-basename> (spec §3).
func WavProgressDir(destDir, runID, sourceWAV string) string {
	base := filepath.Base(sourceWAV)
	return filepath.Join(destDir, runID, base)
}
