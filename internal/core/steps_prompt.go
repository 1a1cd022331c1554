package core

import (
	"context"
	"path/filepath"
)

// Confirmer is the narrow interface steps_prompt.go depends on, letting
// the interactive huh-based UI in internal/prompt live outside package
// core's import graph (core has no business depending on a TUI library
// directly; the orchestrator wires the concrete implementation in).
type Confirmer interface {
	Confirm(ctx context.Context, sourcePath string, speechStartS float64, guess string) (string, error)
}

// NewPromptStep builds the prompt task (spec §4.2): when interactive
// prompting is enabled it displays the autoname guess and awaits the
// operator's confirmation (with an audition keybinding wired through
// confirmer); otherwise it accepts the guess unmodified, matching
// --no-prompt (spec §6). --no-act also suppresses the prompt (spec §6:
// "suppress all filesystem mutations and user prompts"), even if
// interaction is otherwise enabled.
func NewPromptStep(env *Env, confirmer Confirmer) func(ctx context.Context, s *Stepper) error {
	return func(ctx context.Context, s *Stepper) error {
		return s.Walk(ctx, func(ctx context.Context, t Token) error {
			entry := env.Worklist.Get(t)

			name := entry.FnameGuess
			if env.Config.Interactive && !env.NoAct {
				startS := 0.0
				if entry.AudioInfo != nil && entry.AudioInfo.SpeechRange != nil {
					startS = entry.AudioInfo.SpeechRange.StartS
				}
				confirmed, err := confirmer.Confirm(ctx, entry.SourceWAV, startS, name)
				if err != nil {
					return err
				}
				name = confirmed
			}
			entry.FnamePrompted = name

			if !env.NoAct {
				if err := saveTextSidecar(filepath.Join(entry.WavProgressDir, ".filename_provided"), name); err != nil {
					return err
				}
			}
			env.Log().ZeroLog().Debug().Str("wav", entry.SourceWAV).Str("name", name).Msg("prompt: confirmed filename")
			return nil
		})
	}
}
