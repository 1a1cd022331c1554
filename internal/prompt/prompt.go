// Package prompt implements the interactive confirm/edit UI the prompt
// step uses to gate the listen branch's filename guess on operator
// approval (spec §4.2, §9 "interactive prompt's visual style" is
// out-of-scope, so only the minimal huh-based form is implemented here).
package prompt

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/gookit/color"

	"github.com/diffusor/talkytime/internal/toolrunner"
)

// AuditionKey is the name of the audition key. Confirm does not bind it:
// the form offers audition through a yes/no field instead, and no key
// starts playback while the form is open.
const AuditionKey = "alt+h"

// HuhConfirmer adapts Confirm to core.Confirmer, keeping package core free
// of a direct huh/TUI dependency.
type HuhConfirmer struct{}

func (HuhConfirmer) Confirm(ctx context.Context, sourcePath string, speechStartS float64, guess string) (string, error) {
	return Confirm(ctx, sourcePath, speechStartS, guess)
}

// Confirm displays guess and awaits the operator's edited value. The form
// also asks whether to audition first; answering yes plays sourcePath from
// speechStartS with an on-screen display once the form is submitted, then
// shows the form again with the edited value.
func Confirm(ctx context.Context, sourcePath string, speechStartS float64, guess string) (string, error) {
	value := guess
	playHint := "answer yes below to audition the spoken intro before confirming"

	var audition bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(color.Sprintf("<cyan>Confirm filename for %s</>", sourcePath)).
				Description(playHint).
				Value(&value).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("filename cannot be empty")
					}
					return nil
				}),
			huh.NewConfirm().
				Title("Audition the spoken intro first?").
				Value(&audition),
		),
	)
	if err := form.RunWithContext(ctx); err != nil {
		return "", err
	}
	if audition {
		if _, err := toolrunner.Run(ctx, "play_osd", "", map[string]string{
			"input":   sourcePath,
			"start_s": fmt.Sprintf("%.2f", speechStartS),
		}); err != nil {
			return "", err
		}
		// Re-prompt after playback so the operator can revise with the audio fresh.
		return Confirm(ctx, sourcePath, speechStartS, value)
	}
	return value, nil
}
