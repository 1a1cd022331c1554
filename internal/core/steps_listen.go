package core

import (
	"context"
	"os"
	"sync"

	"github.com/diffusor/talkytime/internal/mediaprobe"
	"github.com/diffusor/talkytime/internal/recognizer"
	"github.com/diffusor/talkytime/internal/silence"
	"github.com/diffusor/talkytime/internal/timestamp"
)

// NewListenStep builds the listen task (spec §4.2, §5): a bounded worker
// pool of env.Config.NumListenerTasks runs the recognizer over each token
// concurrently, emitting tokens as recognitions complete rather than in
// input order. A single dispatcher goroutine owns the Stepper's PreSync and
// Get calls; each worker calls Put for its own token when it finishes, and
// the dispatcher puts the end-token after every worker has returned.
func NewListenStep(env *Env, rec recognizer.Recognizer) func(ctx context.Context, s *Stepper) error {
	return func(ctx context.Context, s *Stepper) error {
		if err := s.PreSync(ctx); err != nil {
			return err
		}

		sem := make(chan struct{}, env.Config.NumListenerTasks)
		var wg sync.WaitGroup
		errCh := make(chan error, 1)
		reportErr := func(err error) {
			select {
			case errCh <- err:
			default:
			}
		}

		for {
			t, err := s.Get(ctx)
			if err != nil {
				return err
			}
			if t.IsEnd() {
				break
			}

			wg.Add(1)
			sem <- struct{}{}
			go func(t Token) {
				defer wg.Done()
				defer func() { <-sem }()
				if err := processListen(ctx, env, rec, t); err != nil {
					reportErr(err)
					return
				}
				s.Put(t)
			}(t)
		}
		wg.Wait()

		select {
		case err := <-errCh:
			return err
		default:
		}

		s.Put(EndToken)
		return nil
	}
}

func processListen(ctx context.Context, env *Env, rec recognizer.Recognizer, t Token) error {
	entry := env.Worklist.Get(t)
	sidecarPath := entry.WavProgressDir + "/.audioinfo.json"

	if ai, err := LoadAudioInfo(sidecarPath); err == nil {
		entry.AudioInfo = ai
		env.Log().ZeroLog().Debug().Str("wav", entry.SourceWAV).Msg("listen: reusing cached audioinfo")
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}

	ai := &AudioInfo{}

	duration, err := mediaprobe.Duration(ctx, entry.SourceWAV)
	if err != nil {
		return err
	}
	ai.DurationS = &duration

	span, err := silence.FindLikelySpeechSpan(ctx, entry.SourceWAV, duration, silence.Params{
		ThresholdDB:  env.Config.SilenceThresholdDB,
		MinDurationS: env.Config.SilenceMinDurationS,
		MinSpanS:     env.Config.MinSpeechSpanS,
		AttackS:      env.Config.SpeechAttackS,
		ReleaseS:     env.Config.SpeechReleaseS,
		CapS:         env.Config.SpeechSpanCapS,
		EpsilonS:     env.Config.EpsilonS,
	})
	if err != nil {
		if IsKind(err, "NoSuitableAudioSpan") {
			env.Log().ZeroLog().Warn().Str("wav", entry.SourceWAV).Err(err).Msg("listen: no speech span found")
			entry.AudioInfo = ai
			return SaveAudioInfo(sidecarPath, ai)
		}
		return err
	}
	ai.SpeechRange = &span

	transcript, err := rec.Recognize(ctx, entry.SourceWAV, span.StartS, span.DurationS)
	if err != nil {
		return err
	}
	if transcript == "" {
		entry.AudioInfo = ai
		return SaveAudioInfo(sidecarPath, ai)
	}
	ai.RecognizedSpeech = &transcript

	result, err := timestamp.Parse(transcript)
	if err != nil {
		if IsKind(err, "TimestampGrokError") {
			env.Log().ZeroLog().Warn().Str("wav", entry.SourceWAV).Err(err).Msg("listen: grammar rejected transcript")
			entry.AudioInfo = ai
			return SaveAudioInfo(sidecarPath, ai)
		}
		return err
	}
	if result.WeekdayWarning {
		env.Log().ZeroLog().Warn().Str("wav", entry.SourceWAV).Msg("listen: stated weekday disagrees with computed date")
	}

	ts := result.DateTime
	ai.ParsedTimestamp = &ts
	ai.ExtraSpeech = result.Extra

	entry.AudioInfo = ai
	return SaveAudioInfo(sidecarPath, ai)
}
