package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/diffusor/talkytime/internal/recognizer"
)

// RunRequest collects everything the orchestrator needs beyond Config: the
// positional arguments and the flags that shape input discovery and resume
// validation (spec §6 CLI surface). The CLI layer translates cobra/viper
// flags into this struct; core stays free of any flag-parsing dependency.
type RunRequest struct {
	Sources  []string // SOURCE_WAV positionals
	DestPath string   // DEST_PATH positional, or --target

	ContinueDir string // --continue PROGRESS_DIR, empty for a fresh run

	SkipSpeechToText bool
	NoPrompt         bool
}

// DiscoverSourceWAVs validates that every entry in sources exists, is a
// regular file, and carries a recognized WAV extension (spec §9
// supplemented feature: both "wav" and "WAV" match, case-insensitively).
func DiscoverSourceWAVs(sources []string, cfg Config) ([]string, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("no source WAV files given")
	}
	wavs := make([]string, 0, len(sources))
	for _, s := range sources {
		abs, err := filepath.Abs(s)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", s, err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("source %s is a directory, expected a WAV file", s)
		}
		if !cfg.IsWavExtension(filepath.Ext(abs)) {
			return nil, fmt.Errorf("source %s does not have a recognized WAV extension", s)
		}
		wavs = append(wavs, abs)
	}
	return wavs, nil
}

// ResolveInstrument fills cfg.Instrument from instrmnt.txt in the first
// source's directory when no --instrument flag was given (spec §6).
func ResolveInstrument(cfg *Config, sourceWAVs []string) error {
	if cfg.Instrument != "" || len(sourceWAVs) == 0 {
		return nil
	}
	path := filepath.Join(filepath.Dir(sourceWAVs[0]), "instrmnt.txt")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("--instrument not given and %s does not exist", path)
		}
		return err
	}
	cfg.Instrument = strings.TrimSpace(string(data))
	if cfg.Instrument == "" {
		return fmt.Errorf("--instrument not given and %s is empty", path)
	}
	return nil
}

// ResolveRunDir picks the progress directory for this invocation: either
// the validated --continue target, or a freshly timestamped one under
// destDir (spec §3 run layout). continueDir, if given, must be an existing
// child of destDir.
func ResolveRunDir(destDir, continueDir string, runTimeLayout, runDirPrefix string) (runDir string, runID string, err error) {
	if continueDir == "" {
		runID = runDirPrefix + time.Now().Format(runTimeLayout) + ".tmp"
		runDir = filepath.Join(destDir, runID)
		if fileExists(runDir) {
			// Two runs started within the same wall-clock second; disambiguate
			// rather than resuming into an unrelated run by accident.
			runID += "." + uuid.NewString()[:8]
			runDir = filepath.Join(destDir, runID)
		}
		return runDir, runID, nil
	}

	absContinue, err := filepath.Abs(continueDir)
	if err != nil {
		return "", "", err
	}
	absDest, err := filepath.Abs(destDir)
	if err != nil {
		return "", "", err
	}
	rel, err := filepath.Rel(absDest, absContinue)
	if err != nil || strings.HasPrefix(rel, "..") || rel == "." {
		return "", "", fmt.Errorf("--continue %s must be a child of %s", continueDir, destDir)
	}
	info, err := os.Stat(absContinue)
	if err != nil {
		return "", "", fmt.Errorf("--continue %s: %w", continueDir, err)
	}
	if !info.IsDir() {
		return "", "", fmt.Errorf("--continue %s is not a directory", continueDir)
	}
	return absContinue, rel, nil
}

// BuildNetwork wires every step task named in spec §4.2 into a Network: the
// listen branch (listen -> reorder -> autoname -> prompt) and the encode
// branch (flacenc -> xdelta) converge at pargen and then cleanup, matching
// the data-flow diagram of spec §2.
func BuildNetwork(env *Env, sourceWAVs []string, destDir, runID string, rec recognizer.Recognizer, confirmer Confirmer) *Network {
	n := NewNetwork()

	n.Add("setup", StepOpts{
		SendTo: []string{"setup:listen", "setup:flacenc"},
	}, NewSetupStep(env, sourceWAVs, destDir, runID))

	n.Add("listen", StepOpts{
		PullFrom: []string{"setup:listen"},
		SendTo:   []string{"listen:reorder"},
	}, NewListenStep(env, rec))

	n.Add("reorder", StepOpts{
		PullFrom: []string{"listen:reorder"},
		SendTo:   []string{"reorder:autoname"},
	}, NewReorderStep(env))

	n.Add("autoname", StepOpts{
		PullFrom: []string{"reorder:autoname"},
		SendTo:   []string{"autoname:prompt"},
	}, NewAutonameStep(env))

	n.Add("prompt", StepOpts{
		PullFrom: []string{"autoname:prompt"},
		SendTo:   []string{"prompt:pargen"},
	}, NewPromptStep(env, confirmer))

	n.Add("flacenc", StepOpts{
		PullFrom: []string{"setup:flacenc"},
		SendTo:   []string{"flacenc:pargen", "flacenc:xdelta"},
	}, NewFlacencStep(env))

	n.Add("xdelta", StepOpts{
		PullFrom: []string{"flacenc:xdelta"},
		SendTo:   []string{"xdelta:cleanup"},
	}, NewXdeltaStep(env))

	n.Add("pargen", StepOpts{
		PullFrom: []string{"flacenc:pargen", "prompt:pargen"},
		SendTo:   []string{"pargen:cleanup"},
	}, NewPargenStep(env))

	n.Add("cleanup", StepOpts{
		PullFrom: []string{"pargen:cleanup", "xdelta:cleanup"},
	}, NewCleanupStep(env))

	return n
}

// Run discovers inputs, validates the resume state, constructs the network
// and drives it to completion (spec §2 Orchestrator responsibility).
// confirmer is the interactive implementation the CLI wires in
// (internal/prompt.HuhConfirmer); it is only consulted when cfg.Interactive
// remains true after --no-prompt is applied.
func Run(ctx context.Context, req RunRequest, cfg Config, handler MessageHandler, noAct bool, confirmer Confirmer) error {
	sourceWAVs, err := DiscoverSourceWAVs(req.Sources, cfg)
	if err != nil {
		return err
	}
	if err := ResolveInstrument(&cfg, sourceWAVs); err != nil {
		return err
	}
	cfg.Interactive = cfg.Interactive && !req.NoPrompt

	destDir, err := filepath.Abs(req.DestPath)
	if err != nil {
		return err
	}
	if !noAct {
		if err := os.MkdirAll(destDir, 0o755); err != nil {
			return err
		}
	}

	runDir, runID, err := ResolveRunDir(destDir, req.ContinueDir, cfg.RunTimeLayout, cfg.RunDirPrefix)
	if err != nil {
		return err
	}
	if !noAct {
		if err := os.MkdirAll(runDir, 0o755); err != nil {
			return err
		}
	}

	env := &Env{
		Worklist: NewWorklist(),
		Config:   cfg,
		Handler:  handler,
		RunDir:   runDir,
		NoAct:    noAct,
		Progress: NewProgressReporter(len(sourceWAVs)),
	}

	var rec recognizer.Recognizer = recognizer.ExternalBinary{Bin: "speech-to-text"}
	if req.SkipSpeechToText {
		rec = recognizer.NullRecognizer{}
	}

	network := BuildNetwork(env, sourceWAVs, destDir, runID, rec, confirmer)
	return network.Run(ctx)
}
