package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/gookit/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/diffusor/talkytime/internal/config"
	"github.com/diffusor/talkytime/internal/core"
	"github.com/diffusor/talkytime/internal/prompt"
	"github.com/diffusor/talkytime/internal/timestamp"
)

// RootCmd is taketake's single command: a fixed pipeline with no
// subcommands, unlike the teacher's multi-command subs2cards/translit
// surface (spec §6 CLI surface).
var RootCmd = &cobra.Command{
	Use:   "taketake SOURCE_WAV... DEST_PATH",
	Short: "Losslessly archive piano-recorder WAV files with FEC and byte-exact verification",
	Long: `taketake encodes each SOURCE_WAV to FLAC, generates PAR2 recovery
volumes, verifies the archive byte-exactly reproduces the source, and
derives a canonical filename from a spoken timestamp at the start of the
recording.

Example:
  taketake session1.wav session2.wav /archive/piano`,
	Args:          cobra.MinimumNArgs(1),
	RunE:          runTaketake,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var settings config.Settings

func init() {
	if err := config.InitConfig(""); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not initialize config: %v\n", err)
	}
	var err error
	settings, err = config.LoadSettings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not load settings: %v\n", err)
	}

	RootCmd.Flags().Bool("no-act", false, "suppress all filesystem mutations and user prompts")
	RootCmd.Flags().Bool("debug", false, "verbose tracing including the call site")
	RootCmd.Flags().Bool("no-prompt", false, "accept filename guesses without interaction")
	RootCmd.Flags().String("prefix", settings.Prefix, "filename prefix")
	RootCmd.Flags().String("instrument", settings.Instrument,
		"instrument tag; read from instrmnt.txt in the source directory when omitted")
	RootCmd.Flags().String("fallback-timestamp", settings.FallbackTimestamp,
		"one of now|mtime|ctime|atime|<literal timestamp YYYYmmdd[-HHMM[SS]][-aaa]>")
	RootCmd.Flags().Bool("skip-speech-to-text", false, "use the fallback timestamp for every file")
	RootCmd.Flags().Bool("keep-wavs", settings.KeepWavs, "do not delete source files after verification")
	RootCmd.Flags().Bool("skip-copyback", settings.SkipCopyback, "do not copy the archive back to the source location")
	RootCmd.Flags().Bool("skip-tests", false, "do not run the in-process grammar self-check at startup")
	RootCmd.Flags().String("continue", "", "resume a previous run; PROGRESS_DIR must be a child of DEST_PATH")
	RootCmd.Flags().String("target", "", "explicit destination directory, freeing all positionals to be sources")

	cobra.OnInitialize(func() {
		viper.SetEnvPrefix("TAKETAKE")
		viper.AutomaticEnv()
	})
}

// runTaketake translates cobra/viper flags into a core.RunRequest and
// core.Config, then drives the orchestrator (spec §6, §2).
func runTaketake(cmd *cobra.Command, args []string) error {
	target, _ := cmd.Flags().GetString("target")

	sources := args
	destPath := ""
	if target != "" {
		destPath = target
	} else {
		if len(args) < 2 {
			return argValidationError("expected one or more SOURCE_WAV followed by DEST_PATH, or --target")
		}
		destPath = args[len(args)-1]
		sources = args[:len(args)-1]
	}

	debug, _ := cmd.Flags().GetBool("debug")
	noAct, _ := cmd.Flags().GetBool("no-act")
	noPrompt, _ := cmd.Flags().GetBool("no-prompt")
	skipSTT, _ := cmd.Flags().GetBool("skip-speech-to-text")
	skipTests, _ := cmd.Flags().GetBool("skip-tests")
	continueDir, _ := cmd.Flags().GetString("continue")

	cfg := core.DefaultConfig()
	cfg.Prefix, _ = cmd.Flags().GetString("prefix")
	cfg.Instrument, _ = cmd.Flags().GetString("instrument")
	cfg.FallbackTimestamp, _ = cmd.Flags().GetString("fallback-timestamp")
	cfg.KeepWavs, _ = cmd.Flags().GetBool("keep-wavs")
	cfg.SkipCopyback, _ = cmd.Flags().GetBool("skip-copyback")
	if settings.NumListenerTasks > 0 {
		cfg.NumListenerTasks = settings.NumListenerTasks
	}
	if settings.FECVolumes > 0 {
		cfg.FECVolumes = settings.FECVolumes
	}
	if settings.FECRedundancyPct > 0 {
		cfg.FECRedundancyPct = settings.FECRedundancyPct
	}

	ctx := context.Background()
	handler := core.NewCLIHandler(ctx, debug, os.Stderr)

	if !skipTests {
		if err := runSelfCheck(); err != nil {
			return fmt.Errorf("self-check failed: %w", err)
		}
	}

	req := core.RunRequest{
		Sources:          sources,
		DestPath:         destPath,
		ContinueDir:      continueDir,
		SkipSpeechToText: skipSTT,
		NoPrompt:         noPrompt,
	}

	err := core.Run(ctx, req, cfg, handler, noAct, prompt.HuhConfirmer{})
	if err != nil {
		reportError(handler, err, debug)
		return runtimeErrorReported{}
	}
	return nil
}

// argValidationError marks an error as an argument-validation failure, so
// cli.Run can map it to exit code 2 rather than 1 (spec §6).
type argValidationError string

func (e argValidationError) Error() string { return string(e) }

func (e argValidationError) argValidation() {}

// runtimeErrorReported lets RunE return non-nil (so cobra's Execute
// reports failure to its caller) without a second, redundant message: the
// one-line "Error - aborting: …" was already rendered by reportError.
type runtimeErrorReported struct{}

func (runtimeErrorReported) Error() string { return "" }

// reportError renders the one-line "Error - aborting: …" failure mode spec
// §7 asks for, or the full in-memory trace under --debug.
func reportError(handler core.MessageHandler, err error, debug bool) {
	if debug {
		buf := handler.GetLogBuffer()
		fmt.Fprintln(os.Stderr, buf.String())
	}
	color.Redf("Error - aborting: %v\n", err)
}

// runSelfCheck re-verifies the spoken-timestamp grammar's worked examples
// (spec §8 scenarios S1-S3) before a run starts, gated off by --skip-tests.
func runSelfCheck() error {
	cases := []struct {
		transcript string
		want       string
	}{
		{"nineteen thirty eight wednesday may nineteenth two thousand and twenty one", "20210519-193800"},
		{"seven oh five and forty two seconds friday january first nineteen hundred test tone", "19000101-070542"},
		{"twelve hundred tuesday march third two thousand", "20000303-120000"},
	}
	for _, c := range cases {
		result, err := timestamp.Parse(c.transcript)
		if err != nil {
			return fmt.Errorf("grammar self-check on %q: %w", c.transcript, err)
		}
		if got := timestamp.CanonicalLiteral(result.DateTime); got != c.want {
			return fmt.Errorf("grammar self-check on %q: got %s, want %s", c.transcript, got, c.want)
		}
	}
	return nil
}
