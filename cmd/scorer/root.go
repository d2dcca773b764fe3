package main

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/autextification/scorer/internal/dataset"
	"github.com/autextification/scorer/internal/discovery"
	"github.com/autextification/scorer/internal/models"
	"github.com/autextification/scorer/internal/orchestration"
	"github.com/autextification/scorer/internal/projectconfig"
	"github.com/autextification/scorer/internal/reporting"
	"github.com/autextification/scorer/internal/statistics"
	"github.com/autextification/scorer/internal/wizard"
	"github.com/spf13/cobra"
)

var version = "dev"

type scoreFlags struct {
	submissions string
	groundTruth string
	format      string
	method      string
	configPath  string
	seed        int64
	resamples   int
	confidence  float64
	keepGoing   bool
	debug       bool
}

func newRootCommand() *cobra.Command {
	var flags scoreFlags

	cmd := &cobra.Command{
		Use:   "scorer <subtask> <language>",
		Short: "Score shared-task submissions and print a leaderboard",
		Long: `Scorer evaluates every team run submitted for one subtask and language
against the ground truth and prints a leaderboard ranked by macro-F1.

Runs are read from <submissions_path>/<team>/<subtask>/<language>/ and the
ground truth from <ground_truth_path>/<subtask>/<language>/truth.tsv. Runs whose
ids do not match the ground truth are reported and left off the leaderboard.

Settings are taken from flags, then .scorer.yaml, then built-in defaults.`,
		Example: `  scorer subtask_1 en
  scorer subtask_2 es --format markdown --seed 7`,
		Version: version,
		Args:    validateArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Argument errors above print usage; runtime errors below do not.
			cmd.SilenceUsage = true
			return runScore(cmd, args, &flags)
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.submissions, "submissions_path", projectconfig.DefaultSubmissionsDir, "Root directory of team submissions")
	f.StringVar(&flags.groundTruth, "ground_truth_path", projectconfig.DefaultGroundTruthDir, "Root directory of the ground truth")
	f.StringVarP(&flags.format, "format", "f", projectconfig.DefaultFormat, "Leaderboard format: table, markdown, html, json, junit")
	f.Int64Var(&flags.seed, "seed", projectconfig.DefaultSeed, "Bootstrap RNG seed (negative for a random seed)")
	f.IntVar(&flags.resamples, "resamples", projectconfig.DefaultResamples, "Number of bootstrap resamples")
	f.Float64Var(&flags.confidence, "confidence", projectconfig.DefaultConfidenceLevel, "Confidence level of the macro-F1 interval")
	f.StringVar(&flags.method, "method", projectconfig.DefaultMethod, "Bootstrap interval method: basic or percentile")
	f.BoolVar(&flags.keepGoing, "keep-going", false, "Reject unreadable runs instead of aborting")
	f.BoolVar(&flags.debug, "debug", false, "Enable debug logging")
	f.StringVar(&flags.configPath, "config", "", "Path to a config file (default: nearest "+projectconfig.FileName+")")

	return cmd
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}

// validateArgs accepts either both positionals or none. With none the task is
// chosen interactively, which needs a terminal on stdin.
func validateArgs(cmd *cobra.Command, args []string) error {
	switch len(args) {
	case 0:
		if !wizard.IsInteractive(cmd.InOrStdin()) {
			return fmt.Errorf("requires <subtask> and <language> arguments")
		}
		return nil
	case 2:
		if _, err := models.ParseSubtask(args[0]); err != nil {
			return err
		}
		_, err := models.ParseLanguage(args[1])
		return err
	default:
		return fmt.Errorf("accepts <subtask> and <language>, received %d arg(s)", len(args))
	}
}

func resolveTask(cmd *cobra.Command, args []string) (models.Subtask, models.Language, error) {
	if len(args) == 2 {
		// Already checked by validateArgs.
		st, _ := models.ParseSubtask(args[0])
		lang, _ := models.ParseLanguage(args[1])
		return st, lang, nil
	}
	sel, err := wizard.RunTaskWizard(cmd.InOrStdin(), cmd.ErrOrStderr(), wizard.Selection{})
	if err != nil {
		return "", "", err
	}
	return sel.Subtask, sel.Language, nil
}

// settings is the merged view of flags, config file and defaults.
type settings struct {
	submissions string
	groundTruth string
	format      reporting.Format
	bootstrap   statistics.Options
	keepGoing   bool
}

func resolveSettings(cmd *cobra.Command, flags *scoreFlags) (*settings, *projectconfig.ProjectConfig, error) {
	var (
		cfg *projectconfig.ProjectConfig
		err error
	)
	if flags.configPath != "" {
		cfg, err = projectconfig.LoadFile(flags.configPath)
	} else {
		cfg, err = projectconfig.Load(".")
	}
	if err != nil {
		return nil, nil, err
	}

	changed := cmd.Flags().Changed
	if changed("submissions_path") {
		cfg.Paths.Submissions = flags.submissions
	}
	if changed("ground_truth_path") {
		cfg.Paths.GroundTruth = flags.groundTruth
	}
	if changed("format") {
		cfg.Output.Format = flags.format
	}
	if changed("resamples") {
		cfg.Bootstrap.Resamples = flags.resamples
	}
	if changed("confidence") {
		cfg.Bootstrap.ConfidenceLevel = flags.confidence
	}
	if changed("method") {
		cfg.Bootstrap.Method = flags.method
	}
	if changed("seed") {
		cfg.Bootstrap.Seed = &flags.seed
	}
	if changed("keep-going") {
		cfg.KeepGoing = &flags.keepGoing
	}

	format, err := reporting.ParseFormat(cfg.Output.Format)
	if err != nil {
		return nil, nil, err
	}
	method, err := statistics.ParseMethod(cfg.Bootstrap.Method)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Bootstrap.Resamples < 1 {
		return nil, nil, fmt.Errorf("resamples must be at least 1, got %d", cfg.Bootstrap.Resamples)
	}
	if cfg.Bootstrap.ConfidenceLevel <= 0 || cfg.Bootstrap.ConfidenceLevel >= 1 {
		return nil, nil, fmt.Errorf("confidence level must be between 0 and 1, got %v", cfg.Bootstrap.ConfidenceLevel)
	}

	bootstrap := statistics.DefaultOptions()
	bootstrap.Resamples = cfg.Bootstrap.Resamples
	bootstrap.ConfidenceLevel = cfg.Bootstrap.ConfidenceLevel
	bootstrap.Method = method

	s := &settings{
		submissions: cfg.Paths.Submissions,
		groundTruth: cfg.Paths.GroundTruth,
		format:      format,
		bootstrap:   bootstrap,
		keepGoing:   cfg.KeepGoing != nil && *cfg.KeepGoing,
	}
	if cfg.Bootstrap.Seed != nil {
		s.bootstrap.Seed = *cfg.Bootstrap.Seed
	}
	return s, cfg, nil
}

func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func runScore(cmd *cobra.Command, args []string, flags *scoreFlags) error {
	logger := newLogger(cmd.ErrOrStderr(), flags.debug)

	subtask, lang, err := resolveTask(cmd, args)
	if err != nil {
		return err
	}

	s, cfg, err := resolveSettings(cmd, flags)
	if err != nil {
		return err
	}
	if cfg.Source != "" {
		logger.Debug("Loaded config", "path", cfg.Source)
	}

	truthPath, err := discovery.TruthFile(s.groundTruth, subtask, lang)
	if err != nil {
		return err
	}
	truth, err := dataset.LoadTruth(truthPath)
	if err != nil {
		return fmt.Errorf("loading ground truth: %w", err)
	}
	logger.Debug("Loaded ground truth", "path", truthPath, "rows", truth.Len())

	evaluator := orchestration.NewEvaluator(truth, orchestration.Options{
		Bootstrap: s.bootstrap,
		KeepGoing: s.keepGoing,
	}, logger)
	outcome, err := evaluator.Evaluate(discovery.Runs(s.submissions, subtask, lang))
	if err != nil {
		return err
	}
	logger.Debug("Evaluation finished", "scored", len(outcome.Results), "rejected", len(outcome.Rejections))

	board := reporting.NewLeaderboard(subtask, lang, outcome.Results, outcome.Rejections)
	board.GeneratedAt = time.Now().UTC()
	return reporting.Write(cmd.OutOrStdout(), s.format, board)
}
