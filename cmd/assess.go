package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/toyinlola/complyscore/pkg/ai"
	"github.com/toyinlola/complyscore/pkg/ai/providers"
	"github.com/toyinlola/complyscore/pkg/assessment"
	"github.com/toyinlola/complyscore/pkg/bundle"
	"github.com/toyinlola/complyscore/pkg/category"
	"github.com/toyinlola/complyscore/pkg/cli"
	"github.com/toyinlola/complyscore/pkg/evidence"
	"github.com/toyinlola/complyscore/pkg/interfaces"
	"github.com/toyinlola/complyscore/pkg/report"
	"github.com/toyinlola/complyscore/pkg/scorer"
)

var stateFile string

var assessCmd = &cobra.Command{
	Use:   "assess <bundle.yml>",
	Short: "Score an assessment bundle and report compliance gaps",
	Long: `Assess runs the full scoring pipeline over an assessment bundle:
analyze every evidence item, pick the best answer per question, derive
weighted category scores, and report the overall risk level with gaps.

  complyscore assess ./acme-bundle.yml
  complyscore assess ./acme-bundle.yml --state acme-run.json --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runAssess,
}

func init() {
	assessCmd.Flags().StringVar(&stateFile, "state", "", "write run state JSON for later review")
	rootCmd.AddCommand(assessCmd)
}

func runAssess(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	start := time.Now()

	cfg, err := cli.LoadConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("assess: %w", err)
	}

	slog.Debug("config loaded",
		"scoring.gap_threshold", cfg.Scoring.GapThreshold,
		"scoring.confidence_threshold", cfg.Scoring.ConfidenceThreshold,
	)

	b, err := bundle.Load(args[0])
	if err != nil {
		return fmt.Errorf("assess: %w", err)
	}
	slog.Info("bundle loaded", "organization", b.Organization,
		"questions", len(b.Questions()), "evidence", len(b.Evidence()))

	orch, err := buildOrchestrator(cfg)
	if err != nil {
		return fmt.Errorf("assess: %w", err)
	}

	run, err := orch.CreateRun(b.Organization, b.WeightSet(), b.Questions(), b.Evidence())
	if err != nil {
		return fmt.Errorf("assess: %w", err)
	}

	run, err = orch.Execute(ctx, run.ID, assessment.Submission{})
	if err != nil {
		saveState(run)
		return fmt.Errorf("assess: %w", err)
	}
	saveState(run)

	if run.State == interfaces.StateNeedsReview && stateFile != "" {
		slog.Warn("run needs review; resume with the review command",
			"state", stateFile, "pending", len(run.Result.LowConfidence))
	}

	if err := writeReport(run, time.Since(start)); err != nil {
		return fmt.Errorf("assess: %w", err)
	}

	// Exit code 1 for CRITICAL risk so CI gates can block on it.
	if run.Result != nil && run.Result.RiskLevel == interfaces.RiskCritical {
		os.Exit(1)
	}

	return nil
}

// buildOrchestrator wires the analysis engine and aggregator from config.
func buildOrchestrator(cfg *cli.Config) (*assessment.Orchestrator, error) {
	var docOpts []evidence.DocumentOption
	if cfg.AI.Enabled {
		provider := providers.NewOpenAIProvider(ai.ProviderConfig{
			Endpoint: cfg.AI.Endpoint,
			Model:    cfg.AI.Model,
			APIKey:   os.Getenv(cfg.AI.APIKeyEnv),
			Type:     ai.ProviderOpenAICompatible,
		}, 0)
		docOpts = append(docOpts, evidence.WithExtractor(ai.NewExtractor(provider)))
	}

	registry := evidence.NewRegistry()
	for _, a := range []evidence.Analyzer{
		evidence.NewDocumentAnalyzer(docOpts...),
		evidence.NewExportAnalyzer(),
		evidence.NewManualAnswerAnalyzer(),
	} {
		if err := registry.Register(a); err != nil {
			return nil, err
		}
	}

	aggOpts, err := aggregatorOptions(cfg)
	if err != nil {
		return nil, err
	}

	return assessment.NewOrchestrator(
		assessment.NewStore(),
		evidence.NewEngine(registry),
		scorer.NewAggregator(aggOpts...),
	), nil
}

// aggregatorOptions translates scoring config into aggregator options.
func aggregatorOptions(cfg *cli.Config) ([]scorer.Option, error) {
	opts := []scorer.Option{
		scorer.WithGapThreshold(cfg.Scoring.GapThreshold),
		scorer.WithConfidenceThreshold(cfg.Scoring.ConfidenceThreshold),
		scorer.WithWeightTolerance(cfg.Scoring.WeightTolerance),
	}

	multipliers := scorer.DefaultTierMultipliers()
	if m := cfg.Scoring.TierMultipliers; m.Tier0 != 0 || m.Tier1 != 0 || m.Tier2 != 0 {
		if m.Tier0 != 0 {
			multipliers[interfaces.Tier0] = m.Tier0
		}
		if m.Tier1 != 0 {
			multipliers[interfaces.Tier1] = m.Tier1
		}
		if m.Tier2 != 0 {
			multipliers[interfaces.Tier2] = m.Tier2
		}
	}
	opts = append(opts, scorer.WithTierMultipliers(multipliers))

	if cfg.Scoring.CategoryRules != "" {
		mapperOpts, err := category.LoadRules(cfg.Scoring.CategoryRules)
		if err != nil {
			return nil, err
		}
		opts = append(opts, scorer.WithMapper(category.NewMapper(mapperOpts...)))
	}

	return opts, nil
}

// saveState persists the run to the --state file when one was requested.
func saveState(run *interfaces.AssessmentRun) {
	if stateFile == "" || run == nil {
		return
	}
	if err := assessment.SaveFile(stateFile, run); err != nil {
		slog.Error("failed to save run state", "path", stateFile, "error", err)
	}
}

// writeReport generates the report and writes it in the selected format.
func writeReport(run *interfaces.AssessmentRun, duration time.Duration) error {
	f, err := report.ForFormat(format)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if output != "" {
		file, fileErr := os.Create(output)
		if fileErr != nil {
			return fmt.Errorf("creating output file: %w", fileErr)
		}
		defer file.Close() // best-effort cleanup
		w = file
	}

	rpt := report.NewGenerator().Generate(run, duration)
	return f.Format(w, rpt)
}
