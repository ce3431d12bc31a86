package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/toyinlola/complyscore/pkg/assessment"
	"github.com/toyinlola/complyscore/pkg/cli"
	"github.com/toyinlola/complyscore/pkg/interfaces"
)

var (
	reviewAnswers   map[string]string
	reviewDocuments []string
	reviewSkip      bool
)

var reviewCmd = &cobra.Command{
	Use:   "review <state.json>",
	Short: "Resolve low-confidence answers on a run that needs review",
	Long: `Review resumes a run saved by assess --state. Supply better answers or
additional documents and the run is re-scored; previously-resolved
questions drop out of the pending set.

  complyscore review acme-run.json --answer q-kyc="Yes, verified at onboarding"
  complyscore review acme-run.json --document ./new-policy.txt
  complyscore review acme-run.json --skip`,
	Args: cobra.ExactArgs(1),
	RunE: runReview,
}

func init() {
	reviewCmd.Flags().StringToStringVar(&reviewAnswers, "answer", nil, "supplementary answer as questionID=text (repeatable)")
	reviewCmd.Flags().StringArrayVar(&reviewDocuments, "document", nil, "path to a supplementary policy document (repeatable)")
	reviewCmd.Flags().BoolVar(&reviewSkip, "skip", false, "accept current results despite unresolved answers (flagged in the report)")
	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	start := time.Now()
	statePath := args[0]

	cfg, err := cli.LoadConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("review: %w", err)
	}

	run, err := assessment.LoadFile(statePath)
	if err != nil {
		return fmt.Errorf("review: %w", err)
	}

	orch, err := buildOrchestrator(cfg)
	if err != nil {
		return fmt.Errorf("review: %w", err)
	}
	orch.Adopt(run)

	if reviewSkip {
		run, err = orch.SkipReview(run.ID)
	} else {
		supp, suppErr := buildSupplement()
		if suppErr != nil {
			return fmt.Errorf("review: %w", suppErr)
		}
		run, err = orch.Resubmit(ctx, run.ID, supp)
	}
	if err != nil {
		if run != nil {
			_ = assessment.SaveFile(statePath, run)
		}
		return fmt.Errorf("review: %w", err)
	}

	if err := assessment.SaveFile(statePath, run); err != nil {
		return fmt.Errorf("review: %w", err)
	}

	if err := writeReport(run, time.Since(start)); err != nil {
		return fmt.Errorf("review: %w", err)
	}
	return nil
}

// buildSupplement assembles the resubmission from the review flags.
func buildSupplement() (assessment.Supplement, error) {
	supp := assessment.Supplement{Answers: reviewAnswers}

	for _, path := range reviewDocuments {
		text, err := readDocument(path)
		if err != nil {
			return supp, err
		}
		supp.Documents = append(supp.Documents, interfaces.EvidenceItem{
			Source: interfaces.SourceUploadedDocument,
			Title:  strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
			Text:   text,
		})
	}

	return supp, nil
}

// readDocument reads a supplementary document's text from disk.
func readDocument(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading document %s: %w", path, err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", fmt.Errorf("document %s is empty", path)
	}
	return string(data), nil
}
