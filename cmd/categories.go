package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/toyinlola/complyscore/pkg/category"
	"github.com/toyinlola/complyscore/pkg/cli"
	"github.com/toyinlola/complyscore/pkg/interfaces"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories [label]",
	Short: "List canonical gap categories or resolve a free-text label",
	Long: `Without arguments, categories prints the canonical category table used
for vendor gap routing. With a label argument, it resolves the label the
same way the scorer does.

  complyscore categories
  complyscore categories "KYC and AML Procedures"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCategories,
}

func init() {
	rootCmd.AddCommand(categoriesCmd)
}

func runCategories(cmd *cobra.Command, args []string) error {
	cfg, err := cli.LoadConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("categories: %w", err)
	}

	var opts []category.Option
	if cfg.Scoring.CategoryRules != "" {
		opts, err = category.LoadRules(cfg.Scoring.CategoryRules)
		if err != nil {
			return fmt.Errorf("categories: %w", err)
		}
	}
	mapper := category.NewMapper(opts...)

	if len(args) == 1 {
		resolved, ok := mapper.Map(args[0])
		if !ok {
			fmt.Printf("%q does not match any canonical category\n", args[0])
			return nil
		}
		fmt.Printf("%q → %s\n", args[0], resolved)
		return nil
	}

	fmt.Println("Canonical gap categories:")
	for _, c := range interfaces.CanonicalCategories() {
		fmt.Printf("  %s\n", c)
	}
	return nil
}
