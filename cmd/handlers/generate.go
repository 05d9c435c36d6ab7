package handlers

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"isthatstilltrue/internal/config"
	"isthatstilltrue/internal/factgen"
)

var (
	titleStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	categoryStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	correctionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("84"))
	dimStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// NewGenerateCmd creates the generate command for running the pipeline from
// the terminal.
func NewGenerateCmd() *cobra.Command {
	var language string

	cmd := &cobra.Command{
		Use:   "generate <country> <graduation-year>",
		Short: "Generate debunked school facts for a country and year",
		Long: `Run the fact-generation pipeline and print the result.

Examples:
  isthatstilltrue generate Germany 1995
  isthatstilltrue generate "United States" 1988 --language en`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("graduation year must be a number: %s", args[1])
			}
			return runGenerate(cmd.Context(), args[0], year, language)
		},
	}

	cmd.Flags().StringVar(&language, "language", "en", "Response language (en or de)")

	return cmd
}

func runGenerate(ctx context.Context, country string, year int, language string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := getDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	svc, err := newServices(cfg, db)
	if err != nil {
		return err
	}

	result, err := svc.pipeline.Generate(ctx, country, year, language)
	if err != nil {
		return err
	}

	printGenerationResult(country, year, result)
	return nil
}

func printGenerationResult(country string, year int, result *factgen.Result) {
	fmt.Println(titleStyle.Render(fmt.Sprintf("What %s's class of %d learned that is no longer true", country, year)))

	switch {
	case result.Cached:
		fmt.Println(dimStyle.Render(fmt.Sprintf("(cached, %d days old)", result.CacheAge)))
	case result.Fallback:
		fmt.Println(dimStyle.Render(fmt.Sprintf("(fallback content, generation failed at stage %q)", result.Stage)))
	}
	fmt.Println()

	for i, f := range result.Facts {
		fmt.Printf("%d. %s %s\n", i+1, categoryStyle.Render("["+f.Category+"]"), f.Statement)
		fmt.Printf("   %s %s\n", correctionStyle.Render("→"), f.Correction)
		fmt.Println(dimStyle.Render(fmt.Sprintf("   debunked %d · score %.2f · confidence %s", f.YearDebunked, f.QualityScore, f.ConfidenceLevel)))
		if f.Salience != "" {
			fmt.Println(dimStyle.Render("   " + f.Salience))
		}
		fmt.Println()
	}

	if len(result.EducationProblems) > 0 {
		fmt.Println(titleStyle.Render("Education system of the era"))
		for _, p := range result.EducationProblems {
			fmt.Printf("• %s: %s\n", categoryStyle.Render(p.Problem), p.Description)
			fmt.Println(dimStyle.Render("  " + p.Impact))
		}
	}
}
