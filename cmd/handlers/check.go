package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"isthatstilltrue/internal/config"
)

// NewCheckCmd creates the check command for fact-checking one statement.
func NewCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <statement>",
		Short: "Fact-check a single statement",
		Long: `Check whether a statement, as it might have been taught in school, is
still considered true today.

Examples:
  isthatstilltrue check "Pluto is the ninth planet of the solar system"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context(), strings.Join(args, " "))
		},
	}
}

func runCheck(ctx context.Context, statement string) error {
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

	verdict, err := svc.checker.Check(ctx, statement)
	if err != nil {
		return err
	}

	fmt.Println(titleStyle.Render("Fact check"))
	fmt.Printf("Statement: %s\n\n", statement)

	if verdict.IsStillValid {
		fmt.Println(correctionStyle.Render("✓ Still considered true"))
	} else {
		fmt.Println(categoryStyle.Render("✗ No longer considered true"))
		if verdict.Correction != "" {
			fmt.Printf("Correction: %s\n", verdict.Correction)
		}
		if verdict.YearDebunked > 0 {
			fmt.Printf("Debunked: %d\n", verdict.YearDebunked)
		}
	}

	fmt.Printf("\n%s\n", verdict.Explanation)
	fmt.Println(dimStyle.Render(fmt.Sprintf("confidence %.2f", verdict.Confidence)))
	if len(verdict.Sources) > 0 {
		fmt.Println(dimStyle.Render("sources: " + strings.Join(verdict.Sources, ", ")))
	}

	return nil
}
