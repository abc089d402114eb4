package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/bizlens/competitor-insights/internal/comparison"
	"github.com/bizlens/competitor-insights/internal/model"
)

var (
	compareCompetitors []string
	compareStyle       string
	compareFormat      string
)

var compareCmd = &cobra.Command{
	Use:   "compare <business name or URL>",
	Short: "Run a one-shot competitor comparison",
	Long:  "Resolves the given business, compares it against competitors (supplied or discovered), and prints the scored report with AI suggestions.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("compare"); err != nil {
			return err
		}

		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		report, err := env.Orchestrator.CreateComparison(cmd.Context(), comparison.Request{
			UserIdentifier:        args[0],
			CompetitorIdentifiers: compareCompetitors,
			Style:                 model.ReportStyle(compareStyle),
		})
		if err != nil {
			return err
		}

		out, err := formatReport(report, compareFormat)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

// formatReport renders a report as indented JSON or a plain-text summary.
func formatReport(report *model.ComparisonReport, format string) (string, error) {
	switch format {
	case "json":
		out, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return "", eris.Wrap(err, "marshal report")
		}
		return string(out), nil
	case "text":
		var b strings.Builder
		fmt.Fprintf(&b, "Report %s\n\n", report.ReportID)
		fmt.Fprintf(&b, "%-30s  %7s  %4s\n", "Business", "Score", "Rank")
		writeRow(&b, report.UserBusiness, " (you)")
		for _, c := range report.CompetitorBusinesses {
			writeRow(&b, c, "")
		}

		b.WriteString("\nSummary:\n")
		if report.AIComparisonSummary.Raw != "" {
			fmt.Fprintf(&b, "  %s\n", report.AIComparisonSummary.Raw)
		} else {
			fmt.Fprintf(&b, "  %s\n", report.AIComparisonSummary.Overview)
			fmt.Fprintf(&b, "  Position: %s\n", report.AIComparisonSummary.CompetitivePosition)
		}

		if len(report.AISuggestions) > 0 {
			b.WriteString("\nSuggestions:\n")
			for _, s := range report.AISuggestions {
				fmt.Fprintf(&b, "  - %s\n", s)
			}
		}
		return b.String(), nil
	default:
		return "", eris.Errorf("unknown format %q (want json or text)", format)
	}
}

func writeRow(b *strings.Builder, rp model.RankedProfile, suffix string) {
	fmt.Fprintf(b, "%-30s  %7.2f  %4d%s\n",
		rp.Profile.Name, rp.Score.CompletenessScore, rp.Score.Rank, suffix)
}

func init() {
	compareCmd.Flags().StringSliceVar(&compareCompetitors, "competitors", nil, "competitor names or URLs (discovered when omitted)")
	compareCmd.Flags().StringVar(&compareStyle, "style", "casual", "analysis style: casual or data-driven")
	compareCmd.Flags().StringVar(&compareFormat, "format", "text", "output format: text or json")
	rootCmd.AddCommand(compareCmd)
}
