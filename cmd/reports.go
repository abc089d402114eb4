package main

import (
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/bizlens/competitor-insights/internal/store"
)

var (
	reportsUser   string
	reportsLimit  int
	reportsFormat string
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "List stored comparison reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("compare"); err != nil {
			return err
		}

		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		if env.Store == nil {
			return eris.New("persistence is disabled (store.driver=none)")
		}

		reports, err := env.Store.ListReports(cmd.Context(), store.ReportFilter{
			UserBusiness: reportsUser,
			Limit:        reportsLimit,
		})
		if err != nil {
			return err
		}

		if reportsFormat == "json" {
			out, err := json.MarshalIndent(reports, "", "  ")
			if err != nil {
				return eris.Wrap(err, "marshal reports")
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		}

		if len(reports) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no reports found")
			return nil
		}
		for _, r := range reports {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %-30s  score %.2f  rank %d  competitors %d\n",
				r.ReportID,
				r.CreatedAt.Format("2006-01-02 15:04"),
				r.UserBusiness.Profile.Name,
				r.UserBusiness.Score.CompletenessScore,
				r.UserBusiness.Score.Rank,
				len(r.CompetitorBusinesses),
			)
		}
		return nil
	},
}

var reportShowCmd = &cobra.Command{
	Use:   "show <report-id>",
	Short: "Print one stored report as JSON",
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

		if env.Store == nil {
			return eris.New("persistence is disabled (store.driver=none)")
		}

		report, err := env.Store.GetReport(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return eris.Wrap(err, "marshal report")
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	reportsCmd.Flags().StringVar(&reportsUser, "user", "", "filter by compared business name")
	reportsCmd.Flags().IntVar(&reportsLimit, "limit", 20, "maximum reports to list")
	reportsCmd.Flags().StringVar(&reportsFormat, "format", "text", "output format: text or json")
	reportsCmd.AddCommand(reportShowCmd)
	rootCmd.AddCommand(reportsCmd)
}
