package main

import (
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var (
	searchLocation string
	searchLimit    int
	searchFormat   string
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search businesses through the configured data provider",
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

		results, err := env.Data.Search(cmd.Context(), args[0], searchLocation, searchLimit)
		if err != nil {
			return err
		}

		if searchFormat == "json" {
			out, err := json.MarshalIndent(results, "", "  ")
			if err != nil {
				return eris.Wrap(err, "marshal results")
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		}

		if len(results) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no businesses found")
			return nil
		}
		for _, p := range results {
			rating := "-"
			if p.Rating != nil {
				rating = fmt.Sprintf("%.1f", *p.Rating)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-30s  %-22s  rating %s  %s\n",
				p.Name, p.Category, rating, p.Address)
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().StringVar(&searchLocation, "location", "", "location bias, e.g. \"Helsinki, Finland\"")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 10, "maximum results")
	searchCmd.Flags().StringVar(&searchFormat, "format", "text", "output format: text or json")
	rootCmd.AddCommand(searchCmd)
}
