package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newStatsCmd(addr *string) *cobra.Command {
	var jsonOutput bool
	var refresh bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show catalog statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := newClient(*addr).stats(cmd.Context(), refresh)
			if err != nil {
				return err
			}
			if jsonOutput {
				return json.NewEncoder(os.Stdout).Encode(st)
			}

			fmt.Printf("Webtoons: %d\n", st.TotalWebtoons)
			fmt.Printf("Genres:   %s\n", strings.Join(st.AvailableGenres, ", "))
			fmt.Printf("Tiers:    %s\n", strings.Join(st.AvailablePopularity, ", "))
			if len(st.AvailableQuality) > 0 {
				fmt.Printf("Quality:  %s\n", strings.Join(st.AvailableQuality, ", "))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Bypass the server-side cache")
	return cmd
}

func newClassifyCmd(addr *string) *cobra.Command {
	return &cobra.Command{
		Use:   "classify \"query\"",
		Short: "Show how a query would be analyzed",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := newClient(*addr).classify(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}

			fmt.Printf("Intent:     %s (confidence %.2f)\n", res.Intent, res.Confidence)
			if res.Filters.Genre != "" {
				fmt.Printf("Genre:      %s\n", res.Filters.Genre)
			}
			if len(res.Filters.Popularity) > 0 {
				tiers := make([]string, len(res.Filters.Popularity))
				for i, t := range res.Filters.Popularity {
					tiers[i] = string(t)
				}
				fmt.Printf("Popularity: %s\n", strings.Join(tiers, ", "))
			}
			if res.Quality != "" {
				fmt.Printf("Quality:    %s\n", res.Quality)
			}
			fmt.Printf("Semantic:   %s\n", res.SemanticQuery)
			return nil
		},
	}
}
