package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/toonrec/toonrec/internal/usecase/recommend"
)

func newAskCmd(addr *string) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "ask \"query\"",
		Short: "Ask for webtoon recommendations",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			resp, err := newClient(*addr).recommend(cmd.Context(), query)
			if err != nil {
				return err
			}
			if jsonOutput {
				return json.NewEncoder(os.Stdout).Encode(resp)
			}
			printResponse(resp)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func printResponse(resp recommend.Response) {
	if len(resp.Items) == 0 {
		if resp.Message != "" {
			fmt.Println(resp.Message)
		} else {
			fmt.Println("No recommendations found.")
		}
		return
	}

	fmt.Printf("Intent: %s (confidence %.2f, strategy %s", resp.Intent, resp.Confidence, resp.Strategy)
	if resp.Degraded {
		fmt.Print(", degraded")
	}
	fmt.Println(")")

	for i, item := range resp.Items {
		fmt.Printf("%d. %s", i+1, item.Title)
		var meta []string
		if item.Genre != "" {
			meta = append(meta, item.Genre)
		}
		if item.Popularity != "" {
			meta = append(meta, string(item.Popularity))
		}
		if item.Likes > 0 {
			meta = append(meta, fmt.Sprintf("%d likes", item.Likes))
		}
		if len(meta) > 0 {
			fmt.Printf(" (%s)", strings.Join(meta, ", "))
		}
		fmt.Printf("  score=%.3f\n", item.Score)
		if item.Reason != "" {
			fmt.Printf("   %s\n", item.Reason)
		}
	}
}
