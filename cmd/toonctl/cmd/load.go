package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newLoadCmd(addr *string) *cobra.Command {
	return &cobra.Command{
		Use:   "load file.json",
		Short: "Load webtoon records into the catalog",
		Long: `Read a JSON array of webtoon records from a file and send it to the
server. Records without an embedding are embedded server-side.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			// Validate locally so an obviously broken file fails fast.
			var probe []map[string]any
			if err := json.Unmarshal(data, &probe); err != nil {
				return fmt.Errorf("%s is not a JSON array of records: %w", args[0], err)
			}

			n, err := newClient(*addr).load(cmd.Context(), data)
			if err != nil {
				return err
			}
			fmt.Printf("Loaded %d webtoons.\n", n)
			return nil
		},
	}
}
