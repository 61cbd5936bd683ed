package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newChatCmd(addr *string) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Interactive recommendation session",
		Long:  `Read queries from stdin one per line. Type "exit" or "quit" to leave.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client := newClient(*addr)
			scanner := bufio.NewScanner(os.Stdin)

			fmt.Println("toonrec chat. Describe what you want to read; type \"exit\" to leave.")
			for {
				fmt.Print("> ")
				if !scanner.Scan() {
					fmt.Println()
					return scanner.Err()
				}
				query := strings.TrimSpace(scanner.Text())
				if query == "" {
					continue
				}
				if query == "exit" || query == "quit" {
					return nil
				}

				resp, err := client.recommend(cmd.Context(), query)
				if err != nil {
					fmt.Fprintln(os.Stderr, err)
					continue
				}
				printResponse(resp)
			}
		},
	}
}
