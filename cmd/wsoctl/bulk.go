package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

type BulkResultRow struct {
	Name    string `json:"name"`
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

var bulkCmd = &cobra.Command{
	Use:   "bulk <start|stop|delete|rebuild> <name>...",
	Short: "Apply one action to several workspaces",
	Args:  cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		client := NewClient(apiURL)

		req := map[string]interface{}{
			"action":  args[0],
			"targets": args[1:],
		}
		var resp struct {
			OK      bool            `json:"ok"`
			Results []BulkResultRow `json:"results"`
		}
		if err := client.Post("/v1/bulk", req, &resp); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		for _, r := range resp.Results {
			if r.OK {
				fmt.Printf("%s: ok\n", r.Name)
			} else {
				fmt.Printf("%s: failed (%s)\n", r.Name, r.Message)
			}
		}
		if !resp.OK {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(bulkCmd)
}
