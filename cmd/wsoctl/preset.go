package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

type PresetRow struct {
	ID     string       `json:"id"`
	Name   string       `json:"name"`
	Repo   string       `json:"repo"`
	Branch string       `json:"branch,omitempty"`
	Sizing SizingFields `json:"sizing"`
	Image  string       `json:"image,omitempty"`
}

type PresetListResponse struct {
	Presets []PresetRow `json:"presets"`
}

var (
	presetBranch string
	presetImage  string
	presetSizing SizingFields
)

var presetCmd = &cobra.Command{
	Use:   "preset",
	Short: "Preset management commands",
}

var presetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List presets",
	Run: func(cmd *cobra.Command, args []string) {
		client := NewClient(apiURL)

		var resp PresetListResponse
		if err := client.Get("/v1/presets", &resp); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		printResult(resp.Presets)
	},
}

var presetCreateCmd = &cobra.Command{
	Use:   "create <name> <repo-url>",
	Short: "Create a preset",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		client := NewClient(apiURL)

		req := PresetRow{
			Name:   args[0],
			Repo:   args[1],
			Branch: presetBranch,
			Image:  presetImage,
			Sizing: presetSizing,
		}
		var saved PresetRow
		if err := client.Post("/v1/presets", req, &saved); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Preset %s created (id %s).\n", saved.Name, saved.ID)
	},
}

var presetDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a preset",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := NewClient(apiURL)

		if err := client.Delete("/v1/presets/"+args[0], nil, nil); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Preset %s deleted.\n", args[0])
	},
}

func init() {
	presetCreateCmd.Flags().StringVar(&presetBranch, "branch", "", "Repository branch")
	presetCreateCmd.Flags().StringVar(&presetImage, "image", "", "Container image override")
	presetCreateCmd.Flags().StringVar(&presetSizing.CPURequest, "cpu-request", "", "CPU request (e.g. 500m)")
	presetCreateCmd.Flags().StringVar(&presetSizing.CPULimit, "cpu-limit", "", "CPU limit (e.g. 2)")
	presetCreateCmd.Flags().StringVar(&presetSizing.MemoryRequest, "memory-request", "", "Memory request (e.g. 1Gi)")
	presetCreateCmd.Flags().StringVar(&presetSizing.MemoryLimit, "memory-limit", "", "Memory limit (e.g. 4Gi)")

	presetCmd.AddCommand(presetListCmd, presetCreateCmd, presetDeleteCmd)
	rootCmd.AddCommand(presetCmd)
}
