package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

type SizingFields struct {
	CPURequest    string `json:"cpu_request,omitempty"`
	CPULimit      string `json:"cpu_limit,omitempty"`
	MemoryRequest string `json:"memory_request,omitempty"`
	MemoryLimit   string `json:"memory_limit,omitempty"`
}

type WorkspaceRow struct {
	Name      string `json:"name"`
	UID       string `json:"uid"`
	Repo      string `json:"repo"`
	Branch    string `json:"branch,omitempty"`
	Image     string `json:"image,omitempty"`
	Owner     string `json:"owner"`
	Running   bool   `json:"running"`
	Creating  bool   `json:"creating"`
	CreatedAt string `json:"created_at"`
}

type WorkspaceListResponse struct {
	Workspaces []WorkspaceRow `json:"workspaces"`
}

var (
	createBranch string
	createImage  string
	createOwner  string
	createSizing SizingFields
)

var workspaceCmd = &cobra.Command{
	Use:     "workspace",
	Aliases: []string{"ws"},
	Short:   "Workspace management commands",
}

var wsCreateCmd = &cobra.Command{
	Use:   "create <name> <repo-url>",
	Short: "Create a new workspace",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		client := NewClient(apiURL)

		req := map[string]interface{}{
			"name":   args[0],
			"repo":   args[1],
			"branch": createBranch,
			"image":  createImage,
			"owner":  createOwner,
			"sizing": createSizing,
		}

		var resp struct {
			UID string `json:"uid"`
		}
		if err := client.Post("/v1/workspaces", req, &resp); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Workspace creation started.\n")
		fmt.Printf("UID: %s\n", resp.UID)
		fmt.Printf("Watch progress: wsoctl workspace logs %s\n", resp.UID)
	},
}

var wsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List workspaces",
	Run: func(cmd *cobra.Command, args []string) {
		client := NewClient(apiURL)

		var resp WorkspaceListResponse
		if err := client.Get("/v1/workspaces", &resp); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		printResult(resp.Workspaces)
	},
}

var wsGetCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "Get workspace details",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := NewClient(apiURL)

		var ws WorkspaceRow
		if err := client.Get("/v1/workspaces/"+args[0], &ws); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		printResult(ws)
	},
}

var wsStartCmd = &cobra.Command{
	Use:   "start <name>",
	Short: "Start a stopped workspace",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runAction(args[0], "start")
	},
}

var wsStopCmd = &cobra.Command{
	Use:   "stop <name>",
	Short: "Stop a running workspace",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runAction(args[0], "stop")
	},
}

var wsRebuildCmd = &cobra.Command{
	Use:   "rebuild <name>",
	Short: "Rebuild a workspace from its source",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runAction(args[0], "rebuild")
	},
}

var wsDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a workspace and all its resources",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := NewClient(apiURL)

		if err := client.Delete("/v1/workspaces/"+args[0], nil, nil); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Workspace %s deleted.\n", args[0])
	},
}

var wsResizeCmd = &cobra.Command{
	Use:   "resize <name>",
	Short: "Change a workspace's resource sizing",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := NewClient(apiURL)

		req := map[string]interface{}{"sizing": createSizing}
		if err := client.Post("/v1/workspaces/"+args[0]+":resize", req, nil); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Workspace %s resized.\n", args[0])
	},
}

var wsDuplicateCmd = &cobra.Command{
	Use:   "duplicate <name> <new-name>",
	Short: "Clone a workspace under a new name",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		client := NewClient(apiURL)

		var resp struct {
			UID string `json:"uid"`
		}
		req := map[string]string{"name": args[1]}
		if err := client.Post("/v1/workspaces/"+args[0]+":duplicate", req, &resp); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Duplicate creation started.\n")
		fmt.Printf("UID: %s\n", resp.UID)
	},
}

var wsLogsCmd = &cobra.Command{
	Use:   "logs <uid>",
	Short: "Show the creation log of a workspace",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := NewClient(apiURL)

		var resp struct {
			Steps []struct {
				Title  string `json:"title"`
				Status string `json:"status"`
			} `json:"steps"`
			Log    []string `json:"log"`
			Status string   `json:"status"`
		}
		if err := client.Get("/v1/workspaces/"+args[0]+"/creation", &resp); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		for _, step := range resp.Steps {
			fmt.Printf("[%s] %s\n", step.Status, step.Title)
		}
		fmt.Println()
		for _, line := range resp.Log {
			fmt.Println(line)
		}
		if resp.Status != "" {
			fmt.Printf("\nRun %s.\n", resp.Status)
		}
	},
}

func runAction(name, action string) {
	client := NewClient(apiURL)

	if err := client.Post("/v1/workspaces/"+name+":"+action, nil, nil); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Workspace %s: %s requested.\n", name, action)
}

func init() {
	wsCreateCmd.Flags().StringVar(&createBranch, "branch", "", "Repository branch")
	wsCreateCmd.Flags().StringVar(&createImage, "image", "", "Container image override")
	wsCreateCmd.Flags().StringVar(&createOwner, "owner", "", "Workspace owner")
	for _, c := range []*cobra.Command{wsCreateCmd, wsResizeCmd} {
		c.Flags().StringVar(&createSizing.CPURequest, "cpu-request", "", "CPU request (e.g. 500m)")
		c.Flags().StringVar(&createSizing.CPULimit, "cpu-limit", "", "CPU limit (e.g. 2)")
		c.Flags().StringVar(&createSizing.MemoryRequest, "memory-request", "", "Memory request (e.g. 1Gi)")
		c.Flags().StringVar(&createSizing.MemoryLimit, "memory-limit", "", "Memory limit (e.g. 4Gi)")
	}

	workspaceCmd.AddCommand(wsCreateCmd, wsListCmd, wsGetCmd, wsStartCmd, wsStopCmd,
		wsRebuildCmd, wsDeleteCmd, wsResizeCmd, wsDuplicateCmd, wsLogsCmd)
	rootCmd.AddCommand(workspaceCmd)
}
