package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

type TaskRow struct {
	ID          string `json:"id"`
	Action      string `json:"action"`
	Workspace   string `json:"workspace"`
	Status      string `json:"status"`
	StartedAt   string `json:"started_at"`
	CompletedAt string `json:"completed_at,omitempty"`
	Error       string `json:"error,omitempty"`
}

type TaskListResponse struct {
	Tasks []TaskRow `json:"tasks"`
}

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Task history commands",
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent lifecycle operations",
	Run: func(cmd *cobra.Command, args []string) {
		client := NewClient(apiURL)

		var resp TaskListResponse
		if err := client.Get("/v1/tasks", &resp); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		printResult(resp.Tasks)
	},
}

func init() {
	taskCmd.AddCommand(taskListCmd)
	rootCmd.AddCommand(taskCmd)
}
