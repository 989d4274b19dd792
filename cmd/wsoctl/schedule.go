package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

type ScheduleRow struct {
	Workspace string `json:"workspace"`
	PodName   string `json:"pod_name,omitempty"`
	Action    string `json:"action"`
	Days      []int  `json:"days"`
	Hour      int    `json:"hour"`
	Minute    int    `json:"minute"`
}

type ScheduleListResponse struct {
	Schedules []ScheduleRow `json:"schedules"`
}

var scheduleCmd = &cobra.Command{
	Use:     "schedule",
	Aliases: []string{"sched"},
	Short:   "Schedule management commands",
}

var schedListCmd = &cobra.Command{
	Use:   "list",
	Short: "List schedules",
	Run: func(cmd *cobra.Command, args []string) {
		client := NewClient(apiURL)

		var resp ScheduleListResponse
		if err := client.Get("/v1/schedules", &resp); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		printResult(resp.Schedules)
	},
}

var schedSetCmd = &cobra.Command{
	Use:   "set <workspace> <start|stop> <days> <HH:MM>",
	Short: "Set a schedule (days as comma-separated 0-6, 0 = Sunday)",
	Args:  cobra.ExactArgs(4),
	Run: func(cmd *cobra.Command, args []string) {
		days, err := parseDays(args[2])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		hour, minute, err := parseClock(args[3])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		client := NewClient(apiURL)
		req := ScheduleRow{
			Workspace: args[0],
			Action:    args[1],
			Days:      days,
			Hour:      hour,
			Minute:    minute,
		}
		if err := client.Put("/v1/schedules", req, nil); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Schedule saved: %s %s at %02d:%02d.\n", args[0], args[1], hour, minute)
	},
}

var schedRemoveCmd = &cobra.Command{
	Use:   "remove <workspace> <start|stop>",
	Short: "Remove a schedule",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		client := NewClient(apiURL)

		req := map[string]string{"workspace": args[0], "action": args[1]}
		if err := client.Delete("/v1/schedules", req, nil); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Schedule removed: %s %s.\n", args[0], args[1])
	},
}

var expiryGetCmd = &cobra.Command{
	Use:   "expiry",
	Short: "Show the workspace expiry policy",
	Run: func(cmd *cobra.Command, args []string) {
		client := NewClient(apiURL)

		var resp struct {
			Days int `json:"days"`
		}
		if err := client.Get("/v1/expiry", &resp); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Workspaces expire after %d days of inactivity.\n", resp.Days)
	},
}

var expirySetCmd = &cobra.Command{
	Use:   "set-expiry <days>",
	Short: "Set the workspace expiry policy in days",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		days, err := strconv.Atoi(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid day count %q\n", args[0])
			os.Exit(1)
		}

		client := NewClient(apiURL)
		if err := client.Put("/v1/expiry", map[string]int{"days": days}, nil); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Expiry set to %d days.\n", days)
	},
}

func parseDays(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	days := make([]int, 0, len(parts))
	for _, p := range parts {
		d, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || d < 0 || d > 6 {
			return nil, fmt.Errorf("invalid day %q (expected 0-6)", p)
		}
		days = append(days, d)
	}
	return days, nil
}

func parseClock(s string) (int, int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time %q (expected HH:MM)", s)
	}
	hour, err1 := strconv.Atoi(parts[0])
	minute, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid time %q (expected HH:MM)", s)
	}
	return hour, minute, nil
}

func init() {
	scheduleCmd.AddCommand(schedListCmd, schedSetCmd, schedRemoveCmd, expiryGetCmd, expirySetCmd)
	rootCmd.AddCommand(scheduleCmd)
}
