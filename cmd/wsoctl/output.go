package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
)

func printResult(v interface{}) {
	if output == "json" {
		json.NewEncoder(os.Stdout).Encode(v)
		return
	}
	printTable(v)
}

func printTable(v interface{}) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	switch data := v.(type) {
	case []WorkspaceRow:
		if len(data) == 0 {
			fmt.Println("No workspaces found.")
			return
		}
		fmt.Fprintln(w, "NAME\tUID\tSTATE\tOWNER\tREPO\tCREATED")
		for _, ws := range data {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", ws.Name, ws.UID, workspaceState(ws), ws.Owner, truncate(ws.Repo, 40), ws.CreatedAt)
		}
	case WorkspaceRow:
		fmt.Fprintf(w, "Name:\t%s\n", data.Name)
		fmt.Fprintf(w, "UID:\t%s\n", data.UID)
		fmt.Fprintf(w, "State:\t%s\n", workspaceState(data))
		fmt.Fprintf(w, "Owner:\t%s\n", data.Owner)
		fmt.Fprintf(w, "Repo:\t%s\n", data.Repo)
		if data.Branch != "" {
			fmt.Fprintf(w, "Branch:\t%s\n", data.Branch)
		}
		if data.Image != "" {
			fmt.Fprintf(w, "Image:\t%s\n", data.Image)
		}
		fmt.Fprintf(w, "Created:\t%s\n", data.CreatedAt)
	case []ScheduleRow:
		if len(data) == 0 {
			fmt.Println("No schedules found.")
			return
		}
		fmt.Fprintln(w, "WORKSPACE\tACTION\tDAYS\tTIME")
		for _, s := range data {
			fmt.Fprintf(w, "%s\t%s\t%s\t%02d:%02d\n", s.Workspace, s.Action, dayNames(s.Days), s.Hour, s.Minute)
		}
	case []PresetRow:
		if len(data) == 0 {
			fmt.Println("No presets found.")
			return
		}
		fmt.Fprintln(w, "ID\tNAME\tREPO\tBRANCH")
		for _, p := range data {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.ID, p.Name, truncate(p.Repo, 40), p.Branch)
		}
	case []TaskRow:
		if len(data) == 0 {
			fmt.Println("No tasks found.")
			return
		}
		fmt.Fprintln(w, "ID\tACTION\tWORKSPACE\tSTATUS\tSTARTED")
		for _, t := range data {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", shortID(t.ID), t.Action, t.Workspace, t.Status, t.StartedAt)
		}
	default:
		json.NewEncoder(os.Stdout).Encode(v)
	}
	w.Flush()
}

func workspaceState(ws WorkspaceRow) string {
	switch {
	case ws.Creating:
		return "creating"
	case ws.Running:
		return "running"
	default:
		return "stopped"
	}
}

var weekdays = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

func dayNames(days []int) string {
	names := make([]string, 0, len(days))
	for _, d := range days {
		if d >= 0 && d < len(weekdays) {
			names = append(names, weekdays[d])
		}
	}
	return strings.Join(names, ",")
}

func shortID(s string) string {
	if len(s) > 8 {
		return s[:8]
	}
	return s
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
