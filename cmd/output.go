package cmd

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/danielolaszy/lin/pkg/models"
)

// jsonOutput reports whether the persistent --json flag was set.
func jsonOutput(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

// printJSON writes any value as indented JSON to the command's stdout.
func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printIssue renders one hydrated issue as plain text.
func printIssue(cmd *cobra.Command, issue *models.Issue) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "%s %s\n", issue.Identifier, issue.Title)
	if issue.State != nil {
		fmt.Fprintf(out, "State:    %s\n", issue.State.Name)
	}
	if issue.Assignee != nil {
		fmt.Fprintf(out, "Assignee: %s\n", issue.Assignee.DisplayName)
	}
	if issue.Project != nil {
		fmt.Fprintf(out, "Project:  %s\n", issue.Project.Name)
	}
	if len(issue.Labels) > 0 {
		names := make([]string, 0, len(issue.Labels))
		for _, l := range issue.Labels {
			names = append(names, l.Name)
		}
		fmt.Fprintf(out, "Labels:   %s\n", strings.Join(names, ", "))
	}
	if issue.Description != "" {
		fmt.Fprintf(out, "\n%s\n", issue.Description)
	}
	for _, c := range issue.Comments {
		author := ""
		if c.User != nil {
			author = c.User.DisplayName
		}
		fmt.Fprintf(out, "\n--- %s (%s)\n%s\n", author, c.CreatedAt.Format("2006-01-02"), c.Body)
	}
}

// printIssueTable renders a list of issues as an aligned table.
func printIssueTable(cmd *cobra.Command, issues []models.Issue) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATE\tASSIGNEE\tTITLE")
	for _, issue := range issues {
		state := ""
		if issue.State != nil {
			state = issue.State.Name
		}
		assignee := ""
		if issue.Assignee != nil {
			assignee = issue.Assignee.DisplayName
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", issue.Identifier, state, assignee, issue.Title)
	}
	w.Flush()
}
