package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/danielolaszy/lin/internal/linear"
	"github.com/danielolaszy/lin/internal/resolve"
)

// Catalog listing commands. These are thin read paths over the client;
// the only resolution involved is the optional team scope.

var teamCmd = &cobra.Command{
	Use:   "team",
	Short: "Inspect teams",
}

var teamListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every team in the workspace",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := linear.NewClient()
		if err != nil {
			return fmt.Errorf("failed to initialize linear client: %w", err)
		}

		teams, err := client.ListTeams(cmd.Context())
		if err != nil {
			return err
		}

		if jsonOutput(cmd) {
			return printJSON(cmd, teams)
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "KEY\tNAME\tID")
		for _, t := range teams {
			fmt.Fprintf(w, "%s\t%s\t%s\n", t.Key, t.Name, t.ID)
		}
		return w.Flush()
	},
}

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Inspect projects",
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every project in the workspace",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := linear.NewClient()
		if err != nil {
			return fmt.Errorf("failed to initialize linear client: %w", err)
		}

		projects, err := client.ListProjects(cmd.Context())
		if err != nil {
			return err
		}

		if jsonOutput(cmd) {
			return printJSON(cmd, projects)
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tID")
		for _, p := range projects {
			fmt.Fprintf(w, "%s\t%s\n", p.Name, p.ID)
		}
		return w.Flush()
	},
}

var labelCmd = &cobra.Command{
	Use:   "label",
	Short: "Inspect labels",
}

var labelListCmd = &cobra.Command{
	Use:   "list",
	Short: "List labels, optionally scoped to a team",
	RunE: func(cmd *cobra.Command, args []string) error {
		team, _ := cmd.Flags().GetString("team")

		client, err := linear.NewClient()
		if err != nil {
			return fmt.Errorf("failed to initialize linear client: %w", err)
		}

		teamID := ""
		if team != "" {
			resolver := resolve.NewResolver(client)
			teamID, err = resolver.Resolve(cmd.Context(), resolve.EntityTeam, team, nil)
			if err != nil {
				return err
			}
		}

		labels, err := client.ListLabels(cmd.Context(), teamID)
		if err != nil {
			return err
		}

		if jsonOutput(cmd) {
			return printJSON(cmd, labels)
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tSCOPE\tID")
		for _, l := range labels {
			name := l.Name
			if l.Parent != nil {
				name = l.Parent.Name + "/" + l.Name
			}
			if l.IsGroup {
				name += " (group)"
			}
			scope := "workspace"
			if l.Team != nil {
				scope = l.Team.Key
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", name, scope, l.ID)
		}
		return w.Flush()
	},
}

var teamStatesCmd = &cobra.Command{
	Use:   "states TEAM",
	Short: "List a team's workflow states",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := linear.NewClient()
		if err != nil {
			return fmt.Errorf("failed to initialize linear client: %w", err)
		}

		resolver := resolve.NewResolver(client)
		teamID, err := resolver.Resolve(cmd.Context(), resolve.EntityTeam, args[0], nil)
		if err != nil {
			return err
		}

		states, err := client.GetTeamStates(cmd.Context(), teamID)
		if err != nil {
			return err
		}

		if jsonOutput(cmd) {
			return printJSON(cmd, states)
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tTYPE\tID")
		for _, s := range states {
			fmt.Fprintf(w, "%s\t%s\t%s\n", s.Name, s.Type, s.ID)
		}
		return w.Flush()
	},
}

var cycleCmd = &cobra.Command{
	Use:   "cycle",
	Short: "Inspect cycles",
}

var cycleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a team's cycles",
	RunE: func(cmd *cobra.Command, args []string) error {
		team, _ := cmd.Flags().GetString("team")

		client, err := linear.NewClient()
		if err != nil {
			return fmt.Errorf("failed to initialize linear client: %w", err)
		}

		resolver := resolve.NewResolver(client)
		teamID, err := resolver.Resolve(cmd.Context(), resolve.EntityTeam, team, nil)
		if err != nil {
			return err
		}

		cycles, err := client.ListCycles(cmd.Context(), teamID)
		if err != nil {
			return err
		}

		if jsonOutput(cmd) {
			return printJSON(cmd, cycles)
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NUMBER\tNAME\tSTARTS\tSTATUS\tID")
		for _, c := range cycles {
			status := ""
			switch {
			case c.IsActive:
				status = "active"
			case c.IsNext:
				status = "next"
			case c.IsPrevious:
				status = "previous"
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", c.Number, c.Name, c.StartsAt, status, c.ID)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(teamCmd, projectCmd, labelCmd, cycleCmd)
	teamCmd.AddCommand(teamListCmd, teamStatesCmd)
	projectCmd.AddCommand(projectListCmd)
	labelCmd.AddCommand(labelListCmd)
	cycleCmd.AddCommand(cycleListCmd)

	labelListCmd.Flags().StringP("team", "t", "", "Scope to a team (key, name or ID)")
	cycleListCmd.Flags().StringP("team", "t", "", "Team key, name or ID (required)")
	cycleListCmd.MarkFlagRequired("team")
}
