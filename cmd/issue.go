package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielolaszy/lin/internal/linear"
	"github.com/danielolaszy/lin/internal/logging"
	"github.com/danielolaszy/lin/internal/resolve"
	"github.com/danielolaszy/lin/pkg/models"
)

// issueCmd groups the issue subcommands.
var issueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Create, inspect and update issues",
}

var issueCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new issue",
	Long: `Create a new issue in a team.

Every reference flag accepts either a canonical ID or a human-readable
reference: the team by key or name, the project by name, labels by name or
group/label path, the parent by its ENG-123 identifier, the assignee by
name or email. All references are resolved together in a single batched
lookup before the create call is made.

Example:
  lin issue create --team ENG --title "Fix login crash" \
      --project "Mobile App" --label Bug --label Priority/High`,
	RunE: runIssueCreate,
}

var issueViewCmd = &cobra.Command{
	Use:   "view IDENTIFIER",
	Short: "Show one issue with its relations",
	Args:  cobra.ExactArgs(1),
	RunE:  runIssueView,
}

var issueListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a team's issues",
	RunE:  runIssueList,
}

var issueUpdateCmd = &cobra.Command{
	Use:   "update IDENTIFIER",
	Short: "Update an issue",
	Long: `Update an issue identified by its ENG-123 identifier or canonical ID.

Labels are merged as a set: --label-mode add (the default) unions the
given labels with the issue's current ones, --label-mode replace discards
any current label not re-specified, and --clear-labels removes them all.
Clearing cannot be combined with explicit labels or a mode.`,
	Args: cobra.ExactArgs(1),
	RunE: runIssueUpdate,
}

var issueCommentCmd = &cobra.Command{
	Use:   "comment IDENTIFIER",
	Short: "Add a comment to an issue",
	Args:  cobra.ExactArgs(1),
	RunE:  runIssueComment,
}

func init() {
	rootCmd.AddCommand(issueCmd)
	issueCmd.AddCommand(issueCreateCmd, issueViewCmd, issueListCmd, issueUpdateCmd, issueCommentCmd)

	issueCreateCmd.Flags().StringP("team", "t", "", "Team key, name or ID (required)")
	issueCreateCmd.Flags().String("title", "", "Issue title (required)")
	issueCreateCmd.Flags().StringP("description", "d", "", "Issue description")
	issueCreateCmd.Flags().StringP("project", "p", "", "Project name or ID")
	issueCreateCmd.Flags().StringArrayP("label", "l", nil, "Label name, group/label path or ID (repeatable)")
	issueCreateCmd.Flags().String("parent", "", "Parent issue identifier or ID")
	issueCreateCmd.Flags().StringP("assignee", "a", "", "Assignee name, email or ID")
	issueCreateCmd.Flags().String("cycle", "", "Cycle name or ID")
	issueCreateCmd.Flags().String("milestone", "", "Milestone name or ID")
	issueCreateCmd.Flags().Int("priority", 0, "Priority (0=none, 1=urgent, 2=high, 3=medium, 4=low)")
	issueCreateCmd.MarkFlagRequired("team")
	issueCreateCmd.MarkFlagRequired("title")

	issueListCmd.Flags().StringP("team", "t", "", "Team key, name or ID (required)")
	issueListCmd.Flags().String("state", "open", "Filter by state: open, closed or all")
	issueListCmd.MarkFlagRequired("team")

	issueUpdateCmd.Flags().String("title", "", "New title")
	issueUpdateCmd.Flags().StringP("description", "d", "", "New description")
	issueUpdateCmd.Flags().StringP("project", "p", "", "Move to project (name or ID)")
	issueUpdateCmd.Flags().StringP("assignee", "a", "", "Reassign (name, email or ID)")
	issueUpdateCmd.Flags().String("state", "", "Workflow state name or ID")
	issueUpdateCmd.Flags().String("cycle", "", "Move to cycle (name or ID)")
	issueUpdateCmd.Flags().String("milestone", "", "Move to milestone (name or ID)")
	issueUpdateCmd.Flags().Int("priority", -1, "New priority (0=none, 1=urgent, 2=high, 3=medium, 4=low)")
	issueUpdateCmd.Flags().StringArrayP("label", "l", nil, "Label to apply (repeatable)")
	issueUpdateCmd.Flags().String("label-mode", "add", "How labels combine with current ones: add or replace")
	issueUpdateCmd.Flags().Bool("clear-labels", false, "Remove every label from the issue")

	issueCommentCmd.Flags().StringP("body", "b", "", "Comment body (required)")
	issueCommentCmd.MarkFlagRequired("body")
}

func runIssueCreate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	team, _ := cmd.Flags().GetString("team")
	title, _ := cmd.Flags().GetString("title")
	description, _ := cmd.Flags().GetString("description")
	project, _ := cmd.Flags().GetString("project")
	labels, _ := cmd.Flags().GetStringArray("label")
	parent, _ := cmd.Flags().GetString("parent")
	assignee, _ := cmd.Flags().GetString("assignee")
	cycle, _ := cmd.Flags().GetString("cycle")
	milestone, _ := cmd.Flags().GetString("milestone")
	priority, _ := cmd.Flags().GetInt("priority")

	if priority < 0 || priority > 4 {
		return fmt.Errorf("priority must be between 0 and 4")
	}

	client, err := linear.NewClient()
	if err != nil {
		return fmt.Errorf("failed to initialize linear client: %w", err)
	}
	resolver := resolve.NewResolver(client)

	// One batched lookup covers every independent reference.
	slots := map[string]resolve.Reference{
		"team": {Entity: resolve.EntityTeam, Token: team},
	}
	if project != "" {
		slots["project"] = resolve.Reference{Entity: resolve.EntityProject, Token: project}
	}
	if parent != "" {
		slots["parent"] = resolve.Reference{Entity: resolve.EntityIssue, Token: parent}
	}
	if assignee != "" {
		slots["assignee"] = resolve.Reference{Entity: resolve.EntityUser, Token: assignee}
	}
	for i, label := range labels {
		slots[labelSlot(i)] = resolve.Reference{Entity: resolve.EntityLabel, Token: label}
	}

	logging.Info("resolving references", "count", len(slots))

	results, err := resolver.ResolveBatch(ctx, slots)
	if err != nil {
		return err
	}

	input := map[string]interface{}{
		"teamId": results["team"].ID,
		"title":  title,
	}
	if description != "" {
		input["description"] = description
	}
	if project != "" {
		input["projectId"] = results["project"].ID
	}
	if parent != "" {
		input["parentId"] = results["parent"].ID
	}
	if assignee != "" {
		input["assigneeId"] = results["assignee"].ID
	}
	if priority > 0 {
		input["priority"] = priority
	}
	if len(labels) > 0 {
		labelIDs := make([]string, 0, len(labels))
		for i := range labels {
			labelIDs = append(labelIDs, results[labelSlot(i)].ID)
		}
		input["labelIds"] = labelIDs
	}

	// Cycle and milestone lookups are scoped by the resolved team and
	// project, so they go in a second batch once those IDs are known.
	if cycle != "" || milestone != "" {
		scoped, err := resolveScoped(ctx, resolver, cycle, milestone,
			results["team"].ID, results["project"].ID)
		if err != nil {
			return err
		}
		if cycle != "" {
			input["cycleId"] = scoped["cycle"].ID
		}
		if milestone != "" {
			input["projectMilestoneId"] = scoped["milestone"].ID
		}
	}

	issue, err := client.CreateIssue(ctx, input)
	if err != nil {
		return err
	}

	logging.Info("created issue",
		"identifier", issue.Identifier,
		"url", issue.URL)

	if jsonOutput(cmd) {
		return printJSON(cmd, issue)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n%s\n", issue.Identifier, issue.Title, issue.URL)
	return nil
}

func runIssueView(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	client, err := linear.NewClient()
	if err != nil {
		return fmt.Errorf("failed to initialize linear client: %w", err)
	}
	resolver := resolve.NewResolver(client)
	hydrator := resolve.NewHydrator(client)

	res, err := resolver.ResolveIssue(ctx, args[0], false)
	if err != nil {
		return err
	}

	issue, err := client.GetIssue(ctx, res.ID)
	if err != nil {
		return err
	}

	hydrated, err := hydrator.Hydrate(ctx, []models.Issue{*issue}, resolve.AllRelations)
	if err != nil {
		return err
	}
	if len(hydrated) == 0 {
		return fmt.Errorf("issue %s is missing required data and cannot be displayed", args[0])
	}

	if jsonOutput(cmd) {
		return printJSON(cmd, hydrated[0])
	}
	printIssue(cmd, &hydrated[0])
	return nil
}

func runIssueList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	team, _ := cmd.Flags().GetString("team")
	state, _ := cmd.Flags().GetString("state")

	if state != "open" && state != "closed" && state != "all" {
		return fmt.Errorf("invalid state %q: expected open, closed or all", state)
	}

	client, err := linear.NewClient()
	if err != nil {
		return fmt.Errorf("failed to initialize linear client: %w", err)
	}
	resolver := resolve.NewResolver(client)
	hydrator := resolve.NewHydrator(client)

	teamID, err := resolver.Resolve(ctx, resolve.EntityTeam, team, nil)
	if err != nil {
		return err
	}

	issues, err := client.ListIssues(ctx, teamID, state)
	if err != nil {
		return err
	}

	logging.Info("found issues", "count", len(issues), "team", team)

	hydrated, err := hydrator.Hydrate(ctx, issues, []resolve.Relation{
		resolve.RelationState,
		resolve.RelationTeam,
		resolve.RelationAssignee,
		resolve.RelationLabels,
	})
	if err != nil {
		return err
	}

	if jsonOutput(cmd) {
		return printJSON(cmd, hydrated)
	}
	printIssueTable(cmd, hydrated)
	return nil
}

func runIssueUpdate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	title, _ := cmd.Flags().GetString("title")
	description, _ := cmd.Flags().GetString("description")
	project, _ := cmd.Flags().GetString("project")
	assignee, _ := cmd.Flags().GetString("assignee")
	state, _ := cmd.Flags().GetString("state")
	cycle, _ := cmd.Flags().GetString("cycle")
	milestone, _ := cmd.Flags().GetString("milestone")
	priority, _ := cmd.Flags().GetInt("priority")
	labels, _ := cmd.Flags().GetStringArray("label")
	labelModeStr, _ := cmd.Flags().GetString("label-mode")
	clearLabels, _ := cmd.Flags().GetBool("clear-labels")

	modeSet := cmd.Flags().Changed("label-mode")

	// Conflicting label flags are a usage error before any remote work.
	if err := resolve.ValidateLabelRequest(clearLabels, labels, modeSet); err != nil {
		return err
	}
	labelMode, err := resolve.ParseLabelMode(labelModeStr)
	if err != nil {
		return err
	}

	// Replacing with no labels given empties the set, same as --clear-labels.
	replaceAll := modeSet && labelMode == resolve.LabelModeReplacing && len(labels) == 0

	client, err := linear.NewClient()
	if err != nil {
		return fmt.Errorf("failed to initialize linear client: %w", err)
	}
	resolver := resolve.NewResolver(client)

	// The issue lookup also fetches its current label set when labels are
	// being merged, and its team when a scoped state or cycle lookup
	// follows. A canonical issue token would otherwise pass through with
	// no team for the second batch to scope by.
	wantIssueData := len(labels) > 0 || replaceAll || state != "" || cycle != ""

	slots := map[string]resolve.Reference{
		"issue": {Entity: resolve.EntityIssue, Token: args[0], WantCurrentLabels: wantIssueData},
	}
	if project != "" {
		slots["project"] = resolve.Reference{Entity: resolve.EntityProject, Token: project}
	}
	if assignee != "" {
		slots["assignee"] = resolve.Reference{Entity: resolve.EntityUser, Token: assignee}
	}
	for i, label := range labels {
		slots[labelSlot(i)] = resolve.Reference{Entity: resolve.EntityLabel, Token: label}
	}

	logging.Info("resolving references", "count", len(slots))

	results, err := resolver.ResolveBatch(ctx, slots)
	if err != nil {
		return err
	}
	issueRes := results["issue"]

	input := map[string]interface{}{}
	if title != "" {
		input["title"] = title
	}
	if description != "" {
		input["description"] = description
	}
	if project != "" {
		input["projectId"] = results["project"].ID
	}
	if assignee != "" {
		input["assigneeId"] = results["assignee"].ID
	}
	if priority >= 0 {
		if priority > 4 {
			return fmt.Errorf("priority must be between 0 and 4")
		}
		input["priority"] = priority
	}

	if clearLabels {
		input["labelIds"] = []string{}
	} else if len(labels) > 0 || replaceAll {
		resolved := make([]string, 0, len(labels))
		for i := range labels {
			resolved = append(resolved, results[labelSlot(i)].ID)
		}
		input["labelIds"] = resolve.MergeLabels(issueRes.CurrentLabelIDs, resolved, labelMode)
	}

	// State, cycle and milestone lookups depend on IDs from the first
	// batch, so they form a second one.
	if state != "" || cycle != "" || milestone != "" {
		teamID := issueRes.TeamID
		if teamID == "" && (state != "" || cycle != "") {
			return fmt.Errorf("could not determine the issue's team for a scoped lookup")
		}

		scoped := map[string]resolve.Reference{}
		if state != "" {
			scoped["state"] = resolve.Reference{
				Entity: resolve.EntityState,
				Token:  state,
				Scope:  &resolve.Scope{TeamID: teamID},
			}
		}
		if cycle != "" {
			scoped["cycle"] = resolve.Reference{
				Entity: resolve.EntityCycle,
				Token:  cycle,
				Scope:  &resolve.Scope{TeamID: teamID},
			}
		}
		if milestone != "" {
			ref := resolve.Reference{Entity: resolve.EntityMilestone, Token: milestone}
			if project != "" {
				ref.Scope = &resolve.Scope{ProjectID: results["project"].ID}
			}
			scoped["milestone"] = ref
		}

		scopedResults, err := resolver.ResolveBatch(ctx, scoped)
		if err != nil {
			return err
		}
		if state != "" {
			input["stateId"] = scopedResults["state"].ID
		}
		if cycle != "" {
			input["cycleId"] = scopedResults["cycle"].ID
		}
		if milestone != "" {
			input["projectMilestoneId"] = scopedResults["milestone"].ID
		}
	}

	if len(input) == 0 {
		return fmt.Errorf("nothing to update: supply at least one field flag")
	}

	issue, err := client.UpdateIssue(ctx, issueRes.ID, input)
	if err != nil {
		return err
	}

	logging.Info("updated issue", "identifier", issue.Identifier)

	if jsonOutput(cmd) {
		return printJSON(cmd, issue)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s updated\n", issue.Identifier)
	return nil
}

func runIssueComment(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	body, _ := cmd.Flags().GetString("body")

	client, err := linear.NewClient()
	if err != nil {
		return fmt.Errorf("failed to initialize linear client: %w", err)
	}
	resolver := resolve.NewResolver(client)

	res, err := resolver.ResolveIssue(ctx, args[0], false)
	if err != nil {
		return err
	}

	comment, err := client.CreateComment(ctx, res.ID, body)
	if err != nil {
		return err
	}

	logging.Info("added comment", "issue", args[0], "comment_id", comment.ID)
	fmt.Fprintf(cmd.OutOrStdout(), "comment added to %s\n", args[0])
	return nil
}

// labelSlot names the batch slot for the i-th label flag. The index keeps
// slot names unique and the resolved IDs recoverable in flag order.
func labelSlot(i int) string {
	return fmt.Sprintf("label%03d", i)
}

// resolveScoped runs the second-phase batch for references whose lookups
// are scoped by IDs resolved in the first phase.
func resolveScoped(ctx context.Context, resolver *resolve.Resolver, cycle, milestone, teamID, projectID string) (map[string]resolve.Resolution, error) {
	slots := map[string]resolve.Reference{}
	if cycle != "" {
		slots["cycle"] = resolve.Reference{
			Entity: resolve.EntityCycle,
			Token:  cycle,
			Scope:  &resolve.Scope{TeamID: teamID},
		}
	}
	if milestone != "" {
		ref := resolve.Reference{Entity: resolve.EntityMilestone, Token: milestone}
		if projectID != "" {
			ref.Scope = &resolve.Scope{ProjectID: projectID}
		}
		slots["milestone"] = ref
	}
	return resolver.ResolveBatch(ctx, slots)
}
