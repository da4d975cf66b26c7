package linear

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/danielolaszy/lin/pkg/models"
)

// issueNode is the JSON shape of an issue as returned by the API.
type issueNode struct {
	ID          string                `json:"id"`
	Identifier  string                `json:"identifier"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	URL         string                `json:"url"`
	Priority    int                   `json:"priority"`
	State       *models.WorkflowState `json:"state"`
	Team        *models.Team          `json:"team"`
	Project     *models.Project       `json:"project"`
	Assignee    *models.User          `json:"assignee"`
	Parent      *issueNode            `json:"parent"`
	Labels      *labelConnection      `json:"labels"`
	CreatedAt   string                `json:"createdAt"`
	UpdatedAt   string                `json:"updatedAt"`
	CompletedAt string                `json:"completedAt"`
}

type labelConnection struct {
	Nodes []models.Label `json:"nodes"`
}

// issueSelection is the field set fetched for an issue's primary record.
// Relations (state, team, assignee, labels, comments) are attached by
// hydration on read paths.
const issueSelection = `
	id
	identifier
	title
	description
	url
	priority
	createdAt
	updatedAt
	completedAt
`

// toModel converts an issueNode into the shared issue model.
func (n *issueNode) toModel() models.Issue {
	issue := models.Issue{
		ID:          n.ID,
		Identifier:  n.Identifier,
		Title:       n.Title,
		Description: n.Description,
		URL:         n.URL,
		Priority:    n.Priority,
		State:       n.State,
		Team:        n.Team,
		Project:     n.Project,
		Assignee:    n.Assignee,
	}

	if n.Parent != nil {
		parent := n.Parent.toModel()
		issue.Parent = &parent
	}

	if n.Labels != nil {
		issue.Labels = n.Labels.Nodes
	}

	if t, err := time.Parse(time.RFC3339, n.CreatedAt); err == nil {
		issue.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339, n.UpdatedAt); err == nil {
		issue.UpdatedAt = t
	}
	if n.CompletedAt != "" {
		if t, err := time.Parse(time.RFC3339, n.CompletedAt); err == nil {
			issue.ClosedAt = &t
		}
	}

	return issue
}

// GetIssue fetches a single issue's primary record by its canonical ID.
func (c *Client) GetIssue(ctx context.Context, id string) (*models.Issue, error) {
	query := fmt.Sprintf(`
		query Issue($id: String!) {
			issue(id: $id) {
				%s
			}
		}
	`, issueSelection)

	resp, err := c.Execute(ctx, &Request{
		Query:     query,
		Variables: map[string]interface{}{"id": id},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch issue: %w", err)
	}

	var data struct {
		Issue *issueNode `json:"issue"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse issue response: %w", err)
	}
	if data.Issue == nil {
		return nil, fmt.Errorf("issue %q not found", id)
	}

	issue := data.Issue.toModel()
	return &issue, nil
}

// ListIssues retrieves issues for a team, optionally filtered by workflow
// state type ("open", "closed" or "all"). Results are paginated internally
// and returned in API order.
func (c *Client) ListIssues(ctx context.Context, teamID, state string) ([]models.Issue, error) {
	query := fmt.Sprintf(`
		query Issues($teamId: ID!, $first: Int!, $after: String, $filter: IssueFilter) {
			issues(
				first: $first
				after: $after
				filter: {
					team: { id: { eq: $teamId } }
					and: [$filter]
				}
			) {
				nodes {
					%s
				}
				pageInfo {
					hasNextPage
					endCursor
				}
			}
		}
	`, issueSelection)

	var filter map[string]interface{}
	switch state {
	case "open":
		filter = map[string]interface{}{
			"state": map[string]interface{}{
				"type": map[string]interface{}{
					"in": []string{"backlog", "unstarted", "started"},
				},
			},
		}
	case "closed":
		filter = map[string]interface{}{
			"state": map[string]interface{}{
				"type": map[string]interface{}{
					"in": []string{"completed", "canceled"},
				},
			},
		}
	default:
		filter = nil
	}

	var all []models.Issue
	var cursor string

	for {
		variables := map[string]interface{}{
			"teamId": teamID,
			"first":  100,
		}
		if cursor != "" {
			variables["after"] = cursor
		}
		if filter != nil {
			variables["filter"] = filter
		}

		resp, err := c.Execute(ctx, &Request{Query: query, Variables: variables})
		if err != nil {
			return nil, fmt.Errorf("failed to fetch issues: %w", err)
		}

		var data struct {
			Issues struct {
				Nodes    []issueNode `json:"nodes"`
				PageInfo struct {
					HasNextPage bool   `json:"hasNextPage"`
					EndCursor   string `json:"endCursor"`
				} `json:"pageInfo"`
			} `json:"issues"`
		}
		if err := json.Unmarshal(resp.Data, &data); err != nil {
			return nil, fmt.Errorf("failed to parse issues response: %w", err)
		}

		for i := range data.Issues.Nodes {
			all = append(all, data.Issues.Nodes[i].toModel())
		}

		if !data.Issues.PageInfo.HasNextPage {
			break
		}
		cursor = data.Issues.PageInfo.EndCursor
	}

	return all, nil
}

// CreateIssue creates a new issue. The input map is passed through as the
// IssueCreateInput object; every reference in it must already be a canonical ID.
func (c *Client) CreateIssue(ctx context.Context, input map[string]interface{}) (*models.Issue, error) {
	query := fmt.Sprintf(`
		mutation CreateIssue($input: IssueCreateInput!) {
			issueCreate(input: $input) {
				success
				issue {
					%s
				}
			}
		}
	`, issueSelection)

	resp, err := c.Execute(ctx, &Request{
		Query:     query,
		Variables: map[string]interface{}{"input": input},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create issue: %w", err)
	}

	var data struct {
		IssueCreate struct {
			Success bool      `json:"success"`
			Issue   issueNode `json:"issue"`
		} `json:"issueCreate"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse create response: %w", err)
	}
	if !data.IssueCreate.Success {
		return nil, fmt.Errorf("issue creation reported as unsuccessful")
	}

	issue := data.IssueCreate.Issue.toModel()
	return &issue, nil
}

// UpdateIssue updates an existing issue identified by its canonical ID.
func (c *Client) UpdateIssue(ctx context.Context, id string, input map[string]interface{}) (*models.Issue, error) {
	query := fmt.Sprintf(`
		mutation UpdateIssue($id: String!, $input: IssueUpdateInput!) {
			issueUpdate(id: $id, input: $input) {
				success
				issue {
					%s
				}
			}
		}
	`, issueSelection)

	resp, err := c.Execute(ctx, &Request{
		Query: query,
		Variables: map[string]interface{}{
			"id":    id,
			"input": input,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update issue: %w", err)
	}

	var data struct {
		IssueUpdate struct {
			Success bool      `json:"success"`
			Issue   issueNode `json:"issue"`
		} `json:"issueUpdate"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse update response: %w", err)
	}
	if !data.IssueUpdate.Success {
		return nil, fmt.Errorf("issue update reported as unsuccessful")
	}

	issue := data.IssueUpdate.Issue.toModel()
	return &issue, nil
}

// CreateComment adds a comment to an issue identified by its canonical ID.
func (c *Client) CreateComment(ctx context.Context, issueID, body string) (*models.Comment, error) {
	query := `
		mutation CreateComment($input: CommentCreateInput!) {
			commentCreate(input: $input) {
				success
				comment {
					id
					body
					user {
						id
						name
						displayName
					}
					createdAt
				}
			}
		}
	`

	resp, err := c.Execute(ctx, &Request{
		Query: query,
		Variables: map[string]interface{}{
			"input": map[string]interface{}{
				"issueId": issueID,
				"body":    body,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	var data struct {
		CommentCreate struct {
			Success bool `json:"success"`
			Comment struct {
				ID        string       `json:"id"`
				Body      string       `json:"body"`
				User      *models.User `json:"user"`
				CreatedAt string       `json:"createdAt"`
			} `json:"comment"`
		} `json:"commentCreate"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse comment response: %w", err)
	}
	if !data.CommentCreate.Success {
		return nil, fmt.Errorf("comment creation reported as unsuccessful")
	}

	comment := models.Comment{
		ID:   data.CommentCreate.Comment.ID,
		Body: data.CommentCreate.Comment.Body,
		User: data.CommentCreate.Comment.User,
	}
	if t, err := time.Parse(time.RFC3339, data.CommentCreate.Comment.CreatedAt); err == nil {
		comment.CreatedAt = t
	}

	return &comment, nil
}
