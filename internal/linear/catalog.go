package linear

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/danielolaszy/lin/pkg/models"
)

// ListTeams retrieves every team in the workspace.
func (c *Client) ListTeams(ctx context.Context) ([]models.Team, error) {
	query := `
		query Teams($first: Int!) {
			teams(first: $first) {
				nodes {
					id
					key
					name
				}
			}
		}
	`

	resp, err := c.Execute(ctx, &Request{
		Query:     query,
		Variables: map[string]interface{}{"first": 250},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch teams: %w", err)
	}

	var data struct {
		Teams struct {
			Nodes []models.Team `json:"nodes"`
		} `json:"teams"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse teams response: %w", err)
	}

	return data.Teams.Nodes, nil
}

// ListProjects retrieves every project in the workspace.
func (c *Client) ListProjects(ctx context.Context) ([]models.Project, error) {
	query := `
		query Projects($first: Int!) {
			projects(first: $first) {
				nodes {
					id
					name
				}
			}
		}
	`

	resp, err := c.Execute(ctx, &Request{
		Query:     query,
		Variables: map[string]interface{}{"first": 250},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch projects: %w", err)
	}

	var data struct {
		Projects struct {
			Nodes []models.Project `json:"nodes"`
		} `json:"projects"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse projects response: %w", err)
	}

	return data.Projects.Nodes, nil
}

// ListLabels retrieves labels, optionally scoped to a team. Workspace
// labels (no team) are always included by the API when no scope is given.
func (c *Client) ListLabels(ctx context.Context, teamID string) ([]models.Label, error) {
	query := `
		query Labels($first: Int!, $filter: IssueLabelFilter) {
			issueLabels(first: $first, filter: $filter) {
				nodes {
					id
					name
					isGroup
					parent {
						id
						name
					}
					team {
						id
						key
						name
					}
				}
			}
		}
	`

	variables := map[string]interface{}{"first": 250}
	if teamID != "" {
		variables["filter"] = map[string]interface{}{
			"team": map[string]interface{}{
				"id": map[string]interface{}{"eq": teamID},
			},
		}
	}

	resp, err := c.Execute(ctx, &Request{Query: query, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch labels: %w", err)
	}

	var data struct {
		IssueLabels struct {
			Nodes []models.Label `json:"nodes"`
		} `json:"issueLabels"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse labels response: %w", err)
	}

	return data.IssueLabels.Nodes, nil
}

// ListCycles retrieves the cycles belonging to a team.
func (c *Client) ListCycles(ctx context.Context, teamID string) ([]models.Cycle, error) {
	query := `
		query Cycles($first: Int!, $teamId: ID!) {
			cycles(first: $first, filter: { team: { id: { eq: $teamId } } }) {
				nodes {
					id
					name
					number
					startsAt
					endsAt
					isActive
					isNext
					isPrevious
					team {
						id
						key
					}
				}
			}
		}
	`

	resp, err := c.Execute(ctx, &Request{
		Query: query,
		Variables: map[string]interface{}{
			"first":  250,
			"teamId": teamID,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cycles: %w", err)
	}

	var data struct {
		Cycles struct {
			Nodes []models.Cycle `json:"nodes"`
		} `json:"cycles"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse cycles response: %w", err)
	}

	return data.Cycles.Nodes, nil
}

// GetTeamStates fetches the workflow states defined for a team.
func (c *Client) GetTeamStates(ctx context.Context, teamID string) ([]models.WorkflowState, error) {
	query := `
		query TeamStates($teamId: String!) {
			team(id: $teamId) {
				id
				states {
					nodes {
						id
						name
						type
					}
				}
			}
		}
	`

	resp, err := c.Execute(ctx, &Request{
		Query:     query,
		Variables: map[string]interface{}{"teamId": teamID},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch team states: %w", err)
	}

	var data struct {
		Team struct {
			States struct {
				Nodes []models.WorkflowState `json:"nodes"`
			} `json:"states"`
		} `json:"team"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse team states response: %w", err)
	}

	return data.Team.States.Nodes, nil
}
