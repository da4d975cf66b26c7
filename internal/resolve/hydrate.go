package resolve

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/danielolaszy/lin/internal/linear"
	"github.com/danielolaszy/lin/internal/logging"
	"github.com/danielolaszy/lin/pkg/models"
)

// Relation names one dependent object attachable to an issue.
type Relation string

const (
	RelationState    Relation = "state"
	RelationAssignee Relation = "assignee"
	RelationTeam     Relation = "team"
	RelationProject  Relation = "project"
	RelationLabels   Relation = "labels"
	RelationComments Relation = "comments"
)

// AllRelations is every relation the hydrator knows, in a fixed order.
var AllRelations = []Relation{
	RelationState,
	RelationAssignee,
	RelationTeam,
	RelationProject,
	RelationLabels,
	RelationComments,
}

// relationSelections maps each relation to the GraphQL fields fetched for it.
var relationSelections = map[Relation]string{
	RelationState:    `state { id name type }`,
	RelationAssignee: `assignee { id name displayName email }`,
	RelationTeam:     `team { id key name }`,
	RelationProject:  `project { id name }`,
	RelationLabels:   `labels { nodes { id name isGroup } }`,
	RelationComments: `comments { nodes { id body createdAt user { id name displayName } } }`,
}

// requiredRelations are relations a well-formed issue always has. An issue
// missing one after hydration is dropped rather than surfaced as a partial
// record.
var requiredRelations = map[Relation]bool{
	RelationState: true,
	RelationTeam:  true,
}

// Hydrator attaches an issue's dependent objects concurrently.
type Hydrator struct {
	exec Executor
}

// NewHydrator creates a hydrator backed by the given executor.
func NewHydrator(exec Executor) *Hydrator {
	return &Hydrator{exec: exec}
}

// hydrationNode is the partial issue shape a single relation fetch returns.
type hydrationNode struct {
	State    *models.WorkflowState `json:"state"`
	Assignee *models.User          `json:"assignee"`
	Team     *models.Team          `json:"team"`
	Project  *models.Project       `json:"project"`
	Labels   *struct {
		Nodes []models.Label `json:"nodes"`
	} `json:"labels"`
	Comments *struct {
		Nodes []commentNode `json:"nodes"`
	} `json:"comments"`
}

type commentNode struct {
	ID        string       `json:"id"`
	Body      string       `json:"body"`
	CreatedAt string       `json:"createdAt"`
	User      *models.User `json:"user"`
}

// Hydrate fetches the requested relations for every issue. All relation
// fetches for all issues run concurrently and join before anything is
// returned; the first failure cancels the rest and fails the whole call.
// Output order matches input order. Issues missing a required relation
// after hydration are dropped.
func (h *Hydrator) Hydrate(ctx context.Context, issues []models.Issue, relations []Relation) ([]models.Issue, error) {
	if len(issues) == 0 || len(relations) == 0 {
		return issues, nil
	}

	hydrated := make([]models.Issue, len(issues))
	copy(hydrated, issues)

	g, ctx := errgroup.WithContext(ctx)

	for i := range hydrated {
		for _, relation := range relations {
			i, relation := i, relation
			g.Go(func() error {
				return h.fetchRelation(ctx, &hydrated[i], relation)
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	results := make([]models.Issue, 0, len(hydrated))
	for _, issue := range hydrated {
		if dropped, missing := missingRequired(&issue, relations); dropped {
			logging.Warn("dropping issue with missing required relation",
				"identifier", issue.Identifier,
				"relation", missing)
			continue
		}
		results = append(results, issue)
	}

	return results, nil
}

// fetchRelation fetches one relation for one issue and attaches it. A
// relation that legitimately has no value leaves the field nil or empty;
// that is an explicit absence, not an error.
func (h *Hydrator) fetchRelation(ctx context.Context, issue *models.Issue, relation Relation) error {
	selection, ok := relationSelections[relation]
	if !ok {
		return fmt.Errorf("unknown relation %q", relation)
	}

	query := fmt.Sprintf(`
		query Hydrate($id: String!) {
			issue(id: $id) {
				%s
			}
		}
	`, selection)

	resp, err := h.exec.Execute(ctx, &linear.Request{
		Query:     query,
		Variables: map[string]interface{}{"id": issue.ID},
	})
	if err != nil {
		return fmt.Errorf("failed to hydrate %s for %s: %w", relation, issue.Identifier, err)
	}

	var data struct {
		Issue *hydrationNode `json:"issue"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return fmt.Errorf("failed to parse %s hydration response: %w", relation, err)
	}
	if data.Issue == nil {
		return fmt.Errorf("issue %s disappeared during hydration", issue.Identifier)
	}

	attach(issue, relation, data.Issue)
	return nil
}

// attach writes one fetched relation onto the issue. Each relation touches
// a distinct field, so concurrent attaches for the same issue do not
// overlap.
func attach(issue *models.Issue, relation Relation, node *hydrationNode) {
	switch relation {
	case RelationState:
		issue.State = node.State
	case RelationAssignee:
		issue.Assignee = node.Assignee
	case RelationTeam:
		issue.Team = node.Team
	case RelationProject:
		issue.Project = node.Project
	case RelationLabels:
		if node.Labels != nil {
			issue.Labels = node.Labels.Nodes
		} else {
			issue.Labels = nil
		}
	case RelationComments:
		issue.Comments = nil
		if node.Comments != nil {
			for _, c := range node.Comments.Nodes {
				comment := models.Comment{
					ID:   c.ID,
					Body: c.Body,
					User: c.User,
				}
				if t, err := time.Parse(time.RFC3339, c.CreatedAt); err == nil {
					comment.CreatedAt = t
				}
				issue.Comments = append(issue.Comments, comment)
			}
		}
	}
}

// missingRequired reports whether a requested required relation came back
// empty for this issue.
func missingRequired(issue *models.Issue, relations []Relation) (bool, Relation) {
	for _, relation := range relations {
		if !requiredRelations[relation] {
			continue
		}
		switch relation {
		case RelationState:
			if issue.State == nil {
				return true, relation
			}
		case RelationTeam:
			if issue.Team == nil {
				return true, relation
			}
		}
	}
	return false, ""
}
