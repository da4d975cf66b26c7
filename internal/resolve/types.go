// Package resolve translates human-typed references into the canonical IDs
// the Linear API requires, batching lookups so a single command needs as few
// round trips as possible.
package resolve

import (
	"context"

	"github.com/danielolaszy/lin/internal/linear"
	"github.com/danielolaszy/lin/pkg/models"
)

// EntityType identifies which remote catalog a reference is resolved against.
type EntityType string

const (
	EntityTeam      EntityType = "team"
	EntityProject   EntityType = "project"
	EntityLabel     EntityType = "label"
	EntityCycle     EntityType = "cycle"
	EntityMilestone EntityType = "milestone"
	EntityUser      EntityType = "user"
	EntityIssue     EntityType = "issue"
	EntityState     EntityType = "workflow state"
)

// Executor executes a GraphQL request. *linear.Client implements it; tests
// substitute a fake.
type Executor interface {
	Execute(ctx context.Context, req *linear.Request) (*linear.Response, error)
}

// Scope narrows a lookup to a parent entity. Both fields are canonical IDs,
// resolved before the scoped lookup runs.
type Scope struct {
	TeamID    string
	ProjectID string
}

// Reference is one user-supplied token awaiting resolution.
type Reference struct {
	Entity EntityType
	Token  string
	Scope  *Scope

	// WantCurrentLabels requests the issue's current label set in the same
	// batched lookup; only meaningful for issue references on update paths.
	WantCurrentLabels bool
}

// Resolution is the outcome for one slot of a batch.
type Resolution struct {
	ID string

	// TeamID is the owning team's ID, populated for issue references so
	// follow-up team-scoped lookups need no extra round trip.
	TeamID string

	// CurrentLabelIDs is populated for issue references that asked for it.
	CurrentLabelIDs []string
}

// Candidate is one lookup match, carrying the metadata tie-break rules and
// ambiguity errors need. Fields irrelevant to an entity type stay zero.
type Candidate struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Key         string `json:"key"`
	DisplayName string `json:"displayName"`
	Identifier  string `json:"identifier"`

	IsGroup bool `json:"isGroup"`

	Number     int    `json:"number"`
	StartsAt   string `json:"startsAt"`
	TargetDate string `json:"targetDate"`
	IsActive   bool   `json:"isActive"`
	IsNext     bool   `json:"isNext"`
	IsPrevious bool   `json:"isPrevious"`

	Team    *models.Team    `json:"team"`
	Project *models.Project `json:"project"`
	Parent  *candidateRef   `json:"parent"`
	Labels  *candidateNodes `json:"labels"`
}

type candidateRef struct {
	ID string `json:"id"`
}

type candidateNodes struct {
	Nodes []candidateRef `json:"nodes"`
}

// Resolver is the entry point for single and batched reference resolution.
type Resolver struct {
	exec Executor
}

// NewResolver creates a resolver backed by the given executor.
func NewResolver(exec Executor) *Resolver {
	return &Resolver{exec: exec}
}
