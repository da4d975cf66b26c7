// Package models defines data structures shared across the application.
package models

import (
	"time"
)

// Team represents a Linear team.
type Team struct {
	// ID is the canonical UUID the API uses internally
	ID string `json:"id"`

	// Key is the short human code (e.g., "ENG"), unique per workspace
	Key string `json:"key"`

	// Name is the team's display name, unique but mutable
	Name string `json:"name"`
}

// Project represents a Linear project. Project names are not guaranteed
// unique across a workspace.
type Project struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Label represents an issue label. Labels form a two-level hierarchy:
// a group label (IsGroup true) may contain child labels, and group
// labels are never directly assignable to issues.
type Label struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	// IsGroup marks a container label
	IsGroup bool `json:"isGroup"`

	// Parent is the owning group label, if any
	Parent *Label `json:"parent,omitempty"`

	// Team is set for team-scoped labels and nil for workspace labels
	Team *Team `json:"team,omitempty"`
}

// Cycle represents a team's sprint-like iteration. The state flags
// describe the cycle's position relative to "now" and are used only
// for disambiguation.
type Cycle struct {
	ID string `json:"id"`

	// Name is optional and often absent
	Name string `json:"name"`

	// Number is the sequential cycle number within the team
	Number int `json:"number"`

	Team *Team `json:"team,omitempty"`

	StartsAt string `json:"startsAt"`
	EndsAt   string `json:"endsAt"`

	IsActive   bool `json:"isActive"`
	IsNext     bool `json:"isNext"`
	IsPrevious bool `json:"isPrevious"`
}

// Milestone represents a project milestone. Every milestone belongs to
// exactly one project.
type Milestone struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Project    *Project `json:"project,omitempty"`
	TargetDate string   `json:"targetDate"`
}

// User represents a workspace member.
type User struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
}

// WorkflowState represents an issue's workflow state (e.g., "In Progress").
type WorkflowState struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	// Type is one of: backlog, unstarted, started, completed, canceled
	Type string `json:"type"`
}

// Issue represents a Linear issue with its essential fields.
type Issue struct {
	// ID is the canonical UUID
	ID string `json:"id"`

	// Identifier is the human-facing reference, "{team.key}-{number}"
	Identifier string `json:"identifier"`

	// Title is the issue's title or summary
	Title string `json:"title"`

	// Description is the full body text of the issue
	Description string `json:"description"`

	// URL is the issue's web URL
	URL string `json:"url"`

	// Priority is 0=none, 1=urgent, 2=high, 3=medium, 4=low
	Priority int `json:"priority"`

	State     *WorkflowState `json:"state,omitempty"`
	Team      *Team          `json:"team,omitempty"`
	Project   *Project       `json:"project,omitempty"`
	Cycle     *Cycle         `json:"cycle,omitempty"`
	Milestone *Milestone     `json:"projectMilestone,omitempty"`
	Assignee  *User          `json:"assignee,omitempty"`
	Parent    *Issue         `json:"parent,omitempty"`

	// Labels is the issue's label set; no duplicates, no order guarantee
	Labels []Label `json:"labels,omitempty"`

	// Comments is populated by hydration on read paths
	Comments []Comment `json:"comments,omitempty"`

	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	ClosedAt  *time.Time `json:"closedAt,omitempty"`
}

// Comment represents a comment on an issue.
type Comment struct {
	ID        string    `json:"id"`
	Body      string    `json:"body"`
	User      *User     `json:"user,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
