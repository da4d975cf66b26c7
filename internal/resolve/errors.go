package resolve

import (
	"fmt"
	"strings"
)

// NotFoundError reports a lookup that returned zero candidates.
type NotFoundError struct {
	Entity EntityType
	Token  string

	// Scope describes the scope that was searched, empty when unscoped.
	Scope string
}

func (e *NotFoundError) Error() string {
	if e.Scope != "" {
		return fmt.Sprintf("no %s found matching %q in %s", e.Entity, e.Token, e.Scope)
	}
	return fmt.Sprintf("no %s found matching %q", e.Entity, e.Token)
}

// AmbiguousError reports a lookup whose candidates could not be reduced to
// one entity. It carries the full candidate list so a human can pick
// manually, plus a hint on how to disambiguate.
type AmbiguousError struct {
	Entity     EntityType
	Token      string
	Candidates []Candidate
	Hint       string
}

func (e *AmbiguousError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s reference %q matches %d entities:", e.Entity, e.Token, len(e.Candidates))
	for _, c := range e.Candidates {
		b.WriteString("\n  - ")
		b.WriteString(describeCandidate(e.Entity, c))
	}
	if e.Hint != "" {
		b.WriteString("\n")
		b.WriteString(e.Hint)
	}
	return b.String()
}

// describeCandidate renders the metadata a human needs to tell candidates
// apart, varying by entity type.
func describeCandidate(entity EntityType, c Candidate) string {
	switch entity {
	case EntityCycle:
		team := ""
		if c.Team != nil {
			team = c.Team.Key
		}
		return fmt.Sprintf("%s (team %s, cycle %d, starts %s)", c.ID, team, c.Number, c.StartsAt)
	case EntityMilestone:
		project := ""
		if c.Project != nil {
			project = c.Project.Name
		}
		return fmt.Sprintf("%s (project %q, target %s)", c.ID, project, c.TargetDate)
	case EntityTeam:
		return fmt.Sprintf("%s (%s, %q)", c.ID, c.Key, c.Name)
	case EntityUser:
		return fmt.Sprintf("%s (%s)", c.ID, c.DisplayName)
	default:
		return fmt.Sprintf("%s (%q)", c.ID, c.Name)
	}
}

// InvalidReferenceError reports a malformed reference, such as a compound
// group/label path missing one half.
type InvalidReferenceError struct {
	Token  string
	Reason string
}

func (e *InvalidReferenceError) Error() string {
	return fmt.Sprintf("invalid reference %q: %s", e.Token, e.Reason)
}

// UsageConflictError reports mutually exclusive request shapes supplied
// together, caught before any resolution work begins.
type UsageConflictError struct {
	Reason string
}

func (e *UsageConflictError) Error() string {
	return e.Reason
}
