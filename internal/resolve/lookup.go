package resolve

import (
	"fmt"
	"strings"
)

// lookupSpec describes how one entity type is searched: the GraphQL
// connection that serves it, the filter input type, the exact-match field,
// the optional scope field, and the candidate fields selected for
// disambiguation. Adding a new resolvable entity means adding a row here
// and, if it has a "current" notion, a tie-break list in disambiguate.go.
type lookupSpec struct {
	connection string
	filterType string
	exactField string
	scopeField string
	selection  string
}

var lookupTable = map[EntityType]lookupSpec{
	EntityTeam: {
		connection: "teams",
		filterType: "TeamFilter",
		exactField: "name",
		selection:  `id key name`,
	},
	EntityProject: {
		connection: "projects",
		filterType: "ProjectFilter",
		exactField: "name",
		selection:  `id name`,
	},
	EntityLabel: {
		connection: "issueLabels",
		filterType: "IssueLabelFilter",
		exactField: "name",
		scopeField: "team",
		selection:  `id name isGroup parent { id } team { id key }`,
	},
	EntityCycle: {
		connection: "cycles",
		filterType: "CycleFilter",
		exactField: "name",
		scopeField: "team",
		selection:  `id name number startsAt isActive isNext isPrevious team { id key }`,
	},
	EntityMilestone: {
		connection: "projectMilestones",
		filterType: "ProjectMilestoneFilter",
		exactField: "name",
		scopeField: "project",
		selection:  `id name targetDate project { id name }`,
	},
	EntityUser: {
		connection: "users",
		filterType: "UserFilter",
		exactField: "displayName",
		selection:  `id name displayName email`,
	},
	EntityIssue: {
		connection: "issues",
		filterType: "IssueFilter",
		selection:  `id identifier team { id key }`,
	},
	EntityState: {
		connection: "workflowStates",
		filterType: "WorkflowStateFilter",
		exactField: "name",
		scopeField: "team",
		selection:  `id name team { id key }`,
	},
}

// eq builds an exact-match comparator for one filter field.
func eq(field string, value interface{}) map[string]interface{} {
	return map[string]interface{}{field: map[string]interface{}{"eq": value}}
}

// buildFilter constructs the remote filter object for one classified
// reference. The generic shape is an exact match on the table's field plus
// an optional scope; entity types whose matching rules are richer (teams
// match key before name, users match any of their name fields, issues are
// addressed by identifier) override it.
func buildFilter(ref Reference, cls Classification) (map[string]interface{}, error) {
	spec := lookupTable[ref.Entity]

	switch ref.Entity {
	case EntityTeam:
		// Key takes precedence over name; both are queried at once and
		// key matches are preferred when distributing results. Keys match
		// case-insensitively so "eng" finds the team keyed "ENG".
		return map[string]interface{}{
			"or": []interface{}{
				map[string]interface{}{
					"key": map[string]interface{}{"eqIgnoreCase": ref.Token},
				},
				eq("name", ref.Token),
			},
		}, nil

	case EntityUser:
		return map[string]interface{}{
			"or": []interface{}{
				eq("name", ref.Token),
				eq("displayName", ref.Token),
				eq("email", ref.Token),
			},
		}, nil

	case EntityIssue:
		if cls.TeamKey == "" {
			return nil, &InvalidReferenceError{
				Token:  ref.Token,
				Reason: "expected an issue identifier like ENG-123",
			}
		}
		return map[string]interface{}{
			"team":   eq("key", cls.TeamKey),
			"number": map[string]interface{}{"eq": cls.Number},
		}, nil

	case EntityLabel:
		// Group containers are never directly assignable, so a plain label
		// reference only matches assignable labels.
		filter := map[string]interface{}{
			"name":    map[string]interface{}{"eq": ref.Token},
			"isGroup": map[string]interface{}{"eq": false},
		}
		applyScope(filter, spec, ref.Scope)
		return filter, nil

	default:
		filter := map[string]interface{}{
			spec.exactField: map[string]interface{}{"eq": ref.Token},
		}
		applyScope(filter, spec, ref.Scope)
		return filter, nil
	}
}

// buildGroupFilter matches the group half of a compound label path.
func buildGroupFilter(group string) map[string]interface{} {
	return map[string]interface{}{
		"name":    map[string]interface{}{"eq": group},
		"isGroup": map[string]interface{}{"eq": true},
	}
}

// buildChildFilter matches the child half of a compound label path by its
// name and its parent group's name. The returned candidates are verified
// against the resolved group's ID before disambiguation.
func buildChildFilter(group, child string) map[string]interface{} {
	return map[string]interface{}{
		"name":   map[string]interface{}{"eq": child},
		"parent": eq("name", group),
	}
}

// applyScope adds the scope filter for entities that support one.
func applyScope(filter map[string]interface{}, spec lookupSpec, scope *Scope) {
	if spec.scopeField == "" || scope == nil {
		return
	}

	var id string
	switch spec.scopeField {
	case "team":
		id = scope.TeamID
	case "project":
		id = scope.ProjectID
	}
	if id == "" {
		return
	}

	filter[spec.scopeField] = map[string]interface{}{
		"id": map[string]interface{}{"eq": id},
	}
}

// scopeDescription renders the searched scope for not-found errors.
func scopeDescription(entity EntityType, scope *Scope) string {
	if scope == nil {
		return ""
	}
	spec := lookupTable[entity]
	switch spec.scopeField {
	case "team":
		if scope.TeamID != "" {
			return fmt.Sprintf("team %s", scope.TeamID)
		}
	case "project":
		if scope.ProjectID != "" {
			return fmt.Sprintf("project %s", scope.ProjectID)
		}
	}
	return ""
}

// filterCandidates applies entity-specific precedence rules before
// disambiguation. Teams matching on key win over teams matching on name
// only, because keys are unique and names are mutable.
func filterCandidates(ref Reference, candidates []Candidate) []Candidate {
	if ref.Entity != EntityTeam {
		return candidates
	}

	var keyMatches []Candidate
	for _, c := range candidates {
		if strings.EqualFold(c.Key, ref.Token) {
			keyMatches = append(keyMatches, c)
		}
	}
	if len(keyMatches) > 0 {
		return keyMatches
	}
	return candidates
}
