package resolve

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/danielolaszy/lin/internal/linear"
	"github.com/danielolaszy/lin/internal/logging"
)

// lookupLimit caps the candidate count fetched per slot. Exact-match
// filters rarely return more than a handful; anything near the cap is
// ambiguous beyond repair anyway.
const lookupLimit = 50

// labelGroupEntity names the group half of a compound label path in
// not-found errors, so a missing group reads distinctly from a missing
// child label.
const labelGroupEntity EntityType = "label group"

// slotPlan tracks one slot through the batch: its classification and the
// aliases its lookups occupy in the combined document.
type slotPlan struct {
	name string
	ref  Reference
	cls  Classification

	alias      string
	groupAlias string
	childAlias string
}

// ResolveBatch resolves a bundle of heterogeneous references in a single
// combined request. Already-canonical references pass through without
// remote work; everything else becomes one aliased lookup in one GraphQL
// document. Any slot failing fails the whole batch, and no partial results
// are returned.
func (r *Resolver) ResolveBatch(ctx context.Context, refs map[string]Reference) (map[string]Resolution, error) {
	names := make([]string, 0, len(refs))
	for name := range refs {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make(map[string]Resolution, len(refs))
	var plans []*slotPlan

	for i, name := range names {
		ref := refs[name]
		cls := Classify(ref.Entity, ref.Token)

		if cls.Canonical && !ref.WantCurrentLabels {
			results[name] = Resolution{ID: cls.ID}
			continue
		}

		plan := &slotPlan{
			name:  name,
			ref:   ref,
			cls:   cls,
			alias: fmt.Sprintf("ref%d", i),
		}

		if cls.Strategy == ByGroupPath {
			if cls.Group == "" || cls.Child == "" {
				return nil, &InvalidReferenceError{
					Token:  ref.Token,
					Reason: "expected a group/label path with both halves present",
				}
			}
			plan.groupAlias = plan.alias + "_group"
			plan.childAlias = plan.alias + "_child"
		}

		plans = append(plans, plan)
	}

	if len(plans) == 0 {
		return results, nil
	}

	query, variables, err := buildBatchDocument(plans)
	if err != nil {
		return nil, err
	}

	logging.Debug("executing batched lookup",
		"slots", len(plans),
		"passthrough", len(refs)-len(plans))

	resp, err := r.exec.Execute(ctx, &linear.Request{Query: query, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("batched lookup failed: %w", err)
	}

	var data map[string]struct {
		Nodes []Candidate `json:"nodes"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse batched lookup response: %w", err)
	}

	for _, plan := range plans {
		resolution, err := distribute(plan, data)
		if err != nil {
			// All-or-nothing: successful slots are discarded with the batch.
			return nil, err
		}
		results[plan.name] = resolution
	}

	return results, nil
}

// Resolve resolves a single reference to its canonical ID.
func (r *Resolver) Resolve(ctx context.Context, entity EntityType, token string, scope *Scope) (string, error) {
	results, err := r.ResolveBatch(ctx, map[string]Reference{
		"ref": {Entity: entity, Token: token, Scope: scope},
	})
	if err != nil {
		return "", err
	}
	return results["ref"].ID, nil
}

// ResolveIssue resolves an issue reference, optionally fetching the
// issue's current label set in the same request for update paths.
func (r *Resolver) ResolveIssue(ctx context.Context, token string, wantCurrentLabels bool) (Resolution, error) {
	results, err := r.ResolveBatch(ctx, map[string]Reference{
		"issue": {Entity: EntityIssue, Token: token, WantCurrentLabels: wantCurrentLabels},
	})
	if err != nil {
		return Resolution{}, err
	}
	return results["issue"], nil
}

// buildBatchDocument combines every planned lookup into one GraphQL
// document, one aliased connection per lookup, each with its own filter
// variable.
func buildBatchDocument(plans []*slotPlan) (string, map[string]interface{}, error) {
	var decls []string
	var fields []string
	variables := make(map[string]interface{})

	addLookup := func(alias string, spec lookupSpec, filter map[string]interface{}, selection string) {
		decls = append(decls, fmt.Sprintf("$%s: %s", alias, spec.filterType))
		fields = append(fields, fmt.Sprintf(
			"\t%s: %s(first: %d, filter: $%s) {\n\t\tnodes { %s }\n\t}",
			alias, spec.connection, lookupLimit, alias, selection))
		variables[alias] = filter
	}

	for _, plan := range plans {
		spec := lookupTable[plan.ref.Entity]

		switch {
		case plan.cls.Strategy == ByGroupPath:
			groupSpec := lookupTable[EntityLabel]
			addLookup(plan.groupAlias, groupSpec, buildGroupFilter(plan.cls.Group), groupSpec.selection)
			addLookup(plan.childAlias, groupSpec, buildChildFilter(plan.cls.Group, plan.cls.Child), groupSpec.selection)

		case plan.ref.Entity == EntityIssue && plan.cls.Canonical:
			// Canonical issue that still needs its current label set.
			filter := map[string]interface{}{
				"id": map[string]interface{}{"eq": plan.cls.ID},
			}
			addLookup(plan.alias, spec, filter, issueLookupSelection(plan.ref))

		default:
			filter, err := buildFilter(plan.ref, plan.cls)
			if err != nil {
				return "", nil, err
			}
			selection := spec.selection
			if plan.ref.Entity == EntityIssue {
				selection = issueLookupSelection(plan.ref)
			}
			addLookup(plan.alias, spec, filter, selection)
		}
	}

	query := fmt.Sprintf("query Resolve(%s) {\n%s\n}",
		strings.Join(decls, ", "), strings.Join(fields, "\n"))

	return query, variables, nil
}

// issueLookupSelection extends the issue selection with the current label
// set when the caller asked for it.
func issueLookupSelection(ref Reference) string {
	selection := lookupTable[EntityIssue].selection
	if ref.WantCurrentLabels {
		selection += ` labels { nodes { id } }`
	}
	return selection
}

// distribute maps one slot's candidate set(s) back to a resolution,
// applying precedence filtering and disambiguation.
func distribute(plan *slotPlan, data map[string]struct {
	Nodes []Candidate `json:"nodes"`
}) (Resolution, error) {
	if plan.cls.Strategy == ByGroupPath {
		return distributeGroupPath(plan, data)
	}

	candidates := filterCandidates(plan.ref, data[plan.alias].Nodes)
	if len(candidates) == 0 {
		return Resolution{}, &NotFoundError{
			Entity: plan.ref.Entity,
			Token:  plan.ref.Token,
			Scope:  scopeDescription(plan.ref.Entity, plan.ref.Scope),
		}
	}

	id, err := disambiguate(plan.ref.Entity, plan.ref.Token, candidates)
	if err != nil {
		return Resolution{}, err
	}

	resolution := Resolution{ID: id}
	for _, c := range candidates {
		if c.ID != id {
			continue
		}
		if c.Team != nil {
			resolution.TeamID = c.Team.ID
		}
		if plan.ref.WantCurrentLabels && c.Labels != nil {
			for _, l := range c.Labels.Nodes {
				resolution.CurrentLabelIDs = append(resolution.CurrentLabelIDs, l.ID)
			}
		}
	}

	return resolution, nil
}

// distributeGroupPath resolves a compound group/label slot from its two
// aliases: the group must resolve to exactly one container label, and the
// child candidates are verified to be parented to it.
func distributeGroupPath(plan *slotPlan, data map[string]struct {
	Nodes []Candidate `json:"nodes"`
}) (Resolution, error) {
	groups := data[plan.groupAlias].Nodes
	if len(groups) == 0 {
		return Resolution{}, &NotFoundError{
			Entity: labelGroupEntity,
			Token:  plan.cls.Group,
		}
	}

	groupID, err := disambiguate(EntityLabel, plan.cls.Group, groups)
	if err != nil {
		return Resolution{}, err
	}

	var children []Candidate
	for _, c := range data[plan.childAlias].Nodes {
		if c.Parent != nil && c.Parent.ID == groupID {
			children = append(children, c)
		}
	}
	if len(children) == 0 {
		return Resolution{}, &NotFoundError{
			Entity: EntityLabel,
			Token:  plan.cls.Child,
			Scope:  fmt.Sprintf("label group %q", plan.cls.Group),
		}
	}

	id, err := disambiguate(EntityLabel, plan.ref.Token, children)
	if err != nil {
		return Resolution{}, err
	}

	return Resolution{ID: id}, nil
}
