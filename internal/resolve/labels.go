package resolve

import (
	"context"
	"fmt"
	"sort"
)

// LabelMode selects how requested labels combine with an issue's current
// label set on update.
type LabelMode int

const (
	// LabelModeAdditive unions the requested labels with the current set.
	LabelModeAdditive LabelMode = iota

	// LabelModeReplacing discards any current label not re-specified.
	LabelModeReplacing
)

// ParseLabelMode converts the command-level mode flag value.
func ParseLabelMode(s string) (LabelMode, error) {
	switch s {
	case "", "add":
		return LabelModeAdditive, nil
	case "replace":
		return LabelModeReplacing, nil
	default:
		return 0, fmt.Errorf("invalid label mode %q: expected add or replace", s)
	}
}

// ValidateLabelRequest rejects mutually exclusive label flags before any
// resolution work begins. Clearing all labels cannot be combined with
// explicit label references or a merge mode.
func ValidateLabelRequest(clearAll bool, refs []string, modeSet bool) error {
	if !clearAll {
		return nil
	}
	if len(refs) > 0 {
		return &UsageConflictError{Reason: "cannot combine clearing all labels with explicit label references"}
	}
	if modeSet {
		return &UsageConflictError{Reason: "cannot combine clearing all labels with a label mode"}
	}
	return nil
}

// MergeLabels computes the final label ID set for an update. The result is
// a duplicate-free, sorted slice so that identical inputs always produce
// identical output.
func MergeLabels(currentIDs, resolvedIDs []string, mode LabelMode) []string {
	set := make(map[string]struct{})

	if mode == LabelModeAdditive {
		for _, id := range currentIDs {
			set[id] = struct{}{}
		}
	}
	for _, id := range resolvedIDs {
		set[id] = struct{}{}
	}

	merged := make([]string, 0, len(set))
	for id := range set {
		merged = append(merged, id)
	}
	sort.Strings(merged)
	return merged
}

// ResolveLabelRefs resolves a list of label references (plain names or
// group/label paths) to IDs in a single batched request.
func (r *Resolver) ResolveLabelRefs(ctx context.Context, refs []string, scope *Scope) ([]string, error) {
	if len(refs) == 0 {
		return nil, nil
	}

	slots := make(map[string]Reference, len(refs))
	for i, ref := range refs {
		slots[fmt.Sprintf("label%03d", i)] = Reference{
			Entity: EntityLabel,
			Token:  ref,
			Scope:  scope,
		}
	}

	results, err := r.ResolveBatch(ctx, slots)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(refs))
	for i := range refs {
		ids = append(ids, results[fmt.Sprintf("label%03d", i)].ID)
	}
	return ids, nil
}

// MergeLabelRefs resolves the requested references and merges them with
// the current set in one step.
func (r *Resolver) MergeLabelRefs(ctx context.Context, currentIDs []string, refs []string, scope *Scope, mode LabelMode) ([]string, error) {
	resolved, err := r.ResolveLabelRefs(ctx, refs, scope)
	if err != nil {
		return nil, err
	}
	return MergeLabels(currentIDs, resolved, mode), nil
}
