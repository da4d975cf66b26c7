package resolve

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeLabels(t *testing.T) {
	tests := []struct {
		name     string
		current  []string
		resolved []string
		mode     LabelMode
		want     []string
	}{
		{
			name:     "Additive unions current and requested",
			current:  []string{"a", "b"},
			resolved: []string{"c"},
			mode:     LabelModeAdditive,
			want:     []string{"a", "b", "c"},
		},
		{
			name:     "Replacing keeps only requested",
			current:  []string{"a", "b"},
			resolved: []string{"c"},
			mode:     LabelModeReplacing,
			want:     []string{"c"},
		},
		{
			name:     "Replacing with nothing requested clears",
			current:  []string{"a", "b"},
			resolved: nil,
			mode:     LabelModeReplacing,
			want:     []string{},
		},
		{
			name:     "Duplicates collapse",
			current:  []string{"a", "a", "b"},
			resolved: []string{"b", "a"},
			mode:     LabelModeAdditive,
			want:     []string{"a", "b"},
		},
		{
			name:     "Additive onto empty current",
			current:  nil,
			resolved: []string{"b", "a"},
			mode:     LabelModeAdditive,
			want:     []string{"a", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MergeLabels(tt.current, tt.resolved, tt.mode)
			assert.Equal(t, tt.want, got)

			// Same inputs, same output: the merge is a pure set operation.
			assert.Equal(t, got, MergeLabels(tt.current, tt.resolved, tt.mode))
		})
	}
}

func TestParseLabelMode(t *testing.T) {
	mode, err := ParseLabelMode("")
	require.NoError(t, err)
	assert.Equal(t, LabelModeAdditive, mode)

	mode, err = ParseLabelMode("add")
	require.NoError(t, err)
	assert.Equal(t, LabelModeAdditive, mode)

	mode, err = ParseLabelMode("replace")
	require.NoError(t, err)
	assert.Equal(t, LabelModeReplacing, mode)

	_, err = ParseLabelMode("merge")
	assert.Error(t, err)
}

func TestValidateLabelRequest(t *testing.T) {
	assert.NoError(t, ValidateLabelRequest(false, []string{"Bug"}, true))
	assert.NoError(t, ValidateLabelRequest(true, nil, false))

	var conflict *UsageConflictError
	err := ValidateLabelRequest(true, []string{"Bug"}, false)
	require.ErrorAs(t, err, &conflict)

	err = ValidateLabelRequest(true, nil, true)
	require.ErrorAs(t, err, &conflict)
}

func TestResolveLabelRefsOrder(t *testing.T) {
	// Results come back in request order regardless of alias ordering.
	exec := &fakeExecutor{respond: staticResponse(fmt.Sprintf(`{
		"ref0": {"nodes": [{"id": %q, "name": "Zeta"}]},
		"ref1": {"nodes": [{"id": %q, "name": "Alpha"}]}
	}`, bugID, highID))}

	ids, err := NewResolver(exec).ResolveLabelRefs(context.Background(), []string{"Zeta", "Alpha"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{bugID, highID}, ids)
	assert.Equal(t, 1, exec.calls)
}

func TestResolveLabelRefsEmpty(t *testing.T) {
	exec := &fakeExecutor{respond: staticResponse(`{}`)}
	ids, err := NewResolver(exec).ResolveLabelRefs(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Nil(t, ids)
	assert.Equal(t, 0, exec.calls)
}

func TestMergeLabelRefs(t *testing.T) {
	exec := &fakeExecutor{respond: staticResponse(fmt.Sprintf(`{
		"ref0": {"nodes": [{"id": %q, "name": "Bug"}]}
	}`, highID))}

	merged, err := NewResolver(exec).MergeLabelRefs(
		context.Background(), []string{bugID}, []string{"Bug"}, nil, LabelModeAdditive)
	require.NoError(t, err)
	assert.Equal(t, []string{bugID, highID}, merged)
}
