package resolve

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielolaszy/lin/internal/linear"
)

const (
	teamID    = "11111111-1111-4111-8111-111111111111"
	projectID = "22222222-2222-4222-8222-222222222222"
	bugID     = "33333333-3333-4333-8333-333333333333"
	groupID   = "44444444-4444-4444-8444-444444444444"
	highID    = "55555555-5555-4555-8555-555555555555"
	issueID   = "66666666-6666-4666-8666-666666666666"
	labelAID  = "77777777-7777-4777-8777-777777777777"
)

// fakeExecutor serves canned GraphQL responses and records every request.
// Safe for concurrent use so hydration tests can share it.
type fakeExecutor struct {
	mu       sync.Mutex
	calls    int
	requests []*linear.Request
	respond  func(req *linear.Request) (string, error)
}

func (f *fakeExecutor) Execute(ctx context.Context, req *linear.Request) (*linear.Response, error) {
	f.mu.Lock()
	f.calls++
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	body, err := f.respond(req)
	if err != nil {
		return nil, err
	}
	return &linear.Response{Data: json.RawMessage(body)}, nil
}

func staticResponse(body string) func(*linear.Request) (string, error) {
	return func(*linear.Request) (string, error) { return body, nil }
}

func TestResolveBatchSingleRequest(t *testing.T) {
	// Creating an issue with a team key, a project name and two labels
	// (one a group path) resolves everything in one combined request.
	exec := &fakeExecutor{respond: staticResponse(fmt.Sprintf(`{
		"ref0": {"nodes": [{"id": %q, "name": "Bug"}]},
		"ref1_group": {"nodes": [{"id": %q, "name": "Priority", "isGroup": true}]},
		"ref1_child": {"nodes": [{"id": %q, "name": "High", "parent": {"id": %q}}]},
		"ref2": {"nodes": [{"id": %q, "name": "Mobile App"}]},
		"ref3": {"nodes": [{"id": %q, "key": "ENG", "name": "Engineering"}]}
	}`, bugID, groupID, highID, groupID, projectID, teamID))}

	resolver := NewResolver(exec)
	results, err := resolver.ResolveBatch(context.Background(), map[string]Reference{
		"team":     {Entity: EntityTeam, Token: "ENG"},
		"project":  {Entity: EntityProject, Token: "Mobile App"},
		"label000": {Entity: EntityLabel, Token: "Bug"},
		"label001": {Entity: EntityLabel, Token: "Priority/High"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, exec.calls, "all lookups must share one request")
	assert.Equal(t, teamID, results["team"].ID)
	assert.Equal(t, projectID, results["project"].ID)
	assert.Equal(t, bugID, results["label000"].ID)
	assert.Equal(t, highID, results["label001"].ID)

	// The combined document carries one filter variable per lookup.
	req := exec.requests[0]
	for _, alias := range []string{"ref0", "ref1_group", "ref1_child", "ref2", "ref3"} {
		assert.Contains(t, req.Variables, alias)
		assert.Contains(t, req.Query, alias+":")
	}
}

func TestResolveBatchCanonicalPassthrough(t *testing.T) {
	exec := &fakeExecutor{respond: staticResponse(`{}`)}
	resolver := NewResolver(exec)

	results, err := resolver.ResolveBatch(context.Background(), map[string]Reference{
		"team":  {Entity: EntityTeam, Token: teamID},
		"label": {Entity: EntityLabel, Token: bugID},
	})
	require.NoError(t, err)

	assert.Equal(t, 0, exec.calls, "canonical IDs must not trigger remote calls")
	assert.Equal(t, teamID, results["team"].ID)
	assert.Equal(t, bugID, results["label"].ID)
}

func TestResolveBatchAtomicity(t *testing.T) {
	// One of three slots finds nothing: the whole batch fails and the
	// successful resolutions are discarded.
	exec := &fakeExecutor{respond: staticResponse(fmt.Sprintf(`{
		"ref0": {"nodes": []},
		"ref1": {"nodes": [{"id": %q, "name": "Mobile App"}]},
		"ref2": {"nodes": [{"id": %q, "key": "ENG", "name": "Engineering"}]}
	}`, projectID, teamID))}

	resolver := NewResolver(exec)
	results, err := resolver.ResolveBatch(context.Background(), map[string]Reference{
		"team":    {Entity: EntityTeam, Token: "ENG"},
		"project": {Entity: EntityProject, Token: "Mobile App"},
		"label":   {Entity: EntityLabel, Token: "Missing"},
	})

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, EntityLabel, notFound.Entity)
	assert.Equal(t, "Missing", notFound.Token)
	assert.Nil(t, results)
	assert.Equal(t, 1, exec.calls)
}

func TestResolveBatchTeamKeyPrecedence(t *testing.T) {
	// "ENG" matches one team's key and another team's name: the key
	// match wins deterministically.
	exec := &fakeExecutor{respond: staticResponse(fmt.Sprintf(`{
		"ref0": {"nodes": [
			{"id": %q, "key": "OPS", "name": "ENG"},
			{"id": %q, "key": "ENG", "name": "Engineering"}
		]}
	}`, projectID, teamID))}

	resolver := NewResolver(exec)
	id, err := resolver.Resolve(context.Background(), EntityTeam, "ENG", nil)
	require.NoError(t, err)
	assert.Equal(t, teamID, id)
}

func TestResolveTeamKeyCaseInsensitive(t *testing.T) {
	// A lowercase key still reaches the team keyed "ENG": the remote
	// filter compares keys case-insensitively, and the client-side
	// precedence check folds the same way.
	exec := &fakeExecutor{respond: staticResponse(fmt.Sprintf(`{
		"ref0": {"nodes": [{"id": %q, "key": "ENG", "name": "Engineering"}]}
	}`, teamID))}

	id, err := NewResolver(exec).Resolve(context.Background(), EntityTeam, "eng", nil)
	require.NoError(t, err)
	assert.Equal(t, teamID, id)

	or := exec.requests[0].Variables["ref0"].(map[string]interface{})["or"].([]interface{})
	key := or[0].(map[string]interface{})["key"].(map[string]interface{})
	assert.Equal(t, "eng", key["eqIgnoreCase"])
}

func TestResolveBatchIdempotence(t *testing.T) {
	respond := staticResponse(fmt.Sprintf(`{
		"ref0": {"nodes": [{"id": %q, "key": "ENG", "name": "Engineering"}]}
	}`, teamID))

	first := NewResolver(&fakeExecutor{respond: respond})
	second := NewResolver(&fakeExecutor{respond: respond})

	a, err := first.Resolve(context.Background(), EntityTeam, "ENG", nil)
	require.NoError(t, err)
	b, err := second.Resolve(context.Background(), EntityTeam, "ENG", nil)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestResolveGroupPathErrors(t *testing.T) {
	t.Run("Missing group", func(t *testing.T) {
		exec := &fakeExecutor{respond: staticResponse(`{
			"ref0_group": {"nodes": []},
			"ref0_child": {"nodes": []}
		}`)}
		_, err := NewResolver(exec).Resolve(context.Background(), EntityLabel, "Priority/High", nil)

		var notFound *NotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "Priority", notFound.Token)
		assert.Contains(t, err.Error(), "label group")
	})

	t.Run("Missing child", func(t *testing.T) {
		exec := &fakeExecutor{respond: staticResponse(fmt.Sprintf(`{
			"ref0_group": {"nodes": [{"id": %q, "name": "Priority", "isGroup": true}]},
			"ref0_child": {"nodes": []}
		}`, groupID))}
		_, err := NewResolver(exec).Resolve(context.Background(), EntityLabel, "Priority/High", nil)

		var notFound *NotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "High", notFound.Token)
		assert.Contains(t, notFound.Scope, "Priority")
	})

	t.Run("Child parented to a different group", func(t *testing.T) {
		exec := &fakeExecutor{respond: staticResponse(fmt.Sprintf(`{
			"ref0_group": {"nodes": [{"id": %q, "name": "Priority", "isGroup": true}]},
			"ref0_child": {"nodes": [{"id": %q, "name": "High", "parent": {"id": %q}}]}
		}`, groupID, highID, labelAID))}
		_, err := NewResolver(exec).Resolve(context.Background(), EntityLabel, "Priority/High", nil)

		var notFound *NotFoundError
		require.ErrorAs(t, err, &notFound)
	})

	t.Run("Malformed path", func(t *testing.T) {
		exec := &fakeExecutor{respond: staticResponse(`{}`)}
		_, err := NewResolver(exec).Resolve(context.Background(), EntityLabel, "Priority/", nil)

		var invalid *InvalidReferenceError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, 0, exec.calls, "malformed references fail before any remote call")
	})
}

func TestResolveIssueWithCurrentLabels(t *testing.T) {
	exec := &fakeExecutor{respond: staticResponse(fmt.Sprintf(`{
		"ref0": {"nodes": [{
			"id": %q,
			"identifier": "ENG-123",
			"team": {"id": %q, "key": "ENG"},
			"labels": {"nodes": [{"id": %q}, {"id": %q}]}
		}]}
	}`, issueID, teamID, bugID, labelAID))}

	resolver := NewResolver(exec)
	res, err := resolver.ResolveIssue(context.Background(), "ENG-123", true)
	require.NoError(t, err)

	assert.Equal(t, issueID, res.ID)
	assert.Equal(t, teamID, res.TeamID)
	assert.ElementsMatch(t, []string{bugID, labelAID}, res.CurrentLabelIDs)
	assert.Equal(t, 1, exec.calls, "issue and its labels share one request")

	// The identifier was parsed into a team-key-and-number filter.
	vars := exec.requests[0].Variables["ref0"].(map[string]interface{})
	team := vars["team"].(map[string]interface{})["key"].(map[string]interface{})
	assert.Equal(t, "ENG", team["eq"])
	number := vars["number"].(map[string]interface{})
	assert.Equal(t, 123, number["eq"])
}

func TestResolveIssueCanonicalWithLabels(t *testing.T) {
	// A canonical issue ID that needs its current labels still requires
	// one lookup, filtered by ID.
	exec := &fakeExecutor{respond: staticResponse(fmt.Sprintf(`{
		"ref0": {"nodes": [{
			"id": %q,
			"identifier": "ENG-123",
			"team": {"id": %q, "key": "ENG"},
			"labels": {"nodes": [{"id": %q}]}
		}]}
	}`, issueID, teamID, bugID))}

	resolver := NewResolver(exec)
	res, err := resolver.ResolveIssue(context.Background(), issueID, true)
	require.NoError(t, err)

	assert.Equal(t, issueID, res.ID)
	assert.Equal(t, []string{bugID}, res.CurrentLabelIDs)
	assert.Equal(t, 1, exec.calls)
}

func TestResolveInvalidIssueIdentifier(t *testing.T) {
	exec := &fakeExecutor{respond: staticResponse(`{}`)}
	_, err := NewResolver(exec).ResolveIssue(context.Background(), "not an identifier", false)

	var invalid *InvalidReferenceError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, 0, exec.calls)
}

func TestResolveScopedNotFound(t *testing.T) {
	exec := &fakeExecutor{respond: staticResponse(`{"ref0": {"nodes": []}}`)}
	resolver := NewResolver(exec)

	_, err := resolver.Resolve(context.Background(), EntityCycle, "Sprint 99", &Scope{TeamID: teamID})

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, EntityCycle, notFound.Entity)
	assert.Contains(t, notFound.Scope, teamID)

	// The scope was part of the remote filter, not client-side trimming.
	vars := exec.requests[0].Variables["ref0"].(map[string]interface{})
	assert.Contains(t, vars, "team")
}

func TestResolveBatchExecutorFailure(t *testing.T) {
	exec := &fakeExecutor{respond: func(*linear.Request) (string, error) {
		return "", fmt.Errorf("boom")
	}}

	_, err := NewResolver(exec).Resolve(context.Background(), EntityTeam, "ENG", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}
