package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/stepwise/pkg/compare"
	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/registry"
	"github.com/aretw0/stepwise/pkg/runner"
	"github.com/aretw0/stepwise/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func textOf(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return text.Text
}

func TestServer_ListAlgorithms(t *testing.T) {
	s := NewServer()

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"family": "grid"}
	res, err := s.handleList(context.Background(), req)
	require.NoError(t, err)

	var entries []registry.Entry
	require.NoError(t, json.Unmarshal([]byte(textOf(t, res)), &entries))
	require.NotEmpty(t, entries)
	for _, e := range entries {
		assert.Contains(t, e.Accepts, domain.FamilyGrid, "kind %s", e.Kind)
	}

	res, err = s.handleList(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(textOf(t, res)), &entries))
	assert.Len(t, entries, len(registry.Default().List()))
}

func TestServer_RunAlgorithm(t *testing.T) {
	s := NewServer()
	ctx := context.Background()

	t.Run("sorts given values", func(t *testing.T) {
		res, err := s.handleRun(ctx, mcp.CallToolRequest{}, RunArgs{Kind: "bubble-sort", Values: []int{5, 3, 4, 1, 2}})
		require.NoError(t, err)
		assert.Equal(t, domain.KindBubbleSort, res.Kind)
		assert.Positive(t, res.Steps)
		assert.Positive(t, res.Stats.Comparisons)
		require.NotNil(t, res.Frame)
		var got []float64
		for _, el := range res.Frame.Elements {
			got = append(got, el.Value)
		}
		assert.Equal(t, []float64{1, 2, 3, 4, 5}, got)
	})

	t.Run("searches with params", func(t *testing.T) {
		res, err := s.handleRun(ctx, mcp.CallToolRequest{}, RunArgs{
			Kind:   "binary-search",
			Values: []int{1, 3, 5, 7, 9},
			Params: map[string]any{"target": 7},
		})
		require.NoError(t, err)
		assert.True(t, res.Outcome.Found)
		assert.Equal(t, 3, res.Outcome.Index)
	})

	t.Run("generates input", func(t *testing.T) {
		res, err := s.handleRun(ctx, mcp.CallToolRequest{}, RunArgs{Kind: "bfs", Size: 16, Seed: 7})
		require.NoError(t, err)
		assert.Positive(t, res.Steps)
		assert.Equal(t, domain.FamilyGrid, res.Frame.Family)
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := s.handleRun(ctx, mcp.CallToolRequest{}, RunArgs{Kind: "bogo-sort"})
		assert.ErrorIs(t, err, domain.ErrUnknownAlgorithm)
	})

	t.Run("oversized input", func(t *testing.T) {
		_, err := s.handleRun(ctx, mcp.CallToolRequest{}, RunArgs{Kind: "quick-sort", Size: MaxRunSize + 1})
		assert.ErrorIs(t, err, domain.ErrInvalidParams)
	})
}

func TestServer_CompareAlgorithms(t *testing.T) {
	s := NewServer()

	res, err := s.handleCompare(context.Background(), mcp.CallToolRequest{}, CompareArgs{
		Kinds: []string{"bubble-sort", "merge-sort"},
		Sizes: []int{10, 40},
		Seed:  3,
	})
	require.NoError(t, err)
	require.False(t, res.IsError)
	rep, ok := res.StructuredContent.(*compare.Report)
	require.True(t, ok)
	assert.Len(t, rep.Rows, 4)
	assert.Contains(t, strings.ToLower(textOf(t, res)), "2 algorithms")

	res, err = s.handleCompare(context.Background(), mcp.CallToolRequest{}, CompareArgs{Kinds: []string{"bubble-sort"}})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestServer_ExplainAlgorithm(t *testing.T) {
	s := NewServer()

	res, err := s.handleExplain(context.Background(), mcp.CallToolRequest{}, KindArgs{Kind: "dijkstra"})
	require.NoError(t, err)
	require.False(t, res.IsError)
	assert.Contains(t, textOf(t, res), "# ")

	res, err = s.handleExplain(context.Background(), mcp.CallToolRequest{}, KindArgs{Kind: "bogo-sort"})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestServer_Catalog(t *testing.T) {
	s := NewServer()

	contents, err := s.readCatalog(context.Background(), mcp.ReadResourceRequest{})
	require.NoError(t, err)
	require.Len(t, contents, 1)
	text, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, CatalogURI, text.URI)
	assert.Contains(t, text.Text, `"kind":"astar"`)
}

func TestServer_WorkspaceEdits(t *testing.T) {
	release := make(chan struct{})
	m := session.NewManager(session.WithRunnerOptions(
		runner.WithClock(runner.NewInstantClock(time.Unix(0, 0))),
		runner.WithPollInterval(time.Millisecond),
		runner.WithLifecycleHooks(domain.LifecycleHooks{
			OnStep: func(ctx context.Context, ev *domain.StepEvent) {
				if ev.Index == 1 {
					<-release
				}
			},
		}),
	))
	defer m.Close()
	s := NewServer(WithSessions(m))
	ctx := context.Background()

	res, err := s.handleCreateWorkspace(ctx, mcp.CallToolRequest{}, WorkspaceArgs{Kind: "bubble-sort", Size: 4})
	require.NoError(t, err)
	require.False(t, res.IsError, textOf(t, res))
	created, ok := res.StructuredContent.(WorkspaceView)
	require.True(t, ok)
	require.Len(t, created.Frame.Elements, 4)

	index, value := 0, 42
	res, err = s.handleEditWorkspace(ctx, mcp.CallToolRequest{}, EditArgs{
		Workspace: created.Workspace,
		Edit:      session.Edit{Op: session.EditInsert, Index: &index, Value: &value},
	})
	require.NoError(t, err)
	require.False(t, res.IsError, textOf(t, res))
	edited := res.StructuredContent.(WorkspaceView)
	require.Len(t, edited.Frame.Elements, 5)
	assert.Equal(t, 42.0, edited.Frame.Elements[0].Value)

	res, err = s.handleEditWorkspace(ctx, mcp.CallToolRequest{}, EditArgs{
		Workspace: created.Workspace,
		Edit:      session.Edit{Op: session.EditToggleWall},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError, "walls do not apply to arrays")

	res, err = s.handleStartWorkspace(ctx, mcp.CallToolRequest{}, WorkspaceArgs{Workspace: created.Workspace, Kind: "bubble-sort"})
	require.NoError(t, err)
	require.False(t, res.IsError, textOf(t, res))

	res, err = s.handleEditWorkspace(ctx, mcp.CallToolRequest{}, EditArgs{
		Workspace: created.Workspace,
		Edit:      session.Edit{Op: session.EditDelete, Index: &index},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, textOf(t, res), "locked")

	close(release)
	ws, err := m.Get(created.Workspace)
	require.NoError(t, err)
	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	st, err := ws.Runner().Wait(waitCtx)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, st.Status)
}
