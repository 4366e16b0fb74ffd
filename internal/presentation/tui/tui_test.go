package tui

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func plain() *FrameRenderer { return NewFrameRenderer(termenv.Ascii, 40) }

func TestRender_Bars(t *testing.T) {
	f := &domain.Frame{Family: domain.FamilyArray, Elements: []domain.Element{
		{ID: "0", Value: 12},
		{ID: "1", Value: 24, Flags: domain.FlagComparing},
	}}
	lines := strings.Split(plain().Render(f), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, 12, strings.Count(lines[0], "█"))
	assert.Equal(t, 24, strings.Count(lines[1], "█"))
	assert.True(t, strings.HasSuffix(lines[1], " 24"))
}

func TestRender_Grid(t *testing.T) {
	f := &domain.Frame{Family: domain.FamilyGrid, Rows: 2, Cols: 3, Elements: []domain.Element{
		{Flags: domain.FlagStart}, {Flags: domain.FlagWall}, {Flags: domain.FlagVisited},
		{Flags: domain.FlagPath}, {}, {Flags: domain.FlagTarget},
	}}
	assert.Equal(t, "┌───┐\n│S█·│\n│* T│\n└───┘", plain().Render(f))
}

func TestRender_Board(t *testing.T) {
	f := &domain.Frame{Family: domain.FamilyBoard, Rows: 3, Cols: 3, Elements: make([]domain.Element, 9)}
	f.Elements[0].Label = "X"
	f.Elements[4].Label = "O"
	out := plain().Render(f)
	assert.True(t, strings.HasPrefix(out, " X │ 1 │ 2 \n"))
	assert.Contains(t, out, " 3 │ O │ 5 ")
}

func TestRender_Table(t *testing.T) {
	f := &domain.Frame{
		Family: domain.FamilyTable, Rows: 1, Cols: 2,
		Elements: []domain.Element{{Value: 1, Flags: domain.FlagCalculated}, {Value: 1}},
		Headers:  map[string][]string{"rows": {"F"}, "cols": {"0", "1"}},
	}
	out := plain().Render(f)
	assert.Contains(t, out, "│ F │")
	assert.Contains(t, out, "─")
}

func TestRender_TreeAndGraph(t *testing.T) {
	tree := &domain.Frame{Family: domain.FamilyTree, Elements: []domain.Element{
		{ID: "n0", Value: 5, X: 1, Y: 0},
		{ID: "n1", Value: 3, X: 0, Y: 1},
		{ID: "n2", Value: 8, X: 2, Y: 1},
	}}
	assert.Equal(t, "  3\n5\n  8", plain().Render(tree))

	graph := &domain.Frame{
		Family:   domain.FamilyGraph,
		Elements: []domain.Element{{ID: "A", Flags: domain.FlagVisited}, {ID: "B"}},
		Edges:    []domain.Edge{{From: "A", To: "B", Weight: 4}},
	}
	assert.Equal(t, "A → B(4)  [visited]\nB → ", plain().Render(graph))
}

func TestRender_Empty(t *testing.T) {
	assert.Equal(t, "(empty)", plain().Render(nil))
}

func TestPaint_Profile(t *testing.T) {
	colored := NewFrameRenderer(termenv.ANSI256, 40)
	assert.NotEqual(t, "x", colored.paint("x", domain.FlagFound))
	assert.Equal(t, "x", colored.paint("x", 0))
	assert.Equal(t, "x", plain().paint("x", domain.FlagFound))
}

func TestBell(t *testing.T) {
	var buf bytes.Buffer
	b := Bell{W: &buf}
	require.NoError(t, b.Step(context.Background(), &domain.StepEvent{}))
	assert.Empty(t, buf.String())
	require.NoError(t, b.Success(context.Background(), domain.RunState{}))
	assert.Equal(t, "\a", buf.String())

	buf.Reset()
	b.Ticks = true
	require.NoError(t, b.Step(context.Background(), &domain.StepEvent{}))
	assert.Equal(t, "\a", buf.String())
}

func TestBannerAndMarkdown(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, termenv.Ascii)
	assert.Contains(t, buf.String(), "|___/")

	render, err := NewRenderer(60, false)
	require.NoError(t, err)
	out, err := render("# Bubble Sort\n\nSwaps neighbours.")
	require.NoError(t, err)
	assert.Contains(t, out, "Bubble Sort")
	assert.Contains(t, out, "Swaps neighbours.")
}
