package runner

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextHandler_Handle(t *testing.T) {
	out := &bytes.Buffer{}
	h := NewTextHandler(strings.NewReader(""), out, WithFrameRenderer(func(f *domain.Frame) string {
		return "bars: " + f.Elements[0].ID + "\n"
	}))

	u := Update{
		State: domain.RunState{Status: domain.StatusRunning, Kind: domain.KindBubbleSort, StepCount: 3},
		Stats: domain.Stats{Operations: 1200, Comparisons: 3, MemoryEstimate: 2048},
		Frame: &domain.Frame{Elements: []domain.Element{{ID: "0"}}},
		Label: "compare 0 and 1",
	}
	require.NoError(t, h.Handle(context.Background(), u))

	got := out.String()
	assert.Contains(t, got, "[running] bubble-sort step 3: compare 0 and 1")
	assert.Contains(t, got, "ops 1,200")
	assert.Contains(t, got, "mem 2.0 KiB")
	assert.Contains(t, got, "bars: 0\n")
	assert.NotContains(t, got, "\033[2J")
}

func TestTextHandler_HandleFinal(t *testing.T) {
	out := &bytes.Buffer{}
	h := NewTextHandler(strings.NewReader(""), out, WithRedraw(true))

	u := Update{State: domain.RunState{
		Status:  domain.StatusCompleted,
		Kind:    domain.KindDijkstra,
		Outcome: &domain.Outcome{Found: true, Index: -1, Cost: 11, Path: []string{"A", "C", "F"}},
	}}
	require.NoError(t, h.Handle(context.Background(), u))
	assert.True(t, strings.HasPrefix(out.String(), "\033[H\033[2J"))
	assert.Contains(t, out.String(), "path A → C → F (cost 11)")

	out.Reset()
	u = Update{State: domain.RunState{Status: domain.StatusCancelled, Fault: &domain.Fault{Message: "boom"}}}
	require.NoError(t, h.Handle(context.Background(), u))
	assert.Contains(t, out.String(), "fault: boom")
}

func TestOutcomeLine(t *testing.T) {
	assert.Equal(t, "found at 4", OutcomeLine(domain.Outcome{Found: true, Index: 4}))
	assert.Equal(t, "not found", OutcomeLine(domain.NotFound()))
	assert.Equal(t, "value 55", OutcomeLine(domain.Outcome{Value: 55}))
	assert.Equal(t, "done", OutcomeLine(domain.Outcome{}))
	assert.Equal(t, "sequence 3 2, 4 rotations",
		OutcomeLine(domain.Outcome{Index: 0, Sequence: []string{"3", "2"}, Detail: "4 rotations"}))
}

func TestTextHandler_Input(t *testing.T) {
	out := &bytes.Buffer{}
	h := NewTextHandler(strings.NewReader("bogus\np\n\x1b s 250\n"), out)
	ctx := context.Background()

	cmd, err := h.Input(ctx)
	require.NoError(t, err)
	assert.Equal(t, Command{Name: "pause"}, cmd)
	assert.Contains(t, out.String(), "Error:", "malformed lines are reported")

	cmd, err = h.Input(ctx)
	require.NoError(t, err)
	assert.Equal(t, Command{Name: "speed", Speed: 250}, cmd)

	_, err = h.Input(ctx)
	assert.ErrorIs(t, err, io.EOF)
}

func TestTextHandler_InputHonorsContext(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	h := NewTextHandler(pr, io.Discard)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := h.Input(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestControl_DrivesRunner(t *testing.T) {
	var r *Runner
	r = newTestRunner(t, WithLifecycleHooks(domain.LifecycleHooks{
		OnStep: func(ctx context.Context, ev *domain.StepEvent) {
			if ev.Index == 1 {
				_ = r.Pause()
			}
		},
	}))
	_, err := r.Start(context.Background(), domain.KindBubbleSort, viz3(), nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return r.State().Status == domain.StatusPaused }, time.Second, time.Millisecond)

	var rejected []error
	src := NewTextHandler(strings.NewReader("s 5\nspeed 400\nc\nr\n"), io.Discard)
	require.NoError(t, Control(context.Background(), r, src, func(err error) { rejected = append(rejected, err) }))

	assert.Equal(t, 400, r.Speed())
	assert.Equal(t, domain.StatusCancelled, r.State().Status)
	require.Len(t, rejected, 2)
	assert.ErrorIs(t, rejected[0], domain.ErrInvalidParams)
	assert.ErrorIs(t, rejected[1], domain.ErrInvalidTransition, "resume after cancel")
}
