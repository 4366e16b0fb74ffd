package runner

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/viz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func viz3() *viz.Array { return viz.NewArray([]int{3, 1, 2}) }

func TestJSONHandler_StreamsRun(t *testing.T) {
	out := &bytes.Buffer{}
	h := NewJSONHandler(strings.NewReader(""), out)

	r := newTestRunner(t)
	sub := r.Subscribe(DefaultSubscriptionBuffer)
	defer sub.Close()
	_, err := r.Start(context.Background(), domain.KindBubbleSort, viz3(), nil)
	require.NoError(t, err)

	final, err := Follow(context.Background(), sub, h)
	require.NoError(t, err)

	sc := bufio.NewScanner(out)
	var last Update
	lines := 0
	for sc.Scan() {
		require.NoError(t, json.Unmarshal(sc.Bytes(), &last), "line %d", lines)
		lines++
	}
	assert.EqualValues(t, final.StepCount+2, lines, "start, every step, final")
	assert.Equal(t, domain.StatusCompleted, last.State.Status)
	require.NotNil(t, last.Frame)
	assert.Equal(t, []float64{1, 2, 3}, last.Frame.Values())
}

func TestJSONHandler_Input(t *testing.T) {
	in := strings.NewReader(`{"command":"speed","speed_ms":700}` + "\n\nreset\n{not json\n")
	h := NewJSONHandler(in, io.Discard)
	ctx := context.Background()

	cmd, err := h.Input(ctx)
	require.NoError(t, err)
	assert.Equal(t, Command{Name: "speed", Speed: 700}, cmd)

	cmd, err = h.Input(ctx)
	require.NoError(t, err)
	assert.Equal(t, Command{Name: "reset"}, cmd)

	_, err = h.Input(ctx)
	assert.ErrorIs(t, err, io.EOF)
}
