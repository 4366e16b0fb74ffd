package runner

import (
	"context"
	"testing"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line string
		want Command
	}{
		{"p", Command{Name: "pause"}},
		{"PAUSE", Command{Name: "pause"}},
		{"r", Command{Name: "resume"}},
		{"c", Command{Name: "cancel"}},
		{"reset", Command{Name: "reset"}},
		{"s 150", Command{Name: "speed", Speed: 150}},
		{"  speed   900 ", Command{Name: "speed", Speed: 900}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := ParseCommand(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"", "   ", "s", "s fast", "speed 1 2", "rewind"} {
		_, err := ParseCommand(bad)
		assert.ErrorIs(t, err, domain.ErrInvalidParams, "%q", bad)
	}
}

func TestDispatch(t *testing.T) {
	r := newTestRunner(t)
	ctx := context.Background()

	require.NoError(t, Dispatch(ctx, r, Command{Name: "speed", Speed: 1500}))
	assert.Equal(t, 1500, r.Speed())
	assert.ErrorIs(t, Dispatch(ctx, r, Command{Name: "speed", Speed: 50}), domain.ErrInvalidParams)
	assert.ErrorIs(t, Dispatch(ctx, r, Command{Name: "pause"}), domain.ErrInvalidTransition)
	assert.ErrorIs(t, Dispatch(ctx, r, Command{Name: "cancel"}), domain.ErrInvalidTransition)
	assert.NoError(t, Dispatch(ctx, r, Command{Name: "reset"}))
	assert.ErrorIs(t, Dispatch(ctx, r, Command{Name: "rewind"}), domain.ErrInvalidParams)
}
