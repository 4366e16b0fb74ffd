package cli

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/stepwise/internal/config"
	"github.com/aretw0/stepwise/internal/logging"
	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/ports"
	"github.com/aretw0/stepwise/pkg/viz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenBackend(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	tests := []struct {
		name       string
		cfg        config.PresetsConfig
		wantLocker bool
	}{
		{"memory", config.PresetsConfig{Backend: "memory"}, false},
		{"file", config.PresetsConfig{Backend: "file", Dir: t.TempDir()}, false},
		{"redis", config.PresetsConfig{Backend: "redis", RedisAddr: mr.Addr(), Prefix: "test:"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := OpenBackend(ctx, tt.cfg, logging.NewNop())
			require.NoError(t, err)
			defer b.Close()
			assert.Equal(t, tt.wantLocker, b.Locker != nil)

			p := ports.Preset{Name: "pair", Spec: viz.Spec{Family: domain.FamilyArray, Values: []int{2, 1}}}
			require.NoError(t, b.Store.Save(ctx, p))
			got, err := b.Store.Load(ctx, "pair")
			require.NoError(t, err)
			assert.Equal(t, []int{2, 1}, got.Spec.Values)

			if b.Locker != nil {
				unlock, err := b.Locker.Lock(ctx, "ws", time.Second)
				require.NoError(t, err)
				require.NoError(t, unlock(ctx))
			}
		})
	}
}

func TestOpenBackend_Errors(t *testing.T) {
	_, err := OpenBackend(context.Background(), config.PresetsConfig{Backend: "etcd"}, logging.NewNop())
	assert.Error(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err = OpenBackend(ctx, config.PresetsConfig{Backend: "redis", RedisAddr: "127.0.0.1:1"}, logging.NewNop())
	assert.Error(t, err)
}
