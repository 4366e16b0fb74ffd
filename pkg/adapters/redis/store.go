package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key written by the store.
const DefaultPrefix = "stepwise:preset:"

// farFuture is the index score of presets that never expire.
const farFuture = 4102444800 // 2100-01-01

// Store implements ports.PresetStore using Redis. Each preset is a hash
// (kind, payload, updated_at) and a sorted set indexes names by expiry.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

type Option func(*Store)

// WithTTL sets the expiration for presets.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// WithClock overrides the time source used for expiry scores.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: DefaultPrefix,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Client exposes the underlying client, e.g. to share it with a Locker.
func (s *Store) Client() *backend.Client { return s.client }

func (s *Store) key(name string) string {
	return s.prefix + name
}

func (s *Store) indexKey() string {
	// Names cannot contain ':', so this never collides with a preset.
	return s.prefix + ":index"
}

// Save writes the hash and its index entry in one pipeline.
func (s *Store) Save(ctx context.Context, p ports.Preset) error {
	name, err := ports.SanitizeName(p.Name)
	if err != nil {
		return err
	}
	p.Name = name
	p.UpdatedAt = s.now().UTC()

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal preset: %w", err)
	}

	score := float64(farFuture)
	if s.ttl > 0 {
		score = float64(s.now().Add(s.ttl).Unix())
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key(name))
	pipe.HSet(ctx, s.key(name),
		"kind", string(p.Kind),
		"payload", data,
		"updated_at", p.UpdatedAt.Format(time.RFC3339Nano),
	)
	if s.ttl > 0 {
		pipe.Expire(ctx, s.key(name), s.ttl)
	}
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{Score: score, Member: name})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load decodes the payload field of the preset hash.
func (s *Store) Load(ctx context.Context, name string) (ports.Preset, error) {
	key, err := ports.SanitizeName(name)
	if err != nil {
		return ports.Preset{}, err
	}
	val, err := s.client.HGet(ctx, s.key(key), "payload").Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return ports.Preset{}, domain.ErrPresetNotFound
		}
		return ports.Preset{}, fmt.Errorf("failed to get from redis: %w", err)
	}

	var p ports.Preset
	if err := json.Unmarshal([]byte(val), &p); err != nil {
		return ports.Preset{}, fmt.Errorf("failed to unmarshal preset: %w", err)
	}
	return p, nil
}

// Delete removes the preset.
func (s *Store) Delete(ctx context.Context, name string) error {
	key, err := ports.SanitizeName(name)
	if err != nil {
		return err
	}
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.key(key))
	pipe.ZRem(ctx, s.indexKey(), key)
	_, err = pipe.Exec(ctx)
	return err
}

// List prunes expired entries from the index, then returns the rest.
func (s *Store) List(ctx context.Context) ([]string, error) {
	now := fmt.Sprintf("%d", s.now().Unix())
	if err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", "("+now).Err(); err != nil {
		return nil, fmt.Errorf("failed to prune expired presets: %w", err)
	}
	names, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list presets: %w", err)
	}
	slices.Sort(names)
	return names, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
