// Package file stores presets as YAML documents in a directory.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/ports"
	"gopkg.in/yaml.v3"
)

const ext = ".yaml"

// Store implements ports.PresetStore on the local filesystem, one
// <name>.yaml file per preset.
type Store struct {
	BasePath string
}

// New creates a Store rooted at basePath.
// If basePath is empty, it defaults to ".stepwise/presets".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".stepwise", "presets")
	}
	return &Store{BasePath: basePath}
}

func (s *Store) path(name string) (string, string, error) {
	key, err := ports.SanitizeName(name)
	if err != nil {
		return "", "", err
	}
	return key, filepath.Join(s.BasePath, key+ext), nil
}

// Save writes the preset atomically: a hidden temp file is synced and then
// renamed over the destination.
func (s *Store) Save(ctx context.Context, p ports.Preset) error {
	key, dest, err := s.path(p.Name)
	if err != nil {
		return err
	}
	p.Name = key
	p.UpdatedAt = time.Now().UTC()

	if err := os.MkdirAll(s.BasePath, 0o755); err != nil {
		return fmt.Errorf("failed to ensure preset directory: %w", err)
	}
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal preset: %w", err)
	}

	tmp, err := os.CreateTemp(s.BasePath, ".tmp-"+key+"-*"+ext)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Windows cannot rename an open file.
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("failed to move preset into place: %w", err)
	}
	return nil
}

// Load reads and decodes a preset.
func (s *Store) Load(ctx context.Context, name string) (ports.Preset, error) {
	_, src, err := s.path(name)
	if err != nil {
		return ports.Preset{}, err
	}
	data, err := os.ReadFile(src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ports.Preset{}, domain.ErrPresetNotFound
		}
		return ports.Preset{}, fmt.Errorf("failed to read preset: %w", err)
	}
	var p ports.Preset
	if err := yaml.Unmarshal(data, &p); err != nil {
		return ports.Preset{}, fmt.Errorf("failed to decode preset %s: %w", src, err)
	}
	return p, nil
}

// Delete removes the preset file.
func (s *Store) Delete(ctx context.Context, name string) error {
	_, target, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete preset: %w", err)
	}
	return nil
}

// List returns the names of every preset file. Hidden files are skipped.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list presets: %w", err)
	}
	names := []string{}
	for _, e := range entries {
		n := e.Name()
		if e.IsDir() || strings.HasPrefix(n, ".") || filepath.Ext(n) != ext {
			continue
		}
		names = append(names, strings.TrimSuffix(n, ext))
	}
	slices.Sort(names)
	return names, nil
}
