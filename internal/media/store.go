package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// ErrInvalidKey indicates a malformed object key.
var ErrInvalidKey = errors.New("media: invalid object key")

// keyPattern pins keys to uuid-plus-extension so keys can never escape the
// store directory.
var keyPattern = regexp.MustCompile(`^[a-f0-9]{8}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{12}\.[a-z0-9]{1,5}$`)

// Store keeps recording objects on local disk.
type Store struct {
	dir string
}

// NewStore constructs a Store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// ValidKey reports whether key has the expected shape.
func ValidKey(key string) bool {
	return keyPattern.MatchString(key)
}

// Save writes the object body under key, creating the directory if absent.
func (s *Store) Save(key string, body io.Reader) (int64, error) {
	if !ValidKey(key) {
		return 0, ErrInvalidKey
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return 0, fmt.Errorf("media: create store dir: %w", err)
	}
	f, err := os.Create(filepath.Join(s.dir, key))
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return io.Copy(f, body)
}

// Open returns a reader over the stored object.
func (s *Store) Open(key string) (*os.File, error) {
	if !ValidKey(key) {
		return nil, ErrInvalidKey
	}
	return os.Open(filepath.Join(s.dir, key))
}

// RemoveOlderThan deletes objects whose modification time predates cutoff.
// Deletes run concurrently; the first failure cancels the remainder.
func (s *Store) RemoveOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}

	var removed atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, entry := range entries {
		if entry.IsDir() || !ValidKey(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		name := entry.Name()
		g.Go(func() error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}
			removed.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return int(removed.Load()), err
	}
	return int(removed.Load()), nil
}
