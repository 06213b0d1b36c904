package cache

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/walteh/razortag/pkg/collection"
	"github.com/walteh/razortag/pkg/descriptor"
	"gitlab.com/tozd/go/errors"
)

const payloadExt = ".msgpack"

// Store keeps encoded collections under a directory of an afero.Fs, one file per
// collection checksum. It is safe for concurrent use.
type Store struct {
	mu  sync.RWMutex
	fs  afero.Fs
	dir string
}

func NewStore(fs afero.Fs, dir string) *Store {
	return &Store{fs: fs, dir: dir}
}

// Key is the checksum c is stored under: that of its deduplicated form, which is what
// Encode writes.
func Key(c *collection.Collection) descriptor.Checksum {
	return collection.New(c.Slice()...).Checksum()
}

func (s *Store) path(key descriptor.Checksum) string {
	return filepath.Join(s.dir, "collections", key.String()+payloadExt)
}

// Get loads the collection stored under key. A missing entry is (nil, false, nil). An
// entry that fails to decode, or decodes to a collection with another checksum, is
// dropped and reported as missing.
func (s *Store) Get(ctx context.Context, key descriptor.Checksum) (*collection.Collection, bool, error) {
	s.mu.RLock()
	data, err := afero.ReadFile(s.fs, s.path(key))
	s.mu.RUnlock()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, errors.Errorf("reading cache entry %s: %w", key.Short(), err)
	}

	c, err := Decode(data)
	if err == nil && c.Checksum() != key {
		err = errors.Errorf("%w: entry holds %s", ErrChecksumMismatch, c.Checksum().Short())
	}
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("key", key.Short()).Msg("dropping unreadable cache entry")
		if err := s.Drop(key); err != nil {
			return nil, false, err
		}
		return nil, false, nil
	}
	return c, true, nil
}

// Put stores c under Key(c) and returns the key. The file is written to a
// temporary name and renamed into place.
func (s *Store) Put(ctx context.Context, c *collection.Collection) (descriptor.Checksum, error) {
	key := Key(c)
	data, err := Encode(c)
	if err != nil {
		return key, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.path(key)
	if err := s.fs.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return key, errors.Errorf("creating cache dir: %w", err)
	}
	f, err := afero.TempFile(s.fs, filepath.Dir(p), "tmp-*")
	if err != nil {
		return key, errors.Errorf("creating cache temp file: %w", err)
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		s.fs.Remove(tmp)
		return key, errors.Errorf("writing cache entry %s: %w", key.Short(), err)
	}
	if err := f.Close(); err != nil {
		s.fs.Remove(tmp)
		return key, errors.Errorf("closing cache entry %s: %w", key.Short(), err)
	}
	if err := s.fs.Rename(tmp, p); err != nil {
		s.fs.Remove(tmp)
		return key, errors.Errorf("renaming cache entry %s: %w", key.Short(), err)
	}

	zerolog.Ctx(ctx).Debug().Str("key", key.Short()).Int("descriptors", c.Count()).Int("bytes", len(data)).Msg("stored collection")
	return key, nil
}

// Drop removes the entry for key. Dropping a missing entry is not an error.
func (s *Store) Drop(key descriptor.Checksum) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fs.Remove(s.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Errorf("dropping cache entry %s: %w", key.Short(), err)
	}
	return nil
}
