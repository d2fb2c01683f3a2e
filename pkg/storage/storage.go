// Package storage archives ghost files in a pebble database.
package storage

import (
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/klauspost/compress/zstd"
	"github.com/segmentio/ksuid"
)

// ErrGhostNotFound is returned for ids that are not in the archive.
var ErrGhostNotFound = errors.New("ghost not found")

// GhostStore keeps ghost files keyed by KSUID. Values are zstd compressed;
// a ghost is mostly zero padding and shrinks to a few hundred bytes.
type GhostStore struct {
	db  *pebble.DB
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// NewGhostStore opens or creates an archive at path.
func NewGhostStore(path string) (*GhostStore, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open ghost store: %w", err)
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		db.Close()
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		db.Close()
		return nil, err
	}

	return &GhostStore{db: db, enc: enc, dec: dec}, nil
}

// Create stores a ghost file under a new id.
func (s *GhostStore) Create(file []byte) (*ksuid.KSUID, error) {
	id := ksuid.New()
	if err := s.db.Set(id.Bytes(), s.enc.EncodeAll(file, nil), pebble.NoSync); err != nil {
		return nil, err
	}

	return &id, nil
}

// Read returns the ghost file stored under id.
func (s *GhostStore) Read(id *ksuid.KSUID) ([]byte, error) {
	data, closer, err := s.db.Get(id.Bytes())
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", id, ErrGhostNotFound)
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	// data is only valid until closer is closed; DecodeAll copies it.
	file, err := s.dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress ghost %s: %w", id, err)
	}
	return file, nil
}

// Update replaces the ghost file stored under id.
func (s *GhostStore) Update(id *ksuid.KSUID, file []byte) error {
	if _, err := s.Read(id); err != nil {
		return err
	}
	return s.db.Set(id.Bytes(), s.enc.EncodeAll(file, nil), pebble.NoSync)
}

// Delete removes the ghost stored under id.
func (s *GhostStore) Delete(id *ksuid.KSUID) error {
	_, closer, err := s.db.Get(id.Bytes())
	if errors.Is(err, pebble.ErrNotFound) {
		return fmt.Errorf("%s: %w", id, ErrGhostNotFound)
	}
	if err != nil {
		return err
	}
	closer.Close()

	return s.db.Delete(id.Bytes(), pebble.NoSync)
}

// List returns every id in the archive, oldest first.
func (s *GhostStore) List() ([]ksuid.KSUID, error) {
	iter, err := s.db.NewIter(nil)
	if err != nil {
		return nil, err
	}

	var ids []ksuid.KSUID
	for iter.First(); iter.Valid(); iter.Next() {
		id, err := ksuid.FromBytes(iter.Key())
		if err != nil {
			iter.Close()
			return nil, fmt.Errorf("invalid key in ghost store: %w", err)
		}
		ids = append(ids, id)
	}
	if err := iter.Error(); err != nil {
		iter.Close()
		return nil, err
	}
	return ids, iter.Close()
}

// Close flushes and closes the archive.
func (s *GhostStore) Close() error {
	s.dec.Close()
	if err := s.enc.Close(); err != nil {
		s.db.Close()
		return err
	}
	return s.db.Close()
}
