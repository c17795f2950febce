// Package modelstore keeps the active model artifact in durable storage.
package modelstore

import (
	"context"
	"sync"
	"time"

	"fjacquet/spendcat/internal/caterror"
	"fjacquet/spendcat/internal/fileutils"
	"fjacquet/spendcat/internal/logging"

	"github.com/boltdb/bolt"
	"github.com/pkg/errors"
)

var (
	bucketName = []byte("models")
	activeKey  = []byte("active")
)

// BoltStore persists one artifact blob in a bolt database. Writes replace the
// previous blob inside a single transaction, so readers see either the old
// or the new artifact.
type BoltStore struct {
	path   string
	db     *bolt.DB
	logger logging.Logger
}

// Open opens (or creates) the bolt file at path, creating its directory.
func Open(path string, logger logging.Logger) (*BoltStore, error) {
	if err := fileutils.EnsureParentDirectory(path); err != nil {
		return nil, &caterror.StorageError{Op: "open", Path: path, Err: err}
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, &caterror.StorageError{Op: "open", Path: path, Err: errors.Wrap(err, "unable to open boltdb")}
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return errors.Wrap(err, "unable to create models bucket")
	}); err != nil {
		_ = db.Close()
		return nil, &caterror.StorageError{Op: "open", Path: path, Err: err}
	}

	return &BoltStore{path: path, db: db, logger: logging.OrDefault(logger)}, nil
}

// Path returns the database file.
func (s *BoltStore) Path() string {
	return s.path
}

// Load returns the active artifact, or an error matching
// caterror.ErrArtifactNotFound when nothing has been saved.
func (s *BoltStore) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var blob []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		if b == nil {
			return caterror.ErrArtifactNotFound
		}
		v := b.Get(activeKey)
		if v == nil {
			return caterror.ErrArtifactNotFound
		}
		// v is only valid inside the transaction.
		blob = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, &caterror.StorageError{Op: "load", Path: s.path, Err: err}
	}

	s.logger.Debug("Loaded model artifact",
		logging.Field{Key: logging.FieldModelPath, Value: s.path},
		logging.Field{Key: "bytes", Value: len(blob)})
	return blob, nil
}

// Save replaces the active artifact.
func (s *BoltStore) Save(ctx context.Context, blob []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketName)
		if err != nil {
			return errors.Wrap(err, "unable to create models bucket")
		}
		return errors.Wrapf(b.Put(activeKey, blob), "unable to write %d bytes", len(blob))
	}); err != nil {
		return &caterror.StorageError{Op: "save", Path: s.path, Err: err}
	}

	s.logger.Debug("Saved model artifact",
		logging.Field{Key: logging.FieldModelPath, Value: s.path},
		logging.Field{Key: "bytes", Value: len(blob)})
	return nil
}

// Close releases the database file lock.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// MemoryStore keeps the artifact in process memory. It is used when no model
// path is configured, and in tests.
type MemoryStore struct {
	mu   sync.RWMutex
	blob []byte

	// LoadErr and SaveErr, when set, are returned instead of touching the blob.
	LoadErr error
	SaveErr error
	Saves   int
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns a copy of the stored blob.
func (m *MemoryStore) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.LoadErr != nil {
		return nil, &caterror.StorageError{Op: "load", Path: ":memory:", Err: m.LoadErr}
	}
	if m.blob == nil {
		return nil, &caterror.StorageError{Op: "load", Path: ":memory:", Err: caterror.ErrArtifactNotFound}
	}
	return append([]byte(nil), m.blob...), nil
}

// Save stores a copy of blob.
func (m *MemoryStore) Save(ctx context.Context, blob []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return &caterror.StorageError{Op: "save", Path: ":memory:", Err: m.SaveErr}
	}
	m.blob = append([]byte(nil), blob...)
	m.Saves++
	return nil
}

// Close is a no-op.
func (m *MemoryStore) Close() error {
	return nil
}
