package history

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mmcdole/hifi/internal/domain"
	bolt "go.etcd.io/bbolt"
)

var bucketHistory = []byte("history")

var _ domain.HistoryStore = (*Store)(nil)

// Store implements domain.HistoryStore using BoltDB.
// Keys are big-endian bucket sequence numbers, so cursor order is queue order.
type Store struct {
	db  *bolt.DB
	max int // entries kept; 0 keeps everything
}

// Open opens or creates the history database at path
func Open(path string, max int) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketHistory)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, max: max}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Record appends an entry and prunes the oldest beyond the configured maximum
func (s *Store) Record(rec domain.PlayRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketHistory)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		if err := b.Put(itob(seq), data); err != nil {
			return err
		}
		return s.prune(b)
	})
}

// prune deletes from the oldest end until at most max entries remain
func (s *Store) prune(b *bolt.Bucket) error {
	if s.max <= 0 {
		return nil
	}

	var keys [][]byte
	c := b.Cursor()
	for k, _ := c.First(); k != nil; k, _ = c.Next() {
		keys = append(keys, append([]byte(nil), k...))
	}

	// Collected first: deleting under a live cursor skips entries
	for i := 0; i < len(keys)-s.max; i++ {
		if err := b.Delete(keys[i]); err != nil {
			return err
		}
	}
	return nil
}

// Recent returns up to n entries, newest first
func (s *Store) Recent(n int) ([]domain.PlayRecord, error) {
	var records []domain.PlayRecord

	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketHistory).Cursor()
		for k, v := c.Last(); k != nil && len(records) < n; k, v = c.Prev() {
			var rec domain.PlayRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				// Skip unreadable entries rather than failing the listing
				continue
			}
			records = append(records, rec)
		}
		return nil
	})

	return records, err
}

func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}
