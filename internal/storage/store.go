package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"
)

var visitsBucket = []byte("visits")

// ErrNotFound is returned when no visit exists for a key.
var ErrNotFound = errors.New("visit not found")

type Store struct {
	db *bolt.DB
}

func NewStore(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, createErr := tx.CreateBucketIfNotExists(visitsBucket)
		return createErr
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func visitKey(site, title string) []byte {
	return []byte(site + "\x00" + title)
}

// RecordVisit stores a visit to title on site at the given time, bumping
// the count of an earlier visit.
func (s *Store) RecordVisit(site, title string, at time.Time) (*Visit, error) {
	visit := &Visit{Title: title, Site: site, VisitedAt: at.UTC()}

	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(visitsBucket)
		key := visitKey(site, title)

		if data := b.Get(key); data != nil {
			var prev Visit
			if err := json.Unmarshal(data, &prev); err != nil {
				return err
			}
			visit.Count = prev.Count
		}
		visit.Count++

		data, err := json.Marshal(visit)
		if err != nil {
			return err
		}
		return b.Put(key, data)
	})
	if err != nil {
		return nil, fmt.Errorf("recording visit: %w", err)
	}
	return visit, nil
}

func (s *Store) GetVisit(site, title string) (*Visit, error) {
	var visit Visit
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(visitsBucket).Get(visitKey(site, title))
		if data == nil {
			return ErrNotFound
		}
		return json.Unmarshal(data, &visit)
	})
	if err != nil {
		return nil, err
	}
	return &visit, nil
}

// RecentVisits returns visits newest first. A limit of zero or less
// returns all of them.
func (s *Store) RecentVisits(limit int) ([]*Visit, error) {
	var visits []*Visit
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(visitsBucket).ForEach(func(_ []byte, v []byte) error {
			var visit Visit
			if err := json.Unmarshal(v, &visit); err != nil {
				return err
			}
			visits = append(visits, &visit)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(visits, func(i, j int) bool {
		return visits[i].VisitedAt.After(visits[j].VisitedAt)
	})

	if limit > 0 && len(visits) > limit {
		visits = visits[:limit]
	}
	return visits, nil
}

func (s *Store) DeleteVisit(site, title string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(visitsBucket).Delete(visitKey(site, title))
	})
}

// Clear removes every visit.
func (s *Store) Clear() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(visitsBucket); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
			return err
		}
		_, err := tx.CreateBucket(visitsBucket)
		return err
	})
}
