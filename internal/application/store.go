package application

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	bolt "github.com/boltdb/bolt"
)

const (
	applicationsBucket = "applications"
	sequencesBucket    = "sequences"
)

// ErrNotFound is returned when a requested application does not exist.
var ErrNotFound = errors.New("application not found")

// Store persists applications in an embedded BoltDB file. All data lives in a
// single file, so no external database process is required.
type Store struct {
	db *bolt.DB
}

// NewStore opens (or creates) the database at the given path and ensures the
// buckets exist.
func NewStore(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(applicationsBucket)); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists([]byte(sequencesBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close releases the database file lock.
func (s *Store) Close() error {
	return s.db.Close()
}

// Create persists a new application, allocating its monthly application
// number inside the same write transaction so two concurrent creates can
// never share a number.
func (s *Store) Create(app *Application) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(applicationsBucket))
		if existing := b.Get([]byte(app.ID)); existing != nil {
			return fmt.Errorf("application %s already exists", app.ID)
		}

		seq, err := s.nextSequence(tx, app.CreatedAt)
		if err != nil {
			return err
		}
		app.Number = FormatNumber(app.CreatedAt, seq)

		data, err := json.Marshal(app)
		if err != nil {
			return err
		}
		return b.Put([]byte(app.ID), data)
	})
}

// nextSequence increments and returns the per-month counter. Sequences reset
// each calendar month because the key embeds the month.
func (s *Store) nextSequence(tx *bolt.Tx, createdAt time.Time) (uint64, error) {
	b := tx.Bucket([]byte(sequencesBucket))
	key := []byte(createdAt.UTC().Format("200601"))

	var current uint64
	if v := b.Get(key); v != nil {
		if _, err := fmt.Sscanf(string(v), "%d", &current); err != nil {
			return 0, fmt.Errorf("corrupt sequence for %s: %w", key, err)
		}
	}
	current++
	if err := b.Put(key, []byte(fmt.Sprintf("%d", current))); err != nil {
		return 0, err
	}
	return current, nil
}

// Get retrieves a single application by ID. Returns ErrNotFound if the key
// does not exist.
func (s *Store) Get(id string) (*Application, error) {
	var app Application

	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(applicationsBucket))
		v := b.Get([]byte(id))
		if v == nil {
			return ErrNotFound
		}
		return json.Unmarshal(v, &app)
	})
	if err != nil {
		return nil, err
	}

	return &app, nil
}

// ListByUser returns every application owned by the given user. The result is
// an empty slice, never nil, so encoders emit [] instead of null.
func (s *Store) ListByUser(userID string) ([]Application, error) {
	apps := []Application{}

	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(applicationsBucket))
		return b.ForEach(func(k, v []byte) error {
			var app Application
			if err := json.Unmarshal(v, &app); err != nil {
				return err
			}
			if app.UserID == userID {
				apps = append(apps, app)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return apps, nil
}

// UpdateStatus moves an application to a new status, enforcing the allowed
// transition graph. The write is skipped when the status is unchanged.
func (s *Store) UpdateStatus(id, status string) (*Application, error) {
	var app Application

	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(applicationsBucket))
		v := b.Get([]byte(id))
		if v == nil {
			return ErrNotFound
		}
		if err := json.Unmarshal(v, &app); err != nil {
			return err
		}

		if app.Status == status {
			return nil
		}
		if !CanTransition(app.Status, status) {
			return fmt.Errorf("cannot transition application from %s to %s", app.Status, status)
		}

		app.Status = status
		app.UpdatedAt = time.Now().UTC()

		data, err := json.Marshal(&app)
		if err != nil {
			return err
		}
		return b.Put([]byte(id), data)
	})
	if err != nil {
		return nil, err
	}

	return &app, nil
}
