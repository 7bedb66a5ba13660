// Package store owns the durable record collections. All mutations go
// through Transact, which serializes callers so a read-modify-write
// sequence never loses a concurrent writer's update.
package store

import (
	"context"
	"sync"

	"github.com/filevault/backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Store struct {
	db *gorm.DB
	mu sync.Mutex
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle for read-only collaborators such as
// the auth middleware. Mutating paths must use Transact instead.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Transact runs fn inside a database transaction while holding the
// store lock. The commit either fully applies or, on any error from fn
// or the driver, rolls back leaving the prior durable state intact.
func (s *Store) Transact(ctx context.Context, fn func(tx *gorm.DB) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.WithContext(ctx).Transaction(fn)
}

// Snapshot is a point-in-time view of one user's records. Files are
// ordered by creation so recency ties resolve deterministically.
type Snapshot struct {
	User    models.User
	Files   []models.File
	Folders []models.Folder
}

func (s *Store) Snapshot(ctx context.Context, userID uuid.UUID) (*Snapshot, error) {
	var snap Snapshot
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&snap.User, "id = ?", userID).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Order("created_at ASC, id ASC").Find(&snap.Files).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", userID).Order("created_at ASC, id ASC").Find(&snap.Folders).Error
	})
	if err != nil {
		return nil, err
	}
	return &snap, nil
}
