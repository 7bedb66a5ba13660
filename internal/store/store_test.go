package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/filevault/backend/internal/models"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed opening in-memory sqlite database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed getting sql.DB from gorm: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	if err := db.AutoMigrate(&models.User{}, &models.Folder{}, &models.File{}); err != nil {
		t.Fatalf("failed automigrating models: %v", err)
	}

	return New(db)
}

func createStoreTestUser(t *testing.T, st *Store, email string) *models.User {
	t.Helper()

	user := &models.User{Username: "test", Email: email, PasswordHash: "x"}
	if err := st.Transact(context.Background(), func(tx *gorm.DB) error {
		return tx.Create(user).Error
	}); err != nil {
		t.Fatalf("failed creating user: %v", err)
	}
	return user
}

func TestStoreInitializesEmpty(t *testing.T) {
	st := newTestStore(t)
	user := createStoreTestUser(t, st, "empty@test.com")

	snap, err := st.Snapshot(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}
	if len(snap.Files) != 0 || len(snap.Folders) != 0 {
		t.Fatalf("expected empty collections, got %d files and %d folders", len(snap.Files), len(snap.Folders))
	}
}

func TestTransactRollsBackOnError(t *testing.T) {
	st := newTestStore(t)
	user := createStoreTestUser(t, st, "rollback@test.com")

	sentinel := errors.New("boom")
	err := st.Transact(context.Background(), func(tx *gorm.DB) error {
		file := models.File{
			UserID:     user.ID,
			Name:       "doomed.png",
			Type:       models.FileTypeImage,
			MimeType:   "image/png",
			Size:       10,
			UploadDate: user.CreatedAt,
		}
		if err := tx.Create(&file).Error; err != nil {
			return err
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel error, got %v", err)
	}

	snap, err := st.Snapshot(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}
	if len(snap.Files) != 0 {
		t.Fatalf("expected rollback to discard the file, found %d", len(snap.Files))
	}
}

func TestSnapshotUnknownUser(t *testing.T) {
	st := newTestStore(t)

	if _, err := st.Snapshot(context.Background(), uuid.New()); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected record-not-found, got %v", err)
	}
}

func TestTransactSerializesConcurrentWriters(t *testing.T) {
	st := newTestStore(t)
	user := createStoreTestUser(t, st, "concurrent@test.com")

	const writers = 16
	var wg sync.WaitGroup
	errs := make(chan error, writers)

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			errs <- st.Transact(context.Background(), func(tx *gorm.DB) error {
				// Read-modify-write over the whole collection: the
				// classic lost-update shape if writers interleave.
				var count int64
				if err := tx.Model(&models.Folder{}).Where("user_id = ?", user.ID).Count(&count).Error; err != nil {
					return err
				}
				folder := models.Folder{
					UserID: user.ID,
					Name:   fmt.Sprintf("folder-%d-%d", n, count),
				}
				return tx.Create(&folder).Error
			})
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent transact failed: %v", err)
		}
	}

	snap, err := st.Snapshot(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}
	if len(snap.Folders) != writers {
		t.Fatalf("expected %d folders, got %d (lost update)", writers, len(snap.Folders))
	}
}
