package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/filevault/backend/internal/models"
	"github.com/filevault/backend/internal/store"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*Service, *store.Store) {
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

	st := store.New(db)
	return NewService(st), st
}

func createTestUser(t *testing.T, st *store.Store, email, pin string) *models.User {
	t.Helper()

	user := &models.User{Username: "test", Email: email, PasswordHash: "x", Pin: pin}
	if err := st.Transact(context.Background(), func(tx *gorm.DB) error {
		return tx.Create(user).Error
	}); err != nil {
		t.Fatalf("failed creating test user: %v", err)
	}
	return user
}

func mustCreateFolder(t *testing.T, svc *Service, userID uuid.UUID, name string, parentID *uuid.UUID) *models.Folder {
	t.Helper()

	folder, err := svc.CreateFolder(context.Background(), userID, name, parentID)
	if err != nil {
		t.Fatalf("failed creating folder %q: %v", name, err)
	}
	return folder
}

func mustCreateFile(t *testing.T, svc *Service, userID uuid.UUID, name string, size int64, folderID *uuid.UUID) *models.File {
	t.Helper()

	file, err := svc.CreateFile(context.Background(), userID, CreateFileInput{
		Name:        name,
		Type:        models.FileTypeNote,
		Size:        size,
		MimeType:    "text/plain",
		FolderID:    folderID,
		StoragePath: "objects/" + name,
	})
	if err != nil {
		t.Fatalf("failed creating file %q: %v", name, err)
	}
	return file
}

func fileAt(name string, size int64, fileType models.FileType, uploaded time.Time) models.File {
	return models.File{
		Name:       name,
		Type:       fileType,
		Size:       size,
		MimeType:   "application/octet-stream",
		UploadDate: uploaded,
	}
}
