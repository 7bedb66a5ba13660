// Package catalog implements the per-user storage catalog: keyed
// metadata collections, the folder hierarchy over them, the PIN gate
// on hidden content, and the derived aggregate views.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/filevault/backend/internal/models"
	"github.com/filevault/backend/internal/store"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultQuotaBytes is the advertised per-user storage quota.
const DefaultQuotaBytes int64 = 1_000_000_000

type Service struct {
	store *store.Store
}

func NewService(st *store.Store) *Service {
	return &Service{store: st}
}

func (s *Service) snapshot(ctx context.Context, userID uuid.UUID) (*store.Snapshot, error) {
	snap, err := s.store.Snapshot(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user", ErrNotFound)
		}
		return nil, storeErr(err)
	}
	return snap, nil
}

type CreateFileInput struct {
	Name        string
	Type        models.FileType
	Size        int64
	MimeType    string
	FolderID    *uuid.UUID
	StoragePath string
	Tags        []string
}

// CreateFile records metadata for an upload whose bytes are already
// stored externally.
func (s *Service) CreateFile(ctx context.Context, userID uuid.UUID, input CreateFileInput) (*models.File, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, fmt.Errorf("%w: file name is required", ErrInvalidInput)
	}
	if !input.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown file type %q", ErrInvalidInput, input.Type)
	}
	if input.Size < 0 {
		return nil, fmt.Errorf("%w: size must be non-negative", ErrInvalidInput)
	}
	if input.MimeType == "" {
		return nil, fmt.Errorf("%w: mimetype is required", ErrInvalidInput)
	}

	var file models.File
	err := s.store.Transact(ctx, func(tx *gorm.DB) error {
		if input.FolderID != nil {
			if _, err := findFolder(tx, userID, *input.FolderID); err != nil {
				return err
			}
		}
		file = models.File{
			UserID:      userID,
			Name:        input.Name,
			Type:        input.Type,
			Size:        input.Size,
			MimeType:    input.MimeType,
			UploadDate:  time.Now(),
			FolderID:    input.FolderID,
			Tags:        models.TagList(input.Tags),
			StoragePath: input.StoragePath,
		}
		return tx.Create(&file).Error
	})
	if err != nil {
		return nil, storeErr(err)
	}
	return &file, nil
}

type ListFilesFilter struct {
	Type     string
	Favorite *bool
	Hidden   *bool
	FolderID *uuid.UUID
}

func (s *Service) ListFiles(ctx context.Context, userID uuid.UUID, filter ListFilesFilter) ([]models.File, error) {
	snap, err := s.snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}

	files := make([]models.File, 0, len(snap.Files))
	for _, file := range snap.Files {
		if filter.Type != "" && string(file.Type) != filter.Type {
			continue
		}
		if filter.Favorite != nil && file.IsFavorite != *filter.Favorite {
			continue
		}
		if filter.Hidden != nil && file.IsHidden != *filter.Hidden {
			continue
		}
		if filter.FolderID != nil && (file.FolderID == nil || *file.FolderID != *filter.FolderID) {
			continue
		}
		files = append(files, file)
	}
	return files, nil
}

func (s *Service) GetFile(ctx context.Context, userID, fileID uuid.UUID) (*models.File, error) {
	snap, err := s.snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range snap.Files {
		if snap.Files[i].ID == fileID {
			return &snap.Files[i], nil
		}
	}
	return nil, fmt.Errorf("%w: file", ErrNotFound)
}

func (s *Service) RenameFile(ctx context.Context, userID, fileID uuid.UUID, name string) (*models.File, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	var file models.File
	err := s.store.Transact(ctx, func(tx *gorm.DB) error {
		found, err := findFile(tx, userID, fileID)
		if err != nil {
			return err
		}
		found.Name = name
		if err := tx.Model(&models.File{}).Where("id = ?", found.ID).Update("name", name).Error; err != nil {
			return err
		}
		file = found
		return nil
	})
	if err != nil {
		return nil, storeErr(err)
	}
	return &file, nil
}

// MoveFile re-parents a file; a nil folder id moves it to the root.
// Folders themselves are never re-parented.
func (s *Service) MoveFile(ctx context.Context, userID, fileID uuid.UUID, folderID *uuid.UUID) (*models.File, error) {
	var file models.File
	err := s.store.Transact(ctx, func(tx *gorm.DB) error {
		found, err := findFile(tx, userID, fileID)
		if err != nil {
			return err
		}
		if folderID != nil {
			if _, err := findFolder(tx, userID, *folderID); err != nil {
				return err
			}
		}
		found.FolderID = folderID
		if err := tx.Model(&models.File{}).Where("id = ?", found.ID).Update("folder_id", folderID).Error; err != nil {
			return err
		}
		file = found
		return nil
	})
	if err != nil {
		return nil, storeErr(err)
	}
	return &file, nil
}

// DeleteFile removes a file's metadata and returns the removed record
// so the caller can release the stored bytes afterwards.
func (s *Service) DeleteFile(ctx context.Context, userID, fileID uuid.UUID) (*models.File, error) {
	var file models.File
	err := s.store.Transact(ctx, func(tx *gorm.DB) error {
		found, err := findFile(tx, userID, fileID)
		if err != nil {
			return err
		}
		if err := tx.Delete(&models.File{}, "id = ?", found.ID).Error; err != nil {
			return err
		}
		file = found
		return nil
	})
	if err != nil {
		return nil, storeErr(err)
	}
	return &file, nil
}

func (s *Service) ToggleFileFavorite(ctx context.Context, userID, fileID uuid.UUID) (*models.File, error) {
	var file models.File
	err := s.store.Transact(ctx, func(tx *gorm.DB) error {
		found, err := findFile(tx, userID, fileID)
		if err != nil {
			return err
		}
		found.IsFavorite = !found.IsFavorite
		if err := tx.Model(&models.File{}).Where("id = ?", found.ID).Update("is_favorite", found.IsFavorite).Error; err != nil {
			return err
		}
		file = found
		return nil
	})
	if err != nil {
		return nil, storeErr(err)
	}
	return &file, nil
}

// ToggleFileHidden flips the hidden flag after the PIN gate passes.
// The gate and the flip run in one transaction, so a failed challenge
// leaves the flag untouched.
func (s *Service) ToggleFileHidden(ctx context.Context, userID, fileID uuid.UUID, pin string) (*models.File, error) {
	var file models.File
	err := s.store.Transact(ctx, func(tx *gorm.DB) error {
		user, err := findUser(tx, userID)
		if err != nil {
			return err
		}
		if err := checkPin(user, pin); err != nil {
			return err
		}
		found, err := findFile(tx, userID, fileID)
		if err != nil {
			return err
		}
		found.IsHidden = !found.IsHidden
		if err := tx.Model(&models.File{}).Where("id = ?", found.ID).Update("is_hidden", found.IsHidden).Error; err != nil {
			return err
		}
		file = found
		return nil
	})
	if err != nil {
		return nil, storeErr(err)
	}
	return &file, nil
}

func (s *Service) CreateFolder(ctx context.Context, userID uuid.UUID, name string, parentID *uuid.UUID) (*models.Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: folder name is required", ErrInvalidInput)
	}

	var folder models.Folder
	err := s.store.Transact(ctx, func(tx *gorm.DB) error {
		if parentID != nil {
			if _, err := findFolder(tx, userID, *parentID); err != nil {
				return err
			}
		}
		folder = models.Folder{UserID: userID, Name: name, ParentID: parentID}
		return tx.Create(&folder).Error
	})
	if err != nil {
		return nil, storeErr(err)
	}
	return &folder, nil
}

type FolderContents struct {
	Folders []models.Folder `json:"folders"`
	Files   []models.File   `json:"files"`
}

// FolderChildren lists the direct child folders and files of folderID,
// nil meaning the root level.
func (s *Service) FolderChildren(ctx context.Context, userID uuid.UUID, folderID *uuid.UUID) (*FolderContents, error) {
	var contents FolderContents
	err := s.store.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if folderID != nil {
			if _, err := findFolder(tx, userID, *folderID); err != nil {
				return err
			}
		}
		folders, err := childFolders(tx, userID, folderID)
		if err != nil {
			return err
		}
		files, err := childFiles(tx, userID, folderID)
		if err != nil {
			return err
		}
		contents = FolderContents{Folders: folders, Files: files}
		return nil
	})
	if err != nil {
		return nil, storeErr(err)
	}
	return &contents, nil
}

func (s *Service) RenameFolder(ctx context.Context, userID, folderID uuid.UUID, name string) (*models.Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	var folder models.Folder
	err := s.store.Transact(ctx, func(tx *gorm.DB) error {
		found, err := findFolder(tx, userID, folderID)
		if err != nil {
			return err
		}
		found.Name = name
		if err := tx.Model(&models.Folder{}).Where("id = ?", found.ID).Update("name", name).Error; err != nil {
			return err
		}
		folder = found
		return nil
	})
	if err != nil {
		return nil, storeErr(err)
	}
	return &folder, nil
}

func (s *Service) ToggleFolderFavorite(ctx context.Context, userID, folderID uuid.UUID) (*models.Folder, error) {
	var folder models.Folder
	err := s.store.Transact(ctx, func(tx *gorm.DB) error {
		found, err := findFolder(tx, userID, folderID)
		if err != nil {
			return err
		}
		found.IsFavorite = !found.IsFavorite
		if err := tx.Model(&models.Folder{}).Where("id = ?", found.ID).Update("is_favorite", found.IsFavorite).Error; err != nil {
			return err
		}
		folder = found
		return nil
	})
	if err != nil {
		return nil, storeErr(err)
	}
	return &folder, nil
}

func (s *Service) ToggleFolderHidden(ctx context.Context, userID, folderID uuid.UUID, pin string) (*models.Folder, error) {
	var folder models.Folder
	err := s.store.Transact(ctx, func(tx *gorm.DB) error {
		user, err := findUser(tx, userID)
		if err != nil {
			return err
		}
		if err := checkPin(user, pin); err != nil {
			return err
		}
		found, err := findFolder(tx, userID, folderID)
		if err != nil {
			return err
		}
		found.IsHidden = !found.IsHidden
		if err := tx.Model(&models.Folder{}).Where("id = ?", found.ID).Update("is_hidden", found.IsHidden).Error; err != nil {
			return err
		}
		folder = found
		return nil
	})
	if err != nil {
		return nil, storeErr(err)
	}
	return &folder, nil
}

// DeleteFolder cascades: the folder, all descendant folders, and every
// file parented inside the removed set go away in one transaction. It
// returns the folder count and the removed files.
func (s *Service) DeleteFolder(ctx context.Context, userID, folderID uuid.UUID) (int, []models.File, error) {
	var deleted int
	var removed []models.File
	err := s.store.Transact(ctx, func(tx *gorm.DB) error {
		var err error
		deleted, removed, err = deleteSubtree(tx, userID, folderID)
		return err
	})
	if err != nil {
		return 0, nil, storeErr(err)
	}
	return deleted, removed, nil
}

// SetPin sets or replaces the user's hidden-content PIN.
func (s *Service) SetPin(ctx context.Context, userID uuid.UUID, pin string) error {
	if err := validatePin(pin); err != nil {
		return err
	}
	err := s.store.Transact(ctx, func(tx *gorm.DB) error {
		if _, err := findUser(tx, userID); err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", userID).Update("pin", pin).Error
	})
	return storeErr(err)
}

type OverviewReport struct {
	TotalStorage int64                     `json:"totalStorage"`
	UsedStorage  int64                     `json:"usedStorage"`
	ByType       map[models.FileType]int64 `json:"byType"`
	Recent       []models.File             `json:"recent"`
}

func (s *Service) Overview(ctx context.Context, userID uuid.UUID) (*OverviewReport, error) {
	snap, err := s.snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &OverviewReport{
		TotalStorage: DefaultQuotaBytes,
		UsedStorage:  UsageTotal(snap.Files),
		ByType:       UsageByType(snap.Files, models.FileTypes),
		Recent:       Recent(snap.Files, 10),
	}, nil
}

type UsageReport struct {
	Quota int64 `json:"quota"`
	Used  int64 `json:"used"`
}

func (s *Service) Usage(ctx context.Context, userID uuid.UUID) (*UsageReport, error) {
	snap, err := s.snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &UsageReport{Quota: DefaultQuotaBytes, Used: UsageTotal(snap.Files)}, nil
}

// TypeBreakdown reports per-type usage for every type present, unlike
// the dashboard's fixed category list.
func (s *Service) TypeBreakdown(ctx context.Context, userID uuid.UUID) (map[models.FileType]int64, error) {
	snap, err := s.snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	breakdown := make(map[models.FileType]int64)
	for _, file := range snap.Files {
		breakdown[file.Type] += file.Size
	}
	return breakdown, nil
}

type CalendarReport struct {
	Year  int           `json:"year"`
	Month int           `json:"month"`
	Days  []CalendarDay `json:"days"`
}

func (s *Service) CalendarMonth(ctx context.Context, userID uuid.UUID, year, month int) (*CalendarReport, []models.File, error) {
	snap, err := s.snapshot(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	days, files, err := CalendarMonth(snap.Files, year, month)
	if err != nil {
		return nil, nil, err
	}
	return &CalendarReport{Year: year, Month: month, Days: days}, files, nil
}

func (s *Service) FilesOnDate(ctx context.Context, userID uuid.UUID, date time.Time) ([]models.File, error) {
	snap, err := s.snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	return FilesOnDate(snap.Files, date), nil
}

func (s *Service) FilesInRange(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]models.File, error) {
	snap, err := s.snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	return FilesInRange(snap.Files, start, end), nil
}

func (s *Service) FavoriteFiles(ctx context.Context, userID uuid.UUID) ([]models.File, error) {
	snap, err := s.snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	return Favorites(snap.Files), nil
}

func (s *Service) RecentFiles(ctx context.Context, userID uuid.UUID, n int) ([]models.File, error) {
	snap, err := s.snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	return Recent(snap.Files, n), nil
}
