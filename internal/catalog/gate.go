package catalog

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/filevault/backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Every lookup below filters by the caller's user id. A record owned
// by someone else is indistinguishable from one that does not exist.

func findUser(tx *gorm.DB, userID uuid.UUID) (models.User, error) {
	var user models.User
	if err := tx.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, fmt.Errorf("%w: user", ErrNotFound)
		}
		return models.User{}, err
	}
	return user, nil
}

func findFile(tx *gorm.DB, userID, fileID uuid.UUID) (models.File, error) {
	var file models.File
	if err := tx.First(&file, "id = ? AND user_id = ?", fileID, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.File{}, fmt.Errorf("%w: file", ErrNotFound)
		}
		return models.File{}, err
	}
	return file, nil
}

func findFolder(tx *gorm.DB, userID, folderID uuid.UUID) (models.Folder, error) {
	var folder models.Folder
	if err := tx.First(&folder, "id = ? AND user_id = ?", folderID, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Folder{}, fmt.Errorf("%w: folder", ErrNotFound)
		}
		return models.Folder{}, err
	}
	return folder, nil
}

// checkPin is a no-op while the user has no PIN configured. Once set,
// the supplied value must match exactly. Constant-time comparison; the
// stored value itself stays plaintext so the PIN remains recoverable.
func checkPin(user models.User, supplied string) error {
	if user.Pin == "" {
		return nil
	}
	if subtle.ConstantTimeCompare([]byte(user.Pin), []byte(supplied)) != 1 {
		return ErrWrongPin
	}
	return nil
}

func validatePin(pin string) error {
	if len(pin) < 4 || len(pin) > 6 {
		return fmt.Errorf("%w: pin must be 4-6 characters", ErrInvalidInput)
	}
	return nil
}
