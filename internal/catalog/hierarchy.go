package catalog

import (
	"fmt"

	"github.com/filevault/backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// childFolders lists the direct child folders of parentID within the
// user's scope. A nil parent means the root level.
func childFolders(tx *gorm.DB, userID uuid.UUID, parentID *uuid.UUID) ([]models.Folder, error) {
	query := tx.Where("user_id = ?", userID).Order("created_at ASC, id ASC")
	if parentID == nil {
		query = query.Where("parent_id IS NULL")
	} else {
		query = query.Where("parent_id = ?", *parentID)
	}
	var folders []models.Folder
	if err := query.Find(&folders).Error; err != nil {
		return nil, err
	}
	return folders, nil
}

// childFiles lists the files parented directly under folderID within
// the user's scope, nil meaning the root.
func childFiles(tx *gorm.DB, userID uuid.UUID, folderID *uuid.UUID) ([]models.File, error) {
	query := tx.Where("user_id = ?", userID).Order("created_at ASC, id ASC")
	if folderID == nil {
		query = query.Where("folder_id IS NULL")
	} else {
		query = query.Where("folder_id = ?", *folderID)
	}
	var files []models.File
	if err := query.Find(&files).Error; err != nil {
		return nil, err
	}
	return files, nil
}

// subtreeIDs computes the closure of rootID plus every descendant
// folder id, walking parent edges with an explicit work list so deep
// nesting never grows the call stack.
func subtreeIDs(tx *gorm.DB, userID, rootID uuid.UUID) ([]uuid.UUID, error) {
	var folders []models.Folder
	if err := tx.Select("id", "parent_id").Where("user_id = ?", userID).Find(&folders).Error; err != nil {
		return nil, err
	}

	exists := make(map[uuid.UUID]bool, len(folders))
	children := make(map[uuid.UUID][]uuid.UUID)
	for _, folder := range folders {
		exists[folder.ID] = true
		if folder.ParentID != nil {
			children[*folder.ParentID] = append(children[*folder.ParentID], folder.ID)
		}
	}
	if !exists[rootID] {
		return nil, fmt.Errorf("%w: folder", ErrNotFound)
	}

	closure := make([]uuid.UUID, 0, 8)
	queue := []uuid.UUID{rootID}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		closure = append(closure, current)
		queue = append(queue, children[current]...)
	}
	return closure, nil
}

// deleteSubtree removes the folder closure rooted at rootID and every
// file parented anywhere inside it. It returns the number of folders
// removed along with the removed files, so callers can release the
// stored bytes after the transaction commits.
func deleteSubtree(tx *gorm.DB, userID, rootID uuid.UUID) (int, []models.File, error) {
	closure, err := subtreeIDs(tx, userID, rootID)
	if err != nil {
		return 0, nil, err
	}

	var removed []models.File
	if err := tx.Where("user_id = ? AND folder_id IN ?", userID, closure).Find(&removed).Error; err != nil {
		return 0, nil, err
	}
	if err := tx.Where("user_id = ? AND folder_id IN ?", userID, closure).Delete(&models.File{}).Error; err != nil {
		return 0, nil, err
	}
	if err := tx.Where("user_id = ? AND id IN ?", userID, closure).Delete(&models.Folder{}).Error; err != nil {
		return 0, nil, err
	}
	return len(closure), removed, nil
}
