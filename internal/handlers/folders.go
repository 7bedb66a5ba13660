package handlers

import (
	"errors"

	"github.com/filevault/backend/internal/catalog"
	"github.com/filevault/backend/internal/middleware"
	"github.com/filevault/backend/internal/storage"
	"github.com/filevault/backend/pkg/logger"
	"github.com/filevault/backend/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

type FoldersHandler struct {
	Catalog *catalog.Service
	Storage *storage.MinIOClient
}

func NewFoldersHandler(svc *catalog.Service, storageClient *storage.MinIOClient) *FoldersHandler {
	return &FoldersHandler{Catalog: svc, Storage: storageClient}
}

type createFolderRequest struct {
	Name     string  `json:"name"`
	ParentID *string `json:"parentId"`
}

func (h *FoldersHandler) Create(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var req createFolderRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	parentID, err := parseOptionalUUID(req.ParentID)
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid parentId")
	}

	folder, err := h.Catalog.CreateFolder(c.Context(), currentUser.ID, req.Name, parentID)
	if err != nil {
		return catalogError(c, err)
	}
	return utils.Success(c, fiber.StatusCreated, folder)
}

func (h *FoldersHandler) Children(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	folderID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid folder id")
	}

	contents, err := h.Catalog.FolderChildren(c.Context(), currentUser.ID, &folderID)
	if err != nil {
		return catalogError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, contents)
}

func (h *FoldersHandler) Update(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	folderID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid folder id")
	}

	var req renameRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	folder, err := h.Catalog.RenameFolder(c.Context(), currentUser.ID, folderID, req.Name)
	if err != nil {
		return catalogError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, folder)
}

func (h *FoldersHandler) ToggleFavorite(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	folderID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid folder id")
	}

	folder, err := h.Catalog.ToggleFolderFavorite(c.Context(), currentUser.ID, folderID)
	if err != nil {
		return catalogError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"isFavorite": folder.IsFavorite})
}

func (h *FoldersHandler) ToggleHidden(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	folderID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid folder id")
	}

	var req pinRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	folder, err := h.Catalog.ToggleFolderHidden(c.Context(), currentUser.ID, folderID, req.Pin)
	if err != nil {
		if errors.Is(err, catalog.ErrWrongPin) {
			logger.WarnWithUser(currentUser.ID.String(), "pin_challenge_failed", map[string]interface{}{
				"folder_id": folderID.String(),
			})
		}
		return catalogError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"isHidden": folder.IsHidden})
}

func (h *FoldersHandler) Delete(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	folderID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid folder id")
	}

	deleted, removed, err := h.Catalog.DeleteFolder(c.Context(), currentUser.ID, folderID)
	if err != nil {
		return catalogError(c, err)
	}

	if h.Storage != nil {
		for _, file := range removed {
			if file.StoragePath != "" {
				_ = h.Storage.Delete(c.Context(), file.StoragePath)
			}
		}
	}

	logger.InfoWithUser(currentUser.ID.String(), "folder_deleted", map[string]interface{}{
		"folder_id":       folderID.String(),
		"folders_removed": deleted,
		"files_removed":   len(removed),
	})
	return utils.Success(c, fiber.StatusOK, fiber.Map{"deleted": deleted})
}
