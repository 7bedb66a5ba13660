package handlers

import (
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/filevault/backend/internal/catalog"
	"github.com/filevault/backend/internal/middleware"
	"github.com/filevault/backend/internal/models"
	"github.com/filevault/backend/internal/storage"
	"github.com/filevault/backend/pkg/logger"
	"github.com/filevault/backend/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type FilesHandler struct {
	Catalog *catalog.Service
	Storage *storage.MinIOClient
}

func NewFilesHandler(svc *catalog.Service, storageClient *storage.MinIOClient) *FilesHandler {
	return &FilesHandler{Catalog: svc, Storage: storageClient}
}

func (h *FilesHandler) Upload(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "file is required")
	}

	filename := filepath.Base(strings.TrimSpace(fileHeader.Filename))
	if filename == "" {
		return utils.Error(c, fiber.StatusBadRequest, "invalid filename")
	}

	folderIDRaw := c.FormValue("folderId")
	var folderID *uuid.UUID
	if strings.TrimSpace(folderIDRaw) != "" {
		parsed, parseErr := parseUUID(folderIDRaw)
		if parseErr != nil {
			return utils.Error(c, fiber.StatusBadRequest, "invalid folderId")
		}
		folderID = &parsed
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(filename))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	objectName := fmt.Sprintf("%s/%s/%s", currentUser.ID.String(), uuid.New().String(), filename)
	if h.Storage != nil {
		stream, openErr := fileHeader.Open()
		if openErr != nil {
			return utils.Error(c, fiber.StatusInternalServerError, "failed opening uploaded file")
		}
		defer stream.Close()

		if err := h.Storage.Upload(c.Context(), objectName, stream, fileHeader.Size, contentType); err != nil {
			return utils.Error(c, fiber.StatusInternalServerError, "failed uploading file")
		}
	}

	entry, err := h.Catalog.CreateFile(c.Context(), currentUser.ID, catalog.CreateFileInput{
		Name:        filename,
		Type:        models.FileType(c.FormValue("type")),
		Size:        fileHeader.Size,
		MimeType:    contentType,
		FolderID:    folderID,
		StoragePath: objectName,
		Tags:        splitTags(c.FormValue("tags")),
	})
	if err != nil {
		if h.Storage != nil {
			_ = h.Storage.Delete(c.Context(), objectName)
		}
		return catalogError(c, err)
	}

	logger.InfoWithUser(currentUser.ID.String(), "file_uploaded", map[string]interface{}{
		"file_id":      entry.ID.String(),
		"file_name":    entry.Name,
		"file_size":    entry.Size,
		"mime_type":    entry.MimeType,
		"storage_path": objectName,
	})
	return utils.Success(c, fiber.StatusCreated, entry)
}

func splitTags(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

func (h *FilesHandler) List(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	filter := catalog.ListFilesFilter{Type: c.Query("type")}
	if raw := c.Query("favorite"); raw != "" {
		favorite := raw == "true"
		filter.Favorite = &favorite
	}
	if raw := c.Query("hidden"); raw != "" {
		hidden := raw == "true"
		filter.Hidden = &hidden
	}
	if raw := c.Query("folderId"); raw != "" {
		parsed, err := parseUUID(raw)
		if err != nil {
			return utils.Error(c, fiber.StatusBadRequest, "invalid folderId")
		}
		filter.FolderID = &parsed
	}

	files, err := h.Catalog.ListFiles(c.Context(), currentUser.ID, filter)
	if err != nil {
		return catalogError(c, err)
	}
	return utils.Listed(c, files, len(files))
}

func (h *FilesHandler) Get(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	fileID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid file id")
	}

	file, err := h.Catalog.GetFile(c.Context(), currentUser.ID, fileID)
	if err != nil {
		return catalogError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, file)
}

// Download streams the stored bytes back with the recorded mimetype.
func (h *FilesHandler) Download(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	fileID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid file id")
	}

	file, err := h.Catalog.GetFile(c.Context(), currentUser.ID, fileID)
	if err != nil {
		return catalogError(c, err)
	}
	if h.Storage == nil || file.StoragePath == "" {
		return utils.Error(c, fiber.StatusServiceUnavailable, "storage temporarily unavailable")
	}

	object, err := h.Storage.Download(c.Context(), file.StoragePath)
	if err != nil {
		return utils.Error(c, fiber.StatusNotFound, "file content not found")
	}

	c.Set(fiber.HeaderContentType, file.MimeType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", file.Name))
	return c.SendStream(object, int(file.Size))
}

type renameRequest struct {
	Name string `json:"name"`
}

func (h *FilesHandler) Update(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	fileID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid file id")
	}

	var req renameRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	file, err := h.Catalog.RenameFile(c.Context(), currentUser.ID, fileID, req.Name)
	if err != nil {
		return catalogError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, file)
}

type moveRequest struct {
	FolderID *string `json:"folderId"`
}

func (h *FilesHandler) Move(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	fileID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid file id")
	}

	var req moveRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	folderID, err := parseOptionalUUID(req.FolderID)
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid folderId")
	}

	file, err := h.Catalog.MoveFile(c.Context(), currentUser.ID, fileID, folderID)
	if err != nil {
		return catalogError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, file)
}

func (h *FilesHandler) ToggleFavorite(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	fileID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid file id")
	}

	file, err := h.Catalog.ToggleFileFavorite(c.Context(), currentUser.ID, fileID)
	if err != nil {
		return catalogError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"isFavorite": file.IsFavorite})
}

type pinRequest struct {
	Pin string `json:"pin"`
}

func (h *FilesHandler) ToggleHidden(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	fileID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid file id")
	}

	var req pinRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	file, err := h.Catalog.ToggleFileHidden(c.Context(), currentUser.ID, fileID, req.Pin)
	if err != nil {
		if errors.Is(err, catalog.ErrWrongPin) {
			logger.WarnWithUser(currentUser.ID.String(), "pin_challenge_failed", map[string]interface{}{
				"file_id": fileID.String(),
			})
		}
		return catalogError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"isHidden": file.IsHidden})
}

func (h *FilesHandler) Delete(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	fileID, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid file id")
	}

	file, err := h.Catalog.DeleteFile(c.Context(), currentUser.ID, fileID)
	if err != nil {
		return catalogError(c, err)
	}

	// Bytes go after the metadata commit; a leaked object is better
	// than a dangling record.
	if h.Storage != nil && file.StoragePath != "" {
		_ = h.Storage.Delete(c.Context(), file.StoragePath)
	}

	logger.InfoWithUser(currentUser.ID.String(), "file_deleted", map[string]interface{}{
		"file_id": file.ID.String(),
	})
	return utils.Success(c, fiber.StatusOK, fiber.Map{"deleted": file.ID})
}
