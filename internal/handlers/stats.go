package handlers

import (
	"strconv"
	"time"

	"github.com/filevault/backend/internal/catalog"
	"github.com/filevault/backend/internal/middleware"
	"github.com/filevault/backend/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

type StatsHandler struct {
	Catalog *catalog.Service
}

func NewStatsHandler(svc *catalog.Service) *StatsHandler {
	return &StatsHandler{Catalog: svc}
}

func (h *StatsHandler) Overview(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	report, err := h.Catalog.Overview(c.Context(), currentUser.ID)
	if err != nil {
		return catalogError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, report)
}

func (h *StatsHandler) Favorites(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	files, err := h.Catalog.FavoriteFiles(c.Context(), currentUser.ID)
	if err != nil {
		return catalogError(c, err)
	}
	return utils.Listed(c, files, len(files))
}

func (h *StatsHandler) CalendarMonth(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	year, err := strconv.Atoi(c.Params("year"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid year")
	}
	month, err := strconv.Atoi(c.Params("month"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid month")
	}

	calendar, files, err := h.Catalog.CalendarMonth(c.Context(), currentUser.ID, year, month)
	if err != nil {
		return catalogError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"calendar": calendar,
		"files":    files,
	})
}

const dateLayout = "2006-01-02"

func (h *StatsHandler) CalendarFiles(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	if raw := c.Query("date"); raw != "" {
		date, err := time.ParseInLocation(dateLayout, raw, time.Local)
		if err != nil {
			return utils.Error(c, fiber.StatusBadRequest, "invalid date")
		}
		files, err := h.Catalog.FilesOnDate(c.Context(), currentUser.ID, date)
		if err != nil {
			return catalogError(c, err)
		}
		return utils.Listed(c, files, len(files))
	}

	startRaw, endRaw := c.Query("startDate"), c.Query("endDate")
	if startRaw != "" && endRaw != "" {
		start, err := time.ParseInLocation(dateLayout, startRaw, time.Local)
		if err != nil {
			return utils.Error(c, fiber.StatusBadRequest, "invalid startDate")
		}
		end, err := time.ParseInLocation(dateLayout, endRaw, time.Local)
		if err != nil {
			return utils.Error(c, fiber.StatusBadRequest, "invalid endDate")
		}
		files, err := h.Catalog.FilesInRange(c.Context(), currentUser.ID, start, end)
		if err != nil {
			return catalogError(c, err)
		}
		return utils.Listed(c, files, len(files))
	}

	files, err := h.Catalog.ListFiles(c.Context(), currentUser.ID, catalog.ListFilesFilter{})
	if err != nil {
		return catalogError(c, err)
	}
	return utils.Listed(c, files, len(files))
}

func (h *StatsHandler) Usage(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	report, err := h.Catalog.Usage(c.Context(), currentUser.ID)
	if err != nil {
		return catalogError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, report)
}

func (h *StatsHandler) TypeBreakdown(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	breakdown, err := h.Catalog.TypeBreakdown(c.Context(), currentUser.ID)
	if err != nil {
		return catalogError(c, err)
	}
	return utils.Success(c, fiber.StatusOK, breakdown)
}
