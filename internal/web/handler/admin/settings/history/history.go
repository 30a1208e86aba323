// Package history provides the settings audit log pages: a filterable,
// paginated listing plus revert and clear actions.
package history

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoShopAdmin/GoShopAdmin/internal/auth"
	"github.com/GoShopAdmin/GoShopAdmin/internal/config"
	"github.com/GoShopAdmin/GoShopAdmin/internal/db/controller/group"
	historyctl "github.com/GoShopAdmin/GoShopAdmin/internal/db/controller/history"
	"github.com/GoShopAdmin/GoShopAdmin/internal/db/controller/setting"
	"github.com/GoShopAdmin/GoShopAdmin/internal/web/handler"
	"github.com/GoShopAdmin/GoShopAdmin/internal/web/handler/dashboard"
	"github.com/GoShopAdmin/GoShopAdmin/internal/web/navigation"
)

const (
	// Path is the path to the settings history page.
	Path = handler.RootPath + "admin/settings/history"

	// TemplateName is the name of the history template.
	TemplateName = "admin/settings/history"

	dateLayout = "2006-01-02"
)

// ClearRequest is the payload for clearing the audit log. Confirm must be
// set; clearing is irrevocable.
type ClearRequest struct {
	Confirm bool `json:"confirm"`
}

// Service is the settings history handler service.
type Service struct {
	handler.Service
	cfg *config.Config
	db  *gorm.DB
}

// Handler is the settings history handler.
var Handler = Service{}

// Init initializes the settings history handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg

	// register routes with permission checks
	app.Get(Path,
		auth.RequirePermission(authService, auth.PermHistoryView),
		s.Get,
	)
	app.Post(Path+"/revert/:id",
		auth.RequirePermission(authService, auth.PermHistoryRevert),
		s.Revert,
	)
	app.Post(Path+"/clear",
		auth.RequirePermission(authService, auth.PermHistoryClear),
		s.Clear,
	)
}

// Get handles the history page rendering with filters and pagination.
func (s *Service) Get(c *fiber.Ctx) error {
	filters := historyctl.Filters{
		KeyContains: c.Query("key", ""),
	}

	if userQuery := c.Query("user", ""); userQuery != "" {
		userID, err := strconv.ParseUint(userQuery, 10, 64)
		if err == nil {
			filters.UserID = &userID
		}
	}

	if fromQuery := c.Query("from", ""); fromQuery != "" {
		from, err := time.Parse(dateLayout, fromQuery)
		if err == nil {
			filters.From = &from
		}
	}

	if toQuery := c.Query("to", ""); toQuery != "" {
		to, err := time.Parse(dateLayout, toQuery)
		if err == nil {
			filters.To = &to
		}
	}

	pageNumber := c.QueryInt("page", 1)
	if pageNumber < 1 {
		pageNumber = 1
	}

	pageSize := c.QueryInt("pageSize", historyctl.DefaultPageSize)
	if pageSize < 1 || pageSize > 100 {
		pageSize = historyctl.DefaultPageSize
	}

	page, err := historyctl.List(s.db, filters, pageNumber, pageSize)
	if err != nil {
		log.Error().Err(err).Msg("failed to load settings history")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load settings history")
	}

	groups, err := group.GetActive(s.db)
	if err != nil {
		log.Error().Err(err).Msg("failed to load settings groups")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load settings groups")
	}

	nav := navigation.NewContext("Change History", "settings", "history").
		AddBreadcrumb("Home", dashboard.Path, false).
		AddBreadcrumb("Settings", "", false).
		AddBreadcrumb("Change History", Path, true).
		WithGroups(groups)

	return c.Render(TemplateName, fiber.Map{
		"Navigation": nav,
		"Page":       page,
		"TotalPages": page.TotalPages(),
		"FilterKey":  filters.KeyContains,
		"FilterFrom": c.Query("from", ""),
		"FilterTo":   c.Query("to", ""),
		"FilterUser": c.Query("user", ""),
	}, handler.BaseLayout)
}

// Revert handles restoring the old value of a history entry. The revert
// itself is recorded as a new history entry; nothing is rewritten.
func (s *Service) Revert(c *fiber.Ctx) error {
	entryID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(handler.JSONResponse{
			Message: "Invalid history entry ID",
		})
	}

	actor := auth.ActorFromRequest(c)

	reverted, err := historyctl.Revert(s.db, entryID, actor)
	if err != nil {
		switch {
		case errors.Is(err, historyctl.ErrHistoryEntryNotFound):
			return c.Status(fiber.StatusNotFound).JSON(handler.JSONResponse{
				Message: "History entry not found",
			})
		case errors.Is(err, setting.ErrUnknownSettingKey):
			return c.Status(fiber.StatusNotFound).JSON(handler.JSONResponse{
				Message: "The setting no longer exists",
			})
		}

		log.Error().Err(err).Uint64("entry_id", entryID).Msg("failed to revert setting change")

		return c.Status(fiber.StatusBadRequest).JSON(handler.JSONResponse{
			Message: err.Error(),
		})
	}

	log.Info().Uint64("entry_id", entryID).Str("key", reverted.Key).Msg("setting change reverted")

	return c.JSON(handler.JSONResponse{
		Success: true,
		Message: "Setting reverted",
		Data:    reverted,
	})
}

// Clear handles wiping the whole audit log.
func (s *Service) Clear(c *fiber.Ctx) error {
	req := new(ClearRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(handler.JSONResponse{
			Message: "Invalid request body",
		})
	}

	if !req.Confirm {
		return c.Status(fiber.StatusBadRequest).JSON(handler.JSONResponse{
			Message: "Clearing the history must be confirmed",
		})
	}

	deleted, err := historyctl.Clear(s.db)
	if err != nil {
		log.Error().Err(err).Msg("failed to clear settings history")

		return c.Status(fiber.StatusInternalServerError).JSON(handler.JSONResponse{
			Message: "Failed to clear history",
		})
	}

	log.Warn().Int64("deleted", deleted).Msg("settings history cleared")

	return c.JSON(handler.JSONResponse{
		Success: true,
		Message: "History cleared (" + strconv.FormatInt(deleted, 10) + " entries)",
	})
}
