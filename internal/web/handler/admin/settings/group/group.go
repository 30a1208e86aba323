// Package group provides the settings group pages: rendering a group's
// settings form, bulk saving values, adding and removing settings and
// managing the groups themselves.
package group

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoShopAdmin/GoShopAdmin/internal/auth"
	"github.com/GoShopAdmin/GoShopAdmin/internal/config"
	groupctl "github.com/GoShopAdmin/GoShopAdmin/internal/db/controller/group"
	"github.com/GoShopAdmin/GoShopAdmin/internal/db/controller/setting"
	"github.com/GoShopAdmin/GoShopAdmin/internal/db/models"
	"github.com/GoShopAdmin/GoShopAdmin/internal/settings"
	"github.com/GoShopAdmin/GoShopAdmin/internal/web/handler"
	"github.com/GoShopAdmin/GoShopAdmin/internal/web/handler/dashboard"
	"github.com/GoShopAdmin/GoShopAdmin/internal/web/navigation"
)

const (
	// Path is the base path of the settings pages.
	Path = handler.RootPath + "admin/settings"

	// TemplateName is the name of the settings group template.
	TemplateName = "admin/settings/group"
)

// Field is one setting prepared for template rendering.
type Field struct {
	Setting models.Setting
	Control settings.FieldControl
	// InputType is the HTML input type for single line controls.
	InputType string
	// Options are the parsed choices for select controls.
	Options []settings.Option
}

// SaveRequest is the bulk save payload. Values maps setting keys to their
// submitted raw values.
type SaveRequest struct {
	Values map[string]string `json:"values"`
}

// AddRequest is the payload for adding a new setting to a group.
type AddRequest struct {
	Key            string `json:"key"`
	Type           string `json:"type"`
	Value          string `json:"value"`
	Options        string `json:"options"`
	ValidationRule string `json:"validationRule"`
	IsRequired     bool   `json:"isRequired"`
	IsPublic       bool   `json:"isPublic"`
	SortOrder      int    `json:"sortOrder"`
}

// GroupRequest is the payload for creating or updating a settings group.
type GroupRequest struct {
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
	SortOrder   int    `json:"sortOrder"`
	IsActive    bool   `json:"isActive"`
}

// Service is the settings group handler service.
type Service struct {
	handler.Service
	cfg *config.Config
	db  *gorm.DB
}

// Handler is the settings group handler.
var Handler = Service{}

// Init initializes the settings group handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg

	// register routes with permission checks
	app.Get(Path+"/group/:slug",
		auth.RequirePermission(authService, auth.PermSettingsView),
		s.Get,
	)
	app.Post(Path+"/group/:slug",
		auth.RequirePermission(authService, auth.PermSettingsUpdate),
		s.Save,
	)
	app.Post(Path+"/group/:slug/add",
		auth.RequirePermission(authService, auth.PermSettingsCreate),
		s.Add,
	)
	app.Post(Path+"/delete/:key",
		auth.RequirePermission(authService, auth.PermSettingsDelete),
		s.DeleteSetting,
	)
	app.Post(Path+"/group",
		auth.RequirePermission(authService, auth.PermSettingsCreate),
		s.CreateGroup,
	)
	app.Post(Path+"/group/:slug/update",
		auth.RequirePermission(authService, auth.PermSettingsUpdate),
		s.UpdateGroup,
	)
	app.Post(Path+"/group/:slug/delete",
		auth.RequirePermission(authService, auth.PermSettingsDelete),
		s.DeleteGroup,
	)
}

// Get handles the settings group page rendering.
func (s *Service) Get(c *fiber.Ctx) error {
	slug := c.Params("slug")

	g, err := groupctl.Get(s.db, slug)
	if err != nil {
		if errors.Is(err, groupctl.ErrGroupNotFound) {
			return c.Status(fiber.StatusNotFound).SendString("Settings group not found")
		}

		log.Error().Err(err).Str("group", slug).Msg("failed to load settings group")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load settings group")
	}

	entries, err := setting.GetGroupSettings(s.db, slug)
	if err != nil {
		log.Error().Err(err).Str("group", slug).Msg("failed to load group settings")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load settings")
	}

	fields := make([]Field, 0, len(entries))

	for i := range entries {
		entry := entries[i]
		t := settings.Type(entry.Type)

		field := Field{
			Setting:   entry,
			Control:   t.Control(),
			InputType: t.InputType(),
		}

		if field.Control == settings.ControlSelect {
			opts, optErr := settings.ParseOptions(entry.Options)
			if optErr != nil {
				log.Warn().Err(optErr).Str("key", entry.Key).Msg("bad select options")
			}

			field.Options = opts
		}

		fields = append(fields, field)
	}

	groups, err := groupctl.GetActive(s.db)
	if err != nil {
		log.Error().Err(err).Msg("failed to load settings groups")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load settings groups")
	}

	nav := navigation.NewContext(g.Name, "settings", g.Slug).
		AddBreadcrumb("Home", dashboard.Path, false).
		AddBreadcrumb("Settings", "", false).
		AddBreadcrumb(g.Name, Path+"/group/"+g.Slug, true).
		WithGroups(groups)

	return c.Render(TemplateName, fiber.Map{
		"Navigation": nav,
		"Group":      g,
		"Fields":     fields,
		"Types":      settings.AllTypes(),
	}, handler.BaseLayout)
}

// Save handles the bulk save of a group's values. Each key is validated and
// saved independently; the response carries a per key outcome so the form
// can mark the failed fields while the rest are already persisted.
func (s *Service) Save(c *fiber.Ctx) error {
	slug := c.Params("slug")

	req := new(SaveRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(handler.JSONResponse{
			Message: "Invalid request body",
		})
	}

	if len(req.Values) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(handler.JSONResponse{
			Message: "No values submitted",
		})
	}

	actor := auth.ActorFromRequest(c)

	results, err := setting.UpdateGroup(s.db, slug, req.Values, actor)
	if err != nil {
		if errors.Is(err, setting.ErrGroupNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(handler.JSONResponse{
				Message: "Settings group not found",
			})
		}

		log.Error().Err(err).Str("group", slug).Msg("failed to save group settings")

		return c.Status(fiber.StatusInternalServerError).JSON(handler.JSONResponse{
			Message: "Failed to save settings",
		})
	}

	failed := 0

	for _, r := range results {
		if !r.OK {
			failed++
		}
	}

	resp := handler.JSONResponse{
		Success: failed == 0,
		Data:    results,
	}

	if failed > 0 {
		resp.Message = strconv.Itoa(failed) + " of " + strconv.Itoa(len(results)) + " settings failed validation"
	} else {
		resp.Message = "Settings saved"
	}

	return c.JSON(resp)
}

// Add handles adding a new setting to the group.
func (s *Service) Add(c *fiber.Ctx) error {
	slug := c.Params("slug")

	req := new(AddRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(handler.JSONResponse{
			Message: "Invalid request body",
		})
	}

	entry := &models.Setting{
		Key:            req.Key,
		Group:          slug,
		Type:           req.Type,
		Value:          req.Value,
		Options:        req.Options,
		ValidationRule: req.ValidationRule,
		IsRequired:     req.IsRequired,
		IsPublic:       req.IsPublic,
		SortOrder:      req.SortOrder,
	}

	if err := setting.Create(s.db, entry); err != nil {
		status := fiber.StatusBadRequest

		switch {
		case errors.Is(err, setting.ErrDuplicateKey):
			status = fiber.StatusConflict
		case errors.Is(err, setting.ErrGroupNotFound):
			status = fiber.StatusNotFound
		}

		return c.Status(status).JSON(handler.JSONResponse{
			Message: err.Error(),
		})
	}

	log.Info().Str("key", entry.Key).Str("group", slug).Msg("setting created")

	return c.JSON(handler.JSONResponse{
		Success: true,
		Message: "Setting created",
		Data:    entry,
	})
}

// DeleteSetting handles removing a single setting.
func (s *Service) DeleteSetting(c *fiber.Ctx) error {
	key := c.Params("key")

	if err := setting.Delete(s.db, key); err != nil {
		if errors.Is(err, setting.ErrUnknownSettingKey) {
			return c.Status(fiber.StatusNotFound).JSON(handler.JSONResponse{
				Message: "Setting not found",
			})
		}

		log.Error().Err(err).Str("key", key).Msg("failed to delete setting")

		return c.Status(fiber.StatusInternalServerError).JSON(handler.JSONResponse{
			Message: "Failed to delete setting",
		})
	}

	log.Info().Str("key", key).Msg("setting deleted")

	return c.JSON(handler.JSONResponse{
		Success: true,
		Message: "Setting deleted",
	})
}

// CreateGroup handles creating a new settings group.
func (s *Service) CreateGroup(c *fiber.Ctx) error {
	req := new(GroupRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(handler.JSONResponse{
			Message: "Invalid request body",
		})
	}

	g := &models.SettingGroup{
		Slug:        req.Slug,
		Name:        req.Name,
		Icon:        req.Icon,
		Description: req.Description,
		SortOrder:   req.SortOrder,
		IsActive:    req.IsActive,
	}

	if err := groupctl.Create(s.db, g); err != nil {
		status := fiber.StatusBadRequest
		if errors.Is(err, groupctl.ErrGroupAlreadyExists) {
			status = fiber.StatusConflict
		}

		return c.Status(status).JSON(handler.JSONResponse{
			Message: err.Error(),
		})
	}

	log.Info().Str("group", g.Slug).Msg("settings group created")

	return c.JSON(handler.JSONResponse{
		Success: true,
		Message: "Group created",
		Data:    g,
	})
}

// UpdateGroup handles updating a settings group's metadata. The slug is
// immutable; settings reference their group by slug.
func (s *Service) UpdateGroup(c *fiber.Ctx) error {
	slug := c.Params("slug")

	req := new(GroupRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(handler.JSONResponse{
			Message: "Invalid request body",
		})
	}

	g := &models.SettingGroup{
		Slug:        slug,
		Name:        req.Name,
		Icon:        req.Icon,
		Description: req.Description,
		SortOrder:   req.SortOrder,
		IsActive:    req.IsActive,
	}

	if err := groupctl.Update(s.db, g); err != nil {
		if errors.Is(err, groupctl.ErrGroupNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(handler.JSONResponse{
				Message: "Settings group not found",
			})
		}

		return c.Status(fiber.StatusBadRequest).JSON(handler.JSONResponse{
			Message: err.Error(),
		})
	}

	return c.JSON(handler.JSONResponse{
		Success: true,
		Message: "Group updated",
		Data:    g,
	})
}

// DeleteGroup handles removing a settings group together with its settings.
func (s *Service) DeleteGroup(c *fiber.Ctx) error {
	slug := c.Params("slug")

	deleted, err := setting.DeleteGroupSettings(s.db, slug)
	if err != nil {
		log.Error().Err(err).Str("group", slug).Msg("failed to delete group settings")

		return c.Status(fiber.StatusInternalServerError).JSON(handler.JSONResponse{
			Message: "Failed to delete group settings",
		})
	}

	if err := groupctl.Delete(s.db, slug); err != nil {
		if errors.Is(err, groupctl.ErrGroupNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(handler.JSONResponse{
				Message: "Settings group not found",
			})
		}

		log.Error().Err(err).Str("group", slug).Msg("failed to delete group")

		return c.Status(fiber.StatusInternalServerError).JSON(handler.JSONResponse{
			Message: "Failed to delete group",
		})
	}

	log.Info().Str("group", slug).Int64("settings_deleted", deleted).Msg("settings group deleted")

	return c.JSON(handler.JSONResponse{
		Success: true,
		Message: "Group deleted",
	})
}
