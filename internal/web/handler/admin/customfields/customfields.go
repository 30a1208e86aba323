// Package customfields provides the custom field management pages. Custom
// fields extend shop entities (products, orders, customers) with typed
// values that follow the same validation contract as settings.
package customfields

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoShopAdmin/GoShopAdmin/internal/auth"
	"github.com/GoShopAdmin/GoShopAdmin/internal/config"
	"github.com/GoShopAdmin/GoShopAdmin/internal/db/controller/customfield"
	"github.com/GoShopAdmin/GoShopAdmin/internal/db/controller/group"
	"github.com/GoShopAdmin/GoShopAdmin/internal/db/models"
	"github.com/GoShopAdmin/GoShopAdmin/internal/settings"
	"github.com/GoShopAdmin/GoShopAdmin/internal/web/handler"
	"github.com/GoShopAdmin/GoShopAdmin/internal/web/handler/dashboard"
	"github.com/GoShopAdmin/GoShopAdmin/internal/web/navigation"
)

const (
	// Path is the path to the custom fields page.
	Path = handler.RootPath + "admin/custom-fields"

	// TemplateName is the name of the custom fields template.
	TemplateName = "admin/customfields"
)

// CreateRequest is the payload for defining a custom field.
type CreateRequest struct {
	Key            string `json:"key"`
	Entity         string `json:"entity"`
	Label          string `json:"label"`
	Type           string `json:"type"`
	Value          string `json:"value"`
	Options        string `json:"options"`
	ValidationRule string `json:"validationRule"`
	IsRequired     bool   `json:"isRequired"`
	SortOrder      int    `json:"sortOrder"`
}

// ValueRequest is the payload for updating a field's default value.
type ValueRequest struct {
	Value string `json:"value"`
}

// Service is the custom fields handler service.
type Service struct {
	handler.Service
	cfg *config.Config
	db  *gorm.DB
}

// Handler is the custom fields handler.
var Handler = Service{}

// Init initializes the custom fields handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg

	// register routes with permission checks
	app.Get(Path,
		auth.RequirePermission(authService, auth.PermCustomFieldsManage),
		s.Get,
	)
	app.Post(Path,
		auth.RequirePermission(authService, auth.PermCustomFieldsManage),
		s.Create,
	)
	app.Post(Path+"/:key/value",
		auth.RequirePermission(authService, auth.PermCustomFieldsManage),
		s.UpdateValue,
	)
	app.Post(Path+"/:key/delete",
		auth.RequirePermission(authService, auth.PermCustomFieldsManage),
		s.Delete,
	)
}

// Get handles the custom fields page rendering. ?entity= narrows the
// listing to one shop entity.
func (s *Service) Get(c *fiber.Ctx) error {
	var (
		fields []models.CustomField
		err    error
	)

	entity := c.Query("entity", "")
	if entity != "" {
		fields, err = customfield.GetByEntity(s.db, entity)
	} else {
		fields, err = customfield.GetAll(s.db)
	}

	if err != nil {
		log.Error().Err(err).Str("entity", entity).Msg("failed to load custom fields")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load custom fields")
	}

	groups, err := group.GetActive(s.db)
	if err != nil {
		log.Error().Err(err).Msg("failed to load settings groups")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load settings groups")
	}

	nav := navigation.NewContext("Custom Fields", "customfields", "customfields").
		AddBreadcrumb("Home", dashboard.Path, false).
		AddBreadcrumb("Custom Fields", Path, true).
		WithGroups(groups)

	return c.Render(TemplateName, fiber.Map{
		"Navigation": nav,
		"Fields":     fields,
		"Entity":     entity,
		"Types":      settings.AllTypes(),
	}, handler.BaseLayout)
}

// Create handles defining a new custom field.
func (s *Service) Create(c *fiber.Ctx) error {
	req := new(CreateRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(handler.JSONResponse{
			Message: "Invalid request body",
		})
	}

	field := &models.CustomField{
		Key:            req.Key,
		Entity:         req.Entity,
		Label:          req.Label,
		Type:           req.Type,
		Value:          req.Value,
		Options:        req.Options,
		ValidationRule: req.ValidationRule,
		IsRequired:     req.IsRequired,
		SortOrder:      req.SortOrder,
	}

	if err := customfield.Create(s.db, field); err != nil {
		status := fiber.StatusBadRequest
		if errors.Is(err, customfield.ErrDuplicateKey) {
			status = fiber.StatusConflict
		}

		return c.Status(status).JSON(handler.JSONResponse{
			Message: err.Error(),
		})
	}

	log.Info().Str("key", field.Key).Str("entity", field.Entity).Msg("custom field created")

	return c.JSON(handler.JSONResponse{
		Success: true,
		Message: "Custom field created",
		Data:    field,
	})
}

// UpdateValue handles changing a custom field's default value.
func (s *Service) UpdateValue(c *fiber.Ctx) error {
	key := c.Params("key")

	req := new(ValueRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(handler.JSONResponse{
			Message: "Invalid request body",
		})
	}

	field, err := customfield.UpdateValue(s.db, key, req.Value)
	if err != nil {
		if errors.Is(err, customfield.ErrFieldNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(handler.JSONResponse{
				Message: "Custom field not found",
			})
		}

		return c.Status(fiber.StatusBadRequest).JSON(handler.JSONResponse{
			Message: err.Error(),
		})
	}

	return c.JSON(handler.JSONResponse{
		Success: true,
		Message: "Custom field updated",
		Data:    field,
	})
}

// Delete handles removing a custom field definition.
func (s *Service) Delete(c *fiber.Ctx) error {
	key := c.Params("key")

	if err := customfield.Delete(s.db, key); err != nil {
		if errors.Is(err, customfield.ErrFieldNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(handler.JSONResponse{
				Message: "Custom field not found",
			})
		}

		log.Error().Err(err).Str("key", key).Msg("failed to delete custom field")

		return c.Status(fiber.StatusInternalServerError).JSON(handler.JSONResponse{
			Message: "Failed to delete custom field",
		})
	}

	log.Info().Str("key", key).Msg("custom field deleted")

	return c.JSON(handler.JSONResponse{
		Success: true,
		Message: "Custom field deleted",
	})
}
