// Package apikeys provides the API key management pages: generation with a
// one-time secret reveal, enable/disable, revoke and delete.
package apikeys

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoShopAdmin/GoShopAdmin/internal/auth"
	"github.com/GoShopAdmin/GoShopAdmin/internal/config"
	"github.com/GoShopAdmin/GoShopAdmin/internal/db/controller/apikey"
	"github.com/GoShopAdmin/GoShopAdmin/internal/db/controller/group"
	"github.com/GoShopAdmin/GoShopAdmin/internal/web/handler"
	"github.com/GoShopAdmin/GoShopAdmin/internal/web/handler/dashboard"
	"github.com/GoShopAdmin/GoShopAdmin/internal/web/navigation"
)

const (
	// Path is the path to the API keys page.
	Path = handler.RootPath + "admin/api-keys"

	// TemplateName is the name of the API keys template.
	TemplateName = "admin/apikeys"
)

// GenerateRequest is the payload for creating a new API key.
type GenerateRequest struct {
	Name      string   `json:"name"`
	Scopes    []string `json:"scopes"`
	RateLimit int      `json:"rateLimit"`
	// ExpiresAt is an RFC 3339 timestamp; empty means the key never expires.
	ExpiresAt string `json:"expiresAt"`
}

// Service is the API keys handler service.
type Service struct {
	handler.Service
	cfg *config.Config
	db  *gorm.DB
}

// Handler is the API keys handler.
var Handler = Service{}

// Init initializes the API keys handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg

	// register routes with permission checks
	app.Get(Path,
		auth.RequirePermission(authService, auth.PermAPIKeysManage),
		s.Get,
	)
	app.Post(Path,
		auth.RequirePermission(authService, auth.PermAPIKeysManage),
		s.Generate,
	)
	app.Post(Path+"/:key/toggle",
		auth.RequirePermission(authService, auth.PermAPIKeysManage),
		s.Toggle,
	)
	app.Post(Path+"/:key/revoke",
		auth.RequirePermission(authService, auth.PermAPIKeysManage),
		s.Revoke,
	)
	app.Post(Path+"/:key/delete",
		auth.RequirePermission(authService, auth.PermAPIKeysManage),
		s.Delete,
	)
}

// Get handles the API keys page rendering.
func (s *Service) Get(c *fiber.Ctx) error {
	keys, err := apikey.GetAll(s.db)
	if err != nil {
		log.Error().Err(err).Msg("failed to load api keys")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load API keys")
	}

	groups, err := group.GetActive(s.db)
	if err != nil {
		log.Error().Err(err).Msg("failed to load settings groups")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load settings groups")
	}

	nav := navigation.NewContext("API Keys", "apikeys", "apikeys").
		AddBreadcrumb("Home", dashboard.Path, false).
		AddBreadcrumb("API Keys", Path, true).
		WithGroups(groups)

	return c.Render(TemplateName, fiber.Map{
		"Navigation": nav,
		"Keys":       keys,
	}, handler.BaseLayout)
}

// Generate handles creating a new API key. The response carries the
// plaintext secret exactly once; it cannot be retrieved again.
func (s *Service) Generate(c *fiber.Ctx) error {
	req := new(GenerateRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(handler.JSONResponse{
			Message: "Invalid request body",
		})
	}

	var expiresAt *time.Time

	if req.ExpiresAt != "" {
		exp, err := time.Parse(time.RFC3339, req.ExpiresAt)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(handler.JSONResponse{
				Message: "Invalid expiry timestamp, expected RFC 3339",
			})
		}

		expiresAt = &exp
	}

	generated, err := apikey.Generate(s.db, req.Name, req.Scopes, req.RateLimit, expiresAt)
	if err != nil {
		if errors.Is(err, apikey.ErrNameEmpty) {
			return c.Status(fiber.StatusBadRequest).JSON(handler.JSONResponse{
				Message: err.Error(),
			})
		}

		log.Error().Err(err).Str("name", req.Name).Msg("failed to generate api key")

		return c.Status(fiber.StatusInternalServerError).JSON(handler.JSONResponse{
			Message: "Failed to generate API key",
		})
	}

	log.Info().Str("key", generated.Key).Str("name", req.Name).Msg("api key generated")

	return c.JSON(handler.JSONResponse{
		Success: true,
		Message: "Store the secret now, it will not be shown again",
		Data: fiber.Map{
			"key":    generated.Key,
			"secret": generated.Secret,
			"record": generated.Record,
		},
	})
}

// Toggle handles flipping a key between enabled and disabled.
func (s *Service) Toggle(c *fiber.Ctx) error {
	key := c.Params("key")

	record, err := apikey.Toggle(s.db, key)
	if err != nil {
		if errors.Is(err, apikey.ErrKeyNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(handler.JSONResponse{
				Message: "API key not found",
			})
		}

		log.Error().Err(err).Str("key", key).Msg("failed to toggle api key")

		return c.Status(fiber.StatusInternalServerError).JSON(handler.JSONResponse{
			Message: "Failed to toggle API key",
		})
	}

	return c.JSON(handler.JSONResponse{
		Success: true,
		Message: "API key updated",
		Data:    record,
	})
}

// Revoke handles permanently disabling a key.
func (s *Service) Revoke(c *fiber.Ctx) error {
	key := c.Params("key")

	if err := apikey.Revoke(s.db, key); err != nil {
		if errors.Is(err, apikey.ErrKeyNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(handler.JSONResponse{
				Message: "API key not found",
			})
		}

		log.Error().Err(err).Str("key", key).Msg("failed to revoke api key")

		return c.Status(fiber.StatusInternalServerError).JSON(handler.JSONResponse{
			Message: "Failed to revoke API key",
		})
	}

	log.Warn().Str("key", key).Msg("api key revoked")

	return c.JSON(handler.JSONResponse{
		Success: true,
		Message: "API key revoked",
	})
}

// Delete handles removing a key record entirely.
func (s *Service) Delete(c *fiber.Ctx) error {
	key := c.Params("key")

	if err := apikey.Delete(s.db, key); err != nil {
		if errors.Is(err, apikey.ErrKeyNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(handler.JSONResponse{
				Message: "API key not found",
			})
		}

		log.Error().Err(err).Str("key", key).Msg("failed to delete api key")

		return c.Status(fiber.StatusInternalServerError).JSON(handler.JSONResponse{
			Message: "Failed to delete API key",
		})
	}

	log.Info().Str("key", key).Msg("api key deleted")

	return c.JSON(handler.JSONResponse{
		Success: true,
		Message: "API key deleted",
	})
}
