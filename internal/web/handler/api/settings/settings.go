// Package settings provides the read-only settings API used by the
// storefront. Anonymous callers see settings flagged public; callers
// presenting a valid API key with the settings read scope see all of them.
package settings

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoShopAdmin/GoShopAdmin/internal/config"
	"github.com/GoShopAdmin/GoShopAdmin/internal/db/controller/apikey"
	"github.com/GoShopAdmin/GoShopAdmin/internal/db/controller/setting"
	"github.com/GoShopAdmin/GoShopAdmin/internal/db/models"
	"github.com/GoShopAdmin/GoShopAdmin/internal/web/handler"
)

const (
	// Path is the base path of the settings API.
	Path = handler.RootPath + "api/settings"

	// HeaderAPIKey carries the key identifier.
	HeaderAPIKey = "X-Api-Key"

	// HeaderAPISecret carries the key secret.
	HeaderAPISecret = "X-Api-Secret"

	// ScopeSettingsRead is the scope that unlocks non-public settings.
	ScopeSettingsRead = "settings:read"

	localKeyed = "api_keyed"
)

// Entry is the public wire shape of a setting. Internal metadata such as
// validation rules stays out of the storefront API.
type Entry struct {
	Key   string `json:"key"`
	Group string `json:"group"`
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Service is the settings API handler service.
type Service struct {
	handler.Service
	cfg *config.Config
	db  *gorm.DB
}

// Handler is the settings API handler.
var Handler = Service{}

// Init initializes the settings API handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg

	app.Get(Path, s.withKey, s.List)
	app.Get(Path+"/:key", s.withKey, s.GetOne)
}

// withKey authenticates an optional API key. Requests without credentials
// proceed anonymously; presented credentials must be valid. Verification
// also bumps the key's usage counter.
func (s *Service) withKey(c *fiber.Ctx) error {
	keyID := c.Get(HeaderAPIKey)
	secret := c.Get(HeaderAPISecret)

	if keyID == "" && secret == "" {
		return c.Next()
	}

	record, err := apikey.Verify(s.db, keyID, secret)
	if err != nil {
		if errors.Is(err, apikey.ErrKeyNotFound) || errors.Is(err, apikey.ErrKeyInactive) {
			log.Warn().Str("key", keyID).Str("ip", c.IP()).Msg("api key rejected")

			return c.Status(fiber.StatusUnauthorized).JSON(handler.JSONResponse{
				Message: "Invalid API credentials",
			})
		}

		log.Error().Err(err).Str("key", keyID).Msg("api key verification failed")

		return c.Status(fiber.StatusInternalServerError).JSON(handler.JSONResponse{
			Message: "Internal Server Error",
		})
	}

	c.Locals(localKeyed, hasScope(apikey.ScopeList(record), ScopeSettingsRead))

	return c.Next()
}

func keyed(c *fiber.Ctx) bool {
	v, ok := c.Locals(localKeyed).(bool)

	return ok && v
}

// List handles serving settings. Anonymous callers only get public ones.
func (s *Service) List(c *fiber.Ctx) error {
	var (
		entries []models.Setting
		err     error
	)

	if keyed(c) {
		entries, err = setting.GetAll(s.db)
	} else {
		entries, err = setting.GetPublic(s.db)
	}

	if err != nil {
		log.Error().Err(err).Msg("failed to load settings")

		return c.Status(fiber.StatusInternalServerError).JSON(handler.JSONResponse{
			Message: "Internal Server Error",
		})
	}

	out := make([]Entry, 0, len(entries))

	for i := range entries {
		out = append(out, Entry{
			Key:   entries[i].Key,
			Group: entries[i].Group,
			Type:  entries[i].Type,
			Value: entries[i].Value,
		})
	}

	return c.JSON(handler.JSONResponse{
		Success: true,
		Data:    out,
	})
}

// GetOne handles serving a single setting by key. For anonymous callers
// non-public settings are indistinguishable from missing ones.
func (s *Service) GetOne(c *fiber.Ctx) error {
	key := c.Params("key")

	entry, err := setting.Get(s.db, key)
	if err != nil {
		if errors.Is(err, setting.ErrUnknownSettingKey) {
			return c.Status(fiber.StatusNotFound).JSON(handler.JSONResponse{
				Message: "Setting not found",
			})
		}

		log.Error().Err(err).Str("key", key).Msg("failed to load setting")

		return c.Status(fiber.StatusInternalServerError).JSON(handler.JSONResponse{
			Message: "Internal Server Error",
		})
	}

	if !entry.IsPublic && !keyed(c) {
		return c.Status(fiber.StatusNotFound).JSON(handler.JSONResponse{
			Message: "Setting not found",
		})
	}

	return c.JSON(handler.JSONResponse{
		Success: true,
		Data: Entry{
			Key:   entry.Key,
			Group: entry.Group,
			Type:  entry.Type,
			Value: entry.Value,
		},
	})
}

func hasScope(scopes []string, want string) bool {
	for _, scope := range scopes {
		if scope == want {
			return true
		}
	}

	return false
}
