// Package dashboard provides the back-office landing page with store totals
// and the most recent settings changes.
package dashboard

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoShopAdmin/GoShopAdmin/internal/auth"
	"github.com/GoShopAdmin/GoShopAdmin/internal/config"
	"github.com/GoShopAdmin/GoShopAdmin/internal/db/controller/group"
	"github.com/GoShopAdmin/GoShopAdmin/internal/db/controller/history"
	"github.com/GoShopAdmin/GoShopAdmin/internal/db/models"
	"github.com/GoShopAdmin/GoShopAdmin/internal/web/handler"
	"github.com/GoShopAdmin/GoShopAdmin/internal/web/navigation"
)

const (
	// Path is the path to the dashboard page.
	Path = handler.RootPath + "dashboard"

	// TemplateName is the name of the dashboard template.
	TemplateName = "dashboard"

	// RecentChanges is how many audit entries the dashboard shows.
	RecentChanges = 10
)

// Counters holds the totals shown on the dashboard tiles.
type Counters struct {
	Settings     int64
	Groups       int64
	CustomFields int64
	APIKeys      int64
	Changes      int64
}

// Service is the dashboard handler service.
type Service struct {
	handler.Service
	cfg *config.Config
	db  *gorm.DB
}

// Handler is the dashboard handler.
var Handler = Service{}

// Init initializes the dashboard handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg

	// register routes with permission checks
	app.Get(Path,
		auth.RequirePermission(authService, auth.PermDashboardView),
		s.Get,
	)
}

// Get handles the dashboard page rendering.
func (s *Service) Get(c *fiber.Ctx) error {
	groups, err := group.GetActive(s.db)
	if err != nil {
		log.Error().Err(err).Msg("failed to load settings groups")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load settings groups")
	}

	nav := navigation.NewContext("Dashboard", "dashboard", "dashboard").
		AddBreadcrumb("Home", Path, false).
		AddBreadcrumb("Dashboard", Path, true).
		WithGroups(groups)

	counters, err := s.countAll()
	if err != nil {
		log.Error().Err(err).Msg("failed to count store entities")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load dashboard data")
	}

	recent, err := history.List(s.db, history.Filters{}, 1, RecentChanges)
	if err != nil {
		log.Error().Err(err).Msg("failed to load recent changes")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load recent changes")
	}

	return c.Render(TemplateName, fiber.Map{
		"Navigation":    nav,
		"Counters":      counters,
		"RecentChanges": recent.Entries,
	}, handler.BaseLayout)
}

func (s *Service) countAll() (*Counters, error) {
	counters := &Counters{}

	counts := []struct {
		model any
		dest  *int64
	}{
		{&models.Setting{}, &counters.Settings},
		{&models.SettingGroup{}, &counters.Groups},
		{&models.CustomField{}, &counters.CustomFields},
		{&models.APIKey{}, &counters.APIKeys},
		{&models.SettingHistory{}, &counters.Changes},
	}

	for _, cnt := range counts {
		if err := s.db.Model(cnt.model).Count(cnt.dest).Error; err != nil {
			return nil, err
		}
	}

	return counters, nil
}
