// Package daemon assembles the application: database, migrations, seed
// data, session storage and the web service.
package daemon

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/storage"
	sessionmemory "github.com/gofiber/storage/memory"
	sessionmysql "github.com/gofiber/storage/mysql"
	"github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/GoShopAdmin/GoShopAdmin/internal/config"
	"github.com/GoShopAdmin/GoShopAdmin/internal/db/dsn"
	"github.com/GoShopAdmin/GoShopAdmin/internal/db/models"
	"github.com/GoShopAdmin/GoShopAdmin/internal/web"
	"github.com/GoShopAdmin/GoShopAdmin/internal/web/session"
)

// Daemon represents the main application daemon.
type Daemon struct {
	webService web.Service
	cfg        *config.Config
}

// Start starts the Daemon's web service and blocks until shutdown.
func (d *Daemon) Start() error {
	go d.webService.WaitShutdown()

	return d.webService.Start(fmt.Sprintf(":%d", d.cfg.Webserver.Port))
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) *Daemon {
	if cfg == nil {
		log.Fatal().Msg("config is nil")
		return nil
	}

	db, err := gorm.Open(openDialector(cfg), &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
		return nil
	}

	if err = db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Permission{},
		&models.RolePermission{},
		&models.SettingGroup{},
		&models.Setting{},
		&models.SettingHistory{},
		&models.CustomField{},
		&models.APIKey{},
	); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
		return nil
	}

	seed(cfg, db)

	session.Init(openSessionStorage(cfg))

	return &Daemon{
		webService: *web.New(cfg, db),
		cfg:        cfg,
	}
}

// openDialector picks the gorm driver for the configured engine.
func openDialector(cfg *config.Config) gorm.Dialector {
	switch cfg.DB.GormEngine {
	case "postgres":
		return gormpostgres.Open(dsn.CreatePostgres(cfg))
	case "sqlite":
		return sqlite.Open(cfg.DB.SQLitePath)
	default:
		return gormmysql.Open(dsn.Create(cfg))
	}
}

// openSessionStorage returns the fiber session backend. MySQL deployments
// share sessions through the database; everything else keeps them in memory.
func openSessionStorage(cfg *config.Config) storage.Storage {
	if cfg.DB.GormEngine == "mysql" {
		return sessionmysql.New(sessionmysql.Config{
			ConnectionURI: dsn.Create(cfg),
			Table:         "sessions",
		})
	}

	return sessionmemory.New()
}
