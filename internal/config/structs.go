package config

import (
	"time"

	"github.com/GoShopAdmin/GoShopAdmin/internal/logger"
)

// Session settings.
type Session struct {
	ExpiryTime time.Duration
}

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Log       logger.Log
	Title     string
	Webserver Webserver
	Transfer  Transfer
}

// Webserver implement webserver settings.
type Webserver struct {
	CacheEnabled        bool    // true = enable cache, false = disable cache
	Domain              string  // domain name for the webserver
	Port                int     // listening port for the webserver
	ShutDownTime        int     // wait time for shutdown
	URL                 string  // base url for the webserver
	CookieEncryptionKey string  // encryption key for cookies
	Session             Session // session settings
}

// Transfer holds settings import/export options.
type Transfer struct {
	// BackupDir is where pre-import snapshots are written.
	BackupDir string
	// MaxImportSize is the largest accepted import document in bytes.
	MaxImportSize int
}
