// Package main provides the entry point for the GoShopAdmin back-office.
// It initializes and runs a web server using the Fiber framework that lets
// shop administrators manage typed configuration settings, custom fields,
// API keys and the settings audit trail through a web interface and a small
// JSON API. The application uses gorm for data persistence and records every
// setting mutation in an append-only change history.
package main
