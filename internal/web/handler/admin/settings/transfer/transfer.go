// Package transfer provides the settings import/export pages: export
// downloads in JSON, CSV and XML, and the two phase import flow of
// preview then commit.
package transfer

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoShopAdmin/GoShopAdmin/internal/auth"
	"github.com/GoShopAdmin/GoShopAdmin/internal/config"
	"github.com/GoShopAdmin/GoShopAdmin/internal/db/controller/group"
	"github.com/GoShopAdmin/GoShopAdmin/internal/transfer"
	"github.com/GoShopAdmin/GoShopAdmin/internal/web/handler"
	"github.com/GoShopAdmin/GoShopAdmin/internal/web/handler/dashboard"
	"github.com/GoShopAdmin/GoShopAdmin/internal/web/navigation"
)

const (
	// Path is the path to the settings transfer page.
	Path = handler.RootPath + "admin/settings/transfer"

	// TemplateName is the name of the transfer template.
	TemplateName = "admin/settings/transfer"
)

// ImportRequest is the payload of both the preview and the commit calls.
// Document carries the raw import text as submitted.
type ImportRequest struct {
	Format       string `json:"format"`
	Mode         string `json:"mode"`
	Conflicts    string `json:"conflicts"`
	Document     string `json:"document"`
	CreateBackup bool   `json:"createBackup"`
}

// Service is the settings transfer handler service.
type Service struct {
	handler.Service
	cfg *config.Config
	db  *gorm.DB
}

// Handler is the settings transfer handler.
var Handler = Service{}

// Init initializes the settings transfer handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg

	// register routes with permission checks
	app.Get(Path,
		auth.RequireAnyPermission(authService, auth.PermTransferExport, auth.PermTransferImport),
		s.Get,
	)
	app.Get(Path+"/export",
		auth.RequirePermission(authService, auth.PermTransferExport),
		s.Export,
	)
	app.Post(Path+"/preview",
		auth.RequirePermission(authService, auth.PermTransferImport),
		s.Preview,
	)
	app.Post(Path+"/commit",
		auth.RequirePermission(authService, auth.PermTransferImport),
		s.Commit,
	)
}

// Get handles the transfer page rendering.
func (s *Service) Get(c *fiber.Ctx) error {
	groups, err := group.GetActive(s.db)
	if err != nil {
		log.Error().Err(err).Msg("failed to load settings groups")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load settings groups")
	}

	nav := navigation.NewContext("Import / Export", "settings", "transfer").
		AddBreadcrumb("Home", dashboard.Path, false).
		AddBreadcrumb("Settings", "", false).
		AddBreadcrumb("Import / Export", Path, true).
		WithGroups(groups)

	return c.Render(TemplateName, fiber.Map{
		"Navigation": nav,
	}, handler.BaseLayout)
}

// Export handles the export download. Scope comes from the query string:
// ?group=<slug> exports one group, ?keys=a,b,c an explicit set, neither
// exports the whole store.
func (s *Service) Export(c *fiber.Ctx) error {
	format, err := transfer.ParseFormat(c.Query("format", string(transfer.FormatJSON)))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString(err.Error())
	}

	scope := transfer.Scope{All: true}

	if groupSlug := c.Query("group", ""); groupSlug != "" {
		scope = transfer.Scope{Group: groupSlug}
	} else if keys := c.Query("keys", ""); keys != "" {
		scope = transfer.Scope{Keys: strings.Split(keys, ",")}
	}

	opts := transfer.ExportOptions{
		IncludeValues:   c.QueryBool("values", true),
		IncludeMetadata: c.QueryBool("metadata", true),
	}

	data, err := transfer.Export(s.db, scope, format, opts)
	if err != nil {
		log.Error().Err(err).Str("format", string(format)).Msg("settings export failed")

		return c.Status(fiber.StatusInternalServerError).SendString("Export failed: " + err.Error())
	}

	filename := "settings-" + time.Now().UTC().Format("20060102-150405") + "." + string(format)

	c.Set(fiber.HeaderContentType, format.ContentType())
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)

	return c.Send(data)
}

// Preview handles the dry run phase of an import. Nothing is written; the
// response reports what a commit with the same payload would do.
func (s *Service) Preview(c *fiber.Ctx) error {
	req, records, mode, ok := s.parseImport(c)
	if !ok {
		return nil
	}

	preview, err := transfer.PreviewImport(s.db, records, mode)
	if err != nil {
		log.Error().Err(err).Msg("import preview failed")

		return c.Status(fiber.StatusInternalServerError).JSON(handler.JSONResponse{
			Message: "Preview failed",
		})
	}

	log.Debug().
		Str("format", req.Format).
		Str("mode", req.Mode).
		Int("records", len(records)).
		Msg("import previewed")

	return c.JSON(handler.JSONResponse{
		Success: true,
		Data:    preview,
	})
}

// Commit handles the commit phase of an import.
func (s *Service) Commit(c *fiber.Ctx) error {
	req, records, mode, ok := s.parseImport(c)
	if !ok {
		return nil
	}

	policy := transfer.ConflictPolicy(req.Conflicts)
	if policy == "" {
		policy = transfer.ConflictSkip
	}

	actor := auth.ActorFromRequest(c)

	result, err := transfer.Import(
		s.db, records, mode, policy, actor,
		s.cfg.Transfer.BackupDir, req.CreateBackup,
	)
	if err != nil {
		log.Error().Err(err).Str("mode", req.Mode).Msg("settings import failed")

		return c.Status(fiber.StatusInternalServerError).JSON(handler.JSONResponse{
			Message: "Import failed: " + err.Error(),
		})
	}

	return c.JSON(handler.JSONResponse{
		Success: len(result.Errors) == 0,
		Message: "Import committed",
		Data:    result,
	})
}

// parseImport validates the shared parts of the preview and commit payloads.
// On failure it writes the error response and returns ok=false.
func (s *Service) parseImport(c *fiber.Ctx) (*ImportRequest, []transfer.Record, transfer.Mode, bool) {
	req := new(ImportRequest)
	if err := c.BodyParser(req); err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(handler.JSONResponse{
			Message: "Invalid request body",
		})

		return nil, nil, "", false
	}

	if s.cfg.Transfer.MaxImportSize > 0 && len(req.Document) > s.cfg.Transfer.MaxImportSize {
		_ = c.Status(fiber.StatusRequestEntityTooLarge).JSON(handler.JSONResponse{
			Message: "Import document is too large",
		})

		return nil, nil, "", false
	}

	format, err := transfer.ParseFormat(req.Format)
	if err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(handler.JSONResponse{
			Message: err.Error(),
		})

		return nil, nil, "", false
	}

	mode, err := transfer.ParseMode(req.Mode)
	if err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(handler.JSONResponse{
			Message: err.Error(),
		})

		return nil, nil, "", false
	}

	records, err := transfer.Parse([]byte(req.Document), format)
	if err != nil {
		if errors.Is(err, transfer.ErrImportParse) {
			_ = c.Status(fiber.StatusBadRequest).JSON(handler.JSONResponse{
				Message: err.Error(),
			})

			return nil, nil, "", false
		}

		log.Error().Err(err).Msg("failed to parse import document")

		_ = c.Status(fiber.StatusInternalServerError).JSON(handler.JSONResponse{
			Message: "Failed to parse import document",
		})

		return nil, nil, "", false
	}

	return req, records, mode, true
}
