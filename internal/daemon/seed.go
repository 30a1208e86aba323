package daemon

import (
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoShopAdmin/GoShopAdmin/internal/auth"
	"github.com/GoShopAdmin/GoShopAdmin/internal/config"
	"github.com/GoShopAdmin/GoShopAdmin/internal/db/controller/setting"
	"github.com/GoShopAdmin/GoShopAdmin/internal/db/models"
)

// seed populates an empty database with the admin role, its permissions,
// a default admin user and the default settings catalog. Existing rows are
// never touched, so seeding is safe to run on every start.
func seed(_ *config.Config, db *gorm.DB) {
	seedPermissions(db)
	adminRole := seedAdminRole(db)
	seedAdminUser(db, adminRole)
	seedGroups(db)
	seedSettings(db)
}

func seedPermissions(db *gorm.DB) {
	for _, name := range auth.All() {
		resource, action, _ := strings.Cut(name, ".")

		var count int64
		db.Model(&models.Permission{}).Where("name = ?", name).Count(&count)

		if count == 0 {
			db.Create(&models.Permission{
				Name:     name,
				Resource: resource,
				Action:   action,
			})
		}
	}
}

func seedAdminRole(db *gorm.DB) *models.Role {
	adminRole := &models.Role{}

	result := db.Where("name = ?", "admin").First(adminRole)
	if result.Error != nil {
		adminRole = &models.Role{
			Name:        "admin",
			Description: "Full access to the back office",
			IsSystem:    true,
		}
		db.Create(adminRole)
	}

	// admin holds every permission
	var permissions []models.Permission

	db.Find(&permissions)

	for _, p := range permissions {
		var count int64
		db.Model(&models.RolePermission{}).
			Where("role_id = ? AND permission_id = ?", adminRole.ID, p.ID).
			Count(&count)

		if count == 0 {
			db.Create(&models.RolePermission{RoleID: adminRole.ID, PermissionID: p.ID})
		}
	}

	return adminRole
}

func seedAdminUser(db *gorm.DB, adminRole *models.Role) {
	var count int64

	db.Model(&models.User{}).Count(&count)
	if count == 0 {
		db.Create(
			&models.User{
				Username: "admin",
				Email:    "admin@localhost",
				Password: models.HashPassword("changeme"),
				Active:   true,
				RoleID:   adminRole.ID,
			},
		)

		log.Warn().Msg("created default admin user with password \"changeme\", change it")
	}
}

func seedGroups(db *gorm.DB) {
	groups := []models.SettingGroup{
		{Slug: "general", Name: "General", Icon: "storefront", Description: "Store identity and contact details", SortOrder: 1, IsActive: true},
		{Slug: "checkout", Name: "Checkout", Icon: "cart", Description: "Cart and checkout behaviour", SortOrder: 2, IsActive: true},
		{Slug: "mail", Name: "Mail", Icon: "envelope", Description: "Outgoing mail settings", SortOrder: 3, IsActive: true},
		{Slug: "appearance", Name: "Appearance", Icon: "palette", Description: "Theme and branding", SortOrder: 4, IsActive: true},
		{Slug: "uploads", Name: "Uploads", Icon: "upload", Description: "File upload limits", SortOrder: 5, IsActive: true},
	}

	for i := range groups {
		var count int64
		db.Model(&models.SettingGroup{}).Where("slug = ?", groups[i].Slug).Count(&count)

		if count == 0 {
			db.Create(&groups[i])
		}
	}
}

func seedSettings(db *gorm.DB) {
	defaults := []models.Setting{
		{Key: "site_title", Group: "general", Type: "text", Value: "My Shop", ValidationRule: "required|max:120", IsRequired: true, IsPublic: true, SortOrder: 1},
		{Key: "site_tagline", Group: "general", Type: "text", Value: "", ValidationRule: "max:255", IsPublic: true, SortOrder: 2},
		{Key: "contact_email", Group: "general", Type: "email", Value: "shop@localhost", ValidationRule: "required|email", IsRequired: true, SortOrder: 3},
		{Key: "store_url", Group: "general", Type: "url", Value: "http://localhost", ValidationRule: "url", IsPublic: true, SortOrder: 4},
		{Key: "maintenance_mode", Group: "general", Type: "boolean", Value: "0", SortOrder: 5},

		{Key: "guest_checkout", Group: "checkout", Type: "boolean", Value: "1", IsPublic: true, SortOrder: 1},
		{Key: "min_order_total", Group: "checkout", Type: "number", Value: "0", ValidationRule: "numeric|min:0", SortOrder: 2},
		{
			Key: "default_currency", Group: "checkout", Type: "select", Value: "EUR",
			Options: `["EUR","USD","GBP"]`, ValidationRule: "required", IsRequired: true, IsPublic: true, SortOrder: 3,
		},

		{Key: "mail_from_address", Group: "mail", Type: "email", Value: "noreply@localhost", ValidationRule: "required|email", IsRequired: true, SortOrder: 1},
		{Key: "mail_from_name", Group: "mail", Type: "text", Value: "My Shop", ValidationRule: "max:120", SortOrder: 2},
		{Key: "smtp_password", Group: "mail", Type: "password", Value: "", SortOrder: 3},

		{Key: "accent_color", Group: "appearance", Type: "color", Value: "#3366ff", IsPublic: true, SortOrder: 1},
		{Key: "shop_logo", Group: "appearance", Type: "file", Value: "", IsPublic: true, SortOrder: 2},
		{Key: "theme_overrides", Group: "appearance", Type: "json", Value: "{}", SortOrder: 3},

		{Key: "max_upload_mb", Group: "uploads", Type: "number", Value: "16", ValidationRule: "numeric|max:100", SortOrder: 1},
	}

	for i := range defaults {
		_, err := setting.Get(db, defaults[i].Key)
		if err == nil {
			continue
		}

		if createErr := setting.Create(db, &defaults[i]); createErr != nil {
			log.Error().Err(createErr).Str("key", defaults[i].Key).Msg("failed to seed setting")
		}
	}
}
