package navigation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/GoShopAdmin/GoShopAdmin/internal/db/models"
)

func TestNewContext(t *testing.T) {
	ctx := NewContext("Email Settings", "settings", "email")

	assert.Equal(t, "Email Settings", ctx.PageTitle)
	assert.Equal(t, "settings", ctx.ActiveSection)
	assert.Equal(t, "email", ctx.ActivePage)
	assert.NotNil(t, ctx.Breadcrumbs)
	assert.Empty(t, ctx.Breadcrumbs)
}

func TestContext_AddBreadcrumb_Chaining(t *testing.T) {
	ctx := NewContext("Email Settings", "settings", "email").
		AddBreadcrumb("Home", "/dashboard", false).
		AddBreadcrumb("Settings", "", false).
		AddBreadcrumb("Email", "/admin/settings/email", true)

	assert.Len(t, ctx.Breadcrumbs, 3)
	assert.Equal(t, "Home", ctx.Breadcrumbs[0].Title)
	assert.Equal(t, "Settings", ctx.Breadcrumbs[1].Title)
	assert.Equal(t, "Email", ctx.Breadcrumbs[2].Title)
	assert.True(t, ctx.Breadcrumbs[2].Active)
}

func TestContext_WithGroups(t *testing.T) {
	groups := []models.SettingGroup{
		{Slug: "general", Name: "General"},
		{Slug: "email", Name: "Email"},
	}

	ctx := NewContext("Email Settings", "settings", "email").WithGroups(groups)

	assert.Len(t, ctx.Groups, 2)
	assert.Equal(t, "general", ctx.Groups[0].Slug)
}

func TestContext_IsActive(t *testing.T) {
	ctx := NewContext("Email Settings", "settings", "email")

	assert.True(t, ctx.IsActive("settings", "email"))
	assert.False(t, ctx.IsActive("dashboard", "email"))
	assert.False(t, ctx.IsActive("settings", "seo"))
}

func TestContext_IsSectionActive(t *testing.T) {
	ctx := NewContext("Email Settings", "settings", "email")

	assert.True(t, ctx.IsSectionActive("settings"))
	assert.False(t, ctx.IsSectionActive("dashboard"))
}
