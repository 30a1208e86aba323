package auth

// Permission constants define the available permissions in the system.
// These are used for role-based access control (RBAC) to restrict access
// to specific back-office resources and actions.
const (
	// PermDashboardView allows viewing the dashboard and profile area.
	PermDashboardView = "dashboard.view"

	// PermSettingsView allows viewing settings groups and their values.
	PermSettingsView = "settings.view"
	// PermSettingsUpdate allows changing setting values.
	PermSettingsUpdate = "settings.update"
	// PermSettingsCreate allows adding new settings to a group.
	PermSettingsCreate = "settings.create"
	// PermSettingsDelete allows deleting settings and whole groups.
	PermSettingsDelete = "settings.delete"

	// PermHistoryView allows viewing the settings audit log.
	PermHistoryView = "history.view"
	// PermHistoryRevert allows reverting a change from the audit log.
	PermHistoryRevert = "history.revert"
	// PermHistoryClear allows irrevocably clearing the audit log.
	PermHistoryClear = "history.clear"

	// PermTransferExport allows exporting settings documents.
	PermTransferExport = "transfer.export"
	// PermTransferImport allows previewing and committing settings imports.
	PermTransferImport = "transfer.import"

	// PermCustomFieldsManage allows managing custom field definitions.
	PermCustomFieldsManage = "customfields.manage"

	// PermAPIKeysManage allows generating, toggling, revoking and deleting API keys.
	PermAPIKeysManage = "apikeys.manage"
)

// All lists every permission for seeding.
func All() []string {
	return []string{
		PermDashboardView,
		PermSettingsView,
		PermSettingsUpdate,
		PermSettingsCreate,
		PermSettingsDelete,
		PermHistoryView,
		PermHistoryRevert,
		PermHistoryClear,
		PermTransferExport,
		PermTransferImport,
		PermCustomFieldsManage,
		PermAPIKeysManage,
	}
}
