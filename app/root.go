// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "go-shop-admin",
	Short: "GoShopAdmin is the administrative back-office for the shop platform",
	Long: `GoShopAdmin is the administrative back-office for the shop platform.
It provides typed settings management with a full change history, custom
fields, API key administration and settings import/export.`,
	Args: cobra.OnlyValidArgs,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
