// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "saas-foundation",
	Short: "saas-foundation is a reusable multi-tenant SaaS backend",
	Long: `saas-foundation is a reusable multi-tenant SaaS backend providing
accounts and users, role based authorization, subscription tiers and
billing through a payment gateway adapter.`,
	Args: cobra.OnlyValidArgs,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
