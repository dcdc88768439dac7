package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "customer-service",
		Short: "Customer REST API Service",
		Long: `Customer REST API Service keeps a registry of customers with a credit level
and validity flag. Without a subcommand it starts the HTTP server.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath)
		},
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", ".", "directory containing config.yml")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath)
		},
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the customers table and indexes, then exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(configPath)
		},
	}

	rootCmd.AddCommand(serveCmd, migrateCmd)
	return rootCmd
}
