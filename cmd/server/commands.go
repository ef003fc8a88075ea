package main

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/config"
	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/database"
	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/server"
	"github.com/Parsa-Nasirikhah/SE-Lab-ResturantManagement/internal/staff"

	"github.com/spf13/cobra"
)

var (
	skipMigrate bool

	adminUsername string
	adminEmail    string
	adminPassword string
)

var rootCmd = &cobra.Command{
	Use:   "restaurant",
	Short: "Restaurant ordering and staff management API",
	// Running the binary without a subcommand serves the API.
	RunE: runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		skipMigrate = false
		_, err := connect()
		return err
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the default menu categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := connect(); err != nil {
			return err
		}
		return database.SeedCategories(database.DB)
	},
}

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an administrator account",
	RunE: func(cmd *cobra.Command, args []string) error {
		if adminPassword == "" {
			adminPassword = os.Getenv("ADMIN_PASSWORD")
		}
		if adminUsername == "" || adminEmail == "" || adminPassword == "" {
			return errors.New("--username, --email and --password (or ADMIN_PASSWORD) are required")
		}
		if _, err := connect(); err != nil {
			return err
		}

		user, err := staff.BootstrapAdmin(context.Background(), database.DB, adminUsername, adminEmail, adminPassword)
		if err != nil {
			return err
		}
		log.Printf("Admin %q created (id %d)", user.Username, user.ID)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&skipMigrate, "skip-migrate", false, "Do not run schema migration on start")

	createAdminCmd.Flags().StringVar(&adminUsername, "username", "", "Admin username")
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "Admin email")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "Admin password")

	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd, createAdminCmd)
}

// connect loads the configuration, opens the database and migrates it
// unless --skip-migrate is set.
func connect() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := database.Init(cfg); err != nil {
		return nil, err
	}
	if !skipMigrate {
		if err := database.Migrate(database.DB); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := connect()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.MediaPath, 0o755); err != nil {
		log.Printf("[WARN] could not create media directory %s: %v", cfg.MediaPath, err)
	}

	app := server.New(cfg, database.DB)

	log.Println("Server listening on port:", cfg.HTTPPort)
	return app.Listen(":" + cfg.HTTPPort)
}
