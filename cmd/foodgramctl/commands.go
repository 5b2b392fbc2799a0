package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	applog "github.com/pageza/foodgram/backend/internal/logger"
	"github.com/pageza/foodgram/backend/internal/service"
)

// openFunc connects to the configured database. Tests swap it for SQLite.
type openFunc func(cfg *config.Config) (*gorm.DB, error)

func newRootCmd() *cobra.Command {
	return newRootCmdWith(database.Open)
}

func newRootCmdWith(open openFunc) *cobra.Command {
	var migrationsDir string

	connect := func(cmd *cobra.Command) (*gorm.DB, *config.Config, error) {
		cfg, err := config.LoadConfig()
		if err != nil {
			return nil, nil, err
		}
		if err := applog.SetLevel(cfg.LogLevel); err != nil {
			return nil, nil, err
		}
		db, err := open(cfg)
		if err != nil {
			return nil, nil, err
		}
		if migrationsDir == "" {
			migrationsDir = cfg.MigrationsDir
		}
		return db, cfg, nil
	}

	rootCmd := &cobra.Command{
		Use:           "foodgramctl",
		Short:         "Administrative tasks for the Foodgram backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&migrationsDir, "migrations", "", "directory of SQL migrations (defaults to MIGRATIONS_DIR)")

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := connect(cmd)
			if err != nil {
				return err
			}
			if err := database.RunMigrations(db, migrationsDir); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}

	loadIngredientsCmd := &cobra.Command{
		Use:   "load-ingredients [file]",
		Short: "Load ingredients from a JSON or YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ingredients, err := readIngredients(args[0])
			if err != nil {
				return err
			}
			db, _, err := connect(cmd)
			if err != nil {
				return err
			}
			added, err := service.NewCatalogService(db).LoadIngredients(cmd.Context(), ingredients)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "loaded %d of %d ingredients\n", added, len(ingredients))
			return nil
		},
	}

	loadTagsCmd := &cobra.Command{
		Use:   "load-tags [file]",
		Short: "Load tags from a JSON or YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tags, err := readTags(args[0])
			if err != nil {
				return err
			}
			db, _, err := connect(cmd)
			if err != nil {
				return err
			}
			added, err := service.NewCatalogService(db).LoadTags(cmd.Context(), tags)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "loaded %d of %d tags\n", added, len(tags))
			return nil
		},
	}

	rootCmd.AddCommand(migrateCmd, loadIngredientsCmd, loadTagsCmd)
	return rootCmd
}
