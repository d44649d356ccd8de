// Command migrate manages the record store schema with the SQL files
// embedded in internal/store/migrations.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JaimeStill/inquest/internal/config"
	"github.com/JaimeStill/inquest/internal/store/migrations"
	"github.com/JaimeStill/inquest/pkg/database"
)

type step func(m *migrate.Migrate, args []string) (string, error)

func main() {
	var file, dsn string

	open := func() (*migrate.Migrate, error) {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load .env: %w", err)
		}
		cfg, err := config.LoadFile(file)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		if dsn != "" {
			cfg.Database.DSN = dsn
		}
		return database.NewMigrator(&cfg.Database, migrations.FS)
	}

	run := func(use, short string, nargs int, fn step) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.ExactArgs(nargs),
			RunE: func(cmd *cobra.Command, args []string) error {
				m, err := open()
				if err != nil {
					return err
				}
				defer m.Close()

				msg, err := fn(m, args)
				if errors.Is(err, migrate.ErrNoChange) {
					msg, err = "schema already current", nil
				}
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), msg)
				return nil
			},
		}
	}

	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Apply or inspect record store migrations",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&file, "config", config.BaseConfigFile, "base configuration file")
	root.PersistentFlags().StringVar(&dsn, "dsn", "", "connection string, overriding configuration")

	root.AddCommand(
		run("up", "apply every pending migration", 0, func(m *migrate.Migrate, _ []string) (string, error) {
			return "migrations applied", m.Up()
		}),
		run("down", "revert every migration", 0, func(m *migrate.Migrate, _ []string) (string, error) {
			return "migrations reverted", m.Down()
		}),
		run("steps N", "apply N migrations, or revert when N is negative", 1, func(m *migrate.Migrate, args []string) (string, error) {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return "", fmt.Errorf("steps: %w", err)
			}
			return fmt.Sprintf("moved %d steps", n), m.Steps(n)
		}),
		run("force V", "record version V without running migrations", 1, func(m *migrate.Migrate, args []string) (string, error) {
			v, err := strconv.Atoi(args[0])
			if err != nil {
				return "", fmt.Errorf("force: %w", err)
			}
			return fmt.Sprintf("forced to version %d", v), m.Force(v)
		}),
		run("version", "print the applied version", 0, func(m *migrate.Migrate, _ []string) (string, error) {
			v, dirty, err := m.Version()
			if errors.Is(err, migrate.ErrNilVersion) {
				return "no migrations applied", nil
			}
			return fmt.Sprintf("version %d (dirty: %t)", v, dirty), err
		}),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
