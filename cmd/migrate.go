package main

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/sbilibin2017/gw-auth-manager/internal/config"
	"github.com/sbilibin2017/gw-auth-manager/internal/logger"
	"github.com/sbilibin2017/gw-auth-manager/internal/repositories"
	"github.com/sbilibin2017/gw-auth-manager/internal/services"
)

type loadFunc func() (*config.Config, error)

func newMigrateCmd(load loadFunc) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down]",
		Short:     "Apply or roll back database migrations",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{repositories.MigrateUp, repositories.MigrateDown},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			defer logger.Sync()

			return repositories.Migrate(cfg.PostgresDSN(), args[0])
		},
	}
}

func newUsersCmd(load loadFunc) *cobra.Command {
	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "Manage configured users",
	}

	usersCmd.AddCommand(&cobra.Command{
		Use:   "seed",
		Short: "Create the users listed in SIMPLE_AUTH_MANAGER_USERS",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			defer logger.Sync()

			db, err := connectPostgres(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			generated, err := seedUsers(cmd.Context(), cfg, db)
			if err != nil {
				return err
			}
			for name, password := range generated {
				fmt.Fprintf(cmd.OutOrStdout(), "Password for user '%s': %s\n", name, password)
			}
			return nil
		},
	})

	return usersCmd
}

func connectPostgres(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "pgx", cfg.PostgresDSN())
	if err != nil {
		return nil, fmt.Errorf("PostgreSQL connection error: %w", err)
	}
	db.SetMaxOpenConns(cfg.PostgresMaxOpenConns)
	db.SetMaxIdleConns(cfg.PostgresMaxIdleConns)
	return db, nil
}

func seedUsers(ctx context.Context, cfg *config.Config, db *sqlx.DB) (map[string]string, error) {
	seeder := services.NewUserSeeder(
		repositories.NewUserReadRepository(db),
		repositories.NewUserWriteRepository(db),
		repositories.NewPasswordFileRepository(cfg.PasswordsFile),
	)
	generated, err := seeder.Seed(ctx, cfg.UserSpecs())
	if err != nil {
		return nil, fmt.Errorf("failed to seed users: %w", err)
	}
	return generated, nil
}
