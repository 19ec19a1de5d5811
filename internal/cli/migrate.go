package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"progressive-quiz/internal/config"
	"progressive-quiz/internal/domain"
	"progressive-quiz/internal/infra/postgres"
	"progressive-quiz/internal/logger"
	"progressive-quiz/internal/questionbank"
)

// NewMigrateCmd applies database migrations and optionally seeds the question bank.
func NewMigrateCmd(configPath *string) *cobra.Command {
	var seed bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			return runMigrationsWithConfig(cmd.Context(), cfg, seed)
		},
	}
	cmd.Flags().BoolVar(&seed, "seed", false, "load the question bank into the questions table")
	return cmd
}

func runMigrationsWithConfig(ctx context.Context, cfg config.Config, seed bool) error {
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}
	log, err := logger.New(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	db := postgres.OpenBun(cfg.Postgres.URL)
	defer db.Close()

	group, err := postgres.Migrate(ctx, db)
	if err != nil {
		return err
	}
	if group.IsZero() {
		log.Info("no new migrations")
	} else {
		log.Info("migrations applied", zap.String("group", group.String()))
	}

	if !seed {
		return nil
	}
	bank, err := seedBank(cfg)
	if err != nil {
		return err
	}
	if err := postgres.SeedQuestions(ctx, db, bank); err != nil {
		return err
	}
	log.Info("question bank seeded", zap.Int("levels", len(bank)))
	return nil
}

func seedBank(cfg config.Config) (domain.Bank, error) {
	if cfg.Questions.Path == "" {
		return questionbank.Default(), nil
	}
	return questionbank.LoadFile(cfg.Questions.Path)
}
