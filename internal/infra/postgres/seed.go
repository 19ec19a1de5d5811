package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"progressive-quiz/internal/domain"
	pgmigrations "progressive-quiz/internal/infra/postgres/migrations"
)

// OpenBun opens a bun handle over the pgdriver connector.
func OpenBun(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

// Migrate applies every pending migration.
func Migrate(ctx context.Context, db *bun.DB) (*migrate.MigrationGroup, error) {
	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		return nil, fmt.Errorf("init migrations: %w", err)
	}
	group, err := migrator.Migrate(ctx)
	if err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return group, nil
}

// SeedQuestions upserts every question of bank in one transaction.
func SeedQuestions(ctx context.Context, db *bun.DB, bank domain.Bank) error {
	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, level := range domain.Levels() {
			for position, q := range bank[level] {
				data, err := json.Marshal(q)
				if err != nil {
					return fmt.Errorf("marshal question %s: %w", q.ID, err)
				}
				if _, err := tx.ExecContext(ctx,
					`INSERT INTO questions (level, position, data) VALUES (?, ?, ?::jsonb)
					 ON CONFLICT (level, position) DO UPDATE SET data = EXCLUDED.data`,
					level.String(), position, string(data)); err != nil {
					return fmt.Errorf("insert question %s: %w", q.ID, err)
				}
			}
		}
		return nil
	})
}
