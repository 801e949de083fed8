package migrations

import (
	"context"
	"fmt"

	"github.com/ensembleops/ensemble/internal/db/models"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(up_20261002000000, down_20261002000000)
}

// up_20261002000000 moves session payloads server-side
func up_20261002000000(ctx context.Context, db *bun.DB) error {
	fmt.Print(" [up] creating sessions table...")
	_, err := db.NewCreateTable().
		Model((*models.Session)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create sessions table: %w", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at)`); err != nil {
		return fmt.Errorf("failed to create sessions index: %w", err)
	}
	fmt.Println(" OK")
	return nil
}

func down_20261002000000(ctx context.Context, db *bun.DB) error {
	fmt.Print(" [down] dropping sessions table...")
	if _, err := db.ExecContext(ctx, "DROP TABLE IF EXISTS sessions"); err != nil {
		return fmt.Errorf("failed to drop sessions table: %w", err)
	}
	fmt.Println(" OK")
	return nil
}
