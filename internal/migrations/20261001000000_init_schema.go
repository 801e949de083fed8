package migrations

import (
	"context"
	"fmt"

	"github.com/ensembleops/ensemble/internal/db/models"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(up_20261001000000, down_20261001000000)
}

const teamFK = `("team_id") REFERENCES "teams" ("id") ON DELETE CASCADE`

type tableSpec struct {
	name  string
	model any
	fks   []string
}

func initTables() []tableSpec {
	return []tableSpec{
		{name: "users", model: (*models.User)(nil)},
		{name: "teams", model: (*models.Team)(nil)},
		{name: "applications", model: (*models.Application)(nil), fks: []string{teamFK}},
		{name: "turnover_finalizations", model: (*models.TurnoverFinalization)(nil), fks: []string{teamFK}},
		{
			name:  "turnover_entries",
			model: (*models.TurnoverEntry)(nil),
			fks: []string{
				teamFK,
				`("application_id") REFERENCES "applications" ("id") ON DELETE SET NULL`,
				`("finalization_id") REFERENCES "turnover_finalizations" ("id") ON DELETE SET NULL`,
			},
		},
		{
			name:  "scorecard_entries",
			model: (*models.ScorecardEntry)(nil),
			fks: []string{
				teamFK,
				`("application_id") REFERENCES "applications" ("id") ON DELETE CASCADE`,
			},
		},
		{name: "links", model: (*models.Link)(nil), fks: []string{teamFK}},
	}
}

var initIndexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_teams_user_group ON teams(user_group)`,
	`CREATE INDEX IF NOT EXISTS idx_teams_admin_group ON teams(admin_group)`,
	`CREATE INDEX IF NOT EXISTS idx_turnover_entries_team ON turnover_entries(team_id, finalization_id)`,
	`CREATE INDEX IF NOT EXISTS idx_turnover_finalizations_team ON turnover_finalizations(team_id, finalized_at)`,
	`CREATE INDEX IF NOT EXISTS idx_scorecard_entries_team ON scorecard_entries(team_id, year)`,
	`CREATE INDEX IF NOT EXISTS idx_links_team ON links(team_id)`,
}

// up_20261001000000 creates the portal schema
func up_20261001000000(ctx context.Context, db *bun.DB) error {
	for _, tbl := range initTables() {
		fmt.Printf(" [up] creating %s table...", tbl.name)
		q := db.NewCreateTable().
			Model(tbl.model).
			IfNotExists()
		for _, fk := range tbl.fks {
			q = q.ForeignKey(fk)
		}
		if _, err := q.Exec(ctx); err != nil {
			return fmt.Errorf("failed to create %s table: %w", tbl.name, err)
		}
		fmt.Println(" OK")
	}

	fmt.Print(" [up] creating indexes...")
	for _, stmt := range initIndexes {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	fmt.Println(" OK")

	return nil
}

// down_20261001000000 drops the portal schema in reverse order
func down_20261001000000(ctx context.Context, db *bun.DB) error {
	tables := initTables()
	for i := len(tables) - 1; i >= 0; i-- {
		name := tables[i].name
		fmt.Printf(" [down] dropping %s table...", name)
		stmt := fmt.Sprintf("DROP TABLE IF EXISTS %s", name)
		if IsPostgreSQL(db) {
			stmt += " CASCADE"
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to drop %s table: %w", name, err)
		}
		fmt.Println(" OK")
	}
	return nil
}
