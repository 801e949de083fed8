// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"

	"github.com/ensembleops/ensemble/internal/auth"
	"github.com/ensembleops/ensemble/internal/db/bunx"
	"github.com/ensembleops/ensemble/internal/migrations"
)

// NewDB opens an in-memory SQLite database with every migration applied.
// It is closed when the test ends.
func NewDB(t testing.TB) *bun.DB {
	t.Helper()

	db, err := bunx.NewDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = bunx.Close(db) })

	ctx := context.Background()
	migrator := migrate.NewMigrator(db, migrations.Migrations)
	require.NoError(t, migrator.Init(ctx))
	_, err = migrator.Migrate(ctx)
	require.NoError(t, err)

	return db
}

// Session returns a valid one-hour session for email holding perms.
func Session(t testing.TB, email string, perms ...auth.Permission) *auth.Session {
	t.Helper()
	sess, err := auth.NewSession(auth.User{FirstName: "Test", LastName: "User", Email: email}, perms, time.Now().Add(time.Hour))
	require.NoError(t, err)
	return sess
}

// Admin is an ADMIN permission on teamID.
func Admin(teamID string) auth.Permission {
	return auth.Permission{TeamID: teamID, TeamName: teamID, Role: auth.RoleAdmin}
}

// Member is a MEMBER permission on teamID.
func Member(teamID string) auth.Permission {
	return auth.Permission{TeamID: teamID, TeamName: teamID, Role: auth.RoleMember}
}
