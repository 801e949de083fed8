package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/ensembleops/ensemble/internal/db/models"
	"github.com/ensembleops/ensemble/internal/repository"
	"github.com/ensembleops/ensemble/internal/testutil"
)

func setupTestDB(t *testing.T) *bun.DB {
	t.Helper()
	return testutil.NewDB(t)
}

func createTeam(t *testing.T, db *bun.DB, name, userGroup, adminGroup string) *models.Team {
	t.Helper()
	team := &models.Team{TeamName: name, UserGroup: userGroup, AdminGroup: adminGroup, CreatedBy: "test@example.com"}
	require.NoError(t, repository.NewBunTeamRepository(db).Create(context.Background(), team))
	return team
}

func createApplication(t *testing.T, db *bun.DB, teamID, name string) *models.Application {
	t.Helper()
	app := &models.Application{TeamID: teamID, Name: name, Tier: 2}
	require.NoError(t, repository.NewBunApplicationRepository(db).Create(context.Background(), app))
	return app
}
