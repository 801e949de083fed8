package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ensembleops/ensemble/internal/db/models"
	"github.com/ensembleops/ensemble/internal/repository"
)

func TestBunTeamRepository_CRUD(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewBunTeamRepository(db)
	ctx := context.Background()

	team := createTeam(t, db, "Payments", "pay-users", "pay-admins")
	assert.NotEmpty(t, team.ID)

	t.Run("get", func(t *testing.T) {
		got, err := repo.GetByID(ctx, team.ID)
		require.NoError(t, err)
		assert.Equal(t, "Payments", got.TeamName)
		assert.Equal(t, "pay-users", got.UserGroup)
		assert.Equal(t, "pay-admins", got.AdminGroup)
		assert.NotZero(t, got.CreatedAt)
	})

	t.Run("duplicate name conflicts", func(t *testing.T) {
		err := repo.Create(ctx, &models.Team{TeamName: "Payments", UserGroup: "x", AdminGroup: "y"})
		require.Error(t, err)
		assert.ErrorIs(t, err, repository.ErrConflict)
	})

	t.Run("update", func(t *testing.T) {
		team.AdminGroup = "pay-owners"
		require.NoError(t, repo.Update(ctx, team))

		got, err := repo.GetByID(ctx, team.ID)
		require.NoError(t, err)
		assert.Equal(t, "pay-owners", got.AdminGroup)
	})

	t.Run("update missing", func(t *testing.T) {
		err := repo.Update(ctx, &models.Team{ID: "missing", TeamName: "x", UserGroup: "a", AdminGroup: "b"})
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("list ordered by name", func(t *testing.T) {
		createTeam(t, db, "Accounts", "acc-users", "acc-admins")
		teams, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, teams, 2)
		assert.Equal(t, "Accounts", teams[0].TeamName)
		assert.Equal(t, "Payments", teams[1].TeamName)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, team.ID))
		_, err := repo.GetByID(ctx, team.ID)
		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.ErrorIs(t, repo.Delete(ctx, team.ID), repository.ErrNotFound)
	})
}

func TestBunTeamRepository_FindByGroups(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewBunTeamRepository(db)
	ctx := context.Background()

	alpha := createTeam(t, db, "Alpha", "alpha-users", "alpha-admins")
	beta := createTeam(t, db, "Beta", "shared", "beta-admins")
	gamma := createTeam(t, db, "Gamma", "gamma-users", "shared")
	createTeam(t, db, "Delta", "delta-users", "delta-admins")

	t.Run("empty groups", func(t *testing.T) {
		teams, err := repo.FindByGroups(ctx, nil)
		require.NoError(t, err)
		assert.NotNil(t, teams)
		assert.Empty(t, teams)
	})

	t.Run("unknown groups", func(t *testing.T) {
		teams, err := repo.FindByGroups(ctx, []string{"nobody"})
		require.NoError(t, err)
		assert.Empty(t, teams)
	})

	t.Run("matches either column", func(t *testing.T) {
		teams, err := repo.FindByGroups(ctx, []string{"alpha-admins", "shared"})
		require.NoError(t, err)

		ids := make([]string, 0, len(teams))
		for _, tm := range teams {
			ids = append(ids, tm.ID)
		}
		assert.ElementsMatch(t, []string{alpha.ID, beta.ID, gamma.ID}, ids)
	})
}

func TestBunTeamRepository_ListByIDs(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewBunTeamRepository(db)
	ctx := context.Background()

	zeta := createTeam(t, db, "Zeta", "z-users", "z-admins")
	alpha := createTeam(t, db, "Alpha", "a-users", "a-admins")
	createTeam(t, db, "Unlisted", "u-users", "u-admins")

	t.Run("empty ids", func(t *testing.T) {
		teams, err := repo.ListByIDs(ctx, nil)
		require.NoError(t, err)
		assert.NotNil(t, teams)
		assert.Empty(t, teams)
	})

	t.Run("only requested, ordered by name", func(t *testing.T) {
		teams, err := repo.ListByIDs(ctx, []string{zeta.ID, alpha.ID, "missing-id"})
		require.NoError(t, err)
		require.Len(t, teams, 2)
		assert.Equal(t, "Alpha", teams[0].TeamName)
		assert.Equal(t, "Zeta", teams[1].TeamName)
	})
}

func TestBunTeamRepository_DeleteCascades(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	team := createTeam(t, db, "Ops", "ops-users", "ops-admins")
	app := createApplication(t, db, team.ID, "billing")

	links := repository.NewBunLinkRepository(db)
	require.NoError(t, links.Create(ctx, &models.Link{TeamID: team.ID, Title: "Runbook", URL: "https://runbooks.example.com"}))

	require.NoError(t, repository.NewBunTeamRepository(db).Delete(ctx, team.ID))

	_, err := repository.NewBunApplicationRepository(db).GetByID(ctx, app.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	remaining, err := links.Search(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, remaining)
}
