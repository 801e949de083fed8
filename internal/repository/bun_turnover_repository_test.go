package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ensembleops/ensemble/internal/db/models"
	"github.com/ensembleops/ensemble/internal/repository"
)

func newEntry(teamID, title string) *models.TurnoverEntry {
	return &models.TurnoverEntry{
		TeamID:    teamID,
		EntryType: models.EntryTypeINC,
		Title:     title,
		CreatedBy: "oncall@example.com",
	}
}

func TestBunTurnoverRepository_Entries(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewBunTurnoverRepository(db)
	ctx := context.Background()

	team := createTeam(t, db, "SRE", "sre-users", "sre-admins")
	app := createApplication(t, db, team.ID, "ledger")

	entry := newEntry(team.ID, "disk pressure on ledger-db")
	entry.ApplicationID = &app.ID
	entry.Ticket = "INC0001"
	require.NoError(t, repo.CreateEntry(ctx, entry))
	assert.NotEmpty(t, entry.ID)

	got, err := repo.GetEntry(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EntryTypeINC, got.EntryType)
	require.NotNil(t, got.ApplicationID)
	assert.Equal(t, app.ID, *got.ApplicationID)
	assert.False(t, got.Finalized())

	got.Important = true
	got.Title = "disk pressure resolved"
	require.NoError(t, repo.UpdateEntry(ctx, got))

	got, err = repo.GetEntry(ctx, entry.ID)
	require.NoError(t, err)
	assert.True(t, got.Important)
	assert.Equal(t, "disk pressure resolved", got.Title)

	_, err = repo.GetEntry(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, repo.DeleteEntry(ctx, entry.ID))
	assert.ErrorIs(t, repo.DeleteEntry(ctx, entry.ID), repository.ErrNotFound)
}

func TestBunTurnoverRepository_FinalizeOpenEntries(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewBunTurnoverRepository(db)
	ctx := context.Background()

	team := createTeam(t, db, "NOC", "noc-users", "noc-admins")
	other := createTeam(t, db, "DBA", "dba-users", "dba-admins")

	for _, title := range []string{"one", "two", "three"} {
		require.NoError(t, repo.CreateEntry(ctx, newEntry(team.ID, title)))
	}
	require.NoError(t, repo.CreateEntry(ctx, newEntry(other.ID, "elsewhere")))

	var seenLast *models.TurnoverFinalization
	seenOpen := -1
	fin := &models.TurnoverFinalization{
		TeamID:      team.ID,
		FinalizedBy: "lead@example.com",
		FinalizedAt: time.Now().UTC(),
	}
	err := repo.FinalizeOpenEntries(ctx, fin, func(last *models.TurnoverFinalization, open int) error {
		seenLast, seenOpen = last, open
		return nil
	})
	require.NoError(t, err)
	assert.Nil(t, seenLast)
	assert.Equal(t, 3, seenOpen)
	assert.Equal(t, 3, fin.EntryCount)

	open, err := repo.ListEntries(ctx, team.ID, false)
	require.NoError(t, err)
	assert.Empty(t, open)

	all, err := repo.ListEntries(ctx, team.ID, true)
	require.NoError(t, err)
	require.Len(t, all, 3)
	for _, e := range all {
		assert.True(t, e.Finalized())
		assert.Equal(t, fin.ID, *e.FinalizationID)
	}

	t.Run("other team untouched", func(t *testing.T) {
		entries, err := repo.ListEntries(ctx, other.ID, false)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("finalized entries are frozen", func(t *testing.T) {
		frozen := all[0]
		frozen.Title = "rewritten"
		assert.ErrorIs(t, repo.UpdateEntry(ctx, &frozen), repository.ErrNotFound)
		assert.ErrorIs(t, repo.DeleteEntry(ctx, frozen.ID), repository.ErrNotFound)
	})

	t.Run("check sees previous finalization and aborts", func(t *testing.T) {
		require.NoError(t, repo.CreateEntry(ctx, newEntry(team.ID, "four")))

		errStop := errors.New("stop")
		next := &models.TurnoverFinalization{TeamID: team.ID, FinalizedBy: "lead@example.com", FinalizedAt: time.Now().UTC()}
		err := repo.FinalizeOpenEntries(ctx, next, func(last *models.TurnoverFinalization, open int) error {
			require.NotNil(t, last)
			assert.Equal(t, fin.ID, last.ID)
			assert.Equal(t, 1, open)
			return errStop
		})
		assert.ErrorIs(t, err, errStop)

		entries, err := repo.ListEntries(ctx, team.ID, false)
		require.NoError(t, err)
		assert.Len(t, entries, 1, "aborted finalize must not freeze entries")

		history, err := repo.ListFinalizations(ctx, team.ID, 0)
		require.NoError(t, err)
		assert.Len(t, history, 1)
	})
}
