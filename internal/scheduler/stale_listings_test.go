package scheduler

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ewen-lbh/loca7/internal/config"
	"github.com/ewen-lbh/loca7/internal/database"
	"github.com/ewen-lbh/loca7/internal/database/appartments"
	"github.com/ewen-lbh/loca7/internal/entities"
)

func setupSweepTest(t *testing.T) (*appartments.Repository, func()) {
	t.Helper()

	dbPath := "./test_scheduler_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return appartments.NewRepository(db.DB), cleanup
}

func seedListing(t *testing.T, repo *appartments.Repository, number int, updatedAt time.Time) *entities.Appartment {
	t.Helper()
	listing := &entities.Appartment{
		Number:    number,
		OwnerID:   "owner-1",
		Rent:      500,
		Surface:   30,
		Kind:      entities.KindStudio,
		Approved:  true,
		CreatedAt: updatedAt,
		UpdatedAt: updatedAt,
	}
	require.NoError(t, repo.Create(listing))
	return listing
}

func TestSweep(t *testing.T) {
	t.Run("archives only listings past the cutoff", func(t *testing.T) {
		repo, cleanup := setupSweepTest(t)
		defer cleanup()

		old := seedListing(t, repo, 1, time.Now().Add(-120*24*time.Hour))
		fresh := seedListing(t, repo, 2, time.Now().Add(-time.Hour))

		s := NewStaleListingsScheduler(repo, nil, config.StaleListings{
			Enabled: true,
			MaxAge:  90 * 24 * time.Hour,
		}, "http://loca7.test")

		archived, err := s.Sweep()
		require.NoError(t, err)
		assert.Equal(t, 1, archived)

		refreshed, err := repo.GetByID(old.ID)
		require.NoError(t, err)
		assert.True(t, refreshed.Archived)

		refreshed, err = repo.GetByID(fresh.ID)
		require.NoError(t, err)
		assert.False(t, refreshed.Archived)
	})

	t.Run("already archived listings are left alone", func(t *testing.T) {
		repo, cleanup := setupSweepTest(t)
		defer cleanup()

		old := seedListing(t, repo, 1, time.Now().Add(-120*24*time.Hour))
		require.NoError(t, repo.SetArchived(old.ID, true))

		s := NewStaleListingsScheduler(repo, nil, config.StaleListings{
			Enabled: true,
			MaxAge:  90 * 24 * time.Hour,
		}, "http://loca7.test")

		archived, err := s.Sweep()
		require.NoError(t, err)
		assert.Equal(t, 0, archived)
	})
}

func TestStaleListingsScheduler_Start(t *testing.T) {
	t.Run("does not start when disabled", func(t *testing.T) {
		repo, cleanup := setupSweepTest(t)
		defer cleanup()

		s := NewStaleListingsScheduler(repo, nil, config.StaleListings{Enabled: false}, "")
		require.NoError(t, s.Start(context.Background()))
		assert.False(t, s.IsRunning())
	})

	t.Run("rejects a bad schedule", func(t *testing.T) {
		repo, cleanup := setupSweepTest(t)
		defer cleanup()

		s := NewStaleListingsScheduler(repo, nil, config.StaleListings{
			Enabled:  true,
			Schedule: "not a schedule",
			MaxAge:   time.Hour,
		}, "")
		assert.Error(t, s.Start(context.Background()))
	})

	t.Run("starts and stops cleanly", func(t *testing.T) {
		repo, cleanup := setupSweepTest(t)
		defer cleanup()

		s := NewStaleListingsScheduler(repo, nil, config.StaleListings{
			Enabled:  true,
			Schedule: "0 8 * * *",
			MaxAge:   time.Hour,
		}, "")
		require.NoError(t, s.Start(context.Background()))
		assert.True(t, s.IsRunning())
		assert.NotNil(t, s.NextRunTime())

		s.Stop()
		assert.False(t, s.IsRunning())
		assert.Nil(t, s.NextRunTime())
	})
}
