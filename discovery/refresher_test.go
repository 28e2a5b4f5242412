package discovery_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/leozhansino-design/butternovel-mobile-sub002/database"
	"github.com/leozhansino-design/butternovel-mobile-sub002/database/databasetest"
	"github.com/leozhansino-design/butternovel-mobile-sub002/discovery"
	"github.com/leozhansino-design/butternovel-mobile-sub002/errs"
	"github.com/leozhansino-design/butternovel-mobile-sub002/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefreshAll(t *testing.T) {
	db := databasetest.Open(t)
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	repo := database.NewNovelRepo(db, nil)

	var ids []uuid.UUID
	for i := 0; i < 7; i++ {
		n := databasetest.AddNovel(t, db, models.Novel{
			Title:         "n",
			IsPublished:   true,
			ViewCount:     int64(100 * (i + 1)),
			BookmarkCount: int64(i),
			CreatedAt:     now,
			UpdatedAt:     now,
		})
		ids = append(ids, n.ID)
	}
	// already current, must not be rewritten
	require.NoError(t, repo.UpdateHotScore(context.Background(), ids[0], 10))

	stats, err := discovery.NewRefresher(repo, 3, 2, zerolog.Nop()).RefreshAll(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 7, stats.Scanned)
	assert.Equal(t, 6, stats.Updated)

	for i, id := range ids {
		n, err := repo.FindByID(context.Background(), id)
		require.NoError(t, err)
		assert.InDelta(t, float64(10*(i+1)+5*i), n.HotScore, 1e-6)
	}
}

func TestRefreshNovel(t *testing.T) {
	db := databasetest.Open(t)
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	repo := database.NewNovelRepo(db, nil)
	refresher := discovery.NewRefresher(repo, 0, 0, zerolog.Nop())

	n := databasetest.AddNovel(t, db, models.Novel{
		Title:         "n",
		TotalChapters: 12,
		CreatedAt:     now.AddDate(0, 0, -2),
		UpdatedAt:     now,
	})

	score, err := refresher.RefreshNovel(context.Background(), n.ID, now)
	require.NoError(t, err)
	assert.InDelta(t, 23, score, 1e-9)

	stored, err := repo.FindByID(context.Background(), n.ID)
	require.NoError(t, err)
	assert.InDelta(t, 23, stored.HotScore, 1e-9)
	assert.True(t, stored.UpdatedAt.Equal(now))

	_, err = refresher.RefreshNovel(context.Background(), uuid.New(), now)
	assert.True(t, errs.IsNotFound(err))
}
