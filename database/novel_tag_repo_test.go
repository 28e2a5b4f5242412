package database_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/leozhansino-design/butternovel-mobile-sub002/database"
	"github.com/leozhansino-design/butternovel-mobile-sub002/database/databasetest"
	"github.com/leozhansino-design/butternovel-mobile-sub002/errs"
	"github.com/leozhansino-design/butternovel-mobile-sub002/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func tagCounts(t *testing.T, db *gorm.DB) map[string]int64 {
	t.Helper()
	var tags []models.Tag
	require.NoError(t, db.Find(&tags).Error)

	counts := make(map[string]int64, len(tags))
	for _, tag := range tags {
		counts[tag.Slug] = tag.Count
	}
	return counts
}

func TestReplaceTagsAppliesDelta(t *testing.T) {
	db := databasetest.Open(t)
	ctx := context.Background()
	repo := database.NewNovelTagRepo(db)

	a := databasetest.AddNovel(t, db, databasetest.Visible("A"), "romance", "ceo")
	databasetest.AddNovel(t, db, databasetest.Visible("B"), "romance", "ghost")
	assert.Equal(t, map[string]int64{"romance": 2, "ceo": 1, "ghost": 1}, tagCounts(t, db))

	got, err := repo.ReplaceTags(ctx, a.ID, []string{"romance", "ghost", "office"})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "ghost", got[0].Slug)
	assert.Equal(t, "office", got[1].Slug)
	assert.Equal(t, "romance", got[2].Slug)

	// ceo lost its only novel and is gone
	assert.Equal(t, map[string]int64{"romance": 2, "ghost": 2, "office": 1}, tagCounts(t, db))

	var links int64
	require.NoError(t, db.Model(&models.NovelTag{}).Where("novel_id = ?", a.ID).Count(&links).Error)
	assert.EqualValues(t, 3, links)
}

func TestReplaceTagsConcurrentWritersKeepCount(t *testing.T) {
	db := databasetest.Open(t)
	ctx := context.Background()
	repo := database.NewNovelTagRepo(db)

	const writers = 16
	novels := make([]models.Novel, writers)
	for i := range novels {
		novels[i] = databasetest.AddNovel(t, db, databasetest.Visible(fmt.Sprintf("novel-%02d", i)))
	}

	var wg sync.WaitGroup
	failures := make(chan error, writers)
	for _, n := range novels {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			if _, err := repo.ReplaceTags(ctx, id, []string{"shared"}); err != nil {
				failures <- err
			}
		}(n.ID)
	}
	wg.Wait()
	close(failures)
	for err := range failures {
		require.NoError(t, err)
	}

	var shared models.Tag
	require.NoError(t, db.Where("slug = ?", "shared").First(&shared).Error)
	assert.EqualValues(t, writers, shared.Count)

	var links int64
	require.NoError(t, db.Model(&models.NovelTag{}).Where("tag_id = ?", shared.ID).Count(&links).Error)
	assert.Equal(t, shared.Count, links)
}

func TestReplaceTagsIsIdempotent(t *testing.T) {
	db := databasetest.Open(t)
	ctx := context.Background()
	repo := database.NewNovelTagRepo(db)

	a := databasetest.AddNovel(t, db, databasetest.Visible("A"), "romance")
	for i := 0; i < 3; i++ {
		_, err := repo.ReplaceTags(ctx, a.ID, []string{"romance"})
		require.NoError(t, err)
	}
	assert.Equal(t, map[string]int64{"romance": 1}, tagCounts(t, db))
}

func TestReplaceTagsClearAll(t *testing.T) {
	db := databasetest.Open(t)
	a := databasetest.AddNovel(t, db, databasetest.Visible("A"), "romance", "ceo")

	got, err := database.NewNovelTagRepo(db).ReplaceTags(context.Background(), a.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, tagCounts(t, db))
}

func TestReplaceTagsUnknownNovel(t *testing.T) {
	db := databasetest.Open(t)

	_, err := database.NewNovelTagRepo(db).ReplaceTags(context.Background(), uuid.New(), []string{"romance"})
	assert.True(t, errs.IsNotFound(err))
	assert.Empty(t, tagCounts(t, db))
}
