// Package databasetest opens throwaway SQLite databases with the discovery
// schema for package tests.
package databasetest

import (
	"context"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/leozhansino-design/butternovel-mobile-sub002/database"
	"github.com/leozhansino-design/butternovel-mobile-sub002/models"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open returns a migrated in-memory database private to the calling test.
// The pool is limited to one connection so every statement sees the same
// in-memory database.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// AddNovel inserts novel and attaches the given tag slugs through the normal
// write path. It returns the stored novel with its tags.
func AddNovel(t testing.TB, db *gorm.DB, novel models.Novel, slugs ...string) models.Novel {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, database.NewNovelRepo(db, nil).Add(ctx, &novel))
	if len(slugs) > 0 {
		attached, err := database.NewNovelTagRepo(db).ReplaceTags(ctx, novel.ID, slugs)
		require.NoError(t, err)
		novel.Tags = attached
	}
	return novel
}

// AddNovels bulk inserts novels that all carry slugs, keeping the tag counts
// in step. It is for seeding result sets too large for AddNovel.
func AddNovels(t testing.TB, db *gorm.DB, novels []models.Novel, slugs ...string) []models.Novel {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, db.WithContext(ctx).CreateInBatches(&novels, 100).Error)

	tags := database.NewTagRepo(db)
	links := make([]models.NovelTag, 0, len(novels)*len(slugs))
	for _, slug := range slugs {
		tag, created, err := tags.UpsertTag(ctx, slug)
		require.NoError(t, err)

		delta := len(novels)
		if created {
			delta--
		}
		if delta != 0 {
			require.NoError(t, tags.IncrementTagCount(ctx, tag.ID, delta))
		}
		for _, n := range novels {
			links = append(links, models.NovelTag{NovelID: n.ID, TagID: tag.ID})
		}
	}
	if len(links) > 0 {
		require.NoError(t, db.WithContext(ctx).CreateInBatches(&links, 200).Error)
	}
	return novels
}

// Visible returns a published, non-banned novel with the given title.
func Visible(title string) models.Novel {
	return models.Novel{Title: title, IsPublished: true}
}
