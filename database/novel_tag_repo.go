package database

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"
	"github.com/leozhansino-design/butternovel-mobile-sub002/errs"
	"github.com/leozhansino-design/butternovel-mobile-sub002/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type NovelTagRepo struct {
	db *gorm.DB
}

func NewNovelTagRepo(db *gorm.DB) *NovelTagRepo {
	return &NovelTagRepo{db}
}

// GetDB returns the underlying database connection for debugging purposes
func (r *NovelTagRepo) GetDB() *gorm.DB {
	return r.db
}

// ReplaceTags makes slugs the complete tag set of a novel. Only the
// difference between the current and the requested set is written: new
// associations increment their tag, dropped ones decrement it, and tags left
// with no novels are deleted. Everything runs in one transaction.
func (r *NovelTagRepo) ReplaceTags(ctx context.Context, novelID uuid.UUID, slugs []string) ([]models.Tag, error) {
	var result []models.Tag

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var novel models.Novel
		if err := tx.Select("id").First(&novel, "id = ?", novelID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NewNotFound("novel")
			}
			return err
		}

		tagRepo := NewTagRepo(tx)
		current, err := tagRepo.FindByNovel(ctx, novelID)
		if err != nil {
			return err
		}

		added, removed := diffTags(current, slugs)

		for _, slug := range added {
			tag, created, err := tagRepo.UpsertTag(ctx, slug)
			if err != nil {
				return err
			}

			link := tx.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&models.NovelTag{NovelID: novelID, TagID: tag.ID})
			if link.Error != nil {
				return link.Error
			}
			if link.RowsAffected == 0 || created {
				continue
			}
			if err := tagRepo.IncrementTagCount(ctx, tag.ID, 1); err != nil {
				return err
			}
		}

		for _, tag := range removed {
			unlink := tx.Where("novel_id = ? AND tag_id = ?", novelID, tag.ID).Delete(&models.NovelTag{})
			if unlink.Error != nil {
				return unlink.Error
			}
			if unlink.RowsAffected == 0 {
				continue
			}
			if err := tagRepo.IncrementTagCount(ctx, tag.ID, -1); err != nil {
				return err
			}
			if _, err := tagRepo.DeleteIfUnused(ctx, tag.ID); err != nil {
				return err
			}
		}

		result, err = tagRepo.FindByNovel(ctx, novelID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// diffTags returns the slugs to attach and the tags to detach, both sorted so
// concurrent writers touch tag rows in the same order.
func diffTags(current []models.Tag, desired []string) (added []string, removed []models.Tag) {
	want := make(map[string]bool, len(desired))
	for _, slug := range desired {
		want[slug] = true
	}

	have := make(map[string]bool, len(current))
	for _, tag := range current {
		have[tag.Slug] = true
		if !want[tag.Slug] {
			removed = append(removed, tag)
		}
	}

	for slug := range want {
		if !have[slug] {
			added = append(added, slug)
		}
	}

	sort.Strings(added)
	sort.Slice(removed, func(i, j int) bool { return removed[i].Slug < removed[j].Slug })
	return added, removed
}
