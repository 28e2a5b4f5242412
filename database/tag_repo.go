package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/leozhansino-design/butternovel-mobile-sub002/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TagRepo struct {
	db *gorm.DB
}

func NewTagRepo(db *gorm.DB) *TagRepo {
	return &TagRepo{db}
}

// GetDB returns the underlying database connection for debugging purposes
func (r *TagRepo) GetDB() *gorm.DB {
	return r.db
}

// FindTagsBySlugs returns the tags whose slug is in slugs. Unknown slugs are
// simply absent from the result.
func (r *TagRepo) FindTagsBySlugs(ctx context.Context, slugs []string) ([]models.Tag, error) {
	if len(slugs) == 0 {
		return nil, nil
	}

	var tags []models.Tag
	err := r.db.WithContext(ctx).Where("slug IN ?", slugs).Find(&tags).Error
	return tags, err
}

// FindByNovel returns the tags attached to a novel ordered by name.
func (r *TagRepo) FindByNovel(ctx context.Context, novelID uuid.UUID) ([]models.Tag, error) {
	var tags []models.Tag
	err := r.db.WithContext(ctx).
		Joins("JOIN novel_tags ON novel_tags.tag_id = tags.id").
		Where("novel_tags.novel_id = ?", novelID).
		Order("tags.name ASC").
		Find(&tags).Error
	return tags, err
}

// UpsertTag creates the tag with a count of one, or returns the existing tag
// untouched. The boolean reports whether a row was created.
func (r *TagRepo) UpsertTag(ctx context.Context, name string) (*models.Tag, bool, error) {
	tag := models.Tag{Name: name, Slug: name, Count: 1}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&tag)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected == 1 {
		return &tag, true, nil
	}

	var existing models.Tag
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&existing).Error; err != nil {
		return nil, false, err
	}
	return &existing, false, nil
}

// IncrementTagCount adjusts the usage counter in a single UPDATE statement.
func (r *TagRepo) IncrementTagCount(ctx context.Context, tagID uuid.UUID, delta int) error {
	res := r.db.WithContext(ctx).
		Model(&models.Tag{}).
		Where("id = ?", tagID).
		UpdateColumn("novel_count", gorm.Expr("novel_count + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteIfUnused removes the tag when no novel carries it any more.
func (r *TagRepo) DeleteIfUnused(ctx context.Context, tagID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND novel_count <= 0", tagID).
		Delete(&models.Tag{})
	return res.RowsAffected > 0, res.Error
}

// CountCoOccurrenceMatching counts, per tag, how many visible novels matching
// q carry it. The candidate set stays in the database as a subquery, so it is
// never truncated. Excluded and unused tags are skipped. Rows are ordered by
// co-occurrence, then global usage, then name. Offset, Limit and OrderBy of q
// are ignored.
func (r *TagRepo) CountCoOccurrenceMatching(ctx context.Context, q models.NovelQuery, excludeTagIDs []uuid.UUID, limit int) ([]models.CoOccurrence, error) {
	db := r.db.WithContext(ctx)
	return countCoOccurrence(db, candidateIDs(db, q), excludeTagIDs, limit)
}

func countCoOccurrence(db *gorm.DB, candidates *gorm.DB, excludeTagIDs []uuid.UUID, limit int) ([]models.CoOccurrence, error) {
	query := db.
		Table("novel_tags").
		Select("tags.id AS tag_id, tags.name AS name, tags.slug AS slug, tags.novel_count AS tag_count, COUNT(DISTINCT novel_tags.novel_id) AS co_occurrence").
		Joins("JOIN tags ON tags.id = novel_tags.tag_id").
		Where("novel_tags.novel_id IN (?)", candidates).
		Where("tags.novel_count > 0")
	if len(excludeTagIDs) > 0 {
		query = query.Where("novel_tags.tag_id NOT IN ?", excludeTagIDs)
	}
	query = query.
		Group("tags.id, tags.name, tags.slug, tags.novel_count").
		Order("co_occurrence DESC").
		Order("tags.novel_count DESC").
		Order("tags.name ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	rows := []models.CoOccurrence{}
	err := query.Scan(&rows).Error
	return rows, err
}

// ListPopular returns tags in use ordered by usage.
func (r *TagRepo) ListPopular(ctx context.Context, limit int) ([]models.Tag, error) {
	var tags []models.Tag
	err := r.db.WithContext(ctx).
		Where("novel_count > 0").
		Order("novel_count DESC").
		Order("name ASC").
		Limit(limit).
		Find(&tags).Error
	return tags, err
}
