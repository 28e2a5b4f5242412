package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/leozhansino-design/butternovel-mobile-sub002/models"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"
)

// sortable columns accepted in models.NovelQuery.OrderBy
var sortColumns = map[string]bool{
	"hot_score":      true,
	"bookmark_count": true,
	"view_count":     true,
}

type NovelRepo struct {
	db       *gorm.DB
	snapshot *sql.TxOptions
}

func NewNovelRepo(db *gorm.DB, snapshot *sql.TxOptions) *NovelRepo {
	return &NovelRepo{db: db, snapshot: snapshot}
}

// GetDB returns the underlying database connection for debugging purposes
func (r *NovelRepo) GetDB() *gorm.DB {
	return r.db
}

// FindByID returns a novel with its tags.
func (r *NovelRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Novel, error) {
	var novel models.Novel
	err := r.db.WithContext(ctx).Preload("Tags").First(&novel, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &novel, nil
}

// Add inserts a new novel. Tags are attached separately through NovelTagRepo.
func (r *NovelRepo) Add(ctx context.Context, novel *models.Novel) error {
	return r.db.WithContext(ctx).Omit("Tags").Create(novel).Error
}

// FindNovelsMatchingAllTags returns one page of visible novels carrying every
// tag in q.TagIDs, with their tags preloaded, and the total number of matches.
func (r *NovelRepo) FindNovelsMatchingAllTags(ctx context.Context, q models.NovelQuery) ([]models.Novel, int64, error) {
	q.RelatedLimit = 0
	page, err := r.FindNovelPage(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	return page.Novels, page.Total, nil
}

// FindNovelPage reads the total, one page of matching novels and, when
// q.RelatedLimit is positive and the page does not hold every match, the
// co-occurrence of other tags across all matches. Everything is read in the
// same transaction.
func (r *NovelRepo) FindNovelPage(ctx context.Context, q models.NovelQuery) (*models.NovelPage, error) {
	if !sortColumns[q.OrderBy] {
		return nil, fmt.Errorf("unsupported order column %q", q.OrderBy)
	}

	page := &models.NovelPage{}
	err := r.db.WithContext(ctx).Clauses(dbresolver.Read).Transaction(func(tx *gorm.DB) error {
		if err := matchingNovels(tx, q).Count(&page.Total).Error; err != nil {
			return err
		}
		if page.Total == 0 {
			return nil
		}

		if q.Offset < 0 {
			return fmt.Errorf("negative offset %d", q.Offset)
		}
		if int64(q.Offset) < page.Total {
			query := matchingNovels(tx, q).
				Order(q.OrderBy + " DESC").
				Order("novels.id ASC").
				Preload("Tags", func(db *gorm.DB) *gorm.DB {
					return db.Order("tags.name ASC")
				})
			if q.Offset > 0 {
				query = query.Offset(q.Offset)
			}
			if q.Limit > 0 {
				query = query.Limit(q.Limit)
			}
			if err := query.Find(&page.Novels).Error; err != nil {
				return err
			}
		}

		if q.RelatedLimit <= 0 || int64(len(page.Novels)) == page.Total {
			return nil
		}
		related, err := countCoOccurrence(tx, candidateIDs(tx, q), q.TagIDs, q.RelatedLimit)
		if err != nil {
			return err
		}
		page.Related = related
		page.RelatedAggregated = true
		return nil
	}, r.snapshot)
	if err != nil {
		return nil, err
	}
	return page, nil
}

// matchingNovels builds the visibility and tag-intersection filter. A novel
// matches when the number of distinct requested tags it carries equals the
// number requested.
func matchingNovels(db *gorm.DB, q models.NovelQuery) *gorm.DB {
	query := db.Model(&models.Novel{}).
		Where("novels.is_published = ? AND novels.is_banned = ?", true, false)

	if len(q.TagIDs) > 0 {
		sub := db.Session(&gorm.Session{NewDB: true}).
			Model(&models.NovelTag{}).
			Select("novel_id").
			Where("tag_id IN ?", q.TagIDs).
			Group("novel_id").
			Having("COUNT(DISTINCT tag_id) = ?", len(q.TagIDs))
		query = query.Where("novels.id IN (?)", sub)
	}

	if q.CategoryID != nil {
		query = query.Where("novels.category_id = ?", *q.CategoryID)
	}

	return query
}

// candidateIDs is the matching filter as an id subquery.
func candidateIDs(db *gorm.DB, q models.NovelQuery) *gorm.DB {
	return matchingNovels(db.Session(&gorm.Session{NewDB: true}), q).Select("novels.id")
}

// ListForScoring pages through every novel in id order, starting after the
// given id.
func (r *NovelRepo) ListForScoring(ctx context.Context, after uuid.UUID, limit int) ([]models.Novel, error) {
	var novels []models.Novel
	err := r.db.WithContext(ctx).
		Select("id", "view_count", "bookmark_count", "total_chapters", "hot_score", "created_at", "updated_at").
		Where("id > ?", after).
		Order("id ASC").
		Limit(limit).
		Find(&novels).Error
	return novels, err
}

// UpdateHotScore stores a recomputed score without touching updated_at,
// which is itself an input of the score.
func (r *NovelRepo) UpdateHotScore(ctx context.Context, id uuid.UUID, score float64) error {
	res := r.db.WithContext(ctx).
		Model(&models.Novel{}).
		Where("id = ?", id).
		UpdateColumn("hot_score", score)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
