// Package discovery implements tag intersection search, related-tag
// recommendation and hot score ranking over the novel catalog.
package discovery

import (
	"context"

	"github.com/google/uuid"
	"github.com/leozhansino-design/butternovel-mobile-sub002/models"
)

// TagStore is the read side of the tag vocabulary.
type TagStore interface {
	FindTagsBySlugs(ctx context.Context, slugs []string) ([]models.Tag, error)
	CountCoOccurrenceMatching(ctx context.Context, q models.NovelQuery, excludeTagIDs []uuid.UUID, limit int) ([]models.CoOccurrence, error)
	ListPopular(ctx context.Context, limit int) ([]models.Tag, error)
}

// NovelStore runs intersection queries over visible novels.
type NovelStore interface {
	FindNovelPage(ctx context.Context, q models.NovelQuery) (*models.NovelPage, error)
}

// TagWriter replaces the tag set of a novel atomically.
type TagWriter interface {
	ReplaceTags(ctx context.Context, novelID uuid.UUID, slugs []string) ([]models.Tag, error)
}

// ScoreStore reads score inputs and writes cached hot scores.
type ScoreStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Novel, error)
	ListForScoring(ctx context.Context, after uuid.UUID, limit int) ([]models.Novel, error)
	UpdateHotScore(ctx context.Context, id uuid.UUID, score float64) error
}
