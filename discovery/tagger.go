package discovery

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/leozhansino-design/butternovel-mobile-sub002/errs"
	"github.com/leozhansino-design/butternovel-mobile-sub002/models"
	"github.com/leozhansino-design/butternovel-mobile-sub002/tags"
	"github.com/rs/zerolog"
)

// Tagger edits the tag set of a novel.
type Tagger struct {
	store  TagWriter
	logger zerolog.Logger
}

func NewTagger(store TagWriter, logger zerolog.Logger) *Tagger {
	return &Tagger{
		store:  store,
		logger: logger.With().Str("component", "tagger").Logger(),
	}
}

// SetNovelTags replaces the tags of a novel with the normalized form of raw.
// Inputs that differ only in case or spacing collapse into one tag. Every
// rule violation is returned in a single validation error and nothing is
// written in that case.
func (t *Tagger) SetNovelTags(ctx context.Context, novelID uuid.UUID, raw []string) ([]models.Tag, error) {
	var violations []string
	slugs := make([]string, 0, len(raw))
	seen := make(map[string]bool, len(raw))

	for _, r := range raw {
		slug := tags.Normalize(r)
		if slug == "" {
			violations = append(violations, fmt.Sprintf("invalid tag %q: contains no letters or digits", r))
			continue
		}
		if seen[slug] {
			continue
		}
		seen[slug] = true
		slugs = append(slugs, slug)
	}

	if res := tags.Validate(slugs); !res.Valid {
		violations = append(violations, res.Errors...)
	}
	if len(violations) > 0 {
		return nil, errs.NewTagValidationError(violations)
	}

	updated, err := t.store.ReplaceTags(ctx, novelID, slugs)
	if err != nil {
		return nil, errs.NewDatabaseError("update", "novel tags", err)
	}

	t.logger.Info().
		Str("novelID", novelID.String()).
		Strs("tags", slugs).
		Msg("novel tags replaced")

	if updated == nil {
		updated = []models.Tag{}
	}
	return updated, nil
}
