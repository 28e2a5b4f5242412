package discovery

import (
	"sort"

	"github.com/google/uuid"
	"github.com/leozhansino-design/butternovel-mobile-sub002/models"
)

// RelatedTag is a tag that co-occurs with the selected ones.
type RelatedTag struct {
	TagID        uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	CoOccurrence int64     `json:"coOccurrence"`
	count        int64
}

// RankRelated counts tag co-occurrence over novels that are already loaded
// with their tags. Excluded tags and tags no longer in use are skipped.
func RankRelated(novels []models.Novel, exclude []uuid.UUID, limit int) []RelatedTag {
	skip := make(map[uuid.UUID]bool, len(exclude))
	for _, id := range exclude {
		skip[id] = true
	}

	byID := make(map[uuid.UUID]*RelatedTag)
	for _, novel := range novels {
		// a novel counts once per tag
		seen := make(map[uuid.UUID]bool, len(novel.Tags))
		for _, tag := range novel.Tags {
			if skip[tag.ID] || seen[tag.ID] || tag.Count <= 0 {
				continue
			}
			seen[tag.ID] = true

			rt, ok := byID[tag.ID]
			if !ok {
				rt = &RelatedTag{TagID: tag.ID, Name: tag.Name, Slug: tag.Slug, count: tag.Count}
				byID[tag.ID] = rt
			}
			rt.CoOccurrence++
		}
	}

	related := make([]RelatedTag, 0, len(byID))
	for _, rt := range byID {
		related = append(related, *rt)
	}
	sortRelated(related)

	if limit > 0 && len(related) > limit {
		related = related[:limit]
	}
	return related
}

func relatedFromRows(rows []models.CoOccurrence) []RelatedTag {
	related := make([]RelatedTag, 0, len(rows))
	for _, row := range rows {
		if row.CoOccurrence <= 0 {
			continue
		}
		related = append(related, RelatedTag{
			TagID:        row.TagID,
			Name:         row.Name,
			Slug:         row.Slug,
			CoOccurrence: row.CoOccurrence,
			count:        row.TagCount,
		})
	}
	// storage already orders rows; sorting again keeps the name tie-break
	// byte-wise regardless of database collation
	sortRelated(related)
	return related
}

func sortRelated(related []RelatedTag) {
	sort.Slice(related, func(i, j int) bool {
		a, b := related[i], related[j]
		if a.CoOccurrence != b.CoOccurrence {
			return a.CoOccurrence > b.CoOccurrence
		}
		if a.count != b.count {
			return a.count > b.count
		}
		return a.Name < b.Name
	})
}
