package discovery

import (
	"time"

	"github.com/leozhansino-design/butternovel-mobile-sub002/models"
)

// Hot score weights.
const (
	viewWeight         = 0.1
	bookmarkWeight     = 5.0
	chapterWeight      = 2.0
	ageDecayPerDay     = 0.5
	staleDecayPerDay   = 1.0
	hoursPerDay        = 24.0
	scoreChangeEpsilon = 1e-9
)

// HotScoreInput holds the novel fields the hot score depends on.
type HotScoreInput struct {
	ViewCount     int64
	BookmarkCount int64
	TotalChapters int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func HotScoreInputFor(n models.Novel) HotScoreInput {
	return HotScoreInput{
		ViewCount:     n.ViewCount,
		BookmarkCount: n.BookmarkCount,
		TotalChapters: n.TotalChapters,
		CreatedAt:     n.CreatedAt,
		UpdatedAt:     n.UpdatedAt,
	}
}

// HotScore ranks a novel by engagement minus two recency decays:
//
//	views*0.1 + bookmarks*5 + chapters*2 - ageDays*0.5 - staleDays*1.0
//
// floored at zero. Days are fractional and never negative.
func HotScore(in HotScoreInput, now time.Time) float64 {
	score := float64(in.ViewCount)*viewWeight +
		float64(in.BookmarkCount)*bookmarkWeight +
		float64(in.TotalChapters)*chapterWeight -
		daysSince(in.CreatedAt, now)*ageDecayPerDay -
		daysSince(in.UpdatedAt, now)*staleDecayPerDay

	if score < 0 {
		return 0
	}
	return score
}

func daysSince(t, now time.Time) float64 {
	d := now.Sub(t).Hours() / hoursPerDay
	if d < 0 {
		return 0
	}
	return d
}
