package discovery

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/leozhansino-design/butternovel-mobile-sub002/errs"
	"github.com/leozhansino-design/butternovel-mobile-sub002/metrics"
	"github.com/leozhansino-design/butternovel-mobile-sub002/models"
	"github.com/rs/zerolog"
)

const (
	PageSize            = 24
	DefaultRelatedLimit = 15
	MaxRelatedLimit     = 50
	DefaultPopularLimit = 30
	MaxPopularLimit     = 100
)

// SortMode selects the ranking column of a search.
type SortMode string

const (
	SortHot       SortMode = "hot"
	SortBookmarks SortMode = "bookmarks"
	SortViews     SortMode = "views"
)

var sortColumns = map[SortMode]string{
	SortHot:       "hot_score",
	SortBookmarks: "bookmark_count",
	SortViews:     "view_count",
}

// ParseSort maps a query value to a SortMode. The empty string means hot.
// Values are case sensitive.
func ParseSort(raw string) (SortMode, error) {
	mode := SortMode(raw)
	if mode == "" {
		return SortHot, nil
	}
	if _, ok := sortColumns[mode]; !ok {
		return "", errs.NewInvalidArgumentError("sort", fmt.Sprintf("%q is not one of hot, bookmarks, views", raw))
	}
	return mode, nil
}

func (s SortMode) column() string {
	return sortColumns[s]
}

// SearchRequest is an intersection search. Slugs are expected to be
// normalized already.
type SearchRequest struct {
	PrimarySlug string
	ExtraSlugs  []string
	Sort        SortMode
	Page        int
	CategoryID  *uuid.UUID
}

type SearchResult struct {
	Novels       []models.Novel `json:"novels"`
	RelatedTags  []RelatedTag   `json:"relatedTags"`
	SelectedTags []models.Tag   `json:"selectedTags"`
	Total        int64          `json:"total"`
	Page         int            `json:"page"`
	PageSize     int            `json:"pageSize"`
	TotalPages   int            `json:"totalPages"`
	Sort         SortMode       `json:"sort"`
}

// RelatedRequest asks for the tags that co-occur with Slugs.
type RelatedRequest struct {
	Slugs      []string
	CategoryID *uuid.UUID
	Limit      int
}

// RelatedResult holds the recommendations and the requested slugs that did
// not resolve to a tag.
type RelatedResult struct {
	Tags    []RelatedTag `json:"data"`
	Missing []string     `json:"missing"`
}

// Engine answers tag discovery queries. It holds no mutable state and is safe
// for concurrent use.
type Engine struct {
	tags   TagStore
	novels NovelStore
	logger zerolog.Logger
}

func NewEngine(tags TagStore, novels NovelStore, logger zerolog.Logger) *Engine {
	return &Engine{
		tags:   tags,
		novels: novels,
		logger: logger.With().Str("component", "discovery").Logger(),
	}
}

// Search returns one page of visible novels carrying every requested tag.
// If any requested slug does not resolve to a tag in use, the whole search
// fails with a not found error naming each missing slug.
func (e *Engine) Search(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	sortMode := req.Sort
	if sortMode == "" {
		sortMode = SortHot
	}

	result, err := e.search(ctx, req, sortMode)
	metrics.RecordTagSearch(string(sortMode), outcome(err), totalOf(result))
	return result, err
}

func (e *Engine) search(ctx context.Context, req SearchRequest, sortMode SortMode) (*SearchResult, error) {
	if _, ok := sortColumns[sortMode]; !ok {
		return nil, errs.NewInvalidArgumentError("sort", fmt.Sprintf("%q is not one of hot, bookmarks, views", sortMode))
	}

	slugs := slugSet(req.PrimarySlug, req.ExtraSlugs)
	if len(slugs) == 0 {
		return nil, errs.NewInvalidArgumentError("tags", "at least one tag is required")
	}

	selected, err := e.resolve(ctx, slugs)
	if err != nil {
		return nil, err
	}

	page := req.Page
	if page < 1 {
		page = 1
	}

	tagIDs := idsOf(selected)
	result, err := e.novels.FindNovelPage(ctx, models.NovelQuery{
		TagIDs:       tagIDs,
		CategoryID:   req.CategoryID,
		OrderBy:      sortMode.column(),
		Offset:       pageOffset(page),
		Limit:        PageSize,
		RelatedLimit: DefaultRelatedLimit,
	})
	if err != nil {
		return nil, errs.NewDatabaseError("search", "novels", err)
	}
	novels := result.Novels
	if novels == nil {
		novels = []models.Novel{}
	}

	var related []RelatedTag
	if result.RelatedAggregated {
		metrics.RecordRelatedTags("aggregate")
		related = relatedFromRows(result.Related)
	} else {
		metrics.RecordRelatedTags("memory")
		related = RankRelated(novels, tagIDs, DefaultRelatedLimit)
	}

	e.logger.Debug().
		Strs("slugs", slugs).
		Str("sort", string(sortMode)).
		Int("page", page).
		Int64("total", result.Total).
		Bool("aggregated", result.RelatedAggregated).
		Msg("tag search")

	return &SearchResult{
		Novels:       novels,
		RelatedTags:  related,
		SelectedTags: selected,
		Total:        result.Total,
		Page:         page,
		PageSize:     PageSize,
		TotalPages:   totalPages(result.Total),
		Sort:         sortMode,
	}, nil
}

// pageOffset is the row offset of page. Pages past the last representable
// offset map to math.MaxInt, which is beyond any result.
func pageOffset(page int) int {
	if page-1 > math.MaxInt/PageSize {
		return math.MaxInt
	}
	return (page - 1) * PageSize
}

// Related recommends tags that co-occur with the requested ones across the
// visible novels carrying all of the resolvable slugs. Unresolved slugs are
// reported in Missing. When none resolve the call fails with not found.
func (e *Engine) Related(ctx context.Context, req RelatedRequest) (*RelatedResult, error) {
	limit := req.Limit
	if limit == 0 {
		limit = DefaultRelatedLimit
	}
	if limit < 1 || limit > MaxRelatedLimit {
		return nil, errs.NewInvalidArgumentError("limit", fmt.Sprintf("must be between 1 and %d", MaxRelatedLimit))
	}

	slugs := slugSet("", req.Slugs)
	if len(slugs) == 0 {
		return nil, errs.NewInvalidArgumentError("tags", "at least one tag is required")
	}

	found, err := e.tags.FindTagsBySlugs(ctx, slugs)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "tags", err)
	}
	selected, missing := partition(slugs, found)
	if len(selected) == 0 {
		return nil, errs.NewTagsNotFoundError(missing)
	}
	if missing == nil {
		missing = []string{}
	}

	tagIDs := idsOf(selected)
	metrics.RecordRelatedTags("aggregate")
	rows, err := e.tags.CountCoOccurrenceMatching(ctx, models.NovelQuery{
		TagIDs:     tagIDs,
		CategoryID: req.CategoryID,
	}, tagIDs, limit)
	if err != nil {
		return nil, errs.NewDatabaseError("count", "related tags", err)
	}

	return &RelatedResult{Tags: relatedFromRows(rows), Missing: missing}, nil
}

// PopularTags lists the most used tags.
func (e *Engine) PopularTags(ctx context.Context, limit int) ([]models.Tag, error) {
	if limit == 0 {
		limit = DefaultPopularLimit
	}
	if limit < 1 || limit > MaxPopularLimit {
		return nil, errs.NewInvalidArgumentError("limit", fmt.Sprintf("must be between 1 and %d", MaxPopularLimit))
	}

	tags, err := e.tags.ListPopular(ctx, limit)
	if err != nil {
		return nil, errs.NewDatabaseError("list", "tags", err)
	}
	if tags == nil {
		tags = []models.Tag{}
	}
	return tags, nil
}

// resolve looks up every slug and fails closed when any is missing.
func (e *Engine) resolve(ctx context.Context, slugs []string) ([]models.Tag, error) {
	found, err := e.tags.FindTagsBySlugs(ctx, slugs)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "tags", err)
	}

	selected, missing := partition(slugs, found)
	if len(missing) > 0 {
		return nil, errs.NewTagsNotFoundError(missing)
	}
	return selected, nil
}

// partition orders found tags like slugs and lists the slugs without a tag in
// use.
func partition(slugs []string, found []models.Tag) (selected []models.Tag, missing []string) {
	bySlug := make(map[string]models.Tag, len(found))
	for _, tag := range found {
		bySlug[tag.Slug] = tag
	}

	for _, slug := range slugs {
		tag, ok := bySlug[slug]
		if !ok || tag.Count <= 0 {
			missing = append(missing, slug)
			continue
		}
		selected = append(selected, tag)
	}
	return selected, missing
}

// slugSet joins primary and extras, dropping blanks and duplicates. The
// primary slug stays first.
func slugSet(primary string, extras []string) []string {
	slugs := make([]string, 0, len(extras)+1)
	seen := make(map[string]bool, len(extras)+1)
	for _, slug := range append([]string{primary}, extras...) {
		if slug == "" || seen[slug] {
			continue
		}
		seen[slug] = true
		slugs = append(slugs, slug)
	}
	return slugs
}

func idsOf(tags []models.Tag) []uuid.UUID {
	ids := make([]uuid.UUID, len(tags))
	for i, tag := range tags {
		ids[i] = tag.ID
	}
	return ids
}

func totalPages(total int64) int {
	return int((total + PageSize - 1) / PageSize)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errs.IsTagsNotFound(err):
		return "not_found"
	case errs.IsInvalidArgument(err):
		return "invalid"
	default:
		return "error"
	}
}

func totalOf(result *SearchResult) int64 {
	if result == nil {
		return 0
	}
	return result.Total
}
