package discovery

import (
	"testing"

	"github.com/google/uuid"
	"github.com/leozhansino-design/butternovel-mobile-sub002/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tag(name string, count int64) models.Tag {
	return models.Tag{ID: uuid.New(), Name: name, Slug: name, Count: count}
}

func TestRankRelated(t *testing.T) {
	romance := tag("romance", 10)
	ceo := tag("ceo", 4)
	billionaire := tag("billionaire", 7)
	office := tag("office", 7)
	ghost := tag("ghost", 0)

	novels := []models.Novel{
		{Tags: []models.Tag{romance, ceo, billionaire}},
		{Tags: []models.Tag{romance, ceo, office, ghost}},
		{Tags: []models.Tag{romance, ceo, billionaire, office}},
		{Tags: []models.Tag{romance, ceo, office}},
	}

	related := RankRelated(novels, []uuid.UUID{romance.ID, ceo.ID}, 10)
	require.Len(t, related, 2)

	assert.Equal(t, "office", related[0].Slug)
	assert.EqualValues(t, 3, related[0].CoOccurrence)
	assert.Equal(t, "billionaire", related[1].Slug)
	assert.EqualValues(t, 2, related[1].CoOccurrence)
}

func TestRankRelatedTieBreaks(t *testing.T) {
	popular := tag("zebra", 9)
	alpha := tag("alpha", 3)
	beta := tag("beta", 3)

	novels := []models.Novel{{Tags: []models.Tag{beta, alpha, popular}}}

	related := RankRelated(novels, nil, 0)
	require.Len(t, related, 3)
	assert.Equal(t, []string{"zebra", "alpha", "beta"}, []string{related[0].Name, related[1].Name, related[2].Name})
}

func TestRankRelatedLimitAndEmpty(t *testing.T) {
	assert.Empty(t, RankRelated(nil, nil, 5))

	novels := []models.Novel{{Tags: []models.Tag{tag("a", 1), tag("b", 1), tag("c", 1)}}}
	assert.Len(t, RankRelated(novels, nil, 2), 2)
}

func TestRelatedFromRowsDropsZeroCoOccurrence(t *testing.T) {
	rows := []models.CoOccurrence{
		{TagID: uuid.New(), Name: "b", Slug: "b", TagCount: 1, CoOccurrence: 2},
		{TagID: uuid.New(), Name: "a", Slug: "a", TagCount: 5, CoOccurrence: 0},
		{TagID: uuid.New(), Name: "c", Slug: "c", TagCount: 5, CoOccurrence: 2},
	}

	related := relatedFromRows(rows)
	require.Len(t, related, 2)
	assert.Equal(t, "c", related[0].Slug)
	assert.Equal(t, "b", related[1].Slug)
}
