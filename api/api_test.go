package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/leozhansino-design/butternovel-mobile-sub002/config"
	"github.com/leozhansino-design/butternovel-mobile-sub002/database"
	"github.com/leozhansino-design/butternovel-mobile-sub002/database/databasetest"
	"github.com/leozhansino-design/butternovel-mobile-sub002/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

type testEnv struct {
	db     *gorm.DB
	router http.Handler
	novels map[string]models.Novel
}

func newTestEnv(t *testing.T) testEnv {
	db := databasetest.Open(t)

	novels := map[string]models.Novel{}
	add := func(title string, score float64, slugs ...string) {
		n := databasetest.Visible(title)
		n.HotScore = score
		novels[title] = databasetest.AddNovel(t, db, n, slugs...)
	}
	add("N1", 5, "romance", "ceo")
	add("N2", 7, "romance", "billionaire")
	add("N3", 9, "romance", "ceo", "billionaire")

	cfg := config.Load(map[string]string{
		"JWT_SECRET":          testSecret,
		"RATE_LIMIT_REQUESTS": "0",
		"ACCEPTED_ORIGINS":    "https://novels.example",
	})

	return testEnv{
		db:     db,
		router: newRouter(database.New(db), withConfig(cfg), withStartupTime(time.Now())),
		novels: novels,
	}
}

func (e testEnv) do(t *testing.T, method, target string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func bearer(t *testing.T, secret, subject string) map[string]string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	return map[string]string{"Authorization": "Bearer " + token}
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

type searchBody struct {
	Novels []struct {
		Title string `json:"title"`
	} `json:"novels"`
	RelatedTags []struct {
		Slug         string `json:"slug"`
		CoOccurrence int64  `json:"coOccurrence"`
	} `json:"relatedTags"`
	SelectedTags []models.Tag `json:"selectedTags"`
	Total        int64        `json:"total"`
	Page         int          `json:"page"`
	PageSize     int          `json:"pageSize"`
	TotalPages   int          `json:"totalPages"`
	Sort         string       `json:"sort"`
}

func TestSearchByTag(t *testing.T) {
	env := newTestEnv(t)

	for _, target := range []string{"/tags/romance?tags=ceo", "/tags/ROMANCE?tags=%20CEO%20,ceo", "/tags/ceo?tags=romance&sort=hot&page=1"} {
		rec := env.do(t, http.MethodGet, target, nil, nil)
		require.Equal(t, http.StatusOK, rec.Code, target)
		assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

		body := decode[searchBody](t, rec)
		require.Len(t, body.Novels, 2, target)
		assert.Equal(t, "N3", body.Novels[0].Title)
		assert.Equal(t, "N1", body.Novels[1].Title)
		assert.EqualValues(t, 2, body.Total)
		assert.Equal(t, 1, body.Page)
		assert.Equal(t, 24, body.PageSize)
		assert.Equal(t, 1, body.TotalPages)
		assert.Equal(t, "hot", body.Sort)
		assert.Len(t, body.SelectedTags, 2)

		require.Len(t, body.RelatedTags, 1)
		assert.Equal(t, "billionaire", body.RelatedTags[0].Slug)
		assert.EqualValues(t, 1, body.RelatedTags[0].CoOccurrence)
	}
}

func TestSearchByTagErrors(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name   string
		target string
		status int
		field  string
	}{
		{"unknown tag", "/tags/romance?tags=vampire", http.StatusNotFound, "tags"},
		{"unknown primary", "/tags/vampire", http.StatusNotFound, "tags"},
		{"bad sort", "/tags/romance?sort=newest", http.StatusBadRequest, "sort"},
		{"upper case sort", "/tags/romance?sort=HOT", http.StatusBadRequest, "sort"},
		{"bad page", "/tags/romance?page=abc", http.StatusBadRequest, "page"},
		{"fractional page", "/tags/romance?page=1.5", http.StatusBadRequest, "page"},
		{"bad category", "/tags/romance?category=nope", http.StatusBadRequest, "category"},
		{"symbol only slug", "/tags/%21%21", http.StatusBadRequest, "slug"},
		{"symbol only extra", "/tags/romance?tags=ceo,%21%21", http.StatusBadRequest, "tags"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, tt.target, nil, nil)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())

			body := decode[ErrorResponse](t, rec)
			assert.Equal(t, "error", body.Status)
			assert.Equal(t, tt.field, body.Field)
		})
	}

	rec := env.do(t, http.MethodGet, "/tags/romance?tags=vampire,werewolf", nil, nil)
	body := decode[ErrorResponse](t, rec)
	assert.Equal(t, []string{"vampire", "werewolf"}, body.Missing)
}

func TestSearchByTagPageBeyondEnd(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/tags/romance?page=9", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[searchBody](t, rec)
	assert.Empty(t, body.Novels)
	assert.EqualValues(t, 3, body.Total)
	assert.Equal(t, 9, body.Page)
}

func TestSearchByTagClampsPage(t *testing.T) {
	env := newTestEnv(t)

	for _, target := range []string{"/tags/romance?page=-1", "/tags/romance?page=0", "/tags/romance?page=-99999999999999999999"} {
		rec := env.do(t, http.MethodGet, target, nil, nil)
		require.Equal(t, http.StatusOK, rec.Code, target)

		body := decode[searchBody](t, rec)
		assert.Equal(t, 1, body.Page, target)
		assert.Len(t, body.Novels, 3, target)
	}

	rec := env.do(t, http.MethodGet, "/tags/romance?page=400000000000000000", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[searchBody](t, rec)
	assert.Empty(t, body.Novels)
	assert.EqualValues(t, 3, body.Total)
}

type relatedBody struct {
	Data []struct {
		ID           uuid.UUID `json:"id"`
		Slug         string    `json:"slug"`
		CoOccurrence int64     `json:"coOccurrence"`
	} `json:"data"`
	Missing []string `json:"missing"`
}

func TestGetRelatedTags(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/tags/related?tags=romance,nope&limit=5", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode[relatedBody](t, rec)
	require.Len(t, body.Data, 2)
	assert.Equal(t, "billionaire", body.Data[0].Slug)
	assert.Equal(t, "ceo", body.Data[1].Slug)
	assert.EqualValues(t, 2, body.Data[0].CoOccurrence)
	assert.NotEqual(t, uuid.Nil, body.Data[0].ID)
	assert.Equal(t, []string{"nope"}, body.Missing)

	for target, status := range map[string]int{
		"/tags/related":                       http.StatusBadRequest,
		"/tags/related?tags=":                 http.StatusBadRequest,
		"/tags/related?tags=romance&limit=0":  http.StatusBadRequest,
		"/tags/related?tags=romance&limit=51": http.StatusBadRequest,
		"/tags/related?tags=romance&limit=-1": http.StatusBadRequest,
		"/tags/related?tags=nope,nada":        http.StatusNotFound,
	} {
		rec := env.do(t, http.MethodGet, target, nil, nil)
		assert.Equal(t, status, rec.Code, target)
	}
}

func TestGetPopularTags(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/tags?limit=1", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[TagCollection](t, rec)
	require.Len(t, body.Data, 1)
	assert.Equal(t, "romance", body.Data[0].Slug)
	assert.EqualValues(t, 3, body.Data[0].Count)

	rec = env.do(t, http.MethodGet, "/tags?limit=101", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSetNovelTags(t *testing.T) {
	env := newTestEnv(t)
	n1 := env.novels["N1"]
	target := "/novels/" + n1.ID.String() + "/tags"

	rec := env.do(t, http.MethodPut, target, SetTagsRequest{Tags: []string{"romance"}}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPut, target, SetTagsRequest{Tags: []string{"romance"}}, bearer(t, "wrong-secret", "user-1"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	auth := bearer(t, testSecret, "user-1")
	rec = env.do(t, http.MethodPut, target, SetTagsRequest{Tags: []string{"Romance", "Office Life"}}, auth)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode[NovelTagsResponse](t, rec)
	require.Len(t, body.Tags, 2)
	assert.Equal(t, "office-life", body.Tags[0].Slug)
	assert.Equal(t, "romance", body.Tags[1].Slug)

	// ceo now only belongs to N3
	rec = env.do(t, http.MethodGet, "/tags/ceo", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode[searchBody](t, rec).Total)

	rec = env.do(t, http.MethodPut, target, SetTagsRequest{Tags: []string{"???", strings.Repeat("a", 40)}}, auth)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, decode[ErrorResponse](t, rec).Violations, 2)

	rec = env.do(t, http.MethodPut, "/novels/"+uuid.NewString()+"/tags", SetTagsRequest{Tags: []string{"romance"}}, auth)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPut, "/novels/not-a-uuid/tags", SetTagsRequest{Tags: []string{"romance"}}, auth)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRefreshHotScore(t *testing.T) {
	env := newTestEnv(t)
	n2 := env.novels["N2"]
	auth := bearer(t, testSecret, "user-1")

	rec := env.do(t, http.MethodPost, "/novels/"+n2.ID.String()+"/hot-score", nil, auth)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode[HotScoreResponse](t, rec)
	assert.Equal(t, n2.ID.String(), body.NovelID)
	assert.GreaterOrEqual(t, body.HotScore, 0.0)

	rec = env.do(t, http.MethodPost, "/novels/"+uuid.NewString()+"/hot-score", nil, auth)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsAndHealth(t *testing.T) {
	env := newTestEnv(t)

	env.do(t, http.MethodGet, "/tags/romance", nil, nil)

	rec := env.do(t, http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "tag_search_total")
	assert.Contains(t, rec.Body.String(), `route="/tags/{slug}"`)

	rec = env.do(t, http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[map[string]any](t, rec)["status"])
}

func TestCORS(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodOptions, "/tags/romance", nil, map[string]string{
		"Origin":                        "https://evil.example",
		"Access-Control-Request-Method": "GET",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodGet, "/tags/romance", nil, map[string]string{"Origin": "https://novels.example"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://novels.example", rec.Header().Get("Access-Control-Allow-Origin"))
}
