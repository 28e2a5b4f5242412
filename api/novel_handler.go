package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/leozhansino-design/butternovel-mobile-sub002/discovery"
	"github.com/leozhansino-design/butternovel-mobile-sub002/errs"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// request bodies above this size are rejected
const maxBodySize = 64 * 1024

type novelHandler struct {
	responder Responder
	logger    zerolog.Logger
	tagger    *discovery.Tagger
	refresher *discovery.Refresher
	now       func() time.Time
}

func newNovelHandler(tagger *discovery.Tagger, refresher *discovery.Refresher) novelHandler {
	logger := log.With().Str("handlerName", "novelHandler").Logger()

	return novelHandler{
		responder: NewResponder(logger),
		logger:    logger,
		tagger:    tagger,
		refresher: refresher,
		now:       time.Now,
	}
}

// setNovelTags replaces the tag set of a novel.
// PUT /novels/{novelID}/tags {"tags": ["romance", "slow burn"]}
func (h novelHandler) setNovelTags() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		novelID, err := uuid.Parse(chi.URLParam(r, "novelID"))
		if err != nil {
			h.responder.WriteError(w, errs.NewInvalidArgumentError("novelID", "must be a UUID"))
			return
		}

		var req SetTagsRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&req); err != nil {
			h.responder.WriteError(w, errs.NewInvalidArgumentError("body", "expected a JSON object with a tags array"))
			return
		}
		if err := validate.Struct(req); err != nil {
			h.responder.WriteError(w, validationError(err))
			return
		}

		updated, err := h.tagger.SetNovelTags(r.Context(), novelID, req.Tags)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		userID, _ := ctxGetUserID(r.Context())
		h.logger.Info().
			Str("novelID", novelID.String()).
			Str("userID", userID).
			Int("tagCount", len(updated)).
			Msg("novel tags updated")

		h.responder.WriteJSON(w, NovelTagsResponse{NovelID: novelID.String(), Tags: updated})
	}
}

// refreshHotScore recomputes the cached hot score of one novel.
// POST /novels/{novelID}/hot-score
func (h novelHandler) refreshHotScore() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		novelID, err := uuid.Parse(chi.URLParam(r, "novelID"))
		if err != nil {
			h.responder.WriteError(w, errs.NewInvalidArgumentError("novelID", "must be a UUID"))
			return
		}

		score, err := h.refresher.RefreshNovel(r.Context(), novelID, h.now())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, HotScoreResponse{NovelID: novelID.String(), HotScore: score})
	}
}

type healthHandler struct {
	responder   Responder
	startupTime time.Time
}

func newHealthHandler(startupTime time.Time) healthHandler {
	logger := log.With().Str("handlerName", "healthHandler").Logger()
	return healthHandler{responder: NewResponder(logger), startupTime: startupTime}
}

// GET /health
func (h healthHandler) getHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.responder.WriteJSON(w, map[string]any{
			"status":    "ok",
			"startedAt": h.startupTime.UTC().Format(time.RFC3339),
			"uptime":    time.Since(h.startupTime).Round(time.Second).String(),
		})
	}
}
