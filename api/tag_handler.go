package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/leozhansino-design/butternovel-mobile-sub002/discovery"
	"github.com/leozhansino-design/butternovel-mobile-sub002/errs"
	"github.com/leozhansino-design/butternovel-mobile-sub002/tags"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type tagHandler struct {
	responder Responder
	logger    zerolog.Logger
	engine    *discovery.Engine
}

func newTagHandler(engine *discovery.Engine) tagHandler {
	logger := log.With().Str("handlerName", "tagHandler").Logger()

	return tagHandler{
		responder: NewResponder(logger),
		logger:    logger,
		engine:    engine,
	}
}

// getPopularTags lists the most used tags.
// GET /tags?limit=N
func (h tagHandler) getPopularTags() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params := popularParams{Limit: r.URL.Query().Get("limit")}
		if err := validate.Struct(params); err != nil {
			h.responder.WriteError(w, validationError(err))
			return
		}

		limit, err := atoiOrZero(params.Limit)
		if err != nil || (params.Limit != "" && limit == 0) {
			h.responder.WriteError(w, errs.NewInvalidArgumentError("limit", fmt.Sprintf("must be between 1 and %d", discovery.MaxPopularLimit)))
			return
		}

		popular, err := h.engine.PopularTags(r.Context(), limit)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, TagCollection{Data: popular})
	}
}

// searchByTag runs an intersection search with {slug} as the primary tag.
// GET /tags/{slug}?tags=a,b&sort=hot&page=1&category=<uuid>
func (h tagHandler) searchByTag() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		params := searchParams{
			Sort:     query.Get("sort"),
			Page:     query.Get("page"),
			Category: query.Get("category"),
		}
		if err := validate.Struct(params); err != nil {
			h.responder.WriteError(w, validationError(err))
			return
		}

		rawSlug := chi.URLParam(r, "slug")
		// chi hands back the escaped segment when the path needed escaping
		if unescaped, err := url.PathUnescape(rawSlug); err == nil {
			rawSlug = unescaped
		}
		primary := tags.Normalize(rawSlug)
		if primary == "" || len(primary) > tags.MaxTagLength {
			h.responder.WriteError(w, errs.NewInvalidArgumentError("slug", fmt.Sprintf("%q is not a valid tag", rawSlug)))
			return
		}

		extras, rejected := tags.ParseList(query.Get("tags"))
		if len(rejected) > 0 {
			h.responder.WriteError(w, errs.NewInvalidArgumentError("tags", fmt.Sprintf("not valid tags: %s", strings.Join(rejected, ", "))))
			return
		}

		page, err := parsePage(params.Page)
		if err != nil {
			h.responder.WriteError(w, errs.NewInvalidArgumentError("page", fmt.Sprintf("%q is not a whole number", params.Page)))
			return
		}

		sortMode, err := discovery.ParseSort(params.Sort)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		result, err := h.engine.Search(r.Context(), discovery.SearchRequest{
			PrimarySlug: primary,
			ExtraSlugs:  extras,
			Sort:        sortMode,
			Page:        page,
			CategoryID:  parseOptionalUUID(params.Category),
		})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, result)
	}
}

// getRelatedTags recommends tags that co-occur with the given ones.
// GET /tags/related?tags=a,b&category=<uuid>&limit=N
func (h tagHandler) getRelatedTags() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		params := relatedParams{
			Tags:     query.Get("tags"),
			Category: query.Get("category"),
			Limit:    query.Get("limit"),
		}
		if err := validate.Struct(params); err != nil {
			h.responder.WriteError(w, validationError(err))
			return
		}

		slugs, rejected := tags.ParseList(params.Tags)
		if len(slugs) == 0 && len(rejected) == 0 {
			h.responder.WriteError(w, errs.NewInvalidArgumentError("tags", "at least one tag is required"))
			return
		}

		limit, err := atoiOrZero(params.Limit)
		if err != nil || (params.Limit != "" && limit == 0) {
			h.responder.WriteError(w, errs.NewInvalidArgumentError("limit", fmt.Sprintf("must be between 1 and %d", discovery.MaxRelatedLimit)))
			return
		}

		// entries that cannot be a tag at all are reported like unknown tags
		if len(slugs) == 0 {
			h.responder.WriteError(w, errs.NewTagsNotFoundError(rejected))
			return
		}

		result, err := h.engine.Related(r.Context(), discovery.RelatedRequest{
			Slugs:      slugs,
			CategoryID: parseOptionalUUID(params.Category),
			Limit:      limit,
		})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		result.Missing = append(result.Missing, rejected...)

		h.responder.WriteJSON(w, result)
	}
}

// validationError converts the first failed rule into an invalid argument
// error.
func validationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return errs.NewInvalidArgumentError("request", err.Error())
	}

	fe := validationErrs[0]
	field := strings.ToLower(fe.Field())

	var reason string
	switch fe.Tag() {
	case "required":
		reason = "is required"
	case "number":
		reason = fmt.Sprintf("%q is not a non-negative number", fe.Value())
	case "numeric":
		reason = fmt.Sprintf("%q is not a number", fe.Value())
	case "uuid":
		reason = fmt.Sprintf("%q is not a UUID", fe.Value())
	default:
		reason = fmt.Sprintf("failed %s validation", fe.Tag())
	}
	return errs.NewInvalidArgumentError(field, reason)
}

// atoiOrZero parses a query number; the empty string is zero.
func atoiOrZero(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

// parsePage reads a page number. Out of range values saturate and the engine
// clamps anything below one.
func parsePage(s string) (int, error) {
	page, err := atoiOrZero(s)
	if errors.Is(err, strconv.ErrRange) {
		return page, nil
	}
	return page, err
}

// parseOptionalUUID expects a value that already passed uuid validation.
func parseOptionalUUID(s string) *uuid.UUID {
	if s == "" {
		return nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil
	}
	return &id
}
