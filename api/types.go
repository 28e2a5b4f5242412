package api

import (
	"github.com/go-playground/validator/v10"
	"github.com/leozhansino-design/butternovel-mobile-sub002/models"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	tagHandler    tagHandler
	novelHandler  novelHandler
	healthHandler healthHandler
}

// ErrorResponse represents an error response from the API
type ErrorResponse struct {
	Error      string   `json:"error"`
	Status     string   `json:"status"`
	Field      string   `json:"field,omitempty"`
	Details    string   `json:"details,omitempty"`
	Cause      string   `json:"cause,omitempty"`
	Missing    []string `json:"missing,omitempty"`
	Violations []string `json:"errors,omitempty"`
}

// searchParams are the query parameters of GET /tags/{slug}.
type searchParams struct {
	Sort     string
	Page     string `validate:"omitempty,numeric"`
	Category string `validate:"omitempty,uuid"`
}

// relatedParams are the query parameters of GET /tags/related.
type relatedParams struct {
	Tags     string `validate:"required"`
	Category string `validate:"omitempty,uuid"`
	Limit    string `validate:"omitempty,number"`
}

type popularParams struct {
	Limit string `validate:"omitempty,number"`
}

// SetTagsRequest is the body of PUT /novels/{novelID}/tags.
type SetTagsRequest struct {
	Tags []string `json:"tags" validate:"required"`
}

type TagCollection struct {
	Data []models.Tag `json:"data"`
}

type NovelTagsResponse struct {
	NovelID string       `json:"novelId"`
	Tags    []models.Tag `json:"tags"`
}

type HotScoreResponse struct {
	NovelID  string  `json:"novelId"`
	HotScore float64 `json:"hotScore"`
}
