package api

import (
	"time"

	"github.com/leozhansino-design/butternovel-mobile-sub002/config"
	"github.com/leozhansino-design/butternovel-mobile-sub002/database"
	"github.com/leozhansino-design/butternovel-mobile-sub002/discovery"
	"github.com/rs/zerolog/log"
)

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(database database.Database, cfg config.Config, startupTime time.Time) *routeHandlers {
	engine := discovery.NewEngine(database.TagRepo(), database.NovelRepo(), log.Logger)
	tagger := discovery.NewTagger(database.NovelTagRepo(), log.Logger)
	refresher := discovery.NewRefresher(database.NovelRepo(), cfg.HotScore.BatchSize, cfg.HotScore.Concurrency, log.Logger)

	return &routeHandlers{
		tagHandler:    newTagHandler(engine),
		novelHandler:  newNovelHandler(tagger, refresher),
		healthHandler: newHealthHandler(startupTime),
	}
}
