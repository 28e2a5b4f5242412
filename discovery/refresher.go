package discovery

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/leozhansino-design/butternovel-mobile-sub002/errs"
	"github.com/leozhansino-design/butternovel-mobile-sub002/metrics"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultRefreshBatchSize   = 500
	DefaultRefreshConcurrency = 4
)

// RefreshStats summarizes a full hot score refresh.
type RefreshStats struct {
	Scanned int `json:"scanned"`
	Updated int `json:"updated"`
}

// Refresher recomputes cached hot scores.
type Refresher struct {
	store       ScoreStore
	batchSize   int
	concurrency int
	logger      zerolog.Logger
}

func NewRefresher(store ScoreStore, batchSize, concurrency int, logger zerolog.Logger) *Refresher {
	if batchSize <= 0 {
		batchSize = DefaultRefreshBatchSize
	}
	if concurrency <= 0 {
		concurrency = DefaultRefreshConcurrency
	}
	return &Refresher{
		store:       store,
		batchSize:   batchSize,
		concurrency: concurrency,
		logger:      logger.With().Str("component", "refresher").Logger(),
	}
}

// RefreshAll walks every novel in id order and rewrites the scores that
// changed. Writes within a batch run concurrently; the first failure cancels
// the rest and is returned.
func (r *Refresher) RefreshAll(ctx context.Context, now time.Time) (RefreshStats, error) {
	var (
		stats RefreshStats
		after uuid.UUID
	)

	for {
		batch, err := r.store.ListForScoring(ctx, after, r.batchSize)
		if err != nil {
			return stats, errs.NewDatabaseError("list", "novels", err)
		}
		if len(batch) == 0 {
			break
		}
		stats.Scanned += len(batch)
		after = batch[len(batch)-1].ID

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(r.concurrency)

		updated := make([]bool, len(batch))
		for i, novel := range batch {
			i, novel := i, novel
			score := HotScore(HotScoreInputFor(novel), now)
			if math.Abs(score-novel.HotScore) < scoreChangeEpsilon {
				continue
			}

			g.Go(func() error {
				if err := r.store.UpdateHotScore(gctx, novel.ID, score); err != nil {
					return err
				}
				updated[i] = true
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return stats, errs.NewDatabaseError("update", "hot score", err)
		}

		n := 0
		for _, ok := range updated {
			if ok {
				n++
			}
		}
		stats.Updated += n
		metrics.RecordHotScoreRefreshed(n)

		if len(batch) < r.batchSize {
			break
		}
	}

	r.logger.Info().
		Int("scanned", stats.Scanned).
		Int("updated", stats.Updated).
		Msg("hot scores refreshed")
	return stats, nil
}

// RefreshNovel recomputes and stores the hot score of one novel.
func (r *Refresher) RefreshNovel(ctx context.Context, id uuid.UUID, now time.Time) (float64, error) {
	novel, err := r.store.FindByID(ctx, id)
	if err != nil {
		return 0, errs.NewDatabaseError("find", "novel", err)
	}

	score := HotScore(HotScoreInputFor(*novel), now)
	if err := r.store.UpdateHotScore(ctx, id, score); err != nil {
		return 0, errs.NewDatabaseError("update", "hot score", err)
	}
	metrics.RecordHotScoreRefreshed(1)
	return score, nil
}
