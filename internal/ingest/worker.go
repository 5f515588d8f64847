package ingest

import (
	"context"
	"errors"
	"time"

	"github.com/atlasindex/atlas/internal/gwclient"
	"github.com/atlasindex/atlas/internal/metrics"
	"github.com/atlasindex/atlas/internal/store"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Worker runs one stream's Init → Resume → [TipGuard ↔ FetchPage ↔
// Persist ↔ Advance] loop (spec §4.4) until ctx is cancelled or it hits a
// permanent error, which it returns to the caller (the supervisor) rather
// than retrying forever.
type Worker struct {
	Stream StreamConfig
	Client *gwclient.Client
	Store  *store.Store
	Logger zerolog.Logger

	isToken bool
}

// NewWorker constructs a Worker. isToken selects the token-stream backoff
// and advance-sleep tier (spec §4.4).
func NewWorker(stream StreamConfig, client *gwclient.Client, st *store.Store, logger zerolog.Logger, isToken bool) *Worker {
	return &Worker{
		Stream:  stream,
		Client:  client,
		Store:   st,
		Logger:  logger.With().Str("component", "ingest_worker").Str("stream", stream.Label).Logger(),
		isToken: isToken,
	}
}

// Run executes the worker's full loop. It returns nil only if ctx is
// cancelled; any other return is a permanent error for the supervisor to
// log (spec §4.4 "surface to supervisor; that worker terminates").
func (w *Worker) Run(ctx context.Context) error {
	height, cursor, err := w.resume(ctx)
	if err != nil {
		return err
	}

	for {
		if ctx.Err() != nil {
			return nil
		}

		height, err = w.tipGuard(ctx, height)
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return nil
		}

		nextCursor, err := w.runHeight(ctx, height, cursor)
		if err != nil {
			return err
		}
		cursor = ""

		if err := w.Store.StoreCursor(ctx, store.CursorState{
			StreamLabel:        w.Stream.Label,
			LastCompleteHeight: height,
			LastCursor:         nextCursor,
			UpdatedAt:          nowMillis(),
		}); err != nil {
			return err
		}
		metrics.CursorHeight.WithLabelValues(w.Stream.Label).Set(float64(height))

		if nextCursor == "" {
			height++
		} else {
			cursor = nextCursor
		}

		sleepCtx(ctx, w.advanceSleep())
	}
}

// resume implements spec §4.4 Resume.
func (w *Worker) resume(ctx context.Context) (height uint64, cursor string, err error) {
	cs, loadErr := w.Store.LoadCursor(ctx, w.Stream.Label)
	if errors.Is(loadErr, store.ErrNoCursor) {
		return w.Stream.Genesis, "", nil
	}
	if loadErr != nil {
		return 0, "", loadErr
	}

	tip, err := w.Client.FetchTipHeight(ctx)
	if err != nil {
		return 0, "", err
	}
	if cs.LastCompleteHeight > tip {
		clamped, err := w.Store.MaxIndexedHeight(ctx, w.Stream.Label)
		if err != nil {
			return 0, "", err
		}
		w.Logger.Warn().Uint64("stored_height", cs.LastCompleteHeight).Uint64("tip", tip).Uint64("clamped_to", clamped).Msg("tip regression detected, clamping cursor")
		return clamped, "", nil
	}

	if cs.LastCursor != "" {
		return cs.LastCompleteHeight, cs.LastCursor, nil
	}
	return cs.LastCompleteHeight + 1, "", nil
}

// tipGuard implements spec §4.4 TipGuard: refuse to consume within
// TipSafeGap blocks of the tip, the repo's weak reorg defense.
func (w *Worker) tipGuard(ctx context.Context, height uint64) (uint64, error) {
	for {
		tip, err := w.Client.FetchTipHeight(ctx)
		if err != nil {
			return height, err
		}
		safe := uint64(0)
		if tip > TipSafeGap {
			safe = tip - TipSafeGap
		}
		if height <= safe {
			return height, nil
		}
		w.Logger.Debug().Uint64("height", height).Uint64("tip", tip).Uint64("safe", safe).Msg("waiting for tip")
		if !sleepCtx(ctx, TipGuardSleep) {
			return height, nil
		}
	}
}

// runHeight drives every sub-query for height to completion (spec §4.4
// FetchPage/Persist; token streams run two sub-queries back to back).
// It returns the encoded resume cursor if the worker is interrupted
// mid-height by the caller's context, or "" once every sub-query has
// fully paginated through the height.
func (w *Worker) runHeight(ctx context.Context, height uint64, resumeCursor string) (string, error) {
	resumeSource, resumeCur := decodeCursor(resumeCursor)
	startIdx := 0
	if resumeSource != "" {
		for i, sq := range w.Stream.SubQueries {
			if sq.Source == resumeSource {
				startIdx = i
				break
			}
		}
	}

subQueries:
	for i := startIdx; i < len(w.Stream.SubQueries); i++ {
		sq := w.Stream.SubQueries[i]
		cursor := ""
		if i == startIdx {
			cursor = resumeCur
		}

		// One correlation id per page fetch, shared by all of its retries.
		attemptID := uuid.NewString()
		for {
			if ctx.Err() != nil {
				return encodeCursor(sq.Source, cursor), nil
			}

			page, err := w.Client.FetchMessages(ctx, sq.Build(height, cursor))
			if err != nil {
				switch gwclient.Classify(err) {
				case gwclient.OutcomeEmptyBlock:
					metrics.RetryCount.WithLabelValues(w.Stream.Label, "empty_block").Inc()
					continue subQueries
				case gwclient.OutcomeRateLimited:
					metrics.RetryCount.WithLabelValues(w.Stream.Label, "rate_limited").Inc()
					w.Logger.Debug().Str("attempt_id", attemptID).Msg("rate limited, retrying")
					if !sleepCtx(ctx, RateLimitedBackoff) {
						return encodeCursor(sq.Source, cursor), nil
					}
					continue
				case gwclient.OutcomeTransient:
					metrics.RetryCount.WithLabelValues(w.Stream.Label, "transient").Inc()
					w.Logger.Debug().Str("attempt_id", attemptID).Err(err).Msg("transient error, retrying")
					if !sleepCtx(ctx, w.transientBackoff()) {
						return encodeCursor(sq.Source, cursor), nil
					}
					continue
				default:
					return "", err
				}
			}

			metrics.PagesFetched.WithLabelValues(w.Stream.Label).Inc()
			ts := nowMillis()
			if err := w.Store.InsertMessages(ctx, w.Stream.Label, page.Messages, ts); err != nil {
				return "", err
			}
			if err := w.Store.InsertTags(ctx, w.Stream.Label, page.Messages, ts); err != nil {
				return "", err
			}

			if !page.HasNextPage || page.EndCursor == "" {
				continue subQueries
			}
			cursor = page.EndCursor
			attemptID = uuid.NewString()
			sleepCtx(ctx, w.pageSleep())
		}
	}
	return "", nil
}

func (w *Worker) transientBackoff() time.Duration {
	if w.isToken {
		return TokenTransientBackoff
	}
	return ProtocolTransientBackoff
}

func (w *Worker) advanceSleep() time.Duration {
	if w.isToken {
		return TokenPageSleep
	}
	return ProtocolAdvanceSleep
}

func (w *Worker) pageSleep() time.Duration {
	if w.isToken {
		return TokenPageSleep
	}
	return 0
}

// sleepCtx sleeps for d unless ctx is cancelled first; returns false if
// interrupted.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func nowMillis() uint64 {
	return uint64(time.Now().UnixMilli())
}
