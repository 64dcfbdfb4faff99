package scraper

import (
	"context"
	"time"

	"dydl/pkg/dedup"
	"dydl/pkg/douyin"
	"dydl/pkg/logger"
	"dydl/pkg/ratelimit"
	"dydl/pkg/retry"
)

// Page is one slice of a remote collection
type Page struct {
	Items   []douyin.Item
	Cursor  int64
	HasMore bool
}

// FetchPage fetches the page at the given cursor. The cursor is opaque;
// the walker only carries it from one response to the next request.
type FetchPage func(ctx context.Context, cursor int64) (*Page, error)

// Handler processes one enumerated item. A nil return counts the item
// toward the walk's limit; an error does not stop the walk.
type Handler func(ctx context.Context, item *douyin.Item) error

// TimeWindow restricts enumeration to items published inside a range.
// Zero bounds are open; items with no parseable publish time pass.
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether a publish time falls inside the window
func (w TimeWindow) Contains(ts time.Time) bool {
	if ts.IsZero() {
		return true
	}
	if !w.Start.IsZero() && ts.Before(w.Start) {
		return false
	}
	if !w.End.IsZero() && ts.After(w.End) {
		return false
	}
	return true
}

// Walker drives a paginated enumeration: rate-limit, fetch with retries,
// dedup-skip, time-filter, hand to the handler, advance the cursor. One
// walker works for every scope; only the fetch closure differs.
type Walker struct {
	Limiter *ratelimit.Limiter
	Retrier *retry.Retrier
	// Store is consulted before the handler runs; nil disables dedup
	Store   dedup.Store
	Scope   dedup.Scope
	OwnerID string
	Window  TimeWindow
	// MaxItems caps successfully handled items; 0 means unlimited
	MaxItems int
	Logger   logger.Logger
	// OnSkip is called for every item skipped by the dedup check
	OnSkip func(item *douyin.Item)
}

// Walk enumerates until the collection is exhausted, the limit is
// reached, or a page fetch fails after retries.
func (w *Walker) Walk(ctx context.Context, fetch FetchPage, handle Handler) error {
	log := w.Logger
	if log == nil {
		log = logger.GetLogger()
	}

	var cursor int64
	handled := 0

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		waitStart := time.Now()
		if err := w.Limiter.Acquire(ctx); err != nil {
			return err
		}
		logger.LogRateLimit(log, string(w.Scope), time.Since(waitStart))

		var page *Page
		err := w.Retrier.WithContext(ctx).Do(func() error {
			p, err := fetch(ctx, cursor)
			if err == nil {
				page = p
			}
			return err
		})
		if err != nil {
			log.ErrorWithFields("page fetch failed, ending enumeration", map[string]interface{}{
				"scope":  string(w.Scope),
				"owner":  w.OwnerID,
				"cursor": cursor,
				"error":  err.Error(),
			})
			return err
		}

		logger.LogPage(log, string(w.Scope), w.OwnerID, len(page.Items), page.Cursor, page.HasMore)

		for i := range page.Items {
			item := &page.Items[i]

			if w.Store != nil {
				done, derr := w.Store.IsDone(dedup.Key{Scope: w.Scope, OwnerID: w.OwnerID, ItemID: item.AwemeID})
				if derr != nil {
					log.WarnWithFields("dedup check failed, treating as new", map[string]interface{}{
						"item_id": item.AwemeID,
						"error":   derr.Error(),
					})
				} else if done {
					logger.LogSkip(log, item.AwemeID, "already acquired")
					if w.OnSkip != nil {
						w.OnSkip(item)
					}
					continue
				}
			}

			if !w.Window.Contains(item.CreateTime.Time) {
				log.DebugWithFields("item outside time window, skipping", map[string]interface{}{
					"item_id":      item.AwemeID,
					"publish_time": item.CreateTime.Time,
				})
				continue
			}

			if err := handle(ctx, item); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				log.WarnWithFields("item handler failed", map[string]interface{}{
					"item_id": item.AwemeID,
					"error":   err.Error(),
				})
				continue
			}
			handled++

			if w.MaxItems > 0 && handled >= w.MaxItems {
				log.InfoWithFields("item limit reached", map[string]interface{}{
					"scope": string(w.Scope),
					"limit": w.MaxItems,
				})
				return nil
			}
		}

		// A page with no items ends the walk even if has_more claims
		// otherwise; the API does that near the end of long feeds
		if !page.HasMore || len(page.Items) == 0 {
			return nil
		}
		cursor = page.Cursor
	}
}
