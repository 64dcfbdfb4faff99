package scraper

import (
	"context"
	"time"

	"dydl/internal/downloader"
	"dydl/pkg/config"
	"dydl/pkg/dedup"
	"dydl/pkg/douyin"
	errs "dydl/pkg/errors"
	"dydl/pkg/logger"
	"dydl/pkg/media"
	"dydl/pkg/ratelimit"
	"dydl/pkg/retry"
	"dydl/pkg/stats"
	"dydl/pkg/storage"
)

// imagePause is the courtesy gap between the images of one image post
const imagePause = 300 * time.Millisecond

// Scraper orchestrates a run: classify each link, enumerate or fetch,
// download, record. Everything happens on the calling goroutine.
type Scraper struct {
	cfg     *config.Config
	client  Client
	engine  *downloader.Engine
	files   *storage.Manager
	store   dedup.Store
	limiter *ratelimit.Limiter
	retrier *retry.Retrier
	tracker *stats.Tracker
	window  TimeWindow
	logger  logger.Logger
}

// New wires a scraper from configuration. The caller owns the client;
// Close releases the dedup store.
func New(cfg *config.Config, client Client, log logger.Logger) (*Scraper, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	files, err := storage.NewManager(cfg.Output.BaseDirectory)
	if err != nil {
		return nil, err
	}

	var store dedup.Store
	if cfg.Database.Enabled {
		store, err = dedup.NewSQLiteStore(cfg.DatabasePath())
		if err != nil {
			return nil, err
		}
	} else {
		store = dedup.NewMemoryStore()
	}

	start, end, err := cfg.Window.Bounds()
	if err != nil {
		store.Close()
		return nil, err
	}

	retrier := retry.NewRetrier(&retry.Config{
		MaxAttempts: cfg.Retry.MaxAttempts,
		Backoff:     retry.DefaultScheduleBackoff(),
		RetryIf:     retry.DefaultRetryIf,
		OnRetry: func(attempt int, err error, _ time.Duration) {
			logger.LogRetry(log, "api request", attempt, err)
		},
		Context: context.Background(),
		Logger:  log,
	})

	return &Scraper{
		cfg:     cfg,
		client:  client,
		engine:  downloader.NewEngine(client, files, log),
		files:   files,
		store:   store,
		limiter: ratelimit.New(cfg.RateLimit.RequestsPerSecond),
		retrier: retrier,
		tracker: stats.NewTracker(),
		window:  TimeWindow{Start: start, End: end},
		logger:  log,
	}, nil
}

// Close releases held resources
func (s *Scraper) Close() error {
	return s.store.Close()
}

// Run processes every link sequentially. A failing link is logged and the
// run moves on; only cancellation aborts the whole run. The returned
// snapshot covers everything processed.
func (s *Scraper) Run(ctx context.Context, links []string) (stats.Snapshot, error) {
	for _, link := range links {
		if err := ctx.Err(); err != nil {
			return s.tracker.Snapshot(), err
		}

		s.logger.InfoWithFields("processing link", map[string]interface{}{"link": link})
		before := s.tracker.Snapshot().Total
		if err := s.processLink(ctx, link); err != nil {
			if ctx.Err() != nil {
				return s.tracker.Snapshot(), ctx.Err()
			}
			// A link that failed before yielding any item would otherwise
			// leave no trace in the stats
			if s.tracker.Snapshot().Total == before {
				s.tracker.AddFailed()
			}
			s.logger.ErrorWithFields("link failed", map[string]interface{}{
				"link":  link,
				"error": err.Error(),
			})
		}
	}
	return s.tracker.Snapshot(), nil
}

func (s *Scraper) processLink(ctx context.Context, link string) error {
	resolved := link
	if douyin.IsShortURL(link) {
		if err := s.limiter.Acquire(ctx); err != nil {
			return err
		}
		resolved = s.client.ResolveShortURL(ctx, link)
	}

	ref, err := douyin.Classify(link, resolved)
	if err != nil {
		return err
	}

	s.logger.InfoWithFields("link classified", map[string]interface{}{
		"type": string(ref.Type),
		"id":   ref.ID,
	})

	switch ref.Type {
	case douyin.ContentVideo, douyin.ContentNote:
		return s.processSingle(ctx, ref.ID)
	case douyin.ContentUser:
		return s.processUser(ctx, ref.ID)
	case douyin.ContentMix:
		return s.walkMix(ctx, ref.ID)
	case douyin.ContentMusic:
		return s.walkMusic(ctx, ref.ID)
	default:
		return errs.Newf(errs.ErrorTypeClassification, "unhandled content type %s", ref.Type)
	}
}

// processSingle fetches and downloads one directly linked item
func (s *Scraper) processSingle(ctx context.Context, awemeID string) error {
	if err := s.limiter.Acquire(ctx); err != nil {
		return err
	}

	var item *douyin.Item
	err := s.retrier.WithContext(ctx).Do(func() error {
		it, err := s.client.FetchDetail(ctx, awemeID)
		if err == nil {
			item = it
		}
		return err
	})
	if err != nil {
		s.tracker.AddFailed()
		return err
	}

	key := dedup.Key{Scope: dedup.ScopePost, OwnerID: item.Author.SecUID, ItemID: item.AwemeID}
	if s.cfg.ScopeIncremental("post") {
		if done, derr := s.store.IsDone(key); derr == nil && done {
			s.logger.InfoWithFields("item already acquired, skipping", map[string]interface{}{
				"item_id": item.AwemeID,
			})
			s.tracker.AddSkipped()
			return nil
		}
	}

	return s.downloadItem(ctx, item, key)
}

// processUser enumerates every configured scope of a user
func (s *Scraper) processUser(ctx context.Context, secUID string) error {
	var lastErr error
	for _, scope := range s.cfg.Scopes {
		var err error
		switch scope {
		case "post":
			err = s.walkUserPosts(ctx, secUID)
		case "like":
			err = s.walkUserLikes(ctx, secUID)
		case "mix":
			err = s.walkUserMixes(ctx, secUID)
		case "music":
			s.logger.DebugWithFields("music scope applies to music links only", map[string]interface{}{
				"sec_uid": secUID,
			})
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.ErrorWithFields("scope enumeration failed", map[string]interface{}{
				"scope":   scope,
				"sec_uid": secUID,
				"error":   err.Error(),
			})
			lastErr = err
		}
	}
	return lastErr
}

func (s *Scraper) newWalker(scope dedup.Scope, ownerID string, window TimeWindow, limit int, incremental bool) *Walker {
	var store dedup.Store
	if incremental {
		store = s.store
	}
	return &Walker{
		Limiter:  s.limiter,
		Retrier:  s.retrier,
		Store:    store,
		Scope:    scope,
		OwnerID:  ownerID,
		Window:   window,
		MaxItems: limit,
		Logger:   s.logger,
		OnSkip:   func(*douyin.Item) { s.tracker.AddSkipped() },
	}
}

func (s *Scraper) walkUserPosts(ctx context.Context, secUID string) error {
	w := s.newWalker(dedup.ScopePost, secUID, s.window,
		s.cfg.ScopeLimit("post"), s.cfg.ScopeIncremental("post"))

	fetch := func(ctx context.Context, cursor int64) (*Page, error) {
		r, err := s.client.FetchUserPosts(ctx, secUID, cursor)
		if err != nil {
			return nil, err
		}
		return &Page{Items: r.AwemeList, Cursor: r.MaxCursor, HasMore: bool(r.HasMore)}, nil
	}

	return w.Walk(ctx, fetch, func(ctx context.Context, item *douyin.Item) error {
		return s.downloadItem(ctx, item, dedup.Key{Scope: dedup.ScopePost, OwnerID: secUID, ItemID: item.AwemeID})
	})
}

func (s *Scraper) walkUserLikes(ctx context.Context, secUID string) error {
	w := s.newWalker(dedup.ScopeLike, secUID, s.window,
		s.cfg.ScopeLimit("like"), s.cfg.ScopeIncremental("like"))

	fetch := func(ctx context.Context, cursor int64) (*Page, error) {
		r, err := s.client.FetchUserFavorites(ctx, secUID, cursor)
		if err != nil {
			return nil, err
		}
		return &Page{Items: r.AwemeList, Cursor: r.MaxCursor, HasMore: bool(r.HasMore)}, nil
	}

	return w.Walk(ctx, fetch, func(ctx context.Context, item *douyin.Item) error {
		return s.downloadItem(ctx, item, dedup.Key{Scope: dedup.ScopeLike, OwnerID: secUID, ItemID: item.AwemeID})
	})
}

// walkUserMixes enumerates the collections a user owns, then walks each
// in full. The allmix limit caps how many collections are walked, not how
// many items come out of one.
func (s *Scraper) walkUserMixes(ctx context.Context, secUID string) error {
	limit := s.cfg.ScopeLimit("mix")
	walked := 0

	var cursor int64
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.limiter.Acquire(ctx); err != nil {
			return err
		}

		var resp *douyin.MixListResponse
		err := s.retrier.WithContext(ctx).Do(func() error {
			r, err := s.client.FetchUserMixes(ctx, secUID, cursor)
			if err == nil {
				resp = r
			}
			return err
		})
		if err != nil {
			return err
		}

		for _, mix := range resp.MixInfos {
			s.logger.InfoWithFields("walking collection", map[string]interface{}{
				"mix_id":   mix.MixID,
				"mix_name": mix.MixName,
			})
			if err := s.walkMix(ctx, mix.MixID); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				s.logger.ErrorWithFields("collection walk failed", map[string]interface{}{
					"mix_id": mix.MixID,
					"error":  err.Error(),
				})
			}
			walked++
			if limit > 0 && walked >= limit {
				s.logger.InfoWithFields("collection limit reached", map[string]interface{}{
					"limit": limit,
				})
				return nil
			}
		}

		if !bool(resp.HasMore) || len(resp.MixInfos) == 0 {
			return nil
		}
		cursor = resp.Cursor
	}
}

// walkMix enumerates one collection whole. Neither the time window nor an
// item limit applies: collections are curated sets, not a publish feed.
func (s *Scraper) walkMix(ctx context.Context, mixID string) error {
	w := s.newWalker(dedup.ScopeMix, mixID, TimeWindow{},
		0, s.cfg.ScopeIncremental("mix"))

	fetch := func(ctx context.Context, cursor int64) (*Page, error) {
		r, err := s.client.FetchMixItems(ctx, mixID, cursor)
		if err != nil {
			return nil, err
		}
		return &Page{Items: r.AwemeList, Cursor: r.Cursor, HasMore: bool(r.HasMore)}, nil
	}

	return w.Walk(ctx, fetch, func(ctx context.Context, item *douyin.Item) error {
		return s.downloadItem(ctx, item, dedup.Key{Scope: dedup.ScopeMix, OwnerID: mixID, ItemID: item.AwemeID})
	})
}

// walkMusic enumerates the items using a piece of music
func (s *Scraper) walkMusic(ctx context.Context, musicID string) error {
	w := s.newWalker(dedup.ScopeMusic, musicID, TimeWindow{},
		s.cfg.ScopeLimit("music"), s.cfg.ScopeIncremental("music"))

	fetch := func(ctx context.Context, cursor int64) (*Page, error) {
		r, err := s.client.FetchMusicItems(ctx, musicID, cursor)
		if err != nil {
			return nil, err
		}
		return &Page{Items: r.AwemeList, Cursor: r.Cursor, HasMore: bool(r.HasMore)}, nil
	}

	return w.Walk(ctx, fetch, func(ctx context.Context, item *douyin.Item) error {
		return s.downloadItem(ctx, item, dedup.Key{Scope: dedup.ScopeMusic, OwnerID: musicID, ItemID: item.AwemeID})
	})
}

// downloadItem acquires every file of one item, writes the metadata
// sidecar, and records the item as done. The dedup mark only happens
// after all files landed.
func (s *Scraper) downloadItem(ctx context.Context, item *douyin.Item, key dedup.Key) error {
	dir, folder, err := s.files.ItemDir(item.Author.Nickname, item.CreateTime.Time, item.Desc)
	if err != nil {
		s.tracker.AddFailed()
		return err
	}

	targets := media.Targets(item, dir, folder, media.Options{
		Audio: s.cfg.Download.Audio,
		Cover: s.cfg.Download.Cover,
	})
	if len(targets) == 0 {
		s.tracker.AddFailed()
		return errs.Newf(errs.ErrorTypeParsing, "item %s has no downloadable media", item.AwemeID)
	}

	pacedImages := item.Kind() == douyin.KindImages
	for i, target := range targets {
		if pacedImages && i > 0 {
			if err := retry.Wait(ctx, imagePause); err != nil {
				return err
			}
		}
		start := time.Now()
		if err := s.engine.Download(ctx, target); err != nil {
			logger.LogDownload(s.logger, item.AwemeID, target.Path, false, time.Since(start))
			s.tracker.AddFailed()
			return err
		}
		logger.LogDownload(s.logger, item.AwemeID, target.Path, true, time.Since(start))
	}

	if s.cfg.Download.Metadata && len(item.Raw) > 0 {
		if err := s.files.SaveMetadata(dir, storage.SidecarName(folder), item.Raw); err != nil {
			s.logger.WarnWithFields("failed to write metadata sidecar", map[string]interface{}{
				"item_id": item.AwemeID,
				"error":   err.Error(),
			})
		}
	}

	if err := s.store.MarkDone(key, item.Raw); err != nil {
		s.logger.WarnWithFields("failed to record item in dedup store", map[string]interface{}{
			"item_id": item.AwemeID,
			"error":   err.Error(),
		})
	}

	s.tracker.AddSuccess()
	s.logger.InfoWithFields("item acquired", map[string]interface{}{
		"item_id": item.AwemeID,
		"kind":    item.Kind().String(),
		"files":   len(targets),
		"dir":     dir,
	})
	return nil
}
