package downloader

import (
	"context"
	"io"
	"net/http"
	"time"

	errs "dydl/pkg/errors"
	"dydl/pkg/logger"
	"dydl/pkg/media"
	"dydl/pkg/retry"
)

// forbiddenPause is the courtesy pause after a 403 before trying the next
// candidate URL; the CDN rejects bursts against signed URLs
const forbiddenPause = 500 * time.Millisecond

// MediaFetcher fetches a media URL and returns the raw response
type MediaFetcher interface {
	GetMedia(ctx context.Context, url string) (*http.Response, error)
}

// FileStore persists downloaded files
type FileStore interface {
	Exists(path string) bool
	Save(path string, r io.Reader) error
}

// Engine acquires files from multi-candidate targets. Failures move on to
// the next candidate URL; the retry schedule is never re-run against the
// same URL here, that layer belongs to metadata fetches.
type Engine struct {
	fetcher MediaFetcher
	store   FileStore
	logger  logger.Logger
}

// NewEngine creates a file acquisition engine
func NewEngine(fetcher MediaFetcher, store FileStore, log logger.Logger) *Engine {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Engine{
		fetcher: fetcher,
		store:   store,
		logger:  log,
	}
}

// Download acquires one target. If the destination file already exists the
// download is skipped and counts as success. Otherwise candidates are
// tried in order until one streams to disk; exhausting all of them is an
// error and leaves nothing at the destination.
func (e *Engine) Download(ctx context.Context, target media.Target) error {
	if e.store.Exists(target.Path) {
		e.logger.DebugWithFields("file already exists, skipping", map[string]interface{}{
			"path": target.Path,
		})
		return nil
	}

	candidates := target.Candidates()
	var lastErr error

	for i, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return err
		}
		if candidate == "" {
			continue
		}

		start := time.Now()
		resp, err := e.fetcher.GetMedia(ctx, candidate)
		if err != nil {
			lastErr = err
			e.logger.WarnWithFields("media fetch failed, trying next candidate", map[string]interface{}{
				"url":       candidate,
				"candidate": i + 1,
				"of":        len(candidates),
				"error":     err.Error(),
			})
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			lastErr = errs.Newf(errs.ErrorTypeNetwork, "candidate returned status %d", resp.StatusCode)
			e.logger.WarnWithFields("candidate rejected", map[string]interface{}{
				"url":       candidate,
				"status":    resp.StatusCode,
				"candidate": i + 1,
				"of":        len(candidates),
			})

			if resp.StatusCode == http.StatusForbidden && i < len(candidates)-1 {
				if err := retry.Wait(ctx, forbiddenPause); err != nil {
					return err
				}
			}
			continue
		}

		err = e.store.Save(target.Path, resp.Body)
		resp.Body.Close()
		if err != nil {
			// A write failure is not the URL's fault; don't burn the
			// remaining candidates on a full disk
			return err
		}

		e.logger.InfoWithFields("file downloaded", map[string]interface{}{
			"path":     target.Path,
			"url":      candidate,
			"duration": time.Since(start),
		})
		return nil
	}

	if lastErr == nil {
		lastErr = errs.New(errs.ErrorTypeNetwork, "no candidate URLs to try")
	}
	return errs.Newf(errs.ErrorTypeNetwork, "all %d candidates failed: %v", len(candidates), lastErr)
}
