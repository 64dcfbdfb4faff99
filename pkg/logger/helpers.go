package logger

import "time"

// LogDownload logs a media file download event
func LogDownload(log Logger, itemID, path string, success bool, duration time.Duration) {
	if log == nil {
		log = GetLogger()
	}
	fields := map[string]interface{}{
		"item_id":  itemID,
		"path":     path,
		"success":  success,
		"duration": duration,
	}
	if success {
		log.InfoWithFields("File downloaded", fields)
	} else {
		log.ErrorWithFields("Download failed", fields)
	}
}

// LogRateLimit logs time spent waiting on the rate limiter
func LogRateLimit(log Logger, scope string, waited time.Duration) {
	if log == nil {
		log = GetLogger()
	}
	log.DebugWithFields("Rate limit wait", map[string]interface{}{
		"scope":  scope,
		"waited": waited,
	})
}

// LogPage logs a fetched enumeration page
func LogPage(log Logger, scope, ownerID string, count int, cursor int64, hasMore bool) {
	if log == nil {
		log = GetLogger()
	}
	log.DebugWithFields("Page fetched", map[string]interface{}{
		"scope":    scope,
		"owner_id": ownerID,
		"count":    count,
		"cursor":   cursor,
		"has_more": hasMore,
	})
}

// LogRetry logs retry attempts
func LogRetry(log Logger, operation string, attempt int, err error) {
	if log == nil {
		log = GetLogger()
	}
	log.WarnWithFields("Retrying operation", map[string]interface{}{
		"operation": operation,
		"attempt":   attempt,
		"error":     err.Error(),
	})
}

// LogSkip logs an item skipped by dedup or idempotence checks
func LogSkip(log Logger, itemID, reason string) {
	if log == nil {
		log = GetLogger()
	}
	log.DebugWithFields("Item skipped", map[string]interface{}{
		"item_id": itemID,
		"reason":  reason,
	})
}
