// Package retry implements configurable retry logic with pluggable backoff
// strategies. Retries re-run the exact same operation; choosing a different
// URL or endpoint after a failure is fallback, which lives with the callers.
package retry
