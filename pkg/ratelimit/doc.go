// Package ratelimit paces outbound requests with a token bucket of burst 1,
// which degenerates to a simple minimum-interval guarantee: N acquisitions
// take at least (N-1) intervals. Acquire suspends the caller, it never
// rejects, so callers need no retry logic around pacing.
package ratelimit
