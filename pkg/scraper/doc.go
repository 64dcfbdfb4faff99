// Package scraper composes the run: a generic pagination walker that
// rate-limits, retries, dedups and time-filters every scope the same way,
// and an orchestrator that classifies input links and drives downloads
// strictly sequentially.
package scraper
