// Package media resolves feed items into download targets. All URL
// heuristics (watermark-free rewrites, quality preference, candidate
// ordering) live here so the acquisition engine stays a dumb iterator.
package media
