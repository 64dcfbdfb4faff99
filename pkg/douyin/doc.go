// Package douyin implements the platform-facing layer: link classification
// and identifier extraction, API endpoint construction with the shared
// query parameter block and optional request signing, response models with
// tolerant decoding, and an HTTP client that owns the header set.
package douyin
