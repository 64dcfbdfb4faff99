// Package dedup tracks which items have already been fully acquired, keyed
// by (scope, owner, item). It backs incremental runs: enumeration still
// walks every page, but completed items are skipped before any download.
package dedup
