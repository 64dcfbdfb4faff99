// Package logger provides structured logging built on zerolog.
//
// A Logger interface hides the zerolog dependency from the rest of the
// codebase and makes log output assertable in tests via TestLogger. The
// package also maintains a global logger configured once at startup with
// Initialize, plus package-level convenience functions that delegate to it.
package logger
