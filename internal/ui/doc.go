// Package ui renders human-readable console output.
//
// ConsoleCommandEventLogger turns command lifecycle events into concise
// messages while detailed telemetry continues to flow through structured
// loggers. StatusPrinter writes the per pull request status lines and the
// pass summary to standard output.
package ui
