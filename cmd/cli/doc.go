// Package cli constructs the prsync command-line interface, wiring the Cobra
// command hierarchy, the Viper-backed configuration loader, and zap logging.
// Execute builds a fresh Application and runs it against the process
// arguments.
package cli
