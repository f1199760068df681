// Package flags provides helpers for binding standardized flags to Cobra commands.
package flags
