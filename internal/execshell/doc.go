// Package execshell provides structured helpers for invoking external tools.
//
// It wraps os/exec through ShellExecutor, exposes OSCommandRunner for default
// process execution, and reports command lifecycle events to observers so that
// gh calls stay testable and visible in the logs.
package execshell
