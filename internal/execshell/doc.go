// Package execshell provides structured helpers for invoking external tools.
//
// ShellExecutor wraps a CommandRunner with zap lifecycle logging and turns
// non-zero exits into CommandFailedError. OSCommandRunner is the os/exec
// backed runner used to drive git, gh, and package managers such as npm.
package execshell
