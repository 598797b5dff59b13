// Package actions integrates dependency-update with the GitHub Actions runner.
//
// LoadEnvironment decodes the INPUT_* and GITHUB_* variables the runner
// exports, OutputWriter appends step outputs to the GITHUB_OUTPUT file,
// MaskSecrets registers the token with the runner's log masking, and
// GroupObserver folds each external command into a collapsible log group.
package actions
