// Package dependencyupdate runs the package manager update for a working
// directory and, when the manifest files changed, publishes the result as a
// pull request.
//
// Service validates inputs, runs the update, and inspects git status.
// Publisher performs the git mutations and opens the pull request. Neither
// retries or rolls back: the first failure ends the run.
package dependencyupdate
