// Package githubcli opens pull requests through the GitHub CLI.
//
// It runs "gh pr create" via execshell, handing the token to gh in the child
// process environment only, so tests can substitute a stub executor.
package githubcli
