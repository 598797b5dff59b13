// Package gitrepo inspects the git repository a dependency update runs in.
//
// RepositoryManager queries manifest status through the git executable, while
// ResolveRepositoryIdentity reads the remote configuration with go-git to find
// the owner and repository a pull request targets.
package gitrepo
