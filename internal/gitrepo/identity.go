package gitrepo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5"
)

const (
	defaultRemoteNameConstant             = "origin"
	repositoryOpenFailureTemplateConstant = "failed to open git repository at %s: %w"
	remoteLookupFailureTemplateConstant   = "failed to read remote %q: %w"
	remoteWithoutURLTemplateConstant      = "remote %q has no URL: %w"
)

// ErrRemoteURLMissing indicates the remote exists but declares no URL.
var ErrRemoteURLMissing = errors.New("remote url missing")

// ResolveRepositoryIdentity opens the repository containing path (searching parent directories)
// and parses the first URL of the named remote. An empty remote name selects "origin".
func ResolveRepositoryIdentity(path string, remoteName string) (RemoteURL, error) {
	trimmedRemoteName := strings.TrimSpace(remoteName)
	if len(trimmedRemoteName) == 0 {
		trimmedRemoteName = defaultRemoteNameConstant
	}

	repository, openError := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if openError != nil {
		return RemoteURL{}, fmt.Errorf(repositoryOpenFailureTemplateConstant, path, openError)
	}

	remote, remoteError := repository.Remote(trimmedRemoteName)
	if remoteError != nil {
		return RemoteURL{}, fmt.Errorf(remoteLookupFailureTemplateConstant, trimmedRemoteName, remoteError)
	}

	remoteURLs := remote.Config().URLs
	if len(remoteURLs) == 0 {
		return RemoteURL{}, fmt.Errorf(remoteWithoutURLTemplateConstant, trimmedRemoteName, ErrRemoteURLMissing)
	}

	return ParseRemoteURL(remoteURLs[0])
}
