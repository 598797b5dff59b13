package gitrepo

import (
	"fmt"
	"strings"
)

const (
	sshProtocolPrefixConstant           = "ssh://"
	sshUserDelimiterConstant            = "@"
	sshPathDelimiterConstant            = ":"
	httpsProtocolPrefixConstant         = "https://"
	httpProtocolPrefixConstant          = "http://"
	gitUserPrefixConstant               = "git@"
	pathSeparatorConstant               = "/"
	gitSuffixConstant                   = ".git"
	remoteURLParseErrorTemplateConstant = "%s: %s"
	requiredValueMessageConstant        = "value required"
	invalidRemoteURLMessageConstant     = "invalid remote url"
	invalidFullNameMessageConstant      = "expected owner/repository"
	redactedCredentialsConstant         = "***"
)

// RemoteProtocol enumerates supported git remote protocols.
type RemoteProtocol string

// Supported remote protocols.
const (
	RemoteProtocolSSH   RemoteProtocol = RemoteProtocol("ssh")
	RemoteProtocolHTTPS RemoteProtocol = RemoteProtocol("https")
)

// RemoteURL represents a structured git remote URL.
type RemoteURL struct {
	Protocol   RemoteProtocol
	Host       string
	Owner      string
	Repository string
}

// FullName renders the owner/repository pair.
func (remote RemoteURL) FullName() string {
	return remote.Owner + pathSeparatorConstant + remote.Repository
}

// RemoteURLParseError indicates a remote string could not be parsed.
// Input never includes credentials embedded in an HTTPS remote.
type RemoteURLParseError struct {
	Input   string
	Message string
}

// Error describes the parse failure.
func (parseError RemoteURLParseError) Error() string {
	return fmt.Sprintf(remoteURLParseErrorTemplateConstant, parseError.Input, parseError.Message)
}

// ParseRemoteURL converts a textual remote URL into a structured representation.
// SSH (ssh:// and scp-like git@host:owner/repo) and HTTP(S) remotes are accepted;
// HTTP(S) remotes may carry user info, as written by token-authenticated checkouts.
func ParseRemoteURL(remote string) (RemoteURL, error) {
	trimmedRemote := strings.TrimSpace(remote)
	if len(trimmedRemote) == 0 {
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: requiredValueMessageConstant}
	}

	switch {
	case strings.HasPrefix(trimmedRemote, sshProtocolPrefixConstant):
		return parseSSHRemote(strings.TrimPrefix(trimmedRemote, sshProtocolPrefixConstant))
	case strings.HasPrefix(trimmedRemote, gitUserPrefixConstant):
		return parseSSHRemote(trimmedRemote)
	case strings.HasPrefix(trimmedRemote, httpsProtocolPrefixConstant):
		return parseHTTPSRemote(strings.TrimPrefix(trimmedRemote, httpsProtocolPrefixConstant))
	case strings.HasPrefix(trimmedRemote, httpProtocolPrefixConstant):
		return parseHTTPSRemote(strings.TrimPrefix(trimmedRemote, httpProtocolPrefixConstant))
	default:
		return RemoteURL{}, RemoteURLParseError{Input: trimmedRemote, Message: invalidRemoteURLMessageConstant}
	}
}

// ParseRepositoryFullName splits an "owner/repository" value such as GITHUB_REPOSITORY.
func ParseRepositoryFullName(fullName string) (string, string, error) {
	trimmedFullName := strings.Trim(strings.TrimSpace(fullName), pathSeparatorConstant)
	owner, repository, found := strings.Cut(trimmedFullName, pathSeparatorConstant)
	repository = strings.TrimSuffix(repository, gitSuffixConstant)
	if !found || len(owner) == 0 || len(repository) == 0 || strings.Contains(repository, pathSeparatorConstant) {
		return "", "", RemoteURLParseError{Input: fullName, Message: invalidFullNameMessageConstant}
	}
	return owner, repository, nil
}

func parseSSHRemote(remote string) (RemoteURL, error) {
	userSplitIndex := strings.Index(remote, sshUserDelimiterConstant)
	if userSplitIndex == -1 {
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: invalidRemoteURLMessageConstant}
	}
	hostAndPath := remote[userSplitIndex+1:]

	separatorIndex := strings.Index(hostAndPath, sshPathDelimiterConstant)
	if separatorIndex == -1 {
		separatorIndex = strings.Index(hostAndPath, pathSeparatorConstant)
	}
	if separatorIndex <= 0 {
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: invalidRemoteURLMessageConstant}
	}

	owner, repository, parseError := ParseRepositoryFullName(hostAndPath[separatorIndex+1:])
	if parseError != nil {
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: invalidRemoteURLMessageConstant}
	}
	return RemoteURL{Protocol: RemoteProtocolSSH, Host: hostAndPath[:separatorIndex], Owner: owner, Repository: repository}, nil
}

func parseHTTPSRemote(remote string) (RemoteURL, error) {
	hostAndPath := remote
	displayInput := remote
	if credentialsIndex := strings.LastIndex(remote, sshUserDelimiterConstant); credentialsIndex >= 0 {
		hostAndPath = remote[credentialsIndex+1:]
		displayInput = redactedCredentialsConstant + sshUserDelimiterConstant + hostAndPath
	}

	host, path, found := strings.Cut(hostAndPath, pathSeparatorConstant)
	if !found || len(host) == 0 {
		return RemoteURL{}, RemoteURLParseError{Input: displayInput, Message: invalidRemoteURLMessageConstant}
	}

	owner, repository, parseError := ParseRepositoryFullName(path)
	if parseError != nil {
		return RemoteURL{}, RemoteURLParseError{Input: displayInput, Message: invalidRemoteURLMessageConstant}
	}
	return RemoteURL{Protocol: RemoteProtocolHTTPS, Host: host, Owner: owner, Repository: repository}, nil
}
