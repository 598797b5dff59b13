// Package githubauth resolves the GitHub token used for pushes and pull requests.
package githubauth

import (
	"strings"

	"github.com/sethvargo/go-envconfig"
)

// Environment variable names consulted for a GitHub token, in preference order.
const (
	EnvActionInputToken = "INPUT_GH_TOKEN"
	EnvGitHubCLIToken   = "GH_TOKEN"
	EnvGitHubToken      = "GITHUB_TOKEN"
	EnvGitHubAPIToken   = "GITHUB_API_TOKEN"
)

var tokenPreference = []string{
	EnvActionInputToken,
	EnvGitHubCLIToken,
	EnvGitHubToken,
	EnvGitHubAPIToken,
}

// ResolveToken returns the explicit token when it is non-blank, otherwise the
// first non-blank token found through lookuper, otherwise "". A nil lookuper
// reads the process environment.
func ResolveToken(explicitToken string, lookuper envconfig.Lookuper) string {
	if trimmedToken := strings.TrimSpace(explicitToken); len(trimmedToken) > 0 {
		return trimmedToken
	}
	if lookuper == nil {
		lookuper = envconfig.OsLookuper()
	}
	for _, key := range tokenPreference {
		value, exists := lookuper.Lookup(key)
		if !exists {
			continue
		}
		value = strings.TrimSpace(value)
		if len(value) > 0 {
			return value
		}
	}
	return ""
}
