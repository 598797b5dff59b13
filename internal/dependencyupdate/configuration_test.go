package dependencyupdate_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/depupdate/internal/dependencyupdate"
)

func TestDefaultConfigurationValues(t *testing.T) {
	defaults := dependencyupdate.DefaultConfigurationValues("tools.update")

	require.Equal(t, "npm", defaults["tools.update.ecosystem"])
	require.Equal(t, "origin", defaults["tools.update.remote"])
	require.Equal(t, "api", defaults["tools.update.pull_request_client"])
	require.Equal(t, "gh-automation", defaults["tools.update.committer_name"])
	require.Equal(t, "gh-automation@email.com", defaults["tools.update.committer_email"])
	require.Contains(t, defaults, "tools.update.working_directory")
	require.NotContains(t, defaults, "tools.update.token")
}

func TestCommandConfigurationSanitize(t *testing.T) {
	sanitized := dependencyupdate.CommandConfiguration{
		BaseBranch:        " main ",
		Ecosystem:         " YARN ",
		ManifestFiles:     []string{" package.json ", " ", "yarn.lock"},
		PullRequestClient: " CLI ",
	}.Sanitize()

	require.Equal(t, "main", sanitized.BaseBranch)
	require.Equal(t, "yarn", sanitized.Ecosystem)
	require.Equal(t, []string{"package.json", "yarn.lock"}, sanitized.ManifestFiles)
	require.Equal(t, "cli", sanitized.PullRequestClient)
	require.Nil(t, sanitized.UpdateArguments)
}
