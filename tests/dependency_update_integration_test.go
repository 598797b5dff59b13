package tests

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	integrationRemoteDirectoryNameConstant  = "remote.git"
	integrationLocalDirectoryNameConstant   = "workspace"
	integrationFakeToolsDirectoryConstant   = "fake_bin"
	integrationApplicationDirectoryConstant = "app"
	integrationManifestFileNameConstant     = "package.json"
	integrationInitialManifestConstant      = "{\"name\":\"app\",\"dependencies\":{\"left-pad\":\"1.0.0\"}}\n"
	integrationUpdatedManifestConstant      = "{\"name\":\"app\",\"dependencies\":{\"left-pad\":\"1.3.0\"}}\n"
	integrationMainBranchConstant           = "main"
	integrationHeadBranchConstant           = "update-deps-1700000000"
	integrationRepositoryConstant           = "octo/app"
	integrationPullRequestURLConstant       = "https://github.com/octo/app/pull/42"
	integrationTokenConstant                = "ghs_integration_secret_value"
	integrationUserNameConstant             = "Integration Tester"
	integrationUserEmailConstant            = "tester@example.com"
	integrationFakeNPMUpdatingTemplate      = "#!/bin/sh\ncat > package.json <<'JSON'\n%sJSON\n"
	integrationFakeNPMNoopScript            = "#!/bin/sh\nexit 0\n"
	integrationFakeGHScriptTemplate         = "#!/bin/sh\necho \"$@\" > \"%s\"\necho \"token=$GH_TOKEN\" >> \"%s\"\necho %s\n"
	integrationFakeGHFailingTemplate        = "#!/bin/sh\necho \"$@\" > \"%s\"\necho 'GraphQL: Resource not accessible by integration (createPullRequest)' >&2\nexit 1\n"
	integrationAddMaskLineConstant          = "::add-mask::" + integrationTokenConstant + "\n"
	integrationGHLogFileNameConstant        = "gh.log"
	integrationOutputFileNameConstant       = "github_output"
)

type integrationWorkspace struct {
	root           string
	repositoryPath string
	remotePath     string
	toolsPath      string
	outputPath     string
	ghLogPath      string
}

func newIntegrationWorkspace(testInstance *testing.T, npmScript string) integrationWorkspace {
	testInstance.Helper()

	temporaryRoot := testInstance.TempDir()
	workspace := integrationWorkspace{
		root:           temporaryRoot,
		repositoryPath: filepath.Join(temporaryRoot, integrationLocalDirectoryNameConstant),
		remotePath:     filepath.Join(temporaryRoot, integrationRemoteDirectoryNameConstant),
		toolsPath:      filepath.Join(temporaryRoot, integrationFakeToolsDirectoryConstant),
		outputPath:     filepath.Join(temporaryRoot, integrationOutputFileNameConstant),
		ghLogPath:      filepath.Join(temporaryRoot, integrationGHLogFileNameConstant),
	}

	runGitCommand(testInstance, temporaryRoot, "init", "--bare", workspace.remotePath)
	runGitCommand(testInstance, temporaryRoot, "init", workspace.repositoryPath)
	runGitCommand(testInstance, workspace.repositoryPath, "config", "user.name", integrationUserNameConstant)
	runGitCommand(testInstance, workspace.repositoryPath, "config", "user.email", integrationUserEmailConstant)

	writeFile(testInstance, filepath.Join(workspace.repositoryPath, integrationApplicationDirectoryConstant, integrationManifestFileNameConstant), integrationInitialManifestConstant, 0o644)
	runGitCommand(testInstance, workspace.repositoryPath, "add", ".")
	runGitCommand(testInstance, workspace.repositoryPath, "commit", "-m", "Initial commit")
	runGitCommand(testInstance, workspace.repositoryPath, "branch", "-M", integrationMainBranchConstant)
	runGitCommand(testInstance, workspace.repositoryPath, "remote", "add", "origin", workspace.remotePath)
	runGitCommand(testInstance, workspace.repositoryPath, "push", "-u", "origin", integrationMainBranchConstant)

	writeFile(testInstance, filepath.Join(workspace.toolsPath, "npm"), npmScript, 0o755)
	ghScript := fmt.Sprintf(integrationFakeGHScriptTemplate, workspace.ghLogPath, workspace.ghLogPath, integrationPullRequestURLConstant)
	writeFile(testInstance, filepath.Join(workspace.toolsPath, "gh"), ghScript, 0o755)
	writeFile(testInstance, workspace.outputPath, "", 0o644)

	return workspace
}

func (workspace integrationWorkspace) environment() []string {
	assignments := map[string]string{
		"PATH":                    prependPath(workspace.toolsPath),
		"HOME":                    workspace.root,
		"INPUT_BASE_BRANCH":       integrationMainBranchConstant,
		"INPUT_HEAD_BRANCH":       integrationHeadBranchConstant,
		"INPUT_WORKING_DIRECTORY": integrationApplicationDirectoryConstant,
		"INPUT_GH_TOKEN":          integrationTokenConstant,
		"INPUT_DEBUG":             "true",
		"GITHUB_OUTPUT":           workspace.outputPath,
		"GITHUB_REPOSITORY":       integrationRepositoryConstant,
		"GITHUB_SERVER_URL":       "https://github.com",
		"GITHUB_ACTIONS":          "true",
		"GITHUB_WORKSPACE":        workspace.repositoryPath,
	}

	environment := make([]string, 0, len(assignments))
	for name, value := range assignments {
		environment = append(environment, fmt.Sprintf(integrationEnvironmentTemplateConstant, name, value))
	}
	return environment
}

func TestDependencyUpdateOpensPullRequest(testInstance *testing.T) {
	workspace := newIntegrationWorkspace(testInstance, fmt.Sprintf(integrationFakeNPMUpdatingTemplate, integrationUpdatedManifestConstant))

	output, runError := runBinary(testInstance, workspace.repositoryPath, workspace.environment(), "update", "--pull-request-client", "cli")
	require.NoError(testInstance, runError, output)

	require.Contains(testInstance, output, "Opened pull request: "+integrationPullRequestURLConstant)
	require.Contains(testInstance, output, "::group::")
	requireTokenOnlyMasked(testInstance, output)

	stepOutputs := readFile(testInstance, workspace.outputPath)
	require.Contains(testInstance, stepOutputs, "updates-available=true\n")
	require.Contains(testInstance, stepOutputs, "pull-request-url="+integrationPullRequestURLConstant+"\n")

	remoteHeads := runGitCommand(testInstance, workspace.repositoryPath, "ls-remote", "--heads", "origin", integrationHeadBranchConstant)
	require.NotEmpty(testInstance, strings.TrimSpace(remoteHeads))

	pushedManifest := runGitCommand(testInstance, workspace.remotePath, "show", integrationHeadBranchConstant+":"+integrationApplicationDirectoryConstant+"/"+integrationManifestFileNameConstant)
	require.Equal(testInstance, integrationUpdatedManifestConstant, pushedManifest)

	commitSubject := runGitCommand(testInstance, workspace.remotePath, "log", "-1", "--format=%s%n%an <%ae>", integrationHeadBranchConstant)
	require.Equal(testInstance, "chore: update dependencies\ngh-automation <gh-automation@email.com>\n", commitSubject)

	ghInvocation := readFile(testInstance, workspace.ghLogPath)
	require.Contains(testInstance, ghInvocation, "pr create --repo "+integrationRepositoryConstant+" --base "+integrationMainBranchConstant+" --head "+integrationHeadBranchConstant)
	require.Contains(testInstance, ghInvocation, "token="+integrationTokenConstant)
}

// requireTokenOnlyMasked asserts the token appears once, in the mask registration
// the runner consumes before it prints anything else.
func requireTokenOnlyMasked(testInstance *testing.T, output string) {
	testInstance.Helper()
	require.Equal(testInstance, 1, strings.Count(output, integrationAddMaskLineConstant), output)
	require.NotContains(testInstance, strings.Replace(output, integrationAddMaskLineConstant, "", 1), integrationTokenConstant)
}

func TestDependencyUpdatePullRequestFailureKeepsPushedBranch(testInstance *testing.T) {
	workspace := newIntegrationWorkspace(testInstance, fmt.Sprintf(integrationFakeNPMUpdatingTemplate, integrationUpdatedManifestConstant))
	writeFile(testInstance, filepath.Join(workspace.toolsPath, "gh"), fmt.Sprintf(integrationFakeGHFailingTemplate, workspace.ghLogPath), 0o755)

	output, runError := runBinary(testInstance, workspace.repositoryPath, workspace.environment(), "update", "--pull-request-client", "cli")
	require.Error(testInstance, runError, output)
	require.NotContains(testInstance, output, "Opened pull request")
	requireTokenOnlyMasked(testInstance, output)

	require.Equal(testInstance, "updates-available=true\n", readFile(testInstance, workspace.outputPath))

	remoteHeads := runGitCommand(testInstance, workspace.repositoryPath, "ls-remote", "--heads", "origin", integrationHeadBranchConstant)
	require.NotEmpty(testInstance, strings.TrimSpace(remoteHeads))

	pushedManifest := runGitCommand(testInstance, workspace.remotePath, "show", integrationHeadBranchConstant+":"+integrationApplicationDirectoryConstant+"/"+integrationManifestFileNameConstant)
	require.Equal(testInstance, integrationUpdatedManifestConstant, pushedManifest)

	ghInvocation := readFile(testInstance, workspace.ghLogPath)
	require.Contains(testInstance, ghInvocation, "pr create --repo "+integrationRepositoryConstant)
}

func TestDependencyUpdateWithoutChangesSkipsPublication(testInstance *testing.T) {
	workspace := newIntegrationWorkspace(testInstance, integrationFakeNPMNoopScript)

	output, runError := runBinary(testInstance, workspace.repositoryPath, workspace.environment(), "update", "--pull-request-client", "cli")
	require.NoError(testInstance, runError, output)

	require.Contains(testInstance, output, "No dependency updates found")
	require.Equal(testInstance, "updates-available=false\n", readFile(testInstance, workspace.outputPath))

	remoteHeads := runGitCommand(testInstance, workspace.repositoryPath, "ls-remote", "--heads", "origin", integrationHeadBranchConstant)
	require.Empty(testInstance, strings.TrimSpace(remoteHeads))
	require.NoFileExists(testInstance, workspace.ghLogPath)
}

func TestDependencyUpdateRejectsInvalidInputs(testInstance *testing.T) {
	workspace := newIntegrationWorkspace(testInstance, integrationFakeNPMNoopScript)

	environment := append(workspace.environment(), "INPUT_HEAD_BRANCH=bad branch")
	output, runError := runBinary(testInstance, workspace.repositoryPath, environment, "update", "--pull-request-client", "cli")
	require.Error(testInstance, runError)
	require.Contains(testInstance, output, "head_branch")
	require.NoFileExists(testInstance, workspace.ghLogPath)
}
