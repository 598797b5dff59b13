package dependencyupdate_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sethvargo/go-envconfig"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/depupdate/internal/dependencyupdate"
	"github.com/temirov/depupdate/internal/inputs"
	"github.com/temirov/depupdate/internal/pullrequest"
)

type commandHarness struct {
	executor       *stubCommandExecutor
	creator        *stubPullRequestCreator
	observedLogs   *observer.ObservedLogs
	outputPath     string
	stdout         *bytes.Buffer
	groupOutput    *bytes.Buffer
	debugEnabled   bool
	configuration  dependencyupdate.CommandConfiguration
	environment    map[string]string
	repositoryRoot string
	// processDirectory is the directory the command runs from. Empty means repositoryRoot.
	processDirectory string
}

func newCommandHarness(t *testing.T) *commandHarness {
	t.Helper()
	repositoryRoot := newRepositoryRoot(t, "package.json", "package-lock.json")
	outputPath := filepath.Join(t.TempDir(), "github_output")
	return &commandHarness{
		executor:       &stubCommandExecutor{statusOutput: testStatusOutputConstant},
		creator:        &stubPullRequestCreator{pullRequest: pullrequest.PullRequest{Number: 17, URL: testPullRequestURLConstant}},
		outputPath:     outputPath,
		stdout:         &bytes.Buffer{},
		groupOutput:    &bytes.Buffer{},
		configuration:  dependencyupdate.DefaultCommandConfiguration(),
		repositoryRoot: repositoryRoot,
		environment: map[string]string{
			"INPUT_BASE_BRANCH":       "main",
			"INPUT_HEAD_BRANCH":       "update-deps-123",
			"INPUT_WORKING_DIRECTORY": "./app",
			"INPUT_GH_TOKEN":          testTokenConstant,
			"GITHUB_REPOSITORY":       "owner/example",
			"GITHUB_OUTPUT":           outputPath,
		},
	}
}

func (harness *commandHarness) execute(t *testing.T, arguments ...string) error {
	t.Helper()
	observerCore, observedLogs := observer.New(zap.DebugLevel)
	harness.observedLogs = observedLogs

	builder := dependencyupdate.CommandBuilder{
		LoggerProvider:        func() *zap.Logger { return zap.New(observerCore) },
		DebugLoggingEnabler:   func() { harness.debugEnabled = true },
		ConfigurationProvider: func() dependencyupdate.CommandConfiguration { return harness.configuration },
		EnvironmentLookuper:   envconfig.MapLookuper(harness.environment),
		Executor:              harness.executor,
		PullRequestCreator:    harness.creator,
		GroupOutput:           harness.groupOutput,
	}
	command, buildError := builder.Build()
	require.NoError(t, buildError)
	require.IsType(t, &cobra.Command{}, command)

	command.SetArgs(arguments)
	command.SetOut(harness.stdout)
	command.SetErr(&bytes.Buffer{})
	command.SilenceUsage = true
	command.SilenceErrors = true

	// Without GITHUB_WORKSPACE working directories resolve against the process directory.
	processDirectory := harness.processDirectory
	if len(processDirectory) == 0 {
		processDirectory = harness.repositoryRoot
	}
	t.Chdir(processDirectory)
	return command.ExecuteContext(context.Background())
}

func (harness *commandHarness) outputContents(t *testing.T) string {
	t.Helper()
	contents, readError := os.ReadFile(harness.outputPath)
	if errors.Is(readError, os.ErrNotExist) {
		return ""
	}
	require.NoError(t, readError)
	return string(contents)
}

func TestUpdateCommandUsesActionInputs(t *testing.T) {
	harness := newCommandHarness(t)

	require.NoError(t, harness.execute(t))

	require.Len(t, harness.creator.requests, 1)
	request := harness.creator.requests[0]
	require.Equal(t, "owner", request.Owner)
	require.Equal(t, "example", request.Repository)
	require.Equal(t, "main", request.BaseBranch)
	require.Equal(t, "update-deps-123", request.HeadBranch)

	require.Equal(t, "app", harness.executor.recorded[0].WorkingDirectory)
	require.Equal(t, "updates-available=true\npull-request-url="+testPullRequestURLConstant+"\n", harness.outputContents(t))
	require.Equal(t, "Opened pull request: "+testPullRequestURLConstant+"\n", harness.stdout.String())
	require.False(t, harness.debugEnabled)
}

func TestUpdateCommandFlagsOverrideActionInputs(t *testing.T) {
	harness := newCommandHarness(t)
	harness.configuration.HeadBranch = "configured-head"

	require.NoError(t, harness.execute(t, "--head-branch", "flag-head", "--repository", "flag-owner/flag-repo", "--debug"))

	require.Len(t, harness.creator.requests, 1)
	require.Equal(t, "flag-head", harness.creator.requests[0].HeadBranch)
	require.Equal(t, "flag-owner", harness.creator.requests[0].Owner)
	require.Contains(t, harness.executor.commandKeys(), "git checkout -B flag-head")
	require.True(t, harness.debugEnabled)
}

func TestUpdateCommandActionInputsOverrideConfiguration(t *testing.T) {
	harness := newCommandHarness(t)
	harness.configuration.BaseBranch = "develop"
	harness.configuration.RemoteName = "upstream"

	require.NoError(t, harness.execute(t))

	require.Equal(t, "main", harness.creator.requests[0].BaseBranch)
	require.Contains(t, harness.executor.commandKeys(), "git push --force --set-upstream upstream update-deps-123")
}

func TestUpdateCommandReportsNoUpdates(t *testing.T) {
	harness := newCommandHarness(t)
	harness.executor.statusOutput = ""

	require.NoError(t, harness.execute(t))

	require.Empty(t, harness.creator.requests)
	require.Len(t, harness.executor.recorded, 2)
	require.Equal(t, "updates-available=false\n", harness.outputContents(t))
	require.Equal(t, "No dependency updates found\n", harness.stdout.String())
}

func TestUpdateCommandRequiresToken(t *testing.T) {
	harness := newCommandHarness(t)
	delete(harness.environment, "INPUT_GH_TOKEN")

	executionError := harness.execute(t)

	var inputError inputs.InvalidInputError
	require.ErrorAs(t, executionError, &inputError)
	require.Equal(t, inputs.FieldToken, inputError.FieldName)
	require.Empty(t, harness.executor.recorded)
	require.Empty(t, harness.outputContents(t))
}

func TestUpdateCommandRejectsUnknownPullRequestClient(t *testing.T) {
	harness := newCommandHarness(t)

	executionError := harness.execute(t, "--pull-request-client", "graphql")
	require.Error(t, executionError)
	require.Contains(t, executionError.Error(), "graphql")
	require.Empty(t, harness.executor.recorded)
}

func TestUpdateCommandNeverLogsToken(t *testing.T) {
	harness := newCommandHarness(t)
	harness.environment["INPUT_DEBUG"] = "true"
	harness.creator.err = errors.New("bad credentials for " + testTokenConstant)

	executionError := harness.execute(t)
	require.Error(t, executionError)
	require.True(t, harness.debugEnabled)
	require.Contains(t, harness.outputContents(t), "updates-available=true")

	failureEntries := harness.observedLogs.FilterMessage("Dependency update publication failed").All()
	require.Len(t, failureEntries, 1)
	for _, entry := range harness.observedLogs.All() {
		require.NotContains(t, entry.Message, testTokenConstant)
		for _, fieldValue := range entry.ContextMap() {
			fieldText, isText := fieldValue.(string)
			if isText {
				require.False(t, strings.Contains(fieldText, testTokenConstant))
			}
		}
	}
	require.Contains(t, failureEntries[0].ContextMap()["error"], "***")
}

func TestUpdateCommandBuildRequiresConfigurationProvider(t *testing.T) {
	builder := dependencyupdate.CommandBuilder{LoggerProvider: zap.NewNop}

	command, buildError := builder.Build()
	require.ErrorIs(t, buildError, dependencyupdate.ErrConfigurationProviderNotConfigured)
	require.Nil(t, command)
}

func TestUpdateCommandResolvesWorkingDirectoryAgainstWorkspace(t *testing.T) {
	harness := newCommandHarness(t)
	harness.environment["GITHUB_WORKSPACE"] = harness.repositoryRoot
	harness.processDirectory = t.TempDir()

	require.NoError(t, harness.execute(t))

	expectedDirectory := filepath.Join(harness.repositoryRoot, "app")
	for _, command := range harness.executor.recorded {
		require.Equal(t, expectedDirectory, command.WorkingDirectory)
	}
	require.Len(t, harness.creator.requests, 1)
}

func TestUpdateCommandDebugSources(t *testing.T) {
	testCases := []struct {
		name               string
		configuredDebug    bool
		environment        map[string]string
		expectDebugLogging bool
	}{
		{
			name:               "configuration_only",
			configuredDebug:    true,
			expectDebugLogging: true,
		},
		{
			name:               "input_disables_configuration",
			configuredDebug:    true,
			environment:        map[string]string{"INPUT_DEBUG": "false"},
			expectDebugLogging: false,
		},
		{
			name:               "runner_debug_overrides_input",
			environment:        map[string]string{"INPUT_DEBUG": "false", "RUNNER_DEBUG": "1"},
			expectDebugLogging: true,
		},
		{
			name:               "unset",
			expectDebugLogging: false,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			harness := newCommandHarness(t)
			harness.configuration.Debug = testCase.configuredDebug
			for name, value := range testCase.environment {
				harness.environment[name] = value
			}

			require.NoError(t, harness.execute(t))
			require.Equal(t, testCase.expectDebugLogging, harness.debugEnabled)
		})
	}
}

func TestUpdateCommandTokenFlagOverridesEnvironment(t *testing.T) {
	harness := newCommandHarness(t)
	delete(harness.environment, "INPUT_GH_TOKEN")

	require.NoError(t, harness.execute(t, "--token", " flag-token "))
	require.Len(t, harness.creator.requests, 1)
}

func TestUpdateCommandMasksTokenInsideActions(t *testing.T) {
	testCases := []struct {
		name           string
		running        string
		expectedOutput string
	}{
		{name: "actions_runner", running: "true", expectedOutput: "::add-mask::" + testTokenConstant + "\n"},
		{name: "local_run", running: "", expectedOutput: ""},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			harness := newCommandHarness(t)
			harness.environment["GITHUB_ACTIONS"] = testCase.running

			require.NoError(t, harness.execute(t))
			require.Equal(t, testCase.expectedOutput, harness.groupOutput.String())
		})
	}
}

func TestUpdateCommandPublicationFailureKeepsPushedBranch(t *testing.T) {
	harness := newCommandHarness(t)
	harness.creator.err = pullrequest.CreationError{Backend: pullrequest.BackendCLI, Cause: errors.New("GraphQL: Resource not accessible by integration")}

	executionError := harness.execute(t)

	var creationError pullrequest.CreationError
	require.ErrorAs(t, executionError, &creationError)
	require.Contains(t, harness.executor.commandKeys(), "git push --force --set-upstream origin update-deps-123")
	require.Len(t, harness.creator.requests, 1)
	require.Equal(t, "updates-available=true\n", harness.outputContents(t))
	require.Empty(t, harness.stdout.String())
}
