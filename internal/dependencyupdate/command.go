package dependencyupdate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/sethvargo/go-envconfig"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/depupdate/internal/actions"
	"github.com/temirov/depupdate/internal/execshell"
	"github.com/temirov/depupdate/internal/githubapi"
	"github.com/temirov/depupdate/internal/githubauth"
	"github.com/temirov/depupdate/internal/githubcli"
	"github.com/temirov/depupdate/internal/inputs"
	"github.com/temirov/depupdate/internal/packagemanager"
	"github.com/temirov/depupdate/internal/pullrequest"
	"github.com/temirov/depupdate/internal/utils"
	flagutils "github.com/temirov/depupdate/internal/utils/flags"
)

const (
	commandUseNameConstant               = "update"
	commandShortDescriptionConstant      = "Update dependencies and open a pull request when manifests change"
	commandLongDescriptionConstant       = "update runs the package manager update in the working directory, checks the manifest files with git status, and when they changed commits them to the head branch, force-pushes it, and opens a pull request against the base branch. Inputs are read from flags, GitHub Actions INPUT_* variables, and configuration in that order of precedence."
	commandExampleConstant               = "dependency-update update --base-branch main --head-branch update-deps-123 --working-directory ./app"
	baseBranchFlagNameConstant           = "base-branch"
	baseBranchFlagUsageConstant          = "Branch the pull request targets."
	headBranchFlagNameConstant           = "head-branch"
	headBranchFlagUsageConstant          = "Branch that receives the dependency update commit."
	workingDirectoryFlagNameConstant     = "working-directory"
	workingDirectoryFlagUsageConstant    = "Directory containing the dependency manifest, relative to the repository root."
	tokenFlagNameConstant                = "token"
	tokenFlagUsageConstant               = "GitHub token used to open the pull request. Defaults to INPUT_GH_TOKEN, GH_TOKEN, GITHUB_TOKEN, or GITHUB_API_TOKEN."
	debugFlagNameConstant                = "debug"
	debugFlagUsageConstant               = "Enable debug logging."
	ecosystemFlagNameConstant            = "ecosystem"
	ecosystemFlagUsageConstant           = "Package manager to run."
	remoteFlagNameConstant               = "remote"
	remoteFlagUsageConstant              = "Remote the head branch is pushed to."
	repositoryFlagNameConstant           = "repository"
	repositoryFlagUsageConstant          = "Repository as owner/name. Defaults to GITHUB_REPOSITORY or the remote URL."
	pullRequestClientFlagNameConstant    = "pull-request-client"
	pullRequestClientFlagUsageConstant   = "Client used to open the pull request."
	pullRequestClientSettingNameConstant = "pull request client"
	publicGitHubHostConstant             = "github.com"
	noUpdatesOutputConstant              = "No dependency updates found"
	pullRequestOutputTemplateConstant    = "Opened pull request: %s\n"
	outputWriteFailedMessageConstant     = "Failed to record step outputs"
	unsupportedBackendTemplateConstant   = "unsupported pull request client %q"
	configurationProviderMissingConstant = "update command requires a configuration provider"
	secretMaskFailedMessageConstant      = "Failed to register token mask"
)

// ErrConfigurationProviderNotConfigured indicates the builder was not given a configuration source.
var ErrConfigurationProviderNotConfigured = errors.New(configurationProviderMissingConstant)

// LoggerProvider yields a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandExecutor is the execshell.ShellExecutor surface the update command drives.
type CommandExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
	ExecuteGitHubCLI(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
	ExecutePackageManager(executionContext context.Context, executable string, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// CommandBuilder assembles the update command.
type CommandBuilder struct {
	LoggerProvider LoggerProvider
	// DebugLoggingEnabler raises the shared logger to debug level when the debug input is set.
	DebugLoggingEnabler func()
	// ConfigurationProvider supplies the configured defaults. Required.
	ConfigurationProvider func() CommandConfiguration
	// EnvironmentLookuper reads GitHub Actions variables. Nil reads the process environment.
	EnvironmentLookuper envconfig.Lookuper
	// Executor runs external commands. Nil builds an execshell.ShellExecutor.
	Executor CommandExecutor
	// PullRequestCreator overrides the configured pull request client.
	PullRequestCreator pullrequest.Creator
	// IdentityResolver overrides remote-based repository resolution.
	IdentityResolver IdentityResolver
	// GroupOutput receives workflow log groups when running inside GitHub Actions. Nil uses standard output.
	GroupOutput io.Writer
}

// Build constructs the update command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	if builder.ConfigurationProvider == nil {
		return nil, ErrConfigurationProviderNotConfigured
	}

	command := &cobra.Command{
		Use:     commandUseNameConstant,
		Short:   commandShortDescriptionConstant,
		Long:    commandLongDescriptionConstant,
		Args:    cobra.NoArgs,
		RunE:    builder.run,
		Example: commandExampleConstant,
	}

	defaults := DefaultCommandConfiguration()
	flagSet := command.Flags()
	flagSet.String(baseBranchFlagNameConstant, "", baseBranchFlagUsageConstant)
	flagSet.String(headBranchFlagNameConstant, "", headBranchFlagUsageConstant)
	flagSet.String(workingDirectoryFlagNameConstant, "", workingDirectoryFlagUsageConstant)
	flagSet.String(tokenFlagNameConstant, "", tokenFlagUsageConstant)
	flagutils.AddToggleFlag(flagSet, nil, debugFlagNameConstant, defaults.Debug, debugFlagUsageConstant)
	flagSet.String(ecosystemFlagNameConstant, defaults.Ecosystem, flagutils.FormatChoiceUsage(defaults.Ecosystem, packagemanager.SupportedEcosystems(), ecosystemFlagUsageConstant))
	flagSet.String(remoteFlagNameConstant, defaults.RemoteName, remoteFlagUsageConstant)
	flagSet.String(repositoryFlagNameConstant, "", repositoryFlagUsageConstant)
	flagSet.String(pullRequestClientFlagNameConstant, defaults.PullRequestClient, flagutils.FormatChoiceUsage(defaults.PullRequestClient, supportedBackends(), pullRequestClientFlagUsageConstant))

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	executionContext := command.Context()
	if executionContext == nil {
		executionContext = context.Background()
	}

	lookuper := builder.EnvironmentLookuper
	if lookuper == nil {
		lookuper = envconfig.OsLookuper()
	}

	environment, environmentError := actions.LoadEnvironment(executionContext, lookuper)
	if environmentError != nil {
		return environmentError
	}

	configuration, flagError := builder.resolveSettings(command, environment)
	if flagError != nil {
		return flagError
	}

	explicitToken, tokenFlagError := command.Flags().GetString(tokenFlagNameConstant)
	if tokenFlagError != nil {
		return tokenFlagError
	}
	token := githubauth.ResolveToken(explicitToken, lookuper)

	runInputs := inputs.Inputs{
		BaseBranch:       configuration.BaseBranch,
		HeadBranch:       configuration.HeadBranch,
		WorkingDirectory: inputs.NormalizeWorkingDirectory(configuration.WorkingDirectory),
		Token:            token,
		Debug:            configuration.Debug,
	}
	if validationError := inputs.Validate(runInputs); validationError != nil {
		return validationError
	}

	if configuration.Debug && builder.DebugLoggingEnabler != nil {
		builder.DebugLoggingEnabler()
	}
	logger := builder.resolveLogger().WithOptions(utils.RedactSecrets(token))
	if environment.Running.Enabled {
		if maskError := actions.MaskSecrets(builder.resolveGroupOutput(), token); maskError != nil {
			logger.Warn(secretMaskFailedMessageConstant, zap.Error(maskError))
		}
	}

	ecosystem, ecosystemError := packagemanager.LookupEcosystem(configuration.Ecosystem)
	if ecosystemError != nil {
		return ecosystemError
	}
	ecosystem = ecosystem.WithOverrides(packagemanager.Overrides{
		Executable:      configuration.Executable,
		UpdateArguments: configuration.UpdateArguments,
		ManifestFiles:   configuration.ManifestFiles,
	})

	backendName, backendError := flagutils.NormalizeChoice(pullRequestClientSettingNameConstant, configuration.PullRequestClient, string(pullrequest.BackendAPI), supportedBackends())
	if backendError != nil {
		return backendError
	}

	executor, executorError := builder.resolveExecutor(logger, environment, token)
	if executorError != nil {
		return executorError
	}

	creator, creatorError := builder.resolvePullRequestCreator(executionContext, pullrequest.Backend(backendName), executor, token, configuration.APIURL, environment.ServerURL)
	if creatorError != nil {
		return creatorError
	}

	service, serviceError := NewService(ServiceDependencies{
		GitExecutor:            executor,
		PackageManagerExecutor: executor,
		PullRequestCreator:     creator,
		IdentityResolver:       builder.IdentityResolver,
		Logger:                 logger,
	})
	if serviceError != nil {
		return serviceError
	}

	result, runError := service.Run(executionContext, Options{
		Inputs:         runInputs,
		Ecosystem:      ecosystem,
		RemoteName:     configuration.RemoteName,
		Repository:     configuration.Repository,
		RepositoryRoot: environment.Workspace,
		Committer:      CommitterIdentity{Name: configuration.CommitterName, Email: configuration.CommitterEmail},
	})

	if outputError := writeStepOutputs(actions.NewOutputWriter(environment.OutputPath), result); outputError != nil {
		logger.Warn(outputWriteFailedMessageConstant, zap.Error(outputError))
	}
	if runError != nil {
		return runError
	}

	if result.UpdatesAvailable {
		fmt.Fprintf(command.OutOrStdout(), pullRequestOutputTemplateConstant, result.PullRequest.URL)
	} else {
		fmt.Fprintln(command.OutOrStdout(), noUpdatesOutputConstant)
	}
	return nil
}

// resolveSettings layers Actions inputs over configuration, then changed flags over both.
func (builder *CommandBuilder) resolveSettings(command *cobra.Command, environment actions.Environment) (CommandConfiguration, error) {
	configuration := builder.resolveConfiguration()

	overrideString(&configuration.BaseBranch, environment.BaseBranch)
	overrideString(&configuration.HeadBranch, environment.HeadBranch)
	overrideString(&configuration.WorkingDirectory, environment.WorkingDirectory)
	if environment.Debug.Provided || environment.RunnerDebug.Enabled {
		configuration.Debug = environment.DebugEnabled()
	}
	if len(configuration.Repository) == 0 {
		configuration.Repository = environment.Repository
	}
	if len(configuration.APIURL) == 0 {
		configuration.APIURL = environment.APIURL
	}

	flagSet := command.Flags()
	stringFlagTargets := map[string]*string{
		baseBranchFlagNameConstant:        &configuration.BaseBranch,
		headBranchFlagNameConstant:        &configuration.HeadBranch,
		workingDirectoryFlagNameConstant:  &configuration.WorkingDirectory,
		ecosystemFlagNameConstant:         &configuration.Ecosystem,
		remoteFlagNameConstant:            &configuration.RemoteName,
		repositoryFlagNameConstant:        &configuration.Repository,
		pullRequestClientFlagNameConstant: &configuration.PullRequestClient,
	}
	for flagName, target := range stringFlagTargets {
		if !flagSet.Changed(flagName) {
			continue
		}
		flagValue, flagError := flagSet.GetString(flagName)
		if flagError != nil {
			return CommandConfiguration{}, flagError
		}
		*target = strings.TrimSpace(flagValue)
	}

	if flagSet.Changed(debugFlagNameConstant) {
		debugValue, flagError := flagSet.GetBool(debugFlagNameConstant)
		if flagError != nil {
			return CommandConfiguration{}, flagError
		}
		configuration.Debug = debugValue
	}

	return configuration, nil
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) resolveExecutor(logger *zap.Logger, environment actions.Environment, token string) (CommandExecutor, error) {
	if builder.Executor != nil {
		return builder.Executor, nil
	}

	shellExecutor, executorError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner())
	if executorError != nil {
		return nil, executorError
	}
	if !environment.Running.Enabled {
		return shellExecutor, nil
	}

	return shellExecutor.WithObserver(actions.NewGroupObserver(builder.resolveGroupOutput(), token)), nil
}

func (builder *CommandBuilder) resolveGroupOutput() io.Writer {
	if builder.GroupOutput == nil {
		return os.Stdout
	}
	return builder.GroupOutput
}

func (builder *CommandBuilder) resolvePullRequestCreator(executionContext context.Context, backend pullrequest.Backend, executor CommandExecutor, token string, apiURL string, serverURL string) (pullrequest.Creator, error) {
	if builder.PullRequestCreator != nil {
		return builder.PullRequestCreator, nil
	}

	switch backend {
	case pullrequest.BackendAPI:
		apiClient, clientError := githubapi.NewClient(executionContext, githubapi.Options{Token: token, BaseURL: apiURL})
		if clientError != nil {
			return nil, clientError
		}
		return apiClient, nil
	case pullrequest.BackendCLI:
		cliClient, clientError := githubcli.NewClient(executor, token, enterpriseHost(serverURL))
		if clientError != nil {
			return nil, clientError
		}
		return cliClient, nil
	default:
		return nil, fmt.Errorf(unsupportedBackendTemplateConstant, backend)
	}
}

// enterpriseHost returns the GitHub Enterprise host named by GITHUB_SERVER_URL, or "" for github.com.
func enterpriseHost(serverURL string) string {
	parsedURL, parseError := url.Parse(strings.TrimSpace(serverURL))
	if parseError != nil || len(parsedURL.Host) == 0 || strings.EqualFold(parsedURL.Host, publicGitHubHostConstant) {
		return ""
	}
	return parsedURL.Host
}

func writeStepOutputs(writer *actions.OutputWriter, result Result) error {
	var outputErrors []error
	outputErrors = append(outputErrors, writer.SetOutput(actions.OutputUpdatesAvailable, strconv.FormatBool(result.UpdatesAvailable)))
	if len(result.PullRequest.URL) > 0 {
		outputErrors = append(outputErrors, writer.SetOutput(actions.OutputPullRequestURL, result.PullRequest.URL))
	}
	return errors.Join(outputErrors...)
}

func overrideString(target *string, value string) {
	if trimmedValue := strings.TrimSpace(value); len(trimmedValue) > 0 {
		*target = trimmedValue
	}
}

func supportedBackends() []string {
	return []string{string(pullrequest.BackendAPI), string(pullrequest.BackendCLI)}
}
