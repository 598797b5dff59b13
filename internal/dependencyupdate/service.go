package dependencyupdate

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/depupdate/internal/gitrepo"
	"github.com/temirov/depupdate/internal/inputs"
	"github.com/temirov/depupdate/internal/packagemanager"
	"github.com/temirov/depupdate/internal/pullrequest"
)

const (
	// DefaultRemoteName is the remote the head branch is pushed to.
	DefaultRemoteName = "origin"

	gitExecutorMissingMessageConstant            = "git executor not configured"
	packageManagerExecutorMissingMessageConstant = "package manager executor not configured"
	repositoryResolutionFailureTemplateConstant  = "failed to resolve repository owner and name: %w"
	updatingDependenciesMessageConstant          = "Updating dependencies"
	noUpdatesMessageConstant                     = "No dependency updates found"
	updatesDetectedMessageConstant               = "Dependency updates detected"
	pullRequestOpenedMessageConstant             = "Opened dependency update pull request"
	publicationFailedMessageConstant             = "Dependency update publication failed"
	logFieldEcosystemConstant                    = "ecosystem"
	logFieldWorkingDirectoryConstant             = "working_directory"
	logFieldBaseBranchConstant                   = "base_branch"
	logFieldHeadBranchConstant                   = "head_branch"
	logFieldRepositoryConstant                   = "repository"
	logFieldStatusConstant                       = "status"
	logFieldPullRequestURLConstant               = "pull_request_url"
)

// ErrGitExecutorNotConfigured indicates the git executor dependency was missing.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)

// ErrPackageManagerExecutorNotConfigured indicates the package manager executor dependency was missing.
var ErrPackageManagerExecutorNotConfigured = errors.New(packageManagerExecutorMissingMessageConstant)

// IdentityResolver derives the hosted repository from a local checkout's remote.
type IdentityResolver func(repositoryPath string, remoteName string) (gitrepo.RemoteURL, error)

// ServiceDependencies enumerates collaborators required by the service.
type ServiceDependencies struct {
	GitExecutor            GitExecutor
	PackageManagerExecutor packagemanager.CommandExecutor
	PullRequestCreator     pullrequest.Creator
	IdentityResolver       IdentityResolver
	Logger                 *zap.Logger
}

// Options configure a single dependency update run.
type Options struct {
	Inputs inputs.Inputs
	// RepositoryRoot is the directory the working directory input is relative to. Empty means the process directory.
	RepositoryRoot string
	Ecosystem      packagemanager.Ecosystem
	RemoteName     string
	// Repository is "owner/name". When empty it is derived from the remote URL.
	Repository string
	Committer  CommitterIdentity
}

// Result captures the outcome of a run.
type Result struct {
	UpdatesAvailable bool
	WorkingDirectory string
	PullRequest      pullrequest.PullRequest
}

// Service orchestrates update, change detection, and publication.
type Service struct {
	repositoryManager *gitrepo.RepositoryManager
	packageExecutor   packagemanager.CommandExecutor
	publisher         *Publisher
	identityResolver  IdentityResolver
	logger            *zap.Logger
}

// NewService constructs a Service from the provided dependencies.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.GitExecutor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	if dependencies.PackageManagerExecutor == nil {
		return nil, ErrPackageManagerExecutorNotConfigured
	}

	repositoryManager, managerError := gitrepo.NewRepositoryManager(dependencies.GitExecutor)
	if managerError != nil {
		return nil, managerError
	}

	publisher, publisherError := NewPublisher(dependencies.GitExecutor, dependencies.PullRequestCreator)
	if publisherError != nil {
		return nil, publisherError
	}

	identityResolver := dependencies.IdentityResolver
	if identityResolver == nil {
		identityResolver = gitrepo.ResolveRepositoryIdentity
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		repositoryManager: repositoryManager,
		packageExecutor:   dependencies.PackageManagerExecutor,
		publisher:         publisher,
		identityResolver:  identityResolver,
		logger:            logger,
	}, nil
}

// Run validates the inputs, updates dependencies, and publishes a pull request when the manifest changed.
// Validation happens before any command runs. The returned Result reports UpdatesAvailable even when
// publication fails, since the git mutations that preceded the failure stay applied.
func (service *Service) Run(executionContext context.Context, options Options) (Result, error) {
	runInputs := options.Inputs
	runInputs.WorkingDirectory = inputs.NormalizeWorkingDirectory(runInputs.WorkingDirectory)
	if validationError := inputs.Validate(runInputs); validationError != nil {
		return Result{}, validationError
	}

	updater, updaterError := packagemanager.NewUpdater(service.packageExecutor, options.Ecosystem)
	if updaterError != nil {
		return Result{}, updaterError
	}

	workingDirectory := runInputs.WorkingDirectory
	if len(strings.TrimSpace(options.RepositoryRoot)) > 0 {
		workingDirectory = filepath.Join(options.RepositoryRoot, runInputs.WorkingDirectory)
	}

	runLogger := service.logger.With(
		zap.String(logFieldEcosystemConstant, string(options.Ecosystem.Name)),
		zap.String(logFieldWorkingDirectoryConstant, workingDirectory),
	)

	runLogger.Info(updatingDependenciesMessageConstant)
	if updateError := updater.Update(executionContext, workingDirectory); updateError != nil {
		return Result{}, updateError
	}

	statusOutput, statusError := service.repositoryManager.ManifestStatus(executionContext, workingDirectory, options.Ecosystem.ManifestFiles)
	if statusError != nil {
		return Result{}, statusError
	}

	result := Result{WorkingDirectory: workingDirectory}
	if !gitrepo.HasChanges(statusOutput) {
		runLogger.Info(noUpdatesMessageConstant)
		return result, nil
	}
	result.UpdatesAvailable = true
	runLogger.Info(updatesDetectedMessageConstant, zap.String(logFieldStatusConstant, strings.TrimSpace(statusOutput)))

	remoteName := strings.TrimSpace(options.RemoteName)
	if len(remoteName) == 0 {
		remoteName = DefaultRemoteName
	}

	owner, repository, resolutionError := service.resolveRepository(workingDirectory, remoteName, options.Repository)
	if resolutionError != nil {
		return result, fmt.Errorf(repositoryResolutionFailureTemplateConstant, resolutionError)
	}

	committer := options.Committer
	if len(strings.TrimSpace(committer.Name)) == 0 {
		committer.Name = DefaultCommitterName
	}
	if len(strings.TrimSpace(committer.Email)) == 0 {
		committer.Email = DefaultCommitterEmail
	}

	createdPullRequest, publishError := service.publisher.Publish(executionContext, PublishOptions{
		WorkingDirectory: workingDirectory,
		ManifestFiles:    options.Ecosystem.ManifestFiles,
		BaseBranch:       runInputs.BaseBranch,
		HeadBranch:       runInputs.HeadBranch,
		RemoteName:       remoteName,
		Committer:        committer,
		Owner:            owner,
		Repository:       repository,
		EcosystemLabel:   options.Ecosystem.DisplayName,
	})
	if publishError != nil {
		runLogger.Error(publicationFailedMessageConstant, zap.Error(publishError))
		return result, publishError
	}

	result.PullRequest = createdPullRequest
	runLogger.Info(
		pullRequestOpenedMessageConstant,
		zap.String(logFieldRepositoryConstant, gitrepo.RemoteURL{Owner: owner, Repository: repository}.FullName()),
		zap.String(logFieldBaseBranchConstant, runInputs.BaseBranch),
		zap.String(logFieldHeadBranchConstant, runInputs.HeadBranch),
		zap.String(logFieldPullRequestURLConstant, createdPullRequest.URL),
	)
	return result, nil
}

func (service *Service) resolveRepository(workingDirectory string, remoteName string, configuredRepository string) (string, string, error) {
	if trimmedRepository := strings.TrimSpace(configuredRepository); len(trimmedRepository) > 0 {
		return gitrepo.ParseRepositoryFullName(trimmedRepository)
	}
	remoteURL, identityError := service.identityResolver(workingDirectory, remoteName)
	if identityError != nil {
		return "", "", identityError
	}
	return remoteURL.Owner, remoteURL.Repository, nil
}
