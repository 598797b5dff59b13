package dependencyupdate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/temirov/depupdate/internal/execshell"
	"github.com/temirov/depupdate/internal/pullrequest"
)

const (
	// CommitMessage is the fixed commit message for dependency updates.
	CommitMessage = "chore: update dependencies"
	// DefaultCommitterName is the automation identity recorded on commits.
	DefaultCommitterName = "gh-automation"
	// DefaultCommitterEmail is the automation identity email recorded on commits.
	DefaultCommitterEmail = "gh-automation@email.com"

	pullRequestTitleTemplateConstant          = "Update %s dependencies"
	pullRequestBodyTemplateConstant           = "This pull request updates %s packages"
	pullRequestCreatorMissingMessageConstant  = "pull request creator not configured"
	noManifestFilesPresentMessageConstant     = "no manifest files present"
	noManifestFilesPresentTemplateConstant    = "%w in %s (expected one of: %s)"
	committerIdentityFailureTemplateConstant  = "failed to configure committer identity: %w"
	checkoutFailureTemplateConstant           = "failed to create branch %q: %w"
	stageFailureTemplateConstant              = "failed to stage manifest files: %w"
	commitFailureTemplateConstant             = "failed to commit dependency updates: %w"
	pushFailureTemplateConstant               = "failed to push branch %q to %s: %w"
	pullRequestFailureTemplateConstant        = "failed to open pull request: %w"
	manifestListSeparatorConstant             = ", "
	gitConfigSubcommandConstant               = "config"
	gitUserNameKeyConstant                    = "user.name"
	gitUserEmailKeyConstant                   = "user.email"
	gitCheckoutSubcommandConstant             = "checkout"
	gitCheckoutResetBranchFlagConstant        = "-B"
	gitAddSubcommandConstant                  = "add"
	gitCommitSubcommandConstant               = "commit"
	gitCommitMessageFlagConstant              = "-m"
	gitPushSubcommandConstant                 = "push"
	gitPushForceFlagConstant                  = "--force"
	gitPushSetUpstreamFlagConstant            = "--set-upstream"
	gitPathSeparatorArgumentConstant          = "--"
	gitTerminalPromptEnvironmentNameConstant  = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptEnvironmentValueConstant = "0"
)

// ErrPullRequestCreatorNotConfigured indicates the publisher was constructed without a pull request creator.
var ErrPullRequestCreatorNotConfigured = errors.New(pullRequestCreatorMissingMessageConstant)

// ErrNoManifestFilesPresent indicates none of the ecosystem's manifest files exist in the working directory.
var ErrNoManifestFilesPresent = errors.New(noManifestFilesPresentMessageConstant)

// GitExecutor is the subset of execshell.ShellExecutor used for git mutations.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// CommitterIdentity names the author recorded on the update commit.
type CommitterIdentity struct {
	Name  string
	Email string
}

// PublishOptions describe a single publication.
type PublishOptions struct {
	WorkingDirectory string
	ManifestFiles    []string
	BaseBranch       string
	HeadBranch       string
	RemoteName       string
	Committer        CommitterIdentity
	Owner            string
	Repository       string
	EcosystemLabel   string
}

// Publisher commits manifest changes to the head branch, force-pushes it, and opens a pull request.
type Publisher struct {
	executor GitExecutor
	creator  pullrequest.Creator
}

// NewPublisher constructs a Publisher.
func NewPublisher(executor GitExecutor, creator pullrequest.Creator) (*Publisher, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	if creator == nil {
		return nil, ErrPullRequestCreatorNotConfigured
	}
	return &Publisher{executor: executor, creator: creator}, nil
}

// PullRequestTitle renders the fixed pull request title for an ecosystem label.
func PullRequestTitle(ecosystemLabel string) string {
	return fmt.Sprintf(pullRequestTitleTemplateConstant, ecosystemLabel)
}

// PullRequestBody renders the fixed pull request body for an ecosystem label.
func PullRequestBody(ecosystemLabel string) string {
	return fmt.Sprintf(pullRequestBodyTemplateConstant, ecosystemLabel)
}

// Publish runs each step in order and stops at the first failure. Steps that already
// succeeded are left applied.
func (publisher *Publisher) Publish(executionContext context.Context, options PublishOptions) (pullrequest.PullRequest, error) {
	stagedFiles := existingManifestFiles(options.WorkingDirectory, options.ManifestFiles)
	if len(stagedFiles) == 0 {
		return pullrequest.PullRequest{}, fmt.Errorf(noManifestFilesPresentTemplateConstant, ErrNoManifestFilesPresent, options.WorkingDirectory, strings.Join(options.ManifestFiles, manifestListSeparatorConstant))
	}

	for _, identitySetting := range [][2]string{
		{gitUserNameKeyConstant, options.Committer.Name},
		{gitUserEmailKeyConstant, options.Committer.Email},
	} {
		if configError := publisher.runGit(executionContext, options.WorkingDirectory, gitConfigSubcommandConstant, identitySetting[0], identitySetting[1]); configError != nil {
			return pullrequest.PullRequest{}, fmt.Errorf(committerIdentityFailureTemplateConstant, configError)
		}
	}

	if checkoutError := publisher.runGit(executionContext, options.WorkingDirectory, gitCheckoutSubcommandConstant, gitCheckoutResetBranchFlagConstant, options.HeadBranch); checkoutError != nil {
		return pullrequest.PullRequest{}, fmt.Errorf(checkoutFailureTemplateConstant, options.HeadBranch, checkoutError)
	}

	addArguments := append([]string{gitAddSubcommandConstant, gitPathSeparatorArgumentConstant}, stagedFiles...)
	if stageError := publisher.runGit(executionContext, options.WorkingDirectory, addArguments...); stageError != nil {
		return pullrequest.PullRequest{}, fmt.Errorf(stageFailureTemplateConstant, stageError)
	}

	if commitError := publisher.runGit(executionContext, options.WorkingDirectory, gitCommitSubcommandConstant, gitCommitMessageFlagConstant, CommitMessage); commitError != nil {
		return pullrequest.PullRequest{}, fmt.Errorf(commitFailureTemplateConstant, commitError)
	}

	if pushError := publisher.runGit(executionContext, options.WorkingDirectory, gitPushSubcommandConstant, gitPushForceFlagConstant, gitPushSetUpstreamFlagConstant, options.RemoteName, options.HeadBranch); pushError != nil {
		return pullrequest.PullRequest{}, fmt.Errorf(pushFailureTemplateConstant, options.HeadBranch, options.RemoteName, pushError)
	}

	createdPullRequest, creationError := publisher.creator.CreatePullRequest(executionContext, pullrequest.Request{
		Owner:      options.Owner,
		Repository: options.Repository,
		Title:      PullRequestTitle(options.EcosystemLabel),
		Body:       PullRequestBody(options.EcosystemLabel),
		BaseBranch: options.BaseBranch,
		HeadBranch: options.HeadBranch,
	})
	if creationError != nil {
		return pullrequest.PullRequest{}, fmt.Errorf(pullRequestFailureTemplateConstant, creationError)
	}

	return createdPullRequest, nil
}

func (publisher *Publisher) runGit(executionContext context.Context, workingDirectory string, arguments ...string) error {
	_, executionError := publisher.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:            arguments,
		WorkingDirectory:     workingDirectory,
		EnvironmentVariables: map[string]string{gitTerminalPromptEnvironmentNameConstant: gitTerminalPromptEnvironmentValueConstant},
	})
	return executionError
}

// existingManifestFiles keeps the manifest files present on disk; git add fails on missing paths,
// and lock files are optional for some ecosystems.
func existingManifestFiles(workingDirectory string, manifestFiles []string) []string {
	presentFiles := make([]string, 0, len(manifestFiles))
	for _, manifestFile := range manifestFiles {
		if _, statError := os.Stat(filepath.Join(workingDirectory, manifestFile)); statError == nil {
			presentFiles = append(presentFiles, manifestFile)
		}
	}
	return presentFiles
}
