package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/depupdate/internal/execshell"
)

const (
	gitExecutorMissingMessageConstant           = "git executor not configured"
	workingDirectoryRequiredMessageConstant     = "working directory must be provided"
	manifestFilesRequiredMessageConstant        = "at least one manifest file must be provided"
	manifestStatusFailureTemplateConstant       = "failed to query manifest status: %w"
	gitStatusSubcommandConstant                 = "status"
	gitPorcelainFlagConstant                    = "--porcelain"
	gitPathSeparatorArgumentConstant            = "--"
	gitTerminalPromptEnvironmentNameConstant    = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptEnvironmentDisableConstant = "0"
)

// ErrGitExecutorNotConfigured indicates the repository manager was constructed without an executor.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)

// ErrWorkingDirectoryRequired indicates an empty working directory was supplied.
var ErrWorkingDirectoryRequired = errors.New(workingDirectoryRequiredMessageConstant)

// ErrManifestFilesRequired indicates the status query had nothing to scope to.
var ErrManifestFilesRequired = errors.New(manifestFilesRequiredMessageConstant)

// GitExecutor is the subset of execshell.ShellExecutor used for read-only git queries.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// RepositoryManager runs git queries against a working directory.
type RepositoryManager struct {
	executor GitExecutor
}

// NewRepositoryManager constructs a RepositoryManager.
func NewRepositoryManager(executor GitExecutor) (*RepositoryManager, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	return &RepositoryManager{executor: executor}, nil
}

// ManifestStatus runs "git status --porcelain -- <manifest files>" and returns the raw output.
func (manager *RepositoryManager) ManifestStatus(executionContext context.Context, workingDirectory string, manifestFiles []string) (string, error) {
	if len(strings.TrimSpace(workingDirectory)) == 0 {
		return "", ErrWorkingDirectoryRequired
	}
	if len(manifestFiles) == 0 {
		return "", ErrManifestFilesRequired
	}

	arguments := []string{gitStatusSubcommandConstant, gitPorcelainFlagConstant, gitPathSeparatorArgumentConstant}
	arguments = append(arguments, manifestFiles...)

	executionResult, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:            arguments,
		WorkingDirectory:     workingDirectory,
		EnvironmentVariables: map[string]string{gitTerminalPromptEnvironmentNameConstant: gitTerminalPromptEnvironmentDisableConstant},
	})
	if executionError != nil {
		return "", fmt.Errorf(manifestStatusFailureTemplateConstant, executionError)
	}
	return executionResult.StandardOutput, nil
}

// HasChanges reports whether status output lists any file. Any non-blank output counts, including
// whitespace-only edits to a manifest.
func HasChanges(statusOutput string) bool {
	return len(strings.TrimSpace(statusOutput)) > 0
}
