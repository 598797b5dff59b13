package gitrepo

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/stretchr/testify/require"

	"github.com/temirov/depupdate/internal/execshell"
)

type stubGitExecutor struct {
	result           execshell.ExecutionResult
	executionError   error
	recordedCommands []execshell.CommandDetails
}

func (executor *stubGitExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordedCommands = append(executor.recordedCommands, details)
	return executor.result, executor.executionError
}

func TestNewRepositoryManagerRequiresExecutor(t *testing.T) {
	manager, creationError := NewRepositoryManager(nil)
	require.ErrorIs(t, creationError, ErrGitExecutorNotConfigured)
	require.Nil(t, manager)
}

func TestManifestStatusScopesQueryToManifestFiles(t *testing.T) {
	executor := &stubGitExecutor{result: execshell.ExecutionResult{StandardOutput: " M package-lock.json\n"}}
	manager, creationError := NewRepositoryManager(executor)
	require.NoError(t, creationError)

	statusOutput, statusError := manager.ManifestStatus(context.Background(), "app", []string{"package.json", "package-lock.json"})
	require.NoError(t, statusError)
	require.Equal(t, " M package-lock.json\n", statusOutput)
	require.True(t, HasChanges(statusOutput))

	require.Len(t, executor.recordedCommands, 1)
	require.Equal(t, []string{"status", "--porcelain", "--", "package.json", "package-lock.json"}, executor.recordedCommands[0].Arguments)
	require.Equal(t, "app", executor.recordedCommands[0].WorkingDirectory)
	require.Equal(t, "0", executor.recordedCommands[0].EnvironmentVariables["GIT_TERMINAL_PROMPT"])
}

func TestManifestStatusValidationAndFailures(t *testing.T) {
	executor := &stubGitExecutor{executionError: errors.New("not a git repository")}
	manager, creationError := NewRepositoryManager(executor)
	require.NoError(t, creationError)

	_, statusError := manager.ManifestStatus(context.Background(), " ", []string{"package.json"})
	require.ErrorIs(t, statusError, ErrWorkingDirectoryRequired)

	_, statusError = manager.ManifestStatus(context.Background(), "app", nil)
	require.ErrorIs(t, statusError, ErrManifestFilesRequired)
	require.Empty(t, executor.recordedCommands)

	_, statusError = manager.ManifestStatus(context.Background(), "app", []string{"package.json"})
	require.ErrorContains(t, statusError, "not a git repository")
}

func TestHasChanges(t *testing.T) {
	require.False(t, HasChanges(""))
	require.False(t, HasChanges(" \n\t\n"))
	require.True(t, HasChanges("?? package-lock.json"))
	require.True(t, HasChanges(" M package.json\n M package-lock.json\n"))
}

func TestResolveRepositoryIdentityFromNestedDirectory(t *testing.T) {
	repositoryRoot := t.TempDir()
	repository, initError := git.PlainInit(repositoryRoot, false)
	require.NoError(t, initError)

	_, remoteError := repository.CreateRemote(&gitconfig.RemoteConfig{
		Name: "origin",
		URLs: []string{"git@github.com:owner/example.git"},
	})
	require.NoError(t, remoteError)
	_, remoteError = repository.CreateRemote(&gitconfig.RemoteConfig{
		Name: "upstream",
		URLs: []string{"https://github.com/upstream-org/example.git"},
	})
	require.NoError(t, remoteError)

	applicationDirectory := filepath.Join(repositoryRoot, "app")
	require.NoError(t, os.MkdirAll(applicationDirectory, 0o755))

	identity, resolveError := ResolveRepositoryIdentity(applicationDirectory, "")
	require.NoError(t, resolveError)
	require.Equal(t, "owner/example", identity.FullName())

	identity, resolveError = ResolveRepositoryIdentity(applicationDirectory, "upstream")
	require.NoError(t, resolveError)
	require.Equal(t, "upstream-org", identity.Owner)

	_, resolveError = ResolveRepositoryIdentity(applicationDirectory, "missing")
	require.Error(t, resolveError)
}

func TestResolveRepositoryIdentityOutsideRepository(t *testing.T) {
	_, resolveError := ResolveRepositoryIdentity(t.TempDir(), "origin")
	require.ErrorIs(t, resolveError, git.ErrRepositoryNotExists)
}
