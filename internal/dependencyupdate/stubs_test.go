package dependencyupdate_test

import (
	"context"
	"strings"

	"github.com/temirov/depupdate/internal/execshell"
	"github.com/temirov/depupdate/internal/pullrequest"
)

type recordedCommand struct {
	Name             string
	Arguments        []string
	WorkingDirectory string
}

type stubCommandExecutor struct {
	recorded     []recordedCommand
	statusOutput string
	failures     map[string]error
}

func (executor *stubCommandExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	return executor.record("git", details)
}

func (executor *stubCommandExecutor) ExecuteGitHubCLI(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	return executor.record("gh", details)
}

func (executor *stubCommandExecutor) ExecutePackageManager(_ context.Context, executable string, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	return executor.record(executable, details)
}

// record keys failures and canned output by executable plus first argument, e.g. "git push".
func (executor *stubCommandExecutor) record(name string, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recorded = append(executor.recorded, recordedCommand{
		Name:             name,
		Arguments:        append([]string{}, details.Arguments...),
		WorkingDirectory: details.WorkingDirectory,
	})

	commandKey := name
	if len(details.Arguments) > 0 {
		commandKey = strings.Join([]string{name, details.Arguments[0]}, " ")
	}
	if failure, exists := executor.failures[commandKey]; exists {
		return execshell.ExecutionResult{}, failure
	}
	if commandKey == "git status" {
		return execshell.ExecutionResult{StandardOutput: executor.statusOutput}, nil
	}
	return execshell.ExecutionResult{}, nil
}

func (executor *stubCommandExecutor) commandKeys() []string {
	keys := make([]string, 0, len(executor.recorded))
	for _, command := range executor.recorded {
		keys = append(keys, strings.TrimSpace(command.Name+" "+strings.Join(command.Arguments, " ")))
	}
	return keys
}

type stubPullRequestCreator struct {
	requests    []pullrequest.Request
	pullRequest pullrequest.PullRequest
	err         error
}

func (creator *stubPullRequestCreator) CreatePullRequest(_ context.Context, request pullrequest.Request) (pullrequest.PullRequest, error) {
	creator.requests = append(creator.requests, request)
	if creator.err != nil {
		return pullrequest.PullRequest{}, creator.err
	}
	return creator.pullRequest, nil
}
