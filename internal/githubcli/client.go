package githubcli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/temirov/depupdate/internal/execshell"
	"github.com/temirov/depupdate/internal/pullrequest"
)

const (
	pullRequestSubcommandConstant          = "pr"
	createSubcommandConstant               = "create"
	repoFlagConstant                       = "--repo"
	baseFlagConstant                       = "--base"
	headFlagConstant                       = "--head"
	titleFlagConstant                      = "--title"
	bodyFlagConstant                       = "--body"
	repositoryNameTemplateConstant         = "%s/%s"
	hostedRepositoryNameTemplateConstant   = "%s/%s/%s"
	executorNotConfiguredMessageConstant   = "github cli executor not configured"
	tokenNotConfiguredMessageConstant      = "github cli token not configured"
	githubTokenEnvironmentNameConstant     = "GH_TOKEN"
	githubPromptEnvironmentNameConstant    = "GH_PROMPT_DISABLED"
	githubPromptDisabledValueConstant      = "1"
	pullRequestURLNumberSeparatorConstant  = "/pull/"
	createPullRequestOperationNameConstant = OperationName("CreatePullRequest")
	operationErrorMessageTemplateConstant  = "%s operation failed"
	operationErrorCauseTemplateConstant    = "%s operation failed: %s"
)

// OperationName describes a named GitHub CLI workflow supported by the client.
type OperationName string

// GitHubCommandExecutor is the minimal interface required from execshell.ShellExecutor.
type GitHubCommandExecutor interface {
	ExecuteGitHubCLI(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

var (
	// ErrExecutorNotConfigured indicates the client was constructed without an executor.
	ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)
	// ErrTokenNotConfigured indicates the client was constructed without a token.
	ErrTokenNotConfigured = errors.New(tokenNotConfiguredMessageConstant)
)

// OperationError wraps execution issues for GitHub CLI operations.
type OperationError struct {
	Operation OperationName
	Cause     error
}

// Error describes the operation failure.
func (operationError OperationError) Error() string {
	if operationError.Cause == nil {
		return fmt.Sprintf(operationErrorMessageTemplateConstant, operationError.Operation)
	}
	return fmt.Sprintf(operationErrorCauseTemplateConstant, operationError.Operation, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// Client coordinates GitHub CLI invocations through execshell.
type Client struct {
	executor GitHubCommandExecutor
	token    string
	host     string
}

// NewClient constructs a GitHub CLI client authenticating with token.
// host selects a GitHub Enterprise Server instance; empty means github.com.
func NewClient(executor GitHubCommandExecutor, token string, host string) (*Client, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	trimmedToken := strings.TrimSpace(token)
	if len(trimmedToken) == 0 {
		return nil, ErrTokenNotConfigured
	}
	return &Client{executor: executor, token: trimmedToken, host: strings.TrimSpace(host)}, nil
}

// CreatePullRequest runs gh pr create and parses the pull request URL gh prints.
func (client *Client) CreatePullRequest(executionContext context.Context, request pullrequest.Request) (pullrequest.PullRequest, error) {
	if validationError := request.Validate(); validationError != nil {
		return pullrequest.PullRequest{}, pullrequest.CreationError{Backend: pullrequest.BackendCLI, Request: request, Cause: validationError}
	}

	repositoryName := fmt.Sprintf(repositoryNameTemplateConstant, request.Owner, request.Repository)
	if len(client.host) > 0 {
		repositoryName = fmt.Sprintf(hostedRepositoryNameTemplateConstant, client.host, request.Owner, request.Repository)
	}

	commandDetails := execshell.CommandDetails{
		Arguments: []string{
			pullRequestSubcommandConstant,
			createSubcommandConstant,
			repoFlagConstant,
			repositoryName,
			baseFlagConstant,
			request.BaseBranch,
			headFlagConstant,
			request.HeadBranch,
			titleFlagConstant,
			request.Title,
			bodyFlagConstant,
			request.Body,
		},
		EnvironmentVariables: map[string]string{
			githubTokenEnvironmentNameConstant:  client.token,
			githubPromptEnvironmentNameConstant: githubPromptDisabledValueConstant,
		},
	}

	executionResult, executionError := client.executor.ExecuteGitHubCLI(executionContext, commandDetails)
	if executionError != nil {
		return pullrequest.PullRequest{}, pullrequest.CreationError{
			Backend: pullrequest.BackendCLI,
			Request: request,
			Cause:   OperationError{Operation: createPullRequestOperationNameConstant, Cause: executionError},
		}
	}

	return parsePullRequestOutput(executionResult.StandardOutput), nil
}

// parsePullRequestOutput takes the last non-empty line as the URL; gh may print warnings before it.
func parsePullRequestOutput(standardOutput string) pullrequest.PullRequest {
	outputLines := strings.Split(strings.TrimSpace(standardOutput), "\n")
	pullRequestURL := strings.TrimSpace(outputLines[len(outputLines)-1])

	createdPullRequest := pullrequest.PullRequest{URL: pullRequestURL}
	if separatorIndex := strings.LastIndex(pullRequestURL, pullRequestURLNumberSeparatorConstant); separatorIndex >= 0 {
		if number, parseError := strconv.Atoi(pullRequestURL[separatorIndex+len(pullRequestURLNumberSeparatorConstant):]); parseError == nil {
			createdPullRequest.Number = number
		}
	}
	return createdPullRequest
}
