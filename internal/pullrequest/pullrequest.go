// Package pullrequest defines the pull request creation contract shared by the GitHub API and gh CLI clients.
package pullrequest

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	incompleteRequestMessageConstant     = "pull request request incomplete"
	missingFieldTemplateConstant         = "%w: %s required"
	creationFailedTemplateConstant       = "%s: create pull request %s/%s %s -> %s failed: %v"
	creationFailedStatusTemplateConstant = "%s: create pull request %s/%s %s -> %s failed with status %d: %v"
)

// Backend names a pull request creation implementation.
type Backend string

// Supported backends.
const (
	BackendAPI Backend = "api"
	BackendCLI Backend = "cli"
)

// ErrIncompleteRequest indicates a required request field was empty.
var ErrIncompleteRequest = errors.New(incompleteRequestMessageConstant)

// Request describes the pull request to open.
type Request struct {
	Owner      string
	Repository string
	Title      string
	Body       string
	BaseBranch string
	HeadBranch string
}

// Validate reports the first missing required field.
func (request Request) Validate() error {
	requiredFields := []struct {
		name  string
		value string
	}{
		{name: "owner", value: request.Owner},
		{name: "repository", value: request.Repository},
		{name: "title", value: request.Title},
		{name: "base branch", value: request.BaseBranch},
		{name: "head branch", value: request.HeadBranch},
	}
	for _, requiredField := range requiredFields {
		if len(strings.TrimSpace(requiredField.value)) == 0 {
			return fmt.Errorf(missingFieldTemplateConstant, ErrIncompleteRequest, requiredField.name)
		}
	}
	return nil
}

// PullRequest captures the created pull request.
type PullRequest struct {
	Number int
	URL    string
}

// Creator opens pull requests.
type Creator interface {
	CreatePullRequest(executionContext context.Context, request Request) (PullRequest, error)
}

// CreationError reports a failed pull request creation. StatusCode is set when the API answered.
type CreationError struct {
	Backend    Backend
	Request    Request
	StatusCode int
	Cause      error
}

// Error describes the failure without rendering credentials.
func (creationError CreationError) Error() string {
	request := creationError.Request
	if creationError.StatusCode > 0 {
		return fmt.Sprintf(creationFailedStatusTemplateConstant, creationError.Backend, request.Owner, request.Repository, request.HeadBranch, request.BaseBranch, creationError.StatusCode, creationError.Cause)
	}
	return fmt.Sprintf(creationFailedTemplateConstant, creationError.Backend, request.Owner, request.Repository, request.HeadBranch, request.BaseBranch, creationError.Cause)
}

// Unwrap exposes the underlying cause.
func (creationError CreationError) Unwrap() error {
	return creationError.Cause
}
