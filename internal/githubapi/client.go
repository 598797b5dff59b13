// Package githubapi opens pull requests through the GitHub REST API.
package githubapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v75/github"
	"golang.org/x/oauth2"

	"github.com/temirov/depupdate/internal/pullrequest"
)

const (
	// DefaultAPIBaseURL is the public GitHub REST endpoint.
	DefaultAPIBaseURL = "https://api.github.com/"

	tokenRequiredMessageConstant      = "github api token not configured"
	baseURLNotAbsoluteMessageConstant = "absolute url with scheme and host required"
	invalidBaseURLTemplateConstant    = "invalid github api url %q: %w"
	userAgentConstant                 = "dependency-update"
	urlPathSeparatorConstant          = "/"
)

// ErrTokenNotConfigured indicates the client was constructed without a token.
var ErrTokenNotConfigured = errors.New(tokenRequiredMessageConstant)

// ErrBaseURLNotAbsolute indicates the configured API URL lacks a scheme or host.
var ErrBaseURLNotAbsolute = errors.New(baseURLNotAbsoluteMessageConstant)

// Options configures the REST client.
type Options struct {
	Token string
	// BaseURL selects a GitHub Enterprise Server endpoint such as https://github.example.com/api/v3.
	BaseURL string
	// HTTPClient is the transport the oauth2 client wraps. Nil uses http.DefaultClient.
	HTTPClient *http.Client
}

// Client creates pull requests with go-github.
type Client struct {
	restClient *github.Client
}

// NewClient builds a token-authenticated REST client.
func NewClient(executionContext context.Context, options Options) (*Client, error) {
	token := strings.TrimSpace(options.Token)
	if len(token) == 0 {
		return nil, ErrTokenNotConfigured
	}

	if options.HTTPClient != nil {
		executionContext = context.WithValue(executionContext, oauth2.HTTPClient, options.HTTPClient)
	}
	tokenSource := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	restClient := github.NewClient(oauth2.NewClient(executionContext, tokenSource))
	restClient.UserAgent = userAgentConstant

	trimmedBaseURL := strings.TrimSpace(options.BaseURL)
	if len(trimmedBaseURL) > 0 {
		if !strings.HasSuffix(trimmedBaseURL, urlPathSeparatorConstant) {
			trimmedBaseURL += urlPathSeparatorConstant
		}
		parsedBaseURL, parseError := url.Parse(trimmedBaseURL)
		if parseError != nil {
			return nil, fmt.Errorf(invalidBaseURLTemplateConstant, options.BaseURL, parseError)
		}
		if len(parsedBaseURL.Scheme) == 0 || len(parsedBaseURL.Host) == 0 {
			return nil, fmt.Errorf(invalidBaseURLTemplateConstant, options.BaseURL, ErrBaseURLNotAbsolute)
		}
		restClient.BaseURL = parsedBaseURL
	}

	return &Client{restClient: restClient}, nil
}

// BaseURL reports the REST endpoint in use.
func (client *Client) BaseURL() string {
	return client.restClient.BaseURL.String()
}

// CreatePullRequest opens a pull request. Failures are returned as pullrequest.CreationError
// carrying the HTTP status when GitHub responded.
func (client *Client) CreatePullRequest(executionContext context.Context, request pullrequest.Request) (pullrequest.PullRequest, error) {
	if validationError := request.Validate(); validationError != nil {
		return pullrequest.PullRequest{}, pullrequest.CreationError{Backend: pullrequest.BackendAPI, Request: request, Cause: validationError}
	}

	createdPullRequest, response, createError := client.restClient.PullRequests.Create(executionContext, request.Owner, request.Repository, &github.NewPullRequest{
		Title: github.Ptr(request.Title),
		Body:  github.Ptr(request.Body),
		Base:  github.Ptr(request.BaseBranch),
		Head:  github.Ptr(request.HeadBranch),
	})
	if createError != nil {
		creationError := pullrequest.CreationError{Backend: pullrequest.BackendAPI, Request: request, Cause: createError}
		if response != nil {
			creationError.StatusCode = response.StatusCode
		}
		return pullrequest.PullRequest{}, creationError
	}

	return pullrequest.PullRequest{
		Number: createdPullRequest.GetNumber(),
		URL:    createdPullRequest.GetHTMLURL(),
	}, nil
}
