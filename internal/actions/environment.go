package actions

import (
	"context"
	"fmt"
	"strings"

	"github.com/sethvargo/go-envconfig"

	"github.com/temirov/depupdate/internal/utils/flags"
)

const (
	environmentDecodeErrorTemplateConstant = "failed to read github actions environment: %w"
)

// Toggle decodes boolean runner variables. Blank values leave the toggle unset.
type Toggle struct {
	Enabled  bool
	Provided bool
}

// EnvDecode implements envconfig.DecoderCtx.
func (toggle *Toggle) EnvDecode(_ context.Context, value string) error {
	if len(strings.TrimSpace(value)) == 0 {
		*toggle = Toggle{}
		return nil
	}
	enabled, parseError := flags.ParseToggleValue(value)
	if parseError != nil {
		return parseError
	}
	*toggle = Toggle{Enabled: enabled, Provided: true}
	return nil
}

// Environment captures the runner variables dependency-update consumes. The
// token input is read by githubauth.ResolveToken alongside its fallbacks.
type Environment struct {
	BaseBranch       string `env:"INPUT_BASE_BRANCH"`
	HeadBranch       string `env:"INPUT_HEAD_BRANCH"`
	WorkingDirectory string `env:"INPUT_WORKING_DIRECTORY"`
	Debug            Toggle `env:"INPUT_DEBUG"`
	Running          Toggle `env:"GITHUB_ACTIONS"`
	Repository       string `env:"GITHUB_REPOSITORY"`
	APIURL           string `env:"GITHUB_API_URL"`
	ServerURL        string `env:"GITHUB_SERVER_URL"`
	// Workspace is the checkout root the working directory input is relative to.
	Workspace   string `env:"GITHUB_WORKSPACE"`
	OutputPath  string `env:"GITHUB_OUTPUT"`
	RunnerDebug Toggle `env:"RUNNER_DEBUG"`
}

// LoadEnvironment decodes the runner environment through lookuper. A nil
// lookuper reads the process environment.
func LoadEnvironment(executionContext context.Context, lookuper envconfig.Lookuper) (Environment, error) {
	if lookuper == nil {
		lookuper = envconfig.OsLookuper()
	}

	var environment Environment
	if processError := envconfig.ProcessWith(executionContext, &envconfig.Config{
		Target:   &environment,
		Lookuper: lookuper,
	}); processError != nil {
		return Environment{}, fmt.Errorf(environmentDecodeErrorTemplateConstant, processError)
	}

	environment.BaseBranch = strings.TrimSpace(environment.BaseBranch)
	environment.HeadBranch = strings.TrimSpace(environment.HeadBranch)
	environment.WorkingDirectory = strings.TrimSpace(environment.WorkingDirectory)
	environment.Repository = strings.TrimSpace(environment.Repository)
	environment.APIURL = strings.TrimSpace(environment.APIURL)
	environment.Workspace = strings.TrimSpace(environment.Workspace)
	return environment, nil
}

// DebugEnabled reports whether the debug input or runner debug logging was requested.
func (environment Environment) DebugEnabled() bool {
	return environment.Debug.Enabled || environment.RunnerDebug.Enabled
}
