package packagemanager

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/depupdate/internal/execshell"
)

const (
	executorMissingMessageConstant      = "package manager executor not configured"
	ecosystemIncompleteMessageConstant  = "ecosystem must name an executable and at least one update step"
	workingDirectoryRequiredConstant    = "working directory must be provided"
	updateStepFailureTemplateConstant   = "%s update step %q failed: %w"
	updateStepArgumentSeparatorConstant = " "
)

// ErrExecutorNotConfigured indicates the updater was constructed without an executor.
var ErrExecutorNotConfigured = errors.New(executorMissingMessageConstant)

// ErrEcosystemIncomplete indicates the ecosystem profile cannot drive an update.
var ErrEcosystemIncomplete = errors.New(ecosystemIncompleteMessageConstant)

// ErrWorkingDirectoryRequired indicates Update was called without a working directory.
var ErrWorkingDirectoryRequired = errors.New(workingDirectoryRequiredConstant)

// CommandExecutor is the subset of execshell.ShellExecutor used to run package managers.
type CommandExecutor interface {
	ExecutePackageManager(executionContext context.Context, executable string, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Updater runs an ecosystem's update steps in a working directory.
type Updater struct {
	executor  CommandExecutor
	ecosystem Ecosystem
}

// NewUpdater constructs an Updater for the ecosystem.
func NewUpdater(executor CommandExecutor, ecosystem Ecosystem) (*Updater, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	if len(strings.TrimSpace(ecosystem.Executable)) == 0 || len(ecosystem.UpdateSteps) == 0 {
		return nil, ErrEcosystemIncomplete
	}
	return &Updater{executor: executor, ecosystem: ecosystem.clone()}, nil
}

// Ecosystem returns the profile the updater runs.
func (updater *Updater) Ecosystem() Ecosystem {
	return updater.ecosystem.clone()
}

// Update runs every update step in order and stops at the first failure.
// Failures wrap execshell.CommandFailedError or execshell.CommandExecutionError.
func (updater *Updater) Update(executionContext context.Context, workingDirectory string) error {
	if len(strings.TrimSpace(workingDirectory)) == 0 {
		return ErrWorkingDirectoryRequired
	}

	for _, stepArguments := range updater.ecosystem.UpdateSteps {
		_, executionError := updater.executor.ExecutePackageManager(executionContext, updater.ecosystem.Executable, execshell.CommandDetails{
			Arguments:        append([]string{}, stepArguments...),
			WorkingDirectory: workingDirectory,
		})
		if executionError != nil {
			return fmt.Errorf(updateStepFailureTemplateConstant, updater.ecosystem.Executable, strings.Join(stepArguments, updateStepArgumentSeparatorConstant), executionError)
		}
	}
	return nil
}
