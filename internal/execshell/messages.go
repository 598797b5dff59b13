package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	referencesJoinSeparatorConstant         = ", "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	defaultWorkingDirectoryLabelConstant    = "current directory"
	fallbackUnknownValueLabelConstant       = "unknown"
	flagPrefixConstant                      = "-"
	pathSeparatorArgumentConstant           = "--"
)

const (
	gitStatusSubcommandNameConstant   = "status"
	gitCheckoutSubcommandNameConstant = "checkout"
	gitAddSubcommandNameConstant      = "add"
	gitCommitSubcommandNameConstant   = "commit"
	gitPushSubcommandNameConstant     = "push"
	gitConfigSubcommandNameConstant   = "config"
	gitMessageFlagConstant            = "-m"
	gitResetBranchFlagConstant        = "-B"
	gitCreateBranchFlagConstant       = "-b"
)

const (
	gitStatusStartTemplateConstant              = "Checking manifest status in %s"
	gitStatusSuccessTemplateConstant            = "Manifest status collected in %s"
	gitStatusFailureTemplateConstant            = "Failed to check manifest status in %s (exit code %d%s)"
	gitStatusExecutionFailureTemplateConstant   = "Unable to check manifest status in %s: %s"
	gitCheckoutStartTemplateConstant            = "Switching %s to branch %s"
	gitCheckoutSuccessTemplateConstant          = "%s is on branch %s"
	gitCheckoutFailureTemplateConstant          = "Failed to switch %s to branch %s (exit code %d%s)"
	gitCheckoutExecutionFailureTemplateConstant = "Unable to switch %s to branch %s: %s"
	gitAddStartTemplateConstant                 = "Staging %s in %s"
	gitAddSuccessTemplateConstant               = "Staged %s in %s"
	gitAddFailureTemplateConstant               = "Failed to stage %s in %s (exit code %d%s)"
	gitAddExecutionFailureTemplateConstant      = "Unable to stage %s in %s: %s"
	gitCommitStartTemplateConstant              = "Committing in %s: %s"
	gitCommitSuccessTemplateConstant            = "Committed in %s: %s"
	gitCommitFailureTemplateConstant            = "Failed to commit in %s: %s (exit code %d%s)"
	gitCommitExecutionFailureTemplateConstant   = "Unable to commit in %s: %s: %s"
	gitPushStartTemplateConstant                = "Pushing %s to %s from %s"
	gitPushSuccessTemplateConstant              = "Pushed %s to %s from %s"
	gitPushFailureTemplateConstant              = "Failed to push %s to %s from %s (exit code %d%s)"
	gitPushExecutionFailureTemplateConstant     = "Unable to push %s to %s from %s: %s"
	gitConfigStartTemplateConstant              = "Setting %s in %s"
	gitConfigSuccessTemplateConstant            = "Set %s in %s"
	gitConfigFailureTemplateConstant            = "Failed to set %s in %s (exit code %d%s)"
	gitConfigExecutionFailureTemplateConstant   = "Unable to set %s in %s: %s"
)

const (
	githubPullRequestSubcommandNameConstant                 = "pr"
	githubCreateSubcommandNameConstant                      = "create"
	githubBaseFlagConstant                                  = "--base"
	githubHeadFlagConstant                                  = "--head"
	githubPullRequestCreateStartTemplateConstant            = "Opening pull request %s -> %s"
	githubPullRequestCreateSuccessTemplateConstant          = "Opened pull request %s -> %s"
	githubPullRequestCreateFailureTemplateConstant          = "Failed to open pull request %s -> %s (exit code %d%s)"
	githubPullRequestCreateExecutionFailureTemplateConstant = "Unable to open pull request %s -> %s: %s"
	githubPullRequestIdentificationArgumentCountConstant    = 2
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	switch command.Name {
	case CommandGit:
		return formatter.describeGitMessage(command, result, failure, stage)
	case CommandGitHub:
		return formatter.describeGitHubMessage(command, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if len(command.Details.Arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	subcommand := strings.TrimSpace(command.Details.Arguments[0])
	switch subcommand {
	case gitStatusSubcommandNameConstant:
		return formatter.describeGitStatusMessage(command, result, failure, stage)
	case gitCheckoutSubcommandNameConstant:
		return formatter.describeGitCheckoutMessage(command, result, failure, stage)
	case gitAddSubcommandNameConstant:
		return formatter.describeGitAddMessage(command, result, failure, stage)
	case gitCommitSubcommandNameConstant:
		return formatter.describeGitCommitMessage(command, result, failure, stage)
	case gitPushSubcommandNameConstant:
		return formatter.describeGitPushMessage(command, result, failure, stage)
	case gitConfigSubcommandNameConstant:
		return formatter.describeGitConfigMessage(command, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitStatusMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	workingDirectory := formatter.describeWorkingDirectory(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitStatusStartTemplateConstant, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(gitStatusSuccessTemplateConstant, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(gitStatusFailureTemplateConstant, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(gitStatusExecutionFailureTemplateConstant, workingDirectory, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitCheckoutMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	workingDirectory := formatter.describeWorkingDirectory(command)
	branchName := formatter.ensureValue(formatter.extractCheckoutBranch(command.Details.Arguments))
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitCheckoutStartTemplateConstant, workingDirectory, branchName)
	case messageStageSuccess:
		return fmt.Sprintf(gitCheckoutSuccessTemplateConstant, workingDirectory, branchName)
	case messageStageFailure:
		return fmt.Sprintf(gitCheckoutFailureTemplateConstant, workingDirectory, branchName, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(gitCheckoutExecutionFailureTemplateConstant, workingDirectory, branchName, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitAddMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	workingDirectory := formatter.describeWorkingDirectory(command)
	targets := formatter.ensureValue(formatter.joinReferences(formatter.extractPositionalArguments(command.Details.Arguments[1:])))
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitAddStartTemplateConstant, targets, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(gitAddSuccessTemplateConstant, targets, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(gitAddFailureTemplateConstant, targets, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(gitAddExecutionFailureTemplateConstant, targets, workingDirectory, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitCommitMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	workingDirectory := formatter.describeWorkingDirectory(command)
	commitMessage := formatter.ensureValue(findFlagValue(command.Details.Arguments, gitMessageFlagConstant))
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitCommitStartTemplateConstant, workingDirectory, commitMessage)
	case messageStageSuccess:
		return fmt.Sprintf(gitCommitSuccessTemplateConstant, workingDirectory, commitMessage)
	case messageStageFailure:
		return fmt.Sprintf(gitCommitFailureTemplateConstant, workingDirectory, commitMessage, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(gitCommitExecutionFailureTemplateConstant, workingDirectory, commitMessage, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitPushMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	workingDirectory := formatter.describeWorkingDirectory(command)
	positionalArguments := formatter.extractPositionalArguments(command.Details.Arguments[1:])
	remoteName := formatter.ensureValue(formatter.argumentAtIndex(positionalArguments, 0))
	references := formatter.joinReferences(positionalArguments[min(1, len(positionalArguments)):])
	branchReference := formatter.ensureValue(references)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitPushStartTemplateConstant, branchReference, remoteName, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(gitPushSuccessTemplateConstant, branchReference, remoteName, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(gitPushFailureTemplateConstant, branchReference, remoteName, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(gitPushExecutionFailureTemplateConstant, branchReference, remoteName, workingDirectory, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitConfigMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	workingDirectory := formatter.describeWorkingDirectory(command)
	configurationKey := formatter.ensureValue(formatter.argumentAtIndex(formatter.extractPositionalArguments(command.Details.Arguments[1:]), 0))
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitConfigStartTemplateConstant, configurationKey, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(gitConfigSuccessTemplateConstant, configurationKey, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(gitConfigFailureTemplateConstant, configurationKey, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(gitConfigExecutionFailureTemplateConstant, configurationKey, workingDirectory, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitHubMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	if len(arguments) < githubPullRequestIdentificationArgumentCountConstant {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
	if strings.TrimSpace(arguments[0]) != githubPullRequestSubcommandNameConstant || strings.TrimSpace(arguments[1]) != githubCreateSubcommandNameConstant {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	headBranch := formatter.ensureValue(findFlagValue(arguments, githubHeadFlagConstant))
	baseBranch := formatter.ensureValue(findFlagValue(arguments, githubBaseFlagConstant))
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(githubPullRequestCreateStartTemplateConstant, headBranch, baseBranch)
	case messageStageSuccess:
		return fmt.Sprintf(githubPullRequestCreateSuccessTemplateConstant, headBranch, baseBranch)
	case messageStageFailure:
		return fmt.Sprintf(githubPullRequestCreateFailureTemplateConstant, headBranch, baseBranch, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(githubPullRequestCreateExecutionFailureTemplateConstant, headBranch, baseBranch, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandLabel := string(command.Name)
	if len(command.Details.Arguments) > 0 {
		commandLabel = fmt.Sprintf("%s %s", commandLabel, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel, formatter.formatWorkingDirectorySuffix(command))
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) argumentAtIndex(arguments []string, index int) string {
	if index < 0 || index >= len(arguments) {
		return emptyStringConstant
	}
	return strings.TrimSpace(arguments[index])
}

func (formatter CommandMessageFormatter) ensureValue(value string) string {
	trimmedValue := strings.TrimSpace(value)
	if len(trimmedValue) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return trimmedValue
}

// extractCheckoutBranch returns the branch named by -b/-B, or the first positional argument.
func (formatter CommandMessageFormatter) extractCheckoutBranch(arguments []string) string {
	for _, flag := range []string{gitResetBranchFlagConstant, gitCreateBranchFlagConstant} {
		if branchName := findFlagValue(arguments, flag); len(branchName) > 0 {
			return branchName
		}
	}
	if len(arguments) < 2 {
		return emptyStringConstant
	}
	return formatter.argumentAtIndex(formatter.extractPositionalArguments(arguments[1:]), 0)
}

func (formatter CommandMessageFormatter) extractPositionalArguments(arguments []string) []string {
	positionalArguments := make([]string, 0, len(arguments))
	for _, argument := range arguments {
		trimmedArgument := strings.TrimSpace(argument)
		if len(trimmedArgument) == 0 || trimmedArgument == pathSeparatorArgumentConstant {
			continue
		}
		if strings.HasPrefix(trimmedArgument, flagPrefixConstant) {
			continue
		}
		positionalArguments = append(positionalArguments, trimmedArgument)
	}
	return positionalArguments
}

func (formatter CommandMessageFormatter) joinReferences(references []string) string {
	return strings.Join(references, referencesJoinSeparatorConstant)
}

func findFlagValue(arguments []string, flag string) string {
	for index := 0; index < len(arguments)-1; index++ {
		if strings.TrimSpace(arguments[index]) == flag {
			return strings.TrimSpace(arguments[index+1])
		}
	}
	return emptyStringConstant
}
