// Package inputs validates the configuration values that drive a dependency update run.
package inputs

import (
	"fmt"
	"strings"
)

const (
	// FieldBaseBranch names the base branch input.
	FieldBaseBranch = "base_branch"
	// FieldHeadBranch names the head branch input.
	FieldHeadBranch = "head_branch"
	// FieldWorkingDirectory names the working directory input.
	FieldWorkingDirectory = "working_directory"
	// FieldToken names the authentication token input.
	FieldToken = "gh_token"

	requiredValueMessageConstant            = "value required"
	invalidBranchMessageTemplateConstant    = "%q contains characters outside [A-Za-z0-9_.-/]"
	invalidDirectoryMessageTemplateConstant = "%q contains characters outside [A-Za-z0-9_-/]"
	invalidInputErrorTemplateConstant       = "invalid %s: %s"
	currentDirectoryPrefixConstant          = "./"
	pathSeparatorConstant                   = "/"
)

// Inputs carries the values a run is configured with. Token is a secret.
type Inputs struct {
	BaseBranch       string
	HeadBranch       string
	WorkingDirectory string
	Token            string
	Debug            bool
}

// InvalidInputError identifies the first input that failed validation.
// Value is left empty for the token so the secret is never rendered.
type InvalidInputError struct {
	FieldName string
	Value     string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// IsValidBranchName reports whether name is non-empty and limited to letters, digits, '_', '.', '-', and '/'.
func IsValidBranchName(name string) bool {
	return len(name) > 0 && strings.IndexFunc(name, func(character rune) bool {
		return !isAlphanumeric(character) && !strings.ContainsRune("_.-/", character)
	}) < 0
}

// IsValidDirectoryName reports whether name is non-empty and limited to letters, digits, '_', '-', and '/'.
func IsValidDirectoryName(name string) bool {
	return len(name) > 0 && strings.IndexFunc(name, func(character rune) bool {
		return !isAlphanumeric(character) && !strings.ContainsRune("_-/", character)
	}) < 0
}

// NormalizeWorkingDirectory trims surrounding whitespace, leading "./" segments, and trailing slashes,
// so "./app/" becomes "app". A bare "." or "./" normalizes to the empty string.
func NormalizeWorkingDirectory(rawDirectory string) string {
	normalizedDirectory := strings.TrimSpace(rawDirectory)
	for strings.HasPrefix(normalizedDirectory, currentDirectoryPrefixConstant) {
		normalizedDirectory = strings.TrimLeft(strings.TrimPrefix(normalizedDirectory, currentDirectoryPrefixConstant), pathSeparatorConstant)
	}
	if normalizedDirectory == "." {
		return ""
	}
	if normalizedDirectory != pathSeparatorConstant {
		normalizedDirectory = strings.TrimRight(normalizedDirectory, pathSeparatorConstant)
	}
	return normalizedDirectory
}

// Validate checks the inputs in declaration order and returns an InvalidInputError for the first failure.
// The working directory is expected to be normalized already.
func Validate(candidate Inputs) error {
	if len(candidate.BaseBranch) == 0 {
		return InvalidInputError{FieldName: FieldBaseBranch, Message: requiredValueMessageConstant}
	}
	if !IsValidBranchName(candidate.BaseBranch) {
		return InvalidInputError{FieldName: FieldBaseBranch, Value: candidate.BaseBranch, Message: fmt.Sprintf(invalidBranchMessageTemplateConstant, candidate.BaseBranch)}
	}

	if len(candidate.HeadBranch) == 0 {
		return InvalidInputError{FieldName: FieldHeadBranch, Message: requiredValueMessageConstant}
	}
	if !IsValidBranchName(candidate.HeadBranch) {
		return InvalidInputError{FieldName: FieldHeadBranch, Value: candidate.HeadBranch, Message: fmt.Sprintf(invalidBranchMessageTemplateConstant, candidate.HeadBranch)}
	}

	if len(candidate.WorkingDirectory) == 0 {
		return InvalidInputError{FieldName: FieldWorkingDirectory, Message: requiredValueMessageConstant}
	}
	if !IsValidDirectoryName(candidate.WorkingDirectory) {
		return InvalidInputError{FieldName: FieldWorkingDirectory, Value: candidate.WorkingDirectory, Message: fmt.Sprintf(invalidDirectoryMessageTemplateConstant, candidate.WorkingDirectory)}
	}

	if len(strings.TrimSpace(candidate.Token)) == 0 {
		return InvalidInputError{FieldName: FieldToken, Message: requiredValueMessageConstant}
	}

	return nil
}

func isAlphanumeric(character rune) bool {
	return (character >= 'a' && character <= 'z') || (character >= 'A' && character <= 'Z') || (character >= '0' && character <= '9')
}
