package tests

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	integrationBinaryNameConstant          = "dependency-update"
	integrationBuildTimeoutConstant        = 2 * time.Minute
	integrationCommandTimeoutConstant      = 30 * time.Second
	integrationGitExecutableNameConstant   = "git"
	integrationEnvironmentTemplateConstant = "%s=%s"
)

var (
	builtBinaryOnce      sync.Once
	builtBinaryDirectory string
	builtBinaryPath      string
	builtBinaryError     error
	builtBinaryOutput    string
)

// buildBinary compiles the command once per test run.
func buildBinary(testInstance *testing.T) string {
	testInstance.Helper()

	builtBinaryOnce.Do(func() {
		currentWorkingDirectory, workingDirectoryError := os.Getwd()
		if workingDirectoryError != nil {
			builtBinaryError = workingDirectoryError
			return
		}

		builtBinaryDirectory, builtBinaryError = os.MkdirTemp("", integrationBinaryNameConstant)
		if builtBinaryError != nil {
			return
		}
		builtBinaryPath = filepath.Join(builtBinaryDirectory, integrationBinaryNameConstant)

		executionContext, cancel := context.WithTimeout(context.Background(), integrationBuildTimeoutConstant)
		defer cancel()

		command := exec.CommandContext(executionContext, "go", "build", "-o", builtBinaryPath, ".")
		command.Dir = filepath.Dir(currentWorkingDirectory)
		outputBytes, buildError := command.CombinedOutput()
		builtBinaryOutput = string(outputBytes)
		builtBinaryError = buildError
	})

	require.NoError(testInstance, builtBinaryError, builtBinaryOutput)
	return builtBinaryPath
}

func removeBuiltBinary() {
	if len(builtBinaryDirectory) > 0 {
		_ = os.RemoveAll(builtBinaryDirectory)
	}
}

func runBinary(testInstance *testing.T, workingDirectory string, environment []string, arguments ...string) (string, error) {
	testInstance.Helper()

	binaryPath := buildBinary(testInstance)

	executionContext, cancel := context.WithTimeout(context.Background(), integrationCommandTimeoutConstant)
	defer cancel()

	command := exec.CommandContext(executionContext, binaryPath, arguments...)
	command.Dir = workingDirectory
	command.Env = append(append([]string{}, os.Environ()...), environment...)

	outputBytes, runError := command.CombinedOutput()
	return string(outputBytes), runError
}

func runGitCommand(testInstance *testing.T, workingDirectory string, arguments ...string) string {
	testInstance.Helper()

	executionContext, cancel := context.WithTimeout(context.Background(), integrationCommandTimeoutConstant)
	defer cancel()

	command := exec.CommandContext(executionContext, integrationGitExecutableNameConstant, arguments...)
	command.Dir = workingDirectory

	outputBytes, commandError := command.CombinedOutput()
	require.NoError(testInstance, commandError, string(outputBytes))
	return string(outputBytes)
}

func writeFile(testInstance *testing.T, filePath string, contents string, mode os.FileMode) {
	testInstance.Helper()
	require.NoError(testInstance, os.MkdirAll(filepath.Dir(filePath), 0o755))
	require.NoError(testInstance, os.WriteFile(filePath, []byte(contents), mode))
}

func readFile(testInstance *testing.T, filePath string) string {
	testInstance.Helper()
	contents, readError := os.ReadFile(filePath)
	require.NoError(testInstance, readError)
	return string(contents)
}

func prependPath(directory string) string {
	return strings.Join([]string{directory, os.Getenv("PATH")}, string(os.PathListSeparator))
}
