package execshell

import (
	"context"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	testShellExecutableConstant  = "sh"
	testShellCommandFlagConstant = "-c"
)

func TestOSCommandRunnerCapturesOutputAndExitCode(t *testing.T) {
	if _, lookupError := exec.LookPath(testShellExecutableConstant); lookupError != nil {
		t.Skip("sh is not available")
	}

	runner := NewOSCommandRunner()
	result, runError := runner.Run(context.Background(), ShellCommand{
		Name: CommandName(testShellExecutableConstant),
		Details: CommandDetails{
			Arguments:            []string{testShellCommandFlagConstant, `echo "$DEPUPDATE_TEST_VALUE"; echo problem 1>&2; exit 3`},
			WorkingDirectory:     t.TempDir(),
			EnvironmentVariables: map[string]string{"DEPUPDATE_TEST_VALUE": "visible"},
		},
	})

	require.NoError(t, runError)
	require.Equal(t, 3, result.ExitCode)
	require.Equal(t, "visible\n", result.StandardOutput)
	require.Equal(t, "problem\n", result.StandardError)
}

func TestOSCommandRunnerReportsMissingExecutable(t *testing.T) {
	runner := NewOSCommandRunner()
	_, runError := runner.Run(context.Background(), ShellCommand{Name: CommandName("depupdate-missing-executable")})

	require.Error(t, runError)
}

func TestMergeEnvironmentAppendsSortedOverrides(t *testing.T) {
	merged := mergeEnvironment([]string{"PATH=/usr/bin"}, map[string]string{"GH_TOKEN": "secret", "GIT_TERMINAL_PROMPT": "0"})

	require.Equal(t, []string{"PATH=/usr/bin", "GH_TOKEN=secret", "GIT_TERMINAL_PROMPT=0"}, merged)
}
