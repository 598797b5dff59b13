package cli_test

import (
	"bytes"
	"testing"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/temirov/depupdate/cmd/cli"
	"github.com/temirov/depupdate/internal/dependencyupdate"
)

const (
	testUpdateConfigurationKeyConstant = "tools.update"
	testCommonLogLevelKeyConstant      = "common.log_level"
	testCommonLogFormatKeyConstant     = "common.log_format"
)

func TestEmbeddedDefaultConfigurationMatchesCommandDefaults(testInstance *testing.T) {
	configurationData, configurationType := cli.EmbeddedDefaultConfiguration()
	require.NotEmpty(testInstance, configurationData)

	viperInstance := viper.New()
	viperInstance.SetConfigType(configurationType)
	require.NoError(testInstance, viperInstance.ReadConfig(bytes.NewReader(configurationData)))

	require.Equal(testInstance, "info", viperInstance.GetString(testCommonLogLevelKeyConstant))
	require.Equal(testInstance, "structured", viperInstance.GetString(testCommonLogFormatKeyConstant))

	var updateConfiguration dependencyupdate.CommandConfiguration
	decodeOptions(testInstance, viperInstance.Get(testUpdateConfigurationKeyConstant), &updateConfiguration)

	require.Equal(testInstance, dependencyupdate.DefaultCommandConfiguration(), updateConfiguration)
}

func TestEmbeddedDefaultConfigurationReturnsCopy(testInstance *testing.T) {
	firstCopy, _ := cli.EmbeddedDefaultConfiguration()
	firstCopy[0] = '#'

	secondCopy, _ := cli.EmbeddedDefaultConfiguration()
	require.NotEqual(testInstance, byte('#'), secondCopy[0])
}

func TestUpdateCommandRequiresInputs(testInstance *testing.T) {
	testInstance.Chdir(testInstance.TempDir())
	testInstance.Setenv("HOME", testInstance.TempDir())
	for _, variableName := range []string{"INPUT_BASE_BRANCH", "INPUT_HEAD_BRANCH", "INPUT_WORKING_DIRECTORY", "INPUT_GH_TOKEN", "GH_TOKEN", "GITHUB_TOKEN", "GITHUB_API_TOKEN", "GITHUB_OUTPUT"} {
		testInstance.Setenv(variableName, "")
	}

	application, applicationError := cli.NewApplication()
	require.NoError(testInstance, applicationError)
	executionError := application.ExecuteWithArguments([]string{"update", "--log-level", "error"})
	require.Error(testInstance, executionError)
}

func decodeOptions(testInstance *testing.T, input any, target any) {
	testInstance.Helper()

	decoder, decoderError := mapstructure.NewDecoder(&mapstructure.DecoderConfig{TagName: "mapstructure", Result: target})
	require.NoError(testInstance, decoderError)
	require.NoError(testInstance, decoder.Decode(input))
}
