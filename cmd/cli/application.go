package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/depupdate/internal/dependencyupdate"
	"github.com/temirov/depupdate/internal/utils"
	flagutils "github.com/temirov/depupdate/internal/utils/flags"
)

const (
	applicationNameConstant                 = "dependency-update"
	applicationShortDescriptionConstant     = "Update project dependencies and open a pull request"
	applicationLongDescriptionConstant      = "dependency-update runs a package manager update in a repository working directory and, when the manifest files changed, pushes the result to a branch and opens a pull request. It runs as a GitHub Actions step or from a terminal."
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured log level."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Override the configured log format."
	logFormatSettingNameConstant            = "log format"
	versionFlagNameConstant                 = "version"
	versionFlagUsageConstant                = "Print the application version and exit."
	versionOutputTemplateConstant           = "%s version: %s\n"
	developmentVersionConstant              = "dev"
	develBuildVersionConstant               = "(devel)"
	commonConfigurationKeyConstant          = "common"
	commonLogLevelConfigKeyConstant         = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant        = commonConfigurationKeyConstant + ".log_format"
	toolsConfigurationKeyConstant           = "tools"
	updateConfigurationKeyConstant          = toolsConfigurationKeyConstant + ".update"
	environmentPrefixConstant               = "DEPUPDATE"
	configurationNameConstant               = "config"
	configurationTypeConstant               = "yaml"
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	commandBuildErrorTemplateConstant       = "unable to build %s command: %w"
	rootCommandInfoMessageConstant          = "dependency-update CLI executed"
	rootCommandDebugMessageConstant         = "dependency-update CLI diagnostics"
	logFieldCommandNameConstant             = "command_name"
	logFieldArgumentCountConstant           = "argument_count"
	logFieldArgumentsConstant               = "arguments"
	loggerNotInitializedMessageConstant     = "logger not initialized"
	defaultConfigurationSearchPathConstant  = "."
	userConfigurationSearchPathConstant     = "~/.config/dependency-update"
	updateCommandNameConstant               = "update"
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common ApplicationCommonConfiguration `mapstructure:"common"`
	Tools  ApplicationToolsConfiguration  `mapstructure:"tools"`
}

// ApplicationCommonConfiguration stores logging configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// ApplicationToolsConfiguration holds configuration for CLI subcommands.
type ApplicationToolsConfiguration struct {
	Update dependencyupdate.CommandConfiguration `mapstructure:"update"`
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand           *cobra.Command
	configurationLoader   *utils.ConfigurationLoader
	loggerFactory         *utils.LoggerFactory
	logger                *zap.Logger
	logLevel              zap.AtomicLevel
	configuration         ApplicationConfiguration
	configurationMetadata utils.LoadedConfiguration
	configurationFilePath string
	logLevelFlagValue     string
	logFormatFlagValue    string
	versionFlagValue      bool
	versionResolver       func(context.Context) string
	exitFunction          func(int)
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() (*Application, error) {
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		[]string{defaultConfigurationSearchPathConstant, userConfigurationSearchPathConstant},
	)
	configurationLoader.SetEmbeddedConfiguration(EmbeddedDefaultConfiguration())

	application := &Application{
		configurationLoader: configurationLoader,
		loggerFactory:       utils.NewLoggerFactory(),
		logger:              zap.NewNop(),
		logLevel:            zap.NewAtomicLevelAt(zap.InfoLevel),
		versionResolver:     resolveBuildVersion,
		exitFunction:        os.Exit,
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			if application.versionFlagValue {
				application.printVersion(command)
				return nil
			}
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runRootCommand(command, arguments)
		},
	}

	cobraCommand.SetContext(context.Background())
	persistentFlags := cobraCommand.PersistentFlags()
	persistentFlags.StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	persistentFlags.StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	persistentFlags.StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", flagutils.FormatChoiceUsage(string(utils.LogFormatStructured), utils.SupportedLogFormats(), logFormatFlagUsageConstant))
	flagutils.AddToggleFlag(persistentFlags, &application.versionFlagValue, versionFlagNameConstant, false, versionFlagUsageConstant)

	updateBuilder := dependencyupdate.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		DebugLoggingEnabler: func() {
			application.logLevel.SetLevel(zap.DebugLevel)
		},
		ConfigurationProvider: func() dependencyupdate.CommandConfiguration {
			return application.configuration.Tools.Update
		},
	}
	updateCommand, updateBuildError := updateBuilder.Build()
	if updateBuildError != nil {
		return nil, fmt.Errorf(commandBuildErrorTemplateConstant, updateCommandNameConstant, updateBuildError)
	}
	cobraCommand.AddCommand(updateCommand)

	application.rootCommand = cobraCommand

	return application, nil
}

// Execute runs the configured Cobra command hierarchy with the process arguments and ensures logger flushing.
func (application *Application) Execute() error {
	return application.ExecuteWithArguments(os.Args[1:])
}

// ExecuteWithArguments runs the command hierarchy with explicit arguments.
func (application *Application) ExecuteWithArguments(arguments []string) error {
	application.rootCommand.SetArgs(flagutils.NormalizeToggleArguments(arguments))
	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	application, applicationError := NewApplication()
	if applicationError != nil {
		return applicationError
	}
	return application.Execute()
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:  string(utils.LogLevelInfo),
		commonLogFormatConfigKeyConstant: string(utils.LogFormatStructured),
	}
	for configurationKey, configurationValue := range dependencyupdate.DefaultConfigurationValues(updateConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	logFormat, formatError := flagutils.NormalizeChoice(logFormatSettingNameConstant, application.configuration.Common.LogFormat, string(utils.LogFormatStructured), utils.SupportedLogFormats())
	if formatError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, formatError)
	}
	application.configuration.Common.LogFormat = logFormat

	logLevel, levelError := utils.ParseLogLevel(utils.LogLevel(strings.ToLower(strings.TrimSpace(application.configuration.Common.LogLevel))))
	if levelError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, levelError)
	}
	application.logLevel.SetLevel(logLevel)

	logger, loggerCreationError := application.loggerFactory.CreateLoggerWithLevel(application.logLevel, utils.LogFormat(logFormat))
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = logger

	application.logger.Info(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)

	return nil
}

func (application *Application) printVersion(command *cobra.Command) {
	fmt.Fprintf(command.OutOrStdout(), versionOutputTemplateConstant, applicationNameConstant, application.versionResolver(command.Context()))
	application.exitFunction(0)
}

func (application *Application) runRootCommand(command *cobra.Command, arguments []string) error {
	if application.logger == nil {
		return errors.New(loggerNotInitializedMessageConstant)
	}

	application.logger.Info(
		rootCommandInfoMessageConstant,
		zap.String(logFieldCommandNameConstant, command.Name()),
		zap.Int(logFieldArgumentCountConstant, len(arguments)),
	)

	application.logger.Debug(
		rootCommandDebugMessageConstant,
		zap.Strings(logFieldArgumentsConstant, arguments),
	)

	return command.Help()
}

func (application *Application) flushLogger() error {
	if syncError := application.syncLoggerInstance(application.logger); syncError != nil {
		return syncError
	}
	return nil
}

func (application *Application) syncLoggerInstance(logger *zap.Logger) error {
	if logger == nil {
		return nil
	}

	syncError := logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	case errors.Is(syncError, syscall.ENOTTY):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}
	for _, flagSet := range []*pflag.FlagSet{command.Flags(), command.Root().PersistentFlags()} {
		if flag := flagSet.Lookup(flagName); flag != nil && flag.Changed {
			return true
		}
	}
	return false
}

func resolveBuildVersion(context.Context) string {
	buildInfo, available := debug.ReadBuildInfo()
	if !available {
		return developmentVersionConstant
	}
	moduleVersion := strings.TrimSpace(buildInfo.Main.Version)
	if len(moduleVersion) == 0 || moduleVersion == develBuildVersionConstant {
		return developmentVersionConstant
	}
	return moduleVersion
}
