// Package utils exposes reusable helpers consumed by the dependency-update commands.
//
// It houses ConfigurationLoader, which layers embedded defaults, configuration
// files, and DEPUPDATE_ environment variables through Viper, and LoggerFactory,
// which builds zap loggers in structured, console, or logfmt encodings.
// NewRedactingCore keeps credentials such as the GitHub token out of log output.
package utils
