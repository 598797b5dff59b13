package utils

import (
	"fmt"
	"io"
	"os"

	zaplogfmt "github.com/sykesm/zap-logfmt"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	logLevelDebugStringConstant          = "debug"
	logLevelInfoStringConstant           = "info"
	logLevelWarnStringConstant           = "warn"
	logLevelErrorStringConstant          = "error"
	logFormatStructuredStringConstant    = "structured"
	logFormatConsoleStringConstant       = "console"
	logFormatLogfmtStringConstant        = "logfmt"
	unsupportedLogLevelTemplateConstant  = "unsupported log level: %s"
	unsupportedLogFormatTemplateConstant = "unsupported log format: %s"
	timestampEncoderKeyConstant          = "ts"
)

// LogLevel enumerates supported logging granularities.
type LogLevel string

// Exported log level constants for reuse across packages.
const (
	LogLevelDebug LogLevel = LogLevel(logLevelDebugStringConstant)
	LogLevelInfo  LogLevel = LogLevel(logLevelInfoStringConstant)
	LogLevelWarn  LogLevel = LogLevel(logLevelWarnStringConstant)
	LogLevelError LogLevel = LogLevel(logLevelErrorStringConstant)
)

// LogFormat enumerates supported logger output encodings.
type LogFormat string

// Exported log format constants for reuse across packages.
const (
	LogFormatStructured LogFormat = LogFormat(logFormatStructuredStringConstant)
	LogFormatConsole    LogFormat = LogFormat(logFormatConsoleStringConstant)
	LogFormatLogfmt     LogFormat = LogFormat(logFormatLogfmtStringConstant)
)

// SupportedLogFormats lists the formats accepted by CreateLogger in display order.
func SupportedLogFormats() []string {
	return []string{string(LogFormatStructured), string(LogFormatConsole), string(LogFormatLogfmt)}
}

// LoggerFactory builds zap.Logger instances with consistent configuration.
type LoggerFactory struct {
	outputProvider func() io.Writer
}

var logLevelMapping = map[LogLevel]zapcore.Level{
	LogLevelDebug: zapcore.DebugLevel,
	LogLevelInfo:  zapcore.InfoLevel,
	LogLevelWarn:  zapcore.WarnLevel,
	LogLevelError: zapcore.ErrorLevel,
}

var logFormatEncoderMapping = map[LogFormat]func(zapcore.EncoderConfig) zapcore.Encoder{
	LogFormatStructured: zapcore.NewJSONEncoder,
	LogFormatConsole:    zapcore.NewConsoleEncoder,
	LogFormatLogfmt:     zaplogfmt.NewEncoder,
}

// NewLoggerFactory constructs a logger factory writing to standard error.
func NewLoggerFactory() *LoggerFactory {
	return &LoggerFactory{outputProvider: func() io.Writer { return os.Stderr }}
}

// WithOutput returns a factory whose loggers write to the provided writer.
func (factory *LoggerFactory) WithOutput(writer io.Writer) *LoggerFactory {
	if writer == nil {
		return factory
	}
	return &LoggerFactory{outputProvider: func() io.Writer { return writer }}
}

// CreateLogger produces a zap.Logger honoring the requested log level and format.
func (factory *LoggerFactory) CreateLogger(requestedLogLevel LogLevel, requestedLogFormat LogFormat) (*zap.Logger, error) {
	zapLogLevel, levelError := ParseLogLevel(requestedLogLevel)
	if levelError != nil {
		return nil, levelError
	}
	return factory.CreateLoggerWithLevel(zap.NewAtomicLevelAt(zapLogLevel), requestedLogFormat)
}

// ParseLogLevel converts a configured level name into a zap level.
func ParseLogLevel(requestedLogLevel LogLevel) (zapcore.Level, error) {
	zapLogLevel, levelExists := logLevelMapping[requestedLogLevel]
	if !levelExists {
		return zapcore.InfoLevel, fmt.Errorf(unsupportedLogLevelTemplateConstant, requestedLogLevel)
	}
	return zapLogLevel, nil
}

// CreateLoggerWithLevel produces a zap.Logger whose level follows atomicLevel, so callers can raise
// verbosity after construction.
func (factory *LoggerFactory) CreateLoggerWithLevel(atomicLevel zap.AtomicLevel, requestedLogFormat LogFormat) (*zap.Logger, error) {
	encoderBuilder, formatExists := logFormatEncoderMapping[requestedLogFormat]
	if !formatExists {
		return nil, fmt.Errorf(unsupportedLogFormatTemplateConstant, requestedLogFormat)
	}

	encoderConfiguration := zap.NewProductionEncoderConfig()
	encoderConfiguration.TimeKey = timestampEncoderKeyConstant
	encoderConfiguration.EncodeTime = zapcore.ISO8601TimeEncoder
	if requestedLogFormat == LogFormatConsole {
		encoderConfiguration.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	outputWriter := io.Writer(os.Stderr)
	if factory != nil && factory.outputProvider != nil {
		outputWriter = factory.outputProvider()
	}

	core := zapcore.NewCore(
		encoderBuilder(encoderConfiguration),
		zapcore.Lock(zapcore.AddSync(outputWriter)),
		atomicLevel,
	)

	return zap.New(core, zap.AddCaller(), zap.ErrorOutput(zapcore.Lock(zapcore.AddSync(os.Stderr)))), nil
}
