package utils

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// RedactedValuePlaceholder replaces secret values in log output.
	RedactedValuePlaceholder = "***"
)

// redactingCore rewrites messages and string-valued fields so registered secrets never reach the wrapped core.
type redactingCore struct {
	zapcore.Core
	replacer *strings.Replacer
}

// NewSecretRedactor returns a replacer that masks every non-blank secret with RedactedValuePlaceholder.
// It returns nil when no secret is set.
func NewSecretRedactor(secrets ...string) *strings.Replacer {
	replacements := make([]string, 0, len(secrets)*2)
	for _, secret := range secrets {
		if len(strings.TrimSpace(secret)) == 0 {
			continue
		}
		replacements = append(replacements, secret, RedactedValuePlaceholder)
	}
	if len(replacements) == 0 {
		return nil
	}
	return strings.NewReplacer(replacements...)
}

// NewRedactingCore wraps core so every occurrence of the provided secrets is replaced with RedactedValuePlaceholder.
// Blank secrets are ignored; with no secrets the core is returned unchanged.
func NewRedactingCore(core zapcore.Core, secrets ...string) zapcore.Core {
	replacer := NewSecretRedactor(secrets...)
	if replacer == nil {
		return core
	}
	return &redactingCore{Core: core, replacer: replacer}
}

// RedactSecrets returns a zap option that installs NewRedactingCore on a logger.
func RedactSecrets(secrets ...string) zap.Option {
	return zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return NewRedactingCore(core, secrets...)
	})
}

func (core *redactingCore) With(fields []zapcore.Field) zapcore.Core {
	return &redactingCore{Core: core.Core.With(core.redactFields(fields)), replacer: core.replacer}
}

func (core *redactingCore) Check(entry zapcore.Entry, checkedEntry *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if core.Enabled(entry.Level) {
		return checkedEntry.AddCore(entry, core)
	}
	return checkedEntry
}

func (core *redactingCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	entry.Message = core.replacer.Replace(entry.Message)
	return core.Core.Write(entry, core.redactFields(fields))
}

func (core *redactingCore) redactFields(fields []zapcore.Field) []zapcore.Field {
	if len(fields) == 0 {
		return fields
	}
	redactedFields := make([]zapcore.Field, 0, len(fields))
	for _, field := range fields {
		redactedFields = append(redactedFields, core.redactField(field))
	}
	return redactedFields
}

func (core *redactingCore) redactField(field zapcore.Field) zapcore.Field {
	switch field.Type {
	case zapcore.StringType:
		field.String = core.replacer.Replace(field.String)
		return field
	case zapcore.ErrorType:
		fieldError, isError := field.Interface.(error)
		if !isError || fieldError == nil {
			return field
		}
		return zap.String(field.Key, core.replacer.Replace(fieldError.Error()))
	case zapcore.ArrayMarshalerType:
		return core.redactArrayField(field)
	default:
		return field
	}
}

// redactArrayField re-encodes array fields such as zap.Strings so their string elements can be scrubbed.
func (core *redactingCore) redactArrayField(field zapcore.Field) zapcore.Field {
	mapEncoder := zapcore.NewMapObjectEncoder()
	field.AddTo(mapEncoder)
	encodedElements, isSlice := mapEncoder.Fields[field.Key].([]interface{})
	if !isSlice {
		return field
	}

	redactedElements := make([]string, 0, len(encodedElements))
	for _, element := range encodedElements {
		stringElement, isString := element.(string)
		if !isString {
			return field
		}
		redactedElements = append(redactedElements, core.replacer.Replace(stringElement))
	}
	return zap.Strings(field.Key, redactedElements)
}
