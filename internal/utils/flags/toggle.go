// Package flags provides helpers for binding dependency-update flags to Cobra commands.
package flags

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/pflag"
)

const (
	toggleTrueCanonicalValue               = "true"
	toggleFalseCanonicalValue              = "false"
	toggleParseErrorTemplate               = "invalid toggle value %q"
	toggleArgumentTruePlaceholderConstant  = "<YES|no>"
	toggleArgumentFalsePlaceholderConstant = "<yes|NO>"
	toggleUsageEmptyTemplateConstant       = "`%s`"
	toggleUsageFullTemplateConstant        = "`%s` %s"
	longFlagPrefixConstant                 = "--"
	flagValueSeparatorConstant             = "="
	flagTerminatorConstant                 = "--"
)

var (
	trueLiteralSet  = map[string]struct{}{"true": {}, "yes": {}, "on": {}, "1": {}, "t": {}, "y": {}}
	falseLiteralSet = map[string]struct{}{"false": {}, "no": {}, "off": {}, "0": {}, "f": {}, "n": {}}

	toggleFlagRegistryMutex sync.RWMutex
	toggleFlagNames         = map[string]struct{}{}
)

// ParseToggleValue interprets yes/no style values. An empty value means true,
// matching a bare "--flag" on the command line.
func ParseToggleValue(rawValue string) (bool, error) {
	trimmedValue := strings.TrimSpace(rawValue)
	if len(trimmedValue) == 0 {
		return true, nil
	}

	normalizedValue := strings.ToLower(trimmedValue)
	if _, isTrue := trueLiteralSet[normalizedValue]; isTrue {
		return true, nil
	}
	if _, isFalse := falseLiteralSet[normalizedValue]; isFalse {
		return false, nil
	}

	return false, fmt.Errorf(toggleParseErrorTemplate, rawValue)
}

// AddToggleFlag registers a boolean flag that accepts yes/no style values.
func AddToggleFlag(flagSet *pflag.FlagSet, target *bool, name string, defaultValue bool, usage string) {
	if flagSet == nil || len(name) == 0 {
		return
	}

	flagSet.Var(newToggleFlagValue(defaultValue, target), name, usage)

	flag := flagSet.Lookup(name)
	if flag == nil {
		return
	}
	flag.NoOptDefVal = toggleTrueCanonicalValue
	flag.Usage = formatToggleUsage(usage, defaultValue)

	toggleFlagRegistryMutex.Lock()
	defer toggleFlagRegistryMutex.Unlock()
	toggleFlagNames[name] = struct{}{}
}

// NormalizeToggleArguments rewrites "--flag value" into "--flag=value" for registered toggle flags.
// pflag only reads an explicit value after "=" when NoOptDefVal is set.
func NormalizeToggleArguments(arguments []string) []string {
	if len(arguments) == 0 {
		return nil
	}

	normalized := make([]string, 0, len(arguments))
	for index := 0; index < len(arguments); index++ {
		current := arguments[index]
		if current == flagTerminatorConstant {
			normalized = append(normalized, arguments[index:]...)
			break
		}

		flagName, isLongFlag := strings.CutPrefix(current, longFlagPrefixConstant)
		if isLongFlag && isToggleName(flagName) && index+1 < len(arguments) && isToggleLiteral(arguments[index+1]) {
			normalized = append(normalized, current+flagValueSeparatorConstant+arguments[index+1])
			index++
			continue
		}

		normalized = append(normalized, current)
	}

	return normalized
}

func formatToggleUsage(description string, defaultValue bool) string {
	placeholder := toggleArgumentFalsePlaceholderConstant
	if defaultValue {
		placeholder = toggleArgumentTruePlaceholderConstant
	}
	trimmedDescription := strings.TrimSpace(description)
	if len(trimmedDescription) == 0 {
		return fmt.Sprintf(toggleUsageEmptyTemplateConstant, placeholder)
	}
	return fmt.Sprintf(toggleUsageFullTemplateConstant, placeholder, trimmedDescription)
}

// isToggleLiteral limits argument joining to recognised literals so "--debug update" keeps its subcommand.
func isToggleLiteral(value string) bool {
	if len(strings.TrimSpace(value)) == 0 {
		return false
	}
	_, parseError := ParseToggleValue(value)
	return parseError == nil
}

type toggleFlagValue struct {
	currentValue bool
	target       *bool
}

func newToggleFlagValue(defaultValue bool, target *bool) *toggleFlagValue {
	if target != nil {
		*target = defaultValue
	}
	return &toggleFlagValue{currentValue: defaultValue, target: target}
}

func (value *toggleFlagValue) Set(rawValue string) error {
	parsedValue, parseError := ParseToggleValue(rawValue)
	if parseError != nil {
		return parseError
	}

	value.currentValue = parsedValue
	if value.target != nil {
		*value.target = parsedValue
	}
	return nil
}

func (value *toggleFlagValue) String() string {
	if value != nil && value.currentValue {
		return toggleTrueCanonicalValue
	}
	return toggleFalseCanonicalValue
}

func (value *toggleFlagValue) Type() string {
	return "bool"
}

func isToggleName(name string) bool {
	toggleFlagRegistryMutex.RLock()
	defer toggleFlagRegistryMutex.RUnlock()
	_, exists := toggleFlagNames[name]
	return exists
}
