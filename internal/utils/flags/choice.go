package flags

import (
	"fmt"
	"strings"
)

const (
	choicePlaceholderPrefix    = "<"
	choicePlaceholderSuffix    = ">"
	choiceSeparatorLiteral     = "|"
	choiceListSeparatorLiteral = ", "
	choiceUsageEmptyTemplate   = "`%s`"
	choiceUsageFullTemplate    = "`%s` %s"
	unsupportedChoiceTemplate  = "unsupported %s %q (expected one of: %s)"
)

// FormatChoiceUsage builds a usage string where the default option is capitalized inside a placeholder.
func FormatChoiceUsage(defaultChoice string, choices []string, description string) string {
	placeholder := choicePlaceholderPrefix + strings.Join(highlightDefaultChoice(defaultChoice, choices), choiceSeparatorLiteral) + choicePlaceholderSuffix
	if len(strings.TrimSpace(description)) == 0 {
		return fmt.Sprintf(choiceUsageEmptyTemplate, placeholder)
	}
	return fmt.Sprintf(choiceUsageFullTemplate, placeholder, description)
}

// NormalizeChoice returns the canonical spelling of value among choices, ignoring case and surrounding space.
// An empty value resolves to defaultChoice.
func NormalizeChoice(settingName string, value string, defaultChoice string, choices []string) (string, error) {
	trimmedValue := strings.TrimSpace(value)
	if len(trimmedValue) == 0 {
		trimmedValue = defaultChoice
	}
	for _, choice := range choices {
		if strings.EqualFold(strings.TrimSpace(choice), trimmedValue) {
			return strings.TrimSpace(choice), nil
		}
	}
	return "", fmt.Errorf(unsupportedChoiceTemplate, settingName, value, strings.Join(choices, choiceListSeparatorLiteral))
}

func highlightDefaultChoice(defaultChoice string, choices []string) []string {
	normalizedDefault := strings.ToLower(strings.TrimSpace(defaultChoice))
	highlighted := make([]string, 0, len(choices))
	seen := make(map[string]struct{}, len(choices))

	for _, choice := range choices {
		trimmedChoice := strings.TrimSpace(choice)
		normalizedChoice := strings.ToLower(trimmedChoice)
		if len(trimmedChoice) == 0 {
			continue
		}
		if _, exists := seen[normalizedChoice]; exists {
			continue
		}
		seen[normalizedChoice] = struct{}{}

		if normalizedChoice == normalizedDefault {
			trimmedChoice = strings.ToUpper(trimmedChoice)
		}
		highlighted = append(highlighted, trimmedChoice)
	}

	return highlighted
}
