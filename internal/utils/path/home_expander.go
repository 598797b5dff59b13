// Package pathutils resolves user-supplied filesystem paths.
package pathutils

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	tildeSymbolConstant             = "~"
	tildeForwardSlashPrefixConstant = "~/"
)

// HomeDirectoryProvider resolves the current user's home directory path.
type HomeDirectoryProvider func() (string, error)

// HomeExpander converts a leading "~" in configuration paths to the user's home directory.
type HomeExpander struct {
	homeDirectoryProvider HomeDirectoryProvider
	homeDirectory         string
	homeDirectoryError    error
	initializationGuard   sync.Once
}

// NewHomeExpander constructs a HomeExpander using the operating system lookup.
func NewHomeExpander() *HomeExpander {
	return NewHomeExpanderWithProvider(os.UserHomeDir)
}

// NewHomeExpanderWithProvider constructs a HomeExpander with a custom provider.
func NewHomeExpanderWithProvider(provider HomeDirectoryProvider) *HomeExpander {
	if provider == nil {
		provider = os.UserHomeDir
	}
	return &HomeExpander{homeDirectoryProvider: provider}
}

// Expand resolves "~" and "~/..." prefixes. Other paths, including "~user", are returned as given.
func (expander *HomeExpander) Expand(candidatePath string) string {
	if expander == nil || !strings.HasPrefix(candidatePath, tildeSymbolConstant) {
		return candidatePath
	}

	relativePath, hasHomePrefix := trimHomePrefix(candidatePath)
	if !hasHomePrefix {
		return candidatePath
	}

	expander.initializationGuard.Do(func() {
		expander.homeDirectory, expander.homeDirectoryError = expander.homeDirectoryProvider()
	})
	if expander.homeDirectoryError != nil || len(expander.homeDirectory) == 0 {
		return candidatePath
	}

	if len(relativePath) == 0 {
		return expander.homeDirectory
	}
	return filepath.Join(expander.homeDirectory, relativePath)
}

// ExpandAll applies Expand to each path.
func (expander *HomeExpander) ExpandAll(candidatePaths []string) []string {
	expandedPaths := make([]string, 0, len(candidatePaths))
	for _, candidatePath := range candidatePaths {
		expandedPaths = append(expandedPaths, expander.Expand(candidatePath))
	}
	return expandedPaths
}

func trimHomePrefix(candidatePath string) (string, bool) {
	if candidatePath == tildeSymbolConstant {
		return "", true
	}
	if strings.HasPrefix(candidatePath, tildeForwardSlashPrefixConstant) {
		return strings.TrimPrefix(candidatePath, tildeForwardSlashPrefixConstant), true
	}
	separatorPrefix := tildeSymbolConstant + string(os.PathSeparator)
	if strings.HasPrefix(candidatePath, separatorPrefix) {
		return strings.TrimPrefix(candidatePath, separatorPrefix), true
	}
	return "", false
}
