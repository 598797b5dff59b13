package actions

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	// OutputUpdatesAvailable reports whether the manifest changed.
	OutputUpdatesAvailable = "updates-available"
	// OutputPullRequestURL carries the created pull request URL.
	OutputPullRequestURL = "pull-request-url"

	outputFilePermissionsConstant     = 0o644
	outputAssignmentTemplateConstant  = "%s=%s\n"
	outputHeredocTemplateConstant     = "%s<<%s\n%s\n%s\n"
	outputHeredocDelimiterConstant    = "DEPENDENCY_UPDATE_OUTPUT_EOF"
	outputNameRequiredMessageConstant = "output name required"
	outputOpenErrorTemplateConstant   = "failed to open github output file: %w"
	outputWriteErrorTemplateConstant  = "failed to write github output %s: %w"
	outputDelimiterConflictTemplate   = "output %s contains the heredoc delimiter"
	lineBreakCharactersConstant       = "\r\n"
)

// ErrOutputNameRequired indicates an output was written without a name.
var ErrOutputNameRequired = errors.New(outputNameRequiredMessageConstant)

// OutputWriter appends step outputs to the file named by GITHUB_OUTPUT.
type OutputWriter struct {
	outputPath string
}

// NewOutputWriter constructs a writer for outputPath. An empty path makes every write a no-op,
// which is the case when running outside the Actions runner.
func NewOutputWriter(outputPath string) *OutputWriter {
	return &OutputWriter{outputPath: strings.TrimSpace(outputPath)}
}

// Enabled reports whether outputs are persisted.
func (writer *OutputWriter) Enabled() bool {
	return writer != nil && len(writer.outputPath) > 0
}

// SetOutput appends a single name/value pair.
func (writer *OutputWriter) SetOutput(name string, value string) error {
	if !writer.Enabled() {
		return nil
	}
	trimmedName := strings.TrimSpace(name)
	if len(trimmedName) == 0 {
		return ErrOutputNameRequired
	}

	outputFile, openError := os.OpenFile(writer.outputPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, outputFilePermissionsConstant)
	if openError != nil {
		return fmt.Errorf(outputOpenErrorTemplateConstant, openError)
	}
	defer outputFile.Close()

	if writeError := writeOutput(outputFile, trimmedName, value); writeError != nil {
		return fmt.Errorf(outputWriteErrorTemplateConstant, trimmedName, writeError)
	}
	return nil
}

func writeOutput(destination io.Writer, name string, value string) error {
	if !strings.ContainsAny(value, lineBreakCharactersConstant) {
		_, writeError := fmt.Fprintf(destination, outputAssignmentTemplateConstant, name, value)
		return writeError
	}
	if strings.Contains(value, outputHeredocDelimiterConstant) {
		return fmt.Errorf(outputDelimiterConflictTemplate, name)
	}
	_, writeError := fmt.Fprintf(destination, outputHeredocTemplateConstant, name, outputHeredocDelimiterConstant, value, outputHeredocDelimiterConstant)
	return writeError
}
