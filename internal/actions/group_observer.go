package actions

import (
	"fmt"
	"io"
	"strings"

	"github.com/temirov/depupdate/internal/execshell"
	"github.com/temirov/depupdate/internal/utils"
)

const (
	groupStartTemplateConstant  = "::group::%s\n"
	groupEndLineConstant        = "::endgroup::\n"
	groupOutputTemplateConstant = "%s\n"
)

// GroupObserver prints each command's output inside a collapsible runner log group.
// Registered secrets are masked in everything it prints.
type GroupObserver struct {
	writer    io.Writer
	formatter execshell.CommandMessageFormatter
	redactor  *strings.Replacer
}

// NewGroupObserver constructs an observer writing workflow commands to writer.
func NewGroupObserver(writer io.Writer, secrets ...string) *GroupObserver {
	return &GroupObserver{writer: writer, redactor: utils.NewSecretRedactor(secrets...)}
}

// CommandStarted opens a group titled with the command description.
func (observer *GroupObserver) CommandStarted(command execshell.ShellCommand) {
	fmt.Fprintf(observer.writer, groupStartTemplateConstant, observer.redact(observer.formatter.BuildStartedMessage(command)))
}

// CommandCompleted prints captured output and closes the group.
func (observer *GroupObserver) CommandCompleted(_ execshell.ShellCommand, result execshell.ExecutionResult) {
	for _, capturedOutput := range []string{result.StandardOutput, result.StandardError} {
		if trimmedOutput := strings.TrimSpace(capturedOutput); len(trimmedOutput) > 0 {
			fmt.Fprintf(observer.writer, groupOutputTemplateConstant, observer.redact(trimmedOutput))
		}
	}
	io.WriteString(observer.writer, groupEndLineConstant)
}

// CommandExecutionFailed closes the group opened for the command.
func (observer *GroupObserver) CommandExecutionFailed(execshell.ShellCommand, error) {
	io.WriteString(observer.writer, groupEndLineConstant)
}

func (observer *GroupObserver) redact(value string) string {
	if observer.redactor == nil {
		return value
	}
	return observer.redactor.Replace(value)
}
