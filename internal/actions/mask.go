package actions

import (
	"fmt"
	"io"
	"strings"
)

const (
	addMaskTemplateConstant = "::add-mask::%s\n"
	maskWriteErrorConstant  = "failed to register secret mask: %w"
)

var workflowCommandEscaper = strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A")

// MaskSecrets registers each non-blank secret with the runner so it is
// replaced by *** in every later line of the job log, including output the
// runner receives from child processes.
func MaskSecrets(writer io.Writer, secrets ...string) error {
	registered := make(map[string]struct{}, len(secrets))
	for _, secret := range secrets {
		trimmedSecret := strings.TrimSpace(secret)
		if len(trimmedSecret) == 0 {
			continue
		}
		if _, seen := registered[trimmedSecret]; seen {
			continue
		}
		registered[trimmedSecret] = struct{}{}
		if _, writeError := fmt.Fprintf(writer, addMaskTemplateConstant, workflowCommandEscaper.Replace(trimmedSecret)); writeError != nil {
			return fmt.Errorf(maskWriteErrorConstant, writeError)
		}
	}
	return nil
}
