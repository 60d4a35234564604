package errors

import (
	stderrors "errors"
	"strings"
)

// UserMessage renders the single line a fatal error prints to stdout
// before the process exits. CosimErrors use the "Error: <message>" form;
// anything else passes through as-is.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var ce *CosimError
	if !stderrors.As(err, &ce) {
		return err.Error()
	}
	return "Error: " + ce.Message
}

// FormatForCLI renders a terminal-friendly block: the message, an
// optional hint, and the code.
func FormatForCLI(err error) string {
	if err == nil {
		return ""
	}

	var ce *CosimError
	if !stderrors.As(err, &ce) {
		ce = Wrap(ErrCodeInternal, err)
	}

	lines := []string{"Error: " + ce.Message}
	if ce.Suggestion != "" {
		lines = append(lines, "  Hint: "+ce.Suggestion)
	}
	lines = append(lines, "  Code: "+ce.Code)

	return strings.Join(lines, "\n") + "\n"
}

// FormatForLog flattens an error into slog attributes. CosimErrors
// expand into their classification fields plus detail_* entries; plain
// errors log their text only.
func FormatForLog(err error) map[string]any {
	if err == nil {
		return nil
	}

	var ce *CosimError
	if !stderrors.As(err, &ce) {
		return map[string]any{"error": err.Error()}
	}

	fields := map[string]any{
		"error_code": ce.Code,
		"message":    ce.Message,
		"category":   string(ce.Category),
		"severity":   string(ce.Severity),
		"retryable":  ce.Retryable,
	}
	if ce.Cause != nil {
		fields["cause"] = ce.Cause.Error()
	}
	if ce.Suggestion != "" {
		fields["suggestion"] = ce.Suggestion
	}
	for k, v := range ce.Details {
		fields["detail_"+k] = v
	}

	return fields
}
