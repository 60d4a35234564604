package errors

import (
	stderrors "errors"
	"fmt"
)

// CosimError carries everything the CLI and the log sink want to know
// about a failure. Classification fields derive from Code; call sites
// never set them directly.
type CosimError struct {
	Code       string            // stable identifier, e.g. "ERR_201_FILE_NOT_FOUND"
	Message    string            // human-readable description
	Category   Category          // derived from the code's hundreds block
	Severity   Severity          // how the run reacts
	Details    map[string]string // extra key/value context for the log
	Cause      error             // wrapped source error, if any
	Retryable  bool              // whether the failure is transient in nature
	Suggestion string            // actionable next step shown to the user
}

func (e *CosimError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap exposes the cause to the errors.Is/As chain.
func (e *CosimError) Unwrap() error {
	return e.Cause
}

// Is treats two CosimErrors with the same code as the same error, so
// errors.Is can match on code regardless of message.
func (e *CosimError) Is(target error) bool {
	other, ok := target.(*CosimError)
	return ok && other.Code == e.Code
}

// WithDetail attaches a key-value pair for logging and returns the error
// for chaining.
func (e *CosimError) WithDetail(key, value string) *CosimError {
	if e.Details == nil {
		e.Details = map[string]string{}
	}
	e.Details[key] = value
	return e
}

// WithSuggestion attaches the next-step hint shown under the CLI message.
func (e *CosimError) WithSuggestion(suggestion string) *CosimError {
	e.Suggestion = suggestion
	return e
}

// New builds a CosimError, deriving category, severity, and the
// retryable flag from code.
func New(code string, message string, cause error) *CosimError {
	e := &CosimError{Code: code, Message: message, Cause: cause}
	e.Category = categoryFromCode(code)
	e.Severity = severityFromCode(code)
	e.Retryable = isRetryableCode(code)
	return e
}

// Newf is New with a Sprintf-formatted message and no cause.
func Newf(code string, format string, args ...any) *CosimError {
	return New(code, fmt.Sprintf(format, args...), nil)
}

// Wrap converts err into a CosimError under code, keeping err both as
// the message and as the cause. Wrapping nil stays nil.
func Wrap(code string, err error) *CosimError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// FileNotFound is the fatal missing-file error. The path appears in the
// user-facing message and again as a detail for the log.
func FileNotFound(path string, cause error) *CosimError {
	return New(ErrCodeFileNotFound, fmt.Sprintf("File '%s' not found.", path), cause).
		WithDetail("path", path)
}

// QueryEmpty is the fatal error for a run without a query.
func QueryEmpty() *CosimError {
	return New(ErrCodeQueryEmpty, "No query provided.", nil)
}

// TextEmpty is the fatal error for a run without comparison text.
func TextEmpty() *CosimError {
	return New(ErrCodeTextEmpty, "No text provided.", nil)
}

// BackendError reports an embedding-backend failure.
func BackendError(message string, cause error) *CosimError {
	return New(ErrCodeBackendUnavailable, message, cause)
}

// InternalError reports an unexpected fault.
func InternalError(message string, cause error) *CosimError {
	return New(ErrCodeInternal, message, cause)
}

// IsRetryable reports whether err is a CosimError flagged as transient.
// It sees through wrapped errors.
func IsRetryable(err error) bool {
	var ce *CosimError
	return stderrors.As(err, &ce) && ce.Retryable
}

// IsFatal reports whether err carries fatal severity. Fatal errors abort
// the run with exit code 1.
func IsFatal(err error) bool {
	var ce *CosimError
	return stderrors.As(err, &ce) && ce.Severity == SeverityFatal
}

// GetCode returns the code of err, or "" for non-CosimErrors.
func GetCode(err error) string {
	var ce *CosimError
	if stderrors.As(err, &ce) {
		return ce.Code
	}
	return ""
}

// GetCategory returns the category of err, or "" for non-CosimErrors.
func GetCategory(err error) Category {
	var ce *CosimError
	if stderrors.As(err, &ce) {
		return ce.Category
	}
	return ""
}
