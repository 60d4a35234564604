// Package errors defines the structured error type the cosim CLI reports
// and logs.
//
// Every error carries an ERR_XXX_DESCRIPTION code whose hundreds digit
// names the failing subsystem: 1XX configuration, 2XX file I/O, 3XX the
// embedding backend, 4XX input validation, 5XX internal faults. Category,
// severity, and retryability all derive from the code, so call sites only
// pick a code and a message.
package errors

// Category names the subsystem an error belongs to.
type Category string

const (
	CategoryConfig     Category = "CONFIG"     // configuration files and env
	CategoryIO         Category = "IO"         // file and disk access
	CategoryBackend    Category = "BACKEND"    // the embedding backend
	CategoryValidation Category = "VALIDATION" // user input checks
	CategoryInternal   Category = "INTERNAL"   // everything unexpected
)

// Severity says how the run reacts to an error.
type Severity string

const (
	SeverityFatal   Severity = "FATAL"   // abort with exit code 1
	SeverityError   Severity = "ERROR"   // operation failed, run continues
	SeverityWarning Severity = "WARNING" // degraded, e.g. fallback engaged
)

// Error codes, grouped by hundreds block.
const (
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"

	ErrCodeFileNotFound = "ERR_201_FILE_NOT_FOUND"
	ErrCodeFileRead     = "ERR_202_FILE_READ"

	ErrCodeBackendUnavailable = "ERR_301_BACKEND_UNAVAILABLE"
	ErrCodeModelMissing       = "ERR_302_MODEL_MISSING"
	ErrCodeModelDownload      = "ERR_303_MODEL_DOWNLOAD"

	ErrCodeQueryEmpty  = "ERR_401_QUERY_EMPTY"
	ErrCodeTextEmpty   = "ERR_402_TEXT_EMPTY"
	ErrCodeInvalidPath = "ERR_403_INVALID_PATH"

	ErrCodeInternal        = "ERR_501_INTERNAL"
	ErrCodeEmbeddingFailed = "ERR_502_EMBEDDING_FAILED"
)

// categoryByBlock maps the hundreds digit of a code to its subsystem.
var categoryByBlock = map[byte]Category{
	'1': CategoryConfig,
	'2': CategoryIO,
	'3': CategoryBackend,
	'4': CategoryValidation,
	'5': CategoryInternal,
}

func categoryFromCode(code string) Category {
	if len(code) > 4 {
		if cat, ok := categoryByBlock[code[4]]; ok {
			return cat
		}
	}
	return CategoryInternal
}

// fatalCodes are the precondition failures that abort the run before any
// scoring happens.
var fatalCodes = map[string]bool{
	ErrCodeFileNotFound: true,
	ErrCodeQueryEmpty:   true,
	ErrCodeTextEmpty:    true,
}

func severityFromCode(code string) Severity {
	switch {
	case fatalCodes[code]:
		return SeverityFatal
	case isRetryableCode(code):
		return SeverityWarning
	default:
		return SeverityError
	}
}

// isRetryableCode classifies the error's nature. The scoring path still
// makes a single attempt and degrades rather than retrying.
func isRetryableCode(code string) bool {
	return code == ErrCodeBackendUnavailable || code == ErrCodeModelDownload
}
