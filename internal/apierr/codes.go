// Package apierr provides the structured error taxonomy returned by
// store, catalog, executor, and daemon operations. Every code maps to a
// fixed category and severity so callers (and the daemon's response
// encoder) can classify failures without string matching.
package apierr

// Category classifies an error for response encoding and logging.
type Category string

const (
	// CategoryNotFound indicates a requested store, key, or index does
	// not exist.
	CategoryNotFound Category = "NOT_FOUND"
	// CategoryConflict indicates a requested resource already exists.
	CategoryConflict Category = "CONFLICT"
	// CategoryValidation indicates a malformed request.
	CategoryValidation Category = "VALIDATION"
	// CategoryAuth indicates an authentication or authorization failure.
	CategoryAuth Category = "AUTH"
	// CategoryTimeout indicates the operation exceeded its deadline or
	// was cancelled.
	CategoryTimeout Category = "TIMEOUT"
	// CategoryInternal indicates an unexpected internal failure.
	CategoryInternal Category = "INTERNAL"
)

// Severity grades how an error should affect pipeline execution.
type Severity string

const (
	// SeverityFatal means the daemon cannot continue serving requests.
	SeverityFatal Severity = "FATAL"
	// SeverityError means the single query failed but the pipeline and
	// connection continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning marks a query cut short by a timeout or
	// cancellation; it produced no result, and the pipeline and
	// connection continue.
	SeverityWarning Severity = "WARNING"
)

// Error codes, grouped by category.
const (
	// Not-found errors (1XX)
	CodeStoreNotFound        = "ERR_101_STORE_NOT_FOUND"
	CodeIndexNotFound        = "ERR_102_INDEX_NOT_FOUND"
	CodeKeyNotFound          = "ERR_103_KEY_NOT_FOUND"
	CodePredicateKeyNotFound = "ERR_104_PREDICATE_KEY_NOT_INDEXED"
	CodeUnknownIndex         = "ERR_105_UNKNOWN_INDEX"

	// Conflict errors (2XX)
	CodeStoreAlreadyExists = "ERR_201_STORE_ALREADY_EXISTS"
	CodeIndexAlreadyExists = "ERR_202_INDEX_ALREADY_EXISTS"

	// Validation errors (3XX)
	CodeDimensionMismatch = "ERR_301_DIMENSION_MISMATCH"
	CodeInvalidVector     = "ERR_302_INVALID_VECTOR"
	CodeUnknownAlgorithm  = "ERR_303_UNKNOWN_ALGORITHM"
	CodeInvalidQuery      = "ERR_304_INVALID_QUERY"
	CodeInvalidConfig     = "ERR_305_INVALID_CONFIG"

	// Auth errors (4XX)
	CodeUnauthenticated  = "ERR_401_UNAUTHENTICATED"
	CodePermissionDenied = "ERR_402_PERMISSION_DENIED"

	// Timeout/cancellation errors (5XX)
	CodeTimeout   = "ERR_501_TIMEOUT"
	CodeCancelled = "ERR_502_CANCELLED"

	// Internal errors (9XX)
	CodeInternal           = "ERR_901_INTERNAL"
	CodePersistenceFailure = "ERR_902_PERSISTENCE_FAILURE"
)

func categoryFromCode(code string) Category {
	if len(code) < 8 {
		return CategoryInternal
	}
	switch code[4] {
	case '1':
		return CategoryNotFound
	case '2':
		return CategoryConflict
	case '3':
		return CategoryValidation
	case '4':
		return CategoryAuth
	case '5':
		return CategoryTimeout
	default:
		return CategoryInternal
	}
}

func severityFromCode(code string) Severity {
	switch code {
	case CodePersistenceFailure, CodeInvalidConfig:
		return SeverityFatal
	case CodeTimeout, CodeCancelled:
		return SeverityWarning
	default:
		return SeverityError
	}
}
