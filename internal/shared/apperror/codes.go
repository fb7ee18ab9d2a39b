package apperror

const (
	// Client errors (4xx)
	CodeInvalidInput = "INVALID_INPUT"
	CodeNotFound     = "NOT_FOUND"

	// Reconciliation errors
	CodeConfiguration     = "CONFIGURATION"
	CodeReferenceNotFound = "REFERENCE_NOT_FOUND"
	CodeStoreUnavailable  = "STORE_UNAVAILABLE"
	CodeHashComputation   = "HASH_COMPUTATION"

	// Server errors (5xx)
	CodeInternalError = "INTERNAL_ERROR"
)
