package errors

// ErrorCode is a stable machine-readable error identifier returned to API
// consumers alongside the HTTP status.
type ErrorCode string

const (
	ErrorCode_INTERNAL          ErrorCode = "INTERNAL"
	ErrorCode_INVALID_ARGUMENT  ErrorCode = "INVALID_ARGUMENT"
	ErrorCode_NOT_FOUND         ErrorCode = "NOT_FOUND"
	ErrorCode_ALREADY_EXISTS    ErrorCode = "ALREADY_EXISTS"
	ErrorCode_PERMISSION_DENIED ErrorCode = "PERMISSION_DENIED"
	ErrorCode_UNAUTHENTICATED   ErrorCode = "UNAUTHENTICATED"
	ErrorCode_FORBIDDEN         ErrorCode = "FORBIDDEN"

	ErrorCode_AUTH_INVALID_TOKEN ErrorCode = "AUTH_INVALID_TOKEN"
	ErrorCode_AUTH_TOKEN_EXPIRED ErrorCode = "AUTH_TOKEN_EXPIRED"

	ErrorCode_EPISODE_NOT_FOUND        ErrorCode = "EPISODE_NOT_FOUND"
	ErrorCode_EPISODE_CREATION_FAILED  ErrorCode = "EPISODE_CREATION_FAILED"
	ErrorCode_TRANSCRIPT_NOT_FOUND     ErrorCode = "TRANSCRIPT_NOT_FOUND"
	ErrorCode_TRANSCRIPT_EMPTY         ErrorCode = "TRANSCRIPT_EMPTY"
	ErrorCode_JOB_NOT_FOUND            ErrorCode = "JOB_NOT_FOUND"
	ErrorCode_RESULT_NOT_FOUND         ErrorCode = "RESULT_NOT_FOUND"
	ErrorCode_TRANSCRIPTION_FAILED     ErrorCode = "TRANSCRIPTION_FAILED"
	ErrorCode_GENERATION_FAILED        ErrorCode = "GENERATION_FAILED"
	ErrorCode_AI_SERVICE_UNAVAILABLE   ErrorCode = "AI_SERVICE_UNAVAILABLE"
	ErrorCode_AI_QUOTA_EXCEEDED        ErrorCode = "AI_QUOTA_EXCEEDED"

	ErrorCode_INTEGRATION_STORAGE_FAILED      ErrorCode = "INTEGRATION_STORAGE_FAILED"
	ErrorCode_INTEGRATION_CACHE_FAILED        ErrorCode = "INTEGRATION_CACHE_FAILED"
	ErrorCode_INTEGRATION_EXTERNAL_API_FAILED ErrorCode = "INTEGRATION_EXTERNAL_API_FAILED"

	ErrorCode_DB_CONNECTION_FAILED ErrorCode = "DB_CONNECTION_FAILED"
	ErrorCode_DB_QUERY_FAILED      ErrorCode = "DB_QUERY_FAILED"

	ErrorCode_INVALID_PAYLOAD       ErrorCode = "INVALID_PAYLOAD"
	ErrorCode_MISSING_RECORDING_URL ErrorCode = "MISSING_RECORDING_URL"
	ErrorCode_PROCESSING_FAILED     ErrorCode = "PROCESSING_FAILED"
)

// String returns the code as a string.
func (c ErrorCode) String() string {
	return string(c)
}
