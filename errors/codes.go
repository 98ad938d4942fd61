package errors

// ErrorCode identifies the class of an application error.
type ErrorCode int

const (
	ErrorCode_UNKNOWN ErrorCode = iota
	ErrorCode_HTTP_OK
	ErrorCode_INTERNAL
	ErrorCode_INVALID_ARGUMENT
	ErrorCode_INVALID_PAYLOAD
	ErrorCode_NOT_FOUND
	ErrorCode_AUDIO_DECODE_FAILED
	ErrorCode_SEGMENTATION_FAILED
	ErrorCode_CHUNK_TRANSCRIPTION_FAILED
	ErrorCode_AI_SERVICE_UNAVAILABLE
	ErrorCode_AI_QUOTA_EXCEEDED
	ErrorCode_AI_RESPONSE_BLOCKED
	ErrorCode_OUTPUT_WRITE_FAILED
	ErrorCode_INTEGRATION_STORAGE_FAILED
	ErrorCode_INTEGRATION_CACHE_FAILED
	ErrorCode_DB_CONNECTION_FAILED
	ErrorCode_DB_QUERY_FAILED
	ErrorCode_JOB_HISTORY_UNAVAILABLE
	ErrorCode_PROCESSING_FAILED
)

var errorCodeNames = map[ErrorCode]string{
	ErrorCode_UNKNOWN:                    "UNKNOWN",
	ErrorCode_HTTP_OK:                    "HTTP_OK",
	ErrorCode_INTERNAL:                   "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:           "INVALID_ARGUMENT",
	ErrorCode_INVALID_PAYLOAD:            "INVALID_PAYLOAD",
	ErrorCode_NOT_FOUND:                  "NOT_FOUND",
	ErrorCode_AUDIO_DECODE_FAILED:        "AUDIO_DECODE_FAILED",
	ErrorCode_SEGMENTATION_FAILED:        "SEGMENTATION_FAILED",
	ErrorCode_CHUNK_TRANSCRIPTION_FAILED: "CHUNK_TRANSCRIPTION_FAILED",
	ErrorCode_AI_SERVICE_UNAVAILABLE:     "AI_SERVICE_UNAVAILABLE",
	ErrorCode_AI_QUOTA_EXCEEDED:          "AI_QUOTA_EXCEEDED",
	ErrorCode_AI_RESPONSE_BLOCKED:        "AI_RESPONSE_BLOCKED",
	ErrorCode_OUTPUT_WRITE_FAILED:        "OUTPUT_WRITE_FAILED",
	ErrorCode_INTEGRATION_STORAGE_FAILED: "INTEGRATION_STORAGE_FAILED",
	ErrorCode_INTEGRATION_CACHE_FAILED:   "INTEGRATION_CACHE_FAILED",
	ErrorCode_DB_CONNECTION_FAILED:       "DB_CONNECTION_FAILED",
	ErrorCode_DB_QUERY_FAILED:            "DB_QUERY_FAILED",
	ErrorCode_JOB_HISTORY_UNAVAILABLE:    "JOB_HISTORY_UNAVAILABLE",
	ErrorCode_PROCESSING_FAILED:          "PROCESSING_FAILED",
}

// String returns the canonical name of the error code.
func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}
