package errors

import "strconv"

// ErrorCode identifies an application error category in API responses
type ErrorCode int32

const (
	ErrorCode_UNKNOWN          ErrorCode = 0
	ErrorCode_HTTP_OK          ErrorCode = 1
	ErrorCode_INTERNAL         ErrorCode = 2
	ErrorCode_INVALID_ARGUMENT ErrorCode = 3
	ErrorCode_NOT_FOUND        ErrorCode = 4
	ErrorCode_INVALID_PAYLOAD  ErrorCode = 5

	// RAG query
	ErrorCode_RAG_INVALID_MODE       ErrorCode = 100
	ErrorCode_RAG_MISSING_MEETING_ID ErrorCode = 101
	ErrorCode_RAG_MEETING_NOT_FOUND  ErrorCode = 102
	ErrorCode_RAG_ANSWER_FAILED      ErrorCode = 103
	ErrorCode_RAG_RETRIEVAL_FAILED   ErrorCode = 104

	// Insights
	ErrorCode_INSIGHTS_NOT_AVAILABLE     ErrorCode = 200
	ErrorCode_INSIGHTS_EXTRACTION_FAILED ErrorCode = 201
	ErrorCode_INSIGHTS_EMBEDDING_FAILED  ErrorCode = 202
	ErrorCode_INSIGHTS_MEETING_BUSY      ErrorCode = 203

	// AI providers
	ErrorCode_AI_SERVICE_UNAVAILABLE ErrorCode = 300
	ErrorCode_AI_QUOTA_EXCEEDED      ErrorCode = 301

	// Integrations
	ErrorCode_INTEGRATION_STORAGE_FAILED ErrorCode = 400

	// Database
	ErrorCode_DB_CONNECTION_FAILED ErrorCode = 500
	ErrorCode_DB_QUERY_FAILED      ErrorCode = 501
)

var ErrorCode_name = map[ErrorCode]string{
	ErrorCode_UNKNOWN:                    "UNKNOWN",
	ErrorCode_HTTP_OK:                    "HTTP_OK",
	ErrorCode_INTERNAL:                   "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:           "INVALID_ARGUMENT",
	ErrorCode_NOT_FOUND:                  "NOT_FOUND",
	ErrorCode_INVALID_PAYLOAD:            "INVALID_PAYLOAD",
	ErrorCode_RAG_INVALID_MODE:           "RAG_INVALID_MODE",
	ErrorCode_RAG_MISSING_MEETING_ID:     "RAG_MISSING_MEETING_ID",
	ErrorCode_RAG_MEETING_NOT_FOUND:      "RAG_MEETING_NOT_FOUND",
	ErrorCode_RAG_ANSWER_FAILED:          "RAG_ANSWER_FAILED",
	ErrorCode_RAG_RETRIEVAL_FAILED:       "RAG_RETRIEVAL_FAILED",
	ErrorCode_INSIGHTS_NOT_AVAILABLE:     "INSIGHTS_NOT_AVAILABLE",
	ErrorCode_INSIGHTS_EXTRACTION_FAILED: "INSIGHTS_EXTRACTION_FAILED",
	ErrorCode_INSIGHTS_EMBEDDING_FAILED:  "INSIGHTS_EMBEDDING_FAILED",
	ErrorCode_INSIGHTS_MEETING_BUSY:      "INSIGHTS_MEETING_BUSY",
	ErrorCode_AI_SERVICE_UNAVAILABLE:     "AI_SERVICE_UNAVAILABLE",
	ErrorCode_AI_QUOTA_EXCEEDED:          "AI_QUOTA_EXCEEDED",
	ErrorCode_INTEGRATION_STORAGE_FAILED: "INTEGRATION_STORAGE_FAILED",
	ErrorCode_DB_CONNECTION_FAILED:       "DB_CONNECTION_FAILED",
	ErrorCode_DB_QUERY_FAILED:            "DB_QUERY_FAILED",
}

func (c ErrorCode) String() string {
	if name, ok := ErrorCode_name[c]; ok {
		return name
	}
	return strconv.Itoa(int(c))
}
