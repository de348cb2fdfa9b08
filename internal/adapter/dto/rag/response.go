package rag

// ChunkResponse is one evidence chunk
type ChunkResponse struct {
	ID              int64    `json:"id"`
	MeetingID       int64    `json:"meeting_id"`
	MeetingNativeID *string  `json:"meeting_native_id"`
	Platform        *string  `json:"platform"`
	Speaker         *string  `json:"speaker"`
	Text            string   `json:"text"`
	StartTime       *float64 `json:"start_time"`
	EndTime         *float64 `json:"end_time"`
	Timestamp       *string  `json:"timestamp"`
	ChunkType       string   `json:"chunk_type"`
	SimilarityScore float64  `json:"similarity_score"`
}

// TokenUsage reports LLM token accounting
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// QueryResponse is the answer with its evidence
type QueryResponse struct {
	Answer     string          `json:"answer"`
	Chunks     []ChunkResponse `json:"chunks"`
	TokenUsage *TokenUsage     `json:"token_usage"`
}
