package rag

// QueryRequest represents a question to the RAG endpoint
type QueryRequest struct {
	Query        string                `json:"query" validate:"required,max=4000"`
	Mode         string                `json:"mode"`
	MeetingID    *int64                `json:"meeting_id,omitempty"`
	Conversation []ConversationMessage `json:"conversation" validate:"omitempty,dive"`
	Filters      *Filters              `json:"filters,omitempty"`
}

// ConversationMessage is one earlier turn of the chat
type ConversationMessage struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required"`
}

// Filters narrows retrieval. Dates are YYYY-MM-DD and inclusive.
type Filters struct {
	MeetingID         *int64  `json:"meeting_id,omitempty"`
	MeetingIDs        []int64 `json:"meeting_ids,omitempty"`
	ExcludeMeetingIDs []int64 `json:"exclude_meeting_ids,omitempty"`
	Platform          string  `json:"platform,omitempty"`
	Speaker           string  `json:"speaker,omitempty"`
	Language          string  `json:"language,omitempty"`
	ChunkType         string  `json:"chunk_type,omitempty" validate:"omitempty,chunktype"`
	DateFrom          string  `json:"date_from,omitempty"`
	DateTo            string  `json:"date_to,omitempty"`
}
