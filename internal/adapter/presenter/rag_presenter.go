package presenter

import (
	"time"

	dtoinsights "github.com/johnquangdev/meeting-insights/internal/adapter/dto/insights"
	dtorag "github.com/johnquangdev/meeting-insights/internal/adapter/dto/rag"
	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	"github.com/johnquangdev/meeting-insights/pkg/ai"
)

// ToChunkResponse converts a Chunk entity to ChunkResponse DTO
func ToChunkResponse(c entities.Chunk) dtorag.ChunkResponse {
	resp := dtorag.ChunkResponse{
		ID:              c.ID,
		MeetingID:       c.MeetingID,
		MeetingNativeID: c.MeetingNativeID,
		Platform:        c.Platform,
		Speaker:         c.Speaker,
		Text:            c.Text,
		StartTime:       c.SegmentStart,
		EndTime:         c.SegmentEnd,
		ChunkType:       string(c.ChunkType),
		SimilarityScore: c.Similarity,
	}
	if c.Timestamp != nil {
		ts := c.Timestamp.UTC().Format(time.RFC3339)
		resp.Timestamp = &ts
	}
	return resp
}

// ToQueryResponse converts a synthesized answer to QueryResponse DTO
func ToQueryResponse(answer string, chunks []entities.Chunk, usage *ai.Usage) *dtorag.QueryResponse {
	resp := &dtorag.QueryResponse{
		Answer: answer,
		Chunks: make([]dtorag.ChunkResponse, 0, len(chunks)),
	}
	for _, c := range chunks {
		resp.Chunks = append(resp.Chunks, ToChunkResponse(c))
	}
	if usage != nil {
		resp.TokenUsage = &dtorag.TokenUsage{
			PromptTokens:     usage.PromptTokens,
			CompletionTokens: usage.CompletionTokens,
			TotalTokens:      usage.TotalTokens,
		}
	}
	return resp
}

// ToActionItemListResponse converts action items of a meeting
func ToActionItemListResponse(meetingID int64, items []entities.ActionItem) *dtoinsights.ActionItemListResponse {
	resp := &dtoinsights.ActionItemListResponse{
		MeetingID:   meetingID,
		ActionItems: make([]dtoinsights.ActionItemResponse, 0, len(items)),
	}
	for _, it := range items {
		resp.ActionItems = append(resp.ActionItems, dtoinsights.ActionItemResponse{
			ID:           it.ID,
			MeetingID:    it.MeetingID,
			Owner:        it.Owner,
			Description:  it.Description,
			DueDate:      it.DueDate,
			Status:       it.Status,
			Priority:     it.Priority,
			ReferenceURL: it.ReferenceURL,
		})
	}
	return resp
}

// ToUpcomingDeadlinesResponse converts deadlines inside a window
func ToUpcomingDeadlinesResponse(days int, deadlines []entities.Deadline) *dtoinsights.UpcomingDeadlinesResponse {
	resp := &dtoinsights.UpcomingDeadlinesResponse{
		Days:      days,
		Deadlines: make([]dtoinsights.DeadlineResponse, 0, len(deadlines)),
	}
	for _, d := range deadlines {
		resp.Deadlines = append(resp.Deadlines, dtoinsights.DeadlineResponse{
			ID:           d.ID,
			MeetingID:    d.MeetingID,
			Name:         d.Name,
			Owner:        d.Owner,
			DueDate:      d.DueDate,
			Risk:         d.Risk,
			Dependencies: d.Dependencies,
		})
	}
	return resp
}
