package rag

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	"github.com/johnquangdev/meeting-insights/pkg/ai"
)

const artifactRules = "Transcripts may contain speech-recognition artifacts: phrases that are off-topic, " +
	"incoherent, repeated symbols or random words unrelated to the discussion. Ignore any such context " +
	"and use only fragments that logically relate to the question."

const globalSystemPrompt = "You are an assistant answering questions about past meetings. " +
	"Answer only from the supplied context. If the context does not contain enough data, say so plainly. " +
	"For every fact you use, name the source meeting by its id and date.\n\n" + artifactRules

const meetingSystemPromptFormat = "Answer only about meeting %s. Ignore any other data. " +
	"Answer only from the supplied context. If the context does not contain enough data, say so plainly. " +
	"If the question is not about this meeting, say that there is no data.\n\n" + artifactRules

const contextNote = "NOTE: Some phrases in the context may be speech-recognition errors. " +
	"Use only context that is relevant to the question and ignore meaningless fragments."

// globalContextItem is one chunk as shown to the model in global mode
type globalContextItem struct {
	Meeting   string `json:"meeting"`
	Date      string `json:"date"`
	Platform  string `json:"platform"`
	Speaker   string `json:"speaker"`
	Timestamp string `json:"timestamp"`
	Text      string `json:"text"`
}

// meetingContextItem is one chunk as shown to the model in meeting mode
type meetingContextItem struct {
	Speaker   string `json:"speaker"`
	Timestamp string `json:"timestamp"`
	Text      string `json:"text"`
}

func buildGlobalPrompt(query string, chunks []entities.Chunk, history []entities.ConversationTurn) []ai.Message {
	items := make([]globalContextItem, 0, len(chunks))
	for _, c := range chunks {
		items = append(items, globalContextItem{
			Meeting:   meetingLabel(c.MeetingNativeID, c.MeetingID),
			Date:      formatDate(c.MeetingDate),
			Platform:  valueOr(c.Platform, "unknown"),
			Speaker:   valueOr(c.Speaker, "Unknown"),
			Timestamp: formatTimestamp(c.Timestamp),
			Text:      c.Text,
		})
	}

	var b strings.Builder
	writeHistory(&b, history)
	fmt.Fprintf(&b, "User question: %s\n\n", query)
	b.WriteString("Context (JSON array of objects):\n")
	b.WriteString(toIndentedJSON(items))
	b.WriteString("\n\n")
	b.WriteString(contextNote)

	return []ai.Message{
		{Role: ai.RoleSystem, Content: globalSystemPrompt},
		{Role: ai.RoleUser, Content: b.String()},
	}
}

func buildMeetingPrompt(query string, meeting *entities.Meeting, chunks []entities.Chunk, insights *entities.InsightsContext, history []entities.ConversationTurn) []ai.Message {
	native := meeting.NativeID()
	var nativePtr *string
	if native != "" {
		nativePtr = &native
	}
	system := fmt.Sprintf(meetingSystemPromptFormat, meetingLabel(nativePtr, meeting.ID))

	items := make([]meetingContextItem, 0, len(chunks))
	for _, c := range chunks {
		items = append(items, meetingContextItem{
			Speaker:   valueOr(c.Speaker, "Unknown"),
			Timestamp: formatTimestamp(c.Timestamp),
			Text:      c.Text,
		})
	}

	var b strings.Builder
	writeHistory(&b, history)
	fmt.Fprintf(&b, "User question: %s\n\n", query)
	b.WriteString("Transcript context (JSON array of objects):\n")
	b.WriteString(toIndentedJSON(items))
	if insights != nil {
		b.WriteString("\n\nStructured meeting insights:\n")
		b.WriteString(toIndentedJSON(insights))
	}
	b.WriteString("\n\n")
	b.WriteString(contextNote)

	return []ai.Message{
		{Role: ai.RoleSystem, Content: system},
		{Role: ai.RoleUser, Content: b.String()},
	}
}

func writeHistory(b *strings.Builder, history []entities.ConversationTurn) {
	if len(history) == 0 {
		return
	}
	for _, turn := range history {
		label := "User"
		if turn.Role == entities.RoleAssistant {
			label = "Assistant"
		}
		fmt.Fprintf(b, "%s: %s\n", label, turn.Content)
	}
	b.WriteString("\n")
}

func meetingLabel(native *string, id int64) string {
	if native != nil && *native != "" {
		return *native
	}
	return fmt.Sprintf("Meeting #%d", id)
}

func valueOr(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}

func formatTimestamp(t *time.Time) string {
	if t == nil {
		return "n/a"
	}
	return t.UTC().Format(time.RFC3339)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "n/a"
	}
	return t.UTC().Format("2006-01-02")
}

func toIndentedJSON(v interface{}) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "[]"
	}
	return string(b)
}
