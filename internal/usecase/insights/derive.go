package insights

import (
	"fmt"
	"strings"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
)

// BuildDerived maps the document onto the normalized rows of the meeting.
// Every task breakdown subtask becomes an action item prefixed with its parent task.
func BuildDerived(meeting *entities.Meeting, doc *entities.InsightsDocument, llmVersion string) *entities.DerivedInsights {
	d := &entities.DerivedInsights{
		ActionItems: make([]*entities.ActionItem, 0, len(doc.ActionItems)),
		Blockers:    make([]*entities.Blocker, 0, len(doc.Blockers)),
		Deadlines:   make([]*entities.Deadline, 0, len(doc.CriticalDeadlines)),
		Highlights:  make([]*entities.SpeakerHighlight, 0),
	}

	meta := &entities.MeetingMetadata{
		MeetingID:  meeting.ID,
		LLMVersion: llmVersion,
		Blockers:   doc.Blockers,
		Deadlines:  doc.CriticalDeadlines,
	}
	if doc.Overview != nil {
		meta.Goal = entities.StringPtr(doc.Overview.Goal)
		meta.Summary = entities.StringPtr(doc.Overview.Summary)
		meta.Sentiment = entities.StringPtr(doc.Overview.Sentiment)
	}
	d.Metadata = meta

	for _, digest := range doc.SpeakerDigests {
		for _, h := range digest.Highlights {
			row := &entities.SpeakerHighlight{
				MeetingID: meeting.ID,
				Speaker:   entities.StringPtr(digest.Name),
				Text:      h.Text,
				Label:     entities.StringPtr(h.Label),
			}
			if h.Start != nil {
				row.StartTime = *h.Start
				row.AbsoluteStartTime = entities.OffsetTime(meeting.StartTime, *h.Start)
			}
			if h.End != nil {
				row.EndTime = *h.End
				row.AbsoluteEndTime = entities.OffsetTime(meeting.StartTime, *h.End)
			}
			d.Highlights = append(d.Highlights, row)
		}
	}

	for _, item := range doc.ActionItems {
		d.ActionItems = append(d.ActionItems, &entities.ActionItem{
			MeetingID:    meeting.ID,
			Owner:        entities.StringPtr(item.Owner),
			Description:  item.Description,
			DueDate:      entities.ParseISODateTime(item.DueDate),
			Status:       entities.StringPtr(item.Status),
			Priority:     entities.StringPtr(item.Priority),
			ReferenceURL: entities.StringPtr(item.Reference),
		})
	}
	for _, task := range doc.TaskBreakdown {
		for _, sub := range task.Subtasks {
			d.ActionItems = append(d.ActionItems, &entities.ActionItem{
				MeetingID:    meeting.ID,
				Owner:        entities.StringPtr(sub.Owner),
				Description:  fmt.Sprintf("[%s] %s", task.ParentTask, sub.Title),
				DueDate:      entities.ParseISODateTime(sub.DueDate),
				Status:       entities.StringPtr(entities.ActionItemStatusNew),
				Priority:     entities.StringPtr(task.Priority),
				ReferenceURL: entities.StringPtr(sub.Dependencies),
			})
		}
	}

	for _, b := range doc.Blockers {
		d.Blockers = append(d.Blockers, &entities.Blocker{
			MeetingID:      meeting.ID,
			Description:    b.Description,
			Owner:          entities.StringPtr(b.Owner),
			Impact:         entities.StringPtr(b.Impact),
			ProposedAction: entities.StringPtr(b.ProposedAction),
		})
	}

	for _, dl := range doc.CriticalDeadlines {
		d.Deadlines = append(d.Deadlines, &entities.Deadline{
			MeetingID:    meeting.ID,
			Name:         dl.Name,
			Owner:        entities.StringPtr(dl.Owner),
			DueDate:      entities.ParseISODateTime(dl.Date),
			RawDate:      entities.StringPtr(dl.Date),
			Risk:         entities.StringPtr(dl.Risk),
			Dependencies: entities.StringPtr(dl.Dependencies),
		})
	}

	return d
}

// BuildTranscriptChunks creates one chunk per non-blank segment
func BuildTranscriptChunks(meeting *entities.Meeting, segments []*entities.TranscriptSegment) []*entities.Chunk {
	chunks := make([]*entities.Chunk, 0, len(segments))
	for _, seg := range segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		start, end := seg.StartTime, seg.EndTime
		c := &entities.Chunk{
			ChunkType:    entities.ChunkTypeTranscript,
			Text:         text,
			SegmentStart: &start,
			SegmentEnd:   &end,
			Timestamp:    seg.AbsoluteStart(meeting.StartTime),
			Speaker:      seg.Speaker,
			Language:     seg.Language,
		}
		c.ApplyMeeting(meeting)
		c.ComputeHash()
		chunks = append(chunks, c)
	}
	return chunks
}

// BuildInsightChunks creates an insight chunk for the overview, each blocker
// and each deadline, and an action_item chunk for each derived action item.
func BuildInsightChunks(meeting *entities.Meeting, doc *entities.InsightsDocument, actionItems []*entities.ActionItem) []*entities.Chunk {
	var texts []string
	if doc.Overview != nil {
		texts = append(texts, joinFields(
			field("Meeting goal", doc.Overview.Goal),
			field("Summary", doc.Overview.Summary),
			field("Sentiment", doc.Overview.Sentiment),
		))
	}
	for _, b := range doc.Blockers {
		texts = append(texts, joinFields(
			field("Blocker", b.Description),
			field("Owner", b.Owner),
			field("Impact", b.Impact),
			field("Proposed action", b.ProposedAction),
		))
	}
	for _, dl := range doc.CriticalDeadlines {
		texts = append(texts, joinFields(
			field("Deadline", dl.Name),
			field("Owner", dl.Owner),
			field("Date", dl.Date),
			field("Risk", dl.Risk),
			field("Dependencies", dl.Dependencies),
		))
	}

	chunks := make([]*entities.Chunk, 0, len(texts)+len(actionItems))
	for _, text := range texts {
		if text == "" {
			continue
		}
		chunks = append(chunks, newInsightChunk(meeting, entities.ChunkTypeInsight, text, nil))
	}

	for _, item := range actionItems {
		due := ""
		if item.DueDate != nil {
			due = item.DueDate.Format("2006-01-02")
		}
		text := joinFields(
			field("Action item", item.Description),
			field("Owner", deref(item.Owner)),
			field("Due", due),
			field("Status", deref(item.Status)),
			field("Priority", deref(item.Priority)),
		)
		if text == "" {
			continue
		}
		chunks = append(chunks, newInsightChunk(meeting, entities.ChunkTypeActionItem, text, item.Owner))
	}
	return chunks
}

func newInsightChunk(meeting *entities.Meeting, t entities.ChunkType, text string, speaker *string) *entities.Chunk {
	c := &entities.Chunk{
		ChunkType: t,
		Text:      text,
		Speaker:   speaker,
		Timestamp: meeting.StartTime,
	}
	c.ApplyMeeting(meeting)
	c.ComputeHash()
	return c
}

func field(label, value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	return label + ": " + value
}

func joinFields(fields ...string) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if f != "" {
			parts = append(parts, f)
		}
	}
	return strings.Join(parts, "\n")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
