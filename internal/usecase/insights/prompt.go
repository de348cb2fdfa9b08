package insights

import (
	"fmt"
	"strings"
	"time"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	"github.com/johnquangdev/meeting-insights/pkg/ai"
)

// SchemaName names the structured output format sent to the provider
const SchemaName = "meeting_insights"

const systemPromptFormat = `You are an AI Scrum Master. Analyze meeting transcripts and extract the business impact, risks, owners and the action plan.
Write in a concise business style so the results can go straight into dashboards. Write every field value in %s.

Transcripts come from automatic speech recognition and are noisy. Disregard fragments that are topically incoherent with the rest of the meeting or recognizable as recognition artifacts: repeated symbols, stray words, phrases out of context. Never base an insight on such fragments.`

const schemaDescription = `Return JSON with exactly this structure:
{
  "overview": {"goal": "Key goal of the meeting", "summary": "Short summary (2-3 sentences)", "sentiment": "positive|neutral|negative"},
  "responsible_people": [{"person": "Name or role", "role": "Area of responsibility", "key_tasks": ["..."], "workload": "low|medium|high", "notes": "Remarks or risks"}],
  "critical_deadlines": [{"name": "Step name", "owner": "Owner", "date": "ISO8601", "risk": "Consequence of missing it", "dependencies": "Prerequisites"}],
  "blockers": [{"description": "Problem", "owner": "Who resolves it", "impact": "Business or project impact", "proposed_action": "Steps to unblock"}],
  "task_breakdown": [{"parent_task": "Initiative", "description": "Scope", "priority": "high|medium|low", "recommended_tools": ["..."],
    "subtasks": [{"title": "Subtask", "owner": "Assignee", "due_date": "ISO8601 or empty", "dependencies": "What is needed to start", "handoff_notes": "Notes for the next role"}]}],
  "action_items": [{"description": "Concrete action", "owner": "Owner", "due_date": "ISO8601 or empty", "status": "new|in_progress|done|blocked", "priority": "high|medium|low", "reference": "Links or context"}],
  "speaker_digests": [{"name": "Speaker", "highlights": [{"text": "Key point", "start": 0, "end": 0, "label": "update|decision|blocker|other"}]}],
  "llm_suggestions": {"task_assignments": [{"task": "...", "assignee": "...", "rationale": "..."}], "subtask_breakdowns": [{"parent_task": "...", "subtasks": ["..."], "notes": "..."}]}
}
Use empty arrays when a section has no entries.`

// BuildTranscriptPayload renders the first limit segments, one numbered line
// each, with the relative window and the absolute start time.
func BuildTranscriptPayload(meeting *entities.Meeting, segments []*entities.TranscriptSegment, limit int) string {
	if limit > 0 && len(segments) > limit {
		segments = segments[:limit]
	}
	lines := make([]string, 0, len(segments))
	for i, seg := range segments {
		abs := "n/a"
		if t := seg.AbsoluteStart(meeting.StartTime); t != nil {
			abs = t.UTC().Format(time.RFC3339)
		}
		lines = append(lines, fmt.Sprintf("%d. [%.2f-%.2fs | %s] %s: %s",
			i+1, seg.StartTime, seg.EndTime, abs, seg.SpeakerName(), strings.TrimSpace(seg.Text)))
	}
	return strings.Join(lines, "\n")
}

// BuildMessages assembles the extraction conversation
func BuildMessages(meeting *entities.Meeting, payload, roster, language string, limit int) []ai.Message {
	if language == "" {
		language = "English"
	}

	start := "n/a"
	if meeting.StartTime != nil {
		start = meeting.StartTime.UTC().Format(time.RFC3339)
	}

	var b strings.Builder
	b.WriteString("Meeting information:\n")
	fmt.Fprintf(&b, "- Platform: %s\n", meeting.Platform)
	fmt.Fprintf(&b, "- Meeting id: %s\n", meeting.NativeID())
	fmt.Fprintf(&b, "- Start: %s\n", start)
	if roster != "" {
		fmt.Fprintf(&b, "\nTeam members and roles:\n%s\n", roster)
	}
	fmt.Fprintf(&b, "\nTranscript fragments (up to %d entries):\n%s\n\n", limit, payload)
	b.WriteString("Produce the JSON exactly as specified above, with no text outside it.")

	return []ai.Message{
		{Role: ai.RoleSystem, Content: fmt.Sprintf(systemPromptFormat, language)},
		{Role: ai.RoleUser, Content: schemaDescription},
		{Role: ai.RoleUser, Content: b.String()},
	}
}

// DocumentSchema is the JSON schema of InsightsDocument sent with the request
func DocumentSchema() map[string]interface{} {
	str := map[string]interface{}{"type": "string"}
	num := map[string]interface{}{"type": []string{"number", "null"}}
	strArr := arrayOf(str)

	return object(map[string]interface{}{
		"overview": object(map[string]interface{}{
			"goal":      str,
			"summary":   str,
			"sentiment": str,
		}, "summary"),
		"responsible_people": arrayOf(object(map[string]interface{}{
			"person":    str,
			"role":      str,
			"key_tasks": strArr,
			"workload":  str,
			"notes":     str,
		}, "person")),
		"critical_deadlines": arrayOf(object(map[string]interface{}{
			"name":         str,
			"owner":        str,
			"date":         str,
			"risk":         str,
			"dependencies": str,
		}, "name")),
		"blockers": arrayOf(object(map[string]interface{}{
			"description":     str,
			"owner":           str,
			"impact":          str,
			"proposed_action": str,
		}, "description")),
		"task_breakdown": arrayOf(object(map[string]interface{}{
			"parent_task":       str,
			"description":       str,
			"priority":          str,
			"recommended_tools": strArr,
			"subtasks": arrayOf(object(map[string]interface{}{
				"title":         str,
				"owner":         str,
				"due_date":      str,
				"dependencies":  str,
				"handoff_notes": str,
			}, "title")),
		}, "parent_task")),
		"action_items": arrayOf(object(map[string]interface{}{
			"description": str,
			"owner":       str,
			"due_date":    str,
			"status":      str,
			"priority":    str,
			"reference":   str,
		}, "description")),
		"speaker_digests": arrayOf(object(map[string]interface{}{
			"name": str,
			"highlights": arrayOf(object(map[string]interface{}{
				"text":  str,
				"start": num,
				"end":   num,
				"label": str,
			}, "text")),
		}, "name")),
		"llm_suggestions": object(map[string]interface{}{
			"task_assignments": arrayOf(object(map[string]interface{}{
				"task":      str,
				"assignee":  str,
				"rationale": str,
			})),
			"subtask_breakdowns": arrayOf(object(map[string]interface{}{
				"parent_task": str,
				"subtasks":    strArr,
				"notes":       str,
			})),
		}),
	}, "overview", "responsible_people", "critical_deadlines", "blockers", "task_breakdown", "action_items", "speaker_digests")
}

func object(props map[string]interface{}, required ...string) map[string]interface{} {
	o := map[string]interface{}{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		o["required"] = required
	}
	return o
}

func arrayOf(items map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{"type": "array", "items": items}
}
