package entities

// InsightsDocument is the structured result of one extraction call.
// Required fields are enforced with validator tags when the model output is parsed.
type InsightsDocument struct {
	Overview          *InsightOverview    `json:"overview" validate:"required"`
	ResponsiblePeople []InsightPerson     `json:"responsible_people" validate:"dive"`
	CriticalDeadlines []InsightDeadline   `json:"critical_deadlines" validate:"dive"`
	Blockers          []InsightBlocker    `json:"blockers" validate:"dive"`
	TaskBreakdown     []InsightTask       `json:"task_breakdown" validate:"dive"`
	ActionItems       []InsightActionItem `json:"action_items" validate:"dive"`
	SpeakerDigests    []SpeakerDigest     `json:"speaker_digests" validate:"dive"`
	LLMSuggestions    *LLMSuggestions     `json:"llm_suggestions,omitempty"`
}

type InsightOverview struct {
	Goal      string `json:"goal"`
	Summary   string `json:"summary" validate:"required"`
	Sentiment string `json:"sentiment"`
}

type InsightPerson struct {
	Person   string   `json:"person" validate:"required"`
	Role     string   `json:"role"`
	KeyTasks []string `json:"key_tasks"`
	Workload string   `json:"workload"`
	Notes    string   `json:"notes"`
}

type InsightDeadline struct {
	Name         string `json:"name" validate:"required"`
	Owner        string `json:"owner"`
	Date         string `json:"date"`
	Risk         string `json:"risk"`
	Dependencies string `json:"dependencies"`
}

type InsightBlocker struct {
	Description    string `json:"description" validate:"required"`
	Owner          string `json:"owner"`
	Impact         string `json:"impact"`
	ProposedAction string `json:"proposed_action"`
}

// InsightTask is a parent task with its subtasks
type InsightTask struct {
	ParentTask       string           `json:"parent_task" validate:"required"`
	Description      string           `json:"description"`
	Priority         string           `json:"priority"`
	RecommendedTools []string         `json:"recommended_tools"`
	Subtasks         []InsightSubtask `json:"subtasks" validate:"dive"`
}

type InsightSubtask struct {
	Title        string `json:"title" validate:"required"`
	Owner        string `json:"owner"`
	DueDate      string `json:"due_date"`
	Dependencies string `json:"dependencies"`
	HandoffNotes string `json:"handoff_notes"`
}

type InsightActionItem struct {
	Description string `json:"description" validate:"required"`
	Owner       string `json:"owner"`
	DueDate     string `json:"due_date"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	Reference   string `json:"reference"`
}

type SpeakerDigest struct {
	Name       string            `json:"name" validate:"required"`
	Highlights []DigestHighlight `json:"highlights" validate:"dive"`
}

// DigestHighlight offsets are seconds from meeting start
type DigestHighlight struct {
	Text  string   `json:"text" validate:"required"`
	Start *float64 `json:"start"`
	End   *float64 `json:"end"`
	Label string   `json:"label"`
}

// LLMSuggestions are optional recommendations from the model
type LLMSuggestions struct {
	TaskAssignments   []TaskAssignment   `json:"task_assignments"`
	SubtaskBreakdowns []SubtaskBreakdown `json:"subtask_breakdowns"`
}

type TaskAssignment struct {
	Task      string `json:"task"`
	Assignee  string `json:"assignee"`
	Rationale string `json:"rationale"`
}

type SubtaskBreakdown struct {
	ParentTask string   `json:"parent_task"`
	Subtasks   []string `json:"subtasks"`
	Notes      string   `json:"notes"`
}

// InsightsContext is the slice of the document used to ground meeting-scoped answers
type InsightsContext struct {
	Overview          InsightOverview     `json:"overview"`
	CriticalDeadlines []InsightDeadline   `json:"critical_deadlines"`
	ActionItems       []InsightActionItem `json:"action_items"`
	Blockers          []InsightBlocker    `json:"blockers"`
}

// Context extracts the insights context from the document
func (d *InsightsDocument) Context() *InsightsContext {
	if d == nil {
		return nil
	}
	ctx := &InsightsContext{
		CriticalDeadlines: d.CriticalDeadlines,
		ActionItems:       d.ActionItems,
		Blockers:          d.Blockers,
	}
	if d.Overview != nil {
		ctx.Overview = *d.Overview
	}
	if ctx.CriticalDeadlines == nil {
		ctx.CriticalDeadlines = []InsightDeadline{}
	}
	if ctx.ActionItems == nil {
		ctx.ActionItems = []InsightActionItem{}
	}
	if ctx.Blockers == nil {
		ctx.Blockers = []InsightBlocker{}
	}
	return ctx
}
