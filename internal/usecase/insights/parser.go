package insights

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	ucerrors "github.com/johnquangdev/meeting-insights/internal/usecase/errors"
	"github.com/johnquangdev/meeting-insights/pkg/validator"
)

// Parser decodes and validates model output into an InsightsDocument
type Parser struct {
	validator *validator.CustomValidator
}

// NewParser creates a new Parser instance
func NewParser() *Parser {
	return &Parser{validator: validator.New()}
}

// Parse decodes the model response. Any decode or validation failure is an
// ErrExtractionFailed.
func (p *Parser) Parse(content string) (*entities.InsightsDocument, error) {
	content = extractJSON(content)
	if content == "" {
		return nil, fmt.Errorf("%w: empty model response", ucerrors.ErrExtractionFailed)
	}

	var doc entities.InsightsDocument
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON response: %v", ucerrors.ErrExtractionFailed, err)
	}

	if err := p.validator.Validate(&doc); err != nil {
		return nil, fmt.Errorf("%w: document does not match schema: %v", ucerrors.ErrExtractionFailed, err)
	}

	normalize(&doc)
	return &doc, nil
}

// normalize replaces nil collections with empty ones
func normalize(doc *entities.InsightsDocument) {
	if doc.ResponsiblePeople == nil {
		doc.ResponsiblePeople = []entities.InsightPerson{}
	}
	if doc.CriticalDeadlines == nil {
		doc.CriticalDeadlines = []entities.InsightDeadline{}
	}
	if doc.Blockers == nil {
		doc.Blockers = []entities.InsightBlocker{}
	}
	if doc.TaskBreakdown == nil {
		doc.TaskBreakdown = []entities.InsightTask{}
	}
	for i := range doc.TaskBreakdown {
		if doc.TaskBreakdown[i].Subtasks == nil {
			doc.TaskBreakdown[i].Subtasks = []entities.InsightSubtask{}
		}
	}
	if doc.ActionItems == nil {
		doc.ActionItems = []entities.InsightActionItem{}
	}
	if doc.SpeakerDigests == nil {
		doc.SpeakerDigests = []entities.SpeakerDigest{}
	}
}

// extractJSON strips markdown code fences and any prose around the object
func extractJSON(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
	}
	content = strings.TrimSpace(content)

	if !strings.HasPrefix(content, "{") {
		start := strings.Index(content, "{")
		end := strings.LastIndex(content, "}")
		if start != -1 && end > start {
			content = content[start : end+1]
		}
	}
	return content
}
