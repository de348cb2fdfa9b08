package entities

import "time"

// Default status for action items synthesized from subtasks
const ActionItemStatusNew = "new"

// ActionItem is a normalized action item row for non-semantic queries
type ActionItem struct {
	ID           int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	MeetingID    int64      `json:"meeting_id" gorm:"not null;index"`
	Owner        *string    `json:"owner,omitempty" gorm:"type:varchar(255)"`
	Description  string     `json:"description" gorm:"type:text;not null"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	Status       *string    `json:"status,omitempty" gorm:"type:varchar(50)"`
	Priority     *string    `json:"priority,omitempty" gorm:"type:varchar(50)"`
	ReferenceURL *string    `json:"reference_url,omitempty" gorm:"type:text"`
	CreatedAt    time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName overrides the table name
func (ActionItem) TableName() string {
	return "action_items"
}
