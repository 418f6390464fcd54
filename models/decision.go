package models

import "time"

// Editorial decision types.
const (
	DecisionAccept        = "ACCEPT"
	DecisionReject        = "REJECT"
	DecisionMinorRevision = "MINOR_REVISION"
	DecisionMajorRevision = "MAJOR_REVISION"
)

// EditorialDecision is append-only: one row per review round, never updated.
// RevisionDeadline is present iff the decision requests a revision.
type EditorialDecision struct {
	DecisionID        int        `gorm:"primaryKey;column:decision_id" json:"decision_id"`
	SubmissionID      int        `gorm:"column:submission_id" json:"submission_id"`
	EditorID          int        `gorm:"column:editor_id" json:"editor_id"`
	ReviewRound       int        `gorm:"column:review_round" json:"review_round"`
	DecisionType      string     `gorm:"column:decision_type" json:"decision_type"`
	DecisionLetter    string     `gorm:"column:decision_letter" json:"decision_letter"`
	ConfidentialNotes *string    `gorm:"column:confidential_notes" json:"confidential_notes,omitempty"` // editor-only, redacted for authors
	RevisionDeadline  *time.Time `gorm:"column:revision_deadline" json:"revision_deadline,omitempty"`
	CreatedAt         time.Time  `gorm:"column:created_at" json:"created_at"`

	Editor *User `gorm:"foreignKey:EditorID" json:"editor,omitempty"`
}

func (EditorialDecision) TableName() string {
	return "editorial_decisions"
}

// RequiresRevision reports whether this decision sends the manuscript back
// to the author.
func (d *EditorialDecision) RequiresRevision() bool {
	return d.DecisionType == DecisionMinorRevision || d.DecisionType == DecisionMajorRevision
}
