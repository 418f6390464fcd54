package models

import "time"

// Discussion states.
const (
	DiscussionOpen     = "OPEN"
	DiscussionResolved = "RESOLVED"
	DiscussionClosed   = "CLOSED"
)

// Discussion owning contexts. One discussion type serves both workflows,
// discriminated by ContextType + ContextID.
const (
	ContextCopyediting = "COPYEDITING"
	ContextProduction  = "PRODUCTION"
)

// Discussion is a threaded conversation attached to a copyediting or
// production assignment. Advisory only: it never blocks file transitions.
type Discussion struct {
	DiscussionID int        `gorm:"primaryKey;column:discussion_id" json:"discussion_id"`
	ContextType  string     `gorm:"column:context_type" json:"context_type"`
	ContextID    int        `gorm:"column:context_id" json:"context_id"`
	SubmissionID int        `gorm:"column:submission_id" json:"submission_id"`
	Subject      string     `gorm:"column:subject" json:"subject"`
	Status       string     `gorm:"column:status" json:"status"`
	CreatedBy    int        `gorm:"column:created_by" json:"created_by"`
	Version      int        `gorm:"column:version" json:"version"`
	CreatedAt    time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    *time.Time `gorm:"column:updated_at" json:"updated_at,omitempty"`

	Participants []DiscussionParticipant `gorm:"foreignKey:DiscussionID" json:"participants,omitempty"`
	Messages     []DiscussionMessage     `gorm:"foreignKey:DiscussionID" json:"messages,omitempty"`
}

func (Discussion) TableName() string {
	return "discussions"
}

type DiscussionParticipant struct {
	ParticipantID int       `gorm:"primaryKey;column:participant_id" json:"participant_id"`
	DiscussionID  int       `gorm:"column:discussion_id" json:"discussion_id"`
	UserID        int       `gorm:"column:user_id" json:"user_id"`
	CreatedAt     time.Time `gorm:"column:created_at" json:"created_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (DiscussionParticipant) TableName() string {
	return "discussion_participants"
}

// DiscussionMessage is append-only: never edited or deleted once written.
type DiscussionMessage struct {
	MessageID    int       `gorm:"primaryKey;column:message_id" json:"message_id"`
	DiscussionID int       `gorm:"column:discussion_id" json:"discussion_id"`
	AuthorID     int       `gorm:"column:author_id" json:"author_id"`
	Body         string    `gorm:"column:body" json:"body"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`

	Author *User `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}

func (DiscussionMessage) TableName() string {
	return "discussion_messages"
}
