package models

import (
	"time"
)

// Login roles. Production sub-roles (layout editor etc.) live on the
// ProductionAssignment, not on the user account.
const (
	RoleAuthor     = "AUTHOR"
	RoleEditor     = "EDITOR"
	RoleReviewer   = "REVIEWER"
	RoleCopyeditor = "COPYEDITOR"
	RoleProduction = "PRODUCTION"
)

type User struct {
	UserID    int        `gorm:"primaryKey;column:user_id" json:"user_id"`
	FirstName string     `gorm:"column:first_name" json:"first_name"`
	LastName  string     `gorm:"column:last_name" json:"last_name"`
	Email     string     `gorm:"column:email;unique" json:"email"`
	Password  string     `gorm:"column:password" json:"-"`
	Role      string     `gorm:"column:role" json:"role"`
	Interests *string    `gorm:"column:interests" json:"interests,omitempty"` // comma-separated keywords, read by the reviewer recommender
	CreatedAt time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt *time.Time `gorm:"column:updated_at" json:"updated_at,omitempty"`
	DeletedAt *time.Time `gorm:"column:deleted_at" json:"deleted_at,omitempty"`
}

// TableName overrides
func (User) TableName() string {
	return "users"
}

// FullName joins first and last name for display and mail headers.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
