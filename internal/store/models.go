package store

import "time"

type User struct {
	ID                    string
	DisplayName           string
	Email                 string
	PasswordHash          string
	IsEmailVerified       bool
	VerificationToken     string
	VerificationExpiresAt *time.Time
	DeactivatedAt         *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

type Project struct {
	ID          string
	Title       string
	Description string
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProjectMember is one (project, user) membership row. The UNIQUE
// (project_id, user_id) constraint makes it impossible for a user to hold
// two roles in the same project.
type ProjectMember struct {
	ProjectID string
	UserID    string
	Role      string
	AddedAt   time.Time
}

// Invitation is a pending offer of a role to a specific email address.
// AcceptedAt stays nil while the invitation is pending.
type Invitation struct {
	ID               string
	ProjectID        string
	Role             string
	InvitingUserID   string
	InvitedUserEmail string
	InvitedUserName  string
	Message          string
	AcceptedAt       *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// InvitationToken is a shareable link granting a fixed role to whoever
// redeems it. One row per (project, role); re-requesting refreshes expiry.
type InvitationToken struct {
	ID        string
	ProjectID string
	Role      string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Manuscript struct {
	ID        string
	ProjectID string
	Title     string
	Body      string
	UpdatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Snapshot struct {
	ID         string
	ProjectID  string
	Name       string
	CommitHash string
	ArchiveKey string
	CreatedBy  string
	CreatedAt  time.Time
}
