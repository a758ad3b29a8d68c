package domain

import "time"

// Role enumerates directory access levels. The set is closed; anything outside
// it is rejected at the boundary.
type Role string

const (
	RoleUser      Role = "user"
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
)

// Valid reports whether the role is one of the enumerated values.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleModerator:
		return true
	}
	return false
}

// ResearcherStatus represents lifecycle states for a directory member.
type ResearcherStatus string

const (
	ResearcherStatusActive    ResearcherStatus = "ACTIVE"
	ResearcherStatusSuspended ResearcherStatus = "SUSPENDED"
)

// Researcher is the domain model for a directory member.
type Researcher struct {
	ID              string
	Email           string
	Username        string
	PasswordHash    string
	Role            Role
	FirstName       string
	LastName        string
	Institution     string
	FieldOfResearch string
	ProfilePicture  *string
	ImageKey        *string
	Status          ResearcherStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// FullName joins first and last name for display and token claims.
func (r *Researcher) FullName() string {
	if r.FirstName == "" {
		return r.LastName
	}
	if r.LastName == "" {
		return r.FirstName
	}
	return r.FirstName + " " + r.LastName
}
