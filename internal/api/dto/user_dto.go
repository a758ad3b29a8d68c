package dto

import (
	"time"

	"github.com/spec-kit/researcher-directory/internal/domain"
)

// CreateUserRequest payload for admin user creation.
type CreateUserRequest struct {
	Email           string `json:"email"`
	Username        string `json:"username"`
	Password        string `json:"password"`
	Role            string `json:"role"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Institution     string `json:"institution"`
	FieldOfResearch string `json:"field_of_research"`
}

// UpdateUserRequest payload for admin edits. Nil fields are unchanged.
type UpdateUserRequest struct {
	Role            *string `json:"role"`
	Institution     *string `json:"institution"`
	FieldOfResearch *string `json:"field_of_research"`
	Status          *string `json:"status"`
}

// UpdateProfileRequest payload for self-service profile edits.
type UpdateProfileRequest struct {
	FirstName       *string `json:"first_name"`
	LastName        *string `json:"last_name"`
	Institution     *string `json:"institution"`
	FieldOfResearch *string `json:"field_of_research"`
	ProfilePicture  *string `json:"profile_picture"`
	ImageKey        *string `json:"image_key"`
}

// ResearcherResponse is the public view of a directory member.
type ResearcherResponse struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	Username        string    `json:"username"`
	Role            string    `json:"role"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	FullName        string    `json:"full_name"`
	Institution     string    `json:"institution,omitempty"`
	FieldOfResearch string    `json:"field_of_research,omitempty"`
	ProfilePicture  *string   `json:"profile_picture,omitempty"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}

// NewResearcherResponse converts a domain record.
func NewResearcherResponse(r *domain.Researcher) ResearcherResponse {
	return ResearcherResponse{
		ID:              r.ID,
		Email:           r.Email,
		Username:        r.Username,
		Role:            string(r.Role),
		FirstName:       r.FirstName,
		LastName:        r.LastName,
		FullName:        r.FullName(),
		Institution:     r.Institution,
		FieldOfResearch: r.FieldOfResearch,
		ProfilePicture:  r.ProfilePicture,
		Status:          string(r.Status),
		CreatedAt:       r.CreatedAt,
	}
}

// NewResearcherResponses converts a list.
func NewResearcherResponses(list []*domain.Researcher) []ResearcherResponse {
	out := make([]ResearcherResponse, 0, len(list))
	for _, r := range list {
		out = append(out, NewResearcherResponse(r))
	}
	return out
}
