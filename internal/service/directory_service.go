package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/researcher-directory/internal/auth"
	"github.com/spec-kit/researcher-directory/internal/config"
	"github.com/spec-kit/researcher-directory/internal/domain"
	"github.com/spec-kit/researcher-directory/internal/events"
	"github.com/spec-kit/researcher-directory/internal/repository"
)

const (
	defaultListLimit   = 50
	defaultSearchLimit = 25
)

// CreateResearcherInput carries admin-supplied fields for a new member.
type CreateResearcherInput struct {
	Email           string
	Username        string
	Password        string
	Role            domain.Role
	FirstName       string
	LastName        string
	Institution     string
	FieldOfResearch string
}

// UpdateResearcherInput carries admin-editable fields. Nil means unchanged.
type UpdateResearcherInput struct {
	Role            *domain.Role
	Institution     *string
	FieldOfResearch *string
	Status          *domain.ResearcherStatus
}

// ProfileUpdateInput carries the self-service profile fields.
type ProfileUpdateInput struct {
	FirstName       *string
	LastName        *string
	Institution     *string
	FieldOfResearch *string
	ProfilePicture  *string
	ImageKey        *string
}

// DirectoryService implements admin user management, profile editing, and search.
type DirectoryService struct {
	researchers repository.ResearcherRepository
	dispatcher  events.Dispatcher
	bcryptCost  int
}

// NewDirectoryService builds the service.
func NewDirectoryService(cfg config.Config, repo repository.ResearcherRepository, dispatcher events.Dispatcher) *DirectoryService {
	return &DirectoryService{
		researchers: repo,
		dispatcher:  dispatcher,
		bcryptCost:  cfg.Auth.BcryptCost,
	}
}

// Create registers a new directory member on behalf of an admin.
func (s *DirectoryService) Create(ctx context.Context, actorID string, input CreateResearcherInput) (*domain.Researcher, error) {
	if !input.Role.Valid() {
		return nil, errors.New("unknown role")
	}
	if _, err := s.researchers.GetByEmail(ctx, input.Email); err == nil {
		return nil, errors.New("email already registered")
	} else if err != pgx.ErrNoRows {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	researcher := &domain.Researcher{
		Email:           input.Email,
		Username:        input.Username,
		PasswordHash:    hash,
		Role:            input.Role,
		FirstName:       input.FirstName,
		LastName:        input.LastName,
		Institution:     input.Institution,
		FieldOfResearch: input.FieldOfResearch,
		Status:          domain.ResearcherStatusActive,
	}
	if err := s.researchers.Create(ctx, researcher); err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventUserCreated, events.UserChangePayload{
		ResearcherID: researcher.ID,
		ActorID:      actorID,
		Role:         researcher.Role,
	})
	return researcher, nil
}

// Update applies admin edits to a member record.
func (s *DirectoryService) Update(ctx context.Context, actorID, id string, input UpdateResearcherInput) (*domain.Researcher, error) {
	researcher, err := s.researchers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Role != nil {
		if !input.Role.Valid() {
			return nil, errors.New("unknown role")
		}
		researcher.Role = *input.Role
	}
	if input.Institution != nil {
		researcher.Institution = *input.Institution
	}
	if input.FieldOfResearch != nil {
		researcher.FieldOfResearch = *input.FieldOfResearch
	}
	if input.Status != nil {
		researcher.Status = *input.Status
	}

	if err := s.researchers.Update(ctx, researcher); err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventUserUpdated, events.UserChangePayload{
		ResearcherID: researcher.ID,
		ActorID:      actorID,
		Role:         researcher.Role,
	})
	return researcher, nil
}

// Delete removes a member from the directory. Any credential already issued
// to the deleted member keeps verifying until it expires; only /api/auth/me
// and subsequent logins notice the removal.
func (s *DirectoryService) Delete(ctx context.Context, actorID, id string) error {
	if err := s.researchers.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, events.EventUserDeleted, events.UserChangePayload{
		ResearcherID: id,
		ActorID:      actorID,
	})
	return nil
}

// Get fetches one member.
func (s *DirectoryService) Get(ctx context.Context, id string) (*domain.Researcher, error) {
	return s.researchers.GetByID(ctx, id)
}

// List pages through the directory.
func (s *DirectoryService) List(ctx context.Context, limit, offset int) ([]*domain.Researcher, error) {
	if limit <= 0 || limit > 200 {
		limit = defaultListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.researchers.List(ctx, limit, offset)
}

// Search matches members by name, username, institution, or field.
func (s *DirectoryService) Search(ctx context.Context, query string, limit int) ([]*domain.Researcher, error) {
	if limit <= 0 || limit > 100 {
		limit = defaultSearchLimit
	}
	return s.researchers.Search(ctx, query, limit)
}

// UpdateProfile applies self-service edits for the authenticated member.
func (s *DirectoryService) UpdateProfile(ctx context.Context, researcherID string, input ProfileUpdateInput) (*domain.Researcher, error) {
	researcher, err := s.researchers.GetByID(ctx, researcherID)
	if err != nil {
		return nil, err
	}

	if input.FirstName != nil {
		researcher.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		researcher.LastName = *input.LastName
	}
	if input.Institution != nil {
		researcher.Institution = *input.Institution
	}
	if input.FieldOfResearch != nil {
		researcher.FieldOfResearch = *input.FieldOfResearch
	}
	if input.ProfilePicture != nil {
		researcher.ProfilePicture = input.ProfilePicture
	}
	if input.ImageKey != nil {
		researcher.ImageKey = input.ImageKey
	}

	if err := s.researchers.Update(ctx, researcher); err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventProfileUpdated, events.UserChangePayload{
		ResearcherID: researcher.ID,
		ActorID:      researcher.ID,
	})
	return researcher, nil
}

func (s *DirectoryService) publish(ctx context.Context, eventType events.EventType, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
