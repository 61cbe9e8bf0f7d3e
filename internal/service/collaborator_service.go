package service

import (
	"context"
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/onboardhq/onboard/internal/dto"
	"github.com/onboardhq/onboard/internal/model"
	"github.com/onboardhq/onboard/internal/repository"
	"github.com/onboardhq/onboard/pkg/apperror"
)

const (
	OnboardingTypeWelcome   = "welcome"
	OnboardingTypeTechnical = "technical"
)

type CollaboratorService interface {
	List(ctx context.Context, filter dto.CollaboratorFilter) ([]model.Collaborator, error)
	Get(ctx context.Context, id uint) (*model.Collaborator, error)
	Create(ctx context.Context, input dto.CreateCollaboratorInput) (*model.Collaborator, error)
	Update(ctx context.Context, id uint, input dto.UpdateCollaboratorInput) error
	Delete(ctx context.Context, id uint) error
	// CompleteOnboarding marks one track completed. Repeating the call is
	// an idempotent success.
	CompleteOnboarding(ctx context.Context, id uint, onboardingType string) error
}

type collaboratorService struct {
	repo   repository.CollaboratorRepository
	search SearchIndexService
}

func NewCollaboratorService(repo repository.CollaboratorRepository, search SearchIndexService) CollaboratorService {
	return &collaboratorService{repo: repo, search: search}
}

func (s *collaboratorService) List(ctx context.Context, filter dto.CollaboratorFilter) ([]model.Collaborator, error) {
	if filter.Search != "" && s.search != nil {
		ids, err := s.search.SearchCollaboratorIDs(ctx, filter.Search)
		if err == nil {
			collaborators, err := s.repo.FindByIDs(ctx, ids)
			if err != nil {
				return nil, err
			}
			return filterByStatus(collaborators, filter.Status), nil
		}
		// Index unavailable, fall through to the SQL path.
		log.Printf("search index query failed, falling back to SQL: %v", err)
	}

	return s.repo.FindAll(ctx, filter.Search, filter.Status)
}

func filterByStatus(collaborators []model.Collaborator, status string) []model.Collaborator {
	if status == "" || status == "all" {
		return collaborators
	}
	filtered := collaborators[:0]
	for _, c := range collaborators {
		if c.WelcomeOnboardingStatus == status || c.TechnicalOnboardingStatus == status {
			filtered = append(filtered, c)
		}
	}
	return filtered
}

func (s *collaboratorService) Get(ctx context.Context, id uint) (*model.Collaborator, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("collaborator not found")
		}
		return nil, err
	}
	return c, nil
}

func (s *collaboratorService) Create(ctx context.Context, input dto.CreateCollaboratorInput) (*model.Collaborator, error) {
	hireDate, err := dto.ParseDate(input.HireDate)
	if err != nil {
		return nil, apperror.BadRequest(err.Error())
	}

	c := &model.Collaborator{
		FullName:                  input.FullName,
		Email:                     input.Email,
		HireDate:                  hireDate,
		WelcomeOnboardingStatus:   model.StatusPending,
		TechnicalOnboardingStatus: model.StatusPending,
	}

	if err := s.repo.Create(ctx, c); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Conflict("email already registered")
		}
		return nil, err
	}

	s.syncIndex(ctx, c)
	return c, nil
}

func (s *collaboratorService) Update(ctx context.Context, id uint, input dto.UpdateCollaboratorInput) error {
	if input.Empty() {
		return apperror.BadRequest("no recognized fields to update")
	}

	fields := map[string]interface{}{}

	if input.FullName != nil {
		fields["full_name"] = *input.FullName
	}
	if input.Email != nil {
		fields["email"] = *input.Email
	}
	if input.HireDate != nil {
		hireDate, err := dto.ParseDate(*input.HireDate)
		if err != nil {
			return apperror.BadRequest(err.Error())
		}
		fields["hire_date"] = hireDate
	}
	if input.WelcomeOnboardingStatus != nil {
		if !model.ValidOnboardingStatus(*input.WelcomeOnboardingStatus) {
			return apperror.BadRequest("invalid welcome onboarding status")
		}
		fields["welcome_onboarding_status"] = *input.WelcomeOnboardingStatus
	}
	if input.TechnicalOnboardingStatus != nil {
		if !model.ValidOnboardingStatus(*input.TechnicalOnboardingStatus) {
			return apperror.BadRequest("invalid technical onboarding status")
		}
		fields["technical_onboarding_status"] = *input.TechnicalOnboardingStatus

		// Completing the technical track without an explicit date stamps
		// today.
		if *input.TechnicalOnboardingStatus == model.StatusCompleted && input.TechnicalOnboardingDate == nil {
			fields["technical_onboarding_date"] = today()
		}
	}
	if input.TechnicalOnboardingDate != nil {
		if *input.TechnicalOnboardingDate == "" {
			fields["technical_onboarding_date"] = nil
		} else {
			date, err := dto.ParseDate(*input.TechnicalOnboardingDate)
			if err != nil {
				return apperror.BadRequest(err.Error())
			}
			fields["technical_onboarding_date"] = date
		}
	}

	affected, err := s.repo.UpdateFields(ctx, id, fields)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperror.Conflict("email already registered")
		}
		return err
	}
	if affected == 0 {
		return apperror.NotFound("collaborator not found")
	}

	if updated, err := s.repo.FindByID(ctx, id); err == nil {
		s.syncIndex(ctx, updated)
	}
	return nil
}

func (s *collaboratorService) Delete(ctx context.Context, id uint) error {
	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperror.NotFound("collaborator not found")
	}

	if s.search != nil {
		if err := s.search.DeleteCollaborator(ctx, id); err != nil {
			log.Printf("failed to remove collaborator %d from search index: %v", id, err)
		}
	}
	return nil
}

func (s *collaboratorService) CompleteOnboarding(ctx context.Context, id uint, onboardingType string) error {
	fields := map[string]interface{}{}

	switch onboardingType {
	case OnboardingTypeWelcome:
		fields["welcome_onboarding_status"] = model.StatusCompleted
	case OnboardingTypeTechnical:
		fields["technical_onboarding_status"] = model.StatusCompleted
		fields["technical_onboarding_date"] = today()
	default:
		return apperror.BadRequest(`invalid onboarding type, use "welcome" or "technical"`)
	}

	affected, err := s.repo.UpdateFields(ctx, id, fields)
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperror.NotFound("collaborator not found")
	}

	if updated, err := s.repo.FindByID(ctx, id); err == nil {
		s.syncIndex(ctx, updated)
	}
	return nil
}

func (s *collaboratorService) syncIndex(ctx context.Context, c *model.Collaborator) {
	if s.search == nil {
		return
	}
	if err := s.search.IndexCollaborator(ctx, c); err != nil {
		log.Printf("failed to index collaborator %d: %v", c.ID, err)
	}
}

// today returns the current date truncated to midnight UTC, the value stamped
// into technical_onboarding_date.
func today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
