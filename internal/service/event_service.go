package service

import (
	"context"
	"log"
	"time"

	"github.com/onboardhq/onboard/internal/dto"
	"github.com/onboardhq/onboard/internal/model"
	"github.com/onboardhq/onboard/internal/repository"
	"github.com/onboardhq/onboard/pkg/apperror"
)

const defaultMaxParticipants = 20

type EventService interface {
	// Create persists the event and then triggers alert fan-out. A
	// notification failure never rolls back or fails the creation.
	Create(ctx context.Context, input dto.CreateEventInput) (*model.CalendarEvent, error)
	List(ctx context.Context, filter dto.EventFilter) ([]model.CalendarEvent, error)
	// Upcoming returns scheduled events starting within the next days.
	// This is a non-critical read path: on a storage error it degrades to
	// an empty list instead of propagating.
	Upcoming(ctx context.Context, days int) []model.CalendarEvent
}

type eventService struct {
	repo   repository.EventRepository
	alerts AlertService
}

func NewEventService(repo repository.EventRepository, alerts AlertService) EventService {
	return &eventService{repo: repo, alerts: alerts}
}

func (s *eventService) Create(ctx context.Context, input dto.CreateEventInput) (*model.CalendarEvent, error) {
	eventType := input.Type
	if eventType == "" {
		eventType = model.EventTypeWorkshop
	}
	if !model.ValidEventType(eventType) {
		return nil, apperror.BadRequest("invalid event type")
	}

	startDate, err := dto.ParseDate(input.StartDate)
	if err != nil {
		return nil, apperror.BadRequest(err.Error())
	}

	endDate := startDate
	if input.EndDate != "" {
		endDate, err = dto.ParseDate(input.EndDate)
		if err != nil {
			return nil, apperror.BadRequest(err.Error())
		}
	}
	if endDate.Before(startDate) {
		return nil, apperror.BadRequest("end date must not be before start date")
	}

	maxParticipants := defaultMaxParticipants
	if input.MaxParticipants != nil && *input.MaxParticipants > 0 {
		maxParticipants = *input.MaxParticipants
	}

	event := &model.CalendarEvent{
		Title:            input.Title,
		Description:      input.Description,
		Type:             eventType,
		StartDate:        startDate,
		EndDate:          endDate,
		Location:         input.Location,
		ResponsibleEmail: input.ResponsibleEmail,
		MaxParticipants:  maxParticipants,
		Status:           model.EventStatusScheduled,
	}

	if err := s.repo.Create(ctx, event); err != nil {
		return nil, err
	}

	// Event persistence and notification are decoupled: the report is
	// logged, and partial failure never reaches the caller as an error.
	report := s.alerts.DispatchEventCreated(ctx, event)
	log.Printf("event %d created, alerts sent to %d/%d recipients",
		event.ID, report.SentCount(), len(report.Results))

	return event, nil
}

func (s *eventService) List(ctx context.Context, filter dto.EventFilter) ([]model.CalendarEvent, error) {
	if filter.Type != "" && !model.ValidEventType(filter.Type) {
		return nil, apperror.BadRequest("invalid event type")
	}
	return s.repo.FindAll(ctx, filter.Year, filter.Type)
}

func (s *eventService) Upcoming(ctx context.Context, days int) []model.CalendarEvent {
	if days <= 0 {
		days = 7
	}

	from := today()
	to := from.AddDate(0, 0, days)

	events, err := s.repo.FindUpcoming(ctx, from, to.Add(24*time.Hour-time.Nanosecond))
	if err != nil {
		log.Printf("upcoming events lookup failed, returning empty list: %v", err)
		return []model.CalendarEvent{}
	}
	if events == nil {
		events = []model.CalendarEvent{}
	}
	return events
}
