package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/onboardhq/onboard/internal/model"
)

type EventRepository interface {
	Create(ctx context.Context, event *model.CalendarEvent) error
	FindByID(ctx context.Context, id uint) (*model.CalendarEvent, error)
	FindAll(ctx context.Context, year *int, eventType string) ([]model.CalendarEvent, error)
	// FindUpcoming lists scheduled events with start_date in [from, to],
	// ascending.
	FindUpcoming(ctx context.Context, from, to time.Time) ([]model.CalendarEvent, error)
}

type eventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Create(ctx context.Context, event *model.CalendarEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *eventRepository) FindByID(ctx context.Context, id uint) (*model.CalendarEvent, error) {
	var event model.CalendarEvent
	if err := r.db.WithContext(ctx).First(&event, id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) FindAll(ctx context.Context, year *int, eventType string) ([]model.CalendarEvent, error) {
	query := r.db.WithContext(ctx).Model(&model.CalendarEvent{})

	if year != nil {
		start := time.Date(*year, time.January, 1, 0, 0, 0, 0, time.UTC)
		query = query.Where("start_date >= ? AND start_date < ?", start, start.AddDate(1, 0, 0))
	}
	if eventType != "" {
		query = query.Where("type = ?", eventType)
	}

	var events []model.CalendarEvent
	if err := query.Order("start_date ASC").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *eventRepository) FindUpcoming(ctx context.Context, from, to time.Time) ([]model.CalendarEvent, error) {
	var events []model.CalendarEvent
	if err := r.db.WithContext(ctx).
		Where("start_date BETWEEN ? AND ? AND status = ?", from, to, model.EventStatusScheduled).
		Order("start_date ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
