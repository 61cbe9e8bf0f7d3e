package model

import "time"

const (
	EventTypeJourneyToCloud   = "journey_to_cloud"
	EventTypeChapterTechnical = "chapter_technical"
	EventTypeWorkshop         = "workshop"

	EventStatusScheduled = "scheduled"
)

// ValidEventType reports whether t is a known calendar event type.
func ValidEventType(t string) bool {
	return t == EventTypeJourneyToCloud || t == EventTypeChapterTechnical || t == EventTypeWorkshop
}

// CalendarEvent is a technical onboarding session. Events are written once
// with status "scheduled"; the backend exposes no update or delete for them.
type CalendarEvent struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Title            string    `gorm:"size:200;not null" json:"title"`
	Description      string    `gorm:"type:text" json:"description"`
	Type             string    `gorm:"size:40;not null" json:"type"`
	StartDate        time.Time `gorm:"not null;index" json:"start_date"`
	EndDate          time.Time `gorm:"not null" json:"end_date"`
	Location         *string   `gorm:"size:200" json:"location,omitempty"`
	ResponsibleEmail string    `gorm:"size:100;not null" json:"responsible_email"`
	MaxParticipants  int       `gorm:"not null;default:20" json:"max_participants"`
	Status           string    `gorm:"size:20;not null;default:scheduled" json:"status"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
