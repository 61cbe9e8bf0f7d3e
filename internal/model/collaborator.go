package model

import "time"

const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// ValidOnboardingStatus reports whether s is one of the three track states.
func ValidOnboardingStatus(s string) bool {
	return s == StatusPending || s == StatusInProgress || s == StatusCompleted
}

// Collaborator is a tracked new hire. The welcome and technical onboarding
// tracks are independent; neither constrains the other.
type Collaborator struct {
	ID                        uint       `gorm:"primaryKey" json:"id"`
	FullName                  string     `gorm:"size:100;not null" json:"full_name"`
	Email                     string     `gorm:"size:100;uniqueIndex;not null" json:"email"`
	HireDate                  time.Time  `gorm:"not null" json:"hire_date"`
	WelcomeOnboardingStatus   string     `gorm:"size:20;not null;default:pending" json:"welcome_onboarding_status"`
	TechnicalOnboardingStatus string     `gorm:"size:20;not null;default:pending" json:"technical_onboarding_status"`
	TechnicalOnboardingDate   *time.Time `json:"technical_onboarding_date,omitempty"`
	CreatedAt                 time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt                 time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
