package dto

type CollaboratorFilter struct {
	Search string `form:"search"`
	Status string `form:"status"`
}

type CreateCollaboratorInput struct {
	FullName string `json:"full_name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	HireDate string `json:"hire_date" binding:"required"`
}

// UpdateCollaboratorInput applies partial-update semantics: only fields
// present in the payload are written. An empty TechnicalOnboardingDate string
// clears the stored date.
type UpdateCollaboratorInput struct {
	FullName                  *string `json:"full_name"`
	Email                     *string `json:"email"`
	HireDate                  *string `json:"hire_date"`
	WelcomeOnboardingStatus   *string `json:"welcome_onboarding_status"`
	TechnicalOnboardingStatus *string `json:"technical_onboarding_status"`
	TechnicalOnboardingDate   *string `json:"technical_onboarding_date"`
}

// Empty reports whether no recognized field was supplied.
func (in UpdateCollaboratorInput) Empty() bool {
	return in.FullName == nil && in.Email == nil && in.HireDate == nil &&
		in.WelcomeOnboardingStatus == nil && in.TechnicalOnboardingStatus == nil &&
		in.TechnicalOnboardingDate == nil
}

type CompleteOnboardingInput struct {
	Type string `json:"type" binding:"required"`
}
