package dto

type CreateEventInput struct {
	Title            string  `json:"title" binding:"required,max=200"`
	Description      string  `json:"description"`
	Type             string  `json:"type"`
	StartDate        string  `json:"start_date" binding:"required"`
	EndDate          string  `json:"end_date"`
	Location         *string `json:"location"`
	ResponsibleEmail string  `json:"responsible_email" binding:"required,email"`
	MaxParticipants  *int    `json:"max_participants"`
}

type EventFilter struct {
	Year *int   `form:"year"`
	Type string `form:"type"`
}

type UpcomingFilter struct {
	Days int `form:"days"`
}

type TestAlertInput struct {
	Email string `json:"email" binding:"required,email"`
}
