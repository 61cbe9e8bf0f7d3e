package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/onboardhq/onboard/internal/model"
	"github.com/onboardhq/onboard/internal/repository"
	"github.com/onboardhq/onboard/pkg/apperror"
	"github.com/onboardhq/onboard/pkg/mailer"
)

// AlertChannel is the redis pub/sub channel dispatch notices are published
// to; the websocket alert stream subscribes to it.
const AlertChannel = "event_alerts"

// SendResult records the outcome of one recipient's send.
type SendResult struct {
	Recipient string `json:"recipient"`
	Sent      bool   `json:"sent"`
	Error     string `json:"error,omitempty"`
}

// DispatchReport is the structured outcome of one alert fan-out. The caller
// can surface partial failure without the triggering write ever failing.
type DispatchReport struct {
	EventID    uint         `json:"event_id"`
	EventTitle string       `json:"event_title"`
	Results    []SendResult `json:"results"`
}

func (r *DispatchReport) SentCount() int {
	n := 0
	for _, res := range r.Results {
		if res.Sent {
			n++
		}
	}
	return n
}

// DerivedAlert is a display-only alert record computed from an event row;
// alerts are never persisted.
type DerivedAlert struct {
	ID           int        `json:"id"`
	Type         string     `json:"type"`
	SentAt       *time.Time `json:"sent_at,omitempty"`
	ScheduledFor *time.Time `json:"scheduled_for,omitempty"`
	Recipients   []string   `json:"recipients,omitempty"`
	Status       string     `json:"status"`
}

type AlertService interface {
	// DispatchEventCreated resolves the recipient set and sends one alert
	// mail per recipient. Per-recipient failures are isolated; one bad
	// address never blocks the rest.
	DispatchEventCreated(ctx context.Context, event *model.CalendarEvent) *DispatchReport
	SendTestAlert(ctx context.Context, email string) error
	// EventAlerts fabricates the derived alert records for one event.
	EventAlerts(ctx context.Context, eventID uint) (*model.CalendarEvent, []DerivedAlert, error)
	// SendWeeklyDigest mails the upcoming seven-day agenda to active
	// admins and managers. Skipped when the window is empty.
	SendWeeklyDigest(ctx context.Context) error
}

type alertService struct {
	users         repository.UserRepository
	events        repository.EventRepository
	mail          mailer.Mailer
	rdb           *redis.Client
	systemMailbox string
}

func NewAlertService(users repository.UserRepository, events repository.EventRepository, mail mailer.Mailer, rdb *redis.Client, systemMailbox string) AlertService {
	return &alertService{
		users:         users,
		events:        events,
		mail:          mail,
		rdb:           rdb,
		systemMailbox: systemMailbox,
	}
}

// resolveRecipients builds the deduplicated recipient set: the responsible
// party, the system mailbox when configured, then every active admin and
// manager. Comparison is case-insensitive.
func (s *alertService) resolveRecipients(ctx context.Context, event *model.CalendarEvent) []string {
	var recipients []string
	seen := map[string]bool{}

	add := func(email string) {
		email = strings.TrimSpace(email)
		if email == "" {
			return
		}
		key := strings.ToLower(email)
		if seen[key] {
			return
		}
		seen[key] = true
		recipients = append(recipients, email)
	}

	add(event.ResponsibleEmail)
	add(s.systemMailbox)

	staff, err := s.users.ActiveStaffEmails(ctx)
	if err != nil {
		// Partial recipient set is acceptable; the responsible party and
		// system mailbox are already included.
		log.Printf("could not load staff emails for alert fan-out: %v", err)
		return recipients
	}
	for _, email := range staff {
		add(email)
	}

	return recipients
}

func (s *alertService) DispatchEventCreated(ctx context.Context, event *model.CalendarEvent) *DispatchReport {
	report := &DispatchReport{EventID: event.ID, EventTitle: event.Title}

	if s.mail == nil {
		log.Printf("mail relay not configured, skipping alerts for event %d", event.ID)
		return report
	}

	body, err := mailer.RenderEventAlert(eventDetails(event))
	if err != nil {
		log.Printf("failed to render alert body for event %d: %v", event.ID, err)
		return report
	}

	recipients := s.resolveRecipients(ctx, event)
	subject := fmt.Sprintf("New Technical Event: %s", event.Title)

	// Sends are independent outbound I/O; run them concurrently with
	// per-recipient failure isolation.
	results := make([]SendResult, len(recipients))
	var wg sync.WaitGroup
	for i, recipient := range recipients {
		wg.Add(1)
		go func(i int, recipient string) {
			defer wg.Done()
			if err := s.mail.Send(recipient, subject, body); err != nil {
				log.Printf("alert send failed for %s: %v", recipient, err)
				results[i] = SendResult{Recipient: recipient, Error: err.Error()}
				return
			}
			results[i] = SendResult{Recipient: recipient, Sent: true}
		}(i, recipient)
	}
	wg.Wait()

	report.Results = results
	s.publish(ctx, report)
	return report
}

func (s *alertService) publish(ctx context.Context, report *DispatchReport) {
	if s.rdb == nil {
		return
	}
	payload, err := json.Marshal(report)
	if err != nil {
		return
	}
	if err := s.rdb.Publish(ctx, AlertChannel, payload).Err(); err != nil {
		log.Printf("failed to publish dispatch report: %v", err)
	}
}

func (s *alertService) SendTestAlert(ctx context.Context, email string) error {
	if s.mail == nil {
		return apperror.New(0, "mail relay not configured", apperror.ErrUnavailable)
	}

	body, err := mailer.RenderTestAlert()
	if err != nil {
		return err
	}

	return s.mail.Send(email, "Alert System Test - Onboarding System", body)
}

func (s *alertService) EventAlerts(ctx context.Context, eventID uint) (*model.CalendarEvent, []DerivedAlert, error) {
	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperror.NotFound("event not found")
		}
		return nil, nil, err
	}

	createdAt := event.CreatedAt
	reminderAt := event.StartDate.AddDate(0, 0, -7)

	alerts := []DerivedAlert{
		{
			ID:         1,
			Type:       "creation",
			SentAt:     &createdAt,
			Recipients: []string{event.ResponsibleEmail},
			Status:     "sent",
		},
		{
			ID:           2,
			Type:         "weekly_reminder",
			ScheduledFor: &reminderAt,
			Status:       "scheduled",
		},
	}

	return event, alerts, nil
}

func (s *alertService) SendWeeklyDigest(ctx context.Context) error {
	if s.mail == nil {
		return nil
	}

	from := today()
	to := from.AddDate(0, 0, 7)
	events, err := s.events.FindUpcoming(ctx, from, to)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		log.Println("weekly digest: no upcoming events, skipping")
		return nil
	}

	details := make([]mailer.EventDetails, len(events))
	for i := range events {
		details[i] = eventDetails(&events[i])
	}

	body, err := mailer.RenderWeeklyDigest(details)
	if err != nil {
		return err
	}

	staff, err := s.users.ActiveStaffEmails(ctx)
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("Upcoming Technical Events (%d this week)", len(events))
	for _, email := range staff {
		if err := s.mail.Send(email, subject, body); err != nil {
			log.Printf("weekly digest send failed for %s: %v", email, err)
		}
	}
	return nil
}

func eventDetails(event *model.CalendarEvent) mailer.EventDetails {
	location := ""
	if event.Location != nil {
		location = *event.Location
	}
	return mailer.EventDetails{
		Title:            event.Title,
		Description:      event.Description,
		Type:             event.Type,
		StartDate:        event.StartDate,
		EndDate:          event.EndDate,
		Location:         location,
		ResponsibleEmail: event.ResponsibleEmail,
		MaxParticipants:  event.MaxParticipants,
	}
}
