package mailer

import (
	"bytes"
	"html/template"
	"time"

	"github.com/microcosm-cc/bluemonday"
)

// EventDetails carries the fields interpolated into alert mail bodies.
// User-entered text is sanitized before rendering.
type EventDetails struct {
	Title            string
	Description      string
	Type             string
	StartDate        time.Time
	EndDate          time.Time
	Location         string
	ResponsibleEmail string
	MaxParticipants  int
}

var sanitizer = bluemonday.StrictPolicy()

var eventAlertTmpl = template.Must(template.New("event_alert").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>New Technical Event</title>
<style>
body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
.container { max-width: 600px; margin: 0 auto; padding: 20px; }
.header { background: #3498db; color: white; padding: 20px; border-radius: 8px 8px 0 0; }
.content { background: #f8f9fa; padding: 20px; border-radius: 0 0 8px 8px; }
.event-details { background: white; padding: 15px; border-left: 4px solid #3498db; margin: 15px 0; }
.footer { margin-top: 20px; padding-top: 20px; border-top: 1px solid #eee; font-size: 12px; color: #666; }
</style>
</head>
<body>
<div class="container">
  <div class="header"><h2>New Technical Event Created</h2></div>
  <div class="content">
    <p>A new technical event has been added to the onboarding calendar:</p>
    <div class="event-details">
      <h3>{{.Title}}</h3>
      <p><strong>Type:</strong> {{.TypeLabel}}</p>
      <p><strong>Start date:</strong> {{.Start}}</p>
      <p><strong>End date:</strong> {{.End}}</p>
      <p><strong>Duration:</strong> {{.DurationDays}} day(s)</p>
      <p><strong>Responsible:</strong> {{.Responsible}}</p>
      {{if .Description}}<p><strong>Description:</strong> {{.Description}}</p>{{end}}
      {{if .Location}}<p><strong>Location:</strong> {{.Location}}</p>{{end}}
      {{if .MaxParticipants}}<p><strong>Max participants:</strong> {{.MaxParticipants}}</p>{{end}}
    </div>
    <p>The event is scheduled in the system calendar and will appear on the alerts page.</p>
    <div class="footer">
      <p>This is an automated alert from the Onboarding Management System.</p>
      <p>&copy; {{.Year}} Onboarding System</p>
    </div>
  </div>
</div>
</body>
</html>`))

var testAlertTmpl = template.Must(template.New("test_alert").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>Alert System Test</title>
<style>
body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; background-color: #f4f4f4; padding: 20px; }
.container { max-width: 600px; margin: 0 auto; background: white; padding: 30px; border-radius: 10px; }
.footer { margin-top: 30px; padding-top: 20px; border-top: 1px solid #eee; color: #666; font-size: 12px; text-align: center; }
</style>
</head>
<body>
<div class="container">
  <h1>Alert System Test</h1>
  <p>This is a test message verifying that the alert system is working.</p>
  <p><strong>Sent at:</strong> {{.SentAt}}</p>
  <p>Alerts are delivered automatically whenever a new calendar event is created.</p>
  <div class="footer"><p>&copy; {{.Year}} Onboarding System</p></div>
</div>
</body>
</html>`))

var weeklyDigestTmpl = template.Must(template.New("weekly_digest").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>Upcoming Technical Events</title>
<style>
body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
.container { max-width: 600px; margin: 0 auto; padding: 20px; }
.header { background: #3498db; color: white; padding: 20px; border-radius: 8px 8px 0 0; }
.content { background: #f8f9fa; padding: 20px; border-radius: 0 0 8px 8px; }
.event { background: white; padding: 12px; border-left: 4px solid #3498db; margin: 10px 0; }
.footer { margin-top: 20px; padding-top: 20px; border-top: 1px solid #eee; font-size: 12px; color: #666; }
</style>
</head>
<body>
<div class="container">
  <div class="header"><h2>Upcoming Technical Events</h2></div>
  <div class="content">
    <p>These events start within the next seven days:</p>
    {{range .Events}}
    <div class="event">
      <h3>{{.Title}}</h3>
      <p><strong>{{.TypeLabel}}</strong> &mdash; {{.Start}} to {{.End}}</p>
      <p>Responsible: {{.Responsible}}</p>
      {{if .Location}}<p>Location: {{.Location}}</p>{{end}}
    </div>
    {{end}}
    <div class="footer">
      <p>Weekly reminder from the Onboarding Management System.</p>
      <p>&copy; {{.Year}} Onboarding System</p>
    </div>
  </div>
</div>
</body>
</html>`))

type eventAlertData struct {
	Title           string
	TypeLabel       string
	Start           string
	End             string
	DurationDays    int
	Responsible     string
	Description     string
	Location        string
	MaxParticipants int
	Year            int
}

func typeLabel(t string) string {
	switch t {
	case "journey_to_cloud":
		return "Journey to Cloud"
	case "chapter_technical":
		return "Technical Chapter"
	default:
		return "Workshop"
	}
}

// RenderEventAlert builds the HTML body announcing a newly created event.
func RenderEventAlert(ev EventDetails) (string, error) {
	duration := int(ev.EndDate.Sub(ev.StartDate).Hours()/24) + 1
	if duration < 1 {
		duration = 1
	}

	data := eventAlertData{
		Title:           sanitizer.Sanitize(ev.Title),
		TypeLabel:       typeLabel(ev.Type),
		Start:           ev.StartDate.Format("02 Jan 2006"),
		End:             ev.EndDate.Format("02 Jan 2006"),
		DurationDays:    duration,
		Responsible:     sanitizer.Sanitize(ev.ResponsibleEmail),
		Description:     sanitizer.Sanitize(ev.Description),
		Location:        sanitizer.Sanitize(ev.Location),
		MaxParticipants: ev.MaxParticipants,
		Year:            time.Now().Year(),
	}

	var buf bytes.Buffer
	if err := eventAlertTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderWeeklyDigest builds the HTML body listing the coming week's events.
func RenderWeeklyDigest(events []EventDetails) (string, error) {
	type digestEvent struct {
		Title       string
		TypeLabel   string
		Start       string
		End         string
		Responsible string
		Location    string
	}

	data := struct {
		Events []digestEvent
		Year   int
	}{Year: time.Now().Year()}

	for _, ev := range events {
		data.Events = append(data.Events, digestEvent{
			Title:       sanitizer.Sanitize(ev.Title),
			TypeLabel:   typeLabel(ev.Type),
			Start:       ev.StartDate.Format("02 Jan 2006"),
			End:         ev.EndDate.Format("02 Jan 2006"),
			Responsible: sanitizer.Sanitize(ev.ResponsibleEmail),
			Location:    sanitizer.Sanitize(ev.Location),
		})
	}

	var buf bytes.Buffer
	if err := weeklyDigestTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderTestAlert builds the HTML body for the diagnostic test send.
func RenderTestAlert() (string, error) {
	var buf bytes.Buffer
	err := testAlertTmpl.Execute(&buf, struct {
		SentAt string
		Year   int
	}{
		SentAt: time.Now().Format("02 Jan 2006 15:04:05"),
		Year:   time.Now().Year(),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
