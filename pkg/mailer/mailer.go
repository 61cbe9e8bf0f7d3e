package mailer

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/gomail.v2"
)

// Mailer sends a single HTML message to one recipient. Implementations must
// be safe for concurrent use; alert fan-out sends from multiple goroutines.
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

type smtpMailer struct {
	dialer  *gomail.Dialer
	from    string
	timeout time.Duration
}

// NewSMTPMailer builds a mailer from SMTP_* environment variables. Every send
// is bounded by timeout so a wedged relay cannot stall alert fan-out.
// Returns an error when the relay is not configured; callers treat a missing
// relay as "alerts disabled", never as a startup failure.
func NewSMTPMailer(timeout time.Duration) (Mailer, error) {
	host := os.Getenv("SMTP_HOST")
	user := os.Getenv("SMTP_USER")
	pass := os.Getenv("SMTP_PASS")
	if host == "" || user == "" {
		return nil, fmt.Errorf("smtp relay not configured")
	}

	port := 587
	if portStr := os.Getenv("SMTP_PORT"); portStr != "" {
		if p, err := strconv.Atoi(portStr); err == nil {
			port = p
		}
	}

	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = user
	}

	return &smtpMailer{
		dialer:  gomail.NewDialer(host, port, user, pass),
		from:    from,
		timeout: timeout,
	}, nil
}

func (m *smtpMailer) Send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.from, "Onboarding System")
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", HTMLToText(htmlBody))
	msg.AddAlternative("text/html", htmlBody)

	if err := withTimeout(m.timeout, func() error { return m.dialer.DialAndSend(msg) }); err != nil {
		return fmt.Errorf("send to %s: %w", to, err)
	}

	log.Printf("mail sent to %s: %s", to, subject)
	return nil
}

// withTimeout bounds a blocking call. The gomail dialer exposes no deadline
// of its own, so the call runs in its own goroutine and is abandoned when the
// window elapses; the underlying TCP connection errors out on its own later.
func withTimeout(d time.Duration, fn func() error) error {
	if d <= 0 {
		return fn()
	}

	errc := make(chan error, 1)
	go func() { errc <- fn() }()

	select {
	case err := <-errc:
		return err
	case <-time.After(d):
		return fmt.Errorf("timed out after %s", d)
	}
}

// HTMLToText derives the plain-text alternative from the HTML body.
func HTMLToText(html string) string {
	var b strings.Builder
	inTag := false
	for _, r := range html {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
			b.WriteRune('\n')
		case !inTag:
			b.WriteRune(r)
		}
	}

	text := b.String()
	replacer := strings.NewReplacer(
		"&nbsp;", " ",
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", "\"",
		"&#39;", "'",
	)
	text = replacer.Replace(text)

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return strings.Join(lines, "\n")
}
