// Package mail delivers contact form messages over SMTP.
package mail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"strings"
	"time"
)

// ErrNotConfigured is returned by the disabled mailer.
var ErrNotConfigured = errors.New("mail not configured")

// Message is a plain-text email.
type Message struct {
	To      string
	ReplyTo string
	Subject string
	Body    string
}

// Mailer sends messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Config holds SMTP settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string // defaults to Username
	To       string // defaults to Username
}

// Enabled reports whether enough is set to send mail.
func (c Config) Enabled() bool {
	return c.Host != "" && c.Username != "" && c.Password != ""
}

// New returns an SMTP mailer, or a mailer that always fails with
// ErrNotConfigured when cfg is incomplete.
func New(cfg Config) Mailer {
	if !cfg.Enabled() {
		return disabled{}
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	return &SMTPMailer{cfg: cfg, send: smtp.SendMail, now: time.Now}
}

// Recipient returns where contact messages go: To, falling back to Username.
func (c Config) Recipient() string {
	if c.To != "" {
		return c.To
	}
	return c.Username
}

type disabled struct{}

func (disabled) Send(context.Context, Message) error {
	return ErrNotConfigured
}

// SMTPMailer sends mail with PLAIN auth. STARTTLS is used whenever the
// server offers it.
type SMTPMailer struct {
	cfg  Config
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
	now  func() time.Time
}

// Send delivers msg. smtp.SendMail cannot be cancelled, so when ctx ends
// first Send returns ctx.Err() and the delivery finishes in the background.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	to := msg.To
	if to == "" {
		to = m.cfg.Recipient()
	}
	if _, err := mail.ParseAddress(to); err != nil {
		return fmt.Errorf("smtp recipient %q: %w", to, err)
	}

	data := m.compose(to, msg)
	addr := net.JoinHostPort(m.cfg.Host, fmt.Sprint(m.cfg.Port))
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)

	done := make(chan error, 1)
	go func() {
		done <- m.send(addr, auth, m.cfg.From, []string{to}, data)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// compose renders headers and body with CRLF line endings.
func (m *SMTPMailer) compose(to string, msg Message) []byte {
	var b bytes.Buffer

	header := func(k, v string) {
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(v)
		b.WriteString("\r\n")
	}

	header("From", m.cfg.From)
	header("To", to)
	if addr, err := mail.ParseAddress(sanitizeHeader(msg.ReplyTo)); err == nil {
		header("Reply-To", addr.String())
	}
	header("Subject", mime.QEncoding.Encode("utf-8", sanitizeHeader(msg.Subject)))
	header("Date", m.now().Format(time.RFC1123Z))
	header("MIME-Version", "1.0")
	header("Content-Type", "text/plain; charset=UTF-8")
	header("Content-Transfer-Encoding", "8bit")
	b.WriteString("\r\n")

	body := strings.ReplaceAll(msg.Body, "\r\n", "\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	b.WriteString("\r\n")
	return b.Bytes()
}

// sanitizeHeader collapses line breaks so a value cannot inject headers.
func sanitizeHeader(v string) string {
	return strings.Join(strings.FieldsFunc(v, func(r rune) bool { return r == '\r' || r == '\n' }), " ")
}

// NewContactMessage builds the message for a contact form submission.
func NewContactMessage(name, email, message string) Message {
	return Message{
		ReplyTo: email,
		Subject: "Portfolio Contact: " + name,
		Body:    fmt.Sprintf("From: %s <%s>\n\nMessage:\n%s", name, email, message),
	}
}
