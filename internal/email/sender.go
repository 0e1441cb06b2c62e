package email

import (
	"context"
	"fmt"
	"log"
	"net/smtp"
	"regexp"
	"strings"
	"time"

	"github.com/AndreiCalugar/FertiHub/internal/config"
)

// Kind labels what a message is about. The Redis mock sender keys stored
// messages by kind so integration tests can fetch the exact email they expect.
type Kind string

const (
	KindInquiryRequest    Kind = "inquiry_request"
	KindFollowUp          Kind = "follow_up"
	KindQuoteReceived     Kind = "quote_received"
	KindAllQuotesReceived Kind = "all_quotes_received"
	KindDeadlineReminder  Kind = "deadline_reminder"
)

// Message is one outbound email, already rendered. Text is optional; senders
// that need a plain-text part derive one from the HTML when it is empty.
type Message struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	Text    string   `json:"text,omitempty"`
	Kind    Kind     `json:"kind"`
}

// Sender defines the interface for sending emails.
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

var htmlTagRe = regexp.MustCompile(`<[^>]*>`)

// StripHTML produces a crude plain-text rendering of an HTML body, used as
// the text/plain fallback part.
func StripHTML(html string) string {
	text := htmlTagRe.ReplaceAllString(html, " ")
	return strings.Join(strings.Fields(text), " ")
}

// SMTPSender implements the Sender interface using Go's net/smtp package.
// It is the fallback transport for deployments without a SendGrid key.
type SMTPSender struct {
	cfg  *config.Config
	auth smtp.Auth
	addr string
}

// NewSMTPSender creates a new SMTPSender, or a logging sender when no SMTP
// host is configured.
func NewSMTPSender(cfg *config.Config) Sender {
	if cfg.SmtpHost == "" {
		log.Println("SMTP host not configured, using logging email sender.")
		return &LoggingSender{cfg: cfg}
	}

	auth := smtp.PlainAuth(
		"", // identity
		cfg.SmtpUsername,
		cfg.SmtpPassword,
		cfg.SmtpHost,
	)
	addr := fmt.Sprintf("%s:%d", cfg.SmtpHost, cfg.SmtpPort)

	return &SMTPSender{
		cfg:  cfg,
		auth: auth,
		addr: addr,
	}
}

// Send builds a MIME message around the rendered HTML body and delivers it
// over SMTP.
func (s *SMTPSender) Send(ctx context.Context, msg *Message) error {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(msg.To, ", ")))
	sb.WriteString(fmt.Sprintf("From: %s\r\n", s.cfg.EmailFromAddress))
	sb.WriteString(fmt.Sprintf("Subject: %s\r\n", msg.Subject))
	sb.WriteString("Date: " + time.Now().Format(time.RFC1123Z) + "\r\n")
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(msg.HTML)
	sb.WriteString("\r\n")

	err := smtp.SendMail(s.addr, s.auth, s.cfg.EmailFromAddress, msg.To, []byte(sb.String()))
	if err != nil {
		log.Printf("Failed to send email via SMTP to %v: %v", msg.To, err)
		return fmt.Errorf("smtp error: %w", err)
	}
	log.Printf("Email sent successfully via SMTP to %v (Subject: %s)", msg.To, msg.Subject)
	return nil
}

// LoggingSender is a mock implementation that just logs email details.
// Useful for development or when no transport is configured.
type LoggingSender struct {
	cfg *config.Config
}

// Send logs the email details instead of sending.
func (s *LoggingSender) Send(ctx context.Context, msg *Message) error {
	log.Printf("--- Sending Email (Logged) ---")
	log.Printf("To: %v", msg.To)
	log.Printf("From: %s", s.cfg.EmailFromAddress)
	log.Printf("Subject: %s", msg.Subject)
	log.Printf("Kind: %s", msg.Kind)
	log.Println("--- Body ---")
	log.Println(msg.HTML)
	log.Println("--- End Email ---")
	return nil
}
