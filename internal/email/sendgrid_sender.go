package email

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/AndreiCalugar/FertiHub/internal/config"
)

const sendGridSendURL = "https://api.sendgrid.com/v3/mail/send"

// SendGridSender implements the Sender interface against the SendGrid v3 API.
// It is the primary production transport.
type SendGridSender struct {
	cfg     *config.Config
	timeout time.Duration
}

// NewSendGridSender creates a new SendGridSender.
func NewSendGridSender(cfg *config.Config) Sender {
	return &SendGridSender{
		cfg:     cfg,
		timeout: 10 * time.Second,
	}
}

// Send delivers the message via SendGrid. The helpers/mail builder assembles
// the v3 payload; the request itself is issued with the caller's context so a
// cancelled pass does not leave an orphaned HTTP call.
func (s *SendGridSender) Send(ctx context.Context, msg *Message) error {
	from := mail.NewEmail(s.cfg.EmailFromName, s.cfg.EmailFromAddress)

	message := mail.NewV3Mail()
	message.SetFrom(from)
	message.Subject = msg.Subject

	p := mail.NewPersonalization()
	for _, addr := range msg.To {
		p.AddTos(mail.NewEmail("", addr))
	}
	message.AddPersonalizations(p)

	text := msg.Text
	if text == "" {
		text = StripHTML(msg.HTML)
	}
	if text != "" {
		message.AddContent(mail.NewContent("text/plain", text))
	}
	if msg.HTML != "" {
		message.AddContent(mail.NewContent("text/html", msg.HTML))
	}

	body := mail.GetRequestBody(message)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sendGridSendURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build sendgrid request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.SendGridAPIKey)
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: s.timeout}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("sendgrid send error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("sendgrid API error: %d %s", resp.StatusCode, string(respBody))
	}

	log.Printf("Email sent via SendGrid to %v (Subject: %s)", msg.To, msg.Subject)
	return nil
}
