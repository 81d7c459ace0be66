package services

import (
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridEmailSender delivers mail through the SendGrid v3 API.
type SendGridEmailSender struct {
	client *sendgrid.Client
	from   *sgmail.Email
}

func NewSendGridEmailSender(apiKey, appName, fromEmail string) *SendGridEmailSender {
	return &SendGridEmailSender{
		client: sendgrid.NewSendClient(apiKey),
		from:   sgmail.NewEmail(appName, fromEmail),
	}
}

func (s *SendGridEmailSender) Send(to, subject, textBody, htmlBody string) error {
	if htmlBody == "" {
		htmlBody = "<pre>" + textBody + "</pre>"
	}
	message := sgmail.NewSingleEmail(s.from, subject, sgmail.NewEmail("", to), textBody, htmlBody)
	resp, err := s.client.Send(message)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid returned %d: %s", resp.StatusCode, truncate(resp.Body, 200))
	}
	return nil
}
