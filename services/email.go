package services

import "log"

// EmailSender delivers transactional mail. Implementations must be safe
// for concurrent use.
type EmailSender interface {
	Send(to, subject, textBody, htmlBody string) error
}

// ConsoleEmailSender logs messages instead of sending them; used in
// development and tests.
type ConsoleEmailSender struct{}

func NewConsoleEmailSender() *ConsoleEmailSender {
	return &ConsoleEmailSender{}
}

func (s *ConsoleEmailSender) Send(to, subject, textBody, _ string) error {
	log.Printf("email to %s: %s\n%s", to, subject, textBody)
	return nil
}
