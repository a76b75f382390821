// Package mailer delivers transactional mail (currently only the password
// reset OTP).
package mailer

import (
	"fmt"
	"log"
	"net/smtp"
)

type Sender interface {
	Send(to, subject, body string) error
}

// SMTPSender sends mail through a plain-auth SMTP relay.
type SMTPSender struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

func (s *SMTPSender) Send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", s.From, to, subject, body)
	auth := smtp.PlainAuth("", s.Username, s.Password, s.Host)
	return smtp.SendMail(s.Host+":"+s.Port, auth, s.From, []string{to}, []byte(msg))
}

// LogSender is the fallback when SMTP is not configured; it writes the mail to
// the application log instead of delivering it.
type LogSender struct{}

func (LogSender) Send(to, subject, body string) error {
	log.Printf("[MAIL] [INFO] to=%s subject=%q body=%q", to, subject, body)
	return nil
}
