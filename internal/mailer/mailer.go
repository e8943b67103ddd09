// Package mailer delivers confirmation codes to users. The SMTP mailer is
// used in production; LogMailer stands in when SMTP is not configured so
// local setups and tests still surface the code.
package mailer

import (
	"fmt"      // Message formatting
	"net/smtp" // SMTP client

	"github.com/sirupsen/logrus" // Logging library
)

// Mailer sends a plain-text message to a single recipient
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer sends mail through a configured SMTP relay
type SMTPMailer struct {
	Addr     string // Relay address, host:port
	From     string // Sender address
	Username string // Auth username, empty to skip auth
	Password string // Auth password
	Host     string // Relay host for PLAIN auth
}

// Send delivers a message through the SMTP relay
func (m *SMTPMailer) Send(to, subject, body string) error {
	msg := []byte("From: " + m.From + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"\r\n" +
		body + "\r\n")
	var auth smtp.Auth // No auth unless credentials are set
	if m.Username != "" {
		auth = smtp.PlainAuth("", m.Username, m.Password, m.Host)
	}
	if err := smtp.SendMail(m.Addr, auth, m.From, []string{to}, msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

// LogMailer writes messages to the log instead of sending them
type LogMailer struct{}

// Send logs the message instead of delivering it
func (m *LogMailer) Send(to, subject, body string) error {
	logrus.WithFields(logrus.Fields{
		"to":      to,      // Recipient address
		"subject": subject, // Message subject
		"body":    body,    // Message body
	}).Info("Mail delivery skipped (SMTP not configured)")
	return nil
}
