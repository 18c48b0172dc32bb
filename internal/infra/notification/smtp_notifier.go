// Package notification implements the outgoing mail transport.
package notification

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"caseflow/config"
	"caseflow/internal/domain/service"

	"github.com/pkg/errors"
)

type smtpNotifier struct {
	cfg *config.SMTPConfig
}

// NewSMTPNotifier creates a Notifier that delivers over plain SMTP with
// AUTH PLAIN. It fails fast when the transport is not configured.
func NewSMTPNotifier(cfg *config.Config) (service.Notifier, error) {
	if cfg.SMTP == nil || cfg.SMTP.Host == "" {
		return nil, errors.New("smtp transport is not configured")
	}

	return &smtpNotifier{cfg: cfg.SMTP}, nil
}

func (s *smtpNotifier) Send(_ context.Context, n *service.Notification) error {
	subject, body := render(s.cfg.CompanyName, n)

	msg := buildMessage(s.cfg.SenderEmail, n.Recipient, subject, body)
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.SenderEmail, s.cfg.SenderPassword, s.cfg.Host)

	if err := smtp.SendMail(addr, auth, s.cfg.SenderEmail, []string{n.Recipient}, msg); err != nil {
		return errors.Wrapf(err, "failed to send %s mail", n.Kind)
	}

	return nil
}

func buildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)

	return []byte(b.String())
}

// render maps a notification kind to its subject line and plain-text body.
func render(company string, n *service.Notification) (subject, body string) {
	p := n.Payload

	switch n.Kind {
	case service.KindVerificationCode:
		subject = fmt.Sprintf("%s - Your verification code", company)
		body = fmt.Sprintf(
			"Your verification code is: %s\n\nIt expires in %s minutes. If you did not request this code, ignore this message.\n",
			p["code"], p["expiry_minutes"])
	case service.KindCaseSubmitted:
		subject = fmt.Sprintf("%s - Case forwarded (task %s)", company, p["task_number"])
		body = fmt.Sprintf(
			"Your support case has been forwarded to %s.\n\nTask number: %s\n\nWe will notify you as soon as a reply arrives.\n",
			p["manufacturer"], p["task_number"])
	case service.KindReminder:
		subject = fmt.Sprintf("%s - Reminder for task %s", company, p["task_number"])
		body = fmt.Sprintf(
			"This is a reminder that task %s has been awaiting a reply for more than %s business hours.\n",
			p["task_number"], p["threshold_hours"])
	case service.KindReplyAvailable:
		subject = fmt.Sprintf("%s - Reply to your case", company)
		body = fmt.Sprintf(
			"A reply to your support case (task %s) is available:\n\n%s\n",
			p["task_number"], p["reply"])
	case service.KindApprovalRequested:
		subject = fmt.Sprintf("%s - Reply awaiting approval (task %s)", company, p["task_number"])
		body = fmt.Sprintf(
			"A manufacturer reply for task %s needs manual review before release.\n\nProposed reply:\n%s\n",
			p["task_number"], p["reply"])
	default:
		subject = fmt.Sprintf("%s - Notification", company)
		body = "You have a new notification.\n"
	}

	return subject, body
}
