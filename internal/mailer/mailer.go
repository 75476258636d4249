// Package mailer sends transactional e-mail: the restaurant
// approval/decline notice and password-reset links. Handlers depend on
// the interface rather than on a concrete SMTP client.
package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// Mailer delivers the platform's transactional mail.
type Mailer interface {
	// SendApprovalDecision notifies a restaurant that its registration was
	// accepted or declined. tempPassword is only set on acceptance and
	// contains the generated login password.
	SendApprovalDecision(ctx context.Context, to, restaurantName, status, tempPassword string) error
	// SendPasswordReset mails a reset link to a user or restaurant
	// account. The link expires an hour after it is issued.
	SendPasswordReset(ctx context.Context, to, name, resetURL string) error
}

// SMTPMailer sends mail over plain SMTP with AUTH PLAIN, the way a Gmail
// app-password setup works.
type SMTPMailer struct {
	Host string // e.g. smtp.gmail.com
	Port string // e.g. 587
	User string // sender address, also used as From
	Pass string // app password
}

// NewSMTP returns a mailer for the given SMTP account.
func NewSMTP(host, port, user, pass string) *SMTPMailer {
	return &SMTPMailer{Host: host, Port: port, User: user, Pass: pass}
}

// SendApprovalDecision implements Mailer.
func (m *SMTPMailer) SendApprovalDecision(ctx context.Context, to, restaurantName, status, tempPassword string) error {
	subject := fmt.Sprintf("Restaurant Status Update - %s", restaurantName)
	if status == "accepted" {
		subject = fmt.Sprintf("Restaurant Approval - %s", restaurantName)
	}
	body := m.body(restaurantName, status, tempPassword)

	msg := strings.Join([]string{
		"From: " + m.User,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"utf-8\"",
		"",
		body,
	}, "\r\n")

	// net/smtp has no context support; honor cancellation before dialing.
	if err := ctx.Err(); err != nil {
		return err
	}

	addr := m.Host + ":" + m.Port
	auth := smtp.PlainAuth("", m.User, m.Pass, m.Host)
	if err := smtp.SendMail(addr, auth, m.User, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send approval mail: %w", err)
	}
	return nil
}

// SendPasswordReset implements Mailer.
func (m *SMTPMailer) SendPasswordReset(ctx context.Context, to, name, resetURL string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\r\n\r\n", name)
	b.WriteString("You requested a password reset. Click the link below to set a new password:\r\n\r\n")
	b.WriteString(resetURL + "\r\n\r\n")
	b.WriteString("If you did not request this, ignore this e-mail. The link expires in 1 hour.\r\n\r\n")
	b.WriteString("Best regards,\r\nThe Dinemate Team\r\n")

	msg := strings.Join([]string{
		"From: " + m.User,
		"To: " + to,
		"Subject: Password Reset",
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"utf-8\"",
		"",
		b.String(),
	}, "\r\n")

	if err := ctx.Err(); err != nil {
		return err
	}

	addr := m.Host + ":" + m.Port
	auth := smtp.PlainAuth("", m.User, m.Pass, m.Host)
	if err := smtp.SendMail(addr, auth, m.User, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send reset mail: %w", err)
	}
	return nil
}

func (m *SMTPMailer) body(restaurantName, status, tempPassword string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s Team,\r\n\r\n", restaurantName)
	if status == "accepted" {
		b.WriteString("Congratulations! Your restaurant has been approved to join the Dinemate reservation platform.\r\n\r\n")
		b.WriteString("You can now log in to your restaurant dashboard with your registered e-mail and the temporary password below. Please change it after your first login.\r\n\r\n")
		fmt.Fprintf(&b, "Temporary password: %s\r\n\r\n", tempPassword)
	} else {
		b.WriteString("After reviewing your registration we are unable to approve your restaurant at this time. You may reply to this e-mail for more information or submit a new application.\r\n\r\n")
	}
	b.WriteString("Best regards,\r\nThe Dinemate Team\r\n")
	return b.String()
}
