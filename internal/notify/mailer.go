// Package notify delivers outcome emails over SMTP. Delivery is best
// effort: every send reports "sent" or "failed" and never an error, since
// no caller's state transition may depend on the mail run.
package notify

import (
	"fmt"
	"log"

	"gopkg.in/gomail.v2"

	"github.com/NE-Resources-2025/Restful-sample-pms/internal/config"
)

type DeliveryStatus string

const (
	StatusSent   DeliveryStatus = "sent"
	StatusFailed DeliveryStatus = "failed"
	// StatusSkipped marks a notification that was never attempted, such as
	// a rejection with no reason to forward.
	StatusSkipped DeliveryStatus = "skipped"
)

type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPEmail, cfg.SMTPPassword),
		from:   fmt.Sprintf("Parking System <%s>", cfg.SMTPEmail),
	}
}

func (m *Mailer) send(to, subject, plain, html string) DeliveryStatus {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", plain)
	msg.AddAlternative("text/html", html)

	if err := m.dialer.DialAndSend(msg); err != nil {
		log.Printf("failed to send %q email to %s: %v", subject, to, err)
		return StatusFailed
	}
	return StatusSent
}

func (m *Mailer) SendApproval(to, slotNumber string) DeliveryStatus {
	return m.send(to,
		"Parking Slot Request Approved",
		fmt.Sprintf("Your request has been approved. Assigned slot: %s", slotNumber),
		fmt.Sprintf(`<div style="font-family: Arial, sans-serif; padding: 20px; max-width: 600px; margin: auto;">
  <h2 style="color: #333;">Slot Request Approved</h2>
  <p>Your parking slot request has been approved!</p>
  <p><strong>Slot Number:</strong> %s</p>
  <p style="color: #666;">Thank you for using our parking system.</p>
</div>`, slotNumber))
}

func (m *Mailer) SendRejection(to, reason string) DeliveryStatus {
	return m.send(to,
		"Parking Slot Request Rejected",
		fmt.Sprintf("Your request was rejected. Reason: %s", reason),
		fmt.Sprintf(`<div style="font-family: Arial, sans-serif; padding: 20px; max-width: 600px; margin: auto;">
  <h2 style="color: #333;">Slot Request Rejected</h2>
  <p>Your parking slot request has been rejected.</p>
  <p><strong>Reason:</strong> %s</p>
  <p style="color: #666;">Please contact support if you have any questions.</p>
</div>`, reason))
}

func (m *Mailer) SendOTP(to, code string) DeliveryStatus {
	return m.send(to,
		"Your OTP Code",
		fmt.Sprintf("Your OTP code is %s. It expires in 10 minutes.", code),
		fmt.Sprintf(`<div style="font-family: Arial, sans-serif; padding: 20px; max-width: 600px; margin: auto;">
  <h2 style="color: #333;">Your OTP Code</h2>
  <p>Your OTP code is <strong>%s</strong>.</p>
  <p>It expires in 10 minutes.</p>
  <p style="color: #666;">Thank you for using our parking system.</p>
</div>`, code))
}
