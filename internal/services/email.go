package services

import (
	"fmt"
	"net/smtp"

	"github.com/andrej/teamup-api/internal/config"
)

type EmailService struct {
	cfg config.SMTPConfig
}

func NewEmailService(cfg config.SMTPConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

func (s *EmailService) IsConfigured() bool {
	return s.cfg.Host != "" && s.cfg.Username != "" && s.cfg.Password != "" && s.cfg.From != ""
}

func (s *EmailService) Send(to, subject, body string) error {
	if !s.IsConfigured() {
		return nil
	}

	addr := fmt.Sprintf("%s:%s", s.cfg.Host, s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		s.cfg.From, to, subject, body)

	return smtp.SendMail(addr, auth, s.cfg.From, []string{to}, []byte(msg))
}

func (s *EmailService) SendJoinRequestReceived(to, teamName, requesterName string) error {
	subject := fmt.Sprintf("New join request for %s", teamName)
	body := fmt.Sprintf(`
		<html>
		<body>
			<h2>Join Request</h2>
			<p>Hi,</p>
			<p><strong>%s</strong> has asked to join your team <strong>%s</strong>.</p>
			<p>Open your pending requests to accept or decline.</p>
		</body>
		</html>
	`, requesterName, teamName)

	return s.Send(to, subject, body)
}

func (s *EmailService) SendRequestAccepted(to, teamName string) error {
	subject := fmt.Sprintf("You're in: %s accepted your request", teamName)
	body := fmt.Sprintf(`
		<html>
		<body>
			<h2>Request Accepted</h2>
			<p>Hi,</p>
			<p>Your request to join <strong>%s</strong> has been accepted. Welcome aboard!</p>
		</body>
		</html>
	`, teamName)

	return s.Send(to, subject, body)
}

func (s *EmailService) SendRequestDeclined(to, teamName string) error {
	subject := fmt.Sprintf("Update on your request to join %s", teamName)
	body := fmt.Sprintf(`
		<html>
		<body>
			<h2>Request Declined</h2>
			<p>Hi,</p>
			<p>Your request to join <strong>%s</strong> was declined. You can request to join another team for the event.</p>
		</body>
		</html>
	`, teamName)

	return s.Send(to, subject, body)
}
