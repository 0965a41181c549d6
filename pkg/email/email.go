package email

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"

	"interview-coach-backend/config"
)

// EmailService handles sending emails via SMTP
type EmailService struct {
	host      string
	port      string
	username  string
	password  string
	fromEmail string
	send      func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// VerificationEmailData holds the data for verification code emails
type VerificationEmailData struct {
	Code           string
	ExpiresMinutes int
}

func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{
		host:      cfg.SMTPHost,
		port:      cfg.SMTPPort,
		username:  cfg.SMTPUsername,
		password:  cfg.SMTPPassword,
		fromEmail: cfg.SMTPFromEmail,
		send:      smtp.SendMail,
	}
}

const verificationEmailTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Your verification code</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #1E3A5F; color: white; padding: 20px; text-align: center; }
        .content { padding: 20px; background: #f9f9f9; text-align: center; }
        .code { font-size: 32px; letter-spacing: 8px; font-weight: bold; margin: 20px 0; }
        .footer { text-align: center; padding: 20px; color: #888; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Interview Coach</h1>
        </div>
        <div class="content">
            <p>Use this code to verify your email address:</p>
            <div class="code">{{.Code}}</div>
            <p>The code expires in {{.ExpiresMinutes}} minutes.</p>
        </div>
        <div class="footer">
            <p>If you did not request this code you can ignore this email.</p>
        </div>
    </div>
</body>
</html>`

var verificationTmpl = template.Must(template.New("verification").Parse(verificationEmailTemplate))

// SendVerificationCode emails a one-time code to the given address.
func (s *EmailService) SendVerificationCode(to string, data VerificationEmailData) error {
	var body bytes.Buffer
	if err := verificationTmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to execute email template: %w", err)
	}

	msg := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s",
		s.fromEmail,
		to,
		"Your Interview Coach verification code",
		body.String(),
	))

	auth := smtp.PlainAuth("", s.username, s.password, s.host)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	if err := s.send(addr, auth, s.fromEmail, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// IsConfigured checks if the email service has valid SMTP configuration
func (s *EmailService) IsConfigured() bool {
	return s.host != "" && s.username != "" && s.password != ""
}
