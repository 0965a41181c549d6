package email

import (
	"errors"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interview-coach-backend/config"
)

func TestSendVerificationCode(t *testing.T) {
	svc := NewEmailService(&config.Config{
		SMTPHost:      "smtp.example.org",
		SMTPPort:      "587",
		SMTPUsername:  "user",
		SMTPPassword:  "pass",
		SMTPFromEmail: "noreply@example.org",
	})
	require.True(t, svc.IsConfigured())

	var gotAddr string
	var gotTo []string
	var gotMsg []byte
	svc.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg = addr, to, msg
		assert.Equal(t, "noreply@example.org", from)
		return nil
	}

	require.NoError(t, svc.SendVerificationCode("jane@company.io", VerificationEmailData{Code: "123456", ExpiresMinutes: 10}))
	assert.Equal(t, "smtp.example.org:587", gotAddr)
	assert.Equal(t, []string{"jane@company.io"}, gotTo)
	assert.Contains(t, string(gotMsg), "123456")
	assert.Contains(t, string(gotMsg), "expires in 10 minutes")

	svc.send = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("dial tcp: refused") }
	assert.ErrorContains(t, svc.SendVerificationCode("jane@company.io", VerificationEmailData{Code: "1"}), "failed to send email")
}

func TestIsConfigured(t *testing.T) {
	assert.False(t, NewEmailService(&config.Config{SMTPHost: "smtp.example.org"}).IsConfigured())
}
