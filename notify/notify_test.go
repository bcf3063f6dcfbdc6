package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerificationBody(t *testing.T) {
	subject, body := verificationBody("123456")
	assert.Equal(t, "Verify Your Email - SkillHub", subject)
	assert.Contains(t, body, "123456")
	assert.Contains(t, body, "expires in 10 minutes")
}

func TestResetBody(t *testing.T) {
	subject, body := resetBody("https://app.example.com/reset", "tok-abc")
	assert.Equal(t, "Reset Your Password - SkillHub", subject)
	assert.Contains(t, body, "https://app.example.com/reset?token=tok-abc")
	assert.Contains(t, body, "expires in 1 hour")
}

func TestWelcomeBody(t *testing.T) {
	subject, body := welcomeBody()
	assert.Equal(t, "Welcome to SkillHub!", subject)
	assert.Contains(t, body, "successfully created")
}
