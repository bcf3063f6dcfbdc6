package identity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/skillhub/identity"
)

func TestValidatePasswordStrength(t *testing.T) {
	cases := []struct {
		name     string
		password string
		ok       bool
	}{
		{"valid", "P@ssw0rd1", true},
		{"too short", "P@s1a", false},
		{"no uppercase", "p@ssw0rd1", false},
		{"no lowercase", "P@SSW0RD1", false},
		{"no digit", "P@sswordx", false},
		{"no special", "Passw0rd1", false},
		{"empty", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := identity.ValidatePasswordStrength(tc.password)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestRegisterRequestValidate(t *testing.T) {
	valid := identity.RegisterRequest{Email: "user@example.com", Password: "P@ssw0rd1"}
	assert.NoError(t, valid.Validate())

	withRole := identity.RegisterRequest{Email: "user@example.com", Password: "P@ssw0rd1", Role: "ADMIN"}
	assert.NoError(t, withRole.Validate())

	badRole := identity.RegisterRequest{Email: "user@example.com", Password: "P@ssw0rd1", Role: "superuser"}
	assert.Error(t, badRole.Validate())

	badEmail := identity.RegisterRequest{Email: "not-an-email", Password: "P@ssw0rd1"}
	assert.Error(t, badEmail.Validate())

	weakPassword := identity.RegisterRequest{Email: "user@example.com", Password: "weak"}
	err := weakPassword.Validate()
	assert.Error(t, err)

	fields := identity.FieldErrors(err)
	assert.Contains(t, fields, "password")
	assert.NotContains(t, fields, "email")
}

func TestVerifyEmailRequestValidate(t *testing.T) {
	valid := identity.VerifyEmailRequest{Email: "user@example.com", OTP: "123456"}
	assert.NoError(t, valid.Validate())

	short := identity.VerifyEmailRequest{Email: "user@example.com", OTP: "1234"}
	assert.Error(t, short.Validate())

	letters := identity.VerifyEmailRequest{Email: "user@example.com", OTP: "12a456"}
	assert.Error(t, letters.Validate())
}

func TestResetPasswordRequestValidate(t *testing.T) {
	valid := identity.ResetPasswordRequest{Token: "some-token", NewPassword: "N3wP@ssword"}
	assert.NoError(t, valid.Validate())

	missingToken := identity.ResetPasswordRequest{NewPassword: "N3wP@ssword"}
	assert.Error(t, missingToken.Validate())

	weak := identity.ResetPasswordRequest{Token: "some-token", NewPassword: "short"}
	assert.Error(t, weak.Validate())
}

func TestFieldErrorsOnNonValidationError(t *testing.T) {
	assert.Nil(t, identity.FieldErrors(assert.AnError))
	assert.Nil(t, identity.FieldErrors(nil))
}
