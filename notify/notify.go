// Package notify delivers verification codes, password reset links, and
// welcome mail. The engine treats verification and reset sends as critical
// and welcome mail as fire and forget; this package only moves messages.
package notify

import "fmt"

const senderAddress = "noreply@skillhub.com"

func verificationBody(code string) (subject, body string) {
	subject = "Verify Your Email - SkillHub"
	body = fmt.Sprintf("Welcome to SkillHub!\n\n"+
		"Your email verification code is: %s\n\n"+
		"This code expires in 10 minutes.\n\n"+
		"If you didn't create an account, please ignore this email.\n\n"+
		"Best regards,\nSkillHub Team", code)
	return subject, body
}

func resetBody(resetURL, token string) (subject, body string) {
	subject = "Reset Your Password - SkillHub"
	body = fmt.Sprintf("Hello,\n\n"+
		"You requested to reset your password.\n\n"+
		"Click the link below to reset your password:\n%s?token=%s\n\n"+
		"This link expires in 1 hour.\n\n"+
		"If you didn't request this, please ignore this email.\n\n"+
		"Best regards,\nSkillHub Team", resetURL, token)
	return subject, body
}

func welcomeBody() (subject, body string) {
	subject = "Welcome to SkillHub!"
	body = "Welcome to SkillHub!\n\n" +
		"Your account has been successfully created.\n\n" +
		"Start exploring courses and job opportunities today!\n\n" +
		"Best regards,\nSkillHub Team"
	return subject, body
}
