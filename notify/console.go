package notify

import (
	"context"
	"fmt"

	"github.com/skillhub/identity"
)

// Console prints notifications to stdout. Development backend: it lets the
// register and reset flows run end to end without an SMTP relay.
type Console struct{}

var _ identity.Notifier = Console{}

func (Console) SendVerificationCode(_ context.Context, email, code string) error {
	subject, body := verificationBody(code)
	printNotification(email, subject, body)
	return nil
}

func (Console) SendPasswordResetLink(_ context.Context, email, token string) error {
	subject, body := resetBody("http://localhost:3000/reset-password", token)
	printNotification(email, subject, body)
	return nil
}

func (Console) SendWelcome(_ context.Context, email string) error {
	subject, body := welcomeBody()
	printNotification(email, subject, body)
	return nil
}

func printNotification(email, subject, body string) {
	fmt.Println("====== SENDING EMAIL NOTIFICATION =======")
	fmt.Printf("to: %s\n", email)
	fmt.Printf("subject: %s\n", subject)
	fmt.Println(body)
}
