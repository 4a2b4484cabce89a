package service

import "fmt"

func passwordResetEmailTemplate(resetURL, appName string) (string, string) {
	subject := fmt.Sprintf("Reset your password for %s", appName)
	body := fmt.Sprintf(`Click the link below to reset your password:

%s

This link expires in 10 minutes and can only be used once.

If you did not request this, please ignore this email. Your password won't be changed.

Best,
The %s Team`, resetURL, appName)

	return subject, body
}
