package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"smartcart-auth/internal/config"
)

// Mailer dispatches transactional mail. Only this interface is consumed
// by the auth flows; delivery transport lives behind it.
type Mailer interface {
	SendLoginDetails(email, username, password string) error
	SendResetCode(email, code string) error
}

// MailService sends mail through an HTTP mail gateway. Disabled when no
// gateway URL is configured; sends then succeed as no-ops.
type MailService struct {
	gatewayURL string
	apiKey     string
	from       string
	client     *http.Client
}

// NewMailService creates a new mail service
func NewMailService(cfg *config.Config) *MailService {
	return &MailService{
		gatewayURL: cfg.Mail.GatewayURL,
		apiKey:     cfg.Mail.APIKey,
		from:       cfg.Mail.From,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// IsEnabled checks if mail dispatch is enabled
func (s *MailService) IsEnabled() bool {
	return s.gatewayURL != ""
}

// SendLoginDetails sends the generated username and password to a newly
// registered user
func (s *MailService) SendLoginDetails(email, username, password string) error {
	message := fmt.Sprintf(
		"Greetings, Your username and password are:\nUsername: %s\nPassword: %s",
		username, password,
	)
	return s.send(email, "Login Details", message)
}

// SendResetCode sends a password reset code
func (s *MailService) SendResetCode(email, code string) error {
	message := fmt.Sprintf(
		"Dear User,\n\nYour password reset code is: %s\n\nThis code will expire in 3 minutes.\n\nBest regards,\nDeveloper Team",
		code,
	)
	return s.send(email, "Password Reset Code", message)
}

// send posts a mail payload to the gateway
func (s *MailService) send(to, subject, message string) error {
	if !s.IsEnabled() {
		return nil
	}

	payload, err := json.Marshal(map[string]string{
		"from":    s.from,
		"to":      to,
		"subject": subject,
		"message": message,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, s.gatewayURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("mail gateway returned status %d", resp.StatusCode)
	}
	return nil
}
