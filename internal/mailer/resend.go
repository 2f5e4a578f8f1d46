package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrMissingCredential is returned per send when no API key is configured,
// so a misconfigured deployment still produces one logged failure per
// recipient instead of a single fast-fail.
var ErrMissingCredential = errors.New("email provider credential is not configured")

// ResendMailer submits messages to a Resend-compatible transactional email
// HTTP API.
type ResendMailer struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewResendMailer(apiKey, baseURL string) *ResendMailer {
	if baseURL == "" {
		baseURL = "https://api.resend.com"
	}
	return &ResendMailer{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

type resendError struct {
	Message string `json:"message"`
	Name    string `json:"name"`
}

func (m *ResendMailer) Send(ctx context.Context, msg Message) error {
	if m.apiKey == "" {
		return ErrMissingCredential
	}

	from := msg.From
	if msg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", msg.FromName, msg.From)
	}

	body, err := json.Marshal(resendRequest{
		From:    from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		HTML:    msg.HTML,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var apiErr resendError
	if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Message != "" {
		return fmt.Errorf("provider rejected message: %s", apiErr.Message)
	}
	return fmt.Errorf("provider returned status %d", resp.StatusCode)
}
