package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const graphBaseURL = "https://graph.facebook.com/v20.0"

// Service sends text messages through the WhatsApp Business Cloud API
// (Meta Graph). An unconfigured service reports Configured() == false and
// refuses to send.
type Service struct {
	token         string
	phoneNumberID string
	baseURL       string
	client        *http.Client
}

// NewService creates a WhatsApp Cloud API client
func NewService(token, phoneNumberID string) *Service {
	return &Service{
		token:         token,
		phoneNumberID: phoneNumberID,
		baseURL:       graphBaseURL,
		client:        &http.Client{Timeout: 30 * time.Second},
	}
}

// Configured reports whether credentials are present
func (s *Service) Configured() bool {
	return s.token != "" && s.phoneNumberID != ""
}

// SendText sends a plain text message to an E.164 number. The Graph API
// wants the country code without the leading '+'.
func (s *Service) SendText(ctx context.Context, toE164, body string) error {
	if !s.Configured() {
		return fmt.Errorf("whatsapp is not configured")
	}

	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"to":                strings.TrimPrefix(toE164, "+"),
		"type":              "text",
		"text":              map[string]string{"body": body},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", s.baseURL, s.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("WhatsApp API error %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}
