package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/finance_ledger/internal/apperrors"
	"github.com/SscSPs/finance_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/finance_ledger/internal/core/ports/services"
)

// DefaultResendURL is the Resend send-email endpoint.
const DefaultResendURL = "https://api.resend.com/emails"

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// ResendSender sends rendered e-mails through the Resend HTTP API.
type ResendSender struct {
	apiKey   string
	from     string
	endpoint string
	client   *http.Client
	renderer *Renderer
}

var _ portssvc.EmailSender = (*ResendSender)(nil)

// NewResendSender builds a sender. An empty endpoint uses DefaultResendURL.
func NewResendSender(apiKey, from, endpoint string, timeout time.Duration) (*ResendSender, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("RESEND_API_KEY not configured")
	}
	if endpoint == "" {
		endpoint = DefaultResendURL
	}
	renderer, err := NewRenderer()
	if err != nil {
		return nil, err
	}
	return &ResendSender{
		apiKey:   apiKey,
		from:     from,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		renderer: renderer,
	}, nil
}

func (s *ResendSender) SendEmail(ctx context.Context, to domain.UserContact, tmpl domain.EmailTemplate, message string) error {
	html, err := s.renderer.Render(to, tmpl, message)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	jsonData, err := json.Marshal(sendRequest{
		From:    s.from,
		To:      []string{to.Email},
		Subject: tmpl.Subject(),
		HTML:    html,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: resend: %v", apperrors.ErrExternalServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		slog.WarnContext(ctx, "Resend rejected email", "status", resp.StatusCode, "body", string(body))
		// 4xx other than rate limiting will not succeed on retry
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return fmt.Errorf("%w: resend status %d", apperrors.ErrValidation, resp.StatusCode)
		}
		return fmt.Errorf("%w: resend status %d", apperrors.ErrExternalServiceUnavailable, resp.StatusCode)
	}
	return nil
}
