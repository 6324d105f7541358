package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/KasumiMercury/voltahome/internal/domain"
	"github.com/KasumiMercury/voltahome/internal/observability/logging"
	"github.com/KasumiMercury/voltahome/internal/observability/tracing"
)

const DefaultResendBaseURL = "https://api.resend.com"

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
}

type resendResponse struct {
	ID string `json:"id"`
}

type resendError struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// ResendClient sends mail through the Resend HTTP API.
type ResendClient struct {
	baseURL    string
	apiKey     string
	from       string
	httpClient *http.Client
	maxRetries int
}

func NewResendClient(baseURL, apiKey, from string, maxRetries int) (*ResendClient, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if from == "" {
		return nil, ErrMissingSender
	}
	if baseURL == "" {
		baseURL = DefaultResendBaseURL
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &ResendClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		from:    from,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		maxRetries: maxRetries,
	}, nil
}

var _ domain.Mailer = (*ResendClient)(nil)

func (c *ResendClient) Send(ctx context.Context, msg domain.Message) (domain.Receipt, error) {
	if msg.To == "" {
		return domain.Receipt{}, ErrMissingRecipient
	}

	body, err := json.Marshal(resendRequest{
		From:    c.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		HTML:    msg.HTML,
		Text:    msg.Text,
	})
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("failed to marshal resend request: %w", err)
	}

	url := c.baseURL + "/emails"

	ctx, span := tracing.StartExternalAPISpan(ctx, "resend.send", url)
	defer span.End()

	// Retries reuse the key so the provider delivers at most once.
	idempotencyKey := uuid.NewString()

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * 200 * time.Millisecond
			slog.DebugContext(ctx, "retrying resend request",
				slog.Int("attempt", attempt+1),
				slog.Duration("backoff", backoff),
			)
			select {
			case <-ctx.Done():
				tracing.SetStatusFromError(span, ctx.Err())
				return domain.Receipt{}, ctx.Err()
			case <-time.After(backoff):
			}
		}

		receipt, retryable, err := c.doRequest(ctx, url, idempotencyKey, body)
		if err == nil {
			tracing.SetStatusFromError(span, nil)
			return receipt, nil
		}
		lastErr = err
		if !retryable {
			break
		}
	}

	slog.ErrorContext(ctx, "resend request failed",
		slog.Int("max_retries", c.maxRetries),
		slog.String("error", lastErr.Error()),
	)
	tracing.SetStatusFromError(span, lastErr)
	return domain.Receipt{}, fmt.Errorf("failed to send email via resend: %w", lastErr)
}

// doRequest reports whether a failed attempt is worth retrying.
func (c *ResendClient) doRequest(ctx context.Context, url, idempotencyKey string, body []byte) (domain.Receipt, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return domain.Receipt{}, false, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Idempotency-Key", idempotencyKey)
	if requestID := logging.RequestIDFromContext(ctx); requestID != "" {
		req.Header.Set("x-request-id", requestID)
	}
	tracing.InjectToHTTPRequest(ctx, req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.WarnContext(ctx, "failed to send request to resend",
			slog.String("error", err.Error()),
		)
		return domain.Receipt{}, ctx.Err() == nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return domain.Receipt{}, true, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr resendError
		_ = json.Unmarshal(payload, &apiErr)

		slog.WarnContext(ctx, "unexpected status code from resend",
			slog.Int("status_code", resp.StatusCode),
			slog.String("error_name", apiErr.Name),
		)

		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		if !retryable {
			return domain.Receipt{}, false, fmt.Errorf("%w: status %d: %s", ErrRejected, resp.StatusCode, apiErr.Message)
		}
		return domain.Receipt{}, true, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	// The message is accepted at this point; a missing id is not an error.
	var out resendResponse
	if err := json.Unmarshal(payload, &out); err != nil {
		slog.WarnContext(ctx, "failed to decode resend response",
			slog.String("error", err.Error()),
		)
	}

	slog.InfoContext(ctx, "email accepted by resend",
		slog.String("email_id", out.ID),
	)

	return domain.Receipt{ID: out.ID}, false, nil
}
