package voice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	backoff "github.com/cenkalti/backoff/v4"

	"github.com/voxdesk-app/voxdesk/pkg/config"
)

// RetentionDays is how long the provider keeps call history. Requests for
// older data are not serviced, so every lookback window is clamped to it.
const RetentionDays = 30

// ErrNotConfigured distinguishes "no API key set" from a transient fetch
// failure, so operators can tell nothing-to-sync apart from sync-is-broken.
var ErrNotConfigured = errors.New("voice provider not configured")

// Customer is the provider's view of the person on the other end of a call.
type Customer struct {
	Number string `json:"number"`
	Name   string `json:"name"`
}

// Analysis carries the provider's post-call evaluation output.
type Analysis struct {
	Summary           string `json:"summary"`
	SuccessEvaluation string `json:"successEvaluation"`
}

// Call is one provider call record, reduced to the fields sync consumes.
type Call struct {
	ID           string     `json:"id"`
	OrgID        string     `json:"orgId"`
	AssistantID  string     `json:"assistantId"`
	Type         string     `json:"type"`
	Status       string     `json:"status"`
	EndedReason  string     `json:"endedReason"`
	StartedAt    *time.Time `json:"startedAt"`
	EndedAt      *time.Time `json:"endedAt"`
	CreatedAt    time.Time  `json:"createdAt"`
	Transcript   string     `json:"transcript"`
	Summary      string     `json:"summary"`
	RecordingURL string     `json:"recordingUrl"`
	Cost         float64    `json:"cost"`
	Customer     *Customer  `json:"customer"`
	Analysis     *Analysis  `json:"analysis"`
	Metadata     map[string]interface{} `json:"metadata"`
}

// Client is a minimal voice provider API client.
type Client struct {
	apiKey  string
	baseURL string
	orgID   string
	client  *http.Client
}

// NewClient creates a provider client from config. An empty API key yields
// a client whose calls fail with ErrNotConfigured.
func NewClient(cfg *config.VoiceConfig) *Client {
	baseURL := "https://api.vapi.ai"
	var apiKey, orgID string
	if cfg != nil {
		apiKey = cfg.APIKey
		orgID = cfg.OrgID
		if cfg.BaseURL != "" {
			baseURL = cfg.BaseURL
		}
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		orgID:   orgID,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// IsConfigured reports whether an API key is present.
func (c *Client) IsConfigured() bool {
	return c.apiKey != ""
}

// ListCalls fetches calls created after since, newest first. The window is
// clamped to the provider retention limit regardless of what the caller
// asks for.
func (c *Client) ListCalls(ctx context.Context, since time.Time, limit int) ([]Call, error) {
	if !c.IsConfigured() {
		return nil, ErrNotConfigured
	}

	oldest := time.Now().AddDate(0, 0, -RetentionDays)
	if since.Before(oldest) {
		since = oldest
	}

	q := url.Values{}
	q.Set("createdAtGe", since.UTC().Format(time.RFC3339))
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	endpoint := fmt.Sprintf("%s/call?%s", c.baseURL, q.Encode())

	var calls []Call
	fetchFn := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return backoff.Permanent(fmt.Errorf("voice provider rejected credentials: status %d", resp.StatusCode))
		}
		if resp.StatusCode >= 400 {
			return fmt.Errorf("voice provider returned status %d", resp.StatusCode)
		}

		calls = calls[:0]
		if err := json.NewDecoder(resp.Body).Decode(&calls); err != nil {
			return backoff.Permanent(fmt.Errorf("decode call list: %w", err))
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 1 * time.Second
	bo.MaxInterval = 5 * time.Second
	bo.MaxElapsedTime = 20 * time.Second

	if err := backoff.Retry(fetchFn, backoff.WithContext(bo, ctx)); err != nil {
		return nil, err
	}
	return calls, nil
}

// FetchRecording streams a recording file from the provider's storage.
// The caller must close the returned body.
func (c *Client) FetchRecording(ctx context.Context, recordingURL string) (io.ReadCloser, int64, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, recordingURL, nil)
	if err != nil {
		return nil, 0, "", err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, "", err
	}
	if resp.StatusCode >= 400 {
		resp.Body.Close()
		return nil, 0, "", fmt.Errorf("recording fetch returned status %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "audio/wav"
	}
	return resp.Body, resp.ContentLength, contentType, nil
}
