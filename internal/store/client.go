// Package store talks to the backend that persists shelf catalogs and user
// choices. All operations are idempotent from the caller's perspective.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julie-labs/shelf-assistant/internal/catalog"
)

// Client is an HTTP client for the shelf backend.
type Client struct {
	BaseURL    string
	httpClient *http.Client
}

// NewClient creates a backend client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Choice is a pending item selection recorded by the dialogue agent.
type Choice struct {
	ID           string `json:"id"`
	ItemName     string `json:"item_name"`
	ItemLocation string `json:"item_location"`
	Processed    bool   `json:"processed"`
	CreatedAt    string `json:"created_at"`
}

// UnavailableError is a transport failure or backend outage. Retryable.
type UnavailableError struct {
	Op  string
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("store unavailable during %s: %v", e.Op, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// RejectedError means the backend refused the request. Fatal for that call;
// retrying the same payload will not help.
type RejectedError struct {
	Op     string
	Status int
	Body   string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("store rejected %s: status %d: %s", e.Op, e.Status, e.Body)
}

// PublishCatalog uploads the encoded catalog. Overwrites are allowed; the
// latest upload wins for subsequent reads. Returns the backend's catalog id.
func (c *Client) PublishCatalog(ctx context.Context, cat catalog.Catalog) (string, error) {
	const op = "publish catalog"

	filename := fmt.Sprintf("shelf_items_%s.csv", uuid.NewString())

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("failed to build upload body: %w", err)
	}
	if _, err := part.Write([]byte(catalog.Encode(cat))); err != nil {
		return "", fmt.Errorf("failed to build upload body: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("failed to build upload body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/csv/upload", &body)
	if err != nil {
		return "", fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &UnavailableError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if err := c.checkStatus(op, resp); err != nil {
		return "", err
	}

	var uploadResp struct {
		Message string `json:"message"`
		ID      string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&uploadResp); err != nil {
		return "", &UnavailableError{Op: op, Err: fmt.Errorf("failed to decode upload response: %w", err)}
	}

	slog.Info("catalog published", "id", uploadResp.ID, "filename", filename, "products", len(cat))
	return uploadResp.ID, nil
}

// LatestChoice returns the most recent unprocessed user choice, or nil if
// none is pending. It never blocks; poll cadence is the caller's concern.
func (c *Client) LatestChoice(ctx context.Context) (*Choice, error) {
	const op = "poll latest choice"

	url := c.BaseURL + "/user-choice/latest?unprocessed_only=true"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create poll request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &UnavailableError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if err := c.checkStatus(op, resp); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UnavailableError{Op: op, Err: err}
	}

	// The backend answers 200 with a JSON null when nothing is pending.
	var choice *Choice
	if err := json.Unmarshal(data, &choice); err != nil {
		return nil, &UnavailableError{Op: op, Err: fmt.Errorf("failed to decode choice: %w", err)}
	}
	return choice, nil
}

// MarkProcessed marks a choice processed. Safe to call more than once; an
// already-consumed choice is not an error.
func (c *Client) MarkProcessed(ctx context.Context, id string) error {
	const op = "mark choice processed"

	url := fmt.Sprintf("%s/user-choice/%s/processed", c.BaseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create mark-processed request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &UnavailableError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		slog.Warn("choice already gone when marking processed", "id", id)
		return nil
	}
	return c.checkStatus(op, resp)
}

func (c *Client) checkStatus(op string, resp *http.Response) error {
	switch {
	case resp.StatusCode >= 500:
		return &UnavailableError{Op: op, Err: fmt.Errorf("backend returned status %d", resp.StatusCode)}
	case resp.StatusCode >= 400:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &RejectedError{Op: op, Status: resp.StatusCode, Body: string(body)}
	}
	return nil
}
