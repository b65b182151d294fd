package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/zlovtnik/homeswift/internal/models"
)

// maxResponseBody is the maximum size of response body to read (10MB)
const maxResponseBody = 10 << 20

const apiPrefix = "/api/v1"

var (
	// ErrResponseTooLarge is returned when the response body exceeds maxResponseBody
	ErrResponseTooLarge = errors.New("response body too large")
	// ErrInvalidBaseURL is returned when the base URL is empty or malformed
	ErrInvalidBaseURL = errors.New("invalid base URL: must be non-empty with scheme and host")
	// ErrEmptyResponse is returned when a successful envelope carries no data
	ErrEmptyResponse = errors.New("empty response data")
)

// Client talks to the HomeSwift admin API
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	mu         sync.RWMutex
	token      string
}

// NewClient creates a new API client.
// Returns an error if baseURL is empty or malformed (missing scheme/host).
func NewClient(baseURL string) (*Client, error) {
	if baseURL == "" {
		return nil, ErrInvalidBaseURL
	}
	parsed, err := url.ParseRequestURI(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, ErrInvalidBaseURL
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// SetToken sets the bearer token for admin requests
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) getToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Response wraps API responses
type Response struct {
	Success bool             `json:"success"`
	Data    json.RawMessage  `json:"data,omitempty"`
	Error   *models.APIError `json:"error,omitempty"`
}

// ErrorString safely returns the error message from a Response
func (r *Response) ErrorString() string {
	if r == nil {
		return "no response"
	}
	if r.Success {
		return ""
	}
	if r.Error == nil {
		return "unknown error"
	}
	if r.Error.Code != "" {
		return r.Error.Code + ": " + r.Error.Message
	}
	return r.Error.Message
}

// ListRequests fetches one page of service requests, optionally filtered
func (c *Client) ListRequests(ctx context.Context, status models.RequestStatus, search string, page int) (*models.PaginatedResponse[models.ServiceRequestResponse], error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", string(status))
	}
	if search != "" {
		q.Set("search", search)
	}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	path := apiPrefix + "/service-requests"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	return getData[models.PaginatedResponse[models.ServiceRequestResponse]](ctx, c, path)
}

// GetRequest fetches a single service request
func (c *Client) GetRequest(ctx context.Context, id int64) (*models.ServiceRequestResponse, error) {
	return getData[models.ServiceRequestResponse](ctx, c, fmt.Sprintf(apiPrefix+"/service-requests/%d", id))
}

// History fetches the most recent audit trail page of a request
func (c *Client) History(ctx context.Context, id int64) ([]models.HistoryEntry, error) {
	page, err := getData[models.PaginatedResponse[models.HistoryEntry]](ctx, c, fmt.Sprintf(apiPrefix+"/service-requests/%d/history?page_size=100", id))
	if err != nil {
		return nil, err
	}
	return page.Data, nil
}

// SetStatus patches the status of a request
func (c *Client) SetStatus(ctx context.Context, id int64, status models.RequestStatus) (*models.ServiceRequestResponse, error) {
	body := models.UpdateServiceRequestRequest{Status: &status}
	resp, err := c.do(ctx, http.MethodPatch, fmt.Sprintf(apiPrefix+"/service-requests/%d", id), body)
	if err != nil {
		return nil, err
	}
	return parseData[models.ServiceRequestResponse](resp)
}

// SendReminders triggers the reminder sweep
func (c *Client) SendReminders(ctx context.Context) (*models.ReminderSweepResult, error) {
	resp, err := c.do(ctx, http.MethodPost, apiPrefix+"/admin/send-reminders", nil)
	if err != nil {
		return nil, err
	}
	return parseData[models.ReminderSweepResult](resp)
}

// Stats fetches the admin dashboard counters
func (c *Client) Stats(ctx context.Context) (*models.AdminStats, error) {
	return getData[models.AdminStats](ctx, c, apiPrefix+"/admin/stats")
}

func getData[T any](ctx context.Context, c *Client, path string) (*T, error) {
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	return parseData[T](resp)
}

func parseData[T any](resp *Response) (*T, error) {
	if !resp.Success {
		return nil, fmt.Errorf("API error: %s", resp.ErrorString())
	}
	if len(resp.Data) == 0 {
		return nil, ErrEmptyResponse
	}
	var result T
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &result, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*Response, error) {
	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.getToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if len(respBody) > maxResponseBody {
		return nil, ErrResponseTooLarge
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, parseErrorResponse(resp.StatusCode, respBody)
	}

	var apiResp Response
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to parse response (HTTP %d): %w", resp.StatusCode, err)
	}
	return &apiResp, nil
}

// parseErrorResponse prefers the envelope error and falls back to a truncated body
func parseErrorResponse(statusCode int, body []byte) error {
	var errResp Response
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != nil {
		return fmt.Errorf("HTTP %d: %s", statusCode, errResp.ErrorString())
	}
	runes := []rune(string(body))
	if len(runes) > 200 {
		return fmt.Errorf("HTTP %d: %s...", statusCode, string(runes[:200]))
	}
	return fmt.Errorf("HTTP %d: %s", statusCode, string(runes))
}
