// Package client is the device side of the social graph: an HTTP client for
// the API, the periodic reconciler that keeps badge counts honest and the
// debounced user search.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/anonto42/cinetrack/backend/internal/models"
)

// API talks to the /api/v1 endpoints with a bearer token.
type API struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewAPI(baseURL, token string) *API {
	return &API{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// StatusError is a non-2xx answer from the server.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("http %d", e.Code)
	}
	return fmt.Sprintf("http %d: %s", e.Code, e.Message)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func (a *API) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	u := a.baseURL + "/api/v1" + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+a.token)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	decodeErr := json.NewDecoder(resp.Body).Decode(&env)
	if resp.StatusCode >= 300 {
		return &StatusError{Code: resp.StatusCode, Message: env.Message}
	}
	if decodeErr != nil {
		return fmt.Errorf("decode %s: %w", path, decodeErr)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode %s data: %w", path, err)
	}
	return nil
}

func (a *API) Stats(ctx context.Context) (models.UserStats, error) {
	var stats models.UserStats
	err := a.getJSON(ctx, "/users/stats", nil, &stats)
	return stats, err
}

// Notifications returns the first page of the feed, newest first.
func (a *API) Notifications(ctx context.Context, limit int) ([]models.Notification, error) {
	var data struct {
		Notifications []models.Notification `json:"notifications"`
	}
	q := url.Values{"page": {"1"}, "limit": {strconv.Itoa(limit)}}
	if err := a.getJSON(ctx, "/notifications", q, &data); err != nil {
		return nil, err
	}
	return data.Notifications, nil
}

func (a *API) UnreadCount(ctx context.Context) (int64, error) {
	var data struct {
		Count int64 `json:"count"`
	}
	err := a.getJSON(ctx, "/notifications/unread-count", nil, &data)
	return data.Count, err
}

func (a *API) SearchUsers(ctx context.Context, query string) ([]models.UserSummary, error) {
	var data struct {
		Users []models.UserSummary `json:"users"`
	}
	if err := a.getJSON(ctx, "/users/search", url.Values{"q": {query}}, &data); err != nil {
		return nil, err
	}
	return data.Users, nil
}
