// Package github looks up a user's public repositories so profile pages can
// show recent work. Responses are relayed to clients as raw JSON.
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrNoProfile is returned when GitHub has no such user (or refuses the lookup).
var ErrNoProfile = errors.New("github: no profile found")

// Client calls the GitHub REST API.
type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	http         *http.Client
}

// NewClient builds a Client. baseURL is normally https://api.github.com.
// clientID/clientSecret are optional; when set they raise the rate limit.
func NewClient(baseURL, clientID, clientSecret string) *Client {
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		clientID:     clientID,
		clientSecret: clientSecret,
		http:         &http.Client{Timeout: 10 * time.Second},
	}
}

// Repos returns the five oldest-created public repositories of username.
func (c *Client) Repos(ctx context.Context, username string) (json.RawMessage, error) {
	u := fmt.Sprintf("%s/users/%s/repos?per_page=5&sort=created:asc", c.baseURL, url.PathEscape(username))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "connect2pros-server")
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.clientID != "" && c.clientSecret != "" {
		req.SetBasicAuth(c.clientID, c.clientSecret)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("github request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil, ErrNoProfile
	}
	body, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("github read: %w", err)
	}
	if !json.Valid(body) {
		return nil, errors.New("github: invalid JSON response")
	}
	return json.RawMessage(body), nil
}
