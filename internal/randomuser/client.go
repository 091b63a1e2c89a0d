// Package randomuser provides an identity provider backed by the
// randomuser.me JSON API.
package randomuser

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

	"github.com/zarlcorp/zpersona/internal/identity"
)

const defaultBaseURL = "https://randomuser.me/api/"

// ErrUnsupportedCountry is returned for countries the API has no
// nationality for.
var ErrUnsupportedCountry = errors.New("randomuser: country not supported")

// nationalities maps catalog country codes to randomuser nat values.
var nationalities = map[string]string{
	"US": "us",
	"UK": "gb",
	"CA": "ca",
	"AU": "au",
	"DE": "de",
	"FR": "fr",
	"IN": "in",
}

// Config configures the client.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client fetches base identities from randomuser.me.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client. Zero config values use the public API and a
// 10 second timeout.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: cfg.Timeout},
	}
}

// FetchUser returns a base identity (name, phone, national ID) for the
// given catalog country code.
func (c *Client) FetchUser(ctx context.Context, country string) (identity.Identity, error) {
	nat, ok := nationalities[strings.ToUpper(country)]
	if !ok {
		return identity.Identity{}, fmt.Errorf("fetch user %s: %w", country, ErrUnsupportedCountry)
	}

	q := url.Values{}
	q.Set("nat", nat)
	q.Set("inc", "name,phone,id")
	q.Set("noinfo", "")

	body, err := c.get(ctx, c.baseURL+"?"+q.Encode())
	if err != nil {
		return identity.Identity{}, fmt.Errorf("fetch user %s: %w", country, err)
	}

	var resp usersResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return identity.Identity{}, fmt.Errorf("fetch user %s: unmarshal: %w", country, err)
	}

	if resp.Error != "" {
		return identity.Identity{}, fmt.Errorf("fetch user %s: api: %s", country, resp.Error)
	}
	if len(resp.Results) == 0 {
		return identity.Identity{}, fmt.Errorf("fetch user %s: empty result", country)
	}

	u := resp.Results[0]
	return identity.Identity{
		Name:  identity.Name{First: u.Name.First, Last: u.Name.Last},
		Phone: u.Phone,
		NationalID: identity.NationalID{
			Label: u.ID.Name,
			Value: u.ID.Value,
		},
	}, nil
}

func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr usersResponse
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error != "" {
			return nil, &Error{StatusCode: resp.StatusCode, Message: apiErr.Error}
		}
		return nil, &Error{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}

	return body, nil
}

// Error is a non-2xx response from the API.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("randomuser: %s (status %d)", e.Message, e.StatusCode)
}

// json wire types

type usersResponse struct {
	Error   string `json:"error"`
	Results []struct {
		Name struct {
			First string `json:"first"`
			Last  string `json:"last"`
		} `json:"name"`
		Phone string `json:"phone"`
		ID    struct {
			Name  string `json:"name"`
			Value string `json:"value"`
		} `json:"id"`
	} `json:"results"`
}
