// internal/clients/gym_client.go
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"gymflow/internal/ledger"
	"gymflow/internal/membership"
	"gymflow/internal/notify"
	"gymflow/internal/settings"
)

var ErrNotFound = errors.New("not found")

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("unexpected status code %d: %s", e.StatusCode, e.Message)
}

// GymClient talks to the gymflow HTTP API. It keeps the admin session
// cookie between calls.
type GymClient struct {
	baseURL string
	http    *http.Client
}

func NewGymClient(baseURL string) *GymClient {
	jar, _ := cookiejar.New(nil) // never fails with nil options
	return &GymClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Jar: jar},
	}
}

func (c *GymClient) Site(ctx context.Context) (*settings.Public, error) {
	var site settings.Public
	if err := c.do(ctx, http.MethodGet, "/api/site", nil, &site); err != nil {
		return nil, err
	}
	return &site, nil
}

func (c *GymClient) Register(ctx context.Context, in membership.RegisterInput) (*membership.Registration, error) {
	var reg membership.Registration
	if err := c.do(ctx, http.MethodPost, "/api/registrations", in, &reg); err != nil {
		return nil, err
	}
	return &reg, nil
}

// Lookup fetches a member's profile. A miss returns ErrNotFound.
func (c *GymClient) Lookup(ctx context.Context, id string) (*membership.Profile, error) {
	var profile membership.Profile
	if err := c.do(ctx, http.MethodGet, "/api/members/"+url.PathEscape(strings.TrimSpace(id)), nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (c *GymClient) Contact(ctx context.Context, id string, kind membership.ContactKind) (*notify.Message, error) {
	path := "/api/members/" + url.PathEscape(strings.TrimSpace(id)) + "/contact?kind=" + url.QueryEscape(string(kind))
	var msg notify.Message
	if err := c.do(ctx, http.MethodGet, path, nil, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// Login opens an admin session for the following calls.
func (c *GymClient) Login(ctx context.Context, password string) error {
	return c.do(ctx, http.MethodPost, "/api/admin/login", map[string]string{"password": password}, nil)
}

func (c *GymClient) Dashboard(ctx context.Context) (*membership.Dashboard, error) {
	var d membership.Dashboard
	if err := c.do(ctx, http.MethodGet, "/api/admin/dashboard", nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *GymClient) Activate(ctx context.Context, id string, amount decimal.Decimal, method ledger.Method) (*membership.Activation, error) {
	req := struct {
		Amount decimal.Decimal `json:"amount"`
		Method ledger.Method   `json:"method"`
	}{amount, method}
	var act membership.Activation
	if err := c.do(ctx, http.MethodPost, "/api/admin/members/"+url.PathEscape(id)+"/activate", req, &act); err != nil {
		return nil, err
	}
	return &act, nil
}

func (c *GymClient) Finance(ctx context.Context) (*membership.Finance, error) {
	var f membership.Finance
	if err := c.do(ctx, http.MethodGet, "/api/admin/finance", nil, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func (c *GymClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return &APIError{StatusCode: resp.StatusCode, Message: apiErr.Error}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
