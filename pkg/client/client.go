// Package client is a Go client for the family ledger HTTP API.
//
// Client issues the remote calls. Store wraps a Client with a single session-keyed
// cache of the user's group, members, ledger and bills.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmynk/familyledger/internal/apperr"
	"github.com/mmynk/familyledger/pkg/ledgerapi"
)

const defaultTimeout = 10 * time.Second

// Client calls the family ledger API. It holds no session state; every
// authenticated method takes the bearer token explicitly.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a client for the API served at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do sends a JSON request. Non-2xx responses are returned as *apperr.Error with the
// kind matching the status code.
func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperr.StoreUnavailable(fmt.Errorf("%s %s: %w", method, path, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errResp ledgerapi.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil || errResp.Message == "" {
			errResp.Message = http.StatusText(resp.StatusCode)
		}
		return apperr.FromStatus(resp.StatusCode, errResp.Message)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *Client) Register(ctx context.Context, req ledgerapi.RegisterRequest) (*ledgerapi.AuthResponse, error) {
	var resp ledgerapi.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", "", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login authenticates by email or handle.
func (c *Client) Login(ctx context.Context, login, password string) (*ledgerapi.AuthResponse, error) {
	var resp ledgerapi.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", ledgerapi.LoginRequest{Login: login, Password: password}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Me(ctx context.Context, token string) (*ledgerapi.User, error) {
	var user ledgerapi.User
	if err := c.do(ctx, http.MethodGet, "/auth/me", token, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) UpdateProfile(ctx context.Context, token string, req ledgerapi.ProfileRequest) (*ledgerapi.AuthResponse, error) {
	var resp ledgerapi.AuthResponse
	if err := c.do(ctx, http.MethodPut, "/auth/profile", token, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) CreateGroup(ctx context.Context, token, name string) (*ledgerapi.Group, error) {
	var group ledgerapi.Group
	if err := c.do(ctx, http.MethodPost, "/groups", token, ledgerapi.CreateGroupRequest{Name: name}, &group); err != nil {
		return nil, err
	}
	return &group, nil
}

func (c *Client) JoinGroup(ctx context.Context, token, inviteCode string) (*ledgerapi.JoinGroupResponse, error) {
	var resp ledgerapi.JoinGroupResponse
	if err := c.do(ctx, http.MethodPost, "/groups/join", token, ledgerapi.JoinGroupRequest{InviteCode: inviteCode}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) LeaveGroup(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/groups/leave", token, nil, nil)
}

func (c *Client) UpdateSettings(ctx context.Context, token string, req ledgerapi.SettingsRequest) (*ledgerapi.Group, error) {
	var group ledgerapi.Group
	if err := c.do(ctx, http.MethodPut, "/groups/settings", token, req, &group); err != nil {
		return nil, err
	}
	return &group, nil
}

// Group returns the caller's group, or nil when the caller is in none.
func (c *Client) Group(ctx context.Context, token string) (*ledgerapi.Group, error) {
	var group *ledgerapi.Group
	if err := c.do(ctx, http.MethodGet, "/groups/me", token, nil, &group); err != nil {
		return nil, err
	}
	return group, nil
}

func (c *Client) Members(ctx context.Context, token string) ([]ledgerapi.Member, error) {
	var members []ledgerapi.Member
	if err := c.do(ctx, http.MethodGet, "/groups/members", token, nil, &members); err != nil {
		return nil, err
	}
	return members, nil
}

func (c *Client) Expenses(ctx context.Context, token string) ([]ledgerapi.Expense, error) {
	var expenses []ledgerapi.Expense
	if err := c.do(ctx, http.MethodGet, "/expenses", token, nil, &expenses); err != nil {
		return nil, err
	}
	return expenses, nil
}

func (c *Client) AddExpense(ctx context.Context, token string, req ledgerapi.ExpenseRequest) (*ledgerapi.Expense, error) {
	var expense ledgerapi.Expense
	if err := c.do(ctx, http.MethodPost, "/expenses", token, req, &expense); err != nil {
		return nil, err
	}
	return &expense, nil
}

func (c *Client) DeleteExpense(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, "/expenses/"+url.PathEscape(id), token, nil, nil)
}

// Summary asks the server for the analytics of a window.
func (c *Client) Summary(ctx context.Context, token, window string) (*ledgerapi.Summary, error) {
	var summary ledgerapi.Summary
	path := "/expenses/summary?window=" + url.QueryEscape(window)
	if err := c.do(ctx, http.MethodGet, path, token, nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// Bills returns the group's bills in display order with their status.
func (c *Client) Bills(ctx context.Context, token string) ([]ledgerapi.Bill, error) {
	var bills []ledgerapi.Bill
	if err := c.do(ctx, http.MethodGet, "/bills", token, nil, &bills); err != nil {
		return nil, err
	}
	return bills, nil
}

func (c *Client) AddBill(ctx context.Context, token string, req ledgerapi.BillRequest) (*ledgerapi.Bill, error) {
	var bill ledgerapi.Bill
	if err := c.do(ctx, http.MethodPost, "/bills", token, req, &bill); err != nil {
		return nil, err
	}
	return &bill, nil
}

func (c *Client) TogglePin(ctx context.Context, token, id string) (*ledgerapi.Bill, error) {
	var bill ledgerapi.Bill
	if err := c.do(ctx, http.MethodPut, "/bills/"+url.PathEscape(id)+"/pin", token, nil, &bill); err != nil {
		return nil, err
	}
	return &bill, nil
}

func (c *Client) DeleteBill(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, "/bills/"+url.PathEscape(id), token, nil, nil)
}
