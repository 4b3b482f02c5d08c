// Package apiclient is a typed client for the NOVO backend REST API.
//
// Calls can go straight to the backend or through the proxy prefix; the
// access token is read from an explicit Session rather than ambient state.
// Failures that reach the network are reported as *Error values tagged with
// a Kind, so callers can branch on network, HTTP and decode failures.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
)

// DefaultTokenHeader carries the access token on every request.
const DefaultTokenHeader = "X-Access-Token"

// Client calls the NOVO API.
type Client struct {
	baseURL     string
	session     Session
	httpClient  *http.Client
	tokenHeader string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTokenHeader changes the header the token is sent under.
func WithTokenHeader(name string) Option {
	return func(c *Client) { c.tokenHeader = name }
}

// New returns a Client for baseURL, e.g. "http://localhost:8000/api/novo"
// or "https://api.novo.ai.kr". A nil session means an empty MemorySession.
func New(baseURL string, session Session, opts ...Option) *Client {
	if session == nil {
		session = NewMemorySession("")
	}
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		session:     session,
		httpClient:  http.DefaultClient,
		tokenHeader: DefaultTokenHeader,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session returns the session the client reads its token from.
func (c *Client) Session() Session { return c.session }

// Register creates an account and stores the returned access token in the session.
func (c *Client) Register(ctx context.Context, in RegisterInput) (*RegisterResponse, error) {
	in.normalize()
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("register: %w: %w", ErrInvalidInput, err)
	}

	var out RegisterResponse
	if err := c.do(ctx, http.MethodPost, "/api/register", in, &out); err != nil {
		return nil, err
	}
	if out.AccessToken == "" {
		return nil, &Error{Kind: KindDecode, Op: "POST /api/register", Err: errors.New("response has no access_token")}
	}
	if err := c.session.SetToken(out.AccessToken); err != nil {
		return nil, fmt.Errorf("register: store token: %w", err)
	}
	return &out, nil
}

// Me returns the current user's profile and recipient count.
func (c *Client) Me(ctx context.Context) (*MeResponse, error) {
	var out MeResponse
	if err := c.do(ctx, http.MethodGet, "/api/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Recipients lists the message recipients.
func (c *Client) Recipients(ctx context.Context) ([]Recipient, error) {
	var out recipientsResponse
	if err := c.do(ctx, http.MethodGet, "/api/recipients", nil, &out); err != nil {
		return nil, err
	}
	return out.Recipients, nil
}

// AddRecipient adds one recipient.
func (c *Client) AddRecipient(ctx context.Context, in RecipientInput) error {
	in.normalize()
	if err := in.Validate(); err != nil {
		return fmt.Errorf("add recipient: %w: %w", ErrInvalidInput, err)
	}
	return c.do(ctx, http.MethodPost, "/api/recipients", in, nil)
}

// DeleteRecipient removes the recipient with the given id.
func (c *Client) DeleteRecipient(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/api/recipients/"+strconv.FormatInt(id, 10), nil, nil)
}

// Message returns the stored message.
func (c *Client) Message(ctx context.Context) (*MessageResponse, error) {
	var out MessageResponse
	if err := c.do(ctx, http.MethodGet, "/api/message", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SaveMessage replaces the stored message with content, trimmed.
func (c *Client) SaveMessage(ctx context.Context, content string) error {
	return c.do(ctx, http.MethodPut, "/api/message", messageInput{Content: strings.TrimSpace(content)}, nil)
}

// StartPayment begins a payment. An empty payMethod means DefaultPayMethod.
func (c *Client) StartPayment(ctx context.Context, payMethod string) error {
	if payMethod == "" {
		payMethod = DefaultPayMethod
	}
	return c.do(ctx, http.MethodPost, "/api/payment/start", paymentStartInput{PayMethod: payMethod}, nil)
}

// LatestPayment returns the most recent payment, or nil when there is none.
func (c *Client) LatestPayment(ctx context.Context) (*Payment, error) {
	var out paymentLatestResponse
	if err := c.do(ctx, http.MethodGet, "/api/payment/latest", nil, &out); err != nil {
		return nil, err
	}
	return out.Payment, nil
}

// Logout forgets the session token.
func (c *Client) Logout() error {
	return c.session.Clear()
}

// do sends one JSON request. A non-nil out is filled from a 2xx body; an
// invalid_token answer clears the session before the error is returned.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	op := method + " " + path

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	token, err := c.session.Token()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if token != "" {
		req.Header.Set(c.tokenHeader, token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Kind: KindNetwork, Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Kind: KindNetwork, Op: op, Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{Kind: KindHTTP, Op: op, Status: resp.StatusCode, Body: data}
		var payload struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &payload) == nil {
			apiErr.Code = payload.Error
			apiErr.Message = payload.Message
		}
		if apiErr.Code == CodeInvalidToken {
			if err := c.session.Clear(); err != nil {
				return errors.Join(apiErr, err)
			}
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &Error{Kind: KindDecode, Op: op, Status: resp.StatusCode, Body: data, Err: err}
	}
	return nil
}
