package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"github.com/sony/gobreaker/v2"

	"github.com/zootrail/zootrail/internal/client/models"
	"github.com/zootrail/zootrail/internal/logging"
)

const (
	contentTypeJSON = "application/json"
	contentTypeForm = "application/x-www-form-urlencoded"

	// maxBodyBytes caps how much of a response body is read.
	maxBodyBytes = 1 << 20

	retryBaseDelay  = 300 * time.Millisecond
	retryMaxRetries = 2
)

// Config holds transport settings for the HTTP client.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// HTTPClient is the Client implementation backed by net/http with a tuned
// transport, a circuit breaker, per-request IDs, and retry of idempotent
// reads on transport errors and 5xx responses.
type HTTPClient struct {
	baseURL string
	hc      *http.Client
	breaker *gobreaker.CircuitBreaker[*CallResult]
	tokens  TokenSource
	log     logging.Logger
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient builds the API client. The token source is attached later
// via SetTokenSource because the session manager that provides it needs the
// client first.
func NewHTTPClient(cfg Config, log logging.Logger) *HTTPClient {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &HTTPClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		hc:      &http.Client{Transport: transport, Timeout: timeout},
		breaker: newBreaker("zootrail-api", log),
		log:     log,
	}
}

// SetTokenSource attaches the supplier of the ambient bearer credential.
func (c *HTTPClient) SetTokenSource(ts TokenSource) {
	c.tokens = ts
}

func (c *HTTPClient) Close() error {
	c.hc.CloseIdleConnections()
	return nil
}

// once performs a single request attempt through the circuit breaker.
// A nil error with a non-2xx CallResult means the server answered; only
// transport-level failures become errors (wrapped in ErrUnavailable).
func (c *HTTPClient) once(ctx context.Context, method, path string, query url.Values, contentType string, body []byte) (*CallResult, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}

	req.Header.Set("Accept", contentTypeJSON)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	res, err := c.breaker.Execute(func() (*CallResult, error) {
		resp, err := c.hc.Do(req)
		if err != nil {
			return nil, err
		}
		defer func() { _ = resp.Body.Close() }()

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return nil, err
		}
		return &CallResult{Status: resp.StatusCode, Body: data}, nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: circuit open", ErrUnavailable)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return res, nil
}

// get performs an idempotent read with exponential-backoff retries on
// transport errors and retriable 5xx statuses.
func (c *HTTPClient) get(ctx context.Context, path string, query url.Values) (*CallResult, error) {
	var res *CallResult

	backoff := retry.WithMaxRetries(retryMaxRetries, retry.NewExponential(retryBaseDelay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		r, err := c.once(ctx, http.MethodGet, path, query, "", nil)
		if err != nil {
			if errors.Is(err, ErrUnavailable) {
				return retry.RetryableError(err)
			}
			return err
		}
		res = r
		if r.Status >= 500 && r.Status != http.StatusNotImplemented {
			return retry.RetryableError(&APIError{Status: r.Status, Body: r.Body})
		}
		return nil
	})
	if err != nil {
		// Retries exhausted on a served 5xx: hand the response back so the
		// caller can classify it like any other failure.
		if res != nil {
			return res, nil
		}
		return nil, err
	}
	return res, nil
}

func (c *HTTPClient) postJSON(ctx context.Context, path string, payload any) (*CallResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", path, err)
	}
	return c.once(ctx, http.MethodPost, path, nil, contentTypeJSON, body)
}

// getJSON is get plus decoding, for endpoints whose callers want a value.
func (c *HTTPClient) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	res, err := c.get(ctx, path, query)
	if err != nil {
		return err
	}
	if !res.OK() {
		return &APIError{Status: res.Status, Body: res.Body}
	}
	if err := json.Unmarshal(res.Body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// grantDTO is the wire shape shared by the login and refresh endpoints.
type grantDTO struct {
	AccessToken   string `json:"access_token"`
	UserID        string `json:"user_id"`
	Email         string `json:"email"`
	ExpiresIn     int64  `json:"expires_in"`
	EmailVerified bool   `json:"email_verified"`
}

func (d grantDTO) toGrant() *models.Grant {
	return &models.Grant{
		Token: d.AccessToken,
		User: models.User{
			ID:            d.UserID,
			Email:         d.Email,
			EmailVerified: d.EmailVerified,
		},
		ExpiresIn: time.Duration(d.ExpiresIn) * time.Second,
	}
}

func (c *HTTPClient) Login(ctx context.Context, username, password string) (*models.Grant, *CallResult, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	res, err := c.once(ctx, http.MethodPost, "/auth/login", nil, contentTypeForm, []byte(form.Encode()))
	if err != nil {
		return nil, nil, err
	}
	if !res.OK() {
		return nil, res, nil
	}

	var dto grantDTO
	if err := json.Unmarshal(res.Body, &dto); err != nil {
		return nil, nil, fmt.Errorf("decode login response: %w", err)
	}
	grant := dto.toGrant()
	if grant.User.Email == "" {
		// The login response omits the email; the submitted username is it.
		grant.User.Email = username
	}
	return grant, res, nil
}

func (c *HTTPClient) Refresh(ctx context.Context) (*models.Grant, *CallResult, error) {
	res, err := c.once(ctx, http.MethodPost, "/auth/refresh", nil, "", nil)
	if err != nil {
		return nil, nil, err
	}
	if !res.OK() {
		return nil, res, nil
	}

	var dto grantDTO
	if err := json.Unmarshal(res.Body, &dto); err != nil {
		return nil, nil, fmt.Errorf("decode refresh response: %w", err)
	}
	return dto.toGrant(), res, nil
}

func (c *HTTPClient) Logout(ctx context.Context) error {
	res, err := c.once(ctx, http.MethodPost, "/auth/logout", nil, "", nil)
	if err != nil {
		return err
	}
	if !res.OK() {
		return &APIError{Status: res.Status, Body: res.Body}
	}
	return nil
}

func (c *HTTPClient) Register(ctx context.Context, email, password string) (*CallResult, error) {
	return c.postJSON(ctx, "/auth/register", map[string]string{
		"email":    email,
		"password": password,
	})
}

func (c *HTTPClient) ForgotPassword(ctx context.Context, email string) (*CallResult, error) {
	return c.postJSON(ctx, "/auth/password/forgot", map[string]string{"email": email})
}

func (c *HTTPClient) ResetStatus(ctx context.Context, token string) (string, error) {
	var out struct {
		Status string `json:"status"`
	}
	query := url.Values{}
	query.Set("token", token)
	if err := c.getJSON(ctx, "/auth/password/reset/status", query, &out); err != nil {
		return "", err
	}
	return out.Status, nil
}

func (c *HTTPClient) ResetPassword(ctx context.Context, token, password, confirmPassword string) (*CallResult, error) {
	return c.postJSON(ctx, "/auth/password/reset", map[string]string{
		"token":           token,
		"password":        password,
		"confirmPassword": confirmPassword,
	})
}

func (c *HTTPClient) ResendVerification(ctx context.Context, email string) (*CallResult, error) {
	return c.postJSON(ctx, "/users/verify/resend", map[string]string{"email": email})
}

func (c *HTTPClient) Dashboard(ctx context.Context) (*models.Dashboard, error) {
	var out models.Dashboard
	if err := c.getJSON(ctx, "/dashboard", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Visits(ctx context.Context, page int) ([]models.Visit, error) {
	query := url.Values{}
	if page > 0 {
		query.Set("page", strconv.Itoa(page))
	}
	var out []models.Visit
	if err := c.getJSON(ctx, "/visits", query, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) LogVisit(ctx context.Context, zooID, note string) (*models.Visit, error) {
	res, err := c.postJSON(ctx, "/visits", map[string]string{
		"zoo_id": zooID,
		"note":   note,
	})
	if err != nil {
		return nil, err
	}
	if !res.OK() {
		return nil, &APIError{Status: res.Status, Body: res.Body}
	}
	var out models.Visit
	if err := json.Unmarshal(res.Body, &out); err != nil {
		return nil, fmt.Errorf("decode visit response: %w", err)
	}
	return &out, nil
}

func (c *HTTPClient) SearchZoos(ctx context.Context, query string) ([]models.Zoo, error) {
	q := url.Values{}
	q.Set("q", query)
	var out []models.Zoo
	if err := c.getJSON(ctx, "/zoos/search", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) Achievements(ctx context.Context) ([]models.Achievement, error) {
	var out []models.Achievement
	if err := c.getJSON(ctx, "/achievements", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
