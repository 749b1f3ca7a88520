// Package lunchmoney is the HTTP adapter for the Lunch Money v2 API.
package lunchmoney

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/ledger_sync/internal/apperrors"
	"github.com/SscSPs/ledger_sync/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_sync/internal/core/ports/services"
	"github.com/SscSPs/ledger_sync/internal/dto"
	"github.com/SscSPs/ledger_sync/internal/platform/logging"
	"github.com/go-playground/validator/v10"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	"golang.org/x/oauth2"
)

const limiterKey = "lunchmoney"

// Client talks to the ledger over HTTP. It is safe for sequential use by one pipeline.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *limiter.Limiter
	validate   *validator.Validate
}

var _ portssvc.LedgerClient = (*Client)(nil)

// ClientOption configures a Client
type ClientOption func(*Client)

// WithHTTPClient replaces the authenticated HTTP client, mostly for tests.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLimiter throttles outgoing requests with the given limiter.
func WithLimiter(l *limiter.Limiter) ClientOption {
	return func(c *Client) {
		c.limiter = l
	}
}

// WithTimeout bounds every request. Zero means no timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// NewClient returns a client that authenticates with apiKey as a bearer token.
func NewClient(ctx context.Context, baseURL, apiKey string, options ...ClientOption) *Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: apiKey, TokenType: "Bearer"})
	c := &Client{
		baseURL:    baseURL,
		httpClient: oauth2.NewClient(ctx, ts),
		validate:   NewValidator(),
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// NewRateLimiter builds an in-memory limiter from a formatted rate such as "120-M".
func NewRateLimiter(formatted string) (*limiter.Limiter, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, fmt.Errorf("invalid ledger rate limit %q: %w", formatted, err)
	}
	return limiter.New(memory.NewStore(), rate), nil
}

// NewValidator returns a validator that knows the ledger's account types.
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("ledger_account_type", func(fl validator.FieldLevel) bool {
		return domain.AccountType(fl.Field().String()).Valid()
	})
	return v
}

func (c *Client) GetMe(ctx context.Context) (*domain.LedgerUser, error) {
	var resp dto.UserResponse
	if err := c.do(ctx, http.MethodGet, "/me", nil, &resp); err != nil {
		return nil, err
	}
	return &domain.LedgerUser{ID: resp.ID, Name: resp.Name, Email: resp.Email, BudgetName: resp.BudgetName}, nil
}

func (c *Client) GetAllManualAccounts(ctx context.Context) ([]domain.LedgerAccount, error) {
	var resp dto.ListManualAccountsResponse
	if err := c.do(ctx, http.MethodGet, "/manual_accounts", nil, &resp); err != nil {
		return nil, err
	}
	accounts := make([]domain.LedgerAccount, 0, len(resp.ManualAccounts))
	for _, a := range resp.ManualAccounts {
		accounts = append(accounts, dto.ToLedgerAccount(a))
	}
	return accounts, nil
}

func (c *Client) CreateManualAccount(ctx context.Context, req dto.CreateManualAccountRequest) (*domain.LedgerAccount, error) {
	if err := c.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	var resp dto.ManualAccountResponse
	if err := c.do(ctx, http.MethodPost, "/manual_accounts", req, &resp); err != nil {
		return nil, err
	}
	account := dto.ToLedgerAccount(resp)
	return &account, nil
}

func (c *Client) CreateTransactions(ctx context.Context, req dto.CreateTransactionsRequest) (*dto.CreateTransactionsResponse, error) {
	if err := c.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	var resp dto.CreateTransactionsResponse
	if err := c.do(ctx, http.MethodPost, "/transactions", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// do sends one request and decodes a 2xx body into out. A non-2xx response
// with a JSON error body becomes *apperrors.LedgerError; anything else is a
// plain error.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if err := c.throttle(ctx); err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode %s %s request: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build %s %s request: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s %s response: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp.StatusCode, raw)
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

func decodeError(status int, raw []byte) error {
	var body dto.ErrorResponse
	if err := json.Unmarshal(raw, &body); err != nil || body.Message == "" {
		return fmt.Errorf("ledger returned %d %s: %s", status, http.StatusText(status), bytes.TrimSpace(raw))
	}
	lerr := &apperrors.LedgerError{StatusCode: status, Message: body.Message}
	for _, detail := range body.Errors {
		lerr.Errors = append(lerr.Errors, detail.Message)
	}
	return lerr
}

// minThrottleWait bounds the retry loop while the window is still open.
const minThrottleWait = 100 * time.Millisecond

// throttleWait is the time until reset, a Unix time in whole seconds. It can
// round to zero or below before the window actually closes.
func throttleWait(reset int64, now time.Time) time.Duration {
	return max(time.Unix(reset, 0).Sub(now), minThrottleWait)
}

// throttle blocks until the limiter admits another request.
func (c *Client) throttle(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	for {
		lctx, err := c.limiter.Get(ctx, limiterKey)
		if err != nil {
			return fmt.Errorf("failed to get rate limit context: %w", err)
		}
		if !lctx.Reached {
			return nil
		}

		wait := throttleWait(lctx.Reset, time.Now())
		logging.FromContext(ctx).Warn("Ledger rate limit reached, waiting",
			slog.Int64("limit", lctx.Limit),
			slog.Duration("wait", wait))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}
