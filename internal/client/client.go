// Package client is a typed HTTP client for the finance API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/aggregate"
	"fintrack/internal/core"
)

const (
	DefaultBaseURL = "http://localhost:5000"
	defaultTimeout = 10 * time.Second
)

// ErrNetworkFailure wraps transport errors: the server was not reached or the
// connection broke before a response arrived.
var ErrNetworkFailure = errors.New("network failure")

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.Status)
	}
	return fmt.Sprintf("api error: status %d: %s", e.Status, e.Message)
}

// ServerFault reports a 5xx response.
func (e *APIError) ServerFault() bool { return e.Status >= 500 }

type Client struct {
	baseURL string
	http    *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// New returns a client for baseURL, or DefaultBaseURL when empty.
func New(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid api url %q", baseURL)
	}
	c := &Client{
		baseURL: strings.TrimRight(u.String(), "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) BaseURL() string { return c.baseURL }

// do sends body as JSON and decodes a 2xx response into out when non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrNetworkFailure, method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrNetworkFailure, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var msg struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &msg) == nil {
			apiErr.Message = msg.Message
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func transactionPath(kind core.Kind) (string, error) {
	if !kind.Valid() {
		return "", fmt.Errorf("unknown transaction kind %q", kind)
	}
	return "/" + kind.Collection(), nil
}

func (c *Client) ListTransactions(ctx context.Context, kind core.Kind) ([]core.Transaction, error) {
	path, err := transactionPath(kind)
	if err != nil {
		return nil, err
	}
	var out []core.Transaction
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

func (c *Client) CreateTransaction(ctx context.Context, kind core.Kind, f core.TransactionFields) (core.Transaction, error) {
	var out core.Transaction
	path, err := transactionPath(kind)
	if err != nil {
		return out, err
	}
	err = c.do(ctx, http.MethodPost, path, f, &out)
	return out, err
}

func (c *Client) UpdateTransaction(ctx context.Context, kind core.Kind, id string, f core.TransactionFields) (core.Transaction, error) {
	var out core.Transaction
	path, err := transactionPath(kind)
	if err != nil {
		return out, err
	}
	err = c.do(ctx, http.MethodPut, path+"/"+url.PathEscape(id), f, &out)
	return out, err
}

func (c *Client) DeleteTransaction(ctx context.Context, kind core.Kind, id string) error {
	path, err := transactionPath(kind)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, path+"/"+url.PathEscape(id), nil, nil)
}

func (c *Client) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	var out []core.Budget
	if err := c.do(ctx, http.MethodGet, "/"+core.ResourceBudget, nil, &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

func (c *Client) CreateBudget(ctx context.Context, f core.BudgetFields) (core.Budget, error) {
	var out core.Budget
	err := c.do(ctx, http.MethodPost, "/"+core.ResourceBudget, f, &out)
	return out, err
}

func (c *Client) DeleteBudget(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/"+core.ResourceBudget+"/"+url.PathEscape(id), nil, nil)
}

func (c *Client) ListSavings(ctx context.Context) ([]core.Savings, error) {
	var out []core.Savings
	if err := c.do(ctx, http.MethodGet, "/"+core.ResourceSavings, nil, &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

func (c *Client) CreateSavings(ctx context.Context, f core.SavingsFields) (core.Savings, error) {
	var out core.Savings
	err := c.do(ctx, http.MethodPost, "/"+core.ResourceSavings, f, &out)
	return out, err
}

func (c *Client) DeleteSavings(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/"+core.ResourceSavings+"/"+url.PathEscape(id), nil, nil)
}

// FetchSnapshot reads expenses, incomes and budgets concurrently. The reads
// are independent; the first failure cancels the others.
func (c *Client) FetchSnapshot(ctx context.Context) (aggregate.Snapshot, error) {
	var snap aggregate.Snapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		txs, err := c.ListTransactions(gctx, core.KindExpense)
		snap.Expenses = txs
		return err
	})
	g.Go(func() error {
		txs, err := c.ListTransactions(gctx, core.KindIncome)
		snap.Incomes = txs
		return err
	})
	g.Go(func() error {
		budgets, err := c.ListBudgets(gctx)
		snap.Budgets = budgets
		return err
	})

	if err := g.Wait(); err != nil {
		return aggregate.Snapshot{}, err
	}
	return snap, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
