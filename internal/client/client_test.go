package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
	apphttp "fintrack/internal/http"
	applog "fintrack/internal/log"
	"fintrack/internal/store/memory"
)

func newAPI(t *testing.T) *Client {
	t.Helper()
	cfg := applog.DefaultConfig()
	cfg.Output = io.Discard
	srv := apphttp.NewServer(":0", memory.New(), apphttp.Options{RateLimitRPM: 1000, Logger: applog.New(cfg)})
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(func() {
		ts.Close()
		_ = srv.Shutdown(context.Background())
	})
	c, err := New(ts.URL)
	require.NoError(t, err)
	return c
}

func str(s string) *string { return &s }

func amount(c int64) *core.Money {
	m := core.Cents(c)
	return &m
}

func TestNewDefaultsBaseURL(t *testing.T) {
	c, err := New("")
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, c.BaseURL())

	c, err = New("http://example.test:8080/")
	require.NoError(t, err)
	assert.Equal(t, "http://example.test:8080", c.BaseURL())

	_, err = New("not a url")
	assert.Error(t, err)
}

func TestTransactionRoundTrip(t *testing.T) {
	c := newAPI(t)
	ctx := context.Background()

	created, err := c.CreateTransaction(ctx, core.KindExpense, core.TransactionFields{
		Description: str("Lunch"), Amount: amount(1250), Date: str("2024-05-01"), Category: str("Food"),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, int64(1250), created.Amount.Cents)

	updated, err := c.UpdateTransaction(ctx, core.KindExpense, created.ID, core.TransactionFields{
		Description: str("Dinner"), Amount: amount(2000), Date: str("2024-05-02"), Category: str("Food"),
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Dinner", updated.Description)

	list, err := c.ListTransactions(ctx, core.KindExpense)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, updated, list[0])

	incomes, err := c.ListTransactions(ctx, core.KindIncome)
	require.NoError(t, err)
	assert.NotNil(t, incomes)
	assert.Empty(t, incomes)

	require.NoError(t, c.DeleteTransaction(ctx, core.KindExpense, created.ID))

	err = c.DeleteTransaction(ctx, core.KindExpense, created.ID)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.False(t, apiErr.ServerFault())
}

func TestValidationErrorSurfacesMessage(t *testing.T) {
	c := newAPI(t)

	_, err := c.CreateBudget(context.Background(), core.BudgetFields{Category: str("Food")})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "validation failed", apiErr.Message)
}

func TestBudgetsAndSavings(t *testing.T) {
	c := newAPI(t)
	ctx := context.Background()

	b, err := c.CreateBudget(ctx, core.BudgetFields{Category: str("Food"), Limit: amount(50000)})
	require.NoError(t, err)
	budgets, err := c.ListBudgets(ctx)
	require.NoError(t, err)
	assert.Equal(t, []core.Budget{b}, budgets)
	require.NoError(t, c.DeleteBudget(ctx, b.ID))

	s, err := c.CreateSavings(ctx, core.SavingsFields{Amount: amount(10000), Date: str("2024-05-01"), Description: str("Fund")})
	require.NoError(t, err)
	savings, err := c.ListSavings(ctx)
	require.NoError(t, err)
	assert.Equal(t, []core.Savings{s}, savings)
	require.NoError(t, c.DeleteSavings(ctx, s.ID))
}

func TestFetchSnapshot(t *testing.T) {
	c := newAPI(t)
	ctx := context.Background()

	_, err := c.CreateTransaction(ctx, core.KindExpense, core.TransactionFields{
		Description: str("Rent"), Amount: amount(80000), Date: str("2024-05-01"), Category: str("Home"),
	})
	require.NoError(t, err)
	_, err = c.CreateTransaction(ctx, core.KindIncome, core.TransactionFields{
		Description: str("Salary"), Amount: amount(300000), Date: str("2024-05-01"), Category: str("Job"),
	})
	require.NoError(t, err)
	_, err = c.CreateBudget(ctx, core.BudgetFields{Category: str("Home"), Limit: amount(100000)})
	require.NoError(t, err)

	snap, err := c.FetchSnapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Expenses, 1)
	assert.Len(t, snap.Incomes, 1)
	assert.Len(t, snap.Budgets, 1)
}

func TestFetchSnapshotFailsOnAnyRead(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/budget" {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"message":"internal server error"}`))
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer ts.Close()

	c, err := New(ts.URL)
	require.NoError(t, err)

	_, err = c.FetchSnapshot(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.ServerFault())
}

func TestNetworkFailure(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	c, err := New(url)
	require.NoError(t, err)

	_, err = c.ListBudgets(context.Background())
	assert.True(t, errors.Is(err, ErrNetworkFailure), "got %v", err)
}

func TestUnknownKind(t *testing.T) {
	c, err := New("")
	require.NoError(t, err)
	_, err = c.ListTransactions(context.Background(), core.Kind("transfer"))
	assert.Error(t, err)
}
