package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fintrack/internal/aggregate"
	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/store"
	"fintrack/internal/store/memory"
)

func newTestServer(t *testing.T, st store.Store) *Server {
	t.Helper()
	if st == nil {
		st = memory.New()
	}
	cfg := applog.DefaultConfig()
	cfg.Output = io.Discard
	srv := NewServer(":0", st, Options{RateLimitRPM: 1000, CORSOrigin: "*", Logger: applog.New(cfg)})
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return v
}

func TestHealthReadyMetrics(t *testing.T) {
	srv := newTestServer(t, nil)

	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		rr := do(t, srv, http.MethodGet, path, "")
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d body=%s", path, rr.Code, rr.Body.String())
		}
	}

	rr := do(t, srv, http.MethodGet, "/metrics", "")
	if !strings.Contains(rr.Body.String(), "http_requests_total") {
		t.Errorf("metrics missing request counter: %s", rr.Body.String())
	}
}

type pingFailStore struct{ store.Store }

func (pingFailStore) Ping(context.Context) error { return errors.New("down") }

func TestReadyReportsStoreFailure(t *testing.T) {
	srv := newTestServer(t, pingFailStore{memory.New()})
	rr := do(t, srv, http.MethodGet, "/readyz", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d", rr.Code)
	}
}

func TestTransactionLifecycle(t *testing.T) {
	for _, resource := range []string{"/expense", "/income"} {
		t.Run(resource, func(t *testing.T) {
			srv := newTestServer(t, nil)

			rr := do(t, srv, http.MethodGet, resource, "")
			if rr.Code != http.StatusOK || strings.TrimSpace(rr.Body.String()) != "[]" {
				t.Fatalf("empty list: %d %s", rr.Code, rr.Body.String())
			}

			rr = do(t, srv, http.MethodPost, resource, `{"description":"Lunch","amount":12.5,"date":"2024-05-01","category":"Food"}`)
			if rr.Code != http.StatusCreated {
				t.Fatalf("create status=%d body=%s", rr.Code, rr.Body.String())
			}
			created := decode[core.Transaction](t, rr)
			if created.ID == "" || created.Amount.Cents != 1250 {
				t.Fatalf("unexpected record: %+v", created)
			}
			if !strings.Contains(rr.Body.String(), `"amount":12.5`) {
				t.Errorf("amount not encoded as number: %s", rr.Body.String())
			}

			rr = do(t, srv, http.MethodPut, resource+"/"+created.ID, `{"description":"Dinner","amount":"20","date":"2024-05-02","category":"Food"}`)
			if rr.Code != http.StatusOK {
				t.Fatalf("update status=%d body=%s", rr.Code, rr.Body.String())
			}
			updated := decode[core.Transaction](t, rr)
			if updated.ID != created.ID || updated.Description != "Dinner" || updated.Amount.Cents != 2000 {
				t.Fatalf("unexpected update: %+v", updated)
			}

			rr = do(t, srv, http.MethodGet, resource, "")
			list := decode[[]core.Transaction](t, rr)
			if len(list) != 1 || list[0].Description != "Dinner" {
				t.Fatalf("list after update: %+v", list)
			}

			rr = do(t, srv, http.MethodDelete, resource+"/"+created.ID, "")
			if rr.Code != http.StatusOK {
				t.Fatalf("delete status=%d", rr.Code)
			}
			if msg := decode[map[string]string](t, rr)["message"]; msg == "" {
				t.Error("delete response has no message")
			}

			rr = do(t, srv, http.MethodDelete, resource+"/"+created.ID, "")
			if rr.Code != http.StatusNotFound {
				t.Fatalf("second delete status=%d", rr.Code)
			}
		})
	}
}

func TestTransactionErrors(t *testing.T) {
	srv := newTestServer(t, nil)
	absent := core.NewID()

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		msg    string
	}{
		{"missing field", http.MethodPost, "/expense", `{"description":"x","amount":1,"date":"2024-01-01"}`, http.StatusBadRequest, "validation failed"},
		{"empty string field", http.MethodPost, "/expense", `{"description":"","amount":1,"date":"2024-01-01","category":"A"}`, http.StatusBadRequest, "validation failed"},
		{"negative amount", http.MethodPost, "/income", `{"description":"x","amount":-1,"date":"2024-01-01","category":"A"}`, http.StatusBadRequest, "validation failed"},
		{"malformed json", http.MethodPost, "/expense", `{"description":`, http.StatusBadRequest, "invalid request body"},
		{"bad amount", http.MethodPost, "/expense", `{"description":"x","amount":"abc","date":"2024-01-01","category":"A"}`, http.StatusBadRequest, "invalid request body"},
		{"amount out of range", http.MethodPost, "/expense", `{"description":"x","amount":200000000000000000,"date":"2024-01-01","category":"A"}`, http.StatusBadRequest, "invalid request body"},
		{"update amount out of range", http.MethodPut, "/income/" + absent, `{"description":"x","amount":"2e17","date":"2024-01-01","category":"A"}`, http.StatusBadRequest, "invalid request body"},
		{"update absent", http.MethodPut, "/expense/" + absent, `{"description":"x","amount":1,"date":"2024-01-01","category":"A"}`, http.StatusNotFound, "record not found"},
		{"update malformed id", http.MethodPut, "/expense/not-a-uuid", `{"description":"x","amount":1,"date":"2024-01-01","category":"A"}`, http.StatusBadRequest, "invalid id"},
		{"delete absent", http.MethodDelete, "/income/" + absent, "", http.StatusNotFound, "record not found"},
		{"delete malformed id", http.MethodDelete, "/income/42", "", http.StatusBadRequest, "invalid id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, srv, tt.method, tt.path, tt.body)
			if rr.Code != tt.status {
				t.Fatalf("status=%d want %d body=%s", rr.Code, tt.status, rr.Body.String())
			}
			if got := decode[map[string]string](t, rr)["message"]; got != tt.msg {
				t.Errorf("message=%q want %q", got, tt.msg)
			}
		})
	}

	rr := do(t, srv, http.MethodGet, "/expense", "")
	if strings.TrimSpace(rr.Body.String()) != "[]" {
		t.Errorf("failed requests must not persist anything: %s", rr.Body.String())
	}
}

func TestSubmittedFieldsRoundTrip(t *testing.T) {
	srv := newTestServer(t, nil)

	sent := core.Transaction{Description: "  Lunch ", Amount: core.Cents(1250), Date: "2024-05-03T12:00:00Z", Category: "food "}
	body, err := json.Marshal(sent)
	if err != nil {
		t.Fatal(err)
	}
	rr := do(t, srv, http.MethodPost, "/expense", string(body))
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status=%d body=%s", rr.Code, rr.Body.String())
	}
	created := decode[core.Transaction](t, rr)
	sent.ID = created.ID
	if created != sent {
		t.Fatalf("created %+v, want %+v", created, sent)
	}

	list := decode[[]core.Transaction](t, do(t, srv, http.MethodGet, "/expense", ""))
	if len(list) != 1 || list[0] != sent {
		t.Fatalf("list %+v, want [%+v]", list, sent)
	}
}

func TestCategoryVariantsStayDistinct(t *testing.T) {
	st := memory.New()
	srv := newTestServer(t, st)

	for _, body := range []string{
		`{"description":"Groceries","amount":300,"date":"2024-05-01","category":"Food"}`,
		`{"description":"Takeaway","amount":500,"date":"2024-05-02","category":"food "}`,
		`{"description":"Snacks","amount":100,"date":"2024-05-03","category":"FOOD"}`,
	} {
		if rr := do(t, srv, http.MethodPost, "/expense", body); rr.Code != http.StatusCreated {
			t.Fatalf("create status=%d body=%s", rr.Code, rr.Body.String())
		}
	}
	if rr := do(t, srv, http.MethodPost, "/budget", `{"category":"Food","limit":1000}`); rr.Code != http.StatusCreated {
		t.Fatalf("budget status=%d body=%s", rr.Code, rr.Body.String())
	}

	snap, err := store.LoadSnapshot(context.Background(), st)
	if err != nil {
		t.Fatal(err)
	}
	view := aggregate.Build(snap)

	if len(view.Budgets) != 1 || view.Budgets[0].Spent.Cents != 30000 || view.Budgets[0].Status != aggregate.StatusOnTrack {
		t.Fatalf("only the exact category counts towards the budget: %+v", view.Budgets)
	}
	if len(view.ExpenseByCategory) != 3 {
		t.Fatalf("want 3 category groups, got %+v", view.ExpenseByCategory)
	}
	if got := view.ExpenseByCategory[1]; got.Name != "food " || got.Amount.Cents != 50000 {
		t.Errorf("group[1] = %+v", got)
	}
}

func TestBudgetEndpoints(t *testing.T) {
	srv := newTestServer(t, nil)

	rr := do(t, srv, http.MethodPost, "/budget", `{"category":"Food","limit":500}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status=%d body=%s", rr.Code, rr.Body.String())
	}
	b := decode[core.Budget](t, rr)

	rr = do(t, srv, http.MethodPost, "/budget", `{"category":"Food","limit":100}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("duplicate status=%d", rr.Code)
	}

	rr = do(t, srv, http.MethodPost, "/budget", `{"category":"Rent"}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("missing limit status=%d", rr.Code)
	}

	rr = do(t, srv, http.MethodPut, "/budget/"+b.ID, `{"category":"Food","limit":600}`)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("update status=%d, want 405", rr.Code)
	}
	if rr.Header().Get("Allow") != http.MethodDelete {
		t.Errorf("Allow=%q", rr.Header().Get("Allow"))
	}

	rr = do(t, srv, http.MethodGet, "/budget", "")
	if list := decode[[]core.Budget](t, rr); len(list) != 1 || list[0].Limit.Cents != 50000 {
		t.Fatalf("list: %+v", list)
	}

	rr = do(t, srv, http.MethodDelete, "/budget/"+b.ID, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("delete status=%d", rr.Code)
	}
	rr = do(t, srv, http.MethodDelete, "/budget/"+b.ID, "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("second delete status=%d", rr.Code)
	}
}

func TestSavingsEndpoints(t *testing.T) {
	srv := newTestServer(t, nil)

	rr := do(t, srv, http.MethodPost, "/savings", `{"amount":100,"date":"2024-05-01","description":"Emergency fund"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status=%d body=%s", rr.Code, rr.Body.String())
	}
	sv := decode[core.Savings](t, rr)

	rr = do(t, srv, http.MethodPut, "/savings/"+sv.ID, `{}`)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("update status=%d, want 405", rr.Code)
	}

	rr = do(t, srv, http.MethodDelete, "/savings/"+sv.ID, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("delete status=%d body=%s", rr.Code, rr.Body.String())
	}
	rr = do(t, srv, http.MethodGet, "/savings", "")
	if strings.TrimSpace(rr.Body.String()) != "[]" {
		t.Errorf("savings not deleted: %s", rr.Body.String())
	}
}

func TestDashboardPages(t *testing.T) {
	st := memory.New()
	ctx := context.Background()
	str := func(s string) *string { return &s }
	amt := func(c int64) *core.Money { m := core.Cents(c); return &m }

	if _, err := st.CreateBudget(ctx, core.BudgetFields{Category: str("Food"), Limit: amt(100000)}); err != nil {
		t.Fatal(err)
	}
	if _, err := st.CreateTransaction(ctx, core.KindExpense, core.TransactionFields{
		Description: str("Groceries"), Amount: amt(95000), Date: str("2024-05-03"), Category: str("Food"),
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := st.CreateTransaction(ctx, core.KindIncome, core.TransactionFields{
		Description: str("Salary"), Amount: amt(300000), Date: str("2024-05-01"), Category: str("Job"),
	}); err != nil {
		t.Fatal(err)
	}

	srv := newTestServer(t, st)

	rr := do(t, srv, http.MethodGet, "/", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("dashboard status=%d body=%s", rr.Code, rr.Body.String())
	}
	body := rr.Body.String()
	for _, want := range []string{"Food", "950.00", "95.0%", "Over budget", "2024-05", "2050.00"} {
		if !strings.Contains(body, want) {
			t.Errorf("dashboard missing %q", want)
		}
	}

	rr = do(t, srv, http.MethodGet, "/calendar?month=2024-05", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("calendar status=%d", rr.Code)
	}
	for _, want := range []string{"2024-05-03", "heat-4", "2024-04", "2024-06"} {
		if !strings.Contains(rr.Body.String(), want) {
			t.Errorf("calendar missing %q", want)
		}
	}
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodOptions, "/expense", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("status=%d", rr.Code)
	}
	if rr.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("allow origin=%q", rr.Header().Get("Access-Control-Allow-Origin"))
	}
}

func TestRateLimitAppliesToWrites(t *testing.T) {
	cfg := applog.DefaultConfig()
	cfg.Output = io.Discard
	srv := NewServer(":0", memory.New(), Options{RateLimitRPM: 1, Logger: applog.New(cfg)})
	defer srv.Shutdown(context.Background())

	body := `{"category":"A","limit":1}`
	post := func() int {
		req := httptest.NewRequest(http.MethodPost, "/budget", bytes.NewBufferString(body))
		rr := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rr, req)
		return rr.Code
	}
	if code := post(); code != http.StatusCreated {
		t.Fatalf("first write=%d", code)
	}
	if code := post(); code != http.StatusTooManyRequests {
		t.Fatalf("second write=%d, want 429", code)
	}
	if rr := do(t, srv, http.MethodGet, "/budget", ""); rr.Code != http.StatusOK {
		t.Fatalf("reads are not limited, got %d", rr.Code)
	}
}
