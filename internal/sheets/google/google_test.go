package google

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	goption "google.golang.org/api/option"

	"fintrack/internal/core"
	"fintrack/internal/sheets"
)

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Config{})
	if err == nil || err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	_, err := New(context.Background(), Config{SpreadsheetID: "sid"})
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNew_UnreadableCredentialsFile(t *testing.T) {
	_, err := New(context.Background(), Config{SpreadsheetID: "sid", CredentialsFile: "/nonexistent/creds.json"})
	if err == nil || !strings.Contains(err.Error(), "read service account file") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSheetTitle(t *testing.T) {
	tests := []struct {
		prefix, name, want string
	}{
		{"", "expense", "Expense"},
		{"", "savings", "Savings"},
		{"2024 ", "budget", "2024 Budget"},
	}
	for _, tt := range tests {
		c := &Client{sheetPrefix: tt.prefix}
		if got := c.SheetTitle(tt.name); got != tt.want {
			t.Errorf("SheetTitle(%q) with prefix %q = %q, want %q", tt.name, tt.prefix, got, tt.want)
		}
	}
}

type fakeSheetsAPI struct {
	mu       sync.Mutex
	existing []string
	calls    []string
	written  [][]any
}

func (f *fakeSheetsAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, r.Method+" "+r.URL.Path)
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet:
		var sheetsJSON []map[string]any
		for _, title := range f.existing {
			sheetsJSON = append(sheetsJSON, map[string]any{"properties": map[string]any{"title": title}})
		}
		json.NewEncoder(w).Encode(map[string]any{"spreadsheetId": "sid", "sheets": sheetsJSON})
	case r.Method == http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		var vr struct {
			Values [][]any `json:"values"`
		}
		json.Unmarshal(body, &vr)
		f.written = vr.Values
		io.WriteString(w, `{}`)
	default:
		io.WriteString(w, `{}`)
	}
}

func newTestClient(t *testing.T, api *fakeSheetsAPI) *Client {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	c, err := New(context.Background(), Config{SpreadsheetID: "sid"},
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestReplaceTable_ExistingSheet(t *testing.T) {
	api := &fakeSheetsAPI{existing: []string{"Expense"}}
	c := newTestClient(t, api)

	tbl := sheets.TransactionTable(core.KindExpense, []core.Transaction{
		{ID: "a", Description: "Lunch", Amount: core.Cents(1250), Date: "2024-05-01", Category: "Food"},
	})
	if err := c.ReplaceTable(context.Background(), tbl); err != nil {
		t.Fatalf("ReplaceTable: %v", err)
	}

	if len(api.calls) != 3 {
		t.Fatalf("expected get, clear, update; got %v", api.calls)
	}
	if !strings.HasSuffix(api.calls[1], ":clear") {
		t.Errorf("second call should clear, got %s", api.calls[1])
	}
	if !strings.HasPrefix(api.calls[2], "PUT ") {
		t.Errorf("third call should update, got %s", api.calls[2])
	}
	if len(api.written) != 2 || api.written[1][2] != "Lunch" {
		t.Errorf("unexpected written values: %v", api.written)
	}
}

func TestReplaceTable_CreatesMissingSheet(t *testing.T) {
	api := &fakeSheetsAPI{}
	c := newTestClient(t, api)

	if err := c.ReplaceTable(context.Background(), sheets.BudgetTable(nil)); err != nil {
		t.Fatalf("ReplaceTable: %v", err)
	}
	if len(api.calls) != 4 || !strings.HasSuffix(api.calls[1], ":batchUpdate") {
		t.Fatalf("expected sheet creation before writing, got %v", api.calls)
	}
}

func TestReplaceTable_NilService(t *testing.T) {
	c := &Client{spreadsheetID: "sid"}
	if err := c.ReplaceTable(context.Background(), sheets.SavingsTable(nil)); err == nil {
		t.Fatal("expected error with nil service")
	}
}
