package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"jizhang/internal/core"
	"jizhang/internal/services"
)

var testZone = time.FixedZone("UTC+8", 8*60*60)

func testCalendar() core.Calendar {
	return core.NewCalendarAt(testZone, func() time.Time {
		return time.Date(2025, 7, 15, 10, 0, 0, 0, testZone)
	})
}

type fakeReader struct {
	overview services.Overview
	view     services.ViewResult
	err      error

	gotUser  string
	gotYear  int
	gotMonth int
	gotTab   core.Tab
	gotView  core.ViewType
}

func (f *fakeReader) MonthOverview(_ context.Context, userID string, year, month int) (services.Overview, error) {
	f.gotUser, f.gotYear, f.gotMonth = userID, year, month
	return f.overview, f.err
}

func (f *fakeReader) View(_ context.Context, userID string, year, month int, tab core.Tab, view core.ViewType) (services.ViewResult, error) {
	f.gotUser, f.gotYear, f.gotMonth, f.gotTab, f.gotView = userID, year, month, tab, view
	if !tab.IsValid() {
		return services.ViewResult{}, fmt.Errorf("%w: %q", core.ErrInvalidTab, tab)
	}
	return f.view, f.err
}

type fakeWriter struct {
	ok      bool
	updated []core.Transaction
	deleted []string
}

func (f *fakeWriter) UpdateTransaction(_ context.Context, tx core.Transaction) bool {
	f.updated = append(f.updated, tx)
	return f.ok
}

func (f *fakeWriter) DeleteTransaction(_ context.Context, id string, _ core.TxType) bool {
	f.deleted = append(f.deleted, id)
	return f.ok
}

func newTestServer(reader Reader, writer Writer) *httptest.Server {
	s := NewServer(":0", reader, writer, testCalendar(), nil)
	return httptest.NewServer(s.Server.Handler)
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(&fakeReader{}, &fakeWriter{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestGetTransactions(t *testing.T) {
	reader := &fakeReader{overview: services.Overview{
		Transactions: []core.Transaction{{ID: "1", UserID: "user-1", Type: core.TypeExpense, Amount: decimal.NewFromInt(-28)}},
	}}
	ts := newTestServer(reader, &fakeWriter{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/transactions?user=user-1&year=2025&month=7")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if reader.gotUser != "user-1" || reader.gotYear != 2025 || reader.gotMonth != 7 {
		t.Errorf("reader called with %s %d-%d", reader.gotUser, reader.gotYear, reader.gotMonth)
	}

	var overview services.Overview
	if err := json.NewDecoder(resp.Body).Decode(&overview); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(overview.Transactions) != 1 {
		t.Errorf("got %d transactions", len(overview.Transactions))
	}
}

func TestGetTransactionsDefaultsToCurrentPeriod(t *testing.T) {
	reader := &fakeReader{}
	ts := newTestServer(reader, &fakeWriter{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/transactions?user=user-1")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if reader.gotYear != 2025 || reader.gotMonth != 7 {
		t.Errorf("defaults = %d-%d, want 2025-7", reader.gotYear, reader.gotMonth)
	}
}

func TestGetTransactionsRequiresUser(t *testing.T) {
	ts := newTestServer(&fakeReader{}, &fakeWriter{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/transactions")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestGetTransactionsRemoteFailure(t *testing.T) {
	ts := newTestServer(&fakeReader{err: errors.New("remote down")}, &fakeWriter{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/transactions?user=user-1")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", resp.StatusCode)
	}
}

func TestGetAnalytics(t *testing.T) {
	reader := &fakeReader{view: services.ViewResult{
		TimeBuckets: []core.TimeBucket{{Label: "5日", Unit: 5, Amount: decimal.NewFromInt(50), Percentage: 64.1}},
	}}
	ts := newTestServer(reader, &fakeWriter{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/analytics?user=user-1&year=2025&month=7&tab=income&view=year")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if reader.gotTab != core.TabIncome || reader.gotView != core.ViewYear {
		t.Errorf("tab=%s view=%s", reader.gotTab, reader.gotView)
	}
}

func TestGetAnalyticsInvalidTab(t *testing.T) {
	ts := newTestServer(&fakeReader{}, &fakeWriter{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/analytics?user=user-1&tab=everything")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestUpdateTransaction(t *testing.T) {
	writer := &fakeWriter{ok: true}
	ts := newTestServer(&fakeReader{}, writer)
	defer ts.Close()

	body := `{"user_id":"user-1","category":"交通","amount":"-60","date":"2025年07月05日","type":"expense","note":"","is_fixed":false,"id":"ignored"}`
	req, _ := http.NewRequest(http.MethodPut, ts.URL+"/api/transactions/42", strings.NewReader(body))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PUT: %v", err)
	}
	defer resp.Body.Close()

	var result map[string]bool
	json.NewDecoder(resp.Body).Decode(&result)
	if !result["success"] {
		t.Error("success = false, want true")
	}
	if len(writer.updated) != 1 || writer.updated[0].ID != "42" {
		t.Errorf("updated = %+v, want path id to win", writer.updated)
	}
}

func TestUpdateTransactionInvalidBody(t *testing.T) {
	ts := newTestServer(&fakeReader{}, &fakeWriter{ok: true})
	defer ts.Close()

	req, _ := http.NewRequest(http.MethodPut, ts.URL+"/api/transactions/42", strings.NewReader("{bad"))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PUT: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestDeleteTransaction(t *testing.T) {
	writer := &fakeWriter{ok: false}
	ts := newTestServer(&fakeReader{}, writer)
	defer ts.Close()

	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/transactions/999?type=income", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE: %v", err)
	}
	defer resp.Body.Close()

	var result map[string]bool
	json.NewDecoder(resp.Body).Decode(&result)
	if result["success"] {
		t.Error("success = true, want false for missing transaction")
	}
	if len(writer.deleted) != 1 || writer.deleted[0] != "999" {
		t.Errorf("deleted = %v", writer.deleted)
	}
}

func TestDeleteTransactionInvalidType(t *testing.T) {
	ts := newTestServer(&fakeReader{}, &fakeWriter{ok: true})
	defer ts.Close()

	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/transactions/1?type=transfer", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}
