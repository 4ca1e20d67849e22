package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/engine"
	"github.com/Veraticus/tally/internal/importer"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/storage"
	"github.com/Veraticus/tally/internal/testutil"
)

type testServer struct {
	ledger *testutil.TestLedger
	routes http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ledger := testutil.NewTestLedger(t)
	e := engine.New(ledger)
	o := importer.NewOrchestrator(importer.DefaultRegistry(importer.Account{}), e, ledger)
	return &testServer{
		ledger: ledger,
		routes: NewHandler(ledger, e, o, "rbc").Routes(),
	}
}

func (s *testServer) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.routes.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestListTransactions(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/transactions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	s.ledger.MustAppend(testutil.NewPayload("COFFEE").Amount("-3.25").Category("Dining").Build())
	rec = s.do(t, http.MethodGet, "/api/transactions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var records []model.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "COFFEE", records[0].Description)
	assert.Equal(t, "-3.25", records[0].Amount.String())
	assert.Contains(t, rec.Body.String(), `"transaction_date":"01/15/2024"`)
}

func TestApplyDiff(t *testing.T) {
	s := newTestServer(t)
	s.ledger.MustAppend(testutil.UnlabeledPayloads(3, "SHOP")...)

	body := `{
		"edited": {"0": {"category": "Groceries"}, "42": {"category": "Ghost"}},
		"added": [{
			"account_type": "Chequing",
			"account_number": 1025012345,
			"transaction_date": "2024-02-01",
			"amount": -19.99,
			"description": "HARDWARE STORE"
		}],
		"deleted": [2]
	}`
	rec := s.do(t, http.MethodPost, "/api/diff", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp diffResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []int64{0}, resp.Updated)
	require.Len(t, resp.Added, 1)
	assert.Equal(t, int64(3), resp.Added[0].ID)
	assert.Equal(t, "02/01/2024", resp.Added[0].Date)
	assert.Equal(t, 1, resp.Deleted)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, int64(42), resp.Errors[0].ID)
	assert.Contains(t, resp.Errors[0].Error, "not found")

	assert.Equal(t, "Groceries", s.ledger.MustGet(0).Category)
	assert.Len(t, s.ledger.MustScan(), 3)
}

func TestApplyDiff_Rejections(t *testing.T) {
	s := newTestServer(t)
	s.ledger.MustAppend(testutil.UnlabeledPayloads(1, "SHOP")...)

	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "malformed json", body: `{"edited":`, want: http.StatusBadRequest},
		{name: "unknown key", body: `{"renamed": []}`, want: http.StatusBadRequest},
		{name: "incomplete added row", body: `{"added": [{"description": "ONLY"}]}`, want: http.StatusBadRequest},
		{name: "added id", body: `{"added": [{"id": 9, "description": "X"}]}`, want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/api/diff", tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())

			var resp map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp["error"])
		})
	}
	assert.Len(t, s.ledger.MustScan(), 1)
}

func TestImportFile(t *testing.T) {
	s := newTestServer(t)
	export := `"Account Type","Account Number","Transaction Date","Cheque Number","Description 1","Description 2","CAD$","USD$"
Chequing,00102-5012345,1/5/2024,,"TIM HORTONS #22","",-4.50,
Chequing,00102-5012345,1/5/2024,,"TIM HORTONS #22","",-4.50,
Chequing,00102-5012345,1/6/2024,,"BOOKSTORE","",-22.00,
`
	rec := s.do(t, http.MethodPost, "/api/import", export)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Records    []model.Record `json:"records"`
		Inserted   int            `json:"inserted"`
		Duplicates int            `json:"duplicates"`
		Predicted  bool           `json:"predicted"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Inserted, "repeated rows in one export are separate transactions")
	assert.Zero(t, resp.Duplicates)
	assert.False(t, resp.Predicted)
	require.Len(t, resp.Records, 3)
	assert.Empty(t, resp.Records[0].Category)

	rec = s.do(t, http.MethodPost, "/api/import?format=qif", export)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClearTransactions(t *testing.T) {
	s := newTestServer(t)
	s.ledger.MustAppend(testutil.UnlabeledPayloads(2, "SHOP")...)

	rec := s.do(t, http.MethodDelete, "/api/transactions", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, s.ledger.MustScan())

	next, err := s.ledger.NextID(context.Background())
	require.NoError(t, err)
	assert.Zero(t, next)
}

func TestSummary(t *testing.T) {
	s := newTestServer(t)
	s.ledger.MustAppend(
		testutil.NewPayload("PAYROLL").Date("03/01/2024").Amount("1200").Category("Salary").Build(),
		testutil.NewPayload("GROCER").Date("03/04/2024").Amount("-80").Category("Groceries").Build(),
	)

	rec := s.do(t, http.MethodGet, "/api/summary?start=03/01/2024&end=03/31/2024", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var flow struct {
		Net      string `json:"net"`
		Expenses []struct {
			Category string `json:"category"`
			Amount   string `json:"amount"`
		} `json:"expenses"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &flow))
	assert.Equal(t, "1120", flow.Net)
	require.Len(t, flow.Expenses, 1)
	assert.Equal(t, "Groceries", flow.Expenses[0].Category)
	assert.Equal(t, "80", flow.Expenses[0].Amount)

	rec = s.do(t, http.MethodGet, "/api/summary?start=03/31/2024&end=03/01/2024", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{err: fmt.Errorf("wrapped: %w", common.ErrWriteConflict), want: http.StatusConflict},
		{err: common.ErrNotFound, want: http.StatusNotFound},
		{err: common.ErrStorageUnavailable, want: http.StatusServiceUnavailable},
		{err: common.ErrInvalidField, want: http.StatusBadRequest},
		{err: common.ErrInvalidValue, want: http.StatusBadRequest},
		{err: storage.ErrInvalidDateRange, want: http.StatusBadRequest},
		{err: &http.MaxBytesError{Limit: 1}, want: http.StatusRequestEntityTooLarge},
		{err: common.ErrClassifierContract, want: http.StatusInternalServerError},
		{err: errors.New("surprise"), want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	routes := newTestServer(t).routes
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, addr, routes)
	}()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/health")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
