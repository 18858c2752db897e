package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/autoweave/payroll-engine/api"
	"github.com/autoweave/payroll-engine/gateway"
	"github.com/autoweave/payroll-engine/payroll"
	"github.com/autoweave/payroll-engine/reports"
	"github.com/autoweave/payroll-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestServer(t *testing.T) (*httptest.Server, *gateway.Mock) {
	t.Helper()

	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	gw := gateway.NewMock("test_secret")
	log := zap.NewNop().Sugar()

	ledger := payroll.NewLedger(store)
	settler := payroll.NewSettler(store, gw, 0, log)
	reportSvc, err := reports.NewService(store, store, t.TempDir())
	require.NoError(t, err)

	handler := api.NewHandler(store, ledger, settler, reportSvc, log)
	srv := httptest.NewServer(api.NewRouter(handler))
	t.Cleanup(srv.Close)
	return srv, gw
}

// doJSON issues a request with an optional JSON body and decodes the JSON
// response into out (when out is non-nil).
func doJSON(t *testing.T, method, url string, body, out any) int {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func createWorker(t *testing.T, baseURL string, body map[string]any) api.WorkerDTO {
	t.Helper()
	var dto api.WorkerDTO
	status := doJSON(t, http.MethodPost, baseURL+"/api/workers", body, &dto)
	require.Equal(t, http.StatusCreated, status)
	return dto
}

func addShift(t *testing.T, baseURL, workerID string, body map[string]any) api.WorkerDTO {
	t.Helper()
	var dto api.WorkerDTO
	status := doJSON(t, http.MethodPost, baseURL+"/api/workers/"+workerID+"/shifts", body, &dto)
	require.Equal(t, http.StatusCreated, status)
	return dto
}

// =============================================================================
// WORKERS
// =============================================================================

func TestCreateWorker(t *testing.T) {
	srv, _ := newTestServer(t)

	// GIVEN: A create request without an explicit rate
	// THEN: The default full-shift rate applies
	dto := createWorker(t, srv.URL, map[string]any{"name": "Ravi", "contact": "+91-98765"})
	assert.NotEmpty(t, dto.ID)
	assert.Equal(t, 750.0, dto.ShiftRate)
	assert.Equal(t, 0.0, dto.TotalSalary)
	assert.Nil(t, dto.LastPaymentDate)
	assert.Empty(t, dto.Shifts)

	// Explicit rate is honored.
	dto = createWorker(t, srv.URL, map[string]any{"name": "Asha", "contact": "+91-900", "shiftRate": 1000})
	assert.Equal(t, 1000.0, dto.ShiftRate)
}

func TestCreateWorker_Validation(t *testing.T) {
	srv, _ := newTestServer(t)

	var errResp api.ErrorResponse
	status := doJSON(t, http.MethodPost, srv.URL+"/api/workers",
		map[string]any{"contact": "+91-900"}, &errResp)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "validation", errResp.Code)

	status = doJSON(t, http.MethodPost, srv.URL+"/api/workers",
		map[string]any{"name": "Asha", "contact": "+91-900", "shiftRate": -5}, &errResp)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestGetWorker_NotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	var errResp api.ErrorResponse
	status := doJSON(t, http.MethodGet, srv.URL+"/api/workers/nope", nil, &errResp)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "not_found", errResp.Code)
}

func TestListWorkers(t *testing.T) {
	srv, _ := newTestServer(t)
	createWorker(t, srv.URL, map[string]any{"name": "Ravi", "contact": "+91-1"})
	createWorker(t, srv.URL, map[string]any{"name": "Asha", "contact": "+91-2"})

	var list []api.WorkerDTO
	status := doJSON(t, http.MethodGet, srv.URL+"/api/workers", nil, &list)
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, list, 2)
}

func TestDeleteWorker(t *testing.T) {
	srv, _ := newTestServer(t)
	dto := createWorker(t, srv.URL, map[string]any{"name": "Ravi", "contact": "+91-1"})

	status := doJSON(t, http.MethodDelete, srv.URL+"/api/workers/"+dto.ID, nil, nil)
	assert.Equal(t, http.StatusOK, status)

	status = doJSON(t, http.MethodGet, srv.URL+"/api/workers/"+dto.ID, nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

// =============================================================================
// SHIFTS
// =============================================================================

func TestAddShift_DerivedTotals(t *testing.T) {
	// GIVEN: A worker at rate 750
	// WHEN: Adding a default shift and a six-hour shift
	// THEN: Totals are derived from unpaid shifts (750 + 563)

	srv, _ := newTestServer(t)
	w := createWorker(t, srv.URL, map[string]any{"name": "Ravi", "contact": "+91-1"})

	dto := addShift(t, srv.URL, w.ID, map[string]any{})
	require.Len(t, dto.Shifts, 1)
	assert.Equal(t, 8.0, dto.Shifts[0].Hours)
	assert.Equal(t, 750.0, dto.Shifts[0].Amount)
	assert.False(t, dto.Shifts[0].IsPaid)
	assert.Equal(t, 750.0, dto.TotalSalary)

	dto = addShift(t, srv.URL, w.ID, map[string]any{"hours": 6})
	assert.Equal(t, 1313.0, dto.TotalSalary)
	assert.Equal(t, 14.0, dto.TotalHours)
}

func TestAddShift_Validation(t *testing.T) {
	srv, _ := newTestServer(t)
	w := createWorker(t, srv.URL, map[string]any{"name": "Ravi", "contact": "+91-1"})

	status := doJSON(t, http.MethodPost, srv.URL+"/api/workers/"+w.ID+"/shifts",
		map[string]any{"hours": 0}, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status = doJSON(t, http.MethodPost, srv.URL+"/api/workers/"+w.ID+"/shifts",
		map[string]any{"date": "02/05/2026"}, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestDeleteShift(t *testing.T) {
	srv, _ := newTestServer(t)
	w := createWorker(t, srv.URL, map[string]any{"name": "Ravi", "contact": "+91-1"})
	dto := addShift(t, srv.URL, w.ID, map[string]any{})

	var after api.WorkerDTO
	status := doJSON(t, http.MethodDelete,
		srv.URL+"/api/workers/"+w.ID+"/shifts/"+dto.Shifts[0].ID, nil, &after)
	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, after.Shifts)
	assert.Equal(t, 0.0, after.TotalSalary)

	status = doJSON(t, http.MethodDelete,
		srv.URL+"/api/workers/"+w.ID+"/shifts/nope", nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestShiftStats(t *testing.T) {
	srv, _ := newTestServer(t)
	w := createWorker(t, srv.URL, map[string]any{"name": "Ravi", "contact": "+91-1"})
	addShift(t, srv.URL, w.ID, map[string]any{})

	var stats []api.WorkerStatsDTO
	status := doJSON(t, http.MethodGet, srv.URL+"/api/workers/stats?timeRange=week", nil, &stats)
	assert.Equal(t, http.StatusOK, status)
	require.Len(t, stats, 1)
	assert.Equal(t, w.ID, stats[0].WorkerID)
	assert.Equal(t, 1, stats[0].ShiftCount)

	status = doJSON(t, http.MethodGet, srv.URL+"/api/workers/stats?timeRange=decade", nil, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

// =============================================================================
// SETTLEMENT
// =============================================================================

func TestPay_ManualSettlement(t *testing.T) {
	srv, _ := newTestServer(t)
	w := createWorker(t, srv.URL, map[string]any{"name": "Ravi", "contact": "+91-1"})
	addShift(t, srv.URL, w.ID, map[string]any{})

	var dto api.WorkerDTO
	status := doJSON(t, http.MethodPost, srv.URL+"/api/workers/"+w.ID+"/pay", nil, &dto)
	assert.Equal(t, http.StatusOK, status)
	require.Len(t, dto.Payments, 1)
	assert.Equal(t, 750.0, dto.Payments[0].Amount)
	assert.Equal(t, "manual", dto.Payments[0].Method)
	assert.Len(t, dto.Payments[0].ShiftIDs, 1)
	assert.Equal(t, 0.0, dto.TotalSalary)
	assert.NotNil(t, dto.LastPaymentDate)

	// Settling again has nothing to cover.
	var errResp api.ErrorResponse
	status = doJSON(t, http.MethodPost, srv.URL+"/api/workers/"+w.ID+"/pay", nil, &errResp)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "nothing_due", errResp.Code)
}

func TestCreateOrder(t *testing.T) {
	srv, _ := newTestServer(t)
	w := createWorker(t, srv.URL, map[string]any{"name": "Ravi", "contact": "+91-1"})
	addShift(t, srv.URL, w.ID, map[string]any{})

	var order gateway.Order
	status := doJSON(t, http.MethodPost, srv.URL+"/api/workers/"+w.ID+"/create-order", nil, &order)
	assert.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, order.ID)
	assert.Equal(t, int64(75000), order.AmountMinor, "due 750 in minor units")
	assert.Equal(t, gateway.Currency, order.Currency)
}

func TestCreateOrder_NothingDue(t *testing.T) {
	srv, _ := newTestServer(t)
	w := createWorker(t, srv.URL, map[string]any{"name": "Ravi", "contact": "+91-1"})

	var errResp api.ErrorResponse
	status := doJSON(t, http.MethodPost, srv.URL+"/api/workers/"+w.ID+"/create-order", nil, &errResp)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "nothing_due", errResp.Code)
}

func TestCreateOrder_GatewayDown(t *testing.T) {
	srv, gw := newTestServer(t)
	w := createWorker(t, srv.URL, map[string]any{"name": "Ravi", "contact": "+91-1"})
	addShift(t, srv.URL, w.ID, map[string]any{})
	gw.Fail = true

	var errResp api.ErrorResponse
	status := doJSON(t, http.MethodPost, srv.URL+"/api/workers/"+w.ID+"/create-order", nil, &errResp)
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, "gateway_unavailable", errResp.Code)
}

func TestVerifyPayment_FullFlow(t *testing.T) {
	// The complete gateway settlement round trip against a live router:
	// create order, sign like the provider would, verify, settle.

	srv, gw := newTestServer(t)
	w := createWorker(t, srv.URL, map[string]any{"name": "Ravi", "contact": "+91-1"})
	addShift(t, srv.URL, w.ID, map[string]any{})

	var order gateway.Order
	status := doJSON(t, http.MethodPost, srv.URL+"/api/workers/"+w.ID+"/create-order", nil, &order)
	require.Equal(t, http.StatusOK, status)

	var resp api.VerifyPaymentResponse
	status = doJSON(t, http.MethodPost, srv.URL+"/api/workers/"+w.ID+"/verify-payment",
		map[string]any{
			"orderId":   order.ID,
			"paymentId": "pay_001",
			"signature": gw.SignPayment(order.ID, "pay_001"),
		}, &resp)
	assert.Equal(t, http.StatusOK, status)

	require.Len(t, resp.Worker.Payments, 1)
	assert.Equal(t, "gateway", resp.Worker.Payments[0].Method)
	assert.Equal(t, order.ID, resp.Worker.Payments[0].GatewayOrderID)
	assert.Equal(t, 0.0, resp.Worker.TotalSalary)
}

func TestVerifyPayment_TamperedSignature(t *testing.T) {
	srv, _ := newTestServer(t)
	w := createWorker(t, srv.URL, map[string]any{"name": "Ravi", "contact": "+91-1"})
	addShift(t, srv.URL, w.ID, map[string]any{})

	var order gateway.Order
	status := doJSON(t, http.MethodPost, srv.URL+"/api/workers/"+w.ID+"/create-order", nil, &order)
	require.Equal(t, http.StatusOK, status)

	var errResp api.ErrorResponse
	status = doJSON(t, http.MethodPost, srv.URL+"/api/workers/"+w.ID+"/verify-payment",
		map[string]any{
			"orderId":   order.ID,
			"paymentId": "pay_001",
			"signature": "deadbeef",
		}, &errResp)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "signature_mismatch", errResp.Code)

	// The ledger is untouched.
	var dto api.WorkerDTO
	doJSON(t, http.MethodGet, srv.URL+"/api/workers/"+w.ID, nil, &dto)
	assert.Empty(t, dto.Payments)
	assert.Equal(t, 750.0, dto.TotalSalary)
}

func TestVerifyPayment_Replay(t *testing.T) {
	srv, gw := newTestServer(t)
	w := createWorker(t, srv.URL, map[string]any{"name": "Ravi", "contact": "+91-1"})
	addShift(t, srv.URL, w.ID, map[string]any{})

	var order gateway.Order
	require.Equal(t, http.StatusOK,
		doJSON(t, http.MethodPost, srv.URL+"/api/workers/"+w.ID+"/create-order", nil, &order))

	body := map[string]any{
		"orderId":   order.ID,
		"paymentId": "pay_001",
		"signature": gw.SignPayment(order.ID, "pay_001"),
	}
	require.Equal(t, http.StatusOK,
		doJSON(t, http.MethodPost, srv.URL+"/api/workers/"+w.ID+"/verify-payment", body, nil))

	var errResp api.ErrorResponse
	status := doJSON(t, http.MethodPost, srv.URL+"/api/workers/"+w.ID+"/verify-payment", body, &errResp)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "order_settled", errResp.Code)
}

// =============================================================================
// REPORTS
// =============================================================================

func TestReports_GenerateListDownloadDelete(t *testing.T) {
	srv, _ := newTestServer(t)
	w := createWorker(t, srv.URL, map[string]any{"name": "Ravi", "contact": "+91-1"})
	addShift(t, srv.URL, w.ID, map[string]any{"date": "2026-05-10"})

	var genResp api.GenerateReportResponse
	status := doJSON(t, http.MethodPost, srv.URL+"/api/reports/generate",
		map[string]any{
			"reportType": "worker_attendance",
			"startDate":  "2026-05-01",
			"endDate":    "2026-05-31",
			"format":     "pdf",
		}, &genResp)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, genResp.Success)
	assert.Greater(t, genResp.Report.FileSize, int64(0))
	assert.Equal(t, fmt.Sprintf("/api/reports/%s/download", genResp.Report.ID), genResp.Report.DownloadURL)

	var list []api.ReportDTO
	status = doJSON(t, http.MethodGet, srv.URL+"/api/reports", nil, &list)
	assert.Equal(t, http.StatusOK, status)
	require.Len(t, list, 1)

	resp, err := http.Get(srv.URL + genResp.Report.DownloadURL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), genResp.Report.FileName)

	status = doJSON(t, http.MethodDelete, srv.URL+"/api/reports/"+genResp.Report.ID, nil, nil)
	assert.Equal(t, http.StatusOK, status)

	resp, err = http.Get(srv.URL + genResp.Report.DownloadURL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGenerateReport_Validation(t *testing.T) {
	srv, _ := newTestServer(t)

	var errResp api.ErrorResponse
	status := doJSON(t, http.MethodPost, srv.URL+"/api/reports/generate",
		map[string]any{"reportType": "worker_attendance"}, &errResp)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "validation", errResp.Code)

	status = doJSON(t, http.MethodPost, srv.URL+"/api/reports/generate",
		map[string]any{
			"reportType": "machine_utilization",
			"startDate":  "2026-05-01",
			"endDate":    "2026-05-31",
			"format":     "pdf",
		}, &errResp)
	assert.Equal(t, http.StatusBadRequest, status)
}
