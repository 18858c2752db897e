/*
handlers.go - HTTP API handlers for the payroll engine

PURPOSE:
  Exposes the payroll ledger and settlement protocol via REST. Handles
  HTTP request/response, JSON serialization, and delegates to domain
  logic.

ENDPOINTS:
  Workers:
    GET    /api/workers                         List with derived totals
    GET    /api/workers/stats                   Shift counts per worker
    POST   /api/workers                         Create worker
    GET    /api/workers/{id}                    Worker details
    DELETE /api/workers/{id}                    Delete worker + ledger
    POST   /api/workers/{id}/shifts             Append shift
    DELETE /api/workers/{id}/shifts/{shiftID}   Remove one shift

  Settlement:
    POST   /api/workers/{id}/pay                Manual settlement
    POST   /api/workers/{id}/create-order       Begin gateway settlement
    POST   /api/workers/{id}/verify-payment     Complete gateway settlement

  Reports:
    POST   /api/reports/generate                Generate attendance report
    GET    /api/reports                         Recent report metadata
    GET    /api/reports/{id}/download           Download file
    DELETE /api/reports/{id}                    Delete report

ERROR HANDLING:
  Domain errors keep their kind all the way out:
  - not found                      -> 404
  - nothing due / bad signature    -> 400 (distinct codes)
  - expired/replayed order, write
    conflict                       -> 409
  - gateway upstream failure       -> 502 (retryable by the caller)

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - payroll/errors.go: The error taxonomy being mapped
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/autoweave/payroll-engine/gateway"
	"github.com/autoweave/payroll-engine/payroll"
	"github.com/autoweave/payroll-engine/reports"
)

// recentReportLimit caps the report listing.
const recentReportLimit = 10

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Workers payroll.WorkerStore
	Ledger  *payroll.Ledger
	Settler *payroll.Settler
	Reports *reports.Service
	Log     *zap.SugaredLogger
}

// NewHandler creates a new handler.
func NewHandler(workers payroll.WorkerStore, ledger *payroll.Ledger, settler *payroll.Settler, reportSvc *reports.Service, log *zap.SugaredLogger) *Handler {
	return &Handler{
		Workers: workers,
		Ledger:  ledger,
		Settler: settler,
		Reports: reportSvc,
		Log:     log,
	}
}

// =============================================================================
// WORKER HANDLERS
// =============================================================================

// ListWorkers returns all workers with derived totals, newest first.
func (h *Handler) ListWorkers(w http.ResponseWriter, r *http.Request) {
	workers, err := h.Workers.ListWorkers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list workers", "", err)
		return
	}

	dtos := make([]WorkerDTO, len(workers))
	for i, wk := range workers {
		dtos[i] = toWorkerDTO(wk)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetWorker returns a single worker.
func (h *Handler) GetWorker(w http.ResponseWriter, r *http.Request) {
	id := payroll.WorkerID(chi.URLParam(r, "id"))

	wk, err := h.Workers.GetWorker(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get worker", "", err)
		return
	}
	if wk == nil {
		writeError(w, http.StatusNotFound, "Worker not found", "not_found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toWorkerDTO(wk))
}

// CreateWorker creates a new worker.
func (h *Handler) CreateWorker(w http.ResponseWriter, r *http.Request) {
	var req CreateWorkerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}
	if req.Name == "" || req.Contact == "" {
		writeError(w, http.StatusBadRequest, "name and contact are required", "validation", nil)
		return
	}

	rate := payroll.DefaultShiftRate
	if req.ShiftRate != nil {
		rate = decimal.NewFromFloat(*req.ShiftRate)
		if !rate.IsPositive() {
			writeError(w, http.StatusBadRequest, "shiftRate must be positive", "validation", nil)
			return
		}
	}

	wk := payroll.NewWorker(req.Name, req.Contact, rate)
	if err := h.Workers.SaveWorker(r.Context(), wk); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create worker", "", err)
		return
	}

	h.Log.Infow("worker created", "worker", wk.ID, "rate", rate.String())
	writeJSON(w, http.StatusCreated, toWorkerDTO(wk))
}

// DeleteWorker removes the worker and its entire ledger.
func (h *Handler) DeleteWorker(w http.ResponseWriter, r *http.Request) {
	id := payroll.WorkerID(chi.URLParam(r, "id"))

	if err := h.Workers.DeleteWorker(r.Context(), id); err != nil {
		h.writeDomainError(w, err, "Failed to delete worker")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Worker deleted successfully"})
}

// ShiftStats returns per-worker shift counts within the trailing range.
func (h *Handler) ShiftStats(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()
	var from time.Time
	switch r.URL.Query().Get("timeRange") {
	case "week":
		from = now.AddDate(0, 0, -7)
	case "month", "":
		from = now.AddDate(0, 0, -30)
	case "year":
		from = now.AddDate(0, 0, -365)
	default:
		writeError(w, http.StatusBadRequest, "timeRange must be week, month or year", "validation", nil)
		return
	}

	workers, err := h.Workers.ListWorkers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list workers", "", err)
		return
	}

	stats := make([]WorkerStatsDTO, len(workers))
	for i, wk := range workers {
		stats[i] = WorkerStatsDTO{
			WorkerID:   string(wk.ID),
			Name:       wk.Name,
			ShiftCount: payroll.CountShiftsBetween(wk, from, now),
		}
	}
	writeJSON(w, http.StatusOK, stats)
}

// =============================================================================
// SHIFT HANDLERS
// =============================================================================

// AddShift appends a shift to a worker's ledger.
func (h *Handler) AddShift(w http.ResponseWriter, r *http.Request) {
	id := payroll.WorkerID(chi.URLParam(r, "id"))

	var req AddShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	var date *time.Time
	if req.Date != nil {
		parsed, err := parseDate(*req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD or RFC3339)", "validation", err)
			return
		}
		date = &parsed
	}

	var hours *decimal.Decimal
	if req.Hours != nil {
		hrs := decimal.NewFromFloat(*req.Hours)
		if !hrs.IsPositive() {
			writeError(w, http.StatusBadRequest, "hours must be positive", "validation", nil)
			return
		}
		hours = &hrs
	}

	wk, err := h.Ledger.AddShift(r.Context(), id, date, hours)
	if err != nil {
		h.writeDomainError(w, err, "Failed to add shift")
		return
	}
	writeJSON(w, http.StatusCreated, toWorkerDTO(wk))
}

// DeleteShift removes exactly one shift.
func (h *Handler) DeleteShift(w http.ResponseWriter, r *http.Request) {
	id := payroll.WorkerID(chi.URLParam(r, "id"))
	shiftID := payroll.ShiftID(chi.URLParam(r, "shiftID"))

	wk, err := h.Ledger.DeleteShift(r.Context(), id, shiftID)
	if err != nil {
		h.writeDomainError(w, err, "Failed to delete shift")
		return
	}
	writeJSON(w, http.StatusOK, toWorkerDTO(wk))
}

// =============================================================================
// SETTLEMENT HANDLERS
// =============================================================================

// Pay settles everything due, manually (cash path, no gateway).
func (h *Handler) Pay(w http.ResponseWriter, r *http.Request) {
	id := payroll.WorkerID(chi.URLParam(r, "id"))

	wk, err := h.Settler.Settle(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, err, "Failed to settle")
		return
	}
	writeJSON(w, http.StatusOK, toWorkerDTO(wk))
}

// CreateOrder begins gateway settlement and returns the provider's order
// descriptor verbatim.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	id := payroll.WorkerID(chi.URLParam(r, "id"))

	order, err := h.Settler.CreateOrder(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, err, "Failed to create order")
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// VerifyPayment completes gateway settlement.
func (h *Handler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	id := payroll.WorkerID(chi.URLParam(r, "id"))

	var req VerifyPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}
	if req.OrderID == "" || req.PaymentID == "" || req.Signature == "" {
		writeError(w, http.StatusBadRequest, "orderId, paymentId and signature are required", "validation", nil)
		return
	}

	wk, err := h.Settler.VerifyPayment(r.Context(), id, req.OrderID, req.PaymentID, req.Signature)
	if err != nil {
		h.writeDomainError(w, err, "Failed to verify payment")
		return
	}
	writeJSON(w, http.StatusOK, VerifyPaymentResponse{
		Message: "Payment verified and recorded",
		Worker:  toWorkerDTO(wk),
	})
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

// GenerateReport renders a report and returns its metadata.
func (h *Handler) GenerateReport(w http.ResponseWriter, r *http.Request) {
	var req GenerateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}
	if req.ReportType == "" || req.StartDate == "" || req.EndDate == "" || req.Format == "" {
		writeError(w, http.StatusBadRequest,
			"Missing required fields: reportType, startDate, endDate, format", "validation", nil)
		return
	}

	start, err := parseDate(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid startDate", "validation", err)
		return
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid endDate", "validation", err)
		return
	}
	// Make the range inclusive of the whole end day.
	end = end.Add(24*time.Hour - time.Nanosecond)

	rec, err := h.Reports.Generate(r.Context(), reports.Type(req.ReportType), start, end, reports.Format(req.Format))
	if err != nil {
		h.writeDomainError(w, err, "Failed to generate report")
		return
	}
	writeJSON(w, http.StatusOK, GenerateReportResponse{Success: true, Report: toReportDTO(*rec)})
}

// ListReports returns recent report metadata.
func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	recs, err := h.Reports.List(r.Context(), recentReportLimit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch reports", "", err)
		return
	}
	dtos := make([]ReportDTO, len(recs))
	for i, rec := range recs {
		dtos[i] = toReportDTO(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// DownloadReport streams the report file.
func (h *Handler) DownloadReport(w http.ResponseWriter, r *http.Request) {
	rec, err := h.Reports.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, err, "Failed to download report")
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="`+rec.FileName+`"`)
	http.ServeFile(w, r, rec.FilePath)
}

// DeleteReport removes the file and the metadata record.
func (h *Handler) DeleteReport(w http.ResponseWriter, r *http.Request) {
	if err := h.Reports.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeDomainError(w, err, "Failed to delete report")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Report deleted successfully"})
}

// =============================================================================
// HELPERS
// =============================================================================

// parseDate accepts YYYY-MM-DD or RFC3339.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// writeDomainError maps domain errors onto HTTP statuses, keeping the
// four error kinds distinct all the way to the client.
func (h *Handler) writeDomainError(w http.ResponseWriter, err error, message string) {
	switch {
	case payroll.IsNotFound(err) || errors.Is(err, reports.ErrReportNotFound):
		writeError(w, http.StatusNotFound, message, "not_found", err)
	case errors.Is(err, payroll.ErrNothingDue):
		writeError(w, http.StatusBadRequest, "No pending salary to pay", "nothing_due", err)
	case errors.Is(err, payroll.ErrSignatureMismatch):
		writeError(w, http.StatusBadRequest, "Invalid payment signature", "signature_mismatch", err)
	case errors.Is(err, payroll.ErrOrderExpired):
		writeError(w, http.StatusConflict, "Gateway order expired", "order_expired", err)
	case errors.Is(err, payroll.ErrOrderSettled):
		writeError(w, http.StatusConflict, "Gateway order already settled", "order_settled", err)
	case errors.Is(err, payroll.ErrConcurrentModification):
		writeError(w, http.StatusConflict, "Concurrent modification, retry", "conflict", err)
	case errors.Is(err, gateway.ErrUpstream):
		writeError(w, http.StatusBadGateway, "Payment gateway unavailable", "gateway_unavailable", err)
	case errors.Is(err, reports.ErrUnknownType) || errors.Is(err, reports.ErrUnknownFormat):
		writeError(w, http.StatusBadRequest, message, "validation", err)
	default:
		h.Log.Errorw("internal error", "error", err)
		writeError(w, http.StatusInternalServerError, message, "", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message, code string, err error) {
	resp := ErrorResponse{Error: message, Code: code}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
