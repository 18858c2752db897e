/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY:
  Amounts are decimal internally; DTOs expose them as JSON numbers (whole
  currency units - shift amounts are rounded at entry time).

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - payroll/types.go: Domain model
*/
package api

import (
	"time"

	"github.com/autoweave/payroll-engine/payroll"
	"github.com/autoweave/payroll-engine/reports"
)

// =============================================================================
// WORKER TYPES
// =============================================================================

// WorkerDTO represents a worker with derived payroll totals. TotalSalary
// and TotalHours cover unpaid shifts only and are recomputed per response.
type WorkerDTO struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	Contact         string       `json:"contact"`
	ShiftRate       float64      `json:"shiftRate"`
	TotalSalary     float64      `json:"totalSalary"`
	TotalHours      float64      `json:"totalHours"`
	LastPaymentDate *string      `json:"lastPaymentDate"`
	Shifts          []ShiftDTO   `json:"shifts"`
	Payments        []PaymentDTO `json:"payments"`
	CreatedAt       string       `json:"createdAt"`
}

type ShiftDTO struct {
	ID     string  `json:"id"`
	Date   string  `json:"date"`
	Hours  float64 `json:"hours"`
	Amount float64 `json:"amount"`
	IsPaid bool    `json:"isPaid"`
}

type PaymentDTO struct {
	ID               string   `json:"id"`
	Amount           float64  `json:"amount"`
	Date             string   `json:"date"`
	ShiftIDs         []string `json:"shiftIds"`
	Method           string   `json:"method"`
	GatewayOrderID   string   `json:"gatewayOrderId,omitempty"`
	GatewayPaymentID string   `json:"gatewayPaymentId,omitempty"`
}

// CreateWorkerRequest is the request to create a worker. A nil shiftRate
// takes the default (750).
type CreateWorkerRequest struct {
	Name      string   `json:"name"`
	Contact   string   `json:"contact"`
	ShiftRate *float64 `json:"shiftRate,omitempty"`
}

// AddShiftRequest appends a shift. Date accepts YYYY-MM-DD or RFC3339 and
// defaults to now; hours default to 8.
type AddShiftRequest struct {
	Date  *string  `json:"date,omitempty"`
	Hours *float64 `json:"hours,omitempty"`
}

// WorkerStatsDTO is one worker's shift count in the requested time range.
type WorkerStatsDTO struct {
	WorkerID   string `json:"workerId"`
	Name       string `json:"name"`
	ShiftCount int    `json:"shiftCount"`
}

// =============================================================================
// SETTLEMENT TYPES
// =============================================================================

// VerifyPaymentRequest completes gateway settlement. Field names follow
// the provider's checkout callback payload.
type VerifyPaymentRequest struct {
	OrderID   string `json:"orderId"`
	PaymentID string `json:"paymentId"`
	Signature string `json:"signature"`
}

// VerifyPaymentResponse wraps the settled worker.
type VerifyPaymentResponse struct {
	Message string    `json:"message"`
	Worker  WorkerDTO `json:"worker"`
}

// =============================================================================
// REPORT TYPES
// =============================================================================

// GenerateReportRequest asks for a report over [startDate, endDate].
type GenerateReportRequest struct {
	ReportType string `json:"reportType"`
	StartDate  string `json:"startDate"`
	EndDate    string `json:"endDate"`
	Format     string `json:"format"`
}

// ReportDTO is report metadata; the on-disk path is never exposed.
type ReportDTO struct {
	ID          string `json:"id"`
	ReportType  string `json:"reportType"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Format      string `json:"format"`
	FileName    string `json:"fileName"`
	FileSize    int64  `json:"fileSize"`
	CreatedAt   string `json:"createdAt"`
	DownloadURL string `json:"downloadUrl"`
}

// GenerateReportResponse confirms a generated report.
type GenerateReportResponse struct {
	Success bool      `json:"success"`
	Report  ReportDTO `json:"report"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toWorkerDTO(w *payroll.Worker) WorkerDTO {
	rate, _ := w.ShiftRate.Float64()
	salary, _ := payroll.DuePay(w).Float64()
	hours, _ := payroll.DueHours(w).Float64()

	var last *string
	if d := payroll.LastPaymentDate(w); d != nil {
		s := d.Format(time.RFC3339)
		last = &s
	}

	shifts := make([]ShiftDTO, len(w.Shifts))
	for i, sh := range w.Shifts {
		h, _ := sh.Hours.Float64()
		a, _ := sh.Amount.Float64()
		shifts[i] = ShiftDTO{
			ID:     string(sh.ID),
			Date:   sh.Date.Format(time.RFC3339),
			Hours:  h,
			Amount: a,
			IsPaid: sh.IsPaid,
		}
	}

	payments := make([]PaymentDTO, len(w.Payments))
	for i, p := range w.Payments {
		a, _ := p.Amount.Float64()
		ids := make([]string, len(p.ShiftIDs))
		for j, sid := range p.ShiftIDs {
			ids[j] = string(sid)
		}
		payments[i] = PaymentDTO{
			ID:               string(p.ID),
			Amount:           a,
			Date:             p.Date.Format(time.RFC3339),
			ShiftIDs:         ids,
			Method:           string(p.Method),
			GatewayOrderID:   p.GatewayOrderID,
			GatewayPaymentID: p.GatewayPaymentID,
		}
	}

	return WorkerDTO{
		ID:              string(w.ID),
		Name:            w.Name,
		Contact:         w.Contact,
		ShiftRate:       rate,
		TotalSalary:     salary,
		TotalHours:      hours,
		LastPaymentDate: last,
		Shifts:          shifts,
		Payments:        payments,
		CreatedAt:       w.CreatedAt.Format(time.RFC3339),
	}
}

func toReportDTO(r reports.Record) ReportDTO {
	return ReportDTO{
		ID:          r.ID,
		ReportType:  string(r.Type),
		StartDate:   r.Start.Format("2006-01-02"),
		EndDate:     r.End.Format("2006-01-02"),
		Format:      string(r.Format),
		FileName:    r.FileName,
		FileSize:    r.FileSize,
		CreatedAt:   r.CreatedAt.Format(time.RFC3339),
		DownloadURL: "/api/reports/" + r.ID + "/download",
	}
}
