/*
Package reports generates worker-attendance reports from the payroll
ledger.

PURPOSE:
  On-demand rendering of attendance over a date range: for each worker,
  the shifts worked inside the range, their hours, and the paid/unpaid
  money split. Rendered to PDF or XLSX on disk; metadata is persisted so
  reports can be listed, downloaded, and deleted later.

PIPELINE:
  Generate -> BuildAttendance (pure aggregation) -> renderer (pdf.go /
  excel.go) -> file on disk -> metadata record in the store.

RANGE SEMANTICS:
  A shift belongs to the report iff start <= shift.Date <= end. Ledger
  position is entry order, so the aggregation always filters by date.

SEE ALSO:
  - pdf.go: PDF renderer (gofpdf)
  - excel.go: XLSX renderer (excelize)
  - api/handlers.go: HTTP surface (generate/list/download/delete)
*/
package reports

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/autoweave/payroll-engine/payroll"
)

// =============================================================================
// TYPES
// =============================================================================

type Type string

const TypeWorkerAttendance Type = "worker_attendance"

type Format string

const (
	FormatPDF   Format = "pdf"
	FormatExcel Format = "excel"
)

var (
	ErrUnknownType    = errors.New("unknown report type")
	ErrUnknownFormat  = errors.New("unknown report format")
	ErrReportNotFound = errors.New("report not found")
)

// Record is the persisted metadata for one generated report. FilePath is
// never exposed over the API.
type Record struct {
	ID        string
	Type      Type
	Start     time.Time
	End       time.Time
	Format    Format
	FileName  string
	FilePath  string
	FileSize  int64
	CreatedAt time.Time
}

// Store persists report metadata.
type Store interface {
	SaveReport(ctx context.Context, r Record) error
	GetReport(ctx context.Context, id string) (*Record, error)
	ListReports(ctx context.Context, limit int) ([]Record, error)
	DeleteReport(ctx context.Context, id string) error
}

// AttendanceRow is one worker's aggregate over the report range.
type AttendanceRow struct {
	WorkerName string
	Contact    string
	Days       int
	Hours      decimal.Decimal
	PaidAmount decimal.Decimal
	DueAmount  decimal.Decimal
}

// =============================================================================
// AGGREGATION
// =============================================================================

// BuildAttendance computes per-worker attendance rows for shifts with
// start <= date <= end. Workers with no shifts in range still get a row
// (zero days), matching the attendance-sheet semantics of the dashboard.
func BuildAttendance(workers []*payroll.Worker, start, end time.Time) []AttendanceRow {
	rows := make([]AttendanceRow, 0, len(workers))
	for _, w := range workers {
		row := AttendanceRow{
			WorkerName: w.Name,
			Contact:    w.Contact,
			Hours:      decimal.Zero,
			PaidAmount: decimal.Zero,
			DueAmount:  decimal.Zero,
		}
		for _, s := range w.Shifts {
			if s.Date.Before(start) || s.Date.After(end) {
				continue
			}
			row.Days++
			row.Hours = row.Hours.Add(s.Hours)
			if s.IsPaid {
				row.PaidAmount = row.PaidAmount.Add(s.Amount)
			} else {
				row.DueAmount = row.DueAmount.Add(s.Amount)
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// =============================================================================
// SERVICE
// =============================================================================

// Service generates reports and owns their on-disk files.
type Service struct {
	workers payroll.WorkerStore
	store   Store
	dir     string
}

// NewService creates a report service writing files under dir. The
// directory is created if missing.
func NewService(workers payroll.WorkerStore, store Store, dir string) (*Service, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create reports dir: %w", err)
	}
	return &Service{workers: workers, store: store, dir: dir}, nil
}

// Generate renders a report and persists its metadata.
func (s *Service) Generate(ctx context.Context, typ Type, start, end time.Time, format Format) (*Record, error) {
	if typ != TypeWorkerAttendance {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, typ)
	}
	if format != FormatPDF && format != FormatExcel {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("invalid range: end %s before start %s", end.Format("2006-01-02"), start.Format("2006-01-02"))
	}

	workers, err := s.workers.ListWorkers(ctx)
	if err != nil {
		return nil, err
	}
	rows := BuildAttendance(workers, start, end)

	now := time.Now().UTC()
	ext := "pdf"
	if format == FormatExcel {
		ext = "xlsx"
	}
	fileName := fmt.Sprintf("%s_%s_%s_%d.%s",
		typ, start.Format("20060102"), end.Format("20060102"), now.Unix(), ext)
	filePath := filepath.Join(s.dir, fileName)

	title := "Worker Attendance Report"
	period := fmt.Sprintf("%s to %s", start.Format("2006-01-02"), end.Format("2006-01-02"))

	switch format {
	case FormatPDF:
		err = renderPDF(filePath, title, period, rows)
	case FormatExcel:
		err = renderExcel(filePath, title, period, rows)
	}
	if err != nil {
		return nil, fmt.Errorf("render %s report: %w", format, err)
	}

	info, err := os.Stat(filePath)
	if err != nil {
		return nil, err
	}

	rec := Record{
		ID:        uuid.NewString(),
		Type:      typ,
		Start:     start,
		End:       end,
		Format:    format,
		FileName:  fileName,
		FilePath:  filePath,
		FileSize:  info.Size(),
		CreatedAt: now,
	}
	if err := s.store.SaveReport(ctx, rec); err != nil {
		os.Remove(filePath)
		return nil, err
	}
	return &rec, nil
}

// Get returns a report record by id.
func (s *Service) Get(ctx context.Context, id string) (*Record, error) {
	rec, err := s.store.GetReport(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrReportNotFound
	}
	return rec, nil
}

// List returns the most recent reports.
func (s *Service) List(ctx context.Context, limit int) ([]Record, error) {
	return s.store.ListReports(ctx, limit)
}

// Delete removes the file and the metadata record.
func (s *Service) Delete(ctx context.Context, id string) error {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := os.Remove(rec.FilePath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return s.store.DeleteReport(ctx, id)
}
