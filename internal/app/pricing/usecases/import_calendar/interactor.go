package import_calendar

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/light-bringer/roomrate-service/internal/app/pricing/contracts"
	"github.com/light-bringer/roomrate-service/internal/app/pricing/domain"
)

// ErrBadWorkbook is returned when the sheet layout cannot be read at all.
var ErrBadWorkbook = errors.New("calendar workbook must have a date column followed by settlement columns")

// Request carries an .xlsx workbook. Sheet defaults to the active sheet.
//
// Layout: the header row is "date" followed by one settlement id per column; every
// following row is one night. Empty cells are skipped.
type Request struct {
	Workbook io.Reader
	Sheet    string
}

// RowIssue is a cell that was not imported.
type RowIssue struct {
	Row          int    `json:"row"`
	SettlementID string `json:"settlement_id"`
	Date         string `json:"date"`
	Reason       string `json:"reason"`
}

// Result summarizes an import batch.
type Result struct {
	BatchID    string     `json:"batch_id"`
	Imported   int        `json:"imported"`
	Duplicates []RowIssue `json:"duplicates,omitempty"`
	Rejected   []RowIssue `json:"rejected,omitempty"`
}

// Interactor handles the calendar import use case.
type Interactor struct {
	writer contracts.CalendarWriter
	logger *slog.Logger
}

// NewInteractor creates a new import calendar interactor.
func NewInteractor(writer contracts.CalendarWriter, logger *slog.Logger) *Interactor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Interactor{writer: writer, logger: logger}
}

// Execute stores every price cell of the sheet. Duplicates and malformed cells are
// reported in the result and do not stop the import; store failures do.
func (i *Interactor) Execute(ctx context.Context, req *Request) (*Result, error) {
	f, err := excelize.OpenReader(req.Workbook)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := req.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(f.GetActiveSheetIndex())
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 || len(rows[0]) < 2 {
		return nil, ErrBadWorkbook
	}

	settlements := make([]string, len(rows[0]))
	for col, cell := range rows[0][1:] {
		settlements[col+1] = strings.TrimSpace(cell)
	}

	res := &Result{BatchID: uuid.New().String()}
	for r := 1; r < len(rows); r++ {
		row := rows[r]
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		line := r + 1

		date, err := parseDate(row[0])
		if err != nil {
			res.Rejected = append(res.Rejected, RowIssue{Row: line, Date: row[0], Reason: err.Error()})
			continue
		}

		for col := 1; col < len(row) && col < len(settlements); col++ {
			cell := strings.TrimSpace(row[col])
			if cell == "" || settlements[col] == "" {
				continue
			}
			issue := RowIssue{Row: line, SettlementID: settlements[col], Date: date.String()}

			amount, err := parseAmount(cell)
			if err != nil {
				issue.Reason = err.Error()
				res.Rejected = append(res.Rejected, issue)
				continue
			}

			err = i.writer.AddBasePrice(ctx, domain.BasePrice{SettlementID: settlements[col], Date: date, Amount: amount})
			switch {
			case err == nil:
				res.Imported++
			case errors.Is(err, domain.ErrDuplicateBasePrice):
				issue.Reason = err.Error()
				res.Duplicates = append(res.Duplicates, issue)
			case errors.Is(err, domain.ErrNegativeAmount):
				issue.Reason = err.Error()
				res.Rejected = append(res.Rejected, issue)
			default:
				return res, fmt.Errorf("row %d, settlement %s: %w", line, settlements[col], err)
			}
		}
	}

	i.logger.Info("calendar imported",
		"batch_id", res.BatchID,
		"imported", res.Imported,
		"duplicates", len(res.Duplicates),
		"rejected", len(res.Rejected),
	)
	return res, nil
}

// WriteTemplate writes an empty calendar for the settlements over the stay's nights.
func WriteTemplate(w io.Writer, settlementIDs []string, stay domain.Stay) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	header := make([]interface{}, 0, len(settlementIDs)+1)
	header = append(header, "date")
	for _, id := range settlementIDs {
		header = append(header, id)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for n, night := range stay.Nights() {
		cell, err := excelize.CoordinatesToCellName(1, n+2)
		if err != nil {
			return err
		}
		if err := f.SetCellStr(sheet, cell, night.String()); err != nil {
			return fmt.Errorf("failed to write %s: %w", cell, err)
		}
	}

	return f.Write(w)
}

// parseAmount accepts plain decimals and a single decimal comma ("12,5").
// Cells mixing separators, or with three digits after a lone comma, are
// ambiguous thousands notation and rejected.
func parseAmount(cell string) (*domain.Money, error) {
	if n := strings.Count(cell, ","); n > 0 {
		if n > 1 || strings.Contains(cell, ".") {
			return nil, fmt.Errorf("ambiguous amount %q: use a single decimal separator", cell)
		}
		if frac := cell[strings.Index(cell, ",")+1:]; len(frac) == 3 {
			return nil, fmt.Errorf("ambiguous amount %q: comma may be a thousands separator", cell)
		}
		cell = strings.Replace(cell, ",", ".", 1)
	}
	return domain.ParseMoney(cell)
}

// parseDate accepts ISO dates and Excel date serials.
func parseDate(cell string) (civil.Date, error) {
	cell = strings.TrimSpace(cell)
	if d, err := civil.ParseDate(cell); err == nil {
		return d, nil
	}
	serial, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return civil.Date{}, fmt.Errorf("invalid date %q", cell)
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return civil.Date{}, fmt.Errorf("invalid date serial %q: %w", cell, err)
	}
	return civil.DateOf(t), nil
}
