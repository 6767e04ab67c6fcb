// Package sheet reads and writes the operation's spreadsheet books: a
// best-effort importer for hand-maintained rental registers and a styled
// two-sheet exporter of a vehicle's financial history.
package sheet

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/adilkt/fleetbook/internal/dictionary"
	"github.com/adilkt/fleetbook/internal/errs"
	"github.com/adilkt/fleetbook/internal/fleet"
)

// headerScanWindow caps how many leading rows are probed for the header.
const headerScanWindow = 20

// Result summarizes one import run. Row-level failures are collected, never
// fatal; only structural problems abort the whole import.
type Result struct {
	RentalsCreated  int
	ExpensesCreated int
	RowErrors       []string
}

// Empty reports that the run created nothing of either kind.
func (r Result) Empty() bool { return r.RentalsCreated == 0 && r.ExpensesCreated == 0 }

// Writer is the subset of store writes the importer needs.
type Writer interface {
	CreateRental(ctx context.Context, r fleet.Rental) (fleet.Rental, error)
	CreateExpense(ctx context.Context, e fleet.Expense) (fleet.Expense, error)
}

// Importer turns a register workbook into rental and expense records for one
// target vehicle.
type Importer struct {
	writer Writer
	now    func() time.Time
}

// NewImporter constructs an importer writing through the given store.
func NewImporter(writer Writer) *Importer {
	return &Importer{writer: writer, now: time.Now}
}

// Import parses the workbook bytes and creates records against vehicleID.
// The data must be fully buffered: the sheet is scanned once for the header
// and again for the rows.
func (im *Importer) Import(ctx context.Context, data []byte, vehicleID uuid.UUID) (Result, error) {
	if vehicleID == uuid.Nil {
		return Result{}, errs.ErrInvalid
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return Result{}, fmt.Errorf("unreadable workbook: %w", err)
	}
	defer f.Close()
	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return Result{}, fmt.Errorf("unreadable workbook: %w", err)
	}

	headerIdx, found := findHeaderRow(rows)
	if !found {
		return Result{}, errs.ErrHeaderNotFound
	}
	tbl := newTable(rows[headerIdx], rows[headerIdx+1:])

	var res Result
	for i, row := range tbl.rows {
		rowNum := i + 1 // 1-based data-row index, as reported to the user

		if rental, ok := tbl.extractRental(row, vehicleID); ok {
			if _, err := im.writer.CreateRental(ctx, rental); err != nil {
				res.RowErrors = append(res.RowErrors, fmt.Sprintf("Rental Row %d: %v", rowNum, err))
			} else {
				res.RentalsCreated++
			}
		}

		if expense, ok := tbl.extractExpense(row, vehicleID, im.now()); ok {
			if _, err := im.writer.CreateExpense(ctx, expense); err != nil {
				res.RowErrors = append(res.RowErrors, fmt.Sprintf("Expense Row %d: %v", rowNum, err))
			} else {
				res.ExpensesCreated++
			}
		}
	}
	return res, nil
}

// findHeaderRow scans the leading rows for one containing both a DATE OUT and
// a CUSTOMER cell (after trim+uppercase normalization).
func findHeaderRow(rows [][]string) (int, bool) {
	limit := len(rows)
	if limit > headerScanWindow {
		limit = headerScanWindow
	}
	for i := 0; i < limit; i++ {
		var hasDateOut, hasCustomer bool
		for _, cell := range rows[i] {
			switch normalizeHeader(cell) {
			case "DATE OUT":
				hasDateOut = true
			case "CUSTOMER":
				hasCustomer = true
			}
		}
		if hasDateOut && hasCustomer {
			return i, true
		}
	}
	return 0, false
}

func normalizeHeader(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// table is the re-parsed sheet: normalized column positions plus data rows.
// Duplicate header names get a numeric suffix (".1", ".2", ...) so a second
// C/O column is addressable as "C/O.1".
type table struct {
	cols map[string]int
	rows [][]string
}

func newTable(header []string, rows [][]string) *table {
	cols := make(map[string]int, len(header))
	seen := make(map[string]int, len(header))
	for idx, cell := range header {
		name := normalizeHeader(cell)
		if name == "" {
			continue
		}
		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			name = name + "." + strconv.Itoa(n)
		} else {
			seen[name] = 1
		}
		cols[name] = idx
	}
	return &table{cols: cols, rows: rows}
}

// cell resolves a canonical field through the alias dictionary: first alias
// whose column exists and holds a non-empty value in this row.
func (t *table) cell(row []string, field dictionary.Column) string {
	for _, alias := range dictionary.Aliases(field) {
		idx, ok := t.cols[alias]
		if !ok || idx >= len(row) {
			continue
		}
		if v := strings.TrimSpace(row[idx]); v != "" {
			return v
		}
	}
	return ""
}

// extractRental builds a rental when the row has both a date-out and a
// customer cell. An unparsable date-out skips the rental silently: a booking
// without a usable date would be fabricated data.
func (t *table) extractRental(row []string, vehicleID uuid.UUID) (fleet.Rental, bool) {
	rawDateOut := t.cell(row, dictionary.DateOut)
	customer := t.cell(row, dictionary.Customer)
	if rawDateOut == "" || customer == "" {
		return fleet.Rental{}, false
	}
	dateOut, ok := parseDate(rawDateOut)
	if !ok {
		return fleet.Rental{}, false
	}

	r := fleet.Rental{
		ID:           uuid.New(),
		VehicleID:    vehicleID,
		DateOut:      dateOut,
		CustomerName: customer,
		ContactNo:    t.cell(row, dictionary.ContactNo),
		CustomerID:   t.cell(row, dictionary.CustomerID),
		CareOf:       t.cell(row, dictionary.CareOf),
		Destination:  t.cell(row, dictionary.Destination),

		DaysOfRent:          parseQuantity(t.cell(row, dictionary.DaysOfRent)),
		RentPerDay:          parseAmount(t.cell(row, dictionary.RentPerDay)),
		AdvanceAmount:       parseAmount(t.cell(row, dictionary.Advance)),
		TotalAmountReceived: parseAmount(t.cell(row, dictionary.TotalReceived)),
		DiscountedAmount:    fleet.ZeroAmount(),

		StartingKM: parseKM(t.cell(row, dictionary.StartingKM)),
		EndingKM:   parseKM(t.cell(row, dictionary.EndingKM)),
	}
	if clock, ok := parseClock(t.cell(row, dictionary.TimeOut)); ok {
		r.TimeOut = &clock
	}
	if d, ok := parseDate(t.cell(row, dictionary.DateIn)); ok {
		r.DateIn = &d
	}
	if clock, ok := parseClock(t.cell(row, dictionary.TimeIn)); ok {
		r.TimeIn = &clock
	}
	return r, true
}

// extractExpense builds an expense when the row has both particulars and an
// amount cell. A missing or unparsable date defaults to today.
func (t *table) extractExpense(row []string, vehicleID uuid.UUID, today time.Time) (fleet.Expense, bool) {
	particulars := t.cell(row, dictionary.Particulars)
	amount := t.cell(row, dictionary.Amount)
	if particulars == "" || amount == "" {
		return fleet.Expense{}, false
	}

	date, ok := parseDate(t.cell(row, dictionary.ExpenseDate))
	if !ok {
		date = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	}

	// The duplicate-suffixed C/O column is the expense's own; the shared C/O
	// column only applies when the row is expense-only (no customer).
	careOf := t.cell(row, dictionary.ExpenseCareOf)
	if careOf == "" && t.cell(row, dictionary.Customer) == "" {
		careOf = t.cell(row, dictionary.CareOf)
	}

	return fleet.Expense{
		ID:          uuid.New(),
		VehicleID:   vehicleID,
		Date:        date,
		Particulars: particulars,
		Place:       t.cell(row, dictionary.Place),
		CareOf:      careOf,
		Amount:      parseAmount(amount),
	}, true
}
