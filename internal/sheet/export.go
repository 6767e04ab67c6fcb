package sheet

import (
	"bytes"
	"fmt"
	"time"

	"github.com/govalues/money"
	"github.com/xuri/excelize/v2"

	"github.com/adilkt/fleetbook/internal/fleet"
	"github.com/adilkt/fleetbook/internal/slug"
)

const (
	rentalSheet  = "Rental History"
	expenseSheet = "Expense History"

	dateLayout  = "02/01/2006"
	clockLayout = "03:04 PM"
)

var rentalHeaders = []string{
	"DATE OUT", "TIME OUT", "DATE IN", "TIME IN",
	"CUSTOMER", "CONTACT NO", "CUSTOMER ID", "DESTINATION",
	"DAYS OF RENT", "RENT/DAY", "TOTAL RENT", "ADV AMOUNT",
	"STARTING KM", "ENDING KM", "TOTAL AMOUNT RECEIVED", "BALANCE",
}

var expenseHeaders = []string{
	"DATE", "PARTICULARS", "PLACE", "C/O", "PARTNER", "AMOUNT",
}

// Filename is the canonical download name for an exported book.
func Filename(vehicleName, periodLabel string) string {
	return fmt.Sprintf("%s_%s.xlsx", slug.Safe(vehicleName), slug.Safe(periodLabel))
}

// partnerNames lets the exporter resolve attributed partners without
// dragging in a store dependency.
type partnerNames map[string]string

// Export renders a vehicle's rental and expense history into a two-sheet
// workbook. periodLabel captions the title rows (e.g. "2024" or "All Time");
// partners maps partner ID strings to display names for the expense sheet.
func Export(vehicle fleet.Vehicle, rentals []fleet.Rental, expenses []fleet.Expense, periodLabel string, partners map[string]string) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName(f.GetSheetName(0), rentalSheet)
	if _, err := f.NewSheet(expenseSheet); err != nil {
		return nil, err
	}

	st, err := newStyles(f)
	if err != nil {
		return nil, err
	}
	if err := writeRentalSheet(f, st, vehicle, rentals, expenses, periodLabel); err != nil {
		return nil, err
	}
	if err := writeExpenseSheet(f, st, vehicle, expenses, periodLabel, partnerNames(partners)); err != nil {
		return nil, err
	}

	return f.WriteToBuffer()
}

type styles struct {
	title   int
	summary int
	header  int
	money   int
	total   int
}

func newStyles(f *excelize.File) (styles, error) {
	var st styles
	var err error

	st.title, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return st, err
	}
	st.summary, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
	})
	if err != nil {
		return st, err
	}
	st.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4F81BD"}},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Border: []excelize.Border{
			{Type: "left", Style: 1, Color: "000000"},
			{Type: "right", Style: 1, Color: "000000"},
			{Type: "top", Style: 1, Color: "000000"},
			{Type: "bottom", Style: 1, Color: "000000"},
		},
	})
	if err != nil {
		return st, err
	}
	st.money, err = f.NewStyle(&excelize.Style{
		NumFmt: 4, // #,##0.00
	})
	if err != nil {
		return st, err
	}
	st.total, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		NumFmt: 4,
		Border: []excelize.Border{{Type: "top", Style: 2, Color: "000000"}},
	})
	return st, err
}

func writeRentalSheet(f *excelize.File, st styles, vehicle fleet.Vehicle, rentals []fleet.Rental, expenses []fleet.Expense, periodLabel string) error {
	lastCol, _ := excelize.ColumnNumberToName(len(rentalHeaders))

	title := fmt.Sprintf("%s (%s) - Rental History - %s", vehicle.Name, vehicle.RegistrationNumber, periodLabel)
	if err := f.MergeCell(rentalSheet, "A1", lastCol+"1"); err != nil {
		return err
	}
	f.SetCellValue(rentalSheet, "A1", title)
	f.SetCellStyle(rentalSheet, "A1", lastCol+"1", st.title)

	income := fleet.ZeroAmount()
	for _, r := range rentals {
		income = addAmt(income, r.TotalAmountReceived)
	}
	expense := fleet.ZeroAmount()
	for _, e := range expenses {
		expense = addAmt(expense, e.Amount)
	}
	profit, err := income.Sub(expense)
	if err != nil {
		profit = fleet.ZeroAmount()
	}

	summaries := []struct {
		label string
		value money.Amount
	}{
		{"Total Income", income},
		{"Total Expense", expense},
		{"Net Profit", profit},
	}
	for i, s := range summaries {
		row := i + 2
		f.SetCellValue(rentalSheet, fmt.Sprintf("A%d", row), s.label)
		f.SetCellValue(rentalSheet, fmt.Sprintf("B%d", row), amtFloat(s.value))
		f.SetCellStyle(rentalSheet, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), st.summary)
		f.SetCellStyle(rentalSheet, fmt.Sprintf("B%d", row), fmt.Sprintf("B%d", row), st.money)
	}

	const headerRow = 5
	for i, h := range rentalHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetCellValue(rentalSheet, fmt.Sprintf("%s%d", col, headerRow), h)
	}
	f.SetCellStyle(rentalSheet, "A5", lastCol+"5", st.header)

	totalReceived := fleet.ZeroAmount()
	totalBalance := fleet.ZeroAmount()
	for i, r := range rentals {
		row := headerRow + 1 + i
		set := func(col int, v any) {
			name, _ := excelize.ColumnNumberToName(col)
			f.SetCellValue(rentalSheet, fmt.Sprintf("%s%d", name, row), v)
		}
		set(1, r.DateOut.Format(dateLayout))
		set(2, clockString(r.TimeOut))
		set(3, dateString(r.DateIn))
		set(4, clockString(r.TimeIn))
		set(5, r.CustomerName)
		set(6, r.ContactNo)
		set(7, r.CustomerID)
		set(8, r.Destination)
		if days, ok := r.DaysOfRent.Float64(); ok {
			set(9, days)
		}
		set(10, amtFloat(r.RentPerDay))
		set(11, amtFloat(r.TotalRent()))
		set(12, amtFloat(r.AdvanceAmount))
		if r.StartingKM != nil {
			set(13, *r.StartingKM)
		}
		if r.EndingKM != nil {
			set(14, *r.EndingKM)
		}
		set(15, amtFloat(r.TotalAmountReceived))
		set(16, amtFloat(r.Balance()))

		f.SetCellStyle(rentalSheet, fmt.Sprintf("J%d", row), fmt.Sprintf("L%d", row), st.money)
		f.SetCellStyle(rentalSheet, fmt.Sprintf("O%d", row), fmt.Sprintf("P%d", row), st.money)

		totalReceived = addAmt(totalReceived, r.TotalAmountReceived)
		totalBalance = addAmt(totalBalance, r.Balance())
	}

	totalRow := headerRow + 1 + len(rentals)
	f.SetCellValue(rentalSheet, fmt.Sprintf("A%d", totalRow), "TOTAL")
	f.SetCellValue(rentalSheet, fmt.Sprintf("O%d", totalRow), amtFloat(totalReceived))
	f.SetCellValue(rentalSheet, fmt.Sprintf("P%d", totalRow), amtFloat(totalBalance))
	f.SetCellStyle(rentalSheet, fmt.Sprintf("A%d", totalRow), fmt.Sprintf("%s%d", lastCol, totalRow), st.total)

	f.SetColWidth(rentalSheet, "A", "D", 12)
	f.SetColWidth(rentalSheet, "E", "H", 18)
	f.SetColWidth(rentalSheet, "I", lastCol, 14)
	return nil
}

func writeExpenseSheet(f *excelize.File, st styles, vehicle fleet.Vehicle, expenses []fleet.Expense, periodLabel string, partners partnerNames) error {
	lastCol, _ := excelize.ColumnNumberToName(len(expenseHeaders))

	title := fmt.Sprintf("%s (%s) - Expense History - %s", vehicle.Name, vehicle.RegistrationNumber, periodLabel)
	if err := f.MergeCell(expenseSheet, "A1", lastCol+"1"); err != nil {
		return err
	}
	f.SetCellValue(expenseSheet, "A1", title)
	f.SetCellStyle(expenseSheet, "A1", lastCol+"1", st.title)

	const headerRow = 3
	for i, h := range expenseHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetCellValue(expenseSheet, fmt.Sprintf("%s%d", col, headerRow), h)
	}
	f.SetCellStyle(expenseSheet, "A3", lastCol+"3", st.header)

	total := fleet.ZeroAmount()
	for i, e := range expenses {
		row := headerRow + 1 + i
		f.SetCellValue(expenseSheet, fmt.Sprintf("A%d", row), e.Date.Format(dateLayout))
		f.SetCellValue(expenseSheet, fmt.Sprintf("B%d", row), e.Particulars)
		f.SetCellValue(expenseSheet, fmt.Sprintf("C%d", row), e.Place)
		f.SetCellValue(expenseSheet, fmt.Sprintf("D%d", row), e.CareOf)
		f.SetCellValue(expenseSheet, fmt.Sprintf("E%d", row), partners[e.PartnerID.String()])
		f.SetCellValue(expenseSheet, fmt.Sprintf("F%d", row), amtFloat(e.Amount))
		f.SetCellStyle(expenseSheet, fmt.Sprintf("F%d", row), fmt.Sprintf("F%d", row), st.money)
		total = addAmt(total, e.Amount)
	}

	totalRow := headerRow + 1 + len(expenses)
	f.SetCellValue(expenseSheet, fmt.Sprintf("A%d", totalRow), "TOTAL")
	f.SetCellValue(expenseSheet, fmt.Sprintf("F%d", totalRow), amtFloat(total))
	f.SetCellStyle(expenseSheet, fmt.Sprintf("A%d", totalRow), fmt.Sprintf("%s%d", lastCol, totalRow), st.total)

	f.SetColWidth(expenseSheet, "A", "A", 12)
	f.SetColWidth(expenseSheet, "B", "E", 20)
	f.SetColWidth(expenseSheet, "F", "F", 14)
	return nil
}

func dateString(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

func clockString(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(clockLayout)
}

// Totals are single-currency; a mismatch cannot occur here.
func addAmt(a, b money.Amount) money.Amount {
	v, err := a.Add(b)
	if err != nil {
		return a
	}
	return v
}

func amtFloat(a money.Amount) float64 {
	v, _ := a.Float64()
	return v
}
