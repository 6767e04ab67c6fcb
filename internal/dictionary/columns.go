// Package dictionary holds the curated column vocabulary of the hand-kept
// register workbooks: which canonical fields exist and which header spellings
// may carry each of them.
package dictionary

// Column identifies a canonical register field.
type Column string

const (
	DateOut       Column = "date_out"
	TimeOut       Column = "time_out"
	DateIn        Column = "date_in"
	TimeIn        Column = "time_in"
	Customer      Column = "customer"
	ContactNo     Column = "contact_no"
	CustomerID    Column = "customer_id"
	CareOf        Column = "care_of"
	Destination   Column = "destination"
	DaysOfRent    Column = "days_of_rent"
	RentPerDay    Column = "rent_per_day"
	Advance       Column = "advance_amount"
	StartingKM    Column = "starting_km"
	EndingKM      Column = "ending_km"
	TotalReceived Column = "total_amount_received"
	ExpenseDate   Column = "expense_date"
	Particulars   Column = "particulars"
	Place         Column = "place"
	Amount        Column = "amount"
	ExpenseCareOf Column = "expense_care_of"
)

// curated maps each column to the header spellings that may carry it, in
// priority order: the first present, non-empty cell wins. The register books
// in circulation are inconsistent about punctuation, hence the
// stray-semicolon variants.
var curated = map[Column][]string{
	DateOut:       {"DATE OUT"},
	TimeOut:       {"TIME OUT"},
	DateIn:        {"DATE IN"},
	TimeIn:        {"TIME IN"},
	Customer:      {"CUSTOMER"},
	ContactNo:     {"CONTACT NO;", "CONTACT NO"},
	CustomerID:    {"CUSTOMER ID"},
	CareOf:        {"C/O"},
	Destination:   {"DESTINATION"},
	DaysOfRent:    {"DAYS OF RENT"},
	RentPerDay:    {"RENT/DAY"},
	Advance:       {"ADV; AMOUNT", "ADV AMOUNT"},
	StartingKM:    {"STARTING KM"},
	EndingKM:      {"ENDING KM"},
	TotalReceived: {"TOTAL AMOUNT RECEIVED"},
	ExpenseDate:   {"DATE"},
	Particulars:   {"PARTICULARS"},
	Place:         {"PLACE"},
	Amount:        {"AMOUNT"},
	// Rows doubling as rental+expense share a C/O column; the duplicate
	// column (suffixed on re-read) carries the expense side when present.
	ExpenseCareOf: {"C/O.1"},
}

// Aliases returns the header spellings for col, in priority order.
func Aliases(col Column) []string { return curated[col] }
