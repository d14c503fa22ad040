// Package lotcsv reads tax lots from the CSV export of an exchange or a
// wallet.
//
// The expected header is
//
//	Asset,Date_Acquired,Quantity,Cost_Basis_Per_Unit,Fee_Paid,Currency,Exchange_Location,Notes
//
// Only the first four columns are required. Columns are matched by header
// name, in any order.
package lotcsv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/etnz/retirement"
	"github.com/etnz/retirement/date"
	"github.com/shopspring/decimal"
)

// Column names.
const (
	ColAsset     = "Asset"
	ColDate      = "Date_Acquired"
	ColQuantity  = "Quantity"
	ColCostBasis = "Cost_Basis_Per_Unit"
	ColFee       = "Fee_Paid"
	ColCurrency  = "Currency"
	ColLocation  = "Exchange_Location"
	ColNotes     = "Notes"
)

// Header is the complete header written by exports.
var Header = []string{ColAsset, ColDate, ColQuantity, ColCostBasis, ColFee, ColCurrency, ColLocation, ColNotes}

// Required lists the columns a valid file must have.
var Required = []string{ColAsset, ColDate, ColQuantity, ColCostBasis}

// Report is the outcome of a structural validation.
type Report struct {
	Valid  bool
	Errors []string
}

// Record is a raw row of the export.
type Record struct {
	ID        string
	Asset     string
	Date      string    // as found in the file
	Acquired  date.Date // zero when Date cannot be parsed
	Quantity  decimal.Decimal
	CostBasis decimal.Decimal
	Fee       decimal.Decimal
	Currency  string
	Location  string
	Notes     string
}

// Lot converts the record into a tax lot. Amounts are taken as dollars
// whatever the Currency column says.
func (r Record) Lot() retirement.Lot {
	return retirement.Lot{
		ID:        r.ID,
		Asset:     r.Asset,
		Quantity:  retirement.Q(r.Quantity),
		CostBasis: retirement.Dollars(r.CostBasis),
		Acquired:  r.Acquired,
		Fee:       retirement.Dollars(r.Fee),
		Location:  r.Location,
		Notes:     r.Notes,
	}
}

// TotalCost returns quantity*cost basis + fee.
func (r Record) TotalCost() decimal.Decimal { return r.Quantity.Mul(r.CostBasis).Add(r.Fee) }

// IsLongTerm reports whether the record qualifies for long-term treatment on
// on. Unparsable dates do.
func (r Record) IsLongTerm(on date.Date) bool { return retirement.IsLongTerm(r.Acquired, on) }

// row is a csv record together with its line in the file.
type row struct {
	line   int
	fields []string
}

// readRows reads every non empty record of r.
func readRows(r io.Reader) ([]row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // rows are checked afterwards
	reader.TrimLeadingSpace = true

	var rows []row
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv: %w", err)
		}
		line, _ := reader.FieldPos(0)
		rows = append(rows, row{line: line, fields: fields})
	}
	return rows, nil
}

// columns indexes a header by trimmed column name.
func columns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(h)] = i
	}
	return cols
}

// Validate checks the structure of the export read from r: a header with the
// required columns followed by at least one row, every row having at least
// as many fields as there are required columns.
//
// Structural problems are reported in the Report, the error is only for I/O
// and CSV syntax failures.
func Validate(r io.Reader) (Report, error) {
	rows, err := readRows(r)
	if err != nil {
		return Report{}, err
	}
	if len(rows) < 2 {
		return Report{Errors: []string{"CSV is empty or missing headers"}}, nil
	}

	cols := columns(rows[0].fields)
	var missing []string
	for _, c := range Required {
		if _, ok := cols[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return Report{Errors: []string{"Missing required columns: " + strings.Join(missing, ", ")}}, nil
	}

	var errs []string
	for _, row := range rows[1:] {
		if len(row.fields) < len(Required) {
			errs = append(errs, fmt.Sprintf("Row %d: Missing required columns", row.line))
		}
	}
	return Report{Valid: len(errs) == 0, Errors: errs}, nil
}

// Parse reads the records of the export read from r. Records are given the
// ID lot_<now>_<index>, the export having no identifier of its own.
//
// Parsing is lenient: a missing or unparsable number reads as 0, a missing
// asset as BTC, a missing currency as USD and an unparsable date as the zero
// date. Run Validate first to reject malformed files.
func Parse(r io.Reader, now time.Time) ([]Record, error) {
	rows, err := readRows(r)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	cols := columns(rows[0].fields)
	get := func(fields []string, col string) string {
		i, ok := cols[col]
		if !ok || i >= len(fields) {
			return ""
		}
		return strings.TrimSpace(fields[i])
	}

	stamp := now.Format("20060102150405")
	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := Record{
			ID:        fmt.Sprintf("lot_%s_%d", stamp, len(records)),
			Asset:     get(row.fields, ColAsset),
			Date:      get(row.fields, ColDate),
			Quantity:  number(get(row.fields, ColQuantity)),
			CostBasis: number(get(row.fields, ColCostBasis)),
			Fee:       number(get(row.fields, ColFee)),
			Currency:  strings.ToUpper(get(row.fields, ColCurrency)),
			Location:  get(row.fields, ColLocation),
			Notes:     get(row.fields, ColNotes),
		}
		if rec.Asset == "" {
			rec.Asset = retirement.DefaultAsset
		}
		if rec.Currency == "" {
			rec.Currency = retirement.USD
		}
		if d, err := date.Parse(rec.Date); err == nil {
			rec.Acquired = d
		}
		records = append(records, rec)
	}
	return records, nil
}

// number parses s, 0 when it is not a number.
func number(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Lots converts records into a lot store, in file order.
func Lots(records []Record) retirement.Lots {
	lots := make([]retirement.Lot, 0, len(records))
	for _, r := range records {
		lots = append(lots, r.Lot())
	}
	return retirement.NewLots(lots...)
}

// Holdings aggregates records per asset into holdings valued at their average
// cost basis, in order of first appearance. Fees are not part of the average
// cost.
func Holdings(records []Record) []retirement.Holding {
	var order []string
	qty := make(map[string]decimal.Decimal)
	cost := make(map[string]decimal.Decimal)
	for _, r := range records {
		if _, ok := qty[r.Asset]; !ok {
			order = append(order, r.Asset)
		}
		qty[r.Asset] = qty[r.Asset].Add(r.Quantity)
		cost[r.Asset] = cost[r.Asset].Add(r.Quantity.Mul(r.CostBasis))
	}
	holdings := make([]retirement.Holding, 0, len(order))
	for _, asset := range order {
		avg := decimal.Zero
		if !qty[asset].IsZero() {
			avg = cost[asset].Div(qty[asset])
		}
		holdings = append(holdings, retirement.Holding{
			Asset:    asset,
			Quantity: retirement.Q(qty[asset]),
			AvgCost:  retirement.Dollars(avg),
			Price:    retirement.Dollars(avg),
		})
	}
	return holdings
}

// Write exports lots to w with the complete header.
func Write(w io.Writer, lots []retirement.Lot) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, l := range lots {
		err := cw.Write([]string{
			l.Asset,
			l.Acquired.String(),
			l.Quantity.String(),
			l.CostBasis.Decimal().String(),
			l.Fee.Decimal().String(),
			l.CostBasis.Currency(),
			l.Location,
			l.Notes,
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
