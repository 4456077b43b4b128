// Package catalog holds the shelf product catalog and its CSV codec.
package catalog

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// columns is the fixed CSV column order. The identification model is prompted
// to emit exactly this header.
var columns = []string{"item_number", "product_name", "brand", "location", "price"}

// Record is one product identified on the shelf. Immutable once parsed.
type Record struct {
	ItemNumber int
	Name       string
	Brand      string
	Location   string
	Price      decimal.Decimal
}

// Equal compares two records field by field.
func (r Record) Equal(o Record) bool {
	return r.ItemNumber == o.ItemNumber &&
		r.Name == o.Name &&
		r.Brand == o.Brand &&
		r.Location == o.Location &&
		r.Price.Equal(o.Price)
}

// Catalog is the ordered list of products from a single identification photo.
// Item numbers are unique and contiguous, starting at 1.
type Catalog []Record

// Equal compares two catalogs record by record.
func (c Catalog) Equal(o Catalog) bool {
	if len(c) != len(o) {
		return false
	}
	for i := range c {
		if !c[i].Equal(o[i]) {
			return false
		}
	}
	return true
}

// FindByName looks up a record by product name, case-insensitive and trimmed.
func (c Catalog) FindByName(name string) (Record, bool) {
	name = strings.TrimSpace(name)
	for _, r := range c {
		if strings.EqualFold(strings.TrimSpace(r.Name), name) {
			return r, true
		}
	}
	return Record{}, false
}

// FormatError reports a catalog document that cannot be decoded.
type FormatError struct {
	Line   int
	Reason string
}

func (e *FormatError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("bad catalog format at line %d: %s", e.Line, e.Reason)
	}
	return fmt.Sprintf("bad catalog format: %s", e.Reason)
}

// Encode renders a catalog as CSV text with the fixed column order. Fields
// containing delimiters or quotes are escaped per RFC 4180 by the csv writer.
// A zero price encodes as "N/A", matching shelves where no price is visible.
func Encode(c Catalog) string {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	// Write never fails on a strings.Builder; errors surface via w.Error after Flush.
	_ = w.Write(columns)
	for _, r := range c {
		price := "N/A"
		if !r.Price.IsZero() {
			price = r.Price.String()
		}
		_ = w.Write([]string{
			strconv.Itoa(r.ItemNumber),
			r.Name,
			r.Brand,
			r.Location,
			price,
		})
	}
	w.Flush()
	return sb.String()
}

// Decode parses CSV text into a Catalog. It is the exact left inverse of
// Encode for any catalog Encode produces. Missing or misnamed columns,
// duplicate or non-contiguous item numbers, and unparsable prices are
// rejected with a FormatError.
func Decode(text string) (Catalog, error) {
	r := csv.NewReader(strings.NewReader(strings.TrimSpace(text)))
	rows, err := r.ReadAll()
	if err != nil {
		return nil, &FormatError{Reason: err.Error()}
	}
	if len(rows) == 0 {
		return nil, &FormatError{Reason: "empty document"}
	}

	header := rows[0]
	if len(header) != len(columns) {
		return nil, &FormatError{Line: 1, Reason: fmt.Sprintf("expected %d columns, got %d", len(columns), len(header))}
	}
	for i, want := range columns {
		if strings.ToLower(strings.TrimSpace(header[i])) != want {
			return nil, &FormatError{Line: 1, Reason: fmt.Sprintf("expected column %q, got %q", want, header[i])}
		}
	}

	seen := make(map[int]bool, len(rows)-1)
	cat := make(Catalog, 0, len(rows)-1)
	for i, row := range rows[1:] {
		line := i + 2

		num, err := strconv.Atoi(strings.TrimSpace(row[0]))
		if err != nil {
			return nil, &FormatError{Line: line, Reason: fmt.Sprintf("bad item number %q", row[0])}
		}
		if seen[num] {
			return nil, &FormatError{Line: line, Reason: fmt.Sprintf("duplicate item number %d", num)}
		}
		seen[num] = true
		if num != len(cat)+1 {
			return nil, &FormatError{Line: line, Reason: fmt.Sprintf("item numbers must be contiguous from 1, got %d", num)}
		}

		price, err := ParsePrice(row[4])
		if err != nil {
			return nil, &FormatError{Line: line, Reason: fmt.Sprintf("bad price %q", row[4])}
		}

		cat = append(cat, Record{
			ItemNumber: num,
			Name:       strings.TrimSpace(row[1]),
			Brand:      strings.TrimSpace(row[2]),
			Location:   strings.TrimSpace(row[3]),
			Price:      price,
		})
	}

	return cat, nil
}

// ParsePrice parses a price cell. The identification model writes prices the
// way shelves show them, so "$1.99", "1.99" and "N/A" are all accepted; "N/A"
// and empty cells parse to a zero price.
func ParsePrice(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "n/a") {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
