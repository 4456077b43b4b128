package catalog

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		catalog Catalog
	}{
		{
			name: "single record",
			catalog: Catalog{
				{ItemNumber: 1, Name: "Cola 330ml", Brand: "Coca-Cola", Location: "top shelf left", Price: decimal.NewFromFloat(1.99)},
			},
		},
		{
			name: "multiple records",
			catalog: Catalog{
				{ItemNumber: 1, Name: "Cola 330ml", Brand: "Coca-Cola", Location: "top shelf left", Price: decimal.NewFromFloat(1.99)},
				{ItemNumber: 2, Name: "Sparkling Water 500ml", Brand: "Perrier", Location: "top shelf center", Price: decimal.NewFromFloat(2.49)},
				{ItemNumber: 3, Name: "Orange Juice 1L", Brand: "Tropicana", Location: "middle shelf left", Price: decimal.NewFromFloat(3.99)},
			},
		},
		{
			name: "fields needing quoting",
			catalog: Catalog{
				{ItemNumber: 1, Name: "Chips, Salted", Brand: `Bob's "Best"`, Location: "bottom shelf, right", Price: decimal.NewFromFloat(0.99)},
			},
		},
		{
			name: "no visible price",
			catalog: Catalog{
				{ItemNumber: 1, Name: "Mystery Item", Brand: "Unknown", Location: "middle shelf center", Price: decimal.Zero},
			},
		},
		{
			name:    "empty catalog",
			catalog: Catalog{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded := Encode(tt.catalog)
			decoded, err := Decode(encoded)
			if err != nil {
				t.Fatalf("Decode failed: %v\nencoded:\n%s", err, encoded)
			}
			if !decoded.Equal(tt.catalog) {
				t.Errorf("Round trip mismatch.\nwant: %+v\ngot:  %+v\nencoded:\n%s", tt.catalog, decoded, encoded)
			}
		})
	}
}

func TestEncodeHeader(t *testing.T) {
	encoded := Encode(Catalog{})
	firstLine := strings.SplitN(encoded, "\n", 2)[0]
	if firstLine != "item_number,product_name,brand,location,price" {
		t.Errorf("Unexpected header: %q", firstLine)
	}
}

func TestDecodeModelOutput(t *testing.T) {
	// Output shaped the way the identification prompt instructs the model.
	text := `item_number,product_name,brand,location,price
1,Cola 330ml,Coca-Cola,top shelf left,$1.99
2,Sparkling Water 500ml,Perrier,top shelf center,$2.49
3,Mystery Snack,Unknown,bottom shelf right,N/A
`
	cat, err := Decode(text)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(cat) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(cat))
	}
	if !cat[0].Price.Equal(mustDecimal(t, "1.99")) {
		t.Errorf("Expected price 1.99, got %s", cat[0].Price)
	}
	if !cat[2].Price.IsZero() {
		t.Errorf("Expected N/A price to decode as zero, got %s", cat[2].Price)
	}
}

func TestDecodeRejects(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{
			name: "empty document",
			text: "",
		},
		{
			name: "missing column",
			text: "item_number,product_name,brand,location\n1,Cola,Coca-Cola,top shelf\n",
		},
		{
			name: "misnamed column",
			text: "item_number,name,brand,location,price\n1,Cola,Coca-Cola,top shelf,1.99\n",
		},
		{
			name: "duplicate item number",
			text: "item_number,product_name,brand,location,price\n1,Cola,Coca-Cola,top shelf,1.99\n1,Fanta,Coca-Cola,top shelf,1.99\n",
		},
		{
			name: "non-contiguous item numbers",
			text: "item_number,product_name,brand,location,price\n1,Cola,Coca-Cola,top shelf,1.99\n3,Fanta,Coca-Cola,top shelf,1.99\n",
		},
		{
			name: "item numbers not starting at 1",
			text: "item_number,product_name,brand,location,price\n2,Cola,Coca-Cola,top shelf,1.99\n",
		},
		{
			name: "non-integer item number",
			text: "item_number,product_name,brand,location,price\nfirst,Cola,Coca-Cola,top shelf,1.99\n",
		},
		{
			name: "unparsable price",
			text: "item_number,product_name,brand,location,price\n1,Cola,Coca-Cola,top shelf,cheap\n",
		},
		{
			name: "ragged row",
			text: "item_number,product_name,brand,location,price\n1,Cola,Coca-Cola\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.text)
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			var fe *FormatError
			if !errors.As(err, &fe) {
				t.Errorf("Expected FormatError, got %T: %v", err, err)
			}
		})
	}
}

func TestFindByName(t *testing.T) {
	cat := Catalog{
		{ItemNumber: 1, Name: "Cola 330ml", Brand: "Coca-Cola", Location: "top shelf left", Price: decimal.NewFromFloat(1.99)},
		{ItemNumber: 2, Name: "Orange Juice 1L", Brand: "Tropicana", Location: "middle shelf", Price: decimal.NewFromFloat(3.99)},
	}

	tests := []struct {
		name  string
		query string
		found bool
		item  int
	}{
		{"exact match", "Cola 330ml", true, 1},
		{"case-insensitive", "cola 330ML", true, 1},
		{"trimmed", "  Orange Juice 1L  ", true, 2},
		{"not in catalog", "Sprite", false, 0},
		{"empty", "", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, ok := cat.FindByName(tt.query)
			if ok != tt.found {
				t.Fatalf("FindByName(%q) found=%v, expected %v", tt.query, ok, tt.found)
			}
			if ok && rec.ItemNumber != tt.item {
				t.Errorf("Expected item %d, got %d", tt.item, rec.ItemNumber)
			}
		})
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in       string
		expected string
		wantErr  bool
	}{
		{"1.99", "1.99", false},
		{"$2.49", "2.49", false},
		{" $ 3.00 ", "3", false},
		{"N/A", "0", false},
		{"n/a", "0", false},
		{"", "0", false},
		{"free", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePrice(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Expected error for %q", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePrice(%q) failed: %v", tt.in, err)
			}
			if !got.Equal(mustDecimal(t, tt.expected)) {
				t.Errorf("ParsePrice(%q) = %s, expected %s", tt.in, got, tt.expected)
			}
		})
	}
}
