package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
)

func TestNewLoader(t *testing.T) {
	path := "./test.parquet"
	loader := NewLoader(path)

	if loader.datasetPath != path {
		t.Errorf("Expected path %s, got %s", path, loader.datasetPath)
	}
}

func TestRecordCatalog(t *testing.T) {
	record := ShelfRecord{
		PhotoPath: "shelves/aisle4_high.jpg",
		Products: []LabeledProduct{
			{ItemNumber: 1, Name: "Cola", Brand: "Coca-Cola", Location: "top shelf", Price: "$1.99"},
			{ItemNumber: 2, Name: "Chips", Brand: "Lay's", Location: "middle shelf", Price: "N/A"},
		},
	}

	cat, err := record.Catalog()
	if err != nil {
		t.Fatalf("Catalog failed: %v", err)
	}
	if len(cat) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(cat))
	}
	if !cat[0].Price.Equal(decimal.NewFromFloat(1.99)) {
		t.Errorf("Expected price 1.99, got %s", cat[0].Price)
	}
	if !cat[1].Price.IsZero() {
		t.Errorf("Expected N/A price to be zero, got %s", cat[1].Price)
	}
}

func TestRecordCatalogBadPrice(t *testing.T) {
	record := ShelfRecord{
		Products: []LabeledProduct{
			{ItemNumber: 1, Name: "Cola", Price: "cheap"},
		},
	}
	if _, err := record.Catalog(); err == nil {
		t.Error("Expected error for unparseable price, got nil")
	}
}

func TestLoadJSONLSample(t *testing.T) {
	tmpDir := t.TempDir()
	jsonlPath := filepath.Join(tmpDir, "test.jsonl")

	testData := `{"photo_path":"a_high.jpg","products":[{"item_number":1,"product_name":"Cola","brand":"Coca-Cola","location":"top shelf","price":"1.99"}]}
{"photo_path":"b_high.jpg","products":[{"item_number":1,"product_name":"Chips","brand":"Lay's","location":"middle shelf","price":"3.49"}]}
{"photo_path":"c_high.jpg","products":[]}
`
	err := os.WriteFile(jsonlPath, []byte(testData), 0644)
	if err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	loader := NewLoader(jsonlPath)

	records, err := loader.LoadSample(2)
	if err != nil {
		t.Fatalf("LoadSample failed: %v", err)
	}

	if len(records) != 2 {
		t.Errorf("Expected 2 records, got %d", len(records))
	}

	if records[0].PhotoPath != "a_high.jpg" {
		t.Errorf("Expected photo path a_high.jpg, got %s", records[0].PhotoPath)
	}

	if len(records[0].Products) != 1 || records[0].Products[0].Name != "Cola" {
		t.Errorf("Expected first record to hold Cola, got %+v", records[0].Products)
	}
}

func TestLoadJSONL(t *testing.T) {
	tmpDir := t.TempDir()
	jsonlPath := filepath.Join(tmpDir, "test.jsonl")

	testData := `{"photo_path":"a_high.jpg","products":[]}
{"photo_path":"b_high.jpg","products":[]}
`
	err := os.WriteFile(jsonlPath, []byte(testData), 0644)
	if err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	loader := NewLoader(jsonlPath)

	records, err := loader.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(records) != 2 {
		t.Errorf("Expected 2 records, got %d", len(records))
	}
}

func TestLoadUnsupportedFormat(t *testing.T) {
	loader := NewLoader("test.txt")

	_, err := loader.Load()
	if err == nil {
		t.Error("Expected error for unsupported format, got nil")
	}

	_, err = loader.LoadSample(10)
	if err == nil {
		t.Error("Expected error for unsupported format in LoadSample, got nil")
	}
}

func TestLoadNonExistentFile(t *testing.T) {
	loader := NewLoader("/nonexistent/path/file.jsonl")

	_, err := loader.Load()
	if err == nil {
		t.Error("Expected error for non-existent file, got nil")
	}
}
