package dataset

import (
	"github.com/julie-labs/shelf-assistant/internal/catalog"
)

// ShelfRecord is one labeled shelf photo: the image path plus the ground-truth
// product list a human annotator recorded.
type ShelfRecord struct {
	PhotoPath string           `json:"photo_path" parquet:"photo_path"`
	Products  []LabeledProduct `json:"products" parquet:"products,list"`
}

// LabeledProduct is a ground-truth product annotation.
type LabeledProduct struct {
	ItemNumber int    `json:"item_number" parquet:"item_number"`
	Name       string `json:"product_name" parquet:"product_name"`
	Brand      string `json:"brand" parquet:"brand"`
	Location   string `json:"location" parquet:"location"`
	Price      string `json:"price" parquet:"price"`
}

// Catalog converts the ground-truth annotations to a catalog for comparison
// against model output.
func (r *ShelfRecord) Catalog() (catalog.Catalog, error) {
	cat := make(catalog.Catalog, 0, len(r.Products))
	for _, p := range r.Products {
		price, err := catalog.ParsePrice(p.Price)
		if err != nil {
			return nil, err
		}
		cat = append(cat, catalog.Record{
			ItemNumber: p.ItemNumber,
			Name:       p.Name,
			Brand:      p.Brand,
			Location:   p.Location,
			Price:      price,
		})
	}
	return cat, nil
}
