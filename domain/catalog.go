package domain

// CREATE TABLE public.catalog_entries (
//     barcode             TEXT PRIMARY KEY,
//     product_name        TEXT NOT NULL,
//     brands              TEXT,
//     energy_kcal_100g    NUMERIC,
//     proteins_100g       NUMERIC,
//     carbohydrates_100g  NUMERIC,
//     fat_100g            NUMERIC,
//     sugars_100g         NUMERIC,
//     fiber_100g          NUMERIC,
//     salt_100g           NUMERIC
// );

// CatalogEntry is one reference nutrition fact sheet. The table is imported
// from the OpenFoodFacts dump and is read-only for this service.
type CatalogEntry struct {
	Barcode           string   `gorm:"column:barcode;primaryKey" json:"barcode"`
	ProductName       string   `gorm:"column:product_name;type:text" json:"product_name"`
	Brands            *string  `gorm:"column:brands;type:text" json:"brands"`
	EnergyKcal100g    *float64 `gorm:"column:energy_kcal_100g;type:numeric" json:"energy_kcal_100g"`
	Proteins100g      *float64 `gorm:"column:proteins_100g;type:numeric" json:"proteins_100g"`
	Carbohydrates100g *float64 `gorm:"column:carbohydrates_100g;type:numeric" json:"carbohydrates_100g"`
	Fat100g           *float64 `gorm:"column:fat_100g;type:numeric" json:"fat_100g"`
	Sugars100g        *float64 `gorm:"column:sugars_100g;type:numeric" json:"sugars_100g"`
	Fiber100g         *float64 `gorm:"column:fiber_100g;type:numeric" json:"fiber_100g"`
	Salt100g          *float64 `gorm:"column:salt_100g;type:numeric" json:"salt_100g"`

	// Confidence of the name/barcode association, 0-100. Computed per
	// lookup, never stored.
	MatchScore float64 `gorm:"-" json:"match_score"`
}

func (CatalogEntry) TableName() string {
	return "catalog_entries"
}

// CatalogStats reports how much of the reference catalog is usable.
type CatalogStats struct {
	TotalEntries     int64 `json:"total_entries"`
	EntriesWithMacro int64 `json:"entries_with_macros"`
}
