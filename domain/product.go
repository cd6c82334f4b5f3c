package domain

import (
	"time"
)

// CREATE TABLE public.products (
//     product_id          UUID PRIMARY KEY,
//     barcode             TEXT UNIQUE NOT NULL,
//     product_name        TEXT NOT NULL,
//     brand               TEXT,
//     energy_kcal_100g    NUMERIC,
//     proteins_100g       NUMERIC,
//     carbohydrates_100g  NUMERIC,
//     fat_100g            NUMERIC,
//     sugars_100g         NUMERIC,
//     fiber_100g          NUMERIC,
//     salt_100g           NUMERIC,
//     created_at          TIMESTAMPTZ DEFAULT NOW()
// );

// Product is the pipeline-owned product row, keyed by barcode. Nutrition
// fields are pointers: an upsert must never null out previously known values.
type Product struct {
	ProductID         string    `gorm:"column:product_id;primaryKey" json:"product_id"`
	Barcode           string    `gorm:"column:barcode;uniqueIndex" json:"barcode"`
	ProductName       string    `gorm:"column:product_name;type:text" json:"product_name"`
	Brand             *string   `gorm:"column:brand;type:text" json:"brand"`
	EnergyKcal100g    *float64  `gorm:"column:energy_kcal_100g;type:numeric" json:"energy_kcal_100g"`
	Proteins100g      *float64  `gorm:"column:proteins_100g;type:numeric" json:"proteins_100g"`
	Carbohydrates100g *float64  `gorm:"column:carbohydrates_100g;type:numeric" json:"carbohydrates_100g"`
	Fat100g           *float64  `gorm:"column:fat_100g;type:numeric" json:"fat_100g"`
	Sugars100g        *float64  `gorm:"column:sugars_100g;type:numeric" json:"sugars_100g"`
	Fiber100g         *float64  `gorm:"column:fiber_100g;type:numeric" json:"fiber_100g"`
	Salt100g          *float64  `gorm:"column:salt_100g;type:numeric" json:"salt_100g"`
	CreatedAt         time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Product) TableName() string {
	return "products"
}
