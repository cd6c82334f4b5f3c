package domain

import (
	"time"
)

// CREATE TABLE public.promotions (
//     promo_id              UUID PRIMARY KEY,
//     store_id              UUID NOT NULL REFERENCES stores(store_id),
//     product_id            UUID REFERENCES products(product_id),
//     barcode               TEXT NOT NULL,
//     product_name          TEXT NOT NULL,
//     discount_label        TEXT,
//     equivalent_percentage NUMERIC,
//     original_price        NUMERIC,
//     promo_price           NUMERIC NOT NULL DEFAULT 0,
//     category              TEXT NOT NULL DEFAULT 'Overig',
//     primary_macro         TEXT NOT NULL DEFAULT 'None',
//     is_healthy            BOOLEAN NOT NULL DEFAULT FALSE,
//     is_meerdere_artikels  BOOLEAN NOT NULL DEFAULT FALSE,
//     deal_quantity         INT NOT NULL DEFAULT 1,
//     valid_from            DATE NOT NULL,
//     valid_until           DATE NOT NULL,
//     is_active             BOOLEAN NOT NULL DEFAULT TRUE,
//     created_at            TIMESTAMPTZ DEFAULT NOW()
// );

// Promotion rows are never mutated once superseded: a new scraper run marks
// the store's active set inactive and inserts a fresh batch.
type Promotion struct {
	PromoID              string    `gorm:"column:promo_id;primaryKey" json:"promo_id"`
	StoreID              string    `gorm:"column:store_id" json:"store_id"`
	ProductID            *string   `gorm:"column:product_id" json:"product_id"`
	Barcode              string    `gorm:"column:barcode;type:text" json:"barcode"`
	ProductName          string    `gorm:"column:product_name;type:text" json:"product_name"`
	DiscountLabel        string    `gorm:"column:discount_label;type:text" json:"discount_label"`
	EquivalentPercentage *float64  `gorm:"column:equivalent_percentage;type:numeric" json:"equivalent_percentage"`
	OriginalPrice        *float64  `gorm:"column:original_price;type:numeric" json:"original_price"`
	PromoPrice           float64   `gorm:"column:promo_price;type:numeric" json:"promo_price"`
	Category             string    `gorm:"column:category;type:text;default:Overig" json:"category"`
	PrimaryMacro         string    `gorm:"column:primary_macro;type:text;default:None" json:"primary_macro"`
	IsHealthy            bool      `gorm:"column:is_healthy;default:false" json:"is_healthy"`
	IsMeerdereArtikels   bool      `gorm:"column:is_meerdere_artikels;default:false" json:"is_meerdere_artikels"`
	DealQuantity         int       `gorm:"column:deal_quantity;default:1" json:"deal_quantity"`
	ValidFrom            time.Time `gorm:"column:valid_from" json:"valid_from"`
	ValidUntil           time.Time `gorm:"column:valid_until" json:"valid_until"`
	IsActive             bool      `gorm:"column:is_active;default:true" json:"is_active"`
	CreatedAt            time.Time `gorm:"column:created_at" json:"created_at"`

	// Joined from stores on read, never written.
	StoreName string `gorm:"->" json:"store_name,omitempty"`
}

func (Promotion) TableName() string {
	return "promotions"
}
