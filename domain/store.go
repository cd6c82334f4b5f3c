package domain

import (
	"time"
)

// CREATE TABLE public.stores (
//     store_id    UUID PRIMARY KEY,
//     store_name  TEXT UNIQUE NOT NULL,
//     logo_url    TEXT,
//     created_at  TIMESTAMPTZ DEFAULT NOW()
// );

type Store struct {
	StoreID   string    `gorm:"column:store_id;primaryKey" json:"store_id"`
	StoreName string    `gorm:"column:store_name;uniqueIndex" json:"store_name"`
	LogoURL   string    `gorm:"column:logo_url;type:text" json:"logo_url"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Store) TableName() string {
	return "stores"
}
