package models

import "gorm.io/gorm"

// Dataset is one imported OHLCV series in the catalog.
type Dataset struct {
	gorm.Model
	Name   string `gorm:"uniqueIndex;not null"`
	Source string // file path or URL the data was ingested from
	Rows   int
}
