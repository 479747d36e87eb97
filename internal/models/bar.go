package models

import "gorm.io/gorm"

// Bar is one stored OHLCV row of a dataset. Time is kept as a unix
// timestamp in seconds.
type Bar struct {
	gorm.Model
	DatasetID uint  `gorm:"index;not null"`
	Time      int64 `gorm:"not null"`
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}
