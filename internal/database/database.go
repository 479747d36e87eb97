package database

import (
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pulkitch/strategy-backtester/internal/models"
	"github.com/pulkitch/strategy-backtester/internal/series"
)

// New opens the dataset catalog and migrates its schema.
func New(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&models.Dataset{}, &models.Bar{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}
	return db, nil
}

// SaveSeries stores a price series under name, replacing any dataset
// previously stored with the same name.
func SaveSeries(db *gorm.DB, name, source string, s *series.Series) error {
	if s == nil || s.Len() == 0 {
		return fmt.Errorf("refusing to store empty dataset %q", name)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var existing models.Dataset
		err := tx.Where("name = ?", name).First(&existing).Error
		switch {
		case err == nil:
			if err := tx.Unscoped().Where("dataset_id = ?", existing.ID).Delete(&models.Bar{}).Error; err != nil {
				return fmt.Errorf("clear old bars for %q: %w", name, err)
			}
			if err := tx.Unscoped().Delete(&existing).Error; err != nil {
				return fmt.Errorf("replace dataset %q: %w", name, err)
			}
		case err != gorm.ErrRecordNotFound:
			return fmt.Errorf("lookup dataset %q: %w", name, err)
		}

		ds := models.Dataset{Name: name, Source: source, Rows: s.Len()}
		if err := tx.Create(&ds).Error; err != nil {
			return fmt.Errorf("create dataset %q: %w", name, err)
		}

		bars := make([]models.Bar, s.Len())
		for i, b := range s.Bars {
			bars[i] = models.Bar{
				DatasetID: ds.ID,
				Time:      b.Time.Unix(),
				Open:      b.Open,
				High:      b.High,
				Low:       b.Low,
				Close:     b.Close,
				Volume:    b.Volume,
			}
		}
		if err := tx.CreateInBatches(bars, 500).Error; err != nil {
			return fmt.Errorf("store bars for %q: %w", name, err)
		}
		return nil
	})
}

// LoadSeries rebuilds the canonical price series of a stored dataset.
func LoadSeries(db *gorm.DB, name string) (*series.Series, error) {
	var ds models.Dataset
	if err := db.Where("name = ?", name).First(&ds).Error; err != nil {
		return nil, fmt.Errorf("dataset %q not found: %w", name, err)
	}

	var rows []models.Bar
	if err := db.Where("dataset_id = ?", ds.ID).Order("time asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load bars for %q: %w", name, err)
	}

	bars := make([]series.Bar, len(rows))
	for i, r := range rows {
		bars[i] = series.Bar{
			Time:   time.Unix(r.Time, 0).UTC(),
			Open:   r.Open,
			High:   r.High,
			Low:    r.Low,
			Close:  r.Close,
			Volume: r.Volume,
		}
	}
	return series.New(bars)
}

// ListDatasets returns the stored datasets, newest first.
func ListDatasets(db *gorm.DB) ([]models.Dataset, error) {
	var out []models.Dataset
	if err := db.Order("created_at desc").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list datasets: %w", err)
	}
	return out, nil
}
