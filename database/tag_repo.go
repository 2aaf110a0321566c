package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/rpupo63/plant-tag-config/models"
	"gorm.io/gorm"
)

type TagRepo struct {
	db *gorm.DB
}

func NewTagRepo(db *gorm.DB) *TagRepo {
	return &TagRepo{db}
}

// GetDB returns the underlying database connection for debugging purposes
func (r *TagRepo) GetDB() *gorm.DB {
	return r.db
}

// AddBatch commits rows in the given order. Rows receive fresh IDs and
// positions after every previously committed row.
func (r *TagRepo) AddBatch(rows []models.TagRow) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		position, err := nextPosition(tx, &models.TagRow{})
		if err != nil {
			return err
		}
		now := time.Now()
		for i := range rows {
			rows[i].ID = uuid.New()
			rows[i].Position = position + int64(i)
			rows[i].CreatedAt = now
		}
		return tx.CreateInBatches(rows, 100).Error
	})
}

// FindAll returns every committed tag in commit order.
func (r *TagRepo) FindAll() ([]models.TagRow, error) {
	var rows []models.TagRow
	err := r.db.Order("position").Find(&rows).Error
	return rows, err
}

// Count returns the number of committed tags.
func (r *TagRepo) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.TagRow{}).Count(&count).Error
	return count, err
}

// CountDistinct returns the number of distinct values in column.
func (r *TagRepo) CountDistinct(column string) (int64, error) {
	var count int64
	err := r.db.Model(&models.TagRow{}).Distinct(column).Count(&count).Error
	return count, err
}

// DistinctEquipment returns the sorted equipment names tagged for industry.
func (r *TagRepo) DistinctEquipment(industry string) ([]string, error) {
	var values []string
	err := r.db.Model(&models.TagRow{}).
		Where("industry = ?", industry).
		Distinct("equipment").
		Order("equipment").
		Pluck("equipment", &values).Error
	return values, err
}
