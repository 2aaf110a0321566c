package database

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/rpupo63/plant-tag-config/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type HierarchyRepo struct {
	db *gorm.DB
}

func NewHierarchyRepo(db *gorm.DB) *HierarchyRepo {
	return &HierarchyRepo{db}
}

// GetDB returns the underlying database connection for debugging purposes
func (r *HierarchyRepo) GetDB() *gorm.DB {
	return r.db
}

// Add stores the row unless an identical row already exists.
// It reports whether a new row was written.
func (r *HierarchyRepo) Add(row *models.HierarchyRow) (bool, error) {
	exists, err := r.Exists(row.Industry, row.Path())
	if err != nil || exists {
		return false, err
	}

	row.ID = uuid.New()
	result := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(row)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// FindAll returns every hierarchy row ordered by path.
func (r *HierarchyRepo) FindAll() ([]models.HierarchyRow, error) {
	var rows []models.HierarchyRow
	err := r.db.Order("industry, plant, area, equipment, asset").Find(&rows).Error
	return rows, err
}

// FindByIndustry returns the rows of one industry ordered by path.
func (r *HierarchyRepo) FindByIndustry(industry string) ([]models.HierarchyRow, error) {
	var rows []models.HierarchyRow
	err := r.db.
		Where("industry = ?", industry).
		Order("plant, area, equipment, asset").
		Find(&rows).Error
	return rows, err
}

// Exists reports whether the full path is stored for the industry.
func (r *HierarchyRepo) Exists(industry string, path models.HierarchyPath) (bool, error) {
	var count int64
	err := r.db.Model(&models.HierarchyRow{}).
		Where("industry = ? AND plant = ? AND area = ? AND equipment = ? AND asset = ?",
			industry, path.Plant, path.Area, path.Equipment, path.Asset).
		Count(&count).Error
	return count > 0, err
}

// DistinctValues returns the sorted distinct values of level among the rows
// of industry that match every non-empty ancestor in filters.
func (r *HierarchyRepo) DistinctValues(level models.HierarchyLevel, industry string, filters map[string]string) ([]string, error) {
	if level.Depth() < 0 {
		return nil, fmt.Errorf("unknown hierarchy level %q", level)
	}
	column := level.Column()

	query := r.db.Model(&models.HierarchyRow{})
	if industry != "" {
		query = query.Where("industry = ?", industry)
	}

	// Apply filters in a fixed order so the generated SQL is stable.
	keys := make([]string, 0, len(filters))
	for key := range filters {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		ancestor, ok := models.ParseHierarchyLevel(key)
		if !ok || filters[key] == "" {
			continue
		}
		query = query.Where(ancestor.Column()+" = ?", filters[key])
	}

	var values []string
	if err := query.Distinct(column).Order(column).Pluck(column, &values).Error; err != nil {
		return nil, err
	}
	return values, nil
}
