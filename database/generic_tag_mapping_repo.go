package database

import (
	"errors"
	"fmt"
	"time"

	"github.com/rpupo63/plant-tag-config/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GenericTagMappingRepo struct {
	db *gorm.DB
}

func NewGenericTagMappingRepo(db *gorm.DB) *GenericTagMappingRepo {
	return &GenericTagMappingRepo{db}
}

// GetDB returns the underlying database connection for debugging purposes
func (r *GenericTagMappingRepo) GetDB() *gorm.DB {
	return r.db
}

// Increment bumps the usage counter of the exact (tag, industry, equipment)
// triple, creating it with a count of one on first use. The bump is a single
// upsert, so concurrent first uses both count.
func (r *GenericTagMappingRepo) Increment(genericTag, industry, equipment string, at time.Time) (*models.GenericTagMapping, error) {
	err := r.db.Clauses(clause.OnConflict{
		Columns: tripleColumns,
		DoUpdates: clause.Assignments(map[string]any{
			"count":        gorm.Expr("generic_tag_mappings.count + 1"),
			"last_updated": at,
		}),
	}).Create(&models.GenericTagMapping{
		GenericTag:  genericTag,
		Industry:    industry,
		Equipment:   equipment,
		Count:       1,
		LastUpdated: at,
	}).Error
	if err != nil {
		return nil, err
	}

	mapping, err := r.Find(genericTag, industry, equipment)
	if err != nil {
		return nil, err
	}
	if mapping == nil {
		return nil, fmt.Errorf("usage counter %s/%s/%s missing after upsert", genericTag, industry, equipment)
	}
	return mapping, nil
}

// Find returns the mapping of the triple, or nil when it was never used.
func (r *GenericTagMappingRepo) Find(genericTag, industry, equipment string) (*models.GenericTagMapping, error) {
	var mapping models.GenericTagMapping
	err := r.db.
		Where("generic_tag = ? AND industry = ? AND equipment = ?", genericTag, industry, equipment).
		First(&mapping).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &mapping, nil
}

// FindAll returns every usage counter.
func (r *GenericTagMappingRepo) FindAll() ([]models.GenericTagMapping, error) {
	var mappings []models.GenericTagMapping
	err := r.db.Order("industry, equipment, generic_tag").Find(&mappings).Error
	return mappings, err
}
