package database

import (
	"gorm.io/gorm"
)

type Database struct {
	db                      *gorm.DB
	hierarchyRepo           *HierarchyRepo
	tagRepo                 *TagRepo
	genericTagMappingRepo   *GenericTagMappingRepo
	availableGenericTagRepo *AvailableGenericTagRepo
}

// New initializes a new Database struct with each repository using a shared GORM database instance
func New(db *gorm.DB) Database {
	return Database{
		db:                      db,
		hierarchyRepo:           NewHierarchyRepo(db),
		tagRepo:                 NewTagRepo(db),
		genericTagMappingRepo:   NewGenericTagMappingRepo(db),
		availableGenericTagRepo: NewAvailableGenericTagRepo(db),
	}
}

// Accessor methods for each repository

func (d Database) HierarchyRepo() *HierarchyRepo {
	return d.hierarchyRepo
}

func (d Database) TagRepo() *TagRepo {
	return d.tagRepo
}

func (d Database) GenericTagMappingRepo() *GenericTagMappingRepo {
	return d.genericTagMappingRepo
}

func (d Database) AvailableGenericTagRepo() *AvailableGenericTagRepo {
	return d.availableGenericTagRepo
}

// GetDB returns the underlying database connection
func (d Database) GetDB() *gorm.DB {
	return d.db
}

// Transaction runs fn against repositories bound to a single transaction.
// Any error returned by fn rolls the whole unit back.
func (d Database) Transaction(fn func(tx Database) error) error {
	return d.db.Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}

// nextPosition returns the next insertion position for a table that keeps
// an explicit order column.
func nextPosition(db *gorm.DB, model any) (int64, error) {
	var last int64
	err := db.Model(model).Select("COALESCE(MAX(position), 0)").Scan(&last).Error
	return last + 1, err
}
