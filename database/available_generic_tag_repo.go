package database

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rpupo63/plant-tag-config/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var tripleColumns = []clause.Column{{Name: "generic_tag"}, {Name: "industry"}, {Name: "equipment"}}

// AvailableGenericTagRepo is the source of truth for generic tag UUIDs and
// metadata. Lookups try the exact (tag, industry, equipment) scope first and
// fall back to (tag, industry); among several matches the earliest inserted
// row wins.
type AvailableGenericTagRepo struct {
	db *gorm.DB
}

func NewAvailableGenericTagRepo(db *gorm.DB) *AvailableGenericTagRepo {
	return &AvailableGenericTagRepo{db}
}

// GetDB returns the underlying database connection for debugging purposes
func (r *AvailableGenericTagRepo) GetDB() *gorm.DB {
	return r.db
}

func (r *AvailableGenericTagRepo) first(query string, args ...any) (*models.AvailableGenericTag, error) {
	var row models.AvailableGenericTag
	err := r.db.Where(query, args...).Order("position").First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// FindExact returns the row of the exact triple, or nil.
func (r *AvailableGenericTagRepo) FindExact(genericTag, industry, equipment string) (*models.AvailableGenericTag, error) {
	return r.first("generic_tag = ? AND industry = ? AND equipment = ?", genericTag, industry, equipment)
}

// Resolve returns the exact-triple row, else the first (tag, industry) row,
// else nil.
func (r *AvailableGenericTagRepo) Resolve(genericTag, industry, equipment string) (*models.AvailableGenericTag, error) {
	row, err := r.FindExact(genericTag, industry, equipment)
	if err != nil || row != nil {
		return row, err
	}
	return r.first("generic_tag = ? AND industry = ?", genericTag, industry)
}

// MetadataFor resolves the metadata of a generic tag, defaulting to "".
func (r *AvailableGenericTagRepo) MetadataFor(genericTag, industry, equipment string) (string, error) {
	if genericTag == "" {
		return "", nil
	}
	row, err := r.Resolve(genericTag, industry, equipment)
	if err != nil || row == nil {
		return "", err
	}
	return row.Metadata, nil
}

// GetOrCreateUUID returns the UUID already assigned to the tag in this
// scope. When none exists a new UUID is minted and recorded together with
// metadata, so later calls for the same triple return the same value.
func (r *AvailableGenericTagRepo) GetOrCreateUUID(genericTag, industry, equipment, metadata string) (string, error) {
	if genericTag == "" {
		return "", nil
	}

	var tagUUID string
	err := r.db.Transaction(func(tx *gorm.DB) error {
		scoped := NewAvailableGenericTagRepo(tx)
		row, err := scoped.Resolve(genericTag, industry, equipment)
		if err != nil {
			return err
		}
		if row != nil {
			tagUUID = row.UUID
			return nil
		}

		created := models.AvailableGenericTag{
			GenericTag: genericTag,
			UUID:       uuid.NewString(),
			Metadata:   metadata,
			Industry:   industry,
			Equipment:  equipment,
		}
		if _, err := scoped.Add(&created); err != nil {
			return err
		}
		tagUUID = created.UUID
		return nil
	})
	return tagUUID, err
}

// UpsertMetadata sets the metadata of the exact triple. A missing row is
// inserted with tagUUID. When tagUUID is empty the row takes the UUID the
// triple already resolves to through its (tag, industry) fallback, and a
// fresh one only when nothing resolves. created reports an insert.
func (r *AvailableGenericTagRepo) UpsertMetadata(genericTag, industry, equipment, tagUUID, metadata string) (*models.AvailableGenericTag, bool, error) {
	var (
		result  models.AvailableGenericTag
		created bool
	)
	err := r.db.Transaction(func(tx *gorm.DB) error {
		scoped := NewAvailableGenericTagRepo(tx)
		row, err := scoped.FindExact(genericTag, industry, equipment)
		if err != nil {
			return err
		}
		if row != nil {
			row.Metadata = metadata
			result = *row
			return tx.Model(&models.AvailableGenericTag{}).
				Where("id = ?", row.ID).
				Update("metadata", metadata).Error
		}

		if tagUUID == "" {
			fallback, err := scoped.Resolve(genericTag, industry, equipment)
			if err != nil {
				return err
			}
			if fallback != nil {
				tagUUID = fallback.UUID
			} else {
				tagUUID = uuid.NewString()
			}
		}
		result = models.AvailableGenericTag{
			GenericTag: genericTag,
			UUID:       tagUUID,
			Metadata:   metadata,
			Industry:   industry,
			Equipment:  equipment,
		}
		created, err = scoped.Add(&result)
		if err != nil || created {
			return err
		}

		// Another writer stored the triple first; keep its UUID.
		result.Metadata = metadata
		return tx.Model(&models.AvailableGenericTag{}).
			Where("id = ?", result.ID).
			Update("metadata", metadata).Error
	})
	if err != nil {
		return nil, false, err
	}
	return &result, created, nil
}

// Add appends a row after every existing row. When the triple is already
// stored, row is overwritten with the stored one and inserted is false.
func (r *AvailableGenericTagRepo) Add(row *models.AvailableGenericTag) (inserted bool, err error) {
	position, err := nextPosition(r.db, &models.AvailableGenericTag{})
	if err != nil {
		return false, err
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	row.Position = position

	result := r.db.Clauses(clause.OnConflict{Columns: tripleColumns, DoNothing: true}).Create(row)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected > 0 {
		return true, nil
	}

	existing, err := r.FindExact(row.GenericTag, row.Industry, row.Equipment)
	if err != nil {
		return false, err
	}
	if existing == nil {
		return false, fmt.Errorf("generic tag %s/%s/%s neither inserted nor found", row.GenericTag, row.Industry, row.Equipment)
	}
	*row = *existing
	return false, nil
}

// GenericTagsFor returns the distinct generic tags known for the
// industry/equipment pair, falling back to every tag of the industry.
// Tags are listed in first-seen order.
func (r *AvailableGenericTagRepo) GenericTagsFor(industry, equipment string) ([]string, error) {
	rows, err := r.Filter(industry, equipment)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		rows, err = r.FindByIndustry(industry)
		if err != nil {
			return nil, err
		}
	}

	seen := make(map[string]bool, len(rows))
	var tags []string
	for _, row := range rows {
		if seen[row.GenericTag] {
			continue
		}
		seen[row.GenericTag] = true
		tags = append(tags, row.GenericTag)
	}
	return tags, nil
}

// FindAll returns every row in insertion order.
func (r *AvailableGenericTagRepo) FindAll() ([]models.AvailableGenericTag, error) {
	var rows []models.AvailableGenericTag
	err := r.db.Order("position").Find(&rows).Error
	return rows, err
}

// FindByIndustry returns the rows of an industry in insertion order.
func (r *AvailableGenericTagRepo) FindByIndustry(industry string) ([]models.AvailableGenericTag, error) {
	var rows []models.AvailableGenericTag
	err := r.db.Where("industry = ?", industry).Order("position").Find(&rows).Error
	return rows, err
}

// Filter returns the rows of the exact industry/equipment pair in insertion order.
func (r *AvailableGenericTagRepo) Filter(industry, equipment string) ([]models.AvailableGenericTag, error) {
	var rows []models.AvailableGenericTag
	err := r.db.
		Where("industry = ? AND equipment = ?", industry, equipment).
		Order("position").
		Find(&rows).Error
	return rows, err
}

// Count returns the number of rows.
func (r *AvailableGenericTagRepo) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.AvailableGenericTag{}).Count(&count).Error
	return count, err
}

// Industries returns the sorted distinct industries present.
func (r *AvailableGenericTagRepo) Industries() ([]string, error) {
	var values []string
	err := r.db.Model(&models.AvailableGenericTag{}).
		Distinct("industry").
		Order("industry").
		Pluck("industry", &values).Error
	return values, err
}

// EquipmentFor returns the sorted distinct equipment of an industry.
func (r *AvailableGenericTagRepo) EquipmentFor(industry string) ([]string, error) {
	var values []string
	err := r.db.Model(&models.AvailableGenericTag{}).
		Where("industry = ?", industry).
		Distinct("equipment").
		Order("equipment").
		Pluck("equipment", &values).Error
	return values, err
}
