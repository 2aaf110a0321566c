package models

import "github.com/google/uuid"

// AvailableGenericTag is the canonical identifier and metadata of a generic
// tag within an industry/equipment scope. Each triple is stored once.
type AvailableGenericTag struct {
	ID         uuid.UUID `json:"-" db:"id" gorm:"type:uuid;primaryKey;column:id"`
	GenericTag string    `json:"generic_tag" db:"generic_tag" gorm:"type:text;not null;column:generic_tag;uniqueIndex:idx_available_generic_tag_triple"`
	UUID       string    `json:"uuid" db:"uuid" gorm:"type:text;not null;column:uuid"`
	Metadata   string    `json:"metadata" db:"metadata" gorm:"type:text;not null;default:'';column:metadata"`
	Industry   string    `json:"industry" db:"industry" gorm:"type:text;not null;column:industry;uniqueIndex:idx_available_generic_tag_triple"`
	Equipment  string    `json:"equipment" db:"equipment" gorm:"type:text;not null;column:equipment;uniqueIndex:idx_available_generic_tag_triple"`
	// Position preserves insertion order so "first match" lookups are stable.
	Position int64 `json:"-" db:"position" gorm:"not null;column:position;index:idx_available_generic_tag_position"`
}
