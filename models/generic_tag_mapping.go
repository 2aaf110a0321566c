package models

import "time"

// GenericTagMapping counts how often a generic tag was used for an
// industry/equipment pair.
type GenericTagMapping struct {
	GenericTag  string    `json:"generic_tag" db:"generic_tag" gorm:"type:text;primaryKey;column:generic_tag"`
	Industry    string    `json:"industry" db:"industry" gorm:"type:text;primaryKey;column:industry"`
	Equipment   string    `json:"equipment" db:"equipment" gorm:"type:text;primaryKey;column:equipment"`
	Count       int       `json:"count" db:"count" gorm:"not null;default:0;column:count"`
	LastUpdated time.Time `json:"last_updated" db:"last_updated" gorm:"not null;column:last_updated"`
}
