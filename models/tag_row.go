package models

import (
	"time"

	"github.com/google/uuid"
)

// TagRow is a committed instrumentation tag attached to a hierarchy leaf.
type TagRow struct {
	ID            uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;column:id"`
	Industry      string    `json:"industry" db:"industry" gorm:"type:text;not null;column:industry;index:idx_tag_row_industry"`
	Plant         string    `json:"plant" db:"plant" gorm:"type:text;not null;column:plant"`
	Area          string    `json:"area" db:"area" gorm:"type:text;not null;column:area"`
	Equipment     string    `json:"equipment" db:"equipment" gorm:"type:text;not null;column:equipment"`
	Asset         string    `json:"asset" db:"asset" gorm:"type:text;not null;column:asset"`
	DCSTag        string    `json:"dcs_tag" db:"dcs_tag" gorm:"type:text;not null;column:dcs_tag"`
	RawParameter  string    `json:"raw_parameter" db:"raw_parameter" gorm:"type:text;not null;column:raw_parameter"`
	GenericTag    string    `json:"generic_tag" db:"generic_tag" gorm:"type:text;not null;column:generic_tag"`
	UUID          string    `json:"uuid" db:"uuid" gorm:"type:text;not null;default:'';column:uuid"`
	Metadata      string    `json:"metadata" db:"metadata" gorm:"type:text;not null;default:'';column:metadata"`
	UOM           string    `json:"uom" db:"uom" gorm:"type:text;not null;column:uom"`
	LowLowLimit   float64   `json:"low_low_limit" db:"low_low_limit" gorm:"not null;default:0;column:low_low_limit"`
	LowLimit      float64   `json:"low_limit" db:"low_limit" gorm:"not null;default:0;column:low_limit"`
	HighLimit     float64   `json:"high_limit" db:"high_limit" gorm:"not null;default:0;column:high_limit"`
	HighHighLimit float64   `json:"high_high_limit" db:"high_high_limit" gorm:"not null;default:0;column:high_high_limit"`
	// Position keeps the commit order stable across drivers.
	Position  int64     `json:"-" db:"position" gorm:"not null;column:position;index:idx_tag_row_position"`
	CreatedAt time.Time `json:"created_at" db:"created_at" gorm:"not null;column:created_at"`
}
