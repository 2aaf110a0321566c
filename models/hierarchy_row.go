package models

import (
	"strings"

	"github.com/google/uuid"
)

// HierarchyRow locates an asset inside a plant for a given industry.
// Rows are append-only; the unique index over all five levels makes a
// repeated insert a no-op.
type HierarchyRow struct {
	ID        uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;column:id"`
	Industry  string    `json:"industry" db:"industry" gorm:"type:text;not null;column:industry;uniqueIndex:idx_hierarchy_row_unique"`
	Plant     string    `json:"plant" db:"plant" gorm:"type:text;not null;column:plant;uniqueIndex:idx_hierarchy_row_unique"`
	Area      string    `json:"area" db:"area" gorm:"type:text;not null;column:area;uniqueIndex:idx_hierarchy_row_unique"`
	Equipment string    `json:"equipment" db:"equipment" gorm:"type:text;not null;column:equipment;uniqueIndex:idx_hierarchy_row_unique"`
	Asset     string    `json:"asset" db:"asset" gorm:"type:text;not null;column:asset;uniqueIndex:idx_hierarchy_row_unique"`
}

// HierarchyPath is the Plant/Area/Equipment/Asset part of a row.
type HierarchyPath struct {
	Plant     string `json:"plant"`
	Area      string `json:"area"`
	Equipment string `json:"equipment"`
	Asset     string `json:"asset"`
}

// Complete reports whether every level is set.
func (p HierarchyPath) Complete() bool {
	return p.Plant != "" && p.Area != "" && p.Equipment != "" && p.Asset != ""
}

func (r HierarchyRow) Path() HierarchyPath {
	return HierarchyPath{Plant: r.Plant, Area: r.Area, Equipment: r.Equipment, Asset: r.Asset}
}

// HierarchyLevel names one level of the Plant > Area > Equipment > Asset chain.
type HierarchyLevel string

const (
	LevelPlant     HierarchyLevel = "plant"
	LevelArea      HierarchyLevel = "area"
	LevelEquipment HierarchyLevel = "equipment"
	LevelAsset     HierarchyLevel = "asset"
)

// HierarchyLevels lists the levels from the root down.
var HierarchyLevels = []HierarchyLevel{LevelPlant, LevelArea, LevelEquipment, LevelAsset}

// ParseHierarchyLevel accepts the level name in any case.
func ParseHierarchyLevel(s string) (HierarchyLevel, bool) {
	for _, level := range HierarchyLevels {
		if strings.EqualFold(string(level), s) {
			return level, true
		}
	}
	return "", false
}

// Column is the hierarchy_rows column holding this level.
func (l HierarchyLevel) Column() string {
	return string(l)
}

// Depth is the zero-based position of the level in the chain.
func (l HierarchyLevel) Depth() int {
	for i, level := range HierarchyLevels {
		if level == l {
			return i
		}
	}
	return -1
}

// Get returns the value of level in the path.
func (p HierarchyPath) Get(level HierarchyLevel) string {
	switch level {
	case LevelPlant:
		return p.Plant
	case LevelArea:
		return p.Area
	case LevelEquipment:
		return p.Equipment
	case LevelAsset:
		return p.Asset
	}
	return ""
}

// Set returns a copy of the path with level replaced by value.
func (p HierarchyPath) Set(level HierarchyLevel, value string) HierarchyPath {
	switch level {
	case LevelPlant:
		p.Plant = value
	case LevelArea:
		p.Area = value
	case LevelEquipment:
		p.Equipment = value
	case LevelAsset:
		p.Asset = value
	}
	return p
}

// Ancestors returns the chosen values above level, keyed by column.
// Empty ancestors are left out.
func (p HierarchyPath) Ancestors(level HierarchyLevel) map[string]string {
	filters := make(map[string]string)
	for _, above := range HierarchyLevels[:max(level.Depth(), 0)] {
		if v := p.Get(above); v != "" {
			filters[above.Column()] = v
		}
	}
	return filters
}
