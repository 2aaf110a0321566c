package services

import (
	"regexp"

	"github.com/rpupo63/plant-tag-config/errs"
	"github.com/rpupo63/plant-tag-config/models"
)

var hierarchyNamePattern = regexp.MustCompile(`^[A-Z0-9_]*$`)

// IsValidHierarchyName reports whether value uses only uppercase letters,
// digits and underscores. The empty string is valid.
func IsValidHierarchyName(value string) bool {
	return hierarchyNamePattern.MatchString(value)
}

// ValidateHierarchyName returns a field error naming level when value is
// not a valid hierarchy name.
func ValidateHierarchyName(level models.HierarchyLevel, value string) error {
	if !IsValidHierarchyName(value) {
		return errs.NewInvalidHierarchyNameError(string(level), value)
	}
	return nil
}
