package services

import (
	"testing"

	"github.com/rpupo63/plant-tag-config/errs"
	"github.com/rpupo63/plant-tag-config/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidHierarchyName(t *testing.T) {
	valid := []string{"", "PLANT_A", "AREA_1", "KILN", "K1_2_3", "___", "0"}
	for _, v := range valid {
		assert.True(t, IsValidHierarchyName(v), v)
	}

	invalid := []string{"plant", "Plant_A", "AREA-1", "AREA 1", "KILN!", "É", "KILN\n", "a", "A.B"}
	for _, v := range invalid {
		assert.False(t, IsValidHierarchyName(v), v)
	}
}

func TestValidateHierarchyName(t *testing.T) {
	require.NoError(t, ValidateHierarchyName(models.LevelPlant, "PLANT_A"))

	err := ValidateHierarchyName(models.LevelArea, "area 1")
	require.Error(t, err)
	assert.True(t, errs.IsInvalidHierarchyNameError(err))

	var apiErr *errs.ApiErr
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "area", apiErr.Field)
	assert.Equal(t, 400, apiErr.StatusCode)
}
