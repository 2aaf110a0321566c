package services

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rpupo63/plant-tag-config/config"
	"github.com/rpupo63/plant-tag-config/database"
	"github.com/rpupo63/plant-tag-config/errs"
	"github.com/rpupo63/plant-tag-config/models"
	"github.com/rpupo63/plant-tag-config/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)

func newTestConfigurator(t *testing.T) (*Configurator, *session.State) {
	t.Helper()
	name := "svc_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	db, err := database.OpenInMemory(name, nil)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	catalog := config.DefaultCatalog()
	c := NewConfigurator(database.New(db), catalog)
	c.now = func() time.Time { return fixedNow }
	return c, session.NewState(uuid.New(), catalog)
}

var kilnPath = models.HierarchyPath{Plant: "PLANT_A", Area: "AREA_1", Equipment: "KILN", Asset: "KILN_01"}

// withHierarchy brings s to the tags screen for Cement and kilnPath.
func withHierarchy(t *testing.T, c *Configurator, s *session.State) {
	t.Helper()
	require.NoError(t, c.SelectIndustry(s, "Cement"))
	for _, level := range models.HierarchyLevels {
		require.NoError(t, c.SetHierarchyLevel(s, level, session.ModeNew, kilnPath.Get(level)))
	}
	_, err := c.SaveHierarchy(s)
	require.NoError(t, err)
}

func draft(dcs, generic, uom string) session.TagDraft {
	return session.TagDraft{
		DCSTag:        dcs,
		RawParameter:  "raw_" + dcs,
		GenericTag:    generic,
		UOM:           uom,
		LowLowLimit:   0,
		LowLimit:      10,
		HighLimit:     90.5,
		HighHighLimit: 100,
	}
}

func addTag(t *testing.T, c *Configurator, s *session.State, d session.TagDraft) models.TagRow {
	t.Helper()
	require.NoError(t, c.SubmitDraft(s, d))
	row, err := c.AddTag(s, nil)
	require.NoError(t, err)
	return row
}

func TestSelectIndustry(t *testing.T) {
	c, s := newTestConfigurator(t)

	err := c.SelectIndustry(s, "Textiles")
	assert.True(t, errs.IsInvalidFieldError(err))
	assert.Equal(t, session.ScreenWelcome, s.Screen)

	s.Hierarchy = kilnPath
	require.NoError(t, c.SelectIndustry(s, "Cement"))
	assert.Equal(t, "Cement", s.Industry)
	assert.Equal(t, session.ScreenHierarchy, s.Screen)
	assert.Equal(t, models.HierarchyPath{}, s.Hierarchy)
}

func TestNavigateGuards(t *testing.T) {
	c, s := newTestConfigurator(t)

	assert.True(t, errs.IsInvalidState(c.Navigate(s, session.ScreenHierarchy)))
	assert.True(t, errs.IsInvalidState(c.Navigate(s, session.ScreenTags)))
	require.NoError(t, c.Navigate(s, session.ScreenUpload))
	require.NoError(t, c.Navigate(s, session.ScreenSummary))

	s.Industry = "Cement"
	assert.True(t, errs.IsInvalidState(c.Navigate(s, session.ScreenTags)), "hierarchy incomplete")

	s.Hierarchy = kilnPath
	require.NoError(t, c.Navigate(s, session.ScreenTags))
	assert.Equal(t, session.ScreenSummary, s.LastScreen)

	s.Screen = session.ScreenWelcome
	assert.True(t, errs.IsInvalidState(c.Navigate(s, session.ScreenTags)))
}

func TestSetHierarchyLevelNewMode(t *testing.T) {
	c, s := newTestConfigurator(t)
	require.NoError(t, c.SelectIndustry(s, "Cement"))

	require.NoError(t, c.SetHierarchyLevel(s, models.LevelPlant, session.ModeNew, "PLANT_A"))
	require.NoError(t, c.SetHierarchyLevel(s, models.LevelArea, session.ModeNew, "AREA_1"))

	err := c.SetHierarchyLevel(s, models.LevelArea, session.ModeNew, "area 1")
	assert.True(t, errs.IsInvalidHierarchyNameError(err))
	assert.Equal(t, "", s.Hierarchy.Area, "invalid input clears the level")
	assert.Equal(t, "PLANT_A", s.Hierarchy.Plant, "other levels untouched")
	assert.Equal(t, session.ModeNew, s.Mode(models.LevelArea))
}

func TestHierarchyCascade(t *testing.T) {
	c, s := newTestConfigurator(t)
	withHierarchy(t, c, s)

	other := models.HierarchyRow{Industry: "Cement", Plant: "PLANT_B", Area: "AREA_9", Equipment: "MILL", Asset: "MILL_01"}
	_, err := c.db.HierarchyRepo().Add(&other)
	require.NoError(t, err)

	c.BackToIndustries(s)
	require.NoError(t, c.SelectIndustry(s, "Cement"))

	options, err := c.HierarchyOptions(s)
	require.NoError(t, err)
	assert.Equal(t, []string{"PLANT_A", "PLANT_B"}, options[models.LevelPlant])
	assert.Equal(t, []string{"AREA_1", "AREA_9"}, options[models.LevelArea])

	require.NoError(t, c.SetHierarchyLevel(s, models.LevelPlant, session.ModeSelect, "PLANT_B"))
	areas, err := c.LevelOptions(s, models.LevelArea)
	require.NoError(t, err)
	assert.Equal(t, []string{"AREA_9"}, areas)

	err = c.SetHierarchyLevel(s, models.LevelArea, session.ModeSelect, "AREA_1")
	assert.True(t, errs.IsInvalidFieldError(err), "AREA_1 is not under PLANT_B")

	// Another industry has nothing to select, so the value is validated as a new name.
	require.NoError(t, c.SelectIndustry(s, "Steel"))
	require.NoError(t, c.SetHierarchyLevel(s, models.LevelPlant, session.ModeSelect, "MILL_X"))
	assert.True(t, errs.IsInvalidHierarchyNameError(c.SetHierarchyLevel(s, models.LevelArea, session.ModeSelect, "bad")))
}

func TestSaveHierarchy(t *testing.T) {
	c, s := newTestConfigurator(t)
	require.NoError(t, c.SelectIndustry(s, "Cement"))
	require.NoError(t, c.SetHierarchyLevel(s, models.LevelPlant, session.ModeNew, "PLANT_A"))

	_, err := c.SaveHierarchy(s)
	require.True(t, errs.IsMissingRequiredFieldError(err))
	var apiErr *errs.ApiErr
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "area,equipment,asset", apiErr.Field)
	assert.Equal(t, session.ScreenHierarchy, s.Screen)

	withHierarchy(t, c, s)
	assert.Equal(t, session.ScreenTags, s.Screen)

	// Saving the same path again stores nothing new.
	s.Navigate(session.ScreenHierarchy)
	created, err := c.SaveHierarchy(s)
	require.NoError(t, err)
	assert.False(t, created)

	rows, err := c.db.HierarchyRepo().FindAll()
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestPickHierarchy(t *testing.T) {
	c, s := newTestConfigurator(t)
	withHierarchy(t, c, s)
	c.BackToIndustries(s)
	require.NoError(t, c.SelectIndustry(s, "Cement"))

	err := c.PickHierarchy(s, models.HierarchyPath{Plant: "NOPE", Area: "A", Equipment: "E", Asset: "X"})
	assert.True(t, errs.IsNotFound(err))

	s.Modes[models.LevelPlant] = session.ModeNew
	require.NoError(t, c.PickHierarchy(s, kilnPath))
	assert.Equal(t, kilnPath, s.Hierarchy)
	assert.Equal(t, session.ModeSelect, s.Mode(models.LevelPlant))
}

func TestHierarchyTree(t *testing.T) {
	c, _ := newTestConfigurator(t)
	repo := c.db.HierarchyRepo()
	for _, row := range []models.HierarchyRow{
		{Industry: "Cement", Plant: "P1", Area: "A1", Equipment: "KILN", Asset: "K1"},
		{Industry: "Cement", Plant: "P1", Area: "A1", Equipment: "KILN", Asset: "K2"},
		{Industry: "Cement", Plant: "P1", Area: "A2", Equipment: "MILL", Asset: "M1"},
		{Industry: "Cement", Plant: "P2", Area: "A1", Equipment: "KILN", Asset: "K1"},
		{Industry: "Steel", Plant: "S1", Area: "A1", Equipment: "FURNACE", Asset: "F1"},
	} {
		_, err := repo.Add(&row)
		require.NoError(t, err)
	}

	tree, err := c.HierarchyTree("Cement")
	require.NoError(t, err)
	require.Len(t, tree, 2)
	assert.Equal(t, "P1", tree[0].Name)
	require.Len(t, tree[0].Areas, 2)
	assert.Equal(t, []string{"K1", "K2"}, tree[0].Areas[0].Equipment[0].Assets)
	assert.Equal(t, "MILL", tree[0].Areas[1].Equipment[0].Name)
	assert.Equal(t, "P2", tree[1].Name)
}

func TestGenericTagOptions(t *testing.T) {
	got := GenericTagOptions([]string{"Flow", "Zeta"}, []string{"Flow", "Level", "Pressure"})
	assert.Equal(t, []string{"Flow", "Zeta", "Level", "Pressure", AddNewOption}, got)

	assert.Equal(t, []string{"bar", AddNewOption}, UOMOptions([]string{"bar"}))
}

func TestSubmitDraftRequiresFields(t *testing.T) {
	c, s := newTestConfigurator(t)
	withHierarchy(t, c, s)

	err := c.SubmitDraft(s, session.TagDraft{DCSTag: "TI-101", GenericTag: AddNewOption})
	require.True(t, errs.IsMissingRequiredFieldError(err))
	var apiErr *errs.ApiErr
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "raw_parameter,generic_tag,uom", apiErr.Field)
	assert.False(t, s.Draft.Submitted)

	count, err := c.db.AvailableGenericTagRepo().Count()
	require.NoError(t, err)
	assert.Zero(t, count, "nothing is created for an incomplete draft")
}

func TestSubmitDraftResolvesUUID(t *testing.T) {
	c, s := newTestConfigurator(t)
	withHierarchy(t, c, s)

	require.NoError(t, c.SubmitDraft(s, draft("TI-101", "Temperature", "°C")))
	assert.True(t, s.Draft.Submitted)
	_, err := uuid.Parse(s.Draft.UUID)
	require.NoError(t, err)

	first := s.Draft.UUID
	c.ClearDraft(s)
	assert.False(t, s.Draft.Submitted)

	require.NoError(t, c.SubmitDraft(s, draft("TI-102", "Temperature", "°C")))
	assert.Equal(t, first, s.Draft.UUID)
}

func TestSubmitDraftRejectsUnknownOptions(t *testing.T) {
	c, s := newTestConfigurator(t)
	withHierarchy(t, c, s)

	err := c.SubmitDraft(s, draft("TI-101", "Torque", "°C"))
	assert.True(t, errs.IsInvalidFieldError(err))

	err = c.SubmitDraft(s, draft("TI-101", "Temperature", "furlongs"))
	assert.True(t, errs.IsInvalidFieldError(err))

	custom := draft("TI-101", "Torque", "N·m")
	custom.CustomGenericTag = true
	custom.CustomUOM = true
	require.NoError(t, c.SubmitDraft(s, custom))
}

func TestAddTag(t *testing.T) {
	c, s := newTestConfigurator(t)
	withHierarchy(t, c, s)

	_, err := c.AddTag(s, nil)
	assert.True(t, errs.IsInvalidState(err), "draft not submitted")

	custom := draft("TI-101", "Torque", "N·m")
	custom.CustomGenericTag = true
	custom.CustomUOM = true
	require.NoError(t, c.SubmitDraft(s, custom))

	metadata := "shaft torque"
	row, err := c.AddTag(s, &metadata)
	require.NoError(t, err)

	assert.Equal(t, "Cement", row.Industry)
	assert.Equal(t, "KILN_01", row.Asset)
	assert.Equal(t, "shaft torque", row.Metadata)
	assert.Equal(t, 90.5, row.HighLimit)
	assert.Equal(t, []models.TagRow{row}, s.Pending)
	assert.False(t, s.Draft.Submitted)
	assert.Contains(t, s.GenericTags, "Torque")
	assert.Contains(t, s.UOMs, "N·m")

	stored, err := c.db.AvailableGenericTagRepo().FindExact("Torque", "Cement", "KILN")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, row.UUID, stored.UUID)
	assert.Equal(t, "shaft torque", stored.Metadata)

	mapping, err := c.db.GenericTagMappingRepo().Find("Torque", "Cement", "KILN")
	require.NoError(t, err)
	require.NotNil(t, mapping)
	assert.Equal(t, 1, mapping.Count)
	assert.True(t, fixedNow.Equal(mapping.LastUpdated))

	// The second tag for the same generic tag reuses the UUID and counts again.
	second := addTag(t, c, s, draft("TI-102", "Torque", "N·m"))
	assert.Equal(t, row.UUID, second.UUID)
	assert.Equal(t, "shaft torque", second.Metadata)

	mapping, err = c.db.GenericTagMappingRepo().Find("Torque", "Cement", "KILN")
	require.NoError(t, err)
	assert.Equal(t, 2, mapping.Count)
}

func TestDeletePendingKeepsOrder(t *testing.T) {
	c, s := newTestConfigurator(t)
	withHierarchy(t, c, s)
	for _, dcs := range []string{"T1", "T2", "T3"} {
		addTag(t, c, s, draft(dcs, "Temperature", "°C"))
	}

	_, err := c.DeletePending(s, 3)
	assert.True(t, errs.IsIndexOutOfRangeError(err))

	removed, err := c.DeletePending(s, 1)
	require.NoError(t, err)
	assert.Equal(t, "T2", removed.DCSTag)
	require.Len(t, s.Pending, 2)
	assert.Equal(t, "T1", s.Pending[0].DCSTag)
	assert.Equal(t, "T3", s.Pending[1].DCSTag)
}

func TestFinish(t *testing.T) {
	c, s := newTestConfigurator(t)
	withHierarchy(t, c, s)
	for _, dcs := range []string{"T1", "T2"} {
		addTag(t, c, s, draft(dcs, "Temperature", "°C"))
	}

	n, err := c.Finish(s)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Empty(t, s.Pending)
	assert.Equal(t, session.ScreenSummary, s.Screen)

	n, err = c.Finish(s)
	require.NoError(t, err)
	assert.Zero(t, n)

	rows, err := c.db.TagRepo().FindAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "T1", rows[0].DCSTag)
	assert.Equal(t, "T2", rows[1].DCSTag)

	stats, err := c.Statistics(s)
	require.NoError(t, err)
	assert.Equal(t, Statistics{Industries: 1, Plants: 1, TotalTags: 2, GenericTags: len(s.GenericTags)}, stats)
}

func TestBackToHierarchy(t *testing.T) {
	c, s := newTestConfigurator(t)
	withHierarchy(t, c, s)
	require.NoError(t, c.SubmitDraft(s, draft("T1", "Flow", "m³/h")))
	s.Modes[models.LevelAsset] = session.ModeNew

	c.BackToHierarchy(s)
	assert.Equal(t, session.ScreenHierarchy, s.Screen)
	assert.Equal(t, session.TagDraft{}, s.Draft)
	assert.Equal(t, session.ModeSelect, s.Mode(models.LevelAsset))
	assert.Equal(t, kilnPath, s.Hierarchy)
}
