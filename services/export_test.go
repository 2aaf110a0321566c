package services

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rpupo63/plant-tag-config/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParseDatasetAndFormat(t *testing.T) {
	d, err := ParseDataset(" Generic-Tags ")
	require.NoError(t, err)
	assert.Equal(t, DatasetGenericTags, d)

	_, err = ParseDataset("hierarchy")
	assert.ErrorIs(t, err, errs.ErrUnsupportedExport)

	f, err := ParseFormat("XLSX")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)
	assert.Equal(t, "text/csv", FormatCSV.ContentType())

	_, err = ParseFormat("parquet")
	assert.ErrorIs(t, err, errs.ErrUnsupportedExport)
}

func TestFormatCell(t *testing.T) {
	assert.Equal(t, "0.0", formatCell(0.0))
	assert.Equal(t, "100.0", formatCell(100.0))
	assert.Equal(t, "90.5", formatCell(90.5))
	assert.Equal(t, "-3.25", formatCell(-3.25))
	assert.Equal(t, "KILN", formatCell("KILN"))
}

func committedTags(t *testing.T) *Configurator {
	t.Helper()
	c, s := newTestConfigurator(t)
	withHierarchy(t, c, s)
	addTag(t, c, s, draft("TI-101", "Temperature", "°C"))
	addTag(t, c, s, draft("PI-201", "Pressure", "bar"))
	_, err := c.Finish(s)
	require.NoError(t, err)
	return c
}

func TestExportTagsCSV(t *testing.T) {
	c := committedTags(t)

	file, err := c.Export(DatasetTags, FormatCSV, ExportFilter{})
	require.NoError(t, err)
	assert.Equal(t, "tags_config_20240305_140709.csv", file.Name)
	assert.Equal(t, "text/csv", file.ContentType)

	records, err := csv.NewReader(bytes.NewReader(file.Data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, TagColumns, records[0])
	assert.Equal(t, []string{"Cement", "PLANT_A", "AREA_1", "KILN", "KILN_01", "TI-101", "raw_TI-101", "Temperature"}, records[1][:8])
	assert.Equal(t, []string{"°C", "0.0", "10.0", "90.5", "100.0"}, records[1][10:])
	assert.Equal(t, "PI-201", records[2][5])
}

func TestExportTagsJSON(t *testing.T) {
	c := committedTags(t)

	file, err := c.Export(DatasetTags, FormatJSON, ExportFilter{})
	require.NoError(t, err)
	assert.Equal(t, "tags_config_20240305_140709.json", file.Name)
	assert.True(t, strings.HasPrefix(string(file.Data), "[\n  {\n    \"Industry\": \"Cement\",\n    \"Plant\": \"PLANT_A\","))

	var records []map[string]any
	require.NoError(t, json.Unmarshal(file.Data, &records))
	require.Len(t, records, 2)
	assert.Equal(t, "TI-101", records[0]["DCS_Tag"])
	assert.Equal(t, 90.5, records[0]["High_Limit"])
	assert.Len(t, records[0], len(TagColumns))
}

func TestExportTagsXLSX(t *testing.T) {
	c := committedTags(t)

	file, err := c.Export(DatasetTags, FormatXLSX, ExportFilter{})
	require.NoError(t, err)
	assert.Equal(t, "tags_config_20240305_140709.xlsx", file.Name)

	f, err := excelize.OpenReader(bytes.NewReader(file.Data))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Tags"}, f.GetSheetList())

	rows, err := f.GetRows("Tags")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, TagColumns, rows[0])
	assert.Equal(t, "PI-201", rows[2][5])
	assert.Equal(t, "90.5", rows[1][13])
}

func TestExportEmptyJSON(t *testing.T) {
	c, _ := newTestConfigurator(t)

	file, err := c.Export(DatasetGenericTags, FormatJSON, ExportFilter{})
	require.NoError(t, err)
	assert.Equal(t, "available_generic_tags_20240305_140709.json", file.Name)
	assert.Equal(t, "[]", string(file.Data))
}

func TestExportGenericTagsFiltered(t *testing.T) {
	c, s := newTestConfigurator(t)
	_, err := c.UploadGenericTags(s, "Cement", "STACK", "gas.csv", strings.NewReader("Generic Tag,Metadata\nNOx,stack nox\n"))
	require.NoError(t, err)
	_, err = c.UploadGenericTags(s, "Cement", "KILN", "kiln.csv", strings.NewReader("Generic Tag,Metadata\nTemperature,shell\n"))
	require.NoError(t, err)

	all, err := c.Export(DatasetGenericTags, FormatCSV, ExportFilter{})
	require.NoError(t, err)
	records, err := csv.NewReader(bytes.NewReader(all.Data)).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, AvailableGenericTagColumns, records[0])
	assert.Len(t, records, 3)

	file, err := c.Export(DatasetGenericTags, FormatXLSX, ExportFilter{Industry: "Cement", Equipment: "STACK"})
	require.NoError(t, err)
	assert.Equal(t, "generic_tags_Cement_STACK_20240305_140709.xlsx", file.Name)

	f, err := excelize.OpenReader(bytes.NewReader(file.Data))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Generic Tags"}, f.GetSheetList())
	rows, err := f.GetRows("Generic Tags")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, FilteredGenericTagColumns, rows[0])
	assert.Equal(t, "NOx", rows[1][0])
	assert.Equal(t, "stack nox", rows[1][2])

	_, err = c.Export(DatasetGenericTags, FormatCSV, ExportFilter{Industry: "Cement"})
	assert.True(t, errs.IsMissingRequiredFieldError(err))

	// Free-text names never reach the file name as path segments.
	_, err = c.UploadGenericTags(s, "Paper & Pulp", "../KILN/1", "pulp.csv", strings.NewReader("Generic Tag,Metadata\nFlow,x\n"))
	require.NoError(t, err)
	file, err = c.Export(DatasetGenericTags, FormatCSV, ExportFilter{Industry: "Paper & Pulp", Equipment: "../KILN/1"})
	require.NoError(t, err)
	assert.Equal(t, "generic_tags_Paper_Pulp_KILN_1_20240305_140709.csv", file.Name)
	assert.NotContains(t, file.Name, "/")
	assert.Contains(t, string(file.Data), "Flow")
}

func TestFileNamePart(t *testing.T) {
	assert.Equal(t, "KILN_01", fileNamePart("KILN_01"))
	assert.Equal(t, "KILN_1", fileNamePart("KILN/1"))
	assert.Equal(t, "etc_passwd", fileNamePart("../../etc/passwd"))
	assert.Equal(t, "C_Windows", fileNamePart(`C:\Windows`))
	assert.Equal(t, "_", fileNamePart(".."))
}

func TestSummaryFilters(t *testing.T) {
	c, s := newTestConfigurator(t)
	_, err := c.UploadGenericTags(s, "Steel", "FURNACE", "a.csv", strings.NewReader("Generic Tag,Metadata\nFlow,a\n"))
	require.NoError(t, err)
	_, err = c.UploadGenericTags(s, "Cement", "STACK", "b.csv", strings.NewReader("Generic Tag,Metadata\nNOx,b\n"))
	require.NoError(t, err)
	_, err = c.UploadGenericTags(s, "Cement", "KILN", "c.csv", strings.NewReader("Generic Tag,Metadata\nCO,c\n"))
	require.NoError(t, err)

	industries, err := c.FilterIndustries()
	require.NoError(t, err)
	assert.Equal(t, []string{"Cement", "Steel"}, industries)

	equipment, err := c.FilterEquipment("Cement")
	require.NoError(t, err)
	assert.Equal(t, []string{"KILN", "STACK"}, equipment)

	rows, err := c.FilteredGenericTags("Cement", "KILN")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "CO", rows[0].GenericTag)
}
