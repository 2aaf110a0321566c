package services

import (
	"bytes"
	"encoding/csv"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/rpupo63/plant-tag-config/database"
	"github.com/rpupo63/plant-tag-config/errs"
	"github.com/rpupo63/plant-tag-config/session"
	"github.com/xuri/excelize/v2"
)

const (
	ColumnGenericTag = "Generic Tag"
	ColumnMetadata   = "Metadata"

	PreviewRows = 10
)

var (
	RequiredUploadColumns = []string{ColumnGenericTag, ColumnMetadata}
	UploadExtensions      = []string{".csv", ".xlsx"}
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Table is a spreadsheet read into memory: a header row and the non-blank
// data rows below it.
type Table struct {
	Name    string
	Columns []string
	Rows    []TableRow
}

// TableRow keeps the 1-based line of the file it came from.
type TableRow struct {
	Line  int
	Cells []string
}

// Value returns the cell under column, or "" when the row is short or the
// column is absent.
func (t Table) Value(row TableRow, column string) string {
	i := slices.Index(t.Columns, column)
	if i < 0 || i >= len(row.Cells) {
		return ""
	}
	return row.Cells[i]
}

// Missing lists the required columns absent from the header.
func (t Table) Missing(required []string) []string {
	var missing []string
	for _, column := range required {
		if !slices.Contains(t.Columns, column) {
			missing = append(missing, column)
		}
	}
	return missing
}

// ReadTable parses a .csv or .xlsx upload. Only the first sheet of a
// workbook is read.
func ReadTable(name string, r io.Reader) (Table, error) {
	var (
		rows []TableRow
		err  error
	)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		rows, err = readCSV(r)
	case ".xlsx":
		rows, err = readXLSX(r)
	default:
		return Table{}, errs.NewUnsupportedFileTypeError(name, UploadExtensions)
	}
	if err != nil {
		return Table{}, errs.NewUnreadableFileError(name, err)
	}

	table := Table{Name: name}
	for _, row := range rows {
		if isBlank(row.Cells) {
			continue
		}
		if table.Columns == nil {
			table.Columns = make([]string, len(row.Cells))
			for i, cell := range row.Cells {
				table.Columns[i] = strings.TrimSpace(cell)
			}
			continue
		}
		table.Rows = append(table.Rows, row)
	}
	if table.Columns == nil {
		return Table{}, errs.NewUnreadableFileError(name, io.ErrUnexpectedEOF)
	}
	return table, nil
}

func readCSV(r io.Reader) ([]TableRow, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows []TableRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		line, _ := reader.FieldPos(0)
		rows = append(rows, TableRow{Line: line, Cells: record})
	}
}

func readXLSX(r io.Reader) ([]TableRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	rows := make([]TableRow, 0, len(records))
	for i, record := range records {
		rows = append(rows, TableRow{Line: i + 1, Cells: record})
	}
	return rows, nil
}

func isBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// FilePreview is what the upload screen shows before anything is stored.
type FilePreview struct {
	Name      string              `json:"name"`
	Columns   []string            `json:"columns"`
	Rows      []map[string]string `json:"rows"`
	TotalRows int                 `json:"total_rows"`
	Missing   []string            `json:"missing_columns"`
}

func PreviewTable(t Table) FilePreview {
	preview := FilePreview{
		Name:      t.Name,
		Columns:   t.Columns,
		Rows:      make([]map[string]string, 0, min(len(t.Rows), PreviewRows)),
		TotalRows: len(t.Rows),
		Missing:   t.Missing(RequiredUploadColumns),
	}
	for _, row := range t.Rows[:min(len(t.Rows), PreviewRows)] {
		values := make(map[string]string, len(t.Columns))
		for _, column := range t.Columns {
			values[column] = t.Value(row, column)
		}
		preview.Rows = append(preview.Rows, values)
	}
	return preview
}

// GenericTagRecord is one data row of a generic tag upload.
type GenericTagRecord struct {
	Line       int
	GenericTag string
	Metadata   string
}

// GenericTagRecords extracts the generic tag rows. Missing required columns
// or a row without a generic tag reject the whole table.
func GenericTagRecords(t Table) ([]GenericTagRecord, error) {
	if missing := t.Missing(RequiredUploadColumns); len(missing) > 0 {
		return nil, errs.NewMissingColumnsError(missing, t.Columns)
	}
	records := make([]GenericTagRecord, 0, len(t.Rows))
	for _, row := range t.Rows {
		tag := strings.TrimSpace(t.Value(row, ColumnGenericTag))
		if tag == "" {
			return nil, errs.NewEmptyGenericTagError(row.Line)
		}
		records = append(records, GenericTagRecord{
			Line:       row.Line,
			GenericTag: tag,
			Metadata:   strings.TrimSpace(t.Value(row, ColumnMetadata)),
		})
	}
	return records, nil
}

// ImportResult summarizes a generic tag upload.
type ImportResult struct {
	Industry    string   `json:"industry"`
	Equipment   string   `json:"equipment"`
	Rows        int      `json:"rows"`
	Created     int      `json:"created"`
	Updated     int      `json:"updated"`
	GenericTags []string `json:"generic_tags"`
}

// ImportGenericTags stores every record for the industry/equipment pair in
// one transaction. Each record counts one usage; the exact-scope row keeps
// its UUID and takes the new metadata, otherwise a row with a fresh UUID is
// added.
func (c *Configurator) ImportGenericTags(industry, equipment string, records []GenericTagRecord) (ImportResult, error) {
	industry = strings.TrimSpace(industry)
	equipment = strings.TrimSpace(equipment)
	var missing []string
	if industry == "" {
		missing = append(missing, "industry")
	}
	if equipment == "" {
		missing = append(missing, "equipment")
	}
	if len(missing) > 0 {
		return ImportResult{}, errs.NewMissingRequiredFieldsError(missing)
	}
	if !c.catalog.HasIndustry(industry) {
		return ImportResult{}, errs.NewInvalidFieldError("industry", "not a known industry")
	}

	result := ImportResult{Industry: industry, Equipment: equipment}
	err := c.db.Transaction(func(tx database.Database) error {
		for _, record := range records {
			if _, err := tx.GenericTagMappingRepo().Increment(record.GenericTag, industry, equipment, c.now()); err != nil {
				return err
			}
			_, created, err := tx.AvailableGenericTagRepo().UpsertMetadata(record.GenericTag, industry, equipment, "", record.Metadata)
			if err != nil {
				return err
			}
			if created {
				result.Created++
			} else {
				result.Updated++
			}
			if !slices.Contains(result.GenericTags, record.GenericTag) {
				result.GenericTags = append(result.GenericTags, record.GenericTag)
			}
			result.Rows++
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, errs.NewTransactionFailedError("generic tag import", err)
	}

	c.logger.Info().
		Str("industry", industry).
		Str("equipment", equipment).
		Int("rows", result.Rows).
		Int("created", result.Created).
		Int("updated", result.Updated).
		Msg("generic tags imported")
	return result, nil
}

// ImportFile reads and imports an uploaded file.
func (c *Configurator) ImportFile(industry, equipment, name string, r io.Reader) (ImportResult, error) {
	table, err := ReadTable(name, r)
	if err != nil {
		return ImportResult{}, err
	}
	records, err := GenericTagRecords(table)
	if err != nil {
		return ImportResult{}, err
	}
	return c.ImportGenericTags(industry, equipment, records)
}

// UploadGenericTags imports a file for a session: the imported tags join
// the session's generic tag list and the summary screen opens.
func (c *Configurator) UploadGenericTags(s *session.State, industry, equipment, name string, r io.Reader) (ImportResult, error) {
	result, err := c.ImportFile(industry, equipment, name, r)
	if err != nil {
		return ImportResult{}, err
	}
	for _, tag := range result.GenericTags {
		s.AddGenericTag(tag)
	}
	s.Navigate(session.ScreenSummary)
	return result, nil
}

// UploadEquipmentOptions lists the equipment already tagged for industry.
func (c *Configurator) UploadEquipmentOptions(industry string) ([]string, error) {
	if industry == "" {
		return []string{}, nil
	}
	values, err := c.db.TagRepo().DistinctEquipment(industry)
	if err != nil {
		return nil, errs.NewDatabaseError("list", "equipment", err)
	}
	return values, nil
}
