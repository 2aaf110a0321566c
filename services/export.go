package services

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rpupo63/plant-tag-config/errs"
	"github.com/rpupo63/plant-tag-config/models"
	"github.com/xuri/excelize/v2"
)

type Dataset string

const (
	DatasetTags        Dataset = "tags"
	DatasetGenericTags Dataset = "generic-tags"
)

var Datasets = []string{string(DatasetTags), string(DatasetGenericTags)}

func ParseDataset(s string) (Dataset, error) {
	switch d := Dataset(strings.ToLower(strings.TrimSpace(s))); d {
	case DatasetTags, DatasetGenericTags:
		return d, nil
	}
	return "", errs.NewUnsupportedExportError("dataset "+s, Datasets)
}

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatJSON Format = "json"
)

var Formats = []string{string(FormatCSV), string(FormatXLSX), string(FormatJSON)}

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatXLSX, FormatJSON:
		return f, nil
	}
	return "", errs.NewUnsupportedExportError("format "+s, Formats)
}

func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/json"
	}
}

var unsafeFileNameChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// fileNamePart reduces a free-text value to letters, digits, '-' and '_' so
// it can sit inside a file name.
func fileNamePart(value string) string {
	part := strings.Trim(unsafeFileNameChars.ReplaceAllString(value, "_"), "_")
	if part == "" {
		return "_"
	}
	return part
}

// TimestampLayout is the suffix of every export file name.
const TimestampLayout = "20060102_150405"

// ExportFilter narrows the generic tag export to one industry/equipment
// pair. Both fields must be set for it to apply.
type ExportFilter struct {
	Industry  string
	Equipment string
}

func (f ExportFilter) Active() bool {
	return f.Industry != "" && f.Equipment != ""
}

type ExportFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// TagRecord is a committed tag as exported. Field order is column order.
type TagRecord struct {
	Industry      string  `json:"Industry"`
	Plant         string  `json:"Plant"`
	Area          string  `json:"Area"`
	Equipment     string  `json:"Equipment"`
	Asset         string  `json:"Asset"`
	DCSTag        string  `json:"DCS_Tag"`
	RawParameter  string  `json:"Raw_Parameter"`
	GenericTag    string  `json:"Generic_Tag"`
	UUID          string  `json:"UUID"`
	Metadata      string  `json:"Metadata"`
	UOM           string  `json:"UOM"`
	LowLowLimit   float64 `json:"Low_Low_Limit"`
	LowLimit      float64 `json:"Low_Limit"`
	HighLimit     float64 `json:"High_Limit"`
	HighHighLimit float64 `json:"High_High_Limit"`
}

var TagColumns = []string{
	"Industry", "Plant", "Area", "Equipment", "Asset", "DCS_Tag", "Raw_Parameter",
	"Generic_Tag", "UUID", "Metadata", "UOM",
	"Low_Low_Limit", "Low_Limit", "High_Limit", "High_High_Limit",
}

func NewTagRecord(row models.TagRow) TagRecord {
	return TagRecord{
		Industry:      row.Industry,
		Plant:         row.Plant,
		Area:          row.Area,
		Equipment:     row.Equipment,
		Asset:         row.Asset,
		DCSTag:        row.DCSTag,
		RawParameter:  row.RawParameter,
		GenericTag:    row.GenericTag,
		UUID:          row.UUID,
		Metadata:      row.Metadata,
		UOM:           row.UOM,
		LowLowLimit:   row.LowLowLimit,
		LowLimit:      row.LowLimit,
		HighLimit:     row.HighLimit,
		HighHighLimit: row.HighHighLimit,
	}
}

func (r TagRecord) values() []any {
	return []any{
		r.Industry, r.Plant, r.Area, r.Equipment, r.Asset, r.DCSTag, r.RawParameter,
		r.GenericTag, r.UUID, r.Metadata, r.UOM,
		r.LowLowLimit, r.LowLimit, r.HighLimit, r.HighHighLimit,
	}
}

type AvailableGenericTagRecord struct {
	GenericTag string `json:"Generic_Tag"`
	UUID       string `json:"UUID"`
	Metadata   string `json:"Metadata"`
	Industry   string `json:"Industry"`
	Equipment  string `json:"Equipment"`
}

var AvailableGenericTagColumns = []string{"Generic_Tag", "UUID", "Metadata", "Industry", "Equipment"}

func (r AvailableGenericTagRecord) values() []any {
	return []any{r.GenericTag, r.UUID, r.Metadata, r.Industry, r.Equipment}
}

// FilteredGenericTag is a generic tag row of a single industry/equipment
// pair, where those two columns are implied.
type FilteredGenericTag struct {
	GenericTag string `json:"Generic_Tag"`
	UUID       string `json:"UUID"`
	Metadata   string `json:"Metadata"`
}

var FilteredGenericTagColumns = []string{"Generic_Tag", "UUID", "Metadata"}

func (r FilteredGenericTag) values() []any {
	return []any{r.GenericTag, r.UUID, r.Metadata}
}

type exportRecord interface {
	values() []any
}

// table is one export in column order, ready for any format.
type table[T exportRecord] struct {
	sheet   string
	prefix  string
	columns []string
	records []T
}

func (c *Configurator) TagRecords() ([]TagRecord, error) {
	rows, err := c.db.TagRepo().FindAll()
	if err != nil {
		return nil, errs.NewDatabaseError("list", "tags", err)
	}
	records := make([]TagRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, NewTagRecord(row))
	}
	return records, nil
}

func (c *Configurator) AvailableGenericTagRecords() ([]AvailableGenericTagRecord, error) {
	rows, err := c.db.AvailableGenericTagRepo().FindAll()
	if err != nil {
		return nil, errs.NewDatabaseError("list", "available generic tags", err)
	}
	records := make([]AvailableGenericTagRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, AvailableGenericTagRecord{
			GenericTag: row.GenericTag,
			UUID:       row.UUID,
			Metadata:   row.Metadata,
			Industry:   row.Industry,
			Equipment:  row.Equipment,
		})
	}
	return records, nil
}

func (c *Configurator) FilteredGenericTags(industry, equipment string) ([]FilteredGenericTag, error) {
	rows, err := c.db.AvailableGenericTagRepo().Filter(industry, equipment)
	if err != nil {
		return nil, errs.NewDatabaseError("list", "available generic tags", err)
	}
	records := make([]FilteredGenericTag, 0, len(rows))
	for _, row := range rows {
		records = append(records, FilteredGenericTag{
			GenericTag: row.GenericTag,
			UUID:       row.UUID,
			Metadata:   row.Metadata,
		})
	}
	return records, nil
}

// FilterIndustries lists the industries present among available generic tags.
func (c *Configurator) FilterIndustries() ([]string, error) {
	values, err := c.db.AvailableGenericTagRepo().Industries()
	if err != nil {
		return nil, errs.NewDatabaseError("list", "industries", err)
	}
	return values, nil
}

func (c *Configurator) FilterEquipment(industry string) ([]string, error) {
	if industry == "" {
		return []string{}, nil
	}
	values, err := c.db.AvailableGenericTagRepo().EquipmentFor(industry)
	if err != nil {
		return nil, errs.NewDatabaseError("list", "equipment", err)
	}
	return values, nil
}

// Export renders a dataset in the requested format. A partially set filter
// is rejected; the tags dataset takes no filter.
func (c *Configurator) Export(dataset Dataset, format Format, filter ExportFilter) (ExportFile, error) {
	stamp := c.now().Format(TimestampLayout)

	switch dataset {
	case DatasetTags:
		records, err := c.TagRecords()
		if err != nil {
			return ExportFile{}, err
		}
		return render(table[TagRecord]{sheet: "Tags", prefix: "tags_config", columns: TagColumns, records: records}, format, stamp)

	case DatasetGenericTags:
		if filter.Industry != "" || filter.Equipment != "" {
			if filter.Industry == "" {
				return ExportFile{}, errs.NewMissingRequiredFieldError("industry")
			}
			if filter.Equipment == "" {
				return ExportFile{}, errs.NewMissingRequiredFieldError("equipment")
			}
		}
		if filter.Active() {
			records, err := c.FilteredGenericTags(filter.Industry, filter.Equipment)
			if err != nil {
				return ExportFile{}, err
			}
			prefix := fmt.Sprintf("generic_tags_%s_%s", fileNamePart(filter.Industry), fileNamePart(filter.Equipment))
			return render(table[FilteredGenericTag]{sheet: "Generic Tags", prefix: prefix, columns: FilteredGenericTagColumns, records: records}, format, stamp)
		}
		records, err := c.AvailableGenericTagRecords()
		if err != nil {
			return ExportFile{}, err
		}
		return render(table[AvailableGenericTagRecord]{sheet: "Generic Tags", prefix: "available_generic_tags", columns: AvailableGenericTagColumns, records: records}, format, stamp)
	}
	return ExportFile{}, errs.NewUnsupportedExportError("dataset "+string(dataset), Datasets)
}

func render[T exportRecord](t table[T], format Format, stamp string) (ExportFile, error) {
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatCSV:
		data, err = renderCSV(t)
	case FormatXLSX:
		data, err = renderXLSX(t)
	case FormatJSON:
		data, err = json.MarshalIndent(t.records, "", "  ")
	default:
		return ExportFile{}, errs.NewUnsupportedExportError("format "+string(format), Formats)
	}
	if err != nil {
		return ExportFile{}, errs.NewInternalErrorWithCause("failed to render export", err)
	}
	return ExportFile{
		Name:        fmt.Sprintf("%s_%s.%s", t.prefix, stamp, format),
		ContentType: format.ContentType(),
		Data:        data,
	}, nil
}

func renderCSV[T exportRecord](t table[T]) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(t.columns); err != nil {
		return nil, err
	}
	for _, record := range t.records {
		values := record.values()
		cells := make([]string, len(values))
		for i, v := range values {
			cells[i] = formatCell(v)
		}
		if err := w.Write(cells); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// formatCell writes whole floats with one decimal so limits read as
// numbers rather than counts.
func formatCell(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case float64:
		s := strconv.FormatFloat(v, 'f', -1, 64)
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
		return s
	default:
		return fmt.Sprint(v)
	}
}

func renderXLSX[T exportRecord](t table[T]) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), t.sheet); err != nil {
		return nil, err
	}
	header := make([]any, len(t.columns))
	for i, column := range t.columns {
		header[i] = column
	}
	if err := f.SetSheetRow(t.sheet, "A1", &header); err != nil {
		return nil, err
	}
	for i, record := range t.records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		values := record.values()
		if err := f.SetSheetRow(t.sheet, cell, &values); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
