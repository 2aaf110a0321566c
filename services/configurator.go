package services

import (
	"slices"
	"strings"
	"time"

	"github.com/rpupo63/plant-tag-config/config"
	"github.com/rpupo63/plant-tag-config/database"
	"github.com/rpupo63/plant-tag-config/errs"
	"github.com/rpupo63/plant-tag-config/models"
	"github.com/rpupo63/plant-tag-config/session"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// AddNewOption is the sentinel entry offered after the known values of a
// generic tag or UOM drop-down.
const AddNewOption = "+ Add New"

// SuggestionLimit caps how many suggested generic tags are announced.
const SuggestionLimit = 5

// Configurator carries out every screen action against a session state and
// the shared tables.
type Configurator struct {
	db      database.Database
	catalog config.Catalog
	logger  zerolog.Logger
	now     func() time.Time
}

func NewConfigurator(db database.Database, catalog config.Catalog) *Configurator {
	return &Configurator{
		db:      db,
		catalog: catalog,
		logger:  log.With().Str("service", "configurator").Logger(),
		now:     time.Now,
	}
}

func (c *Configurator) Catalog() config.Catalog {
	return c.catalog
}

func (c *Configurator) Database() database.Database {
	return c.db
}

// Navigate switches screens. The hierarchy screen needs an industry and the
// tags screen needs a complete hierarchy; neither can be opened from the
// welcome screen directly.
func (c *Configurator) Navigate(s *session.State, to session.Screen) error {
	if !to.Valid() {
		return errs.NewInvalidFieldError("screen", "unknown screen")
	}
	switch to {
	case session.ScreenHierarchy:
		if s.Industry == "" {
			return errs.NewInvalidStateError("select an industry first")
		}
	case session.ScreenTags:
		if s.Screen == session.ScreenWelcome {
			return errs.NewInvalidStateError("tags cannot be configured from the welcome screen")
		}
		if s.Industry == "" || !s.Hierarchy.Complete() {
			return errs.NewInvalidStateError("define the plant hierarchy first")
		}
	}
	s.Navigate(to)
	return nil
}

// SelectIndustry starts a hierarchy for a catalog industry.
func (c *Configurator) SelectIndustry(s *session.State, industry string) error {
	industry = strings.TrimSpace(industry)
	if industry == "" {
		return errs.NewMissingRequiredFieldError("industry")
	}
	if !c.catalog.HasIndustry(industry) {
		return errs.NewInvalidFieldError("industry", "not a known industry")
	}
	s.Industry = industry
	s.ResetHierarchy()
	s.Navigate(session.ScreenHierarchy)
	return nil
}

// BackToIndustries drops the hierarchy in progress and returns to the start.
func (c *Configurator) BackToIndustries(s *session.State) {
	s.ResetHierarchy()
	s.Navigate(session.ScreenWelcome)
}

// LevelOptions returns the existing values offered for level given the
// ancestors chosen so far.
func (c *Configurator) LevelOptions(s *session.State, level models.HierarchyLevel) ([]string, error) {
	values, err := c.db.HierarchyRepo().DistinctValues(level, s.Industry, s.Hierarchy.Ancestors(level))
	if err != nil {
		return nil, errs.NewDatabaseError("list", "hierarchy options", err)
	}
	return values, nil
}

// HierarchyOptions returns LevelOptions for every level.
func (c *Configurator) HierarchyOptions(s *session.State) (map[models.HierarchyLevel][]string, error) {
	options := make(map[models.HierarchyLevel][]string, len(models.HierarchyLevels))
	for _, level := range models.HierarchyLevels {
		values, err := c.LevelOptions(s, level)
		if err != nil {
			return nil, err
		}
		options[level] = values
	}
	return options, nil
}

// SetHierarchyLevel fills one level. In new mode, or in select mode when
// nothing exists to select, the value must be a valid hierarchy name; an
// invalid name clears the level and is reported. In select mode the value
// must be one of the current options.
func (c *Configurator) SetHierarchyLevel(s *session.State, level models.HierarchyLevel, mode session.InputMode, value string) error {
	if s.Industry == "" {
		return errs.NewInvalidStateError("select an industry first")
	}

	if mode == session.ModeSelect {
		options, err := c.LevelOptions(s, level)
		if err != nil {
			return err
		}
		if len(options) > 0 {
			if value != "" && !slices.Contains(options, value) {
				return errs.NewInvalidFieldError(string(level), "not an existing value")
			}
			s.Modes[level] = mode
			s.Hierarchy = s.Hierarchy.Set(level, value)
			return nil
		}
	}

	s.Modes[level] = mode
	if err := ValidateHierarchyName(level, value); err != nil {
		s.Hierarchy = s.Hierarchy.Set(level, "")
		return err
	}
	s.Hierarchy = s.Hierarchy.Set(level, value)
	return nil
}

// PickHierarchy fills every level from an existing hierarchy row.
func (c *Configurator) PickHierarchy(s *session.State, path models.HierarchyPath) error {
	if s.Industry == "" {
		return errs.NewInvalidStateError("select an industry first")
	}
	exists, err := c.db.HierarchyRepo().Exists(s.Industry, path)
	if err != nil {
		return errs.NewDatabaseError("find", "hierarchy", err)
	}
	if !exists {
		return errs.NewNotFound("hierarchy")
	}
	s.Hierarchy = path
	s.ResetModes()
	return nil
}

// SaveHierarchy stores the selected path (once) and opens the tags screen.
func (c *Configurator) SaveHierarchy(s *session.State) (bool, error) {
	if s.Industry == "" {
		return false, errs.NewInvalidStateError("select an industry first")
	}
	var missing []string
	for _, level := range models.HierarchyLevels {
		value := s.Hierarchy.Get(level)
		if value == "" {
			missing = append(missing, string(level))
			continue
		}
		if err := ValidateHierarchyName(level, value); err != nil {
			return false, err
		}
	}
	if len(missing) > 0 {
		return false, errs.NewMissingRequiredFieldsError(missing)
	}

	row := models.HierarchyRow{
		Industry:  s.Industry,
		Plant:     s.Hierarchy.Plant,
		Area:      s.Hierarchy.Area,
		Equipment: s.Hierarchy.Equipment,
		Asset:     s.Hierarchy.Asset,
	}
	created, err := c.db.HierarchyRepo().Add(&row)
	if err != nil {
		return false, errs.NewDatabaseError("save", "hierarchy", err)
	}
	c.logger.Info().
		Str("industry", row.Industry).
		Str("path", strings.Join([]string{row.Plant, row.Area, row.Equipment, row.Asset}, "/")).
		Bool("created", created).
		Msg("hierarchy saved")

	s.Navigate(session.ScreenTags)
	return created, nil
}

// PlantNode is one plant of the hierarchy tree.
type PlantNode struct {
	Name  string     `json:"name"`
	Areas []AreaNode `json:"areas"`
}

type AreaNode struct {
	Name      string          `json:"name"`
	Equipment []EquipmentNode `json:"equipment"`
}

type EquipmentNode struct {
	Name   string   `json:"name"`
	Assets []string `json:"assets"`
}

// HierarchyTree nests the stored rows of an industry by level.
func (c *Configurator) HierarchyTree(industry string) ([]PlantNode, error) {
	rows, err := c.db.HierarchyRepo().FindByIndustry(industry)
	if err != nil {
		return nil, errs.NewDatabaseError("list", "hierarchy", err)
	}

	var plants []PlantNode
	for _, row := range rows {
		if len(plants) == 0 || plants[len(plants)-1].Name != row.Plant {
			plants = append(plants, PlantNode{Name: row.Plant})
		}
		plant := &plants[len(plants)-1]
		if len(plant.Areas) == 0 || plant.Areas[len(plant.Areas)-1].Name != row.Area {
			plant.Areas = append(plant.Areas, AreaNode{Name: row.Area})
		}
		area := &plant.Areas[len(plant.Areas)-1]
		if len(area.Equipment) == 0 || area.Equipment[len(area.Equipment)-1].Name != row.Equipment {
			area.Equipment = append(area.Equipment, EquipmentNode{Name: row.Equipment})
		}
		equipment := &area.Equipment[len(area.Equipment)-1]
		equipment.Assets = append(equipment.Assets, row.Asset)
	}
	return plants, nil
}

// SuggestedGenericTags lists the generic tags known for the session's
// industry and equipment.
func (c *Configurator) SuggestedGenericTags(s *session.State) ([]string, error) {
	tags, err := c.db.AvailableGenericTagRepo().GenericTagsFor(s.Industry, s.Hierarchy.Equipment)
	if err != nil {
		return nil, errs.NewDatabaseError("list", "suggested generic tags", err)
	}
	return tags, nil
}

// GenericTagOptions orders the drop-down: suggestions first, then the rest
// of the session list, then the add-new sentinel.
func GenericTagOptions(suggested, known []string) []string {
	options := slices.Clone(suggested)
	for _, tag := range known {
		if !slices.Contains(suggested, tag) {
			options = append(options, tag)
		}
	}
	return append(options, AddNewOption)
}

// UOMOptions lists the session units followed by the add-new sentinel.
func UOMOptions(known []string) []string {
	return append(slices.Clone(known), AddNewOption)
}

// SubmitDraft validates section one of the tag form and resolves the
// generic tag's metadata and UUID.
func (c *Configurator) SubmitDraft(s *session.State, input session.TagDraft) error {
	if s.Industry == "" || !s.Hierarchy.Complete() {
		return errs.NewInvalidStateError("define the plant hierarchy first")
	}

	input.DCSTag = strings.TrimSpace(input.DCSTag)
	input.RawParameter = strings.TrimSpace(input.RawParameter)
	input.GenericTag = strings.TrimSpace(input.GenericTag)
	input.UOM = strings.TrimSpace(input.UOM)
	if input.GenericTag == AddNewOption {
		input.GenericTag = ""
	}
	if input.UOM == AddNewOption {
		input.UOM = ""
	}
	if missing := input.MissingFields(); len(missing) > 0 {
		return errs.NewMissingRequiredFieldsError(missing)
	}

	suggested, err := c.SuggestedGenericTags(s)
	if err != nil {
		return err
	}
	if !input.CustomGenericTag && !slices.Contains(GenericTagOptions(suggested, s.GenericTags), input.GenericTag) {
		return errs.NewInvalidFieldError("generic_tag", "not in the list; mark it as a custom generic tag to add it")
	}
	if !input.CustomUOM && !slices.Contains(s.UOMs, input.UOM) {
		return errs.NewInvalidFieldError("uom", "not in the list; mark it as a custom unit to add it")
	}

	repo := c.db.AvailableGenericTagRepo()
	metadata, err := repo.MetadataFor(input.GenericTag, s.Industry, s.Hierarchy.Equipment)
	if err != nil {
		return errs.NewDatabaseError("resolve", "generic tag metadata", err)
	}
	tagUUID, err := repo.GetOrCreateUUID(input.GenericTag, s.Industry, s.Hierarchy.Equipment, metadata)
	if err != nil {
		return errs.NewDatabaseError("resolve", "generic tag uuid", err)
	}

	input.Metadata = metadata
	input.UUID = tagUUID
	input.Submitted = true
	s.Draft = input
	return nil
}

// AddTag turns a submitted draft into a pending entry. metadata, when not
// nil, replaces the resolved metadata and is saved for the generic tag's
// exact scope.
func (c *Configurator) AddTag(s *session.State, metadata *string) (models.TagRow, error) {
	if !s.Draft.Submitted {
		return models.TagRow{}, errs.NewInvalidStateError("submit the tag details first")
	}
	draft := s.Draft
	if metadata != nil {
		draft.Metadata = *metadata
	}

	err := c.db.Transaction(func(tx database.Database) error {
		if _, _, err := tx.AvailableGenericTagRepo().UpsertMetadata(
			draft.GenericTag, s.Industry, s.Hierarchy.Equipment, draft.UUID, draft.Metadata,
		); err != nil {
			return err
		}
		_, err := tx.GenericTagMappingRepo().Increment(draft.GenericTag, s.Industry, s.Hierarchy.Equipment, c.now())
		return err
	})
	if err != nil {
		return models.TagRow{}, errs.NewDatabaseError("record", "generic tag usage", err)
	}

	if draft.CustomGenericTag {
		s.AddGenericTag(draft.GenericTag)
	}
	if draft.CustomUOM {
		s.AddUOM(draft.UOM)
	}

	row := models.TagRow{
		Industry:      s.Industry,
		Plant:         s.Hierarchy.Plant,
		Area:          s.Hierarchy.Area,
		Equipment:     s.Hierarchy.Equipment,
		Asset:         s.Hierarchy.Asset,
		DCSTag:        draft.DCSTag,
		RawParameter:  draft.RawParameter,
		GenericTag:    draft.GenericTag,
		UUID:          draft.UUID,
		Metadata:      draft.Metadata,
		UOM:           draft.UOM,
		LowLowLimit:   draft.LowLowLimit,
		LowLimit:      draft.LowLimit,
		HighLimit:     draft.HighLimit,
		HighHighLimit: draft.HighHighLimit,
	}
	s.AppendPending(row)
	s.ResetDraft()

	c.logger.Info().Str("dcs_tag", row.DCSTag).Str("generic_tag", row.GenericTag).Msg("tag added")
	return row, nil
}

// DeletePending removes one pending entry by position.
func (c *Configurator) DeletePending(s *session.State, index int) (models.TagRow, error) {
	return s.DeletePending(index)
}

// ClearDraft empties the tag form.
func (c *Configurator) ClearDraft(s *session.State) {
	s.ResetDraft()
}

// BackToHierarchy leaves the tags screen, discarding the form.
func (c *Configurator) BackToHierarchy(s *session.State) {
	s.ResetDraft()
	s.Navigate(session.ScreenHierarchy)
}

// Finish commits every pending entry in one batch and opens the summary.
// Pending entries survive a failed commit.
func (c *Configurator) Finish(s *session.State) (int, error) {
	pending := slices.Clone(s.Pending)
	if err := c.db.TagRepo().AddBatch(pending); err != nil {
		return 0, errs.NewDatabaseError("save", "tags", err)
	}
	s.TakePending()
	s.Navigate(session.ScreenSummary)

	c.logger.Info().Int("count", len(pending)).Msg("tags committed")
	return len(pending), nil
}

// Statistics is the quick-actions summary.
type Statistics struct {
	Industries  int64 `json:"industries"`
	Plants      int64 `json:"plants"`
	TotalTags   int64 `json:"total_tags"`
	GenericTags int   `json:"generic_tags"`
}

func (c *Configurator) Statistics(s *session.State) (Statistics, error) {
	repo := c.db.TagRepo()
	total, err := repo.Count()
	if err != nil {
		return Statistics{}, errs.NewDatabaseError("count", "tags", err)
	}
	industries, err := repo.CountDistinct("industry")
	if err != nil {
		return Statistics{}, errs.NewDatabaseError("count", "industries", err)
	}
	plants, err := repo.CountDistinct("plant")
	if err != nil {
		return Statistics{}, errs.NewDatabaseError("count", "plants", err)
	}
	return Statistics{
		Industries:  industries,
		Plants:      plants,
		TotalTags:   total,
		GenericTags: len(s.GenericTags),
	}, nil
}
