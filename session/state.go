package session

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rpupo63/plant-tag-config/config"
	"github.com/rpupo63/plant-tag-config/errs"
	"github.com/rpupo63/plant-tag-config/models"
)

// InputMode tells whether a hierarchy level is picked from existing values
// or typed in as a new name.
type InputMode string

const (
	ModeSelect InputMode = "select"
	ModeNew    InputMode = "new"
)

func ParseInputMode(s string) (InputMode, bool) {
	switch InputMode(s) {
	case ModeSelect, "":
		return ModeSelect, true
	case ModeNew:
		return ModeNew, true
	}
	return "", false
}

// TagDraft is the tag form. Section one holds the operator's input; the
// UUID and metadata are resolved when section one is submitted.
type TagDraft struct {
	DCSTag           string  `json:"dcs_tag"`
	RawParameter     string  `json:"raw_parameter"`
	GenericTag       string  `json:"generic_tag"`
	CustomGenericTag bool    `json:"custom_generic_tag"`
	UOM              string  `json:"uom"`
	CustomUOM        bool    `json:"custom_uom"`
	LowLowLimit      float64 `json:"low_low_limit"`
	LowLimit         float64 `json:"low_limit"`
	HighLimit        float64 `json:"high_limit"`
	HighHighLimit    float64 `json:"high_high_limit"`
	UUID             string  `json:"uuid"`
	Metadata         string  `json:"metadata"`
	Submitted        bool    `json:"submitted"`
}

// MissingFields names the required section-one fields that are empty.
func (d TagDraft) MissingFields() []string {
	var missing []string
	if d.DCSTag == "" {
		missing = append(missing, "dcs_tag")
	}
	if d.RawParameter == "" {
		missing = append(missing, "raw_parameter")
	}
	if d.GenericTag == "" {
		missing = append(missing, "generic_tag")
	}
	if d.UOM == "" {
		missing = append(missing, "uom")
	}
	return missing
}

// State is everything one operator's session knows. Handlers read and
// write it only through Do, which serializes access.
type State struct {
	mu sync.Mutex

	ID         uuid.UUID
	Screen     Screen
	LastScreen Screen
	Industry   string
	Hierarchy  models.HierarchyPath
	Modes      map[models.HierarchyLevel]InputMode
	Draft      TagDraft
	Pending    []models.TagRow
	// GenericTags and UOMs start from the catalog and grow with custom
	// entries and uploads.
	GenericTags []string
	UOMs        []string
	LastSeen    time.Time
}

func NewState(id uuid.UUID, catalog config.Catalog) *State {
	s := &State{
		ID:          id,
		Screen:      ScreenWelcome,
		LastScreen:  ScreenWelcome,
		GenericTags: slices.Clone(catalog.GenericTags),
		UOMs:        slices.Clone(catalog.UOMs),
	}
	s.ResetModes()
	return s
}

// Do runs fn with exclusive access to the state.
func (s *State) Do(fn func(*State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s)
}

// Navigate moves to screen. Entering the hierarchy screen from anywhere
// else puts every level back into select mode.
func (s *State) Navigate(to Screen) {
	if to == ScreenHierarchy && s.Screen != ScreenHierarchy {
		s.ResetModes()
	}
	s.LastScreen = s.Screen
	s.Screen = to
}

func (s *State) ResetModes() {
	s.Modes = make(map[models.HierarchyLevel]InputMode, len(models.HierarchyLevels))
	for _, level := range models.HierarchyLevels {
		s.Modes[level] = ModeSelect
	}
}

// ResetHierarchy clears the selected path and modes.
func (s *State) ResetHierarchy() {
	s.Hierarchy = models.HierarchyPath{}
	s.ResetModes()
}

func (s *State) ResetDraft() {
	s.Draft = TagDraft{}
}

func (s *State) Mode(level models.HierarchyLevel) InputMode {
	if mode, ok := s.Modes[level]; ok {
		return mode
	}
	return ModeSelect
}

// AddGenericTag inserts name into the session list keeping it sorted and
// distinct. It reports whether the list changed.
func (s *State) AddGenericTag(name string) bool {
	var added bool
	s.GenericTags, added = insertSorted(s.GenericTags, name)
	return added
}

// AddUOM inserts unit into the session list keeping it sorted and distinct.
func (s *State) AddUOM(unit string) bool {
	var added bool
	s.UOMs, added = insertSorted(s.UOMs, unit)
	return added
}

func insertSorted(list []string, item string) ([]string, bool) {
	if item == "" || slices.Contains(list, item) {
		return list, false
	}
	list = append(list, item)
	slices.Sort(list)
	return list, true
}

// AppendPending queues a tag for the next Finish.
func (s *State) AppendPending(row models.TagRow) {
	s.Pending = append(s.Pending, row)
}

// DeletePending removes the entry at index; the others keep their order.
func (s *State) DeletePending(index int) (models.TagRow, error) {
	if index < 0 || index >= len(s.Pending) {
		return models.TagRow{}, errs.NewIndexOutOfRangeError("index", index, len(s.Pending))
	}
	removed := s.Pending[index]
	s.Pending = slices.Delete(s.Pending, index, index+1)
	return removed, nil
}

// TakePending returns the queued tags and empties the queue.
func (s *State) TakePending() []models.TagRow {
	pending := s.Pending
	s.Pending = nil
	return pending
}
