package api

import (
	"github.com/rpupo63/plant-tag-config/config"
	"github.com/rpupo63/plant-tag-config/models"
	"github.com/rpupo63/plant-tag-config/services"
	"github.com/rpupo63/plant-tag-config/session"
)

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	sidebarHandler   sidebarHandler
	welcomeHandler   welcomeHandler
	hierarchyHandler hierarchyHandler
	tagHandler       tagHandler
	uploadHandler    uploadHandler
	summaryHandler   summaryHandler
}

// ErrorResponse represents an error response from the API
type ErrorResponse struct {
	Error   string `json:"error"`
	Status  string `json:"status"`
	Field   string `json:"field,omitempty"`
	Details string `json:"details,omitempty"`
	Cause   string `json:"cause,omitempty"`
}

// ScreenResponse wraps the view of whichever screen the session is on.
type ScreenResponse struct {
	Screen session.Screen `json:"screen"`
	View   any            `json:"view"`
}

type SidebarView struct {
	Screen     session.Screen      `json:"screen"`
	LastScreen session.Screen      `json:"last_screen"`
	Screens    []session.Screen    `json:"screens"`
	Industry   string              `json:"industry,omitempty"`
	Statistics services.Statistics `json:"statistics"`
}

type WelcomeView struct {
	Industries []config.Industry `json:"industries"`
	Selected   string            `json:"selected,omitempty"`
}

type SelectIndustryRequest struct {
	Industry string `json:"industry"`
}

type NavigateRequest struct {
	Screen string `json:"screen"`
}

type HierarchyView struct {
	Industry  string                                      `json:"industry"`
	Selection models.HierarchyPath                        `json:"selection"`
	Modes     map[models.HierarchyLevel]session.InputMode `json:"modes"`
	Options   map[models.HierarchyLevel][]string          `json:"options"`
	AllFilled bool                                        `json:"all_filled"`
	Tree      []services.PlantNode                        `json:"tree"`
}

type SetLevelRequest struct {
	Mode  string `json:"mode"`
	Value string `json:"value"`
}

type SaveHierarchyResponse struct {
	Created bool           `json:"created"`
	Screen  session.Screen `json:"screen"`
}

// PendingTag is a queued tag with the index DeletePending expects.
type PendingTag struct {
	Index int `json:"index"`
	models.TagRow
}

type TagsView struct {
	Industry          string               `json:"industry"`
	Hierarchy         models.HierarchyPath `json:"hierarchy"`
	Breadcrumb        string               `json:"breadcrumb"`
	Suggested         []string             `json:"suggested_generic_tags"`
	GenericTagOptions []string             `json:"generic_tag_options"`
	UOMOptions        []string             `json:"uom_options"`
	Draft             session.TagDraft     `json:"draft"`
	Pending           []PendingTag         `json:"pending"`
}

// AddTagRequest optionally overrides the resolved metadata.
type AddTagRequest struct {
	Metadata *string `json:"metadata"`
}

type FinishResponse struct {
	Committed int            `json:"committed"`
	Screen    session.Screen `json:"screen"`
}

type UploadView struct {
	Industries       []string `json:"industries"`
	Industry         string   `json:"industry,omitempty"`
	EquipmentOptions []string `json:"equipment_options"`
	RequiredColumns  []string `json:"required_columns"`
	Extensions       []string `json:"extensions"`
}

type SummaryView struct {
	Tags                 []services.TagRecord                 `json:"tags"`
	AvailableGenericTags []services.AvailableGenericTagRecord `json:"available_generic_tags"`
	FilterIndustries     []string                             `json:"filter_industries"`
	FilterEquipment      []string                             `json:"filter_equipment"`
	Industry             string                               `json:"industry,omitempty"`
	Equipment            string                               `json:"equipment,omitempty"`
	Filtered             []services.FilteredGenericTag        `json:"filtered,omitempty"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Uptime   string `json:"uptime"`
	Sessions int    `json:"sessions"`
}
