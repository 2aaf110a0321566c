package api

import (
	"github.com/rpupo63/plant-tag-config/services"
)

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(configurator *services.Configurator, maxUploadBytes int64) *routeHandlers {
	return &routeHandlers{
		sidebarHandler:   newSidebarHandler(configurator),
		welcomeHandler:   newWelcomeHandler(configurator),
		hierarchyHandler: newHierarchyHandler(configurator),
		tagHandler:       newTagHandler(configurator),
		uploadHandler:    newUploadHandler(configurator, maxUploadBytes),
		summaryHandler:   newSummaryHandler(configurator),
	}
}
