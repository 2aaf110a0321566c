package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rpupo63/plant-tag-config/errs"
	"github.com/rpupo63/plant-tag-config/session"
	"github.com/rs/zerolog/log"
)

// screenRenderer builds the view of one screen for a locked session.
type screenRenderer func(r *http.Request, s *session.State) (any, error)

func screenRenderers(handlers *routeHandlers) map[session.Screen]screenRenderer {
	return map[session.Screen]screenRenderer{
		session.ScreenWelcome:   handlers.welcomeHandler.view,
		session.ScreenHierarchy: handlers.hierarchyHandler.view,
		session.ScreenTags:      handlers.tagHandler.view,
		session.ScreenUpload:    handlers.uploadHandler.view,
		session.ScreenSummary:   handlers.summaryHandler.view,
	}
}

// getScreen renders whichever screen the session is currently on.
func getScreen(renderers map[session.Screen]screenRenderer) http.HandlerFunc {
	responder := NewResponder(log.With().Str("handlerName", "screenHandler").Logger())

	return func(w http.ResponseWriter, r *http.Request) {
		var response ScreenResponse
		err := withSession(r, func(s *session.State) error {
			render, ok := renderers[s.Screen]
			if !ok {
				return errs.NewInternalError("no renderer for screen " + s.Screen.String())
			}
			view, err := render(r, s)
			response = ScreenResponse{Screen: s.Screen, View: view}
			return err
		})
		if err != nil {
			responder.WriteError(w, err)
			return
		}
		responder.WriteJSON(w, response)
	}
}

// setupFrontendRoutes registers one group of routes per screen. Every
// route runs inside a session.
func setupFrontendRoutes(r chi.Router, handlers *routeHandlers, sessions sessionMiddleware, maxUploadBytes int64) {
	r.Group(func(r chi.Router) {
		r.Use(ColoredHTTPLoggingMiddleware)
		r.Use(sessions.attach)

		r.Get("/screen", getScreen(screenRenderers(handlers)))
		r.Get("/catalog", handlers.sidebarHandler.getCatalog())

		// Sidebar
		r.Get("/sidebar", handlers.sidebarHandler.getSidebar())
		r.Post("/navigate", handlers.sidebarHandler.navigate())
		r.Get("/statistics", handlers.sidebarHandler.getStatistics())
		r.Get("/generic-tag-mappings", handlers.sidebarHandler.getGenericTagMappings())

		// Welcome
		r.Get("/welcome", handlers.welcomeHandler.getWelcome())
		r.Post("/welcome/industry", handlers.welcomeHandler.selectIndustry())

		// Hierarchy
		r.Route("/hierarchy", func(r chi.Router) {
			r.Get("/", handlers.hierarchyHandler.getHierarchy())
			r.Put("/levels/{level}", handlers.hierarchyHandler.setLevel())
			r.Post("/pick", handlers.hierarchyHandler.pickExisting())
			r.Post("/save", handlers.hierarchyHandler.saveHierarchy())
			r.Post("/back", handlers.hierarchyHandler.backToIndustries())
		})

		// Tags
		r.Route("/tags", func(r chi.Router) {
			r.Get("/", handlers.tagHandler.getTags())
			r.Post("/draft", handlers.tagHandler.submitDraft())
			r.Delete("/draft", handlers.tagHandler.clearDraft())
			r.Post("/pending", handlers.tagHandler.addTag())
			r.Delete("/pending/{index}", handlers.tagHandler.deletePending())
			r.Post("/finish", handlers.tagHandler.finish())
			r.Post("/back", handlers.tagHandler.backToHierarchy())
		})

		// Upload
		r.Route("/upload", func(r chi.Router) {
			r.Get("/", handlers.uploadHandler.getUpload())
			r.With(limitBody(maxUploadBytes)).Post("/", handlers.uploadHandler.upload())
			r.With(limitBody(maxUploadBytes)).Post("/preview", handlers.uploadHandler.previewUpload())
		})

		// Summary
		r.Get("/summary", handlers.summaryHandler.getSummary())
		r.Get("/export/{dataset}", handlers.summaryHandler.export())
	})
}
