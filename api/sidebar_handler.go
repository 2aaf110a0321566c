package api

import (
	"net/http"

	"github.com/rpupo63/plant-tag-config/errs"
	"github.com/rpupo63/plant-tag-config/models"
	"github.com/rpupo63/plant-tag-config/services"
	"github.com/rpupo63/plant-tag-config/session"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type sidebarHandler struct {
	responder    Responder
	logger       zerolog.Logger
	configurator *services.Configurator
}

func newSidebarHandler(configurator *services.Configurator) sidebarHandler {
	logger := log.With().Str("handlerName", "sidebarHandler").Logger()

	return sidebarHandler{
		responder:    NewResponder(logger),
		logger:       logger,
		configurator: configurator,
	}
}

func (h sidebarHandler) view(s *session.State) (SidebarView, error) {
	stats, err := h.configurator.Statistics(s)
	if err != nil {
		return SidebarView{}, err
	}
	return SidebarView{
		Screen:     s.Screen,
		LastScreen: s.LastScreen,
		Screens:    session.Screens,
		Industry:   s.Industry,
		Statistics: stats,
	}, nil
}

// getSidebar returns the navigation state and quick statistics.
func (h sidebarHandler) getSidebar() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var view SidebarView
		err := withSession(r, func(s *session.State) error {
			var err error
			view, err = h.view(s)
			return err
		})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, view)
	}
}

// navigate moves the session to another screen.
func (h sidebarHandler) navigate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req NavigateRequest
		if err := decodeJSON(r, "navigate", &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if req.Screen == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("screen"))
			return
		}
		to, err := session.ParseScreen(req.Screen)
		if err != nil {
			h.responder.WriteError(w, errs.NewInvalidFieldError("screen", err.Error()))
			return
		}

		var view SidebarView
		err = withSession(r, func(s *session.State) error {
			if err := h.configurator.Navigate(s, to); err != nil {
				return err
			}
			var err error
			view, err = h.view(s)
			return err
		})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, view)
	}
}

func (h sidebarHandler) getStatistics() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var stats services.Statistics
		err := withSession(r, func(s *session.State) error {
			var err error
			stats, err = h.configurator.Statistics(s)
			return err
		})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, stats)
	}
}

// getGenericTagMappings lists the usage counters of every generic tag scope.
func (h sidebarHandler) getGenericTagMappings() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mappings, err := h.configurator.Database().GenericTagMappingRepo().FindAll()
		if err != nil {
			h.responder.WriteError(w, errs.NewDatabaseError("list", "generic tag mappings", err))
			return
		}
		if mappings == nil {
			mappings = []models.GenericTagMapping{}
		}
		h.responder.WriteJSON(w, mappings)
	}
}

func (h sidebarHandler) getCatalog() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.responder.WriteJSON(w, h.configurator.Catalog())
	}
}
