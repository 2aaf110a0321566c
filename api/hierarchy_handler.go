package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rpupo63/plant-tag-config/errs"
	"github.com/rpupo63/plant-tag-config/models"
	"github.com/rpupo63/plant-tag-config/services"
	"github.com/rpupo63/plant-tag-config/session"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type hierarchyHandler struct {
	responder    Responder
	logger       zerolog.Logger
	configurator *services.Configurator
}

func newHierarchyHandler(configurator *services.Configurator) hierarchyHandler {
	logger := log.With().Str("handlerName", "hierarchyHandler").Logger()

	return hierarchyHandler{
		responder:    NewResponder(logger),
		logger:       logger,
		configurator: configurator,
	}
}

func (h hierarchyHandler) view(_ *http.Request, s *session.State) (any, error) {
	options, err := h.configurator.HierarchyOptions(s)
	if err != nil {
		return nil, err
	}
	tree, err := h.configurator.HierarchyTree(s.Industry)
	if err != nil {
		return nil, err
	}
	modes := make(map[models.HierarchyLevel]session.InputMode, len(models.HierarchyLevels))
	for _, level := range models.HierarchyLevels {
		modes[level] = s.Mode(level)
	}
	return HierarchyView{
		Industry:  s.Industry,
		Selection: s.Hierarchy,
		Modes:     modes,
		Options:   options,
		AllFilled: s.Hierarchy.Complete(),
		Tree:      tree,
	}, nil
}

// respondWithView writes the hierarchy view after a successful action.
func (h hierarchyHandler) respondWithView(w http.ResponseWriter, r *http.Request, action func(*session.State) error) {
	var view any
	err := withSession(r, func(s *session.State) error {
		if err := action(s); err != nil {
			return err
		}
		var err error
		view, err = h.view(r, s)
		return err
	})
	if err != nil {
		h.responder.WriteError(w, err)
		return
	}
	h.responder.WriteJSON(w, view)
}

func (h hierarchyHandler) getHierarchy() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.respondWithView(w, r, func(s *session.State) error {
			if s.Industry == "" {
				return errs.NewInvalidStateError("select an industry first")
			}
			return nil
		})
	}
}

// setLevel fills one level of the selection, either picked from the
// existing values or typed in as a new name.
func (h hierarchyHandler) setLevel() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		level, ok := models.ParseHierarchyLevel(chi.URLParam(r, "level"))
		if !ok {
			h.responder.WriteError(w, errs.NewNotFoundError("hierarchy level not found"))
			return
		}

		var req SetLevelRequest
		if err := decodeJSON(r, "hierarchy level", &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		mode, ok := session.ParseInputMode(req.Mode)
		if !ok {
			h.responder.WriteError(w, errs.NewInvalidFieldError("mode", "must be select or new"))
			return
		}

		h.respondWithView(w, r, func(s *session.State) error {
			return h.configurator.SetHierarchyLevel(s, level, mode, req.Value)
		})
	}
}

// pickExisting fills every level from a stored hierarchy row.
func (h hierarchyHandler) pickExisting() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var path models.HierarchyPath
		if err := decodeJSON(r, "hierarchy path", &path); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.respondWithView(w, r, func(s *session.State) error {
			return h.configurator.PickHierarchy(s, path)
		})
	}
}

func (h hierarchyHandler) saveHierarchy() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var response SaveHierarchyResponse
		err := withSession(r, func(s *session.State) error {
			created, err := h.configurator.SaveHierarchy(s)
			response = SaveHierarchyResponse{Created: created, Screen: s.Screen}
			return err
		})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		status := http.StatusOK
		if response.Created {
			status = http.StatusCreated
		}
		h.responder.WriteJSONStatus(w, status, response)
	}
}

func (h hierarchyHandler) backToIndustries() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := withSession(r, func(s *session.State) error {
			h.configurator.BackToIndustries(s)
			return nil
		})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, ScreenResponse{Screen: session.ScreenWelcome})
	}
}
