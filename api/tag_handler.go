package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rpupo63/plant-tag-config/errs"
	"github.com/rpupo63/plant-tag-config/services"
	"github.com/rpupo63/plant-tag-config/session"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type tagHandler struct {
	responder    Responder
	logger       zerolog.Logger
	configurator *services.Configurator
}

func newTagHandler(configurator *services.Configurator) tagHandler {
	logger := log.With().Str("handlerName", "tagHandler").Logger()

	return tagHandler{
		responder:    NewResponder(logger),
		logger:       logger,
		configurator: configurator,
	}
}

func (h tagHandler) view(_ *http.Request, s *session.State) (any, error) {
	suggested, err := h.configurator.SuggestedGenericTags(s)
	if err != nil {
		return nil, err
	}
	if suggested == nil {
		suggested = []string{}
	}
	pending := make([]PendingTag, len(s.Pending))
	for i, row := range s.Pending {
		pending[i] = PendingTag{Index: i, TagRow: row}
	}
	return TagsView{
		Industry:          s.Industry,
		Hierarchy:         s.Hierarchy,
		Breadcrumb:        strings.Join([]string{s.Industry, s.Hierarchy.Plant, s.Hierarchy.Area, s.Hierarchy.Equipment, s.Hierarchy.Asset}, " > "),
		Suggested:         suggested[:min(len(suggested), services.SuggestionLimit)],
		GenericTagOptions: services.GenericTagOptions(suggested, s.GenericTags),
		UOMOptions:        services.UOMOptions(s.UOMs),
		Draft:             s.Draft,
		Pending:           pending,
	}, nil
}

// respondWithView writes the tags view after a successful action.
func (h tagHandler) respondWithView(w http.ResponseWriter, r *http.Request, status int, action func(*session.State) error) {
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
	h.responder.WriteJSONStatus(w, status, view)
}

func (h tagHandler) getTags() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.respondWithView(w, r, http.StatusOK, func(s *session.State) error {
			if s.Industry == "" || !s.Hierarchy.Complete() {
				return errs.NewInvalidStateError("define the plant hierarchy first")
			}
			return nil
		})
	}
}

// submitDraft validates section one of the tag form and resolves the
// generic tag's UUID and metadata.
func (h tagHandler) submitDraft() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var draft session.TagDraft
		if err := decodeJSON(r, "tag draft", &draft); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.respondWithView(w, r, http.StatusOK, func(s *session.State) error {
			return h.configurator.SubmitDraft(s, draft)
		})
	}
}

func (h tagHandler) clearDraft() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.respondWithView(w, r, http.StatusOK, func(s *session.State) error {
			h.configurator.ClearDraft(s)
			return nil
		})
	}
}

// addTag queues the submitted draft.
func (h tagHandler) addTag() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AddTagRequest
		if err := decodeJSON(r, "add tag", &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.respondWithView(w, r, http.StatusCreated, func(s *session.State) error {
			_, err := h.configurator.AddTag(s, req.Metadata)
			return err
		})
	}
}

func (h tagHandler) deletePending() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		indexStr := chi.URLParam(r, "index")
		index, err := strconv.Atoi(indexStr)
		if err != nil {
			h.responder.WriteError(w, errs.NewInvalidFieldError("index", "must be an integer"))
			return
		}
		h.respondWithView(w, r, http.StatusOK, func(s *session.State) error {
			removed, err := h.configurator.DeletePending(s, index)
			if err != nil {
				return err
			}
			h.logger.Info().Int("index", index).Str("dcs_tag", removed.DCSTag).Msg("pending tag deleted")
			return nil
		})
	}
}

// finish commits the pending tags and opens the summary.
func (h tagHandler) finish() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var response FinishResponse
		err := withSession(r, func(s *session.State) error {
			n, err := h.configurator.Finish(s)
			response = FinishResponse{Committed: n, Screen: s.Screen}
			return err
		})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, response)
	}
}

func (h tagHandler) backToHierarchy() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := withSession(r, func(s *session.State) error {
			h.configurator.BackToHierarchy(s)
			return nil
		})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, ScreenResponse{Screen: session.ScreenHierarchy})
	}
}
