package api

import (
	"net/http"

	"github.com/rpupo63/plant-tag-config/services"
	"github.com/rpupo63/plant-tag-config/session"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type welcomeHandler struct {
	responder    Responder
	logger       zerolog.Logger
	configurator *services.Configurator
}

func newWelcomeHandler(configurator *services.Configurator) welcomeHandler {
	logger := log.With().Str("handlerName", "welcomeHandler").Logger()

	return welcomeHandler{
		responder:    NewResponder(logger),
		logger:       logger,
		configurator: configurator,
	}
}

func (h welcomeHandler) view(_ *http.Request, s *session.State) (any, error) {
	return WelcomeView{
		Industries: h.configurator.Catalog().Industries,
		Selected:   s.Industry,
	}, nil
}

func (h welcomeHandler) getWelcome() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var view any
		err := withSession(r, func(s *session.State) error {
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
}

// selectIndustry starts a hierarchy for the chosen industry and opens the
// hierarchy screen.
func (h welcomeHandler) selectIndustry() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SelectIndustryRequest
		if err := decodeJSON(r, "select industry", &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		err := withSession(r, func(s *session.State) error {
			return h.configurator.SelectIndustry(s, req.Industry)
		})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.logger.Info().Str("industry", req.Industry).Msg("industry selected")
		h.responder.WriteJSON(w, ScreenResponse{Screen: session.ScreenHierarchy})
	}
}
