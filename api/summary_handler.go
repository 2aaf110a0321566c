package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rpupo63/plant-tag-config/services"
	"github.com/rpupo63/plant-tag-config/session"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type summaryHandler struct {
	responder    Responder
	logger       zerolog.Logger
	configurator *services.Configurator
}

func newSummaryHandler(configurator *services.Configurator) summaryHandler {
	logger := log.With().Str("handlerName", "summaryHandler").Logger()

	return summaryHandler{
		responder:    NewResponder(logger),
		logger:       logger,
		configurator: configurator,
	}
}

// view lists both tables; the industry and equipment query parameters
// narrow the generic tags to one pair.
func (h summaryHandler) view(r *http.Request, _ *session.State) (any, error) {
	industry := r.URL.Query().Get("industry")
	equipment := r.URL.Query().Get("equipment")

	tags, err := h.configurator.TagRecords()
	if err != nil {
		return nil, err
	}
	available, err := h.configurator.AvailableGenericTagRecords()
	if err != nil {
		return nil, err
	}
	industries, err := h.configurator.FilterIndustries()
	if err != nil {
		return nil, err
	}
	if industries == nil {
		industries = []string{}
	}
	equipmentOptions, err := h.configurator.FilterEquipment(industry)
	if err != nil {
		return nil, err
	}
	if equipmentOptions == nil {
		equipmentOptions = []string{}
	}

	view := SummaryView{
		Tags:                 tags,
		AvailableGenericTags: available,
		FilterIndustries:     industries,
		FilterEquipment:      equipmentOptions,
		Industry:             industry,
		Equipment:            equipment,
	}
	if (services.ExportFilter{Industry: industry, Equipment: equipment}).Active() {
		view.Filtered, err = h.configurator.FilteredGenericTags(industry, equipment)
		if err != nil {
			return nil, err
		}
	}
	return view, nil
}

func (h summaryHandler) getSummary() http.HandlerFunc {
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

// export downloads a dataset as csv, xlsx or json. format defaults to csv.
func (h summaryHandler) export() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dataset, err := services.ParseDataset(chi.URLParam(r, "dataset"))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		query := r.URL.Query()
		formatStr := query.Get("format")
		if formatStr == "" {
			formatStr = string(services.FormatCSV)
		}
		format, err := services.ParseFormat(formatStr)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		file, err := h.configurator.Export(dataset, format, services.ExportFilter{
			Industry:  query.Get("industry"),
			Equipment: query.Get("equipment"),
		})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.logger.Info().Str("file", file.Name).Int("bytes", len(file.Data)).Msg("export written")
		h.responder.WriteFile(w, file.Name, file.ContentType, file.Data)
	}
}
