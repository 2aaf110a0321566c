package api

import (
	"mime/multipart"
	"net/http"

	"github.com/rpupo63/plant-tag-config/errs"
	"github.com/rpupo63/plant-tag-config/services"
	"github.com/rpupo63/plant-tag-config/session"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type uploadHandler struct {
	responder      Responder
	logger         zerolog.Logger
	configurator   *services.Configurator
	maxUploadBytes int64
}

func newUploadHandler(configurator *services.Configurator, maxUploadBytes int64) uploadHandler {
	logger := log.With().Str("handlerName", "uploadHandler").Logger()

	return uploadHandler{
		responder:      NewResponder(logger),
		logger:         logger,
		configurator:   configurator,
		maxUploadBytes: maxUploadBytes,
	}
}

func (h uploadHandler) view(r *http.Request, _ *session.State) (any, error) {
	industry := r.URL.Query().Get("industry")
	equipment, err := h.configurator.UploadEquipmentOptions(industry)
	if err != nil {
		return nil, err
	}
	if equipment == nil {
		equipment = []string{}
	}
	return UploadView{
		Industries:       h.configurator.Catalog().IndustryNames(),
		Industry:         industry,
		EquipmentOptions: equipment,
		RequiredColumns:  services.RequiredUploadColumns,
		Extensions:       services.UploadExtensions,
	}, nil
}

func (h uploadHandler) getUpload() http.HandlerFunc {
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

// readFile parses the multipart form and returns the "file" part.
func (h uploadHandler) readFile(r *http.Request) (multipart.File, *multipart.FileHeader, error) {
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		if apiErr, ok := bodyTooLarge(err); ok {
			return nil, nil, apiErr
		}
		return nil, nil, errs.NewMalformedPayloadError("multipart upload", err)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, nil, errs.NewMissingRequiredFieldError("file")
	}
	return file, header, nil
}

// previewUpload shows the first rows of a file and which required columns
// it lacks, without storing anything.
func (h uploadHandler) previewUpload() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		file, header, err := h.readFile(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		defer file.Close()

		table, err := services.ReadTable(header.Filename, file)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, services.PreviewTable(table))
	}
}

// upload imports a generic tag file for an industry/equipment pair.
func (h uploadHandler) upload() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		file, header, err := h.readFile(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		defer file.Close()

		industry := r.FormValue("industry")
		equipment := r.FormValue("equipment")

		var result services.ImportResult
		err = withSession(r, func(s *session.State) error {
			var err error
			result, err = h.configurator.UploadGenericTags(s, industry, equipment, header.Filename, file)
			return err
		})
		if err != nil {
			h.logger.Warn().Err(err).Str("file", header.Filename).Msg("upload rejected")
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSONStatus(w, http.StatusCreated, result)
	}
}
