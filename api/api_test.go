package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rpupo63/plant-tag-config/config"
	"github.com/rpupo63/plant-tag-config/database"
	"github.com/rpupo63/plant-tag-config/models"
	"github.com/rpupo63/plant-tag-config/services"
	"github.com/rpupo63/plant-tag-config/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClient struct {
	t         *testing.T
	handler   http.Handler
	sessionID string
}

func newTestClient(t *testing.T, c map[string]string) *testClient {
	t.Helper()
	name := "api_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	db, err := database.OpenInMemory(name, nil)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	catalog := config.DefaultCatalog()
	configurator := services.NewConfigurator(database.New(db), catalog)
	sessions := session.NewStore(catalog, 0)

	return &testClient{
		t:       t,
		handler: newRouter(configurator, sessions, withConfig(c)),
	}
}

func (tc *testClient) send(req *http.Request) *httptest.ResponseRecorder {
	tc.t.Helper()
	if tc.sessionID != "" {
		req.Header.Set(SessionHeader, tc.sessionID)
	}
	rec := httptest.NewRecorder()
	tc.handler.ServeHTTP(rec, req)
	if id := rec.Header().Get(SessionHeader); id != "" {
		tc.sessionID = id
	}
	return rec
}

func (tc *testClient) do(method, path string, body any) *httptest.ResponseRecorder {
	tc.t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(tc.t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return tc.send(req)
}

func (tc *testClient) upload(path, filename, content string, fields map[string]string) *httptest.ResponseRecorder {
	tc.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(tc.t, mw.WriteField(k, v))
	}
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(tc.t, err)
	_, err = part.Write([]byte(content))
	require.NoError(tc.t, err)
	require.NoError(tc.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return tc.send(req)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// toTags walks a fresh session up to the tags screen for Cement.
func (tc *testClient) toTags() {
	tc.t.Helper()
	rec := tc.do(http.MethodPost, "/welcome/industry", SelectIndustryRequest{Industry: "Cement"})
	require.Equal(tc.t, http.StatusOK, rec.Code, rec.Body.String())

	for level, value := range map[string]string{"plant": "PLANT_A", "area": "AREA_1", "equipment": "KILN", "asset": "KILN_01"} {
		rec = tc.do(http.MethodPut, "/hierarchy/levels/"+level, SetLevelRequest{Mode: "new", Value: value})
		require.Equal(tc.t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec = tc.do(http.MethodPost, "/hierarchy/save", nil)
	require.Equal(tc.t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestSessionHeaderIssued(t *testing.T) {
	tc := newTestClient(t, nil)

	rec := tc.do(http.MethodGet, "/screen", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	first := rec.Header().Get(SessionHeader)
	_, err := uuid.Parse(first)
	require.NoError(t, err)

	rec = tc.do(http.MethodGet, "/screen", nil)
	assert.Equal(t, first, rec.Header().Get(SessionHeader))

	tc.sessionID = "not-a-uuid"
	rec = tc.do(http.MethodGet, "/screen", nil)
	assert.NotEqual(t, first, rec.Header().Get(SessionHeader))
}

func TestScreenFollowsSession(t *testing.T) {
	tc := newTestClient(t, nil)

	rec := tc.do(http.MethodGet, "/screen", nil)
	screen := decode[map[string]any](t, rec)
	assert.Equal(t, "welcome", screen["screen"])

	rec = tc.do(http.MethodPost, "/welcome/industry", SelectIndustryRequest{Industry: "Cement"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hierarchy", decode[map[string]any](t, rec)["screen"])

	rec = tc.do(http.MethodGet, "/screen", nil)
	screen = decode[map[string]any](t, rec)
	assert.Equal(t, "hierarchy", screen["screen"])
	view := screen["view"].(map[string]any)
	assert.Equal(t, "Cement", view["industry"])
	assert.Equal(t, false, view["all_filled"])
}

func TestSelectUnknownIndustry(t *testing.T) {
	tc := newTestClient(t, nil)

	rec := tc.do(http.MethodPost, "/welcome/industry", SelectIndustryRequest{Industry: "Textiles"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSetLevelRejectsInvalidName(t *testing.T) {
	tc := newTestClient(t, nil)
	require.Equal(t, http.StatusOK, tc.do(http.MethodPost, "/welcome/industry", SelectIndustryRequest{Industry: "Cement"}).Code)

	rec := tc.do(http.MethodPut, "/hierarchy/levels/plant", SetLevelRequest{Mode: "new", Value: "plant a"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode[ErrorResponse](t, rec)
	assert.Equal(t, "plant", resp.Field)
	assert.Equal(t, "error", resp.Status)

	rec = tc.do(http.MethodPut, "/hierarchy/levels/building", SetLevelRequest{Mode: "new", Value: "B1"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = tc.do(http.MethodPut, "/hierarchy/levels/plant", SetLevelRequest{Mode: "typed", Value: "P1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNavigateGuards(t *testing.T) {
	tc := newTestClient(t, nil)

	rec := tc.do(http.MethodPost, "/navigate", NavigateRequest{Screen: "hierarchy"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = tc.do(http.MethodPost, "/navigate", NavigateRequest{Screen: "nowhere"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = tc.do(http.MethodPost, "/navigate", NavigateRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = tc.do(http.MethodPost, "/navigate", NavigateRequest{Screen: "summary"})
	require.Equal(t, http.StatusOK, rec.Code)
	sidebar := decode[SidebarView](t, rec)
	assert.Equal(t, session.ScreenSummary, sidebar.Screen)
	assert.Equal(t, session.ScreenWelcome, sidebar.LastScreen)
}

func TestTagFlow(t *testing.T) {
	tc := newTestClient(t, nil)
	tc.toTags()

	rec := tc.do(http.MethodGet, "/tags", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[TagsView](t, rec)
	assert.Equal(t, "Cement > PLANT_A > AREA_1 > KILN > KILN_01", view.Breadcrumb)
	assert.Equal(t, services.AddNewOption, view.GenericTagOptions[len(view.GenericTagOptions)-1])

	// Adding before the draft is submitted is refused.
	rec = tc.do(http.MethodPost, "/tags/pending", AddTagRequest{})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = tc.do(http.MethodPost, "/tags/draft", session.TagDraft{
		DCSTag:       "TT-101",
		RawParameter: "KILN_SHELL_T",
		GenericTag:   "Temperature",
		UOM:          "°C",
		LowLimit:     10,
		HighLimit:    400,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	view = decode[TagsView](t, rec)
	assert.True(t, view.Draft.Submitted)
	assert.NotEmpty(t, view.Draft.UUID)

	rec = tc.do(http.MethodPost, "/tags/pending", AddTagRequest{})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	view = decode[TagsView](t, rec)
	require.Len(t, view.Pending, 1)
	assert.Equal(t, 0, view.Pending[0].Index)
	assert.Equal(t, "TT-101", view.Pending[0].DCSTag)
	assert.False(t, view.Draft.Submitted)

	rec = tc.do(http.MethodDelete, "/tags/pending/5", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = tc.do(http.MethodDelete, "/tags/pending/x", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = tc.do(http.MethodPost, "/tags/finish", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	finish := decode[FinishResponse](t, rec)
	assert.Equal(t, 1, finish.Committed)
	assert.Equal(t, session.ScreenSummary, finish.Screen)

	rec = tc.do(http.MethodGet, "/statistics", nil)
	stats := decode[services.Statistics](t, rec)
	assert.Equal(t, int64(1), stats.TotalTags)
	assert.Equal(t, int64(1), stats.Plants)

	rec = tc.do(http.MethodGet, "/generic-tag-mappings", nil)
	mappings := decode[[]models.GenericTagMapping](t, rec)
	require.Len(t, mappings, 1)
	assert.Equal(t, "Temperature", mappings[0].GenericTag)
	assert.Equal(t, "KILN", mappings[0].Equipment)
	assert.Equal(t, 1, mappings[0].Count)
}

func TestDraftMissingFields(t *testing.T) {
	tc := newTestClient(t, nil)
	tc.toTags()

	rec := tc.do(http.MethodPost, "/tags/draft", session.TagDraft{DCSTag: "TT-101"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode[ErrorResponse](t, rec)
	assert.Contains(t, resp.Field, "raw_parameter")

	req := httptest.NewRequest(http.MethodPost, "/tags/draft", strings.NewReader("{"))
	rec = tc.send(req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenericTagMappingsEmpty(t *testing.T) {
	tc := newTestClient(t, nil)

	rec := tc.do(http.MethodGet, "/generic-tag-mappings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestUpload(t *testing.T) {
	tc := newTestClient(t, nil)
	content := "Generic Tag,Metadata\nTemperature,kiln shell\nPressure,inlet\n"

	rec := tc.upload("/upload/preview", "tags.csv", content, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	preview := decode[services.FilePreview](t, rec)
	assert.Equal(t, 2, preview.TotalRows)
	assert.Empty(t, preview.Missing)

	rec = tc.upload("/upload", "tags.csv", content, map[string]string{"industry": "Cement", "equipment": "KILN"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	result := decode[services.ImportResult](t, rec)
	assert.Equal(t, 2, result.Rows)
	assert.Equal(t, 2, result.Created)

	rec = tc.do(http.MethodGet, "/upload?industry=Cement", nil)
	view := decode[UploadView](t, rec)
	assert.Equal(t, "Cement", view.Industry)
	assert.Empty(t, view.EquipmentOptions)

	rec = tc.upload("/upload", "tags.csv", "Tag,Metadata\nTemperature,x\n", map[string]string{"industry": "Cement", "equipment": "KILN"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = tc.upload("/upload", "tags.xls", content, map[string]string{"industry": "Cement", "equipment": "KILN"})
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestUploadTooLarge(t *testing.T) {
	tc := newTestClient(t, map[string]string{"MAX_UPLOAD_MB": "1"})
	content := "Generic Tag,Metadata\n" + strings.Repeat("Temperature,"+strings.Repeat("x", 100)+"\n", 12000)

	rec := tc.upload("/upload", "big.csv", content, map[string]string{"industry": "Cement", "equipment": "KILN"})
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestExport(t *testing.T) {
	tc := newTestClient(t, nil)
	tc.toTags()

	rec := tc.do(http.MethodGet, "/export/tags?format=json", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	_, params, err := mime.ParseMediaType(rec.Header().Get("Content-Disposition"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(params["filename"], "tags_config_"))
	assert.True(t, strings.HasSuffix(params["filename"], ".json"))

	rec = tc.do(http.MethodGet, "/export/tags", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	_, params, err = mime.ParseMediaType(rec.Header().Get("Content-Disposition"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(params["filename"], ".csv"))

	rec = tc.do(http.MethodGet, "/export/tags?format=pdf", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = tc.do(http.MethodGet, "/export/people", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = tc.do(http.MethodGet, "/export/generic-tags?industry=Cement", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealth(t *testing.T) {
	tc := newTestClient(t, nil)
	tc.do(http.MethodGet, "/screen", nil)

	rec := tc.do(http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	health := decode[HealthResponse](t, rec)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, 1, health.Sessions)
}

func TestCORSPreflightRejected(t *testing.T) {
	tc := newTestClient(t, map[string]string{"ACCEPTED_ORIGINS": "https://plant.example.com"})

	req := httptest.NewRequest(http.MethodOptions, "/screen", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	rec := tc.send(req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
