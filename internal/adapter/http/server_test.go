package http_test

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/vg"

	httpadapter "github.com/couchcryptid/power-curve-service/internal/adapter/http"
	"github.com/couchcryptid/power-curve-service/internal/adapter/spreadsheet"
	"github.com/couchcryptid/power-curve-service/internal/config"
	"github.com/couchcryptid/power-curve-service/internal/domain"
	"github.com/couchcryptid/power-curve-service/internal/observability"
	"github.com/couchcryptid/power-curve-service/internal/pipeline"
	"github.com/couchcryptid/power-curve-service/internal/render"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

const exampleCSV = "Turbine,Model,Site,Customer,Week,Wind speed - AVE [m/s],Active power - AVE [kW]\n" +
	"T1,RD93,A,C1,5,6,400\n" +
	"T1,RD93,A,C1,5,7,700\n" +
	"T1,RD93,A,C1,5,8,1000\n" +
	"T2,UNKNOWN,,,,6,300\n" +
	"T2,UNKNOWN,,,,7,\n"

func newTestServerWithLimit(readyErr error, maxUpload int64) *httpadapter.Server {
	catalog := domain.DefaultCatalog()
	renderer := render.NewRenderer(catalog, render.Options{DPI: 40, Width: 4 * vg.Inch, Height: 3 * vg.Inch}, slog.Default())
	p := pipeline.New(catalog, renderer, pipeline.Sinks{}, slog.Default(), observability.NewMetricsForTesting())
	cfg := &config.Config{HTTPAddr: ":0", HTTPWriteTimeout: time.Minute, MaxUploadBytes: maxUpload}
	return httpadapter.NewServer(cfg, p, &mockReadiness{err: readyErr}, slog.Default())
}

func newTestServer(readyErr error) *httpadapter.Server {
	return newTestServerWithLimit(readyErr, 1<<20)
}

func multipartUpload(t *testing.T, path, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(httpadapter.UploadField, filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestHealthzReturns200(t *testing.T) {
	srv := newTestServer(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	srv := newTestServer(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ready", body["status"])
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	srv := newTestServer(fmt.Errorf("not ready yet"))
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, "not ready yet", body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestPowerCurves_MultipartCSV(t *testing.T) {
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2024, time.April, 26, 15, 10, 0, 0, time.UTC)))
	t.Cleanup(func() {
		domain.SetClock(nil)
	})

	srv := newTestServer(nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, multipartUpload(t, "/v1/power-curves", "export.csv", []byte(exampleCSV)))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/zip", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename=turbine_power_curves_20240426_151000.zip`, rec.Header().Get("Content-Disposition"))

	body := rec.Body.Bytes()
	zr, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	require.NoError(t, err)
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"A_C1_T1_Week5.png", "N-A_N-A_T2_WeekN-A.png"}, names)
}

func TestPowerCurves_RawWorkbookBody(t *testing.T) {
	var wb bytes.Buffer
	require.NoError(t, spreadsheet.WriteWorkbook(&wb,
		[]string{domain.ColumnTurbine, domain.ColumnModel, domain.ColumnWindSpeed, domain.ColumnActivePower},
		[][]any{{"T9", "RD113", 9, 1200}},
	))

	srv := newTestServer(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/power-curves", &wb)
	req.Header.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := rec.Body.Bytes()
	zr, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	require.NoError(t, err)
	require.Len(t, zr.File, 1)
	assert.Equal(t, "N-A_N-A_T9_WeekN-A.png", zr.File[0].Name)
}

func TestPowerCurves_ErrorStatus(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		content  string
		want     int
	}{
		{"missing columns", "export.csv", "Turbine,Model\nT1,RD93\n", http.StatusBadRequest},
		{"corrupt workbook", "export.xlsx", "not a workbook", http.StatusBadRequest},
		{"no turbines", "export.csv", "Turbine,Model,Wind speed - AVE [m/s],Active power - AVE [kW]\n,RD93,5,100\n", http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(nil)
			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, multipartUpload(t, "/v1/power-curves", tt.filename, []byte(tt.content)))

			assert.Equal(t, tt.want, rec.Code)
			assert.NotEmpty(t, decodeError(t, rec))
		})
	}
}

func TestPowerCurves_CanceledRequestReturns503(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	srv := newTestServer(nil)
	rec := httptest.NewRecorder()
	req := multipartUpload(t, "/v1/power-curves", "export.csv", []byte(exampleCSV)).WithContext(ctx)
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.NotContains(t, decodeError(t, rec), "ingestion")
}

func TestPowerCurves_MissingFormField(t *testing.T) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("other", "x"))
	require.NoError(t, mw.Close())

	srv := newTestServer(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/power-curves", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec), `"file"`)
}

func TestPowerCurves_UploadTooLarge(t *testing.T) {
	srv := newTestServerWithLimit(nil, 1024)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/power-curves", strings.NewReader(strings.Repeat("x", 4096)))
	req.Header.Set("Content-Type", "text/csv")
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, decodeError(t, rec), "1024")
}

func TestDatasetSummary(t *testing.T) {
	srv := newTestServer(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/datasets/summary", strings.NewReader(exampleCSV))
	req.Header.Set("Content-Type", "text/csv")
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var summary domain.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 5, summary.TotalRecords)
	assert.Equal(t, 2, summary.UniqueTurbines)
	assert.Equal(t, 2, summary.UniqueModels)
	require.Len(t, summary.Turbines, 2)
	assert.Equal(t, domain.TurbineCount{Turbine: "T1", Model: "RD93", Records: 3}, summary.Turbines[0])
}

func TestModels(t *testing.T) {
	srv := newTestServer(nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/models", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Models []struct {
			Model        string  `json:"model"`
			Samples      int     `json:"samples"`
			MaxWindSpeed float64 `json:"max_wind_speed"`
			RatedPower   float64 `json:"rated_power"`
		} `json:"models"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Models, 3)
	assert.Equal(t, "RD100", body.Models[0].Model)
	assert.Equal(t, 41, body.Models[0].Samples)
	assert.Equal(t, "RD93", body.Models[2].Model)
	assert.Equal(t, 115, body.Models[2].Samples)
	assert.InDelta(t, 17.1, body.Models[2].MaxWindSpeed, 1e-9)
}
