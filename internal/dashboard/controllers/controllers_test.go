package controllers

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markany/safepc-insider/config"
	"github.com/markany/safepc-insider/internal/dashboard/services"
	"github.com/markany/safepc-insider/internal/detector"
	"github.com/markany/safepc-insider/internal/feature"
)

// fixtureTable builds 60 ordinary users plus one blatant outlier.
func fixtureTable() *feature.Table {
	logon := make(map[string]int)
	httpCounts := make(map[string]int)
	device := make(map[string]int)
	for i := 0; i < 60; i++ {
		u := "user" + string(rune('a'+i%26)) + string(rune('a'+i/26))
		logon[u] = 5 + i%7
		httpCounts[u] = 80 + i%30
		device[u] = 1 + i%3
	}
	logon["mallory"] = 600
	httpCounts["mallory"] = 9500
	device["mallory"] = 70
	return feature.Aggregate(logon, httpCounts, device)
}

// setup resets the pipeline state and wires a fresh config. With a model it
// also trains and saves an artifact at the configured path.
func setup(t *testing.T, withModel bool) {
	t.Helper()
	services.Reset()
	detector.ResetCache()
	t.Cleanup(services.Reset)
	t.Cleanup(detector.ResetCache)

	dir := t.TempDir()
	cfg := &config.Config{}
	cfg.Data.FeaturesPath = filepath.Join(dir, "features.csv")
	cfg.Data.ModelPath = filepath.Join(dir, "iforest.model")
	cfg.Report.MaxRows = 50

	if withModel {
		forest, err := detector.Train(fixtureTable(),
			detector.WithContamination(0.05), detector.WithSeed(42))
		require.NoError(t, err)
		require.NoError(t, forest.SaveFile(cfg.Data.ModelPath))
	}
	services.Init(cfg)
}

func newCtx(method, target string, body io.Reader, contentType string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}

func multipartBody(t *testing.T, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, content := range files {
		part, err := w.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func featuresCSV(t *testing.T, tbl *feature.Table) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, tbl.Save(&buf))
	return buf.String()
}

func uploadFeatures(t *testing.T, csv string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("features", "features.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(csv))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	ctx, rec := newCtx(http.MethodPost, "/api/features", &buf, w.FormDataContentType())
	require.NoError(t, NewFeatureController().Upload(ctx))
	return rec
}

func TestUploadRejectsBadSchema(t *testing.T) {
	setup(t, false)

	rec := uploadFeatures(t, "user,logon_count,http_count\nalice,1,2\n")
	assert.Equal(t, 400, rec.Code)
	assert.Contains(t, rec.Body.String(), "device_count")

	// nothing was loaded
	_, err := services.Table()
	assert.Error(t, err)
}

func TestUploadAndGet(t *testing.T) {
	setup(t, false)

	rec := uploadFeatures(t, featuresCSV(t, fixtureTable()))
	require.Equal(t, 200, rec.Code)

	ctx, rec := newCtx(http.MethodGet, "/api/features", nil, "")
	require.NoError(t, NewFeatureController().Get(ctx))
	require.Equal(t, 200, rec.Code)

	var resp struct {
		Users []feature.Row `json:"users"`
		Total int           `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 61, resp.Total)
	assert.Len(t, resp.Users, 61)
}

func TestGetWithoutTable(t *testing.T) {
	setup(t, false)

	ctx, rec := newCtx(http.MethodGet, "/api/features", nil, "")
	require.NoError(t, NewFeatureController().Get(ctx))
	assert.Equal(t, 404, rec.Code)
}

func TestUploadRawPartialSet(t *testing.T) {
	setup(t, false)

	body, ct := multipartBody(t, map[string]string{
		"logon.csv": "id,date,user,pc,activity\n1,d,alice,PC-1,Logon\n",
	})
	ctx, rec := newCtx(http.MethodPost, "/api/features/raw", body, ct)
	require.NoError(t, NewFeatureController().UploadRaw(ctx))

	assert.Equal(t, 400, rec.Code)
	assert.Contains(t, rec.Body.String(), "http.csv")
	assert.Contains(t, rec.Body.String(), "device.csv")
}

func TestUploadRawAggregates(t *testing.T) {
	setup(t, false)

	body, ct := multipartBody(t, map[string]string{
		"logon.csv":  "id,date,user,pc,activity\n1,d,alice,PC-1,Logon\n2,d,bob,PC-2,Logon\n",
		"http.csv":   "1,d,bob,PC-2,http://a\n2,d,bob,PC-2,http://b\n",
		"device.csv": "id,date,user,pc,activity\n1,d,alice,PC-1,Connect\n",
	})
	ctx, rec := newCtx(http.MethodPost, "/api/features/raw", body, ct)
	require.NoError(t, NewFeatureController().UploadRaw(ctx))
	require.Equal(t, 200, rec.Code)

	tbl, err := services.Table()
	require.NoError(t, err)
	require.Equal(t, 2, tbl.Len())
	bob, ok := tbl.Get("bob")
	require.True(t, ok)
	assert.Equal(t, 2, bob.HTTPCount)
	assert.Equal(t, 0, bob.DeviceCount)
}

func TestListRequiresTable(t *testing.T) {
	setup(t, true)

	ctx, rec := newCtx(http.MethodGet, "/api/users", nil, "")
	require.NoError(t, NewUserController().List(ctx))
	assert.Equal(t, 400, rec.Code)
	assert.Contains(t, rec.Body.String(), "no feature table")
}

func TestListModelMissing(t *testing.T) {
	setup(t, false)
	uploadFeatures(t, featuresCSV(t, fixtureTable()))

	ctx, rec := newCtx(http.MethodGet, "/api/users", nil, "")
	require.NoError(t, NewUserController().List(ctx))
	assert.Equal(t, 503, rec.Code)
}

func TestListStatusFilter(t *testing.T) {
	setup(t, true)
	uploadFeatures(t, featuresCSV(t, fixtureTable()))

	ctx, rec := newCtx(http.MethodGet, "/api/users?status=Suspicious", nil, "")
	require.NoError(t, NewUserController().List(ctx))
	require.Equal(t, 200, rec.Code)

	var resp struct {
		Users []detector.ScoredRow `json:"users"`
		Total int                  `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Users)
	names := make([]string, 0, len(resp.Users))
	for _, row := range resp.Users {
		assert.Equal(t, detector.StatusSuspicious, row.Status)
		names = append(names, row.User)
	}
	assert.Contains(t, names, "mallory")
}

func TestGetUser(t *testing.T) {
	setup(t, true)
	uploadFeatures(t, featuresCSV(t, fixtureTable()))

	ctx, rec := newCtx(http.MethodGet, "/", nil, "")
	ctx.SetPath("/api/users/:id")
	ctx.SetParamNames("id")
	ctx.SetParamValues("mallory")
	require.NoError(t, NewUserController().Get(ctx))
	require.Equal(t, 200, rec.Code)

	var row detector.ScoredRow
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &row))
	assert.Equal(t, "mallory", row.User)
	assert.Equal(t, detector.StatusSuspicious, row.Status)
}

func TestGetUserNotFound(t *testing.T) {
	setup(t, true)
	uploadFeatures(t, featuresCSV(t, fixtureTable()))

	ctx, rec := newCtx(http.MethodGet, "/", nil, "")
	ctx.SetPath("/api/users/:id")
	ctx.SetParamNames("id")
	ctx.SetParamValues("nobody")
	require.NoError(t, NewUserController().Get(ctx))
	assert.Equal(t, 404, rec.Code)
}

func TestSummary(t *testing.T) {
	setup(t, true)
	uploadFeatures(t, featuresCSV(t, fixtureTable()))

	ctx, rec := newCtx(http.MethodGet, "/api/summary", nil, "")
	require.NoError(t, NewUserController().Summary(ctx))
	require.Equal(t, 200, rec.Code)

	var resp struct {
		Users    int            `json:"users"`
		Statuses map[string]int `json:"statuses"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 61, resp.Users)
	assert.Equal(t, 61, resp.Statuses["Normal"]+resp.Statuses["Suspicious"])
	assert.GreaterOrEqual(t, resp.Statuses["Suspicious"], 1)
}

func TestReportDownload(t *testing.T) {
	setup(t, true)
	uploadFeatures(t, featuresCSV(t, fixtureTable()))

	ctx, rec := newCtx(http.MethodGet, "/api/report", nil, "")
	require.NoError(t, NewReportController().Download(ctx))
	require.Equal(t, 200, rec.Code)

	assert.Equal(t, "application/pdf", rec.Header().Get(echo.HeaderContentType))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "insider_threat_report.pdf")
	assert.Equal(t, "%PDF", rec.Body.String()[:4])
}

func TestReportDownloadNoMatches(t *testing.T) {
	setup(t, true)
	uploadFeatures(t, featuresCSV(t, fixtureTable()))

	ctx, rec := newCtx(http.MethodGet, "/api/report?min_logon=999999", nil, "")
	require.NoError(t, NewReportController().Download(ctx))
	assert.Equal(t, 404, rec.Code)
}

func TestHealthWarnsWithoutTable(t *testing.T) {
	setup(t, false)

	cfg := &config.Config{}
	cfg.Health.WarnMB = 1 << 20
	cfg.Health.CritMB = 1 << 21

	ctx, rec := newCtx(http.MethodGet, "/api/health", nil, "")
	require.NoError(t, NewStatusController(cfg).Health(ctx))
	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "warning")
	assert.Contains(t, rec.Body.String(), "no feature table")
}

func TestStatusReportsSource(t *testing.T) {
	setup(t, false)
	uploadFeatures(t, featuresCSV(t, fixtureTable()))

	cfg := &config.Config{}
	ctx, rec := newCtx(http.MethodGet, "/api/status", nil, "")
	require.NoError(t, NewStatusController(cfg).Status(ctx))
	require.Equal(t, 200, rec.Code)

	var resp struct {
		Users  int    `json:"users"`
		Source string `json:"source"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 61, resp.Users)
	assert.Equal(t, services.SourceUpload, resp.Source)
}
