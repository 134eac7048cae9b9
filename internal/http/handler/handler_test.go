package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	_ "referensi/docs"
	"referensi/internal/http/middleware"
	"referensi/internal/model"
	"referensi/internal/query"
	"referensi/internal/service"
	serviceMocks "referensi/internal/service/mocks"
)

func int64Ptr(v int64) *int64 { return &v }

func strPtr(v string) *string { return &v }

func newApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	app.Use(middleware.RequestID())
	return app
}

func decodeError(t *testing.T, resp *http.Response) errorPayload {
	t.Helper()
	var body errorPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func formRequest(values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := newApp()
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, "SERVICE_UNAVAILABLE", body.Error.Code)
		assert.NotEmpty(t, body.RequestID)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestListReferences(t *testing.T) {
	mockSvc := new(serviceMocks.MockReferenceService)
	app := newApp()
	app.Get("/referensi", ListReferences(mockSvc))

	t.Run("success", func(t *testing.T) {
		expected := &service.PageResult{
			Items: []model.Document{{ID: 2, Name: "Kitab Hadits", CategoryID: int64Ptr(2)}},
			Total: 1,
			Page:  1,
			Limit: 10,
		}
		mockSvc.On("ListPage", mock.Anything, query.PageRequest{CategoryID: int64Ptr(2), Page: 1, Limit: 10}).
			Return(expected, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/referensi?category=2&page=1&limit=10", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var raw map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))
		assert.Equal(t, float64(1), raw["total"])
		assert.Equal(t, float64(1), raw["page"])
		assert.Equal(t, float64(10), raw["limit"])
		assert.Len(t, raw["data"], 1)
		mockSvc.AssertExpectations(t)
	})

	t.Run("out of range paging is clamped", func(t *testing.T) {
		mockSvc.On("ListPage", mock.Anything, query.PageRequest{Query: "fiqh", Page: 1, Limit: 10}).
			Return(&service.PageResult{Items: []model.Document{}, Page: 1, Limit: 10}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/referensi?query=fiqh&page=-1&limit=0", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("store unavailable", func(t *testing.T) {
		mockSvc.On("ListPage", mock.Anything, mock.Anything).
			Return(nil, fmt.Errorf("%w: dial tcp 10.0.0.5:5432", service.ErrStoreUnavailable)).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/referensi", nil))

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, "STORE_UNAVAILABLE", body.Error.Code)
		assert.NotContains(t, body.Error.Message, "10.0.0.5")
	})

	t.Run("malformed record", func(t *testing.T) {
		mockSvc.On("ListPage", mock.Anything, mock.Anything).
			Return(nil, fmt.Errorf("row 0: %w: name is required", service.ErrMalformedRecord)).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/referensi", nil))

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, "MALFORMED_RECORD", decodeError(t, resp).Error.Code)
	})
}

func TestSearchReferences(t *testing.T) {
	mockSvc := new(serviceMocks.MockReferenceService)
	app := newApp()
	app.Post("/search", SearchReferences(mockSvc))

	t.Run("renders fragment", func(t *testing.T) {
		docs := []model.Document{
			{ID: 1, Name: "Kitab Fiqh", CategoryID: int64Ptr(1), CategoryName: strPtr("Syafii")},
			{ID: 9, Name: "<script>alert(1)</script>"},
		}
		mockSvc.On("Search", mock.Anything, "Fiqh", (*int64)(nil)).Return(docs, nil).Once()

		resp, _ := app.Test(formRequest(url.Values{"query": {"Fiqh"}}))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")

		b, _ := io.ReadAll(resp.Body)
		html := string(b)
		assert.Contains(t, html, `id="search-results"`)
		assert.Contains(t, html, "Kitab Fiqh")
		assert.Contains(t, html, "Syafii")
		assert.Contains(t, html, `href="/referensi/1/download"`)
		assert.NotContains(t, html, "<script>")
		mockSvc.AssertExpectations(t)
	})

	t.Run("with category", func(t *testing.T) {
		mockSvc.On("Search", mock.Anything, "Fiqh", int64Ptr(2)).Return([]model.Document{}, nil).Once()

		resp, _ := app.Test(formRequest(url.Values{"query": {"Fiqh"}, "categoryId": {"2"}}))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		b, _ := io.ReadAll(resp.Body)
		assert.Contains(t, string(b), "Referensi tidak ditemukan")
		mockSvc.AssertExpectations(t)
	})

	t.Run("missing query", func(t *testing.T) {
		resp, _ := app.Test(formRequest(url.Values{"categoryId": {"1"}}))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_REQUEST", decodeError(t, resp).Error.Code)
	})

	t.Run("blank query", func(t *testing.T) {
		resp, _ := app.Test(formRequest(url.Values{"query": {"   "}}))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("overlong query", func(t *testing.T) {
		long := strings.Repeat("فقه", query.MaxKeywordLength)

		resp, _ := app.Test(formRequest(url.Values{"query": {long}}))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, "INVALID_REQUEST", body.Error.Code)
		assert.Equal(t, fmt.Sprintf("search keyword is required and must be at most %d characters", query.MaxKeywordLength), body.Error.Message)
		mockSvc.AssertNotCalled(t, "Search", mock.Anything, long, mock.Anything)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("Search", mock.Anything, "Hadits", (*int64)(nil)).Return(nil, service.ErrStoreUnavailable).Once()

		resp, _ := app.Test(formRequest(url.Values{"query": {"Hadits"}}))

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestGetReference(t *testing.T) {
	mockSvc := new(serviceMocks.MockReferenceService)
	app := newApp()
	app.Get("/referensi/:id", GetReference(mockSvc))

	t.Run("success", func(t *testing.T) {
		mockSvc.On("Get", mock.Anything, int64(1)).Return(&model.Document{ID: 1, Name: "Kitab Fiqh"}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/referensi/1", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var doc model.Document
		json.NewDecoder(resp.Body).Decode(&doc)
		assert.Equal(t, "Kitab Fiqh", doc.Name)
	})

	t.Run("invalid id", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/referensi/abc", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_ID", decodeError(t, resp).Error.Code)
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc.On("Get", mock.Anything, int64(404)).Return(nil, service.ErrNotFound).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/referensi/404", nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Error.Code)
	})

	mockSvc.AssertExpectations(t)
}

func TestDownloadReference(t *testing.T) {
	mockSvc := new(serviceMocks.MockReferenceService)
	app := newApp()
	app.Get("/referensi/:id/download", DownloadReference(mockSvc))

	mockSvc.On("DownloadURL", mock.Anything, int64(3)).Return("https://mirror.local/signed?x=1", nil).Once()

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/referensi/3/download", nil))

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "https://mirror.local/signed?x=1", resp.Header.Get("Location"))

	resp, _ = app.Test(httptest.NewRequest(http.MethodGet, "/referensi/0/download", nil))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	mockSvc.AssertExpectations(t)
}

func TestListCategoriesAndDiscover(t *testing.T) {
	mockSvc := new(serviceMocks.MockReferenceService)
	app := newApp()
	app.Get("/categories", ListCategories(mockSvc))
	app.Get("/discover", Discover(mockSvc))

	mockSvc.On("Categories", mock.Anything).Return([]model.Category{{ID: 1, Name: "Syafii"}, {ID: 2, Name: "Hanbali"}}, nil).Once()
	mockSvc.On("Discover", mock.Anything).Return(nil, service.ErrStoreUnavailable).Once()

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/categories", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var cats listResponse[model.Category]
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&cats))
	assert.Len(t, cats.Data, 2)

	resp, _ = app.Test(httptest.NewRequest(http.MethodGet, "/discover", nil))
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	mockSvc.AssertExpectations(t)
}

func TestRegisterSwagger(t *testing.T) {
	app := fiber.New()
	RegisterSwagger(app, "referensi.example.org")

	// the request host never leaks into the shared document
	for _, host := range []string{"a.example.net", "b.example.net"} {
		req := httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil)
		req.Host = host
		req.Header.Set("X-Forwarded-Proto", "https")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var doc map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
		assert.Equal(t, "referensi.example.org", doc["host"])
		assert.Empty(t, doc["schemes"])
	}
}

func TestOpenAPIYAML(t *testing.T) {
	app := fiber.New()
	app.Get("/openapi.yaml", OpenAPIYAML())

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var doc map[string]any
	require.NoError(t, yaml.NewDecoder(resp.Body).Decode(&doc))
	assert.Equal(t, "2.0", doc["swagger"])
	paths, ok := doc["paths"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, paths, "/referensi")
	assert.Contains(t, paths, "/search")
}

func TestJSONToYAML(t *testing.T) {
	out, err := jsonToYAML([]byte(`{"b": "1.0", "a": [1, 2]}`))
	require.NoError(t, err)

	text := string(out)
	assert.NotContains(t, text, "{")
	assert.Less(t, strings.Index(text, "b:"), strings.Index(text, "a:"), "key order is kept")

	var back map[string]any
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.Equal(t, "1.0", back["b"])
	assert.Equal(t, []any{1, 2}, back["a"])

	_, err = jsonToYAML([]byte(`{"unterminated": `))
	assert.Error(t, err)
}

func TestRouting(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	mockSvc := new(serviceMocks.MockReferenceService)
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewCounter(prometheus.CounterOpts{Name: "referensi_test_total", Help: "test"}))

	app := newApp()
	RegisterRoutes(app, db, mockSvc, reg)

	t.Run("metrics", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, MetricsPath, nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		b, _ := io.ReadAll(resp.Body)
		assert.Contains(t, string(b), "referensi_test_total")
	})

	t.Run("health", func(t *testing.T) {
		dbMock.ExpectPing()
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("unknown route uses the error envelope", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/documents", nil))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Error.Code)
	})

	t.Run("wrong method", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/search", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})
}
