package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfscan/backend/internal/domain"
	"github.com/shelfscan/backend/internal/usecase"
)

// mockScanUseCase is a mock implementation of ScanUseCase
type mockScanUseCase struct {
	result       *usecase.ScanResult
	scan         *domain.Scan
	file         *usecase.ExportFile
	category     domain.Category
	err          error
	lastImage    domain.ImageData
	lastCategory domain.Category
	lastFormat   string
	lastProducts []domain.ProductRecord
	lastID       string
}

func (m *mockScanUseCase) Identify(ctx context.Context, image domain.ImageData, category domain.Category) (*usecase.ScanResult, error) {
	m.lastImage, m.lastCategory = image, category
	return m.result, m.err
}

func (m *mockScanUseCase) Detect(ctx context.Context, image domain.ImageData) domain.Category {
	m.lastImage = image
	return m.category
}

func (m *mockScanUseCase) Analyze(ctx context.Context, image domain.ImageData, category domain.Category) (*domain.Scan, error) {
	m.lastImage, m.lastCategory = image, category
	return m.scan, m.err
}

func (m *mockScanUseCase) Get(ctx context.Context, id string) (*domain.Scan, error) {
	return m.scan, m.err
}

func (m *mockScanUseCase) Delete(ctx context.Context, id string) error {
	m.lastID = id
	return m.err
}

func (m *mockScanUseCase) Export(ctx context.Context, id, format string) (*usecase.ExportFile, error) {
	m.lastFormat = format
	return m.file, m.err
}

func (m *mockScanUseCase) ExportProducts(products []domain.ProductRecord, format string) (*usecase.ExportFile, error) {
	m.lastProducts, m.lastFormat = products, format
	return m.file, m.err
}

func newHandlerRouter(m *mockScanUseCase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(m, nil)

	router := gin.New()
	router.POST("/api/vision", h.Vision)
	router.POST("/api/detect-type", h.DetectType)
	router.POST("/api/v1/scans", h.CreateScan)
	router.GET("/api/v1/scans/:id", h.GetScan)
	router.DELETE("/api/v1/scans/:id", h.DeleteScan)
	router.GET("/api/v1/scans/:id/export", h.ExportScan)
	router.POST("/api/v1/export", h.ExportProducts)
	return router
}

func doJSON(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if s, ok := body.(string); ok {
		buf.WriteString(s)
	} else if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.ErrMissingCredential, http.StatusUnauthorized},
		{domain.ErrInvalidImage, http.StatusBadRequest},
		{domain.ErrUnsupportedFormat, http.StatusBadRequest},
		{domain.ErrScanNotFound, http.StatusNotFound},
		{domain.ErrNoProductsDetected, http.StatusUnprocessableEntity},
		{fmt.Errorf("failed to process image: %w", domain.ErrVisionAPIFailure), http.StatusBadGateway},
		{fmt.Errorf("get scan: %w", domain.ErrSessionStoreUnavailable), http.StatusServiceUnavailable},
		{fmt.Errorf("failed to process image: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{fmt.Errorf("%w: request timed out after 20ms: %w", domain.ErrVisionAPIFailure, context.DeadlineExceeded), http.StatusGatewayTimeout},
		{fmt.Errorf("anything else"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestVisionHandler(t *testing.T) {
	products := []domain.ProductRecord{{ID: "1", Name: "Coke", Brand: "Coca-Cola", Confidence: 0.9}}

	tests := []struct {
		name       string
		body       any
		result     *usecase.ScanResult
		err        error
		wantStatus int
		wantCount  int
		wantError  string
	}{
		{
			name:       "products found",
			body:       ScanRequest{ImageData: "data:image/png;base64,AAAA", ProductType: "beverage"},
			result:     &usecase.ScanResult{Category: domain.CategoryBeverage, Products: products},
			wantStatus: http.StatusOK,
			wantCount:  1,
		},
		{
			name:       "nothing found is an empty list",
			body:       ScanRequest{ImageData: "AAAA"},
			err:        domain.ErrNoProductsDetected,
			wantStatus: http.StatusOK,
			wantCount:  0,
		},
		{
			name:       "missing image",
			body:       ScanRequest{ProductType: "dairy"},
			wantStatus: http.StatusBadRequest,
			wantError:  "Missing image data",
		},
		{
			name:       "malformed body",
			body:       "{not json",
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid request body",
		},
		{
			name:       "missing credential",
			body:       ScanRequest{ImageData: "AAAA"},
			err:        domain.ErrMissingCredential,
			wantStatus: http.StatusUnauthorized,
			wantError:  domain.ErrMissingCredential.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &mockScanUseCase{result: tt.result, err: tt.err}
			w := doJSON(newHandlerRouter(m), http.MethodPost, "/api/vision", tt.body)

			assert.Equal(t, tt.wantStatus, w.Code)
			body := decodeBody(t, w)
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, body["error"])
				return
			}
			list, ok := body["products"].([]any)
			require.True(t, ok, "products must be a JSON array")
			assert.Len(t, list, tt.wantCount)
		})
	}
}

func TestVisionHandler_PassesProductType(t *testing.T) {
	m := &mockScanUseCase{err: domain.ErrNoProductsDetected}
	doJSON(newHandlerRouter(m), http.MethodPost, "/api/vision", ScanRequest{ImageData: "AAAA", ProductType: "snack"})

	assert.Equal(t, domain.ImageData("AAAA"), m.lastImage)
	assert.Equal(t, domain.CategorySnack, m.lastCategory)
}

func TestDetectTypeHandler(t *testing.T) {
	m := &mockScanUseCase{category: domain.CategoryMeat}
	router := newHandlerRouter(m)

	w := doJSON(router, http.MethodPost, "/api/detect-type", ScanRequest{ImageData: "AAAA"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "meat", decodeBody(t, w)["productType"])

	w = doJSON(router, http.MethodPost, "/api/detect-type", ScanRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Missing image data", decodeBody(t, w)["error"])
}

func TestCreateScanHandler(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		m := &mockScanUseCase{scan: &domain.Scan{ID: "scan-1", Category: domain.CategoryDairy}}
		w := doJSON(newHandlerRouter(m), http.MethodPost, "/api/v1/scans", ScanRequest{ImageData: "AAAA"})

		assert.Equal(t, http.StatusCreated, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "scan-1", body["id"])
		assert.Equal(t, "dairy", body["category"])
		assert.Equal(t, domain.Category(""), m.lastCategory)
	})

	t.Run("no products", func(t *testing.T) {
		m := &mockScanUseCase{err: domain.ErrNoProductsDetected}
		w := doJSON(newHandlerRouter(m), http.MethodPost, "/api/v1/scans", ScanRequest{ImageData: "AAAA"})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("upstream failure", func(t *testing.T) {
		m := &mockScanUseCase{err: fmt.Errorf("failed to process image: %w: status 500", domain.ErrVisionAPIFailure)}
		w := doJSON(newHandlerRouter(m), http.MethodPost, "/api/v1/scans", ScanRequest{ImageData: "AAAA"})

		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Contains(t, decodeBody(t, w)["error"], "status 500")
	})
}

func TestGetScanHandler(t *testing.T) {
	m := &mockScanUseCase{err: domain.ErrScanNotFound}
	w := doJSON(newHandlerRouter(m), http.MethodGet, "/api/v1/scans/abc", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "scan not found", decodeBody(t, w)["error"])
}

func TestDeleteScanHandler(t *testing.T) {
	t.Run("deleted", func(t *testing.T) {
		m := &mockScanUseCase{}
		w := doJSON(newHandlerRouter(m), http.MethodDelete, "/api/v1/scans/abc", nil)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "abc", m.lastID)
		assert.Empty(t, w.Body.String())
	})

	t.Run("store unavailable", func(t *testing.T) {
		m := &mockScanUseCase{err: fmt.Errorf("delete scan: %w", domain.ErrSessionStoreUnavailable)}
		w := doJSON(newHandlerRouter(m), http.MethodDelete, "/api/v1/scans/abc", nil)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestExportHandlers(t *testing.T) {
	file := &usecase.ExportFile{
		Data:        []byte("Product Name,Brand\n"),
		ContentType: "text/csv; charset=utf-8",
		FileName:    "scanned-products.csv",
	}

	t.Run("stored scan", func(t *testing.T) {
		m := &mockScanUseCase{file: file}
		w := doJSON(newHandlerRouter(m), http.MethodGet, "/api/v1/scans/abc/export?format=csv", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "csv", m.lastFormat)
		assert.Equal(t, `attachment; filename="scanned-products.csv"`, w.Header().Get("Content-Disposition"))
		assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
		assert.Equal(t, "Product Name,Brand\n", w.Body.String())
	})

	t.Run("posted products", func(t *testing.T) {
		m := &mockScanUseCase{file: file}
		body := ExportRequest{Products: []domain.ProductRecord{{Name: "Milk"}}}
		w := doJSON(newHandlerRouter(m), http.MethodPost, "/api/v1/export?format=xlsx", body)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "xlsx", m.lastFormat)
		require.Len(t, m.lastProducts, 1)
		assert.Equal(t, "Milk", m.lastProducts[0].Name)
	})

	t.Run("unsupported format", func(t *testing.T) {
		m := &mockScanUseCase{err: fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, "pdf")}
		w := doJSON(newHandlerRouter(m), http.MethodGet, "/api/v1/scans/abc/export?format=pdf", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("malformed export body", func(t *testing.T) {
		w := doJSON(newHandlerRouter(&mockScanUseCase{}), http.MethodPost, "/api/v1/export", "[")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
