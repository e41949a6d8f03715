package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shelfscan/backend/internal/domain"
	"github.com/shelfscan/backend/internal/usecase"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

const missingImageMessage = "Missing image data"

// ScanUseCase is the scan service surface the handlers call
type ScanUseCase interface {
	Identify(ctx context.Context, image domain.ImageData, category domain.Category) (*usecase.ScanResult, error)
	Detect(ctx context.Context, image domain.ImageData) domain.Category
	Analyze(ctx context.Context, image domain.ImageData, category domain.Category) (*domain.Scan, error)
	Get(ctx context.Context, id string) (*domain.Scan, error)
	Delete(ctx context.Context, id string) error
	Export(ctx context.Context, id, format string) (*usecase.ExportFile, error)
	ExportProducts(products []domain.ProductRecord, format string) (*usecase.ExportFile, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	scans  ScanUseCase
	logger *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(scans ScanUseCase, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		scans:  scans,
		logger: logger.Named("http"),
	}
}

// ScanRequest is the body of the scan and vision endpoints
type ScanRequest struct {
	ImageData   string `json:"imageData"`
	ProductType string `json:"productType"`
}

// ExportRequest carries client-held records to export
type ExportRequest struct {
	Products []domain.ProductRecord `json:"products"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "shelfscan-backend",
		"version": Version,
	})
}

// APIHealth answers the proxy-compatible liveness probe
func (h *Handler) APIHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Vision identifies the products in an image without storing a scan
func (h *Handler) Vision(c *gin.Context) {
	req, ok := h.bindScanRequest(c)
	if !ok {
		return
	}

	result, err := h.scans.Identify(c.Request.Context(), domain.ImageData(req.ImageData), domain.Category(req.ProductType))
	if errors.Is(err, domain.ErrNoProductsDetected) {
		c.JSON(http.StatusOK, gin.H{"products": []domain.ProductRecord{}})
		return
	}
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": result.Products})
}

// DetectType classifies an image into a product category
func (h *Handler) DetectType(c *gin.Context) {
	req, ok := h.bindScanRequest(c)
	if !ok {
		return
	}

	category := h.scans.Detect(c.Request.Context(), domain.ImageData(req.ImageData))
	c.JSON(http.StatusOK, gin.H{"productType": category})
}

// CreateScan runs a scan and stores it for the session
func (h *Handler) CreateScan(c *gin.Context) {
	req, ok := h.bindScanRequest(c)
	if !ok {
		return
	}

	scan, err := h.scans.Analyze(c.Request.Context(), domain.ImageData(req.ImageData), domain.Category(req.ProductType))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, scan)
}

// GetScan returns a stored scan
func (h *Handler) GetScan(c *gin.Context) {
	scan, err := h.scans.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, scan)
}

// DeleteScan discards a stored scan
func (h *Handler) DeleteScan(c *gin.Context) {
	if err := h.scans.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ExportScan downloads a stored scan as csv or xlsx
func (h *Handler) ExportScan(c *gin.Context) {
	file, err := h.scans.Export(c.Request.Context(), c.Param("id"), c.Query("format"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	sendFile(c, file)
}

// ExportProducts downloads the posted records as csv or xlsx
func (h *Handler) ExportProducts(c *gin.Context) {
	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	file, err := h.scans.ExportProducts(req.Products, c.Query("format"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	sendFile(c, file)
}

func (h *Handler) bindScanRequest(c *gin.Context) (ScanRequest, bool) {
	var req ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return req, false
	}
	if req.ImageData == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": missingImageMessage})
		return req, false
	}
	return req, true
}

func sendFile(c *gin.Context, file *usecase.ExportFile) {
	c.Header("Content-Disposition", `attachment; filename="`+file.FileName+`"`)
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

// respondError maps domain errors to status codes
func (h *Handler) respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.Error(err),
		)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrMissingCredential):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrInvalidImage), errors.Is(err, domain.ErrUnsupportedFormat):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrScanNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNoProductsDetected):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, domain.ErrVisionAPIFailure):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrSessionStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
