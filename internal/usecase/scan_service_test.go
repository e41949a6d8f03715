package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfscan/backend/internal/domain"
	"github.com/shelfscan/backend/internal/logging"
)

type observed struct {
	category domain.Category
	products int
	err      error
}

// MockObserver records ScanObserver notifications
type MockObserver struct {
	events []observed
}

func (m *MockObserver) ObserveScan(category domain.Category, products int, err error) {
	m.events = append(m.events, observed{category: category, products: products, err: err})
}

func newTestScanService(classifier *MockClassifier, extractor *MockExtractor, repo *MockScanRepository, observer *MockObserver) *ScanService {
	service := NewScanService(classifier, extractor, repo, observer, nil, time.Hour)
	service.newID = func() string { return "scan-1" }
	service.now = func() time.Time { return fixedTime }
	return service
}

func TestNewScanService_Defaults(t *testing.T) {
	service := NewScanService(&MockClassifier{}, &MockExtractor{}, NewMockScanRepository(), nil, nil, 0)

	assert.Equal(t, 2*time.Hour, service.ttl)
	assert.NotNil(t, service.observer)
	assert.NotNil(t, service.logger)
}

func TestScanService_Analyze(t *testing.T) {
	repo := NewMockScanRepository()
	observer := &MockObserver{}
	service := newTestScanService(
		&MockClassifier{category: domain.CategoryCereal},
		&MockExtractor{products: sampleProducts()},
		repo, observer,
	)

	scan, err := service.Analyze(context.Background(), testImage, "")

	require.NoError(t, err)
	assert.Equal(t, "scan-1", scan.ID)
	assert.Equal(t, domain.CategoryCereal, scan.Category)
	assert.Equal(t, fixedTime, scan.CreatedAt)
	assert.Len(t, scan.Products, 1)

	assert.Equal(t, 1, repo.saveCall)
	assert.Equal(t, time.Hour, repo.lastTTL)
	stored, err := repo.Get(context.Background(), "scan-1")
	require.NoError(t, err)
	assert.Equal(t, scan, stored)

	require.Len(t, observer.events, 1)
	assert.Equal(t, observed{category: domain.CategoryCereal, products: 1}, observer.events[0])
}

func TestScanService_AnalyzeFailures(t *testing.T) {
	tests := []struct {
		name      string
		extractor *MockExtractor
		saveErr   error
		wantErr   error
		wantSaves int
		wantEvent bool
	}{
		{
			name:      "no products",
			extractor: &MockExtractor{products: []domain.ProductRecord{}},
			wantErr:   domain.ErrNoProductsDetected,
			wantEvent: true,
		},
		{
			name:      "missing credential",
			extractor: &MockExtractor{err: domain.ErrMissingCredential},
			wantErr:   domain.ErrMissingCredential,
			wantEvent: true,
		},
		{
			name:      "store unavailable",
			extractor: &MockExtractor{products: sampleProducts()},
			saveErr:   domain.ErrSessionStoreUnavailable,
			wantErr:   domain.ErrSessionStoreUnavailable,
			wantSaves: 1,
			wantEvent: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewMockScanRepository()
			repo.saveErr = tt.saveErr
			observer := &MockObserver{}
			service := newTestScanService(&MockClassifier{}, tt.extractor, repo, observer)

			scan, err := service.Analyze(context.Background(), testImage, domain.CategoryDairy)

			assert.Nil(t, scan)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantSaves, repo.saveCall)
			assert.Equal(t, tt.wantEvent, len(observer.events) == 1)
		})
	}
}

func TestScanService_AnalyzeStoreErrorCarriesOperation(t *testing.T) {
	repo := NewMockScanRepository()
	repo.saveErr = domain.ErrSessionStoreUnavailable
	service := newTestScanService(&MockClassifier{}, &MockExtractor{products: sampleProducts()}, repo, &MockObserver{})

	_, err := service.Analyze(context.Background(), testImage, domain.CategoryDairy)

	var opErr *logging.OperationError
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, "save scan", opErr.Operation)
	assert.Equal(t, "scan-1", opErr.RequestID)
}

func TestScanService_Identify(t *testing.T) {
	extractor := &MockExtractor{products: sampleProducts()}
	repo := NewMockScanRepository()
	service := newTestScanService(&MockClassifier{}, extractor, repo, &MockObserver{})

	result, err := service.Identify(context.Background(), testImage, domain.CategoryBakery)

	require.NoError(t, err)
	assert.Equal(t, domain.CategoryBakery, result.Category)
	assert.Equal(t, 0, repo.saveCall, "identify does not store")
}

func TestScanService_Detect(t *testing.T) {
	classifier := &MockClassifier{category: domain.CategoryVegetable}
	service := newTestScanService(classifier, &MockExtractor{}, NewMockScanRepository(), &MockObserver{})

	assert.Equal(t, domain.CategoryVegetable, service.Detect(context.Background(), testImage))
	assert.Equal(t, 1, classifier.calls)
}

func TestScanService_Get(t *testing.T) {
	repo := NewMockScanRepository()
	service := newTestScanService(&MockClassifier{}, &MockExtractor{}, repo, &MockObserver{})
	ctx := context.Background()

	_, err := service.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrScanNotFound)

	repo.getErr = domain.ErrSessionStoreUnavailable
	_, err = service.Get(ctx, "any")
	assert.ErrorIs(t, err, domain.ErrSessionStoreUnavailable)
	var opErr *logging.OperationError
	assert.True(t, errors.As(err, &opErr))
}

func TestScanService_Delete(t *testing.T) {
	repo := NewMockScanRepository()
	repo.data["scan-1"] = &domain.Scan{ID: "scan-1", Products: sampleProducts()}
	service := newTestScanService(&MockClassifier{}, &MockExtractor{}, repo, &MockObserver{})
	ctx := context.Background()

	require.NoError(t, service.Delete(ctx, "scan-1"))
	_, err := service.Get(ctx, "scan-1")
	assert.ErrorIs(t, err, domain.ErrScanNotFound)

	assert.NoError(t, service.Delete(ctx, "scan-1"))

	repo.delErr = domain.ErrSessionStoreUnavailable
	err = service.Delete(ctx, "scan-2")
	assert.ErrorIs(t, err, domain.ErrSessionStoreUnavailable)
	var opErr *logging.OperationError
	require.True(t, errors.As(err, &opErr))
	assert.Contains(t, err.Error(), "delete scan")
}

func TestScanService_Export(t *testing.T) {
	repo := NewMockScanRepository()
	repo.data["scan-1"] = &domain.Scan{ID: "scan-1", Products: sampleProducts()}
	service := newTestScanService(&MockClassifier{}, &MockExtractor{}, repo, &MockObserver{})
	ctx := context.Background()

	tests := []struct {
		name            string
		id              string
		format          string
		wantErr         error
		wantFileName    string
		wantContentType string
	}{
		{name: "default csv", id: "scan-1", format: "", wantFileName: "scanned-products.csv", wantContentType: "text/csv; charset=utf-8"},
		{name: "xlsx", id: "scan-1", format: "XLSX", wantFileName: "scanned-products.xlsx", wantContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"},
		{name: "unsupported format", id: "scan-1", format: "pdf", wantErr: domain.ErrUnsupportedFormat},
		{name: "unknown scan", id: "nope", format: "csv", wantErr: domain.ErrScanNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file, err := service.Export(ctx, tt.id, tt.format)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, file)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantFileName, file.FileName)
			assert.Equal(t, tt.wantContentType, file.ContentType)
			assert.NotEmpty(t, file.Data)
		})
	}
}

func TestScanService_ExportProducts(t *testing.T) {
	service := newTestScanService(&MockClassifier{}, &MockExtractor{}, NewMockScanRepository(), &MockObserver{})

	file, err := service.ExportProducts(sampleProducts(), "csv")

	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(file.Data)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "Product Name,Brand,Calories"))
	assert.True(t, strings.HasPrefix(lines[1], "Cheerios,General Mills,"))

	_, err = service.ExportProducts(sampleProducts(), "json")
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
}
