package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/shelfscan/backend/internal/domain"
)

// MockVisionClient is a mock implementation of domain.VisionClient
type MockVisionClient struct {
	mu       sync.Mutex
	response string
	err      error
	calls    int
	requests []domain.CompletionRequest
	block    bool
}

func NewMockVisionClient(response string) *MockVisionClient {
	return &MockVisionClient{response: response}
}

func (m *MockVisionClient) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	m.mu.Lock()
	m.calls++
	m.requests = append(m.requests, req)
	block := m.block
	m.mu.Unlock()

	if block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func (m *MockVisionClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MockVisionClient) LastRequest() domain.CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return domain.CompletionRequest{}
	}
	return m.requests[len(m.requests)-1]
}

// staticKey is a credential provider with a fixed answer
type staticKey string

func (k staticKey) APIKey(ctx context.Context) (string, bool) {
	return string(k), k != ""
}

// MockClassifier is a mock implementation of TypeClassifier
type MockClassifier struct {
	category domain.Category
	calls    int
}

func (m *MockClassifier) Classify(ctx context.Context, image domain.ImageData) domain.Category {
	m.calls++
	return m.category
}

// MockExtractor is a mock implementation of ProductExtractor
type MockExtractor struct {
	products     []domain.ProductRecord
	err          error
	calls        int
	lastCategory domain.Category
	onExtract    func()
}

func (m *MockExtractor) Extract(ctx context.Context, image domain.ImageData, category domain.Category) ([]domain.ProductRecord, error) {
	m.calls++
	m.lastCategory = category
	if m.onExtract != nil {
		m.onExtract()
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.products, nil
}

// MockScanRepository is a mock implementation of domain.ScanRepository
type MockScanRepository struct {
	mu       sync.Mutex
	data     map[string]*domain.Scan
	saveErr  error
	getErr   error
	delErr   error
	lastTTL  time.Duration
	saveCall int
}

func NewMockScanRepository() *MockScanRepository {
	return &MockScanRepository{data: make(map[string]*domain.Scan)}
}

func (m *MockScanRepository) Save(ctx context.Context, scan *domain.Scan, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveCall++
	m.lastTTL = ttl
	if m.saveErr != nil {
		return m.saveErr
	}
	m.data[scan.ID] = scan
	return nil
}

func (m *MockScanRepository) Get(ctx context.Context, id string) (*domain.Scan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	scan, ok := m.data[id]
	if !ok {
		return nil, domain.ErrScanNotFound
	}
	return scan, nil
}

func (m *MockScanRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.delErr != nil {
		return m.delErr
	}
	delete(m.data, id)
	return nil
}
