package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shelfscan/backend/internal/domain"
	"github.com/shelfscan/backend/internal/infrastructure/spreadsheet"
	"github.com/shelfscan/backend/internal/logging"
)

// ScanObserver is notified of every pipeline outcome
type ScanObserver interface {
	ObserveScan(category domain.Category, products int, err error)
}

type nopObserver struct{}

func (nopObserver) ObserveScan(domain.Category, int, error) {}

// ExportFile is a rendered spreadsheet ready for download
type ExportFile struct {
	Data        []byte
	ContentType string
	FileName    string
}

// ScanService runs scans and keeps completed ones for the session TTL
type ScanService struct {
	classifier TypeClassifier
	extractor  ProductExtractor
	repo       domain.ScanRepository
	observer   ScanObserver
	logger     *zap.Logger
	ttl        time.Duration
	now        func() time.Time
	newID      func() string
}

// NewScanService creates a new scan service with dependencies
func NewScanService(
	classifier TypeClassifier,
	extractor ProductExtractor,
	repo domain.ScanRepository,
	observer ScanObserver,
	logger *zap.Logger,
	ttl time.Duration,
) *ScanService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if observer == nil {
		observer = nopObserver{}
	}
	if ttl == 0 {
		ttl = 2 * time.Hour
	}

	return &ScanService{
		classifier: classifier,
		extractor:  extractor,
		repo:       repo,
		observer:   observer,
		logger:     logger.Named("scan_service"),
		ttl:        ttl,
		now:        func() time.Time { return time.Now().UTC() },
		newID:      uuid.NewString,
	}
}

// NewPipeline builds a fresh pipeline over the service's classifier and extractor
func (s *ScanService) NewPipeline() *Pipeline {
	return NewPipeline(s.classifier, s.extractor, s.logger)
}

// Identify runs one pipeline and returns the products without storing them
func (s *ScanService) Identify(ctx context.Context, image domain.ImageData, category domain.Category) (*ScanResult, error) {
	return s.run(ctx, s.NewPipeline(), image, category)
}

// Detect returns the category of the image. It never fails.
func (s *ScanService) Detect(ctx context.Context, image domain.ImageData) domain.Category {
	return s.classifier.Classify(ctx, image)
}

// Analyze runs a scan and stores it under a new id
func (s *ScanService) Analyze(ctx context.Context, image domain.ImageData, category domain.Category) (*domain.Scan, error) {
	result, err := s.Identify(ctx, image, category)
	if err != nil {
		return nil, err
	}

	scan := &domain.Scan{
		ID:        s.newID(),
		Category:  result.Category,
		Products:  result.Products,
		CreatedAt: s.now(),
	}
	if err := s.repo.Save(ctx, scan, s.ttl); err != nil {
		return nil, logging.NewOperationError("save scan", scan.ID, err)
	}

	logging.WithOperation(s.logger, "analyze", scan.ID).Info("scan stored",
		zap.String("category", scan.Category.String()),
		zap.Int("products", len(scan.Products)),
		zap.Duration("ttl", s.ttl),
	)
	return scan, nil
}

// Get returns a stored scan
func (s *ScanService) Get(ctx context.Context, id string) (*domain.Scan, error) {
	scan, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrScanNotFound) {
			return nil, err
		}
		return nil, logging.NewOperationError("get scan", id, err)
	}
	return scan, nil
}

// Delete discards a stored scan. Unknown IDs are not an error.
func (s *ScanService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return logging.NewOperationError("delete scan", id, err)
	}
	return nil
}

// Export renders a stored scan in the requested format
func (s *ScanService) Export(ctx context.Context, id, format string) (*ExportFile, error) {
	f, err := spreadsheet.ParseFormat(format)
	if err != nil {
		return nil, err
	}

	scan, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return render(f, scan.Products)
}

// ExportProducts renders records held by the caller
func (s *ScanService) ExportProducts(products []domain.ProductRecord, format string) (*ExportFile, error) {
	f, err := spreadsheet.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	return render(f, products)
}

func render(f spreadsheet.Format, products []domain.ProductRecord) (*ExportFile, error) {
	data, err := spreadsheet.Write(f, products)
	if err != nil {
		return nil, err
	}
	return &ExportFile{
		Data:        data,
		ContentType: f.ContentType(),
		FileName:    f.FileName(spreadsheet.DefaultFileName),
	}, nil
}

func (s *ScanService) run(ctx context.Context, pipeline *Pipeline, image domain.ImageData, category domain.Category) (*ScanResult, error) {
	var (
		result *ScanResult
		failed error
	)
	pipeline.Run(ctx, image, category, Callbacks{
		OnSuccess: func(r *ScanResult) { result = r },
		OnFailure: func(err error) { failed = err },
	})

	if failed != nil {
		s.observer.ObserveScan(category, 0, failed)
		return nil, failed
	}
	s.observer.ObserveScan(result.Category, len(result.Products), nil)
	return result, nil
}
