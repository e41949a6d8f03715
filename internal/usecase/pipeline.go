package usecase

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/shelfscan/backend/internal/domain"
)

// TypeClassifier detects the category of a shelf image
type TypeClassifier interface {
	Classify(ctx context.Context, image domain.ImageData) domain.Category
}

// ProductExtractor lists the products of a category visible in an image
type ProductExtractor interface {
	Extract(ctx context.Context, image domain.ImageData, category domain.Category) ([]domain.ProductRecord, error)
}

// ScanResult is the outcome of a successful pipeline run
type ScanResult struct {
	Category domain.Category
	Products []domain.ProductRecord
}

// Callbacks receive the outcome of Run
type Callbacks struct {
	OnSuccess func(result *ScanResult)
	OnFailure func(err error)
}

// Pipeline runs classify-if-needed then extract for one caller. It does not
// coordinate overlapping runs; build one Pipeline per scan.
type Pipeline struct {
	classifier TypeClassifier
	extractor  ProductExtractor
	logger     *zap.Logger
	processing atomic.Bool
	listener   func(processing bool)
}

// NewPipeline creates a new pipeline over a classifier and an extractor
func NewPipeline(classifier TypeClassifier, extractor ProductExtractor, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		classifier: classifier,
		extractor:  extractor,
		logger:     logger.Named("pipeline"),
	}
}

// SetStateListener registers a callback invoked whenever Processing changes
func (p *Pipeline) SetStateListener(listener func(processing bool)) {
	p.listener = listener
}

// Processing reports whether a run is in flight
func (p *Pipeline) Processing() bool {
	return p.processing.Load()
}

func (p *Pipeline) setProcessing(processing bool) {
	p.processing.Store(processing)
	if p.listener != nil {
		p.listener(processing)
	}
}

// Run scans the image and reports the outcome through callbacks. An empty
// category means "detect it first".
func (p *Pipeline) Run(ctx context.Context, image domain.ImageData, category domain.Category, callbacks Callbacks) {
	result, err := p.Scan(ctx, image, category)
	if err != nil {
		if callbacks.OnFailure != nil {
			callbacks.OnFailure(err)
		}
		return
	}
	if callbacks.OnSuccess != nil {
		callbacks.OnSuccess(result)
	}
}

// Scan is Run with a return value. Zero products is reported as
// domain.ErrNoProductsDetected.
func (p *Pipeline) Scan(ctx context.Context, image domain.ImageData, category domain.Category) (*ScanResult, error) {
	p.setProcessing(true)
	defer p.setProcessing(false)

	resolved := p.resolveCategory(ctx, image, category)

	products, err := p.extractor.Extract(ctx, image, resolved)
	if err != nil {
		p.logger.Error("scan failed", zap.String("category", resolved.String()), zap.Error(err))
		return nil, err
	}
	if len(products) == 0 {
		p.logger.Warn("no products detected", zap.String("category", resolved.String()))
		return nil, domain.ErrNoProductsDetected
	}

	return &ScanResult{Category: resolved, Products: products}, nil
}

// resolveCategory decides the category the extractor is called with. Only
// the absent case consults the classifier.
func (p *Pipeline) resolveCategory(ctx context.Context, image domain.ImageData, supplied domain.Category) domain.Category {
	if supplied == "" {
		return p.classifier.Classify(ctx, image)
	}
	return domain.ParseCategory(string(supplied))
}
