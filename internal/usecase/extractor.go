package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shelfscan/backend/internal/domain"
)

// ExtractorConfig holds configuration for the vision extractor
type ExtractorConfig struct {
	Timeout   time.Duration
	MaxTokens int
}

// Extractor asks the vision model for the distinct products in an image
type Extractor struct {
	vision      domain.VisionClient
	credentials domain.CredentialProvider
	logger      *zap.Logger
	timeout     time.Duration
	maxTokens   int
	now         func() time.Time
	newID       func() string
}

// NewExtractor creates a new vision extractor with dependencies
func NewExtractor(
	vision domain.VisionClient,
	credentials domain.CredentialProvider,
	logger *zap.Logger,
	config ExtractorConfig,
) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	maxTokens := config.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1000
	}

	return &Extractor{
		vision:      vision,
		credentials: credentials,
		logger:      logger.Named("extractor"),
		timeout:     timeout,
		maxTokens:   maxTokens,
		now:         func() time.Time { return time.Now().UTC() },
		newID:       uuid.NewString,
	}
}

func extractorSystemPrompt(category domain.Category) string {
	return fmt.Sprintf("You are a product identification assistant. Identify %s products in the image.", category)
}

func extractorUserPrompt(category domain.Category) string {
	return fmt.Sprintf("Identify all distinct %s products in the image. "+
		"Provide a JSON array where each object represents a product and includes 'name', 'brand', and 'confidence'. "+
		`For example: [{"name": "Product A", "brand": "Brand X", "confidence": 0.9}, {"name": "Product B", "brand": "Brand Y", "confidence": 0.8}]. `+
		"If no products are found, return an empty array.", category)
}

// Extract returns the products the model reports for the image.
// A missing credential or an upstream failure is returned as an error; a
// reply that cannot be parsed yields an empty list.
func (e *Extractor) Extract(ctx context.Context, image domain.ImageData, category domain.Category) ([]domain.ProductRecord, error) {
	apiKey, ok := e.credentials.APIKey(ctx)
	if !ok {
		return nil, domain.ErrMissingCredential
	}

	imageURL, err := image.Normalize()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	e.logger.Info("processing image", zap.String("category", category.String()), zap.Bool("url", image.IsURL()))

	text, err := e.vision.Complete(ctx, domain.CompletionRequest{
		APIKey:       apiKey,
		SystemPrompt: extractorSystemPrompt(category),
		UserPrompt:   extractorUserPrompt(category),
		Image:        domain.ImagePart{URL: imageURL},
		MaxTokens:    e.maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to process image: %w", err)
	}

	return e.parseProducts(text, image), nil
}

// parseProducts turns completion text into records, skipping malformed elements
func (e *Extractor) parseProducts(text string, image domain.ImageData) []domain.ProductRecord {
	elements, strategy, ok := parseProductArray(text)
	if !ok {
		e.logger.Warn("failed to parse JSON response, returning no products", zap.Int("length", len(text)))
		return []domain.ProductRecord{}
	}

	products := make([]domain.ProductRecord, 0, len(elements))
	skipped := 0
	for _, element := range elements {
		raw, ok := decodeRawProduct(element)
		if !ok {
			skipped++
			continue
		}
		products = append(products, e.newRecord(raw, image))
	}

	if skipped > 0 {
		e.logger.Warn("skipped malformed product entries", zap.Int("skipped", skipped))
	}
	e.logger.Info("detected products", zap.Int("count", len(products)), zap.String("strategy", strategy))
	return products
}

// newRecord applies the field defaults and stamps identity and time
func (e *Extractor) newRecord(raw rawProduct, image domain.ImageData) domain.ProductRecord {
	record := domain.ProductRecord{
		ID:         e.newID(),
		Name:       raw.Name,
		Brand:      raw.Brand,
		Confidence: raw.Confidence,
		ImageURL:   string(image),
		Timestamp:  e.now(),
	}
	if record.Name == "" {
		record.Name = domain.DefaultProductName
	}
	if record.Brand == "" {
		record.Brand = domain.DefaultBrandName
	}
	if !raw.HasScore {
		record.Confidence = domain.DefaultProductConfidence
	}
	return record
}
