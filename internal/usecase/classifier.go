package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/shelfscan/backend/internal/domain"
)

const classifierSystemPrompt = "You are a product category detection assistant."

// ClassifierConfig holds configuration for the type classifier
type ClassifierConfig struct {
	Timeout   time.Duration
	MaxTokens int
}

// Classifier buckets a shelf image into one of the known categories
type Classifier struct {
	vision      domain.VisionClient
	credentials domain.CredentialProvider
	logger      *zap.Logger
	timeout     time.Duration
	maxTokens   int
}

// NewClassifier creates a new type classifier with dependencies
func NewClassifier(
	vision domain.VisionClient,
	credentials domain.CredentialProvider,
	logger *zap.Logger,
	config ClassifierConfig,
) *Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	maxTokens := config.MaxTokens
	if maxTokens == 0 {
		maxTokens = 50 // one word is expected back
	}

	return &Classifier{
		vision:      vision,
		credentials: credentials,
		logger:      logger.Named("classifier"),
		timeout:     timeout,
		maxTokens:   maxTokens,
	}
}

// classifierQuestion renders the closed-set question from the known categories
func classifierQuestion() string {
	names := make([]string, 0, len(domain.KnownCategories())+1)
	for _, c := range domain.KnownCategories() {
		names = append(names, string(c))
	}
	return fmt.Sprintf("What type of products are shown? Answer with: %s, or %s.",
		strings.Join(names, ", "), domain.CategoryUnknown)
}

// Classify returns the detected category. It never fails: any problem,
// including a missing credential, degrades the answer to unknown.
func (c *Classifier) Classify(ctx context.Context, image domain.ImageData) domain.Category {
	apiKey, ok := c.credentials.APIKey(ctx)
	if !ok {
		c.logger.Warn("skipping classification", zap.Error(domain.ErrMissingCredential))
		return domain.CategoryUnknown
	}

	imageURL, err := image.Normalize()
	if err != nil {
		c.logger.Warn("skipping classification", zap.Error(err))
		return domain.CategoryUnknown
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	text, err := c.vision.Complete(ctx, domain.CompletionRequest{
		APIKey:       apiKey,
		SystemPrompt: classifierSystemPrompt,
		UserPrompt:   classifierQuestion(),
		Image:        domain.ImagePart{URL: imageURL},
		MaxTokens:    c.maxTokens,
	})
	if err != nil {
		c.logger.Warn("error detecting product type", zap.Error(err))
		return domain.CategoryUnknown
	}

	category := domain.ParseCategory(text)
	c.logger.Info("detected product type", zap.String("category", category.String()))
	return category
}
