// Package app wires configuration into the scan stack shared by the server and the CLI.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/shelfscan/backend/config"
	"github.com/shelfscan/backend/internal/domain"
	"github.com/shelfscan/backend/internal/infrastructure/cache"
	"github.com/shelfscan/backend/internal/infrastructure/openai"
	"github.com/shelfscan/backend/internal/usecase"
)

// Vision bundles the classifier and extractor built over one completion client
type Vision struct {
	Client     *openai.Client
	Classifier *usecase.Classifier
	Extractor  *usecase.Extractor
}

// NewVision builds the vision client, classifier and extractor from config
func NewVision(cfg *config.Config, creds domain.CredentialProvider, logger *zap.Logger) *Vision {
	client := openai.NewClient(cfg.Vision.BaseURL, cfg.Vision.Model, logger)
	if cfg.Server.Environment == "development" {
		client.SetDebug(true)
	}

	return &Vision{
		Client: client,
		Classifier: usecase.NewClassifier(client, creds, logger, usecase.ClassifierConfig{
			Timeout:   cfg.Vision.ClassifyTimeout,
			MaxTokens: cfg.Vision.ClassifyMaxTokens,
		}),
		Extractor: usecase.NewExtractor(client, creds, logger, usecase.ExtractorConfig{
			Timeout:   cfg.Vision.ExtractTimeout,
			MaxTokens: cfg.Vision.ExtractMaxTokens,
		}),
	}
}

// ScanStore is a scan repository that owns resources released on shutdown
type ScanStore interface {
	domain.ScanRepository
	Close() error
}

// NewScanStore opens the session store named by cfg.Session.Type
func NewScanStore(ctx context.Context, cfg *config.Config) (ScanStore, error) {
	switch cfg.Session.Type {
	case "memory":
		return cache.NewMemoryScanStore(0), nil
	case "redis":
		client, err := cache.NewRedisClient(ctx, cfg.Session.RedisURL)
		if err != nil {
			return nil, err
		}
		return &redisStore{RedisScanStore: cache.NewRedisScanStore(client), close: client.Close}, nil
	default:
		return nil, fmt.Errorf("unsupported session type: %s", cfg.Session.Type)
	}
}

type redisStore struct {
	*cache.RedisScanStore
	close func() error
}

func (s *redisStore) Close() error {
	return s.close()
}
