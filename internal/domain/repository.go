package domain

import (
	"context"
	"time"
)

// ImagePart references the image attached to a completion request
type ImagePart struct {
	URL string `json:"url"`
}

// CompletionRequest is a two-message (system + user) vision prompt
type CompletionRequest struct {
	APIKey       string
	SystemPrompt string
	UserPrompt   string
	Image        ImagePart
	MaxTokens    int
}

// VisionClient defines the interface for the hosted vision completion endpoint
type VisionClient interface {
	// Complete returns the text of the first completion choice
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// CredentialProvider supplies the caller's vision API key
type CredentialProvider interface {
	APIKey(ctx context.Context) (string, bool)
}

// ScanRepository defines the interface for session-scoped scan storage
type ScanRepository interface {
	Save(ctx context.Context, scan *Scan, ttl time.Duration) error
	Get(ctx context.Context, id string) (*Scan, error)
	Delete(ctx context.Context, id string) error
}
