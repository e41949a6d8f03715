// Package credentials supplies the vision API key to the classifier and extractor.
package credentials

import (
	"context"
	"strings"

	"github.com/shelfscan/backend/internal/domain"
)

type requestKey struct{}

// Static always returns the same key; an empty key means no credential
type Static string

// APIKey implements domain.CredentialProvider
func (s Static) APIKey(ctx context.Context) (string, bool) {
	key := strings.TrimSpace(string(s))
	return key, key != ""
}

// WithRequestKey stores a per-request key in the context
func WithRequestKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, requestKey{}, strings.TrimSpace(key))
}

// FromRequest reads the key placed in the context by WithRequestKey
type FromRequest struct{}

// APIKey implements domain.CredentialProvider
func (FromRequest) APIKey(ctx context.Context) (string, bool) {
	key, _ := ctx.Value(requestKey{}).(string)
	return key, key != ""
}

// Chain returns the first key any of its providers supplies
type Chain []domain.CredentialProvider

// APIKey implements domain.CredentialProvider
func (c Chain) APIKey(ctx context.Context) (string, bool) {
	for _, p := range c {
		if p == nil {
			continue
		}
		if key, ok := p.APIKey(ctx); ok {
			return key, true
		}
	}
	return "", false
}
