package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/shelfscan/backend/internal/domain"
)

// scanItem represents a single stored scan with expiration
type scanItem struct {
	Value      []byte
	Expiration time.Time
}

// MemoryScanStore is a thread-safe in-memory scan store with TTL support
type MemoryScanStore struct {
	data  map[string]scanItem
	mutex sync.RWMutex
	stop  chan struct{}
	once  sync.Once
}

// NewMemoryScanStore creates a new in-memory scan store. cleanupInterval
// controls how often expired scans are dropped; zero means 10 minutes.
func NewMemoryScanStore(cleanupInterval time.Duration) *MemoryScanStore {
	if cleanupInterval <= 0 {
		cleanupInterval = 10 * time.Minute
	}

	store := &MemoryScanStore{
		data: make(map[string]scanItem),
		stop: make(chan struct{}),
	}

	go store.cleanupExpired(cleanupInterval)

	return store
}

// Save stores a copy of the scan for ttl
func (s *MemoryScanStore) Save(ctx context.Context, scan *domain.Scan, ttl time.Duration) error {
	if scan == nil || scan.ID == "" {
		return fmt.Errorf("scan id is required")
	}

	// Stored as JSON so callers never share the slice with the store, as with Redis
	data, err := json.Marshal(scan)
	if err != nil {
		return fmt.Errorf("failed to encode scan: %w", err)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.data[scan.ID] = scanItem{
		Value:      data,
		Expiration: time.Now().Add(ttl),
	}
	return nil
}

// Get retrieves a scan, returning domain.ErrScanNotFound when it is missing or expired
func (s *MemoryScanStore) Get(ctx context.Context, id string) (*domain.Scan, error) {
	s.mutex.RLock()
	item, exists := s.data[id]
	s.mutex.RUnlock()

	if !exists || time.Now().After(item.Expiration) {
		return nil, domain.ErrScanNotFound
	}

	var scan domain.Scan
	if err := json.Unmarshal(item.Value, &scan); err != nil {
		return nil, fmt.Errorf("failed to decode scan: %w", err)
	}
	return &scan, nil
}

// Delete removes a scan
func (s *MemoryScanStore) Delete(ctx context.Context, id string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	delete(s.data, id)
	return nil
}

// cleanupExpired removes expired scans periodically until Close is called
func (s *MemoryScanStore) cleanupExpired(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.removeExpired(time.Now())
		}
	}
}

func (s *MemoryScanStore) removeExpired(now time.Time) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for id, item := range s.data {
		if now.After(item.Expiration) {
			delete(s.data, id)
		}
	}
}

// Size returns the current number of stored scans (for debugging/monitoring)
func (s *MemoryScanStore) Size() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.data)
}

// Close stops the cleanup goroutine
func (s *MemoryScanStore) Close() error {
	s.once.Do(func() { close(s.stop) })
	return nil
}
