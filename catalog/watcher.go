package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// defaultDebounce is how long to wait for more changes before reloading.
const defaultDebounce = 500 * time.Millisecond

// Store holds the current catalog snapshot and optionally reloads it when
// the backing file changes. A failed reload keeps the previous snapshot so
// an interactive session never loses its catalog to a half-written file.
type Store struct {
	path     string
	logger   *slog.Logger
	debounce time.Duration

	mu       sync.RWMutex
	products []Product
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithStoreLogger sets the logger.
func WithStoreLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithDebounce sets the reload debounce delay.
func WithDebounce(d time.Duration) StoreOption {
	return func(s *Store) {
		s.debounce = d
	}
}

// NewStore loads the catalog at path and returns a store around it.
func NewStore(path string, opts ...StoreOption) (*Store, error) {
	products, err := Load(path)
	if err != nil {
		return nil, err
	}

	s := &Store{
		path:     path,
		logger:   slog.Default(),
		debounce: defaultDebounce,
		products: products,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Products returns the current catalog snapshot.
func (s *Store) Products() []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.products
}

// Len returns the number of records in the current snapshot.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products)
}

// Watch reloads the catalog when the backing file changes, until ctx is
// cancelled. It watches the parent directory because editors typically
// replace files via rename.
func (s *Store) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	go s.processEvents(ctx, watcher)

	s.logger.Debug("Catalog watcher started", "path", s.path)
	return nil
}

// processEvents handles fsnotify events with debouncing.
func (s *Store) processEvents(ctx context.Context, watcher *fsnotify.Watcher) {
	defer watcher.Close()

	ticker := time.NewTicker(s.debounce)
	defer ticker.Stop()

	dirty := false
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(s.path) {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				dirty = true
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.logger.Error("Catalog watcher error", "error", err)

		case <-ticker.C:
			if !dirty {
				continue
			}
			dirty = false
			s.reload()
		}
	}
}

// reload re-reads the catalog file, keeping the old snapshot on failure.
func (s *Store) reload() {
	products, err := Load(s.path)
	if err != nil {
		s.logger.Warn("Catalog reload failed, keeping previous snapshot",
			"path", s.path,
			"error", err)
		return
	}

	s.mu.Lock()
	s.products = products
	s.mu.Unlock()

	s.logger.Info("Catalog reloaded", "path", s.path, "products", len(products))
}
