package providers

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/pennywise-app/pennywise-backend/internal/domain/transfers"
)

// Registry manages all registered providers.
type Registry struct {
	providers map[string]Provider
	mu        sync.RWMutex
	logger    *slog.Logger
}

// NewRegistry creates a new provider registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		providers: make(map[string]Provider),
		logger:    logger,
	}
}

// Register adds a provider to the registry.
func (r *Registry) Register(provider Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := provider.Name()
	if _, exists := r.providers[name]; exists {
		return fmt.Errorf("provider %s already registered", name)
	}

	r.providers[name] = provider
	r.logger.Info("registered provider",
		slog.String("provider", name),
		slog.String("display_name", provider.DisplayName()),
	)

	return nil
}

// Get returns a provider by name.
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	provider, exists := r.providers[name]
	if !exists {
		return nil, fmt.Errorf("provider %s not found", name)
	}

	return provider, nil
}

// List returns all registered provider names, sorted for stable output.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FetchResult holds one provider's contribution to a combined fetch.
type FetchResult struct {
	Provider string
	Records  []transfers.DirectionalRecord
	Err      error
}

// FetchAll fetches records from every registered provider in parallel.
// Results come back ordered by provider name so the combined batch, and
// therefore the matcher's tie-breaking, is deterministic across runs.
// A failing provider contributes an error instead of aborting the others.
func (r *Registry) FetchAll(ctx context.Context, opts FetchOptions) []FetchResult {
	r.mu.RLock()
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	providers := make([]Provider, len(names))
	for i, name := range names {
		providers[i] = r.providers[name]
	}
	r.mu.RUnlock()

	results := make([]FetchResult, len(providers))
	var wg sync.WaitGroup

	for i, provider := range providers {
		wg.Add(1)
		go func(i int, p Provider) {
			defer wg.Done()
			records, err := p.FetchRecords(ctx, opts)
			results[i] = FetchResult{Provider: p.Name(), Records: records, Err: err}

			if err != nil {
				r.logger.Error("provider fetch failed",
					slog.String("provider", p.Name()),
					slog.String("error", err.Error()),
				)
			} else {
				r.logger.Debug("provider fetch complete",
					slog.String("provider", p.Name()),
					slog.Int("records", len(records)),
				)
			}
		}(i, provider)
	}

	wg.Wait()
	return results
}

// HealthCheck runs health checks on all providers.
func (r *Registry) HealthCheck(ctx context.Context) map[string]error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	results := make(map[string]error)
	var wg sync.WaitGroup
	var mu sync.Mutex

	for name, provider := range r.providers {
		wg.Add(1)
		go func(n string, p Provider) {
			defer wg.Done()
			err := p.HealthCheck(ctx)
			mu.Lock()
			results[n] = err
			mu.Unlock()

			if err != nil {
				r.logger.Error("provider health check failed",
					slog.String("provider", n),
					slog.String("error", err.Error()),
				)
			}
		}(name, provider)
	}

	wg.Wait()
	return results
}
