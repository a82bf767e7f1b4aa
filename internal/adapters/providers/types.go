// Package providers defines the boundary between bank-data sources and the
// rest of the application. Each adapter normalizes whatever its provider
// returns into directional records; nothing provider-specific crosses this
// boundary.
package providers

import (
	"context"
	"time"

	"github.com/pennywise-app/pennywise-backend/internal/domain/transfers"
)

// FetchOptions configures how records are fetched.
type FetchOptions struct {
	StartDate  time.Time
	EndDate    time.Time
	MaxRecords int // 0 = no cap
}

// AccountMapping resolves a provider-side account identifier to the internal
// account it is linked to.
type AccountMapping map[string]int64

// Provider is the interface every bank-data adapter must implement.
type Provider interface {
	// Name is the stable lowercase identifier, e.g. "openbanking".
	Name() string
	DisplayName() string

	// FetchRecords pulls raw transactions for all mapped accounts and
	// normalizes them into directional records. Provider transaction ids
	// become ExternalIDs, prefixed so they stay unique across providers.
	FetchRecords(ctx context.Context, opts FetchOptions) ([]transfers.DirectionalRecord, error)

	HealthCheck(ctx context.Context) error
}
