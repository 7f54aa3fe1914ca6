package signalsource

import (
	"context"

	"github.com/selivandex/market-intel/pkg/models"
)

// Provider is the single upstream contract of the intelligence core:
// hand over the current signal set. Ordering is stable per provider;
// freshness semantics belong to the implementation.
type Provider interface {
	CurrentSignals(ctx context.Context) ([]models.Signal, error)
}

// Static is a fixed in-memory provider, used by tests and replay tooling
type Static struct {
	signals []models.Signal
}

// NewStatic creates a provider that always returns the given signals
func NewStatic(signals []models.Signal) *Static {
	return &Static{signals: signals}
}

// CurrentSignals returns a copy of the fixed signal set
func (s *Static) CurrentSignals(ctx context.Context) ([]models.Signal, error) {
	out := make([]models.Signal, len(s.signals))
	copy(out, s.signals)
	return out, nil
}

// SetSignals replaces the fixed signal set (test helper)
func (s *Static) SetSignals(signals []models.Signal) {
	s.signals = signals
}
