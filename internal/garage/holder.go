package garage

import (
	"context"
	"sync"
)

// Holder owns the garage served by the shell and the HTTP handler. Both front
// ends go through the same Holder, so create_garage from either side swaps the
// garage the other one sees.
type Holder struct {
	mu        sync.RWMutex
	manager   *InstrumentedManager
	telemetry *TelemetryProvider
	opts      []Option
}

// NewHolder starts with manager, which may be nil until a garage is created.
// The options are applied to every manager built by Replace.
func NewHolder(manager *InstrumentedManager, telemetry *TelemetryProvider, opts ...Option) *Holder {
	return &Holder{
		manager:   manager,
		telemetry: telemetry,
		opts:      opts,
	}
}

func (h *Holder) Current() *InstrumentedManager {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.manager
}

// With runs fn against the current manager and reports false when no garage
// exists. Replace waits for running calls, so fn never sees a retired manager.
// fn must not call Replace.
func (h *Holder) With(fn func(*InstrumentedManager)) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.manager == nil {
		return false
	}
	fn(h.manager)
	return true
}

// Replace builds a garage with the given capacities, keeping the current fee
// table, and retires the previous manager.
func (h *Holder) Replace(ctx context.Context, capacities Capacities) (*InstrumentedManager, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var fees *FeeCalculator
	if h.manager != nil {
		fees = h.manager.Fees()
	}

	manager, err := NewInstrumentedManager(capacities, fees, h.telemetry, h.opts...)
	if err != nil {
		return nil, err
	}

	if h.manager != nil {
		h.manager.Retire(ctx)
	}
	h.manager = manager

	return manager, nil
}
