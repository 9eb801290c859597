package hfval

import (
	"sync"

	"github.com/pyhf/hfval/pkg/errors"
)

// MissingParameterHook is called for every legacy parameter that has no
// pyhf counterpart after canonicalization.
type MissingParameterHook func(missing *errors.MissingParameterError)

// hooks manages comparison callbacks
type hooks struct {
	mu        sync.RWMutex
	onMissing []MissingParameterHook
}

func newHooks() *hooks {
	return &hooks{}
}

// OnMissingParameter registers a callback for unresolved parameters
func (h *hooks) OnMissingParameter(fn MissingParameterHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onMissing = append(h.onMissing, fn)
}

func (h *hooks) triggerMissing(missing *errors.MissingParameterError) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, hook := range h.onMissing {
		hook(missing)
	}
}
