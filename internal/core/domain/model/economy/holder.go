package economy

import (
	"fmt"
	"sync/atomic"
)

// Holder publishes the current Config. Reload swaps the whole struct, so a
// reader that calls Load once per operation never sees a mix of old and new fields.
type Holder struct {
	current atomic.Pointer[Config]
}

func NewHolder(cfg Config) (*Holder, error) {
	h := &Holder{}
	if err := h.Store(cfg); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *Holder) Load() Config {
	return *h.current.Load()
}

// Store validates cfg and makes it current. An invalid cfg leaves the previous one in place.
func (h *Holder) Store(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("economy config rejected: %w", err)
	}
	h.current.Store(&cfg)
	return nil
}
