package openai

import (
	"sync/atomic"

	"github.com/nanaosei-dev/chatvendor/internal/config"
)

// ProviderPool hands out credentials round-robin. The index is advanced
// atomically so concurrent turns never race on the same slot.
type ProviderPool struct {
	creds []config.AIProviderConfig
	next  atomic.Uint64
}

func NewProviderPool(creds []config.AIProviderConfig) *ProviderPool {
	return &ProviderPool{creds: creds}
}

func (p *ProviderPool) Size() int {
	return len(p.creds)
}

func (p *ProviderPool) Next() config.AIProviderConfig {
	n := p.next.Add(1) - 1
	return p.creds[n%uint64(len(p.creds))]
}
