package app

import (
	"context"
	"sync"

	"github.com/dkeye/Collab/internal/core"
)

// Bus carries system-wide frames. With several relay nodes it is what makes "global" global.
type Bus interface {
	Publish(ctx context.Context, f core.Frame) error
	Subscribe(ctx context.Context, fn func(core.Frame)) error
}

// LocalBus delivers in-process, synchronously.
type LocalBus struct {
	mu       sync.RWMutex
	handlers []func(core.Frame)
}

func NewLocalBus() *LocalBus { return &LocalBus{} }

func (b *LocalBus) Publish(_ context.Context, f core.Frame) error {
	b.mu.RLock()
	hs := make([]func(core.Frame), len(b.handlers))
	copy(hs, b.handlers)
	b.mu.RUnlock()
	for _, h := range hs {
		h(f)
	}
	return nil
}

func (b *LocalBus) Subscribe(_ context.Context, fn func(core.Frame)) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, fn)
	return nil
}
