// README: In-memory driver pool; same CAS semantics as the pg pool.
package driver

import (
	"context"
	"sync"

	"accessride/internal/types"
)

// MemPool keeps drivers in process memory behind a mutex. It implements the
// same reserve/release contract as PgPool and backs the unit and race tests.
type MemPool struct {
	mu      sync.Mutex
	drivers []*Driver // registration order
	byID    map[types.ID]*Driver
}

func NewMemPool() *MemPool {
	return &MemPool{byID: make(map[types.ID]*Driver)}
}

func (p *MemPool) Create(_ context.Context, d *Driver) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	cp := *d
	p.drivers = append(p.drivers, &cp)
	p.byID[d.ID] = &cp
	return nil
}

func (p *MemPool) Get(_ context.Context, id types.ID) (*Driver, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	d, ok := p.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (p *MemPool) ListAvailable(_ context.Context) ([]Driver, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []Driver
	for _, d := range p.drivers {
		if d.Available {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (p *MemPool) Reserve(_ context.Context, id types.ID) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	d, ok := p.byID[id]
	if !ok || !d.Available {
		return false, nil
	}
	d.Available = false
	return true, nil
}

func (p *MemPool) Release(_ context.Context, id types.ID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if d, ok := p.byID[id]; ok {
		d.Available = true
	}
	return nil
}
