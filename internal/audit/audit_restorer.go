package audit

import (
	"context"
	"database/sql"
	"sync"

	"go-oms/internal/actor"

	"github.com/google/uuid"
)

// Restorer overwrites a live entity with a JSON snapshot taken from an audit log
// and returns the restored state.
type Restorer interface {
	Restore(ctx context.Context, tx *sql.Tx, by actor.Actor, id uuid.UUID, snapshot []byte) (any, error)
}

// AfterRestorer is implemented by restorers that need to run once the rollback commits.
type AfterRestorer interface {
	AfterRestore(ctx context.Context, id uuid.UUID)
}

// Registry maps entity kinds to their restorer.
type Registry struct {
	mu        sync.RWMutex
	restorers map[EntityKind]Restorer
}

func NewRegistry() *Registry {
	return &Registry{restorers: make(map[EntityKind]Restorer)}
}

func (r *Registry) Register(kind EntityKind, restorer Restorer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.restorers[kind] = restorer
}

func (r *Registry) Lookup(kind EntityKind) (Restorer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	restorer, ok := r.restorers[kind]
	return restorer, ok
}
