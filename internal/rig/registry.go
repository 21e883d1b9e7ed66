package rig

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrUnknownRig is returned when a rig ID is not registered.
var ErrUnknownRig = errors.New("unknown rig")

// Registry owns one Rig per followed entity.
type Registry struct {
	mu   sync.RWMutex
	rigs map[string]*Rig

	// MaxParallel bounds StepAll concurrency; zero or less is unbounded.
	MaxParallel int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{rigs: make(map[string]*Rig)}
}

// Add registers rig under a fresh ID and returns it.
func (r *Registry) Add(rig *Rig) string {
	id := fmt.Sprintf("rig_%s", uuid.NewString())
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rigs[id] = rig
	return id
}

// Get returns the rig registered under id.
func (r *Registry) Get(id string) (*Rig, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rig, ok := r.rigs[id]
	return rig, ok
}

// Remove drops id and reports whether it was registered.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rigs[id]; !ok {
		return false
	}
	delete(r.rigs, id)
	return true
}

// IDs returns the registered IDs in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	ids := lo.Keys(r.rigs)
	r.mu.RUnlock()
	slices.Sort(ids)
	return ids
}

// Len returns the number of registered rigs.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rigs)
}

// StepAll ticks every rig named in targets, in parallel, and returns the new
// follower positions by ID. Rig state is isolated so rigs never contend;
// callers must not tick the same rig elsewhere during the call. An unknown
// ID fails the whole call before any rig is stepped.
func (r *Registry) StepAll(ctx context.Context, targets map[string]Kinematics, dt float64) (map[string]r3.Vec, error) {
	ids := lo.Keys(targets)
	slices.Sort(ids)

	rigs := make([]*Rig, len(ids))
	r.mu.RLock()
	for i, id := range ids {
		rig, ok := r.rigs[id]
		if !ok {
			r.mu.RUnlock()
			return nil, fmt.Errorf("failed to step %s: %w", id, ErrUnknownRig)
		}
		rigs[i] = rig
	}
	r.mu.RUnlock()

	positions := make([]r3.Vec, len(ids))
	g, ctx := errgroup.WithContext(ctx)
	if r.MaxParallel > 0 {
		g.SetLimit(r.MaxParallel)
	}
	for i := range ids {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			positions[i] = rigs[i].Tick(targets[ids[i]], dt)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to step rigs: %w", err)
	}

	out := make(map[string]r3.Vec, len(ids))
	for i, id := range ids {
		out[id] = positions[i]
	}
	return out, nil
}
