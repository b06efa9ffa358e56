// internal/app/console/gateway/memgateway/memgateway.go

// Package memgateway is an in-memory gateway.Gateway with fault
// injection. It applies the same capability checks as the Mongo gateway
// and counts every call, so engine tests can assert on exactly which
// remote operations were issued.
package memgateway

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/wanderhub/travelhub/internal/app/console/gateway"
	"github.com/wanderhub/travelhub/internal/app/console/resource"
)

// Gateway holds records per resource in insertion order.
type Gateway struct {
	mu sync.Mutex

	data map[resource.Name][]gateway.Record

	fetchFail  map[resource.Name]error
	recordFail map[string]error // key: resource/id
	blockFetch chan struct{}

	calls map[resource.Op]int
}

// New returns an empty gateway.
func New() *Gateway {
	return &Gateway{
		data:       make(map[resource.Name][]gateway.Record),
		fetchFail:  make(map[resource.Name]error),
		recordFail: make(map[string]error),
		calls:      make(map[resource.Op]int),
	}
}

// Seed replaces the records of name. Records are cloned.
func (g *Gateway) Seed(name resource.Name, recs ...gateway.Record) {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]gateway.Record, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Clone())
	}
	g.data[name] = out
}

// FailFetch makes every Fetch of name fail with a kind error until cleared
// with an empty kind.
func (g *Gateway) FailFetch(name resource.Name, kind gateway.Kind) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if kind == "" {
		delete(g.fetchFail, name)
		return
	}
	g.fetchFail[name] = gateway.NewError(kind, name, gateway.OpFetch, "", fmt.Errorf("injected"))
}

// FailRecord makes every mutation of name/id fail with kind.
func (g *Gateway) FailRecord(name resource.Name, id string, kind gateway.Kind) {
	g.mu.Lock()
	defer g.mu.Unlock()
	key := string(name) + "/" + id
	if kind == "" {
		delete(g.recordFail, key)
		return
	}
	g.recordFail[key] = gateway.NewError(kind, name, "", id, fmt.Errorf("injected"))
}

// BlockFetches makes every Fetch wait until the returned release func is
// called (or the caller's context ends).
func (g *Gateway) BlockFetches() (release func()) {
	ch := make(chan struct{})
	g.mu.Lock()
	g.blockFetch = ch
	g.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			if g.blockFetch == ch {
				g.blockFetch = nil
			}
			g.mu.Unlock()
			close(ch)
		})
	}
}

// Calls returns how many times op was invoked (OpFetch counts fetches).
func (g *Gateway) Calls(op resource.Op) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[op]
}

// IDs returns the ids currently stored for name.
func (g *Gateway) IDs(name resource.Name) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, 0, len(g.data[name]))
	for _, r := range g.data[name] {
		out = append(out, r.ID())
	}
	return out
}

func (g *Gateway) Fetch(ctx context.Context, name resource.Name) ([]gateway.Record, error) {
	g.mu.Lock()
	g.calls[gateway.OpFetch]++
	block := g.blockFetch
	g.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, gateway.NewError(gateway.KindNetwork, name, gateway.OpFetch, "", ctx.Err())
		}
	}

	if _, err := gateway.CheckFetch(name); err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.fetchFail[name]; err != nil {
		return nil, err
	}
	out := make([]gateway.Record, 0, len(g.data[name]))
	for _, r := range g.data[name] {
		out = append(out, r.Clone())
	}
	return out, nil
}

func (g *Gateway) Create(ctx context.Context, name resource.Name, data gateway.Record) (gateway.Record, error) {
	g.count(resource.OpCreate)
	if _, err := gateway.Check(name, resource.OpCreate, ""); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	rec := data.Clone()
	if rec.ID() == "" {
		rec[gateway.IDField] = uuid.NewString()
	}
	g.data[name] = append(g.data[name], rec)
	return rec.Clone(), nil
}

func (g *Gateway) Update(ctx context.Context, name resource.Name, id string, patch gateway.Patch) (gateway.Record, error) {
	g.count(resource.OpUpdate)
	spec, err := gateway.Check(name, resource.OpUpdate, id)
	if err != nil {
		return nil, err
	}
	if err := gateway.CheckPatch(spec, id, patch); err != nil {
		return nil, err
	}
	return g.mutate(name, resource.OpUpdate, id, func(r gateway.Record) {
		for k, v := range patch {
			r[k] = v
		}
	})
}

func (g *Gateway) Delete(ctx context.Context, name resource.Name, id string) error {
	g.count(resource.OpDelete)
	if _, err := gateway.Check(name, resource.OpDelete, id); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.injected(name, resource.OpDelete, id); err != nil {
		return err
	}
	i := g.index(name, id)
	if i < 0 {
		return gateway.NewError(gateway.KindNotFound, name, resource.OpDelete, id, nil)
	}
	g.data[name] = slices.Delete(g.data[name], i, i+1)
	return nil
}

func (g *Gateway) Transition(ctx context.Context, name resource.Name, id, status string) (gateway.Record, error) {
	g.count(resource.OpTransition)
	spec, err := gateway.Check(name, resource.OpTransition, id)
	if err != nil {
		return nil, err
	}
	if err := gateway.CheckStatus(spec, id, status); err != nil {
		return nil, err
	}
	return g.mutate(name, resource.OpTransition, id, func(r gateway.Record) {
		r[spec.StatusField] = status
	})
}

func (g *Gateway) mutate(name resource.Name, op resource.Op, id string, apply func(gateway.Record)) (gateway.Record, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.injected(name, op, id); err != nil {
		return nil, err
	}
	i := g.index(name, id)
	if i < 0 {
		return nil, gateway.NewError(gateway.KindNotFound, name, op, id, nil)
	}
	apply(g.data[name][i])
	return g.data[name][i].Clone(), nil
}

func (g *Gateway) injected(name resource.Name, op resource.Op, id string) error {
	err, ok := g.recordFail[string(name)+"/"+id]
	if !ok {
		return nil
	}
	ge := *err.(*gateway.Error)
	ge.Op = op
	return &ge
}

func (g *Gateway) index(name resource.Name, id string) int {
	return slices.IndexFunc(g.data[name], func(r gateway.Record) bool { return r.ID() == id })
}

func (g *Gateway) count(op resource.Op) {
	g.mu.Lock()
	g.calls[op]++
	g.mu.Unlock()
}

var _ gateway.Gateway = (*Gateway)(nil)
