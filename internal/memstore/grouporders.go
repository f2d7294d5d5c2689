package memstore

import (
	"context"
	"slices"
	"sort"
	"time"

	"bazaar-be/internal/grouporder"

	"github.com/google/uuid"
)

type groupOrderRepo struct{ s *Store }

func (r *groupOrderRepo) Create(_ context.Context, g *grouporder.GroupOrder) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.groupOrders[g.ID] = cloneGroup(*g)
	return nil
}

func (r *groupOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*grouporder.GroupOrder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	g, ok := r.s.groupOrders[id]
	if !ok {
		return nil, grouporder.ErrNotFound
	}
	g = cloneGroup(g)
	return &g, nil
}

func (r *groupOrderRepo) Join(_ context.Context, id uuid.UUID, p grouporder.Participant) (*grouporder.GroupOrder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	g, ok := r.s.groupOrders[id]
	if !ok {
		return nil, grouporder.ErrNotFound
	}
	if g.Participants.Has(p.VendorID) {
		return nil, grouporder.ErrAlreadyJoined
	}

	g = cloneGroup(g)
	g.Participants = append(g.Participants, p)
	g.UpdatedAt = time.Now().UTC()
	r.s.groupOrders[id] = g

	out := cloneGroup(g)
	return &out, nil
}

func (r *groupOrderRepo) List(_ context.Context) ([]grouporder.GroupOrder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]grouporder.GroupOrder, 0, len(r.s.groupOrders))
	for _, g := range r.s.groupOrders {
		out = append(out, cloneGroup(g))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func cloneGroup(g grouporder.GroupOrder) grouporder.GroupOrder {
	g.Participants = slices.Clone(g.Participants)
	if g.Participants == nil {
		g.Participants = grouporder.Participants{}
	}
	return g
}
