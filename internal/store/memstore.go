package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/fieldside/rtp/internal/protocol"
)

// MemStore is an in-memory protocol store with the same semantics as
// the SQLite Store, including the optimistic version guard and the
// one-active-protocol-per-incident rule. Used by tests and the
// scenario harness.
//
// Thread-safety: all methods are safe for concurrent use. Snapshots
// are cloned on the way in and out; callers never share memory with
// the store.
type MemStore struct {
	mu        sync.Mutex
	protocols map[string]*protocol.Protocol
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{protocols: make(map[string]*protocol.Protocol)}
}

// Create inserts a freshly created protocol.
func (m *MemStore) Create(_ context.Context, p *protocol.Protocol) error {
	if p.ProtocolID == "" {
		return protocol.NewValidationError("protocolId", "must not be empty")
	}
	if p.Version != 1 {
		return protocol.NewValidationError("version", fmt.Sprintf("new protocol must be at version 1, got %d", p.Version))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.protocols[p.ProtocolID]; exists {
		return protocol.NewValidationError("protocolId", fmt.Sprintf("protocol %s already exists", p.ProtocolID))
	}
	for _, existing := range m.protocols {
		if existing.IncidentID == p.IncidentID && !existing.Cleared() {
			return protocol.NewValidationError("incidentId",
				fmt.Sprintf("an active protocol already exists for incident %s", p.IncidentID))
		}
	}

	m.protocols[p.ProtocolID] = p.Clone()
	return nil
}

// Get returns a clone of the stored snapshot.
func (m *MemStore) Get(_ context.Context, protocolID string) (*protocol.Protocol, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.protocols[protocolID]
	if !ok {
		return nil, protocol.ErrProtocolNotFound
	}
	return p.Clone(), nil
}

// PutIfVersion applies a mutated snapshot if the stored version still
// equals expectedVersion, otherwise fails with
// ConcurrentModificationError and changes nothing.
func (m *MemStore) PutIfVersion(_ context.Context, p *protocol.Protocol, expectedVersion int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.protocols[p.ProtocolID]
	if !ok {
		return protocol.ErrProtocolNotFound
	}
	if stored.Version != expectedVersion {
		return &protocol.ConcurrentModificationError{
			ProtocolID:      p.ProtocolID,
			ExpectedVersion: expectedVersion,
			ActualVersion:   stored.Version,
		}
	}

	m.protocols[p.ProtocolID] = p.Clone()
	return nil
}

// ListByPlayer returns clones of all protocols for a player, newest
// first.
func (m *MemStore) ListByPlayer(_ context.Context, playerID string) ([]*protocol.Protocol, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*protocol.Protocol
	for _, p := range m.protocols {
		if p.PlayerID == playerID {
			out = append(out, p.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ProtocolID > out[j].ProtocolID
	})
	return out, nil
}
