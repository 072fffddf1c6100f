package timeline

import (
	"context"
	"log"
	"sync"

	"github.com/dmcsuite/quotebuilder/internal/notify"
	"github.com/dmcsuite/quotebuilder/internal/records"
)

// Manager hands out one Timeline session per quote, loading it on first
// access. Sessions are the unit of serialization: edits on different quotes
// never contend.
type Manager struct {
	mu       sync.Mutex
	store    *records.Store
	notifier *notify.Queue
	sessions map[uint]*Timeline
}

func NewManager(store *records.Store, notifier *notify.Queue) *Manager {
	return &Manager{store: store, notifier: notifier, sessions: make(map[uint]*Timeline)}
}

// Get returns the session for a quote, loading days and ledger on first use.
func (m *Manager) Get(ctx context.Context, quoteID uint) (*Timeline, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if tl, ok := m.sessions[quoteID]; ok {
		return tl, nil
	}
	tl := newTimeline(m.store, m.notifier)
	if err := tl.load(ctx, quoteID); err != nil {
		return nil, err
	}
	m.sessions[quoteID] = tl
	return tl, nil
}

// Drop discards a cached session; the next Get reloads from the store.
func (m *Manager) Drop(quoteID uint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, quoteID)
}

// ReconcileAll reconciles every active session. Called by the periodic job.
func (m *Manager) ReconcileAll(ctx context.Context) {
	m.mu.Lock()
	active := make([]*Timeline, 0, len(m.sessions))
	for _, tl := range m.sessions {
		active = append(active, tl)
	}
	m.mu.Unlock()

	for _, tl := range active {
		if err := tl.Reconcile(ctx); err != nil {
			log.Printf("[timeline] reconcile quote %d: %v", tl.Quote().ID, err)
		}
	}
}
