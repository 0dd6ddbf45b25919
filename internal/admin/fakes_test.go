package admin

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bancharampur/infogate/internal/moderation"
	"github.com/bancharampur/infogate/internal/rbac"
	"github.com/bancharampur/infogate/internal/shared"
	"github.com/bancharampur/infogate/internal/users"
	"github.com/bancharampur/infogate/jobs"
)

type stubCompleter struct {
	reply string
	err   error
	calls int
	last  string
}

func (s *stubCompleter) Complete(_ context.Context, _ string, userMessage string) (string, error) {
	s.calls++
	s.last = userMessage
	return s.reply, s.err
}

type roleTable map[string]string

func (r roleTable) RoleOf(_ context.Context, principalID string) (string, error) {
	role, ok := r[principalID]
	if !ok {
		return "", users.ErrNotFound
	}
	return role, nil
}

func newGate() *rbac.Gate {
	return rbac.NewGate(roleTable{
		"admin-1": "admin",
		"local-1": "localAdmin",
		"user-1":  "user",
	})
}

type memoryStore struct {
	mu       sync.Mutex
	posts    map[string]bool
	shops    map[string]*moderation.Shop
	reports  map[string]string
	resolver map[string]string
	writes   int
	err      error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		posts:    map[string]bool{},
		shops:    map[string]*moderation.Shop{},
		reports:  map[string]string{},
		resolver: map[string]string{},
	}
}

func (m *memoryStore) addShop(id string, status moderation.ShopStatus, location string, created time.Time, highlighted bool) {
	m.shops[id] = &moderation.Shop{ID: id, Status: status, Location: location, CreatedAt: created, Highlighted: highlighted}
}

func (m *memoryStore) DeletePost(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if !m.posts[id] {
		return moderation.ErrNotFound
	}
	m.writes++
	delete(m.posts, id)
	return nil
}

func (m *memoryStore) DeleteShop(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.shops[id]; !ok {
		return moderation.ErrNotFound
	}
	m.writes++
	delete(m.shops, id)
	return nil
}

func (m *memoryStore) SetShopStatus(_ context.Context, id string, status moderation.ShopStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	shop, ok := m.shops[id]
	if !ok {
		return moderation.ErrNotFound
	}
	m.writes++
	shop.Status = status
	return nil
}

func (m *memoryStore) ApprovePendingShops(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	var n int64
	for _, shop := range m.shops {
		if shop.Status == moderation.ShopPending {
			shop.Status = moderation.ShopApproved
			n++
		}
	}
	m.writes++
	return n, nil
}

func (m *memoryStore) HighlightShops(_ context.Context, location string, limit int) ([]moderation.Shop, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.writes++
	var candidates []*moderation.Shop
	for _, shop := range m.shops {
		shop.Highlighted = false
		if shop.Status != moderation.ShopApproved {
			continue
		}
		if location != "" && !strings.Contains(strings.ToLower(shop.Location), strings.ToLower(location)) {
			continue
		}
		candidates = append(candidates, shop)
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].CreatedAt.After(candidates[j].CreatedAt)
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	out := make([]moderation.Shop, 0, len(candidates))
	for _, shop := range candidates {
		shop.Highlighted = true
		out = append(out, *shop)
	}
	return out, nil
}

func (m *memoryStore) ResolveReport(_ context.Context, id, actorID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.reports[id]; !ok {
		return moderation.ErrNotFound
	}
	m.writes++
	m.reports[id] = "resolved"
	m.resolver[id] = actorID
	return nil
}

func (m *memoryStore) highlighted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for id, shop := range m.shops {
		if shop.Highlighted {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

type memoryAccounts struct {
	status map[string]users.Status
	writes int
}

func newMemoryAccounts(emails ...string) *memoryAccounts {
	a := &memoryAccounts{status: map[string]users.Status{}}
	for _, e := range emails {
		a.status[e] = users.StatusActive
	}
	return a
}

func (a *memoryAccounts) set(email string, status users.Status) error {
	key := strings.ToLower(email)
	if _, ok := a.status[key]; !ok {
		return users.ErrNotFound
	}
	a.writes++
	a.status[key] = status
	return nil
}

func (a *memoryAccounts) Block(_ context.Context, email string) error {
	return a.set(email, users.StatusBlocked)
}

func (a *memoryAccounts) Unblock(_ context.Context, email string) error {
	return a.set(email, users.StatusActive)
}

type countingLocker struct {
	acquired int
	released int
	err      error
}

func (l *countingLocker) Acquire(_ context.Context, key string) (func(context.Context) error, error) {
	if l.err != nil {
		return nil, l.err
	}
	if key != shared.HighlightLockKey {
		return nil, shared.ErrLockHeld
	}
	l.acquired++
	return func(context.Context) error {
		l.released++
		return nil
	}, nil
}

type memoryIdempotency struct {
	keys    map[string]bool
	deleted []string
}

func newMemoryIdempotency() *memoryIdempotency {
	return &memoryIdempotency{keys: map[string]bool{}}
}

func (m *memoryIdempotency) CheckAndInsert(_ context.Context, key, _ string) error {
	if m.keys[key] {
		return shared.ErrIdempotencyConflict
	}
	m.keys[key] = true
	return nil
}

func (m *memoryIdempotency) Delete(_ context.Context, key string) error {
	delete(m.keys, key)
	m.deleted = append(m.deleted, key)
	return nil
}

type outcomeRecorder struct {
	seen []string
}

func (r *outcomeRecorder) RecordCommand(action, target, outcome string) {
	r.seen = append(r.seen, action+"/"+target+"/"+outcome)
}

type auditQueue struct {
	payloads []jobs.CommandAuditPayload
	err      error
}

func (q *auditQueue) EnqueueCommandAudit(_ context.Context, payload jobs.CommandAuditPayload) error {
	if q.err != nil {
		return q.err
	}
	q.payloads = append(q.payloads, payload)
	return nil
}
