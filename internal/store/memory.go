package store

import (
	"context"
	"sync"

	"go-cvbot-backend/internal/models"
)

// Memory keeps everything in process memory. Last writer wins per key, same
// as the real store.
type Memory struct {
	mu         sync.Mutex
	candidates map[string]models.Candidate // keyed by telegram user id
	children   map[string][]models.ChildRecord
	orders     map[string]models.Order
}

func NewMemory() *Memory {
	return &Memory{
		candidates: make(map[string]models.Candidate),
		children:   make(map[string][]models.ChildRecord),
		orders:     make(map[string]models.Order),
	}
}

func childKey(candidateUID string, kind models.ChildKind) string {
	return candidateUID + "/" + string(kind)
}

func (m *Memory) GetCandidate(ctx context.Context, telegramUserID string) (*models.Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.candidates[telegramUserID]
	if !ok {
		return nil, ErrNotFound
	}
	c.Fields = c.Fields.Clone()
	return &c, nil
}

func (m *Memory) PutCandidate(ctx context.Context, c *models.Candidate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	cp.Fields = c.Fields.Clone()
	m.candidates[c.TelegramUserID] = cp
	return nil
}

func (m *Memory) GetChildren(ctx context.Context, candidateUID string, kind models.ChildKind) ([]models.ChildRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	src := m.children[childKey(candidateUID, kind)]
	out := make([]models.ChildRecord, len(src))
	for i, rec := range src {
		out[i] = rec
		out[i].Fields = rec.Fields.Clone()
	}
	return out, nil
}

func (m *Memory) PutChild(ctx context.Context, rec *models.ChildRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *rec
	cp.Fields = rec.Fields.Clone()
	key := childKey(rec.CandidateUID, rec.Kind)
	m.children[key] = append(m.children[key], cp)
	return nil
}

func (m *Memory) DeleteChildren(ctx context.Context, candidateUID string, kind models.ChildKind) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.children, childKey(candidateUID, kind))
	return nil
}

func (m *Memory) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok {
		return nil, ErrNotFound
	}
	return &o, nil
}

func (m *Memory) PutOrder(ctx context.Context, o *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[o.ID] = *o
	return nil
}

func (m *Memory) QueryOrdersByStatus(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Order
	for _, o := range m.orders {
		if o.Status == status {
			out = append(out, o)
		}
	}
	return out, nil
}
