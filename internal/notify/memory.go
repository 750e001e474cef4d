package notify

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"komunalka/internal/core"
)

// Delivery is one message handed to the memory notifier.
type Delivery struct {
	ID        string
	Result    core.CalculationResult
	Text      string
	Confirmed bool
}

// Memory records deliveries instead of sending them. It doubles as the
// local simulation backend and the test double.
type Memory struct {
	mu         sync.Mutex
	deliveries map[string]*Delivery
	order      []string
}

var _ Notifier = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{deliveries: make(map[string]*Delivery)}
}

func (m *Memory) Send(_ context.Context, result core.CalculationResult) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := newDeliveryID()
	m.deliveries[id] = &Delivery{
		ID:     id,
		Result: result,
		Text:   FormatMessage(result),
	}
	m.order = append(m.order, id)
	return id, nil
}

// Confirm marks a delivery acknowledged, simulating the "+" reply from
// the chat. Returns false when the id is unknown.
func (m *Memory) Confirm(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.deliveries[id]
	if !ok {
		return false
	}
	d.Confirmed = true
	return true
}

// Deliveries returns all recorded deliveries in send order.
func (m *Memory) Deliveries() []Delivery {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Delivery, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, *m.deliveries[id])
	}
	return out
}

func newDeliveryID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}
