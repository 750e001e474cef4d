package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"komunalka/internal/core"
	"komunalka/internal/history"
	"komunalka/internal/notify"
	sheetsmem "komunalka/internal/sheets/memory"
)

type memoryKV struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemoryKV() *memoryKV {
	return &memoryKV{data: make(map[string][]byte)}
}

func (m *memoryKV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key], nil
}

func (m *memoryKV) PutMany(_ context.Context, values map[string][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range values {
		m.data[k] = v
	}
	return nil
}

func (m *memoryKV) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func newService(t *testing.T) (*BillingService, *notify.Memory, *sheetsmem.Appender) {
	t.Helper()
	notifier := notify.NewMemory()
	appender := sheetsmem.NewAppender()
	return NewBillingService(history.NewStore(newMemoryKV()), notifier, appender), notifier, appender
}

// khmelnytskogo has four metered services plus fixed ones.
func khmelnytskogoInputs() map[string]core.ReadingInput {
	return map[string]core.ReadingInput{
		"Світло День":      {Previous: 100, Current: 150},
		"Світло Ніч":       {Previous: 200, Current: 220},
		"Вода лічильник 1": {Previous: 50, Current: 55},
		"Газ":              {Previous: 10, Current: 15},
	}
}

func TestCalculateBill(t *testing.T) {
	svc, notifier, _ := newService(t)
	ctx := context.Background()

	got, err := svc.CalculateBill(ctx, "khmelnytskogo", khmelnytskogoInputs(), "2025-03")
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if got.Result.TotalAmount <= 0 {
		t.Errorf("expected positive total, got %v", got.Result.TotalAmount)
	}
	if got.DeliveryID == "" {
		t.Error("expected a delivery id")
	}

	deliveries := notifier.Deliveries()
	if len(deliveries) != 1 {
		t.Fatalf("expected 1 delivery, got %d", len(deliveries))
	}
	if !strings.Contains(deliveries[0].Text, "Б.Хмельницького") {
		t.Errorf("unexpected notification text: %s", deliveries[0].Text)
	}
}

func TestCalculateBill_UnknownApartment(t *testing.T) {
	svc, _, _ := newService(t)

	_, err := svc.CalculateBill(context.Background(), "nope", khmelnytskogoInputs(), "2025-03")
	if !errors.Is(err, core.ErrUnknownApartment) {
		t.Errorf("expected ErrUnknownApartment, got %v", err)
	}
}

func TestCalculateBill_IncompleteInput(t *testing.T) {
	svc, _, _ := newService(t)

	inputs := khmelnytskogoInputs()
	delete(inputs, "Газ")
	_, err := svc.CalculateBill(context.Background(), "khmelnytskogo", inputs, "2025-03")
	if !errors.Is(err, core.ErrIncompleteInput) {
		t.Errorf("expected ErrIncompleteInput, got %v", err)
	}
}

func TestBaseline(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	if _, err := svc.CalculateBill(ctx, "khmelnytskogo", khmelnytskogoInputs(), "2025-03"); err != nil {
		t.Fatalf("calculate: %v", err)
	}

	baseline, err := svc.Baseline(ctx, "khmelnytskogo", "2025-04")
	if err != nil {
		t.Fatalf("baseline: %v", err)
	}
	if baseline["Світло День"] != 150 {
		t.Errorf("expected baseline 150, got %v", baseline["Світло День"])
	}
}

func TestExportCSVAndSheet(t *testing.T) {
	svc, _, appender := newService(t)
	ctx := context.Background()

	if _, err := svc.CalculateBill(ctx, "khmelnytskogo", khmelnytskogoInputs(), "2025-03"); err != nil {
		t.Fatalf("calculate: %v", err)
	}

	var buf strings.Builder
	if err := svc.ExportCSV(ctx, &buf, "2025-03"); err != nil {
		t.Fatalf("export csv: %v", err)
	}
	if !strings.Contains(buf.String(), "Світло День") {
		t.Error("csv missing billed service")
	}

	ref, err := svc.PushToSheet(ctx, "2025-03")
	if err != nil {
		t.Fatalf("push to sheet: %v", err)
	}
	if ref == "" {
		t.Error("expected range reference")
	}
	if len(appender.Rows) == 0 {
		t.Error("no rows appended")
	}
}
