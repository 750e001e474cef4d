package worker

import (
	"context"
	"testing"
	"time"

	"komunalka/internal/amqp"
)

func sampleMessage() *amqp.BillNotificationMessage {
	return &amqp.BillNotificationMessage{
		DeliveryID:    "abc123",
		ApartmentID:   "khmelnytskogo",
		ApartmentName: "Б.Хмельницького 8е/20",
		Period:        "2025-03",
		TotalAmount:   286,
		Text:          "🏠 *Б.Хмельницького 8е/20*",
		Timestamp:     time.Now(),
	}
}

func TestHandleBillNotification(t *testing.T) {
	w := NewNotifyWorker("token", "chat")
	if err := w.HandleBillNotification(context.Background(), sampleMessage()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestHandleBillNotification_EmptyText(t *testing.T) {
	w := NewNotifyWorker("token", "chat")
	msg := sampleMessage()
	msg.Text = "  "
	if err := w.HandleBillNotification(context.Background(), msg); err == nil {
		t.Error("expected error for empty text")
	}
}

func TestHandleBillNotification_Unconfigured(t *testing.T) {
	w := NewNotifyWorker("", "")
	// Missing bot config drops the message without failing, so the
	// delivery is not requeued forever.
	if err := w.HandleBillNotification(context.Background(), sampleMessage()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
