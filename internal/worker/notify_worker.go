// Package worker delivers queued bill notifications to the household
// chat. Delivery is simulated: messages are logged instead of hitting
// the Telegram API, but the worker shape matches a real bot.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"komunalka/internal/amqp"
)

// NotifyWorker processes bill notification messages from the queue.
type NotifyWorker struct {
	botToken string
	chatID   string
}

func NewNotifyWorker(botToken, chatID string) *NotifyWorker {
	return &NotifyWorker{botToken: botToken, chatID: chatID}
}

// HandleBillNotification validates and "sends" one queued bill.
func (w *NotifyWorker) HandleBillNotification(ctx context.Context, msg *amqp.BillNotificationMessage) error {
	if strings.TrimSpace(msg.Text) == "" {
		return fmt.Errorf("empty notification text for delivery %s", msg.DeliveryID)
	}

	if w.botToken == "" || w.chatID == "" {
		slog.WarnContext(ctx, "bot not configured, dropping notification",
			"delivery_id", msg.DeliveryID,
			"apartment_id", msg.ApartmentID)
		return nil
	}

	// A real bot would POST to api.telegram.org/bot<token>/sendMessage
	// with parse_mode Markdown. We log the payload instead.
	slog.InfoContext(ctx, "delivered bill notification",
		"delivery_id", msg.DeliveryID,
		"apartment_id", msg.ApartmentID,
		"apartment_name", msg.ApartmentName,
		"period", msg.Period,
		"total_amount", msg.TotalAmount,
		"chat_id", w.chatID,
		"queued_at", msg.Timestamp.Format(time.RFC3339),
		"text_length", len(msg.Text))

	return nil
}
