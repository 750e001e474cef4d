package amqp

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"komunalka/internal/core"
	"komunalka/internal/notify"
)

// Notifier implements the notification port by publishing rendered
// bills to the queue for the worker to deliver.
type Notifier struct {
	client *Client
}

var _ notify.Notifier = (*Notifier)(nil)

func NewNotifier(client *Client) *Notifier {
	return &Notifier{client: client}
}

func (n *Notifier) Send(ctx context.Context, result core.CalculationResult) (string, error) {
	id := newDeliveryID()
	msg := &BillNotificationMessage{
		DeliveryID:    id,
		ApartmentID:   result.ApartmentID,
		ApartmentName: result.ApartmentName,
		Period:        result.Period.String(),
		TotalAmount:   result.TotalAmount,
		Text:          notify.FormatMessage(result),
		Timestamp:     time.Now(),
	}
	if err := n.client.PublishBillNotification(ctx, msg); err != nil {
		return "", fmt.Errorf("queue bill notification: %w", err)
	}
	return id, nil
}

func newDeliveryID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}
