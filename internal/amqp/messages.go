package amqp

import (
	"encoding/json"
	"time"
)

// BillNotificationMessage carries a formatted bill from the API to the
// notification worker. The text is rendered up front so the worker
// needs no access to the catalog.
type BillNotificationMessage struct {
	DeliveryID    string    `json:"deliveryId"`
	ApartmentID   string    `json:"apartmentId"`
	ApartmentName string    `json:"apartmentName"`
	Period        string    `json:"period"`
	TotalAmount   float64   `json:"totalAmount"`
	Text          string    `json:"text"`
	Timestamp     time.Time `json:"timestamp"`
}

func (m *BillNotificationMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func BillNotificationMessageFromJSON(data []byte) (*BillNotificationMessage, error) {
	var msg BillNotificationMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
