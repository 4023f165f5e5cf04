package amqp

import (
	"encoding/json"
	"time"
)

// Payment event kinds carried on the export queue.
const (
	EventRecorded = "recorded"
	EventDeleted  = "deleted"
)

// PaymentEventMessage is a lightweight pointer message: only the payment id
// and event kind travel on the queue, the worker re-reads the row itself.
type PaymentEventMessage struct {
	PaymentID int64     `json:"payment_id"`
	Event     string    `json:"event"`
	Timestamp time.Time `json:"timestamp"`
}

func NewPaymentEventMessage(paymentID int64, event string) *PaymentEventMessage {
	return &PaymentEventMessage{
		PaymentID: paymentID,
		Event:     event,
		Timestamp: time.Now(),
	}
}

func (m *PaymentEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func PaymentEventMessageFromJSON(data []byte) (*PaymentEventMessage, error) {
	var msg PaymentEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
