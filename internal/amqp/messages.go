package amqp

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentReminderMessage is the payload published for each unpaid
// payment falling due. Consumers fetch fuller context from the API if
// they need it; the message carries just enough to render a
// notification.
type PaymentReminderMessage struct {
	PaymentID  string          `json:"payment_id"`
	ScenarioID string          `json:"scenario_id"`
	NodeName   string          `json:"node_name"`
	VendorName string          `json:"vendor_name,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	DueDate    time.Time       `json:"due_date"`
	Timestamp  time.Time       `json:"timestamp"`
}

// NewPaymentReminderMessage stamps a reminder for one due payment.
func NewPaymentReminderMessage(paymentID, scenarioID, nodeName, vendorName string, amount decimal.Decimal, dueDate time.Time) *PaymentReminderMessage {
	return &PaymentReminderMessage{
		PaymentID:  paymentID,
		ScenarioID: scenarioID,
		NodeName:   nodeName,
		VendorName: vendorName,
		Amount:     amount,
		DueDate:    dueDate,
		Timestamp:  time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *PaymentReminderMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// PaymentReminderMessageFromJSON parses a message from JSON bytes.
func PaymentReminderMessageFromJSON(data []byte) (*PaymentReminderMessage, error) {
	var msg PaymentReminderMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
