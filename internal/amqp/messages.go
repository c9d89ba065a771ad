package amqp

import (
	"encoding/json"
	"time"
)

// PeriodMessage identifies one reporting period. The payload is intentionally
// tiny: consumers fetch whatever data they need from the database, so a stale
// message can never carry stale amounts.
type PeriodMessage struct {
	Year      int       `json:"year"`
	Month     int       `json:"month"`
	Timestamp time.Time `json:"timestamp"`
}

// NewPeriodMessage creates a message for the given reporting period.
func NewPeriodMessage(year, month int) *PeriodMessage {
	return &PeriodMessage{
		Year:      year,
		Month:     month,
		Timestamp: time.Now(),
	}
}

func (m *PeriodMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func PeriodMessageFromJSON(data []byte) (*PeriodMessage, error) {
	var msg PeriodMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
