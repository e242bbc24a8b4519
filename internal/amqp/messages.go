package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"gastos/internal/core"
)

// MessageTypeSummaryRefreshed identifies a summary refresh event.
const MessageTypeSummaryRefreshed = "summary.refreshed"

// SummaryRefreshedMessage announces that a monthly summary was recomputed.
// It carries only identifiers: consumers read the current row from the store.
type SummaryRefreshedMessage struct {
	Type      string    `json:"type"`
	SummaryID int64     `json:"summary_id"`
	UserID    int64     `json:"user_id"`
	Year      int       `json:"year"`
	Month     int       `json:"month"`
	Timestamp time.Time `json:"timestamp"`
}

func NewSummaryRefreshedMessage(s core.Summary) *SummaryRefreshedMessage {
	return &SummaryRefreshedMessage{
		Type:      MessageTypeSummaryRefreshed,
		SummaryID: s.ID,
		UserID:    s.UserID,
		Year:      s.Period.Year,
		Month:     s.Period.Month,
		Timestamp: time.Now().UTC(),
	}
}

// Period returns the message's year and month as a core.Period.
func (m *SummaryRefreshedMessage) Period() core.Period {
	return core.Period{Year: m.Year, Month: m.Month}
}

func (m *SummaryRefreshedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SummaryRefreshedMessageFromJSON decodes and checks a message body.
func SummaryRefreshedMessageFromJSON(data []byte) (*SummaryRefreshedMessage, error) {
	var msg SummaryRefreshedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Type != MessageTypeSummaryRefreshed {
		return nil, fmt.Errorf("unexpected message type %q", msg.Type)
	}
	if msg.SummaryID <= 0 {
		return nil, fmt.Errorf("message has no summary id")
	}
	return &msg, nil
}
