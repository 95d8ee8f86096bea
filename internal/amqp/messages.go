package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"feedtrend/internal/core"

	"github.com/google/uuid"
)

// EventType names what happened to a month.
type EventType string

const (
	MonthSaved   EventType = "month.saved"
	MonthDeleted EventType = "month.deleted"
)

// MonthEvent announces a change to a stored month. It carries the key
// only; consumers load the month themselves.
type MonthEvent struct {
	ID        string        `json:"id"`
	Type      EventType     `json:"type"`
	Month     core.MonthKey `json:"month"`
	Records   int           `json:"records,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// NewMonthEvent stamps a fresh event with a random ID and the current time.
func NewMonthEvent(typ EventType, month core.MonthKey, records int) *MonthEvent {
	return &MonthEvent{
		ID:        uuid.NewString(),
		Type:      typ,
		Month:     month,
		Records:   records,
		Timestamp: time.Now().UTC(),
	}
}

func (m *MonthEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// MonthEventFromJSON decodes and validates an event body.
func MonthEventFromJSON(data []byte) (*MonthEvent, error) {
	var msg MonthEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	switch msg.Type {
	case MonthSaved, MonthDeleted:
	default:
		return nil, fmt.Errorf("unknown event type %q", msg.Type)
	}
	if err := msg.Month.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
