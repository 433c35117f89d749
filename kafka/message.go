package kafka

import (
	"encoding/json"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

// Message is a consumed record.
type Message struct {
	Key       string            `json:"key"`
	Value     []byte            `json:"value"`
	Topic     string            `json:"topic"`
	Partition int               `json:"partition"`
	Offset    int64             `json:"offset"`
	Timestamp time.Time         `json:"timestamp"`
	Headers   map[string]string `json:"headers,omitempty"`
}

// FromKafkaMessage converts a kafka-go message.
func FromKafkaMessage(msg kafkago.Message) Message {
	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	return Message{
		Key:       string(msg.Key),
		Value:     msg.Value,
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Timestamp: msg.Time,
		Headers:   headers,
	}
}

// IsJSON reports whether the value looks like JSON.
func (m Message) IsJSON() bool {
	if ct, ok := m.Headers["content-type"]; ok && ct == "application/json" {
		return true
	}
	if len(m.Value) > 0 {
		return m.Value[0] == '{' || m.Value[0] == '['
	}
	return false
}

// UnmarshalValueJSON unmarshals the value as JSON into v.
func (m Message) UnmarshalValueJSON(v any) error {
	return json.Unmarshal(m.Value, v)
}
