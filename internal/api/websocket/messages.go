package websocket

import (
	"time"

	"github.com/jgosmann/linux-bsec-exporter/internal/engine"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// MessageTypeReadings carries one completed output set.
	MessageTypeReadings MessageType = "readings"
)

// Message represents a WebSocket message
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// ReadingData is one virtual sensor value within a readings message.
type ReadingData struct {
	Sensor      string  `json:"sensor"`
	Signal      float64 `json:"signal"`
	Accuracy    string  `json:"accuracy"`
	TimestampNS int64   `json:"timestamp_ns"`
}

// NewReadingsMessage converts a published output set into a broadcast
// message.
func NewReadingsMessage(outputs []engine.Output) Message {
	readings := make([]ReadingData, 0, len(outputs))
	for _, output := range outputs {
		readings = append(readings, ReadingData{
			Sensor:      output.Sensor.String(),
			Signal:      output.Signal,
			Accuracy:    output.Accuracy.String(),
			TimestampNS: output.TimestampNS,
		})
	}
	return Message{
		Type:      MessageTypeReadings,
		Timestamp: time.Now(),
		Data:      readings,
	}
}
