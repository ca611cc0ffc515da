// Package events contains the event contract definitions for WebSocket
// communication between the server and open dashboards.
package events

import (
	"time"
)

// MessageType defines the type of a WebSocket message.
type MessageType string

const (
	// Connection lifecycle.
	MessageTypeConnection MessageType = "connection"

	// Dataset lifecycle.
	MessageTypeAnalysisUpdated MessageType = "analysis:updated"
	MessageTypeDatasetDeleted  MessageType = "dataset:deleted"
)

// Message is the envelope for every WebSocket message.
type Message struct {
	Type      MessageType `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
}

// ConnectionData is the payload of a connection handshake message.
type ConnectionData struct {
	Status   string `json:"status"`
	ClientID string `json:"client_id"`
}

// DatasetEventData is the payload of dataset lifecycle messages.
type DatasetEventData struct {
	DatasetID string `json:"dataset_id"`
}

// NewAnalysisUpdated builds the message broadcast after a successful
// analysis of the dataset.
func NewAnalysisUpdated(datasetID string) Message {
	return Message{
		Type:      MessageTypeAnalysisUpdated,
		Data:      DatasetEventData{DatasetID: datasetID},
		Timestamp: time.Now(),
	}
}

// NewDatasetDeleted builds the message broadcast when a dataset session
// is removed.
func NewDatasetDeleted(datasetID string) Message {
	return Message{
		Type:      MessageTypeDatasetDeleted,
		Data:      DatasetEventData{DatasetID: datasetID},
		Timestamp: time.Now(),
	}
}

// NewConnection builds the handshake message sent to a newly registered
// client.
func NewConnection(clientID string) Message {
	return Message{
		Type: MessageTypeConnection,
		Data: ConnectionData{
			Status:   "connected",
			ClientID: clientID,
		},
		Timestamp: time.Now(),
	}
}
