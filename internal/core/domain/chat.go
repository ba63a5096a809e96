package domain

import "time"

type MessageType string

const (
	MessageText   MessageType = "text"
	MessageFile   MessageType = "file"
	MessageSystem MessageType = "system"
)

// DeliveryStatus is local bookkeeping for messages authored on this client.
// It is never part of the shared protocol state.
type DeliveryStatus string

const (
	DeliveryPending DeliveryStatus = "pending"
	DeliverySent    DeliveryStatus = "sent"
)

type ChatMessage struct {
	ID          MessageID      `json:"id"`
	SenderID    ParticipantID  `json:"senderId"`
	Type        MessageType    `json:"type"`
	Content     string         `json:"content"`
	Timestamp   time.Time      `json:"timestamp"`
	IsPrivate   bool           `json:"isPrivate,omitempty"`
	RecipientID ParticipantID  `json:"recipientId,omitempty"`
	Delivery    DeliveryStatus `json:"-"`
}
