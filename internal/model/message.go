package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sender identifies who authored a message.
type Sender string

// Message senders.
const (
	SenderUser   Sender = "user"
	SenderSystem Sender = "system"
)

// Message is one entry of the conversation history. Messages are never
// mutated after being appended.
type Message struct {
	Timestamp time.Time
	Receipts  *ReceiptSummary
	ID        string
	Text      string
	Sender    Sender
}

// ReceiptSummary aggregates the receipts a system message refers to.
type ReceiptSummary struct {
	TotalAmount      decimal.Decimal
	DeductibleAmount decimal.Decimal
	ReceiptIDs       []string
	Count            int
}

// NewMessage builds a message with a fresh time-ordered id.
func NewMessage(sender Sender, text string) Message {
	return Message{
		ID:        newMessageID(),
		Text:      text,
		Sender:    sender,
		Timestamp: time.Now(),
	}
}

// NewUserMessage builds a user-authored message.
func NewUserMessage(text string) Message {
	return NewMessage(SenderUser, text)
}

// NewSystemMessage builds a system-authored message.
func NewSystemMessage(text string) Message {
	return NewMessage(SenderSystem, text)
}

// WithReceipts returns a copy of m carrying the given summary.
func (m Message) WithReceipts(summary ReceiptSummary) Message {
	s := summary
	s.ReceiptIDs = append([]string(nil), summary.ReceiptIDs...)
	m.Receipts = &s
	return m
}

// IsUser reports whether the message was written by the user.
func (m Message) IsUser() bool {
	return m.Sender == SenderUser
}

func newMessageID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
