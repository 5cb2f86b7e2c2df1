package port

import (
	"context"
	"time"
)

// Attribute is a typed message attribute set on the broker envelope.
type Attribute struct {
	DataType string
	Value    string
}

// Message is one received queue message. ReceiptHandle identifies the
// in-flight delivery for deletion.
type Message struct {
	Body          string
	Attributes    map[string]string
	ReceiptHandle string
}

// QueueGateway is the broker contract: named queues, attribute-carrying
// sends, long-poll receives and receipt-handle deletes.
type QueueGateway interface {
	// CreateOrGetQueue is idempotent: concurrent callers with the same name
	// converge to the same queue URL without error.
	CreateOrGetQueue(ctx context.Context, name string) (string, error)
	Send(ctx context.Context, queueURL, body string, attrs map[string]Attribute) error
	Receive(ctx context.Context, queueURL string, maxMessages int, wait time.Duration) ([]Message, error)
	Delete(ctx context.Context, queueURL, receiptHandle string) error
}
