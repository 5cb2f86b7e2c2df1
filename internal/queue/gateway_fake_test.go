package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/neuro-publico/conversation-engine/internal/domain/port"
)

// fakeGateway is an in-memory broker double. Received messages move to an
// in-flight set and only reappear if explicitly requeued, which mirrors the
// visibility behavior the listener relies on.
type fakeGateway struct {
	mu          sync.Mutex
	createCalls map[string]int
	queues      map[string][]port.Message
	inflight    map[string]port.Message
	sent        map[string][]sentMessage

	failCreate  bool
	failSend    bool
	receiveErrs int
}

type sentMessage struct {
	Body  string
	Attrs map[string]port.Attribute
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		createCalls: map[string]int{},
		queues:      map[string][]port.Message{},
		inflight:    map[string]port.Message{},
		sent:        map[string][]sentMessage{},
	}
}

func (g *fakeGateway) CreateOrGetQueue(_ context.Context, name string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failCreate {
		return "", errors.New("broker unavailable")
	}
	g.createCalls[name]++
	url := "https://sqs.test/" + name
	if _, ok := g.queues[url]; !ok {
		g.queues[url] = nil
	}
	return url, nil
}

func (g *fakeGateway) Send(_ context.Context, queueURL, body string, attrs map[string]port.Attribute) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failSend {
		return errors.New("send rejected")
	}

	strAttrs := make(map[string]string, len(attrs))
	for name, a := range attrs {
		strAttrs[name] = a.Value
	}
	g.queues[queueURL] = append(g.queues[queueURL], port.Message{
		Body:          body,
		Attributes:    strAttrs,
		ReceiptHandle: uuid.NewString(),
	})
	g.sent[queueURL] = append(g.sent[queueURL], sentMessage{Body: body, Attrs: attrs})
	return nil
}

func (g *fakeGateway) Receive(_ context.Context, queueURL string, maxMessages int, _ time.Duration) ([]port.Message, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.receiveErrs > 0 {
		g.receiveErrs--
		return nil, errors.New("transient broker error")
	}

	pending := g.queues[queueURL]
	if len(pending) == 0 {
		return nil, nil
	}
	n := maxMessages
	if n > len(pending) {
		n = len(pending)
	}
	batch := pending[:n]
	g.queues[queueURL] = pending[n:]
	for _, m := range batch {
		g.inflight[m.ReceiptHandle] = m
	}
	return batch, nil
}

func (g *fakeGateway) Delete(_ context.Context, _, receiptHandle string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.inflight[receiptHandle]; !ok {
		return fmt.Errorf("unknown receipt handle %s", receiptHandle)
	}
	delete(g.inflight, receiptHandle)
	return nil
}

func (g *fakeGateway) pendingCount(queueURL string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.queues[queueURL]) + len(g.inflight)
}
