package queue

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/neuro-publico/conversation-engine/internal/domain/entity"
	"github.com/neuro-publico/conversation-engine/internal/domain/port"
	"github.com/neuro-publico/conversation-engine/internal/infra/metrics"
)

// MessageProcessor consumes one received message. Errors are the processor's
// to log; the listener deletes the message either way.
type MessageProcessor func(ctx context.Context, msg port.Message, defaultType entity.SceneType)

// Binding ties a queue URL to the scene type its messages default to when the
// type attribute is missing. Each queue is type-homogeneous.
type Binding struct {
	QueueURL    string
	DefaultType entity.SceneType
}

type ListenerConfig struct {
	MaxMessages int
	WaitTime    time.Duration
	IdleDelay   time.Duration
	ErrorDelay  time.Duration
}

// Listener runs one polling loop per queue binding. Loops share no mutable
// state; all coordination goes through the job store.
type Listener struct {
	gateway   port.QueueGateway
	bindings  []Binding
	processor MessageProcessor
	cfg       ListenerConfig
	logger    *zap.Logger
	wg        sync.WaitGroup
}

func NewListener(gateway port.QueueGateway, bindings []Binding, processor MessageProcessor, cfg ListenerConfig, logger *zap.Logger) *Listener {
	if cfg.MaxMessages <= 0 {
		cfg.MaxMessages = 5
	}
	if cfg.WaitTime <= 0 {
		cfg.WaitTime = 5 * time.Second
	}
	if cfg.IdleDelay <= 0 {
		cfg.IdleDelay = time.Second
	}
	if cfg.ErrorDelay <= 0 {
		cfg.ErrorDelay = 2 * time.Second
	}
	return &Listener{
		gateway:   gateway,
		bindings:  bindings,
		processor: processor,
		cfg:       cfg,
		logger:    logger,
	}
}

// Start spawns one goroutine per binding and blocks until the context is
// cancelled and every loop has exited.
func (l *Listener) Start(ctx context.Context) {
	for _, b := range l.bindings {
		l.wg.Add(1)
		go l.listenQueue(ctx, b)
	}

	<-ctx.Done()
	l.logger.Info("context cancelled, waiting for queue loops to finish")
	l.wg.Wait()
}

func (l *Listener) listenQueue(ctx context.Context, b Binding) {
	defer l.wg.Done()

	log := l.logger.With(
		zap.String("queue_url", b.QueueURL),
		zap.String("default_type", string(b.DefaultType)),
	)
	log.Info("queue loop started")
	metrics.ActiveListeners.Inc()
	defer metrics.ActiveListeners.Dec()

	for {
		if ctx.Err() != nil {
			log.Info("queue loop shutting down")
			return
		}

		msgs, err := l.gateway.Receive(ctx, b.QueueURL, l.cfg.MaxMessages, l.cfg.WaitTime)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("queue loop shutting down")
				return
			}
			// Transient broker failure: keep the loop alive.
			log.Error("receive failed, retrying", zap.Error(err))
			metrics.ListenerErrorsTotal.Inc()
			if !sleepCtx(ctx, l.cfg.ErrorDelay) {
				return
			}
			continue
		}

		if len(msgs) == 0 {
			if !sleepCtx(ctx, l.cfg.IdleDelay) {
				return
			}
			continue
		}

		for _, msg := range msgs {
			l.processor(ctx, msg, b.DefaultType)
			metrics.MessagesConsumedTotal.WithLabelValues(string(b.DefaultType)).Inc()

			// At-most-once: the message goes away whether or not the handler
			// succeeded.
			if msg.ReceiptHandle != "" {
				if err := l.gateway.Delete(ctx, b.QueueURL, msg.ReceiptHandle); err != nil {
					log.Error("delete failed", zap.Error(err))
					metrics.ListenerErrorsTotal.Inc()
				}
			}
		}
	}
}

// sleepCtx waits for d or the context, reporting false on cancellation.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	select {
	case <-time.After(d):
		return true
	case <-ctx.Done():
		return false
	}
}
