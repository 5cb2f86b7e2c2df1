package queue

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/neuro-publico/conversation-engine/internal/domain/entity"
	"github.com/neuro-publico/conversation-engine/internal/domain/port"
	"github.com/neuro-publico/conversation-engine/internal/infra/metrics"
)

// ScenePublisher routes scenes to their type-specific queues. Queue URLs are
// resolved lazily through the gateway and cached per queue name.
type ScenePublisher struct {
	gateway port.QueueGateway
	logger  *zap.Logger

	mu   sync.Mutex
	urls map[string]string
}

func NewScenePublisher(gateway port.QueueGateway, logger *zap.Logger) *ScenePublisher {
	return &ScenePublisher{
		gateway: gateway,
		logger:  logger,
		urls:    make(map[string]string),
	}
}

// ResolveQueue maps a queue name to its URL, creating the queue on first use.
// Concurrent callers for the same name perform at most one gateway call.
func (p *ScenePublisher) ResolveQueue(ctx context.Context, queueName string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if url, ok := p.urls[queueName]; ok {
		return url, nil
	}

	url, err := p.gateway.CreateOrGetQueue(ctx, queueName)
	if err != nil {
		return "", &port.PublishError{Queue: queueName, Err: err}
	}
	p.urls[queueName] = url
	return url, nil
}

// Publish serializes the scene as a queue message and sends it with routing
// attributes duplicated out of the body. It does not wait for any consumer.
func (p *ScenePublisher) Publish(ctx context.Context, queueName string, adVideoID int64, scene entity.Scene) error {
	queueURL, err := p.ResolveQueue(ctx, queueName)
	if err != nil {
		return err
	}

	body, err := json.Marshal(entity.SceneMessage{
		AdVideoID: adVideoID,
		Sort:      scene.Sort,
		Type:      scene.Type,
		Content:   scene.Content,
	})
	if err != nil {
		return &port.PublishError{Queue: queueName, Err: err}
	}

	attrs := map[string]port.Attribute{
		entity.AttrAdVideoID: {DataType: "Number", Value: strconv.FormatInt(adVideoID, 10)},
		entity.AttrSceneType: {DataType: "String", Value: string(scene.Type)},
		entity.AttrSceneSort: {DataType: "Number", Value: strconv.Itoa(scene.Sort)},
	}

	if err := p.gateway.Send(ctx, queueURL, string(body), attrs); err != nil {
		return &port.PublishError{Queue: queueName, Err: err}
	}

	metrics.ScenesPublishedTotal.WithLabelValues(queueName).Inc()
	p.logger.Debug("scene published",
		zap.String("queue", queueName),
		zap.Int64("ad_video_id", adVideoID),
		zap.Int("sort", scene.Sort),
	)
	return nil
}
