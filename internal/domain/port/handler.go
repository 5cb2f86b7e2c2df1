package port

import "context"

// SceneHandler processes one decoded scene body. Implementations must not
// panic; the listener deletes the message regardless of the returned error.
type SceneHandler interface {
	Handle(ctx context.Context, body map[string]any) error
}
