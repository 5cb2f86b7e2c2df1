package entity

type SceneType string

const (
	SceneTypeHuman    SceneType = "human_scene"
	SceneTypeAnimated SceneType = "animated_scene"
)

// Scene is one ordered creative unit within a job. Type is an open set:
// unknown types are stored but never routed to a queue.
type Scene struct {
	Sort    int            `json:"sort"`
	Type    SceneType      `json:"type"`
	Content map[string]any `json:"content"`
}

const (
	QueueHumanVideo    = "generate_human_video"
	QueueAnimatedVideo = "generate_animated_image_video"
)

// QueueForSceneType resolves the destination queue name for a scene type.
// The second return is false for types this pipeline does not process.
func QueueForSceneType(t SceneType) (string, bool) {
	switch t {
	case SceneTypeHuman:
		return QueueHumanVideo, true
	case SceneTypeAnimated:
		return QueueAnimatedVideo, true
	default:
		return "", false
	}
}
