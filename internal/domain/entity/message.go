package entity

// SceneMessage is the queue message body published per scene. The routing
// fields are duplicated as broker attributes so consumers can filter without
// deserializing the body.
type SceneMessage struct {
	AdVideoID int64          `json:"ad_video_id"`
	Sort      int            `json:"sort"`
	Type      SceneType      `json:"type"`
	Content   map[string]any `json:"content"`
}

// Attribute names set on every published scene message.
const (
	AttrAdVideoID = "ad_video_id"
	AttrSceneType = "scene_type"
	AttrSceneSort = "scene_sort"
)
