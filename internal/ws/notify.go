package ws

import (
	"encoding/json"
	"time"

	"jobdash/internal/domain/job"
)

const EventFavoriteChanged = "favorite_changed"

type FavoriteChangedEvent struct {
	Type       string `json:"type"`
	JobID      job.ID `json:"jobId"`
	IsFavorite bool   `json:"isFavorite"`
	Timestamp  string `json:"timestamp"`
}

// FavoriteChanged tells the user's open dashboards that a job was
// favorited or unfavorited.
func (h *Hub) FavoriteChanged(userID string, id job.ID, isFavorite bool) {
	if h == nil || userID == "" {
		return
	}

	evt := FavoriteChangedEvent{
		Type:       EventFavoriteChanged,
		JobID:      id,
		IsFavorite: isFavorite,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}
	b, err := json.Marshal(evt)
	if err != nil {
		return
	}

	h.Send(userID, b)
}
