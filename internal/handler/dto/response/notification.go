package response

import (
	"time"

	"homeserve/internal/usecase/notifications"
)

type NotificationResponse struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Read      bool      `json:"read"`
}

type UnreadCountResponse struct {
	Count int `json:"count"`
}

func FromNotifications(items []notifications.Notification) []NotificationResponse {
	out := make([]NotificationResponse, len(items))
	for i, n := range items {
		out[i] = NotificationResponse{
			ID:        n.ID,
			Type:      string(n.Type),
			Title:     n.Title,
			Message:   n.Message,
			Timestamp: n.Timestamp,
			Read:      n.Read,
		}
	}
	return out
}
