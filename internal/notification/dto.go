package notification

import (
	"encoding/json"
	"time"

	notifdm "github.com/mohamedahmedessam757/futurethinking-backend/internal/core/datamodel/notification"
)

type NotificationResponse struct {
	ID        int64           `json:"id"`
	Kind      string          `json:"kind"`
	TitleAr   string          `json:"title_ar"`
	TitleEn   string          `json:"title_en,omitempty"`
	BodyAr    string          `json:"body_ar,omitempty"`
	BodyEn    string          `json:"body_en,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	IsRead    bool            `json:"is_read"`
	CreatedAt time.Time       `json:"created_at"`
}

type ListResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	UnreadCount   int64                  `json:"unread_count"`
	Offset        int                    `json:"offset"`
	Limit         int                    `json:"limit"`
}

func ToResponse(n *notifdm.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Kind:      n.Kind,
		TitleAr:   n.TitleAr,
		TitleEn:   n.TitleEn,
		BodyAr:    n.BodyAr,
		BodyEn:    n.BodyEn,
		Data:      json.RawMessage(n.Data),
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
}
