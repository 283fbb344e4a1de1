package response

import (
	"time"

	"rental-booking/internal/data/entity"
)

type NotificationResponse struct {
	ID        string                  `json:"id"`
	RefundID  *string                 `json:"refund_id,omitempty"`
	Kind      entity.NotificationKind `json:"kind"`
	Title     string                  `json:"title"`
	Body      string                  `json:"body"`
	ReadAt    *time.Time              `json:"read_at,omitempty"`
	CreatedAt time.Time               `json:"created_at"`
}

func NotificationToResponse(n *entity.Notification) NotificationResponse {
	resp := NotificationResponse{
		ID:        n.ID.String(),
		Kind:      n.Kind,
		Title:     n.Title,
		Body:      n.Body,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
	if n.RefundID != nil {
		id := n.RefundID.String()
		resp.RefundID = &id
	}
	return resp
}
