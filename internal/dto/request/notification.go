package request

type NotificationListRequest struct {
	PaginatedRequest
	UnreadOnly bool `json:"unread_only"`
}
