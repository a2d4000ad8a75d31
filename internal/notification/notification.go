package notification

import (
	"context"

	notifdm "github.com/mohamedahmedessam757/futurethinking-backend/internal/core/datamodel/notification"
)

// Notification kinds as stored in the kind column.
const (
	KindPayment     = "payment"
	KindEntitlement = "entitlement"
	KindBooking     = "booking"
	KindAdmin       = "admin"
)

type Repository interface {
	Create(n *notifdm.Notification) error
	ListForUser(userID int64, role string, offset, limit int) ([]*notifdm.Notification, error)
	CountUnread(userID int64, role string) (int64, error)
	MarkRead(id, userID int64) error
	MarkAllRead(userID int64) error
}

type ServiceAPI interface {
	NotifyUser(ctx context.Context, userID int64, kind, titleAr, titleEn, bodyAr, bodyEn string, data map[string]interface{}) error
	NotifyRole(ctx context.Context, role string, kind, titleAr, titleEn, bodyAr, bodyEn string, data map[string]interface{}) error
	ListMine(userID int64, role string, offset, limit int) ([]*notifdm.Notification, error)
	UnreadCount(userID int64, role string) (int64, error)
	MarkRead(id, userID int64) error
	MarkAllRead(userID int64) error
}
