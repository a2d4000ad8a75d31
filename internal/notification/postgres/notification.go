package postgres

import (
	"gorm.io/gorm"

	notifdm "github.com/mohamedahmedessam757/futurethinking-backend/internal/core/datamodel/notification"
	notifpkg "github.com/mohamedahmedessam757/futurethinking-backend/internal/notification"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) notifpkg.Repository {
	return &NotificationRepository{
		db: db,
	}
}

func (r *NotificationRepository) Create(n *notifdm.Notification) error {
	return r.db.Table("notifications").Create(n).Error
}

func (r *NotificationRepository) ListForUser(userID int64, role string, offset, limit int) ([]*notifdm.Notification, error) {
	var notifications []*notifdm.Notification
	err := r.db.Table("notifications").
		Where("user_id = ? OR target_role = ?", userID, role).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}

func (r *NotificationRepository) CountUnread(userID int64, role string) (int64, error) {
	var count int64
	err := r.db.Table("notifications").
		Where("(user_id = ? OR target_role = ?) AND is_read = ?", userID, role, false).
		Count(&count).Error
	return count, err
}

// MarkRead only touches rows addressed directly to the user; role-wide rows
// stay unread since they are shared.
func (r *NotificationRepository) MarkRead(id, userID int64) error {
	return r.db.Table("notifications").
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true).Error
}

func (r *NotificationRepository) MarkAllRead(userID int64) error {
	return r.db.Table("notifications").
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
}
