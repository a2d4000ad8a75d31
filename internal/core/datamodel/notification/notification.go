package notification

import (
	"time"

	"gorm.io/datatypes"
)

type Notification struct {
	ID         int64          `gorm:"primaryKey"`
	UserID     *int64         `gorm:"column:user_id"`
	TargetRole *string        `gorm:"column:target_role"`
	TitleAr    string         `gorm:"column:title_ar;not null"`
	TitleEn    string         `gorm:"column:title_en"`
	BodyAr     string         `gorm:"column:body_ar"`
	BodyEn     string         `gorm:"column:body_en"`
	Kind       string         `gorm:"column:kind;not null"`
	Data       datatypes.JSON `gorm:"column:data;type:jsonb"`
	IsRead     bool           `gorm:"column:is_read;default:false"`
	CreatedAt  time.Time      `gorm:"column:created_at;default:now()"`
}
