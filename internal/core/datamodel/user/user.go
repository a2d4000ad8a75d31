package user

import "time"

const (
	RoleStudent    = "student"
	RoleConsultant = "consultant"
	RoleAdmin      = "admin"
)

const (
	TierFree    = "free"
	TierMonthly = "monthly"
	TierYearly  = "yearly"
)

type User struct {
	ID                    int64      `gorm:"primaryKey"`
	Email                 string     `gorm:"column:email;uniqueIndex;not null"`
	Name                  string     `gorm:"column:name;not null"`
	PasswordHash          string     `gorm:"column:password_hash;not null"`
	Phone                 *string    `gorm:"column:phone"`
	Role                  string     `gorm:"column:role;default:student"`
	Locale                string     `gorm:"column:locale;default:ar"`
	SubscriptionTier      string     `gorm:"column:subscription_tier;default:free"`
	SubscriptionExpiresAt *time.Time `gorm:"column:subscription_expires_at"`
	IsActive              bool       `gorm:"column:is_active;default:true"`
	CreatedAt             time.Time  `gorm:"column:created_at;default:now()"`
	UpdatedAt             time.Time  `gorm:"column:updated_at;default:now()"`
}

type Permission struct {
	ID          int64     `gorm:"primaryKey"`
	Name        string    `gorm:"column:name;uniqueIndex;not null"`
	Description string    `gorm:"column:description"`
	CreatedAt   time.Time `gorm:"column:created_at;default:now()"`
}

type UserPermission struct {
	ID           int64     `gorm:"primaryKey"`
	UserID       int64     `gorm:"column:user_id;not null"`
	PermissionID int64     `gorm:"column:permission_id;not null"`
	GrantedBy    *int64    `gorm:"column:granted_by"`
	CreatedAt    time.Time `gorm:"column:created_at;default:now()"`
}
