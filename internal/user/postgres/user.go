package postgres

import (
	"time"

	"gorm.io/gorm"

	userdm "github.com/mohamedahmedessam757/futurethinking-backend/internal/core/datamodel/user"
	userpkg "github.com/mohamedahmedessam757/futurethinking-backend/internal/user"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) userpkg.Repository {
	return &UserRepository{
		db: db,
	}
}

func (r *UserRepository) GetByID(id int64) (*userdm.User, error) {
	var u userdm.User
	if err := r.db.Table("users").First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) UpdateProfile(u *userdm.User) error {
	return r.db.Table("users").Where("id = ?", u.ID).Updates(map[string]interface{}{
		"name":       u.Name,
		"phone":      u.Phone,
		"locale":     u.Locale,
		"updated_at": time.Now().UTC(),
	}).Error
}

func (r *UserRepository) UpdateSubscription(userID int64, tier string, expiresAt *time.Time) error {
	updates := map[string]interface{}{
		"subscription_tier": tier,
		"updated_at":        time.Now().UTC(),
	}
	if expiresAt != nil {
		updates["subscription_expires_at"] = *expiresAt
	} else {
		updates["subscription_expires_at"] = nil
	}
	return r.db.Table("users").Where("id = ?", userID).Updates(updates).Error
}

func (r *UserRepository) ExpireSubscriptions(now time.Time) (int64, error) {
	result := r.db.Table("users").
		Where("subscription_tier <> ? AND subscription_expires_at IS NOT NULL AND subscription_expires_at < ?",
			userdm.TierFree, now).
		Updates(map[string]interface{}{
			"subscription_tier": userdm.TierFree,
			"updated_at":        time.Now().UTC(),
		})
	return result.RowsAffected, result.Error
}
