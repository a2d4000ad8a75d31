package user

import (
	"time"

	userdm "github.com/mohamedahmedessam757/futurethinking-backend/internal/core/datamodel/user"
)

type Repository interface {
	GetByID(id int64) (*userdm.User, error)
	UpdateProfile(u *userdm.User) error
	UpdateSubscription(userID int64, tier string, expiresAt *time.Time) error
	ExpireSubscriptions(now time.Time) (int64, error)
}

type ServiceAPI interface {
	Profile(id int64) (*userdm.User, error)
	UpdateProfile(id int64, dto *UpdateProfileDTO) (*userdm.User, error)
	UpdateSubscription(userID int64, tier string, expiresAt time.Time) error
	SweepExpiredSubscriptions() (int64, error)
}
