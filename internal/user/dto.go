package user

import (
	"time"

	"github.com/mohamedahmedessam757/futurethinking-backend/internal"
	"github.com/mohamedahmedessam757/futurethinking-backend/internal/core/common/validation"
	userdm "github.com/mohamedahmedessam757/futurethinking-backend/internal/core/datamodel/user"
)

type UpdateProfileDTO struct {
	Name   string `json:"name"`
	Phone  string `json:"phone,omitempty"`
	Locale string `json:"locale,omitempty"`
}

func (d *UpdateProfileDTO) Validate() error {
	validator := validation.NewValidator()

	validator.Field("name", d.Name).Required().MaxLength(255)
	if d.Locale != "" {
		validator.Field("locale", d.Locale).OneOf([]string{"ar", "en"}, internal.ErrCodeValidationFailed)
	}

	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

type ProfileResponse struct {
	ID                    int64      `json:"id"`
	Email                 string     `json:"email"`
	Name                  string     `json:"name"`
	Phone                 string     `json:"phone,omitempty"`
	Role                  string     `json:"role"`
	Locale                string     `json:"locale"`
	SubscriptionTier      string     `json:"subscription_tier"`
	SubscriptionExpiresAt *time.Time `json:"subscription_expires_at,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
}

func ToProfileResponse(u *userdm.User) ProfileResponse {
	resp := ProfileResponse{
		ID:                    u.ID,
		Email:                 u.Email,
		Name:                  u.Name,
		Role:                  u.Role,
		Locale:                u.Locale,
		SubscriptionTier:      u.SubscriptionTier,
		SubscriptionExpiresAt: u.SubscriptionExpiresAt,
		CreatedAt:             u.CreatedAt,
	}
	if u.Phone != nil {
		resp.Phone = *u.Phone
	}
	return resp
}
