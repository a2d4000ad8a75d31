package user

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/mohamedahmedessam757/futurethinking-backend/internal"
	userdm "github.com/mohamedahmedessam757/futurethinking-backend/internal/core/datamodel/user"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) Profile(id int64) (*userdm.User, error) {
	u, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.NewNotFoundError("user not found", internal.ErrCodeUnauthorizedAccess)
	}
	return u, nil
}

func (s *Service) UpdateProfile(id int64, dto *UpdateProfileDTO) (*userdm.User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	u, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.NewNotFoundError("user not found", internal.ErrCodeUnauthorizedAccess)
	}

	u.Name = dto.Name
	if dto.Phone != "" {
		u.Phone = &dto.Phone
	}
	if dto.Locale != "" {
		u.Locale = dto.Locale
	}

	if err := s.repo.UpdateProfile(u); err != nil {
		s.logger.Error("failed to update profile", "error", err, "user_id", id)
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return u, nil
}

// UpdateSubscription is the entitlement granter's write path for paid
// subscription plans.
func (s *Service) UpdateSubscription(userID int64, tier string, expiresAt time.Time) error {
	if err := s.repo.UpdateSubscription(userID, tier, &expiresAt); err != nil {
		s.logger.Error("failed to update subscription", "error", err, "user_id", userID, "tier", tier)
		return fmt.Errorf("failed to update subscription: %w", err)
	}

	s.logger.Info("subscription updated", "user_id", userID, "tier", tier, "expires_at", expiresAt)
	return nil
}

// SweepExpiredSubscriptions downgrades lapsed subscriptions back to free.
// Called on a schedule by the worker.
func (s *Service) SweepExpiredSubscriptions() (int64, error) {
	count, err := s.repo.ExpireSubscriptions(time.Now().UTC())
	if err != nil {
		s.logger.Error("subscription sweep failed", "error", err)
		return 0, fmt.Errorf("subscription sweep failed: %w", err)
	}

	if count > 0 {
		s.logger.Info("expired subscriptions downgraded", "count", count)
	}
	return count, nil
}
