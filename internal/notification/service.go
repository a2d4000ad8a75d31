package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	notifdm "github.com/mohamedahmedessam757/futurethinking-backend/internal/core/datamodel/notification"
	"github.com/mohamedahmedessam757/futurethinking-backend/internal/metrics"
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

func (s *Service) NotifyUser(ctx context.Context, userID int64, kind, titleAr, titleEn, bodyAr, bodyEn string, data map[string]interface{}) error {
	n := &notifdm.Notification{
		UserID:  &userID,
		Kind:    kind,
		TitleAr: titleAr,
		TitleEn: titleEn,
		BodyAr:  bodyAr,
		BodyEn:  bodyEn,
	}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("failed to marshal notification data: %w", err)
		}
		n.Data = raw
	}

	if err := s.repo.Create(n); err != nil {
		s.logger.Error("failed to write notification", "error", err, "user_id", userID, "kind", kind)
		return fmt.Errorf("failed to write notification: %w", err)
	}

	metrics.NotificationsTotal.Inc()
	s.logger.Info("notification written", "notification_id", n.ID, "user_id", userID, "kind", kind)
	return nil
}

// NotifyRole writes one row targeting every user with the given role;
// readers merge role rows with their own.
func (s *Service) NotifyRole(ctx context.Context, role string, kind, titleAr, titleEn, bodyAr, bodyEn string, data map[string]interface{}) error {
	n := &notifdm.Notification{
		TargetRole: &role,
		Kind:       kind,
		TitleAr:    titleAr,
		TitleEn:    titleEn,
		BodyAr:     bodyAr,
		BodyEn:     bodyEn,
	}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("failed to marshal notification data: %w", err)
		}
		n.Data = raw
	}

	if err := s.repo.Create(n); err != nil {
		s.logger.Error("failed to write role notification", "error", err, "role", role, "kind", kind)
		return fmt.Errorf("failed to write role notification: %w", err)
	}

	metrics.NotificationsTotal.Inc()
	s.logger.Info("role notification written", "notification_id", n.ID, "role", role, "kind", kind)
	return nil
}

func (s *Service) ListMine(userID int64, role string, offset, limit int) ([]*notifdm.Notification, error) {
	return s.repo.ListForUser(userID, role, offset, limit)
}

func (s *Service) UnreadCount(userID int64, role string) (int64, error) {
	return s.repo.CountUnread(userID, role)
}

func (s *Service) MarkRead(id, userID int64) error {
	return s.repo.MarkRead(id, userID)
}

func (s *Service) MarkAllRead(userID int64) error {
	return s.repo.MarkAllRead(userID)
}
