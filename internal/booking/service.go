package booking

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/mohamedahmedessam757/futurethinking-backend/internal"
	bookingdm "github.com/mohamedahmedessam757/futurethinking-backend/internal/core/datamodel/booking"
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

// Book creates a free appointment directly; paid consultations go through
// checkout and are inserted by the entitlement granter instead.
func (s *Service) Book(clientID int64, dto *BookAppointmentDTO) (*bookingdm.Appointment, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	appointment := &bookingdm.Appointment{
		ConsultantID: dto.ConsultantID,
		ClientID:     clientID,
		Topic:        dto.Topic,
		ScheduledAt:  dto.ScheduledAt,
		Status:       bookingdm.StatusScheduled,
	}
	if dto.DurationMins != 0 {
		appointment.DurationMins = dto.DurationMins
	} else {
		appointment.DurationMins = 60
	}

	if err := s.repo.CreateAppointment(appointment); err != nil {
		s.logger.Error("failed to create appointment", "error", err, "client_id", clientID, "consultant_id", dto.ConsultantID)
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}

	s.logger.Info("appointment booked", "appointment_id", appointment.ID, "client_id", clientID, "consultant_id", dto.ConsultantID)
	return appointment, nil
}

func (s *Service) MyAppointments(clientID int64) ([]*bookingdm.Appointment, error) {
	return s.repo.ListForClient(clientID)
}

func (s *Service) ConsultantSchedule(consultantID int64, from, to time.Time) ([]*bookingdm.Appointment, error) {
	return s.repo.ListForConsultant(consultantID, from, to)
}

// Schedule sets the slot and meeting link; only the assigned consultant may
// schedule, and cancelled appointments stay cancelled.
func (s *Service) Schedule(id, consultantID int64, dto *ScheduleDTO) (*bookingdm.Appointment, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	appointment, err := s.repo.GetAppointment(id)
	if err != nil {
		return nil, internal.ErrAppointmentNotFound
	}

	if appointment.ConsultantID != consultantID {
		return nil, internal.ErrUnauthorizedAccess
	}
	if appointment.Status == bookingdm.StatusCancelled {
		return nil, internal.NewConflictError("appointment is cancelled", internal.ErrCodeInvalidTransition)
	}

	scheduledAt := dto.ScheduledAt
	appointment.ScheduledAt = &scheduledAt
	if dto.DurationMins != 0 {
		appointment.DurationMins = dto.DurationMins
	}
	if dto.MeetingURL != "" {
		appointment.MeetingURL = &dto.MeetingURL
	}

	if err := s.repo.UpdateAppointment(appointment); err != nil {
		s.logger.Error("failed to schedule appointment", "error", err, "appointment_id", id)
		return nil, fmt.Errorf("failed to schedule appointment: %w", err)
	}

	s.logger.Info("appointment scheduled", "appointment_id", id, "scheduled_at", scheduledAt)
	return appointment, nil
}

// Cancel is allowed to the client or the assigned consultant.
func (s *Service) Cancel(id, userID int64, isConsultant bool) (*bookingdm.Appointment, error) {
	appointment, err := s.repo.GetAppointment(id)
	if err != nil {
		return nil, internal.ErrAppointmentNotFound
	}

	owner := appointment.ClientID == userID
	if isConsultant {
		owner = owner || appointment.ConsultantID == userID
	}
	if !owner {
		return nil, internal.ErrUnauthorizedAccess
	}

	if appointment.Status == bookingdm.StatusCompleted {
		return nil, internal.NewConflictError("appointment is already completed", internal.ErrCodeInvalidTransition)
	}
	if appointment.Status == bookingdm.StatusCancelled {
		return appointment, nil
	}

	appointment.Status = bookingdm.StatusCancelled
	if err := s.repo.UpdateAppointment(appointment); err != nil {
		s.logger.Error("failed to cancel appointment", "error", err, "appointment_id", id)
		return nil, fmt.Errorf("failed to cancel appointment: %w", err)
	}

	s.logger.Info("appointment cancelled", "appointment_id", id, "user_id", userID)
	return appointment, nil
}
