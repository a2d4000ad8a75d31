package booking

import (
	"time"

	"github.com/mohamedahmedessam757/futurethinking-backend/internal"
	"github.com/mohamedahmedessam757/futurethinking-backend/internal/core/common/validation"
	bookingdm "github.com/mohamedahmedessam757/futurethinking-backend/internal/core/datamodel/booking"
)

// BookAppointmentDTO is the free booking path; paid consultations are created
// by the payment flow instead.
type BookAppointmentDTO struct {
	ConsultantID int64      `json:"consultant_id"`
	Topic        string     `json:"topic"`
	ScheduledAt  *time.Time `json:"scheduled_at,omitempty"`
	DurationMins int        `json:"duration_mins,omitempty"`
}

func (d *BookAppointmentDTO) Validate() error {
	validator := validation.NewValidator()

	validator.Field("consultant_id", d.ConsultantID).Required().MinInt(1, internal.ErrCodeValidationFailed)
	validator.Field("topic", d.Topic).Required().MaxLength(500)
	if d.ScheduledAt != nil {
		validator.Field("scheduled_at", *d.ScheduledAt).NotPast()
	}
	if d.DurationMins != 0 {
		validator.Field("duration_mins", int64(d.DurationMins)).
			MinInt(15, internal.ErrCodeValidationFailed).
			MaxInt(240, internal.ErrCodeValidationFailed)
	}

	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// ScheduleDTO lets the consultant fix the slot and attach a meeting link.
type ScheduleDTO struct {
	ScheduledAt  time.Time `json:"scheduled_at"`
	DurationMins int       `json:"duration_mins,omitempty"`
	MeetingURL   string    `json:"meeting_url,omitempty"`
}

func (d *ScheduleDTO) Validate() error {
	validator := validation.NewValidator()

	validator.Field("scheduled_at", d.ScheduledAt).NotPast()
	if d.DurationMins != 0 {
		validator.Field("duration_mins", int64(d.DurationMins)).
			MinInt(15, internal.ErrCodeValidationFailed).
			MaxInt(240, internal.ErrCodeValidationFailed)
	}

	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

type AppointmentResponse struct {
	ID            int64      `json:"id"`
	ConsultantID  int64      `json:"consultant_id"`
	ClientID      int64      `json:"client_id"`
	TransactionID *int64     `json:"transaction_id,omitempty"`
	Topic         string     `json:"topic"`
	ScheduledAt   *time.Time `json:"scheduled_at,omitempty"`
	DurationMins  int        `json:"duration_mins"`
	Status        string     `json:"status"`
	MeetingURL    string     `json:"meeting_url,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func ToResponse(a *bookingdm.Appointment) AppointmentResponse {
	resp := AppointmentResponse{
		ID:            a.ID,
		ConsultantID:  a.ConsultantID,
		ClientID:      a.ClientID,
		TransactionID: a.TransactionID,
		Topic:         a.Topic,
		ScheduledAt:   a.ScheduledAt,
		DurationMins:  a.DurationMins,
		Status:        a.Status,
		CreatedAt:     a.CreatedAt,
	}
	if a.MeetingURL != nil {
		resp.MeetingURL = *a.MeetingURL
	}
	return resp
}
