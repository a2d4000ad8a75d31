package booking

import (
	"time"

	bookingdm "github.com/mohamedahmedessam757/futurethinking-backend/internal/core/datamodel/booking"
)

type Repository interface {
	CreateAppointment(a *bookingdm.Appointment) error
	GetAppointment(id int64) (*bookingdm.Appointment, error)
	ListForClient(clientID int64) ([]*bookingdm.Appointment, error)
	ListForConsultant(consultantID int64, from, to time.Time) ([]*bookingdm.Appointment, error)
	UpdateAppointment(a *bookingdm.Appointment) error
}

type ServiceAPI interface {
	Book(clientID int64, dto *BookAppointmentDTO) (*bookingdm.Appointment, error)
	MyAppointments(clientID int64) ([]*bookingdm.Appointment, error)
	ConsultantSchedule(consultantID int64, from, to time.Time) ([]*bookingdm.Appointment, error)
	Schedule(id, consultantID int64, dto *ScheduleDTO) (*bookingdm.Appointment, error)
	Cancel(id, userID int64, isConsultant bool) (*bookingdm.Appointment, error)
}
