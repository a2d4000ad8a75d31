package postgres

import (
	"time"

	"gorm.io/gorm"

	bookingpkg "github.com/mohamedahmedessam757/futurethinking-backend/internal/booking"
	bookingdm "github.com/mohamedahmedessam757/futurethinking-backend/internal/core/datamodel/booking"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) bookingpkg.Repository {
	return &BookingRepository{
		db: db,
	}
}

// CreateAppointment is a plain insert. The payment flow calls it once per
// applied paid status, so a redelivered webhook that re-applies a status will
// not reach it, but there is no database-level duplicate guard.
func (r *BookingRepository) CreateAppointment(a *bookingdm.Appointment) error {
	return r.db.Table("appointments").Create(a).Error
}

func (r *BookingRepository) GetAppointment(id int64) (*bookingdm.Appointment, error) {
	var a bookingdm.Appointment
	if err := r.db.Table("appointments").First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *BookingRepository) ListForClient(clientID int64) ([]*bookingdm.Appointment, error) {
	var appointments []*bookingdm.Appointment
	err := r.db.Table("appointments").
		Where("client_id = ?", clientID).
		Order("created_at DESC").
		Find(&appointments).Error
	return appointments, err
}

func (r *BookingRepository) ListForConsultant(consultantID int64, from, to time.Time) ([]*bookingdm.Appointment, error) {
	var appointments []*bookingdm.Appointment
	err := r.db.Table("appointments").
		Where("consultant_id = ?", consultantID).
		Where("scheduled_at IS NULL OR (scheduled_at >= ? AND scheduled_at < ?)", from, to).
		Order("scheduled_at ASC NULLS FIRST").
		Find(&appointments).Error
	return appointments, err
}

func (r *BookingRepository) UpdateAppointment(a *bookingdm.Appointment) error {
	a.UpdatedAt = time.Now().UTC()
	return r.db.Table("appointments").Save(a).Error
}
