package booking

import "time"

const (
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Appointment has no uniqueness constraint on (consultant_id, client_id,
// scheduled_at); a redelivered webhook inserts a second row for the same
// paid transaction.
type Appointment struct {
	ID            int64      `gorm:"primaryKey"`
	ConsultantID  int64      `gorm:"column:consultant_id;not null"`
	ClientID      int64      `gorm:"column:client_id;not null"`
	TransactionID *int64     `gorm:"column:transaction_id"`
	Topic         string     `gorm:"column:topic"`
	ScheduledAt   *time.Time `gorm:"column:scheduled_at"`
	DurationMins  int        `gorm:"column:duration_mins;not null;default:60"`
	Status        string     `gorm:"column:status;default:scheduled"`
	MeetingURL    *string    `gorm:"column:meeting_url"`
	CreatedAt     time.Time  `gorm:"column:created_at;default:now()"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;default:now()"`
}
