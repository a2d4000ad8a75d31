package entitlement

import (
	"context"
	"time"

	bookingdm "github.com/mohamedahmedessam757/futurethinking-backend/internal/core/datamodel/booking"
	catalogdm "github.com/mohamedahmedessam757/futurethinking-backend/internal/core/datamodel/catalog"
	txdm "github.com/mohamedahmedessam757/futurethinking-backend/internal/core/datamodel/transaction"
)

type ServiceAPI interface {
	GrantForTransaction(ctx context.Context, t *txdm.Transaction) error
}

type CourseRepository interface {
	GetCourse(id int64) (*catalogdm.Course, error)
	// InsertEnrollment inserts unless the (course_id, student_id) pair already
	// exists; returns whether a row was actually inserted.
	InsertEnrollment(e *catalogdm.Enrollment) (bool, error)
	AddCourseRevenue(courseID int64, amountHalalas int64) error
}

type BookRepository interface {
	GetBook(id int64) (*catalogdm.Book, error)
	// InsertOwnership inserts unless the (book_id, user_id) pair already
	// exists; returns whether a row was actually inserted.
	InsertOwnership(o *catalogdm.BookOwnership) (bool, error)
}

type AppointmentCreator interface {
	CreateAppointment(a *bookingdm.Appointment) error
}

type SubscriptionUpdater interface {
	UpdateSubscription(userID int64, tier string, expiresAt time.Time) error
}

// Notifier writes notification rows; failures are the caller's to log.
type Notifier interface {
	NotifyUser(ctx context.Context, userID int64, kind, titleAr, titleEn, bodyAr, bodyEn string, data map[string]interface{}) error
	NotifyRole(ctx context.Context, role string, kind, titleAr, titleEn, bodyAr, bodyEn string, data map[string]interface{}) error
}
