package entitlement

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mohamedahmedessam757/futurethinking-backend/internal/core/events"

	bookingdm "github.com/mohamedahmedessam757/futurethinking-backend/internal/core/datamodel/booking"
	catalogdm "github.com/mohamedahmedessam757/futurethinking-backend/internal/core/datamodel/catalog"
	txdm "github.com/mohamedahmedessam757/futurethinking-backend/internal/core/datamodel/transaction"
	userdm "github.com/mohamedahmedessam757/futurethinking-backend/internal/core/datamodel/user"
)

// Purchases at or above this amount additionally notify the admin role.
const highValueThresholdHalalas = 100_000

type Service struct {
	courses       CourseRepository
	books         BookRepository
	appointments  AppointmentCreator
	subscriptions SubscriptionUpdater
	notifier      Notifier
	eventBus      *events.EventBus
	logger        *slog.Logger
}

func NewService(
	courses CourseRepository,
	books BookRepository,
	appointments AppointmentCreator,
	subscriptions SubscriptionUpdater,
	notifier Notifier,
	eventBus *events.EventBus,
	logger *slog.Logger,
) *Service {
	return &Service{
		courses:       courses,
		books:         books,
		appointments:  appointments,
		subscriptions: subscriptions,
		notifier:      notifier,
		eventBus:      eventBus,
		logger:        logger,
	}
}

// GrantForTransaction applies whatever a paid transaction bought. Course and
// book grants are idempotent on the datastore's pair constraint; consultation
// appointments are a plain insert, so a redelivered webhook creates a second
// row.
func (s *Service) GrantForTransaction(ctx context.Context, t *txdm.Transaction) error {
	s.logger.Info("granting entitlement",
		"transaction_id", t.ID,
		"user_id", t.UserID,
		"item_type", t.ItemType,
		"item_id", t.ItemID)

	var err error
	switch t.ItemType {
	case txdm.ItemTypeCourse:
		err = s.grantCourse(ctx, t)
	case txdm.ItemTypeBook:
		err = s.grantBook(ctx, t)
	case txdm.ItemTypeConsultation:
		err = s.grantConsultation(ctx, t)
	case txdm.ItemTypeSubscription:
		err = s.grantSubscription(ctx, t)
	default:
		err = fmt.Errorf("unknown item type: %s", t.ItemType)
	}

	if err != nil {
		return err
	}

	if s.eventBus != nil {
		event := events.NewEntitlementGrantedEvent(t.ID, t.UserID, t.ItemType, t.ItemID)
		s.eventBus.Publish(ctx, event)
	}

	if t.AmountHalalas >= highValueThresholdHalalas {
		s.notifyAdmins(ctx, t)
	}

	return nil
}

func (s *Service) grantCourse(ctx context.Context, t *txdm.Transaction) error {
	course, err := s.courses.GetCourse(t.ItemID)
	if err != nil {
		return fmt.Errorf("course %d not found for transaction %d: %w", t.ItemID, t.ID, err)
	}

	enrollment := &catalogdm.Enrollment{
		CourseID:      course.ID,
		StudentID:     t.UserID,
		TransactionID: &t.ID,
		AmountPaid:    t.AmountHalalas,
	}

	inserted, err := s.courses.InsertEnrollment(enrollment)
	if err != nil {
		return fmt.Errorf("failed to enroll student %d in course %d: %w", t.UserID, course.ID, err)
	}

	if !inserted {
		s.logger.Info("student already enrolled, skipping counters",
			"course_id", course.ID,
			"student_id", t.UserID,
			"transaction_id", t.ID)
		return nil
	}

	if err := s.courses.AddCourseRevenue(course.ID, t.AmountHalalas); err != nil {
		s.logger.Error("failed to update course revenue", "error", err, "course_id", course.ID)
	}

	s.notify(ctx, t.UserID, "enrollment",
		"تم تفعيل اشتراكك في الدورة",
		"Your course enrollment is active",
		fmt.Sprintf("تم تسجيلك في دورة %s", course.TitleAr),
		fmt.Sprintf("You are now enrolled in %s", t.ItemName),
		map[string]interface{}{"course_id": course.ID, "transaction_id": t.ID})

	if course.ConsultantID != nil {
		s.notify(ctx, *course.ConsultantID, "enrollment",
			"طالب جديد في دورتك",
			"New student in your course",
			fmt.Sprintf("انضم طالب جديد إلى دورة %s", course.TitleAr),
			fmt.Sprintf("A new student enrolled in %s", t.ItemName),
			map[string]interface{}{"course_id": course.ID})
	}

	return nil
}

func (s *Service) grantBook(ctx context.Context, t *txdm.Transaction) error {
	book, err := s.books.GetBook(t.ItemID)
	if err != nil {
		return fmt.Errorf("book %d not found for transaction %d: %w", t.ItemID, t.ID, err)
	}

	ownership := &catalogdm.BookOwnership{
		BookID:        book.ID,
		UserID:        t.UserID,
		TransactionID: &t.ID,
		AmountPaid:    t.AmountHalalas,
	}

	inserted, err := s.books.InsertOwnership(ownership)
	if err != nil {
		return fmt.Errorf("failed to grant book %d to user %d: %w", book.ID, t.UserID, err)
	}

	if !inserted {
		s.logger.Info("book already owned",
			"book_id", book.ID,
			"user_id", t.UserID,
			"transaction_id", t.ID)
		return nil
	}

	s.notify(ctx, t.UserID, "purchase",
		"الكتاب متاح الآن",
		"Your e-book is ready",
		fmt.Sprintf("يمكنك الآن تحميل كتاب %s", book.TitleAr),
		fmt.Sprintf("You can now download %s", t.ItemName),
		map[string]interface{}{"book_id": book.ID, "transaction_id": t.ID})

	return nil
}

func (s *Service) grantConsultation(ctx context.Context, t *txdm.Transaction) error {
	appointment := &bookingdm.Appointment{
		ConsultantID:  t.ItemID,
		ClientID:      t.UserID,
		TransactionID: &t.ID,
		Topic:         t.ItemName,
		Status:        bookingdm.StatusScheduled,
	}

	if err := s.appointments.CreateAppointment(appointment); err != nil {
		return fmt.Errorf("failed to create appointment for transaction %d: %w", t.ID, err)
	}

	s.notify(ctx, t.UserID, "booking",
		"تم تأكيد حجز الاستشارة",
		"Your consultation is booked",
		fmt.Sprintf("تم تأكيد حجز استشارة: %s", t.ItemName),
		fmt.Sprintf("Your consultation is confirmed: %s", t.ItemName),
		map[string]interface{}{"appointment_id": appointment.ID, "transaction_id": t.ID})

	s.notify(ctx, t.ItemID, "booking",
		"حجز استشارة جديد",
		"New consultation booked",
		fmt.Sprintf("لديك حجز استشارة جديد: %s", t.ItemName),
		fmt.Sprintf("A client booked a consultation: %s", t.ItemName),
		map[string]interface{}{"appointment_id": appointment.ID})

	return nil
}

func (s *Service) grantSubscription(ctx context.Context, t *txdm.Transaction) error {
	tier, duration := subscriptionPlan(t.ItemID)
	expiresAt := time.Now().UTC().Add(duration)

	if err := s.subscriptions.UpdateSubscription(t.UserID, tier, expiresAt); err != nil {
		return fmt.Errorf("failed to update subscription for user %d: %w", t.UserID, err)
	}

	s.notify(ctx, t.UserID, "subscription",
		"تم تفعيل اشتراكك",
		"Your subscription is active",
		fmt.Sprintf("اشتراكك فعال حتى %s", expiresAt.Format("2006-01-02")),
		fmt.Sprintf("Your subscription is active until %s", expiresAt.Format("2006-01-02")),
		map[string]interface{}{"tier": tier, "expires_at": expiresAt})

	return nil
}

// subscriptionPlan maps the subscription item id to a tier and duration.
func subscriptionPlan(itemID int64) (string, time.Duration) {
	if itemID == 2 {
		return userdm.TierYearly, 365 * 24 * time.Hour
	}
	return userdm.TierMonthly, 30 * 24 * time.Hour
}

func (s *Service) notify(ctx context.Context, userID int64, kind, titleAr, titleEn, bodyAr, bodyEn string, data map[string]interface{}) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyUser(ctx, userID, kind, titleAr, titleEn, bodyAr, bodyEn, data); err != nil {
		s.logger.Error("failed to write notification", "error", err, "user_id", userID, "kind", kind)
	}
}

func (s *Service) notifyAdmins(ctx context.Context, t *txdm.Transaction) {
	if s.notifier == nil {
		return
	}
	err := s.notifier.NotifyRole(ctx, userdm.RoleAdmin, "payment",
		"عملية شراء كبيرة",
		"High-value purchase",
		fmt.Sprintf("عملية شراء بمبلغ %d هللة: %s", t.AmountHalalas, t.ItemName),
		fmt.Sprintf("Purchase of %d halalas: %s", t.AmountHalalas, t.ItemName),
		map[string]interface{}{"transaction_id": t.ID, "amount": t.AmountHalalas})
	if err != nil {
		s.logger.Error("failed to notify admins", "error", err, "transaction_id", t.ID)
	}
}
