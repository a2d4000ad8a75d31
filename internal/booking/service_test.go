package booking_test

import (
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mohamedahmedessam757/futurethinking-backend/internal"
	"github.com/mohamedahmedessam757/futurethinking-backend/internal/booking"

	bookingdm "github.com/mohamedahmedessam757/futurethinking-backend/internal/core/datamodel/booking"
)

func TestBooking(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Booking Module Suite")
}

// Mock repository for testing
type mockBookingRepository struct {
	appointments map[int64]*bookingdm.Appointment
	nextID       int64
	createError  error
	updateError  error
	updateCalls  int
}

func newMockBookingRepository() *mockBookingRepository {
	return &mockBookingRepository{
		appointments: make(map[int64]*bookingdm.Appointment),
		nextID:       1,
	}
}

func (m *mockBookingRepository) CreateAppointment(a *bookingdm.Appointment) error {
	if m.createError != nil {
		return m.createError
	}
	a.ID = m.nextID
	m.nextID++
	a.CreatedAt = time.Now()
	m.appointments[a.ID] = a
	return nil
}

func (m *mockBookingRepository) GetAppointment(id int64) (*bookingdm.Appointment, error) {
	a, exists := m.appointments[id]
	if !exists {
		return nil, errors.New("appointment not found")
	}
	return a, nil
}

func (m *mockBookingRepository) ListForClient(clientID int64) ([]*bookingdm.Appointment, error) {
	var out []*bookingdm.Appointment
	for _, a := range m.appointments {
		if a.ClientID == clientID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockBookingRepository) ListForConsultant(consultantID int64, from, to time.Time) ([]*bookingdm.Appointment, error) {
	var out []*bookingdm.Appointment
	for _, a := range m.appointments {
		if a.ConsultantID != consultantID {
			continue
		}
		if a.ScheduledAt == nil || (!a.ScheduledAt.Before(from) && a.ScheduledAt.Before(to)) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockBookingRepository) UpdateAppointment(a *bookingdm.Appointment) error {
	if m.updateError != nil {
		return m.updateError
	}
	m.updateCalls++
	m.appointments[a.ID] = a
	return nil
}

var _ = Describe("BookingService", func() {
	var (
		service  *booking.Service
		mockRepo *mockBookingRepository
	)

	BeforeEach(func() {
		mockRepo = newMockBookingRepository()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = booking.NewService(mockRepo, logger)
	})

	seedAppointment := func(consultantID, clientID int64, status string) *bookingdm.Appointment {
		a := &bookingdm.Appointment{
			ConsultantID: consultantID,
			ClientID:     clientID,
			Topic:        "استشارة",
			DurationMins: 60,
			Status:       status,
		}
		Expect(mockRepo.CreateAppointment(a)).To(Succeed())
		return a
	}

	Describe("Book", func() {
		Context("when the request is valid", func() {
			It("should create a scheduled appointment with a default duration", func() {
				// When
				a, err := service.Book(42, &booking.BookAppointmentDTO{
					ConsultantID: 5,
					Topic:        "جلسة تعريفية",
				})

				// Then
				Expect(err).ToNot(HaveOccurred())
				Expect(a.ID).To(BeNumerically(">", 0))
				Expect(a.ClientID).To(Equal(int64(42)))
				Expect(a.ConsultantID).To(Equal(int64(5)))
				Expect(a.Status).To(Equal(bookingdm.StatusScheduled))
				Expect(a.DurationMins).To(Equal(60))
			})

			It("should keep the requested slot and duration", func() {
				// Given
				slot := time.Now().Add(48 * time.Hour)

				// When
				a, err := service.Book(42, &booking.BookAppointmentDTO{
					ConsultantID: 5,
					Topic:        "جلسة متابعة",
					ScheduledAt:  &slot,
					DurationMins: 90,
				})

				// Then
				Expect(err).ToNot(HaveOccurred())
				Expect(a.ScheduledAt).ToNot(BeNil())
				Expect(a.DurationMins).To(Equal(90))
			})
		})

		Context("when the request is invalid", func() {
			It("should reject a missing consultant", func() {
				// When
				a, err := service.Book(42, &booking.BookAppointmentDTO{Topic: "جلسة"})

				// Then
				Expect(err).To(HaveOccurred())
				Expect(a).To(BeNil())
			})

			It("should reject a slot in the past", func() {
				// Given
				past := time.Now().Add(-time.Hour)

				// When
				a, err := service.Book(42, &booking.BookAppointmentDTO{
					ConsultantID: 5,
					Topic:        "جلسة",
					ScheduledAt:  &past,
				})

				// Then
				Expect(err).To(HaveOccurred())
				Expect(a).To(BeNil())
			})

			It("should reject an out-of-range duration", func() {
				// When
				a, err := service.Book(42, &booking.BookAppointmentDTO{
					ConsultantID: 5,
					Topic:        "جلسة",
					DurationMins: 10,
				})

				// Then
				Expect(err).To(HaveOccurred())
				Expect(a).To(BeNil())
			})
		})
	})

	Describe("Schedule", func() {
		Context("when the assigned consultant schedules", func() {
			It("should set the slot and meeting link", func() {
				// Given
				a := seedAppointment(5, 42, bookingdm.StatusScheduled)
				slot := time.Now().Add(24 * time.Hour)

				// When
				updated, err := service.Schedule(a.ID, 5, &booking.ScheduleDTO{
					ScheduledAt: slot,
					MeetingURL:  "https://meet.example.com/abc",
				})

				// Then
				Expect(err).ToNot(HaveOccurred())
				Expect(updated.ScheduledAt).ToNot(BeNil())
				Expect(*updated.MeetingURL).To(Equal("https://meet.example.com/abc"))
			})
		})

		Context("when another consultant tries to schedule", func() {
			It("should deny access", func() {
				// Given
				a := seedAppointment(5, 42, bookingdm.StatusScheduled)

				// When
				updated, err := service.Schedule(a.ID, 99, &booking.ScheduleDTO{
					ScheduledAt: time.Now().Add(24 * time.Hour),
				})

				// Then
				Expect(err).To(MatchError(internal.ErrUnauthorizedAccess))
				Expect(updated).To(BeNil())
			})
		})

		Context("when the appointment is cancelled", func() {
			It("should refuse to schedule it", func() {
				// Given
				a := seedAppointment(5, 42, bookingdm.StatusCancelled)

				// When
				updated, err := service.Schedule(a.ID, 5, &booking.ScheduleDTO{
					ScheduledAt: time.Now().Add(24 * time.Hour),
				})

				// Then
				Expect(err).To(HaveOccurred())
				Expect(updated).To(BeNil())
			})
		})

		Context("when the appointment does not exist", func() {
			It("should return not found", func() {
				// When
				updated, err := service.Schedule(999, 5, &booking.ScheduleDTO{
					ScheduledAt: time.Now().Add(24 * time.Hour),
				})

				// Then
				Expect(err).To(MatchError(internal.ErrAppointmentNotFound))
				Expect(updated).To(BeNil())
			})
		})
	})

	Describe("Cancel", func() {
		Context("when the client cancels their own appointment", func() {
			It("should mark it cancelled", func() {
				// Given
				a := seedAppointment(5, 42, bookingdm.StatusScheduled)

				// When
				cancelled, err := service.Cancel(a.ID, 42, false)

				// Then
				Expect(err).ToNot(HaveOccurred())
				Expect(cancelled.Status).To(Equal(bookingdm.StatusCancelled))
			})
		})

		Context("when the assigned consultant cancels", func() {
			It("should mark it cancelled", func() {
				// Given
				a := seedAppointment(5, 42, bookingdm.StatusScheduled)

				// When
				cancelled, err := service.Cancel(a.ID, 5, true)

				// Then
				Expect(err).ToNot(HaveOccurred())
				Expect(cancelled.Status).To(Equal(bookingdm.StatusCancelled))
			})
		})

		Context("when an unrelated user tries to cancel", func() {
			It("should deny access", func() {
				// Given
				a := seedAppointment(5, 42, bookingdm.StatusScheduled)

				// When
				cancelled, err := service.Cancel(a.ID, 99, false)

				// Then
				Expect(err).To(MatchError(internal.ErrUnauthorizedAccess))
				Expect(cancelled).To(BeNil())
			})

			It("should not let the consultant id pass without the consultant flag", func() {
				// Given
				a := seedAppointment(5, 42, bookingdm.StatusScheduled)

				// When
				cancelled, err := service.Cancel(a.ID, 5, false)

				// Then
				Expect(err).To(MatchError(internal.ErrUnauthorizedAccess))
				Expect(cancelled).To(BeNil())
			})
		})

		Context("when the appointment is already cancelled", func() {
			It("should return it unchanged without another write", func() {
				// Given
				a := seedAppointment(5, 42, bookingdm.StatusCancelled)
				writesBefore := mockRepo.updateCalls

				// When
				cancelled, err := service.Cancel(a.ID, 42, false)

				// Then
				Expect(err).ToNot(HaveOccurred())
				Expect(cancelled.Status).To(Equal(bookingdm.StatusCancelled))
				Expect(mockRepo.updateCalls).To(Equal(writesBefore))
			})
		})

		Context("when the appointment is completed", func() {
			It("should refuse to cancel it", func() {
				// Given
				a := seedAppointment(5, 42, bookingdm.StatusCompleted)

				// When
				cancelled, err := service.Cancel(a.ID, 42, false)

				// Then
				Expect(err).To(HaveOccurred())
				Expect(cancelled).To(BeNil())
			})
		})
	})

	Describe("ConsultantSchedule", func() {
		It("should include unscheduled appointments in the window", func() {
			// Given
			seedAppointment(5, 42, bookingdm.StatusScheduled) // no slot
			scheduled := seedAppointment(5, 43, bookingdm.StatusScheduled)
			slot := time.Now().Add(24 * time.Hour)
			scheduled.ScheduledAt = &slot
			seedAppointment(99, 42, bookingdm.StatusScheduled)

			// When
			list, err := service.ConsultantSchedule(5, time.Now(), time.Now().Add(7*24*time.Hour))

			// Then
			Expect(err).ToNot(HaveOccurred())
			Expect(list).To(HaveLen(2))
		})
	})
})
