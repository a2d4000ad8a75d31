package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/cors"

	"github.com/mohamedahmedessam757/futurethinking-backend/internal/auth"
	"github.com/mohamedahmedessam757/futurethinking-backend/internal/booking"
	"github.com/mohamedahmedessam757/futurethinking-backend/internal/catalog"
	"github.com/mohamedahmedessam757/futurethinking-backend/internal/checkout"
	"github.com/mohamedahmedessam757/futurethinking-backend/internal/metrics"
	"github.com/mohamedahmedessam757/futurethinking-backend/internal/notification"
	"github.com/mohamedahmedessam757/futurethinking-backend/internal/transaction"
	"github.com/mohamedahmedessam757/futurethinking-backend/internal/transport/middleware"
	"github.com/mohamedahmedessam757/futurethinking-backend/internal/transport/swagger"
	"github.com/mohamedahmedessam757/futurethinking-backend/internal/user"
)

type Handlers struct {
	Auth         *auth.Handler
	RBAC         *auth.RBACAuthorization
	User         *user.Handler
	Catalog      *catalog.Handler
	Checkout     *checkout.Handler
	Webhook      *checkout.WebhookHandler
	ApplePay     *checkout.ApplePayHandler
	Transaction  *transaction.Handler
	Booking      *booking.Handler
	Notification *notification.Handler
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, cache Pinger, h Handlers, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db, cache)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Trace-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.HTTPMetrics)

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())
	router.Handle("/metrics", metrics.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// gateway callback is unauthenticated; payments are matched by
		// metadata and gateway payment id
		if h.Webhook != nil {
			r.Post("/payments/callback", h.Webhook.HandleCallback)
		}

		if h.Auth != nil {
			r.Route("/auth", func(sr chi.Router) {
				sr.Post("/register", h.Auth.Register)
				sr.Post("/login", h.Auth.Login)
				sr.Post("/refresh", h.Auth.RefreshToken)
				sr.Post("/logout", h.Auth.Logout)
			})
		}

		// public catalog browsing
		if h.Catalog != nil {
			r.Get("/courses", h.Catalog.ListCourses)
			r.Get("/courses/{id}", h.Catalog.GetCourse)
			r.Get("/books", h.Catalog.ListBooks)
			r.Get("/books/{id}", h.Catalog.GetBook)
		}

		if h.Auth == nil {
			return
		}

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			if h.User != nil {
				pr.Get("/users/me", h.User.Me)
				pr.Put("/users/me", h.User.UpdateMe)
			}

			if h.Checkout != nil {
				pr.Post("/checkout", h.Checkout.Initiate)
			}
			if h.ApplePay != nil {
				pr.Post("/payments/applepay", h.ApplePay.HandleCharge)
			}

			if h.Transaction != nil {
				pr.Route("/transactions", func(tr chi.Router) {
					tr.Get("/", h.Transaction.ListMine)
					tr.Get("/{id}", h.Transaction.GetByID)

					tr.Group(func(ar chi.Router) {
						ar.Use(h.RBAC.RequireRefundTransactions())
						ar.Post("/{id}/status", h.Transaction.OverrideStatus)
					})
				})
			}

			if h.Catalog != nil {
				pr.Get("/my/courses", h.Catalog.MyCourses)
				pr.Get("/my/books", h.Catalog.MyBooks)
				pr.Get("/books/{id}/download", h.Catalog.DownloadBook)

				pr.Group(func(ar chi.Router) {
					ar.Use(h.RBAC.RequireAdmin())
					ar.Post("/courses", h.Catalog.CreateCourse)
					ar.Put("/courses/{id}", h.Catalog.UpdateCourse)
					ar.Post("/books", h.Catalog.CreateBook)
					ar.Put("/books/{id}", h.Catalog.UpdateBook)
				})
			}

			if h.Booking != nil {
				pr.Route("/appointments", func(br chi.Router) {
					br.Post("/", h.Booking.Book)
					br.Get("/", h.Booking.MyAppointments)
					br.Post("/{id}/cancel", h.Booking.Cancel)
				})

				pr.Group(func(cr chi.Router) {
					cr.Use(h.RBAC.RequireConsultant())
					cr.Get("/consultant/appointments", h.Booking.ConsultantSchedule)
					cr.Put("/consultant/appointments/{id}/schedule", h.Booking.Schedule)
				})
			}

			if h.Notification != nil {
				pr.Route("/notifications", func(nr chi.Router) {
					nr.Get("/", h.Notification.ListMine)
					nr.Get("/unread", h.Notification.UnreadCount)
					nr.Post("/{id}/read", h.Notification.MarkRead)
					nr.Post("/read-all", h.Notification.MarkAllRead)
				})
			}
		})
	})
}
