/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. requestLogger: Structured request logging via logrus
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/reports/*        Report submission and review
  /api/notifications/*  Inbox and unread counts
  /api/messages         Direct messages
  /api/employees/*      Directory management and external sync

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(h.Log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Report routes
		r.Route("/reports", func(r chi.Router) {
			r.Post("/", h.SubmitReport)
			r.Get("/pending", h.PendingReports)
			r.Get("/history", h.ReportHistory)
			r.Get("/employee/{id}", h.EmployeeReports)
			r.Get("/{id}", h.GetReport)
			r.Post("/{id}/approve", h.ApproveReport)
			r.Post("/{id}/reject", h.RejectReport)
			r.Post("/{id}/request-revision", h.RequestRevision)
		})

		// Notification routes
		r.Route("/notifications", func(r chi.Router) {
			r.Get("/{recipientId}", h.ListNotifications)
			r.Get("/{recipientId}/count", h.UnreadCount)
			r.Post("/{id}/read", h.MarkNotificationRead)
		})

		r.Post("/messages", h.SendMessage)

		// Employee/directory routes
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.CreateEmployee)
			r.Get("/archived", h.ListArchivedEmployees)
			r.Route("/sync-from-external", func(r chi.Router) {
				r.Post("/preview", h.PreviewSync)
				r.Post("/apply", h.ApplySync)
			})
			r.Get("/{id}", h.GetEmployee)
			r.Post("/{id}/archive", h.ArchiveEmployee)
			r.Post("/{id}/restore", h.RestoreEmployee)
		})
	})

	// Health check for load balancers
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return r
}

// requestLogger logs one structured line per request.
func requestLogger(log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			log.WithFields(logrus.Fields{
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     ww.Status(),
				"duration":   time.Since(start).String(),
				"request_id": middleware.GetReqID(r.Context()),
			}).Info("request")
		})
	}
}
