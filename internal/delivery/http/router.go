package http

import (
	"net/http"

	"clinic-booking/internal/delivery/http/handler"
	"clinic-booking/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Router struct {
	router              *mux.Router
	authHandler         *handler.AuthHandler
	doctorHandler       *handler.DoctorHandler
	availabilityHandler *handler.AvailabilityHandler
	appointmentHandler  *handler.AppointmentHandler
	auditLogHandler     *handler.AuditLogHandler
	authMiddleware      *middleware.AuthMiddleware
	corsMiddleware      *middleware.CORSMiddleware
	rateLimiter         *middleware.RateLimiter
	middlewares         []mux.MiddlewareFunc
	gatherer            prometheus.Gatherer
}

func NewRouter(
	authHandler *handler.AuthHandler,
	doctorHandler *handler.DoctorHandler,
	availabilityHandler *handler.AvailabilityHandler,
	appointmentHandler *handler.AppointmentHandler,
	auditLogHandler *handler.AuditLogHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
	rateLimiter *middleware.RateLimiter,
	gatherer prometheus.Gatherer,
	middlewares ...mux.MiddlewareFunc,
) *Router {
	return &Router{
		router:              mux.NewRouter(),
		authHandler:         authHandler,
		doctorHandler:       doctorHandler,
		availabilityHandler: availabilityHandler,
		appointmentHandler:  appointmentHandler,
		auditLogHandler:     auditLogHandler,
		authMiddleware:      authMiddleware,
		corsMiddleware:      corsMiddleware,
		rateLimiter:         rateLimiter,
		middlewares:         middlewares,
		gatherer:            gatherer,
	}
}

// Setup registers every route. Global middlewares (client IP resolution, access log) run in
// the order given to NewRouter; CORS wraps the router itself.
func (r *Router) Setup() http.Handler {
	r.router.Handle("/metrics", promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Auth routes (public, throttled)
	auth := api.PathPrefix("/auth").Subrouter()
	auth.Handle("/admin/login", r.rateLimiter.Limit(http.HandlerFunc(r.authHandler.AdminLogin))).Methods(http.MethodPost)
	auth.Handle("/doctor/login", r.rateLimiter.Limit(http.HandlerFunc(r.authHandler.DoctorLogin))).Methods(http.MethodPost)

	// Auth routes (protected)
	authProtected := api.PathPrefix("/auth").Subrouter()
	authProtected.Use(r.authMiddleware.Authenticate)
	authProtected.HandleFunc("/logout", r.authHandler.Logout).Methods(http.MethodPost)

	// Doctors and availability (public)
	api.HandleFunc("/doctors", r.doctorHandler.ListDoctors).Methods(http.MethodGet)
	api.HandleFunc("/doctors/{id:[0-9]+}", r.doctorHandler.GetDoctor).Methods(http.MethodGet)
	api.HandleFunc("/doctors/{id:[0-9]+}/slots", r.availabilityHandler.GetSlots).Methods(http.MethodGet)
	api.HandleFunc("/doctors/{id:[0-9]+}/load", r.availabilityHandler.GetLoad).Methods(http.MethodGet)
	api.HandleFunc("/doctors/{id:[0-9]+}/calendar", r.availabilityHandler.GetCalendar).Methods(http.MethodGet)

	// Appointments (public)
	api.Handle("/appointments", r.rateLimiter.Limit(http.HandlerFunc(r.appointmentHandler.CreateAppointment))).Methods(http.MethodPost)
	api.HandleFunc("/appointments", r.appointmentHandler.ListPatientAppointments).Methods(http.MethodGet)
	api.Handle("/appointments/{id:[0-9]+}", r.authMiddleware.OptionalAuthenticate(http.HandlerFunc(r.appointmentHandler.CancelAppointment))).Methods(http.MethodDelete)

	// Doctor routes (protected - doctor only)
	doctor := api.PathPrefix("/doctor").Subrouter()
	doctor.Use(r.authMiddleware.Authenticate)
	doctor.Use(middleware.RequireDoctor)
	doctor.HandleFunc("/appointments", r.appointmentHandler.ListDoctorAppointments).Methods(http.MethodGet)

	// Admin routes (protected - admin only)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(r.authMiddleware.Authenticate)
	admin.Use(middleware.RequireAdmin)

	admin.HandleFunc("/doctors", r.doctorHandler.CreateDoctor).Methods(http.MethodPost)
	admin.HandleFunc("/doctors/{id:[0-9]+}", r.doctorHandler.UpdateDoctor).Methods(http.MethodPut)
	admin.HandleFunc("/doctors/{id:[0-9]+}", r.doctorHandler.DeleteDoctor).Methods(http.MethodDelete)
	admin.HandleFunc("/doctors/{id:[0-9]+}/credentials", r.doctorHandler.UpdateCredentials).Methods(http.MethodPut)
	admin.HandleFunc("/appointments", r.appointmentHandler.ListAllAppointments).Methods(http.MethodGet)
	admin.HandleFunc("/audit-logs", r.auditLogHandler.ListAuditLogs).Methods(http.MethodGet)

	r.router.Use(r.middlewares...)

	return r.corsMiddleware.Handle(r.router)
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
