package http

import (
	"net/http"

	"hospital-scheduling/internal/delivery/http/handler"
	"hospital-scheduling/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
)

type Router struct {
	router             *mux.Router
	authHandler        *handler.AuthHandler
	appointmentHandler *handler.AppointmentHandler
	doctorHandler      *handler.DoctorHandler
	patientHandler     *handler.PatientHandler
	departmentHandler  *handler.DepartmentHandler
	auditLogHandler    *handler.AuditLogHandler
	authMiddleware     *middleware.AuthMiddleware
	corsMiddleware     *middleware.CORSMiddleware
}

func NewRouter(
	authHandler *handler.AuthHandler,
	appointmentHandler *handler.AppointmentHandler,
	doctorHandler *handler.DoctorHandler,
	patientHandler *handler.PatientHandler,
	departmentHandler *handler.DepartmentHandler,
	auditLogHandler *handler.AuditLogHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
) *Router {
	return &Router{
		router:             mux.NewRouter(),
		authHandler:        authHandler,
		appointmentHandler: appointmentHandler,
		doctorHandler:      doctorHandler,
		patientHandler:     patientHandler,
		departmentHandler:  departmentHandler,
		auditLogHandler:    auditLogHandler,
		authMiddleware:     authMiddleware,
		corsMiddleware:     corsMiddleware,
	}
}

func (r *Router) Setup() *mux.Router {
	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Auth routes (public)
	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register", r.authHandler.Register).Methods(http.MethodPost)
	auth.HandleFunc("/login", r.authHandler.Login).Methods(http.MethodPost)
	auth.HandleFunc("/refresh-token", r.authHandler.RefreshToken).Methods(http.MethodPost)

	// Auth routes (protected)
	authProtected := api.PathPrefix("/auth").Subrouter()
	authProtected.Use(r.authMiddleware.Authenticate)
	authProtected.HandleFunc("/logout", r.authHandler.Logout).Methods(http.MethodPost)
	authProtected.HandleFunc("/me", r.authHandler.GetCurrentUser).Methods(http.MethodGet)

	// Routes for any authenticated user
	protected := api.NewRoute().Subrouter()
	protected.Use(r.authMiddleware.Authenticate)
	protected.HandleFunc("/appointments", r.appointmentHandler.List).Methods(http.MethodGet)
	protected.HandleFunc("/appointments/{id}", r.appointmentHandler.Get).Methods(http.MethodGet)
	protected.HandleFunc("/doctors", r.doctorHandler.List).Methods(http.MethodGet)
	protected.HandleFunc("/departments", r.departmentHandler.List).Methods(http.MethodGet)
	protected.HandleFunc("/departments/{id}", r.departmentHandler.Get).Methods(http.MethodGet)
	protected.HandleFunc("/departments/{id}/doctors", r.doctorHandler.ListByDepartment).Methods(http.MethodGet)

	// Patient-only routes
	patientOnly := api.NewRoute().Subrouter()
	patientOnly.Use(r.authMiddleware.Authenticate)
	patientOnly.Use(middleware.RequirePatient)
	patientOnly.HandleFunc("/appointments", r.appointmentHandler.Create).Methods(http.MethodPost)
	patientOnly.HandleFunc("/patients", r.patientHandler.Create).Methods(http.MethodPost)
	patientOnly.HandleFunc("/patients/me", r.patientHandler.GetOwnProfile).Methods(http.MethodGet)

	// Doctor-only routes
	doctorOnly := api.NewRoute().Subrouter()
	doctorOnly.Use(r.authMiddleware.Authenticate)
	doctorOnly.Use(middleware.RequireDoctor)
	doctorOnly.HandleFunc("/doctors/me", r.doctorHandler.GetOwnProfile).Methods(http.MethodGet)

	// Manager-only routes
	manager := api.NewRoute().Subrouter()
	manager.Use(r.authMiddleware.Authenticate)
	manager.Use(middleware.RequireManager)
	manager.HandleFunc("/appointments/{id}", r.appointmentHandler.Update).Methods(http.MethodPut)
	manager.HandleFunc("/appointments/{id}", r.appointmentHandler.Delete).Methods(http.MethodDelete)
	manager.HandleFunc("/doctors", r.doctorHandler.Create).Methods(http.MethodPost)
	manager.HandleFunc("/doctors/{id}", r.doctorHandler.Get).Methods(http.MethodGet)
	manager.HandleFunc("/doctors/{id}", r.doctorHandler.Update).Methods(http.MethodPut)
	manager.HandleFunc("/doctors/{id}", r.doctorHandler.Delete).Methods(http.MethodDelete)
	manager.HandleFunc("/doctors/{id}/relink", r.doctorHandler.Relink).Methods(http.MethodPost)
	manager.HandleFunc("/patients", r.patientHandler.List).Methods(http.MethodGet)
	manager.HandleFunc("/patients/{id}", r.patientHandler.Get).Methods(http.MethodGet)
	manager.HandleFunc("/patients/{id}", r.patientHandler.Update).Methods(http.MethodPut)
	manager.HandleFunc("/patients/{id}", r.patientHandler.Delete).Methods(http.MethodDelete)
	manager.HandleFunc("/departments", r.departmentHandler.Create).Methods(http.MethodPost)
	manager.HandleFunc("/departments/{id}", r.departmentHandler.Update).Methods(http.MethodPut)
	manager.HandleFunc("/departments/{id}", r.departmentHandler.Delete).Methods(http.MethodDelete)
	manager.HandleFunc("/audit-logs", r.auditLogHandler.List).Methods(http.MethodGet)

	// Add CORS middleware
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
