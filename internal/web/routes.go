package web

import (
	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/faceclock/internal/audit"
	"github.com/kozaktomas/faceclock/internal/checkin"
	"github.com/kozaktomas/faceclock/internal/registry"
	"github.com/kozaktomas/faceclock/internal/web/handlers"
)

func (s *Server) setupRoutes(service *checkin.Service, reg registry.Reader, attempts audit.Reader) {
	employeesHandler := handlers.NewEmployeesHandler(service, reg)
	checkinHandler := handlers.NewCheckinHandler(service)
	logsHandler := handlers.NewLogsHandler(attempts)

	s.router.Get("/api/v1/health", handlers.HealthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/employees", employeesHandler.Create)
		r.Get("/employees", employeesHandler.List)
		r.Post("/checkin", checkinHandler.Verify)
		r.Get("/logs", logsHandler.List)
	})
}
