/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. CORS:        Cross-origin requests for the HR frontend
  2. RequestID:   Unique ID per request for tracing
  3. httplog:     Structured request logging (slog, ECS schema)
  4. CleanPath:   Collapse duplicate slashes before routing
  5. Recoverer:   Panic recovery (500 instead of crash)
  6. Heartbeat:   GET /health for load balancers

ROUTE GROUPS:
  /api/attendance/*     Stateless classification
  /api/settlements/*    Stateless settlement
  /api/employees/*      Employee profile, punches, leave, settlement
  /api/rosters/*        Roster configuration
  /api/month-close/*    Batch month close
  /api/scenarios/*      Demo scenarios

SECURITY NOTE:
  No authentication middleware. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"io"
	"log/slog"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
)

// NewLogger returns a JSON slog logger whose attribute names follow the
// ECS schema used by the request logger.
func NewLogger(w io.Writer, level slog.Level, attrs ...any) *slog.Logger {
	logFormat := httplog.SchemaECS.Concise(false)
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(attrs...)
}

// NewRouter creates a new router with all routes configured.
// An empty corsOrigins allows any origin.
func NewRouter(h *Handler, corsOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	if len(corsOrigins) == 0 {
		corsOrigins = []string{"*"}
	}

	// Middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))
	r.Use(chiMiddleware.RequestID)
	r.Use(httplog.RequestLogger(h.Logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Post("/attendance/classify", h.ClassifyAttendance)
		r.Post("/settlements/calculate", h.CalculateSettlement)

		// Employee routes
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.CreateEmployee)
			r.Get("/{id}", h.GetEmployee)
			r.Put("/{id}/roster", h.AssignRoster)
			r.Get("/{id}/leave-balance", h.GetLeaveBalance)
			r.Put("/{id}/leave-balance", h.SetLeaveBalance)
			r.Get("/{id}/attendance", h.GetAttendance)
			r.Post("/{id}/attendance", h.RecordAttendance)
			r.Post("/{id}/settlement", h.CalculateEmployeeSettlement)
			r.Get("/{id}/settlement/report", h.GetSettlementReport)
		})

		// Roster routes
		r.Route("/rosters", func(r chi.Router) {
			r.Get("/", h.ListRosters)
			r.Post("/", h.CreateRoster)
			r.Get("/{id}", h.GetRoster)
		})

		// Month close routes
		r.Route("/month-close", func(r chi.Router) {
			r.Get("/runs", h.ListMonthCloseRuns)
			r.Get("/summaries", h.ListMonthSummaries)
			r.Post("/process", h.ProcessMonthClose)
		})

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetDatabase)
		})
	})

	return r
}
