package server

import (
	"net/http"
	"strings"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// WebSocket route (live job, step, and alert events)
	mux.HandleFunc("/ws", s.app.EventHub.HandleWebSocket)

	// API routes - Analysis
	mux.HandleFunc("/api/analyze", s.app.AnalysisHandler.AnalyzeHandler) // POST - submit analysis
	mux.HandleFunc("/api/jobs", s.app.AnalysisHandler.ListJobsHandler)   // GET - list jobs
	mux.HandleFunc("/api/jobs/", s.handleJobRoutes)                      // GET /{id}, POST /{id}/cancel

	// API routes - Monitors
	mux.HandleFunc("/api/monitor/start", s.app.MonitorHandler.StartMonitorHandler) // POST
	mux.HandleFunc("/api/monitor/stop", s.app.MonitorHandler.StopMonitorHandler)   // POST
	mux.HandleFunc("/api/monitors", s.app.MonitorHandler.ListMonitorsHandler)      // GET
	mux.HandleFunc("/api/monitors/", s.handleMonitorRoutes)                        // POST /{id}/check

	// API routes - Alerts
	mux.HandleFunc("/api/alerts", s.app.AlertHandler.ListAlertsHandler) // GET - list alerts
	mux.HandleFunc("/api/alerts/", s.app.AlertHandler.GetAlertHandler)  // GET /{id}

	// API routes - System
	mux.HandleFunc("/api/health", s.app.StatusHandler.HealthHandler)
	mux.HandleFunc("/api/version", s.app.StatusHandler.VersionHandler)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Not found", http.StatusNotFound)
	})

	return mux
}

// handleJobRoutes routes /api/jobs/{id} and /api/jobs/{id}/cancel
func (s *Server) handleJobRoutes(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/cancel") {
		s.app.AnalysisHandler.CancelJobHandler(w, r)
		return
	}
	s.app.AnalysisHandler.GetJobHandler(w, r)
}

// handleMonitorRoutes routes /api/monitors/{id}/check
func (s *Server) handleMonitorRoutes(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/check") {
		s.app.MonitorHandler.CheckMonitorHandler(w, r)
		return
	}
	http.Error(w, "Not found", http.StatusNotFound)
}
