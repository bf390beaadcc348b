package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/airalabs/aira/internal/interfaces"
	"github.com/airalabs/aira/internal/models"
)

// MonitorService is the monitor lifecycle surface the handler needs
type MonitorService interface {
	StartMonitor(ctx context.Context, ticker, interval string, minArticles int) (*models.MonitorState, error)
	StopMonitor(ctx context.Context, ticker string) error
	List(ctx context.Context) ([]*models.MonitorState, error)
	CheckNow(ctx context.Context, monitorID string) (*models.Alert, error)
}

// MonitorHandler handles monitor API requests
type MonitorHandler struct {
	service MonitorService
	logger  arbor.ILogger
}

// NewMonitorHandler creates a new monitor handler
func NewMonitorHandler(service MonitorService, logger arbor.ILogger) *MonitorHandler {
	return &MonitorHandler{
		service: service,
		logger:  logger,
	}
}

// StartMonitorRequest is the start payload. Interval and min_articles
// fall back to configured defaults when omitted.
type StartMonitorRequest struct {
	Ticker      string `json:"ticker" validate:"required"`
	Interval    string `json:"interval,omitempty"`
	MinArticles int    `json:"min_articles,omitempty" validate:"gte=0"`
}

// StopMonitorRequest is the stop payload
type StopMonitorRequest struct {
	Ticker string `json:"ticker" validate:"required"`
}

// StartMonitorHandler creates or re-enables a monitor for a ticker
// POST /api/monitor/start
func (h *MonitorHandler) StartMonitorHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req StartMonitorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Ticker is required")
		return
	}

	state, err := h.service.StartMonitor(r.Context(), req.Ticker, req.Interval, req.MinArticles)
	if err != nil {
		h.logger.Warn().Err(err).Str("ticker", req.Ticker).Msg("Failed to start monitor")
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, state)
}

// StopMonitorHandler disables the monitor for a ticker
// POST /api/monitor/stop
func (h *MonitorHandler) StopMonitorHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req StopMonitorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Ticker is required")
		return
	}

	if err := h.service.StopMonitor(r.Context(), req.Ticker); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "No monitor for ticker")
			return
		}
		h.logger.Error().Err(err).Str("ticker", req.Ticker).Msg("Failed to stop monitor")
		WriteError(w, http.StatusInternalServerError, "Failed to stop monitor")
		return
	}

	WriteSuccess(w, "Monitor stopped")
}

// ListMonitorsHandler returns all monitors with their dedup statistics
// GET /api/monitors
func (h *MonitorHandler) ListMonitorsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	monitors, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list monitors")
		WriteError(w, http.StatusInternalServerError, "Failed to list monitors")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"monitors": monitors,
		"count":    len(monitors),
	})
}

// CheckMonitorHandler runs one check cycle immediately
// POST /api/monitors/{id}/check
func (h *MonitorHandler) CheckMonitorHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	monitorID := pathSegment(r.URL.Path, 2)
	if monitorID == "" {
		WriteError(w, http.StatusBadRequest, "Monitor ID is required")
		return
	}

	alert, err := h.service.CheckNow(r.Context(), monitorID)
	if err != nil {
		h.logger.Warn().Err(err).Str("monitor_id", monitorID).Msg("Monitor check failed")
		WriteError(w, http.StatusBadGateway, "Monitor check failed")
		return
	}

	response := map[string]interface{}{
		"alerted": alert != nil,
	}
	if alert != nil {
		response["alert"] = alert
	}
	WriteJSON(w, http.StatusOK, response)
}
