package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ternarybob/arbor"

	"github.com/airalabs/aira/internal/interfaces"
)

// AlertHandler handles alert API requests
type AlertHandler struct {
	alertStorage interfaces.AlertStorage
	logger       arbor.ILogger
}

// NewAlertHandler creates a new alert handler
func NewAlertHandler(alertStorage interfaces.AlertStorage, logger arbor.ILogger) *AlertHandler {
	return &AlertHandler{
		alertStorage: alertStorage,
		logger:       logger,
	}
}

// ListAlertsHandler returns alerts, newest first, optionally per ticker
// GET /api/alerts?ticker=TSLA&limit=50
func (h *AlertHandler) ListAlertsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	ticker := r.URL.Query().Get("ticker")
	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	alerts, err := h.alertStorage.List(r.Context(), ticker, limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list alerts")
		WriteError(w, http.StatusInternalServerError, "Failed to list alerts")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"alerts": alerts,
		"count":  len(alerts),
	})
}

// GetAlertHandler returns a single alert
// GET /api/alerts/{id}
func (h *AlertHandler) GetAlertHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	alertID := pathSegment(r.URL.Path, 2)
	if alertID == "" {
		WriteError(w, http.StatusBadRequest, "Alert ID is required")
		return
	}

	alert, err := h.alertStorage.Get(r.Context(), alertID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Alert not found")
			return
		}
		h.logger.Error().Err(err).Str("alert_id", alertID).Msg("Failed to get alert")
		WriteError(w, http.StatusInternalServerError, "Failed to get alert")
		return
	}

	WriteJSON(w, http.StatusOK, alert)
}
