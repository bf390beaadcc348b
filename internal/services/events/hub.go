package events

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/ternarybob/arbor"

	"github.com/airalabs/aira/internal/models"
)

// writeTimeout bounds each client write so a stalled connection cannot
// block the broadcast loop.
const writeTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// WSMessage is the envelope for every broadcast frame
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// JobUpdatePayload mirrors a job status transition
type JobUpdatePayload struct {
	JobID     string    `json:"job_id"`
	Status    string    `json:"status"`
	Ticker    string    `json:"ticker,omitempty"`
	Quick     bool      `json:"quick,omitempty"`
	Degraded  bool      `json:"degraded,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// StepPayload streams one reasoning step as it is appended
type StepPayload struct {
	JobID     string    `json:"job_id"`
	Index     int       `json:"index"`
	Phase     string    `json:"phase"`
	Content   string    `json:"content,omitempty"`
	ToolName  string    `json:"tool_name,omitempty"`
	IsError   bool      `json:"is_error,omitempty"`
	LatencyMs int64     `json:"latency_ms,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Hub broadcasts job transitions, reasoning steps, and alerts to
// connected WebSocket clients. It implements interfaces.EventSink.
type Hub struct {
	logger           arbor.ILogger
	clients          map[*websocket.Conn]bool
	clientMutex      map[*websocket.Conn]*sync.Mutex
	mu               sync.RWMutex
	serverInstanceID string // Unique ID generated on startup - clients use to detect server restart
}

// NewHub creates the WebSocket event hub
func NewHub(logger arbor.ILogger) *Hub {
	h := &Hub{
		logger:           logger,
		clients:          make(map[*websocket.Conn]bool),
		clientMutex:      make(map[*websocket.Conn]*sync.Mutex),
		serverInstanceID: uuid.New().String(),
	}

	logger.Info().Str("server_instance_id", h.serverInstanceID).Msg("WebSocket hub initialized")

	return h
}

// HandleWebSocket upgrades the connection and keeps it registered
// until the client disconnects.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	h.clientMutex[conn] = &sync.Mutex{}
	clientCount := len(h.clients)
	h.mu.Unlock()

	h.logger.Debug().Msgf("WebSocket client connected (total: %d)", clientCount)

	h.sendHello(conn)

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		delete(h.clientMutex, conn)
		remaining := len(h.clients)
		h.mu.Unlock()

		conn.Close()
		h.logger.Debug().Msgf("WebSocket client disconnected (remaining: %d)", remaining)
	}()

	// Read messages from client (keep connection alive)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Warn().Err(err).Msg("WebSocket error")
			}
			break
		}
	}
}

// JobUpdated broadcasts a job status transition
func (h *Hub) JobUpdated(job *models.AnalysisJob) {
	h.broadcast("job_update", JobUpdatePayload{
		JobID:     job.ID,
		Status:    string(job.Status),
		Ticker:    job.Ticker,
		Quick:     job.Quick,
		Degraded:  job.Degraded,
		Error:     job.Error,
		Timestamp: time.Now().UTC(),
	})
}

// StepAppended broadcasts one reasoning step
func (h *Hub) StepAppended(jobID string, step models.ReasoningStep) {
	h.broadcast("reasoning_step", StepPayload{
		JobID:     jobID,
		Index:     step.Index,
		Phase:     string(step.Phase),
		Content:   step.Content,
		ToolName:  step.ToolName,
		IsError:   step.IsError,
		LatencyMs: step.LatencyMs,
		Timestamp: time.Now().UTC(),
	})
}

// AlertCreated broadcasts a proactive alert
func (h *Hub) AlertCreated(alert *models.Alert) {
	h.broadcast("alert", alert)
}

// ClientCount reports connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) sendHello(conn *websocket.Conn) {
	msg := WSMessage{
		Type: "hello",
		Payload: map[string]interface{}{
			"server_instance_id": h.serverInstanceID,
			"timestamp":          time.Now().UTC().Format(time.RFC3339),
		},
	}

	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to marshal hello message")
		return
	}

	h.mu.RLock()
	mutex := h.clientMutex[conn]
	h.mu.RUnlock()

	if mutex != nil {
		mutex.Lock()
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		err := conn.WriteMessage(websocket.TextMessage, data)
		mutex.Unlock()

		if err != nil {
			h.logger.Warn().Err(err).Msg("Failed to send hello")
		}
	}
}

// broadcast fans out one frame to every connected client. Writes are
// serialized per connection; a failed write is logged, the read loop
// cleans up the connection.
func (h *Hub) broadcast(msgType string, payload interface{}) {
	msg := WSMessage{
		Type:    msgType,
		Payload: payload,
	}

	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error().Err(err).Str("type", msgType).Msg("Failed to marshal broadcast message")
		return
	}

	h.mu.RLock()
	clients := make([]*websocket.Conn, 0, len(h.clients))
	mutexes := make([]*sync.Mutex, 0, len(h.clients))
	for conn := range h.clients {
		clients = append(clients, conn)
		mutexes = append(mutexes, h.clientMutex[conn])
	}
	h.mu.RUnlock()

	for i, conn := range clients {
		mutex := mutexes[i]
		mutex.Lock()
		// A stalled client must not hold up the reasoning loop
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		err := conn.WriteMessage(websocket.TextMessage, data)
		mutex.Unlock()

		if err != nil {
			h.logger.Warn().Err(err).Str("type", msgType).Msg("Failed to send message to client")
		}
	}
}
