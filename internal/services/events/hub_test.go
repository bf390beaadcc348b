package events

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airalabs/aira/internal/common"
	"github.com/airalabs/aira/internal/models"
)

func dialHub(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))
	t.Cleanup(server.Close)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) WSMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	var msg WSMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestHubSendsHelloOnConnect(t *testing.T) {
	hub := NewHub(common.GetLogger())
	conn := dialHub(t, hub)

	msg := readFrame(t, conn)
	assert.Equal(t, "hello", msg.Type)

	payload, ok := msg.Payload.(map[string]interface{})
	require.True(t, ok)
	assert.NotEmpty(t, payload["server_instance_id"])
}

func TestHubBroadcastsJobAndStepFrames(t *testing.T) {
	hub := NewHub(common.GetLogger())
	conn := dialHub(t, hub)
	readFrame(t, conn) // hello

	// Wait for the connection to register before broadcasting
	require.Eventually(t, func() bool {
		return hub.ClientCount() == 1
	}, time.Second, 5*time.Millisecond)

	job := models.NewAnalysisJob("job_1", "Analyze Tesla outlook")
	job.Status = models.JobStatusRunning
	job.Ticker = "TSLA"
	hub.JobUpdated(job)

	msg := readFrame(t, conn)
	assert.Equal(t, "job_update", msg.Type)
	payload := msg.Payload.(map[string]interface{})
	assert.Equal(t, "job_1", payload["job_id"])
	assert.Equal(t, "running", payload["status"])
	assert.Equal(t, "TSLA", payload["ticker"])

	hub.StepAppended("job_1", models.ReasoningStep{
		Index:    2,
		Phase:    models.PhaseAct,
		ToolName: "news_search",
	})

	msg = readFrame(t, conn)
	assert.Equal(t, "reasoning_step", msg.Type)
	payload = msg.Payload.(map[string]interface{})
	assert.Equal(t, "act", payload["phase"])
	assert.Equal(t, "news_search", payload["tool_name"])
}

func TestHubBroadcastsAlerts(t *testing.T) {
	hub := NewHub(common.GetLogger())
	conn := dialHub(t, hub)
	readFrame(t, conn) // hello

	require.Eventually(t, func() bool {
		return hub.ClientCount() == 1
	}, time.Second, 5*time.Millisecond)

	hub.AlertCreated(&models.Alert{
		ID:              "alert_1",
		Kind:            models.AlertKindProactive,
		Ticker:          "TSLA",
		NewArticleCount: 7,
		Summary:         "elevated news volume",
		CreatedAt:       time.Now().UTC(),
	})

	msg := readFrame(t, conn)
	assert.Equal(t, "alert", msg.Type)
	payload := msg.Payload.(map[string]interface{})
	assert.Equal(t, "alert_1", payload["id"])
	assert.Equal(t, float64(7), payload["new_article_count"])
}

func TestHubBroadcastWithNoClientsIsSafe(t *testing.T) {
	hub := NewHub(common.GetLogger())
	hub.JobUpdated(models.NewAnalysisJob("job_1", "query"))
	hub.AlertCreated(&models.Alert{ID: "alert_1"})
	assert.Equal(t, 0, hub.ClientCount())
}

func TestHubStalledClientDoesNotBlockBroadcast(t *testing.T) {
	if testing.Short() {
		t.Skip("waits out the write deadline")
	}

	hub := NewHub(common.GetLogger())
	conn := dialHub(t, hub)
	readFrame(t, conn) // hello

	require.Eventually(t, func() bool {
		return hub.ClientCount() == 1
	}, time.Second, 5*time.Millisecond)

	// The client never reads again. Once the socket buffers fill, each
	// write must fail by deadline instead of blocking the publisher.
	step := models.ReasoningStep{
		Phase:   models.PhaseObserve,
		Content: strings.Repeat("observation ", 64*1024),
	}

	done := make(chan struct{})
	go func() {
		for i := 0; i < 64; i++ {
			hub.StepAppended("job_1", step)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(3 * writeTimeout):
		t.Fatal("broadcast blocked on a stalled client")
	}
}
