package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"discount-backend/internal/ws"
)

// The feed endpoint sits behind the metrics middleware like every other
// route, so the wrapped ResponseWriter must still let the websocket
// library hijack the connection.
func TestMetricsAllowsWebSocketUpgrade(t *testing.T) {
	hub := ws.NewHub()
	srv := httptest.NewServer(Metrics(http.HandlerFunc(hub.Serve)))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err, "upgrade must succeed through the middleware")
	defer conn.Close()
	require.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	// Give the hub a moment to register the connection, then check a
	// broadcast actually arrives end to end.
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 },
		time.Second, 10*time.Millisecond)

	hub.Broadcast("request.created", map[string]string{"request_code": "25-030001"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var event ws.Event
	require.NoError(t, json.Unmarshal(data, &event))
	assert.Equal(t, "request.created", event.Type)
}

func TestMetricsPassesPlainRequestsThrough(t *testing.T) {
	handler := Metrics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("ok"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/requests", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
