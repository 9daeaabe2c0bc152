package hub

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pulsecam/internal/models"
	"pulsecam/internal/ppg"
	"pulsecam/internal/session"
)

func TestHubBroadcastsTicks(t *testing.T) {
	h := New(slog.New(slog.NewTextHandler(io.Discard, nil)))
	srv := httptest.NewServer(http.HandlerFunc(h.ServeWS))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return h.Clients() == 1 }, time.Second, 10*time.Millisecond)

	h.Render([]float64{70, 71, 72})
	h.Tick(session.TickResult{
		RunID:            "run-1",
		Sample:           ppg.Sample{Time: 300, Brightness: 72},
		Peak:             &ppg.PeakEvent{Time: 200, Brightness: 71},
		SecondsRemaining: 60,
		Status:           session.StatusMeasuring,
		Timer:            "60 seconds remaining",
		BPMText:          "--",
	})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg models.TickMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, "tick", msg.Type)
	assert.Equal(t, "run-1", msg.RunID)
	assert.Equal(t, []float64{70, 71, 72}, msg.Trace)
	require.NotNil(t, msg.Peak)
	assert.Equal(t, int64(200), msg.Peak.Time)
	assert.Equal(t, "60 seconds remaining", msg.Timer)
	assert.Equal(t, "--", msg.BPM)

	h.Status(session.StatusDenied)
	_, data, err = conn.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, "status", msg.Type)
	assert.Equal(t, session.StatusDenied, msg.Status)

	conn.Close()
	require.Eventually(t, func() bool { return h.Clients() == 0 }, time.Second, 10*time.Millisecond)
}
