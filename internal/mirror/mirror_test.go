package mirror

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/messerjon/TetrisClock/internal/anim"
	"github.com/messerjon/TetrisClock/internal/clocksync"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

var local0 = time.Date(2024, 3, 1, 13, 7, 0, 0, time.UTC)

func testFrame(seq uint64) anim.Frame {
	fr := anim.Frame{
		Seq: seq,
		Cells: []anim.Cell{
			{Slot: 1, Col: 1, Row: 4, Color: anim.ColorFor(1), Kind: anim.CellLanded},
			{Slot: 3, Col: 0, Row: -2, Color: anim.ColorFor(7), Kind: anim.CellFalling},
		},
		Colon:    true,
		Meridiem: anim.MeridiemPM,
	}
	fr.Cells = anim.AppendColon(fr.Cells, true)
	return fr
}

func testStatus() Status {
	return Status{
		Display: " 1:07 PM",
		Digits:  [4]int{-1, 1, 0, 7},
		Local:   local0,
		Frames:  42,
		Sync:    clocksync.Snapshot{Phase: clocksync.PhaseSynced, Synced: true, Syncs: 1},
	}
}

func TestHubPublishCopiesCells(t *testing.T) {
	h := NewHub()
	_, _, ok := h.Latest()
	assert.False(t, ok)

	fr := testFrame(7)
	require.NoError(t, h.Publish(fr, local0, testStatus()))
	fr.Cells[0].Row = 0

	got, b, ok := h.Latest()
	require.True(t, ok)
	assert.Equal(t, uint64(7), got.Seq)
	assert.Equal(t, "PM", got.Meridiem)
	require.Len(t, got.Cells, 4)
	assert.Equal(t, Cell{Slot: 1, Col: 1, Row: 4, Color: anim.ColorFor(1)}, got.Cells[0])
	assert.Equal(t, int8(anim.ColonSlot), got.Cells[2].Slot)

	var decoded Frame
	require.NoError(t, msgpack.Unmarshal(b, &decoded))
	assert.Equal(t, got.Cells, decoded.Cells)
	assert.True(t, decoded.Time.Equal(local0))
}

func TestHubDropsForSlowSubscribers(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe()
	defer cancel()

	for i := 0; i < subscriberBuffer+3; i++ {
		require.NoError(t, h.Publish(testFrame(uint64(i)), local0, testStatus()))
	}
	assert.Len(t, ch, subscriberBuffer)
	st := h.Status()
	assert.Equal(t, 1, st.Viewers)
	assert.Equal(t, uint64(3), st.Dropped)

	cancel()
	cancel()
	assert.Equal(t, 0, h.Status().Viewers)
}

func TestHubSubscribeSeesLatest(t *testing.T) {
	h := NewHub()
	require.NoError(t, h.Publish(testFrame(3), local0, testStatus()))
	ch, cancel := h.Subscribe()
	defer cancel()

	select {
	case b := <-ch:
		var fr Frame
		require.NoError(t, msgpack.Unmarshal(b, &fr))
		assert.Equal(t, uint64(3), fr.Seq)
	default:
		t.Fatal("new subscriber did not receive the latest frame")
	}
}

func TestHealth(t *testing.T) {
	s := NewServer(NewHub(), nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	assert.Contains(t, rec.Body.String(), `"version"`)
}

func TestStatusEndpoint(t *testing.T) {
	h := NewHub()
	s := NewServer(h, nil)
	require.NoError(t, h.Publish(testFrame(1), local0, testStatus()))

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var st Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, " 1:07 PM", st.Display)
	assert.Equal(t, [4]int{-1, 1, 0, 7}, st.Digits)
	assert.Equal(t, clocksync.PhaseSynced, st.Sync.Phase)
	assert.Contains(t, rec.Body.String(), `"phase":"synced"`)
}

func TestFrameEndpoints(t *testing.T) {
	h := NewHub()
	s := NewServer(h, nil)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/frame", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	require.NoError(t, h.Publish(testFrame(9), local0, testStatus()))

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/frame", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, MIMEMsgpack, rec.Header().Get("Content-Type"))
	var fr Frame
	require.NoError(t, msgpack.Unmarshal(rec.Body.Bytes(), &fr))
	assert.Equal(t, uint64(9), fr.Seq)
	assert.True(t, fr.Colon)

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/frame.json", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"seq":9`)
}

func TestWebSocketStreamsFrames(t *testing.T) {
	h := NewHub()
	require.NoError(t, h.Publish(testFrame(1), local0, testStatus()))
	srv := httptest.NewServer(NewServer(h, nil).Handler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer ws.Close()

	read := func() Frame {
		require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
		typ, b, err := ws.ReadMessage()
		require.NoError(t, err)
		require.Equal(t, websocket.BinaryMessage, typ)
		var fr Frame
		require.NoError(t, msgpack.Unmarshal(b, &fr))
		return fr
	}

	assert.Equal(t, uint64(1), read().Seq)

	require.Eventually(t, func() bool { return h.Status().Viewers == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, h.Publish(testFrame(2), local0, testStatus()))
	assert.Equal(t, uint64(2), read().Seq)

	ws.Close()
	require.Eventually(t, func() bool { return h.Status().Viewers == 0 }, 2*time.Second, 5*time.Millisecond)
}
