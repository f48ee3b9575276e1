package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"roomshare/config"
	"roomshare/internal/events"
	"roomshare/internal/realtime"
	"roomshare/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type testServer struct {
	url    string
	auth   *services.AuthService
	feed   *events.MemoryFeed
	bridge *realtime.Bridge
	hub    *Hub
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	auth := services.NewAuthService(&config.Config{JWTSecret: "test-secret", JWTExpiry: time.Hour})
	feed := events.NewMemoryFeed()
	bridge := realtime.NewBridge(feed, nil, nil, nil)
	hub := NewHub()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	r := gin.New()
	r.GET("/v1/ws", NewHandler(auth, hub, bridge, nil).Connect)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &testServer{
		url:    "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/ws",
		auth:   auth,
		feed:   feed,
		bridge: bridge,
		hub:    hub,
	}
}

func (s *testServer) dial(t *testing.T, userID uuid.UUID) *websocket.Conn {
	t.Helper()
	token, err := s.auth.IssueAccessToken(userID, "")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	conn, _, err := websocket.DefaultDialer.Dial(s.url+"?token="+token, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) ServerFrame {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var frame ServerFrame
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	return frame
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met")
}

func TestConnectRejectsBadToken(t *testing.T) {
	s := newTestServer(t)

	_, resp, err := websocket.DefaultDialer.Dial(s.url+"?token=garbage", nil)
	if err == nil {
		t.Fatal("expected dial to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", resp)
	}
}

func TestWatchReceivesRefresh(t *testing.T) {
	s := newTestServer(t)
	conn := s.dial(t, uuid.New())
	conv := uuid.New()

	if err := conn.WriteJSON(ClientFrame{Type: FrameWatch, ConversationID: conv.String()}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if f := readFrame(t, conn); f.Type != FrameWatching || f.ConversationID != conv.String() {
		t.Fatalf("unexpected frame %+v", f)
	}

	change, _ := events.NewChange(events.TableMessages, events.EventInsert, map[string]string{"conversation_id": conv.String()}, nil)
	if err := s.feed.Publish(context.Background(), change); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if f := readFrame(t, conn); f.Type != FrameRefresh || f.ConversationID != conv.String() {
		t.Fatalf("unexpected frame %+v", f)
	}
}

func TestSwitchingAndDisconnectReleaseWatches(t *testing.T) {
	s := newTestServer(t)
	conn := s.dial(t, uuid.New())

	for i := 0; i < 3; i++ {
		if err := conn.WriteJSON(ClientFrame{Type: FrameWatch, ConversationID: uuid.NewString()}); err != nil {
			t.Fatalf("write: %v", err)
		}
		readFrame(t, conn)
		if n := s.bridge.ActiveWatches(); n != 1 {
			t.Fatalf("active watches = %d after switch %d", n, i)
		}
	}

	if err := conn.WriteJSON(ClientFrame{Type: FrameUnwatch}); err != nil {
		t.Fatalf("write: %v", err)
	}
	readFrame(t, conn)
	if n := s.bridge.ActiveWatches(); n != 0 {
		t.Fatalf("active watches = %d after unwatch", n)
	}

	if err := conn.WriteJSON(ClientFrame{Type: FrameWatch, ConversationID: uuid.NewString()}); err != nil {
		t.Fatalf("write: %v", err)
	}
	readFrame(t, conn)
	_ = conn.Close()

	eventually(t, func() bool { return s.bridge.ActiveWatches() == 0 })
	eventually(t, func() bool { return s.hub.GetClientCount() == 0 })
}

func TestInvalidFrames(t *testing.T) {
	s := newTestServer(t)
	conn := s.dial(t, uuid.New())

	tests := []struct {
		name  string
		frame interface{}
	}{
		{"unknown type", ClientFrame{Type: "shout"}},
		{"bad id", ClientFrame{Type: FrameWatch, ConversationID: "nope"}},
		{"not an object", []int{1, 2}},
	}
	for _, tt := range tests {
		if err := conn.WriteJSON(tt.frame); err != nil {
			t.Fatalf("%s: write: %v", tt.name, err)
		}
		if f := readFrame(t, conn); f.Type != FrameError || f.Code != "INVALID_REQUEST" {
			t.Fatalf("%s: unexpected frame %+v", tt.name, f)
		}
	}

	if err := conn.WriteJSON(ClientFrame{Type: FramePing}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if f := readFrame(t, conn); f.Type != FramePong {
		t.Fatalf("unexpected frame %+v", f)
	}
}
