package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"roomshare/internal/realtime"
	"roomshare/internal/services"
	"roomshare/internal/transport/httpdto"
	roomshare_errors "roomshare/pkg/errors"
	"roomshare/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type Handler struct {
	auth     *services.AuthService
	hub      *Hub
	bridge   *realtime.Bridge
	log      *logger.Logger
	upgrader websocket.Upgrader
}

func NewHandler(auth *services.AuthService, hub *Hub, bridge *realtime.Bridge, log *logger.Logger) *Handler {
	return &Handler{
		auth:   auth,
		hub:    hub,
		bridge: bridge,
		log:    logger.OrNop(log),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Connect upgrades the request and serves one client until it disconnects.
// Browsers cannot set headers on WebSocket requests, so the token may come
// from the query string.
func (h *Handler) Connect(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		token = bearerToken(c.GetHeader("Authorization"))
	}
	userID, err := h.auth.Authenticate(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctx = logger.WithUserID(ctx, userID.String())

	client := NewClient(conn, userID)
	client.view = h.bridge.NewView(ctx, userID, client.pushRefresh)
	defer client.view.Close()

	h.hub.Register(client)
	defer h.hub.Unregister(client)
	go client.WriteLoop(ctx)

	h.log.InfoCtx(ctx, "websocket connected", zap.String("client_id", client.ID))
	h.readLoop(ctx, client)
	h.log.InfoCtx(ctx, "websocket disconnected", zap.String("client_id", client.ID))
}

func (h *Handler) readLoop(ctx context.Context, client *Client) {
	conn := client.Conn
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))

		var frame ClientFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			client.SendFrame(errorFrame(roomshare_errors.Invalid("malformed frame")))
			continue
		}
		h.handleFrame(ctx, client, frame)
	}
}

func (h *Handler) handleFrame(ctx context.Context, client *Client, frame ClientFrame) {
	switch frame.Type {
	case FrameWatch:
		conversationID, err := uuid.Parse(frame.ConversationID)
		if err != nil {
			client.SendFrame(errorFrame(roomshare_errors.Invalid("invalid conversation id")))
			return
		}
		if err := client.view.Select(conversationID); err != nil {
			h.log.WarnCtx(ctx, "watch rejected", zap.String("conversation_id", frame.ConversationID), zap.Error(err))
			client.SendFrame(errorFrame(err))
			return
		}
		client.SendFrame(ServerFrame{Type: FrameWatching, ConversationID: conversationID.String()})
	case FrameUnwatch:
		client.view.Clear()
		client.SendFrame(ServerFrame{Type: FrameWatching})
	case FramePing:
		client.SendFrame(ServerFrame{Type: FramePong})
	default:
		client.SendFrame(errorFrame(roomshare_errors.Invalid("unknown frame type %q", frame.Type)))
	}
}

func errorFrame(err error) ServerFrame {
	return ServerFrame{Type: FrameError, Error: err.Error(), Code: services.ErrorCode(err)}
}

func bearerToken(value string) string {
	parts := strings.SplitN(value, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
