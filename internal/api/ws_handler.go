package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"joblisting/internal/api/middleware"
	"joblisting/internal/notification"
)

// WsHandler 负责 WebSocket 鉴权，并把用户频道上的通知事件转发给客户端。
type WsHandler struct {
	redisClient    *redis.Client
	tokens         middleware.TokenValidator
	sessions       middleware.SessionChecker
	logger         *slog.Logger
	upgrader       websocket.Upgrader
	allowedOrigins []string
}

// NewWsHandler 构造 WebSocket 处理器。
func NewWsHandler(redisClient *redis.Client, tokens middleware.TokenValidator, sessions middleware.SessionChecker, logger *slog.Logger, allowedOrigins []string) *WsHandler {
	h := &WsHandler{
		redisClient:    redisClient,
		tokens:         tokens,
		sessions:       sessions,
		logger:         logger,
		allowedOrigins: allowedOrigins,
	}
	h.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return h.originAllowed(r)
		},
	}
	return h
}

func (h *WsHandler) originAllowed(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if len(h.allowedOrigins) == 0 {
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return strings.EqualFold(u.Host, r.Host)
	}
	for _, allowed := range h.allowedOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}

type wsAuthMessage struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

// HandleConnection 负责升级连接并启动读写循环。
func (h *WsHandler) HandleConnection(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("upgrade websocket failed", slog.Any("error", err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	baseLog := h.logger.With(
		slog.String("client_ip", c.ClientIP()),
	)

	usernameCh := make(chan string, 1)
	errCh := make(chan error, 2)

	go h.readLoop(ctx, conn, usernameCh, errCh, cancel, baseLog)

	var username string
	select {
	case <-ctx.Done():
		return
	case err := <-errCh:
		if err != nil {
			baseLog.Warn("websocket authentication failed", slog.Any("error", err))
		}
		return
	case username = <-usernameCh:
	}

	userLog := baseLog.With(slog.String("username", username))
	go h.subscribeLoop(ctx, conn, username, errCh, cancel, userLog)

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			userLog.Info("websocket connection closed", slog.Any("error", err))
		} else {
			userLog.Info("websocket connection closed")
		}
	}
}

// authenticate 校验首帧中的令牌，并要求令牌所属会话仍然有效。
func (h *WsHandler) authenticate(ctx context.Context, message []byte) (string, error) {
	var authMsg wsAuthMessage
	if err := json.Unmarshal(message, &authMsg); err != nil {
		return "", fmt.Errorf("decode auth payload: %w", err)
	}
	if authMsg.Type != "auth" || authMsg.Token == "" {
		return "", errors.New("invalid auth message")
	}
	claims, err := h.tokens.ValidateToken(authMsg.Token)
	if err != nil {
		return "", fmt.Errorf("validate token: %w", err)
	}
	active, err := h.sessions.IsSessionActive(ctx, claims.Username, claims.SessionID)
	if err != nil {
		return "", fmt.Errorf("check session: %w", err)
	}
	if !active {
		return "", errors.New("session is not active")
	}
	return claims.Username, nil
}

func (h *WsHandler) readLoop(
	ctx context.Context,
	conn *websocket.Conn,
	usernameCh chan<- string,
	errCh chan<- error,
	cancel context.CancelFunc,
	log *slog.Logger,
) {
	authenticated := false

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			writeClose(conn, websocket.CloseAbnormalClosure, "read error")
			errCh <- fmt.Errorf("read message: %w", err)
			cancel()
			return
		}

		if !authenticated {
			username, err := h.authenticate(ctx, message)
			if err != nil {
				writeClose(conn, websocket.ClosePolicyViolation, "unauthorized")
				errCh <- err
				cancel()
				return
			}

			authenticated = true
			usernameCh <- username
			log.Info("websocket authenticated", slog.String("username", username))
			continue
		}

		// 认证后客户端无需再发消息，保持读取以检测断开。
	}
}

func writeClose(conn *websocket.Conn, code int, text string) {
	deadline := time.Now().Add(5 * time.Second)
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, text), deadline)
}

func (h *WsHandler) subscribeLoop(
	ctx context.Context,
	conn *websocket.Conn,
	username string,
	errCh chan<- error,
	cancel context.CancelFunc,
	log *slog.Logger,
) {
	channel := notification.Channel(username)
	pubsub := h.redisClient.Subscribe(ctx, channel)
	defer pubsub.Close()

	log.Info("subscribed to redis channel", slog.String("channel", channel))

	ch := pubsub.Channel()
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				errCh <- errors.New("pubsub channel closed")
				cancel()
				return
			}

			log.Debug("forwarding notification to client", slog.String("channel", channel))
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				errCh <- fmt.Errorf("write message: %w", err)
				cancel()
				return
			}
		case <-ticker.C:
			deadline := time.Now().Add(5 * time.Second)
			if err := conn.WriteControl(websocket.PingMessage, []byte("ping"), deadline); err != nil {
				errCh <- fmt.Errorf("write ping: %w", err)
				cancel()
				return
			}
		}
	}
}
