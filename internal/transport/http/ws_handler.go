package http

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"quiz-result-service/internal/app"
	"quiz-result-service/internal/domain"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// WSHandler streams leaderboard snapshots for one quiz over a websocket.
type WSHandler struct {
	results  *app.ResultService
	quizzes  *app.QuizService
	feed     *app.LeaderboardFeed
	size     int
	log      *zap.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(results *app.ResultService, quizzes *app.QuizService, feed *app.LeaderboardFeed, size int, origins []string, log *zap.Logger) *WSHandler {
	if size <= 0 {
		size = app.DefaultLeaderboardSize
	}
	return &WSHandler{
		results: results,
		quizzes: quizzes,
		feed:    feed,
		size:    size,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(origins),
		},
	}
}

// originChecker applies the CORS origin list to websocket upgrades. With no
// list configured only same-origin requests are accepted.
func originChecker(origins []string) func(r *http.Request) bool {
	if len(origins) == 0 {
		return nil
	}
	if slices.Contains(origins, "*") {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, allowed := range origins {
			if strings.EqualFold(origin, allowed) {
				return true
			}
		}
		u, err := url.Parse(origin)
		return err == nil && strings.EqualFold(u.Host, r.Host)
	}
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

// ServeWS sends the current leaderboard, then every update until the client goes away.
// Clients are not expected to send anything; reads only detect disconnects.
func (h *WSHandler) ServeWS(c *gin.Context) {
	quizID, err := strconv.ParseInt(c.Query("quizId"), 10, 64)
	if err != nil || quizID <= 0 {
		jsonError(c, http.StatusBadRequest, "missing or invalid quizId")
		return
	}

	ctx := c.Request.Context()
	if _, err := h.quizzes.Get(ctx, quizID); err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	updates, cancel, err := h.feed.SubscribeLoaded(ctx, quizID, func(ctx context.Context) (domain.Leaderboard, error) {
		return h.results.Leaderboard(ctx, quizID, h.size)
	})
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	defer cancel()

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case lb, ok := <-updates:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(outboundMessage[domain.Leaderboard]{Type: "leaderboard", Payload: lb}); err != nil {
				h.logWriteError(quizID, err)
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				h.logWriteError(quizID, err)
				return
			}
		case <-closed:
			return
		}
	}
}

func (h *WSHandler) logWriteError(quizID int64, err error) {
	if errors.Is(err, websocket.ErrCloseSent) || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		return
	}
	h.log.Debug("ws write error", zap.Int64("quiz_id", quizID), zap.Error(err))
}
