package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"quiz-result-service/internal/domain"
)

func TestLeaderboardWebSocket(t *testing.T) {
	api := newTestAPI(t)
	server := httptest.NewServer(api.router)
	defer server.Close()

	u := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/leaderboard?quizId=1"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Initial snapshot arrives before any submission.
	initial := readLeaderboard(t, conn)
	if initial.QuizID != 1 || len(initial.Entries) != 0 {
		t.Fatalf("unexpected initial leaderboard %+v", initial)
	}

	submitDirect(t, api, 4, 25, true)

	update := readLeaderboard(t, conn)
	if len(update.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(update.Entries))
	}
	entry := update.Entries[0]
	if entry.Rank != 1 || entry.UserID != 4 || entry.TotalPoints != 3 || entry.TimeSpentSeconds != 25 {
		t.Fatalf("unexpected entry %+v", entry)
	}
}

func TestLeaderboardWebSocketRejectsUnknownQuiz(t *testing.T) {
	api := newTestAPI(t)
	server := httptest.NewServer(api.router)
	defer server.Close()

	base := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/leaderboard"
	for query, want := range map[string]int{"?quizId=99": http.StatusNotFound, "?quizId=x": http.StatusBadRequest} {
		_, resp, err := websocket.DefaultDialer.Dial(base+query, nil)
		if err == nil {
			t.Fatalf("%s: expected dial to fail", query)
		}
		if resp == nil || resp.StatusCode != want {
			t.Fatalf("%s: expected status %d, got %+v", query, want, resp)
		}
	}
}

func TestLeaderboardWebSocketChecksOrigin(t *testing.T) {
	api := newTestAPIWithOrigins(t, []string{"https://quiz.example"})
	server := httptest.NewServer(api.router)
	defer server.Close()

	u := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/leaderboard?quizId=1"

	_, resp, err := websocket.DefaultDialer.Dial(u, http.Header{"Origin": {"https://evil.example"}})
	if err == nil {
		t.Fatalf("expected dial from foreign origin to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %+v", resp)
	}

	conn, _, err := websocket.DefaultDialer.Dial(u, http.Header{"Origin": {"https://quiz.example"}})
	if err != nil {
		t.Fatalf("dial from allowed origin: %v", err)
	}
	defer conn.Close()
	if lb := readLeaderboard(t, conn); lb.QuizID != 1 {
		t.Fatalf("unexpected initial leaderboard %+v", lb)
	}
}

func TestOriginChecker(t *testing.T) {
	request := func(origin string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "http://api.local/ws/leaderboard", nil)
		if origin != "" {
			r.Header.Set("Origin", origin)
		}
		return r
	}

	if originChecker(nil) != nil {
		t.Fatalf("no configured origins should defer to the same-origin default")
	}
	if !originChecker([]string{"*"})(request("https://anything.example")) {
		t.Fatalf("wildcard should accept any origin")
	}

	check := originChecker([]string{"https://quiz.example"})
	cases := map[string]bool{
		"":                     true,
		"https://quiz.example": true,
		"HTTPS://QUIZ.EXAMPLE": true,
		"http://api.local":     true,
		"https://evil.example": false,
	}
	for origin, want := range cases {
		if got := check(request(origin)); got != want {
			t.Fatalf("origin %q: expected %v, got %v", origin, want, got)
		}
	}
}

func readLeaderboard(t *testing.T, conn *websocket.Conn) domain.Leaderboard {
	t.Helper()
	var msg struct {
		Type    string             `json:"type"`
		Payload domain.Leaderboard `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if msg.Type != "leaderboard" {
		t.Fatalf("expected leaderboard message, got %s", msg.Type)
	}
	return msg.Payload
}
