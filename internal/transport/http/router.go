package http

import (
	"net/http"
	"slices"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"quiz-result-service/internal/app"
	"quiz-result-service/internal/auth"
)

// RouterConfig holds the transport settings taken from the service config.
type RouterConfig struct {
	CORSOrigins     []string
	LeaderboardSize int
	MaxLeaderboard  int
}

// Services are the use cases exposed over HTTP.
type Services struct {
	Results  *app.ResultService
	Quizzes  *app.QuizService
	Feed     *app.LeaderboardFeed
	Verifier *auth.Verifier
}

// NewRouter wires every REST route and the leaderboard websocket.
func NewRouter(svc Services, cfg RouterConfig, log *zap.Logger) *gin.Engine {
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(RequestID(), RequestLogger(log), Recovery(log))
	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.New(corsConfig(cfg.CORSOrigins)))
	}

	results := NewResultHandler(svc.Results, log, cfg.LeaderboardSize, cfg.MaxLeaderboard)
	quizzes := NewQuizHandler(svc.Quizzes, log)
	ws := NewWSHandler(svc.Results, svc.Quizzes, svc.Feed, cfg.LeaderboardSize, cfg.CORSOrigins, log)

	authenticated := Authenticate(svc.Verifier)
	adminOnly := RequireAdmin()

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ws/leaderboard", ws.ServeWS)

	api := r.Group("/api")

	resultRoutes := api.Group("/results")
	resultRoutes.GET("/leaderboard/:quizId", results.Leaderboard)
	resultRoutes.POST("", authenticated, results.Submit)
	resultRoutes.GET("/user", authenticated, results.UserResults)
	resultRoutes.GET("/all", authenticated, adminOnly, results.All)
	resultRoutes.GET("/quiz/:quizId", authenticated, adminOnly, results.QuizResults)
	resultRoutes.GET("/:id", authenticated, results.Get)

	quizRoutes := api.Group("/quizzes")
	quizRoutes.GET("", quizzes.List)
	quizRoutes.GET("/:id", quizzes.Get)
	quizRoutes.POST("", authenticated, adminOnly, quizzes.Create)
	quizRoutes.PUT("/:id", authenticated, adminOnly, quizzes.Update)
	quizRoutes.DELETE("/:id", authenticated, adminOnly, quizzes.Delete)

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", requestIDHeader},
		ExposeHeaders: []string{"Content-Length", requestIDHeader},
	}
	if slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cfg
}
