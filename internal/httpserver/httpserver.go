package httpserver

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lirakuid/liraku_bot/config"
)

// Server answers keep-alive probes from the hosting platform so the bot
// process is not put to sleep between updates.
type Server struct {
	cfg    *config.Config
	router *gin.Engine
}

func New(cfg *config.Config) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{cfg: cfg, router: router}

	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "LiraKuBot is running!")
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"bot":       "LiraKuBot",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	return s
}

func (s *Server) Start() {
	go func() {
		addr := fmt.Sprintf(":%d", s.cfg.HTTP.Port)
		slog.Info("http server started", slog.String("addr", addr))
		if err := s.router.Run(addr); err != nil {
			slog.Error("http server stopped", slog.String("err", err.Error()))
		}
	}()
}
