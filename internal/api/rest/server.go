package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jgosmann/linux-bsec-exporter/internal/api/websocket"
	"github.com/jgosmann/linux-bsec-exporter/internal/engine"
)

// ReadingsProvider exposes the newest completed output set.
type ReadingsProvider interface {
	Latest() ([]engine.Output, uint64)
}

type Server struct {
	router   *gin.Engine
	logger   *zap.Logger
	server   *http.Server
	wsHub    *websocket.Hub
	readings ReadingsProvider
	metrics  http.Handler
}

func NewServer(addr string, readings ReadingsProvider, metrics http.Handler, wsHub *websocket.Hub, logger *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		router:   gin.New(),
		logger:   logger,
		wsHub:    wsHub,
		readings: readings,
		metrics:  metrics,
	}

	s.setupRoutes()

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) Start() error {
	s.logger.Info("Starting exporter HTTP server", zap.String("address", s.server.Addr))
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Fatal("Exporter HTTP server failed", zap.Error(err))
		}
	}()
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down exporter HTTP server")
	return s.server.Shutdown(ctx)
}

func (s *Server) setupRoutes() {
	// Middleware
	s.router.Use(gin.Recovery())
	s.router.Use(LoggerMiddleware(s.logger))

	// Public routes
	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", gin.WrapH(s.metrics))

	// API v1
	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/readings", s.getReadings)

		ws := v1.Group("/ws")
		{
			ws.GET("/live", s.wsLiveConnection)
			ws.GET("/status", s.wsStatus)
		}
	}
}

// readingsResponse is the payload of GET /api/v1/readings.
type readingsResponse struct {
	Version  uint64                  `json:"version"`
	Readings []websocket.ReadingData `json:"readings"`
}

func (s *Server) getReadings(c *gin.Context) {
	outputs, version := s.readings.Latest()
	readings := make([]websocket.ReadingData, 0, len(outputs))
	for _, output := range outputs {
		readings = append(readings, websocket.ReadingData{
			Sensor:      output.Sensor.String(),
			Signal:      output.Signal,
			Accuracy:    output.Accuracy.String(),
			TimestampNS: output.TimestampNS,
		})
	}
	c.JSON(http.StatusOK, readingsResponse{Version: version, Readings: readings})
}

// WebSocket handlers
func (s *Server) wsLiveConnection(c *gin.Context) {
	websocket.ServeWs(s.wsHub, c.Writer, c.Request)
}

func (s *Server) wsStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"connected_clients": s.wsHub.GetClientCount(),
	})
}

// Health check (public)
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
	})
}

// LoggerMiddleware logs one line per handled request.
func LoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("Request handled",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)))
	}
}
