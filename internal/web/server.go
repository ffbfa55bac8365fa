package web

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/chatrelay/chatrelay/internal"
	"github.com/chatrelay/chatrelay/internal/notify"
)

// Server is the HTTP front end: it decodes inbound webhook requests
// and maps them to broker calls. All broker semantics live in the
// internal package; handlers only translate.
type Server struct {
	manager    *internal.Manager
	dispatcher *internal.Dispatcher
	agent      *internal.AgentExecutor
	notifier   notify.Notifier
	whitelist  *internal.Whitelist
	log        *logrus.Logger
}

// NewServer wires the front end to its collaborators.
func NewServer(manager *internal.Manager, dispatcher *internal.Dispatcher, agent *internal.AgentExecutor, notifier notify.Notifier, whitelist *internal.Whitelist) *Server {
	return &Server{
		manager:    manager,
		dispatcher: dispatcher,
		agent:      agent,
		notifier:   notifier,
		whitelist:  whitelist,
		log:        internal.Logger,
	}
}

// Router builds the gin engine with middleware and routes.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.requestID(), s.accessLog())

	router.GET("/health", s.health)
	webhook := router.Group("/webhook")
	{
		webhook.POST("/notification", s.handleNotification)
		webhook.POST("/command", s.handleCommand)
		webhook.GET("/session/:token", s.getSession)
		webhook.GET("/stats", s.getStats)
		webhook.POST("/cleanup", s.cleanup)
	}
	return router
}

// requestID tags every request with a UUID, echoed in the response for
// correlation with the logs.
func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set("X-Request-ID", id)
		c.Next()
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.WithFields(logrus.Fields{
			"request_id": c.GetString("request_id"),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"elapsed":    time.Since(start).String(),
		}).Info("Request handled")
	}
}
