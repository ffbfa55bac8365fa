package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chatrelay/chatrelay/internal"
	"github.com/chatrelay/chatrelay/internal/notify"
)

// Notification types accepted on /webhook/notification.
const (
	TypeCompleted = "completed"
	TypeWaiting   = "waiting"
	TypeError     = "error"
)

// NotificationRequest is the task-event payload posted by shell hooks
// when an automation task completes or pauses for input.
type NotificationRequest struct {
	Type        string `json:"type" binding:"required"`
	UserID      string `json:"user_id" binding:"required"`
	OpenID      string `json:"open_id" binding:"required"`
	TmuxSession string `json:"tmux_session" binding:"required"`
	ProjectName string `json:"project_name"`
	Description string `json:"description"`
	WorkingDir  string `json:"working_dir"`
	TaskOutput  string `json:"task_output"`
}

// NotificationResponse reports the issued token back to the hook.
type NotificationResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// CommandRequest carries a chat message of the form <token>:<command>.
type CommandRequest struct {
	OwnerID string `json:"owner_id" binding:"required"`
	Text    string `json:"text" binding:"required"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "webhook",
		"stats":   s.manager.Stats(),
	})
}

func (s *Server) handleNotification(c *gin.Context) {
	var req NotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NotificationResponse{
			Success: false,
			Error:   "invalid request body: " + err.Error(),
		})
		return
	}

	if req.Type != TypeCompleted && req.Type != TypeWaiting && req.Type != TypeError {
		c.JSON(http.StatusBadRequest, NotificationResponse{
			Success: false,
			Error:   "invalid notification type: " + req.Type,
		})
		return
	}

	openID, ok := s.whitelist.ResolveOpenID(req.UserID, req.OpenID)
	if !ok {
		c.JSON(http.StatusForbidden, NotificationResponse{
			Success: false,
			Error:   "failed to resolve user OpenID",
		})
		return
	}

	session, err := s.manager.Create(openID, req.UserID, req.TmuxSession, req.WorkingDir, req.Description, statusForType(req.Type))
	if err != nil {
		s.log.Errorf("Failed to create session: %v", err)
		c.JSON(http.StatusInternalServerError, NotificationResponse{
			Success: false,
			Error:   "failed to create session: " + err.Error(),
		})
		return
	}

	var text string
	if req.Type == TypeWaiting {
		text = notify.FormatTaskWaiting(session, req.ProjectName)
	} else {
		text = notify.FormatTaskCompleted(session, req.ProjectName, req.TaskOutput)
	}
	if err := s.notifier.Notify(c.Request.Context(), openID, text); err != nil {
		s.log.Errorf("Failed to send notification: %v", err)
		// The token is useless if the owner never received it.
		if _, delErr := s.manager.Delete(session.Token); delErr != nil {
			s.log.Errorf("Failed to delete undelivered session: %v", delErr)
		}
		c.JSON(http.StatusBadGateway, NotificationResponse{
			Success: false,
			Error:   "failed to send notification: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, NotificationResponse{
		Success: true,
		Token:   session.Token,
		Message: "notification sent with token " + session.Token,
	})
}

func (s *Server) handleCommand(c *gin.Context) {
	var req CommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	token, command, ok := internal.ParseRemoteCommand(req.Text)
	if !ok {
		// No token prefix: route the free-form message to the owner's
		// most recently active session through the CLI agent.
		result := s.agent.SendMessage(c.Request.Context(), req.OwnerID, req.Text)
		s.replyResult(c, req.OwnerID, result)
		return
	}

	result := s.dispatcher.Execute(c.Request.Context(), token, command)
	s.replyResult(c, req.OwnerID, result)
}

func (s *Server) replyResult(c *gin.Context, ownerID string, result *internal.ExecutionResult) {
	if err := s.notifier.Notify(c.Request.Context(), ownerID, notify.FormatCommandResult(result)); err != nil {
		s.log.Errorf("Failed to send result notification: %v", err)
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) getSession(c *gin.Context) {
	token := c.Param("token")
	session := s.manager.Validate(token)
	if session == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.JSON(http.StatusOK, session)
}

func (s *Server) getStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.manager.Stats())
}

func (s *Server) cleanup(c *gin.Context) {
	count, err := s.manager.SweepExpired()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": count})
}

func statusForType(notificationType string) string {
	switch notificationType {
	case TypeCompleted:
		return internal.StatusCompleted
	case TypeWaiting:
		return internal.StatusWaiting
	default:
		return internal.StatusActive
	}
}
