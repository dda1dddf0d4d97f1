package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/johnquangdev/meeting-taskflow/pkg/config"
)

// Router holds all handlers
type Router struct {
	cfg                 *config.Config
	meetingHandler      *Meeting
	taskHandler         *Task
	notificationHandler *Notification
	teamHandler         *Team
	streamHandler       *Stream
	authMiddleware      echo.MiddlewareFunc
}

// NewRouter creates a new router with all handlers
func NewRouter(
	cfg *config.Config,
	meetingHandler *Meeting,
	taskHandler *Task,
	notificationHandler *Notification,
	teamHandler *Team,
	streamHandler *Stream,
	authMiddleware echo.MiddlewareFunc,
) *Router {
	return &Router{
		cfg:                 cfg,
		meetingHandler:      meetingHandler,
		taskHandler:         taskHandler,
		notificationHandler: notificationHandler,
		teamHandler:         teamHandler,
		streamHandler:       streamHandler,
		authMiddleware:      authMiddleware,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", rt.healthCheck)

	// API v1 group; everything below requires an authenticated actor
	v1 := e.Group("/v1", rt.authMiddleware)

	rt.setupMeetingRoutes(v1)
	rt.setupTaskRoutes(v1)
	rt.setupNotificationRoutes(v1)
	rt.setupTeamRoutes(v1)

	v1.GET("/stream", rt.streamHandler.Subscribe)
}

// setupMeetingRoutes configures meeting routes
func (rt *Router) setupMeetingRoutes(g *echo.Group) {
	meetings := g.Group("/meetings")
	meetings.POST("", rt.meetingHandler.Create)
	meetings.GET("", rt.meetingHandler.List)
	meetings.GET("/:id", rt.meetingHandler.Get)
	meetings.PUT("/:id", rt.meetingHandler.Update)
	meetings.DELETE("/:id", rt.meetingHandler.Delete)
	meetings.POST("/:id/process", rt.meetingHandler.Process)
	meetings.PUT("/:id/team", rt.meetingHandler.LinkTeam)
	meetings.GET("/:id/tasks", rt.meetingHandler.ListTasks)
}

// setupTaskRoutes configures task routes
func (rt *Router) setupTaskRoutes(g *echo.Group) {
	tasks := g.Group("/tasks")
	tasks.GET("", rt.taskHandler.ListMine)
	tasks.PUT("/:id/assignee", rt.taskHandler.Reassign)
	tasks.PUT("/:id/status", rt.taskHandler.UpdateStatus)
}

// setupNotificationRoutes configures inbox routes
func (rt *Router) setupNotificationRoutes(g *echo.Group) {
	notifications := g.Group("/notifications")
	notifications.GET("", rt.notificationHandler.List)
	notifications.PUT("/:id/read", rt.notificationHandler.MarkRead)
}

// setupTeamRoutes configures team membership routes
func (rt *Router) setupTeamRoutes(g *echo.Group) {
	teams := g.Group("/teams")
	teams.GET("/:id/members", rt.teamHandler.Roster)
	teams.GET("/:id/meetings", rt.meetingHandler.ListForTeam)
	teams.POST("/:id/invitations", rt.teamHandler.Invite)
	teams.PUT("/:id/invitation", rt.teamHandler.Respond)
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"environment": rt.cfg.Server.Environment,
	})
}
