package api

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taskmanager/taskmanager/internal/health"
	"github.com/taskmanager/taskmanager/internal/models"
	"github.com/taskmanager/taskmanager/internal/tasks"
)

// TaskHandlers provides HTTP handlers for login and task operations
type TaskHandlers struct {
	service tasks.TaskManager
	health  *health.Manager
	logger  *zap.Logger
}

// NewTaskHandlers creates new task handlers
func NewTaskHandlers(service tasks.TaskManager, healthManager *health.Manager, logger *zap.Logger) *TaskHandlers {
	return &TaskHandlers{
		service: service,
		health:  healthManager,
		logger:  logger,
	}
}

// RegisterRoutes registers every route of the task API
func (h *TaskHandlers) RegisterRoutes(router gin.IRoutes) {
	router.GET("/", h.Root)
	router.HEAD("/", h.RootHead)
	router.GET("/favicon.ico", h.Favicon)
	router.GET("/health", h.HealthCheck)

	router.GET("/login", h.LoginPage)
	router.POST("/login", h.Login)

	router.GET("/tasks", h.RedirectTasks)
	router.POST("/tasks", h.CreateTask)
	router.GET("/tasks/:username", h.ListTasks)
	router.PUT("/tasks/complete/:taskId", h.ToggleComplete)
	router.PUT("/tasks/:taskId", h.UpdateTask)
	router.DELETE("/tasks/:taskId", h.DeleteTask)
}

func (h *TaskHandlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Task Manager API is running"})
}

func (h *TaskHandlers) RootHead(c *gin.Context) {
	c.Status(http.StatusOK)
}

func (h *TaskHandlers) Favicon(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// HealthCheck reports the state of every registered dependency
func (h *TaskHandlers) HealthCheck(c *gin.Context) {
	if h.health == nil {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now().Format(time.RFC3339)})
		return
	}

	results := h.health.RuntimeHealthCheck(c.Request.Context())
	services := gin.H{}
	healthy := true
	for name, err := range results {
		if err != nil {
			healthy = false
			services[name] = err.Error()
			continue
		}
		services[name] = "healthy"
	}

	if !healthy {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "unhealthy",
			"timestamp": time.Now().Format(time.RFC3339),
			"services":  services,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"services":  services,
	})
}

// User handlers

func (h *TaskHandlers) LoginPage(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Login page"})
}

func (h *TaskHandlers) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindError(c, err)
		return
	}

	if err := h.service.RegisterUser(c.Request.Context(), req.Username); err != nil {
		h.writeError(c, "Failed to login", err, zap.String("username", req.Username))
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Login successful"})
}

// Task handlers

// RedirectTasks sends GET /tasks?username=X to /tasks/X
func (h *TaskHandlers) RedirectTasks(c *gin.Context) {
	username := c.Query("username")
	if username == "" {
		h.badRequest(c, "Username is required")
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, "/tasks/"+url.PathEscape(username))
}

func (h *TaskHandlers) CreateTask(c *gin.Context) {
	var req models.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindError(c, err)
		return
	}

	task, err := h.service.CreateTask(c.Request.Context(), &req)
	if err != nil {
		h.writeError(c, "Failed to create task", err, zap.String("username", req.Username))
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "task": task})
}

func (h *TaskHandlers) ListTasks(c *gin.Context) {
	username := c.Param("username")

	list, err := h.service.ListTasks(c.Request.Context(), username)
	if err != nil {
		h.writeError(c, "Failed to list tasks", err, zap.String("username", username))
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "tasks": list})
}

func (h *TaskHandlers) ToggleComplete(c *gin.Context) {
	taskID := c.Param("taskId")

	task, err := h.service.ToggleComplete(c.Request.Context(), taskID)
	if err != nil {
		h.writeError(c, "Failed to toggle task", err, zap.String("task_id", taskID))
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "task": task})
}

func (h *TaskHandlers) UpdateTask(c *gin.Context) {
	taskID := c.Param("taskId")

	var req models.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindError(c, err)
		return
	}

	task, err := h.service.UpdateTask(c.Request.Context(), taskID, &req)
	if err != nil {
		h.writeError(c, "Failed to update task", err,
			zap.String("task_id", taskID),
			zap.String("username", req.Username))
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "task": task})
}

func (h *TaskHandlers) DeleteTask(c *gin.Context) {
	taskID := c.Param("taskId")

	if err := h.service.DeleteTask(c.Request.Context(), taskID); err != nil {
		h.writeError(c, "Failed to delete task", err, zap.String("task_id", taskID))
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Task deleted"})
}

func (h *TaskHandlers) badRequest(c *gin.Context, detail string) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "detail": detail})
}

// bindError reports a body that could not be decoded. Bodies cut off by
// MaxRequestSizeMiddleware are 413, anything else is 400.
func (h *TaskHandlers) bindError(c *gin.Context, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		h.logger.Warn("Request body too large",
			zap.String("path", c.Request.URL.Path),
			zap.Int64("limit", maxErr.Limit))
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"success": false, "detail": "Request body too large"})
		return
	}
	h.badRequest(c, "Invalid request body")
}

// writeError maps a service error to its status code. Client errors carry
// the service message; store failures are logged and reported generically.
func (h *TaskHandlers) writeError(c *gin.Context, action string, err error, fields ...zap.Field) {
	status := StatusFor(err)
	fields = append(fields, zap.Int("status", status), zap.Error(err))

	if status >= http.StatusInternalServerError {
		h.logger.Error(action, fields...)
		c.JSON(status, gin.H{"success": false, "detail": action})
		return
	}

	h.logger.Warn(action, fields...)

	detail := err.Error()
	if taskErr, ok := asTaskError(err); ok {
		detail = taskErr.Message
	}
	c.JSON(status, gin.H{"success": false, "detail": detail})
}

// StatusFor returns the HTTP status for a task service error
func StatusFor(err error) int {
	t, ok := tasks.ErrorTypeOf(err)
	if !ok {
		return http.StatusInternalServerError
	}

	switch t {
	case tasks.ErrorTypeInvalidInput:
		return http.StatusBadRequest
	case tasks.ErrorTypeForbidden:
		return http.StatusForbidden
	case tasks.ErrorTypeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
