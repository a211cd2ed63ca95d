package tasks

import (
	"context"

	"github.com/taskmanager/taskmanager/internal/models"
)

// CollectionStore defines the whole-collection persistence the service needs
type CollectionStore interface {
	LoadUsers(ctx context.Context) ([]string, error)
	SaveUsers(ctx context.Context, users []string) error
	LoadTasks(ctx context.Context) ([]models.Task, error)
	SaveTasks(ctx context.Context, tasks []models.Task) error
}

// TaskManager defines the task and user operations exposed to transports
type TaskManager interface {
	RegisterUser(ctx context.Context, username string) error
	CreateTask(ctx context.Context, req *models.CreateTaskRequest) (*models.Task, error)
	ListTasks(ctx context.Context, username string) ([]models.Task, error)
	ToggleComplete(ctx context.Context, taskID string) (*models.Task, error)
	UpdateTask(ctx context.Context, taskID string, req *models.UpdateTaskRequest) (*models.Task, error)
	DeleteTask(ctx context.Context, taskID string) error
}
