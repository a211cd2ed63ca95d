package tasks

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/taskmanager/taskmanager/internal/models"
)

// TaskService implements the TaskManager interface.
//
// Every operation reloads the whole collection it touches, mutates it and
// writes it back. The per-collection locks are held across that cycle so
// concurrent requests in this process cannot overwrite each other's changes.
type TaskService struct {
	store CollectionStore
	newID func() string

	usersMu sync.Mutex
	tasksMu sync.RWMutex
}

// NewTaskService creates a new task service instance
func NewTaskService(store CollectionStore) *TaskService {
	return &TaskService{
		store: store,
		newID: func() string { return uuid.New().String() },
	}
}

// RegisterUser records username in the users collection if it is not there yet
func (s *TaskService) RegisterUser(ctx context.Context, username string) error {
	if strings.TrimSpace(username) == "" {
		return NewInvalidInputError("Username is required")
	}

	s.usersMu.Lock()
	defer s.usersMu.Unlock()

	users, err := s.store.LoadUsers(ctx)
	if err != nil {
		return NewStoreUnavailableError(err)
	}

	for _, u := range users {
		if u == username {
			return nil
		}
	}

	users = append(users, username)
	if err := s.store.SaveUsers(ctx, users); err != nil {
		return NewStoreUnavailableError(err)
	}
	return nil
}

// CreateTask appends a new incomplete task owned by req.Username
func (s *TaskService) CreateTask(ctx context.Context, req *models.CreateTaskRequest) (*models.Task, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, NewInvalidInputError("Title cannot be empty")
	}
	if strings.TrimSpace(req.Username) == "" {
		return nil, NewInvalidInputError("Username is required")
	}

	s.tasksMu.Lock()
	defer s.tasksMu.Unlock()

	tasks, err := s.store.LoadTasks(ctx)
	if err != nil {
		return nil, NewStoreUnavailableError(err)
	}

	index := indexByID(tasks)
	id := s.newID()
	for {
		if _, taken := index[id]; !taken {
			break
		}
		id = s.newID()
	}

	task := models.Task{
		ID:        id,
		Title:     title,
		Completed: false,
		Owner:     req.Username,
	}

	tasks = append(tasks, task)
	if err := s.store.SaveTasks(ctx, tasks); err != nil {
		return nil, NewStoreUnavailableError(err)
	}

	return &task, nil
}

// ListTasks returns the tasks owned by username in insertion order
func (s *TaskService) ListTasks(ctx context.Context, username string) ([]models.Task, error) {
	s.tasksMu.RLock()
	defer s.tasksMu.RUnlock()

	tasks, err := s.store.LoadTasks(ctx)
	if err != nil {
		return nil, NewStoreUnavailableError(err)
	}

	owned := make([]models.Task, 0)
	for _, t := range tasks {
		if t.Owner == username {
			owned = append(owned, t)
		}
	}
	return owned, nil
}

// ToggleComplete flips the completed flag of a task. Two calls restore the
// original state.
func (s *TaskService) ToggleComplete(ctx context.Context, taskID string) (*models.Task, error) {
	s.tasksMu.Lock()
	defer s.tasksMu.Unlock()

	tasks, err := s.store.LoadTasks(ctx)
	if err != nil {
		return nil, NewStoreUnavailableError(err)
	}

	i, found := indexByID(tasks)[taskID]
	if !found {
		return nil, NewTaskNotFoundError(taskID)
	}

	tasks[i].Completed = !tasks[i].Completed
	if err := s.store.SaveTasks(ctx, tasks); err != nil {
		return nil, NewStoreUnavailableError(err)
	}

	task := tasks[i]
	return &task, nil
}

// UpdateTask replaces the title and completed flag of a task owned by
// req.Username. The id and owner are never changed.
func (s *TaskService) UpdateTask(ctx context.Context, taskID string, req *models.UpdateTaskRequest) (*models.Task, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, NewInvalidInputError("Title cannot be empty")
	}

	s.tasksMu.Lock()
	defer s.tasksMu.Unlock()

	tasks, err := s.store.LoadTasks(ctx)
	if err != nil {
		return nil, NewStoreUnavailableError(err)
	}

	i, found := indexByID(tasks)[taskID]
	if !found {
		return nil, NewTaskNotFoundError(taskID)
	}
	if tasks[i].Owner != req.Username {
		return nil, NewForbiddenError(taskID)
	}

	tasks[i].Title = title
	tasks[i].Completed = req.Completed
	if err := s.store.SaveTasks(ctx, tasks); err != nil {
		return nil, NewStoreUnavailableError(err)
	}

	task := tasks[i]
	return &task, nil
}

// DeleteTask removes a task from the collection
func (s *TaskService) DeleteTask(ctx context.Context, taskID string) error {
	s.tasksMu.Lock()
	defer s.tasksMu.Unlock()

	tasks, err := s.store.LoadTasks(ctx)
	if err != nil {
		return NewStoreUnavailableError(err)
	}

	i, found := indexByID(tasks)[taskID]
	if !found {
		return NewTaskNotFoundError(taskID)
	}

	tasks = append(tasks[:i], tasks[i+1:]...)
	if err := s.store.SaveTasks(ctx, tasks); err != nil {
		return NewStoreUnavailableError(err)
	}
	return nil
}

// indexByID maps each id to the position of its first occurrence
func indexByID(tasks []models.Task) map[string]int {
	index := make(map[string]int, len(tasks))
	for i, t := range tasks {
		if _, seen := index[t.ID]; !seen {
			index[t.ID] = i
		}
	}
	return index
}
