package models

// Task is a single to-do item owned by one user.
//
// The owner is serialized as "username" so documents written by earlier
// deployments and the web client keep working unchanged.
type Task struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
	Owner     string `json:"username"`
}

// LoginRequest represents the body of a login call
type LoginRequest struct {
	Username string `json:"username"`
}

// CreateTaskRequest represents the request to create a task
type CreateTaskRequest struct {
	Title    string `json:"title"`
	Username string `json:"username"`
}

// UpdateTaskRequest represents the request to edit a task. The task is
// addressed by the path; an "id" in the body is ignored.
// Username is only used to verify ownership; it never reassigns the task.
type UpdateTaskRequest struct {
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
	Username  string `json:"username"`
}
