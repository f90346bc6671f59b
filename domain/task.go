package domain

import "time"

const (
	TaskStatusPending    = "pending"
	TaskStatusInProgress = "in-progress"
	TaskStatusDone       = "done"

	TaskPriorityLow    = "low"
	TaskPriorityMedium = "medium"
	TaskPriorityHigh   = "high"
)

// Task represents a group-scoped caregiving activity item.
type Task struct {
	ID          string            `json:"id"`
	GroupID     string            `json:"group_id"`
	UserID      string            `json:"user_id"`
	AssigneeID  string            `json:"assignee_id,omitempty"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	Status      string            `json:"status"`
	Priority    string            `json:"priority"`
	DueDate     *time.Time        `json:"due_date,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

func (t *Task) IsCompleted() bool {
	return t != nil && t.Status == TaskStatusDone
}

// Normalize fills defaults and validates the closed status/priority sets.
func (t *Task) Normalize() error {
	if t == nil {
		return ErrInvalidPayload
	}
	if t.Title == "" {
		return Invalid("task title is required")
	}
	if t.Status == "" {
		t.Status = TaskStatusPending
	}
	if t.Priority == "" {
		t.Priority = TaskPriorityMedium
	}
	if !ValidTaskStatus(t.Status) {
		return Invalid("unknown task status %q", t.Status)
	}
	if !ValidTaskPriority(t.Priority) {
		return Invalid("unknown task priority %q", t.Priority)
	}
	return nil
}

// TaskEvent is one entry of a task's lifecycle log, surfaced in the activity feed.
type TaskEvent struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"task_id"`
	GroupID   string    `json:"group_id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	Priority  string    `json:"priority"`
	CreatedAt time.Time `json:"created_at"`
}

// EventFor snapshots the task into a lifecycle event authored by actorID.
func (t *Task) EventFor(actorID string) TaskEvent {
	return TaskEvent{
		TaskID:   t.ID,
		GroupID:  t.GroupID,
		UserID:   actorID,
		Title:    t.Title,
		Status:   t.Status,
		Priority: t.Priority,
	}
}

func ValidTaskStatus(s string) bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

func ValidTaskPriority(p string) bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}
