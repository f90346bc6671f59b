package domain

import "time"

const (
	ActivityMood = "mood"
	ActivityTask = "task"
)

// Actor identifies who generated an activity record.
type Actor struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

// MoodActivity carries the tags of a status entry.
type MoodActivity struct {
	Moods    []string `json:"moods"`
	Feelings []string `json:"feelings"`
}

// TaskActivity carries the state of a task at the time of the event.
type TaskActivity struct {
	TaskID   string `json:"task_id"`
	Title    string `json:"title"`
	Status   string `json:"status"`
	Priority string `json:"priority"`
}

// Activity is the feed projection of a status entry or a task event.
// Exactly one of Mood and Task is set, selected by Kind.
type Activity struct {
	ID         string        `json:"id"`
	Kind       string        `json:"kind"`
	GroupID    string        `json:"group_id"`
	OccurredAt time.Time     `json:"occurred_at"`
	Actor      Actor         `json:"actor"`
	Mood       *MoodActivity `json:"mood,omitempty"`
	Task       *TaskActivity `json:"task,omitempty"`
}

// ActivityFromStatus projects a status entry.
func ActivityFromStatus(entry StatusEntry, actor Actor) Activity {
	moods := append([]string{}, entry.Moods...)
	feelings := append([]string{}, entry.Feelings...)
	return Activity{
		ID:         entry.ID,
		Kind:       ActivityMood,
		GroupID:    entry.GroupID,
		OccurredAt: entry.CreatedAt,
		Actor:      actor,
		Mood:       &MoodActivity{Moods: moods, Feelings: feelings},
	}
}

// ActivityFromTaskEvent projects a task lifecycle event.
func ActivityFromTaskEvent(event TaskEvent, actor Actor) Activity {
	return Activity{
		ID:         event.ID,
		Kind:       ActivityTask,
		GroupID:    event.GroupID,
		OccurredAt: event.CreatedAt,
		Actor:      actor,
		Task: &TaskActivity{
			TaskID:   event.TaskID,
			Title:    event.Title,
			Status:   event.Status,
			Priority: event.Priority,
		},
	}
}
