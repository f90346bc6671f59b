package buffer

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	EntityProfile = "profile"
	EntityTask    = "task"
	EntityStatus  = "status"

	OperationCreate = "create"
	OperationUpdate = "update"
	OperationDelete = "delete"
)

// Lower values drain first. Check-ins surface in the feed, so they go ahead.
var entityPriority = map[string]int{
	EntityStatus:  2,
	EntityTask:    3,
	EntityProfile: 4,
}

// Item is a write that could not reach Postgres and waits to be replayed.
// UserID is the actor who issued the write.
type Item struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Entity    string          `json:"entity"`
	Operation string          `json:"operation"`
	Data      json.RawMessage `json:"data"`
	Priority  int             `json:"priority"`
	Retries   int             `json:"retries"`
	Timestamp time.Time       `json:"timestamp"`

	bucketKey []byte
}

func (i *Item) normalize() {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.Priority <= 0 || i.Priority > 5 {
		if p, ok := entityPriority[i.Entity]; ok {
			i.Priority = p
		} else {
			i.Priority = 5
		}
	}
	if i.Timestamp.IsZero() {
		i.Timestamp = time.Now()
	}
}
