// Package notify replaces the widget's blocking alert/confirm dialogs with a
// drainable notification queue and an explicit confirmation state machine
// (pending -> confirmed|cancelled) for destructive operations.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

type Notification struct {
	ID      string    `json:"id"`
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Queue is a bounded in-memory notification buffer. When full, the oldest
// entry is dropped.
type Queue struct {
	mu    sync.Mutex
	max   int
	items []Notification
}

func NewQueue(max int) *Queue {
	if max <= 0 {
		max = 100
	}
	return &Queue{max: max}
}

func (q *Queue) Push(level Level, msg string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) >= q.max {
		q.items = q.items[1:]
	}
	q.items = append(q.items, Notification{
		ID:      uuid.NewString(),
		Level:   level,
		Message: msg,
		At:      time.Now(),
	})
}

// Drain returns all queued notifications and clears the queue.
func (q *Queue) Drain() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.items
	q.items = nil
	return out
}
