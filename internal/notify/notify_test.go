package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueuePushDrain(t *testing.T) {
	q := NewQueue(10)
	q.Push(LevelInfo, "loaded")
	q.Push(LevelError, "failed to add item")

	got := q.Drain()
	require.Len(t, got, 2)
	assert.Equal(t, LevelInfo, got[0].Level)
	assert.Equal(t, "failed to add item", got[1].Message)
	assert.NotEmpty(t, got[1].ID)

	assert.Empty(t, q.Drain())
}

func TestQueueDropsOldestWhenFull(t *testing.T) {
	q := NewQueue(2)
	q.Push(LevelInfo, "a")
	q.Push(LevelInfo, "b")
	q.Push(LevelInfo, "c")

	got := q.Drain()
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].Message)
	assert.Equal(t, "c", got[1].Message)
}

func TestConfirmLifecycle(t *testing.T) {
	c := NewConfirmer(time.Minute)
	conf := c.Request("delete_day", 7)
	assert.Equal(t, StatePending, conf.State)
	require.NotEmpty(t, conf.Token)

	// wrong target or action must not pass
	assert.False(t, c.Confirm(conf.Token, "delete_day", 8))
	// token is single use, even on a failed match
	assert.False(t, c.Confirm(conf.Token, "delete_day", 7))

	conf = c.Request("delete_day", 7)
	assert.True(t, c.Confirm(conf.Token, "delete_day", 7))
	assert.False(t, c.Confirm(conf.Token, "delete_day", 7))
}

func TestConfirmExpiry(t *testing.T) {
	c := NewConfirmer(time.Minute)
	conf := c.Request("delete_item", 3)
	c.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	assert.False(t, c.Confirm(conf.Token, "delete_item", 3))
}

func TestCancel(t *testing.T) {
	c := NewConfirmer(time.Minute)
	conf := c.Request("delete_item", 3)
	assert.True(t, c.Cancel(conf.Token))
	assert.False(t, c.Cancel(conf.Token))
	assert.False(t, c.Confirm(conf.Token, "delete_item", 3))
}
