package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type ConfirmState string

const (
	StatePending   ConfirmState = "pending"
	StateConfirmed ConfirmState = "confirmed"
	StateCancelled ConfirmState = "cancelled"
)

// Confirmation is a pending approval for one destructive operation, bound to
// the action and target it was requested for.
type Confirmation struct {
	Token     string       `json:"token"`
	Action    string       `json:"action"`
	TargetID  uint         `json:"target_id"`
	State     ConfirmState `json:"state"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// Confirmer hands out single-use confirmation tokens. A destructive handler
// first requests a token, then executes only when the same action/target pair
// is presented with a live token.
type Confirmer struct {
	mu      sync.Mutex
	ttl     time.Duration
	pending map[string]Confirmation
	now     func() time.Time
}

func NewConfirmer(ttl time.Duration) *Confirmer {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &Confirmer{ttl: ttl, pending: make(map[string]Confirmation), now: time.Now}
}

// Request opens a pending confirmation for action on targetID.
func (c *Confirmer) Request(action string, targetID uint) Confirmation {
	c.mu.Lock()
	defer c.mu.Unlock()
	conf := Confirmation{
		Token:     uuid.NewString(),
		Action:    action,
		TargetID:  targetID,
		State:     StatePending,
		ExpiresAt: c.now().Add(c.ttl),
	}
	c.pending[conf.Token] = conf
	return conf
}

// Confirm consumes the token if it is pending, unexpired, and matches the
// action/target pair. The token is single-use either way.
func (c *Confirmer) Confirm(token, action string, targetID uint) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	conf, ok := c.pending[token]
	if !ok {
		return false
	}
	delete(c.pending, token)
	if c.now().After(conf.ExpiresAt) {
		return false
	}
	return conf.Action == action && conf.TargetID == targetID
}

// Cancel resolves a pending confirmation to cancelled.
func (c *Confirmer) Cancel(token string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.pending[token]; !ok {
		return false
	}
	delete(c.pending, token)
	return true
}
