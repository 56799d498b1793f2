package planner

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/matt20966/owner-schedule/pkg/schedule"
)

// ErrPendingNotFound means the token names no pending change. Tokens are
// single-use: confirmation and cancellation both consume them.
var ErrPendingNotFound = errors.New("no pending change for this token")

// pendingMove is a drag or resize gesture on a recurring event waiting for a
// scope decision. No store mutation has been issued for it yet.
type pendingMove struct {
	Target    schedule.Event
	Original  schedule.EventPayload
	Updated   schedule.EventPayload
	CreatedAt time.Time
}

type pendingRegistry struct {
	mu    sync.Mutex
	moves map[string]pendingMove
}

func newPendingRegistry() *pendingRegistry {
	return &pendingRegistry{moves: map[string]pendingMove{}}
}

func (r *pendingRegistry) register(move pendingMove) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	token := uuid.NewString()
	r.moves[token] = move
	return token
}

func (r *pendingRegistry) get(token string) (pendingMove, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	move, ok := r.moves[token]
	return move, ok
}

func (r *pendingRegistry) remove(token string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.moves[token]; !ok {
		return false
	}
	delete(r.moves, token)
	return true
}
