package history

import (
	"context"
	"errors"
	"fmt"

	"github.com/matt20966/owner-schedule/pkg/remote"
	"github.com/matt20966/owner-schedule/pkg/schedule"
	log "github.com/sirupsen/logrus"
)

var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// InversionError reports a failed undo or redo. The stacks are restored to
// their pre-attempt state before it is returned; no history is lost.
type InversionError struct {
	Op  string
	Err error
}

func (e *InversionError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *InversionError) Unwrap() error {
	return e.Err
}

// CommandLog owns the undo and redo stacks and replays inverses against the
// remote store. The stacks are reachable only through Commit, Undo and Redo;
// callers are expected to serialize access (the planner does).
type CommandLog struct {
	gateway remote.Client
	undo    []Action
	redo    []Action
}

func NewCommandLog(gateway remote.Client) *CommandLog {
	return &CommandLog{gateway: gateway}
}

// Commit records a successfully applied mutation. Every commit invalidates
// the whole redo stack.
func (l *CommandLog) Commit(action Action) {
	log.Debugf("Committing %s action to history", action.Kind())
	l.undo = append(l.undo, action)
	l.redo = nil
}

func (l *CommandLog) CanUndo() bool { return len(l.undo) > 0 }
func (l *CommandLog) CanRedo() bool { return len(l.redo) > 0 }

// Depths returns the sizes of the undo and redo stacks.
func (l *CommandLog) Depths() (int, int) {
	return len(l.undo), len(l.redo)
}

// Undo pops the most recent action, issues its inverse against the store and
// moves the (possibly re-annotated) action to the redo stack. On failure the
// action is restored to the undo stack unchanged.
func (l *CommandLog) Undo(ctx context.Context) error {
	if len(l.undo) == 0 {
		return ErrNothingToUndo
	}
	action := l.undo[len(l.undo)-1]
	l.undo = l.undo[:len(l.undo)-1]

	inverted, err := l.invert(ctx, action)
	if err != nil {
		l.undo = append(l.undo, action)
		log.Errorf("Undo of %s action failed: %v", action.Kind(), err)
		return &InversionError{Op: "undo", Err: err}
	}
	l.redo = append(l.redo, inverted)
	return nil
}

// Redo pops the most recent undone action, re-issues the forward mutation
// and moves the action back to the undo stack. On failure the action is
// restored to the redo stack unchanged.
func (l *CommandLog) Redo(ctx context.Context) error {
	if len(l.redo) == 0 {
		return ErrNothingToRedo
	}
	action := l.redo[len(l.redo)-1]
	l.redo = l.redo[:len(l.redo)-1]

	reapplied, err := l.reapply(ctx, action)
	if err != nil {
		l.redo = append(l.redo, action)
		log.Errorf("Redo of %s action failed: %v", action.Kind(), err)
		return &InversionError{Op: "redo", Err: err}
	}
	l.undo = append(l.undo, reapplied)
	return nil
}

// invert issues the inverse mutation for one action and returns the record
// to push onto the redo stack.
func (l *CommandLog) invert(ctx context.Context, action Action) (Action, error) {
	switch a := action.(type) {
	case AddAction:
		if err := l.gateway.Delete(ctx, a.EventID, schedule.ScopeSingle); err != nil {
			return nil, err
		}
		return a, nil
	case EditAction:
		// Narrowed to the single edited instance regardless of the
		// forward scope.
		if err := l.gateway.Update(ctx, a.EventID, schedule.ScopeSingle, a.Original); err != nil {
			return nil, err
		}
		return a, nil
	case DeleteAction:
		created, err := l.gateway.Create(ctx, a.Payload)
		if err != nil {
			return nil, err
		}
		a.EventID = created.ID
		return a, nil
	default:
		return nil, fmt.Errorf("unknown action variant %T", action)
	}
}

// reapply re-issues the forward mutation for one action and returns the
// record to push back onto the undo stack.
func (l *CommandLog) reapply(ctx context.Context, action Action) (Action, error) {
	switch a := action.(type) {
	case AddAction:
		created, err := l.gateway.Create(ctx, a.Payload)
		if err != nil {
			return nil, err
		}
		a.EventID = created.ID
		return a, nil
	case EditAction:
		if err := l.gateway.Update(ctx, a.EventID, a.Scope, a.Updated); err != nil {
			return nil, err
		}
		return a, nil
	case DeleteAction:
		if err := l.gateway.Delete(ctx, a.EventID, a.Scope); err != nil {
			return nil, err
		}
		return a, nil
	default:
		return nil, fmt.Errorf("unknown action variant %T", action)
	}
}
