package port

import (
	"errors"
	"fmt"
)

// ErrJobNotFound is returned by the repository when the referenced job does
// not exist. Update never creates a row.
var ErrJobNotFound = errors.New("ad video job not found")

// PlanningError means the scene planner failed or returned a malformed plan.
// Fatal to the enqueue request; no job is created.
type PlanningError struct {
	Err error
}

func (e *PlanningError) Error() string { return fmt.Sprintf("plan scenes: %v", e.Err) }
func (e *PlanningError) Unwrap() error { return e.Err }

// PersistenceError means a job store write failed.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return fmt.Sprintf("%s job: %v", e.Op, e.Err) }
func (e *PersistenceError) Unwrap() error { return e.Err }

// PublishError means queue resolution or send failed. Fatal to the whole
// enqueue batch for the job; the job record stays PENDING.
type PublishError struct {
	Queue string
	Err   error
}

func (e *PublishError) Error() string { return fmt.Sprintf("publish to %s: %v", e.Queue, e.Err) }
func (e *PublishError) Unwrap() error { return e.Err }

// DispatchError means a scene handler failed. Caught at the listener
// boundary; the message is still deleted.
type DispatchError struct {
	SceneType string
	Err       error
}

func (e *DispatchError) Error() string { return fmt.Sprintf("dispatch %s: %v", e.SceneType, e.Err) }
func (e *DispatchError) Unwrap() error { return e.Err }
