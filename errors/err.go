package errors

import (
	"fmt"
)

var (
	ErrInvalidConfig  = fmt.Errorf("negotiator: invalid config")
	ErrNotFound       = fmt.Errorf("negotiator: not found")
	ErrInvalidParams  = fmt.Errorf("negotiator: invalid params")
	ErrInternal       = fmt.Errorf("negotiator: internal error")
	ErrInvalidRequest = fmt.Errorf("negotiator: invalid request")

	// Workflow conflicts. Clients should refetch the snapshot and decide.
	ErrThreadNotFound   = fmt.Errorf("negotiator: thread not found")
	ErrThreadPaused     = fmt.Errorf("negotiator: thread paused awaiting decision")
	ErrThreadCompleted  = fmt.Errorf("negotiator: thread completed")
	ErrNotPaused        = fmt.Errorf("negotiator: thread not paused")
	ErrNoPendingContext = fmt.Errorf("negotiator: no pending decision context")

	// Turn executor failures. Unavailable is transient and retryable,
	// rejected is terminal for that turn only.
	ErrExecutorUnavailable = fmt.Errorf("negotiator: executor unavailable")
	ErrExecutorRejected    = fmt.Errorf("negotiator: executor rejected turn")
)
