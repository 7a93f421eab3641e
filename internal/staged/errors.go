package staged

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotLoaded     = errors.New("collection not loaded")
	ErrBusy          = errors.New("collection is loading or committing")
	ErrUnknownItem   = errors.New("unknown item")
	ErrInvalidOrder  = errors.New("reorder must be a permutation of the current items")
	ErrNoDefaultFlag = errors.New("collection has no default flag")
)

// Step es un paso del commit, en el orden en que se ejecutan
type Step string

const (
	StepCreate  Step = "create"
	StepUpdate  Step = "update"
	StepDelete  Step = "delete"
	StepDefault Step = "default"
	StepReorder Step = "reorder"
)

// CommitStepError indica qué llamada remota falló durante el commit
type CommitStepError struct {
	Step Step
	ID   ID
	Err  error
}

func (e *CommitStepError) Error() string {
	if e.ID.IsZero() {
		return fmt.Sprintf("commit %s failed: %v", e.Step, e.Err)
	}
	return fmt.Sprintf("commit %s %s failed: %v", e.Step, e.ID, e.Err)
}

func (e *CommitStepError) Unwrap() error { return e.Err }

// PartialCommitError indica que algunas llamadas se aplicaron en el servidor
// antes del fallo: el estado local ya no es confiable y conviene recargar.
type PartialCommitError struct {
	Completed []Step
	Applied   int
	Err       *CommitStepError
}

func (e *PartialCommitError) Error() string {
	done := make([]string, len(e.Completed))
	for i, s := range e.Completed {
		done[i] = string(s)
	}
	return fmt.Sprintf("partial commit (%d calls applied, steps done: [%s]): %v",
		e.Applied, strings.Join(done, ","), e.Err)
}

func (e *PartialCommitError) Unwrap() error { return e.Err }
