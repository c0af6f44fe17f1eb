package graph

import (
	"errors"
	"fmt"

	"github.com/mwhitford/abacus/internal/issue"
)

// ErrEmptyRequest is returned when an edge mutation names nothing to add or
// remove.
var ErrEmptyRequest = errors.New("no dependencies to add or remove")

// NotFoundError reports a referenced issue id that does not exist.
type NotFoundError struct {
	ID int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", issue.Ref(e.ID))
}

// CycleError reports an edge whose addition would close a dependency cycle.
// From == To for a rejected self-dependency.
type CycleError struct {
	From int // the issue that would depend on To
	To   int
}

func (e *CycleError) Error() string {
	if e.From == e.To {
		return fmt.Sprintf("%s cannot depend on itself", issue.Ref(e.From))
	}
	return fmt.Sprintf("%s -> %s would create a dependency cycle", issue.Ref(e.From), issue.Ref(e.To))
}

// PartialWriteError reports a blocks-list update that failed after the
// subject's depends_on was already persisted. DependsOn carries the
// committed forward list; callers can retry the same request (Apply is
// idempotent) or repair the mirror by hand.
type PartialWriteError struct {
	ID        int   // record whose blocks update failed
	DependsOn []int // the subject's committed depends_on
	Err       error
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("dependency update committed but reverse list on %s failed: %v", issue.Ref(e.ID), e.Err)
}

func (e *PartialWriteError) Unwrap() error { return e.Err }
