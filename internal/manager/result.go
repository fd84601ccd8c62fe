package manager

import (
	"errors"
	"fmt"

	"github.com/kingrea/plandesk/internal/planapi"
)

// Op names a request-backed operation.
type Op string

const (
	OpLoad   Op = "load"
	OpCreate Op = "create"
	OpSave   Op = "save"
	OpDelete Op = "delete"
)

// Result is the outcome of a finished operation, reported to the operator.
type Result struct {
	Op     Op
	PlanID int64
	Name   string
	Count  int
	Err    error
}

// OK reports whether the operation succeeded.
func (r Result) OK() bool { return r.Err == nil }

// Message renders a one-line summary for a status banner.
func (r Result) Message() string {
	if r.Err != nil {
		return fmt.Sprintf("%s failed: %s", r.subject(), describeError(r.Err))
	}
	switch r.Op {
	case OpLoad:
		if r.Count == 1 {
			return "Loaded 1 plan"
		}
		return fmt.Sprintf("Loaded %d plans", r.Count)
	case OpCreate:
		return fmt.Sprintf("Added plan %q (#%d)", r.Name, r.PlanID)
	case OpSave:
		return fmt.Sprintf("Saved plan %q (#%d)", r.Name, r.PlanID)
	case OpDelete:
		if r.Name != "" {
			return fmt.Sprintf("Deleted plan %q (#%d)", r.Name, r.PlanID)
		}
		return fmt.Sprintf("Deleted plan #%d", r.PlanID)
	}
	return string(r.Op)
}

func (r Result) subject() string {
	switch r.Op {
	case OpLoad:
		return "Loading plans"
	case OpCreate:
		return "Adding plan"
	case OpSave:
		return fmt.Sprintf("Saving plan #%d", r.PlanID)
	case OpDelete:
		return fmt.Sprintf("Deleting plan #%d", r.PlanID)
	}
	return string(r.Op)
}

func describeError(err error) string {
	var apiErr *planapi.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Body != "" {
			return fmt.Sprintf("server returned %d: %s", apiErr.StatusCode, apiErr.Body)
		}
		return fmt.Sprintf("server returned %d", apiErr.StatusCode)
	}
	return err.Error()
}
