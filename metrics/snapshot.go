package metrics

import (
	"errors"
	"fmt"
	"strings"
	"time"

	crmerrors "github.com/jrsteele09/go-crm/internal/errors"
)

// Snapshot is the dashboard's view of the two counters. A nil count means it
// has never been obtained.
type Snapshot struct {
	LeadsCount     *int
	EmployeesCount *int
	Loading        bool
	LastError      error
	UpdatedAt      time.Time
}

// PartialSnapshotFailure reports a refresh cycle in which at least one of the
// paired count requests failed. The whole cycle is treated as failed.
type PartialSnapshotFailure struct {
	Leads     error
	Employees error
}

func (e *PartialSnapshotFailure) Error() string {
	var parts []string
	if e.Leads != nil {
		parts = append(parts, fmt.Sprintf("leads: %v", e.Leads))
	}
	if e.Employees != nil {
		parts = append(parts, fmt.Sprintf("employees: %v", e.Employees))
	}
	return "count refresh failed: " + strings.Join(parts, "; ")
}

func (e *PartialSnapshotFailure) Unwrap() []error {
	return []error{e.Leads, e.Employees}
}

func (e *PartialSnapshotFailure) Is(target error) bool {
	return target == crmerrors.ErrPartialSnapshot
}

// IsPartialSnapshotFailure reports whether err is a failed refresh cycle.
func IsPartialSnapshotFailure(err error) bool {
	var failure *PartialSnapshotFailure
	return errors.As(err, &failure)
}
