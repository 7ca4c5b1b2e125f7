// Package crm holds the records the dashboard counts.
package crm

import (
	"context"
	"strings"
	"time"

	crmerrors "github.com/jrsteele09/go-crm/internal/errors"
)

type LeadStatus string

const (
	LeadNew       LeadStatus = "new"
	LeadContacted LeadStatus = "contacted"
	LeadQualified LeadStatus = "qualified"
	LeadLost      LeadStatus = "lost"
)

func (s LeadStatus) Valid() bool {
	switch s {
	case LeadNew, LeadContacted, LeadQualified, LeadLost:
		return true
	}
	return false
}

type Lead struct {
	ID        string     `json:"id" bson:"_id"`
	Name      string     `json:"name" bson:"name"`
	Email     string     `json:"email,omitempty" bson:"email,omitempty"`
	Company   string     `json:"company,omitempty" bson:"company,omitempty"`
	Status    LeadStatus `json:"status" bson:"status"`
	OwnerID   string     `json:"owner_id" bson:"owner_id"` // User that created the lead
	CreatedAt time.Time  `json:"created_at" bson:"created_at"`
}

type Employee struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	Email     string    `json:"email,omitempty" bson:"email,omitempty"`
	Role      string    `json:"role,omitempty" bson:"role,omitempty"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// Validate trims fields and applies the default status.
func (l *Lead) Validate() error {
	l.Name = strings.TrimSpace(l.Name)
	if l.Name == "" {
		return crmerrors.Wrapf(crmerrors.ErrInvalidRequest, "lead name is required")
	}
	if l.Status == "" {
		l.Status = LeadNew
	}
	if !l.Status.Valid() {
		return crmerrors.Wrapf(crmerrors.ErrInvalidRequest, "unknown lead status %q", l.Status)
	}
	return nil
}

func (e *Employee) Validate() error {
	e.Name = strings.TrimSpace(e.Name)
	if e.Name == "" {
		return crmerrors.Wrapf(crmerrors.ErrInvalidRequest, "employee name is required")
	}
	return nil
}

type LeadRepo interface {
	Insert(ctx context.Context, lead *Lead) error
	Count(ctx context.Context) (int64, error)
}

type EmployeeRepo interface {
	Insert(ctx context.Context, employee *Employee) error
	Count(ctx context.Context) (int64, error)
}
