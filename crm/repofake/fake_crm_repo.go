package crmrepofake

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-crm/crm"
	"github.com/pkg/errors"
)

var (
	_ crm.LeadRepo     = (*FakeLeadRepo)(nil)
	_ crm.EmployeeRepo = (*FakeEmployeeRepo)(nil)
)

type FakeLeadRepo struct {
	leads    map[string]*crm.Lead
	CountErr error // returned by Count when set
	lock     sync.RWMutex
}

func NewFakeLeadRepo() *FakeLeadRepo {
	return &FakeLeadRepo{leads: make(map[string]*crm.Lead)}
}

func (r *FakeLeadRepo) Insert(_ context.Context, lead *crm.Lead) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if lead.ID == "" {
		lead.ID = uuid.New().String()
	}
	if _, ok := r.leads[lead.ID]; ok {
		return errors.Errorf("lead %s already exists", lead.ID)
	}
	stored := *lead
	r.leads[lead.ID] = &stored
	return nil
}

func (r *FakeLeadRepo) Count(_ context.Context) (int64, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	if r.CountErr != nil {
		return 0, errors.Wrap(r.CountErr, "count leads")
	}
	return int64(len(r.leads)), nil
}

type FakeEmployeeRepo struct {
	employees map[string]*crm.Employee
	CountErr  error
	lock      sync.RWMutex
}

func NewFakeEmployeeRepo() *FakeEmployeeRepo {
	return &FakeEmployeeRepo{employees: make(map[string]*crm.Employee)}
}

func (r *FakeEmployeeRepo) Insert(_ context.Context, employee *crm.Employee) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if employee.ID == "" {
		employee.ID = uuid.New().String()
	}
	if _, ok := r.employees[employee.ID]; ok {
		return errors.Errorf("employee %s already exists", employee.ID)
	}
	stored := *employee
	r.employees[employee.ID] = &stored
	return nil
}

func (r *FakeEmployeeRepo) Count(_ context.Context) (int64, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	if r.CountErr != nil {
		return 0, errors.Wrap(r.CountErr, "count employees")
	}
	return int64(len(r.employees)), nil
}
