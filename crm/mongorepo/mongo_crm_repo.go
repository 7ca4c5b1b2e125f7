package crmmongorepo

import (
	"context"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-crm/crm"
	crmerrors "github.com/jrsteele09/go-crm/internal/errors"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

const (
	LeadsCollection     = "leads"
	EmployeesCollection = "employees"
)

var (
	_ crm.LeadRepo     = (*LeadRepo)(nil)
	_ crm.EmployeeRepo = (*EmployeeRepo)(nil)
)

type LeadRepo struct {
	coll *mongo.Collection
}

func NewLeadRepo(db *mongo.Database) *LeadRepo {
	return &LeadRepo{coll: db.Collection(LeadsCollection)}
}

func (r *LeadRepo) Insert(ctx context.Context, lead *crm.Lead) error {
	if lead.ID == "" {
		lead.ID = uuid.New().String()
	}
	_, err := r.coll.InsertOne(ctx, lead)
	return crmerrors.Wrapf(err, "[crmmongorepo LeadRepo.Insert]")
}

func (r *LeadRepo) Count(ctx context.Context) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.D{})
	return n, crmerrors.Wrapf(err, "[crmmongorepo LeadRepo.Count]")
}

type EmployeeRepo struct {
	coll *mongo.Collection
}

func NewEmployeeRepo(db *mongo.Database) *EmployeeRepo {
	return &EmployeeRepo{coll: db.Collection(EmployeesCollection)}
}

func (r *EmployeeRepo) Insert(ctx context.Context, employee *crm.Employee) error {
	if employee.ID == "" {
		employee.ID = uuid.New().String()
	}
	_, err := r.coll.InsertOne(ctx, employee)
	return crmerrors.Wrapf(err, "[crmmongorepo EmployeeRepo.Insert]")
}

func (r *EmployeeRepo) Count(ctx context.Context) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.D{})
	return n, crmerrors.Wrapf(err, "[crmmongorepo EmployeeRepo.Count]")
}
