package mongouserrepo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	crmerrors "github.com/jrsteele09/go-crm/internal/errors"
	"github.com/jrsteele09/go-crm/users"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const CollectionName = "users"

var _ users.UserRepo = (*UserRepo)(nil)

type UserRepo struct {
	coll *mongo.Collection
}

func New(db *mongo.Database) *UserRepo {
	return &UserRepo{coll: db.Collection(CollectionName)}
}

// EnsureIndexes creates the unique email index.
func (r *UserRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return crmerrors.Wrapf(err, "[mongouserrepo EnsureIndexes]")
}

func (r *UserRepo) Insert(ctx context.Context, user *users.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	_, err := r.coll.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return crmerrors.ErrUserExists
	}
	return crmerrors.Wrapf(err, "[mongouserrepo Insert]")
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	return r.findOne(ctx, bson.D{{Key: "email", Value: email}})
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*users.User, error) {
	return r.findOne(ctx, bson.D{{Key: "_id", Value: id}})
}

func (r *UserRepo) SetLastLogin(ctx context.Context, id string, at time.Time) error {
	res, err := r.coll.UpdateByID(ctx, id, bson.D{{Key: "$set", Value: bson.D{{Key: "last_login", Value: at}}}})
	if err != nil {
		return crmerrors.Wrapf(err, "[mongouserrepo SetLastLogin]")
	}
	if res.MatchedCount == 0 {
		return crmerrors.ErrUserNotFound
	}
	return nil
}

func (r *UserRepo) findOne(ctx context.Context, filter bson.D) (*users.User, error) {
	var user users.User
	err := r.coll.FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, crmerrors.ErrUserNotFound
	}
	if err != nil {
		return nil, crmerrors.Wrapf(err, "[mongouserrepo findOne]")
	}
	return &user, nil
}
