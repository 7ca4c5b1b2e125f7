package refreshmongorepo

import (
	"context"
	"errors"

	crmerrors "github.com/jrsteele09/go-crm/internal/errors"
	"github.com/jrsteele09/go-crm/token/refresh"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const CollectionName = "refresh_tokens"

var _ refresh.Repo = (*RefreshTokenRepo)(nil)

type RefreshTokenRepo struct {
	coll *mongo.Collection
}

func New(db *mongo.Database) *RefreshTokenRepo {
	return &RefreshTokenRepo{coll: db.Collection(CollectionName)}
}

// EnsureIndexes indexes tokens by user for GetByUserID.
func (r *RefreshTokenRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}},
	})
	return crmerrors.Wrapf(err, "[refreshmongorepo EnsureIndexes]")
}

func (r *RefreshTokenRepo) Upsert(ctx context.Context, refreshToken *refresh.StoredRefreshToken) error {
	_, err := r.coll.ReplaceOne(ctx,
		bson.D{{Key: "_id", Value: refreshToken.Token}},
		refreshToken,
		options.Replace().SetUpsert(true),
	)
	return crmerrors.Wrapf(err, "[refreshmongorepo Upsert]")
}

func (r *RefreshTokenRepo) Delete(ctx context.Context, token string) error {
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: token}})
	if err != nil {
		return crmerrors.Wrapf(err, "[refreshmongorepo Delete]")
	}
	if res.DeletedCount == 0 {
		return crmerrors.ErrNotFound
	}
	return nil
}

func (r *RefreshTokenRepo) Get(ctx context.Context, token string) (*refresh.StoredRefreshToken, error) {
	return r.findOne(ctx, bson.D{{Key: "_id", Value: token}})
}

func (r *RefreshTokenRepo) GetByUserID(ctx context.Context, userID string) (*refresh.StoredRefreshToken, error) {
	return r.findOne(ctx, bson.D{{Key: "user_id", Value: userID}})
}

func (r *RefreshTokenRepo) findOne(ctx context.Context, filter bson.D) (*refresh.StoredRefreshToken, error) {
	var rt refresh.StoredRefreshToken
	err := r.coll.FindOne(ctx, filter).Decode(&rt)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, crmerrors.ErrNotFound
	}
	if err != nil {
		return nil, crmerrors.Wrapf(err, "[refreshmongorepo findOne]")
	}
	return &rt, nil
}
