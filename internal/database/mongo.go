package database

import (
	"context"
	"time"

	crmerrors "github.com/jrsteele09/go-crm/internal/errors"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// Connect opens a MongoDB client and pings the primary within timeout.
// Any failure is returned as errors.ErrDatabaseConnect; there is no retry.
func Connect(ctx context.Context, uri, dbName string, timeout time.Duration) (*mongo.Client, *mongo.Database, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri).SetConnectTimeout(timeout))
	if err != nil {
		return nil, nil, crmerrors.Wrapf(crmerrors.ErrDatabaseConnect, "%v", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, crmerrors.Wrapf(crmerrors.ErrDatabaseConnect, "%v", err)
	}

	return client, client.Database(dbName), nil
}
