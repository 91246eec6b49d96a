package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	defaultTimeout  = 10 * time.Second
	defaultPoolSize = 50
	appName         = "spiritual-wellness"
)

// Config holds the settings of the remote document backend.
type Config struct {
	URI         string
	Database    string
	Timeout     time.Duration
	MaxPoolSize uint64
}

func (c Config) clientOptions() *options.ClientOptions {
	pool := c.MaxPoolSize
	if pool == 0 {
		pool = defaultPoolSize
	}
	return options.Client().
		ApplyURI(c.URI).
		SetAppName(appName).
		SetMaxPoolSize(pool).
		SetServerSelectionTimeout(c.timeout())
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return defaultTimeout
	}
	return c.Timeout
}

// Connect dials the cluster and waits for the primary before handing back
// the configured database. Sessions read their writes, so reads go to the
// primary as well.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	dialCtx, cancel := context.WithTimeout(ctx, cfg.timeout())
	defer cancel()

	client, err := mongo.Connect(dialCtx, cfg.clientOptions())
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(dialCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("mongo ping %s: %w", cfg.Database, err)
	}
	return client, client.Database(cfg.Database), nil
}
