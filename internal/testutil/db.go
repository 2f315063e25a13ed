// internal/testutil/db.go
//
// Package testutil provides MongoDB-backed test helpers. Integration
// tests are gated on MONGO_TEST_URI so the suite still passes on
// machines without a local MongoDB.
package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/dalemusser/crewdeck/internal/app/system/indexes"
	"github.com/dalemusser/crewdeck/internal/app/system/txn"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// SetupTestDB connects to the MongoDB instance named by MONGO_TEST_URI
// and returns a uniquely named database with the app's indexes created.
// The database is dropped and the client disconnected when the test
// finishes. Tests are skipped when MONGO_TEST_URI is unset.
func SetupTestDB(t *testing.T) *mongo.Database {
	t.Helper()

	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set; skipping MongoDB integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatalf("mongo connect: %v", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		t.Skipf("MongoDB not reachable at %s: %v", uri, err)
	}

	// A unique database per test keeps parallel tests isolated.
	db := client.Database(fmt.Sprintf("crewdeck_test_%s", primitive.NewObjectID().Hex()))

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := db.Drop(ctx); err != nil {
			t.Logf("drop test database: %v", err)
		}
		_ = client.Disconnect(ctx)
	})

	return db
}

// RequireTransactions skips the test unless the deployment behind
// MONGO_TEST_URI supports multi-document transactions (replica set or
// mongos). Rollback assertions are meaningless on a standalone server,
// where txn.Run falls back to plain execution.
func RequireTransactions(t *testing.T, db *mongo.Database) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sess, err := db.Client().StartSession()
	if err != nil {
		t.Skipf("cannot start session: %v", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if err := db.Collection("roles").FindOne(sc, bson.M{}).Err(); err != nil && err != mongo.ErrNoDocuments {
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		if txn.IsNotSupported(err) {
			t.Skip("MongoDB deployment does not support transactions; skipping rollback assertions")
		}
		t.Fatalf("transaction support check: %v", err)
	}
}

// TestContext returns a context with a generous timeout for test
// operations.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}
