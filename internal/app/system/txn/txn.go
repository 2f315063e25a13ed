// internal/app/system/txn/txn.go
//
// Package txn wraps multi-collection writes in a MongoDB transaction.
// Transactions require a replica set or mongos; on standalone servers
// (common in dev) Run degrades to executing the callback without one,
// logging a warning so the loss of atomicity is visible.
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Run executes fn inside a single MongoDB transaction. The ctx passed
// to fn carries the session, so every store call made with it joins the
// transaction. Any error from fn aborts the whole transaction; the
// driver will not commit once ctx is canceled or its deadline passes.
func Run(ctx context.Context, db *mongo.Database, log *zap.Logger, fn func(ctx context.Context) error) error {
	client := db.Client()

	session, err := client.StartSession()
	if err != nil {
		if IsNotSupported(err) {
			return runWithoutTxn(ctx, log, fn)
		}
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		return runWithoutTxn(ctx, log, fn)
	}
	return err
}

func runWithoutTxn(ctx context.Context, log *zap.Logger, fn func(ctx context.Context) error) error {
	if log != nil {
		log.Warn("transactions not supported by server; running without atomicity")
	}
	return fn(ctx)
}

// Server error codes that indicate the deployment cannot run
// multi-document transactions.
var notSupportedCodes = map[int32]bool{
	20:  true, // IllegalOperation: transaction numbers only on replica set members
	51:  true, // illegal operation
	263: true, // OperationNotSupportedInTransaction
}

// IsNotSupported reports whether err means the server cannot run
// transactions (standalone mongod, old DocumentDB, etc.).
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	var ce mongo.CommandError
	if errors.As(err, &ce) && notSupportedCodes[ce.Code] {
		return true
	}

	// Fallback keyword matching for drivers/proxies that wrap the
	// command error in plain text.
	s := strings.ToLower(err.Error())
	if strings.Contains(s, "transaction") && strings.Contains(s, "replica set") {
		return true
	}
	if strings.Contains(s, "session") && strings.Contains(s, "not supported") {
		return true
	}
	if strings.Contains(s, "transaction") && strings.Contains(s, "session") {
		return true
	}
	if strings.Contains(s, "illegal operation") {
		return true
	}
	return false
}
