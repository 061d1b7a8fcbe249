// Package txn runs multi-document MongoDB operations atomically when the
// deployment supports transactions, and falls back to plain execution when
// it does not (standalone mongod, DocumentDB without a replica set). The
// homepage switch and the cascade deletes go through here: they should be
// atomic where the server allows it, but a dev box on a standalone mongod
// must still work.
package txn

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Func receives the context to use for every database operation inside the
// unit of work. Inside a transaction it is a mongo.SessionContext; in the
// fallback path it is the caller's context.
type Func func(ctx context.Context) error

// Run executes fn in a transaction if possible, otherwise directly. The
// fallback is logged at Warn so a misconfigured production deployment is
// visible without breaking it.
func Run(ctx context.Context, db *mongo.Database, log *zap.Logger, fn Func) error {
	session, err := db.Client().StartSession()
	if err != nil {
		if log != nil {
			log.Warn("failed to start session, running without transaction", zap.Error(err))
		}
		return fn(ctx)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil {
		if IsNotSupported(err) {
			if log != nil {
				log.Warn("transactions not supported, running without transaction", zap.Error(err))
			}
			return fn(ctx)
		}
		return err
	}
	return nil
}

// IsNotSupported reports whether err means the server cannot run
// multi-document transactions, as opposed to the transaction itself failing.
//
// Known codes: 20 (transaction numbers need a replica set), 51
// (IllegalOperation), 263 (operation not allowed in transaction).
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	if cmdErr, ok := err.(mongo.CommandError); ok {
		switch cmdErr.Code {
		case 20, 51, 263:
			return true
		}
	}

	// DocumentDB and older servers report this in prose rather than codes.
	// Require two keyword hits so an ordinary write error inside a
	// transaction is not misread as lack of support.
	errStr := strings.ToLower(err.Error())
	keywords := []string{"transaction", "replica set", "session", "not supported", "illegal operation"}

	matches := 0
	for _, kw := range keywords {
		if strings.Contains(errStr, kw) {
			matches++
		}
	}
	return matches >= 2
}
