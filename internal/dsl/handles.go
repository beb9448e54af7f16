// Package dsl implements the semantic layer of Datascript's embedded
// document-store DSL: operator lowering into query/update/pipeline
// documents, the chainable Operation result, Plain<->Runtime conversion, and
// the query/stage helper natives (spec.md §4.7).
//
// The package performs no I/O. It is split from the concrete driver
// (internal/mongostore) exactly as spec.md §9's "DSL as two layers" design
// note calls for: a pure lowering layer tests can exercise with no driver,
// plus the CollectionHandle/DatabaseHandle interfaces a driver adapter
// implements.
package dsl

import "context"

// UpdateResult mirrors the result shape updateOne/updateMany must return
// (spec.md §6).
type UpdateResult struct {
	MatchedCount  int64
	ModifiedCount int64
	UpsertedCount int64
	UpsertedID    interface{}
	UpsertedIDs   []interface{}
}

// Cursor is the minimal surface find/aggregate results must expose.
type Cursor interface {
	ToArray(ctx context.Context) ([]interface{}, error)
}

// QueryOptions bundles the optional projection/sort/limit/batchSize that
// `use collection ... with opts` configures and findOne/findMany apply
// (spec.md §4.7).
type QueryOptions struct {
	Projection map[string]interface{}
	Sort       map[string]interface{}
	Limit      int64
	BatchSize  int64
}

// CollectionHandle is the driver-supplied surface the core issues logical
// operations against; the core performs no I/O of its own (spec.md §4.7, §6).
type CollectionHandle interface {
	Name() string
	FindOne(ctx context.Context, filter map[string]interface{}, opts QueryOptions) (interface{}, error)
	Find(ctx context.Context, filter map[string]interface{}, opts QueryOptions) (Cursor, error)
	InsertOne(ctx context.Context, doc map[string]interface{}) (interface{}, error)
	InsertMany(ctx context.Context, docs []interface{}) ([]interface{}, error)
	UpdateOne(ctx context.Context, filter, update, opts map[string]interface{}) (UpdateResult, error)
	UpdateMany(ctx context.Context, filter, update, opts map[string]interface{}) (UpdateResult, error)
	DeleteOne(ctx context.Context, filter map[string]interface{}) (int64, error)
	DeleteMany(ctx context.Context, filter map[string]interface{}) (int64, error)
	CountDocuments(ctx context.Context, filter map[string]interface{}) (int64, error)
	Aggregate(ctx context.Context, pipeline []interface{}) (Cursor, error)
}

// DatabaseHandle is the driver-supplied connection handle (spec.md §6).
type DatabaseHandle interface {
	Name() string
	URI() string
	Collection(name string) CollectionHandle
	Close(ctx context.Context) error
}

// Connector opens a DatabaseHandle for a uri/database pair. The default
// implementation (internal/mongostore) is backed by
// go.mongodb.org/mongo-driver; tests substitute an in-memory fake.
type Connector func(ctx context.Context, uri, dbName string) (DatabaseHandle, error)
