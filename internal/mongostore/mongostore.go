// Package mongostore is the default CollectionHandle/DatabaseHandle
// implementation, wiring internal/dsl's driver interfaces to
// go.mongodb.org/mongo-driver (spec.md §6's "Driver interface (required of
// host)"). The interpreter core never imports this package directly — only
// pkg/datascript's engine wires a dsl.Connector, keeping the DSL's pure
// lowering layer driver-free per spec.md §9.
package mongostore

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/dstanley-scripts/datascript/internal/dsl"
)

// Connect implements dsl.Connector against a real mongo-driver client.
func Connect(ctx context.Context, uri, dbName string) (dsl.DatabaseHandle, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect %q: %w", uri, err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping %q: %w", uri, err)
	}
	return &database{client: client, uri: uri, name: dbName, db: client.Database(dbName)}, nil
}

type database struct {
	client *mongo.Client
	uri    string
	name   string
	db     *mongo.Database
}

func (d *database) Name() string { return d.name }
func (d *database) URI() string  { return d.uri }

func (d *database) Collection(name string) dsl.CollectionHandle {
	return &collection{name: name, col: d.db.Collection(name)}
}

func (d *database) Close(ctx context.Context) error {
	return d.client.Disconnect(ctx)
}

type collection struct {
	name string
	col  *mongo.Collection
}

func (c *collection) Name() string { return c.name }

func findOptions(opts dsl.QueryOptions) *options.FindOptions {
	fo := options.Find()
	if opts.Projection != nil {
		fo.SetProjection(bson.M(opts.Projection))
	}
	if opts.Sort != nil {
		fo.SetSort(bson.M(opts.Sort))
	}
	if opts.Limit > 0 {
		fo.SetLimit(opts.Limit)
	}
	if opts.BatchSize > 0 {
		fo.SetBatchSize(int32(opts.BatchSize))
	}
	return fo
}

func (c *collection) FindOne(ctx context.Context, filter map[string]interface{}, opts dsl.QueryOptions) (interface{}, error) {
	fo := options.FindOne()
	if opts.Projection != nil {
		fo.SetProjection(bson.M(opts.Projection))
	}
	if opts.Sort != nil {
		fo.SetSort(bson.M(opts.Sort))
	}
	var out bson.M
	err := c.col.FindOne(ctx, bson.M(filter), fo).Decode(&out)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return map[string]interface{}(out), nil
}

func (c *collection) Find(ctx context.Context, filter map[string]interface{}, opts dsl.QueryOptions) (dsl.Cursor, error) {
	cur, err := c.col.Find(ctx, bson.M(filter), findOptions(opts))
	if err != nil {
		return nil, err
	}
	return cursorAdapter{cur}, nil
}

func (c *collection) InsertOne(ctx context.Context, doc map[string]interface{}) (interface{}, error) {
	res, err := c.col.InsertOne(ctx, bson.M(doc))
	if err != nil {
		return nil, err
	}
	return res.InsertedID, nil
}

func (c *collection) InsertMany(ctx context.Context, docs []interface{}) ([]interface{}, error) {
	res, err := c.col.InsertMany(ctx, docs)
	if err != nil {
		return nil, err
	}
	return res.InsertedIDs, nil
}

func (c *collection) UpdateOne(ctx context.Context, filter, update, opts map[string]interface{}) (dsl.UpdateResult, error) {
	res, err := c.col.UpdateOne(ctx, bson.M(filter), bson.M(update), updateOptions(opts))
	if err != nil {
		return dsl.UpdateResult{}, err
	}
	return toUpdateResult(res), nil
}

func (c *collection) UpdateMany(ctx context.Context, filter, update, opts map[string]interface{}) (dsl.UpdateResult, error) {
	res, err := c.col.UpdateMany(ctx, bson.M(filter), bson.M(update), updateOptions(opts))
	if err != nil {
		return dsl.UpdateResult{}, err
	}
	return toUpdateResult(res), nil
}

func updateOptions(opts map[string]interface{}) *options.UpdateOptions {
	uo := options.Update()
	if upsert, ok := opts["upsert"].(bool); ok {
		uo.SetUpsert(upsert)
	}
	return uo
}

func toUpdateResult(res *mongo.UpdateResult) dsl.UpdateResult {
	out := dsl.UpdateResult{
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
		UpsertedCount: res.UpsertedCount,
	}
	if res.UpsertedID != nil {
		out.UpsertedID = res.UpsertedID
	}
	return out
}

func (c *collection) DeleteOne(ctx context.Context, filter map[string]interface{}) (int64, error) {
	res, err := c.col.DeleteOne(ctx, bson.M(filter))
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (c *collection) DeleteMany(ctx context.Context, filter map[string]interface{}) (int64, error) {
	res, err := c.col.DeleteMany(ctx, bson.M(filter))
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (c *collection) CountDocuments(ctx context.Context, filter map[string]interface{}) (int64, error) {
	return c.col.CountDocuments(ctx, bson.M(filter))
}

func (c *collection) Aggregate(ctx context.Context, pipeline []interface{}) (dsl.Cursor, error) {
	stages := make(bson.A, len(pipeline))
	for i, s := range pipeline {
		stages[i] = s
	}
	cur, err := c.col.Aggregate(ctx, stages)
	if err != nil {
		return nil, err
	}
	return cursorAdapter{cur}, nil
}

type cursorAdapter struct{ cur *mongo.Cursor }

func (c cursorAdapter) ToArray(ctx context.Context) ([]interface{}, error) {
	var raw []bson.M
	if err := c.cur.All(ctx, &raw); err != nil {
		return nil, err
	}
	out := make([]interface{}, len(raw))
	for i, m := range raw {
		out[i] = map[string]interface{}(m)
	}
	return out, nil
}
