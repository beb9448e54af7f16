package eval_test

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/dstanley-scripts/datascript/internal/builtins"
	"github.com/dstanley-scripts/datascript/internal/dsl"
	"github.com/dstanley-scripts/datascript/internal/eval"
	"github.com/dstanley-scripts/datascript/internal/module"
	"github.com/dstanley-scripts/datascript/internal/parser"
)

// memCursor is the dsl.Cursor a memCollection hands back from Find/Aggregate.
type memCursor struct{ items []interface{} }

func (c *memCursor) ToArray(context.Context) ([]interface{}, error) { return c.items, nil }

// memCollection is a minimal in-memory dsl.CollectionHandle: enough to
// drive every operator in the <- ! !! ? ?? |> lowering table end-to-end
// through the evaluator, without a network driver.
type memCollection struct {
	name string

	mu     sync.Mutex
	docs   []map[string]interface{}
	nextID int
}

func (c *memCollection) Name() string { return c.name }

func (c *memCollection) matches(doc, filter map[string]interface{}) bool {
	for field, want := range filter {
		got := doc[field]
		if cmp, ok := want.(map[string]interface{}); ok {
			for op, operand := range cmp {
				n, aok := got.(float64)
				m, bok := operand.(float64)
				switch op {
				case "$eq":
					if got != operand {
						return false
					}
				case "$ne":
					if got == operand {
						return false
					}
				case "$gt":
					if !aok || !bok || !(n > m) {
						return false
					}
				case "$gte":
					if !aok || !bok || !(n >= m) {
						return false
					}
				case "$lt":
					if !aok || !bok || !(n < m) {
						return false
					}
				case "$lte":
					if !aok || !bok || !(n <= m) {
						return false
					}
				}
			}
			continue
		}
		if got != want {
			return false
		}
	}
	return true
}

func (c *memCollection) clone(doc map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}

func (c *memCollection) FindOne(_ context.Context, filter map[string]interface{}, _ dsl.QueryOptions) (interface{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range c.docs {
		if c.matches(d, filter) {
			return c.clone(d), nil
		}
	}
	return nil, nil
}

func (c *memCollection) Find(_ context.Context, filter map[string]interface{}, opts dsl.QueryOptions) (dsl.Cursor, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []interface{}
	for _, d := range c.docs {
		if c.matches(d, filter) {
			out = append(out, c.clone(d))
		}
	}
	if opts.Limit > 0 && int64(len(out)) > opts.Limit {
		out = out[:opts.Limit]
	}
	return &memCursor{items: out}, nil
}

func (c *memCollection) InsertOne(_ context.Context, doc map[string]interface{}) (interface{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	stored := c.clone(doc)
	c.nextID++
	stored["_id"] = float64(c.nextID)
	c.docs = append(c.docs, stored)
	return stored["_id"], nil
}

func (c *memCollection) InsertMany(ctx context.Context, docs []interface{}) ([]interface{}, error) {
	ids := make([]interface{}, len(docs))
	for i, d := range docs {
		id, err := c.InsertOne(ctx, d.(map[string]interface{}))
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return ids, nil
}

func (c *memCollection) UpdateOne(_ context.Context, filter, update, _ map[string]interface{}) (dsl.UpdateResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	set, _ := update["$set"].(map[string]interface{})
	for _, d := range c.docs {
		if c.matches(d, filter) {
			for k, v := range set {
				d[k] = v
			}
			return dsl.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
		}
	}
	return dsl.UpdateResult{}, nil
}

func (c *memCollection) UpdateMany(_ context.Context, filter, update, _ map[string]interface{}) (dsl.UpdateResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	set, _ := update["$set"].(map[string]interface{})
	var n int64
	for _, d := range c.docs {
		if c.matches(d, filter) {
			for k, v := range set {
				d[k] = v
			}
			n++
		}
	}
	return dsl.UpdateResult{MatchedCount: n, ModifiedCount: n}, nil
}

func (c *memCollection) DeleteOne(_ context.Context, filter map[string]interface{}) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, d := range c.docs {
		if c.matches(d, filter) {
			c.docs = append(c.docs[:i], c.docs[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (c *memCollection) DeleteMany(_ context.Context, filter map[string]interface{}) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var kept []map[string]interface{}
	var n int64
	for _, d := range c.docs {
		if c.matches(d, filter) {
			n++
			continue
		}
		kept = append(kept, d)
	}
	c.docs = kept
	return n, nil
}

func (c *memCollection) CountDocuments(_ context.Context, filter map[string]interface{}) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int64
	for _, d := range c.docs {
		if c.matches(d, filter) {
			n++
		}
	}
	return n, nil
}

// Aggregate supports $match and $limit, enough for this file's pipeline test.
func (c *memCollection) Aggregate(_ context.Context, pipeline []interface{}) (dsl.Cursor, error) {
	c.mu.Lock()
	docs := make([]map[string]interface{}, len(c.docs))
	for i, d := range c.docs {
		docs[i] = c.clone(d)
	}
	c.mu.Unlock()

	for _, stage := range pipeline {
		s := stage.(map[string]interface{})
		if f, ok := s["$match"].(map[string]interface{}); ok {
			var out []map[string]interface{}
			for _, d := range docs {
				if c.matches(d, f) {
					out = append(out, d)
				}
			}
			docs = out
		}
		if n, ok := s["$limit"].(float64); ok && int(n) < len(docs) {
			docs = docs[:int(n)]
		}
	}
	out := make([]interface{}, len(docs))
	for i, d := range docs {
		out[i] = d
	}
	return &memCursor{items: out}, nil
}

// memDatabase is a dsl.DatabaseHandle over a fixed set of memCollections,
// tracking whether Close ran so tests can assert `using mongo`'s resource
// safety guarantee.
type memDatabase struct {
	name, uri string

	mu     sync.Mutex
	colls  map[string]*memCollection
	closed bool
}

func newMemDatabase(uri, name string) *memDatabase {
	return &memDatabase{name: name, uri: uri, colls: make(map[string]*memCollection)}
}

func (d *memDatabase) Name() string { return d.name }
func (d *memDatabase) URI() string  { return d.uri }

func (d *memDatabase) Collection(name string) dsl.CollectionHandle {
	d.mu.Lock()
	defer d.mu.Unlock()
	c, ok := d.colls[name]
	if !ok {
		c = &memCollection{name: name}
		d.colls[name] = c
	}
	return c
}

func (d *memDatabase) Close(context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

func (d *memDatabase) isClosed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

func newTestEvaluator(out *bytes.Buffer, db *memDatabase) *eval.Evaluator {
	ev := eval.New(module.New("."), out)
	ev.Connector = func(context.Context, string, string) (dsl.DatabaseHandle, error) { return db, nil }
	builtins.Register(ev)
	return ev
}

func run(t *testing.T, ev *eval.Evaluator, src string) error {
	t.Helper()
	prog, err := parser.Parse(src, "<test>")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return ev.Run(prog)
}

func TestMongoOperatorsEndToEnd(t *testing.T) {
	var out bytes.Buffer
	db := newMemDatabase("mem://", "test")
	ev := newTestEvaluator(&out, db)

	src := `
database conn = await connect("mem://", "test");
collection users;
declare id = users <- { name: "ada", age: 9 };
print(typeOf(id));
declare one = users ? query { name == "ada" };
print(one.name);
users update where query { name == "ada" } set { $set: { age: 10 } };
declare updated = users ? query { name == "ada" };
print(updated.age);
declare many = users ?? query { age >= 0 };
print(len(many));
declare removedCount = users ! query { name == "ada" };
print(removedCount);
declare goneMany = users ?? query { age >= 0 };
print(len(goneMany));
`
	if err := run(t, ev, src); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "number\nada\n10\n1\n1\n0\n"
	if out.String() != want {
		t.Errorf("unexpected output:\n got: %q\nwant: %q", out.String(), want)
	}
}

func TestMongoDeleteManyAndAggregate(t *testing.T) {
	var out bytes.Buffer
	db := newMemDatabase("mem://", "test")
	ev := newTestEvaluator(&out, db)

	src := `
database conn = await connect("mem://", "test");
collection items;
items <- [ { kind: "a" }, { kind: "a" }, { kind: "b" } ];
declare agg = items |> [ match({ kind: "a" }), limit(1) ];
print(len(agg));
declare removed = items !! query { kind == "a" };
print(removed);
`
	if err := run(t, ev, src); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "1\n2\n"
	if out.String() != want {
		t.Errorf("unexpected output:\n got: %q\nwant: %q", out.String(), want)
	}
}

func TestUsingMongoResourceSafetyOnSuccess(t *testing.T) {
	var out bytes.Buffer
	db := newMemDatabase("mem://", "test")
	ev := newTestEvaluator(&out, db)

	src := `using mongo from "mem://" database "test" { collection users; users <- { name: "ada" }; }`
	if err := run(t, ev, src); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !db.isClosed() {
		t.Error("expected using mongo to close the connection on normal exit")
	}
	if ev.ActiveDatabase() != nil {
		t.Error("expected the active database binding to be cleared after using mongo exits")
	}
}

func TestUsingMongoResourceSafetyOnThrow(t *testing.T) {
	var out bytes.Buffer
	db := newMemDatabase("mem://", "test")
	ev := newTestEvaluator(&out, db)

	src := `using mongo from "mem://" database "test" { collection users; throw "boom"; }`
	err := run(t, ev, src)
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected the throw to propagate, got %v", err)
	}
	if !db.isClosed() {
		t.Error("expected using mongo to close the connection even when its body throws")
	}
	if ev.ActiveDatabase() != nil {
		t.Error("expected the active database binding to be cleared even when using mongo's body throws")
	}
}

func TestConnectAndDisconnectNatives(t *testing.T) {
	var out bytes.Buffer
	db := newMemDatabase("mem://", "test")
	ev := newTestEvaluator(&out, db)

	src := `
database conn = await connect("mem://", "test");
print(typeOf(conn));
disconnect();
`
	if err := run(t, ev, src); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !db.isClosed() {
		t.Error("expected disconnect() to close the active database connection")
	}
	if ev.ActiveDatabase() != nil {
		t.Error("expected disconnect() to clear the active database binding")
	}
}

func TestDisconnectWithNoActiveDatabaseIsFatal(t *testing.T) {
	var out bytes.Buffer
	ev := newTestEvaluator(&out, newMemDatabase("mem://", "test"))

	if err := run(t, ev, `disconnect();`); err == nil {
		t.Fatal("expected disconnect() with no active database to fail")
	}
}
