package dsl_test

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/dstanley-scripts/datascript/internal/dsl"
)

// fakeCursor is the minimal dsl.Cursor a fakeCollection hands back from
// Find/Aggregate.
type fakeCursor struct {
	items []interface{}
}

func (c *fakeCursor) ToArray(ctx context.Context) ([]interface{}, error) {
	return c.items, nil
}

// fakeCollection is an in-memory dsl.CollectionHandle, enough to drive every
// operator in §4.7's lowering table (<- ! !! ? ?? |>) without a network
// driver: documents live in a plain slice, filters support equality and the
// $eq/$ne/$gt/$gte/$lt/$lte comparators the query builder emits, and updates
// support $set.
type fakeCollection struct {
	name string

	mu     sync.Mutex
	docs   []map[string]interface{}
	nextID int
}

func newFakeCollection(name string) *fakeCollection {
	return &fakeCollection{name: name}
}

func (c *fakeCollection) Name() string { return c.name }

func (c *fakeCollection) clone(doc map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}

func (c *fakeCollection) matches(doc map[string]interface{}, filter map[string]interface{}) bool {
	for field, want := range filter {
		got, ok := doc[field]
		cmp, isComparator := want.(map[string]interface{})
		if !isComparator {
			if !ok || !valuesEqual(got, want) {
				return false
			}
			continue
		}
		for op, operand := range cmp {
			if !applyComparator(op, got, operand) {
				return false
			}
		}
	}
	return true
}

func valuesEqual(a, b interface{}) bool {
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func applyComparator(op string, got, want interface{}) bool {
	switch op {
	case "$eq":
		return valuesEqual(got, want)
	case "$ne":
		return !valuesEqual(got, want)
	case "$gt", "$gte", "$lt", "$lte":
		n, ok1 := toFloat(got)
		m, ok2 := toFloat(want)
		if !ok1 || !ok2 {
			return false
		}
		switch op {
		case "$gt":
			return n > m
		case "$gte":
			return n >= m
		case "$lt":
			return n < m
		default:
			return n <= m
		}
	default:
		return false
	}
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func (c *fakeCollection) FindOne(_ context.Context, filter map[string]interface{}, _ dsl.QueryOptions) (interface{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, doc := range c.docs {
		if c.matches(doc, filter) {
			return c.clone(doc), nil
		}
	}
	return nil, nil
}

func (c *fakeCollection) Find(_ context.Context, filter map[string]interface{}, opts dsl.QueryOptions) (dsl.Cursor, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []interface{}
	for _, doc := range c.docs {
		if c.matches(doc, filter) {
			out = append(out, c.clone(doc))
		}
	}
	if opts.Limit > 0 && int64(len(out)) > opts.Limit {
		out = out[:opts.Limit]
	}
	return &fakeCursor{items: out}, nil
}

func (c *fakeCollection) InsertOne(_ context.Context, doc map[string]interface{}) (interface{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.insertLocked(doc), nil
}

func (c *fakeCollection) insertLocked(doc map[string]interface{}) interface{} {
	stored := c.clone(doc)
	if _, ok := stored["_id"]; !ok {
		c.nextID++
		stored["_id"] = strconv.Itoa(c.nextID)
	}
	c.docs = append(c.docs, stored)
	return stored["_id"]
}

func (c *fakeCollection) InsertMany(_ context.Context, docs []interface{}) ([]interface{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]interface{}, len(docs))
	for i, d := range docs {
		m, ok := d.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("insertMany: element %d is not a document", i)
		}
		ids[i] = c.insertLocked(m)
	}
	return ids, nil
}

func (c *fakeCollection) applyUpdate(doc, update map[string]interface{}) {
	set, ok := update["$set"].(map[string]interface{})
	if !ok {
		return
	}
	for k, v := range set {
		doc[k] = v
	}
}

func (c *fakeCollection) UpdateOne(_ context.Context, filter, update, _ map[string]interface{}) (dsl.UpdateResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, doc := range c.docs {
		if c.matches(doc, filter) {
			c.applyUpdate(doc, update)
			return dsl.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
		}
	}
	return dsl.UpdateResult{}, nil
}

func (c *fakeCollection) UpdateMany(_ context.Context, filter, update, _ map[string]interface{}) (dsl.UpdateResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int64
	for _, doc := range c.docs {
		if c.matches(doc, filter) {
			c.applyUpdate(doc, update)
			n++
		}
	}
	return dsl.UpdateResult{MatchedCount: n, ModifiedCount: n}, nil
}

func (c *fakeCollection) DeleteOne(_ context.Context, filter map[string]interface{}) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, doc := range c.docs {
		if c.matches(doc, filter) {
			c.docs = append(c.docs[:i], c.docs[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (c *fakeCollection) DeleteMany(_ context.Context, filter map[string]interface{}) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var kept []map[string]interface{}
	var n int64
	for _, doc := range c.docs {
		if c.matches(doc, filter) {
			n++
			continue
		}
		kept = append(kept, doc)
	}
	c.docs = kept
	return n, nil
}

func (c *fakeCollection) CountDocuments(_ context.Context, filter map[string]interface{}) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int64
	for _, doc := range c.docs {
		if c.matches(doc, filter) {
			n++
		}
	}
	return n, nil
}

// Aggregate supports exactly the stages the test fixtures exercise: $match,
// $sort, $skip, $limit, $count. Unrecognized stages are a test-authoring
// error, not a silent no-op.
func (c *fakeCollection) Aggregate(_ context.Context, pipeline []interface{}) (dsl.Cursor, error) {
	c.mu.Lock()
	docs := make([]map[string]interface{}, len(c.docs))
	for i, d := range c.docs {
		docs[i] = c.clone(d)
	}
	c.mu.Unlock()

	for _, stage := range pipeline {
		s, ok := stage.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("aggregate: stage must be a document")
		}
		switch {
		case s["$match"] != nil:
			filter, _ := s["$match"].(map[string]interface{})
			var out []map[string]interface{}
			for _, doc := range docs {
				if c.matches(doc, filter) {
					out = append(out, doc)
				}
			}
			docs = out
		case s["$sort"] != nil:
			spec, _ := s["$sort"].(map[string]interface{})
			sortDocs(docs, spec)
		case s["$skip"] != nil:
			n, _ := toFloat(s["$skip"])
			if int(n) < len(docs) {
				docs = docs[int(n):]
			} else {
				docs = nil
			}
		case s["$limit"] != nil:
			n, _ := toFloat(s["$limit"])
			if int(n) < len(docs) {
				docs = docs[:int(n)]
			}
		case s["$count"] != nil:
			name, _ := s["$count"].(string)
			return &fakeCursor{items: []interface{}{map[string]interface{}{name: len(docs)}}}, nil
		default:
			return nil, fmt.Errorf("aggregate: unsupported stage %v", s)
		}
	}

	out := make([]interface{}, len(docs))
	for i, d := range docs {
		out[i] = d
	}
	return &fakeCursor{items: out}, nil
}

func sortDocs(docs []map[string]interface{}, spec map[string]interface{}) {
	fields := make([]string, 0, len(spec))
	for f := range spec {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	sort.SliceStable(docs, func(i, j int) bool {
		for _, f := range fields {
			dir, _ := toFloat(spec[f])
			a, b := docs[i][f], docs[j][f]
			af, aok := toFloat(a)
			bf, bok := toFloat(b)
			if aok && bok && af != bf {
				if dir < 0 {
					return af > bf
				}
				return af < bf
			}
		}
		return false
	})
}

// fakeDatabase is an in-memory dsl.DatabaseHandle: Collection lazily creates
// (and memoizes) a fakeCollection per name, and Close just records that it
// ran, so tests can assert the `using mongo` resource-safety guarantee.
type fakeDatabase struct {
	name string
	uri  string

	mu     sync.Mutex
	colls  map[string]*fakeCollection
	closed bool
}

func newFakeDatabase(uri, name string) *fakeDatabase {
	return &fakeDatabase{name: name, uri: uri, colls: make(map[string]*fakeCollection)}
}

func (d *fakeDatabase) Name() string { return d.name }
func (d *fakeDatabase) URI() string  { return d.uri }

func (d *fakeDatabase) Collection(name string) dsl.CollectionHandle {
	d.mu.Lock()
	defer d.mu.Unlock()
	c, ok := d.colls[name]
	if !ok {
		c = newFakeCollection(name)
		d.colls[name] = c
	}
	return c
}

func (d *fakeDatabase) Close(_ context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

// fakeConnector builds a dsl.Connector over a single shared fakeDatabase, so
// tests can connect once and assert against the same in-memory collections
// `using mongo`'s body operated on.
func fakeConnector(db *fakeDatabase) dsl.Connector {
	return func(_ context.Context, uri, dbName string) (dsl.DatabaseHandle, error) {
		return db, nil
	}
}
