package dsl

import (
	"context"
	"fmt"

	"github.com/dstanley-scripts/datascript/internal/runtime"
)

func filterOrEmpty(v runtime.Value) (map[string]interface{}, error) {
	if v == nil {
		return map[string]interface{}{}, nil
	}
	if _, isNull := v.(runtime.Null); isNull {
		return map[string]interface{}{}, nil
	}
	plain, err := ToPlain(v)
	if err != nil {
		return nil, err
	}
	doc, ok := plain.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("filter must be an object or null, got %s", v.Type())
	}
	return doc, nil
}

func idValue(id interface{}) runtime.Value { return FromPlain(id) }

// Insert lowers `col <- doc`: an array inserts many (elements must be
// objects) and returns an Array of inserted-id strings; anything else
// inserts one and returns the inserted-id string.
func Insert(ctx context.Context, ch CollectionHandle, doc runtime.Value) (*Operation, error) {
	if arr, ok := doc.(*runtime.Array); ok {
		docs := make([]interface{}, len(arr.Elements))
		for i, el := range arr.Elements {
			plain, err := ToPlain(el)
			if err != nil {
				return nil, err
			}
			m, ok := plain.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("insertMany: element %d is not an object", i)
			}
			docs[i] = m
		}
		ids, err := ch.InsertMany(ctx, docs)
		if err != nil {
			return nil, err
		}
		arrVal := &runtime.Array{Elements: make([]runtime.Value, len(ids))}
		for i, id := range ids {
			arrVal.Elements[i] = idValue(id)
		}
		return &Operation{LastResult: arrVal, Collection: ch}, nil
	}
	plain, err := ToPlain(doc)
	if err != nil {
		return nil, err
	}
	m, ok := plain.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("insertOne: expected an object, got %s", doc.Type())
	}
	id, err := ch.InsertOne(ctx, m)
	if err != nil {
		return nil, err
	}
	return &Operation{LastResult: idValue(id), Collection: ch}, nil
}

// Delete lowers `col ! filter` (deleteOne).
func Delete(ctx context.Context, ch CollectionHandle, filter runtime.Value) (*Operation, error) {
	f, err := filterOrEmpty(filter)
	if err != nil {
		return nil, err
	}
	n, err := ch.DeleteOne(ctx, f)
	if err != nil {
		return nil, err
	}
	return &Operation{LastResult: runtime.Number{Value: float64(n)}, Collection: ch}, nil
}

// DeleteMany lowers `col !! filter`.
func DeleteMany(ctx context.Context, ch CollectionHandle, filter runtime.Value) (*Operation, error) {
	f, err := filterOrEmpty(filter)
	if err != nil {
		return nil, err
	}
	n, err := ch.DeleteMany(ctx, f)
	if err != nil {
		return nil, err
	}
	return &Operation{LastResult: runtime.Number{Value: float64(n)}, Collection: ch}, nil
}

// FindOne lowers `col ? filter`.
func FindOne(ctx context.Context, ch CollectionHandle, filter runtime.Value, opts QueryOptions) (*Operation, error) {
	f, err := filterOrEmpty(filter)
	if err != nil {
		return nil, err
	}
	doc, err := ch.FindOne(ctx, f, opts)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return &Operation{LastResult: runtime.Null{}, Collection: ch}, nil
	}
	return &Operation{LastResult: FromPlain(doc), Collection: ch}, nil
}

// FindMany lowers `col ?? filter`, applying the collection's default limit
// when the caller didn't set one.
func FindMany(ctx context.Context, ch CollectionHandle, filter runtime.Value, opts QueryOptions, defaultLimit int64) (*Operation, error) {
	f, err := filterOrEmpty(filter)
	if err != nil {
		return nil, err
	}
	if opts.Limit == 0 {
		opts.Limit = defaultLimit
	}
	cur, err := ch.Find(ctx, f, opts)
	if err != nil {
		return nil, err
	}
	items, err := cur.ToArray(ctx)
	if err != nil {
		return nil, err
	}
	arr := &runtime.Array{Elements: make([]runtime.Value, len(items))}
	for i, it := range items {
		arr.Elements[i] = FromPlain(it)
	}
	return &Operation{LastResult: arr, Collection: ch}, nil
}

// Aggregate lowers `col |> pipeline`.
func Aggregate(ctx context.Context, ch CollectionHandle, pipeline runtime.Value) (*Operation, error) {
	arr, ok := pipeline.(*runtime.Array)
	if !ok {
		return nil, fmt.Errorf("pipeline must be an array, got %s", pipeline.Type())
	}
	stages := make([]interface{}, len(arr.Elements))
	for i, el := range arr.Elements {
		p, err := ToPlain(el)
		if err != nil {
			return nil, err
		}
		stages[i] = p
	}
	cur, err := ch.Aggregate(ctx, stages)
	if err != nil {
		return nil, err
	}
	items, err := cur.ToArray(ctx)
	if err != nil {
		return nil, err
	}
	out := &runtime.Array{Elements: make([]runtime.Value, len(items))}
	for i, it := range items {
		out.Elements[i] = FromPlain(it)
	}
	return &Operation{LastResult: out, Collection: ch}, nil
}

// Update lowers `col update [many] where filter set update [with options]`.
func Update(ctx context.Context, ch CollectionHandle, many bool, filter, update, options runtime.Value) (*Operation, error) {
	f, err := filterOrEmpty(filter)
	if err != nil {
		return nil, err
	}
	uPlain, err := ToPlain(update)
	if err != nil {
		return nil, err
	}
	u, ok := uPlain.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("update must be an object, got %s", update.Type())
	}
	var opts map[string]interface{}
	if options != nil {
		if _, isNull := options.(runtime.Null); !isNull {
			p, err := ToPlain(options)
			if err != nil {
				return nil, err
			}
			m, ok := p.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("update options must be an object, got %s", options.Type())
			}
			opts = m
		}
	}
	var res UpdateResult
	if many {
		res, err = ch.UpdateMany(ctx, f, u, opts)
	} else {
		res, err = ch.UpdateOne(ctx, f, u, opts)
	}
	if err != nil {
		return nil, err
	}
	return &Operation{LastResult: updateResultValue(res), Collection: ch}, nil
}

// updateResultValue shapes an UpdateResult per spec.md §4.7: counts default
// to 0, a missing upsertedId becomes Null, upsertedIds is present only when
// the driver reported it.
func updateResultValue(res UpdateResult) *runtime.Object {
	obj := runtime.NewObject()
	obj.Set("matchedCount", runtime.Number{Value: float64(res.MatchedCount)})
	obj.Set("modifiedCount", runtime.Number{Value: float64(res.ModifiedCount)})
	obj.Set("upsertedCount", runtime.Number{Value: float64(res.UpsertedCount)})
	if res.UpsertedID != nil {
		obj.Set("upsertedId", idValue(res.UpsertedID))
	} else {
		obj.Set("upsertedId", runtime.Null{})
	}
	if res.UpsertedIDs != nil {
		arr := &runtime.Array{Elements: make([]runtime.Value, len(res.UpsertedIDs))}
		for i, id := range res.UpsertedIDs {
			arr.Elements[i] = idValue(id)
		}
		obj.Set("upsertedIds", arr)
	}
	return obj
}
