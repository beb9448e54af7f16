package eval

import "github.com/dstanley-scripts/datascript/internal/dsl"

// collectionKey identifies a cached collection handle by the database
// identity it came from and its name.
type collectionKey struct {
	db   *dsl.DatabaseValue
	name string
}

// dslState is the process-wide document-store state spec.md §4.7/§5
// describes: at most one active database at a time, the set of database and
// collection identifiers the DSL statements have bound, and a cache of
// already-resolved CollectionValues so repeated member access on a database
// doesn't build a fresh handle each time.
//
// `using mongo from <uri> ... { ... }` snapshots and restores this state so a
// nested database scope cannot leak into the surrounding one (spec.md §4.7's
// guaranteed-restore semantics).
type dslState struct {
	activeDatabase *dsl.DatabaseValue
	activeIdent    string
	collections    map[collectionKey]*dsl.CollectionValue
	idents         []string
	defaults       map[*dsl.CollectionValue]dsl.QueryOptions
}

type dslSnapshot struct {
	activeDatabase *dsl.DatabaseValue
	activeIdent    string
	idents         []string
}

func (s *dslState) snapshot() dslSnapshot {
	idents := make([]string, len(s.idents))
	copy(idents, s.idents)
	return dslSnapshot{activeDatabase: s.activeDatabase, activeIdent: s.activeIdent, idents: idents}
}

func (s *dslState) restore(snap dslSnapshot) {
	s.activeDatabase = snap.activeDatabase
	s.activeIdent = snap.activeIdent
	s.idents = snap.idents
}

func (s *dslState) registerIdent(name string) {
	for _, existing := range s.idents {
		if existing == name {
			return
		}
	}
	s.idents = append(s.idents, name)
}

func (s *dslState) cachedCollection(db *dsl.DatabaseValue, name string) (*dsl.CollectionValue, bool) {
	if s.collections == nil {
		return nil, false
	}
	v, ok := s.collections[collectionKey{db: db, name: name}]
	return v, ok
}

func (s *dslState) cacheCollection(db *dsl.DatabaseValue, name string, v *dsl.CollectionValue) {
	if s.collections == nil {
		s.collections = make(map[collectionKey]*dsl.CollectionValue)
	}
	s.collections[collectionKey{db: db, name: name}] = v
}

// setDefaults/defaultsFor implement `use collection ident with opts`'s
// per-collection projection/sort/limit/batchSize defaults (spec.md §4.7).
func (s *dslState) setDefaults(col *dsl.CollectionValue, opts dsl.QueryOptions) {
	if s.defaults == nil {
		s.defaults = make(map[*dsl.CollectionValue]dsl.QueryOptions)
	}
	s.defaults[col] = opts
}

func (s *dslState) defaultsFor(col *dsl.CollectionValue) dsl.QueryOptions {
	if s.defaults == nil {
		return dsl.QueryOptions{}
	}
	return s.defaults[col]
}
