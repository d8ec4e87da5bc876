package store

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore is an in-process Store with the same per-document atomicity and
// array-op semantics as the MongoDB implementation. It backs the test suite
// and serves as a zero-dependency fallback for local development.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]bson.M
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]map[string]bson.M)}
}

// toDoc normalizes any struct or map through a BSON round trip so stored
// values use the same primitive types the MongoDB driver would produce.
func toDoc(v interface{}) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// normalize runs a single value through the same round trip as toDoc so
// filter and array-op values compare equal against stored ones.
func normalize(v interface{}) interface{} {
	doc, err := toDoc(bson.M{"v": v})
	if err != nil {
		return v
	}
	return doc["v"]
}

func valuesEqual(a, b interface{}) bool {
	return reflect.DeepEqual(normalize(a), normalize(b))
}

func docID(doc bson.M) (string, bool) {
	oid, ok := doc["_id"].(primitive.ObjectID)
	if !ok || oid.IsZero() {
		return "", false
	}
	return oid.Hex(), true
}

// ensure creates the named collection. Callers must hold the write lock;
// readers look collections up directly so they never mutate the map.
func (s *MemoryStore) ensure(name string) map[string]bson.M {
	col, ok := s.collections[name]
	if !ok {
		col = make(map[string]bson.M)
		s.collections[name] = col
	}
	return col
}

func (s *MemoryStore) Get(ctx context.Context, collection, id string, out interface{}) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.collections[collection][id]
	if !ok {
		return ErrNoDocument
	}
	raw, err := bson.Marshal(doc)
	if err != nil {
		return err
	}
	return bson.Unmarshal(raw, out)
}

func (s *MemoryStore) Find(ctx context.Context, collection string, q Query, sortBy *Sort, out interface{}) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []bson.M
	for _, doc := range s.collections[collection] {
		if matchesQuery(doc, q) {
			matched = append(matched, doc)
		}
	}

	if sortBy != nil {
		sort.SliceStable(matched, func(i, j int) bool {
			a, b := matched[i][sortBy.Field], matched[j][sortBy.Field]
			if sortBy.Desc {
				return lessValue(b, a)
			}
			return lessValue(a, b)
		})
	}

	return decodeSlice(matched, out)
}

func matchesQuery(doc bson.M, q Query) bool {
	for field, value := range q.Eq {
		if !valuesEqual(doc[field], value) {
			return false
		}
	}
	for field, value := range q.Contains {
		arr, ok := doc[field].(primitive.A)
		if !ok {
			return false
		}
		found := false
		for _, elem := range arr {
			if valuesEqual(elem, value) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func lessValue(a, b interface{}) bool {
	switch av := a.(type) {
	case string:
		bv, _ := b.(string)
		return av < bv
	case int32:
		bv, _ := b.(int32)
		return av < bv
	case int64:
		bv, _ := b.(int64)
		return av < bv
	case float64:
		bv, _ := b.(float64)
		return av < bv
	case primitive.DateTime:
		bv, _ := b.(primitive.DateTime)
		return av < bv
	case primitive.ObjectID:
		bv, _ := b.(primitive.ObjectID)
		return av.Hex() < bv.Hex()
	}
	return false
}

// decodeSlice decodes matched documents into out, which must be a pointer to
// a slice of structs or maps.
func decodeSlice(docs []bson.M, out interface{}) error {
	outValue := reflect.ValueOf(out)
	if outValue.Kind() != reflect.Ptr || outValue.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("store: Find out must be a pointer to a slice, got %T", out)
	}
	sliceValue := outValue.Elem()
	elemType := sliceValue.Type().Elem()

	result := reflect.MakeSlice(sliceValue.Type(), 0, len(docs))
	for _, doc := range docs {
		raw, err := bson.Marshal(doc)
		if err != nil {
			return err
		}
		elem := reflect.New(elemType)
		if err := bson.Unmarshal(raw, elem.Interface()); err != nil {
			return err
		}
		result = reflect.Append(result, elem.Elem())
	}
	sliceValue.Set(result)
	return nil
}

func (s *MemoryStore) Insert(ctx context.Context, collection string, doc interface{}) error {
	stored, err := toDoc(doc)
	if err != nil {
		return err
	}
	id, ok := docID(stored)
	if !ok {
		stored["_id"] = primitive.NewObjectID()
		id, _ = docID(stored)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensure(collection)[id] = stored
	return nil
}

func (s *MemoryStore) UpdateByID(ctx context.Context, collection, id string, u Update) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.collections[collection][id]
	if !ok {
		return ErrNoDocument
	}

	for path, value := range u.Set {
		doc[path] = normalize(value)
	}
	for path, value := range u.Push {
		arr, _ := doc[path].(primitive.A)
		doc[path] = append(arr, normalize(value))
	}
	for path, value := range u.AddToSet {
		arr, _ := doc[path].(primitive.A)
		normalized := normalize(value)
		exists := false
		for _, elem := range arr {
			if reflect.DeepEqual(elem, normalized) {
				exists = true
				break
			}
		}
		if !exists {
			doc[path] = append(arr, normalized)
		}
	}
	for path, matcher := range u.Pull {
		arr, ok := doc[path].(primitive.A)
		if !ok {
			continue
		}
		kept := make(primitive.A, 0, len(arr))
		for _, elem := range arr {
			if !pullMatches(elem, matcher) {
				kept = append(kept, elem)
			}
		}
		doc[path] = kept
	}
	return nil
}

// pullMatches mirrors $pull: a map matcher matches embedded documents whose
// fields all equal the matcher's, any other matcher compares whole elements.
func pullMatches(elem, matcher interface{}) bool {
	fields, ok := matcher.(map[string]interface{})
	if !ok {
		return valuesEqual(elem, matcher)
	}
	sub, ok := elem.(bson.M)
	if !ok {
		return false
	}
	for field, want := range fields {
		if !valuesEqual(sub[field], want) {
			return false
		}
	}
	return true
}

func (s *MemoryStore) DeleteByID(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	col := s.collections[collection]
	if _, ok := col[id]; !ok {
		return ErrNoDocument
	}
	delete(col, id)
	return nil
}

func (s *MemoryStore) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections = make(map[string]map[string]bson.M)
	return nil
}
