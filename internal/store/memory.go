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

// Memory is a process-local Store. Documents round-trip through BSON so
// they decode exactly as they would from MongoDB.
type Memory struct {
	mu          sync.RWMutex
	collections map[string][]bson.M
}

func NewMemory() *Memory {
	return &Memory{collections: make(map[string][]bson.M)}
}

func (m *Memory) Insert(_ context.Context, collection string, doc any) (string, error) {
	data, err := bson.Marshal(doc)
	if err != nil {
		return "", err
	}
	var stored bson.M
	if err := bson.Unmarshal(data, &stored); err != nil {
		return "", err
	}

	id, ok := stored["_id"].(primitive.ObjectID)
	if !ok || id.IsZero() {
		id = primitive.NewObjectID()
		stored["_id"] = id
	}

	m.mu.Lock()
	m.collections[collection] = append(m.collections[collection], stored)
	m.mu.Unlock()

	return id.Hex(), nil
}

func (m *Memory) Find(_ context.Context, collection string, filter Fields, limit int64, out any) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("store: Find needs a pointer to a slice, got %T", out)
	}
	match, err := normalizeFilter(filter)
	if err != nil {
		return err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	slice := rv.Elem()
	result := reflect.MakeSlice(slice.Type(), 0, 0)
	for _, doc := range m.collections[collection] {
		if limit > 0 && int64(result.Len()) >= limit {
			break
		}
		if !matches(doc, match) {
			continue
		}
		item := reflect.New(slice.Type().Elem())
		if err := decode(doc, item.Interface()); err != nil {
			return err
		}
		result = reflect.Append(result, item.Elem())
	}
	slice.Set(result)
	return nil
}

func (m *Memory) FindOne(_ context.Context, collection string, filter Fields, out any) error {
	match, err := normalizeFilter(filter)
	if err != nil {
		return err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, doc := range m.collections[collection] {
		if matches(doc, match) {
			return decode(doc, out)
		}
	}
	return ErrNotFound
}

func (m *Memory) UpdateOne(_ context.Context, collection string, filter, set Fields) (UpdateResult, error) {
	match, err := normalizeFilter(filter)
	if err != nil {
		return UpdateResult{}, err
	}
	values, err := normalizeSet(set)
	if err != nil {
		return UpdateResult{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, doc := range m.collections[collection] {
		if !matches(doc, match) {
			continue
		}
		modified := false
		for k, v := range values {
			if !reflect.DeepEqual(doc[k], v) {
				doc[k] = v
				modified = true
			}
		}
		res := UpdateResult{MatchedCount: 1}
		if modified {
			res.ModifiedCount = 1
		}
		return res, nil
	}
	return UpdateResult{}, nil
}

func (m *Memory) Ping(context.Context) error { return nil }

// CollectionNames lists collections that hold at least one document.
func (m *Memory) CollectionNames(context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.collections))
	for name := range m.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (m *Memory) Name() string { return "memory" }

// Count reports the number of documents in a collection.
func (m *Memory) Count(collection string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.collections[collection])
}

func normalizeFilter(filter Fields) (bson.M, error) {
	out := bson.M{}
	for k, v := range filter {
		if k == "_id" {
			if hex, ok := v.(string); ok {
				id, err := primitive.ObjectIDFromHex(hex)
				if err != nil {
					return nil, ErrInvalidID
				}
				v = id
			}
		}
		out[k] = v
	}
	return normalizeSet(Fields(out))
}

// normalizeSet passes values through BSON so they compare equal to stored ones.
func normalizeSet(set Fields) (bson.M, error) {
	if len(set) == 0 {
		return bson.M{}, nil
	}
	data, err := bson.Marshal(bson.M(set))
	if err != nil {
		return nil, err
	}
	var out bson.M
	if err := bson.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func matches(doc, filter bson.M) bool {
	for k, v := range filter {
		if !reflect.DeepEqual(doc[k], v) {
			return false
		}
	}
	return true
}

func decode(doc bson.M, out any) error {
	data, err := bson.Marshal(doc)
	if err != nil {
		return err
	}
	return bson.Unmarshal(data, out)
}
